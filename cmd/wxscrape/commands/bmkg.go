package commands

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/wxscrape/internal/bmkg"
)

var bmkgCmd = &cobra.Command{
	Use:   "bmkg",
	Short: "Scrape a BMKG province forecast table",
	Long: `Download a BMKG (Indonesian meteorological agency) province forecast
page and save its region-by-date table as CSV and JSON. The page is static
HTML, so no browser or language model is involved.

Province codes in the URL: 62 Central Kalimantan, 63 South Kalimantan,
64 East Kalimantan, 31 Jakarta, 32 West Java.

Examples:
  wxscrape bmkg
  wxscrape bmkg -u https://www.bmkg.go.id/cuaca/prakiraan-cuaca/63 -o data`,
	RunE: runBMKG,
}

func init() {
	rootCmd.AddCommand(bmkgCmd)

	flags := bmkgCmd.Flags()
	flags.StringP("url", "u", bmkg.DefaultURL, "province forecast page")
	flags.StringP("output-dir", "o", ".", "directory for the CSV and JSON files")
	flags.Duration("timeout", 30*time.Second, "request timeout")
	flags.Int("preview", 5, "records to print after scraping (0 disables)")
}

func runBMKG(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	url, _ := cmd.Flags().GetString("url")
	dir, _ := cmd.Flags().GetString("output-dir")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	preview, _ := cmd.Flags().GetInt("preview")

	records, err := bmkg.Scrape(ctx, url, bmkg.FetchConfig{Timeout: timeout})
	if err != nil {
		return err
	}
	if len(records) == 0 {
		logInfo("No forecast records found on %s", url)
		return nil
	}

	if preview > 0 {
		bmkg.Preview(os.Stderr, records, preview)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	csvPath, jsonPath := bmkg.FileNames(dir, time.Now())
	if err := bmkg.SaveCSV(csvPath, records); err != nil {
		return err
	}
	if err := bmkg.SaveJSON(jsonPath, records); err != nil {
		return err
	}

	logInfo("Saved %d records", len(records))
	logInfo("  %s", csvPath)
	logInfo("  %s", jsonPath)
	return nil
}
