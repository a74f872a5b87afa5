package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/wxscrape/internal/output"
	"github.com/jmylchreest/wxscrape/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, _ []string) error {
		info := version.Get()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			w := output.NewJSONWriter(os.Stdout, "  ")
			if err := w.Write(info); err != nil {
				return err
			}
			return w.Flush()
		}
		fmt.Println(info.Full())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().Bool("json", false, "print as JSON")
	rootCmd.Version = version.Get().String()
}
