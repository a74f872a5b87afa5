// Package bmkg scrapes the static province forecast table published by
// BMKG (the Indonesian meteorological agency).
package bmkg

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var (
	// ErrNoTable means the page has no <table>.
	ErrNoTable = errors.New("forecast table not found")
	// ErrNoBody means the table has no <tbody>.
	ErrNoBody = errors.New("forecast table has no body")
)

// Record is one region on one date. Field names follow the agency's own
// column labels.
type Record struct {
	Region      string `json:"kabupaten_kota"`
	Date        string `json:"tanggal"`
	Weather     string `json:"keterangan_cuaca"`
	Temperature string `json:"suhu"`
	Humidity    string `json:"kelembapan"`
}

// Header is the CSV column order.
var Header = []string{"kabupaten_kota", "tanggal", "keterangan_cuaca", "suhu", "kelembapan"}

// Row returns r in Header order.
func (r Record) Row() []string {
	return []string{r.Region, r.Date, r.Weather, r.Temperature, r.Humidity}
}

// ParseTable reads the first table in doc. The header row holds the dates
// (its first cell labels the region column); each body row holds a region
// followed by one cell per date. A cell's text lines are weather,
// temperature and humidity, in that order. Cells without weather and rows
// without a region are skipped.
func ParseTable(doc *goquery.Document) ([]Record, error) {
	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, ErrNoTable
	}

	var dates []string
	table.Find("thead th").Each(func(i int, th *goquery.Selection) {
		if i == 0 {
			return
		}
		if d := strings.Join(textLines(th), ""); d != "" {
			dates = append(dates, d)
		}
	})

	tbody := table.Find("tbody").First()
	if tbody.Length() == 0 {
		return nil, ErrNoBody
	}

	records := []Record{}
	tbody.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() == 0 {
			return
		}

		first := cells.First()
		region := strings.TrimSpace(first.Find("a").First().Text())
		if first.Find("a").Length() == 0 {
			region = strings.TrimSpace(first.Text())
		}

		cells.Slice(1, goquery.ToEnd).Each(func(i int, cell *goquery.Selection) {
			date := fmt.Sprintf("Hari ke-%d", i+1)
			if i < len(dates) {
				date = dates[i]
			}

			rec := Record{Region: region, Date: date}
			lines := textLines(cell)
			if len(lines) > 0 {
				rec.Weather = lines[0]
			}
			if len(lines) > 1 {
				rec.Temperature = lines[1]
			}
			if len(lines) > 2 {
				rec.Humidity = lines[2]
			}

			if rec.Region != "" && rec.Weather != "" {
				records = append(records, rec)
			}
		})
	})

	return records, nil
}

// textLines returns the trimmed, non-empty text nodes under s in document
// order.
func textLines(s *goquery.Selection) []string {
	var lines []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				lines = append(lines, t)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range s.Nodes {
		walk(n)
	}
	return lines
}
