package export

import "github.com/jmylchreest/wxscrape/pkg/forecast"

// Table is a flattened sequence: one header row and one row per leaf
// entry, each row the same width as the header.
type Table struct {
	Header []string
	Rows   [][]string
}

var (
	monthlyColumns = []string{"date_label", "day_temp", "night_temp", "condition_summary", "precipitation_chance"}
	hourlyColumns  = []string{"time_of_day", "temp", "condition", "feels_like", "wind"}
	dailyColumns   = []string{"date_label", "high_temp", "low_temp", "condition_summary", "precipitation_chance", "wind_speed"}
)

func header(context []string, columns []string) []string {
	h := make([]string, 0, len(context)+len(columns))
	h = append(h, context...)
	return append(h, columns...)
}

// MonthlyTable flattens monthly_entries. Each row is prefixed with the
// document's parent_location, source_url and forecast_period.
func MonthlyTable(doc *forecast.Document) Table {
	t := Table{Header: header([]string{"parent_location", "source_url", "forecast_period"}, monthlyColumns)}
	for _, e := range doc.MonthlyEntries {
		t.Rows = append(t.Rows, []string{
			doc.ParentLocation, doc.SourceURL, doc.ForecastPeriod,
			e.DateLabel, e.DayTemp, e.NightTemp, e.ConditionSummary, e.PrecipitationChance,
		})
	}
	return t
}

// HourlyTable flattens hourly_by_day, one row per hourly entry prefixed
// with parent_location, the group's day_name and source_url. forecast_period
// is added after source_url only when includePeriod is set.
func HourlyTable(doc *forecast.Document, includePeriod bool) Table {
	context := []string{"parent_location", "day_name", "source_url"}
	if includePeriod {
		context = append(context, "forecast_period")
	}

	t := Table{Header: header(context, hourlyColumns)}
	for _, g := range doc.HourlyByDay {
		for _, e := range g.HourlyEntries {
			row := []string{doc.ParentLocation, g.DayName, doc.SourceURL}
			if includePeriod {
				row = append(row, doc.ForecastPeriod)
			}
			row = append(row, e.TimeOfDay, e.Temp, e.Condition, e.FeelsLike, e.Wind)
			t.Rows = append(t.Rows, row)
		}
	}
	return t
}

// DailyTable flattens daily_by_location, one row per daily entry prefixed
// with parent_location, the location's name, source_url and
// forecast_period.
func DailyTable(doc *forecast.Document) Table {
	t := Table{Header: header([]string{"parent_location", "location_name", "source_url", "forecast_period"}, dailyColumns)}
	for _, loc := range doc.DailyByLocation {
		for _, e := range loc.DailyEntries {
			t.Rows = append(t.Rows, []string{
				doc.ParentLocation, loc.LocationName, doc.SourceURL, doc.ForecastPeriod,
				e.DateLabel, e.HighTemp, e.LowTemp, e.ConditionSummary, e.PrecipitationChance, e.WindSpeed,
			})
		}
	}
	return t
}
