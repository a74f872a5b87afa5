// Package forecast defines the hierarchical forecast document produced by
// extraction and consumed by the exporters.
//
// A Document is write-once: the extractor builds and normalizes it, after
// which it is only read. Every leaf value is a string; values the page did
// not provide are the sentinel NA, never empty.
package forecast

import "strings"

// NA is the sentinel for any value that could not be found on the page.
const NA = "N/A"

// Document is the root of an extraction result. The three sequences are
// independent; an empty sequence means that forecast type was not present.
type Document struct {
	ParentLocation  string             `json:"parent_location" yaml:"parent_location" validate:"required" description:"Name of the parent city, province or area the page covers (e.g. Kalimantan Tengah). Use 'N/A' if not found."`
	SourceURL       string             `json:"source_url" yaml:"source_url" validate:"required" description:"URL the data was taken from."`
	ForecastPeriod  string             `json:"forecast_period" yaml:"forecast_period" validate:"required" description:"Date range the forecast covers (e.g. Monthly forecast for November 2025). Use 'N/A' if not found."`
	DailyByLocation []LocationForecast `json:"daily_by_location" yaml:"daily_by_location" validate:"required,dive" description:"Daily forecasts, one item per city or regency found on the page. Empty list if the page has no daily forecast."`
	HourlyByDay     []DailyHourlyGroup `json:"hourly_by_day" yaml:"hourly_by_day" validate:"required,dive" description:"Hourly forecasts grouped by day. Empty list if the page has no hourly forecast."`
	MonthlyEntries  []MonthlyEntry     `json:"monthly_entries" yaml:"monthly_entries" validate:"required,dive" description:"Monthly calendar forecast covering every visible day. Empty list if the page has no monthly forecast."`
}

// LocationForecast holds the daily forecasts for one named location.
type LocationForecast struct {
	LocationName string       `json:"location_name" yaml:"location_name" validate:"required" description:"Specific city or regency name (e.g. Sampit, Pangkalan Bun)."`
	DailyEntries []DailyEntry `json:"daily_entries" yaml:"daily_entries" validate:"required,dive" description:"Daily forecasts for this location."`
}

// DailyEntry is one day of a location's forecast.
type DailyEntry struct {
	DateLabel           string `json:"date_label" yaml:"date_label" validate:"required" description:"Day and date (e.g. Thu, 27 Nov)."`
	HighTemp            string `json:"high_temp" yaml:"high_temp" validate:"required" description:"Highest temperature including unit (e.g. 30 °C)."`
	LowTemp             string `json:"low_temp" yaml:"low_temp" validate:"required" description:"Lowest temperature including unit (e.g. 25 °C)."`
	ConditionSummary    string `json:"condition_summary" yaml:"condition_summary" validate:"required" description:"Weather description (e.g. Light Rain, Cloudy)."`
	PrecipitationChance string `json:"precipitation_chance" yaml:"precipitation_chance" validate:"required" description:"Chance of precipitation. 'N/A' if absent."`
	WindSpeed           string `json:"wind_speed" yaml:"wind_speed" validate:"required" description:"Wind speed and direction. 'N/A' if absent."`
}

// DailyHourlyGroup collects the hourly entries that belong to one day.
type DailyHourlyGroup struct {
	DayName       string        `json:"day_name" yaml:"day_name" validate:"required" description:"Name of the day for this group (e.g. Thursday)."`
	HourlyEntries []HourlyEntry `json:"hourly_entries" yaml:"hourly_entries" validate:"required,dive" description:"Hourly forecasts that apply to this day only."`
}

// HourlyEntry is a single hour of forecast.
type HourlyEntry struct {
	TimeOfDay string `json:"time_of_day" yaml:"time_of_day" validate:"required" description:"Time of day (e.g. 1 PM, 14:00)."`
	Temp      string `json:"temp" yaml:"temp" validate:"required" description:"Temperature at that hour including unit (e.g. 28°C)."`
	Condition string `json:"condition" yaml:"condition" validate:"required" description:"Hourly weather description (e.g. Cloudy)."`
	FeelsLike string `json:"feels_like" yaml:"feels_like" validate:"required" description:"Feels-like temperature. 'N/A' if absent."`
	Wind      string `json:"wind" yaml:"wind" validate:"required" description:"Wind speed and direction (e.g. 10 km/h W). 'N/A' if absent."`
}

// MonthlyEntry is one calendar day of a monthly forecast.
type MonthlyEntry struct {
	DateLabel           string `json:"date_label" yaml:"date_label" validate:"required" description:"Date (e.g. Nov 27)."`
	DayTemp             string `json:"day_temp" yaml:"day_temp" validate:"required" description:"Average daytime temperature including unit."`
	NightTemp           string `json:"night_temp" yaml:"night_temp" validate:"required" description:"Average night temperature including unit."`
	ConditionSummary    string `json:"condition_summary" yaml:"condition_summary" validate:"required" description:"Weather description (e.g. Scattered Thunderstorms)."`
	PrecipitationChance string `json:"precipitation_chance" yaml:"precipitation_chance" validate:"required" description:"Chance of precipitation. 'N/A' if absent."`
}

// Default returns the fallback document for url: every sequence empty and
// every scalar NA. source_url keeps the requested URL so failed runs remain
// traceable; it is NA only when url itself is blank.
func Default(url string) *Document {
	return &Document{
		ParentLocation:  NA,
		SourceURL:       orNA(url),
		ForecastPeriod:  NA,
		DailyByLocation: []LocationForecast{},
		HourlyByDay:     []DailyHourlyGroup{},
		MonthlyEntries:  []MonthlyEntry{},
	}
}

// Normalize repairs model output in place: blank leaves become NA, a blank
// source_url becomes url, and missing top-level sequences become empty.
// Nested nil sequences are left alone so validation can reject them.
func (d *Document) Normalize(url string) {
	d.ParentLocation = orNA(d.ParentLocation)
	if strings.TrimSpace(d.SourceURL) == "" {
		d.SourceURL = url
	}
	d.SourceURL = orNA(d.SourceURL)
	d.ForecastPeriod = orNA(d.ForecastPeriod)

	if d.DailyByLocation == nil {
		d.DailyByLocation = []LocationForecast{}
	}
	if d.HourlyByDay == nil {
		d.HourlyByDay = []DailyHourlyGroup{}
	}
	if d.MonthlyEntries == nil {
		d.MonthlyEntries = []MonthlyEntry{}
	}

	for i := range d.DailyByLocation {
		loc := &d.DailyByLocation[i]
		loc.LocationName = orNA(loc.LocationName)
		for j := range loc.DailyEntries {
			e := &loc.DailyEntries[j]
			e.DateLabel = orNA(e.DateLabel)
			e.HighTemp = orNA(e.HighTemp)
			e.LowTemp = orNA(e.LowTemp)
			e.ConditionSummary = orNA(e.ConditionSummary)
			e.PrecipitationChance = orNA(e.PrecipitationChance)
			e.WindSpeed = orNA(e.WindSpeed)
		}
	}

	for i := range d.HourlyByDay {
		g := &d.HourlyByDay[i]
		g.DayName = orNA(g.DayName)
		for j := range g.HourlyEntries {
			e := &g.HourlyEntries[j]
			e.TimeOfDay = orNA(e.TimeOfDay)
			e.Temp = orNA(e.Temp)
			e.Condition = orNA(e.Condition)
			e.FeelsLike = orNA(e.FeelsLike)
			e.Wind = orNA(e.Wind)
		}
	}

	for i := range d.MonthlyEntries {
		e := &d.MonthlyEntries[i]
		e.DateLabel = orNA(e.DateLabel)
		e.DayTemp = orNA(e.DayTemp)
		e.NightTemp = orNA(e.NightTemp)
		e.ConditionSummary = orNA(e.ConditionSummary)
		e.PrecipitationChance = orNA(e.PrecipitationChance)
	}
}

// Empty reports whether the document carries no usable forecast data.
// Callers cannot tell a genuinely empty page from the fallback document
// and should treat both the same way.
func (d *Document) Empty() bool {
	return len(d.DailyByLocation) == 0 && len(d.HourlyByDay) == 0 && len(d.MonthlyEntries) == 0
}

// Counts summarizes the size of each sequence.
type Counts struct {
	Locations      int `json:"locations"`
	DailyEntries   int `json:"daily_entries"`
	HourlyGroups   int `json:"hourly_groups"`
	HourlyEntries  int `json:"hourly_entries"`
	MonthlyEntries int `json:"monthly_entries"`
}

// Counts returns per-sequence totals, counting nested leaf entries.
func (d *Document) Counts() Counts {
	c := Counts{
		Locations:      len(d.DailyByLocation),
		HourlyGroups:   len(d.HourlyByDay),
		MonthlyEntries: len(d.MonthlyEntries),
	}
	for _, loc := range d.DailyByLocation {
		c.DailyEntries += len(loc.DailyEntries)
	}
	for _, g := range d.HourlyByDay {
		c.HourlyEntries += len(g.HourlyEntries)
	}
	return c
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return NA
	}
	return s
}
