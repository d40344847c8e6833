package models

// DateFormat is the calendar-date layout used by daily views and date filters
const DateFormat = "2006-01-02"

// Dimension identifies a categorical field of VisitRecord
type Dimension string

// Dimension constants
const (
	DimensionCountry Dimension = "country"
	DimensionRegion  Dimension = "region"
	DimensionISP     Dimension = "isp"
	DimensionDevice  Dimension = "device"
	DimensionBrowser Dimension = "browser"
)

// UnknownCategory is the bucket for empty categorical values
const UnknownCategory = "Unknown"

// Dimensions lists all supported categorical dimensions
func Dimensions() []Dimension {
	return []Dimension{
		DimensionCountry,
		DimensionRegion,
		DimensionISP,
		DimensionDevice,
		DimensionBrowser,
	}
}

// Valid reports whether d names a supported dimension
func (d Dimension) Valid() bool {
	switch d {
	case DimensionCountry, DimensionRegion, DimensionISP, DimensionDevice, DimensionBrowser:
		return true
	}
	return false
}

// DailyCount represents the visit count for one calendar date
type DailyCount struct {
	Date  string `json:"date"` // Format: 2006-01-02
	Count int    `json:"count"`
}

// DailyCounts is a date-ordered series of daily visit counts
type DailyCounts []DailyCount

// HourlyCount represents the visit count for one hour of day
type HourlyCount struct {
	Hour  int `json:"hour"` // 0-23
	Count int `json:"count"`
}

// HourlyCounts is a 24-entry hour-of-day histogram
type HourlyCounts []HourlyCount

// CategoryCount represents the visit count for one categorical value
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// CategoryBreakdown is a count-descending list of category counts
type CategoryBreakdown []CategoryCount

// GeoPoint represents a weighted map point
type GeoPoint struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
	Weight    int     `json:"weight"`
}

// GeoPoints is a sequence of map points
type GeoPoints []GeoPoint

// Summary represents the dashboard's headline metrics
type Summary struct {
	TotalVisits       int    `json:"total_visits"`
	TimestampedVisits int    `json:"timestamped_visits"`
	UniqueVisitors    int    `json:"unique_visitors"`
	CountryCount      int    `json:"country_count"`
	BusiestDay        string `json:"busiest_day,omitempty"` // Format: 2006-01-02
	BusiestHour       int    `json:"busiest_hour"`          // -1 when no timestamped visits
	FirstVisit        string `json:"first_visit,omitempty"` // RFC3339
	LastVisit         string `json:"last_visit,omitempty"`  // RFC3339
}

// FilterOptions lists the distinct values available per dimension,
// for the dashboard's filter selects
type FilterOptions struct {
	Countries []string `json:"countries"`
	Regions   []string `json:"regions"`
	ISPs      []string `json:"isps"`
	Devices   []string `json:"devices"`
	Browsers  []string `json:"browsers"`
}
