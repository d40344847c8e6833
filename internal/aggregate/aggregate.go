package aggregate

import (
	"sort"
	"time"

	"github.com/visitlog/analytics-backend-go/internal/models"
)

// BucketByDay groups records by calendar date and counts visits per date.
// Records without a parseable timestamp are excluded. When zeroFill is set,
// dates between the earliest and latest visit appear with a zero count so
// line charts get a continuous axis.
func BucketByDay(records []models.VisitRecord, zeroFill bool) models.DailyCounts {
	counts := make(map[string]int)
	var first, last time.Time

	for i := range records {
		r := &records[i]
		if !r.HasTimestamp() {
			continue
		}
		y, m, d := r.Timestamp.Date()
		day := time.Date(y, m, d, 0, 0, 0, 0, r.Timestamp.Location())
		counts[day.Format(models.DateFormat)]++
		if first.IsZero() || day.Before(first) {
			first = day
		}
		if last.IsZero() || day.After(last) {
			last = day
		}
	}

	if len(counts) == 0 {
		return models.DailyCounts{}
	}

	var result models.DailyCounts
	if zeroFill {
		for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
			key := day.Format(models.DateFormat)
			result = append(result, models.DailyCount{Date: key, Count: counts[key]})
		}
		return result
	}

	for date, count := range counts {
		result = append(result, models.DailyCount{Date: date, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Date < result[j].Date
	})
	return result
}

// BucketByHour builds a 24-bucket hour-of-day histogram across all dates.
// All 24 hours are present, zero-filled. Records without a parseable
// timestamp are excluded.
func BucketByHour(records []models.VisitRecord) models.HourlyCounts {
	var buckets [24]int
	for i := range records {
		if records[i].HasTimestamp() {
			buckets[records[i].Timestamp.Hour()]++
		}
	}

	result := make(models.HourlyCounts, 24)
	for hour, count := range buckets {
		result[hour] = models.HourlyCount{Hour: hour, Count: count}
	}
	return result
}

// BreakdownBy groups records by the given categorical dimension. Empty
// values count under models.UnknownCategory. The result is sorted by count
// descending, ties broken by category name ascending.
func BreakdownBy(records []models.VisitRecord, dim models.Dimension) models.CategoryBreakdown {
	counts := make(map[string]int)
	for i := range records {
		value := categoryValue(&records[i], dim)
		if value == "" {
			value = models.UnknownCategory
		}
		counts[value]++
	}

	result := make(models.CategoryBreakdown, 0, len(counts))
	for category, count := range counts {
		result = append(result, models.CategoryCount{Category: category, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Category < result[j].Category
	})
	return result
}

// Collapser merges co-located points into weighted ones. See spatial.CollapsePoints.
type Collapser func(models.GeoPoints) models.GeoPoints

// ExtractGeoPoints filters to records carrying both coordinates and emits
// one point of weight 1 per record, ordered as the input. A non-nil collapse
// function may merge co-located points into weighted ones.
func ExtractGeoPoints(records []models.VisitRecord, collapse Collapser) models.GeoPoints {
	points := models.GeoPoints{}
	for i := range records {
		r := &records[i]
		if !r.HasLocation() {
			continue
		}
		points = append(points, models.GeoPoint{
			Latitude:  *r.Latitude,
			Longitude: *r.Longitude,
			Weight:    1,
		})
	}
	if collapse != nil {
		points = collapse(points)
	}
	return points
}

// Summarize computes the dashboard's headline metrics
func Summarize(records []models.VisitRecord) models.Summary {
	summary := models.Summary{
		TotalVisits: len(records),
		BusiestHour: -1,
	}

	ips := make(map[string]struct{})
	countries := make(map[string]struct{})
	var firstVisit, lastVisit time.Time

	for i := range records {
		r := &records[i]
		if r.IP != "" {
			ips[r.IP] = struct{}{}
		}
		if r.Country != "" {
			countries[r.Country] = struct{}{}
		}
		if !r.HasTimestamp() {
			continue
		}
		summary.TimestampedVisits++
		if firstVisit.IsZero() || r.Timestamp.Before(firstVisit) {
			firstVisit = r.Timestamp
		}
		if lastVisit.IsZero() || r.Timestamp.After(lastVisit) {
			lastVisit = r.Timestamp
		}
	}

	summary.UniqueVisitors = len(ips)
	summary.CountryCount = len(countries)

	if summary.TimestampedVisits > 0 {
		summary.FirstVisit = firstVisit.Format(time.RFC3339)
		summary.LastVisit = lastVisit.Format(time.RFC3339)
		summary.BusiestDay = busiestDay(records)
		summary.BusiestHour = busiestHour(records)
	}
	return summary
}

// FilterOptions collects the distinct non-empty values per dimension,
// sorted ascending, for the dashboard's filter selects
func FilterOptions(records []models.VisitRecord) models.FilterOptions {
	return models.FilterOptions{
		Countries: distinctValues(records, models.DimensionCountry),
		Regions:   distinctValues(records, models.DimensionRegion),
		ISPs:      distinctValues(records, models.DimensionISP),
		Devices:   distinctValues(records, models.DimensionDevice),
		Browsers:  distinctValues(records, models.DimensionBrowser),
	}
}

func categoryValue(r *models.VisitRecord, dim models.Dimension) string {
	switch dim {
	case models.DimensionCountry:
		return r.Country
	case models.DimensionRegion:
		return r.Region
	case models.DimensionISP:
		return r.ISP
	case models.DimensionDevice:
		return r.Device
	case models.DimensionBrowser:
		return r.Browser
	}
	return ""
}

func distinctValues(records []models.VisitRecord, dim models.Dimension) []string {
	seen := make(map[string]struct{})
	for i := range records {
		if value := categoryValue(&records[i], dim); value != "" {
			seen[value] = struct{}{}
		}
	}
	values := make([]string, 0, len(seen))
	for value := range seen {
		values = append(values, value)
	}
	sort.Strings(values)
	return values
}

func busiestDay(records []models.VisitRecord) string {
	best := ""
	bestCount := 0
	for _, dc := range BucketByDay(records, false) {
		if dc.Count > bestCount {
			best = dc.Date
			bestCount = dc.Count
		}
	}
	return best
}

func busiestHour(records []models.VisitRecord) int {
	best := -1
	bestCount := 0
	for _, hc := range BucketByHour(records) {
		if hc.Count > bestCount {
			best = hc.Hour
			bestCount = hc.Count
		}
	}
	return best
}
