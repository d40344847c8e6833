package spatial

import (
	"sort"

	"github.com/golang/geo/s2"

	"github.com/visitlog/analytics-backend-go/internal/models"
)

// Cell levels for point collapsing. Level 13 cells are roughly 1 km across,
// a reasonable merge radius for a visitor map. Level 30 is the S2 maximum
// and collapses only effectively identical coordinates.
const (
	DefaultCellLevel = 13
	MaxCellLevel     = 30
)

// ValidCoordinates reports whether lat/lng form a usable WGS84 coordinate
func ValidCoordinates(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// CellCenter snaps a coordinate to the center of its S2 cell at the given level
func CellCenter(lat, lng float64, level int) (float64, float64) {
	if level < 0 {
		level = 0
	}
	if level > MaxCellLevel {
		level = MaxCellLevel
	}
	cell := s2.CellIDFromLatLng(s2.LatLngFromDegrees(lat, lng)).Parent(level)
	center := cell.LatLng()
	return center.Lat.Degrees(), center.Lng.Degrees()
}

// CollapsePoints merges points that fall into the same S2 cell at the given
// level into a single point at the cell center, with summed weights. Points
// with out-of-range coordinates are dropped. The result is ordered by weight
// descending so heavy markers render first, ties by cell id for determinism.
func CollapsePoints(points models.GeoPoints, level int) models.GeoPoints {
	if level < 0 {
		level = 0
	}
	if level > MaxCellLevel {
		level = MaxCellLevel
	}

	type bucket struct {
		point models.GeoPoint
		cell  s2.CellID
	}
	buckets := make(map[s2.CellID]*bucket)

	for _, p := range points {
		if !ValidCoordinates(p.Latitude, p.Longitude) {
			continue
		}
		cell := s2.CellIDFromLatLng(s2.LatLngFromDegrees(p.Latitude, p.Longitude)).Parent(level)
		b, ok := buckets[cell]
		if !ok {
			center := cell.LatLng()
			b = &bucket{
				point: models.GeoPoint{
					Latitude:  center.Lat.Degrees(),
					Longitude: center.Lng.Degrees(),
				},
				cell: cell,
			}
			buckets[cell] = b
		}
		b.point.Weight += p.Weight
	}

	merged := make([]*bucket, 0, len(buckets))
	for _, b := range buckets {
		merged = append(merged, b)
	}
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].point.Weight != merged[j].point.Weight {
			return merged[i].point.Weight > merged[j].point.Weight
		}
		return merged[i].cell < merged[j].cell
	})

	result := make(models.GeoPoints, len(merged))
	for i, b := range merged {
		result[i] = b.point
	}
	return result
}
