package spatial

import (
	"math"
	"testing"

	"github.com/visitlog/analytics-backend-go/internal/models"
)

func TestValidCoordinates(t *testing.T) {
	cases := []struct {
		lat, lng float64
		want     bool
	}{
		{48.2, 16.3, true},
		{-90, 180, true},
		{90.1, 0, false},
		{0, -180.5, false},
	}
	for _, c := range cases {
		if got := ValidCoordinates(c.lat, c.lng); got != c.want {
			t.Errorf("ValidCoordinates(%v, %v): got %v, want %v", c.lat, c.lng, got, c.want)
		}
	}
}

func TestCellCenterAtMaxLevelIsNearExact(t *testing.T) {
	lat, lng := CellCenter(48.2082, 16.3738, MaxCellLevel)
	if math.Abs(lat-48.2082) > 1e-4 || math.Abs(lng-16.3738) > 1e-4 {
		t.Errorf("got (%v, %v), want approximately (48.2082, 16.3738)", lat, lng)
	}
}

func TestCollapsePointsMergesColocated(t *testing.T) {
	points := models.GeoPoints{
		{Latitude: 48.2082, Longitude: 16.3738, Weight: 1},
		{Latitude: 48.2082, Longitude: 16.3738, Weight: 1},
		{Latitude: 35.6762, Longitude: 139.6503, Weight: 1},
	}
	collapsed := CollapsePoints(points, DefaultCellLevel)
	if len(collapsed) != 2 {
		t.Fatalf("len: got %d, want 2", len(collapsed))
	}
	// Weight desc ordering puts the merged point first
	if collapsed[0].Weight != 2 {
		t.Errorf("collapsed[0].Weight: got %d, want 2", collapsed[0].Weight)
	}
	if collapsed[1].Weight != 1 {
		t.Errorf("collapsed[1].Weight: got %d, want 1", collapsed[1].Weight)
	}
}

func TestCollapsePointsKeepsDistantPointsApart(t *testing.T) {
	points := models.GeoPoints{
		{Latitude: 48.2082, Longitude: 16.3738, Weight: 1}, // Vienna
		{Latitude: 52.5200, Longitude: 13.4050, Weight: 1}, // Berlin
	}
	collapsed := CollapsePoints(points, DefaultCellLevel)
	if len(collapsed) != 2 {
		t.Errorf("len: got %d, want 2", len(collapsed))
	}
}

func TestCollapsePointsDropsInvalidCoordinates(t *testing.T) {
	points := models.GeoPoints{
		{Latitude: 91, Longitude: 0, Weight: 1},
		{Latitude: 48.2, Longitude: 16.3, Weight: 1},
	}
	collapsed := CollapsePoints(points, DefaultCellLevel)
	if len(collapsed) != 1 {
		t.Fatalf("len: got %d, want 1", len(collapsed))
	}
}

func TestCollapsePointsEmptyInput(t *testing.T) {
	if collapsed := CollapsePoints(nil, DefaultCellLevel); len(collapsed) != 0 {
		t.Errorf("expected empty result, got %+v", collapsed)
	}
}
