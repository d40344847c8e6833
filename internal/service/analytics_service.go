package service

import (
	"fmt"
	"time"

	"github.com/visitlog/analytics-backend-go/internal/aggregate"
	"github.com/visitlog/analytics-backend-go/internal/models"
	"github.com/visitlog/analytics-backend-go/internal/repository"
	"github.com/visitlog/analytics-backend-go/internal/spatial"
)

// AnalyticsService builds the derived dashboard views from cached visits.
// Every view is recomputed from scratch on each call; nothing is cached
// beyond the visit rows themselves.
type AnalyticsService struct {
	visitRepo       *repository.VisitRepository
	cellLevel       int
	defaultPageSize int
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(visitRepo *repository.VisitRepository, cellLevel, defaultPageSize int) *AnalyticsService {
	if cellLevel <= 0 || cellLevel > spatial.MaxCellLevel {
		cellLevel = spatial.DefaultCellLevel
	}
	if defaultPageSize < 1 {
		defaultPageSize = 50
	}
	return &AnalyticsService{
		visitRepo:       visitRepo,
		cellLevel:       cellLevel,
		defaultPageSize: defaultPageSize,
	}
}

// GetVisits retrieves the paginated visit table
func (s *AnalyticsService) GetVisits(filter models.VisitFilter) (*models.VisitsResponse, error) {
	return s.visitRepo.List(filter, s.defaultPageSize)
}

// GetDailyCounts retrieves the zero-filled daily visit series
func (s *AnalyticsService) GetDailyCounts(filter models.VisitFilter) (models.DailyCounts, error) {
	records, err := s.visitRepo.Find(filter)
	if err != nil {
		return nil, err
	}
	return aggregate.BucketByDay(records, true), nil
}

// GetHourlyCounts retrieves the 24-bucket hour-of-day histogram
func (s *AnalyticsService) GetHourlyCounts(filter models.VisitFilter) (models.HourlyCounts, error) {
	records, err := s.visitRepo.Find(filter)
	if err != nil {
		return nil, err
	}
	return aggregate.BucketByHour(records), nil
}

// GetBreakdown retrieves the categorical breakdown for a dimension
func (s *AnalyticsService) GetBreakdown(filter models.VisitFilter, dim models.Dimension) (models.CategoryBreakdown, error) {
	if !dim.Valid() {
		return nil, fmt.Errorf("unknown dimension %q", dim)
	}
	records, err := s.visitRepo.Find(filter)
	if err != nil {
		return nil, err
	}
	return aggregate.BreakdownBy(records, dim), nil
}

// GetGeoPoints retrieves weighted map points, collapsed by S2 cell at the
// given level; level 0 means the configured default
func (s *AnalyticsService) GetGeoPoints(filter models.VisitFilter, level int) (models.GeoPoints, error) {
	if level <= 0 {
		level = s.cellLevel
	}
	if level > spatial.MaxCellLevel {
		level = spatial.MaxCellLevel
	}
	records, err := s.visitRepo.Find(filter)
	if err != nil {
		return nil, err
	}
	return aggregate.ExtractGeoPoints(records, func(points models.GeoPoints) models.GeoPoints {
		return spatial.CollapsePoints(points, level)
	}), nil
}

// GetSummary retrieves the headline metrics plus cache freshness
func (s *AnalyticsService) GetSummary(filter models.VisitFilter) (*SummaryWithFreshness, error) {
	records, err := s.visitRepo.Find(filter)
	if err != nil {
		return nil, err
	}

	fetchedAt, _, err := s.visitRepo.LastFetch()
	if err != nil {
		return nil, err
	}

	result := &SummaryWithFreshness{Summary: aggregate.Summarize(records)}
	if !fetchedAt.IsZero() {
		result.FetchedAt = fetchedAt.Format(time.RFC3339)
	}
	return result, nil
}

// GetFilterOptions retrieves the distinct values per dimension for the
// dashboard's filter selects, always from the unfiltered cache
func (s *AnalyticsService) GetFilterOptions() (models.FilterOptions, error) {
	records, err := s.visitRepo.Find(models.VisitFilter{})
	if err != nil {
		return models.FilterOptions{}, err
	}
	return aggregate.FilterOptions(records), nil
}

// SummaryWithFreshness is a Summary annotated with the cache fetch time
type SummaryWithFreshness struct {
	models.Summary
	FetchedAt string `json:"fetched_at,omitempty"` // RFC3339
}
