package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/visitlog/analytics-backend-go/internal/models"
	"github.com/visitlog/analytics-backend-go/internal/repository"
)

// VisitSource fetches the current visit log from the data source
type VisitSource interface {
	Fetch(ctx context.Context) ([]models.VisitRecord, error)
}

// RefreshService pulls the source sheet into the local visit cache
type RefreshService struct {
	source    VisitSource
	visitRepo *repository.VisitRepository
}

// NewRefreshService creates a new refresh service
func NewRefreshService(source VisitSource, visitRepo *repository.VisitRepository) *RefreshService {
	return &RefreshService{
		source:    source,
		visitRepo: visitRepo,
	}
}

// Refresh performs one fetch-then-cache pass. On fetch failure the previous
// cache is kept; the dashboard serves stale data rather than none.
func (s *RefreshService) Refresh(ctx context.Context) (int, error) {
	records, err := s.source.Fetch(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to refresh visit cache: %w", err)
	}

	if err := s.visitRepo.ReplaceAll(records); err != nil {
		return 0, fmt.Errorf("failed to store fetched visits: %w", err)
	}
	return len(records), nil
}

// Run refreshes once immediately, then on every tick until ctx is done.
// Passes never overlap: the loop is a single goroutine and each pass
// completes before the next tick is read.
func (s *RefreshService) Run(ctx context.Context, interval time.Duration) {
	if n, err := s.Refresh(ctx); err != nil {
		log.Printf("Initial refresh failed: %v", err)
	} else {
		log.Printf("Visit cache refreshed: %d rows", n)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := s.Refresh(ctx); err != nil {
				log.Printf("Refresh failed, keeping previous cache: %v", err)
			} else {
				log.Printf("Visit cache refreshed: %d rows", n)
			}
		}
	}
}
