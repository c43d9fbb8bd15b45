package service

import (
	"context"
	"fmt"
	"time"

	"gate_access/internal/domain"
	"gate_access/internal/repository"
)

// AnalyticsService derives the dashboard chart from session records. Purely
// read-only; counts are recomputed on every request.
type AnalyticsService struct {
	sessionRepo repository.AccessSessionRepository
	// Start hours of morning, midmorning, midday, afternoon, night.
	// Night runs to the end of the day.
	bucketHours [5]int
}

func NewAnalyticsService(sessionRepo repository.AccessSessionRepository, bucketHours [5]int) *AnalyticsService {
	return &AnalyticsService{
		sessionRepo: sessionRepo,
		bucketHours: bucketHours,
	}
}

// ChartData counts the day's session entries per bucket. Every bucket is
// present in the result, zero counts included.
func (s *AnalyticsService) ChartData(ctx context.Context, day time.Time) (*domain.ChartDataDTO, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	starts := [5]time.Time{}
	for i, h := range s.bucketHours {
		starts[i] = dayStart.Add(time.Duration(h) * time.Hour)
	}
	ends := [5]time.Time{starts[1], starts[2], starts[3], starts[4], dayEnd}

	counts := [5]int{}
	for i := range starts {
		count, err := s.sessionRepo.CountEntriesBetween(ctx, starts[i], ends[i])
		if err != nil {
			return nil, fmt.Errorf("counting session entries between %s and %s: %w", starts[i], ends[i], err)
		}
		counts[i] = count
	}

	return &domain.ChartDataDTO{
		Morning:    counts[0],
		Midmorning: counts[1],
		Midday:     counts[2],
		Afternoon:  counts[3],
		Night:      counts[4],
	}, nil
}
