package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gate_access/internal/domain"
	"gate_access/internal/repository"
	"gate_access/internal/service"

	"github.com/gin-gonic/gin"
)

type recordingSessionRepo struct {
	windows [][2]time.Time
}

func (r *recordingSessionRepo) Create(ctx context.Context, session *domain.AccessSession) (*domain.AccessSession, error) {
	return session, nil
}

func (r *recordingSessionRepo) FindOpenByClientID(ctx context.Context, clientID int) (*domain.AccessSession, error) {
	return nil, repository.ErrNoOpenSession
}

func (r *recordingSessionRepo) SetExitTime(ctx context.Context, sessionID int, exitTime time.Time) error {
	return nil
}

func (r *recordingSessionRepo) CountEntriesBetween(ctx context.Context, from, to time.Time) (int, error) {
	r.windows = append(r.windows, [2]time.Time{from, to})
	return 0, nil
}

func chartDataRequest(t *testing.T, target string) (*recordingSessionRepo, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := &recordingSessionRepo{}
	h := NewSystemHandler(nil, nil, nil, service.NewAnalyticsService(repo, [5]int{6, 9, 12, 15, 18}))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	h.ChartData(c)
	return repo, w
}

func TestChartDataParsesDayAsUTC(t *testing.T) {
	repo, w := chartDataRequest(t, "/api/v1/system/chart-data?day=2026-08-30")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", w.Code)
	}
	if len(repo.windows) != 5 {
		t.Fatalf("expected 5 count windows, got %d", len(repo.windows))
	}
	wantStart := time.Date(2026, 8, 30, 6, 0, 0, 0, time.UTC)
	if !repo.windows[0][0].Equal(wantStart) {
		t.Fatalf("first bucket starts at %v, want %v", repo.windows[0][0], wantStart)
	}
	wantEnd := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	if !repo.windows[4][1].Equal(wantEnd) {
		t.Fatalf("last bucket ends at %v, want %v", repo.windows[4][1], wantEnd)
	}
}

func TestChartDataDefaultDayIsUTC(t *testing.T) {
	repo, w := chartDataRequest(t, "/api/v1/system/chart-data")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", w.Code)
	}
	if len(repo.windows) != 5 {
		t.Fatalf("expected 5 count windows, got %d", len(repo.windows))
	}
	// Rows carry UTC entry times; the default day must bucket in the same
	// location as an explicit ?day.
	for _, window := range repo.windows {
		if window[0].Location() != time.UTC || window[1].Location() != time.UTC {
			t.Fatalf("bucket window %v not in UTC", window)
		}
	}
}

func TestChartDataRejectsMalformedDay(t *testing.T) {
	_, w := chartDataRequest(t, "/api/v1/system/chart-data?day=30-08-2026")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", w.Code)
	}
}
