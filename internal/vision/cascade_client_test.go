package vision

import (
	"context"
	"encoding/json"
	"image"
	"net/http"
	"net/http/httptest"
	"testing"
)

func sidecarServer(t *testing.T, healthStatus int, detectCalls, healthCalls *int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/health":
			*healthCalls++
			w.WriteHeader(healthStatus)
		case "/detect":
			*detectCalls++
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				t.Errorf("parsing multipart form: %v", err)
			}
			if got := r.FormValue("scale_factor"); got != "1.1" {
				t.Errorf("scale_factor = %q, want 1.1", got)
			}
			if got := r.FormValue("min_neighbors"); got != "4" {
				t.Errorf("min_neighbors = %q, want 4", got)
			}
			json.NewEncoder(w).Encode(map[string]any{
				"regions": []map[string]int{{"x": 10, "y": 20, "width": 30, "height": 40}},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestDetectMultiScaleParsesRegions(t *testing.T) {
	var detectCalls, healthCalls int
	srv := sidecarServer(t, http.StatusOK, &detectCalls, &healthCalls)
	defer srv.Close()

	client := NewCascadeClient(srv.URL)
	rects, err := client.DetectMultiScale(context.Background(), image.NewGray(image.Rect(0, 0, 64, 64)), 1.1, 4)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(rects) != 1 || rects[0] != image.Rect(10, 20, 40, 60) {
		t.Fatalf("unexpected regions %v", rects)
	}
}

func TestDetectMultiScaleRefusesUnhealthySidecar(t *testing.T) {
	var detectCalls, healthCalls int
	srv := sidecarServer(t, http.StatusServiceUnavailable, &detectCalls, &healthCalls)
	defer srv.Close()

	client := NewCascadeClient(srv.URL)
	if _, err := client.DetectMultiScale(context.Background(), image.NewGray(image.Rect(0, 0, 64, 64)), 1.1, 4); err == nil {
		t.Fatal("expected error while the sidecar is unhealthy")
	}
	if detectCalls != 0 {
		t.Fatalf("no frame must be shipped to an unhealthy sidecar, got %d detect calls", detectCalls)
	}
}

func TestIsHealthyCachesSuccess(t *testing.T) {
	var detectCalls, healthCalls int
	srv := sidecarServer(t, http.StatusOK, &detectCalls, &healthCalls)
	defer srv.Close()

	client := NewCascadeClient(srv.URL)
	if !client.IsHealthy() {
		t.Fatal("expected healthy sidecar")
	}
	if !client.IsHealthy() {
		t.Fatal("expected cached healthy result")
	}
	if healthCalls != 1 {
		t.Fatalf("expected a single health probe within the cache window, got %d", healthCalls)
	}
}
