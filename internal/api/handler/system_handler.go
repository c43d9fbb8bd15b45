package handler

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"gate_access/internal/api/middleware"
	"gate_access/internal/domain"
	"gate_access/internal/service"

	"github.com/gin-gonic/gin"
	"gopkg.in/guregu/null.v4"
)

// SystemHandler exposes the recognition pipeline controls, the live video
// feed, the decision poll and the chart data.
type SystemHandler struct {
	state     *service.RecognitionState
	pipeline  *service.FramePipeline
	access    *service.AccessService
	analytics *service.AnalyticsService
}

func NewSystemHandler(
	state *service.RecognitionState,
	pipeline *service.FramePipeline,
	access *service.AccessService,
	analytics *service.AnalyticsService,
) *SystemHandler {
	return &SystemHandler{
		state:     state,
		pipeline:  pipeline,
		access:    access,
		analytics: analytics,
	}
}

// POST /api/v1/system/capture/start
func (h *SystemHandler) StartCapture(c *gin.Context) {
	if err := h.state.EnableCapture(c.Request.Context()); err != nil {
		log.Printf("SystemHandler: enable capture failed: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "could not open capture device"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "camera turned on"})
}

// POST /api/v1/system/capture/stop
func (h *SystemHandler) StopCapture(c *gin.Context) {
	h.state.DisableCapture()
	c.JSON(http.StatusOK, gin.H{"message": "camera turned off"})
}

// POST /api/v1/system/recognition/start
func (h *SystemHandler) StartRecognition(c *gin.Context) {
	h.state.EnableRecognition()
	log.Printf("Plate recognition activated by guard: %s", c.GetString(middleware.UsernameKey))
	c.JSON(http.StatusOK, gin.H{"message": "plate recognition started"})
}

// POST /api/v1/system/recognition/stop
func (h *SystemHandler) StopRecognition(c *gin.Context) {
	h.state.DisableRecognition()
	log.Printf("Plate recognition deactivated by guard: %s", c.GetString(middleware.UsernameKey))
	c.JSON(http.StatusOK, gin.H{"message": "plate recognition stopped"})
}

// GET /api/v1/system/video-feed
//
// Streams annotated frames as multipart/x-mixed-replace MJPEG until the
// viewer disconnects, capture is disabled or the camera fails.
func (h *SystemHandler) VideoFeed(c *gin.Context) {
	c.Writer.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.WriteHeader(http.StatusOK)

	flusher, _ := c.Writer.(http.Flusher)

	err := h.pipeline.Stream(c.Request.Context(), func(frameJPEG []byte) error {
		if _, err := fmt.Fprintf(c.Writer, "--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", len(frameJPEG)); err != nil {
			return err
		}
		if _, err := c.Writer.Write(frameJPEG); err != nil {
			return err
		}
		if _, err := fmt.Fprint(c.Writer, "\r\n"); err != nil {
			return err
		}
		if flusher != nil {
			flusher.Flush()
		}
		return nil
	})
	if err != nil {
		log.Printf("SystemHandler: video feed ended: %v", err)
	}
}

// GET /api/v1/system/decision
//
// Fetch-and-clear: consumes the pending plate, decides, and answers with
// the verdict. 204 when recognition is disabled or nothing is pending.
func (h *SystemHandler) PendingDecision(c *gin.Context) {
	plate, ok := h.state.Consume()
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}

	result, err := h.access.Decide(c.Request.Context(), plate, h.guardID(c))
	if err != nil {
		// The approval record could not be persisted; surface it instead of
		// silently losing the audit trail.
		log.Printf("SystemHandler: decision for plate %s failed: %v", plate, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record decision", "plate": plate})
		return
	}

	status := "denied"
	if result.Approved {
		status = "approved"
	}
	log.Printf("Processed plate: %s, status: %s", result.Plate, status)
	c.JSON(http.StatusOK, domain.DecisionResponseDTO{Status: status, Plate: result.Plate})
}

// GET /api/v1/system/chart-data?day=2006-01-02
//
// Without the day parameter it reports the current day.
func (h *SystemHandler) ChartData(c *gin.Context) {
	// UTC on both paths: entry_time is stored normalized to UTC and the
	// day parameter parses as UTC.
	day := time.Now().UTC()
	if dayStr := c.Query("day"); dayStr != "" {
		parsed, err := time.Parse("2006-01-02", dayStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "day must be formatted as YYYY-MM-DD"})
			return
		}
		day = parsed
	}

	data, err := h.analytics.ChartData(c.Request.Context(), day)
	if err != nil {
		log.Printf("SystemHandler: chart data failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute chart data"})
		return
	}
	c.JSON(http.StatusOK, data)
}

func (h *SystemHandler) guardID(c *gin.Context) null.Int {
	idStr := c.GetString(middleware.GuardIDKey)
	if idStr == "" {
		return null.Int{}
	}
	id, err := strconv.Atoi(idStr)
	if err != nil {
		return null.Int{}
	}
	return null.IntFrom(int64(id))
}
