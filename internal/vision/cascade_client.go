package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// CascadeClient calls the plate-region classifier sidecar over HTTP. The
// sidecar hosts the pretrained cascade model; this process only ships it
// grayscale frames and reads back bounding boxes.
type CascadeClient struct {
	endpoint string
	client   *http.Client

	mu          sync.Mutex
	enabled     bool
	healthCheck time.Time
}

type regionResponse struct {
	Regions []struct {
		X      int `json:"x"`
		Y      int `json:"y"`
		Width  int `json:"width"`
		Height int `json:"height"`
	} `json:"regions"`
}

func NewCascadeClient(endpoint string) *CascadeClient {
	return &CascadeClient{
		endpoint: endpoint,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// IsHealthy checks if the classifier sidecar is available. Results are
// cached for 30 seconds.
func (c *CascadeClient) IsHealthy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.enabled && time.Since(c.healthCheck) < 30*time.Second {
		return true
	}

	resp, err := c.client.Get(c.endpoint + "/health")
	if err != nil {
		log.Printf("[Cascade] health check failed: %v", err)
		c.enabled = false
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		c.healthCheck = time.Now()
		c.enabled = true
		return true
	}

	log.Printf("[Cascade] health check returned status %d", resp.StatusCode)
	c.enabled = false
	return false
}

func (c *CascadeClient) DetectMultiScale(ctx context.Context, gray *image.Gray, scaleFactor float64, minNeighbors int) ([]image.Rectangle, error) {
	if !c.IsHealthy() {
		return nil, fmt.Errorf("classifier sidecar at %s is unavailable", c.endpoint)
	}

	var imgBuf bytes.Buffer
	if err := jpeg.Encode(&imgBuf, gray, &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("encoding frame: %w", err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("image", "frame.jpg")
	if err != nil {
		return nil, fmt.Errorf("creating form file: %w", err)
	}
	if _, err := io.Copy(part, &imgBuf); err != nil {
		return nil, fmt.Errorf("writing form file: %w", err)
	}
	writer.WriteField("scale_factor", strconv.FormatFloat(scaleFactor, 'f', -1, 64))
	writer.WriteField("min_neighbors", strconv.Itoa(minNeighbors))
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/detect", &body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling classifier: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("classifier returned status %d", resp.StatusCode)
	}

	var parsed regionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding classifier response: %w", err)
	}

	rects := make([]image.Rectangle, 0, len(parsed.Regions))
	for _, r := range parsed.Regions {
		rects = append(rects, image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height))
	}
	return rects, nil
}
