package camera

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os/exec"
	"strings"
	"sync"
)

// FFmpegDevice reads JPEG frames from an ffmpeg subprocess transcoding the
// camera source to an image2pipe MJPEG stream. The source may be a V4L2
// device path, an rtsp:// URL or an http:// endpoint.
type FFmpegDevice struct {
	device string
	fps    int
	width  int
	height int

	mu     sync.Mutex
	cmd    *exec.Cmd
	stdout io.ReadCloser
	buffer []byte
	chunk  []byte
	open   bool
}

func NewFFmpegDevice(device string, fps, width, height int) *FFmpegDevice {
	return &FFmpegDevice{
		device: device,
		fps:    fps,
		width:  width,
		height: height,
	}
}

func (d *FFmpegDevice) Open(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.open {
		return nil
	}

	var args []string
	if strings.HasPrefix(d.device, "rtsp://") {
		args = []string{
			"-rtsp_transport", "tcp",
			"-i", d.device,
			"-f", "image2pipe",
			"-vcodec", "mjpeg",
			"-r", fmt.Sprintf("%d", d.fps),
			"-q:v", "5",
			"-",
		}
	} else if strings.HasPrefix(d.device, "http://") || strings.HasPrefix(d.device, "https://") {
		args = []string{
			"-i", d.device,
			"-f", "image2pipe",
			"-vcodec", "mjpeg",
			"-r", fmt.Sprintf("%d", d.fps),
			"-q:v", "5",
			"-",
		}
	} else {
		// V4L2 device (USB camera)
		args = []string{
			"-f", "v4l2",
			"-video_size", fmt.Sprintf("%dx%d", d.width, d.height),
			"-framerate", fmt.Sprintf("%d", d.fps),
			"-i", d.device,
			"-f", "image2pipe",
			"-vcodec", "mjpeg",
			"-q:v", "5",
			"-",
		}
	}

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("creating stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("creating stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting ffmpeg for %s: %w", d.device, err)
	}

	// Consume stderr silently
	go func() {
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
		}
	}()

	d.cmd = cmd
	d.stdout = stdout
	d.buffer = make([]byte, 0, 1024*1024)
	d.chunk = make([]byte, 8192)
	d.open = true

	log.Printf("[Camera] Started capture from %s (fps: %d)", d.device, d.fps)
	return nil
}

// ReadFrame returns the next complete JPEG frame from the pipe. After
// Close, or if ffmpeg exits, it returns ErrDeviceClosed.
func (d *FFmpegDevice) ReadFrame() ([]byte, error) {
	d.mu.Lock()
	if !d.open {
		d.mu.Unlock()
		return nil, ErrDeviceClosed
	}
	stdout := d.stdout
	d.mu.Unlock()

	for {
		if frame := d.nextBufferedFrame(); frame != nil {
			return frame, nil
		}

		n, err := stdout.Read(d.chunk)
		if n > 0 {
			d.mu.Lock()
			d.buffer = append(d.buffer, d.chunk[:n]...)
			d.mu.Unlock()
		}
		if err != nil {
			return nil, ErrDeviceClosed
		}
	}
}

func (d *FFmpegDevice) nextBufferedFrame() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return extractJPEGFrame(&d.buffer)
}

func (d *FFmpegDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.open {
		return nil
	}
	d.open = false

	if d.stdout != nil {
		d.stdout.Close()
	}
	if d.cmd != nil && d.cmd.Process != nil {
		d.cmd.Process.Kill()
		d.cmd.Wait()
	}
	d.buffer = nil

	log.Printf("[Camera] Stopped capture from %s", d.device)
	return nil
}

// extractJPEGFrame extracts a complete JPEG frame (FFD8..FFD9) from buffer.
func extractJPEGFrame(buffer *[]byte) []byte {
	if len(*buffer) < 4 {
		return nil
	}

	startIdx := -1
	for i := 0; i < len(*buffer)-1; i++ {
		if (*buffer)[i] == 0xFF && (*buffer)[i+1] == 0xD8 {
			startIdx = i
			break
		}
	}
	if startIdx == -1 {
		return nil
	}

	endIdx := -1
	for i := startIdx + 2; i < len(*buffer)-1; i++ {
		if (*buffer)[i] == 0xFF && (*buffer)[i+1] == 0xD9 {
			endIdx = i + 2
			break
		}
	}
	if endIdx == -1 {
		return nil
	}

	frame := make([]byte, endIdx-startIdx)
	copy(frame, (*buffer)[startIdx:endIdx])
	*buffer = (*buffer)[endIdx:]

	return frame
}
