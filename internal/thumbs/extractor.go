package thumbs

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"
)

// Extractor captures a single frame from a video file as encoded image
// bytes. It exists so tests can run the generator without ffmpeg
// installed.
type Extractor interface {
	Extract(ctx context.Context, srcPath string, offset time.Duration) ([]byte, error)
}

// FFmpegExtractor captures frames by piping a single PNG frame out of
// ffmpeg.
type FFmpegExtractor struct {
	binPath string
	timeout time.Duration
}

// NewFFmpegExtractor returns an extractor using the given ffmpeg binary.
// An empty binPath falls back to "ffmpeg" from PATH.
func NewFFmpegExtractor(binPath string) *FFmpegExtractor {
	if binPath == "" {
		binPath = "ffmpeg"
	}
	return &FFmpegExtractor{
		binPath: binPath,
		timeout: 30 * time.Second,
	}
}

// Extract seeks to offset and captures one frame as PNG bytes on stdout.
func (e *FFmpegExtractor) Extract(ctx context.Context, srcPath string, offset time.Duration) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, e.binPath,
		"-ss", fmt.Sprintf("%.2f", offset.Seconds()),
		"-i", srcPath,
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"-",
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg error: %w - %s", err, stderr.String())
	}

	if stdout.Len() == 0 {
		return nil, fmt.Errorf("ffmpeg produced no frame for %s", srcPath)
	}

	return stdout.Bytes(), nil
}
