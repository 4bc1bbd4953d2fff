package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"time"

	"vidstream/internal/logging"
)

// MediaInfo describes a source file as reported by the analyzer.
type MediaInfo struct {
	VideoCodec string  `json:"videoCodec"`
	AudioCodec string  `json:"audioCodec"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Duration   float64 `json:"duration"`
}

// Prober queries a source file for codec and duration information.
type Prober interface {
	Probe(ctx context.Context, path string) (*MediaInfo, error)
}

// FFProbe implements Prober using the ffprobe binary.
type FFProbe struct {
	binPath string
	timeout time.Duration
}

// NewFFProbe returns a Prober backed by the given ffprobe binary.
// An empty binPath falls back to "ffprobe" on PATH.
func NewFFProbe(binPath string) *FFProbe {
	if binPath == "" {
		binPath = "ffprobe"
	}
	return &FFProbe{
		binPath: binPath,
		timeout: 30 * time.Second,
	}
}

// ffprobe JSON output shape, reduced to the fields we read.
type probeOutput struct {
	Streams []struct {
		CodecType string `json:"codec_type"`
		CodecName string `json:"codec_name"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Probe runs ffprobe against path and reports the first video and audio
// stream codecs plus the container duration.
func (p *FFProbe) Probe(ctx context.Context, path string) (*MediaInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, p.binPath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffprobe %s: %w - %s", path, err, stderr.String())
	}

	info, err := parseOutput(stdout.Bytes())
	if err != nil {
		return nil, fmt.Errorf("parse ffprobe output for %s: %w", path, err)
	}
	return info, nil
}

// parseOutput reduces ffprobe's JSON to the first video and audio stream
// codecs plus the container duration.
func parseOutput(data []byte) (*MediaInfo, error) {
	var out probeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}

	info := &MediaInfo{}
	for _, s := range out.Streams {
		switch s.CodecType {
		case "video":
			if info.VideoCodec == "" {
				info.VideoCodec = s.CodecName
				info.Width = s.Width
				info.Height = s.Height
			}
		case "audio":
			if info.AudioCodec == "" {
				info.AudioCodec = s.CodecName
			}
		}
	}

	if out.Format.Duration != "" {
		if d, err := strconv.ParseFloat(out.Format.Duration, 64); err == nil {
			info.Duration = d
		} else {
			logging.Debug("unparseable ffprobe duration %q", out.Format.Duration)
		}
	}

	return info, nil
}
