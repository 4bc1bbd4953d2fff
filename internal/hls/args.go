package hls

import (
	"fmt"
	"path/filepath"
	"strconv"

	"vidstream/internal/mediatypes"
	"vidstream/internal/probe"
)

// Video codecs that MPEG-TS segments can carry without re-encoding.
var compatibleCodecs = map[string]bool{
	"h264": true,
}

// needsReencode decides whether the source video stream must go through
// libx264 or can be copied into the segments as-is. A nil info (probe
// failure) always re-encodes: copying an unknown codec into a transport
// stream produces segments players reject.
func needsReencode(info *probe.MediaInfo) bool {
	if info == nil {
		return true
	}
	return !compatibleCodecs[info.VideoCodec]
}

// buildArgs assembles the ffmpeg argument list for a segmented HLS encode
// writing into outDir. Audio is always normalized to stereo AAC so that
// passthrough video from sources with exotic audio tracks still plays.
func buildArgs(src, outDir string, reencode bool, segSeconds, segWindow int) []string {
	args := []string{
		"-analyzeduration", "20000000",
		"-probesize", "20000000",
		"-fflags", "+genpts",
		"-nostdin",
		"-loglevel", "error",
		"-i", src,
	}

	if reencode {
		args = append(args,
			"-c:v", "libx264",
			"-preset", "veryfast",
			"-crf", "23",
			"-vf", "scale='min(1920,iw)':-2",
			// Sources with irregular GOPs otherwise produce segments far
			// longer than hls_time.
			"-force_key_frames", fmt.Sprintf("expr:gte(t,n_forced*%d)", segSeconds),
		)
	} else {
		args = append(args, "-c:v", "copy")
	}

	args = append(args,
		"-c:a", "aac",
		"-b:a", "128k",
		"-ac", "2",
		"-f", "hls",
		"-hls_time", strconv.Itoa(segSeconds),
		"-hls_list_size", strconv.Itoa(segWindow),
		"-hls_playlist_type", "event",
		"-hls_flags", "independent_segments+temp_file",
		"-hls_segment_filename", filepath.Join(outDir, mediatypes.SegmentPattern),
		filepath.Join(outDir, mediatypes.ManifestName),
	)

	return args
}
