package mediatypes

import (
	"path/filepath"
	"strings"
)

// Streaming output conventions. Every asset's cached stream lives in its own
// directory containing one manifest plus numbered segments.
const (
	// ManifestName is the filename of the HLS playlist inside a stream directory.
	ManifestName = "index.m3u8"
	// SegmentSuffix is the only file suffix served from a stream directory.
	SegmentSuffix = ".ts"
	// SegmentPattern is the ffmpeg filename template for segments.
	SegmentPattern = "seg%05d.ts"

	// ManifestContentType is the MIME type for HLS playlists.
	ManifestContentType = "application/vnd.apple.mpegurl"
	// SegmentContentType is the MIME type for MPEG-TS segments.
	SegmentContentType = "video/mp2t"
	// ThumbnailContentType is the MIME type for generated thumbnails.
	ThumbnailContentType = "image/jpeg"
)

// DefaultVideoExtensions lists the extensions recognized as library assets
// when MEDIA_EXTENSIONS is not set.
var DefaultVideoExtensions = []string{
	".mp4", ".mkv", ".avi", ".mov",
	".wmv", ".flv", ".webm", ".m4v",
	".mpeg", ".mpg", ".3gp", ".ts",
}

// ExtensionSet is a case-insensitive set of recognized file extensions.
type ExtensionSet map[string]bool

// NewExtensionSet builds an ExtensionSet from a list of extensions.
// Entries are lowercased and a missing leading dot is added.
func NewExtensionSet(exts []string) ExtensionSet {
	set := make(ExtensionSet, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		set[e] = true
	}
	return set
}

// ParseExtensionList parses a comma-separated extension list, as used by the
// MEDIA_EXTENSIONS environment variable.
func ParseExtensionList(s string) ExtensionSet {
	return NewExtensionSet(strings.Split(s, ","))
}

// Matches reports whether the path's extension belongs to the set.
func (s ExtensionSet) Matches(path string) bool {
	return s[strings.ToLower(filepath.Ext(path))]
}

// IsSegmentName reports whether name is a plain segment filename: no path
// separators, no traversal, and the recognized segment suffix. Anything else
// in a stream directory (the manifest, temp files) is not served as a segment.
func IsSegmentName(name string) bool {
	if name == "" || name != filepath.Base(name) {
		return false
	}
	if strings.Contains(name, "/") || strings.Contains(name, "\\") {
		return false
	}
	if strings.HasPrefix(name, ".") {
		return false
	}
	return strings.HasSuffix(name, SegmentSuffix)
}
