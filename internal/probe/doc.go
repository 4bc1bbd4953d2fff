// Package probe extracts codec and duration information from media files
// by invoking ffprobe as a subprocess and decoding its JSON output.
// Consumers depend on the Prober interface so tests can substitute canned
// results without a media toolchain installed.
package probe
