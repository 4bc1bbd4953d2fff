// Package mediatypes defines the file-type conventions shared across the
// server: recognized library extensions, stream output filenames, and the
// MIME types used when serving manifests, segments, and thumbnails.
package mediatypes
