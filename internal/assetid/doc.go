// Package assetid maps library-relative file paths to opaque, URL-safe
// asset ids and back. Decoding enforces that the resulting path stays
// within the library root, so an id taken from a URL can never reach
// files outside the library.
package assetid
