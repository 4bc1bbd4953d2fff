// Package handlers provides HTTP request handlers for the vidstream API.
//
// It includes handlers for:
//   - Catalog listing, search, and folder browsing
//   - HLS manifest and segment serving
//   - Thumbnail generation and serving
//   - Cache administration
//   - Health checks and version info
package handlers
