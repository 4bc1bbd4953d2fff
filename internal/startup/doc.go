// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// This package centralizes all application configuration and provides consistent
// logging throughout the application lifecycle.
//
// # Configuration
//
// All configuration is loaded from environment variables via [LoadConfig].
// The following environment variables are supported:
//
//   - LIBRARY_DIR: Path to the video library root (default: /media)
//   - CACHE_DIR: Path to cache directory for streams and thumbnails (default: /cache)
//   - PORT: HTTP server port (default: 8080)
//   - METRICS_PORT: Prometheus metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable or disable metrics server (default: true)
//   - MEDIA_EXTENSIONS: Comma-separated video extensions overriding the defaults
//   - MAX_ENCODES: Concurrent encoder process limit (default: CPU-derived)
//   - MAX_THUMBNAILS: Concurrent thumbnail extraction limit (default: CPU-derived)
//   - SEGMENT_SECONDS: HLS segment target duration (default: 4)
//   - SEGMENT_WINDOW: HLS playlist window size (default: 6)
//   - CATALOG_TTL: Catalog snapshot lifetime as Go duration (default: 30s)
//   - MANIFEST_TIMEOUT: Max wait for a manifest to appear (default: 30s)
//   - FFMPEG_PATH / FFPROBE_PATH: Binary overrides (default: from PATH)
//   - LOG_LEVEL: Logging level - debug, info, warn, error (default: info)
//   - LOG_MEDIA_FILES: Log segment/thumbnail requests (default: false)
//   - LOG_HEALTH_CHECKS: Log health check requests (default: true)
//
// # Directory Setup
//
// The cache directory is created if absent and must be writable; the
// server refuses to start otherwise. The library directory is created if
// absent but is normally a read-only mount.
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo]:
//   - Version: Application version
//   - Commit: Git commit hash
//   - BuildTime: Build timestamp
//   - GoVersion: Go compiler version
//
// # Lifecycle Logging
//
// The package provides structured logging functions for consistent output:
//   - [LogCatalogInit] / [LogCatalogStarted]: Catalog setup
//   - [LogTranscoderInit]: Orchestrator setup and ffmpeg/ffprobe availability
//   - [LogHTTPRoutes]: Registered HTTP routes (debug level)
//   - [LogServerStarted]: Server endpoints and startup duration
//   - [LogShutdownInitiated]: Graceful shutdown start
//   - [LogShutdownComplete]: Shutdown completion
package startup
