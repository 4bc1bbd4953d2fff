// Package hls turns library videos into segmented HLS streams on demand.
//
// The [Orchestrator] is the entry point. EnsureStream is called with an
// asset id and source path; it returns once the stream's manifest
// (index.m3u8) is available, which is usually long before the encode
// finishes. Output lives under <cache>/streams/<id>/ and is reused for
// every later request, so a given video is encoded at most once per
// cache lifetime.
//
// Three rules shape the orchestrator:
//
//   - Single flight: at most one encoder process runs per asset id.
//     Concurrent requests for the same asset attach to the existing job
//     and all wake when the manifest appears.
//   - Load shedding: total concurrent encoders are bounded by a
//     [gate.Gate]. When no slot is free the request fails fast with
//     [ErrBusy] instead of queuing.
//   - Partial readiness: callers are unblocked as soon as the manifest
//     file exists on disk, polled at a short interval. The encoder keeps
//     running in the background and settles on its own.
//
// The codec decision is made per job from an ffprobe inspection: h264
// video is copied into the transport stream untouched, everything else
// goes through libx264. Audio is always normalized to stereo AAC. A
// failed probe falls back to re-encoding.
//
// Encoder processes are spawned through the [Runner] interface so tests
// can run the full job lifecycle without ffmpeg installed.
package hls
