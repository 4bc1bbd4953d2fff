// Package thumbs generates JPEG thumbnails for library videos.
//
// A thumbnail is produced on first request by capturing one frame with
// ffmpeg, fitting it into a 640x360 box with Lanczos resampling, and
// encoding it as JPEG. The result is cached permanently under
// <cache>/thumbnails/<id>.jpg, so a given asset is extracted at most
// once per cache lifetime.
//
// The capture point is 10% into the video when its duration is known
// and at least ten seconds, which skips studio logos and title cards in
// typical sources; shorter or unprobeable videos use a fixed 3s offset.
//
// Concurrent extractions are bounded by a [gate.Gate]; with no free
// slot the request fails fast with [ErrBusy] rather than queuing.
package thumbs
