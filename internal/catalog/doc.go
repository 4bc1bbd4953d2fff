// Package catalog maintains the in-memory listing of the video library.
//
// The listing is a snapshot built by a recursive walk over recognized media
// extensions. Snapshots are reused for a configurable TTL and rebuilt wholly
// on expiry; a filesystem watcher invalidates them early when the library
// changes. Concurrent rebuild requests share a single walk.
//
// Browse provides the non-recursive per-directory view used by the folder
// navigation UI, with path containment enforced against the library root.
package catalog
