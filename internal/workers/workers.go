package workers

import "runtime"

// Count returns a worker count derived from the available CPUs, scaled by
// multiplier and capped by limit (0 = no cap). GOMAXPROCS reflects container
// CPU limits on Go 1.19+, so the result respects cgroup quotas.
//
// Multiplier guidance:
//   - 1.0 for CPU-bound tasks (encoding)
//   - 2.0 for I/O-bound tasks
//   - 1.5 for mixed tasks (frame extraction)
func Count(multiplier float64, limit int) int {
	available := runtime.GOMAXPROCS(0)

	workers := int(float64(available) * multiplier)
	if workers < 1 {
		workers = 1
	}
	if limit > 0 && workers > limit {
		workers = limit
	}
	return workers
}

// ForCPU returns a count for CPU-bound tasks (1 per CPU), capped by limit.
func ForCPU(limit int) int {
	return Count(1.0, limit)
}

// ForIO returns a count for I/O-bound tasks (2 per CPU), capped by limit.
func ForIO(limit int) int {
	return Count(2.0, limit)
}

// ForMixed returns a count for mixed tasks (1.5 per CPU), capped by limit.
func ForMixed(limit int) int {
	return Count(1.5, limit)
}
