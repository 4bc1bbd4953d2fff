// Package gate provides a fixed-capacity counting gate used to bound the
// number of simultaneous encoder and thumbnail subprocesses. It wraps a
// weighted semaphore with a non-blocking acquire for load shedding and an
// active-count readout for health reporting.
package gate
