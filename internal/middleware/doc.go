// Package middleware provides HTTP middleware for the vidstream server:
// W3C Extended Log Format request logging with suppression of
// high-volume media fetches, and Prometheus request metrics with
// low-cardinality path normalization.
package middleware
