// Package workers derives sensible concurrency capacities from the number
// of CPUs available to the process. The server uses it to size the encode
// and thumbnail gates when no explicit capacity is configured.
package workers
