// Package logging provides leveled logging over the standard library logger.
//
// The level is read once from the environment: DEBUG=1 (or true/yes/on)
// enables debug output, otherwise LOG_LEVEL selects one of debug, info,
// warn, or error. The default level is info.
package logging
