// Package conv narrows integers with bounds checks.
//
// Use it where a value crosses from the uint64 arithmetic of the table domain
// into Go's int (slice lengths) or into a fixed-width wire field. Conversions
// that are bounded by construction use plain casts.
package conv
