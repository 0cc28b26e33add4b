// Package resource implements the Controller that governs memory and IO for a run.
//
//   - Memory: presence bitmaps and chunk buffers are reserved before they are
//     allocated. AcquireMemory never blocks; exceeding the limit is reported as
//     ErrMemoryLimitExceeded and the owning rank aborts.
//   - IO: a token bucket paces the bytes a sending rank puts on the wire.
//
// All methods are safe for concurrent use and treat a nil Controller as
// unlimited.
package resource
