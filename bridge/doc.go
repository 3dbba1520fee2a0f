// Package bridge provides the hand-off primitives used between the caller's
// goroutines and the goroutine that owns host-side handlers:
//
//   - Future, a single-assignment result with a bounded wait
//   - CallWithTimeout, which runs a function and falls back to a default
//     value when it does not finish in time
//   - Queue, a serial task runner standing in for the host's main thread
package bridge
