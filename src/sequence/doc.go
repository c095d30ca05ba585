// Package sequence implements a single-lane FIFO task queue.
//
// Tasks added to a Sequence run one at a time, in the order they were added,
// on a dedicated goroutine. It is used to serialize every operation that reads
// and then mutates account balances, so that no two such operations
// interleave.
package sequence
