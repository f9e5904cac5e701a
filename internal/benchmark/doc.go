// Package benchmark compares the work-stealing scheduler against a plain
// channel-fed worker pool.
package benchmark
