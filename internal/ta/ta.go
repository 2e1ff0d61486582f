// Package ta implements dual-mode technical-analysis kernels over price and
// volume series.
//
// Every indicator is exposed twice from the same recurrence:
//
//   - a batch kernel that transforms a full history slice into an aligned
//     output slice, with the first Lookback positions set to NaN, and
//   - an incremental kernel that takes one new sample plus the indicator's
//     minimal carried state and returns the next value in O(1).
//
// Seeding incremental state from the tail of a batch run and stepping forward
// reproduces continued batch output exactly at equal precision. Kernels are
// pure: they never retain state between calls, never mutate their inputs, and
// write nothing on error.
package ta

// Kernel evaluates indicator kernels under a fixed validation policy.
// The zero value runs in fast mode; set CheckNaN to reject series containing
// NaN samples before any computation. The policy is carried per value rather
// than as package state so concurrent callers can use different policies.
type Kernel struct {
	// CheckNaN enables strict input scanning: any NaN sample fails the call
	// with ErrNaNDetected before output is written.
	CheckNaN bool
}
