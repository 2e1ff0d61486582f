//go:build !ta32

package ta

import "math"

// TAFloat is the working floating-point precision for all kernels.
// Build with the ta32 tag to compute in float32 instead.
type TAFloat = float64

// maxExactInt is the largest integer magnitude TAFloat can represent exactly.
const maxExactInt = 1 << 53

// NaN returns the undefined-output marker.
func NaN() TAFloat { return math.NaN() }

// IsNaN reports whether v is the undefined-output marker.
func IsNaN(v TAFloat) bool { return math.IsNaN(v) }

func taAbs(v TAFloat) TAFloat  { return math.Abs(v) }
func taSqrt(v TAFloat) TAFloat { return math.Sqrt(v) }
