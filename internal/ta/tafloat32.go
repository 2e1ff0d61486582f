//go:build ta32

package ta

import "math"

// TAFloat is the working floating-point precision for all kernels.
// This build computes in float32.
type TAFloat = float32

// maxExactInt is the largest integer magnitude TAFloat can represent exactly.
const maxExactInt = 1 << 24

// NaN returns the undefined-output marker.
func NaN() TAFloat { return TAFloat(math.NaN()) }

// IsNaN reports whether v is the undefined-output marker.
func IsNaN(v TAFloat) bool { return math.IsNaN(float64(v)) }

func taAbs(v TAFloat) TAFloat  { return TAFloat(math.Abs(float64(v))) }
func taSqrt(v TAFloat) TAFloat { return TAFloat(math.Sqrt(float64(v))) }
