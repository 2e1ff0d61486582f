// Package indicator provides streaming technical indicators over candle data.
//
// Each indicator owns the carried state of its recurrence and advances it
// through the incremental kernels in internal/ta, so a live stream never
// rescans history. Indicators are designed to be composable.
package indicator

import (
	"ta-enginev1/internal/model"
	"ta-enginev1/internal/ta"
)

// kern is the shared kernel policy for the streaming layer. NaN screening is
// left off here: feed integrity is the aggregator's job, not the hot path's.
var kern = ta.Kernel{}

// Indicator is the interface for all streaming indicators.
type Indicator interface {
	// Name returns the indicator name (e.g., "SMA", "EMA").
	Name() string

	// Update feeds a new finalized candle and recalculates.
	Update(candle model.Candle)

	// Value returns the current calculated value. Returns 0 if not enough data.
	Value() float64

	// Ready returns true when enough data has been accumulated.
	Ready() bool

	// Peek computes what Value() would be if this candle were finalized next,
	// WITHOUT mutating internal state. Used for live/streaming updates from
	// forming candles.
	Peek(candle model.Candle) float64
}
