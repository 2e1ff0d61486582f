package ta

import "fmt"

// Candlestick classifier signal values. Pattern kernels emit one signal per
// bar rather than a price-scaled value.
const (
	SignalPattern   TAFloat = 100
	SignalNoPattern TAFloat = 0
)

// CDLDragonflyDojiLookback returns the number of undefined leading outputs
// for the dragonfly doji classifier. It inspects one bar at a time.
func CDLDragonflyDojiLookback() int { return 0 }

func checkBodyPercent(bodyPercent TAFloat) error {
	if bodyPercent <= 0 || bodyPercent >= 100 {
		return fmt.Errorf("%w: body percent %v", ErrInvalidParameter, bodyPercent)
	}
	return nil
}

// dragonflyDoji classifies one bar: a negligible body and upper shadow
// (each within bodyPercent of the bar range) sitting atop a dominant lower
// shadow.
func dragonflyDoji(open, high, low, close, bodyPercent TAFloat) TAFloat {
	rng := high - low
	if rng <= 0 {
		return SignalNoPattern
	}
	threshold := rng * bodyPercent / 100
	body := taAbs(close - open)
	bodyTop := open
	if close > open {
		bodyTop = close
	}
	bodyBottom := open + close - bodyTop
	upper := high - bodyTop
	lower := bodyBottom - low
	if body <= threshold && upper <= threshold && lower > 2*threshold {
		return SignalPattern
	}
	return SignalNoPattern
}

// CDLDragonflyDoji flags bars shaped like a dragonfly doji: open and close
// pinned near the high with a long lower shadow. bodyPercent bounds the body
// (and upper shadow) as a percentage of the bar range, exclusive 0..100.
func (k Kernel) CDLDragonflyDoji(open, high, low, close []TAFloat, bodyPercent TAFloat, output []TAFloat) error {
	if err := checkBodyPercent(bodyPercent); err != nil {
		return err
	}
	if err := checkData(len(open), CDLDragonflyDojiLookback()); err != nil {
		return err
	}
	if err := checkLengths(len(open), high, low, close, output); err != nil {
		return err
	}
	if err := k.checkNoNaN(open, high, low, close); err != nil {
		return err
	}

	for i := range open {
		output[i] = dragonflyDoji(open[i], high[i], low[i], close[i], bodyPercent)
	}
	return nil
}

// CDLDragonflyDojiInc classifies a single bar. The classifier carries no
// state across calls.
func (k Kernel) CDLDragonflyDojiInc(open, high, low, close, bodyPercent TAFloat) (TAFloat, error) {
	if err := checkBodyPercent(bodyPercent); err != nil {
		return 0, err
	}
	if err := k.checkNoNaNValues(open, high, low, close); err != nil {
		return 0, err
	}
	return dragonflyDoji(open, high, low, close, bodyPercent), nil
}
