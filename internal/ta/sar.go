package ta

import "fmt"

// SARLookback returns the number of undefined leading outputs for the
// parabolic stop-and-reverse. One bar transition decides the initial trend.
func SARLookback() int { return 1 }

// SARState is the carried state of the parabolic SAR trend machine: the
// current trend direction, the stop level, the extreme price reached within
// the trend, the acceleration factor, and the prior bar needed for clamping.
// The machine has no terminal state; it runs for the life of the stream.
type SARState struct {
	Long     bool
	SAR      TAFloat
	EP       TAFloat
	AF       TAFloat
	PrevHigh TAFloat
	PrevLow  TAFloat
}

func checkSARParams(start, step, max TAFloat) error {
	if start <= 0 || step <= 0 || max <= 0 || start > max {
		return fmt.Errorf("%w: acceleration start=%v step=%v max=%v", ErrInvalidParameter, start, step, max)
	}
	return nil
}

// sarStep advances the trend machine by one bar and returns the stop level
// in effect for that bar. Remaining in trend moves the stop toward price by
// the acceleration factor and accelerates on each new extreme; a crossing
// flips the trend, resets the stop to the prior extreme, resets the factor,
// and the flip-triggering price becomes the new extreme.
func sarStep(high, low TAFloat, st SARState, start, step, max TAFloat) (TAFloat, SARState) {
	sar := st.SAR + st.AF*(st.EP-st.SAR)
	if st.Long {
		if sar > st.PrevLow {
			sar = st.PrevLow
		}
		if low < sar {
			st.Long = false
			sar = st.EP
			st.EP = low
			st.AF = start
		} else if high > st.EP {
			st.EP = high
			if st.AF += step; st.AF > max {
				st.AF = max
			}
		}
	} else {
		if sar < st.PrevHigh {
			sar = st.PrevHigh
		}
		if high > sar {
			st.Long = true
			sar = st.EP
			st.EP = high
			st.AF = start
		} else if low < st.EP {
			st.EP = low
			if st.AF += step; st.AF > max {
				st.AF = max
			}
		}
	}
	st.SAR = sar
	st.PrevHigh = high
	st.PrevLow = low
	return sar, st
}

// SAR computes the parabolic stop-and-reverse series. The initial trend is
// taken from the first bar transition's dominant directional movement; the
// first stop is the opposite extreme of the first bar.
func (k Kernel) SAR(high, low []TAFloat, accelStart, accelStep, accelMax TAFloat, output []TAFloat) error {
	if err := checkSARParams(accelStart, accelStep, accelMax); err != nil {
		return err
	}
	if err := checkData(len(high), SARLookback()); err != nil {
		return err
	}
	if err := checkLengths(len(high), low, output); err != nil {
		return err
	}
	if err := k.checkNoNaN(high, low); err != nil {
		return err
	}

	st, err := k.SeedSAR(high[:2], low[:2], accelStart)
	if err != nil {
		return err
	}
	output[1] = st.SAR
	for i := 2; i < len(high); i++ {
		output[i], st = sarStep(high[i], low[i], st, accelStart, accelStep, accelMax)
	}
	fillNaN(output, SARLookback())
	return nil
}

// SARInc advances the parabolic SAR trend machine by one bar, returning the
// stop for that bar and the updated machine state.
func (k Kernel) SARInc(high, low TAFloat, prev SARState, accelStart, accelStep, accelMax TAFloat) (TAFloat, SARState, error) {
	if err := checkSARParams(accelStart, accelStep, accelMax); err != nil {
		return 0, prev, err
	}
	if err := k.checkNoNaNValues(high, low, prev.SAR, prev.EP, prev.AF, prev.PrevHigh, prev.PrevLow); err != nil {
		return 0, prev, err
	}
	sar, st := sarStep(high, low, prev, accelStart, accelStep, accelMax)
	return sar, st, nil
}

// SeedSAR builds initial trend-machine state from the first two bars of a
// stream: uptrend if the upward directional movement dominates, stop at the
// opposite extreme of the first bar.
func (k Kernel) SeedSAR(high, low []TAFloat, accelStart TAFloat) (SARState, error) {
	if len(high) < 2 || len(low) < 2 {
		return SARState{}, fmt.Errorf("%w: SAR seed needs 2 bars", ErrInsufficientData)
	}
	if err := k.checkNoNaN(high[:2], low[:2]); err != nil {
		return SARState{}, err
	}

	long := high[1]-high[0] >= low[0]-low[1]
	st := SARState{
		Long:     long,
		AF:       accelStart,
		PrevHigh: high[1],
		PrevLow:  low[1],
	}
	if long {
		st.SAR = low[0]
		st.EP = high[1]
	} else {
		st.SAR = high[0]
		st.EP = low[1]
	}
	return st, nil
}
