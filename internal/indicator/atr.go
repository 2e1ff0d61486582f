package indicator

import (
	"ta-enginev1/internal/model"
	"ta-enginev1/internal/ta"
)

// ATR calculates the Average True Range with Wilder smoothing. Carried state
// is just the previous close and the previous ATR, so updates are O(1).
type ATR struct {
	period    int
	count     int
	prevClose float64
	trSum     float64
	current   float64
}

// NewATR creates a new ATR indicator with the given period (typically 14).
func NewATR(period int) *ATR {
	return &ATR{period: period}
}

func (a *ATR) Name() string { return "ATR" }

func (a *ATR) Update(candle model.Candle) {
	a.count++

	if a.count == 1 {
		// First candle — true range needs a previous close
		a.prevClose = candle.Close
		return
	}

	if a.count <= a.period+1 {
		// Accumulation phase: seed with the mean of the first period TRs
		a.trSum += ta.TrueRange(candle.High, candle.Low, a.prevClose)
		a.prevClose = candle.Close
		if a.count == a.period+1 {
			a.current = a.trSum / float64(a.period)
		}
		return
	}

	a.current, _ = kern.ATRInc(candle.High, candle.Low, a.prevClose, a.current, a.period)
	a.prevClose = candle.Close
}

func (a *ATR) Value() float64 { return a.current }
func (a *ATR) Ready() bool    { return a.count > a.period }

// Peek computes what ATR would be with an additional candle without mutating state.
func (a *ATR) Peek(candle model.Candle) float64 {
	if a.count <= a.period {
		return a.current
	}
	next, _ := kern.ATRInc(candle.High, candle.Low, a.prevClose, a.current, a.period)
	return next
}

// Snapshot serializes the ATR state for checkpoint persistence.
func (a *ATR) Snapshot() IndicatorSnapshot {
	return IndicatorSnapshot{
		Type:      "ATR",
		Period:    a.period,
		Count:     a.count,
		PrevClose: a.prevClose,
		Sum:       a.trSum,
		Current:   a.current,
	}
}

// RestoreFromSnapshot restores ATR state from a checkpoint.
func (a *ATR) RestoreFromSnapshot(snap IndicatorSnapshot) error {
	a.period = snap.Period
	a.count = snap.Count
	a.prevClose = snap.PrevClose
	a.trSum = snap.Sum
	a.current = snap.Current
	return nil
}
