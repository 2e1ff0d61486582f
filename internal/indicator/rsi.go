package indicator

import "ta-enginev1/internal/model"

// RSI calculates the Relative Strength Index using Wilder's smoothing method.
// Update is O(1) per candle — no history scans.
type RSI struct {
	period    int
	count     int
	prevClose float64
	avgGain   float64
	avgLoss   float64
	current   float64
}

// NewRSI creates a new RSI indicator with the given period (typically 14).
func NewRSI(period int) *RSI {
	return &RSI{period: period}
}

func (r *RSI) Name() string { return "RSI" }

func (r *RSI) Update(candle model.Candle) {
	price := candle.Close
	r.count++

	if r.count == 1 {
		// First candle — just record price, no delta yet
		r.prevClose = price
		return
	}

	if r.count <= r.period+1 {
		// Accumulation phase: build the initial Wilder averages
		delta := price - r.prevClose
		if delta > 0 {
			r.avgGain += delta
		} else {
			r.avgLoss -= delta
		}
		r.prevClose = price

		if r.count == r.period+1 {
			r.avgGain /= float64(r.period)
			r.avgLoss /= float64(r.period)
			r.current = rsiValue(r.avgGain, r.avgLoss)
		}
		return
	}

	rsi, ag, al, _ := kern.RSIInc(price, r.prevClose, r.avgGain, r.avgLoss, r.period)
	r.prevClose = price
	r.avgGain = ag
	r.avgLoss = al
	r.current = rsi
}

func (r *RSI) Value() float64 { return r.current }
func (r *RSI) Ready() bool    { return r.count > r.period }

// Peek computes what RSI would be with an additional candle without mutating state.
func (r *RSI) Peek(candle model.Candle) float64 {
	if r.count <= r.period {
		return r.current
	}
	rsi, _, _, _ := kern.RSIInc(candle.Close, r.prevClose, r.avgGain, r.avgLoss, r.period)
	return rsi
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - (100.0 / (1.0 + rs))
}

// Snapshot serializes the RSI state for checkpoint persistence.
func (r *RSI) Snapshot() IndicatorSnapshot {
	return IndicatorSnapshot{
		Type:      "RSI",
		Period:    r.period,
		Count:     r.count,
		PrevClose: r.prevClose,
		AvgGain:   r.avgGain,
		AvgLoss:   r.avgLoss,
		Current:   r.current,
	}
}

// RestoreFromSnapshot restores RSI state from a checkpoint.
func (r *RSI) RestoreFromSnapshot(snap IndicatorSnapshot) error {
	r.period = snap.Period
	r.count = snap.Count
	r.prevClose = snap.PrevClose
	r.avgGain = snap.AvgGain
	r.avgLoss = snap.AvgLoss
	r.current = snap.Current
	return nil
}
