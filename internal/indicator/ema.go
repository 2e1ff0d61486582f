package indicator

import "ta-enginev1/internal/model"

// EMA calculates Exponential Moving Average.
// O(1) per update — no window storage needed. The first emitted value seeds
// from the SMA of the first period closes and already applies the recurrence
// to the seeding bar, so a stream replay matches a batch pass bit for bit.
type EMA struct {
	period  int
	current float64
	count   int
	sum     float64
}

// NewEMA creates a new EMA indicator with the given period.
func NewEMA(period int) *EMA {
	return &EMA{period: period}
}

func (e *EMA) Name() string { return "EMA" }

func (e *EMA) Update(candle model.Candle) {
	price := candle.Close
	e.count++

	if e.count <= e.period {
		// Accumulate for the SMA seed
		e.sum += price
		if e.count == e.period {
			seed := e.sum / float64(e.period)
			e.current, _ = kern.EMAInc(price, seed, e.period)
		}
		return
	}

	e.current, _ = kern.EMAInc(price, e.current, e.period)
}

func (e *EMA) Value() float64 { return e.current }
func (e *EMA) Ready() bool    { return e.count >= e.period }

// Peek computes what Value() would be with an additional candle without mutating state.
func (e *EMA) Peek(candle model.Candle) float64 {
	price := candle.Close
	if e.count < e.period {
		// Not fully ready — return partial estimate using the price
		return price
	}
	next, _ := kern.EMAInc(price, e.current, e.period)
	return next
}

// Reset clears the EMA state for reuse.
func (e *EMA) Reset() {
	e.current = 0
	e.count = 0
	e.sum = 0
}

// Snapshot serializes the EMA state for checkpoint persistence.
func (e *EMA) Snapshot() IndicatorSnapshot {
	return IndicatorSnapshot{
		Type:    "EMA",
		Period:  e.period,
		Current: e.current,
		Count:   e.count,
		Sum:     e.sum,
	}
}

// RestoreFromSnapshot restores EMA state from a checkpoint.
func (e *EMA) RestoreFromSnapshot(snap IndicatorSnapshot) error {
	e.period = snap.Period
	e.current = snap.Current
	e.count = snap.Count
	e.sum = snap.Sum
	return nil
}
