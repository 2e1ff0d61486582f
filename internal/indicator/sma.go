package indicator

import (
	"ta-enginev1/internal/model"
	"ta-enginev1/internal/ta"
)

// SMA calculates Simple Moving Average over a rolling window.
// The window ring supplies the evicted sample so each update is O(1).
type SMA struct {
	period  int
	win     *ta.Window
	count   int
	sum     float64
	current float64
}

// NewSMA creates a new SMA indicator with the given period.
func NewSMA(period int) *SMA {
	win, _ := ta.NewWindow(period)
	return &SMA{period: period, win: win}
}

func (s *SMA) Name() string { return "SMA" }

func (s *SMA) Update(candle model.Candle) {
	price := candle.Close
	if s.count < s.period {
		// Accumulate the first full window
		s.sum += price
		s.win.Push(price)
		s.count++
		if s.count == s.period {
			s.current = s.sum / float64(s.period)
		}
		return
	}

	next, _ := kern.SMAInc(price, s.win.Oldest(), s.current, s.period) // period validated at config time
	s.win.Push(price)
	s.current = next
	s.count++
}

func (s *SMA) Value() float64 { return s.current }
func (s *SMA) Ready() bool    { return s.count >= s.period }

// Peek computes what Value() would be with an additional candle without mutating state.
func (s *SMA) Peek(candle model.Candle) float64 {
	price := candle.Close
	if s.count < s.period {
		// Not fully ready — return partial average including this price
		return (s.sum + price) / float64(s.count+1)
	}
	next, _ := kern.SMAInc(price, s.win.Oldest(), s.current, s.period)
	return next
}

// Reset clears the SMA state for reuse.
func (s *SMA) Reset() {
	s.win, _ = ta.NewWindow(s.period)
	s.count = 0
	s.sum = 0
	s.current = 0
}

// Snapshot serializes the SMA state for checkpoint persistence.
func (s *SMA) Snapshot() IndicatorSnapshot {
	return IndicatorSnapshot{
		Type:    "SMA",
		Period:  s.period,
		Buf:     s.win.Slice(nil),
		Count:   s.count,
		Sum:     s.sum,
		Current: s.current,
	}
}

// RestoreFromSnapshot restores SMA state from a checkpoint.
func (s *SMA) RestoreFromSnapshot(snap IndicatorSnapshot) error {
	s.period = snap.Period
	s.count = snap.Count
	s.sum = snap.Sum
	s.current = snap.Current
	s.win, _ = ta.NewWindow(snap.Period)
	for _, v := range snap.Buf {
		s.win.Push(v)
	}
	return nil
}
