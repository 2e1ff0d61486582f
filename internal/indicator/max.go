package indicator

import (
	"ta-enginev1/internal/model"
	"ta-enginev1/internal/ta"
)

// RollingMax tracks the highest close of the last period candles. The
// monotonic candidate deque makes updates O(1); the raw window ring is kept
// alongside it only so snapshots can rebuild the deque on restore.
type RollingMax struct {
	period  int
	count   int
	win     *ta.Window
	mono    *ta.MonotonicWindow
	current float64
}

// NewRollingMax creates a rolling maximum over the given period.
func NewRollingMax(period int) *RollingMax {
	win, _ := ta.NewWindow(period)
	mono, _ := ta.NewMonotonicWindow(period, true)
	return &RollingMax{period: period, win: win, mono: mono}
}

func (m *RollingMax) Name() string { return "MAX" }

func (m *RollingMax) Update(candle model.Candle) {
	price := candle.Close
	m.win.Push(price)
	ext, _ := kern.MaxInc(m.mono, price)
	m.count++
	if m.count >= m.period {
		m.current = ext
	}
}

func (m *RollingMax) Value() float64 { return m.current }
func (m *RollingMax) Ready() bool    { return m.count >= m.period }

// Peek computes the window maximum with an additional candle without
// mutating state. O(period) rescan; Peek is off the hot path.
func (m *RollingMax) Peek(candle model.Candle) float64 {
	samples := m.win.Slice(nil)
	if len(samples) == m.period {
		samples = samples[1:]
	}
	max := candle.Close
	for _, v := range samples {
		if v > max {
			max = v
		}
	}
	return max
}

// Snapshot serializes the rolling-max state for checkpoint persistence.
func (m *RollingMax) Snapshot() IndicatorSnapshot {
	return IndicatorSnapshot{
		Type:    "MAX",
		Period:  m.period,
		Buf:     m.win.Slice(nil),
		Count:   m.count,
		Current: m.current,
	}
}

// RestoreFromSnapshot rebuilds the candidate deque from the raw window.
func (m *RollingMax) RestoreFromSnapshot(snap IndicatorSnapshot) error {
	m.period = snap.Period
	m.count = snap.Count
	m.current = snap.Current
	m.win, _ = ta.NewWindow(snap.Period)
	m.mono, _ = ta.NewMonotonicWindow(snap.Period, true)
	for _, v := range snap.Buf {
		m.win.Push(v)
		m.mono.Push(v)
	}
	return nil
}
