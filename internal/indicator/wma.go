package indicator

import (
	"ta-enginev1/internal/model"
	"ta-enginev1/internal/ta"
)

// WMA calculates the linearly Weighted Moving Average: the newest close in
// the window carries weight period, the oldest weight 1. The window ring is
// the only carried state; each update re-weights from it in O(period).
type WMA struct {
	period  int
	win     *ta.Window
	count   int
	current float64
	scratch []float64 // reused ordered-window buffer
}

// NewWMA creates a new WMA indicator with the given period.
func NewWMA(period int) *WMA {
	win, _ := ta.NewWindow(period)
	return &WMA{
		period:  period,
		win:     win,
		scratch: make([]float64, 0, period),
	}
}

func (w *WMA) Name() string { return "WMA" }

func (w *WMA) Update(candle model.Candle) {
	w.win.Push(candle.Close)
	w.count++
	if w.count < w.period {
		return
	}
	w.scratch = w.win.Slice(w.scratch[:0])
	w.current, _ = kern.WMAInc(w.scratch, w.period)
}

func (w *WMA) Value() float64 { return w.current }
func (w *WMA) Ready() bool    { return w.count >= w.period }

// Peek computes what Value() would be with an additional candle without mutating state.
func (w *WMA) Peek(candle model.Candle) float64 {
	if w.count < w.period {
		return candle.Close
	}
	w.scratch = w.win.Slice(w.scratch[:0])
	shifted := append(w.scratch[1:len(w.scratch):len(w.scratch)], candle.Close)
	next, _ := kern.WMAInc(shifted, w.period)
	return next
}

// Reset clears the WMA state for reuse.
func (w *WMA) Reset() {
	w.win, _ = ta.NewWindow(w.period)
	w.count = 0
	w.current = 0
}

// Snapshot serializes the WMA state for checkpoint persistence.
func (w *WMA) Snapshot() IndicatorSnapshot {
	return IndicatorSnapshot{
		Type:    "WMA",
		Period:  w.period,
		Buf:     w.win.Slice(nil),
		Count:   w.count,
		Current: w.current,
	}
}

// RestoreFromSnapshot restores WMA state from a checkpoint.
func (w *WMA) RestoreFromSnapshot(snap IndicatorSnapshot) error {
	w.period = snap.Period
	w.count = snap.Count
	w.current = snap.Current
	w.win, _ = ta.NewWindow(snap.Period)
	for _, v := range snap.Buf {
		w.win.Push(v)
	}
	w.scratch = make([]float64, 0, snap.Period)
	return nil
}
