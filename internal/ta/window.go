package ta

import "fmt"

// Window is a fixed-capacity ring of the most recent raw samples. It is the
// carried state for incremental kernels whose recurrence must evict the
// sample leaving the window (SMA, WMA, VAR, rolling extrema, CORREL).
// Callers own the Window between incremental calls; kernels never retain it.
type Window struct {
	buf   []TAFloat
	idx   int // next write position
	count int // total samples pushed
}

// NewWindow creates a ring holding the last capacity samples.
func NewWindow(capacity int) (*Window, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("%w: window capacity %d", ErrInvalidParameter, capacity)
	}
	return &Window{buf: make([]TAFloat, capacity)}, nil
}

// Push appends v, returning the sample it displaced. The displaced value is
// only meaningful once Full reports true.
func (w *Window) Push(v TAFloat) (dropped TAFloat) {
	dropped = w.buf[w.idx]
	w.buf[w.idx] = v
	w.idx = (w.idx + 1) % len(w.buf)
	w.count++
	return dropped
}

// Full reports whether the ring has wrapped at least once.
func (w *Window) Full() bool { return w.count >= len(w.buf) }

// Len returns the number of live samples, at most the capacity.
func (w *Window) Len() int {
	if w.count < len(w.buf) {
		return w.count
	}
	return len(w.buf)
}

// Oldest returns the sample about to be displaced by the next Push.
func (w *Window) Oldest() TAFloat { return w.buf[w.idx] }

// Slice appends the live samples, oldest first, to dst and returns it.
func (w *Window) Slice(dst []TAFloat) []TAFloat {
	n := w.Len()
	start := 0
	if w.Full() {
		start = w.idx
	}
	for i := 0; i < n; i++ {
		dst = append(dst, w.buf[(start+i)%len(w.buf)])
	}
	return dst
}

// MonotonicWindow tracks the rolling extremum of the last period samples in
// O(1) amortized time. Candidates live in a monotonic deque: a new sample
// evicts every older candidate it dominates, so the front is always the
// current extremum and a departing extremum is replaced without rescanning
// the window.
type MonotonicWindow struct {
	period int
	max    bool // true: rolling maximum; false: rolling minimum
	pos    []int
	val    []TAFloat
	head   int
	tail   int // one past the last live entry
	seen   int
}

// NewMonotonicWindow creates rolling-extremum state for the given period.
// max selects maximum tracking; false tracks the minimum.
func NewMonotonicWindow(period int, max bool) (*MonotonicWindow, error) {
	if err := checkPeriod(period, 2); err != nil {
		return nil, err
	}
	return &MonotonicWindow{
		period: period,
		max:    max,
		pos:    make([]int, period+1),
		val:    make([]TAFloat, period+1),
	}, nil
}

// Push admits one sample and returns the extremum of the current window.
// The value is only meaningful once Ready reports true.
func (m *MonotonicWindow) Push(v TAFloat) TAFloat {
	// Drop dominated candidates from the back.
	for m.tail > m.head {
		last := m.val[(m.tail-1)%len(m.val)]
		if (m.max && last > v) || (!m.max && last < v) {
			break
		}
		m.tail--
	}
	m.pos[m.tail%len(m.pos)] = m.seen
	m.val[m.tail%len(m.val)] = v
	m.tail++
	m.seen++

	// Expire the front candidate once it leaves the window.
	if m.pos[m.head%len(m.pos)] <= m.seen-1-m.period {
		m.head++
	}
	return m.val[m.head%len(m.val)]
}

// Ready reports whether a full window has been admitted.
func (m *MonotonicWindow) Ready() bool { return m.seen >= m.period }

// Extremum returns the current window extremum without admitting a sample.
func (m *MonotonicWindow) Extremum() TAFloat { return m.val[m.head%len(m.val)] }
