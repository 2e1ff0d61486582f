package indicator

import (
	"math"

	"ta-enginev1/internal/model"
	"ta-enginev1/internal/ta"
)

// DefaultBBandsDev is the standard deviation multiplier used when a config
// does not override it.
const DefaultBBandsDev = 2.0

// BollingerBands calculates the three Bollinger bands over a rolling window.
// Carried state is the window sum and sum of squares; Value() reports the
// middle band, Upper() and Lower() the outer bands.
type BollingerBands struct {
	period  int
	devUp   float64
	devDown float64
	win     *ta.Window
	count   int
	sum     float64
	sumSq   float64
	upper   float64
	middle  float64
	lower   float64
}

// NewBollingerBands creates Bollinger bands with the given period and
// deviation multipliers (typically 20 and 2/2).
func NewBollingerBands(period int, devUp, devDown float64) *BollingerBands {
	win, _ := ta.NewWindow(period)
	return &BollingerBands{period: period, devUp: devUp, devDown: devDown, win: win}
}

func (b *BollingerBands) Name() string { return "BBANDS" }

func (b *BollingerBands) Update(candle model.Candle) {
	price := candle.Close
	if b.count < b.period {
		b.sum += price
		b.sumSq += price * price
		b.win.Push(price)
		b.count++
		if b.count == b.period {
			b.setBands(b.sum, b.sumSq)
		}
		return
	}

	up, mid, low, sum, sumSq, _ := kern.BBandsInc(price, b.win.Oldest(), b.sum, b.sumSq, b.period, b.devUp, b.devDown)
	b.win.Push(price)
	b.sum, b.sumSq = sum, sumSq
	b.upper, b.middle, b.lower = up, mid, low
	b.count++
}

func (b *BollingerBands) setBands(sum, sumSq float64) {
	mean := sum / float64(b.period)
	sd := math.Sqrt(sumSq/float64(b.period) - mean*mean)
	b.middle = mean
	b.upper = mean + b.devUp*sd
	b.lower = mean - b.devDown*sd
}

// Value returns the middle band (the SMA of the window).
func (b *BollingerBands) Value() float64 { return b.middle }
func (b *BollingerBands) Ready() bool    { return b.count >= b.period }

// Upper returns the upper band.
func (b *BollingerBands) Upper() float64 { return b.upper }

// Lower returns the lower band.
func (b *BollingerBands) Lower() float64 { return b.lower }

// Peek computes the middle band with an additional candle without mutating state.
func (b *BollingerBands) Peek(candle model.Candle) float64 {
	price := candle.Close
	if b.count < b.period {
		return (b.sum + price) / float64(b.count+1)
	}
	_, mid, _, _, _, _ := kern.BBandsInc(price, b.win.Oldest(), b.sum, b.sumSq, b.period, b.devUp, b.devDown)
	return mid
}

// Snapshot serializes the band state for checkpoint persistence.
func (b *BollingerBands) Snapshot() IndicatorSnapshot {
	return IndicatorSnapshot{
		Type:    "BBANDS",
		Period:  b.period,
		Buf:     b.win.Slice(nil),
		Count:   b.count,
		Sum:     b.sum,
		SumSq:   b.sumSq,
		Current: b.middle,
		Upper:   b.upper,
		Lower:   b.lower,
		DevUp:   b.devUp,
		DevDown: b.devDown,
	}
}

// RestoreFromSnapshot restores band state from a checkpoint.
func (b *BollingerBands) RestoreFromSnapshot(snap IndicatorSnapshot) error {
	b.period = snap.Period
	b.count = snap.Count
	b.sum = snap.Sum
	b.sumSq = snap.SumSq
	b.middle = snap.Current
	b.upper = snap.Upper
	b.lower = snap.Lower
	b.devUp = snap.DevUp
	b.devDown = snap.DevDown
	b.win, _ = ta.NewWindow(snap.Period)
	for _, v := range snap.Buf {
		b.win.Push(v)
	}
	return nil
}
