package indicator

import (
	"ta-enginev1/internal/model"
	"ta-enginev1/internal/ta"
)

// Default parabolic SAR acceleration parameters.
const (
	SARAccelStart = 0.02
	SARAccelStep  = 0.02
	SARAccelMax   = 0.2
)

// SAR runs the parabolic stop-and-reverse trend machine. The first bar only
// records extremes; the second seeds the trend direction and stop; every bar
// after that is a single O(1) machine step.
type SAR struct {
	start, step, max float64
	count            int
	firstHigh        float64
	firstLow         float64
	st               ta.SARState
	current          float64
}

// NewSAR creates a new parabolic SAR with the given acceleration parameters.
func NewSAR(start, step, max float64) *SAR {
	return &SAR{start: start, step: step, max: max}
}

func (s *SAR) Name() string { return "SAR" }

func (s *SAR) Update(candle model.Candle) {
	s.count++

	if s.count == 1 {
		s.firstHigh = candle.High
		s.firstLow = candle.Low
		return
	}

	if s.count == 2 {
		st, err := kern.SeedSAR(
			[]float64{s.firstHigh, candle.High},
			[]float64{s.firstLow, candle.Low},
			s.start,
		)
		if err != nil {
			return
		}
		s.st = st
		s.current = st.SAR
		return
	}

	s.current, s.st, _ = kern.SARInc(candle.High, candle.Low, s.st, s.start, s.step, s.max)
}

func (s *SAR) Value() float64 { return s.current }
func (s *SAR) Ready() bool    { return s.count >= 2 }

// Long reports the current trend direction. Only meaningful once Ready.
func (s *SAR) Long() bool { return s.st.Long }

// Peek computes the stop for this candle without mutating the trend machine.
func (s *SAR) Peek(candle model.Candle) float64 {
	if s.count < 2 {
		return s.current
	}
	sar, _, _ := kern.SARInc(candle.High, candle.Low, s.st, s.start, s.step, s.max)
	return sar
}

// Snapshot serializes the SAR state for checkpoint persistence.
func (s *SAR) Snapshot() IndicatorSnapshot {
	snap := IndicatorSnapshot{
		Type:       "SAR",
		Count:      s.count,
		Current:    s.current,
		AccelStart: s.start,
		AccelStep:  s.step,
		AccelMax:   s.max,
		Long:       s.st.Long,
		EP:         s.st.EP,
		AF:         s.st.AF,
		PrevHigh:   s.st.PrevHigh,
		PrevLow:    s.st.PrevLow,
		SARStop:    s.st.SAR,
	}
	if s.count == 1 {
		// Seed not built yet; the first bar's extremes are the whole state
		snap.PrevHigh = s.firstHigh
		snap.PrevLow = s.firstLow
	}
	return snap
}

// RestoreFromSnapshot restores SAR state from a checkpoint.
func (s *SAR) RestoreFromSnapshot(snap IndicatorSnapshot) error {
	s.start = snap.AccelStart
	s.step = snap.AccelStep
	s.max = snap.AccelMax
	s.count = snap.Count
	s.current = snap.Current
	if s.count == 1 {
		s.firstHigh = snap.PrevHigh
		s.firstLow = snap.PrevLow
		return nil
	}
	s.st = ta.SARState{
		Long:     snap.Long,
		SAR:      snap.SARStop,
		EP:       snap.EP,
		AF:       snap.AF,
		PrevHigh: snap.PrevHigh,
		PrevLow:  snap.PrevLow,
	}
	return nil
}
