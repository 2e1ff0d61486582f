package indicator

import (
	"encoding/json"
	"fmt"
	"log"

	"ta-enginev1/internal/model"
)

// Snapshottable is implemented by indicators that support state serialization.
type Snapshottable interface {
	Indicator
	Snapshot() IndicatorSnapshot
	RestoreFromSnapshot(snap IndicatorSnapshot) error
}

// IndicatorSnapshot holds the serialized state of a single indicator
// instance. One flat struct covers every family; each family writes only the
// fields its carried state needs.
type IndicatorSnapshot struct {
	Type   string `json:"type"`             // "SMA", "EMA", "WMA", "RSI", "ATR", "SAR", "BBANDS", "MAX"
	Period int    `json:"period,omitempty"` // indicator period (zero for SAR)

	// Windowed state: raw samples oldest-first plus running aggregates
	Buf     []float64 `json:"buf,omitempty"`
	Count   int       `json:"count"`
	Sum     float64   `json:"sum,omitempty"`
	SumSq   float64   `json:"sum_sq,omitempty"`
	Current float64   `json:"current"`

	// RSI / ATR fields
	PrevClose float64 `json:"prev_close,omitempty"`
	AvgGain   float64 `json:"avg_gain,omitempty"`
	AvgLoss   float64 `json:"avg_loss,omitempty"`

	// Bollinger fields
	Upper   float64 `json:"upper,omitempty"`
	Lower   float64 `json:"lower,omitempty"`
	DevUp   float64 `json:"dev_up,omitempty"`
	DevDown float64 `json:"dev_down,omitempty"`

	// SAR trend-machine fields
	AccelStart float64 `json:"accel_start,omitempty"`
	AccelStep  float64 `json:"accel_step,omitempty"`
	AccelMax   float64 `json:"accel_max,omitempty"`
	Long       bool    `json:"long,omitempty"`
	SARStop    float64 `json:"sar_stop,omitempty"`
	EP         float64 `json:"ep,omitempty"`
	AF         float64 `json:"af,omitempty"`
	PrevHigh   float64 `json:"prev_high,omitempty"`
	PrevLow    float64 `json:"prev_low,omitempty"`
}

// SymbolSnapshot holds indicator snapshots for a single symbol within a TF.
type SymbolSnapshot struct {
	Symbol     string              `json:"symbol"`
	Exchange   string              `json:"exchange"`
	TF         int                 `json:"tf"`
	Indicators []IndicatorSnapshot `json:"indicators"`
}

// EngineSnapshot holds the full state of the indicator engine.
type EngineSnapshot struct {
	StreamID string           `json:"stream_id"` // Redis Stream ID at checkpoint time
	Symbols  []SymbolSnapshot `json:"symbols"`
	Version  int              `json:"version"` // schema version for forward compat
}

// MarshalJSON serializes the engine snapshot to JSON.
func (es *EngineSnapshot) MarshalJSON() ([]byte, error) {
	type Alias EngineSnapshot
	return json.Marshal((*Alias)(es))
}

// UnmarshalJSON deserializes the engine snapshot from JSON.
func (es *EngineSnapshot) UnmarshalJSON(data []byte) error {
	type Alias EngineSnapshot
	return json.Unmarshal(data, (*Alias)(es))
}

// SnapshotEngine captures the full state of an indicator Engine.
func SnapshotEngine(e *Engine, streamID string) (*EngineSnapshot, error) {
	snap := &EngineSnapshot{
		StreamID: streamID,
		Version:  1,
	}

	for tfIdx, cfg := range e.configs {
		for symbolKey, si := range e.state[tfIdx] {
			ss := SymbolSnapshot{
				Symbol:     symbolKey,
				TF:         cfg.TF,
				Indicators: make([]IndicatorSnapshot, 0, len(si.indicators)),
			}
			// The key format from TFCandle.Key() is "exchange:symbol"
			for i := range symbolKey {
				if symbolKey[i] == ':' {
					ss.Exchange = symbolKey[:i]
					ss.Symbol = symbolKey[i+1:]
					break
				}
			}

			for _, ind := range si.indicators {
				sn, ok := ind.(Snapshottable)
				if !ok {
					return nil, fmt.Errorf("indicator %s does not implement Snapshottable", ind.Name())
				}
				ss.Indicators = append(ss.Indicators, sn.Snapshot())
			}
			snap.Symbols = append(snap.Symbols, ss)
		}
	}

	return snap, nil
}

// RestoreEngine rebuilds an indicator Engine from a snapshot.
// It is tolerant of config changes — indicators are matched by Type+Period
// rather than by index. Matching indicators get their state restored; new
// indicators start fresh (cold). Removed indicators are silently skipped.
func RestoreEngine(configs []TFIndicatorConfig, snap *EngineSnapshot) (*Engine, error) {
	e := NewEngine(configs)

	for _, ss := range snap.Symbols {
		tfIdx, ok := e.tfIndex[ss.TF]
		if !ok {
			continue // TF no longer configured — skip
		}

		si := e.createSymbolIndicators(tfIdx)

		// Build a lookup: "SMA:9" → IndicatorSnapshot for fast matching
		snapLookup := make(map[string]IndicatorSnapshot, len(ss.Indicators))
		for _, indSnap := range ss.Indicators {
			lookupKey := indSnap.Type + ":" + model.Itoa(indSnap.Period)
			snapLookup[lookupKey] = indSnap
		}

		// Match current indicators against snapshot by Type+Period
		restored, cold := 0, 0
		for i, ind := range si.indicators {
			cfg := si.configs[i]
			lookupKey := cfg.Type + ":" + model.Itoa(cfg.Period)

			indSnap, found := snapLookup[lookupKey]
			if !found {
				cold++
				continue // new indicator — stays fresh/zero
			}

			sn, ok := ind.(Snapshottable)
			if !ok {
				cold++
				continue
			}
			if err := sn.RestoreFromSnapshot(indSnap); err != nil {
				// Non-fatal: leave cold
				cold++
				continue
			}
			restored++
		}

		if cold > 0 {
			log.Printf("[restorer] TF=%d symbol=%s: restored %d, cold-started %d indicators",
				ss.TF, ss.Symbol, restored, cold)
		}

		// Reconstruct the symbol key
		key := ss.Symbol
		if ss.Exchange != "" {
			key = ss.Exchange + ":" + ss.Symbol
		}
		e.state[tfIdx][key] = si
	}

	return e, nil
}
