package indicator

import (
	"context"
	"fmt"

	"ta-enginev1/internal/model"
	"ta-enginev1/internal/ta"
)

// IndicatorConfig specifies a single indicator to compute.
type IndicatorConfig struct {
	Type   string // "SMA", "EMA", "WMA", "RSI", "ATR", "SAR", "BBANDS", "MAX"
	Period int    // ignored for SAR

	// Bollinger deviation multipliers; zero means DefaultBBandsDev.
	DevUp   float64
	DevDown float64
}

// name is the published result name, e.g. "SMA_20" or "SAR".
func (c IndicatorConfig) name() string {
	if c.Period <= 0 {
		return c.Type
	}
	return c.Type + "_" + model.Itoa(c.Period)
}

// Validate checks the config against the kernel parameter rules, so a bad
// period fails at startup rather than silently producing zeros per candle.
func (c IndicatorConfig) Validate() error {
	var err error
	switch c.Type {
	case "SMA":
		_, err = ta.SMALookback(c.Period)
	case "EMA":
		_, err = ta.EMALookback(c.Period)
	case "WMA":
		_, err = ta.WMALookback(c.Period)
	case "RSI":
		_, err = ta.RSILookback(c.Period)
	case "ATR":
		_, err = ta.ATRLookback(c.Period)
	case "BBANDS":
		_, err = ta.BBandsLookback(c.Period)
		if err == nil && (c.DevUp < 0 || c.DevDown < 0) {
			err = fmt.Errorf("%w: negative deviation multiplier", ta.ErrInvalidParameter)
		}
	case "MAX":
		_, err = ta.MaxLookback(c.Period)
	case "SAR":
		// fixed default acceleration parameters, nothing period-shaped to check
	default:
		err = fmt.Errorf("%w: unknown indicator type %q", ta.ErrInvalidParameter, c.Type)
	}
	return err
}

// TFIndicatorConfig groups indicator configs for a specific timeframe.
type TFIndicatorConfig struct {
	TF         int // timeframe in seconds
	Indicators []IndicatorConfig
}

// ValidateConfigs validates every indicator config across all TFs.
func ValidateConfigs(configs []TFIndicatorConfig) error {
	seen := make(map[int]bool, len(configs))
	for _, tfCfg := range configs {
		if tfCfg.TF <= 0 {
			return fmt.Errorf("%w: timeframe %d seconds", ta.ErrInvalidParameter, tfCfg.TF)
		}
		if seen[tfCfg.TF] {
			return fmt.Errorf("%w: duplicate timeframe %d", ta.ErrInvalidParameter, tfCfg.TF)
		}
		seen[tfCfg.TF] = true
		for _, ic := range tfCfg.Indicators {
			if err := ic.Validate(); err != nil {
				return fmt.Errorf("tf=%d %s: %w", tfCfg.TF, ic.Type, err)
			}
		}
	}
	return nil
}

// symbolIndicators holds live indicator instances for one symbol within a TF.
type symbolIndicators struct {
	indicators []Indicator
	configs    []IndicatorConfig
}

// Engine computes multiple indicators across multiple TFs for multiple
// symbols. Designed for single-goroutine usage — no locks needed.
type Engine struct {
	configs []TFIndicatorConfig
	tfIndex map[int]int // TF seconds → index into configs/state

	// state[tfIdx][symbolKey] → *symbolIndicators
	state []map[string]*symbolIndicators
}

// NewEngine creates an indicator engine with the given per-TF indicator configs.
func NewEngine(configs []TFIndicatorConfig) *Engine {
	state := make([]map[string]*symbolIndicators, len(configs))
	tfIndex := make(map[int]int, len(configs))
	for i := range state {
		state[i] = make(map[string]*symbolIndicators, 64)
		tfIndex[configs[i].TF] = i
	}
	return &Engine{
		configs: configs,
		tfIndex: tfIndex,
		state:   state,
	}
}

// Process takes a finalized TF candle and computes all indicators for that
// TF + symbol. Returns indicator results (may include not-ready indicators
// with Ready=false).
func (e *Engine) Process(tfc model.TFCandle) []model.IndicatorResult {
	tfIdx, ok := e.tfIndex[tfc.TF]
	if !ok {
		return nil // TF not configured for indicators
	}

	key := tfc.Key()
	si, exists := e.state[tfIdx][key]
	if !exists {
		// First candle for this symbol + TF — create indicator instances
		si = e.createSymbolIndicators(tfIdx)
		e.state[tfIdx][key] = si
	}

	candle := tfc.Candle()

	// Update all indicators and collect results (one pass)
	results := make([]model.IndicatorResult, 0, len(si.indicators))
	for i, ind := range si.indicators {
		ind.Update(candle)
		results = append(results, model.IndicatorResult{
			Name:     si.configs[i].name(),
			Symbol:   tfc.Symbol,
			Exchange: tfc.Exchange,
			TF:       tfc.TF,
			Value:    ind.Value(),
			TS:       tfc.TS,
			Ready:    ind.Ready(),
		})
	}

	return results
}

// ProcessPeek computes live indicator values for a forming TF candle using
// Peek(). Does NOT mutate indicator state — safe for streaming updates every
// second. Returns nil if the symbol hasn't been seen before (need at least
// one Process first).
func (e *Engine) ProcessPeek(tfc model.TFCandle) []model.IndicatorResult {
	tfIdx, ok := e.tfIndex[tfc.TF]
	if !ok {
		return nil
	}

	si, exists := e.state[tfIdx][tfc.Key()]
	if !exists {
		// Symbol hasn't been seeded by a completed candle yet — skip peek.
		// The service calls Process() on completed candles first, so this is safe.
		return nil
	}

	candle := tfc.Candle()
	results := make([]model.IndicatorResult, 0, len(si.indicators))
	for i, ind := range si.indicators {
		results = append(results, model.IndicatorResult{
			Name:     si.configs[i].name(),
			Symbol:   tfc.Symbol,
			Exchange: tfc.Exchange,
			TF:       tfc.TF,
			Value:    ind.Peek(candle),
			TS:       tfc.TS,
			Ready:    ind.Ready(),
			Live:     true,
		})
	}
	return results
}

// Run consumes TF candles and emits indicator results. Blocks until ctx done.
func (e *Engine) Run(ctx context.Context, tfCandleCh <-chan model.TFCandle, resultCh chan<- model.IndicatorResult) {
	for {
		select {
		case <-ctx.Done():
			return
		case tfc, ok := <-tfCandleCh:
			if !ok {
				return
			}
			if tfc.Forming {
				continue // skip forming candles
			}
			results := e.Process(tfc)
			for _, r := range results {
				select {
				case resultCh <- r:
				default:
					// drop if channel full
				}
			}
		}
	}
}

// createSymbolIndicators creates fresh indicator instances for a TF config.
func (e *Engine) createSymbolIndicators(tfIdx int) *symbolIndicators {
	cfg := e.configs[tfIdx]
	inds := make([]Indicator, len(cfg.Indicators))
	for i, ic := range cfg.Indicators {
		inds[i] = newIndicator(ic)
	}
	return &symbolIndicators{
		indicators: inds,
		configs:    cfg.Indicators,
	}
}

// newIndicator builds an indicator instance from its config. Configs are
// validated up front, so an unknown type here falls back to SMA.
func newIndicator(ic IndicatorConfig) Indicator {
	switch ic.Type {
	case "SMA":
		return NewSMA(ic.Period)
	case "EMA":
		return NewEMA(ic.Period)
	case "WMA":
		return NewWMA(ic.Period)
	case "RSI":
		return NewRSI(ic.Period)
	case "ATR":
		return NewATR(ic.Period)
	case "SAR":
		return NewSAR(SARAccelStart, SARAccelStep, SARAccelMax)
	case "BBANDS":
		devUp, devDown := ic.DevUp, ic.DevDown
		if devUp == 0 {
			devUp = DefaultBBandsDev
		}
		if devDown == 0 {
			devDown = DefaultBBandsDev
		}
		return NewBollingerBands(ic.Period, devUp, devDown)
	case "MAX":
		return NewRollingMax(ic.Period)
	default:
		return NewSMA(ic.Period) // fallback
	}
}
