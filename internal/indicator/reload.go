package indicator

import "log"

// ReloadConfigs updates the indicator engine with new configurations.
// It preserves state for indicators that already exist and only creates
// new instances for genuinely new indicators. This prevents losing
// accumulated state (warmup history) when adding a new indicator.
// Returns the number of preserved and new indicator instances.
func (e *Engine) ReloadConfigs(newConfigs []TFIndicatorConfig) (preserved, created int) {
	// Build lookup of old configs + state by TF
	oldCfgByTF := make(map[int]TFIndicatorConfig)
	oldStateByTF := make(map[int]map[string]*symbolIndicators)
	for i, cfg := range e.configs {
		oldCfgByTF[cfg.TF] = cfg
		oldStateByTF[cfg.TF] = e.state[i]
	}

	// Build new state array
	newState := make([]map[string]*symbolIndicators, len(newConfigs))
	for i, newCfg := range newConfigs {
		oldCfg, tfExists := oldCfgByTF[newCfg.TF]
		oldTFState := oldStateByTF[newCfg.TF]

		if !tfExists || oldTFState == nil {
			// Brand-new TF — cold-start
			newState[i] = make(map[string]*symbolIndicators, 64)
			created++
			log.Printf("[reload] TF=%d: new timeframe, cold-starting", newCfg.TF)
			continue
		}

		// TF exists — check if indicators are identical (fast path)
		if indicatorSetsEqual(oldCfg.Indicators, newCfg.Indicators) {
			newState[i] = oldTFState
			preserved += len(oldTFState)
			log.Printf("[reload] TF=%d: unchanged, preserved %d symbol states", newCfg.TF, len(oldTFState))
			continue
		}

		// Indicator set changed — migrate per-symbol state
		migrated := make(map[string]*symbolIndicators, len(oldTFState))
		for symbolKey, oldSI := range oldTFState {
			migrated[symbolKey] = migrateSymbolIndicators(oldSI, newCfg.Indicators)
			preserved++
		}
		newState[i] = migrated
		created++ // mark that new indicators need backfill
		log.Printf("[reload] TF=%d: migrated %d symbol states (added new indicators)", newCfg.TF, len(migrated))
	}

	e.configs = newConfigs
	e.state = newState

	// Rebuild TF index for O(1) lookup
	e.tfIndex = make(map[int]int, len(newConfigs))
	for i, cfg := range newConfigs {
		e.tfIndex[cfg.TF] = i
	}

	log.Printf("[reload] config reloaded: %d configs, %d preserved, %d new",
		len(newConfigs), preserved, created)

	return preserved, created
}

// migrateSymbolIndicators creates a new symbolIndicators for the new config,
// preserving state from existing indicators that match by Type+Period.
func migrateSymbolIndicators(oldSI *symbolIndicators, newConfigs []IndicatorConfig) *symbolIndicators {
	// Build lookup of old indicators by "TYPE_PERIOD"
	oldByKey := make(map[string]Indicator, len(oldSI.indicators))
	for i, cfg := range oldSI.configs {
		oldByKey[cfg.name()] = oldSI.indicators[i]
	}

	// Build new indicator instances, reusing old ones where possible
	newInds := make([]Indicator, len(newConfigs))
	for i, cfg := range newConfigs {
		if existing, ok := oldByKey[cfg.name()]; ok {
			newInds[i] = existing // preserve accumulated state
		} else {
			newInds[i] = newIndicator(cfg)
		}
	}

	return &symbolIndicators{
		indicators: newInds,
		configs:    newConfigs,
	}
}

// findConfig returns the TFIndicatorConfig for the given TF, or empty if not found.
func (e *Engine) findConfig(tf int) TFIndicatorConfig {
	if i, ok := e.tfIndex[tf]; ok {
		return e.configs[i]
	}
	return TFIndicatorConfig{}
}

// indicatorSetsEqual checks if two indicator config slices have the exact
// same set of indicators (order-independent).
func indicatorSetsEqual(a, b []IndicatorConfig) bool {
	if len(a) != len(b) {
		return false
	}
	setA := make(map[string]bool, len(a))
	for _, ic := range a {
		setA[ic.name()] = true
	}
	for _, ic := range b {
		if !setA[ic.name()] {
			return false
		}
	}
	return true
}
