package indicator

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"ta-enginev1/internal/model"
)

func makeTFCandleSnap(symbol string, tf int, close float64) model.TFCandle {
	return model.TFCandle{
		Symbol:   symbol,
		Exchange: "BINANCE",
		TF:       tf,
		TS:       time.Now().UTC(),
		Open:     close,
		High:     close + 1,
		Low:      close - 1,
		Close:    close,
		Volume:   100,
		Count:    60,
		Forming:  false,
	}
}

// roundTrip snapshots an indicator, restores it into a fresh instance, and
// verifies the pair stays bit-identical through further updates.
func roundTrip(t *testing.T, label string, orig, fresh Snapshottable, warm, cont []model.Candle) {
	t.Helper()

	for _, c := range warm {
		orig.Update(c)
	}

	snap := orig.Snapshot()

	// Snapshots travel through JSON on the wire; exercise that too
	raw, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("%s: marshal failed: %v", label, err)
	}
	var decoded IndicatorSnapshot
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("%s: unmarshal failed: %v", label, err)
	}

	if err := fresh.RestoreFromSnapshot(decoded); err != nil {
		t.Fatalf("%s: restore failed: %v", label, err)
	}

	if orig.Value() != fresh.Value() {
		t.Errorf("%s: value mismatch: original=%.6f restored=%.6f", label, orig.Value(), fresh.Value())
	}
	if orig.Ready() != fresh.Ready() {
		t.Errorf("%s: ready mismatch: original=%v restored=%v", label, orig.Ready(), fresh.Ready())
	}

	for i, c := range cont {
		orig.Update(c)
		fresh.Update(c)
		if math.Abs(orig.Value()-fresh.Value()) > 1e-10 {
			t.Errorf("%s: post-restore divergence at candle %d: original=%.6f restored=%.6f",
				label, i, orig.Value(), fresh.Value())
		}
	}
}

func closeCandles(prices ...float64) []model.Candle {
	out := make([]model.Candle, len(prices))
	for i, p := range prices {
		out[i] = candle(p)
	}
	return out
}

func TestSnapshot_SMA_RoundTrip(t *testing.T) {
	roundTrip(t, "SMA", NewSMA(5), NewSMA(5),
		closeCandles(100, 101, 102, 103, 104, 105, 106),
		closeCandles(107, 108, 109))
}

func TestSnapshot_EMA_RoundTrip(t *testing.T) {
	roundTrip(t, "EMA", NewEMA(5), NewEMA(5),
		closeCandles(100, 101, 102, 103, 104, 105, 106),
		closeCandles(107, 108, 109))
}

func TestSnapshot_WMA_RoundTrip(t *testing.T) {
	roundTrip(t, "WMA", NewWMA(5), NewWMA(5),
		closeCandles(100, 101, 102, 103, 104, 105, 106),
		closeCandles(107, 108, 109))
}

func TestSnapshot_RSI_RoundTrip(t *testing.T) {
	roundTrip(t, "RSI", NewRSI(14), NewRSI(14),
		closeCandles(
			100, 101, 100.5, 102, 101.5, 103, 102.5, 104,
			103.5, 105, 104.5, 106, 105.5, 107, 106.5, 108,
			107.5, 109, 108.5, 110),
		closeCandles(111, 110.5, 112))
}

func TestSnapshot_BBands_RoundTrip(t *testing.T) {
	orig := NewBollingerBands(5, 2, 2)
	fresh := NewBollingerBands(5, 2, 2)
	roundTrip(t, "BBANDS", orig, fresh,
		closeCandles(100, 102, 101, 103, 105, 104, 106),
		closeCandles(103, 107, 102))

	// Outer bands must survive the trip as well
	if orig.Upper() != fresh.Upper() || orig.Lower() != fresh.Lower() {
		t.Errorf("band mismatch: upper %.6f/%.6f lower %.6f/%.6f",
			orig.Upper(), fresh.Upper(), orig.Lower(), fresh.Lower())
	}
}

func TestSnapshot_Max_RoundTrip(t *testing.T) {
	roundTrip(t, "MAX", NewRollingMax(3), NewRollingMax(3),
		closeCandles(5, 3, 8, 1, 9, 2),
		closeCandles(2, 2, 7))
}

func ohlcBars(n int, base float64) []model.Candle {
	out := make([]model.Candle, n)
	for i := range out {
		p := base + float64(i)
		out[i] = bar(p+1, p-1, p)
	}
	return out
}

func TestSnapshot_ATR_RoundTrip(t *testing.T) {
	roundTrip(t, "ATR", NewATR(5), NewATR(5),
		ohlcBars(10, 100),
		ohlcBars(3, 110))
}

func TestSnapshot_SAR_RoundTrip(t *testing.T) {
	orig := NewSAR(SARAccelStart, SARAccelStep, SARAccelMax)
	fresh := NewSAR(SARAccelStart, SARAccelStep, SARAccelMax)
	cont := append(ohlcBars(3, 108), bar(95, 90, 91)) // includes a reversal
	roundTrip(t, "SAR", orig, fresh, ohlcBars(8, 100), cont)

	if orig.Long() != fresh.Long() {
		t.Errorf("trend mismatch after restore: original=%v restored=%v", orig.Long(), fresh.Long())
	}
}

func TestSnapshot_SAR_SingleBar(t *testing.T) {
	// Snapshot taken before the trend seeds must still replay identically
	orig := NewSAR(SARAccelStart, SARAccelStep, SARAccelMax)
	fresh := NewSAR(SARAccelStart, SARAccelStep, SARAccelMax)
	roundTrip(t, "SAR single bar", orig, fresh, ohlcBars(1, 100), ohlcBars(5, 101))
}

func TestSnapshot_Engine_RoundTrip(t *testing.T) {
	configs := []TFIndicatorConfig{
		{
			TF: 60,
			Indicators: []IndicatorConfig{
				{Type: "SMA", Period: 5},
				{Type: "EMA", Period: 5},
				{Type: "RSI", Period: 14},
				{Type: "ATR", Period: 14},
				{Type: "BBANDS", Period: 20},
				{Type: "SAR"},
			},
		},
	}

	engine := NewEngine(configs)

	// Feed 30 candles with varying prices
	for i := 0; i < 30; i++ {
		engine.Process(makeTFCandleSnap("BTCUSDT", 60, float64(100+i)))
	}

	// Snapshot the engine
	snap, err := SnapshotEngine(engine, "test-stream-id")
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}

	if snap.StreamID != "test-stream-id" {
		t.Errorf("stream ID mismatch: got %s", snap.StreamID)
	}

	// Restore
	engine2, err := RestoreEngine(configs, snap)
	if err != nil {
		t.Fatalf("restore failed: %v", err)
	}

	// Feed more candles to both engines — must produce identical results
	for i := 0; i < 5; i++ {
		price := float64(120 + i)
		r1 := engine.Process(makeTFCandleSnap("BTCUSDT", 60, price))
		r2 := engine2.Process(makeTFCandleSnap("BTCUSDT", 60, price))

		if len(r1) != len(r2) {
			t.Fatalf("result count mismatch at candle %d: %d vs %d", i, len(r1), len(r2))
		}

		for j := range r1 {
			if math.Abs(r1[j].Value-r2[j].Value) > 1e-10 {
				t.Errorf("candle %d indicator %s: original=%.6f restored=%.6f",
					i, r1[j].Name, r1[j].Value, r2[j].Value)
			}
		}
	}
}

func TestSnapshot_Engine_ConfigChangeTolerance(t *testing.T) {
	oldConfigs := []TFIndicatorConfig{
		{TF: 60, Indicators: []IndicatorConfig{
			{Type: "SMA", Period: 5},
			{Type: "RSI", Period: 14},
		}},
	}
	engine := NewEngine(oldConfigs)
	for i := 0; i < 20; i++ {
		engine.Process(makeTFCandleSnap("ETHUSDT", 60, float64(100+i)))
	}
	snap, err := SnapshotEngine(engine, "id-1")
	if err != nil {
		t.Fatal(err)
	}

	// New config drops RSI and adds EMA; SMA must restore warm, EMA cold
	newConfigs := []TFIndicatorConfig{
		{TF: 60, Indicators: []IndicatorConfig{
			{Type: "SMA", Period: 5},
			{Type: "EMA", Period: 5},
		}},
	}
	engine2, err := RestoreEngine(newConfigs, snap)
	if err != nil {
		t.Fatal(err)
	}

	results := engine2.Process(makeTFCandleSnap("ETHUSDT", 60, 120))
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if !results[0].Ready {
		t.Error("restored SMA should be warm")
	}
	if results[1].Ready {
		t.Error("new EMA should cold-start")
	}
}
