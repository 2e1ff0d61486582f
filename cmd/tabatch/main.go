// cmd/tabatch runs the batch indicator kernels over historical candles stored
// in SQLite and prints the aligned output tail. The leading lookback region of
// every series is NaN, matching the streaming engine's warmup behavior.
//
// Usage:
//
//	go run ./cmd/tabatch --db=data/candles.db --tf=60 --symbol=BINANCE:BTCUSDT --tail=20
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"strings"

	"ta-enginev1/internal/model"
	sqlitestore "ta-enginev1/internal/store/sqlite"
	"ta-enginev1/internal/ta"
)

type series struct {
	name   string
	values []ta.TAFloat
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	dbPath := flag.String("db", "data/candles.db", "Path to SQLite database")
	tf := flag.Int("tf", 60, "Timeframe in seconds")
	symbolKey := flag.String("symbol", "", "Instrument as EXCHANGE:SYMBOL (empty = all)")
	fromTS := flag.Int64("from", 0, "Unix timestamp to start from (0=all)")
	tailN := flag.Int("tail", 20, "Number of trailing rows to print")
	period := flag.Int("period", 14, "Period for single-period indicators")
	flag.Parse()

	reader, err := sqlitestore.NewReader(*dbPath)
	if err != nil {
		log.Fatalf("[tabatch] sqlite open failed: %v", err)
	}
	defer reader.Close()

	candles, err := loadCandles(reader, *tf, *symbolKey, *fromTS)
	if err != nil {
		log.Fatalf("[tabatch] load failed: %v", err)
	}
	if len(candles) == 0 {
		log.Fatalf("[tabatch] no candles for TF=%d in %s", *tf, *dbPath)
	}
	log.Printf("[tabatch] loaded %d candles (TF=%ds)", len(candles), *tf)

	n := len(candles)
	high := make([]ta.TAFloat, n)
	low := make([]ta.TAFloat, n)
	closes := make([]ta.TAFloat, n)
	for i, c := range candles {
		high[i] = ta.TAFloat(c.High)
		low[i] = ta.TAFloat(c.Low)
		closes[i] = ta.TAFloat(c.Close)
	}

	columns := compute(high, low, closes, *period)

	printTail(os.Stdout, candles, columns, *tailN)
}

// loadCandles reads TF candles, optionally filtered to one instrument.
func loadCandles(reader *sqlitestore.Reader, tf int, symbolKey string, fromTS int64) ([]model.TFCandle, error) {
	if symbolKey == "" {
		return reader.ReadAllTFCandles(tf, fromTS)
	}
	parts := strings.SplitN(symbolKey, ":", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("symbol must be EXCHANGE:SYMBOL, got %q", symbolKey)
	}
	return reader.ReadTFCandles(strings.ToUpper(parts[0]), strings.ToUpper(parts[1]), tf, fromTS)
}

// compute runs the batch kernels over the full series.
func compute(high, low, closes []ta.TAFloat, period int) []series {
	n := len(closes)
	kern := ta.Kernel{CheckNaN: true}

	alloc := func() []ta.TAFloat { return make([]ta.TAFloat, n) }
	var out []series
	add := func(name string, values []ta.TAFloat, err error) {
		if err != nil {
			log.Printf("[tabatch] %s skipped: %v", name, err)
			return
		}
		out = append(out, series{name: name, values: values})
	}

	sma := alloc()
	add(fmt.Sprintf("SMA_%d", period), sma, kern.SMA(closes, period, sma))

	ema := alloc()
	add(fmt.Sprintf("EMA_%d", period), ema, kern.EMA(closes, period, ema))

	wma := alloc()
	add(fmt.Sprintf("WMA_%d", period), wma, kern.WMA(closes, period, wma))

	rsi := alloc()
	add(fmt.Sprintf("RSI_%d", period), rsi, kern.RSI(closes, period, rsi))

	atr := alloc()
	add(fmt.Sprintf("ATR_%d", period), atr, kern.ATR(high, low, closes, period, atr))

	upper, middle, lower := alloc(), alloc(), alloc()
	if err := kern.BBands(closes, period, 2, 2, upper, middle, lower); err != nil {
		log.Printf("[tabatch] BBANDS skipped: %v", err)
	} else {
		out = append(out,
			series{name: fmt.Sprintf("BB_UP_%d", period), values: upper},
			series{name: fmt.Sprintf("BB_LO_%d", period), values: lower},
		)
	}

	sar := alloc()
	add("SAR", sar, kern.SAR(high, low, 0.02, 0.02, 0.2, sar))

	maxv := alloc()
	add(fmt.Sprintf("MAX_%d", period), maxv, kern.Max(high, period, maxv))

	rocp := alloc()
	add(fmt.Sprintf("ROCP_%d", period), rocp, kern.ROCP(closes, period, rocp))

	return out
}

// printTail prints the last tailN rows as an aligned table, NaN shown as "-".
func printTail(w *os.File, candles []model.TFCandle, columns []series, tailN int) {
	n := len(candles)
	start := n - tailN
	if start < 0 {
		start = 0
	}

	fmt.Fprintf(w, "%-20s %10s", "TS", "CLOSE")
	for _, col := range columns {
		fmt.Fprintf(w, " %10s", col.name)
	}
	fmt.Fprintln(w)

	for i := start; i < n; i++ {
		fmt.Fprintf(w, "%-20s %10.4f", candles[i].TS.Format("2006-01-02 15:04:05"), candles[i].Close)
		for _, col := range columns {
			v := float64(col.values[i])
			if math.IsNaN(v) {
				fmt.Fprintf(w, " %10s", "-")
			} else {
				fmt.Fprintf(w, " %10.4f", v)
			}
		}
		fmt.Fprintln(w)
	}
}
