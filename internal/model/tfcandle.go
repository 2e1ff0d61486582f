package model

import (
	"encoding/json"
	"time"
)

// TFCandle represents a resampled OHLCV candle for a dynamic timeframe.
// TF is the timeframe duration in seconds (e.g., 60 = 1 minute).
type TFCandle struct {
	Symbol   string    `json:"symbol"`
	Exchange string    `json:"exchange"`
	TF       int       `json:"tf"` // timeframe in seconds
	TS       time.Time `json:"ts"` // bucket start time (UTC, TF-aligned)
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	Volume   float64   `json:"volume"`
	Count    int       `json:"count"`   // number of source bars merged
	Forming  bool      `json:"forming"` // true if bucket is still open
}

// Key returns "exchange:symbol".
func (c *TFCandle) Key() string {
	return c.Exchange + ":" + c.Symbol
}

// StreamKey returns the Redis stream key: "candle:{TF}s:{exchange}:{symbol}".
func (c *TFCandle) StreamKey() string {
	return "candle:" + itoa(c.TF) + "s:" + c.Exchange + ":" + c.Symbol
}

// Candle converts the TF candle into a plain Candle for indicator updates.
func (c *TFCandle) Candle() Candle {
	return Candle{
		Symbol:   c.Symbol,
		Exchange: c.Exchange,
		TS:       c.TS,
		Open:     c.Open,
		High:     c.High,
		Low:      c.Low,
		Close:    c.Close,
		Volume:   c.Volume,
	}
}

// JSON returns the JSON-encoded TF candle.
func (c *TFCandle) JSON() []byte {
	b, _ := json.Marshal(c)
	return b
}

// IndicatorResult holds a computed indicator value for a specific symbol + TF.
type IndicatorResult struct {
	Name     string    `json:"name"` // e.g. "SMA_20", "EMA_9", "RSI_14"
	Symbol   string    `json:"symbol"`
	Exchange string    `json:"exchange"`
	TF       int       `json:"tf"` // timeframe in seconds
	Value    float64   `json:"value"`
	TS       time.Time `json:"ts"`    // candle timestamp that produced this value
	Ready    bool      `json:"ready"` // true when indicator has enough data
	Live     bool      `json:"live"`  // true for preview values from forming candles
}

// StreamKey returns the Redis stream key: "ind:{name}:{TF}s:{exchange}:{symbol}".
func (r *IndicatorResult) StreamKey() string {
	return "ind:" + r.Name + ":" + itoa(r.TF) + "s:" + r.Exchange + ":" + r.Symbol
}

// PubSubChannel returns the Redis pub/sub channel for live fan-out:
// "pub:ind:{name}:{TF}s:{exchange}:{symbol}".
func (r *IndicatorResult) PubSubChannel() string {
	return "pub:" + r.StreamKey()
}

// JSON returns the JSON-encoded indicator result.
func (r *IndicatorResult) JSON() []byte {
	b, _ := json.Marshal(r)
	return b
}

// Itoa is a minimal int-to-string without importing strconv in hot paths.
func Itoa(n int) string { return itoa(n) }

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	buf := [20]byte{}
	i := len(buf)
	neg := n < 0
	if neg {
		n = -n
	}
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
