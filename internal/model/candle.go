package model

import (
	"encoding/json"
	"time"
)

// Candle represents one OHLCV bar for a single instrument.
type Candle struct {
	Symbol   string    `json:"symbol"`
	Exchange string    `json:"exchange"`
	TS       time.Time `json:"ts"` // bucket start time (UTC)
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	Volume   float64   `json:"volume"`
}

// Key returns a unique key for this candle's instrument: "exchange:symbol".
func (c *Candle) Key() string {
	return c.Exchange + ":" + c.Symbol
}

// JSON returns the JSON-encoded candle (ignoring errors for hot-path usage).
func (c *Candle) JSON() []byte {
	b, _ := json.Marshal(c)
	return b
}
