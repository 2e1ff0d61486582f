// Package ws streams 1-second kline candles from an exchange WebSocket feed
// and pushes normalized model.Candle values into the processing pipeline.
// It handles reconnection with exponential backoff, ping/pong keepalive,
// and combined-stream subscription for multiple symbols.
package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"ta-enginev1/internal/model"
)

const (
	pongWait     = 60 * time.Second
	pingInterval = 20 * time.Second
	writeWait    = 10 * time.Second

	initialBackoff = 1 * time.Second
	maxBackoff     = 60 * time.Second
)

// IngestConfig holds configuration for the WS ingest.
type IngestConfig struct {
	// URL is the WebSocket base endpoint, e.g. "wss://stream.binance.com:9443".
	URL string

	// Exchange name stamped onto every candle, e.g. "BINANCE".
	Exchange string

	// Symbols to subscribe, e.g. ["BTCUSDT", "ETHUSDT"].
	Symbols []string

	// Interval is the kline interval to subscribe ("1s" for the base feed).
	Interval string
}

// Ingest connects to the exchange WebSocket and pushes closed klines into candleCh.
type Ingest struct {
	cfg IngestConfig

	// Optional metrics hooks
	OnReconnect func()
	OnDropped   func()
}

// New creates a new Ingest instance.
func New(cfg IngestConfig) (*Ingest, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("ws ingest: empty URL")
	}
	if len(cfg.Symbols) == 0 {
		return nil, fmt.Errorf("ws ingest: no symbols to subscribe")
	}
	if cfg.Interval == "" {
		cfg.Interval = "1s"
	}
	if cfg.Exchange == "" {
		cfg.Exchange = "BINANCE"
	}
	return &Ingest{cfg: cfg}, nil
}

// streamURL builds the combined-stream URL:
// {base}/stream?streams=btcusdt@kline_1s/ethusdt@kline_1s
func (ing *Ingest) streamURL() string {
	parts := make([]string, len(ing.cfg.Symbols))
	for i, s := range ing.cfg.Symbols {
		parts[i] = strings.ToLower(s) + "@kline_" + ing.cfg.Interval
	}
	return ing.cfg.URL + "/stream?streams=" + strings.Join(parts, "/")
}

// Start connects to the WebSocket and streams candles into candleCh.
// Reconnects with exponential backoff on failure. Blocks until ctx is cancelled.
func (ing *Ingest) Start(ctx context.Context, candleCh chan<- model.Candle) error {
	backoff := initialBackoff

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := ing.runOnce(ctx, candleCh)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Printf("[ws] connection lost: %v, reconnecting in %v", err, backoff)
		if ing.OnReconnect != nil {
			ing.OnReconnect()
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

// runOnce dials, reads until error or ctx cancellation.
func (ing *Ingest) runOnce(ctx context.Context, candleCh chan<- model.Candle) error {
	url := ing.streamURL()
	log.Printf("[ws] connecting to %s", url)

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	log.Printf("[ws] connected, %d symbols subscribed (interval=%s)", len(ing.cfg.Symbols), ing.cfg.Interval)

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	// Some exchanges ping from the server side; answer and refresh the deadline.
	conn.SetPingHandler(func(appData string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(writeWait))
	})

	// Client-side keepalive pings
	pingDone := make(chan struct{})
	defer close(pingDone)
	go func() {
		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-pingDone:
				return
			case <-ctx.Done():
				conn.Close() // unblock ReadMessage
				return
			case <-ticker.C:
				conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			}
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		conn.SetReadDeadline(time.Now().Add(pongWait))

		candle, closed, err := parseKline(raw, ing.cfg.Exchange)
		if err != nil {
			log.Printf("[ws] parse error: %v", err)
			continue
		}
		if !closed {
			continue // only forward finalized klines
		}

		select {
		case candleCh <- candle:
		default:
			if ing.OnDropped != nil {
				ing.OnDropped()
			}
			log.Println("[ws] candleCh full, dropping candle")
		}
	}
}

// combinedMsg is the combined-stream envelope: {"stream": "...", "data": {...}}.
type combinedMsg struct {
	Stream string          `json:"stream"`
	Data   json.RawMessage `json:"data"`
}

// klineEvent is the kline payload within the envelope.
type klineEvent struct {
	EventType string `json:"e"`
	EventTime int64  `json:"E"` // event time, epoch ms; declared so it is not case-insensitively matched to "e"
	Symbol    string `json:"s"`
	Kline     struct {
		StartTime int64  `json:"t"` // bucket open time, epoch ms
		EndTime   int64  `json:"T"` // bucket close time, epoch ms; declared so it is not matched to "t"
		Symbol    string `json:"s"`
		Open      string `json:"o"`
		High      string `json:"h"`
		Low       string `json:"l"`
		Close     string `json:"c"`
		Volume    string `json:"v"`
		Closed    bool   `json:"x"`
	} `json:"k"`
}

// parseKline converts a raw combined-stream message into a model.Candle.
// The bool result reports whether the kline bucket is closed.
func parseKline(raw []byte, exchange string) (model.Candle, bool, error) {
	var env combinedMsg
	if err := json.Unmarshal(raw, &env); err != nil {
		return model.Candle{}, false, fmt.Errorf("envelope: %w", err)
	}

	payload := env.Data
	if payload == nil {
		// Raw (non-combined) stream sends the event directly
		payload = raw
	}

	var ev klineEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return model.Candle{}, false, fmt.Errorf("kline event: %w", err)
	}
	if ev.EventType != "kline" {
		return model.Candle{}, false, fmt.Errorf("unexpected event type %q", ev.EventType)
	}
	if ev.Symbol == "" {
		return model.Candle{}, false, fmt.Errorf("missing symbol")
	}

	open, err := strconv.ParseFloat(ev.Kline.Open, 64)
	if err != nil {
		return model.Candle{}, false, fmt.Errorf("open price: %w", err)
	}
	high, err := strconv.ParseFloat(ev.Kline.High, 64)
	if err != nil {
		return model.Candle{}, false, fmt.Errorf("high price: %w", err)
	}
	low, err := strconv.ParseFloat(ev.Kline.Low, 64)
	if err != nil {
		return model.Candle{}, false, fmt.Errorf("low price: %w", err)
	}
	closePx, err := strconv.ParseFloat(ev.Kline.Close, 64)
	if err != nil {
		return model.Candle{}, false, fmt.Errorf("close price: %w", err)
	}
	vol, err := strconv.ParseFloat(ev.Kline.Volume, 64)
	if err != nil {
		return model.Candle{}, false, fmt.Errorf("volume: %w", err)
	}

	return model.Candle{
		Symbol:   ev.Symbol,
		Exchange: exchange,
		TS:       time.Unix(0, ev.Kline.StartTime*int64(time.Millisecond)).UTC(),
		Open:     open,
		High:     high,
		Low:      low,
		Close:    closePx,
		Volume:   vol,
	}, ev.Kline.Closed, nil
}
