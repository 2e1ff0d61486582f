package bus

import (
	"context"
	"testing"
	"time"

	"ta-enginev1/internal/model"
)

func TestFanOut_BroadcastsToAll(t *testing.T) {
	fo := New(10)
	out1 := fo.Subscribe()
	out2 := fo.Subscribe()

	input := make(chan model.Candle, 10)
	ctx, cancel := context.WithCancel(context.Background())
	go fo.Run(ctx, input)

	candle := model.Candle{
		Symbol:   "BTCUSDT",
		Exchange: "BINANCE",
		Open:     100,
		High:     110,
		Low:      90,
		Close:    105,
	}

	input <- candle
	time.Sleep(50 * time.Millisecond)

	select {
	case c := <-out1:
		if c.Symbol != "BTCUSDT" {
			t.Errorf("out1: expected symbol BTCUSDT, got %s", c.Symbol)
		}
	case <-time.After(time.Second):
		t.Fatal("out1: timed out waiting for candle")
	}

	select {
	case c := <-out2:
		if c.Symbol != "BTCUSDT" {
			t.Errorf("out2: expected symbol BTCUSDT, got %s", c.Symbol)
		}
	case <-time.After(time.Second):
		t.Fatal("out2: timed out waiting for candle")
	}

	cancel()
}

func TestFanOut_DropsWhenSubscriberFull(t *testing.T) {
	fo := New(1) // tiny buffer
	fo.Subscribe()

	drops := 0
	fo.OnDrop = func(idx int) { drops++ }

	input := make(chan model.Candle, 10)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go fo.Run(ctx, input)

	// Nobody reads out1, so the second candle must be dropped
	input <- model.Candle{Symbol: "A", Exchange: "BINANCE", Close: 1}
	input <- model.Candle{Symbol: "A", Exchange: "BINANCE", Close: 2}
	time.Sleep(50 * time.Millisecond)

	if drops != 1 {
		t.Errorf("expected 1 drop, got %d", drops)
	}
}
