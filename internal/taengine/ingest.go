package taengine

import (
	"context"
	"log"
	"time"

	"ta-enginev1/internal/marketdata/bus"
	"ta-enginev1/internal/marketdata/tfbuilder"
	"ta-enginev1/internal/marketdata/ws"
	"ta-enginev1/internal/model"
	"ta-enginev1/internal/ringbuf"
)

// startIngest wires the optional WebSocket ingest pipeline:
//
//	WS feed → ring buffer → fanout → {Redis 1s writer, SQLite 1s writer, TF builder}
//	TF builder → {engine channel, Redis TF writer, SQLite TF writer}
//
// No-op when WS_URL is not configured (Redis consumer mode).
func (svc *Service) startIngest(ctx context.Context) {
	if svc.cfg.WSURL == "" {
		return
	}

	ingest, err := ws.New(ws.IngestConfig{
		URL:      svc.cfg.WSURL,
		Exchange: svc.cfg.WSExchange,
		Symbols:  svc.cfg.WSSymbols,
		Interval: "1s",
	})
	if err != nil {
		log.Printf("[taengine] WARNING: ws ingest disabled: %v", err)
		return
	}
	ingest.OnReconnect = func() {
		svc.prom.WSReconnects.Inc()
		svc.health.SetWSConnected(false)
	}
	ingest.OnDropped = func() { svc.prom.DroppedCandles.Inc() }

	// SPSC ring between the WS reader and the pipeline drain goroutine
	ring := ringbuf.New(8192)
	wsCh := make(chan model.Candle, 1000)

	go func() {
		if err := ingest.Start(ctx, wsCh); err != nil && ctx.Err() == nil {
			log.Printf("[taengine] ws ingest stopped: %v", err)
		}
	}()

	// Producer side of the ring
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case c, ok := <-wsCh:
				if !ok {
					return
				}
				svc.health.SetWSConnected(true)
				svc.health.SetLastCandleTime(c.TS)
				svc.prom.CandlesTotal.Inc()
				if !ring.Push(c) {
					svc.prom.RingBufOverflow.Inc()
				}
			}
		}
	}()

	// Fan out 1s candles to the storage writers and the TF builder
	fanout := bus.New(5000)
	fanout.OnDrop = func(idx int) {
		svc.prom.FanoutDropsTotal.WithLabelValues(model.Itoa(idx)).Inc()
	}
	subRedis := fanout.Subscribe()
	subTF := fanout.Subscribe()
	var subSQLite <-chan model.Candle
	if svc.sqlWriter != nil {
		subSQLite = fanout.Subscribe()
	}

	pipelineCh := make(chan model.Candle, 5000)
	go fanout.Run(ctx, pipelineCh)

	// Consumer side of the ring
	go func() {
		for {
			c, ok := ring.Pop()
			if !ok {
				select {
				case <-ctx.Done():
					close(pipelineCh)
					return
				case <-time.After(time.Millisecond):
				}
				continue
			}
			select {
			case pipelineCh <- c:
			case <-ctx.Done():
				close(pipelineCh)
				return
			}
		}
	}()

	// Redis 1s writes go through the circuit breaker
	go func() {
		for c := range subRedis {
			start := time.Now()
			svc.buffered.WriteCandle(c)
			svc.prom.RedisWriteDur.Observe(time.Since(start).Seconds())
		}
	}()

	if subSQLite != nil {
		go svc.sqlWriter.Run(ctx, subSQLite)
	}

	// TF resampling
	tfb := tfbuilder.New(svc.cfg.EnabledTFs)
	tfb.OnStaleCandle = func() { svc.prom.StaleCandlesRejected.Inc() }
	tfb.OnTFCandle = func(tfc model.TFCandle) {
		svc.prom.TFCandlesTotal.WithLabelValues(model.Itoa(tfc.TF)).Inc()
	}
	svc.health.SetTFBuilderOK(true)

	tfOut := make(chan model.TFCandle, 5000)
	go tfb.Run(ctx, subTF, tfOut)

	var sqlTFCh chan model.TFCandle
	if svc.sqlWriter != nil {
		sqlTFCh = make(chan model.TFCandle, 5000)
		go svc.sqlWriter.RunTFCandles(ctx, sqlTFCh)
	}

	// Route finalized TF candles to persistence and everything to the engine
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case tfc, ok := <-tfOut:
				if !ok {
					return
				}
				if !tfc.Forming {
					svc.buffered.WriteTFCandle(tfc)
					if sqlTFCh != nil {
						select {
						case sqlTFCh <- tfc:
						default:
						}
					}
				}
				select {
				case svc.tfCandleCh <- tfc:
				default:
					svc.prom.DroppedCandles.Inc()
				}
			}
		}
	}()

	log.Printf("[taengine] ws ingest pipeline started (%s, %d symbols, TFs=%v)",
		svc.cfg.WSURL, len(svc.cfg.WSSymbols), svc.cfg.EnabledTFs)
}
