// Package taengine wires the indicator engine into a long-running service.
// Candles arrive either from Redis streams (consumer-group mode) or straight
// from an exchange WebSocket feed (ingest mode); indicator results flow back
// out to Redis, with periodic state checkpoints to Redis and SQLite.
package taengine

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"ta-enginev1/internal/indicator"
	"ta-enginev1/internal/metrics"
	"ta-enginev1/internal/model"
	redisstore "ta-enginev1/internal/store/redis"
	sqlitestore "ta-enginev1/internal/store/sqlite"
)

// Service is the top-level orchestrator for the TA engine.
// It wires all dependencies, manages lifecycle, and coordinates goroutines.
type Service struct {
	cfg Config

	engine      *indicator.Engine
	redisReader *redisstore.Reader
	redisWriter *redisstore.Writer
	buffered    *redisstore.BufferedWriter
	sqlReader   *sqlitestore.Reader
	sqlWriter   *sqlitestore.Writer
	prom        *metrics.Metrics
	health      *metrics.HealthStatus

	streams    []string
	tfCandleCh chan model.TFCandle
}

// New creates a new Service from the given Config.
// It connects to Redis and SQLite and restores the indicator engine.
func New(cfg Config) (*Service, error) {
	svc := &Service{
		cfg:        cfg,
		prom:       metrics.NewMetrics(),
		health:     metrics.NewHealthStatus(),
		tfCandleCh: make(chan model.TFCandle, 5000),
	}

	// ---- Connect to Redis ----
	var err error
	svc.redisReader, err = redisstore.NewReader(redisstore.ReaderConfig{
		Addr:          cfg.RedisAddr,
		Password:      cfg.RedisPassword,
		ConsumerGroup: cfg.ConsumerGroup,
		ConsumerName:  cfg.ConsumerName,
	})
	if err != nil {
		return nil, err
	}

	svc.redisWriter, err = redisstore.New(redisstore.WriterConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		svc.redisReader.Close()
		return nil, err
	}

	// ---- Open SQLite ----
	svc.sqlReader, err = sqlitestore.NewReader(cfg.SQLitePath)
	if err != nil {
		log.Printf("[taengine] WARNING: sqlite reader init failed: %v (continuing without SQLite backfill)", err)
	}

	os.MkdirAll("data", 0o755)
	svc.sqlWriter, err = sqlitestore.New(sqlitestore.WriterConfig{DBPath: cfg.SQLitePath})
	if err != nil {
		log.Printf("[taengine] WARNING: sqlite writer init failed: %v", err)
	}

	return svc, nil
}

// Run starts all subsystems and blocks until ctx is cancelled.
func (svc *Service) Run(ctx context.Context) error {
	cfg := svc.cfg
	log.Println("[taengine] starting TA engine service...")

	svc.setupCircuitBreaker(ctx)

	// ---- Restore engine from snapshot ----
	if err := svc.restoreEngine(ctx); err != nil {
		return err
	}
	svc.health.SetIndicatorOK(true)
	svc.health.SetEnabledTFs(cfg.EnabledTFs)

	// ---- Discover / build streams ----
	svc.streams = svc.buildStreams(ctx)
	log.Printf("[taengine] consuming from %d streams: %v", len(svc.streams), svc.streams)

	// ---- Backfill from Redis streams ----
	svc.backfillFromRedis(ctx)

	// ---- Replay delta from snapshot ----
	svc.replayDelta(ctx)

	// ---- Ensure consumer groups ----
	if len(svc.streams) > 0 {
		if err := svc.redisReader.EnsureConsumerGroup(ctx, svc.streams); err != nil {
			log.Printf("[taengine] WARNING: consumer group setup: %v", err)
		}
	}

	// ---- Recover pending messages ----
	if len(svc.streams) > 0 {
		if err := svc.redisReader.RecoverPending(ctx, svc.streams, svc.tfCandleCh); err != nil {
			log.Printf("[taengine] pending recovery error: %v", err)
		}
	}

	// ---- Start subsystems ----
	svc.startPELReclaimer(ctx)
	go svc.processLoop(ctx)
	svc.startConsumer(ctx)
	svc.startIngest(ctx)
	go svc.peekLoop(ctx)
	go svc.snapshotLoop(ctx)
	svc.startHTTP(ctx)
	svc.startConfigSubscriber(ctx)

	if svc.sqlWriter != nil {
		svc.health.StartLivenessChecker(ctx, svc.redisWriter.Client(), svc.sqlWriter.DB(), 10*time.Second)
	} else {
		svc.health.StartLivenessChecker(ctx, svc.redisWriter.Client(), nil, 10*time.Second)
	}

	log.Printf("[taengine] engine active: TFs=%v, snapshot checkpoint every %ds",
		cfg.EnabledTFs, cfg.SnapshotIntervalS)
	log.Println("[taengine] all systems running")

	// Block until context cancelled
	<-ctx.Done()

	// ---- Graceful shutdown ----
	svc.shutdown()
	return nil
}

// setupCircuitBreaker wraps the Redis writer in a circuit breaker so that
// indicator batches survive short Redis outages.
func (svc *Service) setupCircuitBreaker(ctx context.Context) {
	cb := redisstore.NewCircuitBreaker(svc.cfg.CBMaxFailures,
		time.Duration(svc.cfg.CBResetTimeoutS)*time.Second)
	cb.OnStateChange = func(from, to redisstore.State) {
		log.Printf("[taengine] redis circuit breaker: %s → %s", from, to)
		svc.prom.RedisCircuitBreakerState.Set(float64(to))
		if to == redisstore.StateOpen {
			svc.prom.RedisCircuitBreakerTrips.Inc()
		}
	}
	svc.buffered = redisstore.NewBufferedWriter(ctx, svc.redisWriter, cb, 10000)
	svc.buffered.OnBuffer = func() { svc.prom.RedisBufferedWrites.Inc() }
	svc.buffered.OnFlush = func(count int) {
		log.Printf("[taengine] flushed %d buffered redis writes after recovery", count)
	}
}

// shutdown saves final snapshot and closes connections.
func (svc *Service) shutdown() {
	log.Println("[taengine] shutdown signal received, saving final snapshot...")

	finalSnap, err := indicator.SnapshotEngine(svc.engine, "shutdown")
	if err == nil {
		shutCtx, shutCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer shutCancel()

		if svc.redisReader != nil {
			svc.redisReader.WriteSnapshot(shutCtx, svc.cfg.SnapshotKey, finalSnap)
		}
		if svc.sqlWriter != nil {
			svc.sqlWriter.SaveSnapshot(finalSnap)
		}
		log.Println("[taengine] final snapshot saved")
	}

	if svc.sqlReader != nil {
		svc.sqlReader.Close()
	}
	if svc.sqlWriter != nil {
		svc.sqlWriter.Close()
	}
	svc.redisWriter.Close()
	svc.redisReader.Close()

	log.Println("[taengine] shutdown complete.")
}

// restoreEngine restores the indicator engine from Redis or SQLite snapshot,
// then backfills from SQLite for cold indicators.
func (svc *Service) restoreEngine(ctx context.Context) error {
	restorer := indicator.NewRestorer(svc.cfg.IndicatorConfigs)

	// Try Redis snapshot first
	snap, err := svc.redisReader.ReadSnapshot(ctx, svc.cfg.SnapshotKey)
	if err != nil {
		log.Printf("[taengine] redis snapshot read error: %v", err)
	}

	// Fallback to SQLite
	if snap == nil && svc.sqlReader != nil {
		snap, err = svc.sqlReader.ReadLatestSnapshot()
		if err != nil {
			log.Printf("[taengine] sqlite snapshot read error: %v", err)
		}
	}

	svc.engine, err = restorer.RestoreFromSnap(snap)
	if err != nil {
		return err
	}

	// Backfill from SQLite to warm up cold indicators
	if svc.sqlReader != nil {
		backfilled := restorer.BackfillFromSQLite(svc.engine, svc.sqlReader, func(results []model.IndicatorResult) {
			svc.redisWriter.WriteIndicatorBatch(ctx, results)
		})
		if backfilled > 0 {
			log.Printf("[taengine] warmed up indicators with %d historical candles (results written to Redis)", backfilled)
		}
	}

	return nil
}

// buildStreams discovers or constructs the Redis stream names to consume.
// In WS ingest mode there is nothing to consume: the service produces its
// own TF candles locally.
func (svc *Service) buildStreams(ctx context.Context) []string {
	if svc.cfg.WSURL != "" {
		return nil
	}
	var streams []string
	for _, tf := range svc.cfg.EnabledTFs {
		if len(svc.cfg.SubscribeSymbolKeys) > 0 {
			for _, sk := range svc.cfg.SubscribeSymbolKeys {
				streams = append(streams, "candle:"+strconv.Itoa(tf)+"s:"+sk)
			}
		} else {
			discovered := svc.redisReader.DiscoverTFStreams(ctx, []int{tf}, svc.cfg.SubscribeSymbolKeys)
			streams = append(streams, discovered...)
		}
	}
	return streams
}

// backfillFromRedis replays all historical candles from Redis streams through the engine.
func (svc *Service) backfillFromRedis(ctx context.Context) {
	if len(svc.streams) == 0 {
		return
	}
	backfillCh := make(chan model.TFCandle, 5000)
	go func() {
		for _, stream := range svc.streams {
			_, err := svc.redisReader.ReplayFromID(ctx, stream, "0", backfillCh)
			if err != nil {
				log.Printf("[taengine] backfill error on %s: %v", stream, err)
			}
		}
		close(backfillCh)
	}()

	backfillCount := 0
	for tfc := range backfillCh {
		if !tfc.Forming {
			results := svc.engine.Process(tfc)
			if len(results) > 0 {
				svc.redisWriter.WriteIndicatorBatch(ctx, results)
			}
			backfillCount++
		}
	}
	if backfillCount > 0 {
		log.Printf("[taengine] backfilled %d candles from Redis streams (indicator results written)", backfillCount)
	} else {
		log.Println("[taengine] no candles in Redis streams to backfill from")
	}
}

// replayDelta replays candles since snapshot to catch up on missed data.
func (svc *Service) replayDelta(ctx context.Context) {
	if len(svc.streams) == 0 {
		return
	}
	// Check if we have a snapshot to replay from
	snap, _ := svc.redisReader.ReadSnapshot(ctx, svc.cfg.SnapshotKey)
	if snap == nil || snap.StreamID == "" {
		return
	}

	log.Printf("[taengine] replaying delta from stream ID: %s", snap.StreamID)
	replayCh := make(chan model.TFCandle, 5000)
	go func() {
		for _, stream := range svc.streams {
			_, err := svc.redisReader.ReplayFromID(ctx, stream, snap.StreamID, replayCh)
			if err != nil {
				log.Printf("[taengine] replay error on %s: %v", stream, err)
			}
		}
		close(replayCh)
	}()

	deltaCount := 0
	for tfc := range replayCh {
		if !tfc.Forming {
			results := svc.engine.Process(tfc)
			if len(results) > 0 {
				svc.redisWriter.WriteIndicatorBatch(ctx, results)
			}
			deltaCount++
		}
	}
	log.Printf("[taengine] replayed %d delta candles (results written to Redis)", deltaCount)
}
