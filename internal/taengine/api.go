package taengine

import (
	"context"
	"encoding/json"
	"log"
	"log/slog"
	"net/http"
	"time"

	"ta-enginev1/internal/indicator"
	"ta-enginev1/internal/logger"
	"ta-enginev1/internal/metrics"
	"ta-enginev1/internal/model"
)

// startHTTP launches the HTTP server exposing /metrics, /healthz and /reload.
func (svc *Service) startHTTP(ctx context.Context) {
	server := metrics.NewServer(svc.cfg.HTTPAddr, svc.health)
	server.Handle("/reload", svc.handleReload)
	server.Start()

	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		server.Stop(shutCtx)
	}()

	log.Printf("[taengine] HTTP server on %s (/metrics, /healthz, /reload)", svc.cfg.HTTPAddr)
}

// handleReload handles POST /reload for live config updates via HTTP.
func (svc *Service) handleReload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}
	var newConfigs []indicator.TFIndicatorConfig
	if err := json.NewDecoder(r.Body).Decode(&newConfigs); err != nil {
		http.Error(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := indicator.ValidateConfigs(newConfigs); err != nil {
		http.Error(w, "validation: "+err.Error(), http.StatusBadRequest)
		return
	}
	preserved, created := svc.engine.ReloadConfigs(newConfigs)
	ctx := logger.WithTraceID(r.Context(), logger.GenerateTraceID("reload", time.Now()))
	slog.Info("indicator configs reloaded",
		append([]any{slog.Int("preserved", preserved), slog.Int("created", created)},
			logger.LogWithTrace(ctx)...)...)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "ok",
		"preserved": preserved,
		"created":   created,
	})
}

// startConfigSubscriber listens on Redis PubSub for dynamic indicator config updates.
func (svc *Service) startConfigSubscriber(ctx context.Context) {
	go func() {
		pubsub := svc.redisReader.SubscribeChannel(ctx, "config:indicators")
		if pubsub == nil {
			log.Println("[taengine] WARNING: could not subscribe to config:indicators")
			return
		}
		defer pubsub.Close()
		log.Println("[taengine] subscribed to config:indicators for dynamic reload")

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				log.Printf("[taengine] received config update: %s", msg.Payload)
				svc.reloadFromSpecs(ctx, ParseIndicatorSpecs(msg.Payload))
			}
		}
	}()
}

// reloadFromSpecs rebuilds TF configs from indicator specs and reloads the engine.
// If new indicators are created, backfills them from Redis candle streams.
func (svc *Service) reloadFromSpecs(ctx context.Context, newSpecs []indicator.IndicatorConfig) {
	newConfigs := make([]indicator.TFIndicatorConfig, len(svc.cfg.EnabledTFs))
	for i, tf := range svc.cfg.EnabledTFs {
		newConfigs[i] = indicator.TFIndicatorConfig{TF: tf, Indicators: newSpecs}
	}
	if err := indicator.ValidateConfigs(newConfigs); err != nil {
		log.Printf("[taengine] invalid config: %v", err)
		return
	}
	preserved, created := svc.engine.ReloadConfigs(newConfigs)
	log.Printf("[taengine] reloaded: preserved=%d, created=%d", preserved, created)

	// Backfill new indicators from Redis candle streams
	if created > 0 && len(svc.streams) > 0 {
		backfillCh := make(chan model.TFCandle, 5000)
		go func() {
			for _, stream := range svc.streams {
				_, err := svc.redisReader.ReplayFromID(ctx, stream, "0", backfillCh)
				if err != nil {
					log.Printf("[taengine] reload backfill error on %s: %v", stream, err)
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
		log.Printf("[taengine] reload backfill: processed %d candles for new indicators", backfillCount)
	}
}
