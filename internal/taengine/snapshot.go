package taengine

import (
	"context"
	"log"
	"log/slog"
	"strconv"
	"time"

	"ta-enginev1/internal/indicator"
)

// snapshotLoop periodically saves engine state to Redis and SQLite.
func (svc *Service) snapshotLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Duration(svc.cfg.SnapshotIntervalS) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			start := time.Now()
			snap, err := indicator.SnapshotEngine(svc.engine, svc.getLastStreamID(ctx))
			if err != nil {
				log.Printf("[taengine] snapshot error: %v", err)
				continue
			}

			// Save to Redis
			if err := svc.redisReader.WriteSnapshot(ctx, svc.cfg.SnapshotKey, snap); err != nil {
				log.Printf("[taengine] redis snapshot write error: %v", err)
			}

			// Save to SQLite
			if svc.sqlWriter != nil {
				if err := svc.sqlWriter.SaveSnapshot(snap); err != nil {
					log.Printf("[taengine] sqlite snapshot write error: %v", err)
				}
			}

			svc.prom.SnapshotsTotal.Inc()
			svc.prom.SnapshotDur.Observe(time.Since(start).Seconds())
			slog.Info("checkpoint saved",
				slog.Int("symbols", len(snap.Symbols)),
				slog.Duration("took", time.Since(start)))
		}
	}
}

// getLastStreamID returns a time-based stream ID marker for snapshots.
func (svc *Service) getLastStreamID(ctx context.Context) string {
	return strconv.FormatInt(time.Now().UnixMilli(), 10) + "-0"
}
