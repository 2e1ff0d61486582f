package taengine

import (
	"context"
	"log"
)

// peekLoop subscribes to 1s candle PubSub for live indicator previews.
// In WS ingest mode the TF builder already emits forming candles locally,
// so the subscription is skipped.
func (svc *Service) peekLoop(ctx context.Context) {
	if svc.cfg.WSURL != "" {
		return
	}
	if err := svc.redisReader.Subscribe1sForPeek(ctx, svc.cfg.EnabledTFs, svc.tfCandleCh); err != nil {
		log.Printf("[taengine] 1s peek subscription error: %v", err)
	}
}
