package redis

import (
	"testing"
	"time"

	"ta-enginev1/internal/model"
)

func tick(unixSec int64, open, high, low, close_, vol float64) model.Candle {
	return model.Candle{
		Symbol: "BTCUSDT", Exchange: "BINANCE",
		TS:   time.Unix(unixSec, 0).UTC(),
		Open: open, High: high, Low: low, Close: close_, Volume: vol,
	}
}

func TestPeekAggregator_MergesWithinBucket(t *testing.T) {
	agg := newPeekAggregator([]int{60})

	agg.offer(tick(1200, 100, 101, 99, 100.5, 1))
	snaps := agg.offer(tick(1201, 100.5, 103, 98, 102, 2))

	if len(snaps) != 1 {
		t.Fatalf("expected 1 snapshot, got %d", len(snaps))
	}
	fc := snaps[0]
	if !fc.Forming {
		t.Error("expected Forming=true")
	}
	if fc.Open != 100 || fc.High != 103 || fc.Low != 98 || fc.Close != 102 {
		t.Errorf("OHLC merge wrong: %+v", fc)
	}
	if fc.Volume != 3 || fc.Count != 2 {
		t.Errorf("expected volume=3 count=2, got volume=%f count=%d", fc.Volume, fc.Count)
	}
}

func TestPeekAggregator_TSAlignedToBucketStart(t *testing.T) {
	agg := newPeekAggregator([]int{60})

	// First tick lands mid-bucket; the forming candle TS must still be the
	// bucket start, matching finalized TF candle semantics.
	snaps := agg.offer(tick(1234, 100, 100, 100, 100, 1))
	if len(snaps) != 1 {
		t.Fatalf("expected 1 snapshot, got %d", len(snaps))
	}
	want := time.Unix(1200, 0).UTC()
	if !snaps[0].TS.Equal(want) {
		t.Errorf("expected TS %v, got %v", want, snaps[0].TS)
	}
}

func TestPeekAggregator_NewBucketResets(t *testing.T) {
	agg := newPeekAggregator([]int{60})

	agg.offer(tick(1259, 100, 110, 90, 105, 1))
	snaps := agg.offer(tick(1260, 106, 107, 105, 106.5, 2))

	fc := snaps[0]
	if fc.Open != 106 || fc.High != 107 || fc.Low != 105 || fc.Count != 1 {
		t.Errorf("state leaked across bucket boundary: %+v", fc)
	}
}

func TestPeekAggregator_DropsStaleTick(t *testing.T) {
	agg := newPeekAggregator([]int{60})

	agg.offer(tick(1260, 106, 107, 105, 106.5, 2))
	// Late tick from the previous, already-finalized bucket
	snaps := agg.offer(tick(1259, 100, 200, 1, 105, 5))

	if len(snaps) != 0 {
		t.Fatalf("stale tick produced %d snapshots: %+v", len(snaps), snaps)
	}
	// Current bucket state untouched
	cur := agg.offer(tick(1261, 106.5, 106.5, 106, 106.2, 1))[0]
	if cur.High != 107 || cur.Low != 105 || cur.Volume != 3 {
		t.Errorf("stale tick corrupted forming state: %+v", cur)
	}
}

func TestPeekAggregator_PerTFAndPerSymbolState(t *testing.T) {
	agg := newPeekAggregator([]int{60, 300})

	snaps := agg.offer(tick(1200, 100, 100, 100, 100, 1))
	if len(snaps) != 2 {
		t.Fatalf("expected one snapshot per TF, got %d", len(snaps))
	}
	if snaps[0].TF != 60 || snaps[1].TF != 300 {
		t.Errorf("TF assignment wrong: %+v", snaps)
	}

	other := tick(1200, 50, 50, 50, 50, 1)
	other.Symbol = "ETHUSDT"
	snaps = agg.offer(other)
	if snaps[0].High != 50 {
		t.Errorf("symbols share forming state: %+v", snaps[0])
	}
}
