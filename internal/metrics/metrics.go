package metrics

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the TA engine.
type Metrics struct {
	CandlesTotal    prometheus.Counter
	WSReconnects    prometheus.Counter
	DroppedCandles  prometheus.Counter
	RedisWriteDur   prometheus.Histogram
	SQLiteCommitDur prometheus.Histogram

	// TF resampler metrics
	TFCandlesTotal *prometheus.CounterVec
	TFBuildDur     prometheus.Histogram

	// Indicator engine metrics
	IndicatorComputeDur prometheus.Histogram
	IndicatorsTotal     prometheus.Counter
	PeekResultsTotal    prometheus.Counter

	// Snapshot persistence
	SnapshotsTotal prometheus.Counter
	SnapshotDur    prometheus.Histogram

	// Ring buffer overflow
	RingBufOverflow prometheus.Counter

	// Backpressure
	FanoutDropsTotal     *prometheus.CounterVec // labels: subscriber
	ChannelSaturationPct *prometheus.GaugeVec   // labels: channel_name

	// Staleness
	StaleCandlesRejected prometheus.Counter

	// PEL reclaim
	PELMessagesReclaimed prometheus.Counter

	// Circuit breaker
	RedisCircuitBreakerState prometheus.Gauge // 0=closed, 1=open, 2=half-open
	RedisCircuitBreakerTrips prometheus.Counter
	RedisBufferedWrites      prometheus.Counter
}

// NewMetrics registers and returns all Prometheus metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		CandlesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taengine_candles_total",
			Help: "Total 1s candles ingested",
		}),
		WSReconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taengine_ws_reconnects_total",
			Help: "Total WebSocket reconnection attempts",
		}),
		DroppedCandles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taengine_dropped_candles_total",
			Help: "Candles dropped (malformed or channel full)",
		}),
		RedisWriteDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "taengine_redis_write_duration_seconds",
			Help:    "Redis write latency",
			Buckets: prometheus.DefBuckets,
		}),
		SQLiteCommitDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "taengine_sqlite_commit_duration_seconds",
			Help:    "SQLite batch commit latency",
			Buckets: prometheus.DefBuckets,
		}),

		// TF metrics
		TFCandlesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taengine_tf_candles_total",
			Help: "Total TF candles emitted (by timeframe)",
		}, []string{"tf"}),
		TFBuildDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "taengine_tf_build_duration_seconds",
			Help:    "TF resampler processing latency per candle",
			Buckets: []float64{0.000001, 0.000005, 0.00001, 0.00005, 0.0001, 0.0005, 0.001},
		}),

		// Indicator metrics
		IndicatorComputeDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "taengine_indicator_compute_duration_seconds",
			Help:    "Indicator engine compute latency per TF candle",
			Buckets: []float64{0.000001, 0.000005, 0.00001, 0.00005, 0.0001, 0.0005, 0.001},
		}),
		IndicatorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taengine_indicators_total",
			Help: "Total confirmed indicator values computed",
		}),
		PeekResultsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taengine_peek_results_total",
			Help: "Total live (preview) indicator values computed from forming candles",
		}),

		// Snapshots
		SnapshotsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taengine_snapshots_total",
			Help: "Total engine state snapshots persisted",
		}),
		SnapshotDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "taengine_snapshot_duration_seconds",
			Help:    "Engine snapshot serialize+persist latency",
			Buckets: prometheus.DefBuckets,
		}),

		// Ring buffer
		RingBufOverflow: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taengine_ringbuf_overflow_total",
			Help: "Ring buffer push overflows (dropped candles)",
		}),

		// Backpressure
		FanoutDropsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taengine_fanout_drops_total",
			Help: "Candles dropped by FanOut bus per subscriber",
		}, []string{"subscriber"}),
		ChannelSaturationPct: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "taengine_channel_saturation_pct",
			Help: "Channel fill percentage (len/cap * 100)",
		}, []string{"channel_name"}),

		// Staleness
		StaleCandlesRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taengine_stale_candles_rejected_total",
			Help: "Candles rejected by TF Builder due to staleness",
		}),

		// PEL reclaim
		PELMessagesReclaimed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taengine_pel_messages_reclaimed_total",
			Help: "Messages reclaimed from dead consumers via XCLAIM",
		}),

		// Circuit breaker
		RedisCircuitBreakerState: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "taengine_redis_circuit_breaker_state",
			Help: "Redis circuit breaker state (0=closed, 1=open, 2=half-open)",
		}),
		RedisCircuitBreakerTrips: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taengine_redis_circuit_breaker_trips_total",
			Help: "Times the Redis circuit breaker tripped open",
		}),
		RedisBufferedWrites: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taengine_redis_buffered_writes_total",
			Help: "Writes buffered locally during Redis circuit breaker open state",
		}),
	}

	prometheus.MustRegister(
		m.CandlesTotal,
		m.WSReconnects,
		m.DroppedCandles,
		m.RedisWriteDur,
		m.SQLiteCommitDur,
		m.TFCandlesTotal,
		m.TFBuildDur,
		m.IndicatorComputeDur,
		m.IndicatorsTotal,
		m.PeekResultsTotal,
		m.SnapshotsTotal,
		m.SnapshotDur,
		m.RingBufOverflow,
		m.FanoutDropsTotal,
		m.ChannelSaturationPct,
		m.StaleCandlesRejected,
		m.PELMessagesReclaimed,
		m.RedisCircuitBreakerState,
		m.RedisCircuitBreakerTrips,
		m.RedisBufferedWrites,
	)

	return m
}

// HealthStatus represents the system health.
type HealthStatus struct {
	mu sync.RWMutex

	WSConnected    bool      `json:"ws_connected"`
	LastCandleTime time.Time `json:"last_candle_time"`
	RedisConnected bool      `json:"redis_connected"`
	SQLiteOK       bool      `json:"sqlite_ok"`
	TFBuilderOK    bool      `json:"tf_builder_ok"`
	IndicatorOK    bool      `json:"indicator_ok"`
	EnabledTFs     []int     `json:"enabled_tfs"`

	// Liveness probe results
	RedisLatencyMs  float64   `json:"redis_latency_ms"`
	SQLiteLatencyMs float64   `json:"sqlite_latency_ms"`
	LastCheckAt     time.Time `json:"last_check_at"`
	StartedAt       time.Time `json:"started_at"`
}

// NewHealthStatus returns a default health status.
func NewHealthStatus() *HealthStatus {
	return &HealthStatus{
		StartedAt: time.Now(),
	}
}

func (h *HealthStatus) SetWSConnected(v bool) {
	h.mu.Lock()
	h.WSConnected = v
	h.mu.Unlock()
}

func (h *HealthStatus) SetLastCandleTime(t time.Time) {
	h.mu.Lock()
	h.LastCandleTime = t
	h.mu.Unlock()
}

func (h *HealthStatus) SetRedisConnected(v bool) {
	h.mu.Lock()
	h.RedisConnected = v
	h.mu.Unlock()
}

func (h *HealthStatus) SetSQLiteOK(v bool) {
	h.mu.Lock()
	h.SQLiteOK = v
	h.mu.Unlock()
}

func (h *HealthStatus) SetTFBuilderOK(v bool) {
	h.mu.Lock()
	h.TFBuilderOK = v
	h.mu.Unlock()
}

func (h *HealthStatus) SetIndicatorOK(v bool) {
	h.mu.Lock()
	h.IndicatorOK = v
	h.mu.Unlock()
}

func (h *HealthStatus) SetEnabledTFs(tfs []int) {
	h.mu.Lock()
	h.EnabledTFs = tfs
	h.mu.Unlock()
}

// CheckRedis pings Redis and records latency + connectivity.
func (h *HealthStatus) CheckRedis(ctx context.Context, rdb *goredis.Client) {
	start := time.Now()
	err := rdb.Ping(ctx).Err()
	latency := time.Since(start)

	h.mu.Lock()
	h.RedisConnected = err == nil
	h.RedisLatencyMs = float64(latency.Microseconds()) / 1000.0
	h.LastCheckAt = time.Now()
	h.mu.Unlock()
}

// CheckSQLite runs a trivial query and records latency + health.
func (h *HealthStatus) CheckSQLite(ctx context.Context, db *sql.DB) {
	start := time.Now()
	err := db.PingContext(ctx)
	latency := time.Since(start)

	h.mu.Lock()
	h.SQLiteOK = err == nil
	h.SQLiteLatencyMs = float64(latency.Microseconds()) / 1000.0
	h.LastCheckAt = time.Now()
	h.mu.Unlock()
}

// StartLivenessChecker runs periodic dependency checks.
func (h *HealthStatus) StartLivenessChecker(ctx context.Context, rdb *goredis.Client, sqlDB *sql.DB, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
				if rdb != nil {
					h.CheckRedis(probeCtx, rdb)
				}
				if sqlDB != nil {
					h.CheckSQLite(probeCtx, sqlDB)
				}
				cancel()
			}
		}
	}()
}

// ServeHTTP handles the /healthz endpoint.
func (h *HealthStatus) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	// Determine overall status
	overallStatus := "healthy"
	httpCode := http.StatusOK

	if !h.RedisConnected || !h.SQLiteOK {
		overallStatus = "degraded"
		httpCode = http.StatusServiceUnavailable
	}
	if !h.RedisConnected && !h.SQLiteOK {
		overallStatus = "unhealthy"
	}

	// Candle age
	candleAge := ""
	if !h.LastCandleTime.IsZero() {
		candleAge = time.Since(h.LastCandleTime).Round(time.Millisecond).String()
	}

	status := struct {
		Status          string  `json:"status"`
		Uptime          string  `json:"uptime"`
		WSConnected     bool    `json:"ws_connected"`
		LastCandleTime  string  `json:"last_candle_time"`
		CandleAge       string  `json:"candle_age"`
		RedisConnected  bool    `json:"redis_connected"`
		RedisLatencyMs  float64 `json:"redis_latency_ms"`
		SQLiteOK        bool    `json:"sqlite_ok"`
		SQLiteLatencyMs float64 `json:"sqlite_latency_ms"`
		TFBuilderOK     bool    `json:"tf_builder_ok"`
		IndicatorOK     bool    `json:"indicator_ok"`
		EnabledTFs      []int   `json:"enabled_tfs"`
		LastCheckAt     string  `json:"last_check_at"`
	}{
		Status:          overallStatus,
		Uptime:          time.Since(h.StartedAt).Round(time.Second).String(),
		WSConnected:     h.WSConnected,
		LastCandleTime:  h.LastCandleTime.Format(time.RFC3339),
		CandleAge:       candleAge,
		RedisConnected:  h.RedisConnected,
		RedisLatencyMs:  h.RedisLatencyMs,
		SQLiteOK:        h.SQLiteOK,
		SQLiteLatencyMs: h.SQLiteLatencyMs,
		TFBuilderOK:     h.TFBuilderOK,
		IndicatorOK:     h.IndicatorOK,
		EnabledTFs:      h.EnabledTFs,
		LastCheckAt:     h.LastCheckAt.Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	if httpCode != http.StatusOK {
		w.WriteHeader(httpCode)
	}
	json.NewEncoder(w).Encode(status)
}

// Server runs an HTTP server exposing /metrics and /healthz.
type Server struct {
	health *HealthStatus
	addr   string
	mux    *http.ServeMux
	srv    *http.Server
}

// NewServer creates a metrics and health server.
func NewServer(addr string, health *HealthStatus) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", health.ServeHTTP)

	return &Server{
		health: health,
		addr:   addr,
		mux:    mux,
		srv: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
	}
}

// Handle registers an additional handler on the server mux.
// Must be called before Start.
func (s *Server) Handle(pattern string, handler http.HandlerFunc) {
	s.mux.HandleFunc(pattern, handler)
}

// Start launches the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		log.Printf("[metrics] server listening on %s", s.addr)
		if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("[metrics] server error: %v", err)
		}
	}()
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) {
	s.srv.Shutdown(ctx)
}
