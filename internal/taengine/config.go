package taengine

import (
	"log"
	"os"
	"strconv"
	"strings"

	"ta-enginev1/internal/indicator"
)

// Config holds all env-parsed configuration for the TA engine service.
type Config struct {
	RedisAddr     string
	RedisPassword string
	SQLitePath    string
	ConsumerGroup string
	ConsumerName  string

	EnabledTFs        []int
	SnapshotIntervalS int
	SnapshotKey       string
	HTTPAddr          string
	PELIntervalS      int
	PELMinIdleMs      int64

	// Circuit breaker thresholds for the Redis write path.
	CBMaxFailures   int
	CBResetTimeoutS int

	// SubscribeSymbolKeys are "exchange:symbol" keys for Redis stream consumption.
	SubscribeSymbolKeys []string

	// WebSocket ingest (optional). When WSURL is set, the service ingests 1s
	// candles directly from the exchange feed instead of relying on an
	// upstream producer writing candle streams.
	WSURL      string
	WSExchange string
	WSSymbols  []string

	IndicatorConfigs []indicator.TFIndicatorConfig
}

// LoadConfig reads all environment variables and returns a Config.
func LoadConfig() Config {
	redisAddr := getEnv("REDIS_ADDR", "localhost:6379")
	redisPassword := getEnv("REDIS_PASSWORD", "")
	sqlitePath := getEnv("SQLITE_PATH", "data/candles.db")
	consumerGroup := getEnv("CONSUMER_GROUP", "taengine")
	consumerName := getEnv("CONSUMER_NAME", "worker-1")
	enabledTFsStr := getEnv("ENABLED_TFS", "60,120,180,300")
	snapshotIntervalStr := getEnv("SNAPSHOT_INTERVAL_SEC", "30")
	subscribeSymbols := getEnv("SUBSCRIBE_SYMBOLS", "")
	snapshotKey := getEnv("SNAPSHOT_KEY", "ind:snapshot:engine")
	httpAddr := getEnv("TAENGINE_HTTP_ADDR", ":9095")
	pelIntervalStr := getEnv("PEL_RECLAIM_INTERVAL_SEC", "30")
	pelMinIdleStr := getEnv("PEL_MIN_IDLE_MS", "60000")

	wsURL := getEnv("WS_URL", "")
	wsExchange := getEnv("WS_EXCHANGE", "BINANCE")
	wsSymbols := parseList(getEnv("WS_SYMBOLS", ""))

	pelInterval, _ := strconv.Atoi(pelIntervalStr)
	if pelInterval <= 0 {
		pelInterval = 30
	}
	pelMinIdle, _ := strconv.ParseInt(pelMinIdleStr, 10, 64)
	if pelMinIdle <= 0 {
		pelMinIdle = 60000
	}

	snapshotInterval, _ := strconv.Atoi(snapshotIntervalStr)
	if snapshotInterval <= 0 {
		snapshotInterval = 30
	}

	// Non-positive values let NewCircuitBreaker apply its own defaults.
	cbMaxFailures, _ := strconv.Atoi(getEnv("CB_MAX_FAILURES", "5"))
	cbResetTimeout, _ := strconv.Atoi(getEnv("CB_RESET_TIMEOUT_SEC", "10"))

	enabledTFs := parseTFs(enabledTFsStr)
	indConfigs := BuildIndicatorConfigs(enabledTFs)
	symbolKeys := parseSymbolKeys(subscribeSymbols)

	return Config{
		RedisAddr:           redisAddr,
		RedisPassword:       redisPassword,
		SQLitePath:          sqlitePath,
		ConsumerGroup:       consumerGroup,
		ConsumerName:        consumerName,
		EnabledTFs:          enabledTFs,
		SnapshotIntervalS:   snapshotInterval,
		SubscribeSymbolKeys: symbolKeys,
		SnapshotKey:         snapshotKey,
		HTTPAddr:            httpAddr,
		PELIntervalS:        pelInterval,
		PELMinIdleMs:        pelMinIdle,
		CBMaxFailures:       cbMaxFailures,
		CBResetTimeoutS:     cbResetTimeout,
		WSURL:               wsURL,
		WSExchange:          wsExchange,
		WSSymbols:           wsSymbols,
		IndicatorConfigs:    indConfigs,
	}
}

// BuildIndicatorConfigs creates indicator configurations per TF from the
// INDICATOR_CONFIGS env var.  Format: "TYPE:PERIOD,TYPE:PERIOD,..."
// Example: "SMA:9,SMA:20,EMA:9,RSI:14,ATR:14,BBANDS:20:2,SAR"
// If the env var is empty, sensible defaults are used.
func BuildIndicatorConfigs(tfs []int) []indicator.TFIndicatorConfig {
	indSpecs := ParseIndicatorSpecs(getEnv("INDICATOR_CONFIGS", ""))
	configs := make([]indicator.TFIndicatorConfig, len(tfs))
	for i, tf := range tfs {
		configs[i] = indicator.TFIndicatorConfig{
			TF:         tf,
			Indicators: indSpecs,
		}
	}
	return configs
}

// ParseIndicatorSpecs parses "TYPE:PERIOD,..." into []IndicatorConfig.
// SAR takes no period; BBANDS accepts an optional deviation multiplier
// ("BBANDS:20:2.5"). Returns defaults if input is empty.
func ParseIndicatorSpecs(s string) []indicator.IndicatorConfig {
	if s == "" {
		return []indicator.IndicatorConfig{
			{Type: "SMA", Period: 20},
			{Type: "SMA", Period: 50},
			{Type: "EMA", Period: 9},
			{Type: "EMA", Period: 21},
			{Type: "WMA", Period: 20},
			{Type: "RSI", Period: 14},
			{Type: "ATR", Period: 14},
			{Type: "BBANDS", Period: 20, DevUp: 2, DevDown: 2},
			{Type: "SAR"},
		}
	}

	var configs []indicator.IndicatorConfig
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fields := strings.Split(part, ":")
		typ := strings.ToUpper(strings.TrimSpace(fields[0]))

		if typ == "SAR" {
			configs = append(configs, indicator.IndicatorConfig{Type: "SAR"})
			continue
		}

		if len(fields) < 2 {
			log.Printf("[taengine] skipping invalid indicator spec: %q", part)
			continue
		}
		period, err := strconv.Atoi(strings.TrimSpace(fields[1]))
		if err != nil || period <= 0 {
			log.Printf("[taengine] skipping invalid indicator spec: %q", part)
			continue
		}

		cfg := indicator.IndicatorConfig{Type: typ, Period: period}
		if typ == "BBANDS" {
			dev := indicator.DefaultBBandsDev
			if len(fields) >= 3 {
				if d, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64); err == nil && d > 0 {
					dev = d
				}
			}
			cfg.DevUp = dev
			cfg.DevDown = dev
		}
		configs = append(configs, cfg)
	}
	if len(configs) == 0 {
		log.Println("[taengine] WARNING: no valid indicators parsed, using defaults")
		return ParseIndicatorSpecs("")
	}
	log.Printf("[taengine] loaded %d indicator specs from INDICATOR_CONFIGS", len(configs))
	return configs
}

func parseTFs(s string) []int {
	parts := strings.Split(s, ",")
	tfs := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil || n <= 0 {
			continue
		}
		tfs = append(tfs, n)
	}
	return tfs
}

// parseSymbolKeys parses "EXCHANGE:SYMBOL,..." into "exchange:symbol" keys.
// Entries without an exchange default to BINANCE.
func parseSymbolKeys(s string) []string {
	if s == "" {
		return nil
	}
	var keys []string
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		if !strings.Contains(pair, ":") {
			pair = "BINANCE:" + pair
		}
		keys = append(keys, strings.ToUpper(pair))
	}
	return keys
}

func parseList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, strings.ToUpper(p))
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}
