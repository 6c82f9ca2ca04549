package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Config struct {
	ListenPort      string        // ex: ":8480"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Node identity on the mesh
	NodeID   string // stable node identifier (generated UUID when unset)
	NodeName string // human-readable node name (hostname when unset)

	// Capability seed file (the local node's own advertisements)
	SeedFile           string        // path to the capabilities.yaml file
	SeedReloadInterval time.Duration // interval to reload the seed file (default: 5m)
	WatchSeed          bool          // watch the seed file and reload on change

	// Cost publishing cadences
	CollectInterval time.Duration // telemetry sampling interval (default: 10s)
	PublishInterval time.Duration // cost broadcast interval (default: 30s)

	// Directory maintenance
	SyncInterval  time.Duration // redis <-> memory directory sync interval (default: 30s)
	SweepInterval time.Duration // expired-record sweep interval (default: 60s)
	RecordTTL     time.Duration // default advertisement freshness window (default: 90s)

	// Redis
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	// MQTT mesh broker (optional, empty broker = disabled)
	MQTTBroker      string // ex: "tcp://broker.local:1883"
	MQTTTopicPrefix string // topic prefix for cost updates (default: "bearing")

	// Access restrictions
	AllowedHosts   []string // optional, restrict access to specific Host headers
	AllowedCIDRS   []string // optional, restrict admin endpoints to specific IPs
	TrustProxy     bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
	RateLimitRPS   float64  // route endpoint refill rate (requests/second)
	RateLimitBurst int      // route endpoint burst size
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("BEARING_LISTEN_PORT", ":8480"),
		ShutdownTimeout: mustDuration("BEARING_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("BEARING_LOG_LEVEL", "info"),
		PrettyLog: mustBool("BEARING_PRETTY_LOG", true),

		// Node identity
		NodeID:   getenv("BEARING_NODE_ID", ""),
		NodeName: getenv("BEARING_NODE_NAME", ""),

		// Seed file
		SeedFile:           requireEnv("BEARING_SEED_FILE"),
		SeedReloadInterval: mustDuration("BEARING_SEED_RELOAD_INTERVAL", 5*time.Minute),
		WatchSeed:          mustBool("BEARING_WATCH_SEED", true),

		// Cost publishing
		CollectInterval: mustDuration("BEARING_COLLECT_INTERVAL", 10*time.Second),
		PublishInterval: mustDuration("BEARING_PUBLISH_INTERVAL", 30*time.Second),

		// Directory maintenance
		SyncInterval:  mustDuration("BEARING_SYNC_INTERVAL", 30*time.Second),
		SweepInterval: mustDuration("BEARING_SWEEP_INTERVAL", 60*time.Second),
		RecordTTL:     mustDuration("BEARING_RECORD_TTL", 90*time.Second),

		// Redis settings
		RedisAddr:             requireEnv("BEARING_REDIS_ADDR"),
		RedisUser:             getenv("BEARING_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("BEARING_REDIS_PASSWORD_REQUIRED", false),
		RedisPassword:         getenv("BEARING_REDIS_PASSWORD", ""),
		RedisDB:               getenvInt("BEARING_REDIS_DB", 0),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("REDIS_WARN_THRESHOLD", 3),

		// MQTT settings
		MQTTBroker:      getenv("BEARING_MQTT_BROKER", ""),
		MQTTTopicPrefix: getenv("BEARING_MQTT_TOPIC_PREFIX", "bearing"),

		// Access restrictions
		AllowedHosts:   splitAndTrim(getenv("BEARING_ALLOWED_HOSTS", "")),
		AllowedCIDRS:   parseAllowedIPs(getenv("BEARING_ALLOWED_CIDRS", "")),
		TrustProxy:     mustBool("BEARING_TRUST_PROXY", false),
		RateLimitRPS:   mustFloat("BEARING_RATE_LIMIT_RPS", 20),
		RateLimitBurst: getenvInt("BEARING_RATE_LIMIT_BURST", 40),
	}

	if cfg.NodeID == "" {
		cfg.NodeID = uuid.NewString()
	}
	if cfg.NodeName == "" {
		if host, err := os.Hostname(); err == nil && host != "" {
			cfg.NodeName = host
		} else {
			cfg.NodeName = cfg.NodeID[:8]
		}
	}

	// Validate Redis password configuration
	if cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		panic("❌ FATAL: BEARING_REDIS_PASSWORD is required when BEARING_REDIS_PASSWORD_REQUIRED=true")
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.RedisPassword = "***REDACTED***"
		if cfg.RedisUser != "" {
			cfgCopy.RedisUser = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
