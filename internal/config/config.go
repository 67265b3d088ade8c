package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	SeedFile        string        // path to the operator-curated content file (categories + links)
	ReloadInterval  time.Duration // interval to reload the seed file (default: 24h)
	JanitorInterval time.Duration // interval to prune expired cache entries (default: 10m)

	// Engine tuning. Defaults mirror the reference deployment; all of them
	// are overridable because they are heuristics, not invariants.
	CategoryFilterTTL time.Duration // filtered category set cache (default: 60s)
	CategoryRawTTL    time.Duration // raw admin category fetch cache (default: 1m)
	BookmarkTTL       time.Duration // per-category bookmark cache (default: 5m)
	FetchRetries      int           // retry budget for bookmark fetches (default: 3)
	BackoffBase       time.Duration // first retry backoff, doubled per attempt (default: 1s)
	FetchDelay        time.Duration // pause between user and admin bookmark fetches (default: 100ms)
	StaggerStep       time.Duration // per-category delay when many load at once (default: 500ms)

	// Favicon resolution (best effort, never authoritative)
	FaviconEndpoint string        // lookup URL template, %s replaced by hostname
	FaviconTimeout  time.Duration // per-lookup timeout (default: 2s)
	FaviconDebounce time.Duration // settle delay while typing (default: 500ms)

	// Auth
	AuthSecret string        // HMAC secret for viewer session tokens
	TokenTTL   time.Duration // session token lifetime (default: 720h)

	// Redis (the remote document store)
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

	AllowedOrigins []string // CORS origins of the start-page frontend
	AdminCIDRs     []string // IPs/CIDRs allowed on operator endpoints (empty => no filter)
	TrustProxy     bool     // true => trust X-Forwarded-For headers
	RateBurst      int      // rate limit burst per IP
	RatePerMinute  int      // rate limit refill per IP per minute
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("STARTPAGE_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("STARTPAGE_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("STARTPAGE_LOG_LEVEL", "info"),
		PrettyLog: mustBool("STARTPAGE_PRETTY_LOG", true),

		// Operator content
		SeedFile:        getenv("STARTPAGE_SEED_FILE", "/app/seed.yaml"),
		ReloadInterval:  mustDuration("STARTPAGE_RELOAD_SOURCE_INTERVAL", 24*time.Hour),
		JanitorInterval: mustDuration("STARTPAGE_JANITOR_INTERVAL", 10*time.Minute),

		// Engine tuning
		CategoryFilterTTL: mustDuration("STARTPAGE_CATEGORY_FILTER_TTL", 60*time.Second),
		CategoryRawTTL:    mustDuration("STARTPAGE_CATEGORY_RAW_TTL", time.Minute),
		BookmarkTTL:       mustDuration("STARTPAGE_BOOKMARK_TTL", 5*time.Minute),
		FetchRetries:      getenvInt("STARTPAGE_FETCH_RETRIES", 3),
		BackoffBase:       mustDuration("STARTPAGE_BACKOFF_BASE", time.Second),
		FetchDelay:        mustDuration("STARTPAGE_FETCH_DELAY", 100*time.Millisecond),
		StaggerStep:       mustDuration("STARTPAGE_STAGGER_STEP", 500*time.Millisecond),

		// Favicon
		FaviconEndpoint: getenv("STARTPAGE_FAVICON_ENDPOINT", "https://www.google.com/s2/favicons?domain=%s&sz=64"),
		FaviconTimeout:  mustDuration("STARTPAGE_FAVICON_TIMEOUT", 2*time.Second),
		FaviconDebounce: mustDuration("STARTPAGE_FAVICON_DEBOUNCE", 500*time.Millisecond),

		// Auth
		AuthSecret: requireEnv("STARTPAGE_AUTH_SECRET"),
		TokenTTL:   mustDuration("STARTPAGE_TOKEN_TTL", 720*time.Hour),

		// Redis settings
		RedisAddr:             requireEnv("STARTPAGE_REDIS_ADDR"),
		RedisUser:             getenv("STARTPAGE_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("STARTPAGE_REDIS_PASSWORD_REQUIRED", true),
		RedisPassword:         getenv("STARTPAGE_REDIS_PASSWORD", ""),
		RedisDB:               requireEnvInt("STARTPAGE_REDIS_DB"),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Access
		AllowedOrigins: splitAndTrim(getenv("STARTPAGE_ALLOWED_ORIGINS", "")),
		AdminCIDRs:     splitAndTrim(getenv("STARTPAGE_ADMIN_CIDRS", "")),
		TrustProxy:     mustBool("STARTPAGE_TRUST_PROXY", true),
		RateBurst:      getenvInt("STARTPAGE_RATE_BURST", 60),
		RatePerMinute:  getenvInt("STARTPAGE_RATE_PER_MINUTE", 120),
	}

	if cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		panic("❌ FATAL: STARTPAGE_REDIS_PASSWORD is required when STARTPAGE_REDIS_PASSWORD_REQUIRED=true")
	}
	if cfg.FetchRetries < 0 {
		panic("❌ FATAL: STARTPAGE_FETCH_RETRIES must be >= 0")
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.RedisPassword = "***REDACTED***"
		cfgCopy.AuthSecret = "***REDACTED***"
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

func requireEnvInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		panic(fmt.Sprintf("❌ FATAL: Invalid integer value for %s: %s", key, v))
	}
	return i
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

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
