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
	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// GoHighLevel CRM (gate + credentials)
	GHLEnabled    bool          // master switch; false => every CRM call short-circuits
	GHLBaseURL    string        // MCP endpoint (ex: https://services.leadconnectorhq.com/mcp/)
	GHLToken      string        // Private Integration Token
	GHLLocationID string        // sub-account ID, sent as locationId header
	GHLCalendarID string        // default calendar for appointment booking
	GHLTimeout    time.Duration // per-operation timeout (default: 30s)

	// Tavily search (gate + credentials)
	TavilyEnabled bool          // master switch for web search
	TavilyBaseURL string        // ex: https://api.tavily.com
	TavilyAPIKey  string        // tvly-... key
	TavilyTimeout time.Duration // per-operation timeout (default: 30s)

	// Domains excluded from price-comparison searches (unreliable pricing sources)
	TavilyExcludeDomains []string

	// Health probing
	HealthProbeTimeout time.Duration // probe deadline, must be shorter than op timeouts (default: 5s)
	HealthCacheTTL     time.Duration // how long a probe result is served from cache (default: 15s)

	// Fallback message catalog
	FallbackFile string // optional YAML overriding built-in fallback messages

	// Redis search cache (optional, empty addr = cache disabled)
	RedisAddr             string
	RedisUser             string
	RedisPassword         string
	RedisPasswordRequired bool
	RedisDB               int
	RedisDT               time.Duration // dial timeout
	RedisRT               time.Duration // read timeout
	RedisWT               time.Duration // write timeout
	RedisPoolSize         int
	RedisConnectTimeout   time.Duration // total time to retry connecting
	RedisRetryInterval    time.Duration // initial wait between retries, grows exponentially
	RedisMaxWait          time.Duration // max wait between retries
	RedisPingTimeout      time.Duration // timeout for each ping attempt
	RedisWarnThreshold    int           // warn after this many attempts
	SearchCacheTTL        time.Duration // TTL for cached search responses (default: 15m)
}

func Load() *Config {
	cfg := &Config{
		// Logging
		LogLevel:  getenv("FACET_LOG_LEVEL", "info"),
		PrettyLog: mustBool("FACET_PRETTY_LOG", true),

		// GoHighLevel
		GHLEnabled:    mustBool("FACET_GHL_ENABLED", false),
		GHLBaseURL:    getenv("FACET_GHL_BASE_URL", "https://services.leadconnectorhq.com/mcp/"),
		GHLToken:      getenv("FACET_GHL_PIT_TOKEN", ""),
		GHLLocationID: getenv("FACET_GHL_LOCATION_ID", ""),
		GHLCalendarID: getenv("FACET_GHL_CALENDAR_ID", ""),
		GHLTimeout:    mustDuration("FACET_GHL_TIMEOUT", 30*time.Second),

		// Tavily
		TavilyEnabled: mustBool("FACET_TAVILY_ENABLED", false),
		TavilyBaseURL: getenv("FACET_TAVILY_BASE_URL", "https://api.tavily.com"),
		TavilyAPIKey:  getenv("FACET_TAVILY_API_KEY", ""),
		TavilyTimeout: mustDuration("FACET_TAVILY_TIMEOUT", 30*time.Second),

		TavilyExcludeDomains: splitAndTrim(getenv("FACET_TAVILY_EXCLUDE_DOMAINS",
			"alibaba.com,aliexpress.com,wish.com,ebay.com")),

		// Health
		HealthProbeTimeout: mustDuration("FACET_HEALTH_PROBE_TIMEOUT", 5*time.Second),
		HealthCacheTTL:     mustDuration("FACET_HEALTH_CACHE_TTL", 15*time.Second),

		// Fallback catalog
		FallbackFile: getenv("FACET_FALLBACK_FILE", ""),

		// Redis search cache
		RedisAddr:             getenv("FACET_REDIS_ADDR", ""),
		RedisUser:             getenv("FACET_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("FACET_REDIS_PASSWORD_REQUIRED", false),
		RedisPassword:         getenv("FACET_REDIS_PASSWORD", ""),
		RedisDB:               getenvInt("FACET_REDIS_DB", 0),
		RedisDT:               mustDuration("FACET_REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("FACET_REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("FACET_REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisPoolSize:         getenvInt("FACET_REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("FACET_REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("FACET_REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisMaxWait:          mustDuration("FACET_REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("FACET_REDIS_PING_TIMEOUT", 5*time.Second),
		RedisWarnThreshold:    getenvInt("FACET_REDIS_WARN_THRESHOLD", 3),
		SearchCacheTTL:        mustDuration("FACET_SEARCH_CACHE_TTL", 15*time.Minute),
	}

	validate(cfg)

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		if cfgCopy.GHLToken != "" {
			cfgCopy.GHLToken = "***REDACTED***"
		}
		if cfgCopy.TavilyAPIKey != "" {
			cfgCopy.TavilyAPIKey = "***REDACTED***"
		}
		if cfgCopy.RedisPassword != "" {
			cfgCopy.RedisPassword = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// validate enforces that an enabled gate has everything it needs at startup.
// A missing credential must fail here, not on the first request.
func validate(cfg *Config) {
	if cfg.GHLEnabled {
		if cfg.GHLToken == "" {
			panic("❌ FATAL: FACET_GHL_PIT_TOKEN is required when FACET_GHL_ENABLED=true")
		}
		if cfg.GHLLocationID == "" {
			panic("❌ FATAL: FACET_GHL_LOCATION_ID is required when FACET_GHL_ENABLED=true")
		}
		if cfg.GHLCalendarID == "" {
			panic("❌ FATAL: FACET_GHL_CALENDAR_ID is required when FACET_GHL_ENABLED=true")
		}
		if cfg.HealthProbeTimeout >= cfg.GHLTimeout {
			panic(fmt.Sprintf("❌ FATAL: FACET_HEALTH_PROBE_TIMEOUT (%v) must be shorter than FACET_GHL_TIMEOUT (%v)",
				cfg.HealthProbeTimeout, cfg.GHLTimeout))
		}
	}

	if cfg.TavilyEnabled {
		if cfg.TavilyAPIKey == "" {
			panic("❌ FATAL: FACET_TAVILY_API_KEY is required when FACET_TAVILY_ENABLED=true")
		}
		if cfg.HealthProbeTimeout >= cfg.TavilyTimeout {
			panic(fmt.Sprintf("❌ FATAL: FACET_HEALTH_PROBE_TIMEOUT (%v) must be shorter than FACET_TAVILY_TIMEOUT (%v)",
				cfg.HealthProbeTimeout, cfg.TavilyTimeout))
		}
	}

	if cfg.RedisAddr != "" && cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		panic("❌ FATAL: FACET_REDIS_PASSWORD is required when FACET_REDIS_PASSWORD_REQUIRED=true")
	}
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
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
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
