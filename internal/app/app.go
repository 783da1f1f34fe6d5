// Package app wires configuration, logging, the optional search cache, the
// integration clients, the fallback responder and the health aggregator
// into the surface consumed by callers.
package app

import (
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/braxlabs/facet/internal/config"
	"github.com/braxlabs/facet/internal/fallback"
	"github.com/braxlabs/facet/internal/ghl"
	"github.com/braxlabs/facet/internal/health"
	"github.com/braxlabs/facet/internal/logger"
	"github.com/braxlabs/facet/internal/redis"
	redisstore "github.com/braxlabs/facet/internal/store/redis"
	"github.com/braxlabs/facet/internal/tavily"
)

type App struct {
	Cfg      *config.Config
	Logger   logger.Logger
	CRM      *ghl.Client
	Search   *tavily.Client
	Fallback *fallback.Responder
	Health   *health.Aggregator

	redisClient *goredis.Client
}

func New() (*App, error) {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.PrettyLog)

	responder := fallback.NewResponder()
	if cfg.FallbackFile != "" {
		loaded, err := fallback.Load(cfg.FallbackFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load fallback catalog: %w", err)
		}
		responder = loaded
		log.Info("fallback catalog loaded", logger.String("file", cfg.FallbackFile))
	}

	// The search cache is optional infrastructure: a missing or unreachable
	// redis degrades to uncached searches, it never blocks startup.
	var redisClient *goredis.Client
	var cache tavily.ResponseCache
	if cfg.RedisAddr != "" {
		client, err := redis.New(redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			DB:             cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, log)
		if err != nil {
			log.Warn("search cache unavailable, continuing without it", logger.Error(err))
		} else {
			redisClient = client
			cache = redisstore.NewSearchCache(client, cfg.SearchCacheTTL)
			log.Info("search cache initialized",
				logger.String("addr", cfg.RedisAddr),
				logger.Duration("ttl", cfg.SearchCacheTTL))
		}
	} else {
		log.Info("search cache not configured, searches are uncached")
	}

	crm := ghl.New(ghl.Config{
		Enabled:    cfg.GHLEnabled,
		BaseURL:    cfg.GHLBaseURL,
		Token:      cfg.GHLToken,
		LocationID: cfg.GHLLocationID,
		CalendarID: cfg.GHLCalendarID,
		Timeout:    cfg.GHLTimeout,
	}, log)

	search := tavily.New(tavily.Config{
		Enabled:        cfg.TavilyEnabled,
		BaseURL:        cfg.TavilyBaseURL,
		APIKey:         cfg.TavilyAPIKey,
		Timeout:        cfg.TavilyTimeout,
		ExcludeDomains: cfg.TavilyExcludeDomains,
	}, cache, log)

	aggregator := health.NewAggregator(cfg.HealthCacheTTL, cfg.HealthProbeTimeout, log, crm, search)

	log.Info("facet initialized",
		logger.Bool("ghl_enabled", cfg.GHLEnabled),
		logger.Bool("tavily_enabled", cfg.TavilyEnabled))

	return &App{
		Cfg:         cfg,
		Logger:      log,
		CRM:         crm,
		Search:      search,
		Fallback:    responder,
		Health:      aggregator,
		redisClient: redisClient,
	}, nil
}

// Close releases held resources. Safe to call once at process exit.
func (a *App) Close() {
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.Logger.Warnf("failed to close redis: %v", err)
		}
	}
	_ = a.Logger.Sync()
}
