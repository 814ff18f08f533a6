package di

import (
	"fmt"
	"time"

	"FinSight/internal/audit"
	"FinSight/internal/domain/repository"
	domsvc "FinSight/internal/domain/service"
	"FinSight/internal/handler/api"
	"FinSight/internal/provider"
	"FinSight/internal/provider/alphavantage"
	"FinSight/internal/provider/finnhub"
	"FinSight/internal/provider/polygon"
	"FinSight/internal/provider/stream"
	internalrepo "FinSight/internal/repository"
	icache "FinSight/internal/service/cache"
	"FinSight/internal/usecase"
	pkgcache "FinSight/pkg/cache"
	pkgch "FinSight/pkg/clickhouse"
	"FinSight/pkg/config"
	xhttp "FinSight/pkg/http"
	pkgkafka "FinSight/pkg/kafka"
	applogger "FinSight/pkg/logger"
	"FinSight/pkg/metrics"
	"FinSight/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	level := "info"
	format := "console"
	if cfg.Environment == "production" {
		format = "json"
	}
	return applogger.New(&applogger.Config{Level: level, Format: format, Output: "stdout"})
}

// ProvideCacheStore creates the bar cache backend: layered Redis when
// configured, in-memory otherwise.
func ProvideCacheStore(cfg *config.Config) (pkgcache.Service, error) {
	if !cfg.Cache.Redis.Enabled {
		return pkgcache.NewMemoryCache(), nil
	}
	redisCache, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(cfg.Cache.Redis.Host),
		pkgcache.WithRedisPort(cfg.Cache.Redis.Port),
		pkgcache.WithRedisPassword(cfg.Cache.Redis.Password),
		pkgcache.WithRedisDB(cfg.Cache.Redis.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return pkgcache.NewLayeredCache(redisCache), nil
}

// ProvideBarCache wraps the cache backend with series serialization.
func ProvideBarCache(store pkgcache.Service, cfg *config.Config) repository.BarCache {
	return provider.NewStoreCache(store, cfg.Cache.Retention)
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideBarProviders assembles the fetch order: finnhub first, polygon
// second. A provider without an API key is left out of the chain.
func ProvideBarProviders(cfg *config.Config) []domsvc.BarProvider {
	var providers []domsvc.BarProvider
	if cfg.Providers.Finnhub.APIKey != "" {
		providers = append(providers, finnhub.New(finnhub.Config{
			APIKey:      cfg.Providers.Finnhub.APIKey,
			BaseURL:     cfg.Providers.Finnhub.BaseURL,
			IndexSymbol: cfg.Providers.Finnhub.IndexSymbol,
			MinInterval: cfg.Providers.Finnhub.MinInterval,
			Timeout:     cfg.Providers.Finnhub.Timeout,
		}))
	}
	if cfg.Providers.Polygon.APIKey != "" {
		providers = append(providers, polygon.New(polygon.Config{
			APIKey:      cfg.Providers.Polygon.APIKey,
			BaseURL:     cfg.Providers.Polygon.BaseURL,
			IndexSymbol: cfg.Providers.Polygon.IndexSymbol,
			MinInterval: cfg.Providers.Polygon.MinInterval,
			Timeout:     cfg.Providers.Polygon.Timeout,
		}))
	}
	return providers
}

// ProvideFundamentalsProviders assembles the fundamentals fetch order.
func ProvideFundamentalsProviders(cfg *config.Config) []domsvc.FundamentalsProvider {
	var providers []domsvc.FundamentalsProvider
	if cfg.Providers.Finnhub.APIKey != "" {
		providers = append(providers, finnhub.New(finnhub.Config{
			APIKey:  cfg.Providers.Finnhub.APIKey,
			BaseURL: cfg.Providers.Finnhub.BaseURL,
			Timeout: cfg.Providers.Finnhub.Timeout,
		}))
	}
	if cfg.Providers.AlphaVantage.APIKey != "" {
		providers = append(providers, alphavantage.New(alphavantage.Config{
			APIKey:  cfg.Providers.AlphaVantage.APIKey,
			BaseURL: cfg.Providers.AlphaVantage.BaseURL,
			Timeout: cfg.Providers.AlphaVantage.Timeout,
		}))
	}
	return providers
}

// ProvideArchive creates the ClickHouse bar archive, or nil when disabled.
func ProvideArchive(cfg *config.Config, l *applogger.Logger) (repository.BarArchive, error) {
	if !cfg.Archive.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.Archive.Host),
		pkgch.WithPort(cfg.Archive.Port),
		pkgch.WithDatabase(cfg.Archive.Database),
		pkgch.WithCredentials(cfg.Archive.User, cfg.Archive.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithTimeouts(cfg.Archive.DialTimeout, cfg.Archive.ReadTimeout, cfg.Archive.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.Archive.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	archive := internalrepo.NewClickHouseBarArchive(client.DB(), cfg.Archive.Table)
	archive.SetLogger(l)
	return archive, nil
}

// ProvideAuditSink creates the Kafka audit trail publisher, or a no-op
// sink when auditing is disabled.
func ProvideAuditSink(cfg *config.Config, l *applogger.Logger) (repository.AuditSink, error) {
	if !cfg.Audit.Enabled {
		return audit.NopSink{}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Audit.Brokers),
		pkgkafka.WithRequiredAcks(1),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return audit.NewKafkaSink(producer, cfg.Audit.Topic, l), nil
}

// ProvideStream creates the optional intraday trade stream.
func ProvideStream(cfg *config.Config, l *applogger.Logger) *stream.Stream {
	if !cfg.Stream.Enabled {
		return nil
	}
	return stream.New(stream.Config{
		APIKey:         cfg.Providers.Finnhub.APIKey,
		WebSocketURL:   cfg.Stream.WebSocketURL,
		Symbols:        cfg.Stream.Symbols,
		ReconnectDelay: cfg.Stream.ReconnectDelay,
		PingInterval:   cfg.Stream.PingInterval,
	}, l)
}

// ProvideChain creates the tiered fetch chain.
func ProvideChain(
	providers []domsvc.BarProvider,
	fundamentals []domsvc.FundamentalsProvider,
	barCache repository.BarCache,
	archive repository.BarArchive,
	auditSink repository.AuditSink,
	m repository.Metrics,
	cfg *config.Config,
	l *applogger.Logger,
) *provider.Chain {
	opts := []provider.Option{
		provider.WithFundamentals(fundamentals),
		provider.WithAudit(auditSink),
		provider.WithMetrics(m),
		provider.WithTTLs(cfg.Cache.FreshTTL, cfg.Cache.StaleTTL),
	}
	if archive != nil {
		opts = append(opts, provider.WithArchive(archive))
	}
	if cfg.Pipeline.BackoffBase > 0 && cfg.Pipeline.BackoffCeiling > 0 {
		opts = append(opts, provider.WithBackoff(cfg.Pipeline.BackoffBase, cfg.Pipeline.BackoffCeiling))
	}
	return provider.NewChain(providers, barCache, l, opts...)
}

// ProvideAnalyzer creates the decision pipeline use case.
func ProvideAnalyzer(
	chain *provider.Chain,
	st *stream.Stream,
	auditSink repository.AuditSink,
	m repository.Metrics,
	cfg *config.Config,
	l *applogger.Logger,
) (*usecase.Analyzer, error) {
	loc, err := time.LoadLocation(cfg.Pipeline.ExchangeTZ)
	if err != nil {
		return nil, fmt.Errorf("exchange timezone: %w", err)
	}
	opts := []usecase.AnalyzerOption{
		usecase.WithAuditSink(auditSink),
		usecase.WithMetrics(m),
		usecase.WithTimeout(cfg.Pipeline.RequestTimeout),
		usecase.WithLocation(loc),
		usecase.WithAllowlist(cfg.Pipeline.Allowlist),
	}
	if st != nil {
		opts = append(opts, usecase.WithSession(st))
	}
	return usecase.NewAnalyzer(chain, l, opts...), nil
}

// ProvideHandler creates the HTTP handler with a response cache.
func ProvideHandler(analyzer *usecase.Analyzer, cfg *config.Config, l *applogger.Logger) xhttp.Handler {
	var respCache icache.BytesCache
	if cfg.Cache.Redis.Enabled {
		respCache = icache.NewRedisCache(icache.RedisConfig{
			Addr:     fmt.Sprintf("%s:%d", cfg.Cache.Redis.Host, cfg.Cache.Redis.Port),
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
	} else {
		respCache = icache.NewTTLCache()
	}
	return api.NewAnalyzeHandler(l, analyzer, respCache)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	handler xhttp.Handler,
	st *stream.Stream,
	archive repository.BarArchive,
	auditSink repository.AuditSink,
) *server.App {
	app := server.New(cfg, l, handler)
	if st != nil {
		app.SetStream(st)
	}
	if archive != nil {
		app.SetArchive(archive)
	}
	app.SetAuditSink(auditSink)
	return app
}
