package di

import (
	"context"
	"fmt"
	"strings"

	"FinSight/internal/domain/repository"
	"FinSight/internal/handler/api"
	internalrepo "FinSight/internal/repository"
	"FinSight/internal/service/ratelimit"
	"FinSight/internal/service/twelvedata"
	"FinSight/internal/usecase"
	"FinSight/pkg/config"
	xhttp "FinSight/pkg/http"
	pkgkafka "FinSight/pkg/kafka"
	applogger "FinSight/pkg/logger"
	"FinSight/pkg/metrics"
	"FinSight/pkg/server"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const rateLimitKeys = 10000

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		Service:    "finsight",
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideRegistry creates the Prometheus registry shared by every collector.
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(reg *prometheus.Registry) repository.Metrics {
	return metrics.New(reg)
}

// ProvideSeriesStore creates the local store selected by store.backend.
func ProvideSeriesStore(cfg *config.Config, l *applogger.Logger) (repository.SeriesStore, error) {
	switch strings.ToLower(cfg.Store.Backend) {
	case "", "memory":
		return internalrepo.NewMemoryStore(), nil
	case "redis":
		rc := cfg.Store.Redis
		client := internalrepo.NewRedisClient(internalrepo.RedisConfig{
			Addr:     rc.Addr,
			Password: rc.Password,
			DB:       rc.DB,
			Timeout:  rc.Timeout,
		})
		store, err := internalrepo.NewRedisStore(context.Background(), client, rc.Prefix, rc.Timeout)
		if err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("redis store: %w", err)
		}
		l.Info("redis store ready", applogger.String("addr", rc.Addr), applogger.String("namespace", store.Namespace()))
		return store, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// ProvideKafkaProducer creates a Kafka producer, or nil when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config, reg *prometheus.Registry) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithClientID(cfg.Kafka.ClientID),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithWriteTimeout(cfg.Kafka.WriteTimeout),
		pkgkafka.WithAsync(cfg.Kafka.Async),
		pkgkafka.WithRegisterer(reg),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideEventPublisher creates the Kafka publisher, or a no-op one without a producer.
func ProvideEventPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.EventPublisher {
	if producer == nil {
		return internalrepo.NoopPublisher{}
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic)
}

// ProvideMarketDataProvider creates the Twelve Data client.
func ProvideMarketDataProvider(cfg *config.Config) repository.MarketDataProvider {
	return twelvedata.New(twelvedata.Config{
		APIKey:     cfg.Provider.APIKey,
		BaseURL:    cfg.Provider.BaseURL,
		Interval:   cfg.Provider.Interval,
		OutputSize: cfg.Provider.OutputSize,
		Timeout:    cfg.Provider.Timeout,
	})
}

func ProvideResolver(store repository.SeriesStore, provider repository.MarketDataProvider, m repository.Metrics, l *applogger.Logger) *usecase.Resolver {
	return usecase.NewResolver(store, provider, m, l)
}

func ProvideComparator(resolver *usecase.Resolver) *usecase.Comparator {
	return usecase.NewComparator(resolver)
}

func ProvideForecaster(cfg *config.Config, m repository.Metrics, pub repository.EventPublisher, l *applogger.Logger) *usecase.Forecaster {
	return usecase.NewForecaster(usecase.ForecastConfig{
		MinObservations: cfg.Forecast.MinObservations,
		Holdout:         cfg.Forecast.Holdout,
		Horizon:         cfg.Forecast.Horizon,
		HighAccuracy:    cfg.Forecast.HighAccuracy,
		Timeout:         cfg.Forecast.Timeout,
	}, usecase.DefaultModelFactory, m, pub, l)
}

func ProvideIngestor(store repository.SeriesStore, m repository.Metrics, pub repository.EventPublisher, l *applogger.Logger) *usecase.Ingestor {
	return usecase.NewIngestor(store, m, pub, l)
}

// ProvideStocksHandler creates the HTTP handler for the analytics routes.
func ProvideStocksHandler(
	l *applogger.Logger,
	resolver *usecase.Resolver,
	comparator *usecase.Comparator,
	forecaster *usecase.Forecaster,
	ingestor *usecase.Ingestor,
) *api.StocksEchoHandler {
	return api.NewStocksEchoHandler(l, resolver, comparator, forecaster, ingestor)
}

// ProvideRateLimiter creates the per-client limiter, or nil when disabled.
func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	if !cfg.RateLimit.Enabled {
		return nil
	}
	return ratelimit.New(cfg.RateLimit.Rate, cfg.RateLimit.Burst, rateLimitKeys)
}

// ProvideHTTPServer creates the Echo server with every route registered.
func ProvideHTTPServer(
	cfg *config.Config,
	l *applogger.Logger,
	reg *prometheus.Registry,
	handler *api.StocksEchoHandler,
	limiter *ratelimit.Limiter,
) *xhttp.Server {
	opts := []xhttp.ServerOption{
		xhttp.WithHost(cfg.Server.Host),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(cfg.Server.CORS),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetrics(cfg.Metrics.Path, reg, reg))
	}
	if limiter != nil {
		metricsPath := cfg.Metrics.Path
		opts = append(opts, xhttp.WithMiddleware(ratelimit.Middleware(limiter, func(c echo.Context) bool {
			p := c.Request().URL.Path
			return p == "/health" || p == metricsPath
		})))
	}
	return xhttp.NewServer(l, []xhttp.Handler{handler}, opts...)
}

// ProvideApp creates the application and attaches the error log collector
// when logging.collect_errors is set and Kafka is available.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	srv *xhttp.Server,
	store repository.SeriesStore,
	pub repository.EventPublisher,
	producer *pkgkafka.Producer,
) *server.App {
	if cfg.Logging.CollectErrors && producer != nil {
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   cfg.Logging.FlushInterval,
			CountThreshold: cfg.Logging.Threshold,
			Topic:          cfg.Logging.Topic,
			Publisher:      producer,
		})
	}
	return server.New(cfg, l, srv, store, pub)
}
