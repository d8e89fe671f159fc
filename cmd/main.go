package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"

	"github.com/sbilibin2017/gw-ledger/internal/handlers"
	"github.com/sbilibin2017/gw-ledger/internal/jwt"
	"github.com/sbilibin2017/gw-ledger/internal/logger"
	"github.com/sbilibin2017/gw-ledger/internal/metrics"
	"github.com/sbilibin2017/gw-ledger/internal/middlewares"
	"github.com/sbilibin2017/gw-ledger/internal/repositories"
	"github.com/sbilibin2017/gw-ledger/internal/scheduler"
	"github.com/sbilibin2017/gw-ledger/internal/services"

	_ "github.com/jackc/pgx/v5/stdlib"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Build info variables, set via ldflags at build time.
var (
	buildVersion = "N/A" // Version of the service
	buildDate    = "N/A" // Build date
	buildCommit  = "N/A" // Git commit hash
)

type appConfig struct {
	Host        string
	Port        string
	LogLevel    string
	LogEncoding string
}

type postgresConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	DB           string
	MaxOpenConns int
	MaxIdleConns int
}

type redisConfig struct {
	Host         string
	Port         int
	DB           int
	Password     string
	PoolSize     int
	MinIdleConns int
}

type kafkaConfig struct {
	Brokers []string
	Topic   string
}

type jwtConfig struct {
	SecretKey string
	Exp       time.Duration
}

type ledgerConfig struct {
	RetryAttempts      int
	RetryBaseDelay     time.Duration
	RetryMaxDelay      time.Duration
	BatchConcurrency   int
	BatchLimit         int
	LockTimeout        time.Duration
	JobLockTTL         time.Duration
	MarkerTTL          time.Duration
	BreakerFailures    int
	BreakerOpenTimeout time.Duration
	PublishTimeout     time.Duration
	Location           *time.Location
	Cron               scheduler.Config
}

type config struct {
	App      appConfig
	Postgres postgresConfig
	Redis    redisConfig
	Kafka    kafkaConfig
	JWT      jwtConfig
	Ledger   ledgerConfig
}

// @title gw-ledger API
// @version 1.0.0
// @description Operator API of the retail banking ledger: settlement, interest, reconciliation
// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	printBuildInfo()
	configPath, issueFor := parseFlags()

	cfg, err := parseConfig(configPath)
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	if issueFor != "" {
		token, err := issueToken(cfg, issueFor)
		if err != nil {
			log.Fatalf("failed to issue operator token: %v", err)
		}
		fmt.Println(token)
		return
	}

	if err := run(context.Background(), cfg); err != nil {
		log.Fatalf("application stopped with error: %v", err)
	}
}

// printBuildInfo prints the build version, commit hash, and build date.
func printBuildInfo() {
	fmt.Printf("Starting service version %s, commit %s, build %s\n", buildVersion, buildCommit, buildDate)
}

// parseFlags parses command-line flags and returns the config file path and,
// when set, the operator to issue a token for.
func parseFlags() (string, string) {
	c := flag.String("c", "config.env", "Path to configuration file")
	issue := flag.String("issue-token", "", "Print an operator token for the given name and exit")
	flag.Parse()
	return *c, *issue
}

// parseConfig loads environment variables from a file and returns
// the application, database, Redis, Kafka, JWT and ledger configuration.
func parseConfig(path string) (cfg config, err error) {
	_ = godotenv.Load(path)

	getEnv := func(key, defaultValue string) string {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			return val
		}
		return defaultValue
	}
	getInt := func(key, defaultValue string) (int, error) {
		v, err := strconv.Atoi(getEnv(key, defaultValue))
		if err != nil {
			return 0, fmt.Errorf("%s: %w", key, err)
		}
		return v, nil
	}
	getDuration := func(key, defaultValue string) (time.Duration, error) {
		v, err := time.ParseDuration(getEnv(key, defaultValue))
		if err != nil {
			return 0, fmt.Errorf("%s: %w", key, err)
		}
		return v, nil
	}

	// Application config
	cfg.App.Host = getEnv("APP_HOST", "localhost")
	cfg.App.Port = getEnv("APP_PORT", "8080")
	cfg.App.LogLevel = getEnv("APP_LOG_LEVEL", "info")
	cfg.App.LogEncoding = getEnv("APP_LOG_ENCODING", "json")

	// PostgreSQL config
	cfg.Postgres.Host = getEnv("POSTGRES_HOST", "localhost")
	cfg.Postgres.User = getEnv("POSTGRES_USER", "user")
	cfg.Postgres.Password = getEnv("POSTGRES_PASSWORD", "password")
	cfg.Postgres.DB = getEnv("POSTGRES_DB", "database")
	if cfg.Postgres.Port, err = getInt("POSTGRES_PORT", "5432"); err != nil {
		return
	}
	if cfg.Postgres.MaxOpenConns, err = getInt("POSTGRES_MAX_OPEN_CONNS", "16"); err != nil {
		return
	}
	if cfg.Postgres.MaxIdleConns, err = getInt("POSTGRES_MAX_IDLE_CONNS", "8"); err != nil {
		return
	}

	// Redis config
	cfg.Redis.Host = getEnv("REDIS_HOST", "localhost")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	if cfg.Redis.Port, err = getInt("REDIS_PORT", "6379"); err != nil {
		return
	}
	if cfg.Redis.DB, err = getInt("REDIS_DB", "0"); err != nil {
		return
	}
	if cfg.Redis.PoolSize, err = getInt("REDIS_POOL_SIZE", "10"); err != nil {
		return
	}
	if cfg.Redis.MinIdleConns, err = getInt("REDIS_MIN_IDLE_CONNS", "2"); err != nil {
		return
	}

	// Kafka config, publishing is off without brokers
	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.Kafka.Brokers = append(cfg.Kafka.Brokers, b)
			}
		}
	}
	cfg.Kafka.Topic = getEnv("KAFKA_TOPIC", "ledger-events")

	// JWT config
	cfg.JWT.SecretKey = getEnv("JWT_SECRET_KEY", "my_super_secret_key")
	expSeconds, err := getInt("JWT_EXP_SECOND", "3600")
	if err != nil {
		return
	}
	cfg.JWT.Exp = time.Duration(expSeconds) * time.Second

	// Ledger config
	l := &cfg.Ledger
	if l.RetryAttempts, err = getInt("LEDGER_RETRY_ATTEMPTS", "3"); err != nil {
		return
	}
	if l.RetryBaseDelay, err = getDuration("LEDGER_RETRY_BASE_DELAY", "50ms"); err != nil {
		return
	}
	if l.RetryMaxDelay, err = getDuration("LEDGER_RETRY_MAX_DELAY", "1s"); err != nil {
		return
	}
	if l.BatchConcurrency, err = getInt("LEDGER_BATCH_CONCURRENCY", "4"); err != nil {
		return
	}
	if l.BatchLimit, err = getInt("LEDGER_BATCH_LIMIT", "1000"); err != nil {
		return
	}
	if l.LockTimeout, err = getDuration("LEDGER_LOCK_TIMEOUT", "2s"); err != nil {
		return
	}
	if l.JobLockTTL, err = getDuration("LEDGER_JOB_LOCK_TTL", "30m"); err != nil {
		return
	}
	if l.MarkerTTL, err = getDuration("LEDGER_MARKER_TTL", "840h"); err != nil {
		return
	}
	if l.BreakerFailures, err = getInt("LEDGER_BREAKER_FAILURES", "5"); err != nil {
		return
	}
	if l.BreakerOpenTimeout, err = getDuration("LEDGER_BREAKER_OPEN_TIMEOUT", "30s"); err != nil {
		return
	}
	if l.PublishTimeout, err = getDuration("LEDGER_PUBLISH_TIMEOUT", "5s"); err != nil {
		return
	}
	if l.Location, err = time.LoadLocation(getEnv("LEDGER_TIMEZONE", "UTC")); err != nil {
		err = fmt.Errorf("LEDGER_TIMEZONE: %w", err)
		return
	}

	defaults := scheduler.DefaultConfig()
	l.Cron = scheduler.Config{
		ScheduledTransfers: getEnv("LEDGER_CRON_TRANSFERS", defaults.ScheduledTransfers),
		DailyInterest:      getEnv("LEDGER_CRON_DAILY_INTEREST", defaults.DailyInterest),
		MonthlyInterest:    getEnv("LEDGER_CRON_MONTHLY_INTEREST", defaults.MonthlyInterest),
		Reconciliation:     getEnv("LEDGER_CRON_RECONCILIATION", defaults.Reconciliation),
		Location:           l.Location,
	}

	return
}

// issueToken signs an operator token with the configured secret.
func issueToken(cfg config, operator string) (string, error) {
	return jwt.New(jwt.WithSecretKey(cfg.JWT.SecretKey), jwt.WithExpiration(cfg.JWT.Exp)).
		Generate(context.Background(), operator)
}

// newRouter mounts the operator API, metrics and swagger routes.
func newRouter(
	cfg config,
	tokener middlewares.Tokener,
	settler handlers.TransactionSettler,
	accruer handlers.InterestAccruer,
	reconciler handlers.AccountReconciler,
	sched handlers.TransferScheduler,
	registry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middlewares.LoggingMiddleware(logger.Log))

	r.Route("/api/v1/ledger", func(r chi.Router) {
		r.Use(middlewares.AuthMiddleware(tokener))
		r.Post("/transactions/{reference}/settle", handlers.NewSettleHandler(settler))
		r.Post("/transactions/{reference}/schedule", handlers.NewScheduleHandler(sched))
		r.Post("/accounts/{number}/interest", handlers.NewInterestHandler(accruer))
		r.Get("/accounts/{number}/reconciliation", handlers.NewReconciliationHandler(reconciler))
		r.Post("/accounts/{number}/reconciliation/adjust", handlers.NewAdjustHandler(reconciler))
		r.Post("/jobs/{job}/run", handlers.NewRunJobHandler(sched))
	})

	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://%s:%s/swagger/doc.json", cfg.App.Host, cfg.App.Port)),
	))

	return r
}

// run initializes the logger, database, Redis, Kafka, the ledger engines, the scheduler and the HTTP server.
// It sets up routes, applies middleware, and handles graceful shutdown.
func run(ctx context.Context, cfg config) error {
	// Initialize logger
	if err := logger.Initialize(cfg.App.LogLevel, cfg.App.LogEncoding); err != nil {
		fmt.Println("failed to initialize logger:", err)
		return err
	}
	defer logger.Log.Sync()
	logger.Log.Infof("Logger initialized with level %s", cfg.App.LogLevel)

	// Connect to PostgreSQL
	pg := cfg.Postgres
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable", pg.User, pg.Password, pg.Host, pg.Port, pg.DB)
	logger.Log.Infow("Connecting to PostgreSQL", "host", pg.Host, "port", pg.Port, "db", pg.DB)

	db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
	if err != nil {
		return fmt.Errorf("PostgreSQL connection error: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(pg.MaxOpenConns)
	db.SetMaxIdleConns(pg.MaxIdleConns)
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("PostgreSQL ping failed: %w", err)
	}
	if err := repositories.Migrate(ctx, db); err != nil {
		return fmt.Errorf("schema migration failed: %w", err)
	}

	// Connect to Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("Redis connection error: %w", err)
	}
	defer rdb.Close()

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector("ledger")
	if err := collector.Register(registry); err != nil {
		return fmt.Errorf("metrics registration failed: %w", err)
	}

	// Ledger events
	var writer services.KafkaWriter
	if len(cfg.Kafka.Brokers) > 0 {
		writer = &kafka.Writer{
			Addr:                   kafka.TCP(cfg.Kafka.Brokers...),
			Topic:                  cfg.Kafka.Topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
		}
		logger.Log.Infow("Publishing ledger events", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	} else {
		logger.Log.Warn("KAFKA_BROKERS not set, ledger events are not published")
	}
	publisher := services.NewKafkaEventPublisher(writer, services.BreakerConfig{
		ConsecutiveFailures: uint32(cfg.Ledger.BreakerFailures),
		OpenTimeout:         cfg.Ledger.BreakerOpenTimeout,
		WriteTimeout:        cfg.Ledger.PublishTimeout,
	}, collector)
	defer publisher.Close()

	// Initialize repositories
	ledgerRepo := repositories.NewLedgerRepository(db,
		repositories.WithLockTimeout(cfg.Ledger.LockTimeout),
	)
	markers := repositories.NewAccrualMarkerRepository(rdb, cfg.Ledger.MarkerTTL)
	locker := repositories.NewJobLocker(rdb, cfg.Ledger.JobLockTTL)

	// Initialize services
	retry := services.RetryPolicy{
		MaxAttempts: cfg.Ledger.RetryAttempts,
		BaseDelay:   cfg.Ledger.RetryBaseDelay,
		MaxDelay:    cfg.Ledger.RetryMaxDelay,
	}
	settlement := services.NewSettlementService(ledgerRepo, ledgerRepo, publisher, collector, retry)
	interest := services.NewInterestService(ledgerRepo, ledgerRepo, publisher, collector, retry)
	reconciliation := services.NewReconciliationService(ledgerRepo, ledgerRepo, publisher, collector, retry)
	runner := services.NewBatchRunner(
		ledgerRepo, ledgerRepo,
		settlement, interest, reconciliation,
		markers, locker, collector,
		cfg.Ledger.BatchConcurrency,
		cfg.Ledger.BatchLimit,
	)

	// Wall-clock triggers
	sched, err := scheduler.New(runner, settlement, cfg.Ledger.Cron)
	if err != nil {
		return err
	}
	sched.Start()

	// Operator API
	tokener := jwt.New(jwt.WithSecretKey(cfg.JWT.SecretKey), jwt.WithExpiration(cfg.JWT.Exp))
	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.App.Host, cfg.App.Port),
		Handler:           newRouter(cfg, tokener, settlement, interest, reconciliation, sched, registry),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	errChan := make(chan error, 1)
	ctxShutdown, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	go func() {
		logger.Log.Infof("HTTP server listening on %s:%s", cfg.App.Host, cfg.App.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	var serveErr error
	select {
	case <-ctxShutdown.Done():
		logger.Log.Info("Shutdown signal received, stopping HTTP server...")
	case serveErr = <-errChan:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorw("HTTP server shutdown error", "error", err)
	}
	if err := sched.Stop(shutdownCtx); err != nil {
		logger.Log.Errorw("scheduler shutdown error", "error", err)
	}

	logger.Log.Info("HTTP server stopped gracefully")
	return serveErr
}
