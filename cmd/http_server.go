package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/frahmantamala/school-platform/api"
	"github.com/frahmantamala/school-platform/internal"
	"github.com/frahmantamala/school-platform/internal/article"
	articlePostgres "github.com/frahmantamala/school-platform/internal/article/postgres"
	"github.com/frahmantamala/school-platform/internal/auth"
	authPostgres "github.com/frahmantamala/school-platform/internal/auth/postgres"
	"github.com/frahmantamala/school-platform/internal/comment"
	commentPostgres "github.com/frahmantamala/school-platform/internal/comment/postgres"
	"github.com/frahmantamala/school-platform/internal/core/events"
	"github.com/frahmantamala/school-platform/internal/course"
	coursePostgres "github.com/frahmantamala/school-platform/internal/course/postgres"
	"github.com/frahmantamala/school-platform/internal/notification"
	notificationPostgres "github.com/frahmantamala/school-platform/internal/notification/postgres"
	"github.com/frahmantamala/school-platform/internal/storage"
	"github.com/frahmantamala/school-platform/internal/transaction"
	transactionPostgres "github.com/frahmantamala/school-platform/internal/transaction/postgres"
	"github.com/frahmantamala/school-platform/internal/user"
	userPostgres "github.com/frahmantamala/school-platform/internal/user/postgres"
	"github.com/frahmantamala/school-platform/internal/transport"
	"github.com/frahmantamala/school-platform/internal/transport/middleware"
	"github.com/frahmantamala/school-platform/internal/transport/rest"
	"github.com/frahmantamala/school-platform/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	DB       *sqlx.DB
	Gorm     *gorm.DB
	Redis    *redis.Client
	EventBus *events.EventBus
	Registry *prometheus.Registry
	Router   *chi.Mux
	Logger   *slog.Logger
}

func startHTTPServer() {
	ctx := context.Background()

	deps, err := initializeDependencies(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	if err := setupRoutes(ctx, deps); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up routes: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	// let receipt mails in flight finish before the pools go away
	deps.EventBus.Wait()
	deps.close()
	deps.Logger.Info("Server stopped")
}

func (d *Dependencies) close() {
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			d.Logger.Error("Redis close error", "error", err)
		}
	}
	if err := d.DB.Close(); err != nil {
		d.Logger.Error("Database close error", "error", err)
	}
}

func setupRoutes(ctx context.Context, deps *Dependencies) error {
	cfg := deps.Config
	lg := deps.Logger
	base := transport.NewBaseHandler(lg)

	if _, err := api.Load(ctx); err != nil {
		return err
	}

	gateway, err := storage.NewS3Gateway(ctx, cfg.Storage, lg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	tokens := auth.NewJWTTokenGenerator(cfg.Security.JWTSecret, cfg.Security.AccessTokenDuration)
	authService := auth.NewService(authPostgres.NewRepository(deps.Gorm), tokens, cfg.Security.BCryptCost, lg)

	commentService := comment.NewService(commentPostgres.NewCommentRepository(deps.Gorm), lg)
	articleService := article.NewService(articlePostgres.NewArticleRepository(deps.Gorm), commentService, gateway, lg)

	courseRepo := coursePostgres.NewCourseRepository(deps.Gorm)
	txRepo := transactionPostgres.NewTransactionRepository(deps.Gorm)
	courseService := course.NewService(courseRepo, txRepo, gateway, lg)

	txService := transaction.NewService(
		txRepo,
		courseRepo,
		transactionPostgres.NewExportRepository(deps.DB),
		transaction.NewStripeProcessor(cfg.Payment.SecretKey, lg),
		deps.EventBus,
		cfg.Payment,
		lg,
	)
	txMetrics := transaction.NewMetrics(deps.Registry)

	var guard transaction.ReplayGuard
	if deps.Redis != nil {
		guard = transaction.NewRedisReplayGuard(deps.Redis, cfg.Redis.ReplayTTL, lg)
	}

	if cfg.Mail.MailEnabled() {
		receipts := notification.NewEventHandler(
			notificationPostgres.NewReceiptRepository(deps.Gorm),
			notification.NewSMTPMailer(cfg.Mail, lg),
			cfg.Payment.Currency,
			lg,
		)
		receipts.RegisterEventHandlers(deps.EventBus)
	} else {
		lg.Info("mail not configured, purchase receipts disabled")
	}

	checks := map[string]rest.Checker{
		"postgres": deps.DB.PingContext,
	}
	if deps.Redis != nil {
		checks["redis"] = func(ctx context.Context) error {
			return deps.Redis.Ping(ctx).Err()
		}
	}

	obs := rest.Observability{}
	if cfg.Observability.Metrics.Enabled {
		obs.HTTPMetrics = middleware.NewHTTPMetrics(deps.Registry)
		obs.MetricsPath = cfg.Observability.Metrics.Path
		obs.MetricsHandler = promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{Registry: deps.Registry})
	}

	rest.RegisterAllRoutes(deps.Router, rest.Handlers{
		Health:   rest.NewHealthHandler(base, checks),
		Auth:     auth.NewHandler(base, authService),
		Article:  article.NewHandler(base, articleService, cfg.Server.MaxUploadBytes),
		Comment:  comment.NewHandler(base, commentService),
		Course:   course.NewHandler(base, courseService, cfg.Server.MaxUploadBytes),
		Checkout: transaction.NewHandler(base, txService, txMetrics),
		Webhook: transaction.NewWebhookHandler(base, txService,
			transaction.NewStripeVerifier(cfg.Payment.EndpointSecret), guard, txMetrics, lg),
		User: user.NewHandler(base, user.NewService(userPostgres.NewUserRepository(deps.Gorm), lg)),
	}, obs, lg)
	return nil
}

func initializeDependencies(ctx context.Context) (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	lg := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGorm(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	rdb, err := initRedis(ctx, config.Redis)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}
	if rdb == nil {
		lg.Warn("redis not configured, webhook replay detection disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Dependencies{
		Config:   config,
		DB:       db,
		Gorm:     gormDB,
		Redis:    rdb,
		EventBus: events.NewEventBus(lg),
		Registry: registry,
		Router:   chi.NewRouter(),
		Logger:   lg,
	}, nil
}

// initDB opens the shared pgx pool used by both sqlx and gorm.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return dbConn, nil
}

func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
	})
}

// initRedis returns nil when no address is configured.
func initRedis(ctx context.Context, cfg internal.RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return rdb, nil
}
