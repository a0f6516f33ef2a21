package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	catalogapp "github.com/tradepost/backend/internal/application/catalog"
	identityapp "github.com/tradepost/backend/internal/application/identity"
	"github.com/tradepost/backend/internal/application/listing"
	tradeapp "github.com/tradepost/backend/internal/application/trade"
	wizardapp "github.com/tradepost/backend/internal/application/wizard"
	"github.com/tradepost/backend/internal/infrastructure/auth"
	"github.com/tradepost/backend/internal/infrastructure/cache"
	"github.com/tradepost/backend/internal/infrastructure/config"
	"github.com/tradepost/backend/internal/infrastructure/event"
	"github.com/tradepost/backend/internal/infrastructure/logger"
	"github.com/tradepost/backend/internal/infrastructure/persistence"
	"github.com/tradepost/backend/internal/infrastructure/telemetry"
	"github.com/tradepost/backend/internal/interfaces/chat"
	"github.com/tradepost/backend/internal/interfaces/http/handler"
	"github.com/tradepost/backend/internal/interfaces/http/middleware"
	"github.com/tradepost/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	_ "github.com/tradepost/backend/docs"
)

//	@title			Tradepost API
//	@version		1.0
//	@description	Barter marketplace backend: chat flows for listing and browsing products, plus user registration and trade settlement.

//	@contact.name	API Support

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	WebhookToken
//	@in							header
//	@name						Authorization
//	@description				Gateway token as "Bearer <jwt>". Required only when webhook.secret is set.

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(logger.FromAppConfig(cfg.Log))
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	ctx := context.Background()

	// Telemetry: profiler first so span profiles have something to attach to
	tel := setupTelemetry(ctx, cfg, log)
	defer tel.shutdown(log)
	log = tel.logs.Bridge(log, cfg.App.Name, logLevel(cfg.Log.Level))

	log.Info("Starting Tradepost",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("database", cfg.Database.Driver),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:            cfg.Telemetry.Enabled && cfg.Telemetry.DBTracing,
		SlowQueryThreshold: cfg.Telemetry.SlowQueryThreshold,
		DBName:             cfg.Database.DBName,
	}, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	// postgres schemas are owned by cmd/migrate
	if cfg.Database.Driver == config.DriverSQLite {
		if err := db.AutoMigrate(ctx); err != nil {
			log.Fatal("Failed to migrate sqlite database", zap.Error(err))
		}
	}
	log.Info("Database connected successfully")

	sessions, err := cache.NewSessionStoreFactory(cfg.Redis, cfg.Session,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.App.Env != "production"),
	).CreateStore()
	if err != nil {
		log.Fatal("Failed to create wizard session store", zap.Error(err))
	}
	defer func() {
		if err := sessions.Close(); err != nil {
			log.Error("Error closing session store", zap.Error(err))
		}
	}()

	// Repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	settlementRepo := persistence.NewGormSettlementRepository(db.DB)

	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(catalogapp.NewActivityLogger(log))
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Application services
	userService := identityapp.NewUserService(userRepo, log)
	listingEngine := listing.NewEngine(productRepo, categoryRepo)
	wizardService := wizardapp.NewService(sessions, categoryRepo, productRepo, userService, eventBus, log)
	settlementService := tradeapp.NewSettlementService(settlementRepo, eventBus, log)

	senderLimiter := chat.NewSenderLimiter(cfg.Chat.RateLimitPerSecond, cfg.Chat.RateLimitBurst, 10*time.Minute)
	defer senderLimiter.Close()

	dispatcherOpts := []chat.DispatcherOption{
		chat.WithLimiter(senderLimiter),
		chat.WithEventTimeout(cfg.Chat.EventTimeout),
		chat.WithDispatcherLogger(log.Named("chat")),
	}
	chatMetrics, err := telemetry.NewChatMetrics(tel.metrics.Meter(telemetry.TracerName))
	if err != nil {
		log.Warn("Chat metrics unavailable", zap.Error(err))
	} else {
		dispatcherOpts = append(dispatcherOpts, chat.WithObserver(chatMetrics))
	}
	dispatcher := chat.NewDispatcher(userService, wizardService, listingEngine, dispatcherOpts...)

	// Handlers
	userHandler := handler.NewUserHandler(userService)
	categoryHandler := handler.NewCategoryHandler(listingEngine)
	productHandler := handler.NewProductHandler(listingEngine)
	tradeHandler := handler.NewTradeHandler(settlementService)
	chatHandler := handler.NewChatHandler(dispatcher)
	var wsOpts []handler.ChatWSOption
	if len(cfg.HTTP.AllowedOrigins) > 0 {
		wsOpts = append(wsOpts, handler.WithCheckOrigin(originChecker(cfg.HTTP.AllowedOrigins)))
	}
	chatWSHandler := handler.NewChatWSHandler(dispatcher, wsOpts...)

	healthChecks := map[string]handler.HealthCheck{
		"database": db.Ping,
	}
	if pinger, ok := sessions.(interface{ Ping(context.Context) error }); ok {
		healthChecks["sessions"] = pinger.Ping
	}
	healthHandler := handler.NewHealthHandler(healthChecks)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	// Middleware order:
	// 1. RequestID - generate/propagate request ID
	// 2. Recovery - catch panics
	// 3. Tracing - request span, tagged with the request id
	// 4. Logger - request log with trace correlation
	// 5. Security headers, CORS, body limit
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.App.Name,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.AllowedOrigins
	if len(corsConfig.AllowOrigins) == 0 {
		corsConfig.AllowOrigins = []string{"*"}
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	engine.GET("/health", healthHandler.Check)
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	if cfg.HTTP.RateLimitPerSecond > 0 {
		ipLimiter := chat.NewSenderLimiter(cfg.HTTP.RateLimitPerSecond, cfg.HTTP.RateLimitBurst, 10*time.Minute)
		defer ipLimiter.Close()
		r.Use(middleware.RateLimit(ipLimiter))
		log.Info("HTTP rate limiting enabled",
			zap.Float64("per_second", cfg.HTTP.RateLimitPerSecond),
			zap.Int("burst", cfg.HTTP.RateLimitBurst),
		)
	}

	userRoutes := router.NewDomainGroup("identity", "/users")
	userRoutes.POST("", userHandler.Create)

	catalogRoutes := router.NewDomainGroup("catalog", "")
	catalogRoutes.GET("/categories", categoryHandler.List)
	catalogRoutes.GET("/products", productHandler.List)

	tradeRoutes := router.NewDomainGroup("trade", "/trades")
	tradeRoutes.POST("", tradeHandler.Settle)

	chatRoutes := chatRouteGroup(webhookAuth(cfg.Webhook, sessions, log), chatHandler.Event, chatWSHandler.Serve)

	r.Register(userRoutes).
		Register(catalogRoutes).
		Register(tradeRoutes).
		Register(chatRoutes)
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

type telemetryStack struct {
	profiler *telemetry.Profiler
	traces   *telemetry.TracerProvider
	metrics  *telemetry.MeterProvider
	logs     *telemetry.LoggerProvider
}

func setupTelemetry(ctx context.Context, cfg *config.Config, log *zap.Logger) *telemetryStack {
	tc := telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		Insecure:          cfg.Telemetry.Insecure,
		ServiceName:       cfg.App.Name,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
	}

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.ProfilingServer,
		ApplicationName: cfg.App.Name,
		ProfileTypes:    cfg.Telemetry.ProfileTypes,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}

	traces, err := telemetry.NewTracerProvider(ctx, tc, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	if profiler.IsEnabled() {
		traces.EnableSpanProfiles()
	}

	metrics, err := telemetry.NewMeterProvider(ctx, tc, cfg.Telemetry.MetricsInterval, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}

	logsCfg := tc
	logsCfg.Enabled = tc.Enabled && cfg.Telemetry.LogsEnabled
	logs, err := telemetry.NewLoggerProvider(ctx, logsCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize log export", zap.Error(err))
	}

	return &telemetryStack{profiler: profiler, traces: traces, metrics: metrics, logs: logs}
}

func (t *telemetryStack) shutdown(log *zap.Logger) {
	ctx := context.Background()
	if err := t.traces.Shutdown(ctx); err != nil {
		log.Error("Error shutting down tracing", zap.Error(err))
	}
	if err := t.metrics.Shutdown(ctx); err != nil {
		log.Error("Error shutting down metrics", zap.Error(err))
	}
	if err := t.logs.Shutdown(ctx); err != nil {
		log.Error("Error shutting down log export", zap.Error(err))
	}
	if err := t.profiler.Stop(); err != nil {
		log.Error("Error stopping profiler", zap.Error(err))
	}
}

func logLevel(level string) zapcore.Level {
	l, err := zapcore.ParseLevel(level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return l
}

func originChecker(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(allowed, origin)
	}
}

// webhookAuth returns the bearer token check for the events webhook, or
// nothing when no secret is configured. Replay protection shares the Redis
// connection of the session store when there is one.
// chatRouteGroup mounts both chat transports behind the same gateway auth
func chatRouteGroup(authChain []gin.HandlerFunc, events, ws gin.HandlerFunc) *router.DomainGroup {
	g := router.NewDomainGroup("chat", "/chat")
	g.POST("/events", append(slices.Clone(authChain), events)...)
	g.GET("/ws", append(slices.Clone(authChain), ws)...)
	return g
}

func webhookAuth(cfg config.WebhookConfig, sessions cache.SessionStore, log *zap.Logger) []gin.HandlerFunc {
	if cfg.Secret == "" {
		log.Warn("webhook.secret not set, chat endpoints are unauthenticated")
		return nil
	}

	authCfg := middleware.WebhookAuthConfig{
		Validator: auth.NewWebhookTokenService(cfg),
		Logger:    log.Named("webhook"),
	}
	if cfg.ReplayGuard {
		if r, ok := sessions.(interface{ Client() *redis.Client }); ok {
			authCfg.ReplayGuard = auth.NewRedisReplayGuard(r.Client(), "")
		} else {
			authCfg.ReplayGuard = auth.NewInMemoryReplayGuard()
		}
	}
	return []gin.HandlerFunc{middleware.WebhookAuth(authCfg)}
}
