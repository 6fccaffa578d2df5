package main

import (
	"context"
	"fmt"
	stdlog "log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bruzethegreat/url-shortener/internal/config"
	"github.com/bruzethegreat/url-shortener/internal/geo"
	"github.com/bruzethegreat/url-shortener/internal/handler"
	"github.com/bruzethegreat/url-shortener/internal/logger"
	"github.com/bruzethegreat/url-shortener/internal/middleware"
	"github.com/bruzethegreat/url-shortener/internal/repository/memory"
	postgresRepo "github.com/bruzethegreat/url-shortener/internal/repository/postgres"
	redisRepo "github.com/bruzethegreat/url-shortener/internal/repository/redis"
	"github.com/bruzethegreat/url-shortener/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// urlStore is everything main needs from a store backend.
type urlStore interface {
	service.URLStore
	Ping(ctx context.Context) error
	Close()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatal(err)
	}

	loggerConfig := logger.Config{
		Level:          cfg.Log.Level,
		Format:         cfg.Log.Format,
		OutputPath:     cfg.Log.OutputPath,
		MaxSize:        cfg.Log.MaxSize,
		MaxBackups:     cfg.Log.MaxBackups,
		MaxAge:         cfg.Log.MaxAge,
		Compress:       cfg.Log.Compress,
		CollectorURL:   cfg.Log.CollectorURL,
		CollectorToken: cfg.Log.CollectorToken,
	}

	if err := logger.Initialize(loggerConfig); err != nil {
		stdlog.Fatalf("Failed to initialize logger: %v", err)
	}

	log := logger.Get()
	log.Info("Starting URL Shortener service",
		"port", cfg.Server.Port,
		"base_url", cfg.Server.BaseURL,
		"storage_driver", cfg.Storage.Driver,
	)

	store, err := setupStore(cfg)
	if err != nil {
		log.Error("Failed to setup store", "error", err)
		os.Exit(1)
	}

	locator, err := setupLocator(cfg, log)
	if err != nil {
		log.Error("Failed to setup geolocation", "error", err)
		os.Exit(1)
	}

	shortenerService := service.NewShortenerService(store, locator, cfg.Server.BaseURL)

	shortenerHandler := handler.NewShortenerHandler(shortenerService)
	statsHandler := handler.NewStatsHandler(shortenerService)
	healthHandler := handler.NewHealthHandler(store)

	router := setupRouter(cfg, shortenerHandler, statsHandler, healthHandler)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("Server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	gracefulShutdown(srv, cfg.Server.ShutdownTimeout, store, log)
}

func setupStore(cfg *config.Config) (urlStore, error) {
	switch cfg.Storage.Driver {
	case "memory":
		return memory.New(), nil

	case "postgres":
		poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
		if err != nil {
			return nil, err
		}

		poolConfig.MaxConns = int32(cfg.Database.MaxConns)
		poolConfig.MinConns = int32(cfg.Database.MinConns)
		poolConfig.MaxConnLifetime = cfg.Database.ConnMaxLifetime
		poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

		pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
		if err != nil {
			return nil, err
		}

		store := postgresRepo.New(pool)
		if err := store.InitSchema(context.Background()); err != nil {
			pool.Close()
			return nil, err
		}

		return store, nil

	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:         cfg.Redis.Addr,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			MaxRetries:   cfg.Redis.MaxRetries,
		})

		if err := client.Ping(context.Background()).Err(); err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}

		return redisRepo.New(client), nil

	default:
		return nil, fmt.Errorf("unknown storage driver: %q", cfg.Storage.Driver)
	}
}

func setupLocator(cfg *config.Config, log *slog.Logger) (geo.Locator, error) {
	if cfg.Geo.DBPath == "" {
		log.Info("No GeoIP database configured, click locations will be Unknown")
		return geo.NoopLocator{}, nil
	}

	locator, err := geo.NewMaxMindLocator(cfg.Geo.DBPath)
	if err != nil {
		return nil, err
	}

	log.Info("GeoIP database loaded", "path", cfg.Geo.DBPath)
	return locator, nil
}

func setupRouter(
	cfg *config.Config,
	shortenerHandler *handler.ShortenerHandler,
	statsHandler *handler.StatsHandler,
	healthHandler *handler.HealthHandler,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	router.GET("/health", healthHandler.Health)
	router.GET("/readyz", healthHandler.Readyz)

	router.POST("/shorturls", shortenerHandler.CreateShortURL)
	router.GET("/shorturls", statsHandler.GetAllStats)
	router.GET("/shorturls/:shortCode", statsHandler.GetStats)

	router.GET("/:shortCode", shortenerHandler.Redirect)

	return router
}

func gracefulShutdown(srv *http.Server, timeout time.Duration, store urlStore, log *slog.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	log.Info("Shutdown signal received", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Forced shutdown", "error", err)
	}

	store.Close()
	log.Info("Store closed")

	log.Info("Graceful shutdown completed")
}
