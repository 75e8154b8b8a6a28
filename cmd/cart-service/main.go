package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/nabilnabti/tapeat-cart/internal/cart"
	h "github.com/nabilnabti/tapeat-cart/internal/http"
	"github.com/nabilnabti/tapeat-cart/internal/poller"
	"github.com/nabilnabti/tapeat-cart/internal/promo"
	"github.com/nabilnabti/tapeat-cart/internal/storage"
)

type Config struct {
	HTTPPort        string
	RedisAddr       string
	RedisPassword   string
	MongoURI        string
	MongoDBName     string
	KafkaBrokers    []string
	RestaurantID    string
	ReorderMode     cart.ReorderMode
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	PromoRefresh    time.Duration
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:     getEnv("MONGO_DB_NAME", "tapeat"),
		KafkaBrokers:    strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
		RestaurantID:    getEnv("RESTAURANT_ID", ""),
		ReorderMode:     cart.ParseReorderMode(getEnv("REORDER_MODE", "as-is")),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		PromoRefresh:    5 * time.Minute,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	cfg := loadConfig()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	ctx := context.Background()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal("redis connection failed", zap.Error(err))
	}
	logger.Info("redis ping succeeded", zap.String("addr", cfg.RedisAddr))

	store := storage.NewRedisStore(redisClient)

	// A broken promotion feed must not block the cart: carts serve catalog
	// prices until the feed recovers.
	var feed promo.Feed
	mongoDB, err := promo.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		logger.Warn("mongo connection failed, promotions disabled until restart", zap.Error(err))
	} else {
		feed = promo.NewMongoFeed(mongoDB)
		logger.Info("connected to mongo", zap.String("db", cfg.MongoDBName))
		defer mongoDB.Client().Disconnect(ctx)
	}

	provider := promo.NewProvider(feed, logger)

	refreshCtx, stopRefresh := context.WithCancel(ctx)
	defer stopRefresh()
	go func() {
		provider.Refresh(refreshCtx, cfg.RestaurantID)
		ticker := time.NewTicker(cfg.PromoRefresh)
		defer ticker.Stop()
		for {
			select {
			case <-refreshCtx.Done():
				return
			case <-ticker.C:
				provider.Refresh(refreshCtx, cfg.RestaurantID)
			}
		}
	}()

	carts := cart.NewService(store, provider, cfg.ReorderMode, logger)

	checkoutPoller := poller.NewPoller(carts, logger, cfg.KafkaBrokers...)
	defer checkoutPoller.Close()
	go checkoutPoller.Run(refreshCtx)

	cartHandler := h.NewCartHandler(carts, logger)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(h.RequestIDMiddleware)
	r.Use(h.CustomerIDMiddleware)
	cartHandler.Routes(r)
	r.Get("/health", h.Health)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(r, "cart-service"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("cart service starting", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	stopRefresh()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}
