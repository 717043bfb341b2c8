package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/payuvarun82/payu-multiflow/internal/config"
	flowsHandler "github.com/payuvarun82/payu-multiflow/internal/handlers/flows"
	"github.com/payuvarun82/payu-multiflow/pkg/middleware"
	"github.com/payuvarun82/payu-multiflow/pkg/observability"
	"github.com/payuvarun82/payu-multiflow/pkg/shutdown"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := initLogger(cfg.Logger)
	defer logger.Sync()

	logger.Info("Starting payu-multiflow server",
		zap.String("version", "0.1.0"),
		zap.String("gateway", cfg.Gateway.PaymentURL),
	)

	router := httprouter.New()
	flowsHandler.NewHandler(cfg, logger).Register(router)

	// Liveness probe; the sandbox has no backing services, so the only
	// check is that the process responds
	health := observability.NewHealthChecker()
	health.Register("server", func(ctx context.Context) error { return nil })
	router.Handler(http.MethodGet, "/healthz", health.HealthHandler())
	router.Handler(http.MethodGet, "/metrics", promhttp.Handler())

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})

	rateLimiter := middleware.NewRateLimiter(10, 20)

	var handler http.Handler = router
	handler = middleware.GzipHandler(logger)(handler)
	handler = rateLimiter.Middleware(handler)
	handler = corsHandler.Handler(handler)

	httpServer := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("address", cfg.Server.Address()))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to serve HTTP", zap.Error(err))
		}
	}()

	// Shut down in reverse registration order: stop accepting requests,
	// then stop the limiter's cleanup goroutine
	manager := shutdown.NewManager(logger, 5*time.Second)
	manager.RegisterNoErr("rate-limiter", rateLimiter.Shutdown)
	manager.RegisterHTTPServer("http-server", httpServer)
	manager.WaitForShutdown()

	logger.Info("Server stopped")
}

// initLogger initializes the logger
func initLogger(cfg config.LoggerConfig) *zap.Logger {
	if cfg.Development {
		logger, _ := zap.NewDevelopment()
		return logger
	}

	zapCfg := zap.NewProductionConfig()
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	logger, _ := zapCfg.Build()
	return logger
}
