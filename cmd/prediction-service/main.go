package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aarogya-ai/platform/pkg/common/config"
	"github.com/aarogya-ai/platform/pkg/common/database"
	"github.com/aarogya-ai/platform/pkg/common/kafka"
	"github.com/aarogya-ai/platform/pkg/common/logger"
	"github.com/aarogya-ai/platform/pkg/gateway/middleware"
	"github.com/aarogya-ai/platform/pkg/serving"
	"github.com/aarogya-ai/platform/pkg/serving/onnx"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
)

func main() {
	logger.Init()
	cfg := config.Load()

	if err := onnx.InitRuntime(cfg.ONNXRuntimeLib); err != nil {
		logger.Log.WithError(err).Fatal("Failed to initialize ONNX runtime")
	}

	manifest, err := serving.LoadManifest(cfg.ModelManifest)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to read model manifest")
	}
	registry, err := serving.BuildRegistry(manifest, serving.ONNXLoader)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to load models")
	}
	if err := registry.Require(serving.RequiredModels...); err != nil {
		logger.Log.WithError(err).Fatal("Model manifest is incomplete")
	}

	var cache serving.ResultCache
	var redisClient *redis.Client
	if cfg.CacheEnabled {
		redisClient, err = database.NewRedis(context.Background(), cfg)
		if err != nil {
			logger.Log.WithError(err).Fatal("Failed to connect to Redis")
		}
		cache = serving.NewRedisCache(redisClient, cfg.CachePrefix, cfg.CacheTTL)
	}

	var events serving.EventPublisher
	var producer *kafka.Producer
	if cfg.EventsEnabled {
		producer = kafka.NewProducer(cfg.KafkaBrokers, cfg.EventsTopic)
		events = producer
	}

	service := serving.NewService(registry, cache, events)
	service.SetMaxImagePixels(cfg.MaxImagePixels)

	router := mux.NewRouter()
	serving.NewHTTPHandler(service).Register(router)

	// Wrap the whole router: mux never dispatches OPTIONS on POST-only routes.
	handler := middleware.Chain(router,
		middleware.Recovery,
		middleware.Logging,
		middleware.CORS,
		middleware.BodyLimit(cfg.MaxRequestBody),
	)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"host":   cfg.ServerHost,
			"port":   cfg.ServerPort,
			"models": len(service.Models()),
			"cache":  cfg.CacheEnabled,
			"events": cfg.EventsEnabled,
		}).Info("Prediction Service started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down Prediction Service...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Log.WithError(err).Error("Server forced to shutdown")
	}

	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Log.WithError(err).Warn("Failed to close event producer")
		}
	}
	if redisClient != nil {
		redisClient.Close()
	}
	if err := registry.Close(); err != nil {
		logger.Log.WithError(err).Warn("Failed to release models")
	}
	if err := onnx.ShutdownRuntime(); err != nil {
		logger.Log.WithError(err).Warn("Failed to shut down ONNX runtime")
	}

	logger.Log.Info("Prediction Service stopped")
}
