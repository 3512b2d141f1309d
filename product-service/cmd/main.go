package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ecommerce/pkg/logger"
	"ecommerce/product-service/internal/app/product/config"
	"ecommerce/product-service/internal/app/product/handler"
	"ecommerce/product-service/internal/app/product/infrastructure/cache"
	"ecommerce/product-service/internal/app/product/infrastructure/messaging"
	"ecommerce/product-service/internal/app/product/processor"
	"ecommerce/product-service/internal/app/product/repository"
	"ecommerce/product-service/internal/app/product/service"
)

const serviceName = "product-service"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(serviceName, cfg.Log.Level)

	if cfg.Log.LogstashAddr != "" {
		if err := logger.InitLogstash(cfg.Log.LogstashAddr, serviceName, cfg.Log.Level); err != nil {
			logger.Warn().Err(err).Msg("Failed to connect to Logstash, using stdout only")
		} else {
			logger.Info().Str("logstash_addr", cfg.Log.LogstashAddr).Msg("Connected to Logstash")
		}
	}

	mongoClient, err := connectMongoDB(cfg.MongoDB)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(ctx); err != nil {
			logger.Error().Err(err).Msg("Error disconnecting from MongoDB")
		}
	}()
	logger.Info().
		Str("database", cfg.MongoDB.Database).
		Msg("Connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDB.Database)

	indexCtx, indexCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := repository.EnsureIndexes(indexCtx, db); err != nil {
		logger.Fatal().Err(err).Msg("Failed to ensure product indexes")
	}
	indexCancel()

	redisClient, err := cache.NewRedisClient(cfg.Redis.Address(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	totalCache := cache.NewRedisCache(redisClient, cfg.Cache.TotalTTL)
	defer totalCache.Close()
	logger.Info().
		Str("address", cfg.Redis.Address()).
		Dur("total_ttl", cfg.Cache.TotalTTL).
		Msg("Connected to Redis")

	kafkaProducer := messaging.NewBreakerPublisher(
		messaging.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic),
		cfg.Kafka.Topic,
		cfg.Kafka.BreakerTimeout,
	)
	defer kafkaProducer.Close()
	logger.Info().
		Strs("brokers", cfg.Kafka.Brokers).
		Str("topic", cfg.Kafka.Topic).
		Msg("Initialized Kafka producer")

	productRepo := repository.NewProductRepository(db)
	userRepo := repository.NewUserRepository(db)

	productService := service.NewProductService(productRepo, userRepo, totalCache, kafkaProducer)
	filterService := service.NewFilterService(productRepo)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	cronScheduler := processor.NewCronScheduler(productService)
	if err := cronScheduler.Start(ctx, cfg.Cache.RefreshSchedule); err != nil {
		logger.Fatal().Err(err).Str("schedule", cfg.Cache.RefreshSchedule).Msg("Failed to start cron scheduler")
	}
	defer cronScheduler.Stop()

	authMiddleware := handler.NewAuthMiddleware(cfg.JWT.Secret)
	productHandler := handler.NewProductHandler(productService)
	filterHandler := handler.NewFilterHandler(filterService)
	router := handler.SetupRoutes(productHandler, filterHandler, authMiddleware)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("Starting Product Service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down Product Service...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Product Service stopped gracefully")
}

func connectMongoDB(cfg config.MongoDBConfig) (*mongo.Client, error) {
	clientOptions := options.Client().ApplyURI(cfg.URI)

	var client *mongo.Client
	var err error

	for i := 0; i < 10; i++ {
		client, err = tryConnect(clientOptions)
		if err == nil {
			return client, nil
		}

		logger.Warn().
			Int("attempt", i+1).
			Err(err).
			Msg("Failed to connect to MongoDB, retrying...")
		time.Sleep(3 * time.Second)
	}

	return nil, err
}

func tryConnect(clientOptions *options.ClientOptions) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return client, nil
}
