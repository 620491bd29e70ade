package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/weiawesome/chatty/internal/cache"
	"github.com/weiawesome/chatty/internal/config"
	"github.com/weiawesome/chatty/internal/consumer"
	"github.com/weiawesome/chatty/internal/persist"
	"github.com/weiawesome/chatty/internal/repository"
	"github.com/weiawesome/chatty/pkg/database"
	pkglog "github.com/weiawesome/chatty/pkg/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		l := pkglog.L()
		l.Fatal().Err(err).Msg("failed to load config")
	}

	pkglog.Init(cfg.Log.ToLogConfig("chat-persist-service"))
	logger := pkglog.L()

	// Message store
	var messageRepo repository.MessageRepository
	switch cfg.Persistence.MessageStore {
	case "cassandra":
		session, err := repository.NewCassandraSession(cfg.Cassandra)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to cassandra")
		}
		cassRepo := repository.NewCassandraMessageRepository(session)
		defer cassRepo.Close()
		if err := cassRepo.EnsureSchema(context.Background()); err != nil {
			logger.Fatal().Err(err).Msg("failed to ensure cassandra schema")
		}
		messageRepo = cassRepo
		logger.Info().Strs("hosts", cfg.Cassandra.Hosts).Str("keyspace", cfg.Cassandra.Keyspace).Msg("connected to cassandra")
	default:
		db, err := database.New(cfg.Database.ToDatabaseConfig())
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer database.Close(db)
		if err := repository.Migrate(db); err != nil {
			logger.Fatal().Err(err).Msg("failed to auto-migrate")
		}
		messageRepo = repository.NewGormMessageRepository(db)
		logger.Info().Str("driver", cfg.Database.Driver).Msg("connected to database")
	}

	// History pages cached by chat-service are invalidated on every save
	var msgCache cache.MessageCache = cache.NoopMessageCache{}
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
		msgCache = cache.NewRedisMessageCache(redisClient, cfg.Cache.Prefix)
	}

	cons, err := consumer.NewConsumer(cfg.Kafka, persist.NewStore(messageRepo, msgCache))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create kafka consumer")
	}
	logger.Info().
		Str("brokers", cfg.Kafka.Brokers).
		Str("topic", cfg.Kafka.Topic).
		Str("group", cfg.Kafka.GroupID).
		Msg("kafka consumer created")

	// Health server
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("health server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("health server error")
		}
	}()

	ctx, cancel := context.WithCancel(pkglog.WithLogger(context.Background(), logger))

	consumerDone := make(chan error, 1)
	go func() {
		consumerDone <- cons.Run(ctx)
	}()

	// Wait for interrupt signal or fatal consumer error
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	consumerStopped := false
	select {
	case <-quit:
		logger.Info().Msg("received shutdown signal")
	case err := <-consumerDone:
		consumerStopped = true
		if err != nil {
			logger.Error().Err(err).Msg("consumer exited with error")
		}
	}

	logger.Info().Msg("shutting down chat-persist-service")
	cancel()

	if !consumerStopped {
		select {
		case <-consumerDone:
		case <-time.After(10 * time.Second):
			logger.Warn().Msg("consumer shutdown timed out")
		}
	}

	if err := cons.Close(); err != nil {
		logger.Error().Err(err).Msg("failed to close consumer")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	server.Shutdown(shutdownCtx)

	logger.Info().Msg("chat-persist-service stopped")
}
