package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/redis/go-redis/v9"

	"github.com/weiawesome/chatty/internal/cache"
	"github.com/weiawesome/chatty/internal/config"
	"github.com/weiawesome/chatty/internal/handler"
	"github.com/weiawesome/chatty/internal/hub"
	"github.com/weiawesome/chatty/internal/idgen"
	"github.com/weiawesome/chatty/internal/persist"
	"github.com/weiawesome/chatty/internal/registry"
	"github.com/weiawesome/chatty/internal/repository"
	"github.com/weiawesome/chatty/internal/service"
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

	// Initialize structured logger
	pkglog.Init(cfg.Log.ToLogConfig("chat-service"))
	logger := pkglog.L()

	// Connect to database using GORM
	db, err := database.New(cfg.Database.ToDatabaseConfig())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer database.Close(db)

	if err := repository.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to auto-migrate")
	}
	logger.Info().Str("driver", cfg.Database.Driver).Msg("database migration completed")

	// ID generators
	messageIDs, err := idgen.New(cfg.ID.Generator, cfg.ID.MachineID)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create message id generator")
	}
	if !idgen.Sortable(cfg.ID.Generator) {
		logger.Warn().Str("generator", cfg.ID.Generator).Msg("message ids are not time-sortable, history order may differ from send order")
	}
	roomIDs, err := idgen.New(cfg.ID.RoomGenerator, cfg.ID.MachineID)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create room id generator")
	}

	// Optional Redis caches
	var (
		redisClient *redis.Client
		roomCache   cache.RoomCache    = cache.NoopRoomCache{}
		msgCache    cache.MessageCache = cache.NoopMessageCache{}
	)
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedisClient(cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
		roomCache = cache.NewRedisRoomCache(redisClient, cfg.Cache.Prefix)
		msgCache = cache.NewRedisMessageCache(redisClient, cfg.Cache.Prefix)
		logger.Info().Str("addr", cfg.Redis.Address).Msg("redis cache connected")
	}

	// Message store
	var messageRepo repository.MessageRepository
	switch cfg.Persistence.MessageStore {
	case "cassandra":
		var session *gocql.Session
		session, err = repository.NewCassandraSession(cfg.Cassandra)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to cassandra")
		}
		cassRepo := repository.NewCassandraMessageRepository(session)
		defer cassRepo.Close()
		if err := cassRepo.EnsureSchema(context.Background()); err != nil {
			logger.Fatal().Err(err).Msg("failed to ensure cassandra schema")
		}
		messageRepo = cassRepo
		logger.Info().Strs("hosts", cfg.Cassandra.Hosts).Str("keyspace", cfg.Cassandra.Keyspace).Msg("cassandra message store connected")
	default:
		messageRepo = repository.NewGormMessageRepository(db)
	}

	// Persistence gateway
	var appender persist.MessageAppender
	switch cfg.Persistence.Driver {
	case "kafka":
		appender, err = persist.NewKafkaAppender(cfg.Kafka)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create kafka appender")
		}
		logger.Info().Str("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("messages published to kafka")
	default:
		appender = persist.NewAsyncWriter(
			persist.NewStore(messageRepo, msgCache),
			cfg.Persistence.QueueSize,
			cfg.Persistence.Workers,
			cfg.Persistence.WriteTimeout,
		)
	}

	// Services
	h := hub.NewHub()
	reg := registry.NewMemoryRegistry()
	roomRepo := repository.NewGormRoomRepository(db, roomIDs)
	roomService := service.NewRoomService(roomRepo, roomCache, cfg.Cache.RoomTTL)
	historyService := service.NewHistoryService(messageRepo, roomService, msgCache, cfg.Cache.HistoryTTL,
		cfg.History.DefaultLimit, cfg.History.MaxLimit)
	chatService := service.NewChatService(h, reg, roomService, appender, messageIDs)

	// Setup Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(pkglog.GinMiddleware(logger))

	handler.NewHandler(roomService, historyService, h, reg).RegisterRoutes(r)
	wsHandler := handler.NewWSHandler(chatService, cfg.WebSocket)
	wsHandler.RegisterRoutes(r)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info().
			Str("addr", addr).
			Str("persistence", cfg.Persistence.Driver).
			Str("message_store", cfg.Persistence.MessageStore).
			Bool("cache", cfg.Cache.Enabled).
			Msg("chat-service starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down chat-service")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}

	if err := wsHandler.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("websocket connections did not drain")
	}

	// flush queued messages before the stores close
	if err := chatService.Stop(); err != nil {
		logger.Error().Err(err).Msg("failed to stop chat service")
	}

	logger.Info().Msg("chat-service stopped")
}
