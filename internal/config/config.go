package config

import (
	"time"

	pkgconfig "github.com/weiawesome/chatty/pkg/config"
	"github.com/weiawesome/chatty/pkg/database"
	"github.com/weiawesome/chatty/pkg/log"
)

type Config struct {
	Server      ServerConfig
	WebSocket   WebSocketConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Cache       CacheConfig
	Kafka       KafkaConfig
	Cassandra   CassandraConfig
	Persistence PersistenceConfig
	ID          IDConfig
	History     HistoryConfig
	Log         LogConfig
}

type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type WebSocketConfig struct {
	PingInterval    time.Duration `mapstructure:"ping_interval"`
	PongWait        time.Duration `mapstructure:"pong_wait"`
	WriteWait       time.Duration `mapstructure:"write_wait"`
	MaxMessageSize  int64         `mapstructure:"max_message_size"`
	SendBufferSize  int           `mapstructure:"send_buffer_size"`
	ReadBufferSize  int           `mapstructure:"read_buffer_size"`
	WriteBufferSize int           `mapstructure:"write_buffer_size"`
}

type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	FilePath        string `mapstructure:"file_path"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
	LogLevel        string `mapstructure:"log_level"`
}

// ToDatabaseConfig converts to the pkg/database connection config.
func (c DatabaseConfig) ToDatabaseConfig() *database.Config {
	return &database.Config{
		Driver:          c.Driver,
		Host:            c.Host,
		Port:            c.Port,
		User:            c.User,
		Password:        c.Password,
		DBName:          c.DBName,
		SSLMode:         c.SSLMode,
		FilePath:        c.FilePath,
		MaxIdleConns:    c.MaxIdleConns,
		MaxOpenConns:    c.MaxOpenConns,
		ConnMaxLifetime: c.ConnMaxLifetime,
		LogLevel:        c.LogLevel,
	}
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

type CacheConfig struct {
	Enabled    bool
	Prefix     string
	RoomTTL    time.Duration `mapstructure:"room_ttl"`
	HistoryTTL time.Duration `mapstructure:"history_ttl"`
}

type KafkaConfig struct {
	Brokers             string
	Topic               string
	Partitions          int
	GroupID             string `mapstructure:"group_id"`
	AutoOffsetReset     string `mapstructure:"auto_offset_reset"`
	MaxPollIntervalMs   int    `mapstructure:"max_poll_interval_ms"`
	SessionTimeoutMs    int    `mapstructure:"session_timeout_ms"`
	HeartbeatIntervalMs int    `mapstructure:"heartbeat_interval_ms"`
}

type CassandraConfig struct {
	Hosts          []string
	Keyspace       string
	Username       string
	Password       string
	Consistency    string
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	Timeout        time.Duration
	NumConns       int `mapstructure:"num_conns"`
}

// PersistenceConfig selects how chat messages reach durable storage.
// Driver is direct or kafka; MessageStore is sql or cassandra.
type PersistenceConfig struct {
	Driver       string        `mapstructure:"driver"`
	MessageStore string        `mapstructure:"message_store"`
	QueueSize    int           `mapstructure:"queue_size"`
	Workers      int           `mapstructure:"workers"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// IDConfig names the generators from internal/idgen. Message ids should be
// time-sortable (ulid, ksuid, snowflake); room ids default to nanoid.
type IDConfig struct {
	Generator     string `mapstructure:"generator"`
	RoomGenerator string `mapstructure:"room_generator"`
	MachineID     int64  `mapstructure:"machine_id"`
}

type HistoryConfig struct {
	DefaultLimit int `mapstructure:"default_limit"`
	MaxLimit     int `mapstructure:"max_limit"`
}

type LogConfig struct {
	Level  string
	Pretty bool
}

// ToLogConfig converts to the pkg/log config for the named service.
func (c LogConfig) ToLogConfig(service string) log.Config {
	return log.Config{
		Level:       c.Level,
		Pretty:      c.Pretty,
		ServiceName: service,
	}
}

func Load() (*Config, error) {
	v, err := pkgconfig.Load("./config", "config")
	if err != nil {
		return nil, err
	}

	// Set defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8088)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("websocket.ping_interval", "30s")
	v.SetDefault("websocket.pong_wait", "60s")
	v.SetDefault("websocket.write_wait", "10s")
	v.SetDefault("websocket.max_message_size", 65536)
	v.SetDefault("websocket.send_buffer_size", 256)
	v.SetDefault("websocket.read_buffer_size", 1024)
	v.SetDefault("websocket.write_buffer_size", 1024)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "chatty")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.file_path", "./data/chatty.db")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", 60)
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.prefix", "chatty")
	v.SetDefault("cache.room_ttl", "5m")
	v.SetDefault("cache.history_ttl", "30s")
	v.SetDefault("kafka.brokers", "localhost:9092")
	v.SetDefault("kafka.topic", "chat-messages")
	v.SetDefault("kafka.partitions", 8)
	v.SetDefault("kafka.group_id", "chat-persist")
	v.SetDefault("kafka.auto_offset_reset", "earliest")
	v.SetDefault("kafka.max_poll_interval_ms", 300000)
	v.SetDefault("kafka.session_timeout_ms", 45000)
	v.SetDefault("kafka.heartbeat_interval_ms", 3000)
	v.SetDefault("cassandra.hosts", "localhost:9042")
	v.SetDefault("cassandra.keyspace", "chatty")
	v.SetDefault("cassandra.consistency", "LOCAL_QUORUM")
	v.SetDefault("cassandra.connect_timeout", "10s")
	v.SetDefault("cassandra.timeout", "5s")
	v.SetDefault("cassandra.num_conns", 2)
	v.SetDefault("persistence.driver", "direct")
	v.SetDefault("persistence.message_store", "sql")
	v.SetDefault("persistence.queue_size", 1024)
	v.SetDefault("persistence.workers", 4)
	v.SetDefault("persistence.write_timeout", "5s")
	v.SetDefault("id.generator", "ulid")
	v.SetDefault("id.room_generator", "nanoid")
	v.SetDefault("id.machine_id", 1)
	v.SetDefault("history.default_limit", 50)
	v.SetDefault("history.max_limit", 200)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	// Override from environment
	v.BindEnv("server.port", "PORT")
	v.BindEnv("database.driver", "DB_DRIVER")
	v.BindEnv("database.host", "DB_HOST")
	v.BindEnv("database.port", "DB_PORT")
	v.BindEnv("database.user", "DB_USER")
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("database.dbname", "DB_NAME")
	v.BindEnv("database.file_path", "DB_FILE_PATH")
	v.BindEnv("redis.address", "REDIS_ADDRESS")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("kafka.brokers", "KAFKA_BROKERS")
	v.BindEnv("kafka.topic", "KAFKA_TOPIC")
	v.BindEnv("kafka.group_id", "KAFKA_GROUP_ID")
	v.BindEnv("cassandra.hosts", "CASSANDRA_HOSTS")
	v.BindEnv("cassandra.keyspace", "CASSANDRA_KEYSPACE")
	v.BindEnv("cassandra.username", "CASSANDRA_USERNAME")
	v.BindEnv("cassandra.password", "CASSANDRA_PASSWORD")
	v.BindEnv("persistence.driver", "PERSISTENCE_DRIVER")
	v.BindEnv("persistence.message_store", "MESSAGE_STORE")
	v.BindEnv("log.level", "LOG_LEVEL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Parse durations
	cfg.Server.ReadTimeout = pkgconfig.Duration(v, "server.read_timeout", 15*time.Second)
	cfg.Server.WriteTimeout = pkgconfig.Duration(v, "server.write_timeout", 15*time.Second)
	cfg.Server.IdleTimeout = pkgconfig.Duration(v, "server.idle_timeout", 60*time.Second)
	cfg.Server.ShutdownTimeout = pkgconfig.Duration(v, "server.shutdown_timeout", 30*time.Second)
	cfg.WebSocket.PingInterval = pkgconfig.Duration(v, "websocket.ping_interval", 30*time.Second)
	cfg.WebSocket.PongWait = pkgconfig.Duration(v, "websocket.pong_wait", 60*time.Second)
	cfg.WebSocket.WriteWait = pkgconfig.Duration(v, "websocket.write_wait", 10*time.Second)
	cfg.Cache.RoomTTL = pkgconfig.Duration(v, "cache.room_ttl", 5*time.Minute)
	cfg.Cache.HistoryTTL = pkgconfig.Duration(v, "cache.history_ttl", 30*time.Second)
	cfg.Cassandra.ConnectTimeout = pkgconfig.Duration(v, "cassandra.connect_timeout", 10*time.Second)
	cfg.Cassandra.Timeout = pkgconfig.Duration(v, "cassandra.timeout", 5*time.Second)
	cfg.Persistence.WriteTimeout = pkgconfig.Duration(v, "persistence.write_timeout", 5*time.Second)

	// CASSANDRA_HOSTS arrives as a comma-separated string
	cfg.Cassandra.Hosts = pkgconfig.SplitCSV(v.GetString("cassandra.hosts"))

	return &cfg, nil
}
