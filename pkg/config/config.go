package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Store and ledger drivers.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	LedgerStore = "store"
	LedgerRedis = "redis"
	LedgerNone  = "none"
)

type Config struct {
	Port     string `toml:"port"`
	Env      string `toml:"env"`
	LogLevel string `toml:"log_level"`

	StoreDriver     string `toml:"store_driver"`
	MongoURI        string `toml:"mongo_uri"`
	MongoDBName     string `toml:"mongo_db_name"`
	PostgresConnStr string `toml:"postgres_conn_str"`
	SQLitePath      string `toml:"sqlite_path"`

	LedgerDriver string `toml:"ledger_driver"`
	RedisAddr    string `toml:"redis_addr"`

	KafkaBrokers []string `toml:"kafka_brokers"`
	KafkaTopic   string   `toml:"kafka_topic"`

	JWTSecret               string `toml:"jwt_secret"`
	FirebaseCredentialsPath string `toml:"firebase_credentials_path"`
	MetricsPort             string `toml:"metrics_port"`

	BookkeepingAsync   bool          `toml:"bookkeeping_async"`
	BookkeepingTimeout time.Duration `toml:"-"`

	CommentPageSize      int `toml:"comment_page_size"`
	NotificationPageSize int `toml:"notification_page_size"`
	BlogPageSize         int `toml:"blog_page_size"`
}

// fileConfig mirrors Config for the TOML overlay; durations are written as
// strings such as "10s".
type fileConfig struct {
	Config
	BookkeepingTimeout string `toml:"bookkeeping_timeout"`
}

func defaults() Config {
	return Config{
		Port:                 "8080",
		Env:                  "development",
		LogLevel:             "info",
		StoreDriver:          DriverMongo,
		MongoURI:             "mongodb://localhost:27017",
		MongoDBName:          "quillpress",
		SQLitePath:           "quillpress.db",
		LedgerDriver:         LedgerStore,
		RedisAddr:            "localhost:6379",
		KafkaTopic:           "engagement-events",
		JWTSecret:            "supersecretjwtkey",
		MetricsPort:          "9090",
		BookkeepingAsync:     true,
		BookkeepingTimeout:   10 * time.Second,
		CommentPageSize:      5,
		NotificationPageSize: 10,
		BlogPageSize:         5,
	}
}

// Load reads the configuration: defaults, then the TOML file named by
// CONFIG_FILE, then the environment (including a .env file).
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug("[config] no .env file found, using the environment")
	}

	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		fc := fileConfig{Config: cfg}
		if _, err := toml.DecodeFile(path, &fc); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
		cfg = fc.Config
		if fc.BookkeepingTimeout != "" {
			d, err := time.ParseDuration(fc.BookkeepingTimeout)
			if err != nil {
				return nil, fmt.Errorf("bookkeeping_timeout: %w", err)
			}
			cfg.BookkeepingTimeout = d
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.Env = getEnv("ENV", cfg.Env)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.StoreDriver = strings.ToLower(getEnv("STORE_DRIVER", cfg.StoreDriver))
	cfg.MongoURI = getEnv("MONGO_URI", cfg.MongoURI)
	cfg.MongoDBName = getEnv("MONGO_DB_NAME", cfg.MongoDBName)
	cfg.PostgresConnStr = getEnv("POSTGRES_CONN_STR", cfg.PostgresConnStr)
	cfg.SQLitePath = getEnv("SQLITE_PATH", cfg.SQLitePath)
	cfg.LedgerDriver = strings.ToLower(getEnv("LEDGER_DRIVER", cfg.LedgerDriver))
	cfg.RedisAddr = getEnv("REDIS_ADDR", cfg.RedisAddr)
	cfg.KafkaTopic = getEnv("KAFKA_TOPIC", cfg.KafkaTopic)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.FirebaseCredentialsPath = getEnv("FIREBASE_CREDENTIALS_PATH", cfg.FirebaseCredentialsPath)
	cfg.MetricsPort = getEnv("METRICS_PORT", cfg.MetricsPort)
	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		cfg.KafkaBrokers = splitList(brokers)
	}

	var err error
	if cfg.BookkeepingAsync, err = getEnvBool("BOOKKEEPING_ASYNC", cfg.BookkeepingAsync); err != nil {
		return nil, err
	}
	if cfg.BookkeepingTimeout, err = getEnvDuration("BOOKKEEPING_TIMEOUT", cfg.BookkeepingTimeout); err != nil {
		return nil, err
	}
	if cfg.CommentPageSize, err = getEnvInt("COMMENT_PAGE_SIZE", cfg.CommentPageSize); err != nil {
		return nil, err
	}
	if cfg.NotificationPageSize, err = getEnvInt("NOTIFICATION_PAGE_SIZE", cfg.NotificationPageSize); err != nil {
		return nil, err
	}
	if cfg.BlogPageSize, err = getEnvInt("BLOG_PAGE_SIZE", cfg.BlogPageSize); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreDriver {
	case DriverMongo, DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	switch c.LedgerDriver {
	case LedgerStore, LedgerRedis, LedgerNone:
	default:
		return fmt.Errorf("unknown LEDGER_DRIVER %q", c.LedgerDriver)
	}
	if c.StoreDriver == DriverPostgres && c.PostgresConnStr == "" {
		return fmt.Errorf("POSTGRES_CONN_STR environment variable not set")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
