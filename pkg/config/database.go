package config

import (
	"context"
	"fmt"
	"time"

	"github.com/anonto42/quillpress/backend/internal/events"
	"github.com/anonto42/quillpress/backend/internal/repositories"
	goredis "github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const ledgerTTL = 7 * 24 * time.Hour

// DB holds the connections of the configured backends. Exactly one of Gorm
// and Mongo is set.
type DB struct {
	Gorm    *gorm.DB
	Mongo   *mongo.Client
	MongoDB *mongo.Database
	Redis   *goredis.Client
}

// InitDB opens the store selected by STORE_DRIVER and, when the ledger lives
// in Redis, the Redis client.
func InitDB(cfg *Config) (*DB, error) {
	db := &DB{}
	var err error

	switch cfg.StoreDriver {
	case DriverMongo:
		db.Mongo, err = initMongo(cfg.MongoURI)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		db.MongoDB = db.Mongo.Database(cfg.MongoDBName)
	case DriverPostgres:
		db.Gorm, err = initGorm(postgres.Open(cfg.PostgresConnStr), cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
	case DriverSQLite:
		db.Gorm, err = initGorm(sqlite.Open(cfg.SQLitePath), cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite database: %w", err)
		}
	}

	if cfg.LedgerDriver == LedgerRedis {
		db.Redis, err = initRedis(cfg.RedisAddr)
		if err != nil {
			db.CloseDB()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
	}
	return db, nil
}

// Store wires the repositories of the open backend and the configured ledger.
func (db *DB) Store(cfg *Config) *repositories.Store {
	var store *repositories.Store
	if db.MongoDB != nil {
		store = repositories.NewMongoStore(db.MongoDB)
	} else {
		store = repositories.NewGormStore(db.Gorm)
	}

	switch cfg.LedgerDriver {
	case LedgerRedis:
		store.Ledger = repositories.NewRedisLedger(db.Redis, "engagement:ledger:", ledgerTTL)
	case LedgerNone:
		store.Ledger = repositories.NopLedger{}
	}
	return store
}

// Migrate creates tables (SQL) or indexes (MongoDB).
func (db *DB) Migrate(ctx context.Context) error {
	if db.MongoDB != nil {
		return repositories.EnsureMongoIndexes(ctx, db.MongoDB)
	}
	return repositories.MigrateGorm(db.Gorm)
}

// NewPublisher returns a Kafka publisher when brokers are configured.
func NewPublisher(cfg *Config) events.Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		log.Info("[config] KAFKA_BROKERS not set, engagement events are not published")
		return events.NopPublisher{}
	}
	log.Infof("[config] publishing engagement events to %s on %v", cfg.KafkaTopic, cfg.KafkaBrokers)
	return events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
}

func initGorm(dialector gorm.Dialector, cfg *Config) (*gorm.DB, error) {
	level := gormlogger.Warn
	if cfg.LogLevel == "debug" {
		level = gormlogger.Info
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(level)})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.StoreDriver == DriverSQLite {
		// SQLite allows a single writer
		sqlDB.SetMaxOpenConns(1)
	}
	if err = sqlDB.Ping(); err != nil {
		return nil, err
	}

	log.Infof("[config] connected to %s", dialector.Name())
	return db, nil
}

func initMongo(uri string) (*mongo.Client, error) {
	clientOptions := options.Client().ApplyURI(uri)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	if err = client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	log.Info("[config] connected to MongoDB")
	return client, nil
}

func initRedis(addr string) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	log.Infof("[config] connected to Redis at %s", addr)
	return rdb, nil
}

// CloseDB closes every open connection.
func (db *DB) CloseDB() {
	if db.Gorm != nil {
		sqlDB, err := db.Gorm.DB()
		if err != nil {
			log.Errorf("[config] error getting SQL DB from GORM: %v", err)
		} else if err := sqlDB.Close(); err != nil {
			log.Errorf("[config] error closing SQL connection: %v", err)
		} else {
			log.Info("[config] SQL connection closed")
		}
	}

	if db.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Mongo.Disconnect(ctx); err != nil {
			log.Errorf("[config] error closing MongoDB connection: %v", err)
		} else {
			log.Info("[config] MongoDB connection closed")
		}
	}

	if db.Redis != nil {
		if err := db.Redis.Close(); err != nil {
			log.Errorf("[config] error closing Redis connection: %v", err)
		}
	}
}
