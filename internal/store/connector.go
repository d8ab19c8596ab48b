// Package store owns the lifecycle of the backing-store connections. The
// process acquires one Store during bootstrap, injects it into the storage
// and audit layers, and closes it on shutdown.
package store

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"roomchat/backend/internal/chaterr"
	"roomchat/backend/internal/config"
	"roomchat/backend/internal/models"
)

// Store is the process-wide handle over PostgreSQL and Redis.
type Store struct {
	DB    *gorm.DB
	Redis *redis.Client
}

// Connector bootstraps the Store with a bounded retry budget. The open
// functions are fields so tests can inject failing backends and a
// reconnect-on-drop policy can be added later without touching callers.
type Connector struct {
	MaxRetries int
	RetryDelay time.Duration

	OpenDB    func() (*gorm.DB, error)
	OpenRedis func() (*redis.Client, error)
}

// NewConnector builds a Connector with the production openers.
func NewConnector(cfg *config.Config) *Connector {
	return &Connector{
		MaxRetries: cfg.StoreMaxRetries,
		RetryDelay: cfg.StoreRetryDelay,
		OpenDB: func() (*gorm.DB, error) {
			db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
				TranslateError: true,
			})
			if err != nil {
				return nil, err
			}
			sqlDB, err := db.DB()
			if err != nil {
				return nil, err
			}
			sqlDB.SetMaxIdleConns(10)
			sqlDB.SetMaxOpenConns(100)
			sqlDB.SetConnMaxLifetime(time.Hour)
			return db, nil
		},
		OpenRedis: func() (*redis.Client, error) {
			rdb := redis.NewClient(&redis.Options{
				Addr:     cfg.RedisAddr,
				Password: cfg.RedisPassword,
				DB:       cfg.RedisDB,
			})
			if err := rdb.Ping(context.Background()).Err(); err != nil {
				return nil, err
			}
			return rdb, nil
		},
	}
}

// Connect attempts to establish both connections, retrying up to MaxRetries
// attempts with RetryDelay between them. Exhausting the budget returns an
// error wrapping chaterr.ErrFatal; the caller must terminate the process
// rather than operate with partial connectivity.
func (c *Connector) Connect() (*Store, error) {
	var lastErr error
	for attempt := 1; attempt <= c.MaxRetries; attempt++ {
		s, err := c.connectOnce()
		if err == nil {
			return s, nil
		}
		lastErr = err
		log.Printf("ERROR: store connection attempt %d/%d failed: %v", attempt, c.MaxRetries, err)
		if attempt < c.MaxRetries {
			time.Sleep(c.RetryDelay)
		}
	}
	return nil, fmt.Errorf("%w after %d attempts: %v", chaterr.ErrFatal, c.MaxRetries, lastErr)
}

func (c *Connector) connectOnce() (*Store, error) {
	db, err := c.OpenDB()
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	rdb, err := c.OpenRedis()
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}
	return &Store{DB: db, Redis: rdb}, nil
}

// Migrate creates the schema. AutoMigrate handles the tables; the uniqueness
// race-breaker for room creation is a partial index over non-deleted rooms,
// which AutoMigrate cannot express, so it is created with raw SQL.
func (s *Store) Migrate() error {
	if err := s.DB.AutoMigrate(
		&models.Room{},
		&models.RoomMember{},
		&models.Message{},
	); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}

	sql := `CREATE UNIQUE INDEX IF NOT EXISTS idx_rooms_client_name_active
		ON rooms (client_id, name) WHERE is_deleted = false`
	if err := s.DB.Exec(sql).Error; err != nil {
		return fmt.Errorf("create room uniqueness index: %w", err)
	}
	return nil
}

// Close releases both connections.
func (s *Store) Close() error {
	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			log.Printf("WARNING: closing redis: %v", err)
		}
	}
	if s.DB != nil {
		sqlDB, err := s.DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}
