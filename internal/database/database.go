package database

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/sjperalta/arrendando-api/internal/config"
	"github.com/sjperalta/arrendando-api/pkg/logger"
)

// Options tunes the connection pool and query logging
type Options struct {
	MaxOpenConns  int
	MaxIdleConns  int
	SlowThreshold time.Duration
	// LogQueries logs every statement; errors and slow queries are always logged
	LogQueries bool
}

// OptionsFrom derives pool options from the application config
func OptionsFrom(cfg *config.Config) Options {
	return Options{
		MaxOpenConns:  cfg.DBMaxOpenConns,
		MaxIdleConns:  cfg.DBMaxIdleConns,
		SlowThreshold: cfg.DBSlowThreshold,
		LogQueries:    !cfg.IsProduction(),
	}
}

func (o Options) logLevel() gormlogger.LogLevel {
	if o.LogQueries {
		return gormlogger.Info
	}
	return gormlogger.Warn
}

// Connect opens the PostgreSQL pool and verifies it with a ping
func Connect(databaseURL string, opts Options) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger:                 logger.NewGormLogger(opts.logLevel(), opts.SlowThreshold),
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get database handle: %w", err)
	}

	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger.Info("Database connected", "max_open_conns", opts.MaxOpenConns, "slow_threshold", opts.SlowThreshold.String())
	return db, nil
}
