package utils

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/code-100-precent/LingQfight/pkg/constants"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// PoolOptions sizes the sql.DB pool behind a gorm handle
type PoolOptions struct {
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// PoolOptionsFor returns the pool sizing for a normalized driver name.
// sqlite serializes writers, so it gets a single connection.
func PoolOptionsFor(driver string) PoolOptions {
	if driver == DriverSQLite {
		return PoolOptions{MaxIdleConns: 1, MaxOpenConns: 1}
	}
	return PoolOptions{
		MaxIdleConns:    10,
		MaxOpenConns:    100,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: 30 * time.Minute,
	}
}

// InitDatabase opens driver/dsn (falling back to DB_DRIVER/DSN) with a gorm logger writing to logWrite
func InitDatabase(logWrite io.Writer, driver, dsn string) (*gorm.DB, error) {
	if driver == "" {
		driver = GetEnv(constants.ENV_DB_DRIVER)
	}
	if dsn == "" {
		dsn = GetEnv(constants.ENV_DSN)
	}
	driver, err := NormalizeDriver(driver)
	if err != nil {
		return nil, err
	}

	if logWrite == nil {
		logWrite = os.Stdout
	}
	sqlLogger := logger.New(
		log.New(logWrite, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true, // a missing account is an expected 401/404, not noise
			Colorful:                  false,
		},
	)

	cfg := &gorm.Config{
		Logger:                                   sqlLogger,
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
	}

	db, err := createDatabaseInstance(cfg, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}

	if err := ConfigureConnectionPool(db, PoolOptionsFor(driver)); err != nil {
		return nil, err
	}
	return db, nil
}

// ConfigureConnectionPool applies opts; zero durations leave the sql.DB default in place
func ConfigureConnectionPool(db *gorm.DB, opts PoolOptions) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get database instance: %w", err)
	}
	sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	if opts.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}
	if opts.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(opts.ConnMaxIdleTime)
	}
	return nil
}

// MakeMigrates auto-migrates each model in order and stops at the first failure
func MakeMigrates(db *gorm.DB, insts []any) error {
	for _, v := range insts {
		if err := db.AutoMigrate(v); err != nil {
			return fmt.Errorf("migrate %T: %w", v, err)
		}
	}
	return nil
}
