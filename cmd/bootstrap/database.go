package bootstrap

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/code-100-precent/LingQfight/internal/models"
	"github.com/code-100-precent/LingQfight/pkg/config"
	"github.com/code-100-precent/LingQfight/pkg/logger"
	"github.com/code-100-precent/LingQfight/pkg/middleware"
	"github.com/code-100-precent/LingQfight/pkg/utils"
	"go.uber.org/zap"

	"gorm.io/gorm"
)

// Options controls database initialization behavior
type Options struct {
	// InitSQLPath points to a .sql script file (optional); skip if empty
	InitSQLPath string
	// AutoMigrate whether to execute entity migration (default true)
	AutoMigrate bool
	// SeedAdmin creates the configured admin account when missing (default true)
	SeedAdmin bool
}

// SetupDatabase unified entry: connect database -> run initialization SQL -> migrate entities -> seed the admin account
func SetupDatabase(logWriter io.Writer, opts *Options) (*gorm.DB, error) {
	if config.GlobalConfig == nil {
		return nil, errors.New("config not loaded")
	}
	if opts == nil {
		opts = &Options{AutoMigrate: true, SeedAdmin: true}
	}

	// 1) Connect to database
	db, err := openDB(logWriter)
	if err != nil {
		logger.Error("init database failed", zap.Error(err))
		return nil, err
	}

	// 2) Optional: execute initialization SQL
	if opts.InitSQLPath != "" {
		n, err := RunInitSQL(db, opts.InitSQLPath)
		if err != nil {
			logger.Error("run init sql failed", zap.String("path", opts.InitSQLPath), zap.Error(err))
			closeDB(db)
			return nil, err
		}
		logger.Info("init sql executed", zap.String("path", opts.InitSQLPath), zap.Int("statements", n))
	}

	// 3) Migrate entities
	if opts.AutoMigrate {
		if err := RunMigrations(db); err != nil {
			logger.Error("migration failed", zap.Error(err))
			closeDB(db)
			return nil, err
		}
		logger.Info("migration success", zap.String("database", config.GlobalConfig.Server.DBDriver))
	}

	// 4) Admin account
	if opts.SeedAdmin {
		service := SeedService{db: db, admin: config.GlobalConfig.Admin}
		if err := service.SeedAll(); err != nil {
			logger.Error("seed failed", zap.Error(err))
			closeDB(db)
			return nil, err
		}
	}

	logger.Info("system bootstrap - database is initialization complete")
	return db, nil
}

// openDB is swapped in tests to observe the connection SetupDatabase opens
var openDB = initDBConn

// initDBConn creates *gorm.DB based on global configuration
func initDBConn(logWriter io.Writer) (*gorm.DB, error) {
	return utils.InitDatabase(logWriter, config.GlobalConfig.Server.DBDriver, config.GlobalConfig.Server.DSN)
}

// closeDB releases the pool of a handle SetupDatabase will not return
func closeDB(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.Warn("close database failed", zap.Error(err))
	}
}

// RunInitSQL runs a local .sql script statement by statement and reports how many ran.
// Statements end at a line whose last character is ';'; "--" and "#" lines are comments.
// Scripts are re-run on every start, so they should guard with IF NOT EXISTS.
func RunInitSQL(db *gorm.DB, sqlFilePath string) (int, error) {
	f, err := os.Open(sqlFilePath)
	if err != nil {
		return 0, fmt.Errorf("open init sql: %w", err)
	}
	defer f.Close()

	var (
		sb       strings.Builder
		executed int
	)
	exec := func() error {
		stmt := strings.TrimSuffix(strings.TrimSpace(sb.String()), ";")
		sb.Reset()
		if stmt == "" {
			return nil
		}
		executed++
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("%s statement %d: %w", filepath.Base(sqlFilePath), executed, err)
		}
		return nil
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		trim := strings.TrimSpace(scanner.Text())
		if trim == "" || strings.HasPrefix(trim, "--") || strings.HasPrefix(trim, "#") {
			continue
		}
		sb.WriteString(trim)
		sb.WriteString("\n")
		if strings.HasSuffix(trim, ";") {
			if err := exec(); err != nil {
				return executed, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return executed, err
	}
	return executed, exec()
}

// RunMigrations executes entity migration
func RunMigrations(db *gorm.DB) error {
	if db == nil {
		return errors.New("db is nil")
	}
	return utils.MakeMigrates(db, []any{
		&models.Account{},
		&models.Player{},
		&middleware.OperationLog{},
	})
}
