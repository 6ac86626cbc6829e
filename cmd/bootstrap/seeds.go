package bootstrap

import (
	"errors"

	"github.com/code-100-precent/LingQfight/internal/models"
	"github.com/code-100-precent/LingQfight/pkg/config"
	"github.com/code-100-precent/LingQfight/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type SeedService struct {
	db    *gorm.DB
	admin config.AdminConfig
}

func (s *SeedService) SeedAll() error {
	return s.seedAdmin()
}

func (s *SeedService) seedAdmin() error {
	if s.admin.Username == "" || s.admin.Password == "" {
		return errors.New("admin username and password are required")
	}
	created, err := models.EnsureAdmin(s.db, s.admin.Username, s.admin.Password)
	if err != nil {
		return err
	}
	if created {
		logger.Info("admin account seeded", zap.String("username", s.admin.Username))
	}
	return nil
}
