package services

import (
	"github.com/freelancehub/pmcopilot/backend/internal/models"
	"gorm.io/gorm"
)

type SystemConfigService struct {
	db *gorm.DB
}

func NewSystemConfigService(db *gorm.DB) *SystemConfigService {
	return &SystemConfigService{db: db}
}

func (s *SystemConfigService) Get(key string) (string, error) {
	var config models.SystemConfig
	if err := s.db.Where("`key` = ?", key).First(&config).Error; err != nil {
		return "", err
	}
	return config.Value, nil
}

func (s *SystemConfigService) GetWithDefault(key, defaultValue string) string {
	value, err := s.Get(key)
	if err != nil || value == "" {
		return defaultValue
	}
	return value
}

func (s *SystemConfigService) Set(key, value string) error {
	var config models.SystemConfig
	err := s.db.Where("`key` = ?", key).First(&config).Error
	if err == gorm.ErrRecordNotFound {
		return s.db.Create(&models.SystemConfig{Key: key, Value: value}).Error
	}
	if err != nil {
		return err
	}
	config.Value = value
	return s.db.Save(&config).Error
}

func (s *SystemConfigService) GetByGroup(group string) ([]models.SystemConfig, error) {
	var configs []models.SystemConfig
	if err := s.db.Where("`group` = ?", group).Order("`key`").Find(&configs).Error; err != nil {
		return nil, err
	}
	return configs, nil
}
