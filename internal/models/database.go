package models

import (
	"fmt"

	"github.com/freelancehub/pmcopilot/backend/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func InitDB(cfg *config.DatabaseConfig) error {
	var dialector gorm.Dialector

	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	gormConfig := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return fmt.Errorf("failed to connect database: %w", err)
	}

	DB = db
	return nil
}

func AutoMigrate() error {
	return DB.AutoMigrate(
		&User{},
		&RefreshToken{},
		&Contract{},
		&ChangeRequest{},
		&Plan{},
		&Communication{},
		&Company{},
		&Team{},
		&Person{},
		&Skill{},
		&PersonSkill{},
		&Project{},
		&Assignment{},
		&SystemConfig{},
		&SystemLog{},
	)
}

func GetDB() *gorm.DB {
	return DB
}

// SeedDefaultData creates the default skill catalog and system settings if not present.
func SeedDefaultData() error {
	var skillCount int64
	DB.Model(&Skill{}).Count(&skillCount)
	if skillCount == 0 {
		defaults := []Skill{
			{Key: "React", Category: SkillCategoryFrontend},
			{Key: "Vue", Category: SkillCategoryFrontend},
			{Key: "Flutter", Category: SkillCategoryMobile},
			{Key: "Swift", Category: SkillCategoryMobile},
			{Key: "Kotlin", Category: SkillCategoryMobile},
			{Key: "Node.js", Category: SkillCategoryBackend},
			{Key: "Go", Category: SkillCategoryBackend},
			{Key: "PostgreSQL", Category: SkillCategoryBackend},
			{Key: "Docker", Category: SkillCategoryDevops},
			{Key: "Kubernetes", Category: SkillCategoryDevops},
			{Key: "Figma", Category: SkillCategoryDesign},
		}
		if err := DB.Create(&defaults).Error; err != nil {
			return err
		}
	}

	configDefaults := []SystemConfig{
		{Key: "email_enabled", Value: "false", Type: "bool", Group: "email", Label: "Enable email sending"},
		{Key: "email_host", Value: "", Type: "string", Group: "email", Label: "SMTP host"},
		{Key: "email_port", Value: "587", Type: "int", Group: "email", Label: "SMTP port"},
		{Key: "email_username", Value: "", Type: "string", Group: "email", Label: "SMTP username"},
		{Key: "email_password", Value: "", Type: "string", Group: "email", Label: "SMTP password"},
		{Key: "email_from", Value: "", Type: "string", Group: "email", Label: "Sender address"},
		{Key: "email_use_tls", Value: "true", Type: "bool", Group: "email", Label: "Use TLS"},
		{Key: "sender_name", Value: "", Type: "string", Group: "email", Label: "Signature name in outgoing mail"},
		{Key: "reminder_country", Value: "US", Type: "string", Group: "reminders", Label: "Business-day calendar country"},
		{Key: "log_retention_days", Value: "30", Type: "int", Group: "system", Label: "System log retention in days"},
	}
	for _, c := range configDefaults {
		var count int64
		DB.Model(&SystemConfig{}).Where("`key` = ?", c.Key).Count(&count)
		if count == 0 {
			if err := DB.Create(&c).Error; err != nil {
				return err
			}
		}
	}

	return nil
}
