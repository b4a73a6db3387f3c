package services

import (
	"testing"

	"github.com/freelancehub/pmcopilot/backend/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Contract{},
		&models.ChangeRequest{},
		&models.Plan{},
		&models.Communication{},
		&models.Company{},
		&models.Team{},
		&models.Person{},
		&models.Skill{},
		&models.PersonSkill{},
		&models.Project{},
		&models.Assignment{},
		&models.SystemConfig{},
		&models.SystemLog{},
	)
	if err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func createTestContract(t *testing.T, db *gorm.DB, userID uint) *models.Contract {
	t.Helper()

	svc := NewContractService(db)
	contract, err := svc.Create(&CreateContractRequest{
		Title:       "Website Redesign",
		ClientName:  "Acme Corp",
		ClientEmail: "billing@acme.example",
	}, userID)
	if err != nil {
		t.Fatalf("create contract: %v", err)
	}
	return contract
}
