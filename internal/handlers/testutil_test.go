package handlers

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/freelancehub/pmcopilot/backend/internal/middleware"
	"github.com/freelancehub/pmcopilot/backend/internal/models"
	"github.com/freelancehub/pmcopilot/backend/internal/services"
	"github.com/gin-gonic/gin"
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
		&models.SystemConfig{},
		&models.SystemLog{},
	)
	if err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// newAuthedContext returns a recorder-backed gin context carrying userID, as
// the auth middleware would have left it.
func newAuthedContext(t *testing.T, userID uint) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set(middleware.ContextUserID, userID)
	return c, w
}

func createTestContract(t *testing.T, db *gorm.DB, userID uint) *models.Contract {
	t.Helper()

	contract, err := services.NewContractService(db).Create(&services.CreateContractRequest{
		Title:       "Website Redesign",
		ClientName:  "Acme Corp",
		ClientEmail: "billing@acme.example",
	}, userID)
	if err != nil {
		t.Fatalf("create contract: %v", err)
	}
	return contract
}

// deadQueue refuses every enqueue, simulating an unreachable broker.
type deadQueue struct{}

func (deadQueue) Enqueue(*services.AnalysisTask) error {
	return errors.New("queue connection refused")
}
func (deadQueue) IsAsync() bool { return true }
func (deadQueue) Close() error  { return nil }
