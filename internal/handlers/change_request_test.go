package handlers

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/freelancehub/pmcopilot/backend/internal/models"
	"github.com/freelancehub/pmcopilot/backend/internal/services"
	"github.com/gin-gonic/gin"
)

func TestChangeRequestHandler_Create_QueueDown(t *testing.T) {
	db := newTestDB(t)
	contract := createTestContract(t, db, 1)

	services.SetTaskQueue(deadQueue{})
	t.Cleanup(func() { services.SetTaskQueue(nil) })

	h := NewChangeRequestHandler(db)
	c, w := newAuthedContext(t, 1)
	c.Params = gin.Params{{Key: "id", Value: strconv.Itoa(int(contract.ID))}}
	body := `{"request_text":"Add a customer dashboard","type":"feature-request"}`
	c.Request = httptest.NewRequest(http.MethodPost, "/api/contracts/changes", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	h.Create(c)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, expected 503", w.Code)
	}

	// The request is saved, stays pending and carries the failure, so it
	// can be re-analyzed once the queue is back.
	var cr models.ChangeRequest
	if err := db.First(&cr).Error; err != nil {
		t.Fatalf("load change request: %v", err)
	}
	if cr.Status != models.ChangeStatusPending {
		t.Errorf("status = %q, expected pending", cr.Status)
	}
	if cr.ErrorMessage == "" {
		t.Errorf("expected the queue failure to be recorded on the change request")
	}
}

func TestChangeRequestHandler_GetByID_OtherUser(t *testing.T) {
	db := newTestDB(t)
	contract := createTestContract(t, db, 1)

	cr, err := services.NewChangeRequestService(db).Create(contract.ID, 1, &services.CreateChangeRequest{
		RequestText: "Swap the color palette",
		Type:        models.ChangeTypeScope,
	})
	if err != nil {
		t.Fatalf("create change request: %v", err)
	}

	h := NewChangeRequestHandler(db)
	c, w := newAuthedContext(t, 2)
	c.Params = gin.Params{{Key: "id", Value: strconv.Itoa(int(cr.ID))}}
	c.Request = httptest.NewRequest(http.MethodGet, "/api/changes/1", nil)
	h.GetByID(c)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, expected 404 for another user's change request", w.Code)
	}
}
