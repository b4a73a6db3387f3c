package services

import (
	"errors"
	"testing"

	"github.com/freelancehub/pmcopilot/backend/internal/models"
	"gorm.io/gorm"
)

func testSprints() []models.Sprint {
	return []models.Sprint{
		{ID: "s1", Name: "Sprint 1"},
		{ID: "s2", Name: "Sprint 2"},
	}
}

func TestPlanService_VersionsAreGapless(t *testing.T) {
	db := newTestDB(t)
	contract := createTestContract(t, db, 1)
	svc := NewPlanService(db)

	for i := 1; i <= 3; i++ {
		plan, err := svc.Create(contract.ID, 1, &CreatePlanRequest{
			Title:   "Schedule",
			Sprints: testSprints(),
		})
		if err != nil {
			t.Fatalf("create plan %d: %v", i, err)
		}
		if plan.Version != i {
			t.Errorf("plan version = %d, expected %d", plan.Version, i)
		}
	}

	versions, err := svc.ListVersions(contract.ID)
	if err != nil {
		t.Fatalf("list versions: %v", err)
	}
	if len(versions) != 3 {
		t.Fatalf("got %d versions, expected 3", len(versions))
	}
	// Newest first.
	for i, v := range versions {
		if v.Version != 3-i {
			t.Errorf("versions[%d].Version = %d, expected %d", i, v.Version, 3-i)
		}
	}
}

func TestPlanService_VersionsPerContract(t *testing.T) {
	db := newTestDB(t)
	c1 := createTestContract(t, db, 1)
	c2 := createTestContract(t, db, 1)
	svc := NewPlanService(db)

	p1, err := svc.Create(c1.ID, 1, &CreatePlanRequest{Sprints: testSprints()})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	p2, err := svc.Create(c2.ID, 1, &CreatePlanRequest{Sprints: testSprints()})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Each contract numbers its versions independently from 1.
	if p1.Version != 1 || p2.Version != 1 {
		t.Errorf("versions = %d, %d, expected both 1", p1.Version, p2.Version)
	}
}

func TestPlanService_AutoSupersede(t *testing.T) {
	db := newTestDB(t)
	contract := createTestContract(t, db, 1)
	svc := NewPlanService(db)

	svc.Create(contract.ID, 1, &CreatePlanRequest{Sprints: testSprints()})
	svc.Create(contract.ID, 1, &CreatePlanRequest{Sprints: testSprints(), ChangeReason: "scope changed"})

	v1, err := svc.GetVersion(contract.ID, 1)
	if err != nil {
		t.Fatalf("get v1: %v", err)
	}
	if v1.Status != models.PlanStatusSuperseded {
		t.Errorf("v1 status = %q, expected superseded", v1.Status)
	}

	v2, err := svc.GetVersion(contract.ID, 2)
	if err != nil {
		t.Fatalf("get v2: %v", err)
	}
	if v2.Status != models.PlanStatusActive {
		t.Errorf("v2 status = %q, expected active", v2.Status)
	}
	if v2.ChangeReason != "scope changed" {
		t.Errorf("v2 change reason = %q", v2.ChangeReason)
	}
}

func TestPlanService_ManualSupersede(t *testing.T) {
	db := newTestDB(t)
	contract := createTestContract(t, db, 1)
	svc := NewPlanService(db)
	svc.AutoSupersede = false

	svc.Create(contract.ID, 1, &CreatePlanRequest{Sprints: testSprints()})
	svc.Create(contract.ID, 1, &CreatePlanRequest{Sprints: testSprints()})

	// Without auto-supersede both versions stay active.
	v1, _ := svc.GetVersion(contract.ID, 1)
	if v1.Status != models.PlanStatusActive {
		t.Fatalf("v1 status = %q, expected active", v1.Status)
	}

	if err := svc.Supersede(contract.ID, 1); err != nil {
		t.Fatalf("supersede: %v", err)
	}
	v1, _ = svc.GetVersion(contract.ID, 1)
	if v1.Status != models.PlanStatusSuperseded {
		t.Errorf("v1 status = %q, expected superseded", v1.Status)
	}

	// Superseding twice is rejected.
	if err := svc.Supersede(contract.ID, 1); !errors.Is(err, ErrInvalidStateTransition) {
		t.Errorf("double supersede: expected ErrInvalidStateTransition, got %v", err)
	}
}

func TestPlanService_PriorVersionsImmutable(t *testing.T) {
	db := newTestDB(t)
	contract := createTestContract(t, db, 1)
	svc := NewPlanService(db)

	first, _ := svc.Create(contract.ID, 1, &CreatePlanRequest{
		Title:   "Original",
		Sprints: []models.Sprint{{ID: "s1", Name: "Kickoff"}},
	})
	svc.Create(contract.ID, 1, &CreatePlanRequest{
		Title:   "Replanned",
		Sprints: []models.Sprint{{ID: "s1", Name: "Kickoff"}, {ID: "s2", Name: "Delivery"}},
	})

	v1, err := svc.GetVersion(contract.ID, 1)
	if err != nil {
		t.Fatalf("get v1: %v", err)
	}
	if v1.Title != "Original" || len(v1.Sprints) != 1 {
		t.Errorf("v1 content changed: title=%q sprints=%d", v1.Title, len(v1.Sprints))
	}
	if v1.ID != first.ID {
		t.Errorf("v1 row id = %d, expected %d", v1.ID, first.ID)
	}
}

func TestPlanService_Create_RequiresSprints(t *testing.T) {
	db := newTestDB(t)
	contract := createTestContract(t, db, 1)

	_, err := NewPlanService(db).Create(contract.ID, 1, &CreatePlanRequest{})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestPlanService_Create_OtherUsersContract(t *testing.T) {
	db := newTestDB(t)
	contract := createTestContract(t, db, 1)

	_, err := NewPlanService(db).Create(contract.ID, 2, &CreatePlanRequest{Sprints: testSprints()})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for another user's contract, got %v", err)
	}
}

func TestPlanService_DuplicateVersionRejected(t *testing.T) {
	db := newTestDB(t)
	contract := createTestContract(t, db, 1)
	svc := NewPlanService(db)

	if _, err := svc.Create(contract.ID, 1, &CreatePlanRequest{Sprints: testSprints()}); err != nil {
		t.Fatalf("create plan: %v", err)
	}

	// A second row with the same (contract, version) pair must hit the
	// unique index; Create relies on this to detect racing replans.
	dup := &models.Plan{
		ContractID: contract.ID,
		UserID:     1,
		Version:    1,
		Status:     models.PlanStatusActive,
	}
	if err := db.Create(dup).Error; !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Errorf("expected gorm.ErrDuplicatedKey, got %v", err)
	}
}

func TestPlanService_Create_MissingContract(t *testing.T) {
	db := newTestDB(t)
	_, err := NewPlanService(db).Create(9999, 1, &CreatePlanRequest{Sprints: testSprints()})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPlanService_GetVersion_NotFound(t *testing.T) {
	db := newTestDB(t)
	contract := createTestContract(t, db, 1)

	_, err := NewPlanService(db).GetVersion(contract.ID, 5)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
