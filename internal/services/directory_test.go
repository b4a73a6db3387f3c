package services

import (
	"errors"
	"testing"

	"github.com/freelancehub/pmcopilot/backend/internal/models"
)

func directoryFixture(t *testing.T) (*DirectoryService, *models.Company, *models.Team) {
	t.Helper()
	svc := NewDirectoryService(newTestDB(t))

	company, err := svc.CreateCompany(&CreateCompanyRequest{Name: "Initech", Industry: "software"})
	if err != nil {
		t.Fatalf("create company: %v", err)
	}
	team, err := svc.CreateTeam(&CreateTeamRequest{CompanyID: company.ID, Name: "Backend"})
	if err != nil {
		t.Fatalf("create team: %v", err)
	}
	return svc, company, team
}

func TestDirectoryService_CreateCompany_Defaults(t *testing.T) {
	svc := NewDirectoryService(newTestDB(t))

	company, err := svc.CreateCompany(&CreateCompanyRequest{Name: "Initech"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if company.LicenseType != models.LicenseTrial {
		t.Errorf("LicenseType = %q, expected trial", company.LicenseType)
	}
	if company.LicenseExpiry.IsZero() {
		t.Error("LicenseExpiry not set")
	}
}

func TestDirectoryService_CreateTeam_RequiresCompany(t *testing.T) {
	svc := NewDirectoryService(newTestDB(t))

	_, err := svc.CreateTeam(&CreateTeamRequest{CompanyID: 99, Name: "Ghost"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDirectoryService_CreatePerson_Defaults(t *testing.T) {
	svc, _, team := directoryFixture(t)

	person, err := svc.CreatePerson(&CreatePersonRequest{
		TeamID: team.ID,
		Name:   "Dana",
	})
	if err != nil {
		t.Fatalf("create person: %v", err)
	}
	if person.Role != models.PersonRoleDeveloper {
		t.Errorf("Role = %q, expected developer", person.Role)
	}
	if person.HoursPerWeek != 40 {
		t.Errorf("HoursPerWeek = %v, expected 40", person.HoursPerWeek)
	}
	if person.CompanyID != team.CompanyID {
		t.Errorf("CompanyID = %d, expected inherited %d", person.CompanyID, team.CompanyID)
	}
}

func TestDirectoryService_CreatePerson_CompanyMismatch(t *testing.T) {
	svc, _, team := directoryFixture(t)

	other, err := svc.CreateCompany(&CreateCompanyRequest{Name: "Globex"})
	if err != nil {
		t.Fatalf("create company: %v", err)
	}

	_, err = svc.CreatePerson(&CreatePersonRequest{
		CompanyID: other.ID,
		TeamID:    team.ID,
		Name:      "Dana",
	})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for mismatched company, got %v", err)
	}
}

func TestDirectoryService_CreatePerson_WithSkills(t *testing.T) {
	svc, _, team := directoryFixture(t)

	person, err := svc.CreatePerson(&CreatePersonRequest{
		TeamID: team.ID,
		Name:   "Dana",
		Skills: []PersonSkillInput{
			{SkillKey: "Go", Level: 5},
			{SkillKey: "Elixir", Level: 2}, // not in the seed catalog
		},
	})
	if err != nil {
		t.Fatalf("create person: %v", err)
	}

	skills, err := svc.PersonSkills(person.ID)
	if err != nil {
		t.Fatalf("person skills: %v", err)
	}
	if len(skills) != 2 {
		t.Fatalf("got %d skills, expected 2", len(skills))
	}

	byKey := map[string]int{}
	for _, s := range skills {
		byKey[s.SkillKey] = s.Level
	}
	if byKey["Go"] != 5 || byKey["Elixir"] != 2 {
		t.Errorf("skill levels = %v", byKey)
	}
}

func TestDirectoryService_SetPersonSkill_Upsert(t *testing.T) {
	svc, _, team := directoryFixture(t)

	person, err := svc.CreatePerson(&CreatePersonRequest{TeamID: team.ID, Name: "Dana"})
	if err != nil {
		t.Fatalf("create person: %v", err)
	}

	if _, err := svc.SetPersonSkill(person.ID, &PersonSkillInput{SkillKey: "Go", Level: 3}); err != nil {
		t.Fatalf("set skill: %v", err)
	}
	if _, err := svc.SetPersonSkill(person.ID, &PersonSkillInput{SkillKey: "Go", Level: 5}); err != nil {
		t.Fatalf("update skill: %v", err)
	}

	skills, _ := svc.PersonSkills(person.ID)
	if len(skills) != 1 {
		t.Fatalf("got %d skill rows, expected upsert to keep 1", len(skills))
	}
	if skills[0].Level != 5 {
		t.Errorf("level = %d, expected 5", skills[0].Level)
	}
}

func TestDirectoryService_SetPersonSkill_LevelBounds(t *testing.T) {
	svc, _, team := directoryFixture(t)
	person, _ := svc.CreatePerson(&CreatePersonRequest{TeamID: team.ID, Name: "Dana"})

	for _, level := range []int{0, 6, -1} {
		_, err := svc.SetPersonSkill(person.ID, &PersonSkillInput{SkillKey: "Go", Level: level})
		if !errors.Is(err, ErrValidation) {
			t.Errorf("level %d: expected ErrValidation, got %v", level, err)
		}
	}
}

func TestDirectoryService_UpdatePerson(t *testing.T) {
	svc, _, team := directoryFixture(t)
	person, _ := svc.CreatePerson(&CreatePersonRequest{TeamID: team.ID, Name: "Dana"})

	workload := 80.0
	hours := 32.0
	updated, err := svc.UpdatePerson(person.ID, &UpdatePersonRequest{
		CurrentWorkload: &workload,
		HoursPerWeek:    &hours,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.CurrentWorkload != 80 || updated.HoursPerWeek != 32 {
		t.Errorf("updated = %v/%v, expected 80/32", updated.CurrentWorkload, updated.HoursPerWeek)
	}

	bad := 120.0
	if _, err := svc.UpdatePerson(person.ID, &UpdatePersonRequest{CurrentWorkload: &bad}); !errors.Is(err, ErrValidation) {
		t.Errorf("workload > 100: expected ErrValidation, got %v", err)
	}

	zero := 0.0
	if _, err := svc.UpdatePerson(person.ID, &UpdatePersonRequest{HoursPerWeek: &zero}); !errors.Is(err, ErrValidation) {
		t.Errorf("zero hours: expected ErrValidation, got %v", err)
	}
}

func TestDirectoryService_CreateAssignment(t *testing.T) {
	svc, _, team := directoryFixture(t)
	person, _ := svc.CreatePerson(&CreatePersonRequest{TeamID: team.ID, Name: "Dana"})

	a, err := svc.CreateAssignment(&CreateAssignmentRequest{
		TaskID:       "t-1",
		SprintID:     "s-1",
		PersonID:     person.ID,
		PlannedHours: 16,
	})
	if err != nil {
		t.Fatalf("create assignment: %v", err)
	}
	if a.Status != models.AssignmentStatusAssigned {
		t.Errorf("status = %q, expected assigned", a.Status)
	}
	if a.PersonName != "Dana" {
		t.Errorf("PersonName = %q, expected denormalized Dana", a.PersonName)
	}
	if a.AssignedAt.IsZero() {
		t.Error("AssignedAt not set")
	}

	list, err := svc.ListAssignments(person.ID)
	if err != nil {
		t.Fatalf("list assignments: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("got %d assignments, expected 1", len(list))
	}
}
