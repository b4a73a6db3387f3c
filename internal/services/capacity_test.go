package services

import (
	"testing"

	"github.com/freelancehub/pmcopilot/backend/internal/models"
)

func TestClassifyUtilization(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{0, CapacityAvailable},
		{25, CapacityAvailable},
		{25.1, CapacityLow},
		{50, CapacityLow},
		{50.1, CapacityMedium},
		{75, CapacityMedium},
		{75.1, CapacityHigh},
		{90, CapacityHigh},
		{90.1, CapacityOverloaded},
		{100, CapacityOverloaded},
	}
	for _, tt := range tests {
		if got := ClassifyUtilization(tt.rate); got != tt.want {
			t.Errorf("ClassifyUtilization(%v) = %q, expected %q", tt.rate, got, tt.want)
		}
	}
}

func TestComputeTeamMetrics_EmptyTeam(t *testing.T) {
	team := &models.Team{ID: 1, Name: "Backend"}
	m := ComputeTeamMetrics(team, nil)

	if m.MemberCount != 0 {
		t.Errorf("MemberCount = %d, expected 0", m.MemberCount)
	}
	if m.UtilizationRate != 0 {
		t.Errorf("UtilizationRate = %v, expected 0", m.UtilizationRate)
	}
	if m.AvgWorkloadPct != 0 {
		t.Errorf("AvgWorkloadPct = %v, expected 0", m.AvgWorkloadPct)
	}
	if m.Classification != CapacityAvailable {
		t.Errorf("Classification = %q, expected %q", m.Classification, CapacityAvailable)
	}
}

// Two members at 40h/week, one half-committed and one fully committed, put
// the team at 75% utilization, which is still medium.
func TestComputeTeamMetrics_BackendTeam(t *testing.T) {
	team := &models.Team{ID: 7, Name: "Backend"}
	people := []models.Person{
		{Name: "Dana", HoursPerWeek: 40, CurrentWorkload: 50},
		{Name: "Kim", HoursPerWeek: 40, CurrentWorkload: 100},
	}

	m := ComputeTeamMetrics(team, people)

	if m.TeamID != 7 || m.TeamName != "Backend" {
		t.Errorf("team identity = (%d, %q), expected (7, Backend)", m.TeamID, m.TeamName)
	}
	if m.MemberCount != 2 {
		t.Errorf("MemberCount = %d, expected 2", m.MemberCount)
	}
	if m.TotalCapacityHours != 80 {
		t.Errorf("TotalCapacityHours = %v, expected 80", m.TotalCapacityHours)
	}
	if m.CurrentWorkloadHours != 60 {
		t.Errorf("CurrentWorkloadHours = %v, expected 60", m.CurrentWorkloadHours)
	}
	if m.AvailableHours != 20 {
		t.Errorf("AvailableHours = %v, expected 20", m.AvailableHours)
	}
	if m.UtilizationRate != 75 {
		t.Errorf("UtilizationRate = %v, expected 75", m.UtilizationRate)
	}
	if m.AvgWorkloadPct != 75 {
		t.Errorf("AvgWorkloadPct = %v, expected 75", m.AvgWorkloadPct)
	}
	if m.Classification != CapacityMedium {
		t.Errorf("Classification = %q, expected %q", m.Classification, CapacityMedium)
	}
}

func TestComputeTeamMetrics_ZeroHoursMember(t *testing.T) {
	people := []models.Person{{Name: "Pat", HoursPerWeek: 0, CurrentWorkload: 80}}
	m := ComputeTeamMetrics(nil, people)

	if m.UtilizationRate != 0 {
		t.Errorf("UtilizationRate = %v, expected 0 with no capacity hours", m.UtilizationRate)
	}
	if m.AvgWorkloadPct != 80 {
		t.Errorf("AvgWorkloadPct = %v, expected 80", m.AvgWorkloadPct)
	}
}

func TestCapacityService_CompanyHeatmap(t *testing.T) {
	db := newTestDB(t)
	dir := NewDirectoryService(db)

	company, err := dir.CreateCompany(&CreateCompanyRequest{Name: "Initech"})
	if err != nil {
		t.Fatalf("create company: %v", err)
	}
	backend, err := dir.CreateTeam(&CreateTeamRequest{CompanyID: company.ID, Name: "Backend"})
	if err != nil {
		t.Fatalf("create team: %v", err)
	}
	frontend, err := dir.CreateTeam(&CreateTeamRequest{CompanyID: company.ID, Name: "Frontend"})
	if err != nil {
		t.Fatalf("create team: %v", err)
	}

	db.Create(&models.Person{CompanyID: company.ID, TeamID: backend.ID, Name: "Dana", HoursPerWeek: 40, CurrentWorkload: 50})
	db.Create(&models.Person{CompanyID: company.ID, TeamID: backend.ID, Name: "Kim", HoursPerWeek: 40, CurrentWorkload: 100})

	metrics, err := NewCapacityService(db).CompanyHeatmap(company.ID)
	if err != nil {
		t.Fatalf("company heatmap: %v", err)
	}
	if len(metrics) != 2 {
		t.Fatalf("got %d team metrics, expected 2", len(metrics))
	}

	byName := map[string]TeamMetrics{}
	for _, m := range metrics {
		byName[m.TeamName] = m
	}
	if byName["Backend"].UtilizationRate != 75 {
		t.Errorf("Backend utilization = %v, expected 75", byName["Backend"].UtilizationRate)
	}
	if byName["Frontend"].MemberCount != 0 {
		t.Errorf("Frontend member count = %d, expected 0", byName["Frontend"].MemberCount)
	}
	_ = frontend
}

func TestCapacityService_RecomputeWorkload(t *testing.T) {
	db := newTestDB(t)

	person := &models.Person{CompanyID: 1, TeamID: 1, Name: "Dana", HoursPerWeek: 40}
	db.Create(person)

	db.Create(&models.Assignment{TaskID: "t1", PersonID: person.ID, PlannedHours: 16, Status: models.AssignmentStatusAssigned})
	db.Create(&models.Assignment{TaskID: "t2", PersonID: person.ID, PlannedHours: 8, Status: models.AssignmentStatusInProgress})
	db.Create(&models.Assignment{TaskID: "t3", PersonID: person.ID, PlannedHours: 40, Status: models.AssignmentStatusCompleted})

	pct, err := NewCapacityService(db).RecomputeWorkload(person.ID)
	if err != nil {
		t.Fatalf("recompute workload: %v", err)
	}
	// 24 planned hours against 40 hours/week; completed work does not count.
	if pct != 60 {
		t.Errorf("derived workload = %v, expected 60", pct)
	}
}
