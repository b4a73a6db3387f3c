package services

import (
	"fmt"

	"github.com/freelancehub/pmcopilot/backend/internal/models"
	"gorm.io/gorm"
)

// Capacity classifications by utilization rate.
const (
	CapacityOverloaded = "overloaded" // > 90%
	CapacityHigh       = "high"       // > 75%
	CapacityMedium     = "medium"     // > 50%
	CapacityLow        = "low"        // > 25%
	CapacityAvailable  = "available"  // <= 25%
)

// TeamMetrics summarizes a team's weekly capacity and committed workload.
type TeamMetrics struct {
	TeamID               uint    `json:"team_id"`
	TeamName             string  `json:"team_name"`
	MemberCount          int     `json:"member_count"`
	TotalCapacityHours   float64 `json:"total_capacity_hours"`
	CurrentWorkloadHours float64 `json:"current_workload_hours"`
	AvailableHours       float64 `json:"available_hours"`
	UtilizationRate      float64 `json:"utilization_rate"` // 0-100
	AvgWorkloadPct       float64 `json:"avg_workload_pct"` // 0-100
	Classification       string  `json:"classification"`
}

// ComputeTeamMetrics is a pure aggregation over a team's members. An empty
// member list yields zero rates, never a division error.
func ComputeTeamMetrics(team *models.Team, people []models.Person) TeamMetrics {
	m := TeamMetrics{Classification: CapacityAvailable}
	if team != nil {
		m.TeamID = team.ID
		m.TeamName = team.Name
	}
	m.MemberCount = len(people)
	if len(people) == 0 {
		return m
	}

	var workloadSum float64
	for _, p := range people {
		m.TotalCapacityHours += p.HoursPerWeek
		m.CurrentWorkloadHours += p.HoursPerWeek * p.CurrentWorkload / 100
		workloadSum += p.CurrentWorkload
	}
	m.AvailableHours = m.TotalCapacityHours - m.CurrentWorkloadHours
	if m.TotalCapacityHours > 0 {
		m.UtilizationRate = m.CurrentWorkloadHours / m.TotalCapacityHours * 100
	}
	m.AvgWorkloadPct = workloadSum / float64(len(people))
	m.Classification = ClassifyUtilization(m.UtilizationRate)
	return m
}

// ClassifyUtilization buckets a utilization rate for heatmap display and
// alerting. Boundaries are inclusive on the lower band: exactly 75 is medium,
// exactly 90 is high.
func ClassifyUtilization(rate float64) string {
	switch {
	case rate > 90:
		return CapacityOverloaded
	case rate > 75:
		return CapacityHigh
	case rate > 50:
		return CapacityMedium
	case rate > 25:
		return CapacityLow
	default:
		return CapacityAvailable
	}
}

type CapacityService struct {
	db *gorm.DB
}

func NewCapacityService(db *gorm.DB) *CapacityService {
	return &CapacityService{db: db}
}

// CompanyHeatmap computes metrics for every team in a company.
func (s *CapacityService) CompanyHeatmap(companyID uint) ([]TeamMetrics, error) {
	var teams []models.Team
	if err := s.db.Where("company_id = ?", companyID).Order("name").Find(&teams).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	metrics := make([]TeamMetrics, 0, len(teams))
	for i := range teams {
		var people []models.Person
		if err := s.db.Where("team_id = ?", teams[i].ID).Find(&people).Error; err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		metrics = append(metrics, ComputeTeamMetrics(&teams[i], people))
	}
	return metrics, nil
}

// TeamMetricsByID computes metrics for one team.
func (s *CapacityService) TeamMetricsByID(teamID uint) (*TeamMetrics, error) {
	var team models.Team
	if err := s.db.First(&team, teamID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: team %d", ErrNotFound, teamID)
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	var people []models.Person
	if err := s.db.Where("team_id = ?", teamID).Find(&people).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	m := ComputeTeamMetrics(&team, people)
	return &m, nil
}

// RecomputeWorkload derives a person's workload percentage from their active
// assignments (sum of planned hours / weekly hours). The stored
// currentWorkload field remains the source of truth for capacity math; this
// helper exists for manual reconciliation.
func (s *CapacityService) RecomputeWorkload(personID uint) (float64, error) {
	var person models.Person
	if err := s.db.First(&person, personID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, fmt.Errorf("%w: person %d", ErrNotFound, personID)
		}
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if person.HoursPerWeek <= 0 {
		return 0, nil
	}

	var planned float64
	err := s.db.Model(&models.Assignment{}).
		Where("person_id = ? AND status IN ?", personID,
			[]string{models.AssignmentStatusAssigned, models.AssignmentStatusInProgress}).
		Select("COALESCE(SUM(planned_hours), 0)").
		Scan(&planned).Error
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	pct := planned / person.HoursPerWeek * 100
	if pct > 100 {
		pct = 100
	}
	return pct, nil
}
