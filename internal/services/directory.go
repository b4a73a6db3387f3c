package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/freelancehub/pmcopilot/backend/internal/models"
	"gorm.io/gorm"
)

// DirectoryService manages the org hierarchy: companies, teams, people and
// their skills. It feeds the capacity aggregator.
type DirectoryService struct {
	db *gorm.DB
}

func NewDirectoryService(db *gorm.DB) *DirectoryService {
	return &DirectoryService{db: db}
}

// --- Companies ---

type CreateCompanyRequest struct {
	Name        string `json:"name" binding:"required"`
	Industry    string `json:"industry"`
	LicenseType string `json:"license_type"`
}

func (s *DirectoryService) CreateCompany(req *CreateCompanyRequest) (*models.Company, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("%w: company name is required", ErrValidation)
	}

	company := &models.Company{
		Name:          req.Name,
		Industry:      req.Industry,
		LicenseType:   req.LicenseType,
		LicenseExpiry: time.Now().AddDate(0, 1, 0),
	}
	if company.LicenseType == "" {
		company.LicenseType = models.LicenseTrial
	}

	if err := s.db.Create(company).Error; err != nil {
		return nil, fmt.Errorf("%w: create company: %v", ErrStoreUnavailable, err)
	}
	return company, nil
}

func (s *DirectoryService) GetCompany(id uint) (*models.Company, error) {
	var company models.Company
	if err := s.db.First(&company, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: company %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: load company %d: %v", ErrStoreUnavailable, id, err)
	}
	return &company, nil
}

func (s *DirectoryService) ListCompanies() ([]models.Company, error) {
	var companies []models.Company
	if err := s.db.Order("name ASC").Find(&companies).Error; err != nil {
		return nil, fmt.Errorf("%w: list companies: %v", ErrStoreUnavailable, err)
	}
	return companies, nil
}

// --- Teams ---

type CreateTeamRequest struct {
	CompanyID   uint   `json:"company_id" binding:"required"`
	Name        string `json:"name" binding:"required"`
	ManagerID   uint   `json:"manager_id"`
	Description string `json:"description"`
}

func (s *DirectoryService) CreateTeam(req *CreateTeamRequest) (*models.Team, error) {
	if req.Name == "" || req.CompanyID == 0 {
		return nil, fmt.Errorf("%w: team name and company are required", ErrValidation)
	}
	if _, err := s.GetCompany(req.CompanyID); err != nil {
		return nil, err
	}

	team := &models.Team{
		CompanyID:   req.CompanyID,
		Name:        req.Name,
		ManagerID:   req.ManagerID,
		Description: req.Description,
	}
	if err := s.db.Create(team).Error; err != nil {
		return nil, fmt.Errorf("%w: create team: %v", ErrStoreUnavailable, err)
	}
	return team, nil
}

func (s *DirectoryService) GetTeam(id uint) (*models.Team, error) {
	var team models.Team
	if err := s.db.First(&team, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: team %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: load team %d: %v", ErrStoreUnavailable, id, err)
	}
	return &team, nil
}

func (s *DirectoryService) ListTeams(companyID uint) ([]models.Team, error) {
	query := s.db.Order("name ASC")
	if companyID != 0 {
		query = query.Where("company_id = ?", companyID)
	}
	var teams []models.Team
	if err := query.Find(&teams).Error; err != nil {
		return nil, fmt.Errorf("%w: list teams: %v", ErrStoreUnavailable, err)
	}
	return teams, nil
}

// --- People ---

type PersonSkillInput struct {
	SkillKey string `json:"skill_key" binding:"required"`
	Level    int    `json:"level" binding:"required"`
}

type CreatePersonRequest struct {
	CompanyID    uint               `json:"company_id" binding:"required"`
	TeamID       uint               `json:"team_id" binding:"required"`
	Name         string             `json:"name" binding:"required"`
	Email        string             `json:"email"`
	Role         string             `json:"role"`
	HoursPerWeek float64            `json:"hours_per_week"`
	Skills       []PersonSkillInput `json:"skills"`
}

func (s *DirectoryService) CreatePerson(req *CreatePersonRequest) (*models.Person, error) {
	if req.Name == "" || req.TeamID == 0 {
		return nil, fmt.Errorf("%w: person name and team are required", ErrValidation)
	}
	team, err := s.GetTeam(req.TeamID)
	if err != nil {
		return nil, err
	}
	if req.CompanyID != 0 && req.CompanyID != team.CompanyID {
		return nil, fmt.Errorf("%w: team %d does not belong to company %d", ErrValidation, req.TeamID, req.CompanyID)
	}

	person := &models.Person{
		CompanyID:    team.CompanyID,
		TeamID:       req.TeamID,
		Name:         req.Name,
		Email:        req.Email,
		Role:         req.Role,
		HoursPerWeek: req.HoursPerWeek,
	}
	if person.Role == "" {
		person.Role = models.PersonRoleDeveloper
	}
	if person.HoursPerWeek <= 0 {
		person.HoursPerWeek = 40
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(person).Error; err != nil {
			return err
		}
		for _, input := range req.Skills {
			link, err := s.skillLink(tx, person.ID, &input)
			if err != nil {
				return err
			}
			if err := tx.Create(link).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrValidation) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: create person: %v", ErrStoreUnavailable, err)
	}
	return person, nil
}

func (s *DirectoryService) GetPerson(id uint) (*models.Person, error) {
	var person models.Person
	if err := s.db.First(&person, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: person %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: load person %d: %v", ErrStoreUnavailable, id, err)
	}
	return &person, nil
}

func (s *DirectoryService) ListPeople(teamID uint) ([]models.Person, error) {
	query := s.db.Order("name ASC")
	if teamID != 0 {
		query = query.Where("team_id = ?", teamID)
	}
	var people []models.Person
	if err := query.Find(&people).Error; err != nil {
		return nil, fmt.Errorf("%w: list people: %v", ErrStoreUnavailable, err)
	}
	return people, nil
}

type UpdatePersonRequest struct {
	Name            *string  `json:"name"`
	Email           *string  `json:"email"`
	Role            *string  `json:"role"`
	HoursPerWeek    *float64 `json:"hours_per_week"`
	CurrentWorkload *float64 `json:"current_workload"`
}

func (s *DirectoryService) UpdatePerson(id uint, req *UpdatePersonRequest) (*models.Person, error) {
	person, err := s.GetPerson(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Role != nil {
		updates["role"] = *req.Role
	}
	if req.HoursPerWeek != nil {
		if *req.HoursPerWeek <= 0 {
			return nil, fmt.Errorf("%w: hours_per_week must be positive", ErrValidation)
		}
		updates["hours_per_week"] = *req.HoursPerWeek
	}
	if req.CurrentWorkload != nil {
		if *req.CurrentWorkload < 0 || *req.CurrentWorkload > 100 {
			return nil, fmt.Errorf("%w: current_workload must be 0-100", ErrValidation)
		}
		updates["current_workload"] = *req.CurrentWorkload
	}
	if len(updates) == 0 {
		return person, nil
	}

	if err := s.db.Model(person).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("%w: update person %d: %v", ErrStoreUnavailable, id, err)
	}
	return s.GetPerson(id)
}

func (s *DirectoryService) DeletePerson(id uint) error {
	result := s.db.Delete(&models.Person{}, id)
	if result.Error != nil {
		return fmt.Errorf("%w: delete person %d: %v", ErrStoreUnavailable, id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: person %d", ErrNotFound, id)
	}
	return nil
}

// --- Skills ---

func (s *DirectoryService) ListSkills() ([]models.Skill, error) {
	var skills []models.Skill
	if err := s.db.Order("category ASC, `key` ASC").Find(&skills).Error; err != nil {
		return nil, fmt.Errorf("%w: list skills: %v", ErrStoreUnavailable, err)
	}
	return skills, nil
}

func (s *DirectoryService) PersonSkills(personID uint) ([]models.PersonSkill, error) {
	var links []models.PersonSkill
	if err := s.db.Where("person_id = ?", personID).Find(&links).Error; err != nil {
		return nil, fmt.Errorf("%w: list person skills: %v", ErrStoreUnavailable, err)
	}
	return links, nil
}

// SetPersonSkill upserts one skill level for a person.
func (s *DirectoryService) SetPersonSkill(personID uint, input *PersonSkillInput) (*models.PersonSkill, error) {
	if _, err := s.GetPerson(personID); err != nil {
		return nil, err
	}

	link, err := s.skillLink(s.db, personID, input)
	if err != nil {
		return nil, err
	}

	var existing models.PersonSkill
	err = s.db.Where("person_id = ? AND skill_id = ?", personID, link.SkillID).First(&existing).Error
	switch {
	case err == nil:
		existing.Level = link.Level
		if err := s.db.Save(&existing).Error; err != nil {
			return nil, fmt.Errorf("%w: update skill level: %v", ErrStoreUnavailable, err)
		}
		return &existing, nil
	case err == gorm.ErrRecordNotFound:
		if err := s.db.Create(link).Error; err != nil {
			return nil, fmt.Errorf("%w: link skill: %v", ErrStoreUnavailable, err)
		}
		return link, nil
	default:
		return nil, fmt.Errorf("%w: lookup skill link: %v", ErrStoreUnavailable, err)
	}
}

// skillLink resolves a skill key to a PersonSkill row, creating catalog
// entries for unknown keys.
func (s *DirectoryService) skillLink(tx *gorm.DB, personID uint, input *PersonSkillInput) (*models.PersonSkill, error) {
	if input.Level < 1 || input.Level > 5 {
		return nil, fmt.Errorf("%w: skill level must be 1-5", ErrValidation)
	}
	if input.SkillKey == "" {
		return nil, fmt.Errorf("%w: skill key is required", ErrValidation)
	}

	var skill models.Skill
	err := tx.Where("`key` = ?", input.SkillKey).First(&skill).Error
	if err == gorm.ErrRecordNotFound {
		skill = models.Skill{Key: input.SkillKey}
		if err := tx.Create(&skill).Error; err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	return &models.PersonSkill{
		PersonID: personID,
		SkillID:  skill.ID,
		SkillKey: skill.Key,
		Level:    input.Level,
	}, nil
}

// --- Assignments ---

type CreateAssignmentRequest struct {
	TaskID       string  `json:"task_id" binding:"required"`
	SprintID     string  `json:"sprint_id"`
	PersonID     uint    `json:"person_id" binding:"required"`
	PlannedHours float64 `json:"planned_hours"`
}

func (s *DirectoryService) CreateAssignment(req *CreateAssignmentRequest) (*models.Assignment, error) {
	if req.TaskID == "" || req.PersonID == 0 {
		return nil, fmt.Errorf("%w: task and person are required", ErrValidation)
	}
	person, err := s.GetPerson(req.PersonID)
	if err != nil {
		return nil, err
	}

	assignment := &models.Assignment{
		TaskID:       req.TaskID,
		SprintID:     req.SprintID,
		PersonID:     person.ID,
		PersonName:   person.Name,
		PlannedHours: req.PlannedHours,
		Status:       models.AssignmentStatusAssigned,
		AssignedAt:   time.Now(),
	}
	if err := s.db.Create(assignment).Error; err != nil {
		return nil, fmt.Errorf("%w: create assignment: %v", ErrStoreUnavailable, err)
	}
	return assignment, nil
}

func (s *DirectoryService) ListAssignments(personID uint) ([]models.Assignment, error) {
	query := s.db.Order("assigned_at DESC")
	if personID != 0 {
		query = query.Where("person_id = ?", personID)
	}
	var assignments []models.Assignment
	if err := query.Find(&assignments).Error; err != nil {
		return nil, fmt.Errorf("%w: list assignments: %v", ErrStoreUnavailable, err)
	}
	return assignments, nil
}
