package handlers

import (
	"strconv"

	"github.com/freelancehub/pmcopilot/backend/internal/services"
	"github.com/freelancehub/pmcopilot/backend/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type DirectoryHandler struct {
	directoryService *services.DirectoryService
}

func NewDirectoryHandler(db *gorm.DB) *DirectoryHandler {
	return &DirectoryHandler{
		directoryService: services.NewDirectoryService(db),
	}
}

// CreateCompany creates a company
// POST /api/companies
func (h *DirectoryHandler) CreateCompany(c *gin.Context) {
	var req services.CreateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	company, err := h.directoryService.CreateCompany(&req)
	if err != nil {
		serviceError(c, err)
		return
	}
	response.Created(c, company)
}

// ListCompanies lists all companies
// GET /api/companies
func (h *DirectoryHandler) ListCompanies(c *gin.Context) {
	companies, err := h.directoryService.ListCompanies()
	if err != nil {
		serviceError(c, err)
		return
	}
	response.Success(c, companies)
}

// CreateTeam creates a team within a company
// POST /api/teams
func (h *DirectoryHandler) CreateTeam(c *gin.Context) {
	var req services.CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	team, err := h.directoryService.CreateTeam(&req)
	if err != nil {
		serviceError(c, err)
		return
	}
	response.Created(c, team)
}

// ListTeams lists teams, optionally filtered by company
// GET /api/teams?company_id=
func (h *DirectoryHandler) ListTeams(c *gin.Context) {
	companyID, _ := strconv.ParseUint(c.Query("company_id"), 10, 32)
	teams, err := h.directoryService.ListTeams(uint(companyID))
	if err != nil {
		serviceError(c, err)
		return
	}
	response.Success(c, teams)
}

// CreatePerson adds a person to a team
// POST /api/people
func (h *DirectoryHandler) CreatePerson(c *gin.Context) {
	var req services.CreatePersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	person, err := h.directoryService.CreatePerson(&req)
	if err != nil {
		serviceError(c, err)
		return
	}
	response.Created(c, person)
}

// ListPeople lists people, optionally filtered by team
// GET /api/people?team_id=
func (h *DirectoryHandler) ListPeople(c *gin.Context) {
	teamID, _ := strconv.ParseUint(c.Query("team_id"), 10, 32)
	people, err := h.directoryService.ListPeople(uint(teamID))
	if err != nil {
		serviceError(c, err)
		return
	}
	response.Success(c, people)
}

// GetPerson returns a person with their skills
// GET /api/people/:id
func (h *DirectoryHandler) GetPerson(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid person id")
		return
	}

	person, err := h.directoryService.GetPerson(uint(id))
	if err != nil {
		serviceError(c, err)
		return
	}

	skills, err := h.directoryService.PersonSkills(person.ID)
	if err != nil {
		serviceError(c, err)
		return
	}

	response.Success(c, gin.H{"person": person, "skills": skills})
}

// UpdatePerson updates a person's profile, hours or workload
// PUT /api/people/:id
func (h *DirectoryHandler) UpdatePerson(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid person id")
		return
	}

	var req services.UpdatePersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	person, err := h.directoryService.UpdatePerson(uint(id), &req)
	if err != nil {
		serviceError(c, err)
		return
	}
	response.Success(c, person)
}

// DeletePerson removes a person
// DELETE /api/people/:id
func (h *DirectoryHandler) DeletePerson(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid person id")
		return
	}

	if err := h.directoryService.DeletePerson(uint(id)); err != nil {
		serviceError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "person deleted"})
}

// SetPersonSkill upserts one skill level for a person
// PUT /api/people/:id/skills
func (h *DirectoryHandler) SetPersonSkill(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid person id")
		return
	}

	var req services.PersonSkillInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	link, err := h.directoryService.SetPersonSkill(uint(id), &req)
	if err != nil {
		serviceError(c, err)
		return
	}
	response.Success(c, link)
}

// ListSkills returns the skill catalog
// GET /api/skills
func (h *DirectoryHandler) ListSkills(c *gin.Context) {
	skills, err := h.directoryService.ListSkills()
	if err != nil {
		serviceError(c, err)
		return
	}
	response.Success(c, skills)
}

// CreateAssignment commits a person to a plan task
// POST /api/assignments
func (h *DirectoryHandler) CreateAssignment(c *gin.Context) {
	var req services.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	assignment, err := h.directoryService.CreateAssignment(&req)
	if err != nil {
		serviceError(c, err)
		return
	}
	response.Created(c, assignment)
}

// ListAssignments lists assignments, optionally filtered by person
// GET /api/assignments?person_id=
func (h *DirectoryHandler) ListAssignments(c *gin.Context) {
	personID, _ := strconv.ParseUint(c.Query("person_id"), 10, 32)
	assignments, err := h.directoryService.ListAssignments(uint(personID))
	if err != nil {
		serviceError(c, err)
		return
	}
	response.Success(c, assignments)
}
