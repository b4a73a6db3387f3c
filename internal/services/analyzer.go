package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/freelancehub/pmcopilot/backend/internal/config"
	"github.com/freelancehub/pmcopilot/backend/internal/models"
	"github.com/freelancehub/pmcopilot/backend/pkg/logger"
	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"
)

// ContractAnalysisRequest carries what the provider needs to analyze an
// uploaded contract document.
type ContractAnalysisRequest struct {
	ContractID uint
	Title      string
	ClientName string
	PDFURL     string
}

// ChangeAnalysisRequest carries a change request for impact analysis.
type ChangeAnalysisRequest struct {
	ChangeRequestID uint
	ContractTitle   string
	RequestText     string
	Type            string
}

// AnalysisProvider is the external analysis collaborator. The lifecycle
// services only ever see its outputs; provider failures surface as Fail
// transitions, never partial analyses.
type AnalysisProvider interface {
	AnalyzeContract(ctx context.Context, req *ContractAnalysisRequest) (*models.ContractAnalysis, error)
	AnalyzeChange(ctx context.Context, req *ChangeAnalysisRequest) (*models.ChangeAnalysis, error)
}

// NewAnalysisProvider builds the provider selected in config. Unknown
// providers fall back to the mock so a fresh install works without keys.
func NewAnalysisProvider(cfg *config.AnalyzerConfig) AnalysisProvider {
	switch cfg.Provider {
	case "openai":
		return &openAIProvider{cfg: cfg}
	case "anthropic":
		return &anthropicProvider{cfg: cfg}
	case "mock", "":
		return &MockProvider{}
	default:
		logger.Warnf("[Analyzer] Unknown provider %q, using mock", cfg.Provider)
		return &MockProvider{}
	}
}

const contractPromptTemplate = `You are a contract analyst for freelance software projects.
Read the contract below and respond with a single JSON object containing:
"deliverables", "milestones", "payment_plan", "risks", "ambiguities",
"timeline" ({"optimistic","realistic","pessimistic"}) and "summary".
Dates use YYYY-MM-DD. Respond with JSON only, no prose.

Contract title: {{title}}
Client: {{client}}
Document: {{document}}`

const changePromptTemplate = `You are a project manager assessing a client change request.
Respond with a single JSON object containing "type", "impact"
({"time","cost","scope"}) and "options" (array of {"title","description","timeline","cost"},
2-4 entries). Respond with JSON only, no prose.

Contract: {{title}}
Request type: {{type}}
Request: {{request}}`

func renderPrompt(template string, vars map[string]string) string {
	out := template
	for k, v := range vars {
		out = strings.ReplaceAll(out, "{{"+k+"}}", v)
	}
	return out
}

// parseContractAnalysis decodes provider output, tolerating markdown fences.
func parseContractAnalysis(raw string) (*models.ContractAnalysis, error) {
	var analysis models.ContractAnalysis
	if err := json.Unmarshal([]byte(stripFences(raw)), &analysis); err != nil {
		return nil, fmt.Errorf("malformed analysis payload: %w", err)
	}
	analysis.AnalyzedAt = time.Now()
	fillEntryIDs(&analysis)
	return &analysis, nil
}

func parseChangeAnalysis(raw string) (*models.ChangeAnalysis, error) {
	var analysis models.ChangeAnalysis
	if err := json.Unmarshal([]byte(stripFences(raw)), &analysis); err != nil {
		return nil, fmt.Errorf("malformed analysis payload: %w", err)
	}
	if len(analysis.Options) == 0 {
		return nil, fmt.Errorf("analysis contains no options")
	}
	analysis.AnalyzedAt = time.Now()
	return &analysis, nil
}

func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// fillEntryIDs assigns ids to embedded value objects the model left blank.
func fillEntryIDs(a *models.ContractAnalysis) {
	for i := range a.Deliverables {
		if a.Deliverables[i].ID == "" {
			a.Deliverables[i].ID = uuid.NewString()
		}
		if a.Deliverables[i].Status == "" {
			a.Deliverables[i].Status = "pending"
		}
	}
	for i := range a.Milestones {
		if a.Milestones[i].ID == "" {
			a.Milestones[i].ID = uuid.NewString()
		}
		if a.Milestones[i].Status == "" {
			a.Milestones[i].Status = "pending"
		}
	}
	for i := range a.PaymentPlan {
		if a.PaymentPlan[i].ID == "" {
			a.PaymentPlan[i].ID = uuid.NewString()
		}
	}
	for i := range a.Risks {
		if a.Risks[i].ID == "" {
			a.Risks[i].ID = uuid.NewString()
		}
		if a.Risks[i].Status == "" {
			a.Risks[i].Status = "open"
		}
	}
	for i := range a.Ambiguities {
		if a.Ambiguities[i].ID == "" {
			a.Ambiguities[i].ID = uuid.NewString()
		}
	}
}

// --- OpenAI provider ---

type openAIProvider struct {
	cfg *config.AnalyzerConfig
}

func (p *openAIProvider) complete(ctx context.Context, prompt string) (string, error) {
	clientConfig := openai.DefaultConfig(p.cfg.APIKey)
	if p.cfg.BaseURL != "" {
		clientConfig.BaseURL = p.cfg.BaseURL
	}
	client := openai.NewClientWithConfig(clientConfig)

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}
	return resp.Choices[0].Message.Content, nil
}

func (p *openAIProvider) AnalyzeContract(ctx context.Context, req *ContractAnalysisRequest) (*models.ContractAnalysis, error) {
	prompt := renderPrompt(contractPromptTemplate, map[string]string{
		"title":    req.Title,
		"client":   req.ClientName,
		"document": req.PDFURL,
	})
	raw, err := p.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return parseContractAnalysis(raw)
}

func (p *openAIProvider) AnalyzeChange(ctx context.Context, req *ChangeAnalysisRequest) (*models.ChangeAnalysis, error) {
	prompt := renderPrompt(changePromptTemplate, map[string]string{
		"title":   req.ContractTitle,
		"type":    req.Type,
		"request": req.RequestText,
	})
	raw, err := p.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return parseChangeAnalysis(raw)
}

// --- Anthropic provider ---

type anthropicProvider struct {
	cfg *config.AnalyzerConfig
}

func (p *anthropicProvider) complete(ctx context.Context, prompt string) (string, error) {
	client := anthropic.NewClient(
		option.WithAPIKey(p.cfg.APIKey),
	)

	model := p.cfg.Model
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}

	resp, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: 4096,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("Anthropic API error: %w", err)
	}

	var content string
	for _, block := range resp.Content {
		if block.Type == "text" {
			content += block.Text
		}
	}
	if content == "" {
		return "", fmt.Errorf("no response from Anthropic")
	}
	return content, nil
}

func (p *anthropicProvider) AnalyzeContract(ctx context.Context, req *ContractAnalysisRequest) (*models.ContractAnalysis, error) {
	prompt := renderPrompt(contractPromptTemplate, map[string]string{
		"title":    req.Title,
		"client":   req.ClientName,
		"document": req.PDFURL,
	})
	raw, err := p.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return parseContractAnalysis(raw)
}

func (p *anthropicProvider) AnalyzeChange(ctx context.Context, req *ChangeAnalysisRequest) (*models.ChangeAnalysis, error) {
	prompt := renderPrompt(changePromptTemplate, map[string]string{
		"title":   req.ContractTitle,
		"type":    req.Type,
		"request": req.RequestText,
	})
	raw, err := p.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return parseChangeAnalysis(raw)
}

// --- Mock provider ---

// MockProvider returns deterministic demo analyses. It keeps the full
// pipeline exercisable in development and tests without any API keys.
type MockProvider struct{}

func (p *MockProvider) AnalyzeContract(_ context.Context, req *ContractAnalysisRequest) (*models.ContractAnalysis, error) {
	now := time.Now()
	milestoneID1 := uuid.NewString()
	milestoneID2 := uuid.NewString()

	return &models.ContractAnalysis{
		Deliverables: []models.Deliverable{
			{
				ID:                 uuid.NewString(),
				Title:              "Design & Prototype",
				Description:        "Wireframes and a clickable prototype for all core screens",
				AcceptanceCriteria: "Client sign-off on prototype",
				Status:             "pending",
			},
			{
				ID:                 uuid.NewString(),
				Title:              "MVP Release",
				Description:        "Production deployment of the agreed feature set",
				AcceptanceCriteria: "All acceptance tests passing in production",
				Status:             "pending",
			},
		},
		Milestones: []models.Milestone{
			{
				ID:      milestoneID1,
				Title:   "Prototype approved",
				DueDate: now.AddDate(0, 0, 14).Format(dueDateLayout),
				Status:  "pending",
			},
			{
				ID:      milestoneID2,
				Title:   "MVP delivered",
				DueDate: now.AddDate(0, 1, 14).Format(dueDateLayout),
				Status:  "pending",
			},
		},
		PaymentPlan: []models.PaymentPlanEntry{
			{
				ID:          uuid.NewString(),
				MilestoneID: milestoneID1,
				Amount:      2500,
				Currency:    "USD",
				DueDate:     now.AddDate(0, 0, 14).Format(dueDateLayout),
			},
			{
				ID:          uuid.NewString(),
				MilestoneID: milestoneID2,
				Amount:      5000,
				Currency:    "USD",
				DueDate:     now.AddDate(0, 1, 14).Format(dueDateLayout),
			},
		},
		Risks: []models.Risk{
			{
				ID:          uuid.NewString(),
				Title:       "Scope creep",
				Description: "Feature list references 'and similar functionality' without a bound",
				Severity:    "medium",
				Probability: 60,
				Impact:      50,
				Mitigation:  "Change requests for anything beyond the listed features",
				Status:      "open",
			},
		},
		Ambiguities: []models.Ambiguity{
			{
				ID:               uuid.NewString(),
				Clause:           "Delivery within a reasonable timeframe",
				Issue:            "No concrete deadline is defined",
				Severity:         "high",
				SuggestedRedline: "Delivery no later than the MVP milestone due date",
			},
		},
		Timeline: models.TimelineEstimate{
			Optimistic:  "6 weeks",
			Realistic:   "8 weeks",
			Pessimistic: "11 weeks",
		},
		Summary:    fmt.Sprintf("Fixed-scope engagement %q for %s with two payment milestones.", req.Title, req.ClientName),
		AnalyzedAt: now,
	}, nil
}

func (p *MockProvider) AnalyzeChange(_ context.Context, req *ChangeAnalysisRequest) (*models.ChangeAnalysis, error) {
	return &models.ChangeAnalysis{
		Type: req.Type,
		Impact: models.ChangeImpact{
			Time:  "1-2 weeks",
			Cost:  "$2,000 - $4,000",
			Scope: "Medium addition - new feature request",
		},
		Options: []models.ChangeOption{
			{
				Title:       "Basic Implementation",
				Description: "Simple version of the requested feature",
				Timeline:    "1 week",
				Cost:        "$2,000",
			},
			{
				Title:       "Full Implementation",
				Description: "Complete feature with all requested functionality",
				Timeline:    "2 weeks",
				Cost:        "$4,000",
			},
			{
				Title:       "Premium Implementation",
				Description: "Advanced version with additional features",
				Timeline:    "3 weeks",
				Cost:        "$6,000",
			},
		},
		AnalyzedAt: time.Now(),
	}, nil
}
