package services

import (
	"context"
	"strings"
	"testing"

	"github.com/freelancehub/pmcopilot/backend/internal/config"
	"github.com/freelancehub/pmcopilot/backend/internal/models"
)

func TestNewAnalysisProvider(t *testing.T) {
	tests := []struct {
		provider string
		wantMock bool
	}{
		{"mock", true},
		{"", true},
		{"something-else", true},
		{"openai", false},
		{"anthropic", false},
	}
	for _, tt := range tests {
		p := NewAnalysisProvider(&config.AnalyzerConfig{Provider: tt.provider})
		_, isMock := p.(*MockProvider)
		if isMock != tt.wantMock {
			t.Errorf("provider %q: mock = %v, expected %v", tt.provider, isMock, tt.wantMock)
		}
	}
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{"  {\"a\":1}  ", `{"a":1}`},
	}
	for _, tt := range tests {
		if got := stripFences(tt.in); got != tt.want {
			t.Errorf("stripFences(%q) = %q, expected %q", tt.in, got, tt.want)
		}
	}
}

func TestRenderPrompt(t *testing.T) {
	out := renderPrompt("Contract: {{title}} for {{client}}", map[string]string{
		"title":  "Website Redesign",
		"client": "Acme Corp",
	})
	want := "Contract: Website Redesign for Acme Corp"
	if out != want {
		t.Errorf("renderPrompt = %q, expected %q", out, want)
	}
}

func TestParseContractAnalysis_FencedJSON(t *testing.T) {
	raw := "```json\n" + `{
		"deliverables": [{"title": "MVP"}],
		"milestones": [{"title": "Launch", "due_date": "2024-06-01"}],
		"payment_plan": [{"amount": 5000, "currency": "USD", "due_date": "2024-06-01"}],
		"risks": [{"title": "Scope creep"}],
		"timeline": {"optimistic": "6 weeks", "realistic": "8 weeks", "pessimistic": "11 weeks"},
		"summary": "ok"
	}` + "\n```"

	analysis, err := parseContractAnalysis(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if analysis.AnalyzedAt.IsZero() {
		t.Error("AnalyzedAt not set")
	}
	if analysis.Deliverables[0].ID == "" {
		t.Error("deliverable id not filled")
	}
	if analysis.Deliverables[0].Status != "pending" {
		t.Errorf("deliverable status = %q, expected pending", analysis.Deliverables[0].Status)
	}
	if analysis.Milestones[0].ID == "" || analysis.Milestones[0].Status != "pending" {
		t.Errorf("milestone defaults not filled: %+v", analysis.Milestones[0])
	}
	if analysis.PaymentPlan[0].ID == "" {
		t.Error("payment entry id not filled")
	}
	if analysis.Risks[0].Status != "open" {
		t.Errorf("risk status = %q, expected open", analysis.Risks[0].Status)
	}
}

func TestParseContractAnalysis_Malformed(t *testing.T) {
	if _, err := parseContractAnalysis("not json"); err == nil {
		t.Error("expected error for malformed payload")
	}
}

func TestParseChangeAnalysis_RequiresOptions(t *testing.T) {
	if _, err := parseChangeAnalysis(`{"type": "feature-request", "options": []}`); err == nil {
		t.Error("expected error for empty options")
	}

	analysis, err := parseChangeAnalysis(`{
		"type": "feature-request",
		"impact": {"time": "1 week", "cost": "$1,000", "scope": "Small"},
		"options": [{"title": "Basic", "timeline": "1 week", "cost": "$1,000"}]
	}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(analysis.Options) != 1 {
		t.Errorf("got %d options, expected 1", len(analysis.Options))
	}
	if analysis.AnalyzedAt.IsZero() {
		t.Error("AnalyzedAt not set")
	}
}

func TestMockProvider_AnalyzeContract(t *testing.T) {
	analysis, err := (&MockProvider{}).AnalyzeContract(context.Background(), &ContractAnalysisRequest{
		Title:      "Website Redesign",
		ClientName: "Acme Corp",
	})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	if len(analysis.Deliverables) != 2 {
		t.Errorf("got %d deliverables, expected 2", len(analysis.Deliverables))
	}
	if len(analysis.Milestones) != 2 {
		t.Errorf("got %d milestones, expected 2", len(analysis.Milestones))
	}
	if len(analysis.PaymentPlan) != 2 {
		t.Fatalf("got %d payment entries, expected 2", len(analysis.PaymentPlan))
	}

	// Every payment entry is tied to a real milestone.
	milestones := map[string]bool{}
	for _, m := range analysis.Milestones {
		milestones[m.ID] = true
	}
	for _, p := range analysis.PaymentPlan {
		if !milestones[p.MilestoneID] {
			t.Errorf("payment entry %s references unknown milestone %s", p.ID, p.MilestoneID)
		}
		if p.Currency != "USD" {
			t.Errorf("currency = %q, expected USD", p.Currency)
		}
	}

	if !strings.Contains(analysis.Summary, "Acme Corp") {
		t.Errorf("summary does not mention client: %q", analysis.Summary)
	}
	if analysis.Timeline.Realistic != "8 weeks" {
		t.Errorf("realistic timeline = %q, expected 8 weeks", analysis.Timeline.Realistic)
	}
}

func TestMockProvider_AnalyzeChange(t *testing.T) {
	analysis, err := (&MockProvider{}).AnalyzeChange(context.Background(), &ChangeAnalysisRequest{
		Type: models.ChangeTypeFeature,
	})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	if analysis.Type != models.ChangeTypeFeature {
		t.Errorf("type = %q, expected %q", analysis.Type, models.ChangeTypeFeature)
	}
	if len(analysis.Options) != 3 {
		t.Fatalf("got %d options, expected 3", len(analysis.Options))
	}
	if analysis.Options[0].Cost != "$2,000" || analysis.Options[2].Cost != "$6,000" {
		t.Errorf("option costs = %q / %q", analysis.Options[0].Cost, analysis.Options[2].Cost)
	}
	if analysis.Impact.Time != "1-2 weeks" {
		t.Errorf("impact time = %q", analysis.Impact.Time)
	}
}
