package services

import (
	"strings"
	"testing"

	"github.com/freelancehub/pmcopilot/backend/internal/models"
)

func TestTemplates_CoverAllTones(t *testing.T) {
	byTone := map[string]bool{}
	for _, tpl := range Templates() {
		if tpl.Type == models.CommTypePaymentReminder {
			byTone[tpl.Tone] = true
		}
	}
	for _, tone := range []string{ToneGentle, ToneNeutral, ToneFirm} {
		if !byTone[tone] {
			t.Errorf("no payment reminder template for tone %q", tone)
		}
	}
}

func TestTemplateByID(t *testing.T) {
	tpl, ok := TemplateByID("change_order_proposal")
	if !ok {
		t.Fatal("change_order_proposal template missing")
	}
	if tpl.Type != models.CommTypeChangeOrder {
		t.Errorf("type = %q, expected %q", tpl.Type, models.CommTypeChangeOrder)
	}

	if _, ok := TemplateByID("nonexistent"); ok {
		t.Error("unexpected template for unknown id")
	}
}

func TestReminderTemplate_FallsBackToNeutral(t *testing.T) {
	if tpl := ReminderTemplate(ToneFirm); tpl.Tone != ToneFirm {
		t.Errorf("tone = %q, expected firm", tpl.Tone)
	}
	if tpl := ReminderTemplate("shouty"); tpl.Tone != ToneNeutral {
		t.Errorf("unknown tone fell back to %q, expected neutral", tpl.Tone)
	}
}

func TestEmailTemplate_Render(t *testing.T) {
	tpl, _ := TemplateByID("payment_reminder_neutral")
	subject, body := tpl.Render(map[string]string{
		"clientName":     "Jane",
		"amount":         "5000.00",
		"currency":       "USD",
		"dueDate":        "2024-02-15",
		"milestone":      "Final delivery",
		"freelancerName": "Alex",
	})

	if subject != "Payment Reminder - Final delivery" {
		t.Errorf("subject = %q", subject)
	}
	if !strings.Contains(body, "Hi Jane,") {
		t.Errorf("body missing greeting: %q", body)
	}
	if !strings.Contains(body, "5000.00 USD") {
		t.Errorf("body missing amount: %q", body)
	}
	if !strings.Contains(body, "due on 2024-02-15") {
		t.Errorf("body missing due date: %q", body)
	}
	if strings.Contains(body, "{{") {
		t.Errorf("unsubstituted placeholder left in body: %q", body)
	}
}

func TestEmailService_Send_DemoMode(t *testing.T) {
	db := newTestDB(t)
	svc := NewEmailService(db)

	contractID := uint(3)
	comm, err := svc.Send(&OutgoingEmail{
		UserID:     1,
		ContractID: &contractID,
		Type:       models.CommTypePaymentReminder,
		To:         "billing@acme.example",
		Subject:    "Payment Reminder",
		Body:       "Please pay.",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if comm.Status != models.CommStatusSent {
		t.Errorf("status = %q, expected sent", comm.Status)
	}
	if comm.EmailID == "" {
		t.Error("EmailID not assigned in demo mode")
	}
	if comm.SentAt.IsZero() {
		t.Error("SentAt not set")
	}

	// The send is logged as a communication row.
	var count int64
	db.Model(&models.Communication{}).Count(&count)
	if count != 1 {
		t.Errorf("got %d communication rows, expected 1", count)
	}
}
