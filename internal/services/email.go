package services

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/freelancehub/pmcopilot/backend/internal/models"
	"github.com/freelancehub/pmcopilot/backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Reminder tones, ordered from softest to hardest.
const (
	ToneGentle  = "gentle"
	ToneNeutral = "neutral"
	ToneFirm    = "firm"
)

// EmailTemplate is a canned client email. Subject and body use
// {{placeholder}} variables substituted at render time.
type EmailTemplate struct {
	ID      string
	Name    string
	Subject string
	Body    string
	Tone    string
	Type    string
}

var emailTemplates = []EmailTemplate{
	{
		ID:      "payment_reminder_gentle",
		Name:    "Gentle Payment Reminder",
		Subject: "Friendly reminder about your upcoming payment",
		Body: `Hi {{clientName}},

I hope you're doing well! I wanted to send a gentle reminder that we have a payment of {{amount}} {{currency}} due on {{dueDate}} for the {{milestone}} milestone.

I understand that schedules can get busy, so please let me know if you need any clarification or if there's anything I can help with.

Thank you for your continued partnership!

Best regards,
{{freelancerName}}`,
		Tone: ToneGentle,
		Type: models.CommTypePaymentReminder,
	},
	{
		ID:      "payment_reminder_neutral",
		Name:    "Neutral Payment Reminder",
		Subject: "Payment Reminder - {{milestone}}",
		Body: `Hi {{clientName}},

This is a reminder that payment of {{amount}} {{currency}} for the {{milestone}} milestone is due on {{dueDate}}.

Please process this payment at your earliest convenience. If you have any questions, feel free to reach out.

Best regards,
{{freelancerName}}`,
		Tone: ToneNeutral,
		Type: models.CommTypePaymentReminder,
	},
	{
		ID:      "payment_reminder_firm",
		Name:    "Firm Payment Reminder",
		Subject: "Overdue Payment - {{milestone}}",
		Body: `Hi {{clientName}},

Payment of {{amount}} {{currency}} for the {{milestone}} milestone was due on {{dueDate}} and is now overdue.

Please process this payment immediately to avoid any delays in project delivery. If there are any issues preventing payment, please contact me directly.

Best regards,
{{freelancerName}}`,
		Tone: ToneFirm,
		Type: models.CommTypePaymentReminder,
	},
	{
		ID:      "change_order_proposal",
		Name:    "Change Order Proposal",
		Subject: "Change Request - {{contractTitle}}",
		Body: `Hi {{clientName}},

Thank you for your change request. I've analyzed your request and prepared the following options:

**Request:** {{requestText}}

**Analysis:** {{analysis}}

**Proposed Options:**
{{options}}

Please review these options and let me know which one you'd like to proceed with, or if you have any questions.

Best regards,
{{freelancerName}}`,
		Tone: ToneNeutral,
		Type: models.CommTypeChangeOrder,
	},
	{
		ID:      "contract_share",
		Name:    "Contract Summary Share",
		Subject: "Project summary - {{contractTitle}}",
		Body: `Hi {{clientName}},

Here is the current summary for {{contractTitle}}:

{{summary}}

You can find the full breakdown of deliverables, milestones and payments attached. Let me know if anything looks off.

Best regards,
{{freelancerName}}`,
		Tone: ToneNeutral,
		Type: models.CommTypeContractShare,
	},
}

// Templates returns all canned templates.
func Templates() []EmailTemplate {
	return emailTemplates
}

// TemplateByID looks up a template by its id.
func TemplateByID(id string) (*EmailTemplate, bool) {
	for i := range emailTemplates {
		if emailTemplates[i].ID == id {
			return &emailTemplates[i], true
		}
	}
	return nil, false
}

// ReminderTemplate selects the payment reminder template for a tone.
// Unknown tones get the neutral one.
func ReminderTemplate(tone string) *EmailTemplate {
	for i := range emailTemplates {
		t := &emailTemplates[i]
		if t.Type == models.CommTypePaymentReminder && t.Tone == tone {
			return t
		}
	}
	t, _ := TemplateByID("payment_reminder_neutral")
	return t
}

// Render substitutes {{key}} placeholders in subject and body.
func (t *EmailTemplate) Render(vars map[string]string) (subject, body string) {
	subject = t.Subject
	body = t.Body
	for k, v := range vars {
		placeholder := "{{" + k + "}}"
		subject = strings.ReplaceAll(subject, placeholder, v)
		body = strings.ReplaceAll(body, placeholder, v)
	}
	return subject, body
}

type EmailService struct {
	db *gorm.DB
}

type EmailConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Username string
	Password string
	From     string
	UseTLS   bool
}

func NewEmailService(db *gorm.DB) *EmailService {
	return &EmailService{db: db}
}

func (s *EmailService) GetConfig() *EmailConfig {
	config := &EmailConfig{}

	var configs []models.SystemConfig
	s.db.Where("`group` = ?", "email").Find(&configs)

	for _, c := range configs {
		switch c.Key {
		case "email_enabled":
			config.Enabled = c.Value == "true"
		case "email_host":
			config.Host = c.Value
		case "email_port":
			if port, err := strconv.Atoi(c.Value); err == nil {
				config.Port = port
			}
		case "email_username":
			config.Username = c.Value
		case "email_password":
			config.Password = c.Value
		case "email_from":
			config.From = c.Value
		case "email_use_tls":
			config.UseTLS = c.Value == "true"
		}
	}

	if config.Port == 0 {
		config.Port = 587
	}

	return config
}

// OutgoingEmail describes a single client email to send and log.
type OutgoingEmail struct {
	UserID          uint
	ContractID      *uint
	ChangeRequestID *uint
	Type            string
	To              string
	Subject         string
	Body            string
	Attachments     []string
}

// Send delivers the email and appends a Communication row. When sending is
// disabled the email is logged with demo delivery, so the history stays
// complete in development. The returned row reflects the final status.
func (s *EmailService) Send(email *OutgoingEmail) (*models.Communication, error) {
	comm := &models.Communication{
		UserID:          email.UserID,
		ContractID:      email.ContractID,
		ChangeRequestID: email.ChangeRequestID,
		Type:            email.Type,
		To:              email.To,
		Subject:         email.Subject,
		Body:            email.Body,
		Attachments:     models.StringList(email.Attachments),
		Status:          models.CommStatusSent,
		SentAt:          time.Now(),
	}

	config := s.GetConfig()
	if !config.Enabled || config.Host == "" {
		// Demo mode: log the email instead of sending.
		comm.EmailID = "demo-" + uuid.NewString()
		logger.Infof("[Email] Demo send to=%s subject=%q", email.To, email.Subject)
	} else {
		comm.EmailID = uuid.NewString()
		if err := s.sendEmail(config, []string{email.To}, email.Subject, email.Body); err != nil {
			comm.Status = models.CommStatusFailed
			if dbErr := s.db.Create(comm).Error; dbErr != nil {
				logger.Errorf("[Email] Could not log failed send: %v", dbErr)
			}
			return comm, err
		}
	}

	if err := s.db.Create(comm).Error; err != nil {
		return nil, fmt.Errorf("%w: log communication: %v", ErrStoreUnavailable, err)
	}
	return comm, nil
}

func (s *EmailService) sendEmail(config *EmailConfig, to []string, subject, body string) error {
	from := config.From
	if from == "" {
		from = config.Username
	}

	headers := make(map[string]string)
	headers["From"] = from
	headers["To"] = strings.Join(to, ",")
	headers["Subject"] = subject
	headers["MIME-Version"] = "1.0"
	headers["Content-Type"] = "text/plain; charset=UTF-8"

	var message strings.Builder
	for k, v := range headers {
		message.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	message.WriteString("\r\n")
	message.WriteString(body)

	addr := fmt.Sprintf("%s:%d", config.Host, config.Port)

	var auth smtp.Auth
	if config.Username != "" && config.Password != "" {
		auth = smtp.PlainAuth("", config.Username, config.Password, config.Host)
	}

	var err error
	if config.UseTLS {
		err = s.sendEmailTLS(config, addr, auth, from, to, message.String())
	} else {
		err = smtp.SendMail(addr, auth, from, to, []byte(message.String()))
	}

	if err != nil {
		logger.Infof("[Email] Failed to send email: %v", err)
		return err
	}

	logger.Infof("[Email] Sent to %v", to)
	return nil
}

func (s *EmailService) sendEmailTLS(config *EmailConfig, addr string, auth smtp.Auth, from string, to []string, message string) error {
	tlsConfig := &tls.Config{
		ServerName: config.Host,
	}

	conn, err := tls.Dial("tcp", addr, tlsConfig)
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, config.Host)
	if err != nil {
		return err
	}
	defer client.Close()

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return err
		}
	}

	if err := client.Mail(from); err != nil {
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			return err
		}
	}

	w, err := client.Data()
	if err != nil {
		return err
	}

	_, err = w.Write([]byte(message))
	if err != nil {
		return err
	}

	return w.Close()
}
