package delivery

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/google/uuid"
	"github.com/resend/resend-go/v2"

	"github.com/chirpy-dev/chirpy-backend/internal/mutationevent"
	"github.com/chirpy-dev/chirpy-backend/pkg/config"
)

const ChannelEmail = "email"

type emailSender interface {
	Send(params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

type emailLookup interface {
	EmailByID(ctx context.Context, id uuid.UUID) (string, error)
}

type EmailParams struct {
	Config    config.EmailConfig
	AppOrigin string
	Users     emailLookup
	// Sender overrides the Resend client built from Config.
	Sender emailSender
}

// EmailChannel mails the recipient through Resend.
type EmailChannel struct {
	from      string
	appOrigin string
	users     emailLookup
	sender    emailSender
}

func NewEmailChannel(params EmailParams) (*EmailChannel, error) {
	if params.Users == nil {
		return nil, fmt.Errorf("email lookup required")
	}
	sender := params.Sender
	if sender == nil {
		if !params.Config.Enabled() {
			return nil, fmt.Errorf("resend api key is required")
		}
		sender = resend.NewClient(params.Config.ResendAPIKey).Emails
	}
	return &EmailChannel{
		from:      params.Config.From,
		appOrigin: params.AppOrigin,
		users:     params.Users,
		sender:    sender,
	}, nil
}

func (c *EmailChannel) Name() string { return ChannelEmail }

func (c *EmailChannel) Send(ctx context.Context, payload mutationevent.NotificationPayload) error {
	to, err := c.users.EmailByID(ctx, payload.RecipientID)
	if err != nil {
		return fmt.Errorf("lookup recipient email: %w", err)
	}
	if strings.TrimSpace(to) == "" {
		return ErrSkipped
	}

	msg := BuildMessage(payload, c.appOrigin)
	resp, err := c.sender.Send(&resend.SendEmailRequest{
		From:    c.from,
		To:      []string{to},
		Subject: msg.Title,
		Text:    plainBody(msg),
		Html:    htmlBody(msg),
	})
	if err != nil {
		return fmt.Errorf("resend: %w", err)
	}
	if resp == nil || resp.Id == "" {
		return fmt.Errorf("resend: empty message id")
	}
	return nil
}

func plainBody(msg Message) string {
	var b strings.Builder
	b.WriteString(msg.Title)
	if msg.Body != "" {
		b.WriteString("\n\n")
		b.WriteString(msg.Body)
	}
	if msg.URL != "" {
		b.WriteString("\n\n")
		b.WriteString(msg.URL)
	}
	return b.String()
}

func htmlBody(msg Message) string {
	var b strings.Builder
	b.WriteString("<p><strong>")
	b.WriteString(html.EscapeString(msg.Title))
	b.WriteString("</strong></p>")
	if msg.Body != "" {
		b.WriteString("<blockquote>")
		b.WriteString(html.EscapeString(msg.Body))
		b.WriteString("</blockquote>")
	}
	if msg.URL != "" {
		fmt.Fprintf(&b, `<p><a href="%s">View</a></p>`, html.EscapeString(msg.URL))
	}
	return b.String()
}
