package smtp

import (
	"bytes"
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/jperram92/JamesCRM-sub003/internal/config"
	"github.com/jperram92/JamesCRM-sub003/internal/delivery/domain"
	mail "github.com/wneessen/go-mail"
)

// Mailer dispatches messages through an SMTP transport. Transport timeouts
// come from config and surface as ordinary send errors.
type Mailer struct {
	cfg   config.SMTPConfig
	genID *snowflake.Node
}

func NewMailer(cfg config.Config, genID *snowflake.Node) domain.Mailer {
	return &Mailer{cfg: cfg.SMTP, genID: genID}
}

func (m *Mailer) Send(ctx context.Context, msg domain.Message) (string, error) {
	messageID := fmt.Sprintf("<%s@jamescrm>", m.genID.Generate())

	out := mail.NewMsg()
	if err := out.From(msg.From); err != nil {
		return "", fmt.Errorf("invalid sender: %w", err)
	}
	if err := out.To(msg.To); err != nil {
		return "", fmt.Errorf("invalid recipient: %w", err)
	}
	out.Subject(msg.Subject)
	out.SetBodyString(mail.TypeTextPlain, msg.Body)
	out.SetMessageIDWithValue(messageID)
	for _, attachment := range msg.Attachments {
		opts := []mail.FileOption{}
		if attachment.ContentType != "" {
			opts = append(opts, mail.WithFileContentType(mail.ContentType(attachment.ContentType)))
		}
		if err := out.AttachReader(attachment.Name, bytes.NewReader(attachment.Content), opts...); err != nil {
			return "", fmt.Errorf("attach %s: %w", attachment.Name, err)
		}
	}

	client, err := m.newClient()
	if err != nil {
		return "", err
	}
	if err := client.DialAndSendWithContext(ctx, out); err != nil {
		return "", err
	}
	return messageID, nil
}

func (m *Mailer) newClient() (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithTimeout(m.cfg.Timeout),
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}
	return mail.NewClient(m.cfg.Host, opts...)
}
