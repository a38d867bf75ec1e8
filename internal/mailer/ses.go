package mailer

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"mime/multipart"
	"mime/quotedprintable"
	"net/textproto"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// SESMailer sends raw MIME messages through Amazon SES.
type SESMailer struct {
	client *ses.Client
	from   string
	logger *slog.Logger
}

func NewSESMailer(ctx context.Context, fromName, fromAddress string, logger *slog.Logger) (*SESMailer, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	return &SESMailer{
		client: ses.NewFromConfig(cfg),
		from:   fmt.Sprintf("%s <%s>", fromName, fromAddress),
		logger: logger,
	}, nil
}

func (m *SESMailer) Send(ctx context.Context, msg Message) error {
	raw, err := buildRawMessage(m.from, msg)
	if err != nil {
		return fmt.Errorf("failed to build email: %w", err)
	}

	out, err := m.client.SendRawEmail(ctx, &ses.SendRawEmailInput{
		RawMessage: &types.RawMessage{Data: raw.Bytes()},
	})
	if err != nil {
		return fmt.Errorf("ses send failed: %w", err)
	}

	m.logger.Info("email sent", "to", msg.To, "subject", msg.Subject, "message_id", *out.MessageId)
	return nil
}

// buildRawMessage assembles a multipart/alternative MIME message with plain
// text and HTML parts.
func buildRawMessage(from string, msg Message) (*bytes.Buffer, error) {
	var raw bytes.Buffer
	writer := multipart.NewWriter(&raw)
	boundary := writer.Boundary()

	headers := fmt.Sprintf("From: %s\r\n", from)
	headers += fmt.Sprintf("To: %s\r\n", msg.To)
	headers += fmt.Sprintf("Subject: %s\r\n", msg.Subject)
	headers += "MIME-Version: 1.0\r\n"
	headers += fmt.Sprintf("Content-Type: multipart/alternative; boundary=\"%s\"\r\n", boundary)
	headers += "\r\n"
	raw.WriteString(headers)

	if msg.Text != "" {
		part, err := writer.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {"text/plain; charset=UTF-8"},
			"Content-Transfer-Encoding": {"quoted-printable"},
		})
		if err != nil {
			return nil, err
		}
		qp := quotedprintable.NewWriter(part)
		if _, err := qp.Write([]byte(msg.Text)); err != nil {
			return nil, err
		}
		qp.Close()
	}

	if msg.HTML != "" {
		part, err := writer.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {"text/html; charset=UTF-8"},
			"Content-Transfer-Encoding": {"quoted-printable"},
		})
		if err != nil {
			return nil, err
		}
		qp := quotedprintable.NewWriter(part)
		if _, err := qp.Write([]byte(msg.HTML)); err != nil {
			return nil, err
		}
		qp.Close()
	}

	if err := writer.Close(); err != nil {
		return nil, err
	}
	return &raw, nil
}
