package gmail

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"mime/multipart"
	"net/textproto"
	"strings"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"travel-booking-service/internal/domain/repository"
	"travel-booking-service/pkg/logger"
)

// GmailNotifier delivers notifications as email through the Gmail API
type GmailNotifier struct {
	send   func(ctx context.Context, msg *gmail.Message) (*gmail.Message, error)
	sender string
	logger logger.Logger
}

// NewGmailNotifier creates a notifier sending as sender with the given OAuth token source
func NewGmailNotifier(ctx context.Context, tokenSource oauth2.TokenSource, sender string, logger logger.Logger) (*GmailNotifier, error) {
	service, err := gmail.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %w", err)
	}

	return &GmailNotifier{
		send: func(ctx context.Context, msg *gmail.Message) (*gmail.Message, error) {
			return service.Users.Messages.Send("me", msg).Context(ctx).Do()
		},
		sender: sender,
		logger: logger,
	}, nil
}

// Send implements repository.Notifier
func (n *GmailNotifier) Send(ctx context.Context, msg repository.OutboundMessage) (string, error) {
	raw, err := buildMIME(n.sender, msg)
	if err != nil {
		return "", err
	}

	sent, err := n.send(ctx, &gmail.Message{Raw: base64.URLEncoding.EncodeToString(raw)})
	if err != nil {
		return "", fmt.Errorf("failed to send email to %s: %w", msg.To, err)
	}

	n.logger.Info("Email sent", "to", msg.To, "subject", msg.Subject, "messageID", sent.Id)
	return sent.Id, nil
}

// buildMIME renders msg as an RFC 5322 message; with an HTML body it becomes
// multipart/alternative with the text part first
func buildMIME(from string, msg repository.OutboundMessage) ([]byte, error) {
	if strings.ContainsAny(msg.To, "\r\n") || strings.ContainsAny(from, "\r\n") {
		return nil, fmt.Errorf("invalid address header")
	}

	var buf bytes.Buffer
	if from != "" {
		fmt.Fprintf(&buf, "From: %s\r\n", from)
	}
	fmt.Fprintf(&buf, "To: %s\r\n", msg.To)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	buf.WriteString("MIME-Version: 1.0\r\n")

	if msg.HTMLBody == "" {
		buf.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
		buf.WriteString(msg.TextBody)
		return buf.Bytes(), nil
	}

	mw := multipart.NewWriter(&buf)
	fmt.Fprintf(&buf, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", mw.Boundary())
	for _, part := range []struct{ contentType, body string }{
		{"text/plain; charset=\"UTF-8\"", msg.TextBody},
		{"text/html; charset=\"UTF-8\"", msg.HTMLBody},
	} {
		w, err := mw.CreatePart(textproto.MIMEHeader{"Content-Type": {part.contentType}})
		if err != nil {
			return nil, err
		}
		if _, err := w.Write([]byte(part.body)); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
