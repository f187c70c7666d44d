package templates

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"travel-booking-service/internal/domain/entity"
	"travel-booking-service/internal/domain/repository"
)

var funcs = map[string]interface{}{
	"money": money,
	"title": func(s interface{}) string {
		words := strings.Fields(strings.ReplaceAll(fmt.Sprint(s), "_", " "))
		for i, w := range words {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
		return strings.Join(words, " ")
	},
}

// money renders an amount with two decimals
func money(v interface{}) string {
	switch n := v.(type) {
	case float64:
		return fmt.Sprintf("%.2f", n)
	case int:
		return fmt.Sprintf("%d.00", n)
	}
	return fmt.Sprint(v)
}

// layout is one set of subject, plain text and HTML templates
type layout struct {
	subject *texttemplate.Template
	text    *texttemplate.Template
	html    *htmltemplate.Template
}

func newLayout(name, subject, text, html string) layout {
	return layout{
		subject: texttemplate.Must(texttemplate.New(name + "-subject").Funcs(funcs).Parse(subject)),
		text:    texttemplate.Must(texttemplate.New(name + "-text").Funcs(funcs).Parse(text)),
		html:    htmltemplate.Must(htmltemplate.New(name + "-html").Funcs(funcs).Parse(html)),
	}
}

func (l layout) render(n *entity.Notification) (repository.OutboundMessage, error) {
	data := make(map[string]interface{}, len(n.Data)+1)
	for k, v := range n.Data {
		data[k] = v
	}
	data["recipient"] = n.Recipient

	var subject, text, html bytes.Buffer
	if err := l.subject.Execute(&subject, data); err != nil {
		return repository.OutboundMessage{}, fmt.Errorf("failed to render subject: %w", err)
	}
	if err := l.text.Execute(&text, data); err != nil {
		return repository.OutboundMessage{}, fmt.Errorf("failed to render text body: %w", err)
	}
	if err := l.html.Execute(&html, data); err != nil {
		return repository.OutboundMessage{}, fmt.Errorf("failed to render html body: %w", err)
	}

	return repository.OutboundMessage{
		To:       n.Recipient,
		Subject:  strings.TrimSpace(subject.String()),
		TextBody: text.String(),
		HTMLBody: html.String(),
	}, nil
}
