package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"travel-booking-service/internal/domain/entity"
	"travel-booking-service/internal/domain/repository"
)

type enqueued struct {
	kind   string
	userID string
	email  string
	data   map[string]interface{}
}

// recordingEnqueuer captures notifications instead of storing them
type recordingEnqueuer struct {
	mu    sync.Mutex
	items []enqueued
}

func (r *recordingEnqueuer) Enqueue(ctx context.Context, kind, userID, email string, data map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, enqueued{kind: kind, userID: userID, email: email, data: data})
	return nil
}

func (r *recordingEnqueuer) kinds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, item.kind)
	}
	return out
}

// fakeNotifier records sent messages and fails while failNext > 0
type fakeNotifier struct {
	mu       sync.Mutex
	sent     []repository.OutboundMessage
	failNext int
}

func (n *fakeNotifier) Send(ctx context.Context, msg repository.OutboundMessage) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failNext > 0 {
		n.failNext--
		return "", errors.New("smtp unavailable")
	}
	n.sent = append(n.sent, msg)
	return fmt.Sprintf("msg-%d", len(n.sent)), nil
}

// staticRouter matches templates in registration order
type staticRouter struct {
	templates []NotificationTemplate
}

func (r *staticRouter) Register(t NotificationTemplate) {
	r.templates = append(r.templates, t)
}

func (r *staticRouter) GetTemplate(kind string) NotificationTemplate {
	for _, t := range r.templates {
		if t.CanRender(kind) {
			return t
		}
	}
	return nil
}

// plainTemplate renders every kind with a fixed prefix
type plainTemplate struct {
	kinds map[string]bool
	err   error
}

func (p *plainTemplate) CanRender(kind string) bool {
	return p.kinds[kind]
}

func (p *plainTemplate) Render(n *entity.Notification) (repository.OutboundMessage, error) {
	if p.err != nil {
		return repository.OutboundMessage{}, p.err
	}
	return repository.OutboundMessage{To: n.Recipient, Subject: "[" + n.Kind + "]", TextBody: fmt.Sprint(n.Data)}, nil
}

type fakeStorage struct {
	keys []string
}

func (s *fakeStorage) PresignUpload(ctx context.Context, key, contentType string) (*repository.PresignedUpload, error) {
	s.keys = append(s.keys, key)
	return &repository.PresignedUpload{
		URL:       "https://bucket.example.com/" + key + "?signature=abc",
		Method:    "PUT",
		Key:       key,
		Headers:   map[string]string{"Content-Type": contentType},
		ExpiresAt: entity.Now().Add(15 * time.Minute),
	}, nil
}

type fakeAirlines map[string]*entity.Airline

func (f fakeAirlines) GetByCode(ctx context.Context, code string) (*entity.Airline, error) {
	return f[strings.ToUpper(code)], nil
}

func (f fakeAirlines) Upsert(ctx context.Context, airline *entity.Airline) error {
	f[airline.Code] = airline
	return nil
}

type fakeAirports map[string]*entity.Airport

func (f fakeAirports) GetByCode(ctx context.Context, code string) (*entity.Airport, error) {
	return f[strings.ToUpper(code)], nil
}

func (f fakeAirports) Upsert(ctx context.Context, airport *entity.Airport) error {
	f[airport.Code] = airport
	return nil
}
