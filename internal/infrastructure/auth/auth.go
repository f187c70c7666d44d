package auth

import (
	"context"
	"strings"
)

// Identity is the authenticated caller
type Identity struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Admin  bool   `json:"admin"`
}

// Verifier turns a bearer token into an identity. Invalid or expired tokens are
// apperror Unauthorized errors.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// AdminEmails grants the admin role to a fixed set of addresses
type AdminEmails map[string]struct{}

// NewAdminEmails builds the set case-insensitively, ignoring blanks
func NewAdminEmails(emails []string) AdminEmails {
	set := make(AdminEmails, len(emails))
	for _, e := range emails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			set[e] = struct{}{}
		}
	}
	return set
}

func (a AdminEmails) Contains(email string) bool {
	_, ok := a[strings.ToLower(strings.TrimSpace(email))]
	return ok
}

// withAdmins wraps a verifier and marks configured admin emails
type withAdmins struct {
	next   Verifier
	admins AdminEmails
}

// WithAdminEmails elevates identities whose email is in admins
func WithAdminEmails(next Verifier, admins AdminEmails) Verifier {
	if len(admins) == 0 {
		return next
	}
	return &withAdmins{next: next, admins: admins}
}

func (w *withAdmins) Verify(ctx context.Context, token string) (*Identity, error) {
	id, err := w.next.Verify(ctx, token)
	if err != nil {
		return nil, err
	}
	if w.admins.Contains(id.Email) {
		id.Admin = true
	}
	return id, nil
}
