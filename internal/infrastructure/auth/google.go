package auth

import (
	"context"

	"google.golang.org/api/idtoken"

	"travel-booking-service/pkg/apperror"
)

// GoogleVerifier validates Google Sign-In ID tokens issued for clientID
type GoogleVerifier struct {
	clientID string
	validate func(ctx context.Context, token, audience string) (*idtoken.Payload, error)
}

func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{clientID: clientID, validate: idtoken.Validate}
}

// Verify checks the token signature, audience and expiry against Google's keys
func (v *GoogleVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	payload, err := v.validate(ctx, token, v.clientID)
	if err != nil {
		return nil, apperror.Unauthorized("invalid Google ID token")
	}

	email, _ := payload.Claims["email"].(string)
	if verified, ok := payload.Claims["email_verified"].(bool); ok && !verified {
		return nil, apperror.Unauthorized("email address is not verified")
	}

	return &Identity{UserID: payload.Subject, Email: email}, nil
}
