package oauth

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"

	"travel-booking-service/pkg/logger"
)

// GmailOAuth handles OAuth authentication with Gmail
type GmailOAuth struct {
	config       *oauth2.Config
	refreshToken string
	logger       logger.Logger
}

// NewGmailOAuth creates a Gmail OAuth handler allowed to send mail.
// redirectURL is only needed when exchanging authorization codes.
func NewGmailOAuth(clientID, clientSecret, refreshToken, redirectURL string, logger logger.Logger) *GmailOAuth {
	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  redirectURL,
		Scopes:       []string{gmail.GmailSendScope},
	}

	return &GmailOAuth{
		config:       config,
		refreshToken: refreshToken,
		logger:       logger,
	}
}

// GetTokenSource returns a token source that can be used with Gmail API
func (o *GmailOAuth) GetTokenSource(ctx context.Context) oauth2.TokenSource {
	token := &oauth2.Token{
		RefreshToken: o.refreshToken,
		Expiry:       time.Now(), // Force refresh
	}

	return o.config.TokenSource(ctx, token)
}

// GenerateAuthURL generates a URL for the user to authorize the application
func (o *GmailOAuth) GenerateAuthURL(state string) string {
	return o.config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// ExchangeCode exchanges an authorization code for a token
func (o *GmailOAuth) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := o.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}
	if token.RefreshToken == "" {
		o.logger.Warn("Token exchange returned no refresh token; revoke access and retry")
	}
	return token, nil
}
