package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"travel-booking-service/pkg/apperror"
)

// Claims is the payload of tokens issued by this service
type Claims struct {
	Email string `json:"email"`
	Admin bool   `json:"admin,omitempty"`
	jwt.RegisteredClaims
}

// JWTVerifier validates HS256 tokens signed with a shared secret
type JWTVerifier struct {
	secret []byte
	issuer string
}

// NewJWTVerifier creates a verifier; an empty issuer accepts any issuer
func NewJWTVerifier(secret, issuer string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret), issuer: issuer}
}

// Verify parses and validates token
func (v *JWTVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return nil, apperror.Unauthorized("invalid or expired token")
	}
	if claims.Subject == "" {
		return nil, apperror.Unauthorized("token has no subject")
	}

	return &Identity{
		UserID: claims.Subject,
		Email:  claims.Email,
		Admin:  claims.Admin,
	}, nil
}

// Issue signs a token for id; used by the dev token helper and tests
func (v *JWTVerifier) Issue(id Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: id.Email,
		Admin: id.Admin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
