package utils

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"travel-booking-service/internal/domain/repository"
)

// EncodeCursor renders a cursor as URL-safe base64 JSON for API responses
func EncodeCursor(c *repository.Cursor) string {
	if c == nil {
		return ""
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(raw)
}

// DecodeCursor parses a token produced by EncodeCursor. An empty token is no cursor.
func DecodeCursor(token string) (*repository.Cursor, error) {
	if token == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("cursor is not valid base64: %w", err)
	}
	var c repository.Cursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("cursor is not valid JSON: %w", err)
	}
	if c.ID == "" {
		return nil, fmt.Errorf("cursor has no document id")
	}
	return &c, nil
}
