package repository

import (
	"context"
	"time"
)

// PresignedUpload is a time-limited URL the client PUTs a file to
type PresignedUpload struct {
	URL       string            `json:"url"`
	Method    string            `json:"method"`
	Key       string            `json:"key"`
	Headers   map[string]string `json:"headers,omitempty"`
	ExpiresAt time.Time         `json:"expiresAt"`
}

// ObjectStorage issues upload URLs for user documents
type ObjectStorage interface {
	PresignUpload(ctx context.Context, key, contentType string) (*PresignedUpload, error)
}
