package usecase

import (
	"context"

	"travel-booking-service/internal/domain/entity"
	"travel-booking-service/pkg/apperror"
)

// getOrNotFound loads id and turns a missing document into a NotFound error
func getOrNotFound[T entity.Model](ctx context.Context, docs *DocumentService[T], id, what string) (T, error) {
	model, ok, err := docs.FindByID(ctx, id)
	if err != nil {
		return model, err
	}
	if !ok {
		return model, apperror.NotFound("%s %s not found", what, id)
	}
	return model, nil
}

// patch applies partial to the stored model after validating the merged result.
// check, when set, runs against the merged model before anything is written.
func patch[T entity.Model](ctx context.Context, docs *DocumentService[T], id, what string, partial entity.Record, check func(current, merged T) error) (T, error) {
	var zero T
	current, err := getOrNotFound(ctx, docs, id, what)
	if err != nil {
		return zero, err
	}
	merged, err := entity.WithUpdates(current, partial, docs.codec.FromRecord)
	if err != nil {
		return zero, apperror.Validation([]apperror.FieldViolation{{Field: "body", Message: err.Error(), Code: "type"}})
	}
	if err := merged.Validate(); err != nil {
		return zero, err
	}
	if check != nil {
		if err := check(current, merged); err != nil {
			return zero, err
		}
	}

	// keys the merged model no longer carries are sent as nil, which unsets them
	rec := merged.ToRecord()
	changes := make(entity.Record, len(partial))
	for k := range partial {
		changes[k] = rec[k]
	}
	return docs.Update(ctx, id, changes)
}

// canonicalTimestamp rewrites a parseable timestamp in the stored form and leaves
// anything else for validation to reject
func canonicalTimestamp(s string) string {
	if _, err := entity.ParseTimestamp(s); err != nil {
		return s
	}
	return entity.NormalizeTimestamp(s)
}
