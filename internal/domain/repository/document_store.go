package repository

import (
	"context"
)

// Document is a stored record addressed by id within a collection
type Document struct {
	ID   string
	Data map[string]interface{}
}

// ChangeOp is the kind of mutation reported by a change feed
type ChangeOp string

const (
	ChangeInsert ChangeOp = "insert"
	ChangeUpdate ChangeOp = "update"
	ChangeDelete ChangeOp = "delete"
	// ChangeResync asks the consumer to re-evaluate everything (e.g. a change stream was invalidated)
	ChangeResync ChangeOp = "resync"
)

// Change is one mutation observed on a collection
type Change struct {
	ID string
	Op ChangeOp
}

// ChangeFeed delivers collection mutations in order. Next blocks until at least one
// change is available, ctx is done, or the feed fails.
type ChangeFeed interface {
	Next(ctx context.Context) ([]Change, error)
	Close() error
}

// DocumentStore defines the document database collaborator.
//
// Implementations return apperror kinds: Conflict when Insert targets an existing id,
// NotFound when Update targets a missing id, StoreUnavailable on connectivity failures
// and Query for malformed queries.
type DocumentStore interface {
	// Get returns nil, nil when the document does not exist
	Get(ctx context.Context, collection, id string) (*Document, error)
	// Insert stores data under id, or under a generated id when id is empty
	Insert(ctx context.Context, collection, id string, data map[string]interface{}) (*Document, error)
	// Update merges fields into the top level of an existing document; a nil value
	// removes that field
	Update(ctx context.Context, collection, id string, fields map[string]interface{}) (*Document, error)
	// Delete is idempotent
	Delete(ctx context.Context, collection, id string) error
	Query(ctx context.Context, collection string, q Query) ([]*Document, error)
	Watch(ctx context.Context, collection string) (ChangeFeed, error)
	Ping(ctx context.Context) error
}
