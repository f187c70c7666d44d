package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"travel-booking-service/internal/domain/repository"
	"travel-booking-service/pkg/apperror"
)

// ErrFeedClosed is returned by Next once a change feed has been closed
var ErrFeedClosed = errors.New("change feed closed")

// errStoreDown is the cause reported while the memory store is marked unavailable
var errStoreDown = errors.New("memory store is unavailable")

// MemoryDocumentStore implements the DocumentStore interface in process memory.
// Documents are stored as JSON-normalized copies so callers never share state with it.
type MemoryDocumentStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]map[string]interface{}
	watchers    map[string]map[*memoryFeed]struct{}
	unavailable bool
}

// NewMemoryDocumentStore creates an empty in-memory document store
func NewMemoryDocumentStore() *MemoryDocumentStore {
	return &MemoryDocumentStore{
		collections: make(map[string]map[string]map[string]interface{}),
		watchers:    make(map[string]map[*memoryFeed]struct{}),
	}
}

// SetUnavailable makes every operation fail with a StoreUnavailable error until reset
func (s *MemoryDocumentStore) SetUnavailable(down bool) {
	s.mu.Lock()
	s.unavailable = down
	s.mu.Unlock()
}

func (s *MemoryDocumentStore) checkAvailable(op string) error {
	if s.unavailable {
		return apperror.StoreUnavailable(errStoreDown, "%s failed", op)
	}
	return nil
}

// Get returns a copy of the document, or nil when it does not exist
func (s *MemoryDocumentStore) Get(ctx context.Context, collection, id string) (*repository.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkAvailable("get"); err != nil {
		return nil, err
	}

	data, ok := s.collections[collection][id]
	if !ok {
		return nil, nil
	}
	return &repository.Document{ID: id, Data: deepCopy(data)}, nil
}

// Insert stores a new document; an empty id is replaced with a generated one
func (s *MemoryDocumentStore) Insert(ctx context.Context, collection, id string, data map[string]interface{}) (*repository.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	stored, err := normalizeDocument(data)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkAvailable("insert"); err != nil {
		return nil, err
	}

	if id == "" {
		id = uuid.NewString()
	}
	docs := s.collection(collection)
	if _, exists := docs[id]; exists {
		return nil, apperror.Conflict("document %s/%s already exists", collection, id)
	}
	docs[id] = stored
	s.notify(collection, repository.Change{ID: id, Op: repository.ChangeInsert})

	return &repository.Document{ID: id, Data: deepCopy(stored)}, nil
}

// Update merges fields into the top level of an existing document
func (s *MemoryDocumentStore) Update(ctx context.Context, collection, id string, fields map[string]interface{}) (*repository.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	patch, err := normalizeDocument(fields)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkAvailable("update"); err != nil {
		return nil, err
	}

	current, ok := s.collections[collection][id]
	if !ok {
		return nil, apperror.NotFound("document %s/%s not found", collection, id)
	}
	next := make(map[string]interface{}, len(current)+len(patch))
	for k, v := range current {
		next[k] = v
	}
	for k, v := range patch {
		if v == nil {
			delete(next, k)
			continue
		}
		next[k] = v
	}
	s.collections[collection][id] = next
	s.notify(collection, repository.Change{ID: id, Op: repository.ChangeUpdate})

	return &repository.Document{ID: id, Data: deepCopy(next)}, nil
}

// Delete removes a document; deleting a missing document is not an error
func (s *MemoryDocumentStore) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkAvailable("delete"); err != nil {
		return err
	}

	if _, ok := s.collections[collection][id]; !ok {
		return nil
	}
	delete(s.collections[collection], id)
	s.notify(collection, repository.Change{ID: id, Op: repository.ChangeDelete})
	return nil
}

// Query filters, orders and pages a collection. StartAfter must line up with the
// normalized ordering of q (see repository.Normalize).
func (s *MemoryDocumentStore) Query(ctx context.Context, collection string, q repository.Query) ([]*repository.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := repository.ValidateQuery(q); err != nil {
		return nil, err
	}
	orders := repository.EffectiveOrder(q)
	var tuple []interface{}
	if q.StartAfter != nil {
		tuple = repository.CursorTuple(orders, q.StartAfter)
		if len(tuple) != len(orders) {
			return nil, apperror.Query("cursor does not line up with the query ordering")
		}
	}

	s.mu.RLock()
	if err := s.checkAvailable("query"); err != nil {
		s.mu.RUnlock()
		return nil, err
	}
	matched := make([]*repository.Document, 0)
	for id, data := range s.collections[collection] {
		doc := &repository.Document{ID: id, Data: data}
		if matchesAll(doc, q.Where) {
			matched = append(matched, doc)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return compareDocs(matched[i], matched[j], orders) < 0
	})

	out := make([]*repository.Document, 0, len(matched))
	for _, doc := range matched {
		if tuple != nil && !isAfterCursor(doc, orders, tuple) {
			continue
		}
		out = append(out, &repository.Document{ID: doc.ID, Data: deepCopy(doc.Data)})
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out, nil
}

// Watch opens a change feed on collection. Writers never block on slow consumers:
// pending changes accumulate in the feed until the consumer calls Next.
func (s *MemoryDocumentStore) Watch(ctx context.Context, collection string) (repository.ChangeFeed, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkAvailable("watch"); err != nil {
		return nil, err
	}

	feed := &memoryFeed{
		signal: make(chan struct{}, 1),
	}
	feed.release = func() {
		s.mu.Lock()
		delete(s.watchers[collection], feed)
		s.mu.Unlock()
	}
	if s.watchers[collection] == nil {
		s.watchers[collection] = make(map[*memoryFeed]struct{})
	}
	s.watchers[collection][feed] = struct{}{}
	return feed, nil
}

// Ping reports whether the store is reachable
func (s *MemoryDocumentStore) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.checkAvailable("ping")
}

// Count returns the number of documents in collection
func (s *MemoryDocumentStore) Count(collection string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.collections[collection])
}

func (s *MemoryDocumentStore) collection(name string) map[string]map[string]interface{} {
	docs, ok := s.collections[name]
	if !ok {
		docs = make(map[string]map[string]interface{})
		s.collections[name] = docs
	}
	return docs
}

// notify must be called with s.mu held
func (s *MemoryDocumentStore) notify(collection string, change repository.Change) {
	for feed := range s.watchers[collection] {
		feed.push(change)
	}
}

func matchesAll(doc *repository.Document, filters []repository.Filter) bool {
	for _, f := range filters {
		if !matchFilter(doc, f) {
			return false
		}
	}
	return true
}

// memoryFeed buffers changes for one watcher
type memoryFeed struct {
	mu      sync.Mutex
	pending []repository.Change
	closed  bool
	signal  chan struct{}
	release func()
	once    sync.Once
}

func (f *memoryFeed) push(change repository.Change) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.pending = append(f.pending, change)
	f.mu.Unlock()

	select {
	case f.signal <- struct{}{}:
	default:
	}
}

// Next returns every change accumulated since the previous call
func (f *memoryFeed) Next(ctx context.Context) ([]repository.Change, error) {
	for {
		f.mu.Lock()
		if f.closed {
			f.mu.Unlock()
			return nil, ErrFeedClosed
		}
		if len(f.pending) > 0 {
			changes := f.pending
			f.pending = nil
			f.mu.Unlock()
			return changes, nil
		}
		f.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-f.signal:
		}
	}
}

func (f *memoryFeed) Close() error {
	f.once.Do(func() {
		f.mu.Lock()
		f.closed = true
		f.pending = nil
		f.mu.Unlock()
		f.release()

		select {
		case f.signal <- struct{}{}:
		default:
		}
	})
	return nil
}

// normalizeDocument round-trips data through JSON so stored values have one
// representation (float64 numbers, []interface{} lists, nested maps). The id is
// addressed separately and never stored in the body.
func normalizeDocument(data map[string]interface{}) (map[string]interface{}, error) {
	if data == nil {
		return map[string]interface{}{}, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, apperror.Internal(err, "failed to encode document")
	}
	out := map[string]interface{}{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	delete(out, repository.IDField)
	return out, nil
}

func deepCopy(data map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(data))
	for k, v := range data {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		return deepCopy(t)
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, item := range t {
			out[i] = copyValue(item)
		}
		return out
	}
	return v
}
