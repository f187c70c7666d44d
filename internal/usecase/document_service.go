package usecase

import (
	"context"
	"sync"
	"time"

	"travel-booking-service/internal/domain/entity"
	"travel-booking-service/internal/domain/repository"
	"travel-booking-service/pkg/apperror"
	"travel-booking-service/pkg/logger"
	"travel-booking-service/pkg/metrics"
)

// Page size bounds for FindPaginated
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// QueryOptions is the query accepted by the generic service
type QueryOptions = repository.Query

// Page is one page of a paginated query. NextCursor is set only when HasMore.
type Page[T entity.Model] struct {
	Data       []T
	HasMore    bool
	NextCursor *repository.Cursor
}

// Snapshot is the full result set of a subscribed query at one point in time
type Snapshot[T entity.Model] struct {
	Items []T
}

// DocumentService provides typed CRUD, pagination and live queries over one collection
type DocumentService[T entity.Model] struct {
	store   repository.DocumentStore
	codec   entity.Codec[T]
	log     logger.Logger
	metrics *metrics.Metrics
}

// NewDocumentService creates a generic service for the codec's collection
func NewDocumentService[T entity.Model](store repository.DocumentStore, codec entity.Codec[T], log logger.Logger, m *metrics.Metrics) *DocumentService[T] {
	return &DocumentService[T]{
		store:   store,
		codec:   codec,
		log:     log.With("collection", codec.Collection),
		metrics: m,
	}
}

// Collection returns the collection name
func (s *DocumentService[T]) Collection() string {
	return s.codec.Collection
}

func (s *DocumentService[T]) decode(doc *repository.Document) (T, error) {
	model, err := s.codec.FromRecord(doc.ID, entity.Record(doc.Data))
	if err != nil {
		var zero T
		return zero, apperror.Internal(err, "failed to decode %s/%s", s.codec.Collection, doc.ID)
	}
	return model, nil
}

func (s *DocumentService[T]) decodeAll(docs []*repository.Document) ([]T, error) {
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		model, err := s.decode(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, model)
	}
	return out, nil
}

// FindByID returns the model and true, or false when the document does not exist
func (s *DocumentService[T]) FindByID(ctx context.Context, id string) (T, bool, error) {
	var zero T
	start := time.Now()
	doc, err := s.store.Get(ctx, s.codec.Collection, id)
	s.metrics.ObserveStore(s.codec.Collection, "get", start, err)
	if err != nil {
		return zero, false, err
	}
	if doc == nil {
		return zero, false, nil
	}
	model, err := s.decode(doc)
	if err != nil {
		return zero, false, err
	}
	return model, true, nil
}

// Create persists model under its own id or a store-generated one and returns the
// persisted state with createdAt / updatedAt stamped
func (s *DocumentService[T]) Create(ctx context.Context, model T) (T, error) {
	return s.insert(ctx, model.GetID(), model)
}

// CreateWithID persists model under id; a taken id is a Conflict
func (s *DocumentService[T]) CreateWithID(ctx context.Context, id string, model T) (T, error) {
	if id == "" {
		var zero T
		return zero, apperror.Validation([]apperror.FieldViolation{{Field: "id", Message: "id is required", Code: "required"}})
	}
	return s.insert(ctx, id, model)
}

func (s *DocumentService[T]) insert(ctx context.Context, id string, model T) (T, error) {
	var zero T
	rec := s.codec.ToRecord(model)
	delete(rec, repository.IDField)
	now := entity.FormatTimestamp(entity.Now())
	rec["createdAt"] = now
	rec["updatedAt"] = now

	start := time.Now()
	doc, err := s.store.Insert(ctx, s.codec.Collection, id, rec)
	s.metrics.ObserveStore(s.codec.Collection, "insert", start, err)
	if err != nil {
		return zero, err
	}
	s.log.Debug("Document created", "id", doc.ID)
	return s.decode(doc)
}

// Update applies a shallow top-level merge of partial and refreshes updatedAt.
// id and createdAt in partial are ignored.
func (s *DocumentService[T]) Update(ctx context.Context, id string, partial entity.Record) (T, error) {
	var zero T
	fields := make(map[string]interface{}, len(partial)+1)
	for k, v := range partial {
		if k == repository.IDField || k == "createdAt" {
			continue
		}
		fields[k] = v
	}
	fields["updatedAt"] = entity.FormatTimestamp(entity.Now())

	start := time.Now()
	doc, err := s.store.Update(ctx, s.codec.Collection, id, fields)
	s.metrics.ObserveStore(s.codec.Collection, "update", start, err)
	if err != nil {
		return zero, err
	}
	return s.decode(doc)
}

// Delete removes the document; deleting a missing id succeeds
func (s *DocumentService[T]) Delete(ctx context.Context, id string) error {
	start := time.Now()
	err := s.store.Delete(ctx, s.codec.Collection, id)
	s.metrics.ObserveStore(s.codec.Collection, "delete", start, err)
	return err
}

func (s *DocumentService[T]) query(ctx context.Context, q QueryOptions) ([]*repository.Document, error) {
	q = repository.Normalize(q)
	if err := repository.ValidateQuery(q); err != nil {
		return nil, err
	}
	start := time.Now()
	docs, err := s.store.Query(ctx, s.codec.Collection, q)
	s.metrics.ObserveStore(s.codec.Collection, "query", start, err)
	return docs, err
}

// FindAll returns every match keyed by id
func (s *DocumentService[T]) FindAll(ctx context.Context, q QueryOptions) (map[string]T, error) {
	docs, err := s.query(ctx, q)
	if err != nil {
		return nil, err
	}
	out := make(map[string]T, len(docs))
	for _, doc := range docs {
		model, err := s.decode(doc)
		if err != nil {
			return nil, err
		}
		out[doc.ID] = model
	}
	return out, nil
}

// FindAllOrdered returns every match in query order
func (s *DocumentService[T]) FindAllOrdered(ctx context.Context, q QueryOptions) ([]T, error) {
	docs, err := s.query(ctx, q)
	if err != nil {
		return nil, err
	}
	return s.decodeAll(docs)
}

// FindOne returns the first match
func (s *DocumentService[T]) FindOne(ctx context.Context, q QueryOptions) (T, bool, error) {
	var zero T
	q.Limit = 1
	docs, err := s.query(ctx, q)
	if err != nil {
		return zero, false, err
	}
	if len(docs) == 0 {
		return zero, false, nil
	}
	model, err := s.decode(docs[0])
	if err != nil {
		return zero, false, err
	}
	return model, true, nil
}

// FindPaginated returns one page. It fetches limit+1 documents to learn whether
// more exist; the cursor points at the last returned document.
func (s *DocumentService[T]) FindPaginated(ctx context.Context, q QueryOptions) (*Page[T], error) {
	if q.Limit < 0 {
		return nil, apperror.Query("limit must not be negative, got %d", q.Limit)
	}
	limit := q.Limit
	if limit == 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	q = repository.Normalize(q)
	q.Limit = limit + 1
	docs, err := s.query(ctx, q)
	if err != nil {
		return nil, err
	}

	page := &Page[T]{}
	if len(docs) > limit {
		page.HasMore = true
		docs = docs[:limit]
	}
	page.Data, err = s.decodeAll(docs)
	if err != nil {
		return nil, err
	}
	if page.HasMore && len(docs) > 0 {
		page.NextCursor = repository.CursorFor(docs[len(docs)-1], q.OrderBy)
	}
	return page, nil
}

// Subscription is a live query. Snapshots are delivered on C until Unsubscribe is
// called, the context ends or an error terminates it; then C is closed.
type Subscription[T entity.Model] struct {
	C <-chan Snapshot[T]

	cancel   context.CancelFunc
	done     chan struct{}
	finished chan struct{}
	once     sync.Once

	mu  sync.Mutex
	err error
}

// Err returns the error that terminated the subscription, if any
func (sub *Subscription[T]) Err() error {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	return sub.err
}

// Unsubscribe stops the subscription. After it returns no further snapshot is delivered.
func (sub *Subscription[T]) Unsubscribe() {
	sub.once.Do(func() {
		sub.cancel()
		close(sub.done)
	})
	<-sub.finished
}

func (sub *Subscription[T]) fail(err error) {
	sub.mu.Lock()
	if sub.err == nil {
		sub.err = err
	}
	sub.mu.Unlock()
}

// Subscribe runs q now and again on every relevant change to the collection. The
// change feed is opened before the initial query so no write is missed in between.
func (s *DocumentService[T]) Subscribe(ctx context.Context, q QueryOptions) (*Subscription[T], error) {
	q = repository.Normalize(q)
	if err := repository.ValidateQuery(q); err != nil {
		return nil, err
	}

	subCtx, cancel := context.WithCancel(ctx)
	feed, err := s.store.Watch(subCtx, s.codec.Collection)
	if err != nil {
		cancel()
		return nil, err
	}

	docs, err := s.query(subCtx, q)
	if err != nil {
		feed.Close()
		cancel()
		return nil, err
	}
	initial, err := s.decodeAll(docs)
	if err != nil {
		feed.Close()
		cancel()
		return nil, err
	}

	ch := make(chan Snapshot[T])
	sub := &Subscription[T]{
		C:        ch,
		cancel:   cancel,
		done:     make(chan struct{}),
		finished: make(chan struct{}),
	}
	s.metrics.SubscriptionOpened()

	go s.run(subCtx, sub, ch, feed, q, docs, initial)
	return sub, nil
}

func (s *DocumentService[T]) run(ctx context.Context, sub *Subscription[T], ch chan<- Snapshot[T], feed repository.ChangeFeed,
	q QueryOptions, docs []*repository.Document, initial []T) {
	defer close(sub.finished)
	defer close(ch)
	defer s.metrics.SubscriptionClosed()
	defer feed.Close()

	send := func(items []T) bool {
		select {
		case ch <- Snapshot[T]{Items: items}:
			return true
		case <-sub.done:
			return false
		case <-ctx.Done():
			return false
		}
	}

	if !send(initial) {
		return
	}
	current := idSet(docs)

	for {
		changes, err := feed.Next(ctx)
		if err != nil {
			if ctx.Err() == nil {
				s.log.Error("Subscription change feed failed", "error", err)
				sub.fail(err)
			}
			return
		}

		docs, err := s.query(ctx, q)
		if err != nil {
			if ctx.Err() == nil {
				s.log.Error("Subscription re-query failed", "error", err)
				sub.fail(err)
			}
			return
		}
		next := idSet(docs)
		if !affects(changes, current, next) {
			continue
		}
		current = next

		items, err := s.decodeAll(docs)
		if err != nil {
			sub.fail(err)
			return
		}
		if !send(items) {
			return
		}
	}
}

func idSet(docs []*repository.Document) map[string]struct{} {
	set := make(map[string]struct{}, len(docs))
	for _, d := range docs {
		set[d.ID] = struct{}{}
	}
	return set
}

// affects reports whether any change touches a document that was or is in the result
func affects(changes []repository.Change, before, after map[string]struct{}) bool {
	for _, c := range changes {
		if c.Op == repository.ChangeResync {
			return true
		}
		if _, ok := before[c.ID]; ok {
			return true
		}
		if _, ok := after[c.ID]; ok {
			return true
		}
	}
	return false
}

// OnSnapshotQuery adapts Subscribe to callbacks. onData runs for every snapshot,
// onError at most once. The returned function unsubscribes.
func (s *DocumentService[T]) OnSnapshotQuery(ctx context.Context, q QueryOptions, onData func([]T), onError func(error)) (func(), error) {
	sub, err := s.Subscribe(ctx, q)
	if err != nil {
		return nil, err
	}
	go func() {
		for snap := range sub.C {
			onData(snap.Items)
		}
		if err := sub.Err(); err != nil && onError != nil {
			onError(err)
		}
	}()
	return sub.Unsubscribe, nil
}
