package store

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore implements Store with in-memory collections. Internal
// ids are generated UUIDs. Documents are returned in insertion order.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]Document
	order       map[string][]string
}

// NewMemoryStore creates a new MemoryStore instance.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string]Document),
		order:       make(map[string][]string),
	}
}

// Find returns all documents matching the filter, in insertion order.
// Each returned document carries its internal id under IDKey.
func (s *MemoryStore) Find(ctx context.Context, collection string, filter Filter) ([]Document, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("find documents: %w", ctx.Err())
	default:
	}

	if collection == "" {
		return nil, ErrCollection
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]Document, 0)
	for _, id := range s.order[collection] {
		doc := s.collections[collection][id]
		if matches(doc, filter) {
			docs = append(docs, withID(doc, id))
		}
	}

	return docs, nil
}

// FindByID returns a single document by its internal id.
func (s *MemoryStore) FindByID(ctx context.Context, collection, id string) (Document, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("find document: %w", ctx.Err())
	default:
	}

	if collection == "" {
		return nil, ErrCollection
	}

	if id == "" {
		return nil, ErrInvalidID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, exists := s.collections[collection][id]
	if !exists {
		return nil, ErrNotFound
	}

	return withID(doc, id), nil
}

// Insert stores a new document and returns its assigned internal id.
func (s *MemoryStore) Insert(ctx context.Context, collection string, doc Document) (string, error) {
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("insert document: %w", ctx.Err())
	default:
	}

	if collection == "" {
		return "", ErrCollection
	}

	if doc == nil {
		return "", ErrNilDoc
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string]Document)
	}

	id := uuid.New().String()
	s.collections[collection][id] = cloneDoc(doc)
	s.order[collection] = append(s.order[collection], id)

	return id, nil
}

// Update merges the given fields into the document matched by id.
func (s *MemoryStore) Update(ctx context.Context, collection, id string, fields Document) (int64, error) {
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("update document: %w", ctx.Err())
	default:
	}

	if collection == "" {
		return 0, ErrCollection
	}

	if id == "" {
		return 0, ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, exists := s.collections[collection][id]
	if !exists {
		return 0, nil
	}

	mergeDoc(doc, fields)

	return 1, nil
}

// UpdateWhere merges the given fields into every document matching the
// filter, under a single lock.
func (s *MemoryStore) UpdateWhere(ctx context.Context, collection string, filter Filter, fields Document) (int64, error) {
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("update documents: %w", ctx.Err())
	default:
	}

	if collection == "" {
		return 0, ErrCollection
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var matched int64
	for _, doc := range s.collections[collection] {
		if matches(doc, filter) {
			mergeDoc(doc, fields)
			matched++
		}
	}

	return matched, nil
}

// Remove deletes the document matched by id.
func (s *MemoryStore) Remove(ctx context.Context, collection, id string) (int64, error) {
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("remove document: %w", ctx.Err())
	default:
	}

	if collection == "" {
		return 0, ErrCollection
	}

	if id == "" {
		return 0, ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.collections[collection][id]; !exists {
		return 0, nil
	}

	s.deleteLocked(collection, id)

	return 1, nil
}

// RemoveWhere deletes every document matching the filter, under a
// single lock.
func (s *MemoryStore) RemoveWhere(ctx context.Context, collection string, filter Filter) (int64, error) {
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("remove documents: %w", ctx.Err())
	default:
	}

	if collection == "" {
		return 0, ErrCollection
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for id, doc := range s.collections[collection] {
		if matches(doc, filter) {
			s.deleteLocked(collection, id)
			deleted++
		}
	}

	return deleted, nil
}

// MaxSequence returns the largest numeric value of the named field, or
// 0 when the collection is empty or no document carries a numeric
// value for the field.
func (s *MemoryStore) MaxSequence(ctx context.Context, collection, field string) (int64, error) {
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("max sequence: %w", ctx.Err())
	default:
	}

	if collection == "" {
		return 0, ErrCollection
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var max int64
	for _, doc := range s.collections[collection] {
		if v, ok := numericValue(doc[field]); ok && v > max {
			max = v
		}
	}

	return max, nil
}

// Ping always succeeds for the in-memory store.
func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close(_ context.Context) error {
	return nil
}

// deleteLocked removes a document and its order entry. Caller must
// hold the write lock.
func (s *MemoryStore) deleteLocked(collection, id string) {
	delete(s.collections[collection], id)

	order := s.order[collection]
	for i, oid := range order {
		if oid == id {
			s.order[collection] = append(order[:i], order[i+1:]...)
			break
		}
	}
}

// matches reports whether every filter field equals the corresponding
// document field.
func matches(doc Document, filter Filter) bool {
	for key, want := range filter {
		if !equalValues(doc[key], want) {
			return false
		}
	}

	return true
}

// equalValues compares two document values, treating all numeric types
// as equivalent so a filter built from an int64 matches a value decoded
// from JSON as float64.
func equalValues(a, b any) bool {
	av, aok := numericValue(a)
	bv, bok := numericValue(b)
	if aok && bok {
		return av == bv
	}

	return reflect.DeepEqual(a, b)
}

// numericValue coerces a document value to int64.
func numericValue(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}

// cloneDoc copies a document so callers cannot mutate stored state.
func cloneDoc(doc Document) Document {
	clone := make(Document, len(doc))
	for k, v := range doc {
		clone[k] = v
	}

	return clone
}

// mergeDoc merges partial fields into an existing document.
func mergeDoc(doc Document, fields Document) {
	for k, v := range fields {
		doc[k] = v
	}
}

// withID returns a copy of the document with the internal id attached
// under IDKey.
func withID(doc Document, id string) Document {
	out := cloneDoc(doc)
	out[IDKey] = id

	return out
}
