// Package store provides data storage interfaces and implementations.
package store

import (
	"context"
	"errors"
)

// Store errors.
var (
	ErrNotFound   = errors.New("document not found")
	ErrInvalidID  = errors.New("invalid document ID")
	ErrNilDoc     = errors.New("document cannot be nil")
	ErrCollection = errors.New("collection name cannot be empty")
)

// Document is a schemaless record held in a collection.
type Document map[string]any

// Filter selects documents by exact field match. A nil or empty filter
// matches every document in the collection.
type Filter map[string]any

// IDKey is the document key under which implementations expose the
// internal id on documents returned from Find and FindByID.
const IDKey = "_id"

// Store defines generic operations over named document collections.
//
// UpdateWhere and RemoveWhere operate atomically on all documents
// matching a filter, so callers never need the internal id to mutate
// by an application-level key.
type Store interface {
	// Find returns all documents matching the filter.
	Find(ctx context.Context, collection string, filter Filter) ([]Document, error)

	// FindByID returns a single document by its internal id.
	FindByID(ctx context.Context, collection, id string) (Document, error)

	// Insert stores a new document and returns its assigned internal id.
	Insert(ctx context.Context, collection string, doc Document) (string, error)

	// Update merges the given fields into the document matched by id and
	// reports the number of documents matched.
	Update(ctx context.Context, collection, id string, fields Document) (int64, error)

	// UpdateWhere merges the given fields into every document matching
	// the filter and reports the number of documents matched.
	UpdateWhere(ctx context.Context, collection string, filter Filter, fields Document) (int64, error)

	// Remove deletes the document matched by id and reports the number
	// of documents deleted.
	Remove(ctx context.Context, collection, id string) (int64, error)

	// RemoveWhere deletes every document matching the filter and reports
	// the number of documents deleted.
	RemoveWhere(ctx context.Context, collection string, filter Filter) (int64, error)

	// MaxSequence returns the largest numeric value of the named field
	// across the collection, or 0 when the collection is empty or the
	// field is absent or non-numeric.
	MaxSequence(ctx context.Context, collection, field string) (int64, error)

	// Ping verifies the store connection is alive.
	Ping(ctx context.Context) error

	// Close releases the store connection.
	Close(ctx context.Context) error
}
