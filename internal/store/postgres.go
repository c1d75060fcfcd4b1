package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver
	"go.uber.org/zap"
)

// documentsSchema holds all documents of all collections in a single
// jsonb table. seq preserves insertion order.
const documentsSchema = `
CREATE TABLE IF NOT EXISTS documents (
	id UUID PRIMARY KEY,
	collection TEXT NOT NULL,
	seq BIGSERIAL,
	doc JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS documents_collection_idx ON documents (collection);`

// PostgresStore implements Store on top of PostgreSQL, with documents
// held as jsonb and filters applied via jsonb containment.
type PostgresStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// OpenPostgres connects to PostgreSQL, verifies the connection and
// creates the documents table if it does not exist.
func OpenPostgres(ctx context.Context, dsn string, logger *zap.Logger) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if _, err := db.ExecContext(ctx, documentsSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating documents table: %w", err)
	}

	return NewPostgresStore(db, logger), nil
}

// NewPostgresStore wraps an existing database handle. Used directly by
// tests; production code goes through OpenPostgres.
func NewPostgresStore(db *sql.DB, logger *zap.Logger) *PostgresStore {
	return &PostgresStore{
		db:     db,
		logger: logger,
	}
}

// Find returns all documents matching the filter, in insertion order.
func (s *PostgresStore) Find(ctx context.Context, collection string, filter Filter) ([]Document, error) {
	if collection == "" {
		return nil, ErrCollection
	}

	filterJSON, err := marshalFilter(filter)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, doc FROM documents WHERE collection = $1 AND doc @> $2 ORDER BY seq`,
		collection, filterJSON,
	)
	if err != nil {
		return nil, s.fail("find", collection, err)
	}
	defer rows.Close()

	docs := make([]Document, 0)
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, s.fail("find scan", collection, err)
		}

		doc, err := unmarshalDoc(raw)
		if err != nil {
			return nil, s.fail("find decode", collection, err)
		}

		doc[IDKey] = id
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, s.fail("find rows", collection, err)
	}

	return docs, nil
}

// FindByID returns a single document by its internal id.
func (s *PostgresStore) FindByID(ctx context.Context, collection, id string) (Document, error) {
	if collection == "" {
		return nil, ErrCollection
	}

	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidID
	}

	var raw []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT doc FROM documents WHERE collection = $1 AND id = $2`,
		collection, id,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, s.fail("find by id", collection, err)
	}

	doc, err := unmarshalDoc(raw)
	if err != nil {
		return nil, s.fail("find by id decode", collection, err)
	}

	doc[IDKey] = id

	return doc, nil
}

// Insert stores a new document and returns its assigned internal id.
func (s *PostgresStore) Insert(ctx context.Context, collection string, doc Document) (string, error) {
	if collection == "" {
		return "", ErrCollection
	}

	if doc == nil {
		return "", ErrNilDoc
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encoding document: %w", err)
	}

	id := uuid.New().String()
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (id, collection, doc) VALUES ($1, $2, $3)`,
		id, collection, raw,
	); err != nil {
		return "", s.fail("insert", collection, err)
	}

	return id, nil
}

// Update merges the given fields into the document matched by id.
func (s *PostgresStore) Update(ctx context.Context, collection, id string, fields Document) (int64, error) {
	if collection == "" {
		return 0, ErrCollection
	}

	if _, err := uuid.Parse(id); err != nil {
		return 0, ErrInvalidID
	}

	raw, err := json.Marshal(fields)
	if err != nil {
		return 0, fmt.Errorf("encoding fields: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE documents SET doc = doc || $3 WHERE collection = $1 AND id = $2`,
		collection, id, raw,
	)
	if err != nil {
		return 0, s.fail("update", collection, err)
	}

	return s.rowsAffected(res, "update", collection)
}

// UpdateWhere merges the given fields into every document matching the
// filter in a single statement.
func (s *PostgresStore) UpdateWhere(ctx context.Context, collection string, filter Filter, fields Document) (int64, error) {
	if collection == "" {
		return 0, ErrCollection
	}

	filterJSON, err := marshalFilter(filter)
	if err != nil {
		return 0, err
	}

	raw, err := json.Marshal(fields)
	if err != nil {
		return 0, fmt.Errorf("encoding fields: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE documents SET doc = doc || $3 WHERE collection = $1 AND doc @> $2`,
		collection, filterJSON, raw,
	)
	if err != nil {
		return 0, s.fail("update where", collection, err)
	}

	return s.rowsAffected(res, "update where", collection)
}

// Remove deletes the document matched by id.
func (s *PostgresStore) Remove(ctx context.Context, collection, id string) (int64, error) {
	if collection == "" {
		return 0, ErrCollection
	}

	if _, err := uuid.Parse(id); err != nil {
		return 0, ErrInvalidID
	}

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = $1 AND id = $2`,
		collection, id,
	)
	if err != nil {
		return 0, s.fail("remove", collection, err)
	}

	return s.rowsAffected(res, "remove", collection)
}

// RemoveWhere deletes every document matching the filter in a single
// statement.
func (s *PostgresStore) RemoveWhere(ctx context.Context, collection string, filter Filter) (int64, error) {
	if collection == "" {
		return 0, ErrCollection
	}

	filterJSON, err := marshalFilter(filter)
	if err != nil {
		return 0, err
	}

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = $1 AND doc @> $2`,
		collection, filterJSON,
	)
	if err != nil {
		return 0, s.fail("remove where", collection, err)
	}

	return s.rowsAffected(res, "remove where", collection)
}

// MaxSequence returns the largest numeric value of the named field
// across the collection, or 0 when no document carries one.
func (s *PostgresStore) MaxSequence(ctx context.Context, collection, field string) (int64, error) {
	if collection == "" {
		return 0, ErrCollection
	}

	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT doc->>$2 FROM documents
		 WHERE collection = $1 AND jsonb_typeof(doc->$2) = 'number'
		 ORDER BY (doc->>$2)::numeric DESC LIMIT 1`,
		collection, field,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, s.fail("max sequence", collection, err)
	}

	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, nil
	}

	return int64(f), nil
}

// Ping verifies the database connection is alive.
func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("pinging database: %w", err)
	}

	return nil
}

// Close releases the database connection.
func (s *PostgresStore) Close(_ context.Context) error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}

	return nil
}

// rowsAffected extracts the affected-row count from a result.
func (s *PostgresStore) rowsAffected(res sql.Result, op, collection string) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, s.fail(op+" rows affected", collection, err)
	}

	return n, nil
}

// fail logs a store failure and wraps it for the caller. The
// underlying cause stays server-side; handlers map any store error to
// a generic 500.
func (s *PostgresStore) fail(op, collection string, err error) error {
	s.logger.Error("store operation failed",
		zap.String("operation", op),
		zap.String("collection", collection),
		zap.Error(err),
	)

	return fmt.Errorf("%s %s: %w", op, collection, err)
}

// marshalFilter encodes a filter for jsonb containment matching. A nil
// filter becomes the empty object, which every document contains.
func marshalFilter(filter Filter) ([]byte, error) {
	if filter == nil {
		filter = Filter{}
	}

	raw, err := json.Marshal(filter)
	if err != nil {
		return nil, fmt.Errorf("encoding filter: %w", err)
	}

	return raw, nil
}

// unmarshalDoc decodes a jsonb payload into a document.
func unmarshalDoc(raw []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}

	return doc, nil
}
