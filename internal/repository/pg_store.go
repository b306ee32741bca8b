package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/article-image-api/internal/database"
	"github.com/lib/pq"
)

// pgStore keeps a collection as ordered JSONB rows in the records table
type pgStore[T any] struct {
	db         *database.DB
	collection string
	check      func([]T) error
}

// NewPostgresStore creates a store backed by the records table
func NewPostgresStore[T any](db *database.DB, collection string, check func([]T) error) RecordStore[T] {
	return &pgStore[T]{db: db, collection: collection, check: check}
}

// Load reads every row of the collection in insertion order
func (s *pgStore[T]) Load(ctx context.Context) ([]T, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT body FROM records WHERE collection = $1 ORDER BY position", s.collection)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s store: %w", s.collection, err)
	}
	defer rows.Close()

	records := []T{}
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		var record T
		if err := json.Unmarshal(body, &record); err != nil {
			return nil, fmt.Errorf("failed to decode %s record %d: %w", s.collection, len(records), err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if s.check != nil {
		if err := s.check(records); err != nil {
			return nil, fmt.Errorf("failed to load %s store: %w", s.collection, err)
		}
	}

	return records, nil
}

// Save replaces the collection's rows in one transaction using COPY
func (s *pgStore[T]) Save(ctx context.Context, records []T) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM records WHERE collection = $1", s.collection); err != nil {
		return fmt.Errorf("failed to clear %s store: %w", s.collection, err)
	}

	if len(records) > 0 {
		stmt, err := tx.PrepareContext(ctx, pq.CopyIn("records", "collection", "position", "body"))
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, record := range records {
			body, err := json.Marshal(record)
			if err != nil {
				return fmt.Errorf("failed to encode %s record %d: %w", s.collection, i, err)
			}
			if _, err := stmt.ExecContext(ctx, s.collection, i, string(body)); err != nil {
				return err
			}
		}

		if _, err := stmt.ExecContext(ctx); err != nil {
			return err
		}
	}

	return tx.Commit()
}
