package library

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema changes.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		if err := s.createSchema(ctx); err != nil {
			return err
		}
		return s.migrateLegacyMemberships(ctx)
	}

	var version int
	err = s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d",
			ErrSchemaMismatch, version, schemaVersion)
	}

	return s.migrateLegacyMemberships(ctx)
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// migrateLegacyMemberships backfills the membership relation from the
// denormalized primary-collection column. Databases written before the
// membership table existed carry the collection only on the item row;
// idempotent because of the composite primary key.
func (s *Store) migrateLegacyMemberships(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT OR IGNORE INTO item_collections (item_id, collection)
        SELECT id, collection FROM items WHERE collection IS NOT NULL AND collection != ''`)
	if err != nil {
		return fmt.Errorf("migrate legacy memberships: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
        INSERT OR IGNORE INTO collections (name)
        SELECT DISTINCT collection FROM item_collections`)
	if err != nil {
		return fmt.Errorf("migrate legacy collections: %w", err)
	}
	return nil
}
