package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// execer covers both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// AddMembership files the record into the collection, creating the collection
// row if needed. Idempotent; the primary-collection projection is recomputed
// afterwards.
func (s *Store) AddMembership(ctx context.Context, id, path string) error {
	if path == "" {
		return ErrEmptyName
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin membership tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := addMembershipTx(ctx, tx, id, path); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit membership: %w", err)
	}
	return nil
}

func addMembershipTx(ctx context.Context, tx execer, id, path string) error {
	if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO collections (name) VALUES (?)`, path); err != nil {
		return fmt.Errorf("ensure collection: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO item_collections (item_id, collection) VALUES (?, ?)`, id, path); err != nil {
		return fmt.Errorf("add membership: %w", err)
	}
	return recomputePrimary(ctx, tx, id)
}

// RemoveMembership unfiles the record from the collection. Removing the
// record's only membership is rejected with ErrLastMembership and the store
// is left unchanged.
func (s *Store) RemoveMembership(ctx context.Context, id, path string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin membership tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var total int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM item_collections WHERE item_id = ?`, id).Scan(&total); err != nil {
		return fmt.Errorf("count memberships: %w", err)
	}
	var matching int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM item_collections WHERE item_id = ? AND collection = ?`, id, path).Scan(&matching); err != nil {
		return fmt.Errorf("check membership: %w", err)
	}
	if matching == 0 {
		return nil
	}
	if total <= 1 {
		return ErrLastMembership
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM item_collections WHERE item_id = ? AND collection = ?`, id, path); err != nil {
		return fmt.Errorf("remove membership: %w", err)
	}
	if err := recomputePrimary(ctx, tx, id); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit membership: %w", err)
	}
	return nil
}

// Memberships returns the record's collection paths in sorted order.
func (s *Store) Memberships(ctx context.Context, id string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT collection FROM item_collections WHERE item_id = ? ORDER BY collection`, id)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, fmt.Errorf("scan membership: %w", err)
		}
		paths = append(paths, path)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate memberships: %w", err)
	}
	return paths, nil
}

// AddCollection creates an empty collection explicitly. Idempotent.
func (s *Store) AddCollection(ctx context.Context, name string) error {
	if name == "" {
		return ErrEmptyName
	}
	if _, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO collections (name) VALUES (?)`, name); err != nil {
		return fmt.Errorf("add collection: %w", err)
	}
	return nil
}

// ListCollections returns every collection path in sorted order.
func (s *Store) ListCollections(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM collections ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan collection: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate collections: %w", err)
	}
	return names, nil
}

// recomputePrimary refreshes the denormalized primary-collection column from
// the record's first membership in sorted order. The projection is
// non-authoritative; membership queries never read it.
func recomputePrimary(ctx context.Context, tx execer, id string) error {
	var primary sql.NullString
	err := tx.QueryRowContext(ctx,
		`SELECT collection FROM item_collections WHERE item_id = ? ORDER BY collection LIMIT 1`, id).Scan(&primary)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("read first membership: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE items SET collection = ? WHERE id = ?`, primary.String, id); err != nil {
		return fmt.Errorf("update primary collection: %w", err)
	}
	return nil
}
