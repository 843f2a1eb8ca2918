package library

import (
	"context"
	"fmt"
	"strings"
)

// RenameCollection moves a collection and every descendant to a new path
// prefix. The collection rows, membership rows, and primary-collection
// projection are all rewritten inside one transaction; any failure rolls the
// whole operation back.
func (s *Store) RenameCollection(ctx context.Context, oldName, newName string) error {
	oldName = strings.TrimSpace(oldName)
	newName = strings.TrimSpace(newName)
	if oldName == "" {
		return ErrRootCollection
	}
	if newName == "" {
		return ErrEmptyName
	}
	if oldName == newName {
		return ErrSameName
	}
	// Moving a subtree under itself would re-sweep rows rewritten earlier in
	// the same pass, since the target path sits in the affected snapshot.
	if strings.HasPrefix(newName, oldName+"/") {
		return ErrDescendantTarget
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin rename tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	affected, err := collectionsWithPrefix(ctx, tx, oldName)
	if err != nil {
		return err
	}

	for _, name := range affected {
		renamed := newName + strings.TrimPrefix(name, oldName)

		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO collections (name) VALUES (?)`, renamed); err != nil {
			return fmt.Errorf("create renamed collection: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM collections WHERE name = ?`, name); err != nil {
			return fmt.Errorf("drop old collection: %w", err)
		}
		// UPDATE OR IGNORE handles records already filed into the target
		// path; the leftover old rows are duplicates and get deleted.
		if _, err := tx.ExecContext(ctx,
			`UPDATE OR IGNORE item_collections SET collection = ? WHERE collection = ?`, renamed, name); err != nil {
			return fmt.Errorf("rewrite memberships: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM item_collections WHERE collection = ?`, name); err != nil {
			return fmt.Errorf("drop duplicate memberships: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE items SET collection = ? WHERE collection = ?`, renamed, name); err != nil {
			return fmt.Errorf("rewrite primary collections: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit rename: %w", err)
	}
	return nil
}

// DeleteCollection removes the collection and every descendant. Their
// memberships are dropped and affected records' primary collection resets to
// the root; the records themselves survive, possibly with no memberships
// left. All-or-nothing.
func (s *Store) DeleteCollection(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	affected, err := collectionsWithPrefix(ctx, tx, name)
	if err != nil {
		return err
	}

	for _, collection := range affected {
		if _, err := tx.ExecContext(ctx,
			`UPDATE items SET collection = '' WHERE collection = ?`, collection); err != nil {
			return fmt.Errorf("reset primary collections: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM item_collections WHERE collection = ?`, collection); err != nil {
			return fmt.Errorf("drop memberships: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM collections WHERE name = ?`, collection); err != nil {
			return fmt.Errorf("drop collection: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}
	return nil
}

// collectionsWithPrefix scans the full collection list and keeps the names
// equal to prefix or under prefix + "/". O(collections), acceptable for
// user-authored taxonomies.
func collectionsWithPrefix(ctx context.Context, tx execer, prefix string) ([]string, error) {
	rows, err := tx.QueryContext(ctx, `SELECT name FROM collections ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("scan collections: %w", err)
	}
	defer rows.Close()

	var matched []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan collection name: %w", err)
		}
		if name == prefix || strings.HasPrefix(name, prefix+"/") {
			matched = append(matched, name)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate collections: %w", err)
	}
	return matched, nil
}
