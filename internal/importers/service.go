package importers

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pachadotdev/bello/internal/config"
	"github.com/pachadotdev/bello/internal/library"
	"github.com/pachadotdev/bello/internal/logging"
	"github.com/pachadotdev/bello/internal/merge"
	"github.com/pachadotdev/bello/internal/records"
)

// AttachmentWriter stores attachment payloads for the resolved target record
// and returns the written paths. It runs inside the save critical section,
// after the target id is known but before the record is persisted. Failures
// are best-effort: return only the paths that were written.
type AttachmentWriter func(targetID string) []string

// Service is the shared ingestion core. The mutex makes the
// lookup-merge-write sequence a critical section, so two concurrent saves of
// the same DOI cannot both take the create branch.
type Service struct {
	store  *library.Store
	cfg    *config.Config
	logger *slog.Logger

	mu sync.Mutex
}

// NewService wires the ingestion service. A nil logger is replaced with a
// no-op one.
func NewService(store *library.Store, cfg *config.Config, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "ingest"),
	}
}

// Store exposes the underlying store for read paths that need no
// serialization.
func (s *Service) Store() *library.Store {
	return s.store
}

// StorageRoot returns the attachment storage directory.
func (s *Service) StorageRoot() string {
	return s.cfg.StorageDir
}

// Save reconciles the incoming record against existing data and persists the
// result. attach, when non-nil, is invoked with the target record id so
// callers can write attachment files into place before the row is written;
// the returned paths are appended to the record. Returns the persisted
// record and whether it merged into an existing one.
func (s *Service) Save(ctx context.Context, incoming *records.Record, attach AttachmentWriter) (*records.Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	outcome, err := merge.Reconcile(ctx, incoming, s.store)
	if err != nil {
		return nil, false, fmt.Errorf("reconcile record: %w", err)
	}

	rec := outcome.Record
	if attach != nil {
		if written := attach(rec.ID); len(written) > 0 {
			rec.Attachments = records.AppendAttachments(rec.Attachments, written)
		}
	}

	if outcome.Matched {
		if err := s.store.Update(ctx, rec); err != nil {
			return nil, false, fmt.Errorf("update merged record: %w", err)
		}
		if outcome.Collection != "" {
			if err := s.store.AddMembership(ctx, rec.ID, outcome.Collection); err != nil {
				return nil, false, fmt.Errorf("add membership: %w", err)
			}
		}
		s.logger.Info("merged record",
			logging.String(logging.FieldRecordID, rec.ID),
			logging.String("title", rec.Title))
		return rec, true, nil
	}

	if err := s.store.Add(ctx, rec); err != nil {
		return nil, false, fmt.Errorf("add record: %w", err)
	}
	s.logger.Info("created record",
		logging.String(logging.FieldRecordID, rec.ID),
		logging.String("title", rec.Title))
	return rec, false, nil
}
