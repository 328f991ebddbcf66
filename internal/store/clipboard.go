package store

import (
	"context"
	"fmt"
	"time"

	"github.com/username/workshop-planner/internal/apperr"
	"github.com/username/workshop-planner/internal/model"
	"go.uber.org/zap"
)

// CreateClipboardNote inserts a note and returns it with its assigned id.
func (s *Store) CreateClipboardNote(ctx context.Context, title, notes string) (model.ClipboardNote, error) {
	now := time.Now().UTC()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO clipboard_notes (title, notes, created_at) VALUES (?, ?, ?)`,
		title, notes, now)
	if err != nil {
		return model.ClipboardNote{}, fmt.Errorf("failed to insert clipboard note: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return model.ClipboardNote{}, fmt.Errorf("failed to resolve note id: %w", err)
	}

	s.logger.Info("Clipboard note created", zap.Int64("note_id", id))

	return model.ClipboardNote{ID: id, Title: title, Notes: notes, CreatedAt: now}, nil
}

// ListClipboardNotes returns all notes, newest first.
func (s *Store) ListClipboardNotes(ctx context.Context) ([]model.ClipboardNote, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, notes, created_at
		FROM clipboard_notes ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list clipboard notes: %w", err)
	}
	defer rows.Close()

	notes := make([]model.ClipboardNote, 0)
	for rows.Next() {
		var note model.ClipboardNote
		if err := rows.Scan(&note.ID, &note.Title, &note.Notes, &note.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan clipboard note: %w", err)
		}
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate clipboard notes: %w", err)
	}

	return notes, nil
}

// DeleteClipboardNote removes one note.
func (s *Store) DeleteClipboardNote(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM clipboard_notes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete clipboard note: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check note deletion: %w", err)
	}
	if affected == 0 {
		return apperr.NotFound("clipboard note", id)
	}

	s.logger.Info("Clipboard note deleted", zap.Int64("note_id", id))

	return nil
}
