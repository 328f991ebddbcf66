package planner

import (
	"context"
	"strings"

	"github.com/username/workshop-planner/internal/apperr"
	"github.com/username/workshop-planner/internal/model"
)

// ListNotes returns all clipboard notes, newest first.
func (p *Planner) ListNotes(ctx context.Context) ([]model.ClipboardNote, error) {
	return p.store.ListClipboardNotes(ctx)
}

// CreateNote creates a clipboard note. Both title and notes are required.
func (p *Planner) CreateNote(ctx context.Context, title, notes string) (model.ClipboardNote, error) {
	title = strings.TrimSpace(title)
	notes = strings.TrimSpace(notes)

	if title == "" {
		return model.ClipboardNote{}, apperr.Validationf("title is required")
	}
	if notes == "" {
		return model.ClipboardNote{}, apperr.Validationf("notes are required")
	}

	return p.store.CreateClipboardNote(ctx, title, notes)
}

// DeleteNote removes a clipboard note.
func (p *Planner) DeleteNote(ctx context.Context, id int64) error {
	return p.store.DeleteClipboardNote(ctx, id)
}
