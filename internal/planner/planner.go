// Package planner owns the job lifecycle: validation against the schedule
// rules, atomic persistence of job and attachment metadata, and the ordering
// of physical file writes and deletions around the database transaction.
package planner

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/username/workshop-planner/internal/apperr"
	"github.com/username/workshop-planner/internal/model"
	"github.com/username/workshop-planner/internal/schedule"
	"github.com/username/workshop-planner/internal/storage"
	"github.com/username/workshop-planner/internal/store"
	"github.com/username/workshop-planner/pkg/dateutil"
	"go.uber.org/zap"
)

// Upload is one file payload received at the boundary.
type Upload struct {
	Filename string
	MimeType string
	Content  io.Reader
}

// JobInput carries the form fields of a create or update request. A nil field
// was not part of the request and keeps the stored value on update.
type JobInput struct {
	Date        *string
	Time        *string
	Category    *string
	Title       *string
	Customer    *string
	Contact     *string
	Vehicle     *string
	License     *string
	Notes       *string
	WorkUnits   *string
	LoanerCar   *string
	TireStorage *string
	Status      *string
}

// Planner orchestrates job and clipboard operations.
type Planner struct {
	store  *store.Store
	files  *storage.Storage
	engine *schedule.Engine
	logger *zap.Logger
}

// New creates a Planner.
func New(st *store.Store, files *storage.Storage, engine *schedule.Engine, logger *zap.Logger) *Planner {
	return &Planner{
		store:  st,
		files:  files,
		engine: engine,
		logger: logger,
	}
}

// CreateJob validates the payload, stores the uploaded files and persists the
// job with its attachment records in one transaction.
func (p *Planner) CreateJob(ctx context.Context, in JobInput, uploads []Upload) (model.Job, error) {
	job, err := p.buildJob(model.Job{Status: model.StatusPending}, in)
	if err != nil {
		return model.Job{}, err
	}

	atts, err := p.saveUploads(uploads)
	if err != nil {
		return model.Job{}, err
	}

	created, err := p.store.CreateJob(ctx, job, atts)
	if err != nil {
		// The metadata never committed; the just-written files are orphans.
		p.files.RemoveAll(storedNames(atts))
		return model.Job{}, err
	}

	return created, nil
}

// UpdateJob merges the payload over the stored job, re-validates, and persists
// the result. With replace, the previous attachment set is swapped for the new
// uploads and the old backing files are deleted only after the transaction has
// committed; otherwise the uploads are appended.
func (p *Planner) UpdateJob(ctx context.Context, id int64, in JobInput, uploads []Upload, replace bool) (model.Job, error) {
	existing, err := p.store.GetJob(ctx, id)
	if err != nil {
		return model.Job{}, err
	}

	job, err := p.buildJob(existing, in)
	if err != nil {
		return model.Job{}, err
	}

	atts, err := p.saveUploads(uploads)
	if err != nil {
		return model.Job{}, err
	}

	updated, replaced, err := p.store.UpdateJob(ctx, job, atts, replace)
	if err != nil {
		p.files.RemoveAll(storedNames(atts))
		return model.Job{}, err
	}

	// Old files go away only now that the new state is committed.
	p.files.RemoveAll(replaced)

	return updated, nil
}

// UpdateStatus sets the job status. An empty status advances the
// pending → arrived → done cycle by one step.
func (p *Planner) UpdateStatus(ctx context.Context, id int64, status string) (model.Job, error) {
	var next model.Status

	if strings.TrimSpace(status) == "" {
		existing, err := p.store.GetJob(ctx, id)
		if err != nil {
			return model.Job{}, err
		}
		next = existing.Status.Next()
	} else {
		parsed, err := model.ParseStatus(status)
		if err != nil {
			return model.Job{}, err
		}
		next = parsed
	}

	return p.store.UpdateJobStatus(ctx, id, next)
}

// DeleteJob removes the job and its attachment records, then deletes the
// backing files best-effort. The committed deletion is the source of truth;
// file cleanup failures are logged, never surfaced.
func (p *Planner) DeleteJob(ctx context.Context, id int64) error {
	stored, err := p.store.DeleteJob(ctx, id)
	if err != nil {
		return err
	}

	p.files.RemoveAll(stored)

	return nil
}

// GetJob returns one job with its attachments.
func (p *Planner) GetJob(ctx context.Context, id int64) (model.Job, error) {
	return p.store.GetJob(ctx, id)
}

// ListJobs returns all jobs ordered by date then time.
func (p *Planner) ListJobs(ctx context.Context) ([]model.Job, error) {
	return p.store.ListJobs(ctx)
}

// buildJob applies the provided fields over base and validates the result.
func (p *Planner) buildJob(base model.Job, in JobInput) (model.Job, error) {
	job := base

	if in.Date != nil {
		job.Date = strings.TrimSpace(*in.Date)
	}
	if job.Date == "" {
		return model.Job{}, apperr.Validationf("date is required")
	}
	date, err := dateutil.ParseDate(job.Date)
	if err != nil {
		return model.Job{}, apperr.Validationf("invalid date: %q", job.Date)
	}
	job.Date = dateutil.FormatDate(date)

	if !p.engine.IsWorkingDay(date) {
		verdict := p.engine.DescribeNonWorkingDay(date)
		return model.Job{}, apperr.Validationf("%s", verdict.Message)
	}

	if in.Category != nil {
		category, err := model.ParseCategory(*in.Category)
		if err != nil {
			return model.Job{}, err
		}
		job.Category = category
	}
	if job.Category == "" {
		return model.Job{}, apperr.Validationf("invalid category: %q", "")
	}
	if !p.engine.IsCategoryAvailable(job.Category, date) {
		return model.Job{}, apperr.Validationf(
			"category %q is not available on %s", job.Category, job.Date)
	}

	if in.Title != nil {
		job.Title = strings.TrimSpace(*in.Title)
	}
	if job.Title == "" {
		return model.Job{}, apperr.Validationf("title is required")
	}

	if in.Time != nil {
		value := strings.TrimSpace(*in.Time)
		if value == "" {
			job.Time = nil
		} else {
			normalized, err := dateutil.ParseClockTime(value)
			if err != nil {
				return model.Job{}, apperr.Validationf("invalid time: %q", value)
			}
			job.Time = &normalized
		}
	}

	applyText(&job.Customer, in.Customer)
	applyText(&job.Contact, in.Contact)
	applyText(&job.Vehicle, in.Vehicle)
	applyText(&job.License, in.License)
	applyText(&job.Notes, in.Notes)
	applyText(&job.WorkUnits, in.WorkUnits)

	if in.LoanerCar != nil {
		job.LoanerCar = model.ParseFormBool(*in.LoanerCar)
	}
	if in.TireStorage != nil {
		job.TireStorage = model.ParseFormBool(*in.TireStorage)
	}

	if in.Status != nil {
		if status, err := model.ParseStatus(*in.Status); err == nil {
			job.Status = status
		}
		// An unrecognized status on create/update falls back to the base
		// value; only the explicit status operation rejects it.
	}
	if job.Status == "" {
		job.Status = model.StatusPending
	}

	return job, nil
}

func (p *Planner) saveUploads(uploads []Upload) ([]store.NewAttachment, error) {
	atts := make([]store.NewAttachment, 0, len(uploads))

	for _, upload := range uploads {
		stored, size, err := p.files.Save(upload.Filename, upload.Content)
		if err != nil {
			p.files.RemoveAll(storedNames(atts))
			return nil, fmt.Errorf("failed to store upload %q: %w", upload.Filename, err)
		}
		atts = append(atts, store.NewAttachment{
			Filename:   upload.Filename,
			StoredName: stored,
			MimeType:   upload.MimeType,
			Size:       size,
		})
	}

	return atts, nil
}

func storedNames(atts []store.NewAttachment) []string {
	names := make([]string, 0, len(atts))
	for _, att := range atts {
		names = append(names, att.StoredName)
	}
	return names
}

func applyText(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}
