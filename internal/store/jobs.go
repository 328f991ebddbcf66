package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/username/workshop-planner/internal/apperr"
	"github.com/username/workshop-planner/internal/model"
	"go.uber.org/zap"
)

// NewAttachment is the metadata of one freshly stored upload, ready to be
// linked to a job inside the job's transaction.
type NewAttachment struct {
	Filename   string
	StoredName string
	MimeType   string
	Size       int64
}

const jobColumns = `id, date, time, category, title, customer, contact, vehicle,
	license, notes, work_units, loaner_car, tire_storage, status, created_at, updated_at`

// CreateJob inserts the job row and one attachment row per upload in a single
// transaction and returns the stored job with its resolved attachment list.
func (s *Store) CreateJob(ctx context.Context, job model.Job, atts []NewAttachment) (model.Job, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Job{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO jobs (date, time, category, title, customer, contact, vehicle,
			license, notes, work_units, loaner_car, tire_storage, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.Date, nullable(job.Time), string(job.Category), job.Title,
		job.Customer, job.Contact, job.Vehicle, job.License, job.Notes, job.WorkUnits,
		job.LoanerCar, job.TireStorage, string(job.Status), now, now)
	if err != nil {
		return model.Job{}, fmt.Errorf("failed to insert job: %w", err)
	}

	jobID, err := res.LastInsertId()
	if err != nil {
		return model.Job{}, fmt.Errorf("failed to resolve job id: %w", err)
	}

	if err := insertAttachments(ctx, tx, jobID, atts, now); err != nil {
		return model.Job{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.Job{}, fmt.Errorf("failed to commit job: %w", err)
	}

	s.logger.Info("Job created",
		zap.Int64("job_id", jobID),
		zap.String("date", job.Date),
		zap.String("category", string(job.Category)),
		zap.Int("attachments", len(atts)))

	return s.GetJob(ctx, jobID)
}

// UpdateJob rewrites the job row and, depending on replace, either appends the
// new attachment rows or swaps the whole set. When replacing, the stored names
// of the removed rows are returned so the caller can delete the backing files
// after the transaction has committed.
func (s *Store) UpdateJob(ctx context.Context, job model.Job, atts []NewAttachment, replace bool) (model.Job, []string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Job{}, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()

	res, err := tx.ExecContext(ctx, `
		UPDATE jobs SET date = ?, time = ?, category = ?, title = ?, customer = ?,
			contact = ?, vehicle = ?, license = ?, notes = ?, work_units = ?,
			loaner_car = ?, tire_storage = ?, status = ?, updated_at = ?
		WHERE id = ?`,
		job.Date, nullable(job.Time), string(job.Category), job.Title,
		job.Customer, job.Contact, job.Vehicle, job.License, job.Notes, job.WorkUnits,
		job.LoanerCar, job.TireStorage, string(job.Status), now, job.ID)
	if err != nil {
		return model.Job{}, nil, fmt.Errorf("failed to update job: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return model.Job{}, nil, fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return model.Job{}, nil, apperr.NotFound("job", job.ID)
	}

	var replaced []string
	if replace {
		replaced, err = listStoredNames(ctx, tx, job.ID)
		if err != nil {
			return model.Job{}, nil, err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM attachments WHERE job_id = ?`, job.ID); err != nil {
			return model.Job{}, nil, fmt.Errorf("failed to clear attachments: %w", err)
		}
	}

	if err := insertAttachments(ctx, tx, job.ID, atts, now); err != nil {
		return model.Job{}, nil, err
	}

	if err := tx.Commit(); err != nil {
		return model.Job{}, nil, fmt.Errorf("failed to commit job update: %w", err)
	}

	s.logger.Info("Job updated",
		zap.Int64("job_id", job.ID),
		zap.Bool("replace_attachments", replace),
		zap.Int("new_attachments", len(atts)))

	updated, err := s.GetJob(ctx, job.ID)
	if err != nil {
		return model.Job{}, nil, err
	}
	return updated, replaced, nil
}

// UpdateJobStatus persists the new status and bumps the updated timestamp.
// Attachments are untouched.
func (s *Store) UpdateJobStatus(ctx context.Context, id int64, status model.Status) (model.Job, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), id)
	if err != nil {
		return model.Job{}, fmt.Errorf("failed to update status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return model.Job{}, fmt.Errorf("failed to check status update: %w", err)
	}
	if affected == 0 {
		return model.Job{}, apperr.NotFound("job", id)
	}

	s.logger.Info("Job status updated",
		zap.Int64("job_id", id),
		zap.String("status", string(status)))

	return s.GetJob(ctx, id)
}

// DeleteJob removes the job row; attachment rows cascade. The stored names of
// the cascaded attachments are returned for best-effort file cleanup.
func (s *Store) DeleteJob(ctx context.Context, id int64) ([]string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stored, err := listStoredNames(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM jobs WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to delete job: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return nil, apperr.NotFound("job", id)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit job deletion: %w", err)
	}

	s.logger.Info("Job deleted",
		zap.Int64("job_id", id),
		zap.Int("attachments", len(stored)))

	return stored, nil
}

// GetJob returns one job with its resolved attachment list.
func (s *Store) GetJob(ctx context.Context, id int64) (model.Job, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)

	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Job{}, apperr.NotFound("job", id)
	}
	if err != nil {
		return model.Job{}, fmt.Errorf("failed to load job: %w", err)
	}

	atts, err := s.listAttachments(ctx, id)
	if err != nil {
		return model.Job{}, err
	}
	job.Attachments = atts

	return job, nil
}

// ListJobs returns all jobs ordered by date then time (all-day jobs first),
// each with its resolved attachment list.
func (s *Store) ListJobs(ctx context.Context) ([]model.Job, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+jobColumns+` FROM jobs ORDER BY date, time, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	jobs := make([]model.Job, 0)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate jobs: %w", err)
	}

	for i := range jobs {
		atts, err := s.listAttachments(ctx, jobs[i].ID)
		if err != nil {
			return nil, err
		}
		jobs[i].Attachments = atts
	}

	return jobs, nil
}

func (s *Store) listAttachments(ctx context.Context, jobID int64) ([]model.Attachment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, job_id, filename, stored_name, mime_type, size, created_at
		FROM attachments WHERE job_id = ? ORDER BY id`, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}
	defer rows.Close()

	atts := make([]model.Attachment, 0)
	for rows.Next() {
		var att model.Attachment
		if err := rows.Scan(&att.ID, &att.JobID, &att.Filename, &att.StoredName,
			&att.MimeType, &att.Size, &att.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan attachment: %w", err)
		}
		atts = append(atts, att)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attachments: %w", err)
	}

	return atts, nil
}

func insertAttachments(ctx context.Context, tx *sql.Tx, jobID int64, atts []NewAttachment, now time.Time) error {
	for _, att := range atts {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO attachments (job_id, filename, stored_name, mime_type, size, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			jobID, att.Filename, att.StoredName, att.MimeType, att.Size, now); err != nil {
			return fmt.Errorf("failed to insert attachment %q: %w", att.Filename, err)
		}
	}
	return nil
}

func listStoredNames(ctx context.Context, tx *sql.Tx, jobID int64) ([]string, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT stored_name FROM attachments WHERE job_id = ?`, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stored names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan stored name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate stored names: %w", err)
	}

	return names, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanJob(row scanner) (model.Job, error) {
	var job model.Job
	var clock sql.NullString
	var category, status string

	err := row.Scan(&job.ID, &job.Date, &clock, &category, &job.Title,
		&job.Customer, &job.Contact, &job.Vehicle, &job.License, &job.Notes,
		&job.WorkUnits, &job.LoanerCar, &job.TireStorage, &status,
		&job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return model.Job{}, err
	}

	if clock.Valid {
		value := clock.String
		job.Time = &value
	}
	job.Category = model.Category(category)
	job.Status = model.Status(status)

	return job, nil
}

func nullable(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}
