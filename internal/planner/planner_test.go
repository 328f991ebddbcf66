package planner

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/username/workshop-planner/internal/apperr"
	"github.com/username/workshop-planner/internal/holiday"
	"github.com/username/workshop-planner/internal/model"
	"github.com/username/workshop-planner/internal/schedule"
	"github.com/username/workshop-planner/internal/storage"
	"github.com/username/workshop-planner/internal/store"
	"go.uber.org/zap"
)

type fixture struct {
	planner *Planner
	files   *storage.Storage
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := zap.NewNop()
	dir := t.TempDir()

	st, err := store.Open(filepath.Join(dir, "planner.db"), logger)
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	t.Cleanup(func() { st.Close() })

	files, err := storage.New(filepath.Join(dir, "uploads"), logger)
	if err != nil {
		t.Fatalf("storage.New() error = %v", err)
	}

	engine := schedule.NewEngine(holiday.NewCalculator(holiday.GermanyNRW(), logger), logger)

	return &fixture{
		planner: New(st, files, engine, logger),
		files:   files,
	}
}

func str(s string) *string { return &s }

func validInput() JobInput {
	return JobInput{
		Date:     str("2024-12-23"), // a working Monday
		Category: str("routine"),
		Title:    str("Inspektion 60k"),
	}
}

func upload(name, content string) Upload {
	return Upload{Filename: name, MimeType: "text/plain", Content: strings.NewReader(content)}
}

func TestCreateJob(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	job, err := f.planner.CreateJob(ctx, validInput(), []Upload{upload("report.txt", "befund")})
	if err != nil {
		t.Fatalf("CreateJob() error = %v", err)
	}

	if job.Status != model.StatusPending {
		t.Errorf("Status = %q, want pending", job.Status)
	}
	if len(job.Attachments) != 1 {
		t.Fatalf("Attachments = %d, want 1", len(job.Attachments))
	}
	att := job.Attachments[0]
	if att.Filename != "report.txt" {
		t.Errorf("Filename = %q, want report.txt", att.Filename)
	}
	if att.Size != int64(len("befund")) {
		t.Errorf("Size = %d, want %d", att.Size, len("befund"))
	}
	if !f.files.Exists(att.StoredName) {
		t.Errorf("stored file %q missing on disk", att.StoredName)
	}
}

func TestCreateJob_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*JobInput)
	}{
		{"Holiday rejected", func(in *JobInput) { in.Date = str("2024-12-25") }},
		{"Weekend rejected", func(in *JobInput) { in.Date = str("2024-12-21") }},
		{"Unparseable date rejected", func(in *JobInput) { in.Date = str("soon") }},
		{"Missing date rejected", func(in *JobInput) { in.Date = nil }},
		{"Invalid category rejected", func(in *JobInput) { in.Category = str("paintjob") }},
		{"Missing category rejected", func(in *JobInput) { in.Category = nil }},
		{"Inspection on Monday rejected", func(in *JobInput) { in.Category = str("inspection") }},
		{"Empty title rejected", func(in *JobInput) { in.Title = str("   ") }},
		{"Missing title rejected", func(in *JobInput) { in.Title = nil }},
		{"Invalid time rejected", func(in *JobInput) { in.Time = str("later") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)

			_, err := f.planner.CreateJob(ctx, in, nil)

			if !apperr.IsValidation(err) {
				t.Errorf("CreateJob() error = %v, want ValidationError", err)
			}
		})
	}
}

func TestCreateJob_InspectionTuesdayThroughFriday(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := validInput()
	in.Date = str("2024-12-17") // Tuesday
	in.Category = str("inspection")

	if _, err := f.planner.CreateJob(ctx, in, nil); err != nil {
		t.Errorf("CreateJob() inspection on Tuesday error = %v, want success", err)
	}
}

func TestCreateJob_NormalizesInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := validInput()
	in.Date = str("23.12.2024")
	in.Time = str("08:30")
	in.Customer = str("  Müller  ")
	in.LoanerCar = str("ja")
	in.TireStorage = str("off")
	in.Status = str("arrived")

	job, err := f.planner.CreateJob(ctx, in, nil)
	if err != nil {
		t.Fatalf("CreateJob() error = %v", err)
	}

	if job.Date != "2024-12-23" {
		t.Errorf("Date = %q, want 2024-12-23", job.Date)
	}
	if job.Time == nil || *job.Time != "08:30" {
		t.Errorf("Time = %v, want 08:30", job.Time)
	}
	if job.Customer != "Müller" {
		t.Errorf("Customer = %q, want trimmed", job.Customer)
	}
	if !job.LoanerCar {
		t.Error("LoanerCar = false, want true for \"ja\"")
	}
	if job.TireStorage {
		t.Error("TireStorage = true, want false for \"off\"")
	}
	if job.Status != model.StatusArrived {
		t.Errorf("Status = %q, want arrived", job.Status)
	}
}

func TestCreateJob_InvalidStatusFallsBackToPending(t *testing.T) {
	f := newFixture(t)

	in := validInput()
	in.Status = str("parked")

	job, err := f.planner.CreateJob(context.Background(), in, nil)
	if err != nil {
		t.Fatalf("CreateJob() error = %v", err)
	}
	if job.Status != model.StatusPending {
		t.Errorf("Status = %q, want pending fallback", job.Status)
	}
}

func TestUpdateJob_MergeKeepsUnprovidedFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := validInput()
	in.Customer = str("Schmidt")
	created, err := f.planner.CreateJob(ctx, in, nil)
	if err != nil {
		t.Fatalf("CreateJob() error = %v", err)
	}

	updated, err := f.planner.UpdateJob(ctx, created.ID, JobInput{Title: str("Neuer Titel")}, nil, false)
	if err != nil {
		t.Fatalf("UpdateJob() error = %v", err)
	}

	if updated.Title != "Neuer Titel" {
		t.Errorf("Title = %q, want Neuer Titel", updated.Title)
	}
	if updated.Customer != "Schmidt" {
		t.Errorf("Customer = %q, want unchanged Schmidt", updated.Customer)
	}
	if updated.Date != created.Date {
		t.Errorf("Date = %q, want unchanged %q", updated.Date, created.Date)
	}
}

func TestUpdateJob_RevalidatesMergedPayload(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.planner.CreateJob(ctx, validInput(), nil)
	if err != nil {
		t.Fatalf("CreateJob() error = %v", err)
	}

	// Moving a routine job onto a holiday must fail.
	_, err = f.planner.UpdateJob(ctx, created.ID, JobInput{Date: str("2024-12-25")}, nil, false)
	if !apperr.IsValidation(err) {
		t.Errorf("UpdateJob() onto holiday error = %v, want ValidationError", err)
	}

	// Switching to inspection while the job sits on a Monday must fail.
	_, err = f.planner.UpdateJob(ctx, created.ID, JobInput{Category: str("inspection")}, nil, false)
	if !apperr.IsValidation(err) {
		t.Errorf("UpdateJob() to inspection on Monday error = %v, want ValidationError", err)
	}
}

func TestUpdateJob_ReplaceAttachments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.planner.CreateJob(ctx, validInput(), []Upload{upload("old.txt", "alt")})
	if err != nil {
		t.Fatalf("CreateJob() error = %v", err)
	}
	oldStored := created.Attachments[0].StoredName

	updated, err := f.planner.UpdateJob(ctx, created.ID, JobInput{}, []Upload{upload("new.txt", "neu")}, true)
	if err != nil {
		t.Fatalf("UpdateJob() error = %v", err)
	}

	if len(updated.Attachments) != 1 || updated.Attachments[0].Filename != "new.txt" {
		t.Fatalf("Attachments = %+v, want exactly new.txt", updated.Attachments)
	}
	if f.files.Exists(oldStored) {
		t.Errorf("old stored file %q still exists after replace", oldStored)
	}
	if !f.files.Exists(updated.Attachments[0].StoredName) {
		t.Error("new stored file missing on disk")
	}
}

func TestUpdateJob_AppendAttachments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.planner.CreateJob(ctx, validInput(), []Upload{upload("old.txt", "alt")})
	if err != nil {
		t.Fatalf("CreateJob() error = %v", err)
	}
	oldStored := created.Attachments[0].StoredName

	updated, err := f.planner.UpdateJob(ctx, created.ID, JobInput{}, []Upload{upload("new.txt", "neu")}, false)
	if err != nil {
		t.Fatalf("UpdateJob() error = %v", err)
	}

	if len(updated.Attachments) != 2 {
		t.Fatalf("Attachments = %d, want 2 (appended)", len(updated.Attachments))
	}
	if !f.files.Exists(oldStored) {
		t.Errorf("old stored file %q removed on append", oldStored)
	}
}

func TestUpdateJob_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.planner.UpdateJob(context.Background(), 999, validInput(), nil, false)

	if !apperr.IsNotFound(err) {
		t.Errorf("UpdateJob(999) error = %v, want NotFoundError", err)
	}
}

func TestUpdateStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.planner.CreateJob(ctx, validInput(), nil)
	if err != nil {
		t.Fatalf("CreateJob() error = %v", err)
	}

	t.Run("Explicit set", func(t *testing.T) {
		job, err := f.planner.UpdateStatus(ctx, created.ID, "arrived")
		if err != nil {
			t.Fatalf("UpdateStatus() error = %v", err)
		}
		if job.Status != model.StatusArrived {
			t.Errorf("Status = %q, want arrived", job.Status)
		}
	})

	t.Run("Cycle after explicit set", func(t *testing.T) {
		job, err := f.planner.UpdateStatus(ctx, created.ID, "")
		if err != nil {
			t.Fatalf("UpdateStatus() error = %v", err)
		}
		if job.Status != model.StatusDone {
			t.Errorf("Status = %q, want done", job.Status)
		}
	})

	t.Run("Three cycles return to start", func(t *testing.T) {
		start, err := f.planner.GetJob(ctx, created.ID)
		if err != nil {
			t.Fatalf("GetJob() error = %v", err)
		}

		var job model.Job
		for i := 0; i < 3; i++ {
			job, err = f.planner.UpdateStatus(ctx, created.ID, "")
			if err != nil {
				t.Fatalf("UpdateStatus() cycle %d error = %v", i, err)
			}
		}
		if job.Status != start.Status {
			t.Errorf("Status after three cycles = %q, want %q", job.Status, start.Status)
		}
	})

	t.Run("Invalid status rejected", func(t *testing.T) {
		_, err := f.planner.UpdateStatus(ctx, created.ID, "finished")
		if !apperr.IsValidation(err) {
			t.Errorf("UpdateStatus() error = %v, want ValidationError", err)
		}
	})

	t.Run("Missing job", func(t *testing.T) {
		_, err := f.planner.UpdateStatus(ctx, 999, "done")
		if !apperr.IsNotFound(err) {
			t.Errorf("UpdateStatus(999) error = %v, want NotFoundError", err)
		}
	})
}

func TestDeleteJob_RemovesFiles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.planner.CreateJob(ctx, validInput(), []Upload{
		upload("a.txt", "a"),
		upload("b.txt", "b"),
	})
	if err != nil {
		t.Fatalf("CreateJob() error = %v", err)
	}

	if err := f.planner.DeleteJob(ctx, created.ID); err != nil {
		t.Fatalf("DeleteJob() error = %v", err)
	}

	if _, err := f.planner.GetJob(ctx, created.ID); !apperr.IsNotFound(err) {
		t.Errorf("GetJob() after delete error = %v, want NotFoundError", err)
	}
	for _, att := range created.Attachments {
		if f.files.Exists(att.StoredName) {
			t.Errorf("stored file %q still exists after job deletion", att.StoredName)
		}
	}

	if err := f.planner.DeleteJob(ctx, created.ID); !apperr.IsNotFound(err) {
		t.Errorf("second DeleteJob() error = %v, want NotFoundError", err)
	}
}

func TestClipboard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("Create requires title and notes", func(t *testing.T) {
		if _, err := f.planner.CreateNote(ctx, "", "text"); !apperr.IsValidation(err) {
			t.Errorf("CreateNote() without title error = %v, want ValidationError", err)
		}
		if _, err := f.planner.CreateNote(ctx, "title", "  "); !apperr.IsValidation(err) {
			t.Errorf("CreateNote() without notes error = %v, want ValidationError", err)
		}
	})

	t.Run("Create list delete", func(t *testing.T) {
		note, err := f.planner.CreateNote(ctx, "Reifen", "Winterreifen einlagern")
		if err != nil {
			t.Fatalf("CreateNote() error = %v", err)
		}

		notes, err := f.planner.ListNotes(ctx)
		if err != nil {
			t.Fatalf("ListNotes() error = %v", err)
		}
		if len(notes) != 1 || notes[0].ID != note.ID {
			t.Errorf("ListNotes() = %+v, want the created note", notes)
		}

		if err := f.planner.DeleteNote(ctx, note.ID); err != nil {
			t.Fatalf("DeleteNote() error = %v", err)
		}
		if err := f.planner.DeleteNote(ctx, note.ID); !apperr.IsNotFound(err) {
			t.Errorf("second DeleteNote() error = %v, want NotFoundError", err)
		}
	})
}
