package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/username/workshop-planner/internal/apperr"
	"github.com/username/workshop-planner/internal/model"
	"github.com/username/workshop-planner/internal/planner"
)

// Uploaded files travel under this multipart field name.
const attachmentsField = "attachments"

const maxUploadMemory = 32 << 20

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.planner.ListJobs(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, jobs)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	job, err := s.planner.GetJob(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	in, uploads, closeUploads, err := parseJobForm(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer closeUploads()

	job, err := s.planner.CreateJob(r.Context(), in, uploads)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, job)
}

func (s *Server) handleUpdateJob(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	in, uploads, closeUploads, err := parseJobForm(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer closeUploads()

	replace := false
	if value, ok := formValue(r.PostForm, "replaceAttachments"); ok {
		replace = model.ParseFormBool(value)
	}

	job, err := s.planner.UpdateJob(r.Context(), id, in, uploads, replace)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var body struct {
		Status string `json:"status"`
	}
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			s.writeError(w, r, apperr.Validationf("invalid request body"))
			return
		}
	}

	job, err := s.planner.UpdateStatus(r.Context(), id, body.Status)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.planner.DeleteJob(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// parseJobForm reads the multipart (or urlencoded) job form. Only fields that
// were actually sent end up non-nil in the JobInput, which is what gives
// updates their keep-unsent-fields behavior.
func parseJobForm(r *http.Request) (planner.JobInput, []planner.Upload, func(), error) {
	noop := func() {}

	err := r.ParseMultipartForm(maxUploadMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
	}
	if err != nil {
		return planner.JobInput{}, nil, noop, apperr.Validationf("invalid form data")
	}

	in := planner.JobInput{
		Date:        formPtr(r.PostForm, "date"),
		Time:        formPtr(r.PostForm, "time"),
		Category:    formPtr(r.PostForm, "category"),
		Title:       formPtr(r.PostForm, "title"),
		Customer:    formPtr(r.PostForm, "customer"),
		Contact:     formPtr(r.PostForm, "contact"),
		Vehicle:     formPtr(r.PostForm, "vehicle"),
		License:     formPtr(r.PostForm, "license"),
		Notes:       formPtr(r.PostForm, "notes"),
		WorkUnits:   formPtr(r.PostForm, "aw"),
		LoanerCar:   formPtr(r.PostForm, "loanerCar"),
		TireStorage: formPtr(r.PostForm, "tireStorage"),
		Status:      formPtr(r.PostForm, "status"),
	}

	if r.MultipartForm == nil {
		return in, nil, noop, nil
	}

	var uploads []planner.Upload
	var open []io.Closer
	for _, header := range r.MultipartForm.File[attachmentsField] {
		f, err := header.Open()
		if err != nil {
			for _, c := range open {
				c.Close()
			}
			return planner.JobInput{}, nil, noop, apperr.Validationf(
				"failed to read upload %q", header.Filename)
		}
		open = append(open, f)
		uploads = append(uploads, planner.Upload{
			Filename: header.Filename,
			MimeType: header.Header.Get("Content-Type"),
			Content:  f,
		})
	}

	closeUploads := func() {
		for _, c := range open {
			c.Close()
		}
	}
	return in, uploads, closeUploads, nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return 0, apperr.Validationf("invalid id")
	}
	return id, nil
}

func formValue(values url.Values, key string) (string, bool) {
	if _, ok := values[key]; !ok {
		return "", false
	}
	return values.Get(key), true
}

func formPtr(values url.Values, key string) *string {
	value, ok := formValue(values, key)
	if !ok {
		return nil
	}
	return &value
}
