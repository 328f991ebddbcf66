package server

import (
	"net/http"

	"github.com/username/workshop-planner/internal/apperr"
	"github.com/username/workshop-planner/internal/model"
	"github.com/username/workshop-planner/internal/schedule"
	"github.com/username/workshop-planner/pkg/dateutil"
)

type scheduleCheckResponse struct {
	Date               string `json:"date"`
	WorkingDay         bool   `json:"workingDay"`
	CategoryAvailable  *bool  `json:"categoryAvailable,omitempty"`
	Title              string `json:"title"`
	Message            string `json:"message"`
	NextWorkingDay     string `json:"nextWorkingDay"`
	PreviousWorkingDay string `json:"previousWorkingDay"`
}

// handleScheduleCheck answers the date eligibility question the booking form
// asks before submitting: is this date open, may this category run on it, and
// which working days are nearby.
func (s *Server) handleScheduleCheck(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("date")
	date, err := dateutil.ParseDate(raw)
	if err != nil {
		s.writeError(w, r, apperr.Validationf("invalid date: %q", raw))
		return
	}

	verdict := s.engine.DescribeNonWorkingDay(date)
	resp := scheduleCheckResponse{
		Date:               dateutil.FormatDate(date),
		WorkingDay:         s.engine.IsWorkingDay(date),
		Title:              verdict.Title,
		Message:            verdict.Message,
		NextWorkingDay:     dateutil.FormatDate(s.engine.NearestWorkingDay(date, schedule.Forward)),
		PreviousWorkingDay: dateutil.FormatDate(s.engine.NearestWorkingDay(date, schedule.Backward)),
	}

	if raw := r.URL.Query().Get("category"); raw != "" {
		category, err := model.ParseCategory(raw)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		available := s.engine.IsCategoryAvailable(category, date)
		resp.CategoryAvailable = &available
	}

	s.writeJSON(w, http.StatusOK, resp)
}
