// Package schedule decides which calendar dates the workshop can accept work
// on. It combines the weekend rule with the regional holiday set and the
// per-category day-of-week restrictions.
package schedule

import (
	"fmt"
	"time"

	"github.com/username/workshop-planner/internal/holiday"
	"github.com/username/workshop-planner/internal/model"
	"github.com/username/workshop-planner/pkg/dateutil"
	"go.uber.org/zap"
)

// Search directions for NearestWorkingDay.
const (
	Forward  = 1
	Backward = -1
)

// Safety cap for the nearest-working-day walk. One year of consecutive
// non-working days cannot occur under any rule set.
const maxSearchDays = 366

// DayVerdict is the human-readable explanation for a non-working day.
type DayVerdict struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Engine answers date eligibility questions.
type Engine struct {
	holidays *holiday.Calculator
	logger   *zap.Logger
}

// NewEngine creates an Engine backed by the given holiday calculator.
func NewEngine(holidays *holiday.Calculator, logger *zap.Logger) *Engine {
	return &Engine{
		holidays: holidays,
		logger:   logger,
	}
}

// IsWorkingDay reports whether the workshop is open on the given date.
// Weekends and regional holidays are closed.
func (e *Engine) IsWorkingDay(date time.Time) bool {
	if dateutil.IsWeekend(date) {
		return false
	}
	_, isHoliday := e.holidays.Lookup(date)
	return !isHoliday
}

// IsCategoryAvailable reports whether the given category may be scheduled on
// the given date. Statutory inspections only run Tuesday through Friday.
func (e *Engine) IsCategoryAvailable(category model.Category, date time.Time) bool {
	if !e.IsWorkingDay(date) {
		return false
	}
	if category == model.CategoryInspection {
		weekday := date.Weekday()
		return weekday >= time.Tuesday && weekday <= time.Friday
	}
	return true
}

// NearestWorkingDay returns date itself if it is a working day, otherwise the
// nearest working day stepping one day at a time in the given direction
// (Forward or Backward).
func (e *Engine) NearestWorkingDay(date time.Time, direction int) time.Time {
	if direction >= 0 {
		direction = Forward
	} else {
		direction = Backward
	}

	candidate := dateutil.StartOfDay(date)
	for i := 0; i < maxSearchDays; i++ {
		if e.IsWorkingDay(candidate) {
			return candidate
		}
		candidate = candidate.AddDate(0, 0, direction)
	}

	e.logger.Warn("No working day found within search window",
		zap.String("date", dateutil.FormatDate(date)),
		zap.Int("direction", direction))

	return candidate
}

// DescribeNonWorkingDay explains why a date is not a working day. A date that
// is both a weekend day and a holiday is reported as the holiday.
func (e *Engine) DescribeNonWorkingDay(date time.Time) DayVerdict {
	if name, ok := e.holidays.Lookup(date); ok {
		return DayVerdict{
			Title: "Feiertag",
			Message: fmt.Sprintf("%s ist ein Feiertag (%s). An diesem Tag können keine Termine angelegt werden.",
				date.Format("02.01.2006"), name),
		}
	}
	if dateutil.IsWeekend(date) {
		return DayVerdict{
			Title: "Wochenende",
			Message: fmt.Sprintf("%s fällt auf ein Wochenende. An diesem Tag können keine Termine angelegt werden.",
				date.Format("02.01.2006")),
		}
	}
	return DayVerdict{
		Title:   "Werktag",
		Message: fmt.Sprintf("%s ist ein Werktag.", date.Format("02.01.2006")),
	}
}
