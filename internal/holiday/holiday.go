// Package holiday computes the public holidays of a region for a given year.
// The set for one year is a pure function of the year and the region rule set,
// so results are memoized for the life of the process.
package holiday

import (
	"sync"
	"time"

	"github.com/username/workshop-planner/pkg/dateutil"
	"go.uber.org/zap"
)

// FixedDay is a holiday that falls on the same calendar date every year.
type FixedDay struct {
	Month time.Month
	Day   int
	Name  string
}

// EasterDay is a moveable holiday defined as an offset in days from Easter Sunday.
type EasterDay struct {
	Offset int
	Name   string
}

// Rules describes the holiday rule set of one region.
type Rules struct {
	Region         string
	Fixed          []FixedDay
	EasterRelative []EasterDay
}

// GermanyNRW returns the rule set for Germany / North Rhine-Westphalia.
func GermanyNRW() Rules {
	return Rules{
		Region: "DE-NW",
		Fixed: []FixedDay{
			{time.January, 1, "Neujahr"},
			{time.May, 1, "Tag der Arbeit"},
			{time.October, 3, "Tag der Deutschen Einheit"},
			{time.November, 1, "Allerheiligen"},
			{time.December, 25, "1. Weihnachtstag"},
			{time.December, 26, "2. Weihnachtstag"},
		},
		EasterRelative: []EasterDay{
			{-2, "Karfreitag"},
			{1, "Ostermontag"},
			{39, "Christi Himmelfahrt"},
			{50, "Pfingstmontag"},
			{60, "Fronleichnam"},
		},
	}
}

// Calculator resolves holiday sets per year and caches them.
type Calculator struct {
	rules  Rules
	logger *zap.Logger

	mu     sync.RWMutex
	byYear map[int]map[string]string // year → ISO date → holiday name
}

// NewCalculator creates a Calculator for the given rule set.
func NewCalculator(rules Rules, logger *zap.Logger) *Calculator {
	return &Calculator{
		rules:  rules,
		logger: logger,
		byYear: make(map[int]map[string]string),
	}
}

// HolidaysFor returns the holiday set for the given year, keyed by ISO date.
// The returned map is shared cache state and must not be mutated.
func (c *Calculator) HolidaysFor(year int) map[string]string {
	c.mu.RLock()
	if set, ok := c.byYear[year]; ok {
		c.mu.RUnlock()
		return set
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another caller may have filled the entry while we waited for the lock.
	if set, ok := c.byYear[year]; ok {
		return set
	}

	set := c.compute(year)
	c.byYear[year] = set

	c.logger.Debug("Holiday set computed",
		zap.String("region", c.rules.Region),
		zap.Int("year", year),
		zap.Int("holidays", len(set)))

	return set
}

// Lookup returns the holiday name for the given date, if it is a holiday.
func (c *Calculator) Lookup(date time.Time) (string, bool) {
	set := c.HolidaysFor(date.Year())
	name, ok := set[dateutil.FormatDate(date)]
	return name, ok
}

func (c *Calculator) compute(year int) map[string]string {
	set := make(map[string]string, len(c.rules.Fixed)+len(c.rules.EasterRelative))

	for _, fixed := range c.rules.Fixed {
		date := time.Date(year, fixed.Month, fixed.Day, 0, 0, 0, 0, time.UTC)
		set[dateutil.FormatDate(date)] = fixed.Name
	}

	easter := EasterSunday(year)
	for _, moveable := range c.rules.EasterRelative {
		date := easter.AddDate(0, 0, moveable.Offset)
		set[dateutil.FormatDate(date)] = moveable.Name
	}

	return set
}

// EasterSunday returns Easter Sunday of the given year in the Gregorian
// calendar, using the anonymous Gregorian computus (century/epact arithmetic).
func EasterSunday(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1

	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}
