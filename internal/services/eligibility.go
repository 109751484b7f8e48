package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jinzhu/now"

	"github.com/example/oblako/internal/models"
)

// EligibilityStatus classifies whether a ledger entry is usable right now.
type EligibilityStatus string

const (
	EligibilityOK         EligibilityStatus = "eligible"
	EligibilityNotStarted EligibilityStatus = "not_started"
	EligibilityExpired    EligibilityStatus = "expired"
	EligibilityWaiting    EligibilityStatus = "waiting"
)

// EligibilityResult carries the classification plus, for waiting entries,
// the next instant the entry becomes usable.
type EligibilityResult struct {
	Status          EligibilityStatus `json:"status"`
	NextAvailableAt *time.Time        `json:"next_available_at,omitempty"`
}

// EvaluateEligibility decides whether a ledger entry is usable at the given
// instant. Date range is checked first, then the recurring daily windows. An
// entry with no windows is time-eligible whenever its date range allows.
// Pure computation, no I/O.
func EvaluateEligibility(entry *models.UserPackage, at time.Time) EligibilityResult {
	if entry.StartDate != nil && at.Before(*entry.StartDate) {
		return EligibilityResult{Status: EligibilityNotStarted, NextAvailableAt: entry.StartDate}
	}
	if entry.EndDate != nil && at.After(*entry.EndDate) {
		return EligibilityResult{Status: EligibilityExpired}
	}
	if len(entry.TimeWindows) == 0 {
		return EligibilityResult{Status: EligibilityOK}
	}

	minute := at.Hour()*60 + at.Minute()
	valid := false
	for _, w := range entry.TimeWindows {
		start, end, err := parseWindow(w)
		if err != nil {
			continue
		}
		valid = true
		if inWindow(minute, start, end) {
			return EligibilityResult{Status: EligibilityOK}
		}
	}
	if !valid {
		// Nothing parseable to restrict by.
		return EligibilityResult{Status: EligibilityOK}
	}

	next := nextWindowStart(entry.TimeWindows, at)
	return EligibilityResult{Status: EligibilityWaiting, NextAvailableAt: &next}
}

// inWindow checks containment of a minute-of-day in a window. A window whose
// start is later than its end wraps past midnight: 22:00-02:00 covers 23:30
// and 01:00 but not 12:00.
func inWindow(minute, start, end int) bool {
	if start <= end {
		return minute >= start && minute <= end
	}
	return minute >= start || minute <= end
}

// nextWindowStart returns the earliest upcoming window start: the first start
// later than now today, otherwise the earliest window of the next day.
func nextWindowStart(windows []models.TimeWindow, at time.Time) time.Time {
	minute := at.Hour()*60 + at.Minute()
	bestToday := -1
	bestAny := -1
	for _, w := range windows {
		start, _, err := parseWindow(w)
		if err != nil {
			continue
		}
		if start > minute && (bestToday == -1 || start < bestToday) {
			bestToday = start
		}
		if bestAny == -1 || start < bestAny {
			bestAny = start
		}
	}

	midnight := now.With(at).BeginningOfDay()
	if bestToday != -1 {
		return midnight.Add(time.Duration(bestToday) * time.Minute)
	}
	return midnight.AddDate(0, 0, 1).Add(time.Duration(bestAny) * time.Minute)
}

func parseWindow(w models.TimeWindow) (start, end int, err error) {
	start, err = parseClock(w.Start)
	if err != nil {
		return 0, 0, err
	}
	end, err = parseClock(w.End)
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// parseClock converts an HH:mm string into minutes since midnight.
func parseClock(clock string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(clock), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock value %q", clock)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid hour in %q", clock)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid minute in %q", clock)
	}
	return hour*60 + minute, nil
}
