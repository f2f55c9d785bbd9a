// Package timeline computes gestational age from a last menstrual period or
// an expected due date.
package timeline

import (
	"fmt"
	"math"
	"time"

	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/errs"
)

// GestationDays is the 40-week convention between LMP and due date.
const GestationDays = 280

// maxDueDateDrift bounds how far an explicit due date may sit from the
// LMP-derived one.
const maxDueDateDrift = 6 * 7

const (
	firstTrimesterLastWeek  = 12
	secondTrimesterLastWeek = 26
)

type Result struct {
	LMP         time.Time `json:"last_menstrual_period"`
	DueDate     time.Time `json:"due_date"`
	CurrentWeek int       `json:"current_week"`
	Trimester   int       `json:"trimester"`
}

// Compute derives the current week, trimester and due date. lmp and
// explicitDueDate are optional but at least one must be set.
func Compute(lmp, explicitDueDate *time.Time, today time.Time) (Result, error) {
	if lmp == nil && explicitDueDate == nil {
		return Result{}, fmt.Errorf("%w: last menstrual period or due date is required", errs.ErrInvalidInput)
	}

	var start, due time.Time
	switch {
	case lmp != nil && explicitDueDate != nil:
		start = Day(*lmp)
		due = Day(*explicitDueDate)
		if !due.After(start) {
			return Result{}, fmt.Errorf("%w: due date %s is not after last menstrual period %s",
				errs.ErrInvalidInput, due.Format(time.DateOnly), start.Format(time.DateOnly))
		}
		expected := start.AddDate(0, 0, GestationDays)
		if drift := math.Abs(due.Sub(expected).Hours() / 24); drift > maxDueDateDrift {
			return Result{}, fmt.Errorf("%w: due date %s does not match last menstrual period %s",
				errs.ErrInvalidInput, due.Format(time.DateOnly), start.Format(time.DateOnly))
		}
	case lmp != nil:
		start = Day(*lmp)
		due = start.AddDate(0, 0, GestationDays)
	default:
		due = Day(*explicitDueDate)
		start = due.AddDate(0, 0, -GestationDays)
	}

	day := Day(today)
	if day.Before(start) {
		return Result{}, fmt.Errorf("%w: last menstrual period %s is after today", errs.ErrInvalidInput, start.Format(time.DateOnly))
	}

	week := WeekAt(start, day)
	return Result{
		LMP:         start,
		DueDate:     due,
		CurrentWeek: week,
		Trimester:   TrimesterForWeek(week),
	}, nil
}

// WeekAt returns the 1-based gestational week on day for a pregnancy that
// started at lmp.
func WeekAt(lmp, day time.Time) int {
	elapsed := math.Ceil(day.Sub(lmp).Hours() / 24)
	week := int(math.Floor(elapsed/7)) + 1
	if week < 1 {
		return 1
	}
	return week
}

func TrimesterForWeek(week int) int {
	switch {
	case week <= firstTrimesterLastWeek:
		return 1
	case week <= secondTrimesterLastWeek:
		return 2
	default:
		return 3
	}
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateOfWeek returns the first day of the given gestational week.
func DateOfWeek(lmp time.Time, week int) time.Time {
	return Day(lmp).AddDate(0, 0, (week-1)*7)
}
