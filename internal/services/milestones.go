package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/timeline"
)

// reminderHour is the time of day (UTC) seeded reminders fire.
const reminderHour = 9

const supplementWeeksAhead = 4

type milestone struct {
	key         string
	kind        string
	title       string
	description string
	priority    string
	week        int
	// lastWeek is the final gestational week in which the milestone is
	// still useful.
	lastWeek int
}

var milestones = []milestone{
	{
		key: "first_antenatal_visit", kind: models.ReminderClinicVisit, priority: models.PriorityHigh,
		title:       "First antenatal visit",
		description: "Book your first antenatal clinic visit to confirm the pregnancy and start routine checks.",
		week:        10, lastWeek: 12,
	},
	{
		key: "dating_scan", kind: models.ReminderUltrasound, priority: models.PriorityHigh,
		title:       "Dating ultrasound",
		description: "An early scan confirms how far along you are and your due date.",
		week:        12, lastWeek: 14,
	},
	{
		key: "anomaly_scan", kind: models.ReminderUltrasound, priority: models.PriorityHigh,
		title:       "Anomaly scan",
		description: "The mid-pregnancy scan checks your baby's growth and development.",
		week:        20, lastWeek: 22,
	},
	{
		key: "glucose_test", kind: models.ReminderClinicVisit, priority: models.PriorityMedium,
		title:       "Glucose screening",
		description: "A blood sugar test screens for gestational diabetes.",
		week:        26, lastWeek: 28,
	},
	{
		key: "tdap_vaccination", kind: models.ReminderVaccination, priority: models.PriorityMedium,
		title:       "Tetanus/Tdap vaccination",
		description: "Ask your clinic for the tetanus and whooping cough vaccine.",
		week:        28, lastWeek: 32,
	},
	{
		key: "growth_scan", kind: models.ReminderUltrasound, priority: models.PriorityMedium,
		title:       "Growth scan",
		description: "A third trimester scan checks your baby's position and growth.",
		week:        32, lastWeek: 34,
	},
	{
		key: "birth_plan", kind: models.ReminderDeliveryPrep, priority: models.PriorityMedium,
		title:       "Prepare your birth plan",
		description: "Talk to your midwife about where and how you would like to give birth.",
		week:        34, lastWeek: 37,
	},
	{
		key: "hospital_bag", kind: models.ReminderDeliveryPrep, priority: models.PriorityLow,
		title:       "Pack your hospital bag",
		description: "Have documents, clothes and baby essentials ready to go.",
		week:        36, lastWeek: 38,
	},
}

// ReminderPrefs selects which families of reminders are planned.
type ReminderPrefs struct {
	Appointments bool
	Supplements  bool
}

// PlanReminders returns the milestone reminders due from now on for the given
// timeline, sorted in listing order. The result is deterministic for a given
// timeline, prefs and day.
func PlanReminders(tl timeline.Result, prefs ReminderPrefs, now time.Time) []models.Reminder {
	var planned []models.Reminder

	if prefs.Appointments {
		for _, m := range milestones {
			closes := timeline.DateOfWeek(tl.LMP, m.lastWeek+1)
			at := scheduleFor(timeline.DateOfWeek(tl.LMP, m.week), now)
			if !at.Before(closes) {
				continue
			}
			planned = append(planned, models.Reminder{
				MilestoneKey: m.key,
				Kind:         m.kind,
				Title:        m.title,
				Description:  m.description,
				Priority:     m.priority,
				ScheduledAt:  at,
			})
		}
	}

	if prefs.Supplements {
		last := tl.CurrentWeek + supplementWeeksAhead - 1
		if maxWeek := timeline.GestationDays / 7; last > maxWeek {
			last = maxWeek
		}
		for week := tl.CurrentWeek; week <= last; week++ {
			planned = append(planned, models.Reminder{
				MilestoneKey: fmt.Sprintf("supplement:w%d", week),
				Kind:         models.ReminderSupplement,
				Title:        fmt.Sprintf("Week %d supplements", week),
				Description:  "Keep taking your daily iron and folic acid supplements.",
				Priority:     models.PriorityMedium,
				ScheduledAt:  scheduleFor(timeline.DateOfWeek(tl.LMP, week), now),
			})
		}
	}

	sort.SliceStable(planned, func(i, j int) bool {
		return reminderLess(planned[i], planned[j])
	})
	return planned
}

// scheduleFor fires on the target day, or the next morning when the target
// has already passed.
func scheduleFor(target, now time.Time) time.Time {
	at := atHour(target)
	if at.Before(now) {
		return atHour(timeline.Day(now).AddDate(0, 0, 1))
	}
	return at
}

func atHour(day time.Time) time.Time {
	return timeline.Day(day).Add(reminderHour * time.Hour)
}

// reminderLess is the upcoming-list order: earliest first, then higher
// priority, then creation order.
func reminderLess(a, b models.Reminder) bool {
	if !a.ScheduledAt.Equal(b.ScheduledAt) {
		return a.ScheduledAt.Before(b.ScheduledAt)
	}
	if ra, rb := models.PriorityRank(a.Priority), models.PriorityRank(b.Priority); ra != rb {
		return ra > rb
	}
	return a.CreatedAt.Before(b.CreatedAt)
}
