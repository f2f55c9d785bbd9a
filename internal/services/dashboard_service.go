package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/errs"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/timeline"
)

const (
	dashboardReminderLimit = 5
	dashboardSymptomLimit  = 5
	dashboardContentLimit  = 3
)

const (
	SourcePersisted = "persisted"
	SourceLocal     = "local"
)

// DashboardSource selects where a dashboard's data comes from: the store
// for a signed-in owner, or a setup payload held by the client.
type DashboardSource interface {
	dashboardSource()
}

type PersistedSource struct {
	OwnerID uuid.UUID
}

type LocalSource struct {
	Setup dto.LocalSetup
}

func (PersistedSource) dashboardSource() {}
func (LocalSource) dashboardSource()     {}

type DashboardService struct {
	db            *gorm.DB
	profiles      *ProfileService
	reminders     *ReminderService
	symptoms      *SymptomService
	contacts      *ContactService
	content       *ContentService
	subscriptions *SubscriptionService
}

func NewDashboardService(
	db *gorm.DB,
	profiles *ProfileService,
	reminders *ReminderService,
	symptoms *SymptomService,
	contacts *ContactService,
	content *ContentService,
	subscriptions *SubscriptionService,
) *DashboardService {
	return &DashboardService{
		db:            db,
		profiles:      profiles,
		reminders:     reminders,
		symptoms:      symptoms,
		contacts:      contacts,
		content:       content,
		subscriptions: subscriptions,
	}
}

func (s *DashboardService) BuildDashboard(ctx context.Context, source DashboardSource, now time.Time) (*dto.DashboardView, error) {
	now = now.UTC()
	switch src := source.(type) {
	case PersistedSource:
		defer observeBuild(SourcePersisted, time.Now())
		return s.buildPersisted(ctx, src.OwnerID, now)
	case LocalSource:
		defer observeBuild(SourceLocal, time.Now())
		return buildLocal(src.Setup, now)
	default:
		return nil, fmt.Errorf("%w: unknown dashboard source", errs.ErrInvalidInput)
	}
}

func observeBuild(source string, started time.Time) {
	metrics.DashboardBuild.WithLabelValues(source).Observe(time.Since(started).Seconds())
}

func (s *DashboardService) buildPersisted(ctx context.Context, ownerID uuid.UUID, now time.Time) (*dto.DashboardView, error) {
	var user models.User
	found, err := findOne(s.db.WithContext(ctx).Where("id = ?", ownerID), &user)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("%w: user", errs.ErrNotFound)
	}

	me := userResponse(&user)
	view := &dto.DashboardView{
		Source:             SourcePersisted,
		User:               &me,
		UpcomingReminders:  []models.Reminder{},
		RecentSymptoms:     []models.SymptomLog{},
		RecommendedContent: []models.HealthContent{},
		EmergencyContacts:  []models.EmergencyContact{},
		Subscription:       *s.subscriptions.freeSubscription(ownerID),
		GeneratedAt:        now,
	}

	profile, tl, err := s.profiles.FindActive(ctx, ownerID, now)
	if err != nil {
		slog.Warn("dashboard profile unavailable", "owner_id", ownerID.String(), "error", err)
	}
	trimester := 1
	var profileID *uuid.UUID
	if profile != nil {
		view.Profile = profile
		view.Hospital = profile.Hospital
		profileID = &profile.ID
	}
	if tl != nil {
		view.Timeline = tl
		trimester = tl.Trimester
	}

	g, gctx := errgroup.WithContext(ctx)
	fetch := func(name string, fn func(context.Context) error) {
		g.Go(func() error {
			if err := fn(gctx); err != nil {
				slog.Warn("dashboard section unavailable", "owner_id", ownerID.String(), "section", name, "error", err)
			}
			return nil
		})
	}

	fetch("reminders", func(ctx context.Context) error {
		reminders, err := s.reminders.ListUpcoming(ctx, ownerID, profileID, now, dashboardReminderLimit)
		if err == nil {
			view.UpcomingReminders = reminders
		}
		return err
	})
	fetch("symptoms", func(ctx context.Context) error {
		symptoms, err := s.symptoms.List(ctx, ownerID, dashboardSymptomLimit)
		if err == nil {
			view.RecentSymptoms = symptoms
		}
		return err
	})
	fetch("content", func(ctx context.Context) error {
		content, err := s.content.Recommended(ctx, trimester, dashboardContentLimit)
		if err == nil {
			view.RecommendedContent = content
		}
		return err
	})
	fetch("contacts", func(ctx context.Context) error {
		contacts, err := s.contacts.List(ctx, ownerID)
		if err == nil {
			view.EmergencyContacts = contacts
		}
		return err
	})
	fetch("subscription", func(ctx context.Context) error {
		sub, err := s.subscriptions.GetActiveSubscription(ctx, ownerID)
		if err == nil {
			view.Subscription = *sub
		}
		return err
	})

	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return view, nil
}

// buildLocal assembles a dashboard from the client's setup payload without
// touching the store.
func buildLocal(setup dto.LocalSetup, now time.Time) (*dto.DashboardView, error) {
	lmp, err := dto.ParseDate(setup.LastPeriod)
	if err != nil {
		return nil, err
	}
	due, err := dto.ParseDate(setup.DueDate)
	if err != nil {
		return nil, err
	}
	tl, err := timeline.Compute(lmp, due, now)
	if err != nil {
		return nil, err
	}

	prefs := ReminderPrefs{
		Appointments: boolOr(setup.Preferences.AppointmentReminders, true),
		Supplements:  boolOr(setup.Preferences.MedicationReminders, true),
	}
	reminders := PlanReminders(tl, prefs, now)
	if len(reminders) > dashboardReminderLimit {
		reminders = reminders[:dashboardReminderLimit]
	}

	return &dto.DashboardView{
		Source:             SourceLocal,
		Timeline:           &tl,
		Hospital:           strings.TrimSpace(setup.Hospital),
		UpcomingReminders:  reminders,
		RecentSymptoms:     []models.SymptomLog{},
		RecommendedContent: []models.HealthContent{},
		EmergencyContacts:  localContacts(setup.EmergencyContacts),
		Subscription: models.Subscription{
			PlanType: models.PlanFree,
			Status:   models.SubscriptionActive,
		},
		GeneratedAt: now,
	}, nil
}

// localContacts keeps the first contact flagged primary and lists it first.
func localContacts(input []dto.LocalContact) []models.EmergencyContact {
	contacts := make([]models.EmergencyContact, 0, len(input))
	seenPrimary := false
	for _, c := range input {
		name := strings.TrimSpace(c.Name)
		phone := strings.TrimSpace(c.Phone)
		if name == "" || phone == "" {
			continue
		}
		primary := c.IsPrimary && !seenPrimary
		seenPrimary = seenPrimary || primary
		contacts = append(contacts, models.EmergencyContact{
			Name:         name,
			Phone:        phone,
			Relationship: strings.TrimSpace(c.Relationship),
			IsPrimary:    primary,
		})
	}
	sort.SliceStable(contacts, func(i, j int) bool {
		return contacts[i].IsPrimary && !contacts[j].IsPrimary
	})
	return contacts
}
