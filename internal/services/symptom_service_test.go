package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/errs"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/models"
)

func TestLogSymptomAttachesActiveProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "symptoms@mamacare.test")
	profile := env.createProfile(t, user.ID, "2024-01-01")

	entry, err := env.symptoms.Log(ctx, user.ID, &dto.SymptomRequest{Symptom: " Nausea ", Severity: "Moderate"}, scenarioNow)
	require.NoError(t, err)

	require.NotNil(t, entry.ProfileID)
	assert.Equal(t, profile.ID, *entry.ProfileID)
	assert.Equal(t, "Nausea", entry.Symptom)
	assert.Equal(t, models.SeverityModerate, entry.Severity)
	assert.Equal(t, scenarioNow, entry.Date)
}

func TestLogSymptomWithoutProfile(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "noprofile@mamacare.test")

	entry, err := env.symptoms.Log(context.Background(), user.ID, &dto.SymptomRequest{Symptom: "Headache", Date: "2024-03-20"}, scenarioNow)
	require.NoError(t, err)
	assert.Nil(t, entry.ProfileID)
	assert.Equal(t, models.SeverityMild, entry.Severity)
	assert.Equal(t, "2024-03-20", entry.Date.Format(time.DateOnly))
}

func TestLogSymptomValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "invalid@mamacare.test")
	other := env.createUser(t, "other@mamacare.test")
	otherProfile := env.createProfile(t, other.ID, "2024-01-01")

	cases := []*dto.SymptomRequest{
		{Symptom: "  "},
		{Symptom: "Cramps", Severity: "extreme"},
		{Symptom: "Cramps", Date: "yesterday"},
	}
	for _, req := range cases {
		_, err := env.symptoms.Log(ctx, user.ID, req, scenarioNow)
		assert.True(t, errors.Is(err, errs.ErrInvalidInput), "request %+v: %v", req, err)
	}

	_, err := env.symptoms.Log(ctx, user.ID, &dto.SymptomRequest{Symptom: "Cramps", ProfileID: &otherProfile.ID}, scenarioNow)
	assert.True(t, errors.Is(err, errs.ErrNotOwned))

	missing := uuid.New()
	_, err = env.symptoms.Log(ctx, user.ID, &dto.SymptomRequest{Symptom: "Cramps", ProfileID: &missing}, scenarioNow)
	assert.True(t, errors.Is(err, errs.ErrNotFound))

	_, err = env.symptoms.Log(ctx, uuid.Nil, &dto.SymptomRequest{Symptom: "Cramps"}, scenarioNow)
	assert.True(t, errors.Is(err, errs.ErrUnauthenticated))
}

func TestListSymptomsNewestFirstAndScoped(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "list@mamacare.test")
	other := env.createUser(t, "elsewhere@mamacare.test")

	for _, date := range []string{"2024-03-01", "2024-03-20", "2024-03-10"} {
		_, err := env.symptoms.Log(ctx, user.ID, &dto.SymptomRequest{Symptom: date, Date: date}, scenarioNow)
		require.NoError(t, err)
	}
	_, err := env.symptoms.Log(ctx, other.ID, &dto.SymptomRequest{Symptom: "theirs"}, scenarioNow)
	require.NoError(t, err)

	list, err := env.symptoms.List(ctx, user.ID, 0)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "2024-03-20", list[0].Symptom)
	assert.Equal(t, "2024-03-01", list[2].Symptom)

	limited, err := env.symptoms.List(ctx, user.ID, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestUpdateAndResolveSymptom(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "resolve@mamacare.test")
	other := env.createUser(t, "intruder@mamacare.test")

	entry, err := env.symptoms.Log(ctx, user.ID, &dto.SymptomRequest{Symptom: "Swelling"}, scenarioNow)
	require.NoError(t, err)

	updated, err := env.symptoms.Update(ctx, user.ID, entry.ID, &dto.SymptomRequest{Symptom: "Ankle swelling", Severity: "severe"})
	require.NoError(t, err)
	assert.Equal(t, models.SeveritySevere, updated.Severity)

	_, err = env.symptoms.Update(ctx, other.ID, entry.ID, &dto.SymptomRequest{Symptom: "x"})
	assert.True(t, errors.Is(err, errs.ErrNotOwned))

	resolved, err := env.symptoms.Resolve(ctx, user.ID, entry.ID, scenarioNow)
	require.NoError(t, err)
	assert.True(t, resolved.Resolved)
	require.NotNil(t, resolved.ResolvedAt)

	_, err = env.symptoms.Resolve(ctx, user.ID, entry.ID, scenarioNow)
	assert.True(t, errors.Is(err, errs.ErrInvalidState))

	_, err = env.symptoms.Resolve(ctx, user.ID, uuid.New(), scenarioNow)
	assert.True(t, errors.Is(err, errs.ErrNotFound))

	var stored models.SymptomLog
	require.NoError(t, env.db.First(&stored, "id = ?", entry.ID).Error)
	assert.Equal(t, "Ankle swelling", stored.Symptom)
	assert.True(t, stored.Resolved)
	assert.NotNil(t, stored.ResolvedAt)
}
