package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/errs"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/models"
)

func TestFirstContactBecomesPrimary(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "contacts@mamacare.test")

	first, err := env.contacts.Create(ctx, user.ID, &dto.ContactRequest{Name: "Amina", Phone: "+254711111111", Relationship: "sister"})
	require.NoError(t, err)
	assert.True(t, first.IsPrimary)

	second, err := env.contacts.Create(ctx, user.ID, &dto.ContactRequest{Name: "Juma", Phone: "+254722222222"})
	require.NoError(t, err)
	assert.False(t, second.IsPrimary)

	third, err := env.contacts.Create(ctx, user.ID, &dto.ContactRequest{Name: "Wanjiru", Phone: "+254733333333", IsPrimary: true})
	require.NoError(t, err)
	assert.True(t, third.IsPrimary)

	list, err := env.contacts.List(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, third.ID, list[0].ID)
	assert.Equal(t, int64(1), env.count(t, &models.EmergencyContact{}, "owner_id = ? AND is_primary = ?", user.ID, true))
}

func TestPromoteSequencesLeaveOnePrimary(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "promote@mamacare.test")

	var contacts []*models.EmergencyContact
	for _, name := range []string{"A", "B", "C", "D"} {
		c, err := env.contacts.Create(ctx, user.ID, &dto.ContactRequest{Name: name, Phone: "+254700000009"})
		require.NoError(t, err)
		contacts = append(contacts, c)
	}

	for _, idx := range []int{2, 0, 3, 3, 1, 2} {
		promoted, err := env.contacts.Promote(ctx, user.ID, contacts[idx].ID)
		require.NoError(t, err)
		assert.True(t, promoted.IsPrimary)
		assert.Equal(t, int64(1), env.count(t, &models.EmergencyContact{}, "owner_id = ? AND is_primary = ?", user.ID, true))

		list, err := env.contacts.List(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, contacts[idx].ID, list[0].ID)
	}
}

func TestDeletingPrimaryPromotesOldest(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "delete@mamacare.test")

	first, err := env.contacts.Create(ctx, user.ID, &dto.ContactRequest{Name: "A", Phone: "+254700000010"})
	require.NoError(t, err)
	second, err := env.contacts.Create(ctx, user.ID, &dto.ContactRequest{Name: "B", Phone: "+254700000011"})
	require.NoError(t, err)

	require.NoError(t, env.contacts.Delete(ctx, user.ID, first.ID))

	list, err := env.contacts.List(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, second.ID, list[0].ID)
	assert.True(t, list[0].IsPrimary)
}

func TestContactOwnershipAndValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "own@mamacare.test")
	other := env.createUser(t, "notmine@mamacare.test")

	_, err := env.contacts.Create(ctx, user.ID, &dto.ContactRequest{Name: "No phone"})
	assert.True(t, errors.Is(err, errs.ErrInvalidInput))

	c, err := env.contacts.Create(ctx, user.ID, &dto.ContactRequest{Name: "A", Phone: "+254700000012"})
	require.NoError(t, err)

	_, err = env.contacts.Promote(ctx, other.ID, c.ID)
	assert.True(t, errors.Is(err, errs.ErrNotOwned))

	_, err = env.contacts.Update(ctx, other.ID, c.ID, &dto.ContactRequest{Name: "B", Phone: "+254700000013"})
	assert.True(t, errors.Is(err, errs.ErrNotOwned))

	updated, err := env.contacts.Update(ctx, user.ID, c.ID, &dto.ContactRequest{Name: "Amina W.", Phone: "+254700000014"})
	require.NoError(t, err)
	assert.Equal(t, "Amina W.", updated.Name)
	assert.True(t, updated.IsPrimary)
}
