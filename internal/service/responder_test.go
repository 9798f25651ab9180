package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shenikar/civic_response_system/internal/apperr"
	"github.com/shenikar/civic_response_system/internal/models"
)

func TestRegister(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r, err := f.responders.Register(ctx, RegisterResponderInput{
		UserID:    " u1 ",
		Name:      "Nina",
		Skills:    []string{"medical", "fire", "medical"},
		Latitude:  ptr(-33.8688),
		Longitude: ptr(151.2093),
	})

	require.NoError(t, err)
	assert.Equal(t, "u1", r.UserID)
	assert.Equal(t, models.AvailabilityAvailable, r.Availability.Status)
	assert.Equal(t, []string{"fire", "medical"}, r.Skills)
	assert.Equal(t, "G0.0100:S3386:E15120", r.GridLocation)
	assert.Empty(t, r.CurrentIncidents)

	_, err = f.responders.Register(ctx, RegisterResponderInput{UserID: "u2"})
	assert.True(t, apperr.IsValidation(err))
	_, err = f.responders.Register(ctx, RegisterResponderInput{UserID: "u3", Name: "x", Status: "sleeping"})
	assert.True(t, apperr.IsValidation(err))
}

func TestSetAvailability(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.responder(t, "kira", models.AvailabilityAvailable)
	require.Equal(t, 1, f.responders.AvailableCount())

	updated, err := f.responders.SetAvailability(ctx, r.ID, AvailabilityInput{
		Status:                 models.AvailabilityBusy,
		MaxConcurrentIncidents: ptr(2),
	})

	require.NoError(t, err)
	assert.Equal(t, models.AvailabilityBusy, updated.Availability.Status)
	assert.Equal(t, 2, updated.Availability.MaxConcurrentIncidents)
	assert.Equal(t, 0, f.responders.AvailableCount())
	assert.Empty(t, f.responders.Available())

	_, err = f.responders.SetAvailability(ctx, "ghost", AvailabilityInput{Status: models.AvailabilityBusy})
	assert.True(t, apperr.IsNotFound(err))
	_, err = f.responders.SetAvailability(ctx, r.ID, AvailabilityInput{})
	assert.True(t, apperr.IsValidation(err))
}

func TestAttachRelease(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.responder(t, "tom", models.AvailabilityBusy)

	_, err := f.responders.AttachIncident(ctx, r.ID, "inc-1")
	require.NoError(t, err)
	again, err := f.responders.AttachIncident(ctx, r.ID, "inc-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"inc-1"}, again.CurrentIncidents)
	assert.Len(t, again.ResponseHistory, 1)

	released, err := f.responders.ReleaseIncident(ctx, r.ID, "inc-1")
	require.NoError(t, err)
	assert.Empty(t, released.CurrentIncidents)
	require.Len(t, released.ResponseHistory, 1)
	assert.NotNil(t, released.ResponseHistory[0].ResolvedAt)
}

func TestRecordFeedback(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.responder(t, "eva", models.AvailabilityBusy)
	_, err := f.responders.AttachIncident(ctx, r.ID, "inc-1")
	require.NoError(t, err)

	updated, err := f.responders.RecordFeedback(ctx, r.ID, "inc-1", "Quick arrival", ptr(5))
	require.NoError(t, err)
	assert.Equal(t, "Quick arrival", updated.ResponseHistory[0].Feedback)
	require.NotNil(t, updated.ResponseHistory[0].Rating)
	assert.Equal(t, 5, *updated.ResponseHistory[0].Rating)

	_, err = f.responders.RecordFeedback(ctx, r.ID, "inc-1", "", ptr(6))
	assert.True(t, apperr.IsValidation(err))
	_, err = f.responders.RecordFeedback(ctx, r.ID, "inc-2", "", nil)
	assert.True(t, apperr.IsNotFound(err))
}

func TestRegister_OneResponderPerUser(t *testing.T) {
	// Подготовка
	f := newFixture(t)
	ctx := context.Background()
	first := f.responder(t, "kira", models.AvailabilityAvailable)

	// Действие
	_, err := f.responders.Register(ctx, RegisterResponderInput{UserID: first.UserID, Name: "Kira again"})

	// Проверки
	assert.True(t, apperr.IsValidation(err))
	found, err := f.responders.ByUserID(first.UserID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)
	_, err = f.responders.ByUserID("nobody")
	assert.True(t, apperr.IsNotFound(err))
}

func TestApplyResponder_IgnoresOlderVersion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.responder(t, "kira", models.AvailabilityAvailable)
	_, err := f.responders.SetAvailability(ctx, r.ID, AvailabilityInput{Status: models.AvailabilityBusy})
	require.NoError(t, err)

	assert.False(t, f.responders.ApplyResponder(r))

	got, err := f.responders.Get(r.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AvailabilityBusy, got.Availability.Status)
	assert.Equal(t, int64(2), got.Version)
}
