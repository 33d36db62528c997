package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woneiros/travel-planner/internal/domain"
)

func TestPlaceService_UpdatePreference(t *testing.T) {
	store, sess := seededStore(t)
	svc := NewPlaceService(store)
	placeID := sess.Places[1].ID

	place, err := svc.UpdatePreference(context.Background(), sess.SessionID, placeID, domain.PreferenceInterested)
	require.NoError(t, err)
	assert.True(t, place.IsInterested)
	assert.False(t, place.IsNotInterested)

	place, err = svc.UpdatePreference(context.Background(), sess.SessionID, placeID, domain.PreferenceNotInterested)
	require.NoError(t, err)
	assert.False(t, place.IsInterested)
	assert.True(t, place.IsNotInterested)

	stored, err := store.Get(sess.SessionID)
	require.NoError(t, err)
	assert.Equal(t, *place, stored.Places[1])
	assert.False(t, stored.Places[0].IsInterested || stored.Places[0].IsNotInterested)
}

func TestPlaceService_Errors(t *testing.T) {
	store, sess := seededStore(t)
	svc := NewPlaceService(store)

	_, err := svc.UpdatePreference(context.Background(), "nope", sess.Places[0].ID, domain.PreferenceInterested)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, err = svc.UpdatePreference(context.Background(), sess.SessionID, "nope", domain.PreferenceInterested)
	assert.ErrorIs(t, err, domain.ErrPlaceNotFound)

	_, err = svc.UpdatePreference(context.Background(), sess.SessionID, sess.Places[0].ID, "maybe")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	stored, err := store.Get(sess.SessionID)
	require.NoError(t, err)
	assert.False(t, stored.Places[0].IsInterested)
}
