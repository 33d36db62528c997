package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/woneiros/travel-planner/internal/domain"
)

// PlaceService manages user preferences on extracted places
type PlaceService struct {
	store *SessionStore
}

// NewPlaceService creates a new place service
func NewPlaceService(store *SessionStore) *PlaceService {
	return &PlaceService{store: store}
}

// UpdatePreference sets the preference of one place and refreshes the session
func (s *PlaceService) UpdatePreference(ctx context.Context, sessionID, placeID string, pref domain.Preference) (*domain.Place, error) {
	if _, err := s.store.Get(sessionID); err != nil {
		return nil, err
	}
	unlock := s.store.Lock(sessionID)
	defer unlock()

	sess, err := s.store.Get(sessionID)
	if err != nil {
		return nil, err
	}

	place, ok := sess.FindPlace(placeID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrPlaceNotFound, placeID)
	}
	if err := place.SetPreference(pref); err != nil {
		return nil, err
	}
	updated := *place

	s.store.Update(sess)

	log.Info().
		Str("session_id", sessionID).
		Str("place_id", placeID).
		Str("preference", string(pref)).
		Msg("Updated place preference")
	return &updated, nil
}
