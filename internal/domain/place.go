package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PlaceType is the fixed category set a place can belong to
type PlaceType string

const (
	PlaceRestaurant PlaceType = "restaurant"
	PlaceAttraction PlaceType = "attraction"
	PlaceHotel      PlaceType = "hotel"
	PlaceActivity   PlaceType = "activity"
	PlaceCoffeeShop PlaceType = "coffee_shop"
	PlaceShopping   PlaceType = "shopping"
	PlaceOther      PlaceType = "other"
)

// PlaceTypes lists every valid category in declaration order
var PlaceTypes = []PlaceType{
	PlaceRestaurant,
	PlaceAttraction,
	PlaceHotel,
	PlaceActivity,
	PlaceCoffeeShop,
	PlaceShopping,
	PlaceOther,
}

// Valid reports whether t is one of the fixed categories
func (t PlaceType) Valid() bool {
	for _, pt := range PlaceTypes {
		if t == pt {
			return true
		}
	}
	return false
}

// ParsePlaceType matches s case-insensitively against the fixed categories
func ParsePlaceType(s string) (PlaceType, error) {
	t := PlaceType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: unknown place type %q", ErrInvalidInput, s)
	}
	return t, nil
}

// Place is a single recommended location extracted from a video transcript
type Place struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Type             PlaceType `json:"type"`
	Description      string    `json:"description"`
	VideoID          string    `json:"video_id"`
	TimestampSeconds *int      `json:"timestamp_seconds,omitempty"`
	MentionedContext string    `json:"mentioned_context"`
	Address          *string   `json:"address,omitempty"`
	Neighborhood     *string   `json:"neighborhood,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	IsInterested     bool      `json:"is_interested"`
	IsNotInterested  bool      `json:"is_not_interested"`
}

// NewPlace allocates a place with a fresh identifier owned by videoID
func NewPlace(videoID, name string, placeType PlaceType) Place {
	return Place{
		ID:        uuid.NewString(),
		Name:      name,
		Type:      placeType,
		VideoID:   videoID,
		CreatedAt: time.Now().UTC(),
	}
}

// Preference returns the current preference derived from the two flags
func (p *Place) Preference() Preference {
	switch {
	case p.IsInterested:
		return PreferenceInterested
	case p.IsNotInterested:
		return PreferenceNotInterested
	default:
		return PreferenceNeutral
	}
}

// SetPreference updates the flags so that at most one of them is set
func (p *Place) SetPreference(pref Preference) error {
	switch pref {
	case PreferenceInterested:
		p.IsInterested, p.IsNotInterested = true, false
	case PreferenceNotInterested:
		p.IsInterested, p.IsNotInterested = false, true
	case PreferenceNeutral:
		p.IsInterested, p.IsNotInterested = false, false
	default:
		return fmt.Errorf("%w: unknown preference %q", ErrInvalidInput, pref)
	}
	return nil
}

// Preference is a user's stance on a place
type Preference string

const (
	PreferenceInterested    Preference = "interested"
	PreferenceNotInterested Preference = "not_interested"
	PreferenceNeutral       Preference = "neutral"
)
