package domain

import (
	"time"

	"github.com/google/uuid"
)

// Session groups one user's videos, extracted places and chat history
type Session struct {
	SessionID    string        `json:"session_id"`
	Videos       []Video       `json:"videos"`
	Places       []Place       `json:"places"`
	ChatHistory  []ChatMessage `json:"chat_history"`
	CreatedAt    time.Time     `json:"created_at"`
	LastActivity time.Time     `json:"last_activity"`
}

// NewSession allocates an empty session stamped with now
func NewSession(now time.Time) *Session {
	return &Session{
		SessionID:    uuid.NewString(),
		Videos:       []Video{},
		Places:       []Place{},
		ChatHistory:  []ChatMessage{},
		CreatedAt:    now,
		LastActivity: now,
	}
}

// Clone returns a deep copy that shares no slices with s
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.Videos = make([]Video, len(s.Videos))
	for i, v := range s.Videos {
		if v.Description != nil {
			d := *v.Description
			v.Description = &d
		}
		c.Videos[i] = v
	}
	c.Places = make([]Place, len(s.Places))
	for i, p := range s.Places {
		c.Places[i] = p.clone()
	}
	c.ChatHistory = make([]ChatMessage, len(s.ChatHistory))
	for i, m := range s.ChatHistory {
		m.PlacesReferenced = append([]string{}, m.PlacesReferenced...)
		c.ChatHistory[i] = m
	}
	return &c
}

func (p Place) clone() Place {
	if p.TimestampSeconds != nil {
		ts := *p.TimestampSeconds
		p.TimestampSeconds = &ts
	}
	if p.Address != nil {
		a := *p.Address
		p.Address = &a
	}
	if p.Neighborhood != nil {
		n := *p.Neighborhood
		p.Neighborhood = &n
	}
	return p
}

// FindVideo returns the video with videoID, if present
func (s *Session) FindVideo(videoID string) (*Video, bool) {
	for i := range s.Videos {
		if s.Videos[i].VideoID == videoID {
			return &s.Videos[i], true
		}
	}
	return nil, false
}

// FindPlace returns the place with placeID, if present
func (s *Session) FindPlace(placeID string) (*Place, bool) {
	for i := range s.Places {
		if s.Places[i].ID == placeID {
			return &s.Places[i], true
		}
	}
	return nil, false
}

// PlacesByIDs resolves ids in order, skipping unknown ones
func (s *Session) PlacesByIDs(ids []string) []Place {
	out := make([]Place, 0, len(ids))
	for _, id := range ids {
		if p, ok := s.FindPlace(id); ok {
			out = append(out, *p)
		}
	}
	return out
}

// RecentHistory returns the last n chat messages, oldest first
func (s *Session) RecentHistory(n int) []ChatMessage {
	if n <= 0 || len(s.ChatHistory) == 0 {
		return nil
	}
	start := len(s.ChatHistory) - n
	if start < 0 {
		start = 0
	}
	return s.ChatHistory[start:]
}

// SessionView is the transcript-free representation returned to clients
type SessionView struct {
	SessionID    string         `json:"session_id"`
	Videos       []VideoSummary `json:"videos"`
	Places       []Place        `json:"places"`
	ChatHistory  []ChatMessage  `json:"chat_history"`
	CreatedAt    time.Time      `json:"created_at"`
	LastActivity time.Time      `json:"last_activity"`
}

// View builds the client representation of s
func (s *Session) View() SessionView {
	videos := make([]VideoSummary, 0, len(s.Videos))
	for _, v := range s.Videos {
		videos = append(videos, v.Summarize())
	}
	return SessionView{
		SessionID:    s.SessionID,
		Videos:       videos,
		Places:       s.Places,
		ChatHistory:  s.ChatHistory,
		CreatedAt:    s.CreatedAt,
		LastActivity: s.LastActivity,
	}
}
