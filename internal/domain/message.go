package domain

import "time"

// MessageRole represents the sender of a message
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// ChatMessage is one turn of a session's conversation
type ChatMessage struct {
	Role             MessageRole `json:"role"`
	Content          string      `json:"content"`
	Timestamp        time.Time   `json:"timestamp"`
	PlacesReferenced []string    `json:"places_referenced"`
}

// NewUserMessage creates a user turn
func NewUserMessage(content string) ChatMessage {
	return ChatMessage{
		Role:             RoleUser,
		Content:          content,
		Timestamp:        time.Now().UTC(),
		PlacesReferenced: []string{},
	}
}

// NewAssistantMessage creates an assistant turn referencing placeIDs
func NewAssistantMessage(content string, placeIDs []string) ChatMessage {
	if placeIDs == nil {
		placeIDs = []string{}
	}
	return ChatMessage{
		Role:             RoleAssistant,
		Content:          content,
		Timestamp:        time.Now().UTC(),
		PlacesReferenced: placeIDs,
	}
}
