package domain

import (
	"errors"
	"fmt"
)

// Error kinds shared by every layer. Callers match them with errors.Is.
var (
	ErrTranscriptUnavailable = errors.New("transcript unavailable")
	ErrVideoUnavailable      = errors.New("video unavailable")
	ErrTranscriptFetch       = errors.New("transcript fetch failed")
	ErrLLMProvider           = errors.New("llm provider failure")
	ErrExtraction            = errors.New("place extraction failed")
	ErrSessionNotFound       = errors.New("session not found")
	ErrPlaceNotFound         = errors.New("place not found")
	ErrInvalidInput          = errors.New("invalid input")
)

// VideoError ties a failure kind to the video it happened on
type VideoError struct {
	VideoID string
	Kind    error
	Err     error
}

// NewVideoError wraps err as kind for videoID
func NewVideoError(videoID string, kind, err error) *VideoError {
	return &VideoError{VideoID: videoID, Kind: kind, Err: err}
}

func (e *VideoError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s for video %s", e.Kind, e.VideoID)
	}
	return fmt.Sprintf("%s for video %s: %v", e.Kind, e.VideoID, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As
func (e *VideoError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
