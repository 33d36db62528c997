package domain

import "fmt"

// PlaceholderDurationSeconds is used when no metadata source is reachable
const PlaceholderDurationSeconds = 600

// Video is a fetched video with its full transcript
type Video struct {
	VideoID         string  `json:"video_id"`
	Title           string  `json:"title"`
	Description     *string `json:"description,omitempty"`
	Summary         string  `json:"summary,omitempty"`
	DurationSeconds int     `json:"duration_seconds"`
	Transcript      string  `json:"transcript,omitempty"`
	URL             string  `json:"url"`
	PlacesCount     int     `json:"places_count"`
}

// PlaceholderTitle is the synthesized title for a video without one
func PlaceholderTitle(videoID string) string {
	return fmt.Sprintf("Video %s", videoID)
}

// VideoSummary is the transcript-free view of a processed video
type VideoSummary struct {
	VideoID         string `json:"video_id"`
	Title           string `json:"title"`
	Summary         string `json:"summary"`
	DurationSeconds int    `json:"duration_seconds"`
	URL             string `json:"url"`
	PlacesCount     int    `json:"places_count"`
}

// Summarize drops the transcript and description
func (v Video) Summarize() VideoSummary {
	return VideoSummary{
		VideoID:         v.VideoID,
		Title:           v.Title,
		Summary:         v.Summary,
		DurationSeconds: v.DurationSeconds,
		URL:             v.URL,
		PlacesCount:     v.PlacesCount,
	}
}
