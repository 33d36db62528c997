package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/woneiros/travel-planner/internal/domain"
	"github.com/woneiros/travel-planner/internal/llm"
)

// ToolKind names a tool the chat agent can call
type ToolKind string

const (
	ToolSearchPlaces       ToolKind = "search_places"
	ToolGetVideoTranscript ToolKind = "get_video_transcript"
)

// DefaultSearchLimit is used when a search does not ask for a positive limit
const DefaultSearchLimit = 10

// ErrUnknownTool is returned by DecodeToolCall for names outside ToolKind
var ErrUnknownTool = errors.New("unknown tool")

// SearchPlacesArgs are the search_places parameters
type SearchPlacesArgs struct {
	Query     string `json:"query,omitempty" jsonschema_description:"Search query to match against name, description or context"`
	PlaceType string `json:"place_type,omitempty" jsonschema_description:"Filter by place type (restaurant, attraction, hotel, activity, coffee_shop, shopping, other)"`
	Limit     int    `json:"limit,omitempty" jsonschema_description:"Maximum number of results to return (default 10)"`
}

// TranscriptArgs are the get_video_transcript parameters
type TranscriptArgs struct {
	VideoID string `json:"video_id" jsonschema_description:"YouTube video ID"`
}

// ToolInvocation is one decoded tool call. The concrete types are
// SearchPlacesInvocation and TranscriptInvocation.
type ToolInvocation interface {
	Kind() ToolKind
	CallID() string
	sealed()
}

type SearchPlacesInvocation struct {
	ID   string
	Args SearchPlacesArgs
}

func (SearchPlacesInvocation) Kind() ToolKind   { return ToolSearchPlaces }
func (i SearchPlacesInvocation) CallID() string { return i.ID }
func (SearchPlacesInvocation) sealed()          {}

type TranscriptInvocation struct {
	ID   string
	Args TranscriptArgs
}

func (TranscriptInvocation) Kind() ToolKind   { return ToolGetVideoTranscript }
func (i TranscriptInvocation) CallID() string { return i.ID }
func (TranscriptInvocation) sealed()          {}

// DecodeToolCall turns a raw model tool call into a typed invocation
func DecodeToolCall(tc llm.ToolCall) (ToolInvocation, error) {
	switch ToolKind(tc.Name) {
	case ToolSearchPlaces:
		var args SearchPlacesArgs
		if err := decodeArgs(tc.Arguments, &args); err != nil {
			return nil, fmt.Errorf("%s arguments: %w", tc.Name, err)
		}
		return SearchPlacesInvocation{ID: tc.ID, Args: args}, nil
	case ToolGetVideoTranscript:
		var args TranscriptArgs
		if err := decodeArgs(tc.Arguments, &args); err != nil {
			return nil, fmt.Errorf("%s arguments: %w", tc.Name, err)
		}
		return TranscriptInvocation{ID: tc.ID, Args: args}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTool, tc.Name)
	}
}

func decodeArgs(raw json.RawMessage, target any) error {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil
	}
	// some providers send the arguments as a JSON encoded string
	if strings.HasPrefix(trimmed, `"`) {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return err
		}
		if strings.TrimSpace(inner) == "" {
			return nil
		}
		raw = json.RawMessage(inner)
	}
	return json.Unmarshal(raw, target)
}

// PlaceResult is the search_places output for one place
type PlaceResult struct {
	Name             string           `json:"name"`
	Type             domain.PlaceType `json:"type"`
	Description      string           `json:"description"`
	MentionedContext string           `json:"mentioned_context"`
	VideoID          string           `json:"video_id"`
	TimestampSeconds *int             `json:"timestamp_seconds"`
}

func toPlaceResult(p domain.Place) PlaceResult {
	return PlaceResult{
		Name:             p.Name,
		Type:             p.Type,
		Description:      p.Description,
		MentionedContext: p.MentionedContext,
		VideoID:          p.VideoID,
		TimestampSeconds: p.TimestampSeconds,
	}
}

// SearchPlaces filters places by category and a case-insensitive substring
// of name, description or mentioned context. Insertion order is kept.
// An unrecognized category is ignored.
func SearchPlaces(places []domain.Place, args SearchPlacesArgs) []PlaceResult {
	limit := args.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	var filterType domain.PlaceType
	if args.PlaceType != "" {
		t, err := domain.ParsePlaceType(args.PlaceType)
		if err != nil {
			log.Warn().Str("place_type", args.PlaceType).Msg("Invalid place type, ignoring filter")
		} else {
			filterType = t
		}
	}
	query := strings.ToLower(args.Query)

	results := make([]PlaceResult, 0)
	for _, p := range places {
		if len(results) >= limit {
			break
		}
		if filterType != "" && p.Type != filterType {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(p.Name), query) &&
			!strings.Contains(strings.ToLower(p.Description), query) &&
			!strings.Contains(strings.ToLower(p.MentionedContext), query) {
			continue
		}
		results = append(results, toPlaceResult(p))
	}
	return results
}

// VideoTranscript returns the transcript prefixed with the video title, or a
// not-found message the model can read.
func VideoTranscript(sess *domain.Session, videoID string) string {
	video, ok := sess.FindVideo(videoID)
	if !ok {
		return fmt.Sprintf("Video %s not found in session.", videoID)
	}
	return fmt.Sprintf("Transcript for '%s':\n\n%s", video.Title, video.Transcript)
}

// ChatTools returns the tool definitions bound to every chat completion
var ChatTools = sync.OnceValues(func() ([]llm.Tool, error) {
	searchParams, err := llm.ParametersFor[SearchPlacesArgs]()
	if err != nil {
		return nil, err
	}
	transcriptParams, err := llm.ParametersFor[TranscriptArgs]()
	if err != nil {
		return nil, err
	}
	return []llm.Tool{
		{
			Name:        string(ToolSearchPlaces),
			Description: "Search for places by name, description, or type. Returns matching places with details.",
			Parameters:  searchParams,
		},
		{
			Name:        string(ToolGetVideoTranscript),
			Description: "Get the full transcript for a specific video.",
			Parameters:  transcriptParams,
		},
	}, nil
})
