package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/woneiros/travel-planner/internal/domain"
	"github.com/woneiros/travel-planner/internal/llm"
)

var tracer = otel.Tracer("github.com/woneiros/travel-planner/internal/service")

const extractionSystemPrompt = `You are an expert at analyzing travel video transcripts and extracting place recommendations.

Your task is to:
1. Create a short, catchy 3-5 word title for this video based on its content (e.g., "Tokyo Street Food Guide" or "Hidden Cafes in Paris")
2. Create a concise 1-2 sentence summary of the video, focusing on the places recommended
3. Identify all places mentioned in the transcript that have recommendations or opinions from the creator

For each place, extract:
1. The exact name as mentioned
2. The type - MUST be one of these exact values:
   - "restaurant" for restaurants, bars, food spots
   - "attraction" for tourist sites, landmarks, museums
   - "hotel" for hotels, hostels, accommodations
   - "activity" for tours, activities, experiences
   - "coffee_shop" for cafes, coffee shops, bakeries (use "coffee_shop" not "cafe")
   - "shopping" for shops, markets, malls
   - "other" for anything else
3. A brief description (1-2 sentences)
4. What the creator said about it (their opinion, why they recommend it)
5. Approximate timestamp in seconds if determinable from context (optional)
6. Address - full street address if mentioned in the transcript (optional)
7. Neighborhood - neighborhood, district, or area name (e.g., "Shibuya", "Montmartre") if mentioned (optional)

IMPORTANT: Use exactly these category names. For cafes or coffee places, use "coffee_shop" not "cafe".

Only include places that the creator actually recommends or has an opinion about.
Skip places that are just mentioned in passing without any recommendation.

Be thorough but accurate. If unsure about a place's details, skip it.`

// ExtractedPlace is the per-place shape the model must return
type ExtractedPlace struct {
	Name             string  `json:"name" jsonschema_description:"Name of the place as mentioned in the video"`
	Type             string  `json:"type" jsonschema:"enum=restaurant,enum=attraction,enum=hotel,enum=activity,enum=coffee_shop,enum=shopping,enum=other" jsonschema_description:"Type of place"`
	Description      string  `json:"description" jsonschema_description:"Brief description of the place"`
	TimestampSeconds *int    `json:"timestamp_seconds,omitempty" jsonschema_description:"Approximate timestamp in seconds where the place is mentioned"`
	MentionedContext string  `json:"mentioned_context" jsonschema_description:"What the creator said about it (their opinion or recommendation)"`
	Address          *string `json:"address,omitempty" jsonschema_description:"Full address of the place if mentioned in the transcript"`
	Neighborhood     *string `json:"neighborhood,omitempty" jsonschema_description:"Neighborhood, district or area name if mentioned in the transcript"`
}

// extractionOutput is the document requested from the model
type extractionOutput struct {
	SuggestedTitle   string           `json:"suggested_title" jsonschema_description:"A short, human-readable 3-5 word title for this video based on its content"`
	SuggestedSummary string           `json:"suggested_summary" jsonschema_description:"A concise 1-2 sentence summary of the video based on its content"`
	Places           []ExtractedPlace `json:"places" jsonschema_description:"List of extracted places"`
}

// ExtractionResult is the validated outcome for one video
type ExtractionResult struct {
	Places           []domain.Place `json:"places"`
	SuggestedTitle   string         `json:"suggested_title"`
	SuggestedSummary string         `json:"suggested_summary"`
}

// Extractor turns a transcript into typed places with a schema-constrained LLM call
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract never mutates video. Every failure is a *domain.VideoError of kind
// domain.ErrExtraction (or ErrInvalidInput for an empty transcript).
func (e *Extractor) Extract(ctx context.Context, video *domain.Video, provider llm.Provider) (*ExtractionResult, error) {
	ctx, span := tracer.Start(ctx, "extract_places")
	defer span.End()
	span.SetAttributes(
		attribute.String("video.id", video.VideoID),
		attribute.Int("transcript.length", len(video.Transcript)),
		attribute.String("llm.provider", provider.Name()),
	)

	result, err := e.extract(ctx, video, provider)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "extraction failed")
		log.Error().Err(err).Str("video_id", video.VideoID).Msg("Failed to extract places")
		return nil, err
	}

	span.SetAttributes(attribute.Int("places.extracted", len(result.Places)))
	log.Info().
		Str("video_id", video.VideoID).
		Int("places", len(result.Places)).
		Str("suggested_title", result.SuggestedTitle).
		Msg("Extracted places")
	return result, nil
}

func (e *Extractor) extract(ctx context.Context, video *domain.Video, provider llm.Provider) (*ExtractionResult, error) {
	if strings.TrimSpace(video.Transcript) == "" {
		return nil, domain.NewVideoError(video.VideoID, domain.ErrInvalidInput, errors.New("empty transcript"))
	}

	messages := []llm.Message{
		llm.SystemMessage(extractionSystemPrompt),
		llm.UserMessage(extractionUserPrompt(video)),
	}

	out, err := llm.Structured[extractionOutput](ctx, provider, messages, "place_extraction", "Places recommended in a travel video")
	if err != nil {
		return nil, domain.NewVideoError(video.VideoID, domain.ErrExtraction, err)
	}

	places := make([]domain.Place, 0, len(out.Places))
	for i, ep := range out.Places {
		place, err := toPlace(video.VideoID, ep)
		if err != nil {
			return nil, domain.NewVideoError(video.VideoID, domain.ErrExtraction, fmt.Errorf("place %d: %w", i, err))
		}
		places = append(places, place)
	}

	title := strings.TrimSpace(out.SuggestedTitle)
	if title == "" {
		title = domain.PlaceholderTitle(video.VideoID)
	}

	return &ExtractionResult{
		Places:           places,
		SuggestedTitle:   title,
		SuggestedSummary: strings.TrimSpace(out.SuggestedSummary),
	}, nil
}

func extractionUserPrompt(video *domain.Video) string {
	description := "N/A"
	if video.Description != nil && *video.Description != "" {
		description = *video.Description
	}
	return fmt.Sprintf(`Video Title: %s
Description: %s

Transcript:
%s

Extract all recommended places from this travel video transcript.`, video.Title, description, video.Transcript)
}

func toPlace(videoID string, ep ExtractedPlace) (domain.Place, error) {
	name := strings.TrimSpace(ep.Name)
	if name == "" {
		return domain.Place{}, errors.New("missing name")
	}
	placeType, err := domain.ParsePlaceType(ep.Type)
	if err != nil {
		return domain.Place{}, err
	}

	place := domain.NewPlace(videoID, name, placeType)
	place.Description = ep.Description
	place.MentionedContext = ep.MentionedContext
	place.TimestampSeconds = ep.TimestampSeconds
	place.Address = nonEmpty(ep.Address)
	place.Neighborhood = nonEmpty(ep.Neighborhood)
	return place, nil
}

func nonEmpty(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
