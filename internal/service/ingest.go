package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/woneiros/travel-planner/internal/domain"
	"github.com/woneiros/travel-planner/internal/llm"
)

// DefaultMaxURLs bounds one ingest request
const DefaultMaxURLs = 10

// VideoFetcher resolves a video URL into a video with its transcript
type VideoFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*domain.Video, error)
}

// IngestRequest lists the videos to add to a session
type IngestRequest struct {
	URLs      []string
	SessionID string
	Provider  llm.ProviderName
}

// FailedURL records a URL that was skipped and why
type FailedURL struct {
	URL     string `json:"url"`
	VideoID string `json:"video_id,omitempty"`
	Error   string `json:"error"`
}

// IngestResult is the outcome of one ingest request
type IngestResult struct {
	SessionID  string                `json:"session_id"`
	Videos     []domain.VideoSummary `json:"videos"`
	Places     []domain.Place        `json:"places"`
	FailedURLs []FailedURL           `json:"failed_urls"`
}

// IngestService fetches videos, extracts their places and stores them in a session
type IngestService struct {
	store     *SessionStore
	fetcher   VideoFetcher
	extractor *Extractor
	llmRouter *llm.Router
	maxURLs   int
}

// NewIngestService creates a new ingest service
func NewIngestService(store *SessionStore, fetcher VideoFetcher, extractor *Extractor, llmRouter *llm.Router, maxURLs int) *IngestService {
	if maxURLs <= 0 {
		maxURLs = DefaultMaxURLs
	}
	return &IngestService{
		store:     store,
		fetcher:   fetcher,
		extractor: extractor,
		llmRouter: llmRouter,
		maxURLs:   maxURLs,
	}
}

// Ingest processes the URLs in order. A failing URL is recorded and skipped;
// the request itself only fails on invalid input.
func (s *IngestService) Ingest(ctx context.Context, req IngestRequest) (*IngestResult, error) {
	if len(req.URLs) == 0 {
		return nil, fmt.Errorf("%w: at least one URL is required", domain.ErrInvalidInput)
	}
	if len(req.URLs) > s.maxURLs {
		return nil, fmt.Errorf("%w: at most %d URLs per request", domain.ErrInvalidInput, s.maxURLs)
	}

	provider, err := s.llmRouter.GetProvider(req.Provider)
	if err != nil {
		return nil, err
	}

	sess := s.store.GetOrCreate(req.SessionID)
	unlock := s.store.Lock(sess.SessionID)
	defer unlock()

	// another request may have written the session while we waited for the lock
	if current, err := s.store.Get(sess.SessionID); err == nil {
		sess = current
	}

	result := &IngestResult{
		SessionID:  sess.SessionID,
		Videos:     []domain.VideoSummary{},
		Places:     []domain.Place{},
		FailedURLs: []FailedURL{},
	}

	for _, rawURL := range req.URLs {
		video, places, err := s.process(ctx, sess, rawURL, provider)
		if err != nil {
			failed := FailedURL{URL: rawURL, Error: failureMessage(err)}
			var ve *domain.VideoError
			if errors.As(err, &ve) {
				failed.VideoID = ve.VideoID
			}
			log.Warn().Err(err).Str("url", rawURL).Str("session_id", sess.SessionID).Msg("Skipping video")
			result.FailedURLs = append(result.FailedURLs, failed)
			continue
		}

		sess.Videos = append(sess.Videos, *video)
		sess.Places = append(sess.Places, places...)
		result.Videos = append(result.Videos, video.Summarize())
		result.Places = append(result.Places, places...)
	}

	s.store.Update(sess)

	log.Info().
		Str("session_id", sess.SessionID).
		Int("videos", len(result.Videos)).
		Int("places", len(result.Places)).
		Int("failed", len(result.FailedURLs)).
		Msg("Ingest completed")
	return result, nil
}

func (s *IngestService) process(ctx context.Context, sess *domain.Session, rawURL string, provider llm.Provider) (*domain.Video, []domain.Place, error) {
	video, err := s.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, nil, err
	}
	if _, exists := sess.FindVideo(video.VideoID); exists {
		return nil, nil, domain.NewVideoError(video.VideoID, domain.ErrInvalidInput, errors.New("video already in session"))
	}

	extracted, err := s.extractor.Extract(ctx, video, provider)
	if err != nil {
		return nil, nil, err
	}

	video.Title = extracted.SuggestedTitle
	video.Summary = extracted.SuggestedSummary
	video.PlacesCount = len(extracted.Places)
	return video, extracted.Places, nil
}

// failureMessage describes a per-URL failure without provider internals
func failureMessage(err error) string {
	kind := err
	var ve *domain.VideoError
	if errors.As(err, &ve) {
		kind = ve.Kind
	}
	switch {
	case errors.Is(kind, domain.ErrExtraction), errors.Is(kind, domain.ErrLLMProvider):
		return "failed to extract places from video"
	case errors.Is(kind, domain.ErrTranscriptUnavailable):
		return "transcript not available for this video"
	case errors.Is(kind, domain.ErrVideoUnavailable):
		return "video is unavailable"
	case ve != nil && errors.Is(kind, domain.ErrInvalidInput) && ve.Err != nil:
		return ve.Err.Error()
	case errors.Is(kind, domain.ErrInvalidInput):
		return "invalid YouTube URL"
	default:
		return "failed to fetch video transcript"
	}
}
