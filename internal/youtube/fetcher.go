package youtube

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/woneiros/travel-planner/internal/domain"
)

// TranscriptSource returns the transcript of a video
type TranscriptSource interface {
	Transcript(ctx context.Context, videoID string) (string, error)
}

// TranscriptCache stores transcripts by video id
type TranscriptCache interface {
	Get(ctx context.Context, videoID string) (string, bool, error)
	Set(ctx context.Context, videoID, transcript string) error
}

// Fetcher turns a URL into a Video with transcript and metadata
type Fetcher struct {
	transcripts TranscriptSource
	metadata    []MetadataSource
}

// NewFetcher tries metadata sources in order, falling back to the placeholder
func NewFetcher(transcripts TranscriptSource, metadata ...MetadataSource) *Fetcher {
	return &Fetcher{transcripts: transcripts, metadata: metadata}
}

// Fetch resolves the video id, fetches the transcript, then metadata.
// Metadata failures are logged and never fatal.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*domain.Video, error) {
	videoID, err := ExtractVideoID(rawURL)
	if err != nil {
		return nil, err
	}

	log.Info().Str("video_id", videoID).Msg("Processing video")

	transcript, err := f.transcripts.Transcript(ctx, videoID)
	if err != nil {
		var ve *domain.VideoError
		if !errors.As(err, &ve) {
			err = domain.NewVideoError(videoID, domain.ErrTranscriptFetch, err)
		}
		log.Error().Err(err).Str("video_id", videoID).Msg("Failed to fetch transcript")
		return nil, err
	}

	meta := f.lookup(ctx, videoID)

	return &domain.Video{
		VideoID:         videoID,
		Title:           meta.Title,
		Description:     meta.Description,
		DurationSeconds: meta.DurationSeconds,
		Transcript:      transcript,
		URL:             rawURL,
	}, nil
}

func (f *Fetcher) lookup(ctx context.Context, videoID string) Metadata {
	for _, src := range f.metadata {
		meta, err := src.Metadata(ctx, videoID)
		if err != nil {
			log.Warn().Err(err).Str("video_id", videoID).Msg("Metadata source failed")
			continue
		}
		if meta.Title == "" {
			meta.Title = domain.PlaceholderTitle(videoID)
		}
		if meta.DurationSeconds <= 0 {
			meta.DurationSeconds = domain.PlaceholderDurationSeconds
		}
		return *meta
	}
	return PlaceholderMetadata(videoID)
}

// CachedTranscripts serves transcripts from a cache before asking the source
type CachedTranscripts struct {
	source TranscriptSource
	cache  TranscriptCache
}

func NewCachedTranscripts(source TranscriptSource, cache TranscriptCache) *CachedTranscripts {
	return &CachedTranscripts{source: source, cache: cache}
}

func (c *CachedTranscripts) Transcript(ctx context.Context, videoID string) (string, error) {
	if text, ok, err := c.cache.Get(ctx, videoID); err != nil {
		log.Warn().Err(err).Str("video_id", videoID).Msg("Transcript cache read failed")
	} else if ok {
		log.Debug().Str("video_id", videoID).Msg("Transcript cache hit")
		return text, nil
	}

	text, err := c.source.Transcript(ctx, videoID)
	if err != nil {
		return "", err
	}

	if err := c.cache.Set(ctx, videoID, text); err != nil {
		log.Warn().Err(err).Str("video_id", videoID).Msg("Transcript cache write failed")
	}
	return text, nil
}
