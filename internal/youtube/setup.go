package youtube

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/woneiros/travel-planner/internal/config"
)

// NewFetcherFromConfig wires the transcript client, the optional transcript
// cache and the metadata sources. The Data API is only used with an API key.
func NewFetcherFromConfig(ctx context.Context, cfg config.YouTubeConfig, cache TranscriptCache) (*Fetcher, error) {
	var transcripts TranscriptSource = NewTranscriptClient(cfg.RequestTimeout, cfg.Languages)
	if cache != nil {
		transcripts = NewCachedTranscripts(transcripts, cache)
	}

	var metadata []MetadataSource
	if cfg.APIKey != "" {
		dataAPI, err := NewDataAPIMetadata(ctx, cfg.APIKey)
		if err != nil {
			return nil, err
		}
		metadata = append(metadata, dataAPI)
		log.Info().Msg("Using YouTube Data API for video metadata")
	}
	metadata = append(metadata, NewPageMetadata(cfg.RequestTimeout))

	return NewFetcher(transcripts, metadata...), nil
}
