package youtube_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woneiros/travel-planner/internal/config"
	"github.com/woneiros/travel-planner/internal/youtube"
)

func TestNewFetcherFromConfig(t *testing.T) {
	cfg := config.YouTubeConfig{Languages: []string{"en"}, RequestTimeout: time.Second}

	f, err := youtube.NewFetcherFromConfig(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.NotNil(t, f)

	cfg.APIKey = "test-key"
	f, err = youtube.NewFetcherFromConfig(context.Background(), cfg, &mapCache{data: map[string]string{}})
	require.NoError(t, err)
	assert.NotNil(t, f)

	_, err = f.Fetch(context.Background(), "https://example.com/not-youtube")
	assert.Error(t, err)
}
