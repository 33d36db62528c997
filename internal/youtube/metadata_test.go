package youtube_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/woneiros/travel-planner/internal/youtube"
)

func TestPageMetadata(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "vid1", r.URL.Query().Get("v"))
		fmt.Fprint(w, `<html><head>
			<meta property="og:title" content="48 Hours in Tokyo">
			<meta property="og:description" content="Ramen, temples and more">
			<meta itemprop="duration" content="PT14M2S">
		</head><body></body></html>`)
	}))
	defer srv.Close()

	meta, err := youtube.NewPageMetadata(time.Second).WithWatchURL(srv.URL).Metadata(context.Background(), "vid1")
	require.NoError(t, err)
	assert.Equal(t, "48 Hours in Tokyo", meta.Title)
	require.NotNil(t, meta.Description)
	assert.Equal(t, "Ramen, temples and more", *meta.Description)
	assert.Equal(t, 842, meta.DurationSeconds)
}

func TestPageMetadata_NoTitle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head></head></html>`)
	}))
	defer srv.Close()

	_, err := youtube.NewPageMetadata(time.Second).WithWatchURL(srv.URL).Metadata(context.Background(), "vid1")
	assert.Error(t, err)
}

func TestDataAPIMetadata(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/videos"), r.URL.Path)
		assert.Equal(t, "vid1", r.URL.Query().Get("id"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"items": [{"id": "vid1",
			"snippet": {"title": "Street Food in Bangkok", "description": "Night markets"},
			"contentDetails": {"duration": "PT1H5M"}}]}`)
	}))
	defer srv.Close()

	src, err := youtube.NewDataAPIMetadata(context.Background(), "key", option.WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)

	meta, err := src.Metadata(context.Background(), "vid1")
	require.NoError(t, err)
	assert.Equal(t, "Street Food in Bangkok", meta.Title)
	assert.Equal(t, "Night markets", *meta.Description)
	assert.Equal(t, 3900, meta.DurationSeconds)
}

func TestDataAPIMetadata_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"items": []}`)
	}))
	defer srv.Close()

	src, err := youtube.NewDataAPIMetadata(context.Background(), "key", option.WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)

	_, err = src.Metadata(context.Background(), "vid1")
	assert.Error(t, err)
}
