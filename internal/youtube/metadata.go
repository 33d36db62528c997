package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"google.golang.org/api/option"
	ytapi "google.golang.org/api/youtube/v3"

	"github.com/woneiros/travel-planner/internal/domain"
)

// Metadata is the descriptive part of a video
type Metadata struct {
	Title           string
	Description     *string
	DurationSeconds int
}

// MetadataSource looks up video metadata
type MetadataSource interface {
	Metadata(ctx context.Context, videoID string) (*Metadata, error)
}

// PlaceholderMetadata is used when no source could answer
func PlaceholderMetadata(videoID string) Metadata {
	return Metadata{
		Title:           domain.PlaceholderTitle(videoID),
		DurationSeconds: domain.PlaceholderDurationSeconds,
	}
}

// DataAPIMetadata reads snippet and content details from the YouTube Data API v3
type DataAPIMetadata struct {
	svc *ytapi.Service
}

func NewDataAPIMetadata(ctx context.Context, apiKey string, opts ...option.ClientOption) (*DataAPIMetadata, error) {
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := ytapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create youtube service: %w", err)
	}
	return &DataAPIMetadata{svc: svc}, nil
}

func (d *DataAPIMetadata) Metadata(ctx context.Context, videoID string) (*Metadata, error) {
	resp, err := d.svc.Videos.List([]string{"snippet", "contentDetails"}).Id(videoID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("videos.list: %w", err)
	}
	if len(resp.Items) == 0 || resp.Items[0].Snippet == nil {
		return nil, fmt.Errorf("video %s not found", videoID)
	}

	item := resp.Items[0]
	meta := &Metadata{Title: item.Snippet.Title}
	if item.Snippet.Description != "" {
		desc := item.Snippet.Description
		meta.Description = &desc
	}
	if item.ContentDetails != nil {
		if secs, err := parseDuration(item.ContentDetails.Duration); err == nil {
			meta.DurationSeconds = secs
		}
	}
	return meta, nil
}

// PageMetadata scrapes the public watch page meta tags
type PageMetadata struct {
	httpClient *http.Client
	watchURL   string
}

func NewPageMetadata(timeout time.Duration) *PageMetadata {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &PageMetadata{
		httpClient: &http.Client{Timeout: timeout},
		watchURL:   "https://www.youtube.com/watch",
	}
}

// WithWatchURL overrides the watch page location
func (p *PageMetadata) WithWatchURL(u string) *PageMetadata {
	p.watchURL = u
	return p
}

func (p *PageMetadata) Metadata(ctx context.Context, videoID string) (*Metadata, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.watchURL+"?v="+url.QueryEscape(videoID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; travel-planner)")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("watch page request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("watch page returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse watch page: %w", err)
	}

	title := firstContent(doc, `meta[property="og:title"]`, `meta[name="title"]`)
	if title == "" {
		return nil, errors.New("watch page has no title")
	}

	meta := &Metadata{Title: title}
	if desc := firstContent(doc, `meta[property="og:description"]`, `meta[name="description"]`); desc != "" {
		meta.Description = &desc
	}
	if dur := firstContent(doc, `meta[itemprop="duration"]`); dur != "" {
		if secs, err := parseDuration(dur); err == nil {
			meta.DurationSeconds = secs
		}
	}
	return meta, nil
}

func firstContent(doc *goquery.Document, selectors ...string) string {
	for _, sel := range selectors {
		if v, ok := doc.Find(sel).First().Attr("content"); ok {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return ""
}
