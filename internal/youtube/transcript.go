package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/woneiros/travel-planner/internal/domain"
)

const (
	DefaultInnertubeURL = "https://www.youtube.com/youtubei/v1/player"

	androidClientName    = "ANDROID"
	androidClientVersion = "20.10.38"
)

// TranscriptClient fetches caption tracks through the Innertube player API
type TranscriptClient struct {
	httpClient *http.Client
	playerURL  string
	languages  []string
}

// NewTranscriptClient creates a client preferring the given languages in order
func NewTranscriptClient(timeout time.Duration, languages []string) *TranscriptClient {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	if len(languages) == 0 {
		languages = []string{"en"}
	}
	return &TranscriptClient{
		httpClient: &http.Client{Timeout: timeout},
		playerURL:  DefaultInnertubeURL,
		languages:  languages,
	}
}

// WithPlayerURL overrides the Innertube player endpoint
func (c *TranscriptClient) WithPlayerURL(u string) *TranscriptClient {
	c.playerURL = u
	return c
}

type playerRequest struct {
	Context struct {
		Client struct {
			ClientName    string `json:"clientName"`
			ClientVersion string `json:"clientVersion"`
		} `json:"client"`
	} `json:"context"`
	VideoID string `json:"videoId"`
}

type playerResponse struct {
	PlayabilityStatus struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
	Captions struct {
		Renderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"`
}

type timedText struct {
	Segments []struct {
		Text string `xml:",chardata"`
	} `xml:"text"`
}

// Transcript returns the full transcript text of a video, segments joined
// by single spaces.
func (c *TranscriptClient) Transcript(ctx context.Context, videoID string) (string, error) {
	player, err := c.player(ctx, videoID)
	if err != nil {
		return "", domain.NewVideoError(videoID, domain.ErrTranscriptFetch, err)
	}

	if status := player.PlayabilityStatus.Status; status != "OK" {
		reason := player.PlayabilityStatus.Reason
		if reason == "" {
			reason = status
		}
		return "", domain.NewVideoError(videoID, domain.ErrVideoUnavailable, errors.New(reason))
	}

	track, ok := c.pickTrack(player.Captions.Renderer.CaptionTracks)
	if !ok {
		return "", domain.NewVideoError(videoID, domain.ErrTranscriptUnavailable, errors.New("no caption tracks"))
	}

	text, err := c.timedText(ctx, track.BaseURL)
	if err != nil {
		return "", domain.NewVideoError(videoID, domain.ErrTranscriptFetch, err)
	}
	if text == "" {
		return "", domain.NewVideoError(videoID, domain.ErrTranscriptUnavailable, errors.New("empty transcript"))
	}

	log.Info().
		Str("video_id", videoID).
		Str("language", track.LanguageCode).
		Int("length", len(text)).
		Msg("Fetched transcript")

	return text, nil
}

func (c *TranscriptClient) player(ctx context.Context, videoID string) (*playerResponse, error) {
	var body playerRequest
	body.Context.Client.ClientName = androidClientName
	body.Context.Client.ClientVersion = androidClientVersion
	body.VideoID = videoID

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal player request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.playerURL+"?prettyPrint=false", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept-Language", "en-US")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("player request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("player returned status %d", resp.StatusCode)
	}

	var player playerResponse
	if err := json.NewDecoder(resp.Body).Decode(&player); err != nil {
		return nil, fmt.Errorf("failed to decode player response: %w", err)
	}
	return &player, nil
}

// pickTrack prefers manual captions over generated ones for each language
// in order, then falls back to the first track.
func (c *TranscriptClient) pickTrack(tracks []captionTrack) (captionTrack, bool) {
	if len(tracks) == 0 {
		return captionTrack{}, false
	}
	for _, lang := range c.languages {
		var generated *captionTrack
		for i := range tracks {
			t := tracks[i]
			if !strings.EqualFold(t.LanguageCode, lang) {
				continue
			}
			if t.Kind != "asr" {
				return t, true
			}
			if generated == nil {
				generated = &tracks[i]
			}
		}
		if generated != nil {
			return *generated, true
		}
	}
	return tracks[0], true
}

func (c *TranscriptClient) timedText(ctx context.Context, baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid caption url: %w", err)
	}
	q := u.Query()
	q.Del("fmt")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("caption request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("captions returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read captions: %w", err)
	}

	var tt timedText
	if err := xml.Unmarshal(data, &tt); err != nil {
		return "", fmt.Errorf("failed to decode captions: %w", err)
	}

	parts := make([]string, 0, len(tt.Segments))
	for _, seg := range tt.Segments {
		text := strings.TrimSpace(html.UnescapeString(seg.Text))
		if text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " "), nil
}
