package youtube

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/woneiros/travel-planner/internal/domain"
)

var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/)([^&?/]+)`),
	regexp.MustCompile(`youtube\.com/v/([^&?/]+)`),
}

// ExtractVideoID returns the video id of a watch, short, embed or /v/ URL.
// Other youtube.com URLs fall back to their "v" query parameter.
func ExtractVideoID(rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)

	for _, re := range videoIDPatterns {
		if m := re.FindStringSubmatch(rawURL); m != nil {
			return m[1], nil
		}
	}

	if parsed, err := url.Parse(rawURL); err == nil && strings.Contains(parsed.Host, "youtube.com") {
		if v := parsed.Query().Get("v"); v != "" {
			return v, nil
		}
	}

	return "", fmt.Errorf("%w: could not extract video ID from URL: %s", domain.ErrInvalidInput, rawURL)
}
