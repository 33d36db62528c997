package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woneiros/travel-planner/internal/domain"
	"github.com/woneiros/travel-planner/internal/llm"
	"github.com/woneiros/travel-planner/internal/service"
)

type stubFetcher struct {
	videos map[string]*domain.Video
}

func (f stubFetcher) Fetch(_ context.Context, url string) (*domain.Video, error) {
	v, ok := f.videos[url]
	if !ok {
		return nil, domain.NewVideoError("", domain.ErrTranscriptUnavailable, errors.New("no captions"))
	}
	return v, nil
}

type stubProvider struct{}

func (stubProvider) Name() string              { return "openai" }
func (stubProvider) AvailableModels() []string { return []string{"m"} }
func (stubProvider) DefaultModel() string      { return "m" }
func (stubProvider) IsConfigured() bool        { return true }

func (stubProvider) Complete(context.Context, llm.Request) (*llm.Response, error) {
	return &llm.Response{}, nil
}

func (stubProvider) CompleteStructured(context.Context, llm.Request, llm.Schema) (json.RawMessage, error) {
	return json.RawMessage(`{"suggested_title":"Paris Eats","suggested_summary":"Food tour","places":[
		{"name":"Le Bistro","type":"restaurant","description":"Classic","mentioned_context":"best steak frites","timestamp_seconds":125,"neighborhood":"Le Marais"}]}`), nil
}

func newTestCommand(out, errOut *bytes.Buffer) *cobra.Command {
	cmd := newRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetContext(context.Background())
	return cmd
}

func TestRun_PrintsPlaces(t *testing.T) {
	var out, errOut bytes.Buffer
	cmd := newTestCommand(&out, &errOut)
	fetcher := stubFetcher{videos: map[string]*domain.Video{
		"https://youtu.be/abc": {VideoID: "abc", Title: "Paris", Transcript: "we ate at le bistro"},
	}}

	err := run(cmd, []string{"https://youtu.be/abc", "https://youtu.be/missing"}, fetcher, service.NewExtractor(), stubProvider{})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Paris Eats (abc)")
	assert.Contains(t, out.String(), "Le Bistro")
	assert.Contains(t, out.String(), "Le Marais")
	assert.Contains(t, out.String(), "2:05")
	assert.Contains(t, errOut.String(), "https://youtu.be/missing")
}

func TestRun_AllFailed(t *testing.T) {
	var out, errOut bytes.Buffer
	cmd := newTestCommand(&out, &errOut)

	err := run(cmd, []string{"https://youtu.be/missing"}, stubFetcher{}, service.NewExtractor(), stubProvider{})
	assert.ErrorIs(t, err, errAllFailed)
	assert.Empty(t, out.String())
}

func TestFormatTimestamp(t *testing.T) {
	seconds := func(n int) *int { return &n }

	assert.Equal(t, "-", formatTimestamp(nil))
	assert.Equal(t, "0:07", formatTimestamp(seconds(7)))
	assert.Equal(t, "2:05", formatTimestamp(seconds(125)))
	assert.Equal(t, "1:01:01", formatTimestamp(seconds(3661)))
}
