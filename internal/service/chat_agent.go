package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/woneiros/travel-planner/internal/domain"
	"github.com/woneiros/travel-planner/internal/llm"
	"github.com/woneiros/travel-planner/internal/security"
)

// HistoryWindow is how many past messages are replayed to the model
const HistoryWindow = 10

const maxFormattedResults = 5

const noMatchesReply = "I couldn't find any places matching your criteria. " +
	"Try a different search term or ask me about the available places!"

const chatSystemPrompt = `You are a helpful travel planning assistant.
You have access to places and recommendations extracted from %d YouTube travel video(s).

Your tools:
- search_places: Find places by name, type (restaurant/attraction/hotel/activity/coffee_shop/shopping/other), or keywords
- get_video_transcript: Get the full transcript of a video for more details

Guidelines:
1. Be concise and helpful in your responses
2. Always cite which video your recommendations come from
3. Use the search_places tool to find relevant places for user queries
4. If asked about specific details not in the place data, use get_video_transcript to find
   more context
5. Group similar recommendations together
6. Provide practical travel advice based on the extracted information

Available place types: restaurant, attraction, hotel, activity, coffee_shop, shopping, other

Total places available: %d`

// ChatReply is the agent's answer for one user turn
type ChatReply struct {
	Reply              string
	ReferencedPlaceIDs []string
}

// toolOutput is the result of one executed tool call
type toolOutput struct {
	kind   ToolKind
	places []PlaceResult
	text   string
}

// ChatAgent answers questions about a session's places with one model call
// and the search_places and get_video_transcript tools.
type ChatAgent struct {
	masker *security.PIIMasker
}

func NewChatAgent() *ChatAgent {
	return &ChatAgent{masker: security.NewPIIMasker()}
}

// Chat never mutates sess. Model and tool failures are returned as is.
func (a *ChatAgent) Chat(ctx context.Context, sess *domain.Session, message string, provider llm.Provider) (*ChatReply, error) {
	ctx, span := tracer.Start(ctx, "chat_with_agent")
	defer span.End()
	span.SetAttributes(
		attribute.String("session.id", sess.SessionID),
		attribute.String("user.query", a.masker.MaskString(message)),
		attribute.Int("places.available", len(sess.Places)),
		attribute.String("llm.provider", provider.Name()),
	)

	reply, err := a.chat(ctx, sess, message, provider)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "chat failed")
		log.Error().Err(err).Str("session_id", sess.SessionID).Msg("Chat agent failed")
		return nil, err
	}

	span.SetAttributes(attribute.Int("places.referenced", len(reply.ReferencedPlaceIDs)))
	log.Info().
		Str("session_id", sess.SessionID).
		Int("places_referenced", len(reply.ReferencedPlaceIDs)).
		Msg("Chat response generated")
	return reply, nil
}

func (a *ChatAgent) chat(ctx context.Context, sess *domain.Session, message string, provider llm.Provider) (*ChatReply, error) {
	tools, err := ChatTools()
	if err != nil {
		return nil, fmt.Errorf("failed to build tool definitions: %w", err)
	}

	resp, err := provider.Complete(ctx, llm.Request{
		Messages: buildChatMessages(sess, message),
		Tools:    tools,
	})
	if err != nil {
		return nil, err
	}

	reply := &ChatReply{Reply: resp.Content, ReferencedPlaceIDs: []string{}}
	if len(resp.ToolCalls) == 0 {
		return reply, nil
	}

	var outputs []toolOutput
	for _, tc := range resp.ToolCalls {
		inv, err := DecodeToolCall(tc)
		if errors.Is(err, ErrUnknownTool) {
			log.Warn().Str("tool", tc.Name).Msg("Model requested an unknown tool, skipping")
			continue
		}
		if err != nil {
			return nil, llm.Failure(provider.Name(), err)
		}

		log.Info().
			Str("tool", string(inv.Kind())).
			Str("args", a.masker.MaskString(string(tc.Arguments))).
			Msg("Executing tool")

		switch inv := inv.(type) {
		case SearchPlacesInvocation:
			results := SearchPlaces(sess.Places, inv.Args)
			reply.ReferencedPlaceIDs = append(reply.ReferencedPlaceIDs, matchPlaceIDs(sess.Places, results)...)
			outputs = append(outputs, toolOutput{kind: ToolSearchPlaces, places: results})
		case TranscriptInvocation:
			outputs = append(outputs, toolOutput{kind: ToolGetVideoTranscript, text: VideoTranscript(sess, inv.Args.VideoID)})
		}
	}

	if len(outputs) == 0 {
		return reply, nil
	}
	first := outputs[0]
	switch {
	case first.kind == ToolSearchPlaces:
		reply.Reply = formatSearchReply(first.places)
	case strings.TrimSpace(reply.Reply) == "":
		reply.Reply = first.text
	}
	return reply, nil
}

func buildChatMessages(sess *domain.Session, message string) []llm.Message {
	history := sess.RecentHistory(HistoryWindow)
	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.SystemMessage(fmt.Sprintf(chatSystemPrompt, len(sess.Videos), len(sess.Places))))
	for _, m := range history {
		if m.Role == domain.RoleAssistant {
			messages = append(messages, llm.AssistantMessage(m.Content))
		} else {
			messages = append(messages, llm.UserMessage(m.Content))
		}
	}
	return append(messages, llm.UserMessage(message))
}

// matchPlaceIDs maps results back to stored places by exact name and video id
func matchPlaceIDs(places []domain.Place, results []PlaceResult) []string {
	var ids []string
	for _, r := range results {
		for _, p := range places {
			if p.Name == r.Name && p.VideoID == r.VideoID {
				ids = append(ids, p.ID)
				break
			}
		}
	}
	return ids
}

func formatSearchReply(results []PlaceResult) string {
	if len(results) == 0 {
		return noMatchesReply
	}
	var b strings.Builder
	fmt.Fprintf(&b, "I found %d relevant place(s):\n\n", len(results))
	for i, r := range results {
		if i == maxFormattedResults {
			break
		}
		fmt.Fprintf(&b, "**%s** (%s)\n", r.Name, r.Type)
		fmt.Fprintf(&b, "%s\n", r.Description)
		fmt.Fprintf(&b, "_%s_\n\n", r.MentionedContext)
	}
	return b.String()
}
