package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"github.com/woneiros/travel-planner/internal/domain"
	"github.com/woneiros/travel-planner/internal/security"
	"github.com/woneiros/travel-planner/internal/service"
)

const (
	serverName    = "travel-planner"
	serverVersion = "1.0.0"
)

var masker = security.NewPIIMasker()

// SessionReader resolves a live session
type SessionReader interface {
	Get(id string) (*domain.Session, error)
}

// Server exposes the chat tools of a session to external MCP clients
type Server struct {
	sessions SessionReader
	mcp      *server.MCPServer
}

// NewServer registers search_places and get_video_transcript
func NewServer(sessions SessionReader) *Server {
	s := &Server{
		sessions: sessions,
		mcp:      server.NewMCPServer(serverName, serverVersion, server.WithToolCapabilities(false)),
	}

	s.mcp.AddTool(mcp.NewTool(string(service.ToolSearchPlaces),
		mcp.WithDescription("Search the places extracted from a session's videos by keyword and type."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier")),
		mcp.WithString("query", mcp.Description("Text matched against name, description and what the creator said")),
		mcp.WithString("place_type", mcp.Description("One of restaurant, attraction, hotel, activity, coffee_shop, shopping, other")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 10)")),
	), s.searchPlaces)

	s.mcp.AddTool(mcp.NewTool(string(service.ToolGetVideoTranscript),
		mcp.WithDescription("Get the full transcript of a video in a session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier")),
		mcp.WithString("video_id", mcp.Required(), mcp.Description("YouTube video ID")),
	), s.videoTranscript)

	return s
}

// Handler serves the streamable HTTP transport
func (s *Server) Handler() http.Handler {
	return server.NewStreamableHTTPServer(s.mcp)
}

func (s *Server) session(req mcp.CallToolRequest) (*domain.Session, *mcp.CallToolResult) {
	log.Debug().
		Str("tool", req.Params.Name).
		Interface("arguments", masker.Mask(req.GetArguments())).
		Msg("MCP tool call")

	id, err := req.RequireString("session_id")
	if err != nil {
		return nil, mcp.NewToolResultError(err.Error())
	}
	sess, err := s.sessions.Get(id)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return nil, mcp.NewToolResultError(fmt.Sprintf("Session %s does not exist or has expired.", id))
	}
	if err != nil {
		return nil, mcp.NewToolResultError(err.Error())
	}
	return sess, nil
}

func (s *Server) searchPlaces(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, errResult := s.session(req)
	if errResult != nil {
		return errResult, nil
	}

	results := service.SearchPlaces(sess.Places, service.SearchPlacesArgs{
		Query:     req.GetString("query", ""),
		PlaceType: req.GetString("place_type", ""),
		Limit:     req.GetInt("limit", 0),
	})

	data, err := json.Marshal(results)
	if err != nil {
		return nil, fmt.Errorf("failed to encode results: %w", err)
	}
	log.Debug().Str("session_id", sess.SessionID).Int("results", len(results)).Msg("MCP search_places")
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) videoTranscript(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, errResult := s.session(req)
	if errResult != nil {
		return errResult, nil
	}
	videoID, err := req.RequireString("video_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(service.VideoTranscript(sess, videoID)), nil
}
