// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the band library to LLM tools via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/bandhub/internal/apperr"
	"github.com/starford/bandhub/internal/index"
	"github.com/starford/bandhub/internal/library"
)

const searchLimit = 20

// Server wraps the MCP server with bandhub tools.
type Server struct {
	mcp    *server.MCPServer
	svc    *library.Service
	idx    index.SongIndex
	breaks library.Breaks
}

// New creates a new MCP server with all bandhub tools registered.
func New(svc *library.Service, idx index.SongIndex, breaks library.Breaks) *Server {
	s := &Server{svc: svc, idx: idx, breaks: breaks}

	s.mcp = server.NewMCPServer(
		"Bandhub",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_songs",
		mcp.WithDescription("Search catalog songs by name or artist. Results include play counts."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchSongs)

	s.mcp.AddTool(mcp.NewTool("get_song",
		mcp.WithDescription("Get one catalog song by exact name, with BPM, markers and estimated duration."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Exact song name")),
	), s.getSong)

	s.mcp.AddTool(mcp.NewTool("list_songs",
		mcp.WithDescription("List catalog songs, optionally filtered by name and kind."),
		mcp.WithString("query", mcp.Description("Case-insensitive name substring")),
		mcp.WithString("kind", mcp.Description("all, horn or vocals")),
	), s.listSongs)

	s.mcp.AddTool(mcp.NewTool("list_setlists",
		mcp.WithDescription("List archived setlists, newest first. Returns one 'id<TAB>venue<TAB>date' line per show."),
		mcp.WithString("venue", mcp.Description("Optional exact venue filter")),
	), s.listSetlists)

	s.mcp.AddTool(mcp.NewTool("read_setlist",
		mcp.WithDescription("Read one setlist with its estimated set and show durations."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Setlist id as returned by list_setlists")),
	), s.readSetlist)

	s.mcp.AddTool(mcp.NewTool("get_song_plays",
		mcp.WithDescription("List the archived shows in which a song was played."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Exact song name")),
	), s.getSongPlays)

	s.mcp.AddTool(mcp.NewTool("get_catalog_format",
		mcp.WithDescription("Returns the song list and setlist file format contract. "+
			"Call this before proposing catalog or setlist edits."),
	), s.getCatalogFormat)

	s.mcp.AddTool(mcp.NewTool("save_lyrics",
		mcp.WithDescription("Store lyrics for a catalog song, replacing any existing lyrics."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Exact song name")),
		mcp.WithString("lyrics", mcp.Required(), mcp.Description("Plain-text lyrics")),
	), s.saveLyrics)

	// Resource: catalog format contract.
	s.mcp.AddResource(
		mcp.NewResource(CatalogFormatURI, "Catalog Format Contract",
			mcp.WithResourceDescription("Song list and setlist Markdown formats."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readCatalogFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

// optString returns an optional string argument, empty when absent.
func optString(req mcp.CallToolRequest, key string) string {
	if v, err := req.RequireString(key); err == nil {
		return v
	}
	return ""
}

func errorResult(err error, what string) *mcp.CallToolResult {
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError("not found: " + what)
	}
	return mcp.NewToolResultError(err.Error())
}

func (s *Server) searchSongs(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.idx.SearchSongs(query, searchLimit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(results), nil
}

func (s *Server) getSong(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	song, err := s.svc.GetSong(ctx, name)
	if err != nil {
		return errorResult(err, name), nil
	}
	return jsonResult(song), nil
}

func (s *Server) listSongs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	f := library.SongFilter{
		Query: optString(req, "query"),
		Kind:  optString(req, "kind"),
	}
	songs, err := s.svc.ListSongs(ctx, f)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	lines := make([]string, len(songs))
	for i, song := range songs {
		lines[i] = fmt.Sprintf("%s (%d)", song.DisplayName(), song.BPM)
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) listSetlists(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sls, err := s.svc.ListSetlists(ctx, optString(req, "venue"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(sls) == 0 {
		return mcp.NewToolResultText("no setlists found"), nil
	}
	prefix := path.Clean(s.svc.Layout().SetlistsDir) + "/"
	lines := make([]string, len(sls))
	for i, sl := range sls {
		lines[i] = strings.TrimPrefix(sl.Path, prefix) + "\t" + sl.Venue + "\t" + sl.Date
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

type setlistResult struct {
	Venue  string         `json:"venue"`
	Date   string         `json:"date"`
	Sets   [3][]string    `json:"sets"`
	Timing library.Timing `json:"timing"`
}

func (s *Server) readSetlist(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sl, err := s.svc.GetSetlist(ctx, path.Join(s.svc.Layout().SetlistsDir, id))
	if err != nil {
		return errorResult(err, id), nil
	}
	out := setlistResult{Venue: sl.Venue, Date: sl.Date, Timing: s.svc.Timing(ctx, sl, s.breaks)}
	for i, set := range sl.Sets {
		out.Sets[i] = make([]string, len(set))
		for j, song := range set {
			out.Sets[i][j] = song.Name
		}
	}
	return jsonResult(out), nil
}

func (s *Server) getSongPlays(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	plays, err := s.idx.Plays(name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(plays) == 0 {
		return mcp.NewToolResultText("no plays found"), nil
	}
	return jsonResult(plays), nil
}

func (s *Server) getCatalogFormat(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(CatalogFormatContract), nil
}

func (s *Server) saveLyrics(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	lyrics, err := req.RequireString("lyrics")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if _, err := s.svc.GetSong(ctx, name); err != nil {
		return errorResult(err, name), nil
	}
	p, err := s.svc.SaveLyrics(ctx, name, lyrics)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("saved: " + p), nil
}

func (s *Server) readCatalogFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      CatalogFormatURI,
			MIMEType: "text/markdown",
			Text:     CatalogFormatContract,
		},
	}, nil
}
