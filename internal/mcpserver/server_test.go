package mcpserver

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/bandhub/internal/index"
	"github.com/starford/bandhub/internal/library"
	"github.com/starford/bandhub/internal/storage"
	"github.com/starford/bandhub/internal/testutil"
)

func testServer(t *testing.T) (*Server, storage.Provider) {
	t.Helper()

	_, store := testutil.TestDataRoot(t)
	testutil.Seed(t, store)

	db, err := index.Open(testutil.DBPath(t))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	layout := library.DefaultLayout()
	if _, err := index.Sync(db, store, layout, logger); err != nil {
		t.Fatal(err)
	}

	svc := library.NewService(store, layout, logger)
	return New(svc, db, library.DefaultBreaks()), store
}

func callTool(t *testing.T, srv *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	handlers := map[string]func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error){
		"search_songs":       srv.searchSongs,
		"get_song":           srv.getSong,
		"list_songs":         srv.listSongs,
		"list_setlists":      srv.listSetlists,
		"read_setlist":       srv.readSetlist,
		"get_song_plays":     srv.getSongPlays,
		"get_catalog_format": srv.getCatalogFormat,
		"save_lyrics":        srv.saveLyrics,
	}
	h, ok := handlers[name]
	if !ok {
		t.Fatalf("unknown tool: %s", name)
	}
	result, err := h(ctx, req)
	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestToolsRegistered(t *testing.T) {
	srv, _ := testServer(t)
	resp := srv.MCPServer().HandleMessage(context.Background(),
		json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	out, err := json.Marshal(resp)
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{
		"search_songs", "get_song", "list_songs", "list_setlists",
		"read_setlist", "get_song_plays", "get_catalog_format", "save_lyrics",
	} {
		if !strings.Contains(string(out), `"name":"`+name+`"`) {
			t.Errorf("tool %s not listed", name)
		}
	}
}

func TestSearchSongs(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "search_songs", map[string]any{"query": "Superstition"})
	var hits []index.SongHit
	if err := json.Unmarshal([]byte(resultText(r)), &hits); err != nil {
		t.Fatalf("decode: %v (%s)", err, resultText(r))
	}
	if len(hits) == 0 || hits[0].Name != "Superstition" {
		t.Errorf("hits = %+v", hits)
	}

	r = callTool(t, srv, "search_songs", map[string]any{})
	if !r.IsError {
		t.Error("expected error without query")
	}
}

func TestGetSong(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "get_song", map[string]any{"name": "Deal"})
	var song library.Song
	if err := json.Unmarshal([]byte(resultText(r)), &song); err != nil {
		t.Fatal(err)
	}
	if song.Artist != "Grateful Dead" || song.BPM != 120 || song.Duration != "03:30" {
		t.Errorf("song = %+v", song)
	}

	r = callTool(t, srv, "get_song", map[string]any{"name": "Nope"})
	if !r.IsError || resultText(r) != "not found: Nope" {
		t.Errorf("missing song = %q (error %v)", resultText(r), r.IsError)
	}
}

func TestListSongs(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "list_songs", map[string]any{})
	lines := strings.Split(resultText(r), "\n")
	if len(lines) != 4 || lines[0] != "Cocaine - JJ Cale (100)" {
		t.Errorf("lines = %q", lines)
	}

	r = callTool(t, srv, "list_songs", map[string]any{"kind": "horn"})
	if resultText(r) != "Superstition - Stevie Wonder (100)" {
		t.Errorf("horn = %q", resultText(r))
	}
}

func TestSetlists(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "list_setlists", map[string]any{})
	fields := strings.Split(resultText(r), "\t")
	if len(fields) != 3 || fields[1] != "The Cat's Cradle" || fields[2] != "03/07/25" {
		t.Fatalf("list = %q", resultText(r))
	}

	r = callTool(t, srv, "read_setlist", map[string]any{"id": fields[0]})
	var out setlistResult
	if err := json.Unmarshal([]byte(resultText(r)), &out); err != nil {
		t.Fatalf("decode: %v (%s)", err, resultText(r))
	}
	if strings.Join(out.Sets[0], ",") != "Cocaine,Deal" || out.Timing.Total != "46:06" {
		t.Errorf("setlist = %+v", out)
	}

	r = callTool(t, srv, "read_setlist", map[string]any{"id": "Nowhere Setlist (010101)/Nowhere Setlist (010101).md"})
	if !r.IsError {
		t.Error("expected error for missing setlist")
	}

	r = callTool(t, srv, "list_setlists", map[string]any{"venue": "Motorco"})
	if resultText(r) != "no setlists found" {
		t.Errorf("filtered = %q", resultText(r))
	}
}

func TestGetSongPlays(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "get_song_plays", map[string]any{"name": "Cocaine"})
	var plays []index.Play
	if err := json.Unmarshal([]byte(resultText(r)), &plays); err != nil {
		t.Fatal(err)
	}
	if len(plays) != 2 {
		t.Errorf("plays = %d, want 2", len(plays))
	}

	r = callTool(t, srv, "get_song_plays", map[string]any{"name": "Time"})
	if resultText(r) != "no plays found" {
		t.Errorf("unplayed = %q", resultText(r))
	}
}

func TestSaveLyrics(t *testing.T) {
	srv, store := testServer(t)
	r := callTool(t, srv, "save_lyrics", map[string]any{"name": "Deal", "lyrics": "Since it cost a lot to win"})
	if r.IsError {
		t.Fatalf("save: %s", resultText(r))
	}
	data, err := store.Read("song_data/lyrics/Deal.txt")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "Since it cost a lot to win\n" {
		t.Errorf("file = %q", data)
	}

	r = callTool(t, srv, "save_lyrics", map[string]any{"name": "Nope", "lyrics": "x"})
	if !r.IsError {
		t.Error("expected error for unknown song")
	}
}

func TestCatalogFormat(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "get_catalog_format", nil)
	if !strings.Contains(resultText(r), "^🎺 ^") {
		t.Error("contract does not describe the horn marker")
	}

	contents, err := srv.readCatalogFormatResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok || tc.URI != CatalogFormatURI {
		t.Errorf("resource = %+v", contents[0])
	}
}
