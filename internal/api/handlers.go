package api

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/bandhub/internal/index"
	"github.com/starford/bandhub/internal/library"
	"github.com/starford/bandhub/internal/matcher"
	"github.com/starford/bandhub/internal/models"
)

// Handler holds API route handlers.
type Handler struct {
	svc    *library.Service
	idx    index.SongIndex
	breaks library.Breaks
	match  matcher.Options
}

// NewHandler creates a new Handler.
func NewHandler(svc *library.Service, idx index.SongIndex, breaks library.Breaks, match matcher.Options) *Handler {
	return &Handler{svc: svc, idx: idx, breaks: breaks, match: match}
}

// songName extracts the {name} URL parameter. Names may carry encoded
// slashes (AC%2FDC).
func songName(r *http.Request) string {
	raw := chi.URLParam(r, "name")
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// ListSongs handles GET /api/songs.
//
//	@Summary		List catalog songs
//	@Tags			songs
//	@Produce		json
//	@Param			q		query		string	false	"Case-insensitive name filter"
//	@Param			kind	query		string	false	"Song kind"	Enums(all, horn, vocals)
//	@Success		200		{object}	SongListResponse
//	@Failure		400		{object}	errResponse
//	@Router			/songs [get]
func (h *Handler) ListSongs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	songs, err := h.svc.ListSongs(r.Context(), library.SongFilter{Query: q.Get("q"), Kind: q.Get("kind")})
	if err != nil {
		writeError(w, err, "list songs")
		return
	}
	writeJSON(w, http.StatusOK, SongListResponse{Songs: songs, Total: len(songs)})
}

// GetSong handles GET /api/songs/{name}.
//
//	@Summary		Get one song by exact name
//	@Tags			songs
//	@Produce		json
//	@Param			name	path		string	true	"Song name"
//	@Success		200		{object}	Song
//	@Failure		404		{object}	errResponse
//	@Router			/songs/{name} [get]
func (h *Handler) GetSong(w http.ResponseWriter, r *http.Request) {
	name := songName(r)
	song, err := h.svc.GetSong(r.Context(), name)
	if err != nil {
		writeError(w, err, "get song", slog.String("name", name))
		return
	}
	writeJSON(w, http.StatusOK, song)
}

// AddSong handles POST /api/songs.
//
//	@Summary		Add a song to the catalog
//	@Tags			songs
//	@Accept			json
//	@Produce		json
//	@Param			body	body		SongRequest	true	"Song to add"
//	@Success		201		{object}	Song
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Router			/songs [post]
func (h *Handler) AddSong(w http.ResponseWriter, r *http.Request) {
	var req SongRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	song, err := h.svc.AddSong(r.Context(), req)
	if err != nil {
		writeError(w, err, "add song", slog.String("name", req.Name))
		return
	}
	writeJSON(w, http.StatusCreated, song)
}

// UpdateSong handles PUT /api/songs/{name}.
//
//	@Summary		Replace a song, renaming it when the body names another
//	@Tags			songs
//	@Accept			json
//	@Produce		json
//	@Param			name	path		string		true	"Current song name"
//	@Param			body	body		SongRequest	true	"New song fields"
//	@Success		200		{object}	Song
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Router			/songs/{name} [put]
func (h *Handler) UpdateSong(w http.ResponseWriter, r *http.Request) {
	name := songName(r)
	var req SongRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		req.Name = name
	}
	song, err := h.svc.UpdateSong(r.Context(), name, req)
	if err != nil {
		writeError(w, err, "update song", slog.String("name", name))
		return
	}
	writeJSON(w, http.StatusOK, song)
}

// DeleteSong handles DELETE /api/songs/{name}.
//
//	@Summary		Remove a song from the catalog
//	@Tags			songs
//	@Param			name	path	string	true	"Song name"
//	@Success		204		"Song deleted"
//	@Failure		404		{object}	errResponse
//	@Router			/songs/{name} [delete]
func (h *Handler) DeleteSong(w http.ResponseWriter, r *http.Request) {
	name := songName(r)
	if err := h.svc.DeleteSong(r.Context(), name); err != nil {
		writeError(w, err, "delete song", slog.String("name", name))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Stats handles GET /api/songs/stats.
//
//	@Summary		Catalog totals
//	@Tags			songs
//	@Produce		json
//	@Success		200	{object}	library.Stats
//	@Router			/songs/stats [get]
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Stats(r.Context())
	if err != nil {
		writeError(w, err, "stats")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// Unplayed handles GET /api/songs/unplayed.
//
//	@Summary		Catalog songs that appear in no archived setlist
//	@Tags			songs
//	@Produce		json
//	@Success		200	{object}	UnplayedResponse
//	@Router			/songs/unplayed [get]
func (h *Handler) Unplayed(w http.ResponseWriter, r *http.Request) {
	names, err := h.idx.Unplayed()
	if err != nil {
		writeError(w, err, "unplayed")
		return
	}
	writeJSON(w, http.StatusOK, UnplayedResponse{Songs: names})
}

// Plays handles GET /api/songs/{name}/plays.
//
//	@Summary		Archived appearances of a song
//	@Tags			songs
//	@Produce		json
//	@Param			name	path		string	true	"Song name"
//	@Success		200		{object}	PlaysResponse
//	@Router			/songs/{name}/plays [get]
func (h *Handler) Plays(w http.ResponseWriter, r *http.Request) {
	name := songName(r)
	plays, err := h.idx.Plays(name)
	if err != nil {
		writeError(w, err, "plays", slog.String("name", name))
		return
	}
	writeJSON(w, http.StatusOK, PlaysResponse{Name: name, Count: len(plays), Plays: plays})
}

// Search handles GET /api/search.
//
//	@Summary		Search songs by name or artist
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.idx.SearchSongs(q, limit)
	if err != nil {
		writeError(w, err, "search", slog.String("query", q))
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// Match handles POST /api/match.
//
//	@Summary		Rank tab candidates for a song and pick the best one
//	@Tags			match
//	@Accept			json
//	@Produce		json
//	@Param			body	body		MatchRequest	true	"Query and candidates"
//	@Success		200		{object}	MatchResponse
//	@Failure		400		{object}	errResponse
//	@Router			/match [post]
func (h *Handler) Match(w http.ResponseWriter, r *http.Request) {
	var req MatchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	q := models.MatchQuery{Title: req.Title, Artist: req.Artist, PreferType: req.Prefer}
	ranked := h.match.Rank(q, req.Candidates)

	resp := MatchResponse{Ranked: make([]RankedCandidate, len(ranked))}
	for i, s := range ranked {
		resp.Ranked[i] = RankedCandidate{MatchCandidate: s.Candidate, Score: s.Score}
	}
	if len(ranked) > 0 {
		resp.URL, resp.Found = ranked[0].Candidate.URL, true
	}
	writeJSON(w, http.StatusOK, resp)
}
