package api

import (
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/starford/bandhub/internal/library"
)

// SongDataHandler serves and accepts the per-song files kept next to the
// catalog: fetched tabs and lyrics.
type SongDataHandler struct {
	svc *library.Service
}

// NewSongDataHandler creates a handler over the library's song data.
func NewSongDataHandler(svc *library.Service) *SongDataHandler {
	return &SongDataHandler{svc: svc}
}

// GetTab handles GET /api/songs/{name}/tab.
//
//	@Summary		Stored tab for a song
//	@Tags			songs
//	@Produce		json
//	@Param			name	path		string	true	"Song name"
//	@Success		200		{object}	models.TabPayload
//	@Failure		404		{object}	errResponse
//	@Router			/songs/{name}/tab [get]
func (h *SongDataHandler) GetTab(w http.ResponseWriter, r *http.Request) {
	name := songName(r)
	tab, err := h.svc.ReadTab(r.Context(), name)
	if err != nil {
		writeError(w, err, "read tab", slog.String("name", name))
		return
	}
	writeJSON(w, http.StatusOK, tab)
}

// GetLyrics handles GET /api/songs/{name}/lyrics. Clients asking for
// text/plain get the raw text; everyone else gets LyricsBody.
//
//	@Summary		Stored lyrics for a song
//	@Tags			songs
//	@Produce		json,plain
//	@Param			name	path		string	true	"Song name"
//	@Success		200		{object}	LyricsBody
//	@Failure		404		{object}	errResponse
//	@Router			/songs/{name}/lyrics [get]
func (h *SongDataHandler) GetLyrics(w http.ResponseWriter, r *http.Request) {
	name := songName(r)
	lyrics, err := h.svc.ReadLyrics(r.Context(), name)
	if err != nil {
		writeError(w, err, "read lyrics", slog.String("name", name))
		return
	}
	if strings.HasPrefix(r.Header.Get("Accept"), "text/plain") {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, lyrics+"\n")
		return
	}
	writeJSON(w, http.StatusOK, LyricsBody{Name: name, Lyrics: lyrics})
}

// PutLyrics handles PUT /api/songs/{name}/lyrics with either a JSON
// LyricsBody or a text/plain body.
//
//	@Summary		Store lyrics for a song
//	@Tags			songs
//	@Accept			json,plain
//	@Produce		json
//	@Param			name	path		string		true	"Song name"
//	@Param			body	body		LyricsBody	true	"Lyrics"
//	@Success		200		{object}	LyricsBody
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Router			/songs/{name}/lyrics [put]
func (h *SongDataHandler) PutLyrics(w http.ResponseWriter, r *http.Request) {
	name := songName(r)
	if _, err := h.svc.GetSong(r.Context(), name); err != nil {
		writeError(w, err, "save lyrics", slog.String("name", name))
		return
	}

	var lyrics string
	if strings.HasPrefix(r.Header.Get("Content-Type"), "text/plain") {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("failed to read body"))
			return
		}
		lyrics = string(data)
	} else {
		var req LyricsBody
		if !decodeJSON(w, r, &req) {
			return
		}
		lyrics = req.Lyrics
	}

	if _, err := h.svc.SaveLyrics(r.Context(), name, lyrics); err != nil {
		writeError(w, err, "save lyrics", slog.String("name", name))
		return
	}
	saved, err := h.svc.ReadLyrics(r.Context(), name)
	if err != nil {
		writeError(w, err, "save lyrics", slog.String("name", name))
		return
	}
	writeJSON(w, http.StatusOK, LyricsBody{Name: name, Lyrics: saved})
}
