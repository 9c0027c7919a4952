package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/bandhub/internal/index"
	"github.com/starford/bandhub/internal/library"
	"github.com/starford/bandhub/internal/matcher"
)

const maxBodyBytes = 1 << 20

// NewRouter creates a chi router with all API routes mounted.
// sseHandler, if non-nil, is mounted at GET /events.
// breaks are the set breaks used when a request does not name its own.
func NewRouter(svc *library.Service, idx index.SongIndex, sseHandler http.Handler, breaks library.Breaks) chi.Router {
	h := NewHandler(svc, idx, breaks, matcher.Options{})
	sd := NewSongDataHandler(svc)

	r := chi.NewRouter()
	r.Use(LimitBody(maxBodyBytes))

	// Songs.
	r.Get("/songs", h.ListSongs)
	r.Post("/songs", h.AddSong)
	r.Get("/songs/stats", h.Stats)
	r.Get("/songs/unplayed", h.Unplayed)
	r.Get("/songs/{name}", h.GetSong)
	r.Put("/songs/{name}", h.UpdateSong)
	r.Delete("/songs/{name}", h.DeleteSong)
	r.Get("/songs/{name}/plays", h.Plays)

	// Stored tab and lyrics.
	r.Get("/songs/{name}/tab", sd.GetTab)
	r.Get("/songs/{name}/lyrics", sd.GetLyrics)
	r.Put("/songs/{name}/lyrics", sd.PutLyrics)

	// Setlists.
	r.Get("/setlists", h.ListSetlists)
	r.Post("/setlists", h.CreateSetlist)
	r.Get("/setlists/venues", h.Venues)
	r.Get("/setlists/*", h.GetSetlist)
	r.Put("/setlists/*", h.UpdateSetlist)
	r.Delete("/setlists/*", h.DeleteSetlist)
	r.Get("/export/setlists/*", h.ExportSetlist)

	// Search and tab matching.
	r.Get("/search", h.Search)
	r.Post("/match", h.Match)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
