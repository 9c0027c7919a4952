package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/bandhub/internal/library"
	"github.com/starford/bandhub/internal/models"
)

// maxBreakMinutes bounds the break query parameters.
const maxBreakMinutes = 60

// setlistPath maps the wildcard of /setlists/* onto a data-root path.
// Supports encoded slashes from clients that escape the whole id.
func (h *Handler) setlistPath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	if decoded, err := url.PathUnescape(raw); err == nil {
		raw = decoded
	}
	return path.Join(h.svc.Layout().SetlistsDir, raw)
}

func (h *Handler) item(sl *models.Setlist) SetlistItem {
	return SetlistItem{
		ID:      strings.TrimPrefix(sl.Path, path.Clean(h.svc.Layout().SetlistsDir)+"/"),
		Setlist: sl,
	}
}

// breaksParam reads break1/break2 (minutes) and falls back to the defaults.
func (h *Handler) breaksParam(r *http.Request) (library.Breaks, error) {
	b := h.breaks
	q := r.URL.Query()
	for _, p := range []struct {
		name string
		dst  *int
	}{{"break1", &b.AfterSet1}, {"break2", &b.AfterSet2}} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > maxBreakMinutes {
			return b, fmt.Errorf("%s must be an integer between 0 and %d", p.name, maxBreakMinutes)
		}
		*p.dst = n
	}
	return b, nil
}

// ListSetlists handles GET /api/setlists.
//
//	@Summary		List archived setlists, newest first
//	@Tags			setlists
//	@Produce		json
//	@Param			venue	query		string	false	"Exact venue filter"
//	@Success		200		{object}	SetlistListResponse
//	@Router			/setlists [get]
func (h *Handler) ListSetlists(w http.ResponseWriter, r *http.Request) {
	sls, err := h.svc.ListSetlists(r.Context(), r.URL.Query().Get("venue"))
	if err != nil {
		writeError(w, err, "list setlists")
		return
	}
	items := make([]SetlistItem, len(sls))
	for i := range sls {
		items[i] = h.item(&sls[i])
	}
	writeJSON(w, http.StatusOK, SetlistListResponse{Setlists: items, Total: len(items)})
}

// Venues handles GET /api/setlists/venues.
//
//	@Summary		Distinct archived venues
//	@Tags			setlists
//	@Produce		json
//	@Success		200	{object}	VenuesResponse
//	@Router			/setlists/venues [get]
func (h *Handler) Venues(w http.ResponseWriter, r *http.Request) {
	venues, err := h.svc.Venues(r.Context())
	if err != nil {
		writeError(w, err, "venues")
		return
	}
	writeJSON(w, http.StatusOK, VenuesResponse{Venues: venues})
}

// GetSetlist handles GET /api/setlists/*.
//
//	@Summary		Get a setlist with its estimated timing
//	@Tags			setlists
//	@Produce		json
//	@Param			id		path		string	true	"Setlist id"
//	@Param			break1	query		int		false	"Minutes of the first break"
//	@Param			break2	query		int		false	"Minutes of the second break"
//	@Success		200		{object}	SetlistDetail
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Router			/setlists/{id} [get]
func (h *Handler) GetSetlist(w http.ResponseWriter, r *http.Request) {
	p := h.setlistPath(r)
	if p == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("setlist id is required"))
		return
	}
	breaks, err := h.breaksParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	sl, err := h.svc.GetSetlist(r.Context(), p)
	if err != nil {
		writeError(w, err, "get setlist", slog.String("path", p))
		return
	}
	writeJSON(w, http.StatusOK, SetlistDetail{
		SetlistItem: h.item(sl),
		Timing:      h.svc.Timing(r.Context(), sl, breaks),
	})
}

// CreateSetlist handles POST /api/setlists.
//
//	@Summary		Save a new setlist
//	@Tags			setlists
//	@Accept			json
//	@Produce		json
//	@Param			body	body		SetlistRequest	true	"Venue, date and sets"
//	@Success		201		{object}	SetlistItem
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Router			/setlists [post]
func (h *Handler) CreateSetlist(w http.ResponseWriter, r *http.Request) {
	var req SetlistRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sl, err := h.svc.CreateSetlist(r.Context(), req)
	if err != nil {
		writeError(w, err, "create setlist", slog.String("venue", req.Venue))
		return
	}
	writeJSON(w, http.StatusCreated, h.item(sl))
}

// UpdateSetlist handles PUT /api/setlists/*.
//
//	@Summary		Replace a setlist; a new venue or date moves it
//	@Tags			setlists
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Setlist id"
//	@Param			body	body		SetlistRequest	true	"Venue, date and sets"
//	@Success		200		{object}	SetlistItem
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Router			/setlists/{id} [put]
func (h *Handler) UpdateSetlist(w http.ResponseWriter, r *http.Request) {
	p := h.setlistPath(r)
	if p == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("setlist id is required"))
		return
	}
	var req SetlistRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sl, err := h.svc.UpdateSetlist(r.Context(), p, req)
	if err != nil {
		writeError(w, err, "update setlist", slog.String("path", p))
		return
	}
	writeJSON(w, http.StatusOK, h.item(sl))
}

// DeleteSetlist handles DELETE /api/setlists/*.
//
//	@Summary		Delete a setlist
//	@Tags			setlists
//	@Param			id	path	string	true	"Setlist id"
//	@Success		204	"Setlist deleted"
//	@Failure		404	{object}	errResponse
//	@Router			/setlists/{id} [delete]
func (h *Handler) DeleteSetlist(w http.ResponseWriter, r *http.Request) {
	p := h.setlistPath(r)
	if p == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("setlist id is required"))
		return
	}
	if err := h.svc.DeleteSetlist(r.Context(), p); err != nil {
		writeError(w, err, "delete setlist", slog.String("path", p))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExportSetlist handles GET /api/export/setlists/*.
//
//	@Summary		Download a setlist as JSON
//	@Tags			setlists
//	@Produce		json
//	@Param			id		path		string	true	"Setlist id"
//	@Param			break1	query		int		false	"Minutes of the first break"
//	@Param			break2	query		int		false	"Minutes of the second break"
//	@Success		200		{object}	library.ExportDocument
//	@Failure		404		{object}	errResponse
//	@Router			/export/setlists/{id} [get]
func (h *Handler) ExportSetlist(w http.ResponseWriter, r *http.Request) {
	p := h.setlistPath(r)
	if p == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("setlist id is required"))
		return
	}
	breaks, err := h.breaksParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	sl, err := h.svc.GetSetlist(r.Context(), p)
	if err != nil {
		writeError(w, err, "export setlist", slog.String("path", p))
		return
	}
	data, err := json.MarshalIndent(h.svc.Export(r.Context(), sl, breaks), "", "  ")
	if err != nil {
		writeError(w, err, "export setlist", slog.String("path", p))
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", library.ExportFileName(sl.Venue, sl.Date)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
