package web

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/artpar/scaffold/domain/resource"
	"github.com/artpar/scaffold/ports"
)

// index lists a module's entities. Query parameters become the listing
// filter.
func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	mod, ok := h.module(w, r)
	if !ok {
		return
	}

	filter := resource.Filter{}
	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			filter[key] = values[0]
		}
	}

	writeOutcome(w, h.dispatcher.Index(r.Context(), h.actor(r), mod, filter))
}

// view shows a single entity.
func (h *Handler) view(w http.ResponseWriter, r *http.Request) {
	mod, ok := h.module(w, r)
	if !ok {
		return
	}
	writeOutcome(w, h.dispatcher.View(r.Context(), h.actor(r), mod, chi.URLParam(r, "id")))
}

// store creates a new entity via the built-in save action.
func (h *Handler) store(w http.ResponseWriter, r *http.Request) {
	mod, ok := h.module(w, r)
	if !ok {
		return
	}
	req, err := parseRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeOutcome(w, h.dispatcher.Dispatch(r.Context(), h.actor(r), mod, resource.Save(), "", req))
}

// update edits an existing entity via the built-in save action.
func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	mod, ok := h.module(w, r)
	if !ok {
		return
	}
	req, err := parseRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeOutcome(w, h.dispatcher.Dispatch(r.Context(), h.actor(r), mod, resource.Save(), chi.URLParam(r, "id"), req))
}

// delete removes an entity via the built-in delete action.
func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	mod, ok := h.module(w, r)
	if !ok {
		return
	}
	req := &resource.Request{Referrer: r.Referer()}
	writeOutcome(w, h.dispatcher.Dispatch(r.Context(), h.actor(r), mod, resource.Delete(), chi.URLParam(r, "id"), req))
}

// customAction runs a module-defined action against an entity.
func (h *Handler) customAction(w http.ResponseWriter, r *http.Request) {
	mod, ok := h.module(w, r)
	if !ok {
		return
	}

	name, err := resource.Custom(chi.URLParam(r, "action"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	req, err := parseRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Referrer = r.Referer()

	writeOutcome(w, h.dispatcher.Dispatch(r.Context(), h.actor(r), mod, name, chi.URLParam(r, "id"), req))
}

// deleteAttachment removes one attachment via the built-in detachFile
// action, so it flows through the full dispatch pipeline.
func (h *Handler) deleteAttachment(w http.ResponseWriter, r *http.Request) {
	mod, ok := h.module(w, r)
	if !ok {
		return
	}
	req := &resource.Request{
		MediaID:  chi.URLParam(r, "mediaID"),
		Referrer: r.Referer(),
	}
	writeOutcome(w, h.dispatcher.Dispatch(r.Context(), h.actor(r), mod, resource.DetachFile(), chi.URLParam(r, "id"), req))
}

// fetchMedia returns one page of an entity's media.
func (h *Handler) fetchMedia(w http.ResponseWriter, r *http.Request) {
	mod, ok := h.module(w, r)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	collection := r.URL.Query().Get("collection")

	writeOutcome(w, h.media.Fetch(r.Context(), h.actor(r), mod, chi.URLParam(r, "id"), collection, page))
}

// attachMedia stores an uploaded file on an entity.
func (h *Handler) attachMedia(w http.ResponseWriter, r *http.Request) {
	mod, ok := h.module(w, r)
	if !ok {
		return
	}

	file, header, err := r.FormFile("_media_")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file upload")
		return
	}
	defer file.Close()

	upload := ports.MediaUpload{
		Collection: chi.URLParam(r, "collection"),
		FileName:   header.Filename,
		MimeType:   header.Header.Get("Content-Type"),
		Content:    file,
	}
	writeOutcome(w, h.media.Attach(r.Context(), h.actor(r), mod, chi.URLParam(r, "id"), upload))
}

// detachMedia removes a media item directly through the media service.
func (h *Handler) detachMedia(w http.ResponseWriter, r *http.Request) {
	mod, ok := h.module(w, r)
	if !ok {
		return
	}
	writeOutcome(w, h.media.Detach(r.Context(), h.actor(r), mod, chi.URLParam(r, "id"), chi.URLParam(r, "mediaID")))
}

// searchRefs answers reference-picker lookups.
func (h *Handler) searchRefs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))

	refs, err := h.search.Search(r.Context(), q.Get("searchable"), q.Get("field"), q.Get("query"), limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("search failed")
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": refs})
}

// parseRequest decodes the submitted fields from a JSON body. An empty
// body yields an empty field map.
func parseRequest(r *http.Request) (*resource.Request, error) {
	req := &resource.Request{Fields: map[string]any{}, Referrer: r.Referer()}
	if r.Body == nil || r.ContentLength == 0 {
		return req, nil
	}
	if err := json.NewDecoder(r.Body).Decode(&req.Fields); err != nil {
		return nil, err
	}
	return req, nil
}
