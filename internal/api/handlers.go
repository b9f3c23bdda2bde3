package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/tagnote/internal/apperr"
	"github.com/starford/tagnote/internal/query"
	"github.com/starford/tagnote/internal/service"
)

// Handler holds API route handlers.
type Handler struct {
	svc *service.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// ListTags handles GET /tags.
func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.svc.Tags()
	if err != nil {
		h.storeError(w, "list tags", err)
		return
	}
	if tags == nil {
		tags = []string{}
	}
	writeJSON(w, http.StatusOK, TagListResponse{Tags: tags})
}

// Add handles POST /tags.
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req AddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("name is required"))
		return
	}
	created, err := h.svc.Add(req.Name, req.Categories)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrBadName), errors.Is(err, apperr.ErrInvalidParent):
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		case errors.Is(err, apperr.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorBody(err.Error()))
		default:
			h.storeError(w, "add", err)
		}
		return
	}
	if created == nil {
		created = []string{}
	}
	writeJSON(w, http.StatusCreated, AddResponse{Created: created})
}

// Members handles GET /tags/{tag}/members.
func (h *Handler) Members(w http.ResponseWriter, r *http.Request) {
	tag := chi.URLParam(r, "tag")
	members, err := h.svc.Members(tag)
	if err != nil {
		h.storeError(w, "members", err)
		return
	}
	if members == nil {
		members = []string{}
	}
	writeJSON(w, http.StatusOK, MembersResponse{Members: members})
}

// Categories handles GET /tags/{tag}/categories.
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	tag := chi.URLParam(r, "tag")
	cats, err := h.svc.Categories(tag)
	if err != nil {
		h.storeError(w, "categories", err)
		return
	}
	if cats == nil {
		cats = []string{}
	}
	writeJSON(w, http.StatusOK, CategoriesResponse{Categories: cats})
}

// Notes handles GET /tags/{tag}/notes with optional order and search
// query parameters.
func (h *Handler) Notes(w http.ResponseWriter, r *http.Request) {
	tag := chi.URLParam(r, "tag")
	dir, err := query.ParseDirection(r.URL.Query().Get("order"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	pattern := r.URL.Query().Get("search")

	blocks, err := h.svc.Show([]string{tag}, dir, pattern)
	if err != nil {
		h.storeError(w, "notes", err)
		return
	}
	out := make([]NoteBlock, len(blocks))
	for i, b := range blocks {
		out[i] = NoteBlock{ID: b.ID, Content: b.Content, Unavailable: b.Unavailable}
	}
	writeJSON(w, http.StatusOK, NotesResponse{Notes: out})
}

// Last handles GET /tags/{tag}/last.
func (h *Handler) Last(w http.ResponseWriter, r *http.Request) {
	tag := chi.URLParam(r, "tag")
	b, err := h.svc.Last([]string{tag})
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorBody("no notes"))
		case errors.Is(err, apperr.ErrContentUnavailable):
			writeJSON(w, http.StatusBadGateway, errorBody(err.Error()))
		default:
			h.storeError(w, "last", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, LastResponse{ID: b.ID, Content: b.Content})
}

// storeError maps store-level failures onto HTTP statuses.
func (h *Handler) storeError(w http.ResponseWriter, op string, err error) {
	slog.Error(op+" failed", slog.String("error", err.Error()))
	if errors.Is(err, apperr.ErrCorruptStore) || errors.Is(err, apperr.ErrStoreUnavailable) {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("store unavailable"))
		return
	}
	writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
}
