package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"registra/internal/registry"
	"registra/internal/types"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
)

const (
	DefaultPageSize = 20
	maxBodyBytes    = 1 << 20
)

type Handler struct {
	Svc        *registry.Service
	AdminToken string
}

func NewHandler(svc *registry.Service, adminToken string) *Handler {
	return &Handler{Svc: svc, AdminToken: adminToken}
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/companies", h.handleList)
	r.Get("/companies/{id}", h.handleFetchOne)
	r.Post("/companies", h.handleRegister)
	r.Post("/companies/{id}", h.handleUpdate)
	r.Delete("/companies/{id}", h.handleRemove)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return r
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	offset := intQuery(r, "page", 0)
	limit := intQuery(r, "max", DefaultPageSize)

	views, err := h.Svc.List(r.Context(), offset, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *Handler) handleFetchOne(w http.ResponseWriter, r *http.Request) {
	view, err := h.Svc.FetchOne(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if !h.admitWrite(w, r) {
		return
	}
	var draft types.CompanyDraft
	if !decodeBody(w, r, &draft) {
		return
	}
	res, err := h.Svc.Register(r.Context(), draft)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if !h.admitWrite(w, r) {
		return
	}
	var patch types.CompanyPatch
	if !decodeBody(w, r, &patch) {
		return
	}
	res, err := h.Svc.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) handleRemove(w http.ResponseWriter, r *http.Request) {
	// Remove carries no body, so only the admin token is checked.
	if !h.checkAdminToken(w, r) {
		return
	}
	res, err := h.Svc.Remove(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// admitWrite enforces the guard order for mutating requests: the admin
// token is always checked before the content type, and both before any id
// or body validation takes place.
func (h *Handler) admitWrite(w http.ResponseWriter, r *http.Request) bool {
	if !h.checkAdminToken(w, r) {
		return false
	}
	ct := r.Header.Get("Content-Type")
	if mediaType(ct) != types.ContentTypeJSON {
		writeError(w, types.Err(types.ErrUnsupportedMedia, nil, "content-type must be %s", types.ContentTypeJSON))
		return false
	}
	return true
}

func (h *Handler) checkAdminToken(w http.ResponseWriter, r *http.Request) bool {
	token := r.Header.Get(types.AdminTokenHdrName)
	if token == "" || token != h.AdminToken {
		writeError(w, types.Err(types.ErrUnauthorized, nil, "missing or incorrect admin token"))
		return false
	}
	return true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	defer func() {
		_ = r.Body.Close()
	}()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, types.Err(types.ErrValidation, nil, "read error"))
		return false
	}
	if len(body) == 0 {
		// An absent body is an empty draft/patch; field validation decides.
		return true
	}
	if err := json.Unmarshal(body, v); err != nil {
		writeError(w, types.Err(types.ErrValidation, nil, "invalid json"))
		return false
	}
	return true
}

// mediaType strips parameters like "; charset=utf-8" and lowercases.
func mediaType(ct string) string {
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}

func intQuery(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}

// writeError maps the error taxonomy onto a status code and renders a
// sanitized message; store internals never reach the response body.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, types.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, types.ErrUnsupportedMedia):
		status = http.StatusUnsupportedMediaType
	case errors.Is(err, types.ErrInvalidID), errors.Is(err, types.ErrValidation):
		status = http.StatusPreconditionFailed
	case errors.Is(err, types.ErrDuplicate):
		status = http.StatusConflict
	case errors.Is(err, types.ErrNotFound):
		status = http.StatusNotFound
	}
	_ = writeJSON(w, status, map[string]any{"error": publicMessage(err)})
}

func publicMessage(err error) string {
	var fe types.FieldErrors
	if errors.As(err, &fe) {
		return fe.Render()
	}
	switch {
	case errors.Is(err, types.ErrUnauthorized):
		return "missing or incorrect admin token"
	case errors.Is(err, types.ErrUnsupportedMedia):
		return "content-type must be " + types.ContentTypeJSON
	case errors.Is(err, types.ErrInvalidID):
		return err.Error()
	case errors.Is(err, types.ErrValidation):
		return err.Error()
	case errors.Is(err, types.ErrDuplicate):
		return "company with this title already exists"
	case errors.Is(err, types.ErrNotFound):
		return "company not found"
	case errors.Is(err, types.ErrIndex):
		return "search index unavailable"
	default:
		return "internal error"
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, code int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(v)
}
