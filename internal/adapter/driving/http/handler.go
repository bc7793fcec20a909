// Package httphandler is the JSON API driving adapter.
package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ericfisherdev/repowatch/internal/application"
	"github.com/ericfisherdev/repowatch/internal/domain/model"
	"github.com/ericfisherdev/repowatch/internal/domain/port/driven"
)

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	watchlist *application.WatchlistService
	sessions  *application.SessionRegistry
	logger    *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	watchlist *application.WatchlistService,
	sessions *application.SessionRegistry,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		watchlist: watchlist,
		sessions:  sessions,
		logger:    logger,
	}
}

// RegisterAPIRoutes registers all /api/v1 routes on mux.
func RegisterAPIRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("GET /api/v1/health", h.Health)

	mux.HandleFunc("GET /api/v1/watchlist", h.GetWatchlist)
	mux.HandleFunc("POST /api/v1/watchlist", h.AddRepository)

	mux.HandleFunc("POST /api/v1/sessions", h.OpenSession)
	mux.HandleFunc("GET /api/v1/sessions/{id}", h.GetSession)
	mux.HandleFunc("PUT /api/v1/sessions/{id}/filter", h.ChangeFilter)
	mux.HandleFunc("PUT /api/v1/sessions/{id}/page", h.ChangePage)
	mux.HandleFunc("DELETE /api/v1/sessions/{id}", h.CloseSession)
}

// GetWatchlist returns the watch list view model.
func (h *Handler) GetWatchlist(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, toWatchlistResponse(h.watchlist.State()))
}

// AddRepository validates a repository against GitHub and appends it to the
// watch list.
func (h *Handler) AddRepository(w http.ResponseWriter, r *http.Request) {
	var req AddRepoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	name := strings.TrimSpace(req.Name)
	h.watchlist.SetNewRepoName(name)
	if err := h.watchlist.AddRepository(r.Context(), name); err != nil {
		status := statusForError(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("failed to add repository", "repo", name, "error", err)
		}
		writeJSON(w, status, toWatchlistResponse(h.watchlist.State()))
		return
	}

	writeJSON(w, http.StatusCreated, toWatchlistResponse(h.watchlist.State()))
}

// OpenSession starts a browse session and runs its initial load.
func (h *Handler) OpenSession(w http.ResponseWriter, r *http.Request) {
	var req OpenSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	identifier := strings.TrimSpace(req.Repository)
	if identifier == "" {
		writeError(w, http.StatusBadRequest, "repository is required")
		return
	}

	id, browser, err := h.sessions.Open(r.Context(), identifier)
	if err != nil {
		h.logger.Error("failed to open browse session", "repo", identifier, "error", err)
		writeError(w, statusForError(err), errorMessage(err))
		return
	}

	writeJSON(w, http.StatusCreated, SessionResponse{
		ID:    id,
		State: toBrowseResponse(browser.State()),
	})
}

// GetSession returns the browse state of a session.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	browser, ok := h.browser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toBrowseResponse(browser.State()))
}

// ChangeFilter switches the issue filter of a session. A failed refresh is
// logged and the previous issues are returned with 200.
func (h *Handler) ChangeFilter(w http.ResponseWriter, r *http.Request) {
	browser, ok := h.browser(w, r)
	if !ok {
		return
	}

	var req FilterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	filter, err := model.ParseIssueFilter(req.State)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := browser.ChangeFilter(r.Context(), filter); err != nil {
		if !isRemoteError(err) {
			writeError(w, statusForError(err), errorMessage(err))
			return
		}
		h.logger.Warn("filter refresh failed, keeping previous issues", "session", r.PathValue("id"), "error", err)
	}

	writeJSON(w, http.StatusOK, toBrowseResponse(browser.State()))
}

// ChangePage moves a session one page forward or back.
func (h *Handler) ChangePage(w http.ResponseWriter, r *http.Request) {
	browser, ok := h.browser(w, r)
	if !ok {
		return
	}

	var req PageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	dir, err := model.ParsePageDirection(req.Direction)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := browser.ChangePage(r.Context(), dir); err != nil {
		if isRemoteError(err) {
			h.logger.Error("page refresh failed", "session", r.PathValue("id"), "error", err)
			writeError(w, http.StatusBadGateway, "failed to load issues")
			return
		}
		writeError(w, statusForError(err), errorMessage(err))
		return
	}

	writeJSON(w, http.StatusOK, toBrowseResponse(browser.State()))
}

// CloseSession tears a browse session down.
func (h *Handler) CloseSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Close(r.PathValue("id")); err != nil {
		writeError(w, statusForError(err), errorMessage(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:   "ok",
		Time:     time.Now().UTC().Format(time.RFC3339),
		Sessions: h.sessions.Len(),
	})
}

// browser resolves the {id} path value, writing a 404 when the session is unknown.
func (h *Handler) browser(w http.ResponseWriter, r *http.Request) (*application.IssueBrowser, bool) {
	browser, err := h.sessions.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, errorMessage(err))
		return nil, false
	}
	return browser, true
}

// statusForError maps domain and port sentinel errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, application.ErrInvalidRepositoryName):
		return http.StatusBadRequest
	case errors.Is(err, application.ErrDuplicateRepository):
		return http.StatusConflict
	case errors.Is(err, driven.ErrNotFound),
		errors.Is(err, application.ErrSessionNotFound),
		errors.Is(err, application.ErrSessionClosed):
		return http.StatusNotFound
	case errors.Is(err, application.ErrNotLoaded):
		return http.StatusConflict
	case errors.Is(err, driven.ErrNetwork):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// errorMessage returns a client-safe message for err.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, application.ErrInvalidRepositoryName):
		return "invalid repository name: expected owner/repo"
	case errors.Is(err, application.ErrDuplicateRepository):
		return "repository already watched"
	case errors.Is(err, driven.ErrNotFound):
		return "repository not found"
	case errors.Is(err, application.ErrSessionNotFound), errors.Is(err, application.ErrSessionClosed):
		return "browse session not found"
	case errors.Is(err, application.ErrNotLoaded):
		return "browse session not loaded"
	case errors.Is(err, driven.ErrNetwork):
		return "github unavailable"
	default:
		return "internal server error"
	}
}

func isRemoteError(err error) bool {
	return errors.Is(err, driven.ErrNotFound) || errors.Is(err, driven.ErrNetwork)
}
