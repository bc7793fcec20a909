// Package web implements the HTML GUI driving adapter using templ components.
package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/a-h/templ"

	"github.com/ericfisherdev/repowatch/internal/adapter/driving/web/templates"
	vm "github.com/ericfisherdev/repowatch/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/repowatch/internal/application"
	"github.com/ericfisherdev/repowatch/internal/domain/model"
	"github.com/ericfisherdev/repowatch/internal/domain/port/driven"
)

const appTitle = "repowatch"

// Handler is the web GUI driving adapter that serves HTML via templ components.
// Forms post back and redirect, so browse state lives in the SessionRegistry
// rather than in the page.
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

// Dashboard renders the watch list page.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	token := csrfToken(w, r)
	page := templates.Dashboard(toDashboardViewModel(h.watchlist.State(), token))
	h.render(w, r, http.StatusOK, "Repositories", page)
}

// AddRepository handles the watch list form. Failures are reflected in the
// dashboard's error styling.
func (h *Handler) AddRepository(w http.ResponseWriter, r *http.Request) {
	if !validateCSRF(r) {
		h.renderError(w, r, http.StatusForbidden, "Forbidden", "Invalid or missing CSRF token.", "/")
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	h.watchlist.SetNewRepoName(name)
	if err := h.watchlist.AddRepository(r.Context(), name); err != nil {
		h.logger.Warn("add repository failed", "repo", name, "error", err)
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// OpenRepository decodes the path-carried identifier, opens a browse session
// and redirects to it.
func (h *Handler) OpenRepository(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimPrefix(r.URL.EscapedPath(), model.RepositoryPathPrefix)
	identifier, err := model.DecodeRepositoryIdentifier(raw)
	if err != nil {
		h.renderError(w, r, http.StatusBadRequest, "Bad Request", "Invalid repository identifier.", "/")
		return
	}

	id, _, err := h.sessions.Open(r.Context(), identifier)
	if err != nil {
		h.logger.Error("failed to open repository", "repo", identifier, "error", err)
		if errors.Is(err, driven.ErrNotFound) {
			h.renderError(w, r, http.StatusNotFound, "Not Found", "Repository "+identifier+" was not found.", "/")
			return
		}
		h.renderError(w, r, http.StatusBadGateway, "Bad Gateway", "Could not load "+identifier+" from GitHub.", "/")
		return
	}

	http.Redirect(w, r, browsePath(id), http.StatusSeeOther)
}

// Browse renders the issue browser of a session.
func (h *Handler) Browse(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	browser, ok := h.browser(w, r)
	if !ok {
		return
	}

	token := csrfToken(w, r)
	st := browser.State()
	page := templates.Repository(toBrowseViewModel(id, st, token))
	h.render(w, r, http.StatusOK, st.Repository.FullName, page)
}

// ChangeFilter handles the filter select. A failed refresh keeps the previous
// issues on screen.
func (h *Handler) ChangeFilter(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !validateCSRF(r) {
		h.renderError(w, r, http.StatusForbidden, "Forbidden", "Invalid or missing CSRF token.", browsePath(id))
		return
	}
	browser, ok := h.browser(w, r)
	if !ok {
		return
	}

	filter, err := model.ParseIssueFilter(r.FormValue("state"))
	if err != nil {
		h.renderError(w, r, http.StatusBadRequest, "Bad Request", err.Error(), browsePath(id))
		return
	}

	if err := browser.ChangeFilter(r.Context(), filter); err != nil {
		h.logger.Warn("filter refresh failed", "session", id, "error", err)
	}

	http.Redirect(w, r, browsePath(id), http.StatusSeeOther)
}

// ChangePage handles the prev/next buttons.
func (h *Handler) ChangePage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !validateCSRF(r) {
		h.renderError(w, r, http.StatusForbidden, "Forbidden", "Invalid or missing CSRF token.", browsePath(id))
		return
	}
	browser, ok := h.browser(w, r)
	if !ok {
		return
	}

	dir, err := model.ParsePageDirection(r.FormValue("direction"))
	if err != nil {
		h.renderError(w, r, http.StatusBadRequest, "Bad Request", err.Error(), browsePath(id))
		return
	}

	if err := browser.ChangePage(r.Context(), dir); err != nil {
		h.logger.Error("page refresh failed", "session", id, "error", err)
		h.renderError(w, r, http.StatusBadGateway, "Bad Gateway", "Could not load the requested page of issues.", browsePath(id))
		return
	}

	http.Redirect(w, r, browsePath(id), http.StatusSeeOther)
}

// browser resolves the {id} path value, rendering a 404 page when the session
// is unknown or expired.
func (h *Handler) browser(w http.ResponseWriter, r *http.Request) (*application.IssueBrowser, bool) {
	browser, err := h.sessions.Get(r.PathValue("id"))
	if err != nil {
		h.renderError(w, r, http.StatusNotFound, "Not Found", "This browse session has expired.", "/")
		return nil, false
	}
	return browser, true
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, status int, title, message, back string) {
	page := templates.ErrorPage(vm.ErrorViewModel{
		Status:  status,
		Title:   title,
		Message: message,
		BackURL: back,
	})
	h.render(w, r, status, title, page)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, title string, page templ.Component) {
	if title == "" {
		title = appTitle
	} else {
		title += " | " + appTitle
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := templates.Layout(title, page).Render(r.Context(), w); err != nil {
		h.logger.Error("failed to render page", "path", r.URL.Path, "error", err)
	}
}
