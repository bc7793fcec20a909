package web_test

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/repowatch/internal/adapter/driving/web"
	"github.com/ericfisherdev/repowatch/internal/application"
	"github.com/ericfisherdev/repowatch/internal/domain/model"
	"github.com/ericfisherdev/repowatch/internal/domain/port/driven"
)

// --- Mock implementations ---

type fakeGitHub struct {
	mu       sync.Mutex
	issueErr error
}

func (f *fakeGitHub) GetRepository(_ context.Context, identifier string) (*model.RepositoryDetail, error) {
	switch identifier {
	case "nope/missing":
		return nil, fmt.Errorf("get: %w", driven.ErrNotFound)
	case "down/network":
		return nil, fmt.Errorf("get: %w", driven.ErrNetwork)
	}
	owner, name, _ := strings.Cut(identifier, "/")
	return &model.RepositoryDetail{
		FullName:    identifier,
		Name:        name,
		Description: "- A **declarative** library <script>alert(1)</script>",
		Owner:       model.RepositoryOwner{Login: owner, AvatarURL: "https://avatars.example/" + owner},
	}, nil
}

func (f *fakeGitHub) ListIssues(_ context.Context, _ string, q model.IssueQuery) ([]model.Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.issueErr != nil {
		return nil, f.issueErr
	}
	return []model.Issue{{
		ID:      int64(q.Page),
		Number:  100 + q.Page,
		Title:   fmt.Sprintf("%s issue on page %d", q.State, q.Page),
		HTMLURL: "https://github.com/facebook/react/issues/1",
		Body:    "Repro with `useEffect`:\n\n- mount <script>alert(2)</script>",
		User:    model.IssueUser{Login: "octocat", AvatarURL: "https://avatars.example/octocat"},
		Labels:  []model.Label{{ID: 1, Name: "Type: Bug"}},
	}}, nil
}

type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key], nil
}

func (m *memStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

// --- Helpers ---

type testApp struct {
	t       *testing.T
	handler http.Handler
	cookie  *http.Cookie
}

func newTestApp(t *testing.T, gh *fakeGitHub) *testApp {
	t.Helper()

	logger := slog.Default()
	watchlist := application.NewWatchlistService(gh, &memStore{data: map[string][]byte{}}, logger)
	watchlist.Initialize(context.Background())
	sessions := application.NewSessionRegistry(gh, time.Hour, logger)

	mux := http.NewServeMux()
	web.RegisterRoutes(mux, web.NewHandler(watchlist, sessions, logger))
	return &testApp{t: t, handler: mux}
}

func (a *testApp) get(path string) *httptest.ResponseRecorder {
	a.t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if a.cookie != nil {
		req.AddCookie(a.cookie)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		if c.Name == "csrf_token" {
			a.cookie = c
		}
	}
	return rec
}

// post submits a form with the CSRF token unless withToken is false.
func (a *testApp) post(path string, form url.Values, withToken bool) *httptest.ResponseRecorder {
	a.t.Helper()
	if a.cookie == nil {
		a.get("/")
	}
	if withToken {
		form.Set("csrf_token", a.cookie.Value)
	}
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(a.cookie)
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

// openSession follows the repository link and returns the browse path.
func (a *testApp) openSession(identifier string) string {
	a.t.Helper()
	rec := a.get(model.EncodeRepositoryPath(identifier))
	require.Equal(a.t, http.StatusSeeOther, rec.Code, rec.Body.String())
	loc := rec.Header().Get("Location")
	require.True(a.t, strings.HasPrefix(loc, "/browse/"), loc)
	return loc
}

// --- Tests ---

func TestDashboard_Empty(t *testing.T) {
	app := newTestApp(t, &fakeGitHub{})

	rec := app.get("/")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, "<!DOCTYPE html>")
	assert.Contains(t, body, "No repositories watched yet.")
	require.NotNil(t, app.cookie, "dashboard issues a CSRF cookie")
	assert.Contains(t, body, `name="csrf_token" value="`+app.cookie.Value+`"`)
}

func TestAddRepository_Success(t *testing.T) {
	app := newTestApp(t, &fakeGitHub{})

	rec := app.post("/watchlist", url.Values{"name": {"facebook/react"}}, true)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	body := app.get("/").Body.String()
	assert.Contains(t, body, "<span>facebook/react</span>")
	assert.Contains(t, body, `href="/repository/facebook%2Freact"`)
	assert.NotContains(t, body, "has-error")
}

func TestAddRepository_FailureShowsError(t *testing.T) {
	app := newTestApp(t, &fakeGitHub{})

	rec := app.post("/watchlist", url.Values{"name": {"nope/missing"}}, true)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	body := app.get("/").Body.String()
	assert.Contains(t, body, "repo-input has-error")
	assert.Contains(t, body, `value="nope/missing"`, "input is preserved")
}

func TestAddRepository_DuplicateShowsError(t *testing.T) {
	app := newTestApp(t, &fakeGitHub{})
	app.post("/watchlist", url.Values{"name": {"facebook/react"}}, true)

	app.post("/watchlist", url.Values{"name": {"facebook/react"}}, true)

	body := app.get("/").Body.String()
	assert.Contains(t, body, "has-error")
	assert.Equal(t, 1, strings.Count(body, "<span>facebook/react</span>"))
}

func TestAddRepository_RejectsMissingCSRF(t *testing.T) {
	app := newTestApp(t, &fakeGitHub{})

	rec := app.post("/watchlist", url.Values{"name": {"facebook/react"}}, false)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, app.get("/").Body.String(), "No repositories watched yet.")
}

func TestOpenRepository_Browse(t *testing.T) {
	app := newTestApp(t, &fakeGitHub{})
	path := app.openSession("facebook/react")

	rec := app.get(path)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<title>facebook/react | repowatch</title>")
	assert.Contains(t, body, "<h1>react</h1>")
	assert.Contains(t, body, `src="https://avatars.example/facebook"`)
	assert.Contains(t, body, "<p class=\"description\">- A **declarative** library &lt;script&gt;alert(1)&lt;/script&gt;</p>")
	assert.NotContains(t, body, "<strong>declarative</strong>")
	assert.Contains(t, body, "<code>useEffect</code>")
	assert.Contains(t, body, "<li>mount")
	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, "open issue on page 1")
	assert.Contains(t, body, `<span class="label">Type: Bug</span>`)
	assert.Contains(t, body, `<option value="open" selected>`)
	assert.Contains(t, body, `value="prev" disabled`)
	assert.Contains(t, body, `<span class="page">1</span>`)
}

func TestOpenRepository_UnencodedPath(t *testing.T) {
	app := newTestApp(t, &fakeGitHub{})

	rec := app.get("/repository/facebook/react")

	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestOpenRepository_Failures(t *testing.T) {
	tests := []struct {
		identifier string
		wantStatus int
	}{
		{identifier: "nope/missing", wantStatus: http.StatusNotFound},
		{identifier: "down/network", wantStatus: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.identifier, func(t *testing.T) {
			app := newTestApp(t, &fakeGitHub{})

			rec := app.get(model.EncodeRepositoryPath(tt.identifier))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.identifier)
		})
	}
}

func TestChangeFilterAndPage(t *testing.T) {
	app := newTestApp(t, &fakeGitHub{})
	path := app.openSession("facebook/react")

	rec := app.post(path+"/page", url.Values{"direction": {"next"}}, true)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, path, rec.Header().Get("Location"))
	body := app.get(path).Body.String()
	assert.Contains(t, body, "open issue on page 2")
	assert.Contains(t, body, `<span class="page">2</span>`)
	assert.NotContains(t, body, `value="prev" disabled`)

	rec = app.post(path+"/filter", url.Values{"state": {"closed"}}, true)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	body = app.get(path).Body.String()
	assert.Contains(t, body, "closed issue on page 1")
	assert.Contains(t, body, `<option value="closed" selected>`)
	assert.Contains(t, body, `<span class="page">1</span>`)
}

func TestChangeFilter_Invalid(t *testing.T) {
	app := newTestApp(t, &fakeGitHub{})
	path := app.openSession("facebook/react")

	rec := app.post(path+"/filter", url.Values{"state": {"merged"}}, true)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChangePage_RefreshFailure(t *testing.T) {
	gh := &fakeGitHub{}
	app := newTestApp(t, gh)
	path := app.openSession("facebook/react")
	gh.mu.Lock()
	gh.issueErr = fmt.Errorf("list: %w", driven.ErrNetwork)
	gh.mu.Unlock()

	rec := app.post(path+"/page", url.Values{"direction": {"next"}}, true)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), `href="`+path+`"`)
}

func TestBrowse_RejectsMissingCSRF(t *testing.T) {
	app := newTestApp(t, &fakeGitHub{})
	path := app.openSession("facebook/react")

	assert.Equal(t, http.StatusForbidden, app.post(path+"/page", url.Values{"direction": {"next"}}, false).Code)
	assert.Equal(t, http.StatusForbidden, app.post(path+"/filter", url.Values{"state": {"all"}}, false).Code)
}

func TestBrowse_UnknownSession(t *testing.T) {
	app := newTestApp(t, &fakeGitHub{})

	rec := app.get("/browse/missing")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "expired")
}

func TestStaticAssets(t *testing.T) {
	app := newTestApp(t, &fakeGitHub{})

	rec := app.get("/static/style.css")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/css")
}
