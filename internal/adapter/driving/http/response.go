package httphandler

import (
	"encoding/json"
	"net/http"

	"github.com/ericfisherdev/repowatch/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// AddRepoRequest is the JSON body for the add repository endpoint.
type AddRepoRequest struct {
	Name string `json:"name"`
}

// OpenSessionRequest is the JSON body for the open session endpoint.
type OpenSessionRequest struct {
	Repository string `json:"repository"`
}

// FilterRequest is the JSON body for the change filter endpoint.
type FilterRequest struct {
	State string `json:"state"`
}

// PageRequest is the JSON body for the change page endpoint.
type PageRequest struct {
	Direction string `json:"direction"`
}

// WatchlistResponse is the JSON representation of the watch list view model.
type WatchlistResponse struct {
	NewRepoName  string         `json:"new_repo_name"`
	Repositories []RepoResponse `json:"repositories"`
	Loading      bool           `json:"loading"`
	Error        bool           `json:"error"`
}

// RepoResponse is a watched repository plus the path of its browse view.
type RepoResponse struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// SessionResponse is returned when a browse session is opened.
type SessionResponse struct {
	ID    string         `json:"id"`
	State BrowseResponse `json:"state"`
}

// BrowseResponse is the JSON representation of a browse session.
type BrowseResponse struct {
	Identifier string             `json:"identifier"`
	Repository RepositoryResponse `json:"repository"`
	Issues     []IssueResponse    `json:"issues"`
	Filter     string             `json:"filter"`
	Page       int                `json:"page"`
	Loading    bool               `json:"loading"`
}

// RepositoryResponse is repository metadata.
type RepositoryResponse struct {
	FullName    string       `json:"full_name"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Owner       UserResponse `json:"owner"`
}

// UserResponse is a GitHub account reference.
type UserResponse struct {
	Login     string `json:"login"`
	AvatarURL string `json:"avatar_url"`
}

// IssueResponse is a single issue.
type IssueResponse struct {
	ID      int64           `json:"id"`
	Number  int             `json:"number"`
	Title   string          `json:"title"`
	HTMLURL string          `json:"html_url"`
	Body    string          `json:"body"`
	User    UserResponse    `json:"user"`
	Labels  []LabelResponse `json:"labels"`
}

// LabelResponse is an issue label.
type LabelResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status   string `json:"status"`
	Time     string `json:"time"`
	Sessions int    `json:"sessions"`
}

func toWatchlistResponse(st model.WatchlistState) WatchlistResponse {
	repos := make([]RepoResponse, 0, len(st.Repositories))
	for _, r := range st.Repositories {
		repos = append(repos, RepoResponse{Name: r.Name, Path: model.EncodeRepositoryPath(r.Name)})
	}

	return WatchlistResponse{
		NewRepoName:  st.NewRepoName,
		Repositories: repos,
		Loading:      st.Loading,
		Error:        st.Error,
	}
}

func toBrowseResponse(st model.BrowseState) BrowseResponse {
	issues := make([]IssueResponse, 0, len(st.Issues))
	for _, issue := range st.Issues {
		labels := make([]LabelResponse, 0, len(issue.Labels))
		for _, l := range issue.Labels {
			labels = append(labels, LabelResponse{ID: l.ID, Name: l.Name})
		}
		issues = append(issues, IssueResponse{
			ID:      issue.ID,
			Number:  issue.Number,
			Title:   issue.Title,
			HTMLURL: issue.HTMLURL,
			Body:    issue.Body,
			User:    UserResponse{Login: issue.User.Login, AvatarURL: issue.User.AvatarURL},
			Labels:  labels,
		})
	}

	return BrowseResponse{
		Identifier: st.Identifier,
		Repository: RepositoryResponse{
			FullName:    st.Repository.FullName,
			Name:        st.Repository.Name,
			Description: st.Repository.Description,
			Owner: UserResponse{
				Login:     st.Repository.Owner.Login,
				AvatarURL: st.Repository.Owner.AvatarURL,
			},
		},
		Issues:  issues,
		Filter:  string(st.Filter),
		Page:    st.Page,
		Loading: st.Loading,
	}
}
