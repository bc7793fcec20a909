// Package github implements the RepositoryService port using the go-github library.
package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"

	"github.com/ericfisherdev/repowatch/internal/domain/model"
	"github.com/ericfisherdev/repowatch/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.RepositoryService = (*Client)(nil)

// Client implements the driven.RepositoryService port using the go-github library.
// All requests are anonymous.
type Client struct {
	gh *gh.Client
}

// NewClient creates a new GitHub API client against baseURL with the following
// transport stack:
//  1. httpcache (ETag-based conditional request caching)
//  2. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
//  3. go-github (GitHub REST API client)
//
// A zero timeout disables the per-request deadline.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)
	rateLimitClient.Timeout = timeout

	return NewClientWithHTTPClient(rateLimitClient, baseURL)
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base URL.
// Tests use it to point the client at an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string) (*Client, error) {
	client := gh.NewClient(httpClient)

	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("parsing base URL %q: scheme and host are required", baseURL)
	}
	client.BaseURL = u

	return &Client{gh: client}, nil
}

// GetRepository fetches repository metadata for an "owner/repo" identifier.
func (c *Client) GetRepository(ctx context.Context, identifier string) (*model.RepositoryDetail, error) {
	owner, repo, err := splitRepo(identifier)
	if err != nil {
		return nil, fmt.Errorf("fetching repository: %w: %w", driven.ErrNetwork, err)
	}

	r, resp, err := c.gh.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return nil, classify(resp, err, "fetching repository "+identifier)
	}

	logRateLimit(resp, identifier, 0, 1)

	return mapRepository(r), nil
}

// ListIssues fetches one page of issues for an "owner/repo" identifier.
// GitHub decides the page size; the returned slice is never nil.
func (c *Client) ListIssues(ctx context.Context, identifier string, query model.IssueQuery) ([]model.Issue, error) {
	owner, repo, err := splitRepo(identifier)
	if err != nil {
		return nil, fmt.Errorf("listing issues: %w: %w", driven.ErrNetwork, err)
	}

	page := query.Page
	if page < 1 {
		page = 1
	}
	state := string(query.State)
	if state == "" {
		state = string(model.DefaultIssueFilter)
	}

	opts := &gh.IssueListByRepoOptions{
		State:       state,
		ListOptions: gh.ListOptions{Page: page},
	}

	issues, resp, err := c.gh.Issues.ListByRepo(ctx, owner, repo, opts)
	if err != nil {
		return nil, classify(resp, err, fmt.Sprintf("listing %s issues for %s (page %d)", state, identifier, page))
	}

	logRateLimit(resp, identifier+"/issues", page, len(issues))

	result := make([]model.Issue, 0, len(issues))
	for _, issue := range issues {
		result = append(result, mapIssue(issue))
	}
	return result, nil
}

// classify wraps err with driven.ErrNotFound for 404 responses and
// driven.ErrNetwork for everything else.
func classify(resp *gh.Response, err error, op string) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %w", op, driven.ErrNetwork, err)
	}
	if resp != nil && resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s: %w", op, driven.ErrNotFound)
	}
	return fmt.Errorf("%s: %w: %w", op, driven.ErrNetwork, err)
}

// mapRepository converts a go-github Repository to a domain RepositoryDetail.
// It uses GetXxx() helper methods exclusively to avoid nil pointer panics.
func mapRepository(r *gh.Repository) *model.RepositoryDetail {
	return &model.RepositoryDetail{
		FullName:    r.GetFullName(),
		Name:        r.GetName(),
		Description: r.GetDescription(),
		Owner: model.RepositoryOwner{
			Login:     r.GetOwner().GetLogin(),
			AvatarURL: r.GetOwner().GetAvatarURL(),
		},
	}
}

// mapIssue converts a go-github Issue to a domain Issue.
func mapIssue(issue *gh.Issue) model.Issue {
	labels := make([]model.Label, 0, len(issue.Labels))
	for _, l := range issue.Labels {
		labels = append(labels, model.Label{ID: l.GetID(), Name: l.GetName()})
	}

	return model.Issue{
		ID:      issue.GetID(),
		Number:  issue.GetNumber(),
		Title:   issue.GetTitle(),
		HTMLURL: issue.GetHTMLURL(),
		Body:    issue.GetBody(),
		User: model.IssueUser{
			Login:     issue.GetUser().GetLogin(),
			AvatarURL: issue.GetUser().GetAvatarURL(),
		},
		Labels: labels,
	}
}

// logRateLimit logs the GitHub API rate limit status after each call.
func logRateLimit(resp *gh.Response, endpoint string, page, count int) {
	if resp == nil {
		return
	}

	slog.Debug("github api call",
		"endpoint", endpoint,
		"page", page,
		"count", count,
		"rate_remaining", resp.Rate.Remaining,
		"rate_limit", resp.Rate.Limit,
	)

	// Anonymous clients get 60 requests per hour.
	if resp.Rate.Limit > 0 && resp.Rate.Remaining < 10 {
		slog.Warn("github rate limit low",
			"remaining", resp.Rate.Remaining,
			"reset_in", time.Until(resp.Rate.Reset.Time).Round(time.Second),
		)
	}
}

// splitRepo splits an "owner/repo" string into its two components.
func splitRepo(fullName string) (string, string, error) {
	parts := strings.SplitN(fullName, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" || strings.Contains(parts[1], "/") {
		return "", "", fmt.Errorf("invalid repo name %q: expected owner/repo", fullName)
	}
	return parts[0], parts[1], nil
}
