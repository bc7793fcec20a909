package application_test

import (
	"context"
	"fmt"
	"sync"

	"github.com/ericfisherdev/repowatch/internal/domain/model"
)

// --- Mock implementations ---

type issueCall struct {
	Identifier string
	Query      model.IssueQuery
}

// mockRepoService implements driven.RepositoryService. Unset funcs fall back to
// echoing the identifier as the canonical name and returning no issues.
type mockRepoService struct {
	getRepo    func(ctx context.Context, identifier string) (*model.RepositoryDetail, error)
	listIssues func(ctx context.Context, identifier string, query model.IssueQuery) ([]model.Issue, error)

	mu         sync.Mutex
	repoCalls  []string
	issueCalls []issueCall
}

func (m *mockRepoService) GetRepository(ctx context.Context, identifier string) (*model.RepositoryDetail, error) {
	m.mu.Lock()
	m.repoCalls = append(m.repoCalls, identifier)
	m.mu.Unlock()

	if m.getRepo != nil {
		return m.getRepo(ctx, identifier)
	}
	return &model.RepositoryDetail{FullName: identifier}, nil
}

func (m *mockRepoService) ListIssues(ctx context.Context, identifier string, query model.IssueQuery) ([]model.Issue, error) {
	m.mu.Lock()
	m.issueCalls = append(m.issueCalls, issueCall{Identifier: identifier, Query: query})
	m.mu.Unlock()

	if m.listIssues != nil {
		return m.listIssues(ctx, identifier, query)
	}
	return []model.Issue{}, nil
}

func (m *mockRepoService) RepoCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.repoCalls...)
}

func (m *mockRepoService) IssueCalls() []issueCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]issueCall(nil), m.issueCalls...)
}

// mockStore implements driven.KeyValueStore in memory.
type mockStore struct {
	mu     sync.Mutex
	data   map[string][]byte
	getErr error
	setErr error
	sets   int
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string][]byte)}
}

func (m *mockStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.data[key], nil
}

func (m *mockStore) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	if m.setErr != nil {
		return m.setErr
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *mockStore) Sets() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sets
}

func (m *mockStore) Value(key string) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key]
}

// --- Fixtures ---

// makeIssues builds n issues whose titles carry tag so tests can tell pages
// and filters apart.
func makeIssues(n int, tag string) []model.Issue {
	issues := make([]model.Issue, 0, n)
	for i := 1; i <= n; i++ {
		issues = append(issues, model.Issue{
			ID:      int64(i),
			Number:  i,
			Title:   fmt.Sprintf("%s issue %d", tag, i),
			HTMLURL: fmt.Sprintf("https://github.com/facebook/react/issues/%d", i),
			User:    model.IssueUser{Login: "octocat", AvatarURL: "https://avatars.example/octocat"},
			Labels:  []model.Label{{ID: 1, Name: "bug"}},
		})
	}
	return issues
}

func reactDetail() *model.RepositoryDetail {
	return &model.RepositoryDetail{
		FullName:    "facebook/react",
		Name:        "react",
		Description: "The library for web and native user interfaces.",
		Owner:       model.RepositoryOwner{Login: "facebook", AvatarURL: "https://avatars.example/facebook"},
	}
}
