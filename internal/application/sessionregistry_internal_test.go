package application

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/repowatch/internal/domain/model"
)

type stubRepoService struct{}

func (stubRepoService) GetRepository(_ context.Context, identifier string) (*model.RepositoryDetail, error) {
	return &model.RepositoryDetail{FullName: identifier}, nil
}

func (stubRepoService) ListIssues(_ context.Context, _ string, _ model.IssueQuery) ([]model.Issue, error) {
	return []model.Issue{}, nil
}

func TestSessionRegistry_SweepExpiresIdleSessions(t *testing.T) {
	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	reg := NewSessionRegistry(stubRepoService{}, 30*time.Minute, slog.Default())
	reg.now = func() time.Time { return clock }

	idleID, idle, err := reg.Open(context.Background(), "a/idle")
	require.NoError(t, err)
	activeID, _, err := reg.Open(context.Background(), "a/active")
	require.NoError(t, err)

	clock = clock.Add(20 * time.Minute)
	_, err = reg.Get(activeID)
	require.NoError(t, err)

	clock = clock.Add(15 * time.Minute)
	assert.Equal(t, 1, reg.sweep())

	_, err = reg.Get(idleID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, idle.ChangePage(context.Background(), model.PageNext), ErrSessionClosed)

	_, err = reg.Get(activeID)
	assert.NoError(t, err)
}

func TestSessionRegistry_SweepDisabledWithoutTTL(t *testing.T) {
	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	reg := NewSessionRegistry(stubRepoService{}, 0, slog.Default())
	reg.now = func() time.Time { return clock }

	_, _, err := reg.Open(context.Background(), "a/b")
	require.NoError(t, err)

	clock = clock.Add(24 * time.Hour)
	assert.Equal(t, 0, reg.sweep())
	assert.Equal(t, 1, reg.Len())
}
