package application_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/repowatch/internal/application"
	"github.com/ericfisherdev/repowatch/internal/domain/model"
	"github.com/ericfisherdev/repowatch/internal/domain/port/driven"
)

func TestSessionRegistry_OpenAndGet(t *testing.T) {
	reg := application.NewSessionRegistry(reactService(), time.Hour, slog.Default())

	id, browser, err := reg.Open(context.Background(), "facebook/react")

	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, 1, reg.Len())
	assert.Len(t, browser.State().Issues, 30)

	got, err := reg.Get(id)
	require.NoError(t, err)
	assert.Same(t, browser, got)
}

func TestSessionRegistry_SessionsAreIndependent(t *testing.T) {
	reg := application.NewSessionRegistry(reactService(), time.Hour, slog.Default())

	idA, a, err := reg.Open(context.Background(), "facebook/react")
	require.NoError(t, err)
	idB, b, err := reg.Open(context.Background(), "facebook/react")
	require.NoError(t, err)
	require.NotEqual(t, idA, idB)

	require.NoError(t, a.ChangeFilter(context.Background(), model.IssueFilterClosed))

	assert.Equal(t, model.IssueFilterClosed, a.State().Filter)
	assert.Equal(t, model.IssueFilterOpen, b.State().Filter)
}

func TestSessionRegistry_FailedOpenIsNotRegistered(t *testing.T) {
	repoSvc := &mockRepoService{
		getRepo: func(_ context.Context, _ string) (*model.RepositoryDetail, error) {
			return nil, driven.ErrNotFound
		},
	}
	reg := application.NewSessionRegistry(repoSvc, time.Hour, slog.Default())

	id, browser, err := reg.Open(context.Background(), "nope/missing")

	require.ErrorIs(t, err, driven.ErrNotFound)
	assert.Empty(t, id)
	assert.Nil(t, browser)
	assert.Equal(t, 0, reg.Len())
}

func TestSessionRegistry_Close(t *testing.T) {
	reg := application.NewSessionRegistry(reactService(), time.Hour, slog.Default())
	id, browser, err := reg.Open(context.Background(), "facebook/react")
	require.NoError(t, err)

	require.NoError(t, reg.Close(id))

	assert.Equal(t, 0, reg.Len())
	_, err = reg.Get(id)
	assert.ErrorIs(t, err, application.ErrSessionNotFound)
	assert.ErrorIs(t, browser.ChangePage(context.Background(), model.PageNext), application.ErrSessionClosed)
}

func TestSessionRegistry_UnknownSession(t *testing.T) {
	reg := application.NewSessionRegistry(reactService(), time.Hour, slog.Default())

	_, err := reg.Get("missing")
	assert.ErrorIs(t, err, application.ErrSessionNotFound)
	assert.ErrorIs(t, reg.Close("missing"), application.ErrSessionNotFound)
}

func TestSessionRegistry_StartClosesSessionsOnShutdown(t *testing.T) {
	reg := application.NewSessionRegistry(reactService(), time.Hour, slog.Default())
	_, browser, err := reg.Open(context.Background(), "facebook/react")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		reg.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after cancellation")
	}

	assert.Equal(t, 0, reg.Len())
	assert.ErrorIs(t, browser.ChangePage(context.Background(), model.PageNext), application.ErrSessionClosed)
}
