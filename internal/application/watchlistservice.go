// Package application contains use-case orchestration services.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/ericfisherdev/repowatch/internal/domain/model"
	"github.com/ericfisherdev/repowatch/internal/domain/port/driven"
)

var (
	// ErrDuplicateRepository is returned by AddRepository when the repository is
	// already on the watch list.
	ErrDuplicateRepository = errors.New("repository already watched")

	// ErrInvalidRepositoryName is returned by AddRepository for input that is
	// not of the form owner/repo.
	ErrInvalidRepositoryName = errors.New("invalid repository name: expected owner/repo")
)

// WatchlistService manages the user's watch list of repositories. New entries
// are validated against GitHub, and the list is mirrored into a KeyValueStore
// after every change.
type WatchlistService struct {
	repoSvc driven.RepositoryService
	store   driven.KeyValueStore
	logger  *slog.Logger

	mu    sync.Mutex
	state model.WatchlistState

	// persistMu serializes store writes so the last write carries the latest list.
	persistMu sync.Mutex
}

// NewWatchlistService creates a WatchlistService with an empty list. Call
// Initialize to load the persisted list.
func NewWatchlistService(repoSvc driven.RepositoryService, store driven.KeyValueStore, logger *slog.Logger) *WatchlistService {
	return &WatchlistService{
		repoSvc: repoSvc,
		store:   store,
		logger:  logger,
		state: model.WatchlistState{
			Repositories: []model.WatchedRepository{},
		},
	}
}

// Initialize loads the persisted watch list. A missing, unreadable or corrupt
// value leaves the list empty; Initialize itself never fails.
func (s *WatchlistService) Initialize(ctx context.Context) {
	data, err := s.store.Get(ctx, driven.WatchlistKey)
	if err != nil {
		s.logger.Warn("failed to read watch list, starting empty", "error", err)
		data = nil
	}

	repos := model.DecodeWatchlist(data)

	s.mu.Lock()
	s.state.Repositories = repos
	s.mu.Unlock()

	s.logger.Info("watch list loaded", "repositories", len(repos))
}

// SetNewRepoName records the pending text input.
func (s *WatchlistService) SetNewRepoName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.NewRepoName = name
}

// AddRepository validates candidate against GitHub and appends it, under the
// canonical full name GitHub reports, to the watch list.
//
// An exact match with an existing entry fails with ErrDuplicateRepository
// before any remote call, as does malformed input with
// ErrInvalidRepositoryName. Remote failures are returned wrapped. Either way
// the sticky Error flag is set and the list is left unchanged.
func (s *WatchlistService) AddRepository(ctx context.Context, candidate string) error {
	s.mu.Lock()
	s.state.Loading = true
	if model.ContainsRepository(s.state.Repositories, candidate) {
		s.failLocked()
		s.mu.Unlock()
		return fmt.Errorf("add repository %s: %w", candidate, ErrDuplicateRepository)
	}
	if !model.ValidRepositoryName(candidate) {
		s.failLocked()
		s.mu.Unlock()
		return fmt.Errorf("add repository %q: %w", candidate, ErrInvalidRepositoryName)
	}
	s.mu.Unlock()

	detail, err := s.repoSvc.GetRepository(ctx, candidate)
	if err != nil {
		s.mu.Lock()
		s.failLocked()
		s.mu.Unlock()
		return fmt.Errorf("add repository %s: %w", candidate, err)
	}

	s.mu.Lock()
	// The canonical name may match an entry added under different input, or by
	// a concurrent call that finished first.
	if model.ContainsRepository(s.state.Repositories, detail.FullName) {
		s.failLocked()
		s.mu.Unlock()
		return fmt.Errorf("add repository %s: %w", detail.FullName, ErrDuplicateRepository)
	}

	repos := make([]model.WatchedRepository, 0, len(s.state.Repositories)+1)
	repos = append(repos, s.state.Repositories...)
	repos = append(repos, model.WatchedRepository{Name: detail.FullName})

	s.state.Repositories = repos
	s.state.NewRepoName = ""
	s.state.Loading = false
	s.state.Error = false
	s.mu.Unlock()

	s.logger.Info("repository watched", "candidate", candidate, "repo", detail.FullName)

	// The in-memory list already changed; the write must not be lost to the
	// caller going away.
	s.onWatchlistChanged(context.WithoutCancel(ctx))
	return nil
}

// State returns a snapshot of the current view model.
func (s *WatchlistService) State() model.WatchlistState {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state
	st.Repositories = slices.Clone(s.state.Repositories)
	return st
}

// failLocked marks a failed add. s.mu must be held.
func (s *WatchlistService) failLocked() {
	s.state.Loading = false
	s.state.Error = true
}

// onWatchlistChanged persists the current list, overwriting the previous
// value. Failures are logged and otherwise ignored.
func (s *WatchlistService) onWatchlistChanged(ctx context.Context) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	repos := s.State().Repositories

	data, err := model.EncodeWatchlist(repos)
	if err != nil {
		s.logger.Error("failed to encode watch list", "error", err)
		return
	}

	if err := s.store.Set(ctx, driven.WatchlistKey, data); err != nil {
		s.logger.Error("failed to persist watch list", "repositories", len(repos), "error", err)
		return
	}

	s.logger.Debug("watch list persisted", "repositories", len(repos))
}
