package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ericfisherdev/repowatch/internal/domain/model"
	"github.com/ericfisherdev/repowatch/internal/domain/port/driven"
)

var (
	// ErrNotLoaded is returned by refresh operations on a browser whose initial
	// load has not completed successfully.
	ErrNotLoaded = errors.New("browse session not loaded")

	// ErrSessionClosed is returned when a browser is used after Close.
	ErrSessionClosed = errors.New("browse session closed")
)

// IssueBrowser drives one browse session: repository metadata plus a filtered,
// paginated issue listing.
//
// Every fetch is tagged with a generation number. Only the response of the
// most recent fetch commits to state, so a slow response to an older filter or
// page change can never overwrite a newer one. The lock is never held across
// a remote call.
type IssueBrowser struct {
	repoSvc driven.RepositoryService
	logger  *slog.Logger

	mu         sync.Mutex
	state      model.BrowseState
	generation uint64
	loaded     bool
	closed     bool
}

// NewIssueBrowser creates an idle browser for the decoded repository identifier.
func NewIssueBrowser(repoSvc driven.RepositoryService, identifier string, logger *slog.Logger) *IssueBrowser {
	return &IssueBrowser{
		repoSvc: repoSvc,
		logger:  logger.With("repo", identifier),
		state: model.BrowseState{
			Identifier: identifier,
			Issues:     []model.Issue{},
			Filter:     model.DefaultIssueFilter,
			Page:       1,
		},
	}
}

// Initialize loads repository metadata and the first page of open issues
// concurrently. Loading stays true until both requests have finished. A
// failure of either request is returned and leaves the session unusable.
func (b *IssueBrowser) Initialize(ctx context.Context) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrSessionClosed
	}
	gen := b.beginLocked()
	identifier := b.state.Identifier
	b.mu.Unlock()

	var (
		repo   *model.RepositoryDetail
		issues []model.Issue
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		repo, err = b.repoSvc.GetRepository(gctx, identifier)
		return err
	})
	g.Go(func() error {
		var err error
		issues, err = b.repoSvc.ListIssues(gctx, identifier, model.IssueQuery{
			State: model.DefaultIssueFilter,
			Page:  1,
		})
		return err
	})

	if err := g.Wait(); err != nil {
		b.mu.Lock()
		if b.generation == gen {
			b.state.Loading = false
		}
		b.mu.Unlock()
		return fmt.Errorf("load %s: %w", identifier, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.currentLocked(gen) {
		b.logger.Debug("discarding superseded initial load")
		return nil
	}

	b.state.Repository = *repo
	b.state.Issues = nonNilIssues(issues)
	b.state.Loading = false
	b.loaded = true

	b.logger.Info("browse session loaded", "issues", len(issues))
	return nil
}

// ChangeFilter switches to filter f and resets the page to 1. The request is
// issued with f itself, never with a value read back from state. A failed
// refresh is logged and returned; the previous issues stay in place and
// loading is cleared.
func (b *IssueBrowser) ChangeFilter(ctx context.Context, f model.IssueFilter) error {
	b.mu.Lock()
	if err := b.readyLocked(); err != nil {
		b.mu.Unlock()
		return err
	}
	gen := b.beginLocked()
	b.state.Filter = f
	b.state.Page = 1
	fullName := b.state.Repository.FullName
	b.mu.Unlock()

	issues, err := b.repoSvc.ListIssues(ctx, fullName, model.IssueQuery{State: f, Page: 1})

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		if b.generation == gen {
			b.state.Loading = false
		}
		b.logger.Error("filter refresh failed", "filter", f, "error", err)
		return fmt.Errorf("filter %s by %s: %w", fullName, f, err)
	}

	b.commitLocked(gen, issues)
	return nil
}

// ChangePage moves the page cursor one step in dir and fetches that page with
// the current filter. Moving back from page 1 is a no-op. On failure the new
// page number is kept, the previous issues stay in place, loading is cleared
// and the error is returned.
func (b *IssueBrowser) ChangePage(ctx context.Context, dir model.PageDirection) error {
	b.mu.Lock()
	if err := b.readyLocked(); err != nil {
		b.mu.Unlock()
		return err
	}

	next := b.state.Page + 1
	if dir == model.PagePrev {
		next = b.state.Page - 1
	}
	if next < 1 {
		b.mu.Unlock()
		return nil
	}

	gen := b.beginLocked()
	b.state.Page = next
	filter := b.state.Filter
	fullName := b.state.Repository.FullName
	b.mu.Unlock()

	issues, err := b.repoSvc.ListIssues(ctx, fullName, model.IssueQuery{State: filter, Page: next})

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		if b.generation == gen {
			b.state.Loading = false
		}
		return fmt.Errorf("page %d of %s: %w", next, fullName, err)
	}

	b.commitLocked(gen, issues)
	return nil
}

// State returns a snapshot of the current view model.
func (b *IssueBrowser) State() model.BrowseState {
	b.mu.Lock()
	defer b.mu.Unlock()

	st := b.state
	st.Issues = slices.Clone(b.state.Issues)
	return st
}

// Close tears the session down. Responses still in flight are discarded when
// they arrive.
func (b *IssueBrowser) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
}

// beginLocked starts a fetch and returns its generation. b.mu must be held.
func (b *IssueBrowser) beginLocked() uint64 {
	b.generation++
	b.state.Loading = true
	return b.generation
}

// currentLocked reports whether gen is the latest fetch of a live session.
// b.mu must be held.
func (b *IssueBrowser) currentLocked(gen uint64) bool {
	return !b.closed && b.generation == gen
}

// readyLocked checks that refresh operations are allowed. b.mu must be held.
func (b *IssueBrowser) readyLocked() error {
	if b.closed {
		return ErrSessionClosed
	}
	if !b.loaded {
		return ErrNotLoaded
	}
	return nil
}

// commitLocked stores issues if gen is still current. b.mu must be held.
func (b *IssueBrowser) commitLocked(gen uint64, issues []model.Issue) {
	if !b.currentLocked(gen) {
		b.logger.Debug("discarding superseded refresh", "generation", gen, "latest", b.generation)
		return
	}
	b.state.Issues = nonNilIssues(issues)
	b.state.Loading = false
}

func nonNilIssues(issues []model.Issue) []model.Issue {
	if issues == nil {
		return []model.Issue{}
	}
	return issues
}
