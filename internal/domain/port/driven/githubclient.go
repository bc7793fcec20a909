package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/repowatch/internal/domain/model"
)

// Sentinel errors returned by RepositoryService implementations. Adapters wrap
// them so callers can classify failures with errors.Is.
var (
	// ErrNotFound indicates the repository does not exist or is not visible.
	ErrNotFound = errors.New("repository not found")

	// ErrNetwork indicates a transport failure, an unexpected status, or a
	// response that could not be decoded.
	ErrNetwork = errors.New("remote request failed")
)

// RepositoryService defines the driven port for read-only access to the
// GitHub REST API.
type RepositoryService interface {
	// GetRepository returns metadata for the "owner/repo" identifier. The
	// returned FullName is the canonical form, which may differ from identifier.
	GetRepository(ctx context.Context, identifier string) (*model.RepositoryDetail, error)

	// ListIssues returns one page of issues filtered by query.State. No total
	// count or page metadata is returned.
	ListIssues(ctx context.Context, identifier string, query model.IssueQuery) ([]model.Issue, error)
}
