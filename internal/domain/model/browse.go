package model

// BrowseState is the view model of one issue browsing session.
type BrowseState struct {
	Identifier string
	Repository RepositoryDetail
	Issues     []Issue
	Filter     IssueFilter
	Page       int
	Loading    bool
}

// WatchlistState is the view model of the watch list manager.
type WatchlistState struct {
	NewRepoName  string
	Repositories []WatchedRepository
	Loading      bool
	Error        bool
}
