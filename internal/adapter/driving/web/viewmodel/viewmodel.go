// Package viewmodel defines presentation-ready structs for templ components.
// View models decouple template rendering from domain model types.
package viewmodel

// DashboardViewModel holds the watch list page.
type DashboardViewModel struct {
	CSRFToken    string
	NewRepoName  string
	Repositories []RepoLinkViewModel
	Loading      bool
	Error        bool
}

// RepoLinkViewModel is one watched repository and the path of its browse view.
type RepoLinkViewModel struct {
	Name string
	Path string
}

// BrowseViewModel holds the issue browser page of one session.
type BrowseViewModel struct {
	CSRFToken string

	FullName        string
	Name            string
	Description     string
	OwnerLogin      string
	OwnerAvatarURL  string

	Filters []FilterOptionViewModel
	Issues  []IssueViewModel
	Page    int
	HasPrev bool
	Loading bool

	FilterActionURL string // POST target for the filter form
	PageActionURL   string // POST target for prev/next
}

// FilterOptionViewModel is one entry of the filter select.
type FilterOptionViewModel struct {
	Value    string
	Selected bool
}

// IssueViewModel is one row of the issue list.
type IssueViewModel struct {
	Number          int
	Title           string
	URL             string
	AuthorLogin     string
	AuthorAvatarURL string
	Labels          []string
	BodyHTML        string // sanitized
}

// ErrorViewModel holds a full-page error.
type ErrorViewModel struct {
	Status  int
	Title   string
	Message string
	BackURL string
}
