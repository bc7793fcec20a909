package model

// IssueUser is the author of an issue.
type IssueUser struct {
	Login     string
	AvatarURL string
}

// Label is a label attached to an issue.
type Label struct {
	ID   int64
	Name string
}

// Issue is a single entry of a repository's issue listing. GitHub's issues
// endpoint also returns pull requests; they are kept as listed.
type Issue struct {
	ID      int64
	Number  int
	Title   string
	HTMLURL string
	Body    string // GitHub-flavored markdown
	User    IssueUser
	Labels  []Label
}

// IssueQuery parameterizes an issue listing request. Page is 1-based; zero
// leaves the page to the API default.
type IssueQuery struct {
	State IssueFilter
	Page  int
}
