package model

import "fmt"

// IssueFilter selects which issues a listing returns.
type IssueFilter string

const (
	IssueFilterOpen   IssueFilter = "open"
	IssueFilterClosed IssueFilter = "closed"
	IssueFilterAll    IssueFilter = "all"
)

// DefaultIssueFilter is applied when a browse session starts.
const DefaultIssueFilter = IssueFilterOpen

// IssueFilters lists every filter in display order.
var IssueFilters = []IssueFilter{IssueFilterOpen, IssueFilterClosed, IssueFilterAll}

// ParseIssueFilter converts a raw string (as sent by a form, query string or
// flag) into an IssueFilter.
func ParseIssueFilter(s string) (IssueFilter, error) {
	switch f := IssueFilter(s); f {
	case IssueFilterOpen, IssueFilterClosed, IssueFilterAll:
		return f, nil
	default:
		return "", fmt.Errorf("invalid issue filter %q: expected open, closed or all", s)
	}
}

// PageDirection moves the page cursor of an issue listing.
type PageDirection string

const (
	PageNext PageDirection = "next"
	PagePrev PageDirection = "prev"
)

// ParsePageDirection converts a raw string into a PageDirection.
func ParsePageDirection(s string) (PageDirection, error) {
	switch d := PageDirection(s); d {
	case PageNext, PagePrev:
		return d, nil
	default:
		return "", fmt.Errorf("invalid page direction %q: expected next or prev", s)
	}
}
