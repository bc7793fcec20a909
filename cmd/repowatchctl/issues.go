package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/repowatch/internal/application"
	"github.com/ericfisherdev/repowatch/internal/domain/model"
)

// maxPage bounds --page. Reaching page N walks N-1 page steps, one API request
// each, against the anonymous rate limit of 60 requests an hour.
const maxPage = 10

type issueOutput struct {
	Number int      `json:"number"`
	Title  string   `json:"title"`
	URL    string   `json:"html_url"`
	Author string   `json:"author"`
	Labels []string `json:"labels"`
}

type listingOutput struct {
	Repository  string        `json:"repository"`
	Description string        `json:"description"`
	Filter      string        `json:"filter"`
	Page        int           `json:"page"`
	Issues      []issueOutput `json:"issues"`
}

func newIssuesCmd(e *env) *cobra.Command {
	var (
		state      string
		page       int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "issues <owner/repo>",
		Short: "List one page of a repository's issues",
		Long: `List issues of a repository, one page at a time.

The listing starts at page 1 of open issues, switches filter when --state
asks for another one, then steps forward to --page one request at a time.
Requests are anonymous and count against GitHub's hourly rate limit.`,
		Example: `  repowatchctl issues facebook/react
  repowatchctl issues facebook/react --state closed --page 3
  repowatchctl issues golang/go --state all --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := model.ParseIssueFilter(state)
			if err != nil {
				return err
			}
			if page < 1 || page > maxPage {
				return fmt.Errorf("--page must be between 1 and %d", maxPage)
			}

			repoSvc, err := e.services()
			if err != nil {
				return err
			}

			browser := application.NewIssueBrowser(repoSvc, args[0], e.logger)
			defer browser.Close()

			ctx := cmd.Context()
			if err := browser.Initialize(ctx); err != nil {
				return err
			}
			if filter != model.DefaultIssueFilter {
				if err := browser.ChangeFilter(ctx, filter); err != nil {
					return err
				}
			}
			for browser.State().Page < page {
				if err := browser.ChangePage(ctx, model.PageNext); err != nil {
					return err
				}
			}

			st := browser.State()
			if jsonOutput {
				return writeListingJSON(cmd.OutOrStdout(), st)
			}
			writeListing(cmd.OutOrStdout(), st)
			return nil
		},
	}

	cmd.Flags().StringVar(&state, "state", string(model.DefaultIssueFilter), "Filter by state: open, closed, all")
	cmd.Flags().IntVar(&page, "page", 1,
		fmt.Sprintf("Page to show (1-%d); each page past the first costs one more API request", maxPage))
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func toListingOutput(st model.BrowseState) listingOutput {
	issues := make([]issueOutput, 0, len(st.Issues))
	for _, issue := range st.Issues {
		labels := make([]string, 0, len(issue.Labels))
		for _, l := range issue.Labels {
			labels = append(labels, l.Name)
		}
		issues = append(issues, issueOutput{
			Number: issue.Number,
			Title:  issue.Title,
			URL:    issue.HTMLURL,
			Author: issue.User.Login,
			Labels: labels,
		})
	}

	return listingOutput{
		Repository:  st.Repository.FullName,
		Description: st.Repository.Description,
		Filter:      string(st.Filter),
		Page:        st.Page,
		Issues:      issues,
	}
}

func writeListingJSON(w io.Writer, st model.BrowseState) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(toListingOutput(st))
}

func writeListing(w io.Writer, st model.BrowseState) {
	out := toListingOutput(st)

	_, _ = fmt.Fprintf(w, "%s (%s issues, page %d)\n", out.Repository, out.Filter, out.Page)
	if out.Description != "" {
		_, _ = fmt.Fprintf(w, "%s\n", out.Description)
	}
	_, _ = fmt.Fprintln(w)

	if len(out.Issues) == 0 {
		_, _ = fmt.Fprintln(w, "No issues on this page.")
		return
	}
	for _, issue := range out.Issues {
		line := fmt.Sprintf("#%-6d %s", issue.Number, issue.Title)
		if len(issue.Labels) > 0 {
			line += " [" + strings.Join(issue.Labels, ", ") + "]"
		}
		_, _ = fmt.Fprintf(w, "%s (by %s)\n", line, issue.Author)
	}
}
