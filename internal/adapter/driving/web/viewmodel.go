package web

import (
	vm "github.com/ericfisherdev/repowatch/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/repowatch/internal/domain/model"
)

// toDashboardViewModel converts the watch list state for rendering.
func toDashboardViewModel(st model.WatchlistState, csrf string) vm.DashboardViewModel {
	repos := make([]vm.RepoLinkViewModel, 0, len(st.Repositories))
	for _, r := range st.Repositories {
		repos = append(repos, vm.RepoLinkViewModel{
			Name: r.Name,
			Path: model.EncodeRepositoryPath(r.Name),
		})
	}

	return vm.DashboardViewModel{
		CSRFToken:    csrf,
		NewRepoName:  st.NewRepoName,
		Repositories: repos,
		Loading:      st.Loading,
		Error:        st.Error,
	}
}

// toBrowseViewModel converts one session's browse state for rendering. Issue
// bodies are rendered from markdown and sanitized; the repository description
// stays plain text.
func toBrowseViewModel(sessionID string, st model.BrowseState, csrf string) vm.BrowseViewModel {
	filters := make([]vm.FilterOptionViewModel, 0, len(model.IssueFilters))
	for _, f := range model.IssueFilters {
		filters = append(filters, vm.FilterOptionViewModel{Value: string(f), Selected: f == st.Filter})
	}

	issues := make([]vm.IssueViewModel, 0, len(st.Issues))
	for _, issue := range st.Issues {
		labels := make([]string, 0, len(issue.Labels))
		for _, l := range issue.Labels {
			labels = append(labels, l.Name)
		}
		issues = append(issues, vm.IssueViewModel{
			Number:          issue.Number,
			Title:           issue.Title,
			URL:             issue.HTMLURL,
			AuthorLogin:     issue.User.Login,
			AuthorAvatarURL: issue.User.AvatarURL,
			Labels:          labels,
			BodyHTML:        RenderMarkdown(issue.Body),
		})
	}

	base := browsePath(sessionID)
	return vm.BrowseViewModel{
		CSRFToken:       csrf,
		FullName:        st.Repository.FullName,
		Name:            st.Repository.Name,
		Description:     st.Repository.Description,
		OwnerLogin:      st.Repository.Owner.Login,
		OwnerAvatarURL:  st.Repository.Owner.AvatarURL,
		Filters:         filters,
		Issues:          issues,
		Page:            st.Page,
		HasPrev:         st.Page > 1,
		Loading:         st.Loading,
		FilterActionURL: base + "/filter",
		PageActionURL:   base + "/page",
	}
}

func browsePath(sessionID string) string {
	return "/browse/" + sessionID
}
