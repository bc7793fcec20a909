package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/repowatch/internal/application"
	"github.com/ericfisherdev/repowatch/internal/domain/model"
)

func newWatchCmd(e *env) *cobra.Command {
	watch := &cobra.Command{
		Use:   "watch",
		Short: "Manage the watch list",
	}

	watch.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List watched repositories and their browse paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, closeFn, err := e.watchlist(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			repos := svc.State().Repositories
			out := cmd.OutOrStdout()
			if len(repos) == 0 {
				_, _ = fmt.Fprintln(out, "No repositories watched.")
				return nil
			}
			for _, r := range repos {
				_, _ = fmt.Fprintf(out, "%s\t%s\n", r.Name, model.EncodeRepositoryPath(r.Name))
			}
			return nil
		},
	})

	watch.AddCommand(&cobra.Command{
		Use:   "add <owner/repo>",
		Short: "Validate a repository against GitHub and add it to the watch list",
		Example: `  repowatchctl watch add facebook/react
  repowatchctl watch add golang/go`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := e.watchlist(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			svc.SetNewRepoName(args[0])
			if err := svc.AddRepository(cmd.Context(), args[0]); err != nil {
				return err
			}

			repos := svc.State().Repositories
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Watching %s\n", repos[len(repos)-1].Name)
			return nil
		},
	})

	return watch
}

// watchlist opens the store and returns an initialized WatchlistService plus
// a func releasing the store.
func (e *env) watchlist(cmd *cobra.Command) (*application.WatchlistService, func(), error) {
	repoSvc, err := e.services()
	if err != nil {
		return nil, nil, err
	}

	store, err := e.openStore(cmd.Context(), e.cfg)
	if err != nil {
		return nil, nil, err
	}

	svc := application.NewWatchlistService(repoSvc, store, e.logger)
	svc.Initialize(cmd.Context())

	return svc, func() { e.closeStore(store) }, nil
}
