// Command repowatchctl manages the repowatch watch list and browses a
// repository's issues from the terminal.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	githubadapter "github.com/ericfisherdev/repowatch/internal/adapter/driven/github"
	"github.com/ericfisherdev/repowatch/internal/adapter/driven/kvstore"
	"github.com/ericfisherdev/repowatch/internal/config"
	"github.com/ericfisherdev/repowatch/internal/domain/port/driven"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(defaultDeps()).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// deps are the collaborators commands are built from.
type deps struct {
	loadConfig  func() (*config.Config, error)
	repoService func(cfg *config.Config) (driven.RepositoryService, error)
	openStore   func(ctx context.Context, cfg *config.Config) (kvstore.Store, error)
}

func defaultDeps() deps {
	return deps{
		loadConfig: config.Load,
		repoService: func(cfg *config.Config) (driven.RepositoryService, error) {
			client, err := githubadapter.NewClient(cfg.APIBaseURL, cfg.RequestTimeout)
			if err != nil {
				return nil, err
			}
			return client, nil
		},
		openStore: kvstore.Open,
	}
}

// env is resolved once per invocation by the root command.
type env struct {
	deps
	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd(d deps) *cobra.Command {
	e := &env{deps: d}
	var verbose bool

	root := &cobra.Command{
		Use:   "repowatchctl",
		Short: "Watch GitHub repositories and browse their issues",
		Long: `repowatchctl shares the watch list of the repowatch server and browses
repository issues with the same filter and pagination rules.

Configuration is read from REPOWATCH_* environment variables and the TOML
file named by REPOWATCH_CONFIG.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := e.loadConfig()
			if err != nil {
				return err
			}
			e.cfg = cfg

			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			e.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			slog.SetDefault(e.logger)
			return nil
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")

	root.AddCommand(newWatchCmd(e))
	root.AddCommand(newIssuesCmd(e))

	return root
}

func (e *env) closeStore(s kvstore.Store) {
	if err := s.Close(); err != nil {
		e.logger.Error("error closing store", "error", err)
	}
}

// services builds the GitHub client from the loaded config.
func (e *env) services() (driven.RepositoryService, error) {
	svc, err := e.repoService(e.cfg)
	if err != nil {
		return nil, fmt.Errorf("create github client: %w", err)
	}
	return svc, nil
}
