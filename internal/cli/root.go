// Package cli implements the toolfinder command-line client
package cli

import (
	"context"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/toolfinder/backend/config"
	"github.com/toolfinder/backend/internal/app"
	"github.com/toolfinder/backend/internal/domain"
	"github.com/toolfinder/backend/internal/logger"
)

// Recommender produces ranked recommendations for a search request
type Recommender interface {
	Recommend(ctx context.Context, request *domain.SearchRequest) (*domain.RecommendationResponse, error)
}

var (
	version = "dev"

	// swapped in tests
	loadConfig     = config.Load
	newRecommender = func(cfg *config.Config, log zerolog.Logger) Recommender {
		return app.NewRecommendationService(cfg, log)
	}
)

// SetVersion sets the version string reported by the version command
func SetVersion(v string) {
	version = v
}

type globalOptions struct {
	verbose bool
	noColor bool
}

// logger writes human-readable logs to w. Only warnings and errors are shown
// unless --verbose is set.
func (o *globalOptions) logger(w io.Writer) zerolog.Logger {
	level := "warn"
	if o.verbose {
		level = "debug"
	}
	return logger.New(logger.Config{
		Level:       level,
		Format:      "console",
		Output:      w,
		ServiceName: "toolfinder-cli",
	})
}

// NewRootCmd builds the toolfinder command tree
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "toolfinder",
		Short: "Find the best marketplace tools for a task",
		Long: `toolfinder ranks products from Product Hunt or G2 against a free-text
description of what you need and prints the top three matches with the
reasons they were picked.

Configuration is read from config.yaml, .env and TOOLFINDER_* environment
variables, the same as the HTTP server.

Example usage:
  toolfinder recommend project management for remote teams
  toolfinder recommend "note taking" --min-rating 4 --topic productivity
  toolfinder version`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log upstream activity to stderr")
	root.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	root.AddCommand(newRecommendCmd(opts))
	root.AddCommand(newVersionCmd())

	return root
}

// ExecuteContext runs the command tree with the given context
func ExecuteContext(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}
