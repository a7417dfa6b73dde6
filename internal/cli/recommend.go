package cli

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/toolfinder/backend/internal/domain"
)

type recommendOptions struct {
	minRating  float64
	topic      string
	jsonOutput bool
	timeout    time.Duration
}

func newRecommendCmd(global *globalOptions) *cobra.Command {
	opts := &recommendOptions{}

	cmd := &cobra.Command{
		Use:     "recommend <criteria>...",
		Aliases: []string{"find"},
		Short:   "Recommend the top three products for free-text criteria",
		Long: `Fetch candidates from the configured marketplace, rank them against the
criteria and print the top three with a score out of 100 and the reasons
behind each pick. All arguments are joined into one criteria string.`,
		Example: `  toolfinder recommend project management for remote teams
  toolfinder recommend "invoicing for freelancers" --min-rating 4
  toolfinder recommend kanban --topic productivity --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecommend(cmd, global, opts, args)
		},
	}

	cmd.Flags().Float64Var(&opts.minRating, "min-rating", 0, "drop products rated below this (0-5)")
	cmd.Flags().StringVar(&opts.topic, "topic", "", "narrow Product Hunt results to a topic slug")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "print the raw JSON response")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 2*time.Minute, "give up after this long")

	return cmd
}

func runRecommend(cmd *cobra.Command, global *globalOptions, opts *recommendOptions, args []string) error {
	criteria := strings.TrimSpace(strings.Join(args, " "))
	if criteria == "" {
		return &CLIError{
			Summary:    "criteria is required",
			Suggestion: `describe what you need, e.g. toolfinder recommend "team chat"`,
			ExitCode:   ExitUsageError,
		}
	}
	if opts.minRating < 0 || opts.minRating > 5 {
		return &CLIError{
			Summary:  "--min-rating must be between 0 and 5",
			ExitCode: ExitUsageError,
		}
	}

	cfg, err := loadConfig()
	if err != nil {
		return &CLIError{
			Summary:    "could not load configuration",
			Detail:     err.Error(),
			Suggestion: "set TOOLFINDER_PRODUCTHUNT_TOKEN (or TOOLFINDER_MARKETPLACE_PROVIDER=g2 and TOOLFINDER_G2_TOKEN)",
			ExitCode:   ExitConfigError,
		}
	}

	recommender := newRecommender(cfg, global.logger(cmd.ErrOrStderr()))

	ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
	defer cancel()

	response, err := recommender.Recommend(ctx, &domain.SearchRequest{
		Criteria:  criteria,
		MinRating: opts.minRating,
		Topic:     opts.topic,
	})
	if err != nil {
		return describeError(err)
	}

	if opts.jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(response)
	}

	useColors := !global.noColor && !color.NoColor
	NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr(), useColors).Recommendations(response)
	return nil
}
