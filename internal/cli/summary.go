package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"trivia-visualizer/internal/app"
	"trivia-visualizer/internal/config"
	"trivia-visualizer/internal/domain"
	"trivia-visualizer/internal/render"
)

// NewSummaryCmd fetches one batch of questions and prints the aggregates.
func NewSummaryCmd(configPath *string) *cobra.Command {
	var category, sortBy string
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Fetch a batch of questions and print category and difficulty counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			if sortBy != "order" && sortBy != "count" {
				return fmt.Errorf("invalid --sort %q: want order or count", sortBy)
			}
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			d, err := buildDeps(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer d.Close()

			out, err := runSummary(cmd.Context(), d.service, category, sortBy == "count")
			fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		},
	}
	cmd.Flags().StringVar(&category, "category", domain.AllCategories, "category to summarize")
	cmd.Flags().StringVar(&sortBy, "sort", "order", "category order: order (first seen) or count")
	return cmd
}

func runSummary(ctx context.Context, service *app.DashboardService, category string, byCount bool) (string, error) {
	dashboard := service.NewDashboard("cli-" + uuid.New().String())
	if err := dashboard.Load(ctx); err != nil {
		msg := app.UserMessage(err)
		return render.TerminalError(msg), fmt.Errorf("load trivia data: %w", err)
	}

	state := dashboard.State()
	if category != "" && category != domain.AllCategories {
		if !slices.Contains(state.AvailableCategories, category) {
			return "", fmt.Errorf("unknown category %q (available: %s)", category, strings.Join(state.AvailableCategories[1:], ", "))
		}
	}
	state = dashboard.SetSelectedCategory(category)
	return render.TerminalSummary(state.SelectedCategory, *state.ProcessedData, byCount), nil
}
