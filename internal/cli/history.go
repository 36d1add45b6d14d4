package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"trivia-visualizer/internal/config"
	"trivia-visualizer/internal/domain"
)

// NewHistoryCmd lists the most recent archived loads.
func NewHistoryCmd(configPath *string) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recently archived loads",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			d, err := buildDeps(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer d.Close()
			if d.archive == nil {
				return fmt.Errorf("no archive configured: set postgres.url or sqlite.path")
			}

			records, err := d.archive.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), historyTable(records))
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "number of loads to list")
	return cmd
}

func historyTable(records []domain.LoadRecord) string {
	if len(records) == 0 {
		return "no loads recorded"
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "LOADED AT", "DASHBOARD", "QUESTIONS", "CATEGORIES")
	for _, r := range records {
		t.Row(
			strconv.FormatInt(r.ID, 10),
			r.LoadedAt.Local().Format("2006-01-02 15:04:05"),
			r.DashboardID,
			strconv.Itoa(r.TotalQuestions),
			strconv.Itoa(r.CategoryCount),
		)
	}
	return t.String()
}
