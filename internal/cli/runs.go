package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/metricops/anomalyd/pkg/client"
	"github.com/spf13/cobra"
)

func newRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect recorded detection runs",
	}

	cmd.AddCommand(newRunsListCmd())
	cmd.AddCommand(newRunsGetCmd())

	return cmd
}

func newRunsListCmd() *cobra.Command {
	var (
		source    string
		alertName string
		anomalous bool
		page      int
		pageSize  int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List detection runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			opts := &client.RunListOptions{
				ListOptions: client.ListOptions{Page: page, PageSize: pageSize},
			}
			if source != "" {
				opts.Source = &source
			}
			if alertName != "" {
				opts.AlertName = &alertName
			}
			if cmd.Flags().Changed("anomalous") {
				opts.Anomalous = &anomalous
			}

			runs, total, err := apiClient.Detections().List(ctx, opts)
			if err != nil {
				return fmt.Errorf("failed to list runs: %w", err)
			}

			format := getOutputFormat()
			if format != "table" {
				return printOutput(runs)
			}

			t := NewTable("ID", "SOURCE", "ALERT", "POINTS", "RATIO", "STREAK", "VERDICT", "CREATED")
			for _, r := range runs {
				verdict := ""
				if r.SegmentAnomaly {
					verdict = "anomalous"
				}
				t.AddRow(
					strconv.FormatInt(r.ID, 10),
					r.Source,
					truncate(r.AlertName, 30),
					strconv.Itoa(r.PointCount),
					fmt.Sprintf("%.3f", r.AnomalyRatio),
					strconv.Itoa(r.MaxStreak),
					verdict,
					r.CreatedAt.Format("2006-01-02 15:04:05"),
				)
			}
			t.Render()
			fmt.Printf("\nShowing %d of %d run(s)\n", len(runs), total)
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "filter by source (api, monitor)")
	cmd.Flags().StringVar(&alertName, "alert", "", "filter by alert name")
	cmd.Flags().BoolVar(&anomalous, "anomalous", false, "filter by segment verdict")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 20, "page size")

	return cmd
}

func newRunsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Get detection run details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid run ID: %s", args[0])
			}

			ctx := context.Background()
			run, err := apiClient.Detections().Get(ctx, id)
			if err != nil {
				return fmt.Errorf("failed to get run: %w", err)
			}

			format := getOutputFormat()
			if format != "table" {
				return printOutput(run)
			}

			fmt.Printf("ID:          %d\n", run.ID)
			fmt.Printf("Source:      %s\n", run.Source)
			if run.AlertName != "" {
				fmt.Printf("Alert:       %s\n", run.AlertName)
			}
			if run.Severity != "" {
				fmt.Printf("Severity:    %s\n", formatSeverity(run.Severity))
			}
			fmt.Printf("Verdict:     %s\n", formatVerdict(run.SegmentAnomaly))
			fmt.Printf("Points:      %d (%d flagged)\n", run.PointCount, run.AnomalyCount)
			fmt.Printf("Ratio:       %.4f (threshold %.2f)\n", run.AnomalyRatio, run.RatioThreshold)
			fmt.Printf("Max streak:  %d (threshold %d)\n", run.MaxStreak, run.StreakThreshold)
			fmt.Printf("Params:      contamination=%.3f seed=%d\n", run.Contamination, run.Seed)
			fmt.Printf("Duration:    %dms\n", run.DurationMs)
			fmt.Printf("Created:     %s\n", run.CreatedAt.Format("2006-01-02 15:04:05"))
			if len(run.Intervals) > 0 {
				fmt.Println("Intervals:")
				for _, iv := range run.Intervals {
					fmt.Printf("  %s .. %s\n", iv.Start, iv.End)
				}
			}
			return nil
		},
	}
}
