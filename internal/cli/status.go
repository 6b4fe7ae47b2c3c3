package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show service status",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			format := getOutputFormat()
			if format != "table" {
				summary := map[string]interface{}{}

				if health, err := apiClient.Health(ctx); err == nil {
					summary["api"] = health.Status
				}
				if ready, err := apiClient.Ready(ctx); err == nil {
					summary["database"] = ready.Database
				}
				if records, err := apiClient.Alerts().List(ctx); err == nil {
					summary["buffered_alerts"] = len(records)
				}
				return printOutput(summary)
			}

			fmt.Println("anomalyd status")
			fmt.Println(strings.Repeat("=", 40))

			// API
			if health, err := apiClient.Health(ctx); err != nil {
				fmt.Printf("  API:       %s (%v)\n", colorize("unreachable", colorRed), err)
			} else {
				fmt.Printf("  API:       %s\n", colorize(health.Status, colorGreen))
			}

			// Database, through the readiness probe
			if ready, err := apiClient.Ready(ctx); err != nil {
				fmt.Printf("  Database:  %s (%v)\n", colorize("unreachable", colorRed), err)
			} else {
				fmt.Printf("  Database:  %s\n", colorize(ready.Database, colorGreen))
			}

			// Relay
			if records, err := apiClient.Alerts().List(ctx); err != nil {
				fmt.Printf("  Relay:     %s (%v)\n", colorize("unreachable", colorRed), err)
			} else {
				fmt.Printf("  Relay:     %s (%d buffered alert(s))\n", colorize("up", colorGreen), len(records))
			}

			return nil
		},
	}
}
