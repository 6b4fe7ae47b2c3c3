package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newAlertsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "Inspect alerts buffered by the webhook relay",
	}

	cmd.AddCommand(newAlertsListCmd())

	return cmd
}

func newAlertsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List buffered alerts, oldest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			records, err := apiClient.Alerts().List(ctx)
			if err != nil {
				return fmt.Errorf("failed to list alerts: %w", err)
			}

			format := getOutputFormat()
			if format != "table" {
				return printOutput(records)
			}

			t := NewTable("RECEIVED", "STATUS", "ALERTS", "PAYLOAD")
			for _, rec := range records {
				status, names := summarizeAlert(rec.Data)
				t.AddRow(rec.Timestamp, status, names, truncate(string(rec.Data), 48))
			}
			t.Render()
			return nil
		},
	}
}

// summarizeAlert pulls the status and alert names out of an Alertmanager
// payload. Other payload shapes yield empty columns.
func summarizeAlert(data []byte) (string, string) {
	var payload struct {
		Status string `json:"status"`
		Alerts []struct {
			Labels map[string]string `json:"labels"`
		} `json:"alerts"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return "", ""
	}

	names := make([]string, 0, len(payload.Alerts))
	for _, a := range payload.Alerts {
		if name := a.Labels["alertname"]; name != "" {
			names = append(names, name)
		}
	}
	return payload.Status, strings.Join(names, ",")
}
