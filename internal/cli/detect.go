package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/metricops/anomalyd/internal/detector"
	"github.com/metricops/anomalyd/pkg/client"
	"github.com/spf13/cobra"
)

func newDetectCmd() *cobra.Command {
	var (
		file            string
		local           bool
		verbose         bool
		contamination   float64
		seed            int64
		ratioThreshold  float64
		streakThreshold int
	)

	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Run anomaly detection on a series",
		Long: `Run anomaly detection on a JSON series read from a file or stdin.

The input is either a bare array of points or a full request object:

  [{"timestamp": "2024-01-01T00:00:00Z", "value": 10.0}, ...]
  {"metadata": {"alert_name": "HighCPU"}, "data": [...], "contamination": 0.1}

Flags override the corresponding fields of a request object.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := readDetectRequest(file)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("contamination") {
				req.Contamination = &contamination
			}
			if cmd.Flags().Changed("seed") {
				req.RandomState = &seed
			}
			if cmd.Flags().Changed("ratio-threshold") {
				req.RatioThreshold = &ratioThreshold
			}
			if cmd.Flags().Changed("streak-threshold") {
				req.StreakThreshold = &streakThreshold
			}

			if local {
				return runLocalDetect(req, verbose)
			}

			ctx := context.Background()
			if verbose {
				resp, err := apiClient.Detections().DetectVerbose(ctx, *req)
				if err != nil {
					return fmt.Errorf("detection failed: %w", err)
				}
				return printVerboseResult(resp.Points, resp.Segment, resp.Anomalies)
			}

			resp, err := apiClient.Detections().Detect(ctx, *req)
			if err != nil {
				return fmt.Errorf("detection failed: %w", err)
			}
			return printIntervals(resp.Anomalies)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "input file (defaults to stdin)")
	cmd.Flags().BoolVar(&local, "local", false, "run detection in-process instead of calling the server")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "include per-point scores and the segment verdict")
	cmd.Flags().Float64Var(&contamination, "contamination", 0, "expected anomaly fraction in (0, 0.5]")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed for deterministic scoring")
	cmd.Flags().Float64Var(&ratioThreshold, "ratio-threshold", 0, "segment verdict ratio threshold")
	cmd.Flags().IntVar(&streakThreshold, "streak-threshold", 0, "segment verdict streak threshold")

	return cmd
}

// readDetectRequest reads a detection request from a file, or from stdin
// when path is empty or "-". A bare array is shorthand for {"data": [...]}.
func readDetectRequest(path string) (*client.DetectRequest, error) {
	var (
		raw []byte
		err error
	)
	if path == "" || path == "-" {
		raw, err = io.ReadAll(os.Stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var points []client.DataPoint
		if err := json.Unmarshal(raw, &points); err != nil {
			return nil, fmt.Errorf("invalid series: %w", err)
		}
		return &client.DetectRequest{Data: points}, nil
	}

	var req client.DetectRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	return &req, nil
}

// runLocalDetect scores the series in-process with the same pipeline the
// server runs, so results match a server round trip exactly.
func runLocalDetect(req *client.DetectRequest, verbose bool) error {
	series := make([]detector.Observation, 0, len(req.Data))
	for _, p := range req.Data {
		series = append(series, detector.Observation{Timestamp: p.Timestamp, Value: p.Value})
	}

	params := detector.DefaultParams()
	if req.Contamination != nil {
		params.Contamination = *req.Contamination
	}
	if req.RandomState != nil {
		params.Seed = *req.RandomState
	}
	if req.RatioThreshold != nil {
		params.RatioThreshold = *req.RatioThreshold
	}
	if req.StreakThreshold != nil {
		params.StreakThreshold = *req.StreakThreshold
	}

	result, err := detector.Detect(series, params)
	if err != nil {
		return err
	}

	if verbose {
		return printVerboseResult(toClientPoints(result.Points), toClientVerdict(result.Verdict), toClientIntervals(result.Intervals))
	}
	return printIntervals(toClientIntervals(result.Intervals))
}

func toClientIntervals(in []detector.Interval) []client.Interval {
	out := make([]client.Interval, 0, len(in))
	for _, iv := range in {
		out = append(out, client.Interval{Start: iv.Start, End: iv.End})
	}
	return out
}

func toClientPoints(in []detector.PointResult) []client.PointResult {
	out := make([]client.PointResult, 0, len(in))
	for _, p := range in {
		out = append(out, client.PointResult{
			Timestamp: p.Timestamp,
			Value:     p.Value,
			Score:     p.Score,
			IsAnomaly: p.IsAnomaly,
		})
	}
	return out
}

func toClientVerdict(v detector.SegmentVerdict) client.SegmentVerdict {
	return client.SegmentVerdict{
		IsSegmentAnomaly:      v.IsSegmentAnomaly,
		AnomalyRatio:          v.AnomalyRatio,
		MaxConsecutiveAnomaly: v.MaxConsecutiveAnomaly,
		Reason:                v.Reason,
		Rules: client.SegmentRules{
			RatioThreshold:  v.Rules.RatioThreshold,
			StreakThreshold: v.Rules.StreakThreshold,
		},
	}
}

func printIntervals(intervals []client.Interval) error {
	format := getOutputFormat()
	if format != "table" {
		return printOutput(map[string]interface{}{"anomalies": intervals})
	}

	if len(intervals) == 0 {
		fmt.Println(colorize("No anomalous intervals detected", colorGreen))
		return nil
	}

	fmt.Println(colorize(fmt.Sprintf("%d anomalous interval(s) detected", len(intervals)), colorRed))
	t := NewTable("START", "END")
	for _, iv := range intervals {
		t.AddRow(iv.Start, iv.End)
	}
	t.Render()
	return nil
}

func printVerboseResult(points []client.PointResult, segment client.SegmentVerdict, anomalies []client.Interval) error {
	format := getOutputFormat()
	if format != "table" {
		return printOutput(map[string]interface{}{
			"points":    points,
			"segment":   segment,
			"anomalies": anomalies,
		})
	}

	fmt.Printf("Verdict:    %s\n", formatVerdict(segment.IsSegmentAnomaly))
	fmt.Printf("Ratio:      %.4f (threshold %.2f)\n", segment.AnomalyRatio, segment.Rules.RatioThreshold)
	fmt.Printf("Max streak: %d (threshold %d)\n", segment.MaxConsecutiveAnomaly, segment.Rules.StreakThreshold)
	if segment.Reason != "" {
		fmt.Printf("Reason:     %s\n", segment.Reason)
	}
	fmt.Println()

	t := NewTable("TIMESTAMP", "VALUE", "SCORE", "ANOMALY")
	for _, p := range points {
		anomaly := ""
		if p.IsAnomaly {
			anomaly = "yes"
		}
		t.AddRow(
			p.Timestamp,
			strconv.FormatFloat(p.Value, 'g', -1, 64),
			strconv.FormatFloat(p.Score, 'f', 4, 64),
			anomaly,
		)
	}
	t.Render()

	if len(anomalies) > 0 {
		fmt.Println("\nIntervals:")
		for _, iv := range anomalies {
			fmt.Printf("  %s .. %s\n", iv.Start, iv.End)
		}
	}
	return nil
}
