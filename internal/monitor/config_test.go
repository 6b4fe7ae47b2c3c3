package monitor

import (
	"strings"
	"testing"

	"github.com/metricops/anomalyd/internal/detector"
)

const sampleQueriesYAML = `
queries:
  - name: node_cpu_usage
    promql: 100 - (avg(rate(node_cpu_seconds_total{mode="idle"}[5m])) * 100)
    severity: warning
    labels:
      team: platform
    contamination: 0.1
    ratio_threshold: 0.05
  - name: http_error_rate
    promql: sum(rate(http_requests_total{code=~"5.."}[5m]))
    severity: critical
    streak_threshold: 10
`

func TestParseQueries(t *testing.T) {
	queries, err := ParseQueries([]byte(sampleQueriesYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(queries) != 2 {
		t.Fatalf("expected 2 queries, got %d", len(queries))
	}

	first := queries[0]
	if first.Name != "node_cpu_usage" {
		t.Errorf("expected name node_cpu_usage, got %q", first.Name)
	}
	if first.Severity != "warning" {
		t.Errorf("expected severity warning, got %q", first.Severity)
	}
	if first.Labels["team"] != "platform" {
		t.Errorf("expected label team=platform, got %v", first.Labels)
	}
	if first.Contamination == nil || *first.Contamination != 0.1 {
		t.Errorf("expected contamination override 0.1, got %v", first.Contamination)
	}
	if first.Seed != nil {
		t.Errorf("expected no seed override, got %v", *first.Seed)
	}

	second := queries[1]
	if second.StreakThreshold == nil || *second.StreakThreshold != 10 {
		t.Errorf("expected streak threshold override 10, got %v", second.StreakThreshold)
	}
}

func TestParseQueriesErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "empty file",
			yaml:    "",
			wantErr: "no queries",
		},
		{
			name:    "missing name",
			yaml:    "queries:\n  - promql: up\n",
			wantErr: "name is required",
		},
		{
			name:    "missing promql",
			yaml:    "queries:\n  - name: up_check\n",
			wantErr: "promql is required",
		},
		{
			name:    "duplicate name",
			yaml:    "queries:\n  - name: up_check\n    promql: up\n  - name: up_check\n    promql: up\n",
			wantErr: "duplicate name",
		},
		{
			name:    "invalid yaml",
			yaml:    "queries: [",
			wantErr: "failed to parse",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseQueries([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}

func TestQueryConfigParams(t *testing.T) {
	defaults := detector.DefaultParams()

	t.Run("no overrides", func(t *testing.T) {
		q := QueryConfig{Name: "plain", PromQL: "up"}
		if got := q.Params(defaults); got != defaults {
			t.Errorf("expected defaults %+v, got %+v", defaults, got)
		}
	})

	t.Run("all overrides", func(t *testing.T) {
		contamination := 0.25
		seed := int64(7)
		ratio := 0.5
		streak := 3
		q := QueryConfig{
			Name:            "tuned",
			PromQL:          "up",
			Contamination:   &contamination,
			Seed:            &seed,
			RatioThreshold:  &ratio,
			StreakThreshold: &streak,
		}

		got := q.Params(defaults)
		want := detector.Params{
			Contamination:   0.25,
			Seed:            7,
			RatioThreshold:  0.5,
			StreakThreshold: 3,
		}
		if got != want {
			t.Errorf("expected %+v, got %+v", want, got)
		}
	})
}
