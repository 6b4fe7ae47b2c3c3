package monitor

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/metricops/anomalyd/internal/detector"
)

// QueryConfig is one PromQL expression the monitor watches. Detection
// parameters are optional per-query overrides; unset fields fall back to
// the service defaults.
type QueryConfig struct {
	Name            string            `yaml:"name"`
	PromQL          string            `yaml:"promql"`
	Severity        string            `yaml:"severity"`
	Labels          map[string]string `yaml:"labels"`
	Contamination   *float64          `yaml:"contamination"`
	Seed            *int64            `yaml:"seed"`
	RatioThreshold  *float64          `yaml:"ratio_threshold"`
	StreakThreshold *int              `yaml:"streak_threshold"`
}

// QueriesFile is the on-disk shape of the monitor query list.
type QueriesFile struct {
	Queries []QueryConfig `yaml:"queries"`
}

// LoadQueries reads and parses the YAML queries file at path.
func LoadQueries(path string) ([]QueryConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read queries file: %w", err)
	}
	return ParseQueries(data)
}

// ParseQueries parses and validates the queries file contents.
func ParseQueries(data []byte) ([]QueryConfig, error) {
	var file QueriesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse queries file: %w", err)
	}

	if len(file.Queries) == 0 {
		return nil, fmt.Errorf("queries file defines no queries")
	}

	seen := make(map[string]bool, len(file.Queries))
	for i, q := range file.Queries {
		if q.Name == "" {
			return nil, fmt.Errorf("query %d: name is required", i)
		}
		if q.PromQL == "" {
			return nil, fmt.Errorf("query %q: promql is required", q.Name)
		}
		if seen[q.Name] {
			return nil, fmt.Errorf("query %q: duplicate name", q.Name)
		}
		seen[q.Name] = true
	}

	return file.Queries, nil
}

// Params merges the query's overrides over the given defaults.
func (q QueryConfig) Params(defaults detector.Params) detector.Params {
	params := defaults
	if q.Contamination != nil {
		params.Contamination = *q.Contamination
	}
	if q.Seed != nil {
		params.Seed = *q.Seed
	}
	if q.RatioThreshold != nil {
		params.RatioThreshold = *q.RatioThreshold
	}
	if q.StreakThreshold != nil {
		params.StreakThreshold = *q.StreakThreshold
	}
	return params
}
