package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rspamd/rspamd-mon/internal/stats"
)

// metricFile is the YAML schema of a tracked-metric file:
//
//	metrics:
//	  - name: rejected
//	    label: rejected msg/sec
//	    kind: rate
//	    actions: [reject]
//	  - name: total
//	    kind: rate
//	    total: true
//	  - name: scan-time
//	    kind: gauge
//	    scan_time: true
type metricFile struct {
	Metrics []metricEntry `yaml:"metrics"`
}

type metricEntry struct {
	Name     string   `yaml:"name"`
	Label    string   `yaml:"label"`
	Kind     string   `yaml:"kind"`
	Actions  []string `yaml:"actions"`
	Total    bool     `yaml:"total"`
	ScanTime bool     `yaml:"scan_time"`
}

// LoadMetricSet reads the tracked-metric definitions from path, falling
// back to the built-in default set when path is empty.
func LoadMetricSet(path string) ([]stats.MetricSpec, error) {
	if path == "" {
		return stats.DefaultMetricSet(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read metric file: %w", err)
	}

	var file metricFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse metric file: %w", err)
	}

	specs := make([]stats.MetricSpec, 0, len(file.Metrics))
	var errs ValidationErrors
	seen := make(map[string]bool)
	totals := 0

	for i, e := range file.Metrics {
		field := fmt.Sprintf("metrics[%d]", i)

		if e.Name == "" {
			errs = append(errs, ValidationError{Field: field, Message: "name is required"})
			continue
		}
		if seen[e.Name] {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("duplicate name %q", e.Name),
			})
			continue
		}
		seen[e.Name] = true

		var kind stats.Kind
		switch e.Kind {
		case "rate":
			kind = stats.KindRate
		case "gauge":
			kind = stats.KindGauge
		default:
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("kind must be rate or gauge, got %q", e.Kind),
			})
			continue
		}

		if e.ScanTime {
			if len(e.Actions) > 0 || e.Total {
				errs = append(errs, ValidationError{
					Field:   field,
					Message: "scan_time metrics take no actions or total flag",
				})
				continue
			}
		} else if e.Total {
			if len(e.Actions) > 0 {
				errs = append(errs, ValidationError{
					Field:   field,
					Message: "total metrics take no actions",
				})
				continue
			}
			totals++
			if totals > 1 {
				errs = append(errs, ValidationError{
					Field:   field,
					Message: "only one total metric is allowed",
				})
				continue
			}
		} else if len(e.Actions) == 0 {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: "metric needs actions, total or scan_time as its source",
			})
			continue
		}

		label := e.Label
		if label == "" {
			label = e.Name
		}

		specs = append(specs, stats.MetricSpec{
			Name:     e.Name,
			Label:    label,
			Kind:     kind,
			Actions:  e.Actions,
			Total:    e.Total,
			ScanTime: e.ScanTime,
		})
	}

	if len(errs) > 0 {
		return nil, errs
	}
	if len(specs) == 0 {
		return nil, ValidationErrors{{Field: "metrics", Message: "at least one metric is required"}}
	}
	return specs, nil
}
