package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"denorm/internal/datasource/file"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError marks a setting that will make part of the run fail.
	SeverityError IssueSeverity = "error"
	// SeverityWarning marks a suspicious setting the run can live with.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation/lint finding.
//
// Path names the offending setting (e.g. "path", "metrics.backend").
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether issues contains at least one SeverityError.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Validate lints cfg against the filesystem. inputs lists the file names the
// run expects under the input directory.
//
// It never mutates cfg. The run treats every issue as advisory: a missing
// input file still yields an empty table and the run continues.
func Validate(cfg Config, inputs []string) []Issue {
	var issues []Issue

	if strings.TrimSpace(cfg.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "job",
			Message:  "job is empty; metrics will be labeled with an empty job",
		})
	}
	issues = append(issues, validateInput(cfg.InputDir, inputs)...)
	issues = append(issues, validateOutput(cfg.InputDir, cfg.OutputDir)...)
	issues = append(issues, validateMetrics(cfg.Metrics)...)

	return issues
}

func validateInput(dir string, inputs []string) []Issue {
	if strings.TrimSpace(dir) == "" {
		return []Issue{{
			Severity: SeverityError,
			Path:     KeyInputDir,
			Message:  "input directory must not be empty",
		}}
	}
	if !isDir(dir) {
		return []Issue{{
			Severity: SeverityError,
			Path:     KeyInputDir,
			Message:  fmt.Sprintf("input directory %q does not exist", dir),
		}}
	}

	var issues []Issue
	for _, name := range file.NewDir(dir).Missing(inputs...) {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     KeyInputDir,
			Message:  fmt.Sprintf("input file %s not found in %s; its table will be empty", name, dir),
		})
	}
	return issues
}

func validateOutput(in, out string) []Issue {
	if strings.TrimSpace(out) == "" {
		return []Issue{{
			Severity: SeverityError,
			Path:     KeyOutputDir,
			Message:  "output directory must not be empty",
		}}
	}
	if !isDir(out) {
		return []Issue{{
			Severity: SeverityError,
			Path:     KeyOutputDir,
			Message:  fmt.Sprintf("output directory %q does not exist; document files cannot be written", out),
		}}
	}
	if sameDir(in, out) {
		return []Issue{{
			Severity: SeverityWarning,
			Path:     KeyOutputDir,
			Message:  "output directory equals the input directory; documents will be written next to the source tables",
		}}
	}
	return nil
}

func validateMetrics(m Metrics) []Issue {
	var issues []Issue

	switch m.Backend {
	case "", BackendNone:
	case BackendPushgateway:
		if strings.TrimSpace(m.PushgatewayURL) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     KeyPushgatewayURL,
				Message:  "pushgateway backend requires a URL",
			})
		}
	case BackendDatadog:
		if strings.TrimSpace(m.StatsdAddr) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     KeyStatsdAddr,
				Message:  "datadog backend requires a DogStatsD address",
			})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     KeyMetricsBackend,
			Message:  fmt.Sprintf("unknown metrics backend %q; metrics disabled", m.Backend),
		})
	}

	return issues
}

func isDir(p string) bool {
	st, err := os.Stat(p)
	return err == nil && st.IsDir()
}

func sameDir(a, b string) bool {
	aa, errA := filepath.Abs(a)
	bb, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return aa == bb
}
