// Package config provides configuration models and helpers for fieldnorm jobs.
//
// This file adds a lightweight linter for Job values. It performs static
// checks and returns a list of issues (errors and warnings) that callers can
// surface in a CLI or tests. Checks that need the dataset itself (does the
// field exist, is it numeric) happen at run time in the normalizer.
package config

import (
	"fmt"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that is surfaced but
	// does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding for a Job.
//
// Path is a dotted path into the config (e.g. "dataset.kind", "fields[1]").
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

// HasErrors reports whether any issue has error severity.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ValidateJob lints a Job. knownKinds lists the registered storage kinds;
// an unknown kind is an error because no backend could open it.
func ValidateJob(j Job, knownKinds []string) []Issue {
	var issues []Issue

	if strings.TrimSpace(j.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "job",
			Message:  fmt.Sprintf("job is empty; metrics will be labeled %q", DefaultJobName),
		})
	}
	issues = append(issues, validateDataset(j.Dataset, knownKinds)...)
	issues = append(issues, validateFields(j.Fields, j.NormField)...)
	issues = append(issues, validateNaming(j.Naming)...)
	issues = append(issues, validateMetrics(j.Metrics)...)

	return issues
}

func validateDataset(d Dataset, knownKinds []string) []Issue {
	var issues []Issue

	if strings.TrimSpace(d.Kind) == "" {
		return append(issues, Issue{
			Severity: SeverityError,
			Path:     "dataset.kind",
			Message:  "dataset.kind must not be empty",
		})
	}
	known := false
	for _, k := range knownKinds {
		if k == d.Kind {
			known = true
			break
		}
	}
	if !known {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "dataset.kind",
			Message:  fmt.Sprintf("unknown dataset kind %q; supported: %s", d.Kind, strings.Join(knownKinds, ", ")),
		})
	}

	if strings.TrimSpace(d.DSN) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "dataset.dsn",
			Message:  "dataset.dsn must not be empty",
		})
	}

	switch d.Kind {
	case "csv":
		if strings.TrimSpace(d.Table) != "" {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "dataset.table",
				Message:  "csv datasets are addressed by dsn; table is ignored",
			})
		}
		if c := d.Options.String("comma", ","); len([]rune(c)) != 1 {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "dataset.options.comma",
				Message:  "comma must be exactly one character",
			})
		}
	default:
		if strings.TrimSpace(d.Table) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "dataset.table",
				Message:  "dataset.table must not be empty",
			})
		}
	}

	return issues
}

func validateFields(fields FieldList, normField string) []Issue {
	var issues []Issue

	if len(fields) == 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "fields",
			Message:  "at least one input field is required",
		})
	}

	seen := make(map[string]int, len(fields))
	for i, f := range fields {
		path := fmt.Sprintf("fields[%d]", i)
		if strings.TrimSpace(f) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path,
				Message:  "field name must not be empty",
			})
			continue
		}
		if prev, ok := seen[f]; ok {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     path,
				Message:  fmt.Sprintf("duplicate of fields[%d] (%q); it will be normalized once", prev, f),
			})
			continue
		}
		seen[f] = i
		if f == normField {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     path,
				Message:  fmt.Sprintf("%q is also the normalization field; its ratio is always 1 or null", f),
			})
		}
	}

	if strings.TrimSpace(normField) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "norm_field",
			Message:  "norm_field must not be empty",
		})
	}

	return issues
}

func validateNaming(n Naming) []Issue {
	var issues []Issue

	if n.MaxAttempts < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "naming.max_attempts",
			Message:  "max_attempts must be >= 0 (0 selects the default)",
		})
	}
	switch n.CaseInsensitive {
	case "", CaseAuto, CaseTrue, CaseFalse:
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "naming.case_insensitive",
			Message:  fmt.Sprintf("case_insensitive must be auto, true or false, got %q", n.CaseInsensitive),
		})
	}

	return issues
}

func validateMetrics(m Metrics) []Issue {
	var issues []Issue

	switch m.Backend {
	case "", "none":
	case "pushgateway":
		if strings.TrimSpace(m.PushgatewayURL) == "" {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "metrics.pushgateway_url",
				Message:  "pushgateway backend without URL; metrics will not be pushed",
			})
		}
	case "datadog":
		if strings.TrimSpace(m.DogStatsDAddr) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.dogstatsd_addr",
				Message:  "datadog backend requires dogstatsd_addr",
			})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown metrics backend %q; metrics disabled", m.Backend),
		})
	}

	return issues
}
