// Package config defines the JSON-serializable job model for fieldnorm and a
// small Options helper for backend-specific settings.
//
// A job can come entirely from a file, entirely from command-line arguments,
// or from a file with flags layered on top; the CLI merges them into one Job
// before validation.
//
// Example:
//
//	{
//	  "job": "normalize_population",
//	  "dataset": { "kind": "sqlite", "dsn": "tracts.db", "table": "tracts" },
//	  "fields": ["POP2020", "POP2010"],
//	  "norm_field": "AREA",
//	  "suffix": "_norm",
//	  "naming": { "max_attempts": 99, "case_insensitive": "auto" },
//	  "metrics": { "backend": "none" }
//	}
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// DefaultJobName labels metrics and logs when the job file leaves it empty.
const DefaultJobName = "fieldnorm"

// Job describes one normalization run.
type Job struct {
	// Job names the run for metrics grouping.
	Job string `json:"job"`

	// Dataset selects the storage backend and the table (or file) to modify.
	Dataset Dataset `json:"dataset"`

	// Fields lists the input fields to normalize. In JSON it may be an array
	// or a single semicolon-delimited string.
	Fields FieldList `json:"fields"`

	// NormField is the reference field every input is divided by.
	NormField string `json:"norm_field"`

	// Suffix is appended to input names to build output names. Empty selects
	// naming.DefaultSuffix.
	Suffix string `json:"suffix"`

	Naming  Naming  `json:"naming"`
	Metrics Metrics `json:"metrics"`

	// DryRun resolves output names and stops before any schema change.
	DryRun bool `json:"dry_run"`
}

// Dataset identifies the dataset to modify.
type Dataset struct {
	// Kind selects the storage backend: sqlite, postgres, mssql, mysql,
	// duckdb, csv.
	Kind string `json:"kind"`

	// DSN is the connection string, or the file path for csv.
	DSN string `json:"dsn"`

	// Table is the (optionally schema-qualified) table name. Not used by csv.
	Table string `json:"table"`

	// Options is interpreted by the backend (e.g. csv "comma").
	Options Options `json:"options"`
}

// Case-insensitivity modes for Naming.CaseInsensitive.
const (
	CaseAuto  = "auto"
	CaseTrue  = "true"
	CaseFalse = "false"
)

// Naming controls output-name resolution.
type Naming struct {
	// MaxAttempts caps the numbered candidates tried after a collision.
	// Zero selects the default (99).
	MaxAttempts int `json:"max_attempts"`

	// CaseInsensitive is "auto" (ask the backend), "true" or "false".
	CaseInsensitive string `json:"case_insensitive"`
}

// Metrics selects a metrics backend.
type Metrics struct {
	// Backend is "none", "pushgateway" or "datadog".
	Backend        string `json:"backend"`
	PushgatewayURL string `json:"pushgateway_url"`
	DogStatsDAddr  string `json:"dogstatsd_addr"`
	// Namespace prefixes Datadog metric names, e.g. "fieldnorm.".
	Namespace string `json:"namespace"`
}

// FieldList is a list of field names that also decodes from a
// semicolon-delimited JSON string.
type FieldList []string

// UnmarshalJSON accepts ["a","b"] or "a;b".
func (f *FieldList) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		*f = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = ParseFieldList(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return fmt.Errorf("fields: want string or array of strings: %w", err)
	}
	*f = list
	return nil
}

// ParseFieldList splits a parameter holding one field name or a
// semicolon-delimited list. Surrounding whitespace and quotes are trimmed and
// empty entries are dropped.
func ParseFieldList(s string) FieldList {
	parts := strings.Split(s, ";")
	out := make(FieldList, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(strings.TrimSpace(p), `'"`)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Load reads and decodes a job file.
func Load(path string) (Job, error) {
	f, err := os.Open(path)
	if err != nil {
		return Job{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	var j Job
	if err := json.NewDecoder(f).Decode(&j); err != nil {
		return Job{}, fmt.Errorf("decode config %s: %w", path, err)
	}
	return j, nil
}

// Options is a small helper to fetch typed values from arbitrary JSON maps. It
// performs only minimal type coercion and returns provided defaults when a key
// is absent or of an unexpected type.
type Options map[string]any

// String returns the string value for key or def if key is missing or not a string.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the bool value for key or def if key is missing or not a bool.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Int returns the int value for key or def. JSON numbers decode as float64.
func (o Options) Int(key string, def int) int {
	if v, ok := o[key]; ok {
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		}
	}
	return def
}

// Rune returns the first rune of a string value for key, or def if key is
// missing or empty. Used for single-character settings such as a delimiter.
func (o Options) Rune(key string, def rune) rune {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok && len(s) > 0 {
			return []rune(s)[0]
		}
	}
	return def
}

// UnmarshalJSON makes a missing or null "options" object decode to a non-nil,
// empty Options map.
func (o *Options) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		*o = Options{}
		return nil
	}
	var tmp map[string]any
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*o = Options(tmp)
	return nil
}
