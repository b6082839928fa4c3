package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"fieldnorm/internal/config"
	"fieldnorm/internal/datasource/file"
	"fieldnorm/internal/logger"
	"fieldnorm/internal/normalize"
	"fieldnorm/internal/progress"
	"fieldnorm/internal/storage"
	"fieldnorm/internal/storage/csvfile"
)

// buildJob merges the job file, FIELDNORM_* environment, flags and
// positional arguments into one Job.
func buildJob(cmd *cobra.Command, o *options, args []string) (config.Job, error) {
	var job config.Job
	if o.configPath != "" {
		j, err := config.Load(o.configPath)
		if err != nil {
			return config.Job{}, err
		}
		job = j
	} else if len(args) < 3 {
		return config.Job{}, fmt.Errorf("expected <dataset> <fields> <norm_field> [suffix], got %d argument(s)", len(args))
	}
	if job.Dataset.Options == nil {
		job.Dataset.Options = config.Options{}
	}

	job.Job = pickString(cmd, "job", "FIELDNORM_JOB", o.job, job.Job)
	job.Dataset.Kind = pickString(cmd, "storage", "FIELDNORM_STORAGE", o.storage, job.Dataset.Kind)
	job.Dataset.DSN = pickString(cmd, "dsn", "FIELDNORM_DSN", o.dsn, job.Dataset.DSN)
	for k, v := range o.options {
		job.Dataset.Options[k] = optionValue(v)
	}

	if len(args) > 0 {
		if job.Dataset.Kind == csvfile.Kind {
			if !cmd.Flags().Changed("dsn") {
				job.Dataset.DSN = args[0]
			}
		} else {
			dsn, table := splitDataset(args[0])
			if dsn != "" && !cmd.Flags().Changed("dsn") {
				job.Dataset.DSN = dsn
			}
			job.Dataset.Table = table
		}
	}
	if len(args) > 1 {
		fields, err := fieldsArg(args[1])
		if err != nil {
			return config.Job{}, err
		}
		job.Fields = fields
	}
	if len(args) > 2 {
		job.NormField = args[2]
	}
	if len(args) > 3 {
		job.Suffix = args[3]
	}

	attempts, err := pickInt(cmd, "max-attempts", "FIELDNORM_MAX_ATTEMPTS", o.maxAttempts, job.Naming.MaxAttempts)
	if err != nil {
		return config.Job{}, err
	}
	job.Naming.MaxAttempts = attempts
	job.Naming.CaseInsensitive = pickString(cmd, "case-insensitive", "FIELDNORM_CASE_INSENSITIVE", o.caseInsensitive, job.Naming.CaseInsensitive)

	dry, err := pickBool(cmd, "dry-run", "FIELDNORM_DRY_RUN", o.dryRun, job.DryRun)
	if err != nil {
		return config.Job{}, err
	}
	job.DryRun = dry

	job.Metrics.Backend = pickString(cmd, "metrics-backend", "FIELDNORM_METRICS_BACKEND", o.metricsBackend, job.Metrics.Backend)
	job.Metrics.PushgatewayURL = pickString(cmd, "pushgateway-url", "FIELDNORM_PUSHGATEWAY_URL", o.pushgatewayURL, job.Metrics.PushgatewayURL)
	job.Metrics.DogStatsDAddr = pickString(cmd, "dogstatsd-addr", "FIELDNORM_DOGSTATSD_ADDR", o.dogstatsdAddr, job.Metrics.DogStatsDAddr)

	return job, nil
}

// splitDataset splits a SQL <dataset> argument of the form <dsn>#<table> at
// the last '#'. A bare table name (including SQL Server #temp names) returns
// an empty dsn.
func splitDataset(arg string) (dsn, table string) {
	if i := strings.LastIndexByte(arg, '#'); i > 0 && i < len(arg)-1 && strings.Trim(arg[:i], "#") != "" {
		return arg[:i], arg[i+1:]
	}
	return "", arg
}

// fieldsArg parses the <fields> argument: a name, a semicolon-delimited
// list, or @path to a file with one name per line.
func fieldsArg(arg string) (config.FieldList, error) {
	if path, ok := strings.CutPrefix(arg, "@"); ok {
		names, err := file.ReadList(path)
		if err != nil {
			return nil, err
		}
		return config.FieldList(names), nil
	}
	return config.ParseFieldList(arg), nil
}

// optionValue coerces a --option value to the types config.Options reads.
func optionValue(v string) any {
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	return v
}

// pickString applies flag > env > file > default precedence.
func pickString(cmd *cobra.Command, flag, env, flagVal, fileVal string) string {
	if cmd.Flags().Changed(flag) {
		return flagVal
	}
	if v := strings.TrimSpace(os.Getenv(env)); v != "" {
		return v
	}
	if fileVal != "" {
		return fileVal
	}
	return flagVal
}

func pickInt(cmd *cobra.Command, flag, env string, flagVal, fileVal int) (int, error) {
	if cmd.Flags().Changed(flag) {
		return flagVal, nil
	}
	if v := strings.TrimSpace(os.Getenv(env)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", env, err)
		}
		return n, nil
	}
	if fileVal != 0 {
		return fileVal, nil
	}
	return flagVal, nil
}

func pickBool(cmd *cobra.Command, flag, env string, flagVal, fileVal bool) (bool, error) {
	if cmd.Flags().Changed(flag) {
		return flagVal, nil
	}
	if v := strings.TrimSpace(os.Getenv(env)); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return false, fmt.Errorf("%s: %w", env, err)
		}
		return b, nil
	}
	return fileVal || flagVal, nil
}

func normalizer(ds storage.Dataset, job config.Job, log logger.Logger) *normalize.Normalizer {
	name := job.Job
	if name == "" {
		name = config.DefaultJobName
	}
	return normalize.New(ds,
		normalize.WithJob(name),
		normalize.WithLogger(log),
		normalize.WithProgress(progress.LogObserver(log)),
	)
}
