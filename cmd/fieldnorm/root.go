package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"fieldnorm/internal/config"
	"fieldnorm/internal/logger"
	"fieldnorm/internal/naming"
	"fieldnorm/internal/normalize"
	"fieldnorm/internal/storage"

	// register all backends with the storage factory.
	_ "fieldnorm/internal/storage/all"
)

// errInvalidConfig is returned after validation issues have been printed.
var errInvalidConfig = errors.New("configuration is invalid")

// options holds raw flag values before precedence is applied.
type options struct {
	storage         string
	dsn             string
	configPath      string
	job             string
	options         map[string]string
	maxAttempts     int
	caseInsensitive string
	dryRun          bool
	validate        bool

	metricsBackend string
	pushgatewayURL string
	dogstatsdAddr  string

	logLevel string
	logJSON  bool
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
}

// execute runs the root command with args and maps the outcome to an exit
// code.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errInvalidConfig) {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var o options

	cmd := &cobra.Command{
		Use:   "fieldnorm [flags] <dataset> <fields> <norm_field> [suffix]",
		Short: "Add normalized ratio fields to a dataset",
		Long: "fieldnorm adds one double field per input field holding input / norm_field,\n" +
			"null where norm_field is zero or missing. Output names are input + suffix\n" +
			"(default " + naming.DefaultSuffix + "), numbered 1.." + fmt.Sprint(naming.DefaultMaxAttempts) +
			" when taken.\n\n" +
			"<dataset> is the table name (optionally schema-qualified) with the connection\n" +
			"from --dsn, or <dsn>#<table> to give both at once. For --storage csv it is\n" +
			"the file path.\n\n" +
			"Settings are resolved as flag > FIELDNORM_* environment > --config file > default.",
		Args:          cobra.RangeArgs(0, 4),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, &o, args)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.storage, "storage", "s", "sqlite", "storage backend (sqlite, postgres, mssql, mysql, duckdb, csv)")
	f.StringVar(&o.dsn, "dsn", "", "connection string; overrides the <dsn> part of <dsn>#<table>; for csv the file path (defaults to <dataset>)")
	f.StringVar(&o.configPath, "config", "", "JSON job file")
	f.StringVar(&o.job, "job", config.DefaultJobName, "job name for logs and metrics")
	f.StringToStringVar(&o.options, "option", nil, "backend option key=value, e.g. comma=; (repeatable)")
	f.IntVar(&o.maxAttempts, "max-attempts", naming.DefaultMaxAttempts, "numbered name candidates tried after a collision")
	f.StringVar(&o.caseInsensitive, "case-insensitive", config.CaseAuto, "field name matching: auto, true or false")
	f.BoolVar(&o.dryRun, "dry-run", false, "resolve output names and exit without changing the dataset")
	f.BoolVar(&o.validate, "validate", false, "validate the configuration and exit")
	f.StringVar(&o.metricsBackend, "metrics-backend", "none", "metrics backend (none, pushgateway, datadog)")
	f.StringVar(&o.pushgatewayURL, "pushgateway-url", "", "Pushgateway base URL")
	f.StringVar(&o.dogstatsdAddr, "dogstatsd-addr", "", "DogStatsD address, e.g. 127.0.0.1:8125")
	f.StringVar(&o.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	f.BoolVar(&o.logJSON, "log-json", false, "emit logs as JSON")

	return cmd
}

func run(cmd *cobra.Command, o *options, args []string) error {
	level := pickString(cmd, "log-level", "FIELDNORM_LOG_LEVEL", o.logLevel, "")
	logJSON, err := pickBool(cmd, "log-json", "FIELDNORM_LOG_JSON", o.logJSON, false)
	if err != nil {
		return err
	}
	log := logger.SetupLogger(level, logJSON, cmd.ErrOrStderr())

	job, err := buildJob(cmd, o, args)
	if err != nil {
		return err
	}

	issues := config.ValidateJob(job, storage.ListKinds())
	for _, iss := range issues {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		return errInvalidConfig
	}
	if o.validate {
		fmt.Fprintln(cmd.OutOrStdout(), "configuration is valid")
		return nil
	}

	flush := setupMetrics(job, log)
	defer flush()

	ctx := cmd.Context()
	ds, err := storage.New(ctx, storage.Config{
		Kind:    job.Dataset.Kind,
		DSN:     job.Dataset.DSN,
		Table:   job.Dataset.Table,
		Options: job.Dataset.Options,
	})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := ds.Close(); cerr != nil {
			log.Warn("close dataset", "err", cerr)
		}
	}()

	res, err := normalizer(ds, job, log).Run(ctx, request(job))
	if err != nil {
		if res != nil && len(res.Created) > 0 {
			log.Warn("fields created before the failure were kept", "fields", res.Created, "progress", res.Progress)
		}
		return err
	}

	out := cmd.OutOrStdout()
	if res.DryRun {
		for _, m := range res.Mappings {
			fmt.Fprintf(out, "%s -> %s\n", m.Source.Name, m.TargetName)
		}
	}
	log.Info("done", "run", res.RunID, "fields", len(res.Mappings), "elapsed", res.Elapsed)
	fmt.Fprintln(out, "finished")
	return nil
}

// request maps a validated job onto a normalizer request.
func request(job config.Job) normalize.Request {
	req := normalize.Request{
		Fields:      job.Fields,
		NormField:   job.NormField,
		Suffix:      job.Suffix,
		MaxAttempts: job.Naming.MaxAttempts,
		DryRun:      job.DryRun,
	}
	switch job.Naming.CaseInsensitive {
	case config.CaseTrue:
		v := true
		req.CaseInsensitive = &v
	case config.CaseFalse:
		v := false
		req.CaseInsensitive = &v
	}
	return req
}
