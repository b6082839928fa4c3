// Package normalize adds ratio fields to a dataset.
//
// A run follows a fixed protocol against the dataset platform:
//
//  1. snapshot the existing fields (one ListFields call)
//  2. check the requested fields against the snapshot
//  3. resolve a collision-free target name for every input field
//  4. add every target field as a double column
//  5. calculate every target field as source / reference, null when the
//     reference is zero or missing
//
// Steps 1 to 3 have no side effects. Every field is created before any
// calculation starts, and the first platform failure ends the run without
// rollback.
package normalize

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"fieldnorm/internal/calc"
	"fieldnorm/internal/ddl"
	"fieldnorm/internal/logger"
	"fieldnorm/internal/metrics"
	"fieldnorm/internal/naming"
	"fieldnorm/internal/progress"
	"fieldnorm/internal/schema"
)

// Dataset is the platform surface the normalizer needs. storage.Dataset
// satisfies it.
type Dataset interface {
	ListFields(ctx context.Context) ([]schema.FieldDescriptor, error)
	AddField(ctx context.Context, col ddl.ColumnDef) error
	CalculateField(ctx context.Context, target string, expr calc.Ratio) error
	CaseInsensitiveNames() bool
}

// Request describes one run.
type Request struct {
	// Fields are the input field names, in output order.
	Fields []string
	// NormField is the reference field.
	NormField string
	// Suffix is appended to each input name; empty selects naming.DefaultSuffix.
	Suffix string
	// MaxAttempts caps numbered name candidates; 0 selects the default.
	MaxAttempts int
	// CaseInsensitive overrides the dataset's own answer when non-nil.
	CaseInsensitive *bool
	// DryRun stops after name resolution.
	DryRun bool
}

// Result summarizes a run. On failure it reports how far the run got.
type Result struct {
	RunID      string
	Mappings   []schema.FieldMapping
	Created    []string
	Calculated []string
	DryRun     bool
	Elapsed    time.Duration
	// Progress is the completed share of weighted steps in [0, 100].
	Progress float64
}

// Normalizer runs requests against one dataset.
type Normalizer struct {
	ds        Dataset
	job       string
	log       logger.Logger
	observers []progress.Observer
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithJob sets the job name used for metrics labels.
func WithJob(job string) Option { return func(n *Normalizer) { n.job = job } }

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option { return func(n *Normalizer) { n.log = l } }

// WithProgress adds a progress observer.
func WithProgress(o progress.Observer) Option {
	return func(n *Normalizer) { n.observers = append(n.observers, o) }
}

// New returns a Normalizer for ds.
func New(ds Dataset, opts ...Option) *Normalizer {
	n := &Normalizer{ds: ds, job: "fieldnorm", log: logger.Default()}
	for _, o := range opts {
		o(n)
	}
	return n
}

// Run executes req. The returned Result is non-nil even when err is not.
func (n *Normalizer) Run(ctx context.Context, req Request) (res *Result, err error) {
	start := time.Now()
	res = &Result{RunID: uuid.NewString(), DryRun: req.DryRun}
	log := n.log.With("run", res.RunID)
	defer func() {
		res.Elapsed = time.Since(start)
		metrics.RecordRun(n.job, err)
	}()

	suffix := strings.TrimSpace(req.Suffix)
	if suffix == "" {
		suffix = naming.DefaultSuffix
	}

	existing, err := n.listFields(ctx)
	if err != nil {
		return res, err
	}

	fold := n.ds.CaseInsensitiveNames()
	if req.CaseInsensitive != nil {
		fold = *req.CaseInsensitive
	}

	inputs, norm, err := n.checkInputs(log, existing, req.Fields, req.NormField, fold)
	if err != nil {
		return res, err
	}

	res.Mappings, err = ResolveMappings(existing, inputs, suffix, req.MaxAttempts, fold)
	if err != nil {
		return res, err
	}
	metrics.RecordFields(n.job, "resolved", int64(len(res.Mappings)))
	for _, m := range res.Mappings {
		log.Info("resolved", "field", m.Source.Name, "target", m.TargetName)
	}
	if req.DryRun {
		log.Info("dry run; no fields created", "fields", len(res.Mappings))
		return res, nil
	}

	tracker := progress.ForFields(len(res.Mappings), n.observers...)
	defer func() { res.Progress = tracker.Percent() }()

	if err := n.addComputedFields(ctx, log, tracker, res); err != nil {
		return res, err
	}
	if err := n.computeValues(ctx, log, tracker, res, norm); err != nil {
		return res, err
	}
	return res, nil
}

func (n *Normalizer) listFields(ctx context.Context) ([]schema.FieldDescriptor, error) {
	t := time.Now()
	fields, err := n.ds.ListFields(ctx)
	metrics.RecordStep(n.job, "list_fields", err, time.Since(t))
	if err != nil {
		return nil, fmt.Errorf("list fields: %w", err)
	}
	return fields, nil
}

// checkInputs resolves requested names against the snapshot. Duplicate input
// names are collapsed; the first occurrence keeps its position.
func (n *Normalizer) checkInputs(
	log logger.Logger,
	existing []schema.FieldDescriptor,
	names []string,
	normName string,
	fold bool,
) ([]schema.FieldDescriptor, schema.FieldDescriptor, error) {
	norm, ok := lookup(existing, normName, fold)
	if !ok {
		return nil, norm, fieldErr(ErrFieldNotFound, "normalization", normName)
	}
	if !norm.Type.IsNumeric() {
		return nil, norm, fieldErr(ErrNotNumeric, "normalization", normName)
	}

	seen := naming.NewNameSet(nil, fold)
	inputs := make([]schema.FieldDescriptor, 0, len(names))
	for _, name := range names {
		fd, ok := lookup(existing, name, fold)
		if !ok {
			return nil, norm, fieldErr(ErrFieldNotFound, "input", name)
		}
		if !fd.Type.IsNumeric() {
			return nil, norm, fieldErr(ErrNotNumeric, "input", name)
		}
		if seen.Contains(fd.Name) {
			log.Warn("duplicate input field ignored", "field", name)
			continue
		}
		seen.Add(fd.Name)
		inputs = append(inputs, fd)
	}
	if len(inputs) == 0 {
		return nil, norm, ErrNoFields
	}
	return inputs, norm, nil
}

func lookup(fields []schema.FieldDescriptor, name string, fold bool) (schema.FieldDescriptor, bool) {
	if fd, ok := schema.Lookup(fields, name); ok {
		return fd, true
	}
	if !fold {
		return schema.FieldDescriptor{}, false
	}
	want := naming.NewNameSet([]string{name}, true)
	for _, f := range fields {
		if want.Contains(f.Name) {
			return f, true
		}
	}
	return schema.FieldDescriptor{}, false
}

// ResolveMappings pairs every input with a target name that is unique among
// existing fields and among the other targets. It has no side effects.
func ResolveMappings(
	existing []schema.FieldDescriptor,
	inputs []schema.FieldDescriptor,
	suffix string,
	maxAttempts int,
	caseInsensitive bool,
) ([]schema.FieldMapping, error) {
	r := naming.NewResolver(naming.NewNameSet(schema.Names(existing), caseInsensitive), maxAttempts)
	out := make([]schema.FieldMapping, 0, len(inputs))
	for _, in := range inputs {
		target, err := r.Resolve(in.Name, suffix)
		if err != nil {
			return nil, err
		}
		out = append(out, schema.FieldMapping{Source: in, TargetName: target})
	}
	return out, nil
}

func (n *Normalizer) addComputedFields(ctx context.Context, log logger.Logger, tracker *progress.Tracker, res *Result) error {
	for _, m := range res.Mappings {
		if err := ctx.Err(); err != nil {
			return err
		}
		status := fmt.Sprintf("Creating normalized field '%s'", m.TargetName)
		log.Info(status)
		tracker.SetLabel(status)

		// A ratio is never guaranteed to be integral, so the target is always
		// a double regardless of the source subtype.
		col := ddl.ColumnDef{
			Name:      m.TargetName,
			Type:      schema.Double,
			Precision: m.Source.Precision,
			Scale:     m.Source.Scale,
			Length:    m.Source.Length,
			Nullable:  true,
		}
		t := time.Now()
		err := n.ds.AddField(ctx, col)
		metrics.RecordStep(n.job, "add_field", err, time.Since(t))
		if err != nil {
			return &FieldError{Op: OpCreate, Field: m.TargetName, Err: err}
		}
		res.Created = append(res.Created, m.TargetName)
		metrics.RecordFields(n.job, "created", 1)
		tracker.Advance(progress.UnitsCreate)
	}
	return nil
}

func (n *Normalizer) computeValues(
	ctx context.Context,
	log logger.Logger,
	tracker *progress.Tracker,
	res *Result,
	norm schema.FieldDescriptor,
) error {
	for _, m := range res.Mappings {
		if err := ctx.Err(); err != nil {
			return err
		}
		status := fmt.Sprintf("Calculating field '%s'", m.TargetName)
		log.Info(status)
		tracker.SetLabel(status)

		expr := calc.Ratio{Numerator: m.Source.Name, Denominator: norm.Name}
		t := time.Now()
		err := n.ds.CalculateField(ctx, m.TargetName, expr)
		metrics.RecordStep(n.job, "calculate_field", err, time.Since(t))
		if err != nil {
			return &FieldError{Op: OpCalculate, Field: m.TargetName, Err: err}
		}
		res.Calculated = append(res.Calculated, m.TargetName)
		metrics.RecordFields(n.job, "calculated", 1)
		tracker.Advance(progress.UnitsCalculate)
	}
	return nil
}
