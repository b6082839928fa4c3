package normalize

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldnorm/internal/calc"
	"fieldnorm/internal/ddl"
	"fieldnorm/internal/logger"
	"fieldnorm/internal/naming"
	"fieldnorm/internal/schema"
)

// memDataset is an in-memory platform that records the sequence of calls
// and evaluates ratios over its rows.
type memDataset struct {
	fields   []schema.FieldDescriptor
	rows     []map[string]*float64
	fold     bool
	calls    []string
	added    []ddl.ColumnDef
	listErr  error
	failAdd  map[string]error
	failCalc map[string]error
}

func (m *memDataset) ListFields(context.Context) ([]schema.FieldDescriptor, error) {
	m.calls = append(m.calls, "list")
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]schema.FieldDescriptor(nil), m.fields...), nil
}

func (m *memDataset) AddField(_ context.Context, col ddl.ColumnDef) error {
	m.calls = append(m.calls, "add:"+col.Name)
	if err := m.failAdd[col.Name]; err != nil {
		return err
	}
	m.added = append(m.added, col)
	m.fields = append(m.fields, schema.FieldDescriptor{Name: col.Name, Type: col.Type, Nullable: true})
	return nil
}

func (m *memDataset) CalculateField(_ context.Context, target string, expr calc.Ratio) error {
	m.calls = append(m.calls, "calc:"+target)
	if err := m.failCalc[target]; err != nil {
		return err
	}
	if _, ok := schema.Lookup(m.fields, target); !ok {
		return fmt.Errorf("no such field %s", target)
	}
	for _, row := range m.rows {
		row[target] = expr.Eval(row[expr.Numerator], row[expr.Denominator])
	}
	return nil
}

func (m *memDataset) CaseInsensitiveNames() bool { return m.fold }

func fp(v float64) *float64 { return &v }

func fields(names ...string) []schema.FieldDescriptor {
	out := make([]schema.FieldDescriptor, len(names))
	for i, n := range names {
		out[i] = schema.FieldDescriptor{Name: n, Type: schema.Integer, Precision: 10}
	}
	return out
}

func newNormalizer(ds Dataset) *Normalizer {
	return New(ds, WithLogger(logger.Discard()), WithJob("test"))
}

func TestRun_CollisionScenario(t *testing.T) {
	t.Parallel()

	ds := &memDataset{fields: fields("POP2020", "AREA", "POP2020_norm")}
	res, err := newNormalizer(ds).Run(context.Background(), Request{
		Fields:    []string{"POP2020"},
		NormField: "AREA",
		Suffix:    "_norm",
	})
	require.NoError(t, err)
	require.Len(t, res.Mappings, 1)
	assert.Equal(t, "POP2020_norm1", res.Mappings[0].TargetName)
	assert.Equal(t, []string{"POP2020_norm1"}, res.Created)
	assert.Equal(t, []string{"POP2020_norm1"}, res.Calculated)
	assert.NotEmpty(t, res.RunID)
}

func TestRun_ValuesScenario(t *testing.T) {
	t.Parallel()

	ds := &memDataset{
		fields: fields("POP2020", "AREA"),
		rows: []map[string]*float64{
			{"POP2020": fp(50), "AREA": fp(0)},
			{"POP2020": fp(50), "AREA": fp(10)},
			{"POP2020": fp(-7), "AREA": fp(2)},
			{"POP2020": nil, "AREA": fp(2)},
		},
	}
	_, err := newNormalizer(ds).Run(context.Background(), Request{
		Fields:    []string{"POP2020"},
		NormField: "AREA",
	})
	require.NoError(t, err)

	assert.Nil(t, ds.rows[0]["POP2020_norm"])
	require.NotNil(t, ds.rows[1]["POP2020_norm"])
	assert.Equal(t, 5.0, *ds.rows[1]["POP2020_norm"])
	assert.Equal(t, -3.5, *ds.rows[2]["POP2020_norm"])
	assert.Nil(t, ds.rows[3]["POP2020_norm"])
}

func TestRun_OutputAlwaysDouble(t *testing.T) {
	t.Parallel()

	ds := &memDataset{fields: []schema.FieldDescriptor{
		{Name: "S", Type: schema.SmallInteger, Precision: 5},
		{Name: "L", Type: schema.Integer, Precision: 10},
		{Name: "F", Type: schema.Single, Precision: 7, Scale: 2},
		{Name: "AREA", Type: schema.Double},
	}}
	_, err := newNormalizer(ds).Run(context.Background(), Request{
		Fields:    []string{"S", "L", "F"},
		NormField: "AREA",
	})
	require.NoError(t, err)
	require.Len(t, ds.added, 3)
	for _, col := range ds.added {
		assert.Equal(t, schema.Double, col.Type, col.Name)
		assert.True(t, col.Nullable)
	}
	assert.Equal(t, 7, ds.added[2].Precision)
	assert.Equal(t, 2, ds.added[2].Scale)
}

func TestRun_AllCreatesBeforeCalculations(t *testing.T) {
	t.Parallel()

	ds := &memDataset{fields: fields("A", "B", "C", "N")}
	_, err := newNormalizer(ds).Run(context.Background(), Request{
		Fields:    []string{"A", "B", "C"},
		NormField: "N",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"list",
		"add:A_norm", "add:B_norm", "add:C_norm",
		"calc:A_norm", "calc:B_norm", "calc:C_norm",
	}, ds.calls)
}

func TestRun_CreateFailureAborts(t *testing.T) {
	t.Parallel()

	platformErr := errors.New("ERROR 000012: field type not supported")
	ds := &memDataset{
		fields:  fields("POP2020", "AREA"),
		failAdd: map[string]error{"POP2020_norm": platformErr},
	}
	res, err := newNormalizer(ds).Run(context.Background(), Request{
		Fields:    []string{"POP2020"},
		NormField: "AREA",
	})
	require.Error(t, err)

	var fe *FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, OpCreate, fe.Op)
	assert.Equal(t, "POP2020_norm", fe.Field)
	assert.ErrorIs(t, err, platformErr)
	assert.Contains(t, err.Error(), "POP2020_norm")
	assert.Contains(t, err.Error(), "field type not supported")

	for _, c := range ds.calls {
		assert.NotContains(t, c, "calc:", "no calculation may be issued after a failed creation")
	}
	assert.Empty(t, res.Created)
}

func TestRun_CreateFailureMidwayKeepsEarlierFields(t *testing.T) {
	t.Parallel()

	ds := &memDataset{
		fields:  fields("A", "B", "C", "N"),
		failAdd: map[string]error{"B_norm": errors.New("permission denied")},
	}
	res, err := newNormalizer(ds).Run(context.Background(), Request{
		Fields:    []string{"A", "B", "C"},
		NormField: "N",
	})
	require.Error(t, err)
	assert.Equal(t, []string{"A_norm"}, res.Created)
	assert.Equal(t, []string{"list", "add:A_norm", "add:B_norm"}, ds.calls)
}

func TestRun_CalculationFailureAborts(t *testing.T) {
	t.Parallel()

	ds := &memDataset{
		fields:   fields("A", "B", "N"),
		failCalc: map[string]error{"A_norm": errors.New("syntax error")},
	}
	res, err := newNormalizer(ds).Run(context.Background(), Request{
		Fields:    []string{"A", "B"},
		NormField: "N",
	})
	var fe *FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, OpCalculate, fe.Op)
	assert.Equal(t, "A_norm", fe.Field)
	assert.Equal(t, "error calculating field 'A_norm': syntax error", err.Error())
	assert.Equal(t, []string{"A_norm", "B_norm"}, res.Created)
	assert.Empty(t, res.Calculated)
	assert.Equal(t, "calc:A_norm", ds.calls[len(ds.calls)-1])
}

func TestRun_NameExhaustionBeforeAnyMutation(t *testing.T) {
	t.Parallel()

	names := []string{"X", "N", "X_norm"}
	for i := 1; i <= naming.DefaultMaxAttempts; i++ {
		names = append(names, fmt.Sprintf("X_norm%d", i))
	}
	ds := &memDataset{fields: fields(names...)}
	_, err := newNormalizer(ds).Run(context.Background(), Request{
		Fields:    []string{"X"},
		NormField: "N",
	})

	var ex *naming.ExhaustedError
	require.ErrorAs(t, err, &ex)
	assert.Equal(t, "X", ex.Field)
	assert.Equal(t, []string{"list"}, ds.calls)
}

func TestRun_ConfigurableMaxAttempts(t *testing.T) {
	t.Parallel()

	ds := &memDataset{fields: fields("X", "N", "X_norm", "X_norm1")}
	_, err := newNormalizer(ds).Run(context.Background(), Request{
		Fields:      []string{"X"},
		NormField:   "N",
		MaxAttempts: 1,
	})
	var ex *naming.ExhaustedError
	require.ErrorAs(t, err, &ex)
	assert.Equal(t, 1, ex.Attempts)
}

func TestRun_InputChecks(t *testing.T) {
	t.Parallel()

	base := []schema.FieldDescriptor{
		{Name: "POP", Type: schema.Integer},
		{Name: "NAME", Type: schema.Text},
		{Name: "AREA", Type: schema.Double},
	}

	tests := []struct {
		name   string
		req    Request
		target error
		msg    string
	}{
		{"missing input", Request{Fields: []string{"NOPE"}, NormField: "AREA"}, ErrFieldNotFound, `input field "NOPE"`},
		{"missing reference", Request{Fields: []string{"POP"}, NormField: "NOPE"}, ErrFieldNotFound, `normalization field "NOPE"`},
		{"text input", Request{Fields: []string{"NAME"}, NormField: "AREA"}, ErrNotNumeric, `input field "NAME"`},
		{"text reference", Request{Fields: []string{"POP"}, NormField: "NAME"}, ErrNotNumeric, `normalization field "NAME"`},
		{"no inputs", Request{NormField: "AREA"}, ErrNoFields, "no input fields"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ds := &memDataset{fields: base}
			_, err := newNormalizer(ds).Run(context.Background(), tt.req)
			require.ErrorIs(t, err, tt.target)
			assert.Contains(t, err.Error(), tt.msg)
			assert.Equal(t, []string{"list"}, ds.calls)
		})
	}
}

func TestRun_DuplicateInputsCollapsed(t *testing.T) {
	t.Parallel()

	ds := &memDataset{fields: fields("A", "N")}
	res, err := newNormalizer(ds).Run(context.Background(), Request{
		Fields:    []string{"A", "A"},
		NormField: "N",
	})
	require.NoError(t, err)
	require.Len(t, res.Mappings, 1)
	assert.Equal(t, []string{"list", "add:A_norm", "calc:A_norm"}, ds.calls)
}

func TestRun_CaseInsensitiveDataset(t *testing.T) {
	t.Parallel()

	ds := &memDataset{fields: fields("POP2020", "AREA", "pop2020_NORM"), fold: true}
	res, err := newNormalizer(ds).Run(context.Background(), Request{
		Fields:    []string{"pop2020"},
		NormField: "area",
	})
	require.NoError(t, err)
	require.Len(t, res.Mappings, 1)
	assert.Equal(t, "POP2020", res.Mappings[0].Source.Name)
	assert.Equal(t, "POP2020_norm1", res.Mappings[0].TargetName)

	off := false
	ds = &memDataset{fields: fields("POP2020", "AREA", "pop2020_NORM"), fold: true}
	res, err = newNormalizer(ds).Run(context.Background(), Request{
		Fields:          []string{"POP2020"},
		NormField:       "AREA",
		CaseInsensitive: &off,
	})
	require.NoError(t, err)
	assert.Equal(t, "POP2020_norm", res.Mappings[0].TargetName)
}

func TestRun_DryRunDoesNotMutate(t *testing.T) {
	t.Parallel()

	ds := &memDataset{fields: fields("A", "B", "N", "A_norm")}
	res, err := newNormalizer(ds).Run(context.Background(), Request{
		Fields:    []string{"A", "B"},
		NormField: "N",
		DryRun:    true,
	})
	require.NoError(t, err)
	assert.True(t, res.DryRun)
	assert.Equal(t, "A_norm1", res.Mappings[0].TargetName)
	assert.Equal(t, "B_norm", res.Mappings[1].TargetName)
	assert.Equal(t, []string{"list"}, ds.calls)
}

func TestRun_ListFailure(t *testing.T) {
	t.Parallel()

	ds := &memDataset{listErr: errors.New("no such table")}
	_, err := newNormalizer(ds).Run(context.Background(), Request{Fields: []string{"A"}, NormField: "N"})
	assert.ErrorContains(t, err, "list fields: no such table")
}

func TestRun_CanceledContextStopsBeforeMutation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ds := &memDataset{fields: fields("A", "N")}
	_, err := newNormalizer(ds).Run(ctx, Request{Fields: []string{"A"}, NormField: "N"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"list"}, ds.calls)
}

func TestRun_ProgressReachesMax(t *testing.T) {
	t.Parallel()

	var labels []string
	var last, maxPos int
	ds := &memDataset{fields: fields("A", "B", "N")}
	n := New(ds, WithLogger(logger.Discard()), WithProgress(func(label string, pos, m int) {
		labels = append(labels, label)
		last, maxPos = pos, m
	}))
	_, err := n.Run(context.Background(), Request{Fields: []string{"A", "B"}, NormField: "N"})
	require.NoError(t, err)

	assert.Equal(t, 12, maxPos)
	assert.Equal(t, 12, last)
	assert.Contains(t, labels, "Creating normalized field 'A_norm'")
	assert.Contains(t, labels, "Calculating field 'B_norm'")
}

func TestResolveMappings_UniqueAcrossInputs(t *testing.T) {
	t.Parallel()

	existing := fields("A", "A_x", "A_x1", "B", "B_x")
	inputs := fields("A", "B")
	got, err := ResolveMappings(existing, inputs, "_x", 0, false)
	require.NoError(t, err)

	taken := map[string]bool{}
	for _, f := range existing {
		taken[f.Name] = true
	}
	for _, m := range got {
		assert.False(t, taken[m.TargetName], m.TargetName)
		taken[m.TargetName] = true
	}
	assert.Equal(t, "A_x2", got[0].TargetName)
	assert.Equal(t, "B_x1", got[1].TargetName)
}

func TestRun_SuffixWhitespaceTrimmedBeforeResolution(t *testing.T) {
	t.Parallel()

	ds := &memDataset{fields: fields("A", "A_n", "N")}
	res, err := newNormalizer(ds).Run(context.Background(), Request{Fields: []string{"A"}, NormField: "N", Suffix: " _n "})
	require.NoError(t, err)

	require.Len(t, res.Mappings, 1)
	assert.Equal(t, "A_n1", res.Mappings[0].TargetName)
	assert.Equal(t, []string{"list", "add:A_n1", "calc:A_n1"}, ds.calls)
	assert.Equal(t, float64(100), res.Progress)
}

func TestRun_ProgressReportedOnFailure(t *testing.T) {
	t.Parallel()

	ds := &memDataset{
		fields:   fields("A", "N"),
		failCalc: map[string]error{"A_norm": errors.New("locked")},
	}
	res, err := newNormalizer(ds).Run(context.Background(), Request{Fields: []string{"A"}, NormField: "N"})
	require.Error(t, err)
	assert.InDelta(t, 100.0/6, res.Progress, 1e-9)
}
