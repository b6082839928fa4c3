// Package csvfile implements storage.Dataset over a delimited text file. The
// DSN is the file path; the first record is the header.
//
// The file is read once at open and held in memory. Every mutation rewrites
// the whole file atomically (temp file + rename). Before each write the file
// on disk is hashed with xxh3 and compared to the hash of the content this
// dataset last read or wrote; a mismatch fails with ErrModified instead of
// overwriting someone else's change.
package csvfile

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/zeebo/xxh3"

	"fieldnorm/internal/calc"
	"fieldnorm/internal/datasource"
	"fieldnorm/internal/datasource/file"
	"fieldnorm/internal/ddl"
	"fieldnorm/internal/schema"
)

// Kind is the storage kind this package registers.
const Kind = "csv"

// DefaultInferRows is how many records type inference looks at.
const DefaultInferRows = 1000

// ErrModified reports that the file changed on disk after it was read.
var ErrModified = errors.New("csv: file was modified by another writer")

const utf8BOM = "\uFEFF"

// Config holds CSV dataset configuration.
type Config struct {
	Path      string
	Comma     rune // field delimiter; 0 selects ','
	InferRows int  // records sampled for type inference; 0 selects DefaultInferRows
}

// Dataset is a CSV file held in memory.
type Dataset struct {
	src   datasource.File
	comma rune
	bom   bool

	header  []string
	types   []schema.FieldType
	records [][]string

	sum uint64 // xxh3 of the bytes last read or written
}

// Open reads and parses the file at cfg.Path.
func Open(ctx context.Context, cfg Config) (*Dataset, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, fmt.Errorf("csv: path must not be empty")
	}
	ds := &Dataset{src: file.NewLocal(cfg.Path), comma: cfg.Comma}
	if ds.comma == 0 {
		ds.comma = ','
	}

	data, err := ds.read(ctx)
	if err != nil {
		return nil, err
	}
	ds.sum = xxh3.Hash(data)

	if strings.HasPrefix(string(data), utf8BOM) {
		ds.bom = true
		data = data[len(utf8BOM):]
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = ds.comma
	r.FieldsPerRecord = 0
	all, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv: parse %s: %w", cfg.Path, err)
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("csv: %s has no header", cfg.Path)
	}

	ds.header = all[0]
	ds.records = all[1:]
	limit := cfg.InferRows
	if limit == 0 {
		limit = DefaultInferRows
	}
	ds.types = inferTypes(len(ds.header), ds.records, limit)
	return ds, nil
}

// ListFields returns the header with inferred types. Every CSV cell may be
// blank, so all fields are nullable.
func (ds *Dataset) ListFields(ctx context.Context) ([]schema.FieldDescriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]schema.FieldDescriptor, len(ds.header))
	for i, h := range ds.header {
		out[i] = schema.FieldDescriptor{Name: h, Type: ds.types[i], Nullable: true}
	}
	return out, nil
}

// AddField appends an empty column and rewrites the file.
func (ds *Dataset) AddField(ctx context.Context, col ddl.ColumnDef) error {
	name := col.Name
	if err := ddl.CheckColumnName(name); err != nil {
		return fmt.Errorf("csv: %w", err)
	}
	if ds.index(name) >= 0 {
		return fmt.Errorf("csv: column %q already exists", name)
	}

	header := append(append([]string(nil), ds.header...), name)
	records := make([][]string, len(ds.records))
	for i, rec := range ds.records {
		records[i] = append(append(make([]string, 0, len(rec)+1), rec...), "")
	}
	if err := ds.persist(ctx, header, records); err != nil {
		return err
	}
	ds.header = header
	ds.records = records
	ds.types = append(ds.types, col.Type)
	return nil
}

// CalculateField evaluates expr for every record into target and rewrites
// the file. A non-numeric operand fails the whole call before anything is
// written.
func (ds *Dataset) CalculateField(ctx context.Context, target string, expr calc.Ratio) error {
	ti, ni, di := ds.index(target), ds.index(expr.Numerator), ds.index(expr.Denominator)
	switch {
	case ti < 0:
		return fmt.Errorf("csv: no column %q", target)
	case ni < 0:
		return fmt.Errorf("csv: no column %q", expr.Numerator)
	case di < 0:
		return fmt.Errorf("csv: no column %q", expr.Denominator)
	}

	values := make([]string, len(ds.records))
	for i, rec := range ds.records {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		num, err := calc.ParseOperand(cell(rec, ni))
		if err != nil {
			return fmt.Errorf("csv: line %d: %w", i+2, err)
		}
		den, err := calc.ParseOperand(cell(rec, di))
		if err != nil {
			return fmt.Errorf("csv: line %d: %w", i+2, err)
		}
		values[i] = calc.FormatValue(expr.Eval(num, den))
	}

	records := make([][]string, len(ds.records))
	for i, rec := range ds.records {
		row := append([]string(nil), rec...)
		for len(row) <= ti {
			row = append(row, "")
		}
		row[ti] = values[i]
		records[i] = row
	}
	if err := ds.persist(ctx, ds.header, records); err != nil {
		return err
	}
	ds.records = records
	return nil
}

// CaseInsensitiveNames is false: header cells are matched exactly.
func (ds *Dataset) CaseInsensitiveNames() bool { return false }

// Close releases nothing; every mutation is already on disk.
func (ds *Dataset) Close() error { return nil }

func (ds *Dataset) index(name string) int {
	for i, h := range ds.header {
		if h == name {
			return i
		}
	}
	return -1
}

func cell(rec []string, i int) string {
	if i < len(rec) {
		return rec[i]
	}
	return ""
}

func (ds *Dataset) read(ctx context.Context) ([]byte, error) {
	rc, err := ds.src.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("csv: %w", err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("csv: read: %w", err)
	}
	return data, nil
}

// persist encodes header and records, checks the file is unchanged since the
// last read or write, and replaces it.
func (ds *Dataset) persist(ctx context.Context, header []string, records [][]string) error {
	var buf bytes.Buffer
	if ds.bom {
		buf.WriteString(utf8BOM)
	}
	w := csv.NewWriter(&buf)
	w.Comma = ds.comma
	if err := w.Write(header); err != nil {
		return fmt.Errorf("csv: encode header: %w", err)
	}
	if err := w.WriteAll(records); err != nil {
		return fmt.Errorf("csv: encode records: %w", err)
	}

	current, err := ds.read(ctx)
	if err != nil {
		return err
	}
	if xxh3.Hash(current) != ds.sum {
		return ErrModified
	}

	data := buf.Bytes()
	if err := ds.src.Replace(ctx, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	}); err != nil {
		return fmt.Errorf("csv: %w", err)
	}
	ds.sum = xxh3.Hash(data)
	return nil
}
