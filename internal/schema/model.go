// Package schema holds the field metadata model shared by the normalizer and
// the storage backends. Values are read-only snapshots of a dataset's schema
// taken at the start of a run.
package schema

// FieldType is the logical type of a dataset field, independent of the
// backend's SQL spelling.
type FieldType int

const (
	Unknown FieldType = iota
	SmallInteger
	Integer
	BigInteger
	Single
	Double
	Decimal
	Text
	Date
	Boolean
	Blob
	OID
)

var typeNames = map[FieldType]string{
	Unknown:      "unknown",
	SmallInteger: "smallinteger",
	Integer:      "integer",
	BigInteger:   "biginteger",
	Single:       "single",
	Double:       "double",
	Decimal:      "decimal",
	Text:         "text",
	Date:         "date",
	Boolean:      "boolean",
	Blob:         "blob",
	OID:          "oid",
}

func (t FieldType) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return "unknown"
}

// IsNumeric reports whether values of this type can take part in a division.
// Unknown is treated as possibly numeric; the backend has the final word when
// the calculation runs.
func (t FieldType) IsNumeric() bool {
	switch t {
	case SmallInteger, Integer, BigInteger, Single, Double, Decimal, Unknown:
		return true
	}
	return false
}

// FieldDescriptor describes one existing field of a dataset.
type FieldDescriptor struct {
	Name      string
	Type      FieldType
	Precision int
	Scale     int
	Length    int
	Nullable  bool
}

// FieldMapping pairs an input field with its resolved, collision-free output
// name. Mappings live for the duration of a single run.
type FieldMapping struct {
	Source     FieldDescriptor
	TargetName string
}

// Names returns the names of fields in order.
func Names(fields []FieldDescriptor) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Name
	}
	return out
}

// Lookup returns the descriptor with the exact given name.
func Lookup(fields []FieldDescriptor, name string) (FieldDescriptor, bool) {
	for _, f := range fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDescriptor{}, false
}
