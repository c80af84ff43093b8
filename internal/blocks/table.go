// Package blocks models the block-level population table the analysis
// session operates on: census blocks carrying population estimates,
// housing-unit deltas, and ward / neighborhood-council labels.
package blocks

import "github.com/rotisserie/eris"

// Row maps field names to cell values. Fields absent from a row are null.
type Row map[string]Value

// Table is the block population table. Field order is preserved so
// exports round-trip with the schema the source carried. The table is
// treated as read-only by the analysis core; only the preprocessing
// helpers in this package mutate it, strictly before analysis runs.
type Table struct {
	Fields []string
	Rows   []Row

	fieldSet map[string]struct{}
}

// New returns an empty table with the given schema.
func New(fields ...string) *Table {
	t := &Table{fieldSet: make(map[string]struct{}, len(fields))}
	for _, f := range fields {
		t.AddField(f)
	}
	return t
}

// HasField reports whether the schema contains name.
func (t *Table) HasField(name string) bool {
	if t.fieldSet == nil {
		t.reindex()
	}
	_, ok := t.fieldSet[name]
	return ok
}

// AddField appends name to the schema if not already present.
func (t *Table) AddField(name string) {
	if t.HasField(name) {
		return
	}
	t.Fields = append(t.Fields, name)
	t.fieldSet[name] = struct{}{}
}

// Append adds a row. Rows may be sparse; missing fields read as null.
func (t *Table) Append(r Row) {
	t.Rows = append(t.Rows, r)
}

// Len returns the row count.
func (t *Table) Len() int {
	return len(t.Rows)
}

// SumField totals a numeric field across every row, nulls counting as
// zero. Unlike the ward aggregates this includes rows with no ward
// label, so it is the figure that still counts de-annexed blocks.
func (t *Table) SumField(name string) (float64, error) {
	if !t.HasField(name) {
		return 0, eris.Errorf("blocks: field %q not in table schema", name)
	}
	var sum float64
	for _, r := range t.Rows {
		sum += r[name].Float()
	}
	return sum, nil
}

// FieldsMatching returns schema fields matched by the pattern, in
// schema order.
func (t *Table) FieldsMatching(match func(string) bool) []string {
	var out []string
	for _, f := range t.Fields {
		if match(f) {
			out = append(out, f)
		}
	}
	return out
}

func (t *Table) reindex() {
	t.fieldSet = make(map[string]struct{}, len(t.Fields))
	for _, f := range t.Fields {
		t.fieldSet[f] = struct{}{}
	}
}
