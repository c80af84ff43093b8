package blocks

import (
	"encoding/json"
	"strconv"

	"github.com/rotisserie/eris"
)

// Kind discriminates the cell types a block table can hold.
type Kind int

const (
	KindNull Kind = iota
	KindText
	KindNumber
)

// Value is a single cell of the block table. The zero value is null.
type Value struct {
	Kind Kind
	Text string
	Num  float64
}

// Str returns a text cell.
func Str(s string) Value {
	return Value{Kind: KindText, Text: s}
}

// Num returns a numeric cell.
func Num(f float64) Value {
	return Value{Kind: KindNumber, Num: f}
}

// IsNull reports whether the cell holds no value.
func (v Value) IsNull() bool {
	return v.Kind == KindNull
}

// Float returns the numeric value; null cells count as zero.
func (v Value) Float() float64 {
	if v.Kind != KindNumber {
		return 0
	}
	return v.Num
}

// Label renders the cell as a group label. Null cells render empty;
// whole numbers render without a decimal point so ward numbers stored
// as DBF numerics group identically to their text form.
func (v Value) Label() string {
	switch v.Kind {
	case KindText:
		return v.Text
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	default:
		return ""
	}
}

// MarshalJSON encodes null as JSON null, text as a string, numbers as numbers.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindText:
		return json.Marshal(v.Text)
	case KindNumber:
		return json.Marshal(v.Num)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = Value{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = Str(s)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*v = Num(f)
		return nil
	}
	return eris.Errorf("blocks: cannot decode cell value %s", string(data))
}
