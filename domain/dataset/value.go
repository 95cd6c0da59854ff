package dataset

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Kind tags the scalar held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindText
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindText:
		return "text"
	case KindDate:
		return "date"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ISODate is the layout used when a date cell is rendered as text.
const ISODate = "2006-01-02"

// Value is a single cell. The zero Value is Null.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	t    time.Time
}

// NewNull creates a missing value
func NewNull() Value { return Value{} }

// NewBool creates a boolean value
func NewBool(b bool) Value { return Value{kind: KindBool, b: b} }

// NewInt creates an integer value
func NewInt(i int64) Value { return Value{kind: KindInt, i: i} }

// NewFloat creates a float value. NaN and infinities are stored as Null.
func NewFloat(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}
	}
	return Value{kind: KindFloat, f: f}
}

// NewText creates a text value; the empty string is Null.
func NewText(s string) Value {
	if s == "" {
		return Value{}
	}
	return Value{kind: KindText, s: s}
}

// NewDate creates a date value
func NewDate(t time.Time) Value { return Value{kind: KindDate, t: t} }

// Kind returns the tag of the value
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the cell is missing
func (v Value) IsNull() bool { return v.kind == KindNull }

// Bool returns the boolean payload
func (v Value) Bool() (bool, bool) { return v.b, v.kind == KindBool }

// Int returns the integer payload
func (v Value) Int() (int64, bool) { return v.i, v.kind == KindInt }

// Text returns the text payload
func (v Value) Text() (string, bool) { return v.s, v.kind == KindText }

// Date returns the date payload
func (v Value) Date() (time.Time, bool) { return v.t, v.kind == KindDate }

// Float returns the value as float64 for both Int and Float cells.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindFloat:
		return v.f, true
	case KindInt:
		return float64(v.i), true
	}
	return 0, false
}

// String renders the cell the way it would appear in a CSV file. Null renders as "".
func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case KindText:
		return v.s
	case KindDate:
		if v.t.Hour() == 0 && v.t.Minute() == 0 && v.t.Second() == 0 && v.t.Nanosecond() == 0 {
			return v.t.Format(ISODate)
		}
		return v.t.Format(time.RFC3339)
	}
	return ""
}

// MarshalJSON emits the native JSON scalar for the cell.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindBool:
		return json.Marshal(v.b)
	case KindInt:
		return json.Marshal(v.i)
	case KindFloat:
		return json.Marshal(v.f)
	case KindText, KindDate:
		return json.Marshal(v.String())
	}
	return []byte("null"), nil
}

// UnmarshalJSON restores a cell from its JSON scalar. Dates come back as Text and are
// re-coerced by the schema pass.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch x := raw.(type) {
	case nil:
		*v = NewNull()
	case bool:
		*v = NewBool(x)
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1<<53 {
			*v = NewInt(int64(x))
		} else {
			*v = NewFloat(x)
		}
	case string:
		*v = NewText(x)
	default:
		return fmt.Errorf("unsupported cell payload %T", raw)
	}
	return nil
}
