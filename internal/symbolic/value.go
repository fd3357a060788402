package symbolic

import (
	"encoding/json"
	"math"
	"strconv"
)

// Value is a scalar produced by evaluation: either a finite number or a
// symbolic residue such as "Infinity" or an unevaluated expression.
type Value struct {
	num      float64
	text     string
	symbolic bool
}

// Number wraps a float. Non-finite floats become symbolic values.
func Number(f float64) Value {
	switch {
	case math.IsNaN(f):
		return Symbolic("NaN")
	case math.IsInf(f, 1):
		return Symbolic("Infinity")
	case math.IsInf(f, -1):
		return Symbolic("-Infinity")
	}
	if f == 0 {
		f = 0 // normalize -0
	}
	return Value{num: f}
}

// Symbolic wraps a textual result that is not a plain number.
func Symbolic(s string) Value {
	return Value{text: s, symbolic: true}
}

// ParseValue reads back a value printed by String. Text that is not a
// plain number stays symbolic.
func ParseValue(s string) Value {
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return Number(f)
	}
	return Symbolic(s)
}

// IsNaN reports whether v came from an undefined real computation such
// as sqrt(-1) or 0/0.
func (v Value) IsNaN() bool { return v.symbolic && v.text == "NaN" }

// IsNumeric reports whether v holds a finite number.
func (v Value) IsNumeric() bool { return !v.symbolic }

// Float returns the numeric value, or NaN for symbolic values.
func (v Value) Float() float64 {
	if v.symbolic {
		return math.NaN()
	}
	return v.num
}

func (v Value) String() string {
	if v.symbolic {
		return v.text
	}
	return FormatNumber(v.num)
}

// MarshalJSON emits numbers as JSON numbers and symbolic values as strings.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.symbolic {
		return json.Marshal(v.text)
	}
	return []byte(FormatNumber(v.num)), nil
}

// UnmarshalJSON accepts either a JSON number or a string.
func (v *Value) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*v = Number(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*v = Symbolic(s)
	return nil
}

// MarshalYAML mirrors MarshalJSON for YAML encoders.
func (v Value) MarshalYAML() (any, error) {
	if v.symbolic {
		return v.text, nil
	}
	return v.num, nil
}

// FormatNumber renders a float the shortest way that round-trips, without
// an exponent for ordinary magnitudes.
func FormatNumber(f float64) string {
	a := math.Abs(f)
	if a == 0 || (a >= 1e-6 && a < 1e21) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
