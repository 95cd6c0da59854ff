package schema

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"datasense/domain/dataset"
)

// dateLayouts are tried in order when a cell is read as a date
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"2006/1/2",
	"01/02/2006",
	"1/2/2006",
	"01/02/2006 15:04",
	"1/2/2006 15:04",
	"01/02/06",
	"1/2/06",
	"1/2/06 15:04",
	"01-02-06",
	"02-Jan-2006",
	"2-Jan-2006",
	"2006-01",
}

var thousandsPattern = regexp.MustCompile(`^[-+]?\d{1,3}(,\d{3})+(\.\d+)?$`)

var (
	truthy = map[string]bool{"true": true, "1": true, "yes": true, "y": true}
	falsy  = map[string]bool{"false": true, "0": true, "no": true, "n": true}
)

// IsBooleanLiteral reports whether s is one of the accepted boolean spellings
func IsBooleanLiteral(s string) bool {
	lower := strings.ToLower(strings.TrimSpace(s))
	return truthy[lower] || falsy[lower]
}

// ParseBool reads a boolean literal. ok is false for anything outside the accepted spellings.
func ParseBool(s string) (value bool, ok bool) {
	lower := strings.ToLower(strings.TrimSpace(s))
	if truthy[lower] {
		return true, true
	}
	if falsy[lower] {
		return false, true
	}
	return false, false
}

// ParseNumber reads a finite number. Currency symbols, a trailing percent sign,
// accounting-style parentheses and comma thousands separators are accepted.
func ParseNumber(s string) (float64, bool) {
	clean := strings.TrimSpace(s)
	if clean == "" {
		return 0, false
	}

	negative := false
	if strings.HasPrefix(clean, "(") && strings.HasSuffix(clean, ")") {
		clean = strings.TrimSuffix(strings.TrimPrefix(clean, "("), ")")
		negative = true
	}

	for _, symbol := range []string{"$", "€", "£", "¥"} {
		clean = strings.TrimPrefix(clean, symbol)
	}
	clean = strings.TrimSuffix(strings.TrimSpace(clean), "%")

	if strings.Contains(clean, ",") {
		if !thousandsPattern.MatchString(clean) {
			return 0, false
		}
		clean = strings.ReplaceAll(clean, ",", "")
	}

	// ParseFloat also accepts "Inf", "NaN" and hex floats, none of which are data
	lower := strings.ToLower(clean)
	if strings.Contains(lower, "inf") || strings.Contains(lower, "nan") || strings.Contains(lower, "0x") || strings.Contains(clean, "_") {
		return 0, false
	}

	v, err := strconv.ParseFloat(clean, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	if negative {
		v = -v
	}
	return v, true
}

// hasFraction reports whether a numeric literal carries a non-zero fractional part
func hasFraction(s string, v float64) bool {
	if v != math.Trunc(v) {
		return true
	}
	idx := strings.Index(s, ".")
	if idx < 0 {
		return false
	}
	for _, r := range s[idx+1:] {
		if r >= '1' && r <= '9' {
			return true
		}
		if r < '0' || r > '9' {
			break
		}
	}
	return false
}

// ParseDate reads a calendar date. Only text containing '-' or '/' is considered so bare
// numbers never turn into timestamps.
func ParseDate(s string) (time.Time, bool) {
	clean := strings.TrimSpace(s)
	if clean == "" || !strings.ContainsAny(clean, "-/") {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, clean); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// cellText is the trimmed textual form of a cell used for sampling
func cellText(v dataset.Value) string {
	return strings.TrimSpace(v.String())
}

// NumberOf reads a cell as a number. Native numeric cells pass through; text is parsed.
func NumberOf(v dataset.Value) (float64, bool) {
	switch v.Kind() {
	case dataset.KindInt, dataset.KindFloat:
		return v.Float()
	case dataset.KindText:
		return ParseNumber(cellText(v))
	}
	return 0, false
}

// DateOf reads a cell as a date
func DateOf(v dataset.Value) (time.Time, bool) {
	switch v.Kind() {
	case dataset.KindDate:
		return v.Date()
	case dataset.KindText:
		return ParseDate(cellText(v))
	}
	return time.Time{}, false
}

// BoolOf reads a cell as a boolean. Numbers map 1 to true and 0 to false.
func BoolOf(v dataset.Value) (bool, bool) {
	switch v.Kind() {
	case dataset.KindBool:
		return v.Bool()
	case dataset.KindInt, dataset.KindFloat:
		f, _ := v.Float()
		switch f {
		case 1:
			return true, true
		case 0:
			return false, true
		}
	case dataset.KindText:
		return ParseBool(cellText(v))
	}
	return false, false
}

// TextOf reads a cell as a string. Null and whitespace-only cells are missing.
func TextOf(v dataset.Value) (string, bool) {
	if v.IsNull() {
		return "", false
	}
	s := v.String()
	if strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}

// Coerce converts a cell to the representation of the given column type. Cells that cannot
// be read as that type become Null.
func Coerce(v dataset.Value, t dataset.ColumnType) dataset.Value {
	if v.IsNull() {
		return v
	}
	switch t {
	case dataset.TypeInteger:
		f, ok := NumberOf(v)
		if !ok {
			return dataset.NewNull()
		}
		if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return dataset.NewInt(int64(f))
		}
		// past the inference sample; keep the magnitude rather than truncate it
		return dataset.NewFloat(f)
	case dataset.TypeFloat:
		f, ok := NumberOf(v)
		if !ok {
			return dataset.NewNull()
		}
		return dataset.NewFloat(f)
	case dataset.TypeBoolean:
		b, ok := BoolOf(v)
		if !ok {
			return dataset.NewNull()
		}
		return dataset.NewBool(b)
	case dataset.TypeDate:
		d, ok := DateOf(v)
		if !ok {
			return dataset.NewNull()
		}
		return dataset.NewDate(d)
	default:
		s, ok := TextOf(v)
		if !ok {
			return dataset.NewNull()
		}
		return dataset.NewText(s)
	}
}
