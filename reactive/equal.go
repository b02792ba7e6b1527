package reactive

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// StrictEqual is the change test used by Object.Set. Numbers of any Go
// kind compare by value, composites by identity, nil only equals nil.
func StrictEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if x, ok := asNumber(a); ok {
		y, ok := asNumber(b)
		return ok && x == y
	}
	switch x := a.(type) {
	case string:
		y, ok := b.(string)
		return ok && x == y
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	case *Object:
		y, ok := b.(*Object)
		return ok && x == y
	}
	return sameReference(a, b)
}

// LooseEqual is the change test used by Binding. Strings compared with
// numbers are converted to numbers first and booleans count as 0 or 1,
// so "0" and 0 are equal while "0" and 1 are not.
func LooseEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if ab, ok := a.(bool); ok {
		if _, ok := b.(bool); !ok {
			return LooseEqual(boolNumber(ab), b)
		}
	}
	if bb, ok := b.(bool); ok {
		if _, ok := a.(bool); !ok {
			return LooseEqual(a, boolNumber(bb))
		}
	}

	x, xNum := asNumber(a)
	y, yNum := asNumber(b)
	switch {
	case xNum && yNum:
		return x == y
	case xNum:
		if s, ok := b.(string); ok {
			return x == ToNumber(s)
		}
		return false
	case yNum:
		if s, ok := a.(string); ok {
			return ToNumber(s) == y
		}
		return false
	}
	return StrictEqual(a, b)
}

// ToNumber converts a string the way a numeric coercion would: surrounding
// whitespace is ignored, the empty string is 0 and anything unparsable is NaN.
func ToNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			n, err := strconv.ParseUint(s[2:], base, 64)
			if err != nil {
				return math.NaN()
			}
			return float64(n)
		}
	}
	lower := strings.ToLower(strings.TrimLeft(s, "+-"))
	if strings.HasPrefix(lower, "inf") || strings.HasPrefix(lower, "nan") || strings.Contains(s, "_") {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// Format renders a value as display text. nil renders as the empty string.
func Format(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case *Object:
		return "[object Object]"
	case []any:
		parts := make([]string, len(x))
		for i, el := range x {
			parts[i] = Format(el)
		}
		return strings.Join(parts, ",")
	}
	if f, ok := asNumber(v); ok {
		return formatNumber(f)
	}
	return fmt.Sprint(v)
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	abs := math.Abs(f)
	if abs != 0 && (abs >= 1e21 || abs < 1e-6) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func boolNumber(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func asNumber(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case float64:
		return x, true
	case int8, int16, int32, uint, uint8, uint16, uint32, uint64, uintptr, float32:
		rv := reflect.ValueOf(x)
		switch {
		case rv.CanInt():
			return float64(rv.Int()), true
		case rv.CanUint():
			return float64(rv.Uint()), true
		default:
			return rv.Float(), true
		}
	}
	return 0, false
}

func sameReference(a, b any) bool {
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if ra.Type() != rb.Type() {
		return false
	}
	switch ra.Kind() {
	case reflect.Map, reflect.Pointer, reflect.Chan, reflect.UnsafePointer:
		return ra.Pointer() == rb.Pointer()
	case reflect.Slice:
		return ra.Pointer() == rb.Pointer() && ra.Len() == rb.Len()
	case reflect.Func:
		return false
	}
	if ra.Type().Comparable() {
		return a == b
	}
	return false
}
