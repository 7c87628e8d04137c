package calculators

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// reserved holds the separators of window-tagged feature names.
const reserved = "|@"

// FormatParams encodes p as key_value segments sorted by key. Strings are
// double quoted; floats always carry a fractional part so they parse back
// as floats.
func FormatParams(p Params) ([]string, error) {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == "" || strings.HasPrefix(k, "_") || strings.HasSuffix(k, "_") ||
			strings.Contains(k, "__") || strings.ContainsAny(k, reserved) {
			return nil, fmt.Errorf("%w: key %q", ErrParams, k)
		}
		v, err := formatValue(p[k])
		if err != nil {
			return nil, fmt.Errorf("%w: key %q: %v", ErrParams, k, err)
		}
		out = append(out, k+"_"+v)
	}
	return out, nil
}

func formatValue(v any) (string, error) {
	switch val := v.(type) {
	case int:
		return strconv.Itoa(val), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case float64:
		s := strconv.FormatFloat(val, 'g', -1, 64)
		if !math.IsInf(val, 0) && !math.IsNaN(val) && !strings.ContainsAny(s, ".e") {
			s += ".0"
		}
		return s, nil
	case bool:
		return strconv.FormatBool(val), nil
	case string:
		if strings.Contains(val, "__") || strings.ContainsAny(val, reserved) {
			return "", fmt.Errorf("string value %q contains a separator", val)
		}
		return strconv.Quote(val), nil
	default:
		return "", fmt.Errorf("unsupported value type %T", v)
	}
}

// ParseParams decodes key_value segments. The key runs up to the last
// underscore, so keys may contain underscores themselves. No segments yields
// a nil Params.
func ParseParams(segments []string) (Params, error) {
	if len(segments) == 0 {
		return nil, nil
	}
	p := make(Params, len(segments))
	for _, seg := range segments {
		i := strings.LastIndex(seg, "_")
		if strings.HasSuffix(seg, `"`) {
			// Quoted values may hold underscores; split before the opening quote.
			if q := strings.Index(seg, `_"`); q >= 0 {
				i = q
			}
		}
		if i <= 0 || i == len(seg)-1 {
			return nil, fmt.Errorf("%w: segment %q is not key_value", ErrParams, seg)
		}
		key, raw := seg[:i], seg[i+1:]
		v, err := parseValue(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: segment %q: %v", ErrParams, seg, err)
		}
		if _, dup := p[key]; dup {
			return nil, fmt.Errorf("%w: duplicate key %q", ErrParams, key)
		}
		p[key] = v
	}
	return p, nil
}

func parseValue(raw string) (any, error) {
	if strings.HasPrefix(raw, `"`) {
		return strconv.Unquote(raw)
	}
	switch raw {
	case "true", "True":
		return true, nil
	case "false", "False":
		return false, nil
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n, nil
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f, nil
	}
	return nil, fmt.Errorf("cannot parse value %q", raw)
}

// Equal reports whether two parameter sets hold the same keys and values.
// Integers and integral floats of the same value are not equal.
func (p Params) Equal(o Params) bool {
	if len(p) != len(o) {
		return false
	}
	for k, v := range p {
		w, ok := o[k]
		if !ok || v != w {
			return false
		}
	}
	return true
}

// Float reads a numeric parameter.
func (p Params) Float(key string) (float64, error) {
	switch v := p[key].(type) {
	case float64:
		return v, nil
	case int64:
		return float64(v), nil
	case int:
		return float64(v), nil
	case nil:
		return 0, fmt.Errorf("%w: missing %q", ErrParams, key)
	default:
		return 0, fmt.Errorf("%w: %q is %T, want a number", ErrParams, key, v)
	}
}

// Int reads an integral parameter. Floats with a fractional part are rejected.
func (p Params) Int(key string) (int, error) {
	f, err := p.Float(key)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("%w: %q is %v, want an integer", ErrParams, key, f)
	}
	return int(f), nil
}
