package config

import (
	"fmt"
	"strconv"
	"strings"

	"filament-swap/pkg/extruder"
)

// Vector is a per-extruder option: element group i describes extruder i.
type Vector interface {
	// Key returns the option name.
	Key() string
	// Len returns the number of extruders described.
	Len() int
	// Complete reports whether no trailing partial group is present.
	Complete() bool
	// Swap exchanges the values of two extruders. Indices must be < Len().
	Swap(a, b extruder.Index)
	// Serialize renders the value as written in the config file.
	Serialize() string
}

// SwapGroups exchanges the stride-wide groups starting at a*stride and
// b*stride.
func SwapGroups[T any](values []T, stride, a, b int) {
	if a == b {
		return
	}
	for k := 0; k < stride; k++ {
		values[a*stride+k], values[b*stride+k] = values[b*stride+k], values[a*stride+k]
	}
}

// Values is a Vector backed by a typed slice.
type Values[T any] struct {
	key    string
	stride int
	format func([]T) string

	Values []T
}

// Key returns the option name.
func (v *Values[T]) Key() string { return v.key }

// Stride returns the number of values per extruder.
func (v *Values[T]) Stride() int { return v.stride }

// Len returns the number of extruders described. A trailing partial group
// is not counted.
func (v *Values[T]) Len() int { return len(v.Values) / v.stride }

// Complete reports whether the values split evenly into per-extruder groups.
func (v *Values[T]) Complete() bool { return len(v.Values)%v.stride == 0 }

// Swap exchanges the values of extruders a and b.
func (v *Values[T]) Swap(a, b extruder.Index) {
	SwapGroups(v.Values, v.stride, int(a), int(b))
}

// Serialize renders the values as written in the config file.
func (v *Values[T]) Serialize() string { return v.format(v.Values) }

// Strings is a vector of strings, e.g. extruder_colour.
type Strings = Values[string]

// Floats is a vector of floats, e.g. nozzle_diameter.
type Floats = Values[float64]

// Ints is a vector of integers, e.g. temperature.
type Ints = Values[int]

// Bools is a vector of booleans, e.g. retract_layer_change.
type Bools = Values[bool]

// NewStrings builds a quoted string vector (values separated by ';').
func NewStrings(key string, values ...string) *Strings {
	return &Strings{key: key, stride: 1, format: formatQuoted, Values: values}
}

// NewFloats builds a comma separated float vector.
func NewFloats(key string, stride int, values ...float64) *Floats {
	return &Floats{key: key, stride: max(stride, 1), format: formatFloats, Values: values}
}

// NewInts builds a comma separated integer vector.
func NewInts(key string, values ...int) *Ints {
	return &Ints{key: key, stride: 1, format: formatInts, Values: values}
}

// NewBools builds a comma separated boolean vector.
func NewBools(key string, values ...bool) *Bools {
	return &Bools{key: key, stride: 1, format: formatBools, Values: values}
}

// NewPoints builds a comma separated vector of "XxY" points kept as text.
func NewPoints(key string, values ...string) *Strings {
	return &Strings{key: key, stride: 1, format: formatRaw, Values: values}
}

// ParseStrings parses a ';' separated list of optionally quoted strings.
// Quoted strings understand \" \\ \n and \r escapes.
func ParseStrings(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{}, nil
	}

	var result []string
	i := 0
	for {
		var sb strings.Builder
		if i < len(raw) && raw[i] == '"' {
			i++
			closed := false
			for i < len(raw) {
				c := raw[i]
				if c == '\\' && i+1 < len(raw) {
					i++
					switch raw[i] {
					case 'n':
						sb.WriteByte('\n')
					case 'r':
						sb.WriteByte('\r')
					default:
						sb.WriteByte(raw[i])
					}
					i++
					continue
				}
				if c == '"' {
					closed = true
					i++
					break
				}
				sb.WriteByte(c)
				i++
			}
			if !closed {
				return nil, fmt.Errorf("unterminated quoted string in %q", raw)
			}
			for i < len(raw) && raw[i] == ' ' {
				i++
			}
			if i < len(raw) && raw[i] != ';' {
				return nil, fmt.Errorf("unexpected %q after quoted string in %q", raw[i], raw)
			}
		} else {
			end := strings.IndexByte(raw[i:], ';')
			if end < 0 {
				end = len(raw) - i
			}
			sb.WriteString(strings.TrimSpace(raw[i : i+end]))
			i += end
		}
		result = append(result, sb.String())
		if i >= len(raw) {
			return result, nil
		}
		// skip ';'
		i++
		for i < len(raw) && raw[i] == ' ' {
			i++
		}
		if i >= len(raw) {
			// trailing separator denotes a final empty value
			return append(result, ""), nil
		}
	}
}

func needsQuote(s string) bool {
	return s == "" || strings.ContainsAny(s, " \t;\"\\\n\r")
}

func formatQuoted(values []string) string {
	parts := make([]string, len(values))
	for i, s := range values {
		if !needsQuote(s) {
			parts[i] = s
			continue
		}
		var sb strings.Builder
		sb.WriteByte('"')
		for j := 0; j < len(s); j++ {
			switch s[j] {
			case '"', '\\':
				sb.WriteByte('\\')
				sb.WriteByte(s[j])
			case '\n':
				sb.WriteString(`\n`)
			case '\r':
				sb.WriteString(`\r`)
			default:
				sb.WriteByte(s[j])
			}
		}
		sb.WriteByte('"')
		parts[i] = sb.String()
	}
	return strings.Join(parts, ";")
}

func splitComma(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func formatRaw(values []string) string {
	return strings.Join(values, ",")
}

func parseFloats(raw string) ([]float64, error) {
	parts := splitComma(raw)
	result := make([]float64, 0, len(parts))
	for _, p := range parts {
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid float %q", p)
		}
		result = append(result, f)
	}
	return result, nil
}

func formatFloats(values []float64) string {
	parts := make([]string, len(values))
	for i, f := range values {
		parts[i] = strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strings.Join(parts, ",")
}

func parseInts(raw string) ([]int, error) {
	parts := splitComma(raw)
	result := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", p)
		}
		result = append(result, n)
	}
	return result, nil
}

func formatInts(values []int) string {
	parts := make([]string, len(values))
	for i, n := range values {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

func parseBools(raw string) ([]bool, error) {
	parts := splitComma(raw)
	result := make([]bool, 0, len(parts))
	for _, p := range parts {
		b, ok := parseBool(p)
		if !ok {
			return nil, fmt.Errorf("invalid boolean %q", p)
		}
		result = append(result, b)
	}
	return result, nil
}

func formatBools(values []bool) string {
	parts := make([]string, len(values))
	for i, b := range values {
		if b {
			parts[i] = "1"
		} else {
			parts[i] = "0"
		}
	}
	return strings.Join(parts, ",")
}

func parseBool(v string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off":
		return false, true
	}
	return false, false
}
