package journal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"golang.org/x/text/unicode/norm"
)

// EncodeValue produces canonical JSON for a state value.
//
// Identical values must encode to identical bytes across runs so that
// journal rows and golden traces compare byte-for-byte:
//   - object keys sorted
//   - strings NFC normalized, no HTML escaping
//   - integers and bools verbatim
//   - floats are forbidden (non-canonical representations; state values
//     that need fractions should carry strings or scaled integers)
//   - null is forbidden (absence is modeled by the slot, not the value)
func EncodeValue(v any) (string, error) {
	data, err := encodeCanonical(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func encodeCanonical(v any) ([]byte, error) {
	switch val := v.(type) {
	case nil:
		return nil, fmt.Errorf("null is forbidden in canonical values")
	case string:
		return encodeCanonicalString(val)
	case bool:
		if val {
			return []byte("true"), nil
		}
		return []byte("false"), nil
	case int:
		return strconv.AppendInt(nil, int64(val), 10), nil
	case int64:
		return strconv.AppendInt(nil, val, 10), nil
	case uint64:
		return strconv.AppendUint(nil, val, 10), nil
	case float32, float64:
		return nil, fmt.Errorf("floats are forbidden in canonical values: %v", val)
	case []any:
		return encodeCanonicalArray(val)
	case map[string]any:
		return encodeCanonicalObject(val)
	default:
		return nil, fmt.Errorf("unsupported type for canonical value: %T", v)
	}
}

func encodeCanonicalArray(arr []any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, elem := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}
		data, err := encodeCanonical(elem)
		if err != nil {
			return nil, fmt.Errorf("array[%d]: %w", i, err)
		}
		buf.Write(data)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func encodeCanonicalObject(obj map[string]any) ([]byte, error) {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyData, err := encodeCanonicalString(k)
		if err != nil {
			return nil, fmt.Errorf("object key %q: %w", k, err)
		}
		buf.Write(keyData)
		buf.WriteByte(':')
		data, err := encodeCanonical(obj[k])
		if err != nil {
			return nil, fmt.Errorf("object[%q]: %w", k, err)
		}
		buf.Write(data)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// encodeCanonicalString produces a JSON string with NFC normalization and
// without HTML escaping (< > & stay literal).
func encodeCanonicalString(s string) ([]byte, error) {
	normalized := norm.NFC.String(s)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(normalized); err != nil {
		return nil, err
	}

	// json.Encoder adds a trailing newline, remove it.
	result := buf.Bytes()
	if len(result) > 0 && result[len(result)-1] == '\n' {
		result = result[:len(result)-1]
	}
	return result, nil
}
