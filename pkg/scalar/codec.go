package scalar

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strconv"
)

const (
	TagNull   = "n"
	TagBool   = "b"
	TagInt    = "i"
	TagFloat  = "f"
	TagString = "s"
	TagBytes  = "d"
	TagMap    = "m"
	TagList   = "a"
)

const (
	posInf = "+Inf"
	negInf = "-Inf"
	nan    = "NaN"
)

type EncodingError struct {
	Value  interface{}
	Reason string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("cannot encode value of type %T: %s", e.Value, e.Reason)
}

type DecodingError struct {
	Raw    string
	Reason string
}

func (e *DecodingError) Error() string {
	raw := e.Raw
	if len(raw) > 64 {
		raw = raw[:61] + "..."
	}
	return fmt.Sprintf("cannot decode scalar %s: %s", raw, e.Reason)
}

// Encode returns the tagged JSON representation of v.
func Encode(v Value) (json.RawMessage, error) {
	tag, payload, err := encodePayload(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(map[string]json.RawMessage{tag: payload})
}

func encodePayload(v Value) (string, json.RawMessage, error) {
	switch t := v.(type) {
	case Null:
		return TagNull, json.RawMessage("null"), nil
	case Bool:
		payload, err := json.Marshal(bool(t))
		return TagBool, payload, err
	case Int:
		return TagInt, json.RawMessage(strconv.FormatInt(int64(t), 10)), nil
	case Float:
		return TagFloat, EncodeNumber(float64(t)), nil
	case String:
		payload, err := json.Marshal(string(t))
		return TagString, payload, err
	case Bytes:
		payload, err := json.Marshal(base64.StdEncoding.EncodeToString(t))
		return TagBytes, payload, err
	case List:
		items := make([]json.RawMessage, len(t))
		for i, item := range t {
			encoded, err := Encode(item)
			if err != nil {
				return "", nil, err
			}
			items[i] = encoded
		}
		payload, err := json.Marshal(items)
		return TagList, payload, err
	case Map:
		encoded, err := EncodeMap(t)
		if err != nil {
			return "", nil, err
		}
		payload, err := json.Marshal(encoded)
		return TagMap, payload, err
	case nil:
		return "", nil, &EncodingError{Value: v, Reason: "nil is not a scalar, use Null"}
	}
	return "", nil, &EncodingError{Value: v, Reason: "unsupported variant"}
}

// EncodeMap encodes every value of m, leaving the mapping itself untagged.
func EncodeMap(m Map) (map[string]json.RawMessage, error) {
	encoded := make(map[string]json.RawMessage, len(m))
	for k, item := range m {
		raw, err := Encode(item)
		if err != nil {
			return nil, err
		}
		encoded[k] = raw
	}
	return encoded, nil
}

// Decode parses a tagged JSON node.
func Decode(raw json.RawMessage) (Value, error) {
	var node map[string]json.RawMessage
	if err := json.Unmarshal(raw, &node); err != nil {
		return nil, &DecodingError{Raw: string(raw), Reason: "not a JSON object"}
	}
	if node == nil {
		return nil, &DecodingError{Raw: string(raw), Reason: "not a JSON object"}
	}
	if len(node) != 1 {
		return nil, &DecodingError{Raw: string(raw), Reason: fmt.Sprintf("expected exactly one key, found %d", len(node))}
	}

	for tag, payload := range node {
		v, err := decodePayload(tag, payload)
		if err != nil {
			return nil, &DecodingError{Raw: string(raw), Reason: err.Error()}
		}
		return v, nil
	}
	panic("unreachable")
}

func decodePayload(tag string, payload json.RawMessage) (Value, error) {
	switch tag {
	case TagNull:
		if !bytes.Equal(bytes.TrimSpace(payload), []byte("null")) {
			return nil, fmt.Errorf("null payload must be null")
		}
		return Null{}, nil
	case TagBool:
		var b bool
		if err := json.Unmarshal(payload, &b); err != nil {
			return nil, fmt.Errorf("invalid boolean: %w", err)
		}
		return Bool(b), nil
	case TagInt:
		return decodeInt(payload)
	case TagFloat:
		f, err := DecodeNumber(payload)
		if err != nil {
			return nil, err
		}
		return Float(f), nil
	case TagString:
		var s string
		if err := json.Unmarshal(payload, &s); err != nil {
			return nil, fmt.Errorf("invalid string: %w", err)
		}
		return String(s), nil
	case TagBytes:
		var s string
		if err := json.Unmarshal(payload, &s); err != nil {
			return nil, fmt.Errorf("invalid blob: %w", err)
		}
		data, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("invalid base64: %w", err)
		}
		return Bytes(data), nil
	case TagList:
		var items []json.RawMessage
		if err := json.Unmarshal(payload, &items); err != nil || items == nil {
			return nil, fmt.Errorf("list payload must be an array")
		}
		list := make(List, len(items))
		for i, item := range items {
			v, err := Decode(item)
			if err != nil {
				return nil, err
			}
			list[i] = v
		}
		return list, nil
	case TagMap:
		var items map[string]json.RawMessage
		if err := json.Unmarshal(payload, &items); err != nil || items == nil {
			return nil, fmt.Errorf("mapping payload must be an object")
		}
		return DecodeMap(items)
	}
	return nil, fmt.Errorf("unknown tag %q", tag)
}

func decodeInt(payload json.RawMessage) (Value, error) {
	var n json.Number
	if err := json.Unmarshal(payload, &n); err != nil {
		return nil, fmt.Errorf("invalid integer: %w", err)
	}
	if i, err := n.Int64(); err == nil {
		return Int(i), nil
	}
	// Integral values written in exponent or decimal form. Float64 bounds the
	// magnitude, big.Rat decides exactness.
	if f, err := n.Float64(); err != nil || math.Abs(f) > 1<<63 {
		return nil, fmt.Errorf("invalid integer %s", n)
	}
	r, ok := new(big.Rat).SetString(n.String())
	if !ok || !r.IsInt() || !r.Num().IsInt64() {
		return nil, fmt.Errorf("invalid integer %s", n)
	}
	return Int(r.Num().Int64()), nil
}

// DecodeMap decodes every value of an untagged mapping of tagged values.
func DecodeMap(raw map[string]json.RawMessage) (Map, error) {
	m := make(Map, len(raw))
	for k, item := range raw {
		v, err := Decode(item)
		if err != nil {
			return nil, err
		}
		m[k] = v
	}
	return m, nil
}

// EncodeNumber writes f as a JSON number, or as one of "+Inf", "-Inf" and
// "NaN" when JSON has no literal for it.
func EncodeNumber(f float64) json.RawMessage {
	switch {
	case math.IsNaN(f):
		return json.RawMessage(`"` + nan + `"`)
	case math.IsInf(f, 1):
		return json.RawMessage(`"` + posInf + `"`)
	case math.IsInf(f, -1):
		return json.RawMessage(`"` + negInf + `"`)
	}
	return json.RawMessage(strconv.FormatFloat(f, 'g', -1, 64))
}

// DecodeNumber is the inverse of EncodeNumber.
func DecodeNumber(raw json.RawMessage) (float64, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return 0, fmt.Errorf("invalid number: %w", err)
		}
		switch s {
		case posInf:
			return math.Inf(1), nil
		case negInf:
			return math.Inf(-1), nil
		case nan:
			return math.NaN(), nil
		}
		return 0, fmt.Errorf("invalid number %q", s)
	}

	var f float64
	if err := json.Unmarshal(trimmed, &f); err != nil {
		return 0, fmt.Errorf("invalid number: %w", err)
	}
	return f, nil
}

// Marshal encodes a native Go value, see FromNative.
func Marshal(v interface{}) ([]byte, error) {
	value, err := FromNative(v)
	if err != nil {
		return nil, err
	}
	return Encode(value)
}

// Unmarshal decodes a tagged node into its native Go form, see ToNative.
func Unmarshal(data []byte) (interface{}, error) {
	value, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return ToNative(value), nil
}
