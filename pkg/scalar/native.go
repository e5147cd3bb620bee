package scalar

import (
	"encoding/json"
	"math"
	"reflect"
)

// FromNative converts a plain Go value into a Value. Booleans are recognized
// before any numeric kind so that true never becomes Int(1).
func FromNative(x interface{}) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return t, nil
	case bool:
		return Bool(t), nil
	case int:
		return Int(t), nil
	case int8:
		return Int(t), nil
	case int16:
		return Int(t), nil
	case int32:
		return Int(t), nil
	case int64:
		return Int(t), nil
	case uint8:
		return Int(t), nil
	case uint16:
		return Int(t), nil
	case uint32:
		return Int(t), nil
	case uint:
		return fromUnsigned(x, uint64(t))
	case uint64:
		return fromUnsigned(x, t)
	case float32:
		return Float(t), nil
	case float64:
		return Float(t), nil
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return Int(i), nil
		}
		f, err := t.Float64()
		if err != nil {
			return nil, &EncodingError{Value: x, Reason: "malformed number"}
		}
		return Float(f), nil
	case string:
		return String(t), nil
	case []byte:
		return Bytes(t), nil
	case []interface{}:
		list := make(List, len(t))
		for i, item := range t {
			v, err := FromNative(item)
			if err != nil {
				return nil, err
			}
			list[i] = v
		}
		return list, nil
	case map[string]interface{}:
		m := make(Map, len(t))
		for k, item := range t {
			v, err := FromNative(item)
			if err != nil {
				return nil, err
			}
			m[k] = v
		}
		return m, nil
	}
	return fromReflect(x)
}

func fromUnsigned(x interface{}, u uint64) (Value, error) {
	if u > math.MaxInt64 {
		return nil, &EncodingError{Value: x, Reason: "integer overflows int64"}
	}
	return Int(int64(u)), nil
}

// fromReflect handles typed slices and string-keyed maps such as []float64
// or map[string]string.
func fromReflect(x interface{}) (Value, error) {
	rv := reflect.ValueOf(x)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		list := make(List, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			v, err := FromNative(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			list[i] = v
		}
		return list, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, &EncodingError{Value: x, Reason: "mapping keys must be strings"}
		}
		m := make(Map, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			v, err := FromNative(iter.Value().Interface())
			if err != nil {
				return nil, err
			}
			m[iter.Key().String()] = v
		}
		return m, nil
	case reflect.Ptr:
		if rv.IsNil() {
			return Null{}, nil
		}
		return FromNative(rv.Elem().Interface())
	}
	return nil, &EncodingError{Value: x, Reason: "unsupported type"}
}

// FromNativeMap converts every value of m.
func FromNativeMap(m map[string]interface{}) (Map, error) {
	out := make(Map, len(m))
	for k, item := range m {
		v, err := FromNative(item)
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

// ToNative returns the plain Go form of v: nil, bool, int64, float64, string,
// []byte, []interface{} or map[string]interface{}.
func ToNative(v Value) interface{} {
	switch t := v.(type) {
	case Bool:
		return bool(t)
	case Int:
		return int64(t)
	case Float:
		return float64(t)
	case String:
		return string(t)
	case Bytes:
		return []byte(t)
	case List:
		items := make([]interface{}, len(t))
		for i, item := range t {
			items[i] = ToNative(item)
		}
		return items
	case Map:
		items := make(map[string]interface{}, len(t))
		for k, item := range t {
			items[k] = ToNative(item)
		}
		return items
	}
	return nil
}
