package policy

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	ErrUnregistered  = errors.New("unregistered name")
	ErrInvalidParams = errors.New("invalid parameters")
)

// Decoder builds a value from the parameters found under its name.
type Decoder[T any] func(params json.RawMessage) (T, error)

// Registry maps names to decoders. Values are encoded as single-key objects
// {name: params}.
type Registry[T any] struct {
	kind   string
	name   func(T) string
	params func(T) (interface{}, error)

	mu       sync.RWMutex
	decoders map[string]Decoder[T]
}

func NewRegistry[T any](kind string, name func(T) string, params func(T) (interface{}, error)) *Registry[T] {
	return &Registry[T]{
		kind:     kind,
		name:     name,
		params:   params,
		decoders: make(map[string]Decoder[T]),
	}
}

// Register adds or replaces the decoder for name.
func (r *Registry[T]) Register(name string, decode Decoder[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decoders[name] = decode
}

func (r *Registry[T]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.decoders))
	for name := range r.decoders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry[T]) DecodeNamed(name string, params json.RawMessage) (T, error) {
	r.mu.RLock()
	decode, ok := r.decoders[name]
	r.mu.RUnlock()

	var zero T
	if !ok {
		return zero, fmt.Errorf("%w: %s %q", ErrUnregistered, r.kind, name)
	}
	v, err := decode(params)
	if err != nil {
		return zero, fmt.Errorf("%s %q: %w", r.kind, name, err)
	}
	return v, nil
}

// Decode reads a {name: params} object.
func (r *Registry[T]) Decode(raw json.RawMessage) (T, error) {
	var zero T
	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(raw, &tagged); err != nil || tagged == nil {
		return zero, fmt.Errorf("%w: %s definition must be an object", ErrInvalidParams, r.kind)
	}
	if len(tagged) != 1 {
		return zero, fmt.Errorf("%w: %s definition must have exactly one key, found %d", ErrInvalidParams, r.kind, len(tagged))
	}
	for name, params := range tagged {
		return r.DecodeNamed(name, params)
	}
	return zero, nil
}

func (r *Registry[T]) Encode(v T) (json.RawMessage, error) {
	params, err := r.params(v)
	if err != nil {
		return nil, fmt.Errorf("%s %q: %w", r.kind, r.name(v), err)
	}
	content, err := json.Marshal(map[string]interface{}{r.name(v): params})
	if err != nil {
		return nil, err
	}
	return content, nil
}

// EncodeMap encodes every value of m.
func (r *Registry[T]) EncodeMap(m map[string]T) (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage, len(m))
	for key, v := range m {
		encoded, err := r.Encode(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		out[key] = encoded
	}
	return out, nil
}

func (r *Registry[T]) DecodeMap(raw json.RawMessage) (map[string]T, error) {
	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(raw, &tagged); err != nil {
		return nil, fmt.Errorf("%w: expected an object of %s definitions", ErrInvalidParams, r.kind)
	}
	out := make(map[string]T, len(tagged))
	for key, def := range tagged {
		v, err := r.Decode(def)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		out[key] = v
	}
	return out, nil
}

// decodeFields unmarshals an object into target after checking that every
// required key is present.
func decodeFields(raw json.RawMessage, target interface{}, required ...string) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return fmt.Errorf("%w: expected an object", ErrInvalidParams)
	}
	for _, key := range required {
		if value, ok := fields[key]; !ok || isNull(value) {
			return fmt.Errorf("%w: missing %q", ErrInvalidParams, key)
		}
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
