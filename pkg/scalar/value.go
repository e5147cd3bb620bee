// Package scalar implements the tagged value representation used for trial
// hyperparameters, metadata and (partially) metrics.
//
// Every value crosses the JSON boundary as a single-key object whose key names
// the variant:
//
//	n  null          b  boolean       i  integer      f  float
//	s  text string   d  binary blob   m  mapping      a  list
//
// so integers, floats and booleans stay distinguishable after a round trip.
package scalar

import (
	"bytes"
	"math"
)

// Value is one of Null, Bool, Int, Float, String, Bytes, List or Map.
type Value interface {
	isValue()
}

type Null struct{}

type Bool bool

type Int int64

type Float float64

type String string

type Bytes []byte

type List []Value

type Map map[string]Value

func (Null) isValue()   {}
func (Bool) isValue()   {}
func (Int) isValue()    {}
func (Float) isValue()  {}
func (String) isValue() {}
func (Bytes) isValue()  {}
func (List) isValue()   {}
func (Map) isValue()    {}

// Equal compares two values structurally. NaN floats are equal to each other,
// and a nil blob, list or mapping equals an empty one.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case nil:
		return b == nil
	case Null:
		_, ok := b.(Null)
		return ok
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case Int:
		bv, ok := b.(Int)
		return ok && av == bv
	case Float:
		bv, ok := b.(Float)
		if !ok {
			return false
		}
		if math.IsNaN(float64(av)) {
			return math.IsNaN(float64(bv))
		}
		return av == bv
	case String:
		bv, ok := b.(String)
		return ok && av == bv
	case Bytes:
		bv, ok := b.(Bytes)
		return ok && bytes.Equal(av, bv)
	case List:
		bv, ok := b.(List)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case Map:
		bv, ok := b.(Map)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			other, found := bv[k]
			if !found || !Equal(v, other) {
				return false
			}
		}
		return true
	}
	return false
}

// EqualMaps is Equal for two mappings.
func EqualMaps(a, b Map) bool {
	return Equal(a, b)
}
