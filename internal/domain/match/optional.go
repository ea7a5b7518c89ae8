package match

import (
	"encoding/json"
)

// Optional holds a derived value that may be undefined.
type Optional[T int | float64] struct {
	value   T
	defined bool
}

// Int is an optional whole number.
type Int = Optional[int]

// Float is an optional real number.
type Float = Optional[float64]

// Some returns a defined Optional.
func Some[T int | float64](v T) Optional[T] {
	return Optional[T]{value: v, defined: true}
}

// Get returns the value and whether it is defined.
func (o Optional[T]) Get() (T, bool) { return o.value, o.defined }

// Defined reports whether a value is present.
func (o Optional[T]) Defined() bool { return o.defined }

// Value returns the value, or the zero value when undefined.
func (o Optional[T]) Value() T { return o.value }

// MarshalJSON encodes an undefined value as null.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.defined {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

// UnmarshalJSON decodes null as undefined.
func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*o = Optional[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}
