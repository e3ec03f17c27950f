// Copyright (c) 2026 Passport. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package optional models a field in a partial update request.

A JSON PATCH-style body has three states per field, and a plain pointer can
only express two of them:

  - Absent: the key is missing. The stored value must not change.
  - Null: the key is present with a JSON null. The stored value is cleared.
  - Value: the key is present with a value. The stored value is replaced.
*/
package optional

import (
	"bytes"
	"encoding/json"
)

// Field is a tri-state optional value. The zero value is Absent.
type Field[T any] struct {
	present bool
	null    bool
	value   T
}

// Of returns a present, non-null Field holding v.
func Of[T any](v T) Field[T] {
	return Field[T]{present: true, value: v}
}

// Null returns a present Field that explicitly clears the target.
func Null[T any]() Field[T] {
	return Field[T]{present: true, null: true}
}

// IsPresent reports whether the key appeared in the input at all.
func (f Field[T]) IsPresent() bool { return f.present }

// IsNull reports whether the key appeared with an explicit null.
func (f Field[T]) IsNull() bool { return f.present && f.null }

// Get returns the carried value and true when the field is present and non-null.
func (f Field[T]) Get() (T, bool) {
	if !f.present || f.null {
		var zero T
		return zero, false
	}
	return f.value, true
}

// Apply writes the field into target: absent leaves it untouched, null resets
// it to the zero value, a value replaces it.
func (f Field[T]) Apply(target *T) {
	if !f.present {
		return
	}
	if f.null {
		var zero T
		*target = zero
		return
	}
	*target = f.value
}

// UnmarshalJSON is only invoked by encoding/json when the key exists, which is
// what distinguishes Absent from Null.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.present = true

	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		f.null = true
		var zero T
		f.value = zero
		return nil
	}

	f.null = false
	return json.Unmarshal(data, &f.value)
}

// MarshalJSON renders Null and Absent as JSON null.
func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.present || f.null {
		return []byte("null"), nil
	}
	return json.Marshal(f.value)
}
