// Copyright (c) 2026 Passport. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package optional_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/passport/pkg/optional"
)

type patch struct {
	Bio  optional.Field[string] `json:"bio"`
	Name optional.Field[string] `json:"name"`
}

/*
TestField_DecodeStates verifies that absent, null and value keys decode into
three distinct states.
*/
func TestField_DecodeStates(t *testing.T) {
	var input patch
	require.NoError(t, json.Unmarshal([]byte(`{"bio":null,"name":"Alice"}`), &input))

	// 1. Explicit null
	assert.True(t, input.Bio.IsPresent())
	assert.True(t, input.Bio.IsNull())

	// 2. Value
	name, ok := input.Name.Get()
	assert.True(t, ok)
	assert.Equal(t, "Alice", name)

	// 3. Absent
	var empty patch
	require.NoError(t, json.Unmarshal([]byte(`{}`), &empty))
	assert.False(t, empty.Bio.IsPresent())
	assert.False(t, empty.Bio.IsNull())
}

/*
TestField_Apply checks the update semantics of each state.
*/
func TestField_Apply(t *testing.T) {
	tests := []struct {
		name  string
		field optional.Field[string]
		want  string
	}{
		{"absent_keeps_value", optional.Field[string]{}, "original"},
		{"null_clears_value", optional.Null[string](), ""},
		{"value_replaces", optional.Of("updated"), "updated"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := "original"
			tt.field.Apply(&target)
			assert.Equal(t, tt.want, target)
		})
	}
}

/*
TestField_RejectsWrongType ensures type errors still surface.
*/
func TestField_RejectsWrongType(t *testing.T) {
	var input patch
	err := json.Unmarshal([]byte(`{"bio":42}`), &input)
	assert.Error(t, err)
}
