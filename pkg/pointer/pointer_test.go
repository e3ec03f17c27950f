// Copyright (c) 2026 Passport. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pointer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/passport/pkg/pointer"
)

func TestPointer(t *testing.T) {
	assert.Equal(t, "", pointer.Val[string](nil))
	assert.Equal(t, "x", pointer.Val(pointer.To("x")))

	assert.Nil(t, pointer.Clone[int](nil))

	original := pointer.To(7)
	clone := pointer.Clone(original)
	*clone = 8
	assert.Equal(t, 7, *original)
}
