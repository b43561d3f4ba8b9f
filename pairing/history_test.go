package pairing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHistory(t *testing.T) {
	h := NewHistory()
	h.Add(7, 3)
	h.Add(3, 7)

	assert.True(t, h.Has(3, 7))
	assert.True(t, h.Has(7, 3))
	assert.False(t, h.Has(3, 8))
	assert.Equal(t, 1, h.Len())

	var empty History
	assert.False(t, empty.Has(1, 2))
}
