package callback

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundTrip(t *testing.T) {
	data := New("buy", "2Fz8Q1pX9kLmNoPqRsTuVwXyZa1")
	assert.Equal(t, "buy", Query(data))
	assert.Equal(t, "2Fz8Q1pX9kLmNoPqRsTuVwXyZa1", Value(data))
	assert.LessOrEqual(t, len(data), 64)
}

func TestMalformed(t *testing.T) {
	assert.Empty(t, Query("garbage"))
	assert.Empty(t, Value(""))
}
