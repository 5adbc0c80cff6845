package cache

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tgpay/pkg/logger"
)

type item struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestSaveGetDelete(t *testing.T) {
	c := New(Params{Logger: logger.NewNop()})

	require.NoError(t, c.SaveObj("a", item{Name: "x", Count: 2}, 0))

	var got item
	require.NoError(t, c.GetObj("a", &got))
	assert.Equal(t, item{Name: "x", Count: 2}, got)

	require.NoError(t, c.Delete("a"))
	assert.ErrorIs(t, c.GetObj("a", &got), ErrNotFound)
}

func TestExpiry(t *testing.T) {
	c := New(Params{Logger: logger.NewNop()})

	require.NoError(t, c.SaveObj("short", item{Name: "x"}, time.Millisecond))
	require.NoError(t, c.SaveObj("long", item{Name: "y"}, time.Hour))
	time.Sleep(5 * time.Millisecond)

	var got item
	assert.ErrorIs(t, c.GetObj("short", &got), ErrNotFound)
	assert.NoError(t, c.GetObj("long", &got))
	assert.Equal(t, []string{"long"}, c.Keys(""))
}

func TestKeys(t *testing.T) {
	c := New(Params{Logger: logger.NewNop()})
	_ = c.SaveObj("conv:1", item{}, 0)
	_ = c.SaveObj("conv:2", item{}, 0)
	_ = c.SaveObj("other:1", item{}, 0)

	keys := c.Keys("conv:")
	sort.Strings(keys)
	assert.Equal(t, []string{"conv:1", "conv:2"}, keys)
}
