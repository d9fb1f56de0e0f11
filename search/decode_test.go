package search

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeEmpty(t *testing.T) {
	res := Decode(Words{})
	assert.Equal(t, uint32(0), res.Count)
	assert.Empty(t, res.Values)
	assert.False(t, res.Overflow)
	assert.Equal(t, "", res.String())
}

func TestDecodeIgnoresSlotsPastCount(t *testing.T) {
	res := Decode(Words{2, 5, 6, 99, 99})
	assert.Equal(t, []uint32{5, 6}, res.Values)
	assert.Equal(t, "5,6", res.String())
}

func TestDecodeFull(t *testing.T) {
	res := Decode(Words{9, 1, 2, 3, 4, 5, 6, 7, 8, 4294967295})
	assert.False(t, res.Overflow)
	assert.Len(t, res.Values, 9)
	assert.Equal(t, "1,2,3,4,5,6,7,8,4294967295", res.String())
	assert.Len(t, strings.Split(res.String(), ","), 9)
}

func TestDecodeClampsOverflow(t *testing.T) {
	w := Words{12, 10, 11, 12, 13, 14, 15, 16, 17, 18}
	res := Decode(w)
	assert.True(t, res.Overflow)
	assert.Equal(t, uint32(12), res.Count)
	assert.Len(t, res.Values, MaxMatches)
	assert.Equal(t, uint32(3), res.Dropped())
	assert.Equal(t, "10,11,12,13,14,15,16,17,18", res.String())

	huge := Decode(Words{0xffffffff})
	assert.True(t, huge.Overflow)
	assert.Len(t, huge.Values, MaxMatches)
}

func TestDecodeDoesNotAlias(t *testing.T) {
	w := Words{1, 7}
	res := Decode(w)
	w[1] = 8
	assert.Equal(t, []uint32{7}, res.Values)
}

func TestStateNames(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "awaiting-map", StateAwaitingMap.String())
	assert.Equal(t, "unknown", State(42).String())
	assert.True(t, StateDecoded.Terminal())
	assert.True(t, StateFailed.Terminal())
	assert.False(t, StateMapped.Terminal())
}
