package alloc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPopCnt(t *testing.T) {
	assert.Equal(t, uint64(0), popCnt(0))
	assert.Equal(t, uint64(1), popCnt(1))
	assert.Equal(t, uint64(1), popCnt(2))
	assert.Equal(t, uint64(2), popCnt(3))
	assert.Equal(t, uint64(8), popCnt(255))
}

func TestAlloc(t *testing.T) {
	assert := assert.New(t)
	max := uint64(32)
	a := MkMaxAlloc(max)

	assert.Equal(max, a.NumFree(), "everything should be initially free")

	run, err := a.AllocRun(1)
	require.NoError(t, err)
	n := run[0]
	assert.Equal(uint64(0), n, "first fit starts at 0")

	require.NoError(t, a.MarkUsed(n+1))
	run, err = a.AllocRun(1)
	require.NoError(t, err)
	n2 := run[0]
	assert.NotEqual(n+1, n2, "should not allocate something marked used")
	assert.Equal(uint64(2), n2)

	assert.Equal(max-3, a.NumFree(), "should have used 3 items")

	require.NoError(t, a.FreeNum(n))
	require.NoError(t, a.FreeNum(n2))
	assert.Equal(max-1, a.NumFree(), "should have freed")
	assert.Equal(uint64(1), a.NumUsed())
}

func TestAllocRunFirstFit(t *testing.T) {
	assert := assert.New(t)
	a := MkMaxAlloc(16)
	run, err := a.AllocRun(6)
	require.NoError(t, err)
	assert.Equal([]uint64{0, 1, 2, 3, 4, 5}, run)

	require.NoError(t, a.FreeNum(1))
	require.NoError(t, a.FreeNum(4))
	run, err = a.AllocRun(3)
	require.NoError(t, err)
	assert.Equal([]uint64{1, 4, 6}, run, "holes are filled before higher blocks")

	run, err = a.AllocRun(0)
	require.NoError(t, err)
	assert.Empty(run)
}

func TestAllocRunNoSpaceLeavesBitmap(t *testing.T) {
	a := MkMaxAlloc(8)
	_, err := a.AllocRun(5)
	require.NoError(t, err)
	before := a.Bitmap()

	_, err = a.AllocRun(4)
	assert.True(t, errors.Is(err, ErrNoSpace))
	assert.Equal(t, before, a.Bitmap())
	assert.Equal(t, uint64(3), a.NumFree())

	_, err = a.AllocRun(3)
	assert.NoError(t, err)
	_, err = a.AllocRun(1)
	assert.True(t, errors.Is(err, ErrNoSpace))
}

func TestDoubleOperationsRefused(t *testing.T) {
	a := MkMaxAlloc(8)
	assert.True(t, errors.Is(a.FreeNum(3), ErrBlockFree))
	require.NoError(t, a.MarkUsed(3))
	assert.True(t, errors.Is(a.MarkUsed(3), ErrBlockInUse))
	assert.True(t, errors.Is(a.MarkUsed(8), ErrOutOfBounds))
	assert.True(t, errors.Is(a.FreeNum(99), ErrOutOfBounds))
	assert.False(t, a.IsFree(3))
	assert.False(t, a.IsFree(8), "out of range is never free")
	assert.True(t, a.IsFree(4))
}

func TestBitmapLayout(t *testing.T) {
	a := MkMaxAlloc(16)
	require.NoError(t, a.MarkUsed(0))
	require.NoError(t, a.MarkUsed(9))
	assert.Equal(t, []byte{0x01, 0x02}, a.Bitmap())
}
