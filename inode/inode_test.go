package inode

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mit-pdos/go-simplefs/common"
)

func TestZeroRecordIsFree(t *testing.T) {
	ip, err := Decode(make([]byte, common.INODESZ), 7)
	require.NoError(t, err)
	assert.True(t, ip.IsFree())
	assert.Equal(t, common.Inum(7), ip.Inum)
	assert.Equal(t, "", ip.Name)
	assert.Empty(t, ip.Used())
}

func TestEncodeDecode(t *testing.T) {
	assert := assert.New(t)
	ip := MkFile(3, "  notes.txt ")
	ip.Size = 3
	ip.Blks[0] = 0
	ip.Blks[1] = 17
	ip.Blks[2] = 1023

	data := ip.Encode()
	assert.Equal(int(common.INODESZ), len(data))

	ip2, err := Decode(data, 3)
	require.NoError(t, err)
	assert.Equal(ip, ip2)
	assert.Equal("notes.txt", ip2.Name)
	assert.Equal([]common.Bnum{0, 17, 1023}, ip2.Used())
}

func TestLongestName(t *testing.T) {
	name := strings.Repeat("n", int(common.MAXNAMELEN))
	require.NoError(t, ValidName(name))
	ip, err := Decode(MkFile(0, name).Encode(), 0)
	require.NoError(t, err)
	assert.Equal(t, name, ip.Name)
}

func TestDecodeRejects(t *testing.T) {
	ip := MkFile(1, "f")
	ip.Size = common.NDIRECT + 1
	_, err := Decode(ip.Encode(), 1)
	assert.True(t, errors.Is(err, ErrBadInode))

	ip = MkFile(1, "f")
	ip.Kind = 9
	_, err = Decode(ip.Encode(), 1)
	assert.True(t, errors.Is(err, ErrBadInode))

	_, err = Decode(make([]byte, 3), 1)
	assert.True(t, errors.Is(err, ErrBadInode))
}

func TestMatchesAndClear(t *testing.T) {
	assert := assert.New(t)
	ip := MkFile(2, "a.txt")
	assert.True(ip.Matches(" a.txt\t"))
	assert.False(ip.Matches("b.txt"))

	ip.Size = 1
	ip.Blks[0] = 7
	ip.Clear()
	assert.True(ip.IsFree())
	assert.False(ip.Matches("a.txt"))
	assert.Equal(MkFree(2), ip)
	assert.False(MkFree(0).Matches(""), "a free slot matches nothing")
}

func TestValidName(t *testing.T) {
	assert := assert.New(t)
	assert.NoError(ValidName("file0.txt"))
	assert.True(errors.Is(ValidName("   "), ErrInvalidName))
	assert.True(errors.Is(ValidName("a\x00b"), ErrInvalidName))
	long := strings.Repeat("x", int(common.MAXNAMELEN)+1)
	assert.True(errors.Is(ValidName(long), ErrNameTooLong))
	assert.NoError(ValidName("  "+strings.Repeat("x", int(common.MAXNAMELEN))+"  "),
		"length is measured after trimming")
}
