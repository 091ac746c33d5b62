package addr

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mit-pdos/go-simplefs/common"
)

// before orders addresses by their position on the device.
func before(a, b Addr) bool {
	return a.Blkno < b.Blkno || (a.Blkno == b.Blkno && a.Off < b.Off)
}

func TestSectorAddr(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(MkAddr(0, 0), SectorAddr(0))
	assert.Equal(MkAddr(0, 512*8), SectorAddr(1))
	assert.Equal(MkAddr(1, 0), SectorAddr(8))
	assert.Equal(MkAddr(2, 3*512*8), SectorAddr(19))
}

func TestInodeAddr(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(SectorAddr(common.INODESTART), InodeAddr(0))
	a := InodeAddr(5)
	assert.Equal(uint64(0), a.Blkno)
	assert.Equal((2*512+128)*uint64(8), a.Off, "inode 5 is the second record of sector 2")
	assert.Equal(uint64(2*512+128), a.Byte())

	last := InodeAddr(common.Inum(common.NINODE - 1))
	assert.True(before(last, DataAddr(0)), "inode table ends before data")
}

func TestDataAddrDistinct(t *testing.T) {
	seen := make(map[Addr]bool)
	for bn := uint64(0); bn < common.NDATABLK; bn++ {
		a := DataAddr(bn)
		assert.False(t, seen[a], "block %d collides", bn)
		seen[a] = true
		assert.True(t, a.Blkno < common.DISKBLKS)
	}
}
