package blkstore

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/tchajed/goose/machine/disk"

	"github.com/mit-pdos/go-simplefs/common"
	"github.com/mit-pdos/go-simplefs/inode"
)

type StoreSuite struct {
	suite.Suite
	s *Store
}

func (suite *StoreSuite) SetupTest() {
	suite.s = MkMemStore()
	suite.Require().NoError(suite.s.Format())
}

func TestStore(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func mkData(sz int, b byte) []byte {
	data := make([]byte, sz)
	for i := range data {
		data[i] = b
	}
	return data
}

func (suite *StoreSuite) TestFormatIsEmpty() {
	for bn := uint64(0); bn < common.NDATABLK; bn += 97 {
		data, err := suite.s.ReadBlock(bn)
		suite.NoError(err)
		suite.Equal(make([]byte, common.BlockSize), data)
	}
	for i := uint64(0); i < common.NINODE; i++ {
		ip, err := suite.s.ReadInode(common.Inum(i))
		suite.NoError(err)
		suite.True(ip.IsFree(), "inode %d", i)
	}
	sb, err := suite.s.ReadSuper()
	suite.NoError(err)
	suite.Equal(common.NDATABLK, sb.NDataBlk)
}

func (suite *StoreSuite) TestWriteIsWholeBlock() {
	suite.NoError(suite.s.WriteBlock(5, mkData(int(common.BlockSize), 0xFF)))
	suite.NoError(suite.s.WriteBlock(5, []byte("short")))
	data, err := suite.s.ReadBlock(5)
	suite.NoError(err)
	expected := make([]byte, common.BlockSize)
	copy(expected, "short")
	suite.Equal(expected, data, "remainder is padded, not merged")
}

func (suite *StoreSuite) TestNeighborsUntouched() {
	// blocks 6 and 7 share a device block with block 5
	suite.NoError(suite.s.WriteBlock(6, mkData(int(common.BlockSize), 1)))
	suite.NoError(suite.s.WriteBlock(7, mkData(int(common.BlockSize), 2)))
	suite.NoError(suite.s.WriteBlock(5, mkData(10, 3)))

	d6, _ := suite.s.ReadBlock(6)
	d7, _ := suite.s.ReadBlock(7)
	suite.Equal(mkData(int(common.BlockSize), 1), d6)
	suite.Equal(mkData(int(common.BlockSize), 2), d7)

	ip, err := suite.s.ReadInode(common.Inum(common.NINODE - 1))
	suite.NoError(err)
	suite.True(ip.IsFree(), "data writes must not reach the inode table")
}

func (suite *StoreSuite) TestOutOfBounds() {
	_, err := suite.s.ReadBlock(common.NDATABLK)
	suite.True(errors.Is(err, ErrOutOfBounds))
	err = suite.s.WriteBlock(common.NDATABLK+3, []byte("x"))
	suite.True(errors.Is(err, ErrOutOfBounds))
	_, err = suite.s.ReadInode(common.Inum(common.NINODE))
	suite.True(errors.Is(err, ErrOutOfBounds))
	err = suite.s.WriteInode(inode.MkFree(0), common.Inum(common.NINODE))
	suite.True(errors.Is(err, ErrOutOfBounds))
}

func (suite *StoreSuite) TestBlockTooLarge() {
	err := suite.s.WriteBlock(0, mkData(int(common.BlockSize)+1, 1))
	suite.True(errors.Is(err, ErrBlockTooLarge))
}

func (suite *StoreSuite) TestInodeRoundTrip() {
	ip := inode.MkFile(5, "file5.txt")
	ip.Size = 2
	ip.Blks[0] = 12
	ip.Blks[1] = 13
	suite.NoError(suite.s.WriteInode(ip, 5))

	ip2, err := suite.s.ReadInode(5)
	suite.NoError(err)
	suite.Equal(ip, ip2)

	ip4, err := suite.s.ReadInode(4)
	suite.NoError(err)
	suite.True(ip4.IsFree(), "neighbor record in the same sector untouched")
}

func (suite *StoreSuite) TestFormatResets() {
	suite.NoError(suite.s.WriteBlock(1, []byte("data")))
	suite.NoError(suite.s.WriteInode(inode.MkFile(0, "a"), 0))
	suite.NoError(suite.s.Format())
	data, _ := suite.s.ReadBlock(1)
	suite.Equal(make([]byte, common.BlockSize), data)
	ip, _ := suite.s.ReadInode(0)
	suite.True(ip.IsFree())
}

func (suite *StoreSuite) TestImage() {
	suite.NoError(suite.s.WriteBlock(0, []byte("hello")))
	var b bytes.Buffer
	suite.NoError(suite.s.WriteImage(&b))
	suite.Equal(int(ImageSize()), b.Len())
	off := common.DATASTART * common.BlockSize
	suite.Equal([]byte("hello"), b.Bytes()[off:off+5])
}

func TestUnformattedSuper(t *testing.T) {
	s := MkMemStore()
	_, err := s.ReadSuper()
	assert.True(t, errors.Is(err, ErrBadSuper))
}

func TestDiskTooSmall(t *testing.T) {
	_, err := MkStore(disk.NewMemDisk(common.DISKBLKS - 1))
	assert.True(t, errors.Is(err, ErrDiskTooSmall))
}

func TestLatency(t *testing.T) {
	d := WithLatency(disk.NewMemDisk(common.DISKBLKS), 2*time.Millisecond)
	s, err := MkStore(d)
	require.NoError(t, err)

	start := time.Now()
	require.NoError(t, s.WriteBlock(0, []byte("x")))
	assert.GreaterOrEqual(t, time.Since(start), 4*time.Millisecond,
		"a block write is a device read plus a device write")

	data, err := s.ReadBlock(0)
	require.NoError(t, err)
	assert.Equal(t, byte('x'), data[0])
}
