// Package blkstore is the file system's block store: a fixed array of
// 512-byte blocks, a reserved inode table and a superblock, packed into the
// 4096-byte blocks of a goose disk.
//
// The layout, in 512-byte sectors, is
//
//	[ super | inode table (NINODEBLK) | data blocks (NDATABLK) ]
//
// Data blocks are addressed by their index in the data region, which is the
// same number space the allocator and inode pointers use.
package blkstore

import (
	"errors"
	"fmt"
	"io"

	"github.com/tchajed/goose/machine/disk"
	"github.com/tchajed/marshal"

	"github.com/mit-pdos/go-simplefs/addr"
	"github.com/mit-pdos/go-simplefs/buf"
	"github.com/mit-pdos/go-simplefs/common"
	"github.com/mit-pdos/go-simplefs/inode"
	"github.com/mit-pdos/go-simplefs/util"
)

var (
	ErrOutOfBounds   = errors.New("index out of bounds")
	ErrBlockTooLarge = errors.New("data larger than a block")
	ErrDiskTooSmall  = errors.New("disk too small for file system")
	ErrBadSuper      = errors.New("bad superblock")
)

const MAGIC uint64 = 0x53494d504c454653 // "SIMPLEFS"

// Store is not safe for concurrent use; the file system serializes access.
type Store struct {
	d disk.Disk
}

func MkStore(d disk.Disk) (*Store, error) {
	if d.Size() < common.DISKBLKS {
		return nil, fmt.Errorf("%w: %d blocks, need %d", ErrDiskTooSmall,
			d.Size(), common.DISKBLKS)
	}
	return &Store{d: d}, nil
}

// MkMemStore returns a store over a fresh in-memory disk. The store is not
// formatted yet.
func MkMemStore() *Store {
	s, err := MkStore(disk.NewMemDisk(common.DISKBLKS))
	if err != nil {
		panic(err)
	}
	return s
}

// Load reads the object of sz bits at a.
func (s *Store) Load(a addr.Addr, sz uint64) *buf.Buf {
	blk := s.d.Read(a.Blkno)
	return buf.MkBufLoad(a, sz, blk)
}

// Install writes b into its device block, preserving the rest of the block.
func (s *Store) Install(b *buf.Buf) {
	blk := s.d.Read(b.Addr.Blkno)
	b.Install(blk)
	s.d.Write(b.Addr.Blkno, blk)
}

// Super describes the geometry a store was formatted with.
type Super struct {
	Magic     uint64
	BlockSize uint64
	NInode    uint64
	NDirect   uint64
	NDataBlk  uint64
	DataStart uint64
}

func mkSuper() Super {
	return Super{
		Magic:     MAGIC,
		BlockSize: common.BlockSize,
		NInode:    common.NINODE,
		NDirect:   common.NDIRECT,
		NDataBlk:  common.NDATABLK,
		DataStart: common.DATASTART,
	}
}

func (sb Super) encode() []byte {
	enc := marshal.NewEnc(common.BlockSize)
	enc.PutInt(sb.Magic)
	enc.PutInt(sb.BlockSize)
	enc.PutInt(sb.NInode)
	enc.PutInt(sb.NDirect)
	enc.PutInt(sb.NDataBlk)
	enc.PutInt(sb.DataStart)
	return enc.Finish()
}

func decodeSuper(data []byte) Super {
	dec := marshal.NewDec(data)
	var sb Super
	sb.Magic = dec.GetInt()
	sb.BlockSize = dec.GetInt()
	sb.NInode = dec.GetInt()
	sb.NDirect = dec.GetInt()
	sb.NDataBlk = dec.GetInt()
	sb.DataStart = dec.GetInt()
	return sb
}

// Format zeroes the whole file system region and writes a superblock. Every
// inode slot is free afterwards and every data block reads as zeros.
func (s *Store) Format() error {
	for bn := uint64(0); bn < common.DISKBLKS; bn++ {
		s.d.Write(bn, make(disk.Block, disk.BlockSize))
	}
	s.Install(buf.MkBuf(addr.SectorAddr(common.SUPERBLK), common.NBITSECT,
		mkSuper().encode()))
	util.DPrintf(1, "Format: %d device blocks, %d data blocks\n",
		common.DISKBLKS, common.NDATABLK)
	return nil
}

// ReadSuper returns the superblock, checking it matches this build's geometry.
func (s *Store) ReadSuper() (Super, error) {
	b := s.Load(addr.SectorAddr(common.SUPERBLK), common.NBITSECT)
	sb := decodeSuper(b.Data)
	if sb.Magic != MAGIC {
		return sb, fmt.Errorf("%w: magic %#x", ErrBadSuper, sb.Magic)
	}
	if sb != mkSuper() {
		return sb, fmt.Errorf("%w: geometry %+v", ErrBadSuper, sb)
	}
	return sb, nil
}

func checkBlock(bn common.Bnum) error {
	if bn >= common.NDATABLK {
		return fmt.Errorf("%w: block %d of %d", ErrOutOfBounds, bn, common.NDATABLK)
	}
	return nil
}

func checkInum(inum common.Inum) error {
	if uint64(inum) >= common.NINODE {
		return fmt.Errorf("%w: inode %d of %d", ErrOutOfBounds, inum, common.NINODE)
	}
	return nil
}

// ReadBlock returns the BlockSize bytes of data block bn, padding included.
func (s *Store) ReadBlock(bn common.Bnum) ([]byte, error) {
	if err := checkBlock(bn); err != nil {
		return nil, err
	}
	b := s.Load(addr.DataAddr(bn), common.NBITSECT)
	return b.Data, nil
}

// PadBlock copies data into a zero-filled block.
func PadBlock(data []byte) ([]byte, error) {
	if uint64(len(data)) > common.BlockSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrBlockTooLarge, len(data))
	}
	blk := make([]byte, common.BlockSize)
	copy(blk, data)
	return blk, nil
}

// WriteBlock replaces data block bn. Short data is zero-padded.
func (s *Store) WriteBlock(bn common.Bnum, data []byte) error {
	if err := checkBlock(bn); err != nil {
		return err
	}
	blk, err := PadBlock(data)
	if err != nil {
		return err
	}
	s.Install(buf.MkBuf(addr.DataAddr(bn), common.NBITSECT, blk))
	return nil
}

func (s *Store) ReadInode(inum common.Inum) (*inode.Inode, error) {
	if err := checkInum(inum); err != nil {
		return nil, err
	}
	b := s.Load(addr.InodeAddr(inum), common.INODESZ*8)
	return inode.Decode(b.Data, inum)
}

func (s *Store) WriteInode(ip *inode.Inode, inum common.Inum) error {
	if err := checkInum(inum); err != nil {
		return err
	}
	s.Install(buf.MkBuf(addr.InodeAddr(inum), common.INODESZ*8, ip.Encode()))
	return nil
}

// WriteImage writes the raw file system region, device block by device block.
func (s *Store) WriteImage(w io.Writer) error {
	for bn := uint64(0); bn < common.DISKBLKS; bn++ {
		if _, err := w.Write(s.d.Read(bn)); err != nil {
			return fmt.Errorf("writing block %d: %w", bn, err)
		}
	}
	return nil
}

// ImageSize is the number of bytes WriteImage produces.
func ImageSize() uint64 {
	return common.DISKBLKS * disk.BlockSize
}
