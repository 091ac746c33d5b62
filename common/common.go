package common

import (
	"github.com/tchajed/goose/machine/disk"
)

const (
	// BlockSize is the file-system block (sector) size. Several sectors are
	// packed into each device block.
	BlockSize  uint64 = 512
	SECTPERBLK uint64 = disk.BlockSize / BlockSize
	NBITSECT   uint64 = BlockSize * 8

	INODESZ    uint64 = 128 // on-disk size
	INODEBLK   uint64 = BlockSize / INODESZ
	NINODE     uint64 = 64
	NDIRECT    uint64 = 8
	MAXNAMELEN uint64 = INODESZ - INODEHDR
	INODEHDR   uint64 = 8 + 8 + NDIRECT*8 // kind, size, pointers

	NDATABLK uint64 = 1024

	SUPERBLK   uint64 = 0
	INODESTART uint64 = SUPERBLK + 1
	NINODEBLK  uint64 = (NINODE + INODEBLK - 1) / INODEBLK
	DATASTART  uint64 = INODESTART + NINODEBLK
	NSECTOR    uint64 = DATASTART + NDATABLK
	DISKBLKS   uint64 = (NSECTOR + SECTPERBLK - 1) / SECTPERBLK

	// MAXFILESZ bounds file content, in bytes
	MAXFILESZ uint64 = NDIRECT * BlockSize
)

type Inum uint64
type Bnum = uint64

// Fd is a descriptor returned by create and open; it equals the inode's
// slot index.
type Fd int64

const (
	NULLFD Fd = -1
)

func (fd Fd) Inum() Inum {
	return Inum(fd)
}

func MkFd(inum Inum) Fd {
	return Fd(inum)
}
