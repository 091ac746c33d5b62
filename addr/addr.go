package addr

import (
	"github.com/mit-pdos/go-simplefs/common"
)

// Addr identifies the start of a disk object.
//
// Blkno is the device block containing the object, and Off is the location of
// the object within the block (expressed as a bit offset). The size of the
// object is determined by the context in which Addr is used.
type Addr struct {
	Blkno uint64
	Off   uint64 // offset in bits
}

// Byte returns the object's byte offset within its device block.
func (a Addr) Byte() uint64 {
	return a.Off / 8
}

func MkAddr(blkno uint64, off uint64) Addr {
	return Addr{Blkno: blkno, Off: off}
}

// SectorAddr locates a file-system block inside the device.
func SectorAddr(sector uint64) Addr {
	return MkAddr(sector/common.SECTPERBLK,
		(sector%common.SECTPERBLK)*common.NBITSECT)
}

func InodeAddr(inum common.Inum) Addr {
	s := SectorAddr(common.INODESTART + uint64(inum)/common.INODEBLK)
	s.Off += (uint64(inum) % common.INODEBLK) * common.INODESZ * 8
	return s
}

func DataAddr(bn common.Bnum) Addr {
	return SectorAddr(common.DATASTART + bn)
}
