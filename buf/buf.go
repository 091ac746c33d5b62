// buf manages sub-block disk objects, to be packed into disk blocks
package buf

import (
	"github.com/tchajed/goose/machine/disk"

	"github.com/mit-pdos/go-simplefs/addr"
	"github.com/mit-pdos/go-simplefs/util"
)

// A Buf is a write to a byte-aligned disk object (inode record or sector)
type Buf struct {
	Addr  addr.Addr
	Sz    uint64 // number of bits
	Data  []byte
	dirty bool // has this object been written to?
}

func MkBuf(addr addr.Addr, sz uint64, data []byte) *Buf {
	b := &Buf{
		Addr:  addr,
		Sz:    sz,
		Data:  data,
		dirty: false,
	}
	return b
}

// Load the bits of a disk block into a new buf, as specified by addr
func MkBufLoad(addr addr.Addr, sz uint64, blk disk.Block) *Buf {
	b := &Buf{Addr: addr}
	b.Load(sz, blk)
	return b
}

// Install bytes from src to dst, starting at byte dstoff.
func installBytes(src []byte, dst []byte, dstoff uint64, nbit uint64) {
	sz := nbit / 8
	copy(dst[dstoff:dstoff+sz], src[:sz])
}

// Install the bytes of buf into blk.
func (buf *Buf) Install(blk disk.Block) {
	util.DPrintf(5, "%v: install %d bits\n", buf.Addr, buf.Sz)
	if buf.Sz%8 != 0 || buf.Addr.Off%8 != 0 {
		panic("Install unsupported\n")
	}
	if uint64(len(buf.Data))*8 != buf.Sz {
		panic("install: data does not match object size")
	}
	installBytes(buf.Data, blk, buf.Addr.Byte(), buf.Sz)
}

// Load the bits of a disk block into buf, as specified by addr. The data is
// copied so later writes to blk do not alias the buf.
func (buf *Buf) Load(sz uint64, blk disk.Block) {
	bytefirst := buf.Addr.Byte()
	bytelast := (buf.Addr.Off + sz - 1) / 8
	buf.Sz = sz
	buf.Data = util.CloneByteSlice(blk[bytefirst : bytelast+1])
}

func (buf *Buf) IsDirty() bool {
	return buf.dirty
}

func (buf *Buf) SetDirty() {
	buf.dirty = true
}
