// Package op stages the object writes of one file-system operation.
//
// The caller begins an Op, overwrites objects (inode records and data blocks)
// through it, and finally commits. A second write to the same object replaces
// the first. Nothing reaches the block store before Commit, so an operation
// that fails its checks part-way is abandoned by simply dropping the Op.
//
// This is not a journal: Commit installs buffers one at a time and offers no
// atomicity across a crash.
package op

import (
	"github.com/mit-pdos/go-simplefs/addr"
	"github.com/mit-pdos/go-simplefs/blkstore"
	"github.com/mit-pdos/go-simplefs/buf"
	"github.com/mit-pdos/go-simplefs/common"
	"github.com/mit-pdos/go-simplefs/inode"
	"github.com/mit-pdos/go-simplefs/util"
)

// Op is an in-progress operation.
type Op struct {
	store *blkstore.Store
	bufs  *buf.BufMap // map of bufs written by this operation
}

func Begin(store *blkstore.Store) *Op {
	op := &Op{
		store: store,
		bufs:  buf.MkBufMap(),
	}
	util.DPrintf(5, "Begin: %p\n", op)
	return op
}

// OverWrite writes an object to addr
func (op *Op) OverWrite(addr addr.Addr, sz uint64, data []byte) {
	var b = op.bufs.Lookup(addr)
	if b == nil {
		b = buf.MkBuf(addr, sz, data)
		b.SetDirty()
		op.bufs.Insert(b)
	} else {
		if sz != b.Sz {
			panic("overwrite")
		}
		b.Data = data
		b.SetDirty()
	}
}

// OverWriteBlock stages a whole-block write of data block bn; data is
// zero-padded to the block size.
func (op *Op) OverWriteBlock(bn common.Bnum, data []byte) error {
	if bn >= common.NDATABLK {
		return blkstore.ErrOutOfBounds
	}
	blk, err := blkstore.PadBlock(data)
	if err != nil {
		return err
	}
	op.OverWrite(addr.DataAddr(bn), common.NBITSECT, blk)
	return nil
}

// OverWriteInode stages ip's record in its own slot.
func (op *Op) OverWriteInode(ip *inode.Inode) {
	op.OverWrite(addr.InodeAddr(ip.Inum), common.INODESZ*8, ip.Encode())
}

// NDirty reports how many objects Commit will install.
func (op *Op) NDirty() uint64 {
	return op.bufs.Ndirty()
}

// Commit installs the dirty objects in the order they were first staged.
func (op *Op) Commit() {
	bufs := op.bufs.DirtyBufs()
	util.DPrintf(5, "Commit %p: %d objects\n", op, len(bufs))
	for _, b := range bufs {
		op.store.Install(b)
	}
}
