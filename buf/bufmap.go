package buf

import (
	"github.com/mit-pdos/go-simplefs/addr"
)

//
// A map from Addr's to bufs.
//

type BufMap struct {
	addrs *AddrMap
}

func MkBufMap() *BufMap {
	a := &BufMap{
		addrs: MkAddrMap(),
	}
	return a
}

func (bmap *BufMap) Insert(buf *Buf) {
	bmap.addrs.Insert(buf.Addr, buf)
}

func (bmap *BufMap) Lookup(addr addr.Addr) *Buf {
	e := bmap.addrs.Lookup(addr)
	if e != nil {
		return e.(*Buf)
	}
	return nil
}

func (bmap *BufMap) Ndirty() uint64 {
	n := uint64(0)
	bmap.addrs.Apply(func(a addr.Addr, e interface{}) {
		buf := e.(*Buf)
		if buf.IsDirty() {
			n += 1
		}
	})
	return n
}

// DirtyBufs returns the dirty bufs in the order they were first inserted.
func (bmap *BufMap) DirtyBufs() []*Buf {
	var bufs []*Buf
	bmap.addrs.Apply(func(a addr.Addr, e interface{}) {
		b := e.(*Buf)
		if b.IsDirty() {
			bufs = append(bufs, b)
		}
	})
	return bufs
}
