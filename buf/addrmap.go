package buf

import (
	"github.com/mit-pdos/go-simplefs/addr"
)

//
// a map from addr to an object
//

type aentry struct {
	addr addr.Addr
	obj  interface{}
}

type AddrMap struct {
	addrs map[uint64][]*aentry
	order []addr.Addr // insertion order, for deterministic Apply
}

func MkAddrMap() *AddrMap {
	a := &AddrMap{
		addrs: make(map[uint64][]*aentry),
	}
	return a
}

func (amap *AddrMap) Lookup(addr addr.Addr) interface{} {
	var obj interface{}
	addrs, ok := amap.addrs[addr.Blkno]
	if ok {
		for _, a := range addrs {
			if addr == a.addr {
				obj = a.obj
				break
			}
		}
	}
	return obj
}

func (amap *AddrMap) Insert(addr addr.Addr, obj interface{}) {
	aentry := &aentry{addr: addr, obj: obj}
	blkno := addr.Blkno
	amap.addrs[blkno] = append(amap.addrs[blkno], aentry)
	amap.order = append(amap.order, addr)
}

func (amap *AddrMap) Apply(f func(addr.Addr, interface{})) {
	for _, a := range amap.order {
		f(a, amap.Lookup(a))
	}
}
