// Package fs is a flat file system over a block store: a fixed table of
// inodes with direct block pointers and a first-fit free-block bitmap.
//
// Descriptors equal inode slot numbers. Create and Open hold the inode in
// memory; Write allocates and writes data blocks immediately but the inode
// itself is only written back by Close (or Delete).
package fs

import (
	"fmt"
	"sync"

	"github.com/mit-pdos/go-simplefs/alloc"
	"github.com/mit-pdos/go-simplefs/blkstore"
	"github.com/mit-pdos/go-simplefs/common"
	"github.com/mit-pdos/go-simplefs/inode"
	"github.com/mit-pdos/go-simplefs/util"
)

// Opts turns on legacy behaviors. The zero value is the normal file system.
type Opts struct {
	// SingleHandle keeps at most one open inode. Create and Open replace it
	// (dropping unsaved state), a failed Open clears it, and Delete clears it
	// whichever file was deleted. Name lookups and the free-slot scan read
	// the table only, never the open inode.
	SingleHandle bool `mapstructure:"single_handle"`

	// ReadAllPointers makes Read walk every direct pointer slot instead of
	// the first Size ones.
	ReadAllPointers bool `mapstructure:"read_all_pointers"`

	// KeepBlocksOnRewrite makes Write allocate fresh blocks without
	// releasing the ones the file already holds; the old blocks leak.
	KeepBlocksOnRewrite bool `mapstructure:"keep_blocks_on_rewrite"`
}

type FileSys struct {
	mu      *sync.Mutex
	store   *blkstore.Store
	alloc   *alloc.Alloc
	handles *handles
	opts    Opts
}

func mkFileSys(store *blkstore.Store, a *alloc.Alloc, opts Opts) *FileSys {
	return &FileSys{
		mu:      new(sync.Mutex),
		store:   store,
		alloc:   a,
		handles: mkHandles(opts.SingleHandle),
		opts:    opts,
	}
}

// MkFileSys formats store and returns an empty file system on it.
func MkFileSys(store *blkstore.Store, opts Opts) (*FileSys, error) {
	if err := store.Format(); err != nil {
		return nil, err
	}
	return mkFileSys(store, alloc.MkDataAlloc(), opts), nil
}

// MkMemFileSys returns an empty file system on a fresh in-memory disk.
func MkMemFileSys(opts Opts) *FileSys {
	fs, err := MkFileSys(blkstore.MkMemStore(), opts)
	if err != nil {
		panic(err)
	}
	return fs
}

// Mount opens an already formatted store. The bitmap is not stored on disk;
// it is rebuilt from the pointers of every occupied inode.
func Mount(store *blkstore.Store, opts Opts) (*FileSys, error) {
	if _, err := store.ReadSuper(); err != nil {
		return nil, err
	}
	a := alloc.MkDataAlloc()
	for i := uint64(0); i < common.NINODE; i++ {
		ip, err := store.ReadInode(common.Inum(i))
		if err != nil {
			return nil, err
		}
		if ip.IsFree() {
			continue
		}
		for _, bn := range ip.Used() {
			if err := a.MarkUsed(bn); err != nil {
				return nil, fmt.Errorf("%w: inode %d: %v", ErrCorrupt, i, err)
			}
		}
	}
	util.DPrintf(1, "Mount: %d blocks in use\n", a.NumUsed())
	return mkFileSys(store, a, opts), nil
}

func (fs *FileSys) Opts() Opts {
	return fs.opts
}

func (fs *FileSys) Store() *blkstore.Store {
	return fs.store
}

// NumBlocksAllocated is the number of data blocks marked in the bitmap.
func (fs *FileSys) NumBlocksAllocated() uint64 {
	return fs.alloc.NumUsed()
}

// OpenFds lists the descriptors currently open, in increasing order.
func (fs *FileSys) OpenFds() []common.Fd {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.handles.fds()
}

// slot returns inode inum as the file system currently sees it: the
// in-memory copy if it is open, the table entry otherwise.
func (fs *FileSys) slot(inum common.Inum) (*inode.Inode, error) {
	if ip := fs.handles.lookup(inum); ip != nil {
		return ip, nil
	}
	return fs.store.ReadInode(inum)
}

// lookupSlot is slot as name lookups see it. With SingleHandle lookups read
// the table alone, so an unsaved create reserves neither its slot nor its
// name.
func (fs *FileSys) lookupSlot(inum common.Inum) (*inode.Inode, error) {
	if fs.opts.SingleHandle {
		return fs.store.ReadInode(inum)
	}
	return fs.slot(inum)
}

// findName scans the table for an occupied slot named name.
func (fs *FileSys) findName(name string) (*inode.Inode, error) {
	for i := uint64(0); i < common.NINODE; i++ {
		ip, err := fs.lookupSlot(common.Inum(i))
		if err != nil {
			return nil, err
		}
		if ip.Matches(name) {
			return ip, nil
		}
	}
	return nil, nil
}

// Geometry describes the fixed layout every file system is built with.
type Geometry struct {
	BlockSize   uint64 `json:"block_size"`
	NInode      uint64 `json:"inodes"`
	NDirect     uint64 `json:"direct_pointers"`
	NDataBlk    uint64 `json:"data_blocks"`
	MaxFileSize uint64 `json:"max_file_size"`
	MaxNameLen  uint64 `json:"max_name_len"`
}

func Layout() Geometry {
	return Geometry{
		BlockSize:   common.BlockSize,
		NInode:      common.NINODE,
		NDirect:     common.NDIRECT,
		NDataBlk:    common.NDATABLK,
		MaxFileSize: common.MAXFILESZ,
		MaxNameLen:  common.MAXNAMELEN,
	}
}
