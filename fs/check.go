package fs

import (
	"fmt"

	"github.com/mit-pdos/go-simplefs/common"
	"github.com/mit-pdos/go-simplefs/inode"
	"github.com/mit-pdos/go-simplefs/util"
)

// FileInfo describes one occupied inode slot.
type FileInfo struct {
	Inum   common.Inum   `json:"inum" plist:"inum"`
	Name   string        `json:"name" plist:"name"`
	Size   uint64        `json:"size" plist:"size"`
	Blocks []common.Bnum `json:"blocks" plist:"blocks"`
	Open   bool          `json:"open" plist:"open"`
}

func mkFileInfo(ip *inode.Inode, open bool) FileInfo {
	blks := make([]common.Bnum, len(ip.Used()))
	copy(blks, ip.Used())
	return FileInfo{
		Inum:   ip.Inum,
		Name:   ip.Name,
		Size:   ip.Size,
		Blocks: blks,
		Open:   open,
	}
}

// List returns every file in slot order. Open files are reported with their
// in-memory state.
func (fs *FileSys) List() ([]FileInfo, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	var infos []FileInfo
	for i := uint64(0); i < common.NINODE; i++ {
		inum := common.Inum(i)
		ip, err := fs.slot(inum)
		if err != nil {
			return nil, err
		}
		if ip.IsFree() {
			continue
		}
		infos = append(infos, mkFileInfo(ip, fs.handles.lookup(inum) != nil))
	}
	return infos, nil
}

// Stat describes the file called name.
func (fs *FileSys) Stat(name string) (FileInfo, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	ip, err := fs.findName(name)
	if err != nil {
		return FileInfo{}, err
	}
	if ip == nil {
		return FileInfo{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return mkFileInfo(ip, fs.handles.lookup(ip.Inum) != nil), nil
}

// Check verifies that the bitmap and the inode table agree: every pointer in
// use is in range and allocated, no block belongs to two files, and no
// allocated block is unreachable.
func (fs *FileSys) Check() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	owner := make(map[common.Bnum]common.Inum)
	for i := uint64(0); i < common.NINODE; i++ {
		ip, err := fs.slot(common.Inum(i))
		if err != nil {
			return err
		}
		if ip.IsFree() {
			continue
		}
		for _, bn := range ip.Used() {
			if bn >= common.NDATABLK {
				return fmt.Errorf("%w: inode %d points past the disk (%d)",
					ErrCorrupt, ip.Inum, bn)
			}
			if fs.alloc.IsFree(bn) {
				return fmt.Errorf("%w: inode %d points to free block %d",
					ErrCorrupt, ip.Inum, bn)
			}
			if o, ok := owner[bn]; ok {
				return fmt.Errorf("%w: block %d shared by inodes %d and %d",
					ErrCorrupt, bn, o, ip.Inum)
			}
			owner[bn] = ip.Inum
		}
	}
	bitmap := fs.alloc.Bitmap()
	for bn := uint64(0); bn < fs.alloc.Max(); bn++ {
		if bitmap[bn/8]&(1<<(bn%8)) == 0 {
			continue
		}
		if _, ok := owner[bn]; !ok {
			return fmt.Errorf("%w: block %d allocated but unreachable",
				ErrCorrupt, bn)
		}
	}
	util.DPrintf(1, "Check: %d blocks owned\n", len(owner))
	return nil
}
