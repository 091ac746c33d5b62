package fs

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/mit-pdos/go-simplefs/common"
	"github.com/mit-pdos/go-simplefs/inode"
	"github.com/mit-pdos/go-simplefs/op"
	"github.com/mit-pdos/go-simplefs/util"
)

// Create claims the first free inode slot for name and returns it open. The
// new inode is not written to the table until Close. Names are trimmed; an
// empty name or one containing NUL fails with ErrInvalidName, and one longer
// than MAXNAMELEN with ErrNameTooLong.
func (fs *FileSys) Create(name string) (common.Fd, error) {
	if err := inode.ValidName(name); err != nil {
		return common.NULLFD, err
	}
	name = inode.TrimName(name)

	fs.mu.Lock()
	defer fs.mu.Unlock()

	var free common.Inum
	var haveFree bool
	for i := uint64(0); i < common.NINODE; i++ {
		ip, err := fs.lookupSlot(common.Inum(i))
		if err != nil {
			return common.NULLFD, err
		}
		if ip.IsFree() {
			if !haveFree {
				free = ip.Inum
				haveFree = true
			}
			continue
		}
		if ip.Name == name {
			return common.NULLFD, fmt.Errorf("%w: %q", ErrExists, name)
		}
	}
	if !haveFree {
		return common.NULLFD, fmt.Errorf("%w: cannot create %q", ErrTableFull, name)
	}

	ip := inode.MkFile(free, name)
	fs.handles.put(ip)
	util.DPrintf(1, "Create %q -> %d\n", name, free)
	return common.MkFd(free), nil
}

// Open returns the descriptor of the file called name, or NULLFD if there
// is none. Opening a file that is already open returns the same descriptor;
// with SingleHandle the table copy replaces the open one.
func (fs *FileSys) Open(name string) (common.Fd, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	ip, err := fs.findName(name)
	if err != nil {
		return common.NULLFD, err
	}
	if ip == nil {
		if fs.opts.SingleHandle {
			fs.handles.dropAll()
		}
		util.DPrintf(1, "Open %q: not found\n", name)
		return common.NULLFD, nil
	}
	if fs.opts.SingleHandle || fs.handles.lookup(ip.Inum) == nil {
		fs.handles.put(ip)
	}
	util.DPrintf(1, "Open %q -> %d\n", name, ip.Inum)
	return common.MkFd(ip.Inum), nil
}

// Close writes the open inode back to its table slot and releases fd.
func (fs *FileSys) Close(fd common.Fd) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	ip, ok := fs.handles.get(fd)
	if !ok {
		return fmt.Errorf("%w: close %d", ErrBadFd, fd)
	}
	o := op.Begin(fs.store)
	o.OverWriteInode(ip)
	o.Commit()
	fs.handles.drop(ip.Inum)
	util.DPrintf(1, "Close %d: %v\n", fd, ip)
	return nil
}

func (fs *FileSys) readPtrs(ip *inode.Inode) []common.Bnum {
	if fs.opts.ReadAllPointers {
		return ip.Blks[:]
	}
	return ip.Used()
}

// Read returns the file's content: its blocks in pointer order, each with
// its zero padding trimmed.
func (fs *FileSys) Read(fd common.Fd) (string, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	ip, ok := fs.handles.get(fd)
	if !ok {
		return "", fmt.Errorf("%w: read %d", ErrBadFd, fd)
	}
	var sb strings.Builder
	for i, bn := range fs.readPtrs(ip) {
		data, err := fs.store.ReadBlock(bn)
		if err != nil {
			return "", fmt.Errorf("read %d pointer %d: %w", fd, i, err)
		}
		sb.Write(bytes.TrimRight(data, "\x00"))
	}
	return sb.String(), nil
}

// checkPtrs verifies that ip's pointers are in range, allocated and
// distinct, so they can be released without touching another file.
func (fs *FileSys) checkPtrs(ip *inode.Inode) error {
	seen := make(map[common.Bnum]bool)
	for _, bn := range ip.Used() {
		if bn >= common.NDATABLK {
			return fmt.Errorf("%w: inode %d points past the disk (%d)",
				ErrCorrupt, ip.Inum, bn)
		}
		if fs.alloc.IsFree(bn) {
			return fmt.Errorf("%w: inode %d points to free block %d",
				ErrCorrupt, ip.Inum, bn)
		}
		if seen[bn] {
			return fmt.Errorf("%w: inode %d lists block %d twice",
				ErrCorrupt, ip.Inum, bn)
		}
		seen[bn] = true
	}
	return nil
}

func (fs *FileSys) releaseBlocks(ip *inode.Inode) {
	for _, bn := range ip.Used() {
		if err := fs.alloc.FreeNum(bn); err != nil {
			// checkPtrs ran first
			panic(err)
		}
	}
}

// Write replaces the file's content with data. It needs
// ceil(len(data)/BlockSize) blocks, taken first-fit from block 0; the file's
// previous blocks are released first unless KeepBlocksOnRewrite is set. On
// error nothing changes.
func (fs *FileSys) Write(fd common.Fd, data string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	ip, ok := fs.handles.get(fd)
	if !ok {
		return fmt.Errorf("%w: write %d", ErrBadFd, fd)
	}
	n := util.RoundUp(uint64(len(data)), common.BlockSize)
	if n > common.NDIRECT {
		return fmt.Errorf("%w: %d bytes need %d blocks, max %d", ErrFileTooBig,
			len(data), n, common.NDIRECT)
	}

	var release uint64
	if !fs.opts.KeepBlocksOnRewrite {
		if err := fs.checkPtrs(ip); err != nil {
			return err
		}
		release = ip.Size
	}
	if fs.alloc.NumFree()+release < n {
		return fmt.Errorf("%w: need %d blocks, %d free", ErrNoSpace, n,
			fs.alloc.NumFree()+release)
	}
	if !fs.opts.KeepBlocksOnRewrite {
		fs.releaseBlocks(ip)
	}

	blks, err := fs.alloc.AllocRun(n)
	if err != nil {
		// the free count was checked under fs.mu
		panic(err)
	}

	o := op.Begin(fs.store)
	for i, bn := range blks {
		start := uint64(i) * common.BlockSize
		end := util.Min(start+common.BlockSize, uint64(len(data)))
		if err := o.OverWriteBlock(bn, []byte(data[start:end])); err != nil {
			panic(err)
		}
	}
	o.Commit()

	copy(ip.Blks[:], blks)
	ip.Size = n
	util.DPrintf(1, "Write %d: %d bytes -> blocks %v\n", fd, len(data), blks)
	return nil
}

// Delete removes the file called name, releasing its blocks and its inode
// slot. Deleting a name that does not exist does nothing.
func (fs *FileSys) Delete(name string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	ip, err := fs.findName(name)
	if err != nil {
		return err
	}
	if ip == nil {
		util.DPrintf(1, "Delete %q: not found\n", name)
		return nil
	}
	if err := fs.checkPtrs(ip); err != nil {
		return err
	}
	freed := ip.Used()
	util.DPrintf(1, "Delete %q: inode %d blocks %v\n", name, ip.Inum, freed)
	fs.releaseBlocks(ip)

	ip.Clear()
	o := op.Begin(fs.store)
	o.OverWriteInode(ip)
	o.Commit()

	if fs.opts.SingleHandle {
		fs.handles.dropAll()
	} else {
		fs.handles.drop(ip.Inum)
	}
	return nil
}
