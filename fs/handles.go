package fs

import (
	"sort"

	"github.com/mit-pdos/go-simplefs/common"
	"github.com/mit-pdos/go-simplefs/inode"
)

// handles maps descriptors to the in-memory state of open inodes. In single
// mode it holds at most one inode: opening or creating another replaces it.
type handles struct {
	single bool
	open   map[common.Inum]*inode.Inode
}

func mkHandles(single bool) *handles {
	return &handles{
		single: single,
		open:   make(map[common.Inum]*inode.Inode),
	}
}

func (h *handles) get(fd common.Fd) (*inode.Inode, bool) {
	if fd < 0 {
		return nil, false
	}
	ip, ok := h.open[fd.Inum()]
	return ip, ok
}

func (h *handles) lookup(inum common.Inum) *inode.Inode {
	return h.open[inum]
}

func (h *handles) put(ip *inode.Inode) {
	if h.single {
		h.dropAll()
	}
	h.open[ip.Inum] = ip
}

func (h *handles) drop(inum common.Inum) {
	delete(h.open, inum)
}

func (h *handles) dropAll() {
	for inum := range h.open {
		delete(h.open, inum)
	}
}

func (h *handles) fds() []common.Fd {
	fds := make([]common.Fd, 0, len(h.open))
	for inum := range h.open {
		fds = append(fds, common.MkFd(inum))
	}
	sort.Slice(fds, func(i, j int) bool { return fds[i] < fds[j] })
	return fds
}
