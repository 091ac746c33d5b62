// Package inode defines the on-disk inode record: a tagged slot that is
// either free or holds a file's name, block count and direct pointers.
package inode

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/tchajed/marshal"

	"github.com/mit-pdos/go-simplefs/common"
)

var (
	ErrBadInode    = errors.New("malformed inode record")
	ErrInvalidName = errors.New("invalid file name")
	ErrNameTooLong = errors.New("file name too long")
)

type Kind uint64

const (
	// KindFree is zero so that a freshly formatted table is all free.
	KindFree Kind = 0
	KindFile Kind = 1
)

func (k Kind) String() string {
	switch k {
	case KindFree:
		return "free"
	case KindFile:
		return "file"
	}
	return fmt.Sprintf("kind(%d)", uint64(k))
}

type Inode struct {
	Inum common.Inum
	Kind Kind
	Name string
	Size uint64 // in blocks
	Blks [common.NDIRECT]common.Bnum
}

func MkFree(inum common.Inum) *Inode {
	return &Inode{Inum: inum, Kind: KindFree}
}

func MkFile(inum common.Inum, name string) *Inode {
	return &Inode{Inum: inum, Kind: KindFile, Name: TrimName(name)}
}

func (ip *Inode) String() string {
	if ip.IsFree() {
		return fmt.Sprintf("# %d free", ip.Inum)
	}
	return fmt.Sprintf("# %d %q size %d blks %v", ip.Inum, ip.Name, ip.Size,
		ip.Used())
}

func (ip *Inode) IsFree() bool {
	return ip.Kind == KindFree
}

// Matches reports whether ip is an occupied slot named name, comparing
// trimmed names.
func (ip *Inode) Matches(name string) bool {
	return !ip.IsFree() && ip.Name == TrimName(name)
}

// Used returns the pointers that currently reference file data.
func (ip *Inode) Used() []common.Bnum {
	n := ip.Size
	if n > common.NDIRECT {
		n = common.NDIRECT
	}
	return ip.Blks[:n]
}

// Clear turns ip into a free slot with zeroed pointers.
func (ip *Inode) Clear() {
	*ip = *MkFree(ip.Inum)
}

func (ip *Inode) Encode() []byte {
	enc := marshal.NewEnc(common.INODESZ)
	enc.PutInt(uint64(ip.Kind))
	enc.PutInt(ip.Size)
	for _, bn := range ip.Blks {
		enc.PutInt(bn)
	}
	data := enc.Finish()
	copy(data[common.INODEHDR:], ip.Name)
	return data
}

func Decode(data []byte, inum common.Inum) (*Inode, error) {
	if uint64(len(data)) != common.INODESZ {
		return nil, fmt.Errorf("%w: %d bytes", ErrBadInode, len(data))
	}
	dec := marshal.NewDec(data)
	ip := &Inode{Inum: inum}
	ip.Kind = Kind(dec.GetInt())
	ip.Size = dec.GetInt()
	for i := range ip.Blks {
		ip.Blks[i] = dec.GetInt()
	}
	name := data[common.INODEHDR:]
	if i := bytes.IndexByte(name, 0); i >= 0 {
		name = name[:i]
	}
	ip.Name = string(name)

	if ip.Kind != KindFree && ip.Kind != KindFile {
		return nil, fmt.Errorf("%w: inode %d has %v", ErrBadInode, inum, ip.Kind)
	}
	if ip.Size > common.NDIRECT {
		return nil, fmt.Errorf("%w: inode %d size %d", ErrBadInode, inum, ip.Size)
	}
	return ip, nil
}

func TrimName(name string) string {
	return strings.TrimSpace(name)
}

// ValidName checks that name, once trimmed, is non-empty and fits the
// record's name field.
func ValidName(name string) error {
	n := TrimName(name)
	if n == "" {
		return ErrInvalidName
	}
	if strings.IndexByte(n, 0) >= 0 {
		return fmt.Errorf("%w: contains NUL", ErrInvalidName)
	}
	if uint64(len(n)) > common.MAXNAMELEN {
		return fmt.Errorf("%w: %d bytes, max %d", ErrNameTooLong, len(n),
			common.MAXNAMELEN)
	}
	return nil
}
