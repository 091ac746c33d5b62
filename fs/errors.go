package fs

import (
	"errors"

	"github.com/mit-pdos/go-simplefs/alloc"
	"github.com/mit-pdos/go-simplefs/inode"
)

var (
	ErrExists     = errors.New("file already exists")
	ErrTableFull  = errors.New("inode table full")
	ErrBadFd      = errors.New("descriptor does not match an open file")
	ErrNotFound   = errors.New("file not found")
	ErrFileTooBig = errors.New("data exceeds direct-pointer capacity")
	ErrCorrupt    = errors.New("file system inconsistent")

	ErrNoSpace     = alloc.ErrNoSpace
	ErrInvalidName = inode.ErrInvalidName
	ErrNameTooLong = inode.ErrNameTooLong
)
