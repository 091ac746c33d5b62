// Package listing renders the file table in text, JSON or plist form.
package listing

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"howett.net/plist"

	"github.com/mit-pdos/go-simplefs/fs"
)

var ErrUnknownFormat = errors.New("unknown listing format")

const (
	Text  = "text"
	JSON  = "json"
	Plist = "plist"
)

// Listing is a snapshot of a file system's table.
type Listing struct {
	Blocks uint64        `json:"blocks_allocated" plist:"blocks_allocated"`
	Files  []fs.FileInfo `json:"files" plist:"files"`
}

// Take snapshots fsys.
func Take(fsys *fs.FileSys) (Listing, error) {
	files, err := fsys.List()
	if err != nil {
		return Listing{}, err
	}
	if files == nil {
		files = []fs.FileInfo{}
	}
	return Listing{Blocks: fsys.NumBlocksAllocated(), Files: files}, nil
}

func Write(w io.Writer, l Listing, format string) error {
	switch format {
	case Text, "":
		return writeText(w, l)
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(l)
	case Plist:
		enc := plist.NewEncoderForFormat(w, plist.XMLFormat)
		enc.Indent("\t")
		return enc.Encode(l)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

func writeText(w io.Writer, l Listing) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "INUM\tNAME\tSIZE\tBLOCKS\tOPEN")
	for _, f := range l.Files {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%v\t%v\n", f.Inum, f.Name, f.Size, f.Blocks, f.Open)
	}
	fmt.Fprintf(tw, "%d files, %d blocks allocated\n", len(l.Files), l.Blocks)
	return tw.Flush()
}
