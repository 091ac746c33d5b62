// Package image exports a snapshot of the raw file-system region.
package image

import (
	"compress/gzip"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dsnet/compress/bzip2"
	"github.com/ulikunitz/xz"
	"golang.org/x/crypto/blake2b"

	"github.com/mit-pdos/go-simplefs/blkstore"
)

var ErrUnknownCompression = errors.New("unknown compression")

type Compression string

const (
	None  Compression = "none"
	Gzip  Compression = "gzip"
	Bzip2 Compression = "bzip2"
	Xz    Compression = "xz"
)

// Ext is the file suffix conventionally used for c.
func (c Compression) Ext() string {
	switch c {
	case Gzip:
		return ".gz"
	case Bzip2:
		return ".bz2"
	case Xz:
		return ".xz"
	}
	return ""
}

func ParseCompression(s string) (Compression, error) {
	switch c := Compression(s); c {
	case None, Gzip, Bzip2, Xz:
		return c, nil
	case "":
		return None, nil
	}
	return None, fmt.Errorf("%w: %q", ErrUnknownCompression, s)
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

func compressor(w io.Writer, c Compression) (io.WriteCloser, error) {
	switch c {
	case None, "":
		return nopCloser{w}, nil
	case Gzip:
		return gzip.NewWriter(w), nil
	case Bzip2:
		return bzip2.NewWriter(w, nil)
	case Xz:
		return xz.NewWriter(w)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCompression, string(c))
}

// Export writes the store's raw image to w through compression c.
func Export(store *blkstore.Store, w io.Writer, c Compression) error {
	cw, err := compressor(w, c)
	if err != nil {
		return err
	}
	if err := store.WriteImage(cw); err != nil {
		cw.Close()
		return fmt.Errorf("failed to export image: %w", err)
	}
	if err := cw.Close(); err != nil {
		return fmt.Errorf("failed to finish %s stream: %w", c, err)
	}
	return nil
}

// ExportFile writes the image to path, creating or truncating it.
func ExportFile(store *blkstore.Store, path string, c Compression) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Export(store, f, c); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Digest is the hex BLAKE2b-256 of the raw image.
func Digest(store *blkstore.Store) (string, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	if err := store.WriteImage(h); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
