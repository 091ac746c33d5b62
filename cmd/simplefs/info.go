package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"howett.net/plist"

	"github.com/mit-pdos/go-simplefs/fs"
	"github.com/mit-pdos/go-simplefs/internal/listing"
)

func writeGeometry(cmd *cobra.Command, g fs.Geometry, format string) error {
	w := cmd.OutOrStdout()
	switch format {
	case listing.Text, "":
		tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
		fmt.Fprintf(tw, "block size\t%d\n", g.BlockSize)
		fmt.Fprintf(tw, "inodes\t%d\n", g.NInode)
		fmt.Fprintf(tw, "direct pointers\t%d\n", g.NDirect)
		fmt.Fprintf(tw, "data blocks\t%d\n", g.NDataBlk)
		fmt.Fprintf(tw, "max file size\t%d\n", g.MaxFileSize)
		fmt.Fprintf(tw, "max name length\t%d\n", g.MaxNameLen)
		return tw.Flush()
	case listing.JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(g)
	case listing.Plist:
		enc := plist.NewEncoderForFormat(w, plist.XMLFormat)
		enc.Indent("\t")
		return enc.Encode(g)
	}
	return fmt.Errorf("%w: %q", listing.ErrUnknownFormat, format)
}
