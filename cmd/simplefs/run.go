package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/tchajed/goose/machine/disk"

	"github.com/mit-pdos/go-simplefs/blkstore"
	"github.com/mit-pdos/go-simplefs/common"
	"github.com/mit-pdos/go-simplefs/fs"
	"github.com/mit-pdos/go-simplefs/internal/config"
	"github.com/mit-pdos/go-simplefs/internal/image"
	"github.com/mit-pdos/go-simplefs/internal/listing"
	"github.com/mit-pdos/go-simplefs/internal/logger"
	"github.com/mit-pdos/go-simplefs/internal/script"
)

// runFlags are the output options shared by run and demo.
type runFlags struct {
	listFormat string
	dump       string
	compress   string
	latency    time.Duration
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.listFormat, "list-format", "", "Listing format: text, json or plist")
	cmd.Flags().StringVar(&f.dump, "dump", "", "write the final image to this path")
	cmd.Flags().StringVar(&f.compress, "compress", "", "Image compression: none, gzip, bzip2 or xz")
	cmd.Flags().DurationVar(&f.latency, "latency", 0, "delay added to every device block access")
}

// resolve fills unset flags from the configuration.
func (f *runFlags) resolve(cmd *cobra.Command) {
	if !cmd.Flags().Changed("list-format") {
		f.listFormat = config.Instance.Export.ListFormat
	}
	if !cmd.Flags().Changed("compress") {
		f.compress = config.Instance.Export.Compression
	}
	if !cmd.Flags().Changed("latency") {
		f.latency = config.Instance.Disk.Latency
	}
}

func mergeOpts(a, b fs.Opts) fs.Opts {
	return fs.Opts{
		SingleHandle:        a.SingleHandle || b.SingleHandle,
		ReadAllPointers:     a.ReadAllPointers || b.ReadAllPointers,
		KeepBlocksOnRewrite: a.KeepBlocksOnRewrite || b.KeepBlocksOnRewrite,
	}
}

func runScript(cmd *cobra.Command, s *script.Script, f *runFlags) error {
	f.resolve(cmd)
	c, err := image.ParseCompression(f.compress)
	if err != nil {
		return err
	}

	if errs := script.Validate(s); len(errs) > 0 {
		for _, err := range errs {
			logger.LogError("Script validation error", err, nil)
		}
		return fmt.Errorf("script validation failed with %d errors", len(errs))
	}

	d := blkstore.WithLatency(disk.NewMemDisk(common.DISKBLKS), f.latency)
	store, err := blkstore.MkStore(d)
	if err != nil {
		return err
	}
	opts := mergeOpts(config.Instance.FS, s.Options)
	if opts != (fs.Opts{}) {
		logger.LogWarn("Legacy file-system behavior enabled", map[string]interface{}{
			"single_handle":          opts.SingleHandle,
			"read_all_pointers":      opts.ReadAllPointers,
			"keep_blocks_on_rewrite": opts.KeepBlocksOnRewrite,
		})
	}
	fsys, err := fs.MkFileSys(store, opts)
	if err != nil {
		return err
	}

	start := time.Now()
	res, err := script.Run(fsys, s)
	if err != nil {
		logger.LogError("Script failed", err, map[string]interface{}{
			"script": s.Name,
			"steps":  res.Steps,
		})
		return err
	}
	logger.LogInfo("Script finished", map[string]interface{}{
		"script":  s.Name,
		"steps":   res.Steps,
		"elapsed": time.Since(start).String(),
	})

	l, err := listing.Take(fsys)
	if err != nil {
		return err
	}
	if err := listing.Write(cmd.OutOrStdout(), l, f.listFormat); err != nil {
		return err
	}

	if f.dump != "" {
		if err := image.ExportFile(store, f.dump, c); err != nil {
			return err
		}
		digest, err := image.Digest(store)
		if err != nil {
			return err
		}
		logger.LogInfo("Image written", map[string]interface{}{
			"path":        f.dump,
			"compression": string(c),
			"blake2b":     digest,
		})
	}
	return nil
}

func newRunCmd() *cobra.Command {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run <script>",
		Short: "Run a workload script (YAML, JSON or TOML)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := script.Load(args[0])
			if err != nil {
				return err
			}
			return runScript(cmd, s, f)
		},
	}
	f.register(cmd)
	return cmd
}

func newDemoCmd() *cobra.Command {
	f := &runFlags{}
	var n int
	var keep bool
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Create numbered files, then delete every other one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if n < 1 || uint64(n) > common.NINODE {
				return fmt.Errorf("--files must be between 1 and %d", common.NINODE)
			}
			s := script.Demo()
			if cmd.Flags().Changed("files") || keep {
				s = script.Workload(n, !keep)
				s.Name = "demo"
			}
			return runScript(cmd, s, f)
		},
	}
	f.register(cmd)
	cmd.Flags().IntVar(&n, "files", 42, "number of files to create")
	cmd.Flags().BoolVar(&keep, "keep", false, "skip deleting the even-numbered files")
	return cmd
}

func newInfoCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Print the file-system geometry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeGeometry(cmd, fs.Layout(), format)
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text, json or plist")
	return cmd
}
