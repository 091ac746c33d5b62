package script

import (
	"github.com/mit-pdos/go-simplefs/fs"
)

// Script is an ordered workload run against one file system
type Script struct {
	// Name of the script (required)
	Name string `mapstructure:"name"`

	// Optional description of the script
	Description string `mapstructure:"description,omitempty"`

	// Options the file system is built with
	Options fs.Opts `mapstructure:"options,omitempty"`

	// Ordered list of steps to execute
	Steps []Step `mapstructure:"steps"`
}

// Step is one file-system call, optionally repeated
type Step struct {
	// Op is one of create, write, close, open, read, delete, check, blocks
	Op string `mapstructure:"op"`

	// File names the target; descriptors are tracked by this name
	File string `mapstructure:"file,omitempty"`

	// Data is the content for write
	Data string `mapstructure:"data,omitempty"`

	// Repeat expands the step Repeat times with .I = From, From+Every, ...
	Repeat int `mapstructure:"repeat,omitempty"`
	From   int `mapstructure:"from,omitempty"`
	Every  int `mapstructure:"every,omitempty"`

	Expect *Expect `mapstructure:"expect,omitempty"`
}

// Expect lists what a step must observe. Unset fields are not checked.
type Expect struct {
	// Blocks is the allocated block count after the step
	Blocks *uint64 `mapstructure:"blocks,omitempty"`

	// Content is what read must return
	Content *string `mapstructure:"content,omitempty"`

	// Error is the error kind the step must fail with (see ErrorKinds)
	Error string `mapstructure:"error,omitempty"`

	// Fd is the descriptor create or open must return; -1 for not found
	Fd *int64 `mapstructure:"fd,omitempty"`
}

// Result summarizes a completed run
type Result struct {
	Script string
	Steps  int
	Blocks uint64
	Files  []fs.FileInfo
}
