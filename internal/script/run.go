package script

import (
	"errors"
	"fmt"

	"github.com/mit-pdos/go-simplefs/common"
	"github.com/mit-pdos/go-simplefs/fs"
	"github.com/mit-pdos/go-simplefs/inode"
	"github.com/mit-pdos/go-simplefs/internal/logger"
)

type runner struct {
	fsys *fs.FileSys
	fds  map[string]common.Fd
}

func (r *runner) fd(name string) common.Fd {
	fd, ok := r.fds[name]
	if !ok {
		return common.NULLFD
	}
	return fd
}

// exec performs one step and returns the descriptor it produced, if any,
// and what read returned.
func (r *runner) exec(step Step) (common.Fd, string, error) {
	// descriptors are keyed the way the file system matches names
	name := inode.TrimName(step.File)
	switch step.Op {
	case "create":
		fd, err := r.fsys.Create(step.File)
		if err == nil {
			r.track(name, fd)
		}
		return fd, "", err
	case "open":
		fd, err := r.fsys.Open(step.File)
		if err == nil && fd != common.NULLFD {
			r.track(name, fd)
		} else if err == nil {
			r.forget(name)
		}
		return fd, "", err
	case "close":
		err := r.fsys.Close(r.fd(name))
		if err == nil {
			delete(r.fds, name)
		}
		return common.NULLFD, "", err
	case "write":
		return common.NULLFD, "", r.fsys.Write(r.fd(name), step.Data)
	case "read":
		data, err := r.fsys.Read(r.fd(name))
		return common.NULLFD, data, err
	case "delete":
		err := r.fsys.Delete(step.File)
		if err == nil {
			r.forget(name)
		}
		return common.NULLFD, "", err
	case "check":
		return common.NULLFD, "", r.fsys.Check()
	case "blocks":
		return common.NULLFD, "", nil
	}
	return common.NULLFD, "", fmt.Errorf("invalid op '%s'", step.Op)
}

// track records fd for name, forgetting any other name that held the same
// descriptor (it was replaced).
func (r *runner) track(name string, fd common.Fd) {
	for n, f := range r.fds {
		if f == fd {
			delete(r.fds, n)
		}
	}
	if r.fsys.Opts().SingleHandle {
		r.forgetAll()
	}
	r.fds[name] = fd
}

// forget mirrors the handles a failed open or a delete drops.
func (r *runner) forget(name string) {
	if r.fsys.Opts().SingleHandle {
		r.forgetAll()
		return
	}
	delete(r.fds, name)
}

func (r *runner) forgetAll() {
	for n := range r.fds {
		delete(r.fds, n)
	}
}

func (r *runner) verify(step Step, fd common.Fd, data string, err error) error {
	e := step.Expect
	if e == nil || e.Error == "" {
		if err != nil {
			return err
		}
	} else {
		want := ErrorKinds[e.Error]
		if !errors.Is(err, want) {
			return fmt.Errorf("%w: want error %s, got %v", ErrExpectation, e.Error, err)
		}
	}
	if e == nil {
		return nil
	}
	if e.Fd != nil && int64(fd) != *e.Fd {
		return fmt.Errorf("%w: want fd %d, got %d", ErrExpectation, *e.Fd, fd)
	}
	if e.Content != nil && data != *e.Content {
		return fmt.Errorf("%w: want content %q, got %q", ErrExpectation, *e.Content, data)
	}
	if e.Blocks != nil {
		if n := r.fsys.NumBlocksAllocated(); n != *e.Blocks {
			return fmt.Errorf("%w: want %d blocks allocated, got %d", ErrExpectation, *e.Blocks, n)
		}
	}
	return nil
}

// Run executes s against fsys, stopping at the first step that fails or
// misses an expectation.
func Run(fsys *fs.FileSys, s *Script) (Result, error) {
	res := Result{Script: s.Name}
	steps, err := Expand(s)
	if err != nil {
		return res, err
	}

	logger.LogInfo("Starting script", map[string]interface{}{
		"script": s.Name,
		"steps":  len(steps),
	})

	r := &runner{fsys: fsys, fds: make(map[string]common.Fd)}
	for i, step := range steps {
		fd, data, opErr := r.exec(step)
		logger.LogDebug(fmt.Sprintf("Step %d/%d: %s", i+1, len(steps), step.Op),
			map[string]interface{}{
				"file":   step.File,
				"fd":     fd,
				"blocks": fsys.NumBlocksAllocated(),
			})
		if err := r.verify(step, fd, data, opErr); err != nil {
			return res, fmt.Errorf("step %d (%s %q): %w", i+1, step.Op, step.File, err)
		}
		res.Steps++
	}

	res.Blocks = fsys.NumBlocksAllocated()
	res.Files, err = fsys.List()
	if err != nil {
		return res, err
	}
	logger.LogInfo("Script completed", map[string]interface{}{
		"script": s.Name,
		"blocks": res.Blocks,
		"files":  len(res.Files),
	})
	return res, nil
}

// RunNew runs s on a fresh in-memory file system built with s.Options.
func RunNew(s *Script) (*fs.FileSys, Result, error) {
	fsys := fs.MkMemFileSys(s.Options)
	res, err := Run(fsys, s)
	return fsys, res, err
}
