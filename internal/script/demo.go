package script

import (
	"fmt"
	"strconv"

	"github.com/mit-pdos/go-simplefs/common"
	"github.com/mit-pdos/go-simplefs/util"
)

const (
	workloadFile = "file{{.I}}.txt"
	workloadData = "{{range upto .I}}This is some text {{.}}.  {{end}}"
)

// WorkloadBlocks is the number of blocks file i of the workload needs: its
// content is one sentence for each of 0..i.
func WorkloadBlocks(i int) uint64 {
	var n uint64
	for j := 0; j <= i; j++ {
		n += uint64(len("This is some text .  ") + len(strconv.Itoa(j)))
	}
	return util.RoundUp(n, common.BlockSize)
}

// Workload creates, writes and closes n files, file i holding the sentences
// for 0..i. With deleteEvens every even-numbered file is then deleted. The
// block counts are checked after each phase.
func Workload(n int, deleteEvens bool) *Script {
	var total, evens uint64
	for i := 0; i < n; i++ {
		total += WorkloadBlocks(i)
		if i%2 == 0 {
			evens += WorkloadBlocks(i)
		}
	}

	s := &Script{
		Name:        fmt.Sprintf("workload-%d", n),
		Description: "create, write and close numbered files",
	}
	for i := 0; i < n; i++ {
		for _, op := range []string{"create", "write", "close"} {
			st := Step{Op: op, File: workloadFile, Repeat: 1, From: i}
			if op == "write" {
				st.Data = workloadData
			}
			s.Steps = append(s.Steps, st)
		}
	}
	s.Steps = append(s.Steps, Step{Op: "blocks", Expect: &Expect{Blocks: &total}})

	if deleteEvens {
		remain := total - evens
		s.Steps = append(s.Steps,
			Step{Op: "delete", File: workloadFile, Repeat: (n + 1) / 2, Every: 2},
			Step{Op: "blocks", Expect: &Expect{Blocks: &remain}},
		)
	}
	s.Steps = append(s.Steps, Step{Op: "check"})
	return s
}

// Demo is the 42-file workload with every other file deleted.
func Demo() *Script {
	s := Workload(42, true)
	s.Name = "demo"
	return s
}
