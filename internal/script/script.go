// Package script loads and runs scripted workloads against a file system.
//
// A script is a YAML, JSON or TOML document naming a list of steps. File and
// Data are text/template strings; in a repeated step .I is the iteration
// value and upto N yields 0..N.
package script

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/spf13/viper"

	"github.com/mit-pdos/go-simplefs/fs"
)

var ErrExpectation = errors.New("expectation failed")

// ErrorKinds maps the names usable in Expect.Error to file-system errors.
var ErrorKinds = map[string]error{
	"exists":        fs.ErrExists,
	"table_full":    fs.ErrTableFull,
	"bad_fd":        fs.ErrBadFd,
	"not_found":     fs.ErrNotFound,
	"file_too_big":  fs.ErrFileTooBig,
	"no_space":      fs.ErrNoSpace,
	"corrupt":       fs.ErrCorrupt,
	"invalid_name":  fs.ErrInvalidName,
	"name_too_long": fs.ErrNameTooLong,
}

var validOps = []string{
	"create", "write", "close", "open", "read", "delete", "check", "blocks",
}

func isValidOp(op string) bool {
	for _, o := range validOps {
		if op == o {
			return true
		}
	}
	return false
}

func needsFile(op string) bool {
	return op != "check" && op != "blocks"
}

// Load reads a script file. The format follows the file extension and
// defaults to YAML.
func Load(filePath string) (*Script, error) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("script file not found: %s", filePath)
	}

	v := viper.New()
	v.SetConfigFile(filePath)
	ext := strings.ToLower(filepath.Ext(filePath))
	if ext != "" {
		v.SetConfigType(ext[1:])
	} else {
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading script file: %w", err)
	}
	s := &Script{}
	if err := v.Unmarshal(s); err != nil {
		return nil, fmt.Errorf("error parsing script: %w", err)
	}
	return s, nil
}

// Validate reports every structural problem in s.
func Validate(s *Script) []error {
	var errs []error

	if s.Name == "" {
		errs = append(errs, fmt.Errorf("script name is required"))
	}
	if len(s.Steps) == 0 {
		errs = append(errs, fmt.Errorf("script must contain at least one step"))
	}

	for i, step := range s.Steps {
		if !isValidOp(step.Op) {
			errs = append(errs, fmt.Errorf("step %d: invalid op '%s'", i+1, step.Op))
			continue
		}
		if needsFile(step.Op) && step.File == "" {
			errs = append(errs, fmt.Errorf("step %d (%s): file is required", i+1, step.Op))
		}
		if step.Repeat < 0 || step.Every < 0 {
			errs = append(errs, fmt.Errorf("step %d (%s): negative repeat", i+1, step.Op))
		}
		if step.Repeat == 0 && (step.From != 0 || step.Every != 0) {
			errs = append(errs, fmt.Errorf("step %d (%s): from/every without repeat", i+1, step.Op))
		}
		if e := step.Expect; e != nil {
			if _, ok := ErrorKinds[e.Error]; e.Error != "" && !ok {
				errs = append(errs, fmt.Errorf("step %d (%s): unknown error kind '%s'", i+1, step.Op, e.Error))
			}
			if e.Content != nil && step.Op != "read" {
				errs = append(errs, fmt.Errorf("step %d (%s): content is only checked by read", i+1, step.Op))
			}
			if e.Fd != nil && step.Op != "create" && step.Op != "open" {
				errs = append(errs, fmt.Errorf("step %d (%s): fd is only checked by create and open", i+1, step.Op))
			}
		}
	}
	return errs
}

var funcs = template.FuncMap{
	"upto": func(n int) []int {
		s := make([]int, n+1)
		for i := range s {
			s[i] = i
		}
		return s
	},
}

func render(text string, i int) (string, error) {
	if !strings.Contains(text, "{{") {
		return text, nil
	}
	tmpl, err := template.New("inline").Funcs(funcs).Parse(text)
	if err != nil {
		return "", err
	}
	var buffer bytes.Buffer
	if err := tmpl.Execute(&buffer, map[string]int{"I": i}); err != nil {
		return "", err
	}
	return buffer.String(), nil
}

func renderStep(step Step, i int) (Step, error) {
	var err error
	out := step
	out.Repeat, out.From, out.Every = 0, 0, 0
	if out.File, err = render(step.File, i); err != nil {
		return out, fmt.Errorf("file: %w", err)
	}
	if out.Data, err = render(step.Data, i); err != nil {
		return out, fmt.Errorf("data: %w", err)
	}
	if step.Expect != nil && step.Expect.Content != nil {
		e := *step.Expect
		c, err := render(*e.Content, i)
		if err != nil {
			return out, fmt.Errorf("content: %w", err)
		}
		e.Content = &c
		out.Expect = &e
	}
	return out, nil
}

// Expand unrolls repeated steps and renders their templates.
func Expand(s *Script) ([]Step, error) {
	var steps []Step
	for n, step := range s.Steps {
		count, every := step.Repeat, step.Every
		if count == 0 {
			count = 1
		}
		if every == 0 {
			every = 1
		}
		for k := 0; k < count; k++ {
			st, err := renderStep(step, step.From+k*every)
			if err != nil {
				return nil, fmt.Errorf("step %d (%s): %w", n+1, step.Op, err)
			}
			steps = append(steps, st)
		}
	}
	return steps, nil
}
