// Package operations maps operation names to file transforms.
package operations

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"pixbatch/internal/batch"
	"pixbatch/internal/common"
)

// ApplyFunc reads src and writes exactly one file at dst
type ApplyFunc func(ctx context.Context, src, dst string, p Params) (batch.Output, error)

// NameFunc derives the output file name of one input
type NameFunc func(inputPath string, p Params, seq Sequence) (string, error)

// Operation is a registered transform
type Operation struct {
	Name        string
	Description string
	// Subdir is the default workspace subdirectory for outputs
	Subdir     string
	Validate   func(p Params) error
	OutputName NameFunc
	Apply      ApplyFunc
}

// Info describes an operation for listings
type Info struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Subdir      string `json:"subdir"`
}

// Transform binds params to the operation, producing a batch transform.
// Failures are wrapped in a TransformError.
func (op Operation) Transform(p Params) batch.Transform {
	return func(ctx context.Context, item batch.WorkItem) (batch.Output, error) {
		if err := batch.Checkpoint(ctx); err != nil {
			return batch.Output{}, err
		}
		output, err := op.Apply(ctx, item.Source(), item.OutputPath, p)
		if err != nil {
			if errors.Is(err, batch.ErrCancelled) {
				return batch.Output{}, err
			}
			return batch.Output{}, NewTransformError(op.Name, item.InputPath, err)
		}
		if output.Path == "" {
			output.Path = item.OutputPath
		}
		return output, nil
	}
}

// CheckParams runs the operation's validator, if any
func (op Operation) CheckParams(p Params) error {
	if op.Validate == nil {
		return nil
	}
	return op.Validate(p)
}

// Registry holds the available operations
type Registry struct {
	mu  sync.RWMutex
	ops map[string]Operation
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{ops: make(map[string]Operation)}
}

// Register adds op, refusing duplicates and incomplete definitions
func (r *Registry) Register(op Operation) error {
	if op.Name == "" || op.Apply == nil || op.OutputName == nil {
		return fmt.Errorf("operation %q is incomplete", op.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.ops[op.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateOperation, op.Name)
	}
	if op.Subdir == "" {
		op.Subdir = op.Name
	}
	r.ops[op.Name] = op
	return nil
}

// MustRegister is Register that panics, for static wiring
func (r *Registry) MustRegister(op Operation) {
	if err := r.Register(op); err != nil {
		panic(err)
	}
}

// Lookup returns the operation registered under name
func (r *Registry) Lookup(name string) (Operation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	op, ok := r.ops[name]
	if !ok {
		return Operation{}, fmt.Errorf("%w: %s", ErrUnknownOperation, name)
	}
	return op, nil
}

// Names returns the registered operation names in sorted order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.ops))
	for name := range r.ops {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Describe lists every operation in name order
func (r *Registry) Describe() []Info {
	names := r.Names()

	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]Info, 0, len(names))
	for _, name := range names {
		op := r.ops[name]
		infos = append(infos, Info{Name: op.Name, Description: op.Description, Subdir: op.Subdir})
	}
	return infos
}

// suffixName builds "<stem>-<suffix>.<ext>" with ext chosen by extFor
func suffixName(suffix string, extFor func(inputPath string, p Params) (string, error)) NameFunc {
	return func(inputPath string, p Params, _ Sequence) (string, error) {
		ext, err := extFor(inputPath, p)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s-%s.%s", common.FileStem(inputPath), suffix, ext), nil
	}
}

func fixedExt(ext string) func(string, Params) (string, error) {
	return func(string, Params) (string, error) {
		return ext, nil
	}
}

func originalExt(inputPath string, _ Params) (string, error) {
	return outputExtension(common.Extension(inputPath)), nil
}
