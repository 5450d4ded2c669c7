// SPDX-License-Identifier: MPL-2.0

// Package build runs compilation units in dependency order with bounded
// parallelism. Units that would write the same output file never run at the
// same time; every other unit runs fully in parallel.
package build

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/torhovland/outguard/internal/dag"
	"github.com/torhovland/outguard/internal/filename"
	"github.com/torhovland/outguard/internal/guard"
	"github.com/torhovland/outguard/internal/unit"
)

// ErrUnknownUnit is returned when the graph names a unit that was not given.
var ErrUnknownUnit = errors.New("unknown unit")

type (
	// CompileFunc produces the artifacts of one unit. a.Candidates are the
	// exact paths the unit may write.
	CompileFunc func(ctx context.Context, a filename.Assignment) error

	// Options configures a Runner.
	Options struct {
		// Jobs bounds the number of concurrently compiling units. Zero means
		// GOMAXPROCS.
		Jobs   int
		Mode   filename.Mode
		Layout filename.Layout
		// Guard serializes units on contended paths. Nil means no path is
		// contended.
		Guard   *guard.Guard
		Compile CompileFunc
		Logger  *log.Logger
	}

	// Runner executes a dependency graph of units.
	Runner struct {
		opts   Options
		logger *log.Logger
	}

	// Result records what a run did.
	Result struct {
		// Completed holds unit keys in completion order.
		Completed []string
		// Serialized counts units that had to take at least one path lock.
		Serialized int
		Elapsed    time.Duration
	}

	// UnitError is returned when a unit's compile step fails.
	UnitError struct {
		Unit unit.Unit
		Err  error
	}
)

func (e *UnitError) Error() string {
	return fmt.Sprintf("build %s: %v", e.Unit.Describe(), e.Err)
}

func (e *UnitError) Unwrap() error { return e.Err }

// NewRunner creates a Runner, filling in defaults.
func NewRunner(opts Options) *Runner {
	if opts.Jobs < 1 {
		opts.Jobs = runtime.GOMAXPROCS(0)
	}
	if opts.Mode == "" {
		opts.Mode = filename.ModeInternal
	}
	if opts.Guard == nil {
		opts.Guard = guard.New(nil)
	}
	if opts.Compile == nil {
		opts.Compile = func(context.Context, filename.Assignment) error { return nil }
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "build"})
	}
	return &Runner{opts: opts, logger: logger}
}

// Run compiles units level by level: a level starts once every unit of the
// previous level finished. The first failure cancels the remaining units and
// is returned as a *UnitError.
func (r *Runner) Run(ctx context.Context, units []unit.Unit, graph *dag.Graph) (*Result, error) {
	start := time.Now()

	levels, err := graph.Levels()
	if err != nil {
		return nil, err
	}

	assignments := make(map[string]filename.Assignment, len(units))
	for _, a := range filename.Assign(units, r.opts.Mode, r.opts.Layout) {
		assignments[a.Unit.Key()] = a
	}
	for _, level := range levels {
		for _, key := range level {
			if _, ok := assignments[key]; !ok {
				return nil, fmt.Errorf("%w: %q", ErrUnknownUnit, key)
			}
		}
	}

	res := &Result{}
	var mu sync.Mutex

	for i, level := range levels {
		r.logger.Debug("starting level", "level", i, "units", len(level))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(r.opts.Jobs)

		for _, key := range level {
			a := assignments[key]
			g.Go(func() error {
				serialized, err := r.runUnit(gctx, a)
				if err != nil {
					return err
				}
				mu.Lock()
				res.Completed = append(res.Completed, key)
				if serialized {
					res.Serialized++
				}
				mu.Unlock()
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			res.Elapsed = time.Since(start)
			return res, err
		}
	}

	res.Elapsed = time.Since(start)
	r.logger.Info("build finished", "units", len(res.Completed), "serialized", res.Serialized, "elapsed", res.Elapsed)
	return res, nil
}

func (r *Runner) runUnit(ctx context.Context, a filename.Assignment) (bool, error) {
	paths := r.opts.Guard.PathsFor(a.Candidates)
	if len(paths) > 0 {
		r.logger.Debug("waiting for contended outputs", "unit", a.Unit.Describe(), "paths", paths)
	}

	release, err := r.opts.Guard.Acquire(ctx, paths...)
	if err != nil {
		return false, &UnitError{Unit: a.Unit, Err: err}
	}
	defer release()

	r.logger.Debug("compiling", "unit", a.Unit.Describe())
	if err := r.opts.Compile(ctx, a); err != nil {
		r.logger.Error("compile failed", "unit", a.Unit.Describe(), "error", err)
		return false, &UnitError{Unit: a.Unit, Err: err}
	}
	return len(paths) > 0, nil
}
