// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/torhovland/outguard/internal/collision"
	"github.com/torhovland/outguard/internal/config"
	"github.com/torhovland/outguard/internal/filename"
	"github.com/torhovland/outguard/internal/plan"
	"github.com/torhovland/outguard/internal/unit"
	"github.com/torhovland/outguard/pkg/platform"
)

type (
	// App wires CLI services and shared dependencies. Every Cobra handler
	// receives an App and reaches configuration and plans through it.
	App struct {
		Config config.Provider
		Plans  PlanLoader
		stdout io.Writer
		stderr io.Writer
		// host overrides the detected host triple in tests.
		host  unit.Platform
		flags *globalFlags
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config config.Provider
		Plans  PlanLoader
		Stdout io.Writer
		Stderr io.Writer
		Host   unit.Platform
	}

	// PlanLoader reads and resolves a build plan.
	PlanLoader interface {
		Load(ctx context.Context, path string) (*plan.Resolved, error)
	}

	// globalFlags are the persistent flags shared by every command.
	globalFlags struct {
		verbose bool
		cfgFile string
	}

	// outputFlags override the output section of the configuration.
	outputFlags struct {
		outDir    string
		targetDir string
		strict    bool
	}

	// session is everything a command needs after configuration and plan
	// loading.
	session struct {
		cfg      *config.Config
		// cfgPath is empty when no config file was found.
		cfgPath  string
		resolved *plan.Resolved
		mode     filename.Mode
		layout   filename.Layout
		policy   collision.Policy
		logger   *log.Logger
	}
)

// NewApp creates an App, filling nil dependencies with production defaults.
func NewApp(deps Dependencies) *App {
	app := &App{
		Config: deps.Config,
		Plans:  deps.Plans,
		stdout: deps.Stdout,
		stderr: deps.Stderr,
		host:   deps.Host,
	}
	if app.Config == nil {
		app.Config = config.NewProvider()
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.stderr == nil {
		app.stderr = os.Stderr
	}
	if app.host == "" {
		app.host = unit.Platform(platform.HostTriple())
	}
	return app
}

// logger returns a stderr logger with the given component prefix.
func (a *App) logger(prefix string, verbose bool) *log.Logger {
	logger := log.NewWithOptions(a.stderr, log.Options{Prefix: prefix})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

func (a *App) loadConfig(ctx context.Context, gf *globalFlags) (*config.Loaded, error) {
	loaded, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: gf.cfgFile})
	if err != nil {
		return nil, err
	}
	if loaded.Config.UI.Verbose {
		gf.verbose = true
	}
	if loaded.Path != "" {
		a.logger("config", gf.verbose).Debug("loaded configuration", "path", loaded.Path)
	}
	return loaded, nil
}

// openSession loads configuration and the plan at planPath and applies the
// output flags on top of the configuration.
func (a *App) openSession(ctx context.Context, gf *globalFlags, of *outputFlags, planPath string) (*session, error) {
	loaded, err := a.loadConfig(ctx, gf)
	if err != nil {
		return nil, err
	}
	cfg := loaded.Config

	loader := a.Plans
	if loader == nil {
		loader = plan.Loader{Logger: a.logger("plan", gf.verbose)}
	}
	resolved, err := loader.Load(ctx, planPath)
	if err != nil {
		return nil, err
	}

	root := resolved.Plan.Root()
	layout := filename.Layout{
		TargetDir: resolveDir(root, string(cfg.Output.TargetDir)),
		Host:      a.host,
	}
	mode := filename.Mode(cfg.Output.Mode)
	if cfg.Output.ExportDir != "" {
		layout.ExportDir = resolveDir(root, string(cfg.Output.ExportDir))
	}

	if of != nil {
		if of.targetDir != "" {
			layout.TargetDir = absDir(of.targetDir)
		}
		if of.outDir != "" {
			layout.ExportDir = absDir(of.outDir)
			mode = filename.ModeExport
		}
		if of.strict {
			cfg.Collisions.Strict = true
		}
	}

	policy := collision.DefaultPolicy()
	if cfg.Collisions.Strict {
		policy = collision.StrictPolicy()
	}

	return &session{
		cfg:      cfg,
		cfgPath:  loaded.Path,
		resolved: resolved,
		mode:     mode,
		layout:   layout,
		policy:   policy,
		logger:   a.logger("outguard", gf.verbose),
	}, nil
}

func (s *session) check() collision.Report {
	return collision.Check(s.resolved.Units, collision.Options{
		Mode:   s.mode,
		Layout: s.layout,
		Policy: s.policy,
	})
}

// resolveDir makes dir absolute relative to base.
func resolveDir(base, dir string) string {
	if filepath.IsAbs(dir) {
		return filepath.Clean(dir)
	}
	if abs, err := filepath.Abs(filepath.Join(base, dir)); err == nil {
		return abs
	}
	return filepath.Join(base, dir)
}

// absDir makes a flag value absolute relative to the working directory.
func absDir(dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return filepath.Clean(dir)
}
