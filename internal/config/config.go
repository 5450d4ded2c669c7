// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"cuelang.org/go/cue/ast"
	"cuelang.org/go/cue/format"
	"cuelang.org/go/cue/token"
	"github.com/spf13/viper"

	"github.com/torhovland/outguard/internal/issue"
	"github.com/torhovland/outguard/pkg/cueutil"
)

const (
	// AppName is the application name.
	AppName = "outguard"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// EnvPrefix prefixes environment overrides, e.g. OUTGUARD_BUILD_JOBS.
	EnvPrefix = "OUTGUARD"
)

//go:embed config_schema.cue
var configSchema []byte

// ConfigDir returns the outguard directory inside the user configuration
// directory: $XDG_CONFIG_HOME (or ~/.config) on Unix, ~/Library/Application
// Support on macOS and %AppData% on Windows.
//
//nolint:revive // config.ConfigDir reads better than config.Dir at call sites
func ConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate user config directory: %w", err)
	}
	return filepath.Join(base, AppName), nil
}

// loadWithOptions resolves the config file, merges it over the defaults and
// validates the result. The returned path is empty when defaults were used.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := newViper()

	path, err := resolvePath(opts)
	if err != nil {
		return nil, "", err
	}

	if path != "" {
		if err := loadCUEIntoViper(v, path); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(path).
				WithIssue(issue.ConfigLoadFailedId).
				WithSuggestion("Fix the CUE syntax or the field reported above").
				WithSuggestion("Compare with the output of 'outguard config show'").
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	// Cross-field rules CUE cannot see, e.g. export mode without export_dir.
	if valid, errs := cfg.IsValid(); !valid {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(path).
			WithIssue(issue.ConfigLoadFailedId).
			WithSuggestion("Set output.export_dir when output.mode is \"export\"").
			Wrap(errs[0]).
			BuildError()
	}

	return &cfg, path, nil
}

// newViper returns a viper instance carrying the defaults and environment
// overrides.
func newViper() *viper.Viper {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("output.mode", defaults.Output.Mode)
	v.SetDefault("output.target_dir", defaults.Output.TargetDir)
	v.SetDefault("output.export_dir", defaults.Output.ExportDir)
	v.SetDefault("collisions.strict", defaults.Collisions.Strict)
	v.SetDefault("build.jobs", defaults.Build.Jobs)
	v.SetDefault("ui.color_scheme", defaults.UI.ColorScheme)
	v.SetDefault("ui.verbose", defaults.UI.Verbose)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// resolvePath applies the search order: explicit file, config directory,
// then the base directory. An explicit file that does not exist is an error;
// otherwise a missing file means defaults.
func resolvePath(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithIssue(issue.ConfigLoadFailedId).
				WithSuggestion("Pass an existing file to --config, or drop the flag to use the defaults").
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		return opts.ConfigFilePath, nil
	}

	cfgDir := opts.ConfigDirPath
	if cfgDir == "" {
		dir, err := ConfigDir()
		if err != nil {
			return "", err
		}
		cfgDir = dir
	}

	candidates := []string{
		filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt),
		filepath.Join(opts.BaseDir, ConfigFileName+"."+ConfigFileExt),
	}
	for _, c := range candidates {
		if fileExists(c) {
			return c, nil
		}
	}
	return "", nil
}

// loadCUEIntoViper validates a CUE file against #Config and merges it into v.
// Decoding goes to a map, not Config, so viper keeps layering defaults and
// environment overrides underneath the file.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	result, err := cueutil.ParseAndDecode[map[string]any](configSchema, data, "#Config",
		cueutil.WithFilename(path),
		cueutil.WithConcrete(false),
	)
	if err != nil {
		return err
	}

	if err := v.MergeConfigMap(*result.Value); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}

	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// GenerateCUE renders cfg as a formatted config.cue document that loads back
// into the same configuration. An empty export_dir is left out because the
// schema rejects empty directories.
func GenerateCUE(cfg *Config) string {
	output := []*ast.Field{
		field("mode", ast.NewString(string(cfg.Output.Mode))),
		field("target_dir", ast.NewString(string(cfg.Output.TargetDir))),
	}
	if cfg.Output.ExportDir != "" {
		output = append(output, field("export_dir", ast.NewString(string(cfg.Output.ExportDir))))
	}

	file := &ast.File{Decls: []ast.Decl{
		section("output", output...),
		section("collisions", field("strict", ast.NewBool(cfg.Collisions.Strict))),
		section("build", field("jobs", ast.NewLit(token.INT, strconv.Itoa(cfg.Build.Jobs)))),
		section("ui",
			field("color_scheme", ast.NewString(string(cfg.UI.ColorScheme))),
			field("verbose", ast.NewBool(cfg.UI.Verbose)),
		),
	}}
	ast.AddComment(file.Decls[0], &ast.CommentGroup{
		Doc:      true,
		Position: 0,
		List:     []*ast.Comment{{Text: "// outguard configuration"}},
	})

	out, err := format.Node(file)
	if err != nil {
		// The tree is built from literals only.
		panic(fmt.Sprintf("format generated config: %v", err))
	}
	return string(out)
}

func field(name string, value ast.Expr) *ast.Field {
	return &ast.Field{Label: ast.NewIdent(name), Value: value}
}

func section(name string, fields ...*ast.Field) *ast.Field {
	elts := make([]any, len(fields))
	for i, f := range fields {
		elts[i] = f
	}
	return field(name, ast.NewStruct(elts...))
}
