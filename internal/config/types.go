// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

const (
	// OutputModeInternal builds into the target directory only.
	// Defined locally to avoid coupling config to internal/filename;
	// the CLI casts to filename.Mode at the boundary.
	OutputModeInternal OutputMode = "internal"
	// OutputModeExport additionally copies final artifacts into a flat
	// export directory.
	OutputModeExport OutputMode = "export"

	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// DefaultTargetDir is the build directory used when none is configured.
	DefaultTargetDir DirPath = "target"
)

var (
	// ErrInvalidOutputMode is returned when an OutputMode value is not recognized.
	ErrInvalidOutputMode = errors.New("invalid output mode")
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidDirPath is returned when a DirPath value is whitespace-only.
	ErrInvalidDirPath = errors.New("invalid directory path")
	// ErrInvalidJobs is returned when the job count is below one.
	ErrInvalidJobs = errors.New("invalid job count")
	// ErrInvalidOutputConfig is the sentinel error wrapped by InvalidOutputConfigError.
	ErrInvalidOutputConfig = errors.New("invalid output config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// OutputMode selects which output contexts a build populates.
	OutputMode string

	// InvalidOutputModeError wraps ErrInvalidOutputMode for errors.Is() compatibility.
	InvalidOutputModeError struct {
		Value OutputMode
	}

	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// DirPath is a directory on the local filesystem. The zero value means
	// "not set"; non-empty values must not be whitespace-only.
	DirPath string

	// InvalidDirPathError is returned when a DirPath is whitespace-only.
	InvalidDirPathError struct {
		Field string
		Value DirPath
	}

	// InvalidJobsError is returned when build.jobs is below one.
	InvalidJobsError struct {
		Value int
	}

	// InvalidOutputConfigError collects the field errors of an OutputConfig.
	InvalidOutputConfigError struct {
		FieldErrors []error
	}

	// InvalidConfigError collects the field errors of a Config.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config is the root configuration.
	Config struct {
		Output     OutputConfig     `json:"output" mapstructure:"output"`
		Collisions CollisionsConfig `json:"collisions" mapstructure:"collisions"`
		Build      BuildConfig      `json:"build" mapstructure:"build"`
		UI         UIConfig         `json:"ui" mapstructure:"ui"`
	}

	// OutputConfig controls where artifacts are written.
	OutputConfig struct {
		Mode      OutputMode `json:"mode" mapstructure:"mode"`
		TargetDir DirPath    `json:"target_dir" mapstructure:"target_dir"`
		// ExportDir is required when Mode is OutputModeExport.
		ExportDir DirPath `json:"export_dir" mapstructure:"export_dir"`
	}

	// CollisionsConfig controls collision severity.
	CollisionsConfig struct {
		// Strict turns export-directory collisions into errors.
		Strict bool `json:"strict" mapstructure:"strict"`
	}

	// BuildConfig controls the build runner.
	BuildConfig struct {
		Jobs int `json:"jobs" mapstructure:"jobs"`
	}

	// UIConfig contains user interface settings.
	UIConfig struct {
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		Verbose     bool        `json:"verbose" mapstructure:"verbose"`
	}
)

func (m OutputMode) String() string { return string(m) }

// IsValid returns whether the OutputMode is one of the defined modes.
func (m OutputMode) IsValid() (bool, []error) {
	switch m {
	case OutputModeInternal, OutputModeExport:
		return true, nil
	default:
		return false, []error{&InvalidOutputModeError{Value: m}}
	}
}

func (e *InvalidOutputModeError) Error() string {
	return fmt.Sprintf("invalid output mode %q (valid: internal, export)", e.Value)
}

func (e *InvalidOutputModeError) Unwrap() error { return ErrInvalidOutputMode }

func (cs ColorScheme) String() string { return string(cs) }

// IsValid returns whether the ColorScheme is one of the defined schemes.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: cs}}
	}
}

func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

func (p DirPath) String() string { return string(p) }

func (p DirPath) validate(field string) []error {
	if p != "" && strings.TrimSpace(string(p)) == "" {
		return []error{&InvalidDirPathError{Field: field, Value: p}}
	}
	return nil
}

func (e *InvalidDirPathError) Error() string {
	return fmt.Sprintf("invalid %s %q: non-empty value must not be whitespace-only", e.Field, e.Value)
}

func (e *InvalidDirPathError) Unwrap() error { return ErrInvalidDirPath }

func (e *InvalidJobsError) Error() string {
	return fmt.Sprintf("invalid build.jobs %d: must be at least 1", e.Value)
}

func (e *InvalidJobsError) Unwrap() error { return ErrInvalidJobs }

// IsValid checks the mode and directories. Export mode needs an export
// directory.
func (c OutputConfig) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.Mode.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if c.TargetDir == "" {
		errs = append(errs, &InvalidDirPathError{Field: "output.target_dir", Value: c.TargetDir})
	}
	errs = append(errs, c.TargetDir.validate("output.target_dir")...)
	errs = append(errs, c.ExportDir.validate("output.export_dir")...)
	if c.Mode == OutputModeExport && c.ExportDir == "" {
		errs = append(errs, fmt.Errorf("output.export_dir is required in export mode: %w", ErrInvalidDirPath))
	}
	if len(errs) > 0 {
		return false, []error{&InvalidOutputConfigError{FieldErrors: errs}}
	}
	return true, nil
}

func (e *InvalidOutputConfigError) Error() string {
	return fmt.Sprintf("invalid output config: %s", joinErrors(e.FieldErrors))
}

func (e *InvalidOutputConfigError) Unwrap() error { return ErrInvalidOutputConfig }

// IsValid validates every section of the configuration.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.Output.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if c.Build.Jobs < 1 {
		errs = append(errs, &InvalidJobsError{Value: c.Build.Jobs})
	}
	if valid, fieldErrs := c.UI.ColorScheme.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %s", joinErrors(e.FieldErrors))
}

func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

func joinErrors(errs []error) string {
	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{
			Mode:      OutputModeInternal,
			TargetDir: DefaultTargetDir,
		},
		Collisions: CollisionsConfig{Strict: false},
		Build:      BuildConfig{Jobs: runtime.GOMAXPROCS(0)},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Verbose:     false,
		},
	}
}
