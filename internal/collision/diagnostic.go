// SPDX-License-Identifier: MPL-2.0

package collision

import (
	"fmt"
	"strings"

	"github.com/torhovland/outguard/internal/filename"
)

const (
	// SeverityWarning lets the build proceed.
	SeverityWarning Severity = "warning"
	// SeverityError asks the orchestrator to stop before compiling.
	SeverityError Severity = "error"

	// Advisory classifies deps-area collisions. The colliding artifacts are
	// remade by whichever unit compiles last.
	Advisory Classification = "advisory"
	// Blocking classifies export-directory collisions, where one exported
	// file silently replaces another.
	Blocking Classification = "blocking"

	// CodeOutputCollision identifies a deps-area collision.
	CodeOutputCollision = "output_filename_collision"
	// CodeExportCollision identifies an export-directory collision.
	CodeExportCollision = "export_filename_collision"

	// RemediationHint is attached to every collision diagnostic.
	RemediationHint = "Consider changing their names to be unique or compiling them separately."
	// TrackingLink documents why collisions are not yet fatal.
	TrackingLink = "https://github.com/rust-lang/cargo/issues/6313"

	// DefaultExportFlag is the flag named in export collision headings.
	DefaultExportFlag = "--out-dir"
)

type (
	// Severity is how a diagnostic is surfaced.
	Severity string

	// Classification says what kind of hazard a collision is. It is mapped
	// to a Severity by a Policy.
	Classification string

	// Policy maps classifications to severities. It is the single point
	// where collisions become fatal.
	Policy struct {
		Advisory Severity
		Blocking Severity
	}

	// Diagnostic is one reported collision pair.
	Diagnostic struct {
		Severity       Severity
		Classification Classification
		Context        filename.Context
		// Code is a machine-readable identifier.
		Code string
		// Path is the colliding path.
		Path string
		// Named is the subject of the message: "The <Named> has the same
		// output filename as the <Other>." It describes Pair.Second.
		Named string
		// Other describes Pair.First, the member that sorts first.
		Other string
		Hint  string
		// DocLink points at documentation of the non-fatal status.
		DocLink string
		// ExportFlag is the user-facing name of the export option.
		ExportFlag string
		// Pair is the underlying pair, kept for programmatic inspection.
		Pair Pair
	}
)

// DefaultPolicy keeps every collision a warning.
func DefaultPolicy() Policy {
	return Policy{Advisory: SeverityWarning, Blocking: SeverityWarning}
}

// StrictPolicy turns export collisions into errors. Deps-area collisions
// stay warnings.
func StrictPolicy() Policy {
	return Policy{Advisory: SeverityWarning, Blocking: SeverityError}
}

// SeverityFor returns the severity for c. Unset policy fields default to
// SeverityWarning.
func (p Policy) SeverityFor(c Classification) Severity {
	var s Severity
	switch c {
	case Blocking:
		s = p.Blocking
	default:
		s = p.Advisory
	}
	if s == "" {
		return SeverityWarning
	}
	return s
}

// String returns the string representation of the Severity.
func (s Severity) String() string { return string(s) }

// String returns the string representation of the Classification.
func (c Classification) String() string { return string(c) }

// ClassificationFor returns the classification of collisions in ctx.
func ClassificationFor(ctx filename.Context) Classification {
	if ctx == filename.ContextExport {
		return Blocking
	}
	return Advisory
}

// NewDiagnostic turns a pair into a diagnostic under policy.
func NewDiagnostic(ctx filename.Context, p Pair, policy Policy, exportFlag string) Diagnostic {
	class := ClassificationFor(ctx)
	code := CodeOutputCollision
	if ctx == filename.ContextExport {
		code = CodeExportCollision
	}
	if exportFlag == "" {
		exportFlag = DefaultExportFlag
	}
	return Diagnostic{
		Severity:       policy.SeverityFor(class),
		Classification: class,
		Context:        ctx,
		Code:           code,
		Path:           p.Path,
		Named:          p.Second.Unit.Describe(),
		Other:          p.First.Unit.Describe(),
		Hint:           RemediationHint,
		DocLink:        TrackingLink,
		ExportFlag:     exportFlag,
		Pair:           p,
	}
}

// Heading returns the first line of the message.
func (d Diagnostic) Heading() string {
	if d.Context == filename.ContextExport {
		return fmt.Sprintf("`%s` filename collision.", d.ExportFlag)
	}
	return "output filename collision."
}

// Message renders the multi-line body of the diagnostic without a severity
// label.
func (d Diagnostic) Message() string {
	unique := "The targets should have unique names."
	if d.Context == filename.ContextExport {
		unique = "The exported filenames should be unique."
	}

	var sb strings.Builder
	sb.WriteString(d.Heading())
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "The %s has the same output filename as the %s.\n", d.Named, d.Other)
	fmt.Fprintf(&sb, "Colliding filename is: %s\n", d.Path)
	sb.WriteString(unique)
	sb.WriteString("\n")
	sb.WriteString(d.Hint)
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "This may become a hard error in the future, see %s", d.DocLink)
	return sb.String()
}

// String renders the diagnostic with its severity label.
func (d Diagnostic) String() string {
	return "[" + strings.ToUpper(string(d.Severity)) + "] " + d.Message()
}
