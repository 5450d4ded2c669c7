// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
)

type (
	// ActionableError is a user-facing error: what outguard was doing, on
	// which file, why it failed and what to try next. Plan and configuration
	// loaders return it so the CLI can print help lines and point at the
	// matching `outguard explain` topic.
	//
	//	err := issue.NewErrorContext().
	//		WithOperation("parse build plan").
	//		WithResource("./plan.toml").
	//		WithIssue(issue.PlanParseErrorId).
	//		WithSuggestion("Check the file for toml syntax and schema errors").
	//		Wrap(cause).
	//		BuildError()
	ActionableError struct {
		// Operation is a verb phrase such as "parse build plan".
		Operation string
		// Resource is the plan or config file involved, if any.
		Resource string
		// Issue links to an explain topic; zero means none.
		Issue Id
		// Suggestions are printed as help lines.
		Suggestions []string
		Cause       error
	}

	// ErrorContext builds an ActionableError step by step.
	ErrorContext struct {
		err ActionableError
	}
)

// NewErrorContext starts an empty builder.
func NewErrorContext() *ErrorContext {
	return &ErrorContext{}
}

// Error renders "failed to <operation>[: <resource>][: <cause>]".
func (e *ActionableError) Error() string {
	parts := []string{"failed to " + e.Operation}
	if e.Resource != "" {
		parts = append(parts, e.Resource)
	}
	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *ActionableError) Unwrap() error { return e.Cause }

// Topic returns the explain topic slug, or "" when no issue is linked.
func (e *ActionableError) Topic() string {
	if e.Issue == 0 {
		return ""
	}
	return e.Issue.Slug()
}

// Explanation returns the linked issue, or nil.
func (e *ActionableError) Explanation() *Issue {
	if e.Issue == 0 {
		return nil
	}
	return Get(e.Issue)
}

// Format renders the error the way cargo renders its own: the message,
// one "help:" line per suggestion and a pointer to the explain topic. In
// verbose mode every wrapped cause follows under "Caused by:".
//
//	failed to parse build plan: plan.toml: 3:1: ...
//
//	help: Check the file for toml syntax and schema errors
//	help: run `outguard explain plan-parse` for details
func (e *ActionableError) Format(verbose bool) string {
	var sb strings.Builder
	sb.WriteString(e.Error())

	help := e.Suggestions
	if topic := e.Topic(); topic != "" {
		help = append(help[:len(help):len(help)], fmt.Sprintf("run `outguard explain %s` for details", topic))
	}
	if len(help) > 0 {
		sb.WriteString("\n")
		for _, h := range help {
			sb.WriteString("\nhelp: ")
			sb.WriteString(h)
		}
	}

	if verbose && e.Cause != nil {
		sb.WriteString("\n\nCaused by:")
		for cause := e.Cause; cause != nil; cause = errors.Unwrap(cause) {
			sb.WriteString("\n    ")
			sb.WriteString(cause.Error())
		}
	}
	return sb.String()
}

func (c *ErrorContext) WithOperation(op string) *ErrorContext {
	c.err.Operation = op
	return c
}

func (c *ErrorContext) WithResource(res string) *ErrorContext {
	c.err.Resource = res
	return c
}

func (c *ErrorContext) WithIssue(id Id) *ErrorContext {
	c.err.Issue = id
	return c
}

// WithSuggestion appends a help line.
func (c *ErrorContext) WithSuggestion(s string) *ErrorContext {
	c.err.Suggestions = append(c.err.Suggestions, s)
	return c
}

func (c *ErrorContext) Wrap(err error) *ErrorContext {
	c.err.Cause = err
	return c
}

// Build returns nil when no operation was set.
func (c *ErrorContext) Build() *ActionableError {
	if c.err.Operation == "" {
		return nil
	}
	ae := c.err
	ae.Suggestions = append([]string(nil), c.err.Suggestions...)
	return &ae
}

// BuildError is Build typed as error; a missing operation yields a nil
// interface rather than a typed nil.
func (c *ErrorContext) BuildError() error {
	if ae := c.Build(); ae != nil {
		return ae
	}
	return nil
}

// AsActionable finds an ActionableError in err's chain.
func AsActionable(err error) (*ActionableError, bool) {
	var ae *ActionableError
	ok := errors.As(err, &ae)
	return ae, ok
}
