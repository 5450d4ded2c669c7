// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
)

const (
	OutputCollisionId Id = iota + 1
	ExportCollisionId
	PlanNotFoundId
	PlanParseErrorId
	InvalidUnitId
	DependencyCycleId
	ConfigLoadFailedId
)

type (
	Id int

	MarkdownMsg string

	HttpLink string

	Issue struct {
		id       Id          // ID used to lookup the issue
		mdMsg    MarkdownMsg // Markdown text that will be rendered
		docLinks []HttpLink  // must never be empty, because we need to have docs about all issue types
		extLinks []HttpLink  // external links that might be useful for the user
	}
)

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Markdown returns the full document, with a "See also" section listing the
// documentation and external links.
func (i *Issue) Markdown() string {
	var sb strings.Builder
	sb.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		sb.WriteString("\n\n## See also\n")
		for _, link := range i.docLinks {
			sb.WriteString("- <" + string(link) + ">\n")
		}
		for _, link := range i.extLinks {
			sb.WriteString("- <" + string(link) + ">\n")
		}
	}
	return sb.String()
}

// Render renders the issue as styled terminal output. stylePath is a glamour
// style name ("dark", "light", "notty", ...) or a path to a style file.
func (i *Issue) Render(stylePath string) (string, error) {
	return render(i.Markdown(), stylePath)
}

var (
	render = glamour.Render

	outputCollisionIssue = &Issue{
		id: OutputCollisionId,
		mdMsg: `
# Output filename collision

Two different targets will write their artifact to the same file in the
build directory. Whichever compiles last wins: the other artifact is silently
replaced, and if both compile at the same time the file can end up corrupted.

## Why this happens
- Dynamically loadable libraries (` + "`dylib`, `cdylib`" + `) keep an exact,
  hash-free filename because the loader looks them up by name. Two packages
  whose library targets share a name produce the same file.
- Examples are linked to ` + "`examples/<name>`" + ` so they can be run by name.
  Two workspace members with an example of the same name share that link.

## Things you can try
- Rename one of the targets so every artifact name is unique.
- Build the colliding packages in separate invocations.

This is currently a warning, not an error.`,
		docLinks: []HttpLink{"https://doc.rust-lang.org/cargo/reference/cargo-targets.html#target-selection"},
		extLinks: []HttpLink{"https://github.com/rust-lang/cargo/issues/6313"},
	}

	exportCollisionIssue = &Issue{
		id: ExportCollisionId,
		mdMsg: `
# Export directory filename collision

The export directory is flat: artifacts are copied into it without a hash,
and binaries and examples share one namespace. A binary and an example with
the same name, or two libraries with the same name, overwrite each other there
even though they coexist in the build directory.

## Things you can try
- Rename one of the targets.
- Export binaries and examples in separate invocations.
- Run with ` + "`--strict`" + ` to make this an error instead of a warning.`,
		docLinks: []HttpLink{"https://doc.rust-lang.org/cargo/commands/cargo-build.html#output-options"},
		extLinks: []HttpLink{"https://github.com/rust-lang/cargo/issues/6313"},
	}

	planNotFoundIssue = &Issue{
		id: PlanNotFoundId,
		mdMsg: `
# Build plan not found

outguard reads the finalized list of compilation units from a plan file.

## Things you can try
- Pass the plan path as the first argument:
~~~
$ outguard check build-plan.cue
~~~
- Supported formats are CUE (` + "`.cue`" + `), TOML (` + "`.toml`" + `) and YAML (` + "`.yaml`, `.yml`" + `).`,
		docLinks: []HttpLink{"https://github.com/torhovland/outguard#build-plans"},
	}

	planParseErrorIssue = &Issue{
		id: PlanParseErrorId,
		mdMsg: `
# Failed to parse build plan!

## Common issues:
- Invalid syntax for the file's format
- Unknown target kinds (valid: lib, bin, example, test, bench)
- Unknown crate types (valid: lib, rlib, dylib, cdylib, staticlib, proc-macro)
- A ` + "`lib`" + ` target without crate types`,
		docLinks: []HttpLink{"https://github.com/torhovland/outguard#build-plans"},
	}

	invalidUnitIssue = &Issue{
		id: InvalidUnitId,
		mdMsg: `
# Invalid compilation unit

Every unit needs a package name, version and source, and a target with a
name and a known kind. Library targets must list at least one crate type and
other targets must not list any.`,
		docLinks: []HttpLink{"https://github.com/torhovland/outguard#build-plans"},
	}

	dependencyCycleIssue = &Issue{
		id: DependencyCycleId,
		mdMsg: `
# Dependency cycle detected!

Units in the plan depend on each other in a loop, so no build order exists.

## Things you can try
- Check the ` + "`deps`" + ` lists of the units named in the error.`,
		docLinks: []HttpLink{"https://github.com/torhovland/outguard#build-plans"},
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

## Things you can try
- Check ` + "`config.cue`" + ` for CUE syntax errors
- Show the effective configuration:
~~~
$ outguard config show
~~~`,
		docLinks: []HttpLink{"https://github.com/torhovland/outguard#configuration"},
	}

	issues = map[Id]*Issue{
		outputCollisionIssue.Id():  outputCollisionIssue,
		exportCollisionIssue.Id():  exportCollisionIssue,
		planNotFoundIssue.Id():     planNotFoundIssue,
		planParseErrorIssue.Id():   planParseErrorIssue,
		invalidUnitIssue.Id():      invalidUnitIssue,
		dependencyCycleIssue.Id():  dependencyCycleIssue,
		configLoadFailedIssue.Id(): configLoadFailedIssue,
	}
)

// Values returns every registered issue ordered by Id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, i := range issues {
		out = append(out, i)
	}
	slices.SortFunc(out, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}

var slugs = map[Id]string{
	OutputCollisionId:  "output-collision",
	ExportCollisionId:  "export-collision",
	PlanNotFoundId:     "plan-not-found",
	PlanParseErrorId:   "plan-parse",
	InvalidUnitId:      "invalid-unit",
	DependencyCycleId:  "dependency-cycle",
	ConfigLoadFailedId: "config-load",
}

// Slug is the name accepted by `outguard explain`.
func (id Id) Slug() string {
	return slugs[id]
}

// Lookup finds an issue by slug.
func Lookup(slug string) (*Issue, bool) {
	for id, s := range slugs {
		if s == slug {
			return issues[id], true
		}
	}
	return nil, false
}
