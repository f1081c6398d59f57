// Package testutil holds test-fixture helpers: dedenting multi-line
// literal source snippets, a colorized structural diff for table-driven
// failures, and snapshot assembly. No test file in the module imports it
// at present, and there is no bundled fixture corpus. Adapted from the teacher's own
// internal/test_utils, trimmed to the output kinds this domain actually
// produces (diagnostics rendered as text or JSON, not HTML/CSS/JSX).
package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/google/go-cmp/cmp"
	"github.com/lithammer/dedent"
)

// Dedent strips a literal source fixture's common leading indentation and
// collapses runs of blank lines, the same shape the teacher's own Dedent
// gives embedded test fixtures.
func Dedent(input string) string {
	return dedent.Dedent(
		strings.ReplaceAll(
			strings.TrimLeft(
				strings.TrimRight(input, " \n\r"),
				" \t\r\n"),
			"\n\n\n", "\n\n"),
	)
}

// ANSIDiff renders a go-cmp structural diff with red/green ANSI coloring
// for terminal-readable table-driven test failures.
func ANSIDiff(x, y interface{}, opts ...cmp.Option) string {
	escapeCode := func(code int) string {
		return fmt.Sprintf("\x1b[%dm", code)
	}
	diff := cmp.Diff(x, y, opts...)
	if diff == "" {
		return ""
	}
	lines := strings.Split(diff, "\n")
	for i, l := range lines {
		switch {
		case strings.HasPrefix(l, "-"):
			lines[i] = escapeCode(31) + l + escapeCode(0)
		case strings.HasPrefix(l, "+"):
			lines[i] = escapeCode(32) + l + escapeCode(0)
		}
	}
	return strings.Join(lines, "\n")
}

// RedactTestName strips characters go-snaps would otherwise choke on from
// a table-driven test case's name before using it as a snapshot filename.
func RedactTestName(testCaseName string) string {
	name := testCaseName
	for _, r := range []string{"#", "<", ">", ")", "(", ":", " ", "'", "\"", "@", "`", "+"} {
		name = strings.ReplaceAll(name, r, "_")
	}
	return name
}

// OutputKind picks the fenced-code-block language a snapshot renders its
// output section in.
type OutputKind int

const (
	DiagnosticsText OutputKind = iota
	DiagnosticsJSON
)

var outputKind = map[OutputKind]string{
	DiagnosticsText: "text",
	DiagnosticsJSON: "json",
}

// SnapshotOptions bundles one fixture's literal input source and its
// rendered diagnostics output for MakeSnapshot.
type SnapshotOptions struct {
	Testing      *testing.T
	TestCaseName string
	Input        string
	Output       string
	Kind         OutputKind
	FolderName   string
}

// MakeSnapshot records a fixture's input alongside its analyzed output,
// the same "## Input / ## Output" shape the teacher's snapshots use for
// its printer fixtures.
func MakeSnapshot(options *SnapshotOptions) {
	t := options.Testing
	folderName := "__snapshots__"
	if options.FolderName != "" {
		folderName = options.FolderName
	}
	snapshotName := RedactTestName(options.TestCaseName)

	s := snaps.WithConfig(
		snaps.Filename(snapshotName),
		snaps.Dir(folderName),
	)

	var b strings.Builder
	b.WriteString("## Input\n\n```js\n")
	b.WriteString(Dedent(options.Input))
	b.WriteString("\n```\n\n## Output\n\n```")
	b.WriteString(outputKind[options.Kind])
	b.WriteString("\n")
	b.WriteString(Dedent(options.Output))
	b.WriteString("\n```")

	s.MatchSnapshot(t, b.String())
}
