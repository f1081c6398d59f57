// Package bridge implements spec.md §4.6's cross-file lookup surface: a
// stable ThrowId per exported Callable with non-empty effective raises,
// and a parallel imported_identifiers_diagnostics bundle an importer
// splices into its own diagnostics at the actual call sites of that
// identifier. The bridge performs no I/O; internal/project is the
// collaborator that reads a relative import, re-invokes the core on it,
// and does the splicing, per spec.md §1's file-I/O carve-out.
package bridge

import (
	"github.com/does-it-throw/analyzer/internal/analyzer/callable"
	"github.com/does-it-throw/analyzer/internal/analyzer/emit"
	"github.com/does-it-throw/analyzer/internal/analyzer/model"
)

// Bundle is the diagnostics an importer would render at a call site of
// the identifier this ThrowId names. Diagnostics' Span is a placeholder
// (the exported Callable's own head span): internal/project re-anchors
// the message at the real call-site span in the importing file before
// appending it.
type Bundle struct {
	ID          string             `json:"id"`
	Diagnostics []model.Diagnostic `json:"diagnostics"`
}

// StableID derives spec.md §9's "path-independent" file identifier.
// Callers are expected to pass a project-relative path (never an
// absolute one) as filename; this function does no normalization beyond
// that, since inventing a hash would make ThrowIds less readable for no
// stability benefit over a relative path the caller already controls.
func StableID(filename string) string {
	return filename
}

// ThrowID builds the `<file-stable-id>::<qualified-name>` identifier for
// one exported Callable.
func ThrowID(fileStableID string, c model.Callable) string {
	return fileStableID + "::" + c.Name
}

// Build returns every exported Callable's ThrowId (for non-empty
// effective raises only) plus its importer-facing diagnostic bundle.
func Build(fileStableID string, analysis *callable.Analysis, cfg emit.Config) (throwIDs []string, bundles map[string]Bundle) {
	bundles = map[string]Bundle{}
	for _, c := range analysis.Callables {
		if !c.Exported || len(c.Effective) == 0 {
			continue
		}
		id := ThrowID(fileStableID, c)
		throwIDs = append(throwIDs, id)
		bundles[id] = Bundle{
			ID: id,
			Diagnostics: []model.Diagnostic{{
				Kind:     model.DiagImportedCallMayThrow,
				Span:     c.HeadSpan,
				Severity: cfg.Severities.CallToImportedThrow,
				Message:  importedCallMessage(c.Effective),
				Code:     "imported-call-may-throw",
			}},
		}
	}
	return throwIDs, bundles
}

func importedCallMessage(kinds []model.ErrorKind) string {
	names := make([]string, 0, len(kinds))
	for _, k := range kinds {
		names = append(names, k.DisplayName())
	}
	msg := "Function call may throw: {"
	for i, n := range names {
		if i > 0 {
			msg += ", "
		}
		msg += n
	}
	return msg + "}."
}
