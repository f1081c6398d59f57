// Package project is the cross-file collaborator spec.md §1 carves out of
// the core: it reads a file, hands its content to analyzer.Analyze, walks
// the relative imports the core reported, recurses into each neighbor,
// and splices the neighbor's cross-file bundle diagnostics into the
// caller's own diagnostic list at the real call-site span. Grounded on
// original_source's lib.rs's ImportUsageFinder/imported_identifier_usages
// — the part of the original driver that decided which call sites "use"
// an imported identifier — restated here as a name-match against each
// neighbor's exported ThrowIDs, since the core's one-hop lexical resolver
// already exposes unresolved call sites by callee name (§4.5/§4.6).
package project

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/does-it-throw/analyzer/internal/analyzer"
)

// Candidate extensions tried, in order, when a relative specifier omits
// one — the same resolution order a bundler would use for ECMAScript
// sources.
var candidateExtensions = []string{"", ".ts", ".tsx", ".js", ".jsx"}

// FileResult pairs one file's own analysis with its resolved path, so a
// caller walking the whole tree can report per-file diagnostics.
type FileResult struct {
	Path   string
	Result analyzer.Result
}

// Project recursively analyzes a file and every relative import reachable
// from it, splicing cross-file diagnostics as it goes. It caches each
// resolved path's analysis so a diamond or cyclic import graph is only
// analyzed once per path.
type Project struct {
	Severities analyzer.Input // Filename/FileContent ignored; severities + flags copied per file
	Logger     zerolog.Logger

	cache map[string]*analyzer.Result
	stack map[string]bool // paths currently being analyzed, to break cycles
}

// New builds a Project. base carries the severity selectors, pragma
// tokens, and flags every file in the walk is analyzed with; its
// Filename/FileContent fields are ignored and overwritten per file.
func New(base analyzer.Input, logger zerolog.Logger) *Project {
	return &Project{
		Severities: base,
		Logger:     logger,
		cache:      map[string]*analyzer.Result{},
		stack:      map[string]bool{},
	}
}

// Analyze resolves path, analyzes it (and, transitively, its relative
// imports), and returns every file touched along the way.
func (p *Project) Analyze(ctx context.Context, path string) ([]FileResult, error) {
	var out []FileResult
	if err := p.analyzeInto(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *Project) analyzeInto(ctx context.Context, path string, out *[]FileResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path = filepath.Clean(path)
	if p.stack[path] {
		p.Logger.Debug().Str("path", path).Msg("import cycle, skipping re-entry")
		return nil
	}
	if cached, ok := p.cache[path]; ok {
		*out = append(*out, FileResult{Path: path, Result: *cached})
		return nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("project: reading %s: %w", path, err)
	}

	input := p.Severities
	input.Filename = path
	input.FileContent = string(content)

	p.stack[path] = true
	res, err := analyzer.Analyze(input)
	delete(p.stack, path)
	if err != nil {
		return fmt.Errorf("project: analyzing %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	neighborResults := make(map[string]analyzer.Result, len(res.RelativeImports))
	neighborPaths := make(map[string]string, len(res.RelativeImports))
	for _, spec := range res.RelativeImports {
		resolved, ok := resolveSpecifier(dir, spec)
		if !ok {
			p.Logger.Warn().Str("from", path).Str("specifier", spec).Msg("could not resolve relative import")
			continue
		}
		if err := p.analyzeInto(ctx, resolved, out); err != nil {
			return err
		}
		if cached, ok := p.cache[resolved]; ok {
			neighborResults[spec] = *cached
			neighborPaths[spec] = resolved
		}
	}

	res.Diagnostics = spliceImports(res, neighborResults, neighborPaths, p.Logger)
	p.cache[path] = &res
	*out = append(*out, FileResult{Path: path, Result: res})
	return nil
}

// resolveSpecifier tries each candidate extension against dir/spec,
// returning the first path that exists on disk.
func resolveSpecifier(dir, spec string) (string, bool) {
	joined := filepath.Join(dir, filepath.FromSlash(spec))
	for _, ext := range candidateExtensions {
		candidate := joined + ext
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
	}
	for _, ext := range candidateExtensions[1:] {
		candidate := filepath.Join(joined, "index"+ext)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
	}
	return "", false
}

// spliceImports re-anchors each neighbor's cross-file bundle diagnostics
// at the caller's own unresolved call sites, for every call site whose
// callee name matches a ThrowId exported by a neighbor reached through a
// relative import.
func spliceImports(res analyzer.Result, neighborResults map[string]analyzer.Result, neighborPaths map[string]string, logger zerolog.Logger) []analyzer.WireDiagnostic {
	diagnostics := res.Diagnostics
	for _, uc := range res.UnresolvedCalls {
		name := lastSegment(uc.Callee)
		for spec, neighbor := range neighborResults {
			throwID := neighborPaths[spec] + "::" + name
			bundle, ok := neighbor.ImportedIdentifiersDiagnostics[throwID]
			if !ok {
				continue
			}
			for _, d := range bundle.Diagnostics {
				diagnostics = append(diagnostics, analyzer.WireDiagnostic{
					Message:  d.Message,
					Range:    uc.Range,
					Severity: d.Severity,
					Source:   "Does it Throw?",
					Code:     d.Code,
					Data:     d.Data,
				})
			}
			logger.Debug().Str("callee", uc.Callee).Str("throw_id", throwID).Msg("spliced cross-file diagnostic")
		}
	}
	return diagnostics
}

// lastSegment strips a "this."/"obj." prefix off a CallSite callee,
// leaving the bare name an import binding would actually be known by.
func lastSegment(callee string) string {
	if i := strings.LastIndex(callee, "."); i >= 0 {
		return callee[i+1:]
	}
	return callee
}
