// Package barrel renders re-export statements and orchestrates barrel file
// generation across a directory tree.
package barrel

import (
	"fmt"
	"path/filepath"
	"strings"

	"barrelgen/internal/classify"
)

// RenderOptions selects the statement style for one run.
type RenderOptions struct {
	// Wildcard switches from enumerated named re-exports to blanket
	// `export * from` statements.
	Wildcard bool

	// TypedTarget is true when the output file can express type-only
	// exports (a .ts/.tsx barrel). Untyped targets merge type identifiers
	// into ordinary export syntax.
	TypedTarget bool
}

// File pairs a module name (filename without extension) with its
// classification. A nil Set means the parse failed and the module gets the
// wildcard fallback.
type File struct {
	Module string
	Set    *classify.ExportSet
}

// TypedTarget reports whether the given output filename is a typed-dialect
// barrel.
func TypedTarget(outputFile string) bool {
	ext := strings.ToLower(filepath.Ext(outputFile))
	return ext == ".ts" || ext == ".tsx"
}

// Render produces the re-export statement lines for one module. A module with
// nothing to export renders zero lines.
func Render(module string, set *classify.ExportSet, opts RenderOptions) []string {
	if set == nil {
		// Parse-failure fallback, regardless of mode.
		return []string{wildcardStmt(module)}
	}
	if set.Empty() {
		return nil
	}

	if opts.Wildcard {
		return renderWildcard(module, set, opts.TypedTarget)
	}
	return renderNamed(module, set, opts.TypedTarget)
}

func renderWildcard(module string, set *classify.ExportSet, typed bool) []string {
	var lines []string
	valueEmitted := false
	if len(set.Named) > 0 || set.HasDefault {
		lines = append(lines, wildcardStmt(module))
		valueEmitted = true
	}
	if len(set.Types) > 0 {
		if typed {
			lines = append(lines, typeWildcardStmt(module))
		} else if !valueEmitted {
			// The untyped dialect cannot mark the statement type-only;
			// fall back to the value form, but never duplicate it.
			lines = append(lines, wildcardStmt(module))
		}
	}
	return lines
}

func renderNamed(module string, set *classify.ExportSet, typed bool) []string {
	var lines []string
	if len(set.Named) > 0 {
		lines = append(lines, namedStmt(module, set.Named, false))
	}
	if len(set.Types) > 0 {
		// Untyped targets merge type identifiers into ordinary export
		// syntax since they cannot express `export type`.
		lines = append(lines, namedStmt(module, set.Types, typed))
	}
	if set.HasDefault {
		lines = append(lines, defaultStmt(module))
	}
	return lines
}

// Assemble builds the full statement list for one directory: blanket
// re-exports for subdirectories that already carry a barrel, then per-file
// statements, both in listing order.
func Assemble(subdirs []string, files []File, opts RenderOptions) []string {
	var lines []string
	for _, sub := range subdirs {
		lines = append(lines, wildcardStmt(sub))
	}
	for _, f := range files {
		lines = append(lines, Render(f.Module, f.Set, opts)...)
	}
	return lines
}

func wildcardStmt(module string) string {
	return fmt.Sprintf("export * from './%s';", module)
}

func typeWildcardStmt(module string) string {
	return fmt.Sprintf("export type * from './%s';", module)
}

func namedStmt(module string, names []string, typeOnly bool) string {
	kw := "export"
	if typeOnly {
		kw = "export type"
	}
	return fmt.Sprintf("%s { %s } from './%s';", kw, strings.Join(names, ", "), module)
}

// defaultStmt aliases the module's default binding to its file name so
// consumers import it by name rather than the generic "default".
func defaultStmt(module string) string {
	return fmt.Sprintf("export { default as %s } from './%s';", module, module)
}
