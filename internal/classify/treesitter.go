package classify

import (
	"context"
	"fmt"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// treeClassifier classifies exports using a Tree-sitter grammar. One instance
// per dialect; the grammar differs, the walk is shared.
type treeClassifier struct {
	dialect string
	exts    []string

	mu     sync.Mutex // a sitter.Parser is not safe for concurrent use
	parser *sitter.Parser
}

// NewScriptClassifier handles plain JavaScript modules.
func NewScriptClassifier() Classifier {
	return newTreeClassifier("script", javascript.GetLanguage(), ".js")
}

// NewTypedClassifier handles TypeScript modules.
func NewTypedClassifier() Classifier {
	return newTreeClassifier("typed", typescript.GetLanguage(), ".ts")
}

// NewComponentClassifier handles JSX/TSX component modules. The TSX grammar
// is a superset of JSX, so both extensions route here.
func NewComponentClassifier() Classifier {
	return newTreeClassifier("component", tsx.GetLanguage(), ".jsx", ".tsx")
}

func newTreeClassifier(dialect string, lang *sitter.Language, exts ...string) *treeClassifier {
	p := sitter.NewParser()
	p.SetLanguage(lang)
	return &treeClassifier{dialect: dialect, exts: exts, parser: p}
}

func (c *treeClassifier) Dialect() string      { return c.dialect }
func (c *treeClassifier) Extensions() []string { return c.exts }

// Classify parses src and walks the top-level statement list. Tree-sitter is
// error-tolerant, so a parse "succeeding" with ERROR nodes in the tree still
// counts as a syntax failure for classification purposes.
func (c *treeClassifier) Classify(path string, src []byte) (*ExportSet, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	tree, err := c.parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", path, ErrSyntax, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, fmt.Errorf("%s: %w", path, ErrSyntax)
	}

	set := NewExportSet()
	for i := 0; i < int(root.NamedChildCount()); i++ {
		stmt := root.NamedChild(i)
		if stmt.Type() == "export_statement" {
			c.classifyExport(stmt, src, set)
		}
	}
	return set, nil
}

// classifyExport handles one top-level export statement.
func (c *treeClassifier) classifyExport(stmt *sitter.Node, src []byte, set *ExportSet) {
	// Keyword tokens are anonymous children of the statement itself:
	// `export default ...` and `export type { ... }`.
	typeOnly := false
	for i := 0; i < int(stmt.ChildCount()); i++ {
		switch stmt.Child(i).Type() {
		case "default":
			set.HasDefault = true
			return
		case "type":
			typeOnly = true
		}
	}

	if decl := stmt.ChildByFieldName("declaration"); decl != nil {
		c.classifyDecl(decl, src, set)
		return
	}

	for i := 0; i < int(stmt.NamedChildCount()); i++ {
		child := stmt.NamedChild(i)
		switch child.Type() {
		case "export_clause":
			c.classifyClause(child, src, set, typeOnly)
		case "namespace_export":
			// export * as ns from './mod'
			if int(child.NamedChildCount()) > 0 {
				set.AddNamed(text(child.NamedChild(0), src))
			}
		}
	}
	// A bare `export * from './mod'` enumerates nothing and is ignored.
}

// classifyClause handles `export { a, b as c, type T }` specifier lists.
func (c *treeClassifier) classifyClause(clause *sitter.Node, src []byte, set *ExportSet, typeOnly bool) {
	for i := 0; i < int(clause.NamedChildCount()); i++ {
		spec := clause.NamedChild(i)
		if spec.Type() != "export_specifier" {
			continue
		}

		exported := spec.ChildByFieldName("alias")
		if exported == nil {
			exported = spec.ChildByFieldName("name")
		}
		if exported == nil {
			continue
		}
		name := text(exported, src)

		// `export { default } from './mod'` and `export { x as default }`
		// both expose the default binding.
		if name == "default" {
			set.HasDefault = true
			continue
		}
		if typeOnly || hasToken(spec, "type") {
			set.AddType(name)
		} else {
			set.AddNamed(name)
		}
	}
}

// classifyDecl handles `export <declaration>` forms.
func (c *treeClassifier) classifyDecl(decl *sitter.Node, src []byte, set *ExportSet) {
	switch decl.Type() {
	case "lexical_declaration", "variable_declaration":
		for i := 0; i < int(decl.NamedChildCount()); i++ {
			d := decl.NamedChild(i)
			if d.Type() != "variable_declarator" {
				continue
			}
			if name := d.ChildByFieldName("name"); name != nil {
				collectBindings(name, src, set)
			}
		}

	case "function_declaration", "generator_function_declaration",
		"class_declaration", "abstract_class_declaration",
		"enum_declaration", "internal_module", "module":
		if name := decl.ChildByFieldName("name"); name != nil {
			set.AddNamed(text(name, src))
		}

	case "interface_declaration", "type_alias_declaration":
		if name := decl.ChildByFieldName("name"); name != nil {
			set.AddType(text(name, src))
		}

	case "ambient_declaration":
		// export declare ...: unwrap and classify the inner declaration.
		if int(decl.NamedChildCount()) > 0 {
			c.classifyDecl(decl.NamedChild(0), src, set)
		}
	}
}

// collectBindings appends every identifier bound by a declarator name node,
// left to right. The name may be a plain identifier or a destructuring
// pattern; each binding contributes one entry.
func collectBindings(n *sitter.Node, src []byte, set *ExportSet) {
	switch n.Type() {
	case "identifier", "shorthand_property_identifier_pattern":
		set.AddNamed(text(n, src))
	case "pair_pattern":
		if v := n.ChildByFieldName("value"); v != nil {
			collectBindings(v, src, set)
		}
	case "assignment_pattern":
		if l := n.ChildByFieldName("left"); l != nil {
			collectBindings(l, src, set)
		}
	case "object_pattern", "array_pattern", "rest_pattern":
		for i := 0; i < int(n.NamedChildCount()); i++ {
			collectBindings(n.NamedChild(i), src, set)
		}
	}
}

// hasToken reports whether n has an anonymous child token of the given type.
func hasToken(n *sitter.Node, tok string) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.Child(i).Type() == tok {
			return true
		}
	}
	return false
}

func text(n *sitter.Node, src []byte) string {
	return string(src[n.StartByte():n.EndByte()])
}
