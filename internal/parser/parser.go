// Package parser extracts a structural outline (functions, classes, imports)
// from source files using tree-sitter grammars selected by file extension.
package parser

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/ruby"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Symbol is a named definition found in a source file.
type Symbol struct {
	Name      string
	StartLine int
	EndLine   int
}

// Outline is the structural summary of one file.
type Outline struct {
	Functions []Symbol
	Classes   []Symbol
	Imports   []string
}

// grammar holds the node types that carry functions, classes and imports
// for one language.
type grammar struct {
	lang        *sitter.Language
	funcNodes   []string
	classNodes  []string
	importNodes []string
}

var (
	goGrammar = grammar{
		lang:        golang.GetLanguage(),
		funcNodes:   []string{"function_declaration", "method_declaration"},
		classNodes:  []string{"type_spec"},
		importNodes: []string{"import_declaration"},
	}
	pythonGrammar = grammar{
		lang:        python.GetLanguage(),
		funcNodes:   []string{"function_definition"},
		classNodes:  []string{"class_definition"},
		importNodes: []string{"import_statement", "import_from_statement"},
	}
	jsGrammar = grammar{
		lang:        javascript.GetLanguage(),
		funcNodes:   []string{"function_declaration", "method_definition"},
		classNodes:  []string{"class_declaration"},
		importNodes: []string{"import_statement"},
	}
	tsGrammar = grammar{
		lang:        typescript.GetLanguage(),
		funcNodes:   []string{"function_declaration", "method_definition"},
		classNodes:  []string{"class_declaration", "interface_declaration"},
		importNodes: []string{"import_statement"},
	}
	tsxGrammar = grammar{
		lang:        tsx.GetLanguage(),
		funcNodes:   tsGrammar.funcNodes,
		classNodes:  tsGrammar.classNodes,
		importNodes: tsGrammar.importNodes,
	}
	javaGrammar = grammar{
		lang:        java.GetLanguage(),
		funcNodes:   []string{"method_declaration", "constructor_declaration"},
		classNodes:  []string{"class_declaration", "interface_declaration", "enum_declaration"},
		importNodes: []string{"import_declaration"},
	}
	rustGrammar = grammar{
		lang:        rust.GetLanguage(),
		funcNodes:   []string{"function_item"},
		classNodes:  []string{"struct_item", "enum_item", "trait_item"},
		importNodes: []string{"use_declaration"},
	}
	rubyGrammar = grammar{
		lang:        ruby.GetLanguage(),
		funcNodes:   []string{"method", "singleton_method"},
		classNodes:  []string{"class", "module"},
		importNodes: []string{"call"},
	}
	cGrammar = grammar{
		lang:        c.GetLanguage(),
		funcNodes:   []string{"function_definition"},
		classNodes:  []string{"struct_specifier"},
		importNodes: []string{"preproc_include"},
	}
	cppGrammar = grammar{
		lang:        cpp.GetLanguage(),
		funcNodes:   []string{"function_definition"},
		classNodes:  []string{"class_specifier", "struct_specifier"},
		importNodes: []string{"preproc_include"},
	}
)

// grammars maps file extensions to their grammar.
var grammars = map[string]grammar{
	".go":   goGrammar,
	".py":   pythonGrammar,
	".js":   jsGrammar,
	".jsx":  jsGrammar,
	".mjs":  jsGrammar,
	".ts":   tsGrammar,
	".tsx":  tsxGrammar,
	".java": javaGrammar,
	".rs":   rustGrammar,
	".rb":   rubyGrammar,
	".c":    cGrammar,
	".h":    cGrammar,
	".cc":   cppGrammar,
	".cpp":  cppGrammar,
	".hpp":  cppGrammar,
}

// Supported reports whether filename has a grammar.
func Supported(filename string) bool {
	_, ok := grammars[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// Parser wraps a tree-sitter parser. A Parser is not safe for concurrent use;
// callers that parse in parallel need one Parser per goroutine.
type Parser struct {
	inner *sitter.Parser
}

// NewParser creates a new Parser instance.
func NewParser() *Parser {
	return &Parser{inner: sitter.NewParser()}
}

// Parse parses source using the grammar selected by filename's extension.
func (p *Parser) Parse(ctx context.Context, filename string, source []byte) (*Tree, error) {
	g, ok := grammars[strings.ToLower(filepath.Ext(filename))]
	if !ok {
		return nil, fmt.Errorf("unsupported file extension %q", filepath.Ext(filename))
	}

	p.inner.SetLanguage(g.lang)
	st, err := p.inner.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}
	return &Tree{tree: st, source: source, grammar: g}, nil
}

// Outline parses source and returns its outline, releasing the syntax tree
// before returning.
func (p *Parser) Outline(ctx context.Context, filename string, source []byte) (*Outline, error) {
	tree, err := p.Parse(ctx, filename, source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()
	return &Outline{
		Functions: tree.Functions(),
		Classes:   tree.Classes(),
		Imports:   tree.Imports(),
	}, nil
}

// Tree is a parsed syntax tree bound to its source.
type Tree struct {
	tree    *sitter.Tree
	source  []byte
	grammar grammar
}

// RootNode returns the root node of the parsed syntax tree.
func (t *Tree) RootNode() *sitter.Node {
	return t.tree.RootNode()
}

// Close releases the underlying tree-sitter tree.
func (t *Tree) Close() {
	t.tree.Close()
}

// Functions returns function and method definitions in source order.
func (t *Tree) Functions() []Symbol {
	return t.symbols(t.grammar.funcNodes)
}

// Classes returns class-like definitions (classes, structs, interfaces,
// traits, type declarations) in source order.
func (t *Tree) Classes() []Symbol {
	return t.symbols(t.grammar.classNodes)
}

func (t *Tree) symbols(nodeTypes []string) []Symbol {
	want := toSet(nodeTypes)
	var out []Symbol
	walk(t.RootNode(), func(n *sitter.Node) {
		if !want[n.Type()] {
			return
		}
		// skip C/C++ struct references such as "struct foo x;"
		if strings.HasSuffix(n.Type(), "_specifier") && n.ChildByFieldName("body") == nil {
			return
		}
		name := symbolName(n, t.source)
		if name == "" {
			return
		}
		out = append(out, Symbol{
			Name:      name,
			StartLine: int(n.StartPoint().Row) + 1,
			EndLine:   int(n.EndPoint().Row) + 1,
		})
	})
	return out
}

// Imports returns the imported module paths in source order.
func (t *Tree) Imports() []string {
	want := toSet(t.grammar.importNodes)
	var out []string
	walk(t.RootNode(), func(n *sitter.Node) {
		if want[n.Type()] {
			out = append(out, importPaths(n, t.source)...)
		}
	})
	return out
}

func toSet(items []string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, it := range items {
		m[it] = true
	}
	return m
}

// walk visits node and its descendants depth-first.
func walk(node *sitter.Node, fn func(*sitter.Node)) {
	if node == nil {
		return
	}
	fn(node)
	for i := 0; i < int(node.ChildCount()); i++ {
		walk(node.Child(i), fn)
	}
}

// symbolName reads the "name" field, falling back to the nested declarator
// used by C and C++ function definitions.
func symbolName(node *sitter.Node, source []byte) string {
	if n := node.ChildByFieldName("name"); n != nil {
		return n.Content(source)
	}
	if decl := node.ChildByFieldName("declarator"); decl != nil {
		if inner := decl.ChildByFieldName("declarator"); inner != nil {
			return inner.Content(source)
		}
	}
	return ""
}

func importPaths(node *sitter.Node, source []byte) []string {
	text := node.Content(source)
	switch node.Type() {
	case "import_declaration":
		return declaredImports(node, source)
	case "import_statement":
		return plainImports(text)
	case "import_from_statement":
		return nonEmpty(strings.TrimSpace(strings.SplitN(strings.TrimPrefix(text, "from "), " import ", 2)[0]))
	case "use_declaration":
		return nonEmpty(strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(text, "use "), ";")))
	case "preproc_include":
		return nonEmpty(strings.TrimSpace(strings.Trim(strings.TrimSpace(strings.TrimPrefix(text, "#include")), "<>\"")))
	case "call":
		return rubyRequire(text)
	default:
		return nonEmpty(cleanPath(text))
	}
}

// declaredImports handles Go import blocks and Java import declarations.
func declaredImports(node *sitter.Node, source []byte) []string {
	var out []string
	seen := make(map[string]bool)
	walk(node, func(n *sitter.Node) {
		var path string
		switch n.Type() {
		case "interpreted_string_literal":
			path = cleanPath(n.Content(source))
		case "scoped_identifier":
			// outermost identifier only
			if p := n.Parent(); p != nil && p.Type() == "scoped_identifier" {
				return
			}
			path = n.Content(source)
		default:
			return
		}
		if path != "" && !seen[path] {
			seen[path] = true
			out = append(out, path)
		}
	})
	return out
}

// plainImports handles Python "import a, b as c" and JS/TS "import x from 'y'".
func plainImports(text string) []string {
	if _, from, ok := strings.Cut(text, " from "); ok {
		return nonEmpty(cleanPath(from))
	}
	if strings.HasPrefix(text, "import '") || strings.HasPrefix(text, "import \"") {
		return nonEmpty(cleanPath(strings.TrimPrefix(text, "import")))
	}

	var out []string
	for _, part := range strings.Split(strings.TrimPrefix(text, "import "), ",") {
		name, _, _ := strings.Cut(part, " as ")
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
	}
	return out
}

func rubyRequire(text string) []string {
	for _, prefix := range []string{"require_relative ", "require "} {
		if rest, ok := strings.CutPrefix(text, prefix); ok {
			return nonEmpty(cleanPath(rest))
		}
	}
	return nil
}

// cleanPath strips quotes, parentheses and semicolons around an import path.
func cleanPath(text string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(text), "\"'`();"))
}

func nonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	return []string{s}
}
