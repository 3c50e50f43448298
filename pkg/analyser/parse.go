package analyser

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"

	"github.com/panbanda/defectset/pkg/entity"
)

// Decl is a class or method declaration found in a Java file.
type Decl struct {
	ID        entity.ID
	Name      string // simple name
	Package   string
	StartLine int // 1-based, inclusive
	EndLine   int // 1-based, inclusive
	// Node is only valid while the Parsed it came from is open.
	Node *sitter.Node
}

// Span returns the number of lines covered.
func (d Decl) Span() int {
	return d.EndLine - d.StartLine
}

// Parsed is a parsed Java file and its declarations.
type Parsed struct {
	Path   string
	Source []byte
	Decls  []Decl
	tree   *sitter.Tree
}

// Close releases the syntax tree. Decl.Node values become invalid.
func (p *Parsed) Close() {
	if p.tree != nil {
		p.tree.Close()
		p.tree = nil
	}
}

var typeDeclNodes = map[string]bool{
	"class_declaration":           true,
	"interface_declaration":       true,
	"enum_declaration":            true,
	"record_declaration":          true,
	"annotation_type_declaration": true,
}

var methodDeclNodes = map[string]bool{
	"method_declaration":              true,
	"constructor_declaration":         true,
	"compact_constructor_declaration": true,
}

// Parse parses Java source and collects its declarations. path is the tree-relative
// slash path used in every ID.
func Parse(ctx context.Context, psr *sitter.Parser, path string, src []byte) (*Parsed, error) {
	psr.SetLanguage(java.GetLanguage())
	tree, err := psr.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	w := &declWalker{path: path, src: src, anon: make(map[string]int)}
	root := tree.RootNode()
	w.pkg = packageName(root, src)
	w.walk(root, "")

	return &Parsed{Path: path, Source: src, Decls: w.decls, tree: tree}, nil
}

type declWalker struct {
	path  string
	pkg   string
	src   []byte
	decls []Decl
	anon  map[string]int // anonymous class counters per enclosing class
}

func (w *declWalker) walk(node *sitter.Node, class string) {
	if node == nil {
		return
	}

	nodeType := node.Type()
	switch {
	case typeDeclNodes[nodeType]:
		name := nodeText(node.ChildByFieldName("name"), w.src)
		if name == "" {
			break
		}
		nested := name
		if class != "" {
			nested = class + entity.NestedSep + name
		}
		w.add(entity.Class(w.path, nested), name, node)
		w.walkChildren(node, nested)
		return

	case nodeType == "object_creation_expression" && class != "":
		if body := childOfType(node, "class_body"); body != nil {
			// Arguments are still evaluated in the enclosing scope.
			for i := range int(node.NamedChildCount()) {
				if c := node.NamedChild(i); c.Type() != "class_body" {
					w.walk(c, class)
				}
			}
			w.anon[class]++
			nested := class + entity.NestedSep + strconv.Itoa(w.anon[class])
			w.add(entity.Class(w.path, nested), "", body)
			w.walkChildren(body, nested)
			return
		}

	case methodDeclNodes[nodeType] && class != "":
		name := nodeText(node.ChildByFieldName("name"), w.src)
		if name != "" {
			sig := name + "(" + strings.Join(parameterTypes(node, w.src), ",") + ")"
			w.add(entity.Method(w.path, class, sig), name, node)
		}
		w.walkChildren(node, class)
		return
	}

	w.walkChildren(node, class)
}

func (w *declWalker) walkChildren(node *sitter.Node, class string) {
	for i := range int(node.NamedChildCount()) {
		w.walk(node.NamedChild(i), class)
	}
}

func (w *declWalker) add(id entity.ID, name string, node *sitter.Node) {
	w.decls = append(w.decls, Decl{
		ID:        id,
		Name:      name,
		Package:   w.pkg,
		StartLine: int(node.StartPoint().Row) + 1,
		EndLine:   int(node.EndPoint().Row) + 1,
		Node:      node,
	})
}

// parameterTypes returns the declared parameter types with whitespace removed.
func parameterTypes(method *sitter.Node, src []byte) []string {
	params := method.ChildByFieldName("parameters")
	if params == nil {
		return nil
	}
	var types []string
	for i := range int(params.NamedChildCount()) {
		p := params.NamedChild(i)
		switch p.Type() {
		case "formal_parameter":
			types = append(types, compact(nodeText(p.ChildByFieldName("type"), src)))
		case "spread_parameter":
			for j := range int(p.NamedChildCount()) {
				c := p.NamedChild(j)
				if c.Type() != "modifiers" && c.Type() != "variable_declarator" {
					types = append(types, compact(nodeText(c, src))+"...")
					break
				}
			}
		}
	}
	return types
}

func packageName(root *sitter.Node, src []byte) string {
	for i := range int(root.NamedChildCount()) {
		c := root.NamedChild(i)
		if c.Type() != "package_declaration" {
			continue
		}
		for j := range int(c.NamedChildCount()) {
			n := c.NamedChild(j)
			if n.Type() == "scoped_identifier" || n.Type() == "identifier" {
				return nodeText(n, src)
			}
		}
	}
	return ""
}

func childOfType(node *sitter.Node, nodeType string) *sitter.Node {
	for i := range int(node.NamedChildCount()) {
		if c := node.NamedChild(i); c.Type() == nodeType {
			return c
		}
	}
	return nil
}

// nodeText extracts the source text for a node, or "" when out of bounds.
func nodeText(node *sitter.Node, src []byte) string {
	if node == nil {
		return ""
	}
	start, end := node.StartByte(), node.EndByte()
	if start > end || end > uint32(len(src)) {
		return ""
	}
	return string(src[start:end])
}

func compact(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
