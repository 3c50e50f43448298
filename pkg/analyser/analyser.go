// Package analyser indexes the Java declarations of one checked-out source tree and
// answers the identity questions tool adapters ask when they normalize raw output.
package analyser

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/panbanda/defectset/internal/fileproc"
	"github.com/panbanda/defectset/pkg/entity"
)

// JavaExt is the only source extension indexed.
const JavaExt = ".java"

// Analyser is an immutable index of the classes and methods in a source tree.
type Analyser struct {
	root    string
	files   []string
	decls   map[string][]Decl // by file, Node stripped
	ids     map[entity.ID]struct{}
	classes map[string]entity.ID // lowercase class name variants
	methods map[string]entity.ID // lowercase "file|Class.sig" variants
	workers int
}

// Option configures an Analyser.
type Option func(*Analyser)

// WithWorkers sets the number of files parsed in parallel.
func WithWorkers(n int) Option {
	return func(a *Analyser) {
		a.workers = n
	}
}

// New walks root, parses every Java file and builds the index.
func New(ctx context.Context, root string, opts ...Option) (*Analyser, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve source root: %w", err)
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		abs = real
	}

	a := &Analyser{
		root:    abs,
		decls:   make(map[string][]Decl),
		ids:     make(map[entity.ID]struct{}),
		classes: make(map[string]entity.ID),
		methods: make(map[string]entity.ID),
	}
	for _, opt := range opts {
		opt(a)
	}

	files, err := JavaFiles(abs)
	if err != nil {
		return nil, err
	}
	a.files = files

	parsed, errs := fileproc.MapFiles(ctx, files, a.workers, func(ctx context.Context, psr *sitter.Parser, rel string) ([]Decl, error) {
		p, err := a.ParseFile(ctx, psr, rel)
		if err != nil {
			return nil, err
		}
		defer p.Close()
		out := make([]Decl, len(p.Decls))
		for i, d := range p.Decls {
			d.Node = nil
			out[i] = d
		}
		return out, nil
	}, nil)
	if errs.HasErrors() {
		return nil, fmt.Errorf("failed to index %s: %w", abs, errs)
	}

	for _, ds := range parsed {
		if len(ds) > 0 {
			a.decls[ds[0].ID.File] = ds
		}
	}
	// Sorted file order makes first-declaration-wins deterministic.
	for _, f := range a.files {
		for _, d := range a.decls[f] {
			a.index(d)
		}
	}
	return a, nil
}

// JavaFiles lists the tree-relative slash paths of every Java file under root, sorted.
// Hidden directories are skipped.
func JavaFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(path), JavaExt) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	sort.Strings(files)
	return files, nil
}

// ParseFile reads and parses one tree-relative file. The caller must Close the result.
func (a *Analyser) ParseFile(ctx context.Context, psr *sitter.Parser, rel string) (*Parsed, error) {
	src, err := os.ReadFile(filepath.Join(a.root, filepath.FromSlash(rel)))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return Parse(ctx, psr, rel, src)
}

func (a *Analyser) index(d Decl) {
	a.ids[d.ID] = struct{}{}
	file := strings.ToLower(d.ID.File)

	if d.ID.Kind() == entity.KindClass {
		nested := strings.ToLower(d.ID.Class)
		dotted := strings.ReplaceAll(nested, entity.NestedSep, ".")
		keys := []string{nested, dotted}
		if d.Name != "" {
			keys = append(keys, strings.ToLower(d.Name))
		}
		if d.Package != "" {
			keys = append(keys, strings.ToLower(d.Package)+"."+dotted)
		}
		for _, k := range keys {
			if _, ok := a.classes[k]; !ok {
				a.classes[k] = d.ID
			}
		}
		return
	}

	class := strings.ToLower(d.ID.Class)
	sig := strings.ToLower(d.ID.Method)
	keys := []string{
		class + "." + sig,
		class + "." + StripGenerics(sig),
		class + "." + strings.ToLower(d.Name),
	}
	if dotted := strings.ReplaceAll(class, entity.NestedSep, "."); dotted != class {
		keys = append(keys, dotted+"."+sig, dotted+"."+strings.ToLower(d.Name))
	}
	for _, k := range keys {
		key := file + "|" + k
		if _, ok := a.methods[key]; !ok {
			a.methods[key] = d.ID
		}
	}
}

// Root returns the absolute source root.
func (a *Analyser) Root() string {
	return a.root
}

// Files returns the indexed tree-relative paths in sorted order.
func (a *Analyser) Files() []string {
	out := make([]string, len(a.files))
	copy(out, a.files)
	return out
}

// Declarations returns the declarations of one file in source order.
func (a *Analyser) Declarations(rel string) []Decl {
	return a.decls[rel]
}

// Len returns the number of indexed classes and methods.
func (a *Analyser) Len() int {
	return len(a.ids)
}

// Rel converts an absolute or root-relative path to the tree-relative slash form.
func (a *Analyser) Rel(path string) (string, bool) {
	path = filepath.FromSlash(strings.ReplaceAll(path, `\`, "/"))
	if !filepath.IsAbs(path) {
		return filepath.ToSlash(filepath.Clean(path)), true
	}
	try := func(p string) (string, bool) {
		rel, err := filepath.Rel(a.root, p)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return "", false
		}
		return filepath.ToSlash(rel), true
	}
	if rel, ok := try(path); ok {
		return rel, true
	}
	if real, err := filepath.EvalSymlinks(path); err == nil {
		return try(real)
	}
	return "", false
}

// HasFile reports whether path names an indexed Java file.
func (a *Analyser) HasFile(path string) bool {
	rel, ok := a.Rel(path)
	if !ok {
		return false
	}
	_, ok = a.decls[rel]
	if !ok {
		i := sort.SearchStrings(a.files, rel)
		ok = i < len(a.files) && a.files[i] == rel
	}
	return ok
}

// Has reports whether id is a known class or method. File IDs are known when the file
// is indexed.
func (a *Analyser) Has(id entity.ID) bool {
	if id.Kind() == entity.KindFile {
		return a.HasFile(id.File)
	}
	_, ok := a.ids[id]
	return ok
}

// ClosestEnclosingID returns the innermost class or method whose line span contains
// line. Methods win ties against the class declared on the same lines.
func (a *Analyser) ClosestEnclosingID(path string, line int) (entity.ID, bool) {
	rel, ok := a.Rel(path)
	if !ok {
		return entity.ID{}, false
	}
	var (
		best  Decl
		found bool
	)
	for _, d := range a.decls[rel] {
		if line < d.StartLine || line > d.EndLine {
			continue
		}
		if !found || d.Span() < best.Span() ||
			(d.Span() == best.Span() && d.ID.Kind() == entity.KindMethod && best.ID.Kind() != entity.KindMethod) {
			best, found = d, true
		}
	}
	return best.ID, found
}

// ClassByLowercaseName resolves a class by simple, nested or fully qualified name,
// ignoring case. The first declaration in sorted file order wins.
func (a *Analyser) ClassByLowercaseName(name string) (entity.ID, bool) {
	id, ok := a.classes[strings.ToLower(strings.TrimSpace(name))]
	return id, ok
}

// MethodBySignature resolves "Class.method(params)" or "Class.method" within a file,
// ignoring case and whitespace.
func (a *Analyser) MethodBySignature(path, signature string) (entity.ID, bool) {
	rel, ok := a.Rel(path)
	if !ok {
		return entity.ID{}, false
	}
	key := strings.ToLower(rel) + "|" + strings.ToLower(compact(signature))
	id, ok := a.methods[key]
	return id, ok
}

var genericsRe = regexp.MustCompile(`<[^<>]*>`)

// StripGenerics removes generic type arguments, including nested ones.
func StripGenerics(s string) string {
	for {
		next := genericsRe.ReplaceAllString(s, "")
		if next == s {
			return s
		}
		s = next
	}
}
