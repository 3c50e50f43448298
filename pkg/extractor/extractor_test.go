package extractor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/defectset/pkg/dataset"
	"github.com/panbanda/defectset/pkg/entity"
	"github.com/panbanda/defectset/pkg/features"
)

type span struct {
	start, end int
	id         entity.ID
}

// fakeResolver is an in-memory identity space rooted at "/tree".
type fakeResolver struct {
	files   map[string]bool
	ids     map[entity.ID]bool
	spans   map[string][]span
	classes map[string]entity.ID
	methods map[string]entity.ID
}

const fakeRoot = "/tree"

func newFakeResolver() *fakeResolver {
	return &fakeResolver{
		files:   make(map[string]bool),
		ids:     make(map[entity.ID]bool),
		spans:   make(map[string][]span),
		classes: make(map[string]entity.ID),
		methods: make(map[string]entity.ID),
	}
}

func (f *fakeResolver) class(file, name string, start, end int) entity.ID {
	id := entity.Class(file, name)
	f.files[file] = true
	f.ids[id] = true
	f.spans[file] = append(f.spans[file], span{start, end, id})
	f.classes[strings.ToLower(name)] = id
	return id
}

func (f *fakeResolver) method(file, class, sig string, start, end int, aliases ...string) entity.ID {
	id := entity.Method(file, class, sig)
	f.files[file] = true
	f.ids[id] = true
	f.spans[file] = append(f.spans[file], span{start, end, id})
	for _, k := range append([]string{class + "." + sig}, aliases...) {
		f.methods[strings.ToLower(file+"|"+k)] = id
	}
	return id
}

func (f *fakeResolver) rel(path string) string {
	return strings.TrimPrefix(path, fakeRoot+"/")
}

func (f *fakeResolver) Root() string { return fakeRoot }

func (f *fakeResolver) Has(id entity.ID) bool {
	return f.ids[id] || (id.Kind() == entity.KindFile && f.files[id.File])
}

func (f *fakeResolver) HasFile(path string) bool { return f.files[f.rel(path)] }

func (f *fakeResolver) ClosestEnclosingID(path string, line int) (entity.ID, bool) {
	var best *span
	for i, s := range f.spans[f.rel(path)] {
		if line >= s.start && line <= s.end && (best == nil || s.end-s.start < best.end-best.start) {
			best = &f.spans[f.rel(path)][i]
		}
	}
	if best == nil {
		return entity.ID{}, false
	}
	return best.id, true
}

func (f *fakeResolver) ClassByLowercaseName(name string) (entity.ID, bool) {
	id, ok := f.classes[strings.ToLower(name)]
	return id, ok
}

func (f *fakeResolver) MethodBySignature(path, sig string) (entity.ID, bool) {
	id, ok := f.methods[strings.ToLower(f.rel(path)+"|"+strings.ReplaceAll(sig, " ", ""))]
	return id, ok
}

func testEnv(t *testing.T, r Resolver, run RunnerFunc) *Env {
	t.Helper()
	env := &Env{
		Project:    "shop",
		Version:    "1.0",
		Tree:       fakeRoot,
		Resolver:   r,
		Drops:      NewDrops(),
		ScratchDir: t.TempDir(),
		Tools: Tools{
			Checkstyle: "checkstyle.jar",
			Checks:     "checks.xml",
			Designite:  "designite.jar",
			CK:         "ck.jar",
			Mood:       "mood.jar",
		},
	}
	if run != nil {
		env.Runner = run
	}
	return env
}

func argAfter(args []string, flag string) string {
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func TestSelect(t *testing.T) {
	tools := Tools{CK: "ck.jar"}

	names := func(exs []Extractor) []string {
		var out []string
		for _, ex := range exs {
			out = append(out, ex.Name())
		}
		return out
	}

	tests := []struct {
		name      string
		requested features.Set
		labels    bool
		want      []string
	}{
		{"single tag", features.NewSet(features.CK), false, []string{"ck"}},
		{"labels requested", features.NewSet(features.CK), true, []string{"bugged", "ck"}},
		{"unavailable tool skipped", features.NewSet(features.Mood, features.Halstead), false, []string{"halstead"}},
		{"missing jar", features.NewSet(features.Checkstyle), false, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, names(Select(Registry(), tt.requested, tt.labels, tools)))
		})
	}

	assert.Equal(t, []string{"mood"}, Skipped(Registry(), features.NewSet(features.Mood, features.CK), tools))
}

func TestRegistryCoversEveryTag(t *testing.T) {
	seen := make(map[features.Type]bool)
	for _, ex := range Registry() {
		for _, typ := range ex.Types() {
			assert.False(t, seen[typ], "tag %s produced twice", typ)
			seen[typ] = true
		}
	}
	for _, typ := range features.AllTypes() {
		assert.True(t, seen[typ], "no adapter produces %s", typ)
	}

	ex, ok := Lookup("designite")
	require.True(t, ok)
	assert.Len(t, ex.Types(), 6)
}

func TestRunStoresOneBatch(t *testing.T) {
	r := newFakeResolver()
	foo := r.method("A.java", "A", "foo()", 1, 10)

	var calls, stored int
	env := testEnv(t, r, nil)
	env.Sink = dataset.SinkFunc(func(_ context.Context, sets ...*dataset.Dataset) error {
		calls++
		stored += len(sets)
		return nil
	})
	env.GroundTruth = staticTruth{
		files:   map[string]bool{"A.java": true},
		methods: map[string]bool{foo.String(): true},
	}

	out, err := Run(context.Background(), Bugged{}, env)
	require.NoError(t, err)
	assert.Len(t, out, 2)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 2, stored)
}

func TestRunWrapsAdapterName(t *testing.T) {
	env := testEnv(t, newFakeResolver(), nil)
	_, err := Run(context.Background(), Bugged{}, env)
	assert.ErrorIs(t, err, ErrToolUnavailable)
	assert.Contains(t, err.Error(), "bugged")
}

func TestScratchKeptOnFailure(t *testing.T) {
	env := testEnv(t, newFakeResolver(), func(context.Context, Command) error { return nil })

	_, err := CK{}.Extract(context.Background(), env)
	require.ErrorIs(t, err, ErrParse)

	entries, err := os.ReadDir(env.ScratchDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "failed runs keep their scratch dir")
}

func TestDrops(t *testing.T) {
	d := NewDrops()
	d.Add("ck", 2)
	d.Add("mood", 1)
	d.Add("ck", 1)

	assert.Equal(t, 3, d.Get("ck"))
	assert.Equal(t, map[string]int{"ck": 3, "mood": 1}, d.Snapshot())
	assert.Equal(t, []string{"ck", "mood"}, d.Adapters())
}

func TestExecRunner(t *testing.T) {
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("requires /bin/sh")
	}
	ctx := context.Background()
	r := &ExecRunner{Timeout: 5 * time.Second}

	dir := t.TempDir()
	require.NoError(t, r.Run(ctx, Command{Name: "/bin/sh", Args: []string{"-c", "echo ok > out.txt"}, Dir: dir}))
	data, err := os.ReadFile(filepath.Join(dir, "out.txt"))
	require.NoError(t, err)
	assert.Equal(t, "ok\n", string(data))

	assert.NoError(t, r.Run(ctx, Command{Name: "/bin/sh", Args: []string{"-c", "exit 3"}}),
		"non-zero exits surface through missing output instead")

	err = r.Run(ctx, Command{Name: filepath.Join(dir, "no-such-tool")})
	assert.ErrorIs(t, err, ErrToolUnavailable)

	slow := &ExecRunner{Timeout: 50 * time.Millisecond}
	err = slow.Run(ctx, Command{Name: "/bin/sh", Args: []string{"-c", "sleep 5"}})
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "got %v", err)
}

type staticTruth struct {
	files   map[string]bool
	methods map[string]bool
}

func (s staticTruth) BuggedFiles(context.Context, string) (map[string]bool, error) {
	return s.files, nil
}

func (s staticTruth) BuggedMethods(context.Context, string) (map[string]bool, error) {
	return s.methods, nil
}
