package extractor

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/defectset/pkg/analyser"
	"github.com/panbanda/defectset/pkg/dataset"
	"github.com/panbanda/defectset/pkg/entity"
	"github.com/panbanda/defectset/pkg/features"
)

func TestParseCheckstyleMessage(t *testing.T) {
	tests := []struct {
		msg   string
		key   string
		value float64
		ok    bool
	}{
		// The value is the configured bound, not the observed 120.
		{"Method length is 120 lines (max allowed is 100)", "Method_length", 100, true},
		{"File length is 2,345 lines (max allowed is 2,000).", "File_length", 2000, true},
		{"Cyclomatic Complexity is 12 (max allowed is 10).", "Cyclomatic_Complexity", 10, true},
		{"More than 7 parameters (found 9).", "", 0, false},
		{"Missing a Javadoc comment.", "", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			key, value, ok := ParseCheckstyleMessage(tt.msg)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.key, key)
			assert.Equal(t, tt.value, value)
		})
	}
}

const checkstyleFixture = `<?xml version="1.0" encoding="UTF-8"?>
<checkstyle version="10.12.0">
<file name="/tree/src/A.java">
<error line="5" column="3" severity="warning" message="Method length is 120 lines (max allowed is 100)." source="MethodLengthCheck"/>
<error line="5" severity="warning" message="Cyclomatic Complexity is 12 (max allowed is 10)." source="CyclomaticComplexityCheck"/>
<error line="40" severity="warning" message="Method length is 60 lines (max allowed is 50)." source="MethodLengthCheck"/>
<error line="2" severity="warning" message="Missing a Javadoc comment." source="JavadocTypeCheck"/>
<error line="99" severity="warning" message="Method length is 80 lines (max allowed is 50)." source="MethodLengthCheck"/>
</file>
<file name="/tree/src/notes.txt">
<error line="1" severity="warning" message="Anonymous inner class length is 9 lines (max allowed is 1)." source="X"/>
</file>
</checkstyle>
`

func TestCheckstyleExtract(t *testing.T) {
	r := newFakeResolver()
	r.class("src/A.java", "A", 1, 50)
	foo := r.method("src/A.java", "A", "foo()", 3, 20)
	bar := r.method("src/A.java", "A", "bar()", 30, 45)

	var seen Command
	env := testEnv(t, r, func(_ context.Context, cmd Command) error {
		seen = cmd
		return os.WriteFile(argAfter(cmd.Args, "-o"), []byte(checkstyleFixture), 0o644)
	})

	out, err := Checkstyle{}.Extract(context.Background(), env)
	require.NoError(t, err)
	assert.Equal(t, "java", seen.Name)
	assert.Equal(t, []string{"-jar", "checkstyle.jar", "-c", "checks.xml", "-f", "xml"}, seen.Args[:6])
	assert.Equal(t, fakeRoot, seen.Args[len(seen.Args)-1])

	d := out.ByType(features.Checkstyle)
	require.NotNil(t, d)
	assert.Equal(t, []entity.ID{bar, foo}, d.IDs())

	v, _ := d.Value(foo, "Method_length")
	assert.Equal(t, "100", v.String())
	v, _ = d.Value(foo, "Cyclomatic_Complexity")
	assert.Equal(t, "10", v.String())
	v, ok := d.Value(bar, "Cyclomatic_Complexity")
	require.True(t, ok, "every entity gets every key")
	assert.Equal(t, "0", v.String())
	_, ok = d.Value(foo, "Anonymous_inner_class_length")
	assert.False(t, ok, "non-Java files are ignored")

	assert.Equal(t, 1, env.Drops.Get("checkstyle"))

	entries, err := os.ReadDir(env.ScratchDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "scratch is removed after a successful parse")
}

func TestCheckstyleMalformedOutput(t *testing.T) {
	env := testEnv(t, newFakeResolver(), func(_ context.Context, cmd Command) error {
		return os.WriteFile(argAfter(cmd.Args, "-o"), []byte("<checkstyle><file"), 0o644)
	})
	_, err := Checkstyle{}.Extract(context.Background(), env)
	assert.ErrorIs(t, err, ErrParse)
}

func TestDesigniteKey(t *testing.T) {
	tests := []struct {
		name                     string
		root, file, pkg, typ, mt string
		want                     string
		ok                       bool
	}{
		{"class", "/tree", "/tree/src/org/shop/Cart.java", "org.shop", "Cart", "", "src/org/shop/Cart.java@Cart", true},
		{"method", "/tree/", "/tree/src/org/shop/Cart.java", "org.shop", "Cart", "total", "src/org/shop/Cart.java@Cart.total", true},
		{"windows paths", `C:\tree`, `C:\tree\src\Cart.java`, "org.shop", "Cart", "", "src/Cart.java@Cart", true},
		{"default package", "/tree", "/tree/Cart.java", "(default package)", "Cart", "", "Cart.java@Cart", true},
		{"not java", "/tree", "/tree/build.gradle", "x", "Cart", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := DesigniteKey(tt.root, tt.file, tt.pkg, tt.typ, tt.mt)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, id.String())
			}
		})
	}
}

func writeReports(t *testing.T, dir string, reports map[string]string) {
	t.Helper()
	for name, content := range reports {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
}

const designiteHead = "Project Name,File Path,Package Name,Type Name"

var designiteFixture = map[string]string{
	"designCodeSmells.csv": designiteHead + ",Code Smell,Cause of the Smell\n" +
		"shop,/tree/src/org/shop/Cart.java,org.shop,Cart,Deficient Encapsulation,public field\n" +
		"shop,/tree/src/org/shop/Gone.java,org.shop,Gone,Deficient Encapsulation,public field\n",
	"implementationCodeSmells.csv": designiteHead + ",Method Name,Code Smell,Cause of the Smell\n" +
		"shop,/tree/src/org/shop/Cart.java,org.shop,Cart,total,Long Method,too long\n" +
		"shop,/tree/src/org/shop/Cart.java,org.shop,Cart,total,Magic Number,42\n",
	"organicTypeCodeSmells.csv":   designiteHead + ",Code Smell\n",
	"organicMethodCodeSmells.csv": designiteHead + ",Method Name,Code Smell\n",
	"typeMetrics.csv": designiteHead + ",LOC,NOM\n" +
		"shop,/tree/src/org/shop/Cart.java,org.shop,Cart,120,7\n" +
		"shop,/tree/src/org/shop/Cart.java,org.shop,Cart,,7\n",
	"methodMetrics.csv": designiteHead + ",MethodName,LOC,CC\n" +
		"shop,/tree/src/org/shop/Cart.java,org.shop,Cart,total,11,3\n",
}

func TestDesigniteExtract(t *testing.T) {
	r := newFakeResolver()
	cart := r.class("src/org/shop/Cart.java", "Cart", 1, 100)
	total := r.method("src/org/shop/Cart.java", "Cart", "total(int)", 10, 20, "Cart.total")

	env := testEnv(t, r, func(_ context.Context, cmd Command) error {
		writeReports(t, argAfter(cmd.Args, "-o"), designiteFixture)
		return nil
	})

	out, err := Designite{}.Extract(context.Background(), env)
	require.NoError(t, err)
	require.Len(t, out, 6)

	design := out.ByType(features.DesigniteDesign)
	assert.Equal(t, []entity.ID{cart}, design.IDs())
	row, _ := design.Row(cart)
	assert.Len(t, row, len(features.Columns(features.DesigniteDesign)))
	assert.True(t, row["Deficient Encapsulation"].Truth())
	assert.False(t, row["Broken Hierarchy"].Truth())

	impl := out.ByType(features.DesigniteImplementation)
	row, _ = impl.Row(total)
	assert.True(t, row["Long Method"].Truth())
	assert.True(t, row["Magic Number"].Truth())
	assert.False(t, row["Long Statement"].Truth())

	assert.Zero(t, out.ByType(features.DesigniteTypeOrganic).Len())

	types := out.ByType(features.DesigniteTypeMetrics)
	v, _ := types.Value(cart, "LOC")
	assert.Equal(t, "120", v.String(), "rows with empty fields are dropped")

	methods := out.ByType(features.DesigniteMethodMetrics)
	v, _ = methods.Value(total, "CC")
	assert.Equal(t, "3", v.String())

	assert.Equal(t, 2, env.Drops.Get("designite"))
}

func TestSignatureVariants(t *testing.T) {
	assert.Equal(t, []string{
		"cart<t>.total(list<item>,int)",
		"cart<t>.total",
		"cart.total(list,int)",
		"cart.total",
	}, SignatureVariants("Cart<T>.total(List<Item>,int)"))

	assert.Equal(t, []string{"cart.run()", "cart.run"}, SignatureVariants("Cart.run()"))
}

func TestResolveSignatureVariants(t *testing.T) {
	r := newFakeResolver()
	exact := r.method("A.java", "A", "put(Map<K,V>)", 1, 5)
	byName := r.method("A.java", "A", "get(int)", 6, 9, "A.get")

	tests := []struct {
		method string
		want   entity.ID
		ok     bool
	}{
		{"A.put(Map<K,V>)", exact, true},
		{"a.get(long)", byName, true},
		{"A<T>.get(int)", byName, true},
		{"A.missing()", entity.ID{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			id, ok := ResolveSignatureVariants(r, "A.java", tt.method)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestSourceMonitorExtract(t *testing.T) {
	r := newFakeResolver()
	run := r.method("src/A.java", "A", "run(int)", 1, 5, "A.run")

	reports := map[string]string{
		smFilesReport: "Project Name,Checkpoint Name,Created On,File Name,Lines,Name of Most Complex Method*\n" +
			"p,c,today,src\\A.java,120,A.run()\n" +
			"p,c,today,src\\Missing.java,5,x\n",
		smMethodsReport: "Project Name,Checkpoint Name,Created On,File Name,Method,Complexity,Statements\n" +
			"p,c,today,src\\A.java,A<T>.run(int),4,12\n" +
			"p,c,today,src\\A.java,A.nothing(),1,1\n",
	}

	env := testEnv(t, r, func(_ context.Context, cmd Command) error {
		require.Equal(t, "/C", cmd.Args[0])
		data, err := os.ReadFile(cmd.Args[1])
		require.NoError(t, err)
		require.Contains(t, string(data), "<sourcemonitor_commands>")
		writeReports(t, filepath.Dir(cmd.Args[1]), reports)
		return nil
	})
	env.Tools.SourceMonitor = "SourceMonitor.exe"

	out, err := SourceMonitor{}.Extract(context.Background(), env)
	require.NoError(t, err)

	files := out.ByType(features.SourceMonitorFiles)
	row, ok := files.Row(entity.File("src/A.java"))
	require.True(t, ok)
	assert.Equal(t, dataset.Row{"Lines": dataset.Number(120)}, row)

	methods := out.ByType(features.SourceMonitor)
	assert.Equal(t, []entity.ID{run}, methods.IDs())
	v, _ := methods.Value(run, "Complexity")
	assert.Equal(t, "4", v.String())

	assert.Equal(t, 2, env.Drops.Get("sourcemonitor"))
}

func TestSourceMonitorUnavailable(t *testing.T) {
	env := testEnv(t, newFakeResolver(), nil)
	_, err := SourceMonitor{}.Extract(context.Background(), env)
	assert.ErrorIs(t, err, ErrToolUnavailable)
	assert.False(t, SourceMonitor{}.Available(env.Tools))
}

func TestCKExtract(t *testing.T) {
	r := newFakeResolver()
	r.class("src/A.java", "A", 1, 50)
	foo := r.method("src/A.java", "A", "foo()", 3, 20)

	report := "file,class,method,constructor,line,cbo,wmc,loc\n" +
		"/tree/src/A.java,A,foo/0,False,3,2,4,18\n" +
		"/tree/src/A.java,A,foo/0,False,4,9,9,99\n" +
		"/tree/src/A.java,A,outside/0,False,70,1,1,1\n" +
		"/tree/src/A.java,A,broken/0,False,n/a,1,1,1\n"

	env := testEnv(t, r, func(_ context.Context, cmd Command) error {
		assert.Equal(t, []string{"-jar", "ck.jar"}, cmd.Args[:2])
		assert.Equal(t, "True", cmd.Args[3])
		writeReports(t, cmd.Dir, map[string]string{ckMethodReport: report})
		return nil
	})

	out, err := CK{}.Extract(context.Background(), env)
	require.NoError(t, err)

	d := out.ByType(features.CK)
	assert.Equal(t, []entity.ID{foo}, d.IDs())
	row, _ := d.Row(foo)
	assert.Equal(t, dataset.Row{
		"constructor": dataset.Bool(false),
		"cbo":         dataset.Number(2),
		"wmc":         dataset.Number(4),
		"loc":         dataset.Number(18),
	}, row, "first row wins and identity columns are dropped")

	assert.Equal(t, 2, env.Drops.Get("ck"))
}

func TestParseMoodReport(t *testing.T) {
	report, err := ParseMoodReport([]byte(`{"Cart": {"MHF": 0.5, "AHF": 1}}`))
	require.NoError(t, err)
	assert.Equal(t, 0.5, report["Cart"]["MHF"])

	for _, bad := range []string{
		`{"Cart": {"MHF": "high"}}`,
		`["Cart"]`,
		`{"Cart": 3}`,
		`not json`,
	} {
		_, err := ParseMoodReport([]byte(bad))
		assert.ErrorIs(t, err, ErrParse, bad)
	}
}

func TestMoodExtract(t *testing.T) {
	r := newFakeResolver()
	cart := r.class("src/Cart.java", "Cart", 1, 10)

	env := testEnv(t, r, func(_ context.Context, cmd Command) error {
		out := cmd.Args[len(cmd.Args)-1]
		writeReports(t, out, map[string]string{moodReport: `{"CART": {"MHF": 0.25}, "Ghost": {"MHF": 1}}`})
		return nil
	})

	out, err := Mood{}.Extract(context.Background(), env)
	require.NoError(t, err)

	d := out.ByType(features.Mood)
	v, ok := d.Value(cart, "MHF")
	require.True(t, ok)
	assert.Equal(t, "0.25", v.String())
	assert.Equal(t, 1, env.Drops.Get("mood"))
}

func TestBuggedExtract(t *testing.T) {
	r := newFakeResolver()
	foo := r.method("src/A.java", "A", "foo()", 1, 5)

	env := testEnv(t, r, nil)
	env.GroundTruth = staticTruth{
		files: map[string]bool{"src/A.java": true, "src/Deleted.java": false},
		methods: map[string]bool{
			foo.String():                       true,
			"src/A.java@A.gone()":              true,
			"not an id @ @":                    true,
			entity.File("src/A.java").String(): false,
		},
	}

	out, err := Bugged{}.Extract(context.Background(), env)
	require.NoError(t, err)

	files := out.ByType(features.Bugged)
	v, ok := files.Value(entity.File("src/A.java"), BuggyColumn)
	require.True(t, ok)
	assert.True(t, v.Truth())
	assert.Equal(t, 1, files.Len())

	methods := out.ByType(features.BuggedMethods)
	assert.Equal(t, []entity.ID{foo}, methods.IDs())

	assert.Equal(t, 4, env.Drops.Get("bugged"))
}

const halsteadSource = `package p;

class Calc {
    int add(int a, int b) {
        return a + b;
    }

    int twice(int a) {
        int r = add(a, a);
        return r * 2;
    }
}
`

func TestHalsteadExtract(t *testing.T) {
	tree := t.TempDir()
	path := filepath.Join(tree, "src", "Calc.java")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(halsteadSource), 0o644))

	a, err := analyser.New(context.Background(), tree)
	require.NoError(t, err)

	env := testEnv(t, a, nil)
	env.Tree = tree

	out, err := Halstead{Workers: 2}.Extract(context.Background(), env)
	require.NoError(t, err)

	d := out.ByType(features.Halstead)
	var ids []string
	for _, id := range d.IDs() {
		ids = append(ids, id.String())
	}
	assert.Equal(t, []string{
		"src/Calc.java@Calc",
		"src/Calc.java@Calc.add(int,int)",
		"src/Calc.java@Calc.twice(int)",
	}, ids)

	cols := d.Columns()
	require.Len(t, cols, 9)
	for _, c := range cols {
		assert.Equal(t, dataset.KindNumber, c.Kind)
		assert.Contains(t, features.Columns(features.Halstead), c.Name)
	}

	add, _ := d.Value(entity.MustParse("src/Calc.java@Calc.add(int,int)"), "getLength")
	twice, _ := d.Value(entity.MustParse("src/Calc.java@Calc.twice(int)"), "getLength")
	class, _ := d.Value(entity.MustParse("src/Calc.java@Calc"), "getLength")
	af, _ := add.Float()
	tf, _ := twice.Float()
	cf, _ := class.Float()
	assert.Less(t, af, tf)
	assert.Greater(t, cf, af+tf-1)
	assert.Zero(t, env.Drops.Get("halstead"))
}

// sameOutput asserts that two runs produced the same datasets, down to the CSV bytes.
func sameOutput(t *testing.T, first, second dataset.Composite) {
	t.Helper()
	require.Len(t, second, len(first))
	for i, d := range first {
		other := second[i]
		assert.Equal(t, d.Type(), other.Type())
		assert.Equal(t, d.Fingerprint(), other.Fingerprint(), "%s fingerprint", d.Type())

		var a, b bytes.Buffer
		require.NoError(t, dataset.WriteCSV(&a, d))
		require.NoError(t, dataset.WriteCSV(&b, other))
		assert.Equal(t, a.String(), b.String(), "%s csv", d.Type())
	}
}

func TestAdaptersAreDeterministic(t *testing.T) {
	t.Run("checkstyle", func(t *testing.T) {
		r := newFakeResolver()
		r.class("src/A.java", "A", 1, 50)
		r.method("src/A.java", "A", "foo()", 3, 20)
		r.method("src/A.java", "A", "bar()", 30, 45)
		run := func(_ context.Context, cmd Command) error {
			return os.WriteFile(argAfter(cmd.Args, "-o"), []byte(checkstyleFixture), 0o644)
		}

		first, err := Checkstyle{}.Extract(context.Background(), testEnv(t, r, run))
		require.NoError(t, err)
		second, err := Checkstyle{}.Extract(context.Background(), testEnv(t, r, run))
		require.NoError(t, err)
		sameOutput(t, first, second)
	})

	t.Run("designite", func(t *testing.T) {
		r := newFakeResolver()
		r.class("src/org/shop/Cart.java", "Cart", 1, 100)
		r.method("src/org/shop/Cart.java", "Cart", "total(int)", 10, 20, "Cart.total")
		run := func(_ context.Context, cmd Command) error {
			writeReports(t, argAfter(cmd.Args, "-o"), designiteFixture)
			return nil
		}

		first, err := Designite{}.Extract(context.Background(), testEnv(t, r, run))
		require.NoError(t, err)
		second, err := Designite{}.Extract(context.Background(), testEnv(t, r, run))
		require.NoError(t, err)
		sameOutput(t, first, second)
	})

	t.Run("halstead", func(t *testing.T) {
		tree := t.TempDir()
		for _, name := range []string{"Calc.java", "Calc2.java", "Calc3.java"} {
			path := filepath.Join(tree, "src", name)
			src := strings.Replace(halsteadSource, "class Calc ", "class "+strings.TrimSuffix(name, ".java")+" ", 1)
			require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
			require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
		}
		a, err := analyser.New(context.Background(), tree)
		require.NoError(t, err)

		extract := func() dataset.Composite {
			env := testEnv(t, a, nil)
			env.Tree = tree
			out, err := Halstead{Workers: 3}.Extract(context.Background(), env)
			require.NoError(t, err)
			return out
		}
		first := extract()
		require.Equal(t, 9, first.ByType(features.Halstead).Len())
		sameOutput(t, first, extract())
	})
}

func TestToolCSV(t *testing.T) {
	tbl, err := parseToolCSV(strings.NewReader("\ufeffa, b\n1,\n2,3,extra\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, tbl.header)
	assert.Equal(t, []map[string]string{{"a": "1", "b": ""}, {"a": "2", "b": "3"}}, tbl.rows)

	assert.ErrorIs(t, tbl.require("a", "c"), ErrParse)

	_, err = parseToolCSV(strings.NewReader(""))
	assert.Error(t, err)
}
