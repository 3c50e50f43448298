package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want ID
		kind Kind
	}{
		{"file", "src/pkg/Foo.java", File("src/pkg/Foo.java"), KindFile},
		{"class", "src/pkg/Foo.java@Foo", Class("src/pkg/Foo.java", "Foo"), KindClass},
		{"method", "src/pkg/Foo.java@Foo.bar(int)", Method("src/pkg/Foo.java", "Foo", "bar(int)"), KindMethod},
		{"dotted params", "A.java@A.put(java.util.Map)", Method("A.java", "A", "put(java.util.Map)"), KindMethod},
		{"nested", "A.java@A$Inner.run()", Method("A.java", "A$Inner", "run()"), KindMethod},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.kind, got.Kind())
			assert.Equal(t, tt.in, got.String())
		})
	}
}

func TestParseInvalid(t *testing.T) {
	for _, in := range []string{"", "@Foo", "a.java@", "a.java@.bar()", "a@b@c"} {
		_, err := Parse(in)
		assert.ErrorIs(t, err, ErrInvalidID, "input %q", in)
	}
}

func TestBoundaryRule(t *testing.T) {
	id := MustParse("src/pkg/Foo.java@Foo.bar(int)")
	assert.Equal(t, "src/pkg/Foo.java", id.File)
	assert.Equal(t, "Foo", id.OutermostClass())

	nested := MustParse("src/pkg/Foo.java@Foo$Inner.baz()")
	assert.Equal(t, "Foo", nested.OutermostClass())
	assert.Equal(t, Class("src/pkg/Foo.java", "Foo"), nested.ClassID())

	anon := MustParse("src/pkg/Foo.java@Foo$Inner$1.call()")
	assert.Equal(t, "Foo", anon.OutermostClass())
}

func TestLess(t *testing.T) {
	a := MustParse("A.java@A.a()")
	b := MustParse("A.java@A.b()")
	c := MustParse("B.java@B")
	assert.True(t, a.Less(b))
	assert.True(t, b.Less(c))
	assert.False(t, c.Less(a))
}
