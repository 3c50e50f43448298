package analyser

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/defectset/pkg/entity"
)

const shopSource = `package org.shop;

import java.util.List;

public class Cart {
    private List<Item> items;

    public Cart() {
        items = null;
    }

    public int total(List<Item> items, int discount) {
        int sum = 0;
        for (Item i : items) {
            sum += i.price;
        }
        return sum - discount;
    }

    static class Item {
        int price;

        int price() {
            return price;
        }
    }

    Runnable task() {
        return new Runnable() {
            public void run() {
                total(null, 0);
            }
        };
    }
}
`

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func newShop(t *testing.T) *Analyser {
	t.Helper()
	root := writeTree(t, map[string]string{
		"src/org/shop/Cart.java":  shopSource,
		"src/org/shop/Empty.java": "package org.shop;\n",
		".git/ignored/X.java":     "class X {}",
		"README.md":               "not java",
	})
	a, err := New(context.Background(), root, WithWorkers(2))
	require.NoError(t, err)
	return a
}

func TestIndexDeclarations(t *testing.T) {
	a := newShop(t)

	assert.Equal(t, []string{"src/org/shop/Cart.java", "src/org/shop/Empty.java"}, a.Files())

	var ids []string
	for _, d := range a.Declarations("src/org/shop/Cart.java") {
		ids = append(ids, d.ID.String())
	}
	assert.Equal(t, []string{
		"src/org/shop/Cart.java@Cart",
		"src/org/shop/Cart.java@Cart.Cart()",
		"src/org/shop/Cart.java@Cart.total(List<Item>,int)",
		"src/org/shop/Cart.java@Cart$Item",
		"src/org/shop/Cart.java@Cart$Item.price()",
		"src/org/shop/Cart.java@Cart.task()",
		"src/org/shop/Cart.java@Cart$1",
		"src/org/shop/Cart.java@Cart$1.run()",
	}, ids)
}

func TestHas(t *testing.T) {
	a := newShop(t)

	assert.True(t, a.Has(entity.MustParse("src/org/shop/Cart.java@Cart$Item")))
	assert.True(t, a.Has(entity.MustParse("src/org/shop/Cart.java")))
	assert.True(t, a.HasFile("src/org/shop/Empty.java"))
	assert.True(t, a.HasFile(filepath.Join(a.Root(), "src", "org", "shop", "Cart.java")))
	assert.False(t, a.Has(entity.MustParse("src/org/shop/Cart.java@Cart.missing()")))
	assert.False(t, a.HasFile(".git/ignored/X.java"))
}

func TestClosestEnclosingID(t *testing.T) {
	a := newShop(t)
	file := filepath.Join(a.Root(), "src/org/shop/Cart.java")

	tests := []struct {
		line int
		want string
	}{
		{6, "src/org/shop/Cart.java@Cart"},
		{15, "src/org/shop/Cart.java@Cart.total(List<Item>,int)"},
		{24, "src/org/shop/Cart.java@Cart$Item.price()"},
		{31, "src/org/shop/Cart.java@Cart$1.run()"},
	}
	for _, tt := range tests {
		id, ok := a.ClosestEnclosingID(file, tt.line)
		require.True(t, ok, "line %d", tt.line)
		assert.Equal(t, tt.want, id.String(), "line %d", tt.line)
	}

	_, ok := a.ClosestEnclosingID(file, 2)
	assert.False(t, ok, "imports are outside every declaration")
}

func TestClassByLowercaseName(t *testing.T) {
	a := newShop(t)

	for _, name := range []string{"cart", "CART", "org.shop.Cart"} {
		id, ok := a.ClassByLowercaseName(name)
		require.True(t, ok, name)
		assert.Equal(t, "src/org/shop/Cart.java@Cart", id.String())
	}

	id, ok := a.ClassByLowercaseName("cart.item")
	require.True(t, ok)
	assert.Equal(t, "Cart$Item", id.Class)

	_, ok = a.ClassByLowercaseName("Wallet")
	assert.False(t, ok)
}

func TestMethodBySignature(t *testing.T) {
	a := newShop(t)
	file := "src/org/shop/Cart.java"

	for _, sig := range []string{
		"Cart.total(List<Item>, int)",
		"cart.total(list,int)",
		"Cart.total",
	} {
		id, ok := a.MethodBySignature(file, sig)
		require.True(t, ok, sig)
		assert.Equal(t, "total(List<Item>,int)", id.Method, sig)
	}

	_, ok := a.MethodBySignature(file, "Cart.total(String)")
	assert.False(t, ok)
}

func TestStripGenerics(t *testing.T) {
	assert.Equal(t, "map(Map,List)", StripGenerics("map(Map<String,List<Integer>>,List<T>)"))
	assert.Equal(t, "run()", StripGenerics("run()"))
}
