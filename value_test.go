package formtree_test

import (
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	formtree "github.com/formtree/formtree"
)

func TestValue_MarshalJSONKeepsOrder(t *testing.T) {
	tree, err := formtree.ParseURLEncoded("b=1&a=2&list[]=x&list[]=y")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	defer tree.Close()

	out, err := tree.Root().MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"b":"1","a":"2","list":["x","y"]}`
	if string(out) != want {
		t.Fatalf("want %s, got %s", want, out)
	}
}

func TestValue_MarshalJSONEscapes(t *testing.T) {
	tree := formtree.NewTree()
	p, err := formtree.ParsePath(`msg`)
	if err != nil {
		t.Fatalf("parse path: %v", err)
	}
	if err := tree.Merge(p, formtree.TextValue("a\"b\n")); err != nil {
		t.Fatalf("merge: %v", err)
	}
	out, err := tree.Root().MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"msg":"a\"b\n"}` {
		t.Fatalf("escaping: got %s", out)
	}
}

func TestValue_MarshalYAMLKeepsOrder(t *testing.T) {
	tree, err := formtree.ParseURLEncoded("z=1&m=2&a=3")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	defer tree.Close()

	out, err := yaml.Marshal(tree.Root())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(lines) != 3 || !strings.HasPrefix(lines[0], "z:") || !strings.HasPrefix(lines[1], "m:") || !strings.HasPrefix(lines[2], "a:") {
		t.Fatalf("yaml order lost:\n%s", out)
	}
}

func TestTree_LookupMisses(t *testing.T) {
	tree, err := formtree.ParseURLEncoded("a[b]=1")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	defer tree.Close()

	v, err := tree.Lookup("a[missing]")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if v != nil {
		t.Fatalf("want nil for absent path, got %v", v)
	}
	if _, err := tree.Lookup("a[]"); err == nil {
		t.Fatalf("append segment should not be addressable")
	}
}

func TestValue_KindAccessorsAreShapeSafe(t *testing.T) {
	tree, err := formtree.ParseURLEncoded("a=1&list[]=x")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	defer tree.Close()

	a := tree.Root().Get("a")
	if a.Kind() != formtree.KindText || !a.IsScalar() {
		t.Fatalf("a should be a text leaf")
	}
	if a.At(0) != nil || a.Keys() != nil || a.Upload() != nil {
		t.Fatalf("cross-shape accessors must return zero values")
	}
	list := tree.Root().Get("list")
	if list.Kind() != formtree.KindArray || list.Len() != 1 {
		t.Fatalf("list should be a one-element array")
	}
	if list.Text() != "" || list.Get("x") != nil {
		t.Fatalf("cross-shape accessors must return zero values")
	}
}
