package formtree_test

import (
	"testing"

	formtree "github.com/formtree/formtree"
)

func TestParsePath_Shapes(t *testing.T) {
	cases := []struct {
		raw  string
		want []formtree.Segment
	}{
		{"user", []formtree.Segment{{Kind: formtree.SegKey, Key: "user"}}},
		{"user[name]", []formtree.Segment{
			{Kind: formtree.SegKey, Key: "user"},
			{Kind: formtree.SegKey, Key: "name"},
		}},
		{"tags[]", []formtree.Segment{
			{Kind: formtree.SegKey, Key: "tags"},
			{Kind: formtree.SegAppend},
		}},
		{"items[2]", []formtree.Segment{
			{Kind: formtree.SegKey, Key: "items"},
			{Kind: formtree.SegIndex, Index: 2},
		}},
		{"a[b][0][]", []formtree.Segment{
			{Kind: formtree.SegKey, Key: "a"},
			{Kind: formtree.SegKey, Key: "b"},
			{Kind: formtree.SegIndex, Index: 0},
			{Kind: formtree.SegAppend},
		}},
		// key text is preserved verbatim
		{"User[ Name ]", []formtree.Segment{
			{Kind: formtree.SegKey, Key: "User"},
			{Kind: formtree.SegKey, Key: " Name "},
		}},
	}
	for _, tc := range cases {
		got, err := formtree.ParsePath(tc.raw)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.raw, err)
		}
		if len(got) != len(tc.want) {
			t.Fatalf("%s: want %d segments, got %d", tc.raw, len(tc.want), len(got))
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("%s: segment %d: want %+v, got %+v", tc.raw, i, tc.want[i], got[i])
			}
		}
	}
}

func TestParsePath_RoundTrip(t *testing.T) {
	for _, raw := range []string{"a", "a[b]", "a[]", "a[0]", "user[tags][]", "a[b][2][c][]"} {
		p, err := formtree.ParsePath(raw)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", raw, err)
		}
		if p.String() != raw {
			t.Fatalf("round trip: want %q, got %q", raw, p.String())
		}
	}
}

func TestParsePath_Malformed(t *testing.T) {
	for _, raw := range []string{"", "[a]", "a[b", "a]b", "a[b]c", "a[[b]]", "[", "[]"} {
		_, err := formtree.ParsePath(raw)
		if err == nil {
			t.Fatalf("%q: expected malformed_key, got nil", raw)
		}
		iss, ok := formtree.AsIssues(err)
		if !ok || iss[0].Code != formtree.CodeMalformedKey {
			t.Fatalf("%q: want malformed_key, got %v", raw, err)
		}
	}
}

func TestParsePath_Deterministic(t *testing.T) {
	a, err := formtree.ParsePath("a[b][]")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := formtree.ParsePath("a[b][]")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.String() != b.String() {
		t.Fatalf("parser is not pure: %q vs %q", a.String(), b.String())
	}
}
