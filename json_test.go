package formtree_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	formtree "github.com/formtree/formtree"
)

func parseJSONString(t *testing.T, body string, opts ...formtree.Options) (*formtree.Tree, error) {
	t.Helper()
	return formtree.ParseJSON(context.Background(), formtree.JSONBytes([]byte(body)), opts...)
}

func TestParseJSON_NestedObject(t *testing.T) {
	tree, err := parseJSONString(t, `{"user":{"name":"Alice","tags":["x","y"],"age":30,"admin":true,"note":null}}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer tree.Close()

	want := map[string]any{
		"user": map[string]any{
			"name":  "Alice",
			"tags":  []any{"x", "y"},
			"age":   "30",   // raw token text; typing is deferred to Decode
			"admin": "true", // likewise
			"note":  nil,
		},
	}
	if diff := cmp.Diff(want, tree.Interface()); diff != "" {
		t.Fatalf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestParseJSON_KeyOrderPreserved(t *testing.T) {
	tree, err := parseJSONString(t, `{"b":1,"a":2,"c":3}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer tree.Close()
	if diff := cmp.Diff([]string{"b", "a", "c"}, tree.Root().Keys()); diff != "" {
		t.Fatalf("key order (-want +got):\n%s", diff)
	}
}

func TestParseJSON_EmptyContainersMaterialize(t *testing.T) {
	tree, err := parseJSONString(t, `{"a":{},"b":[]}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer tree.Close()
	if tree.Root().Get("a").Kind() != formtree.KindObject {
		t.Fatalf("empty object lost: %v", tree.Interface())
	}
	if tree.Root().Get("b").Kind() != formtree.KindArray {
		t.Fatalf("empty array lost: %v", tree.Interface())
	}
}

func TestParseJSON_DuplicateScalarKeysLastWins(t *testing.T) {
	tree, err := parseJSONString(t, `{"page":"1","page":"2"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer tree.Close()
	if got := tree.Root().Get("page").Text(); got != "2" {
		t.Fatalf("want last duplicate to win, got %q", got)
	}
}

func TestParseJSON_TopLevelMustBeObject(t *testing.T) {
	for _, body := range []string{`[1,2]`, `"x"`, `42`} {
		_, err := parseJSONString(t, body)
		if err == nil {
			t.Fatalf("%s: expected invalid_json, got nil", body)
		}
		if iss, _ := formtree.AsIssues(err); iss[0].Code != formtree.CodeInvalidJSON {
			t.Fatalf("%s: want invalid_json, got %v", body, err)
		}
	}
}

func TestParseJSON_Truncated(t *testing.T) {
	for _, body := range []string{``, `{"a":`, `{"a":{"b":"x"`} {
		_, err := parseJSONString(t, body)
		if err == nil {
			t.Fatalf("%q: expected truncated, got nil", body)
		}
		if iss, _ := formtree.AsIssues(err); iss[0].Code != formtree.CodeTruncated {
			t.Fatalf("%q: want truncated, got %v", body, err)
		}
	}
}

func TestParseJSON_Malformed(t *testing.T) {
	for _, body := range []string{`{"a":}`, `{"a" "b"}`, `{} {}`} {
		_, err := parseJSONString(t, body)
		if err == nil {
			t.Fatalf("%q: expected invalid_json, got nil", body)
		}
		if iss, _ := formtree.AsIssues(err); iss[0].Code != formtree.CodeInvalidJSON {
			t.Fatalf("%q: want invalid_json, got %v", body, err)
		}
	}
}

func TestParseJSON_MaxBytes(t *testing.T) {
	_, err := parseJSONString(t, `{"key":"`+strings.Repeat("x", 64)+`"}`, formtree.Options{MaxTotalBytes: 16})
	if err == nil {
		t.Fatalf("expected size_limit_exceeded, got nil")
	}
	if iss, _ := formtree.AsIssues(err); iss[0].Code != formtree.CodeSizeLimit {
		t.Fatalf("want size_limit_exceeded, got %v", err)
	}
}

func TestParseJSON_MaxDepth(t *testing.T) {
	_, err := parseJSONString(t, `{"a":{"b":{"c":{"d":"x"}}}}`, formtree.Options{MaxDepth: 2})
	if err == nil {
		t.Fatalf("expected size_limit_exceeded, got nil")
	}
	if iss, _ := formtree.AsIssues(err); iss[0].Code != formtree.CodeSizeLimit {
		t.Fatalf("want size_limit_exceeded, got %v", err)
	}
}

func TestParseJSON_ConflictAcrossDuplicateKeys(t *testing.T) {
	_, err := parseJSONString(t, `{"a":"x","a":{"b":"y"}}`)
	if err == nil {
		t.Fatalf("expected type_conflict, got nil")
	}
	if iss, _ := formtree.AsIssues(err); iss[0].Code != formtree.CodeTypeConflict {
		t.Fatalf("want type_conflict, got %v", err)
	}
}

// Streaming/non-streaming equivalence: the streaming adapter must produce a
// tree structurally identical to decoding the same body into a generic
// document and merging it node by node.
func TestParseJSON_EquivalentToGenericDocumentMerge(t *testing.T) {
	body := `{"user":{"name":"Alice","tags":["x","y",["z"]],"meta":{"age":30,"ok":false},"empty":{}},"ids":[1,2,3]}`

	streamed, err := parseJSONString(t, body)
	if err != nil {
		t.Fatalf("streaming parse: %v", err)
	}
	defer streamed.Close()

	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		t.Fatalf("generic decode: %v", err)
	}
	manual := formtree.NewTree()
	for k, v := range doc {
		mergeGeneric(t, manual, formtree.Path{{Kind: formtree.SegKey, Key: k}}, v)
	}

	if diff := cmp.Diff(manual.Interface(), streamed.Interface()); diff != "" {
		t.Fatalf("streaming and generic merges diverge (-generic +streamed):\n%s", diff)
	}
}

func mergeGeneric(t *testing.T, tree *formtree.Tree, path formtree.Path, v any) {
	t.Helper()
	switch val := v.(type) {
	case map[string]any:
		if err := tree.Merge(path, formtree.NewObject()); err != nil {
			t.Fatalf("merge object at %s: %v", path, err)
		}
		for k, child := range val {
			mergeGeneric(t, tree, append(append(formtree.Path{}, path...), formtree.Segment{Kind: formtree.SegKey, Key: k}), child)
		}
	case []any:
		if err := tree.Merge(path, formtree.NewArray()); err != nil {
			t.Fatalf("merge array at %s: %v", path, err)
		}
		for i, child := range val {
			mergeGeneric(t, tree, append(append(formtree.Path{}, path...), formtree.Segment{Kind: formtree.SegIndex, Index: i}), child)
		}
	case string:
		if err := tree.Merge(path, formtree.TextValue(val)); err != nil {
			t.Fatalf("merge text at %s: %v", path, err)
		}
	case json.Number:
		if err := tree.Merge(path, formtree.TextValue(val.String())); err != nil {
			t.Fatalf("merge number at %s: %v", path, err)
		}
	case bool:
		s := "false"
		if val {
			s = "true"
		}
		if err := tree.Merge(path, formtree.TextValue(s)); err != nil {
			t.Fatalf("merge bool at %s: %v", path, err)
		}
	default: // nil
		if err := tree.Merge(path, formtree.NullValue()); err != nil {
			t.Fatalf("merge null at %s: %v", path, err)
		}
	}
}
