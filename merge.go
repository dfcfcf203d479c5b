package formtree

// Tree is the object-rooted parameter tree for one request extraction. It is
// populated exclusively through Merge, owns every upload byte sink merged
// into it, and must be closed when the extraction scope ends. A Tree is
// never shared across goroutines.
type Tree struct {
	root    *Value
	uploads []*Upload
	closed  bool
}

// NewTree returns an empty tree.
func NewTree() *Tree {
	return &Tree{root: NewObject()}
}

// Root returns the root object node.
func (t *Tree) Root() *Value { return t.root }

// Interface converts the whole tree into plain Go values (see
// Value.Interface).
func (t *Tree) Interface() any { return t.root.Interface() }

// Lookup parses raw as a bracket path and walks it, returning nil when any
// step is absent. Append segments are not addressable and fail with a
// malformed_key issue.
func (t *Tree) Lookup(raw string) (*Value, error) {
	path, err := ParsePath(raw)
	if err != nil {
		return nil, err
	}
	node := t.root
	for _, seg := range path {
		switch seg.Kind {
		case SegKey:
			node = node.Get(seg.Key)
		case SegIndex:
			node = node.At(seg.Index)
		default:
			return nil, singleIssue(CodeMalformedKey, "append segment is not addressable")
		}
		if node == nil {
			return nil, nil
		}
	}
	return node, nil
}

// Close deletes every upload byte sink the tree owns. It is idempotent and
// safe on partially built trees; the first sink error is returned after all
// sinks have been released.
func (t *Tree) Close() error {
	if t == nil || t.closed {
		return nil
	}
	t.closed = true
	var first error
	for _, u := range t.uploads {
		if err := u.release(); err != nil && first == nil {
			first = err
		}
	}
	t.uploads = nil
	if first != nil {
		return Issues{{Path: "/", Code: CodeIO, Message: "releasing upload sinks", Cause: first, Offset: -1}}
	}
	return nil
}

// Merge navigates from the root along path, creating intermediate object and
// array nodes on demand, and writes v at the terminal position. It is the
// single primitive all source adapters and tree composition funnel through,
// so the shape/conflict policy is uniform system-wide:
//
//   - a node's shape is fixed once first observed; a later write requiring an
//     incompatible shape fails with type_conflict
//   - writing a scalar over a scalar is a defined overwrite (last write wins)
//   - appending to an existing array is always compatible
//   - an explicit index beyond the current length extends the array, filling
//     intervening slots with null
func (t *Tree) Merge(path Path, v *Value) error {
	if len(path) == 0 {
		return singleIssue(CodeMalformedKey, "empty path")
	}
	node := t.root
	for i := 0; i < len(path)-1; i++ {
		child, err := descend(node, path[i], path[i+1], path[:i+1])
		if err != nil {
			return err
		}
		node = child
	}
	if err := setLeaf(node, path, v); err != nil {
		return err
	}
	t.adoptUploads(v)
	return nil
}

// adoptUploads registers every upload in v for release at Close.
func (t *Tree) adoptUploads(v *Value) {
	switch v.Kind() {
	case KindUpload:
		t.uploads = append(t.uploads, v.upload)
	case KindArray:
		for _, e := range v.elems {
			t.adoptUploads(e)
		}
	case KindObject:
		for _, k := range v.keys {
			t.adoptUploads(v.fields[k])
		}
	}
}

// descend resolves one intermediate segment, creating the child container
// required by the following segment when absent.
func descend(node *Value, seg, next Segment, at Path) (*Value, error) {
	want := KindObject
	if next.Kind != SegKey {
		want = KindArray
	}
	switch seg.Kind {
	case SegKey:
		if node.kind != KindObject {
			return nil, conflictAt(at[:len(at)-1], node.kind, KindObject)
		}
		child, ok := node.fields[seg.Key]
		if !ok {
			child = newContainer(want)
			node.setField(seg.Key, child)
			return child, nil
		}
		if child.kind != want {
			return nil, conflictAt(at, child.kind, want)
		}
		return child, nil
	case SegAppend:
		if node.kind != KindArray {
			return nil, conflictAt(at[:len(at)-1], node.kind, KindArray)
		}
		child := newContainer(want)
		node.elems = append(node.elems, child)
		return child, nil
	default: // SegIndex
		if node.kind != KindArray {
			return nil, conflictAt(at[:len(at)-1], node.kind, KindArray)
		}
		node.extendTo(seg.Index + 1)
		child := node.elems[seg.Index]
		if child.kind == KindNull {
			// Null fill slots are placeholders; promote to the required container.
			child = newContainer(want)
			node.elems[seg.Index] = child
			return child, nil
		}
		if child.kind != want {
			return nil, conflictAt(at, child.kind, want)
		}
		return child, nil
	}
}

// setLeaf writes v at the terminal segment.
func setLeaf(node *Value, path Path, v *Value) error {
	seg := path[len(path)-1]
	switch seg.Kind {
	case SegKey:
		if node.kind != KindObject {
			return conflictAt(path[:len(path)-1], node.kind, KindObject)
		}
		existing, ok := node.fields[seg.Key]
		if !ok {
			node.setField(seg.Key, v)
			return nil
		}
		merged, err := overwrite(existing, v, path)
		if err != nil {
			return err
		}
		node.fields[seg.Key] = merged
		return nil
	case SegAppend:
		if node.kind != KindArray {
			return conflictAt(path[:len(path)-1], node.kind, KindArray)
		}
		node.elems = append(node.elems, v)
		return nil
	default: // SegIndex
		if node.kind != KindArray {
			return conflictAt(path[:len(path)-1], node.kind, KindArray)
		}
		node.extendTo(seg.Index + 1)
		merged, err := overwrite(node.elems[seg.Index], v, path)
		if err != nil {
			return err
		}
		node.elems[seg.Index] = merged
		return nil
	}
}

// overwrite applies the terminal-slot policy: null placeholders accept
// anything, scalars overwrite scalars, containers of the same shape keep the
// existing node (so repeated container writes to one path accumulate members
// instead of resetting them), and anything else is a conflict.
func overwrite(existing, v *Value, path Path) (*Value, error) {
	switch {
	case existing.kind == KindNull:
		return v, nil
	case existing.IsScalar() && v.IsScalar():
		return v, nil
	case existing.kind == v.kind:
		return existing, nil
	default:
		return nil, conflictAt(path, existing.kind, v.kind)
	}
}
