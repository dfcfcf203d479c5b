package formtree

import "fmt"

// Compose folds override into base under the documented precedence and
// returns base. For matching objects, member keys merge recursively and keys
// present on only one side pass through unchanged. For matching arrays the
// override's elements are appended after the base's, unless
// Options.ArrayReplaceOnOverride makes the override array win wholesale.
// Scalar collisions are last-writer-wins: the override value replaces the
// base value. A shape mismatch between the two trees at the same path fails
// with type_conflict, mirroring the merge engine's policy.
//
// The default call order is Compose(queryTree, bodyTree, ...): the body wins
// on scalar collision. Ownership of the override tree's upload sinks moves
// to base; after a successful Compose only the returned tree needs Close.
func Compose(base, override *Tree, opts ...Options) (*Tree, error) {
	opt := lastOpt(opts)
	if _, err := composeValue(base.root, override.root, "", opt.ArrayReplaceOnOverride); err != nil {
		return nil, err
	}
	base.uploads = append(base.uploads, override.uploads...)
	override.uploads = nil
	override.closed = true
	return base, nil
}

func composeValue(dst, src *Value, at string, replaceArrays bool) (*Value, error) {
	switch {
	case dst.kind == KindObject && src.kind == KindObject:
		for _, k := range src.keys {
			sv := src.fields[k]
			dv, ok := dst.fields[k]
			if !ok {
				dst.setField(k, sv)
				continue
			}
			merged, err := composeValue(dv, sv, joinPointer(at, k), replaceArrays)
			if err != nil {
				return nil, err
			}
			dst.fields[k] = merged
		}
		return dst, nil
	case dst.kind == KindArray && src.kind == KindArray:
		if replaceArrays {
			return src, nil
		}
		dst.elems = append(dst.elems, src.elems...)
		return dst, nil
	case dst.kind == KindNull:
		// Null placeholders yield, matching the merge engine.
		return src, nil
	case dst.IsScalar() && src.IsScalar():
		return src, nil
	default:
		return nil, Issues{{
			Path:    normalizePointer(at),
			Code:    CodeTypeConflict,
			Message: fmt.Sprintf("have %s, override is %s", dst.kind, src.kind),
			Offset:  -1,
		}}
	}
}

func normalizePointer(p string) string {
	if p == "" {
		return "/"
	}
	return p
}
