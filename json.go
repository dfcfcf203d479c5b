package formtree

import (
	"context"
	"errors"
	"io"

	eng "github.com/formtree/formtree/internal/engine"
)

// ParseJSON consumes a JSON token source and merges it into a new tree. The
// top-level value must be an object (the tree is object-rooted). Scalars
// merge the moment their token arrives, so memory stays proportional to the
// tree, not the input: no intermediate generic document is ever built.
//
// JSON scalars are stored as text leaves holding the raw token text
// ("true", "42", ...); interpretation is deferred to the typed decoding
// bridge. Duplicate object keys flow through the merge engine's normal
// policy: later scalar writes win, repeated containers accumulate members.
func ParseJSON(ctx context.Context, src Source, opts ...Options) (*Tree, error) {
	opt := lastOpt(opts)
	t := NewTree()
	if err := parseJSONInto(ctx, t, EnforceSource(src, opt)); err != nil {
		_ = t.Close()
		return nil, err
	}
	return t, nil
}

func parseJSONInto(ctx context.Context, t *Tree, src Source) error {
	tok, err := src.NextToken()
	if err != nil {
		return jsonTokenErr(err, true)
	}
	if tok.Kind != TokenBeginObject {
		return singleIssue(CodeInvalidJSON, "top-level JSON value must be an object")
	}

	st := jsonState{tree: t, frames: []jsonFrame{{}}}
	for len(st.frames) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		tok, err := src.NextToken()
		if err != nil {
			return jsonTokenErr(err, false)
		}
		if err := st.step(tok); err != nil {
			return err
		}
	}

	// A body carries exactly one top-level object.
	if _, err := src.NextToken(); err == nil {
		return singleIssue(CodeInvalidJSON, "trailing data after top-level object")
	} else if !errors.Is(err, io.EOF) {
		return jsonTokenErr(err, false)
	}
	return nil
}

// jsonFrame mirrors one open container in the input.
type jsonFrame struct {
	array   bool
	next    int    // next array slot
	key     string // pending object key
	haveKey bool
}

// jsonState is the explicit path-stack machine driven by token events.
type jsonState struct {
	tree   *Tree
	path   Path
	frames []jsonFrame
}

func (st *jsonState) step(tok Token) error {
	switch tok.Kind {
	case TokenKey:
		top := &st.frames[len(st.frames)-1]
		if top.array || top.haveKey {
			return singleIssue(CodeInvalidJSON, "unexpected object key")
		}
		top.key, top.haveKey = tok.String, true
		return nil
	case TokenBeginObject, TokenBeginArray:
		seg, err := st.valueSegment()
		if err != nil {
			return err
		}
		st.path = append(st.path, seg)
		isArray := tok.Kind == TokenBeginArray
		// Materialize the container immediately so empty objects/arrays
		// appear in the tree.
		if err := st.tree.Merge(st.path, newContainer(containerKind(isArray))); err != nil {
			return err
		}
		st.frames = append(st.frames, jsonFrame{array: isArray})
		return nil
	case TokenEndObject, TokenEndArray:
		top := st.frames[len(st.frames)-1]
		if top.array != (tok.Kind == TokenEndArray) || top.haveKey {
			return singleIssue(CodeInvalidJSON, "mismatched container end")
		}
		st.frames = st.frames[:len(st.frames)-1]
		if len(st.path) > 0 {
			st.path = st.path[:len(st.path)-1]
		}
		return nil
	default: // scalar
		seg, err := st.valueSegment()
		if err != nil {
			return err
		}
		st.path = append(st.path, seg)
		err = st.tree.Merge(st.path, scalarValue(tok))
		st.path = st.path[:len(st.path)-1]
		return err
	}
}

// valueSegment yields the path segment for the next value position: the
// pending key in an object, the next dense slot in an array.
func (st *jsonState) valueSegment() (Segment, error) {
	top := &st.frames[len(st.frames)-1]
	if top.array {
		seg := Segment{Kind: SegIndex, Index: top.next}
		top.next++
		return seg, nil
	}
	if !top.haveKey {
		return Segment{}, singleIssue(CodeInvalidJSON, "value without preceding key")
	}
	top.haveKey = false
	return Segment{Kind: SegKey, Key: top.key}, nil
}

func containerKind(isArray bool) Kind {
	if isArray {
		return KindArray
	}
	return KindObject
}

func scalarValue(tok Token) *Value {
	switch tok.Kind {
	case TokenString:
		return TextValue(tok.String)
	case TokenNumber:
		return TextValue(tok.Number)
	case TokenBool:
		if tok.Bool {
			return TextValue("true")
		}
		return TextValue("false")
	default:
		return NullValue()
	}
}

// jsonTokenErr maps token-layer failures onto the extraction taxonomy:
// enforcement issues pass through, end-of-stream mid-structure is a
// truncated body, anything else is invalid JSON.
func jsonTokenErr(err error, atStart bool) error {
	var ie eng.IssueError
	if errors.As(err, &ie) {
		return Issues{{Path: ie.Path, Code: ie.Code, Message: ie.Message, Offset: -1}}
	}
	if errors.Is(err, io.EOF) {
		if atStart {
			return singleIssue(CodeTruncated, "empty JSON body")
		}
		return singleIssue(CodeTruncated, "input ended mid-structure")
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return singleIssue(CodeTruncated, "input ended mid-structure")
	}
	return Issues{{Path: "/", Code: CodeInvalidJSON, Message: "parsing JSON body", Cause: err, Offset: -1}}
}
