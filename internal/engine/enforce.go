package engine

import (
	"strconv"
	"strings"
)

// Enforcement wrapper for TokenSource applying max depth and max byte checks
// in a streaming fashion, before any value is materialized.

// Issue codes emitted by enforcement. They match the public taxonomy so the
// root package can surface them unchanged.
const (
	CodeSizeLimit = "size_limit_exceeded"
)

// EnforceOptions controls runtime enforcement behavior.
type EnforceOptions struct {
	MaxDepth int   // nesting depth cap; 0 disables
	MaxBytes int64 // consumed-byte cap via Location(); 0 disables
}

// SimpleIssue is a lightweight issue produced at the token layer.
type SimpleIssue struct {
	Path    string
	Code    string
	Message string
}

// IssueError is a lightweight error carrying a SimpleIssue.
type IssueError struct{ SimpleIssue }

func (e IssueError) Error() string { return e.SimpleIssue.Message }

// WrapWithEnforcement returns a TokenSource that enforces the given limits.
// The wrapper tracks the current JSON Pointer so violations carry the path
// where the stream was cut off.
func WrapWithEnforcement(inner TokenSource, opt EnforceOptions) TokenSource {
	if opt.MaxDepth == 0 && opt.MaxBytes == 0 {
		return inner
	}
	return &enforcingTokenSource{inner: inner, opt: opt}
}

type frame struct {
	array      bool
	path       string
	nextIndex  int
	pendingKey string
	haveKey    bool
}

type enforcingTokenSource struct {
	inner TokenSource
	opt   EnforceOptions
	stack []frame
}

func (e *enforcingTokenSource) NextToken() (Token, error) {
	tok, err := e.inner.NextToken()
	if err != nil {
		return Token{}, err
	}

	path := e.tokenPath(tok)

	switch tok.Kind {
	case KindBeginObject, KindBeginArray:
		e.stack = append(e.stack, frame{array: tok.Kind == KindBeginArray, path: path})
		if e.opt.MaxDepth > 0 && len(e.stack) > e.opt.MaxDepth {
			return Token{}, IssueError{SimpleIssue{
				Code: CodeSizeLimit, Path: normalizePath(path), Message: "max depth exceeded",
			}}
		}
	case KindEndObject, KindEndArray:
		if n := len(e.stack); n > 0 {
			e.stack = e.stack[:n-1]
		}
		e.noteValueDone()
	case KindKey:
		if n := len(e.stack); n > 0 {
			top := &e.stack[n-1]
			top.pendingKey = tok.String
			top.haveKey = true
		}
	case KindString, KindNumber, KindBool, KindNull:
		e.noteValueDone()
	}

	if e.opt.MaxBytes > 0 {
		if off := e.Location(); off >= 0 && off > e.opt.MaxBytes {
			return Token{}, IssueError{SimpleIssue{
				Code: CodeSizeLimit, Path: normalizePath(path), Message: "max bytes exceeded",
			}}
		}
	}

	return tok, nil
}

// tokenPath renders the pointer for the position the token lands at.
func (e *enforcingTokenSource) tokenPath(tok Token) string {
	if len(e.stack) == 0 {
		return ""
	}
	top := &e.stack[len(e.stack)-1]
	switch tok.Kind {
	case KindKey:
		return joinPointer(top.path, tok.String)
	case KindBeginObject, KindBeginArray, KindString, KindNumber, KindBool, KindNull:
		if top.array {
			p := joinPointer(top.path, strconv.Itoa(top.nextIndex))
			top.nextIndex++
			return p
		}
		if top.haveKey {
			return joinPointer(top.path, top.pendingKey)
		}
		return top.path
	default:
		return top.path
	}
}

// noteValueDone clears a consumed pending object key on the enclosing frame.
func (e *enforcingTokenSource) noteValueDone() {
	if n := len(e.stack); n > 0 {
		top := &e.stack[n-1]
		if !top.array {
			top.pendingKey = ""
			top.haveKey = false
		}
	}
}

func (e *enforcingTokenSource) Location() int64 { return e.inner.Location() }

func normalizePath(p string) string {
	if p == "" {
		return "/"
	}
	return p
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func joinPointer(base, token string) string {
	return base + "/" + pointerEscaper.Replace(token)
}
