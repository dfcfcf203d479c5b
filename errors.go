package formtree

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeMalformedKey           = "malformed_key"
	CodeTypeConflict           = "type_conflict"
	CodeSizeLimit              = "size_limit_exceeded"
	CodeUnsupportedContentType = "unsupported_content_type"
	CodeTruncated              = "truncated"
	CodeInvalidJSON            = "invalid_json"
	CodeIO                     = "io_error"
	CodeEncoding               = "encoding_error"
)

// Issue represents a single extraction error entry.
type Issue struct {
	Path    string // JSON Pointer into the parameter tree (for example: /user/tags/2).
	Code    string // One of the codes listed above.
	Message string
	Cause   error // Optional: underlying error.
	Offset  int64 // Byte offset in the input source (-1 when unknown).
}

// Issues is a collection of extraction errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. type_conflict at /path
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// singleIssue builds a one-element Issues value rooted at the tree.
func singleIssue(code, msg string) Issues {
	return Issues{{Path: "/", Code: code, Message: msg, Offset: -1}}
}

// issueAt builds a one-element Issues value at the given path.
func issueAt(path Path, code, msg string) Issues {
	return Issues{{Path: path.pointer(), Code: code, Message: msg, Offset: -1}}
}

// conflictAt reports a shape conflict between what a merge requires and what
// the tree already holds at path.
func conflictAt(path Path, have, want Kind) Issues {
	return Issues{{
		Path:    path.pointer(),
		Code:    CodeTypeConflict,
		Message: fmt.Sprintf("have %s, need %s", have, want),
		Offset:  -1,
	}}
}
