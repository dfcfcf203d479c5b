package formtree

import (
	"strconv"
	"strings"
)

// SegmentKind discriminates the closed set of path segment shapes.
type SegmentKind int

const (
	SegKey    SegmentKind = iota // object member, addressed by name
	SegIndex                     // explicit array slot
	SegAppend                    // "[]": append the next array slot
)

// Segment is one step of a bracket path.
type Segment struct {
	Kind  SegmentKind
	Key   string // set for SegKey
	Index int    // set for SegIndex
}

// Path is an ordered sequence of segments. An empty path is invalid: every
// merge targets at least one segment.
type Path []Segment

// ParsePath parses a raw bracketed key such as "user[tags][]" into a Path.
// The grammar is name('['segment']')* where an empty segment means append, a
// non-negative integer literal means an explicit array slot, and any other
// text is an object key. Key text is preserved verbatim (no case or
// whitespace normalization). Malformed input fails with a malformed_key
// issue.
func ParsePath(raw string) (Path, error) {
	if raw == "" {
		return nil, singleIssue(CodeMalformedKey, "empty parameter key")
	}
	open := strings.IndexByte(raw, '[')
	if open == 0 {
		return nil, singleIssue(CodeMalformedKey, "key "+strconv.Quote(raw)+": missing leading name")
	}
	if open < 0 {
		if strings.IndexByte(raw, ']') >= 0 {
			return nil, singleIssue(CodeMalformedKey, "key "+strconv.Quote(raw)+": unbalanced ']'")
		}
		return Path{{Kind: SegKey, Key: raw}}, nil
	}
	path := Path{{Kind: SegKey, Key: raw[:open]}}
	rest := raw[open:]
	for len(rest) > 0 {
		if rest[0] != '[' {
			return nil, singleIssue(CodeMalformedKey, "key "+strconv.Quote(raw)+": text outside brackets")
		}
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return nil, singleIssue(CodeMalformedKey, "key "+strconv.Quote(raw)+": unterminated bracket")
		}
		seg := rest[1:end]
		if strings.IndexByte(seg, '[') >= 0 {
			return nil, singleIssue(CodeMalformedKey, "key "+strconv.Quote(raw)+": nested bracket")
		}
		path = append(path, bracketSegment(seg))
		rest = rest[end+1:]
	}
	return path, nil
}

func bracketSegment(s string) Segment {
	if s == "" {
		return Segment{Kind: SegAppend}
	}
	if isDigits(s) {
		if n, err := strconv.Atoi(s); err == nil {
			return Segment{Kind: SegIndex, Index: n}
		}
	}
	return Segment{Kind: SegKey, Key: s}
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}

// String renders the path back into bracket form ("a[b][0][]").
func (p Path) String() string {
	b := &strings.Builder{}
	for i, seg := range p {
		switch {
		case i == 0:
			b.WriteString(seg.Key)
		case seg.Kind == SegKey:
			b.WriteByte('[')
			b.WriteString(seg.Key)
			b.WriteByte(']')
		case seg.Kind == SegIndex:
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(seg.Index))
			b.WriteByte(']')
		default:
			b.WriteString("[]")
		}
	}
	return b.String()
}

// pointer renders the path as a JSON Pointer for Issue paths. Append
// segments render as "-", matching the JSON Pointer convention for
// "past the end".
func (p Path) pointer() string {
	if len(p) == 0 {
		return "/"
	}
	b := &strings.Builder{}
	for _, seg := range p {
		b.WriteByte('/')
		switch seg.Kind {
		case SegKey:
			b.WriteString(escapePointerToken(seg.Key))
		case SegIndex:
			b.WriteString(strconv.Itoa(seg.Index))
		default:
			b.WriteByte('-')
		}
	}
	return b.String()
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func escapePointerToken(s string) string {
	return pointerEscaper.Replace(s)
}

func joinPointer(base, token string) string {
	return base + "/" + escapePointerToken(token)
}
