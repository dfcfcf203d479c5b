package formtree

import (
	"net/url"
	"strings"
)

// ParseURLEncoded decodes a flat application/x-www-form-urlencoded sequence
// ("a=1&b[c]=2") in wire order and merges each pair into a new tree. Pair
// order determines array append order and last-write-wins outcomes.
func ParseURLEncoded(qs string, opts ...Options) (*Tree, error) {
	t := NewTree()
	if err := parseURLEncodedInto(t, qs, lastOpt(opts)); err != nil {
		_ = t.Close()
		return nil, err
	}
	return t, nil
}

func parseURLEncodedInto(t *Tree, qs string, opt Options) error {
	var (
		pairs int
		total int64
	)
	for qs != "" {
		var pair string
		pair, qs, _ = strings.Cut(qs, "&")
		if pair == "" {
			continue
		}
		pairs++
		if opt.MaxParts > 0 && pairs > opt.MaxParts {
			return singleIssue(CodeSizeLimit, "too many parameters")
		}

		rawKey, rawVal, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			return Issues{{Path: "/", Code: CodeEncoding, Message: "percent-decoding key", Cause: err, Offset: -1}}
		}
		val, err := url.QueryUnescape(rawVal)
		if err != nil {
			return Issues{{Path: "/", Code: CodeEncoding, Message: "percent-decoding value of " + key, Cause: err, Offset: -1}}
		}

		total += int64(len(key)) + int64(len(val))
		if opt.MaxTotalBytes > 0 && total > opt.MaxTotalBytes {
			return singleIssue(CodeSizeLimit, "decoded parameter bytes over limit")
		}
		if opt.MaxFieldBytes > 0 && int64(len(val)) > opt.MaxFieldBytes {
			path, perr := ParsePath(key)
			if perr != nil {
				return perr
			}
			return issueAt(path, CodeSizeLimit, "field value over limit")
		}

		path, err := ParsePath(key)
		if err != nil {
			return err
		}
		if err := t.Merge(path, TextValue(val)); err != nil {
			return err
		}
	}
	return nil
}
