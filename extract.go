package formtree

import (
	"context"
	"io"
	"mime"
	"net/http"
)

// Media types the body dispatcher recognizes.
const (
	ContentTypeURLEncoded = "application/x-www-form-urlencoded"
	ContentTypeMultipart  = "multipart/form-data"
	ContentTypeJSON       = "application/json"
)

// Extract is the top-level entry point: it parses the query string and the
// body (selected by contentType), composes the two trees under the default
// precedence (body overrides query), and returns the finished tree. The
// caller owns the tree and must Close it; on error every byte sink written
// during extraction has already been deleted.
//
// An empty contentType or nil body extracts from the query string alone. Any
// unrecognized or disallowed media type fails with unsupported_content_type.
func Extract(ctx context.Context, query, contentType string, body io.Reader, opts ...Options) (*Tree, error) {
	opt := lastOpt(opts)

	queryTree, err := ParseURLEncoded(query, opt)
	if err != nil {
		return nil, err
	}

	if contentType == "" || body == nil {
		return queryTree, nil
	}

	bodyTree, err := extractBody(ctx, contentType, body, opt)
	if err != nil {
		_ = queryTree.Close()
		return nil, err
	}

	final, err := Compose(queryTree, bodyTree, opt)
	if err != nil {
		_ = queryTree.Close()
		_ = bodyTree.Close()
		return nil, err
	}
	return final, nil
}

func extractBody(ctx context.Context, contentType string, body io.Reader, opt Options) (*Tree, error) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, Issues{{Path: "/", Code: CodeUnsupportedContentType, Message: "unparseable Content-Type " + contentType, Cause: err, Offset: -1}}
	}
	if !mediaTypeAllowed(mediaType, opt.ContentTypeAllowlist) {
		return nil, singleIssue(CodeUnsupportedContentType, "content type "+mediaType+" not allowed")
	}

	switch mediaType {
	case ContentTypeURLEncoded:
		raw, err := readBounded(body, opt.MaxTotalBytes)
		if err != nil {
			return nil, err
		}
		return ParseURLEncoded(string(raw), opt)
	case ContentTypeMultipart:
		boundary := params["boundary"]
		if boundary == "" {
			return nil, singleIssue(CodeUnsupportedContentType, "multipart body without boundary")
		}
		return ParseMultipart(ctx, body, boundary, opt)
	case ContentTypeJSON:
		return ParseJSON(ctx, JSONReader(body), opt)
	default:
		return nil, singleIssue(CodeUnsupportedContentType, "content type "+mediaType+" not supported")
	}
}

func mediaTypeAllowed(mediaType string, allowlist []string) bool {
	if len(allowlist) == 0 {
		return true
	}
	for _, a := range allowlist {
		if a == mediaType {
			return true
		}
	}
	return false
}

// readBounded reads the whole body, failing with size_limit_exceeded instead
// of buffering past max.
func readBounded(r io.Reader, max int64) ([]byte, error) {
	if max > 0 {
		r = io.LimitReader(r, max+1)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, Issues{{Path: "/", Code: CodeIO, Message: "reading body", Cause: err, Offset: -1}}
	}
	if max > 0 && int64(len(b)) > max {
		return nil, singleIssue(CodeSizeLimit, "body bytes over limit")
	}
	return b, nil
}

// FromRequest is the thin binding to net/http: it translates the request
// into the inputs Extract expects and nothing more. GET/HEAD requests (and
// requests without a body) extract from the query string alone.
func FromRequest(r *http.Request, opts ...Options) (*Tree, error) {
	query := r.URL.RawQuery
	if r.Body == nil || r.Body == http.NoBody || r.Method == http.MethodGet || r.Method == http.MethodHead {
		return Extract(r.Context(), query, "", nil, opts...)
	}
	return Extract(r.Context(), query, r.Header.Get("Content-Type"), r.Body, opts...)
}
