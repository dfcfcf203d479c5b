package formtree

// Options bundles extraction limits and merge policies. The zero value
// applies no size limits and accepts the three built-in content types.
type Options struct {
	// MaxTotalBytes caps the decoded/streamed byte count of one source
	// (query string pairs, multipart part bodies, or JSON input). 0 = unlimited.
	MaxTotalBytes int64
	// MaxFieldBytes caps one text field's value. 0 = unlimited.
	MaxFieldBytes int64
	// MaxFileBytes caps one uploaded file's byte sink. 0 = unlimited.
	MaxFileBytes int64
	// MaxParts caps the number of multipart parts or URL-encoded pairs.
	// 0 = unlimited.
	MaxParts int
	// MaxDepth caps JSON nesting depth. 0 = unlimited.
	MaxDepth int
	// ArrayReplaceOnOverride makes Compose replace a base array wholesale
	// with the override array instead of appending its elements.
	ArrayReplaceOnOverride bool
	// ContentTypeAllowlist restricts acceptable body media types. Empty
	// means the three built-in types are accepted.
	ContentTypeAllowlist []string
	// TempDir is the directory for upload byte sinks; "" uses os.TempDir.
	TempDir string
}

// lastOpt mirrors the variadic option convention: the last value wins.
func lastOpt(opts []Options) Options {
	if len(opts) == 0 {
		return Options{}
	}
	return opts[len(opts)-1]
}
