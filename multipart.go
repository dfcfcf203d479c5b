package formtree

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
)

// ParseMultipart consumes a multipart/form-data body and merges each part
// into a new tree. Parts are processed strictly sequentially (multipart
// boundaries are inherently ordered); file parts stream into temp-file byte
// sinks as their bytes arrive, so no part is ever buffered whole. On any
// failure the partial tree and every sink written so far are discarded
// before the error is returned.
func ParseMultipart(ctx context.Context, body io.Reader, boundary string, opts ...Options) (*Tree, error) {
	t := NewTree()
	if err := parseMultipartInto(ctx, t, body, boundary, lastOpt(opts)); err != nil {
		_ = t.Close()
		return nil, err
	}
	return t, nil
}

func parseMultipartInto(ctx context.Context, t *Tree, body io.Reader, boundary string, opt Options) error {
	mr := multipart.NewReader(body, boundary)
	var (
		parts int
		total int64
	)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		p, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return multipartErr(err)
		}

		parts++
		if opt.MaxParts > 0 && parts > opt.MaxParts {
			return singleIssue(CodeSizeLimit, "too many parts")
		}

		path, err := ParsePath(p.FormName())
		if err != nil {
			return err
		}

		if filename := p.FileName(); filename != "" {
			n, err := streamFilePart(t, p, path, filename, remaining(opt.MaxFileBytes, opt.MaxTotalBytes, total), opt.TempDir)
			total += n
			if err != nil {
				return err
			}
		} else {
			n, err := readFieldPart(t, p, path, remaining(opt.MaxFieldBytes, opt.MaxTotalBytes, total))
			total += n
			if err != nil {
				return err
			}
		}
		if opt.MaxTotalBytes > 0 && total > opt.MaxTotalBytes {
			return singleIssue(CodeSizeLimit, "body bytes over limit")
		}
	}
}

// remaining computes the effective per-part budget: the smaller of the
// per-part limit and what is left of the total budget. 0 means unlimited.
func remaining(perPart, maxTotal, used int64) int64 {
	limit := perPart
	if maxTotal > 0 {
		left := maxTotal - used
		if left < 0 {
			left = 0
		}
		if limit == 0 || left < limit {
			limit = left + 1 // let the total check report the violation
		}
	}
	return limit
}

// streamFilePart pipes the part body into a fresh byte sink, counting bytes
// against the budget, and merges the resulting upload leaf. The partial sink
// is deleted on any failure.
func streamFilePart(t *Tree, p *multipart.Part, path Path, filename string, limit int64, tempDir string) (int64, error) {
	sink, err := newUploadSink(tempDir, limit)
	if err != nil {
		return 0, Issues{{Path: path.pointer(), Code: CodeIO, Message: "opening upload sink", Cause: err, Offset: -1}}
	}
	n, err := io.Copy(sink, p)
	if err != nil {
		sink.discard()
		switch {
		case errors.Is(err, errSinkLimit):
			return n, issueAt(path, CodeSizeLimit, "upload "+filename+" over size limit")
		case errors.Is(err, io.ErrUnexpectedEOF):
			return n, issueAt(path, CodeTruncated, "input ended mid-part")
		default:
			return n, Issues{{Path: path.pointer(), Code: CodeIO, Message: "writing upload sink", Cause: err, Offset: -1}}
		}
	}

	contentType := p.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	upload, err := sink.finish(filename, contentType)
	if err != nil {
		return n, Issues{{Path: path.pointer(), Code: CodeIO, Message: "closing upload sink", Cause: err, Offset: -1}}
	}
	if err := t.Merge(path, UploadValue(upload)); err != nil {
		_ = upload.release()
		return n, err
	}
	return n, nil
}

// readFieldPart accumulates a text part's body up to the budget and merges a
// text leaf.
func readFieldPart(t *Tree, p *multipart.Part, path Path, limit int64) (int64, error) {
	var r io.Reader = p
	if limit > 0 {
		r = io.LimitReader(p, limit+1)
	}
	b, err := io.ReadAll(r)
	n := int64(len(b))
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return n, issueAt(path, CodeTruncated, "input ended mid-part")
		}
		return n, Issues{{Path: path.pointer(), Code: CodeIO, Message: "reading field body", Cause: err, Offset: -1}}
	}
	if limit > 0 && n > limit {
		return n, issueAt(path, CodeSizeLimit, "field value over limit")
	}
	if err := t.Merge(path, TextValue(string(b))); err != nil {
		return n, err
	}
	return n, nil
}

// multipartErr maps mime/multipart failures onto the taxonomy: an early end
// of input is a truncated body, malformed framing is an encoding error.
func multipartErr(err error) error {
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return singleIssue(CodeTruncated, "input ended mid-body")
	}
	return Issues{{Path: "/", Code: CodeEncoding, Message: "reading multipart body", Cause: err, Offset: -1}}
}
