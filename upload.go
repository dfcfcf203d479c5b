package formtree

import (
	"errors"
	"os"
)

// Upload describes one uploaded file streamed into a temp-file byte sink.
// The sink is exclusively owned by the tree node holding the upload and is
// deleted when the owning Tree is closed, on success and failure paths
// alike.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64

	tempPath string
	released bool
}

// TempPath returns the on-disk location of the upload's bytes. The file is
// valid until the owning Tree is closed.
func (u *Upload) TempPath() string { return u.tempPath }

// Open opens the upload's bytes for reading.
func (u *Upload) Open() (*os.File, error) {
	if u.released {
		return nil, singleIssue(CodeIO, "upload "+u.Filename+" already released")
	}
	return os.Open(u.tempPath)
}

// release deletes the byte sink. It is called exactly once by the owning
// tree's Close.
func (u *Upload) release() error {
	if u.released {
		return nil
	}
	u.released = true
	return os.Remove(u.tempPath)
}

// errSinkLimit marks a byte-sink write that would exceed its budget.
var errSinkLimit = errors.New("formtree: upload sink limit exceeded")

// uploadSink streams part bytes to a temp file, counting them against a
// budget. Writes are sequential; the sink is either finished into an Upload
// or discarded.
type uploadSink struct {
	f     *os.File
	n     int64
	limit int64 // 0 = unlimited
}

func newUploadSink(dir string, limit int64) (*uploadSink, error) {
	f, err := os.CreateTemp(dir, "formtree-upload-*")
	if err != nil {
		return nil, err
	}
	return &uploadSink{f: f, limit: limit}, nil
}

func (s *uploadSink) Write(p []byte) (int, error) {
	if s.limit > 0 && s.n+int64(len(p)) > s.limit {
		return 0, errSinkLimit
	}
	n, err := s.f.Write(p)
	s.n += int64(n)
	return n, err
}

// finish closes the sink and returns the upload handle owning it.
func (s *uploadSink) finish(filename, contentType string) (*Upload, error) {
	path := s.f.Name()
	if err := s.f.Close(); err != nil {
		_ = os.Remove(path)
		return nil, err
	}
	return &Upload{
		Filename:    filename,
		ContentType: contentType,
		Size:        s.n,
		tempPath:    path,
	}, nil
}

// discard closes and deletes a partially written sink.
func (s *uploadSink) discard() {
	path := s.f.Name()
	_ = s.f.Close()
	_ = os.Remove(path)
}
