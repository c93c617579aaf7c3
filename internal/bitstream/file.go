package bitstream

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

// ErrTooLarge reports a file bigger than the caller's size limit.
var ErrTooLarge = errors.New("file exceeds size limit")

// File is the read-only handle decoders consume. Only sequential reads and
// absolute seeks are required.
type File interface {
	io.ReadSeeker
	io.Closer
}

// Opener opens navigation files for reading.
type Opener interface {
	Open(path string) (File, error)
}

// OSOpener opens files from the host filesystem.
type OSOpener struct{}

// Open implements Opener.
func (OSOpener) Open(path string) (File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// FSOpener opens files from an fs.FS whose files support seeking, such as
// os.DirFS or fstest.MapFS.
type FSOpener struct {
	FS fs.FS
}

// Open implements Opener.
func (o FSOpener) Open(path string) (File, error) {
	f, err := o.FS.Open(path)
	if err != nil {
		return nil, err
	}
	rs, ok := f.(io.ReadSeeker)
	if !ok {
		_ = f.Close()
		return nil, fmt.Errorf("open %s: file does not support seeking", path)
	}
	return readSeekCloser{ReadSeeker: rs, Closer: f}, nil
}

type readSeekCloser struct {
	io.ReadSeeker
	io.Closer
}

// NopFile adapts an in-memory buffer to File.
func NopFile(data []byte) File {
	return readSeekCloser{ReadSeeker: bytes.NewReader(data), Closer: io.NopCloser(nil)}
}

// WithFile opens path, loads it into a Reader and runs fn. The file is
// closed on every return path. A positive limit rejects larger files before
// anything is read. The path is attached to any error.
func WithFile(opener Opener, path string, limit int64, fn func(*Reader) error) (err error) {
	if opener == nil {
		opener = OSOpener{}
	}
	f, err := opener.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	size, err := streamSize(f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if limit > 0 && size > limit {
		return fmt.Errorf("%s: %w: %d bytes, limit %d", path, ErrTooLarge, size, limit)
	}
	r, err := load(f, size)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := fn(r); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
