package extdata

import (
	"errors"
	"fmt"
	"log/slog"

	"bdnav/internal/bitstream"
	"bdnav/internal/logging"
)

var (
	// ErrNoExtension reports a zero-length extension section.
	ErrNoExtension = errors.New("empty extension section")
	// ErrUnhandled is returned by a Handler that does not recognise an entry.
	ErrUnhandled = errors.New("unhandled extension")
)

const directoryEntryBytes = 12

// Key identifies an extension entry by its (id1, id2) pair.
type Key struct {
	ID1 uint16
	ID2 uint16
}

func (k Key) String() string {
	return fmt.Sprintf("(%d,%d)", k.ID1, k.ID2)
}

// Entry is one directory record. Start is absolute within the file.
type Entry struct {
	Key
	Start  int64
	Length int64
}

// Handler decodes one entry. The reader is positioned at e.Start.
type Handler func(r *bitstream.Reader, e Entry) error

// Handlers dispatches on the entry key. A key mapped to nil is known but
// deliberately ignored.
type Handlers map[Key]Handler

// Dispatch runs the handler registered for e, or returns ErrUnhandled.
func (h Handlers) Dispatch(r *bitstream.Reader, e Entry) error {
	fn, ok := h[e.Key]
	if !ok {
		return ErrUnhandled
	}
	if fn == nil {
		return nil
	}
	return fn(r, e)
}

// Walk reads the extension directory at byte offset pos and invokes handle
// for every entry whose body lies inside the file. Directory-level problems
// (ErrNoExtension, a truncated directory) are returned immediately. Entry
// failures are logged, joined and returned after all entries were visited.
func Walk(r *bitstream.Reader, pos int64, handle Handler, logger *slog.Logger) error {
	if logger == nil {
		logger = logging.NewNop()
	}

	r.SeekByte(pos)
	length := r.ReadBits(32)
	if err := r.Err(); err != nil {
		return fmt.Errorf("extension header: %w", err)
	}
	if length < 1 {
		return ErrNoExtension
	}
	r.SkipBits(32) // data block start address
	r.SkipBits(24)
	count := int64(r.ReadBits(8))
	if err := r.Err(); err != nil {
		return fmt.Errorf("extension header: %w", err)
	}
	if err := r.RequireBytes(count*directoryEntryBytes, "extension directory"); err != nil {
		return err
	}

	var errs []error
	for i := int64(0); i < count; i++ {
		var e Entry
		e.ID1 = uint16(r.ReadBits(16))
		e.ID2 = uint16(r.ReadBits(16))
		e.Start = pos + int64(r.ReadBits(32))
		e.Length = int64(r.ReadBits(32))
		if err := r.Err(); err != nil {
			return fmt.Errorf("extension directory entry %d: %w", i, err)
		}

		if e.Start+e.Length > r.Size() {
			logging.WarnWithContext(logger, "extension entry out of bounds", "extension_out_of_bounds",
				logging.String("key", e.Key.String()),
				logging.Offset(e.Start),
				logging.Int64("length", e.Length),
				logging.Int64("file_size", r.Size()),
				logging.String(logging.FieldImpact, "extension entry skipped"),
			)
			continue
		}

		resume := r.BytePos()
		r.SeekByte(e.Start)
		err := handle(r, e)
		if rerr := r.Err(); err == nil && rerr != nil {
			err = rerr
		}
		// Clear any sticky failure the handler left behind before moving on.
		r.Reset(resume)

		switch {
		case err == nil:
			logger.Debug("extension decoded", logging.String("key", e.Key.String()), logging.Int64("length", e.Length))
		case errors.Is(err, ErrUnhandled):
			logging.WarnWithContext(logger, "unknown extension", "extension_unknown",
				logging.String("key", e.Key.String()),
				logging.Int64("length", e.Length),
				logging.String(logging.FieldImpact, "extension entry skipped"),
			)
		default:
			logging.WarnWithContext(logger, "extension decode failed", "extension_failed",
				logging.String("key", e.Key.String()),
				logging.Error(err),
				logging.String(logging.FieldImpact, "extension payload dropped"),
			)
			errs = append(errs, fmt.Errorf("extension %s: %w", e.Key, err))
		}
	}
	return errors.Join(errs...)
}
