package mpls

import (
	"errors"
	"io"
	"log/slog"

	"bdnav/internal/bdmv"
	"bdnav/internal/bitstream"
	"bdnav/internal/config"
	"bdnav/internal/logging"
)

// ErrSignature reports a file that does not start with a known playlist
// signature.
var ErrSignature = errors.New("playlist signature mismatch")

const (
	typeIndicator = "MPLS"
	version0100   = "0100"
	version0200   = "0200"
)

// Decoder decodes playlists. The zero value is not usable; build one with
// NewDecoder. A Decoder holds no per-file state and may be shared.
type Decoder struct {
	logger       *slog.Logger
	opener       bitstream.Opener
	backupRetry  bool
	strict       bool
	maxFileBytes int64
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithLogger routes diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Decoder) {
		if logger != nil {
			d.logger = logging.NewComponentLogger(logger, "mpls")
		}
	}
}

// WithOpener replaces the filesystem used by DecodeFile.
func WithOpener(opener bitstream.Opener) Option {
	return func(d *Decoder) {
		if opener != nil {
			d.opener = opener
		}
	}
}

// WithBackupRetry toggles the BDMV/BACKUP fallback in DecodeFile.
func WithBackupRetry(enabled bool) Option {
	return func(d *Decoder) { d.backupRetry = enabled }
}

// WithStrictSignature toggles rejection of unknown version tags. The type
// indicator itself is always checked.
func WithStrictSignature(strict bool) Option {
	return func(d *Decoder) { d.strict = strict }
}

// WithMaxFileBytes rejects larger files in DecodeFile. Zero disables the
// check.
func WithMaxFileBytes(n int64) Option {
	return func(d *Decoder) { d.maxFileBytes = n }
}

// OptionsFromConfig maps the [decoder] configuration section onto options.
func OptionsFromConfig(cfg config.Decoder) []Option {
	return []Option{
		WithBackupRetry(cfg.BackupRetry),
		WithStrictSignature(cfg.StrictSignature),
		WithMaxFileBytes(cfg.MaxFileBytes),
	}
}

// NewDecoder returns a decoder with backup retry and strict signatures on.
func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{
		logger:      logging.NewComponentLogger(nil, "mpls"),
		opener:      bitstream.OSOpener{},
		backupRetry: true,
		strict:      true,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DecodeFile decodes the playlist at path, retrying its BACKUP mirror once
// when the primary copy fails.
func (d *Decoder) DecodeFile(path string) (*Playlist, error) {
	if !d.backupRetry {
		return d.decodePath(path)
	}
	return bdmv.WithBackup(path, d.logger, d.decodePath)
}

func (d *Decoder) decodePath(path string) (*Playlist, error) {
	var pl *Playlist
	err := bitstream.WithFile(d.opener, path, d.maxFileBytes, func(r *bitstream.Reader) error {
		var err error
		pl, err = d.decode(r, d.logger.With(logging.Path(path)))
		return err
	})
	if err != nil {
		return nil, err
	}
	return pl, nil
}

// Decode decodes a playlist from src. It never returns a partial record.
func (d *Decoder) Decode(src io.ReadSeeker) (*Playlist, error) {
	r, err := bitstream.NewReader(src)
	if err != nil {
		return nil, err
	}
	return d.decode(r, d.logger)
}

// DecodeBytes decodes an in-memory playlist.
func (d *Decoder) DecodeBytes(data []byte) (*Playlist, error) {
	return d.decode(bitstream.NewBytesReader(data), d.logger)
}

// DecodeFile decodes path with a default decoder.
func DecodeFile(path string) (*Playlist, error) {
	return NewDecoder().DecodeFile(path)
}

func (d *Decoder) decode(r *bitstream.Reader, logger *slog.Logger) (*Playlist, error) {
	p := &parser{r: r, log: logger, strict: d.strict}
	pl := &Playlist{}
	if err := p.playlist(pl); err != nil {
		pl.Release()
		return nil, err
	}
	logger.Debug("playlist decoded",
		logging.Int("play_items", len(pl.PlayItems)),
		logging.Int("sub_paths", len(pl.SubPaths)),
		logging.Int("marks", len(pl.Marks)),
	)
	return pl, nil
}
