package clpi

import (
	"errors"
	"io"
	"log/slog"

	"bdnav/internal/bdmv"
	"bdnav/internal/bitstream"
	"bdnav/internal/config"
	"bdnav/internal/logging"
)

var (
	// ErrSignature reports a file that does not start with a known
	// clip-information signature.
	ErrSignature = errors.New("clip info signature mismatch")
	// ErrEPMap reports an entry-point map whose coarse table does not index
	// its fine table.
	ErrEPMap = errors.New("malformed entry point map")
)

const (
	typeIndicator = "HDMV"
	version0100   = "0100"
	version0200   = "0200"
	version0300   = "0300"
)

// Decoder decodes clip-information files. Build one with NewDecoder; a
// Decoder holds no per-file state and may be shared.
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
			d.logger = logging.NewComponentLogger(logger, "clpi")
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

// WithStrictSignature toggles rejection of unknown version tags.
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
		logger:      logging.NewComponentLogger(nil, "clpi"),
		opener:      bitstream.OSOpener{},
		backupRetry: true,
		strict:      true,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DecodeFile decodes the clip information at path, retrying its BACKUP
// mirror once when the primary copy fails.
func (d *Decoder) DecodeFile(path string) (*ClipInfo, error) {
	if !d.backupRetry {
		return d.decodePath(path)
	}
	return bdmv.WithBackup(path, d.logger, d.decodePath)
}

func (d *Decoder) decodePath(path string) (*ClipInfo, error) {
	var ci *ClipInfo
	err := bitstream.WithFile(d.opener, path, d.maxFileBytes, func(r *bitstream.Reader) error {
		var err error
		ci, err = d.decode(r, d.logger.With(logging.Path(path)))
		return err
	})
	if err != nil {
		return nil, err
	}
	return ci, nil
}

// Decode decodes clip information from src.
func (d *Decoder) Decode(src io.ReadSeeker) (*ClipInfo, error) {
	r, err := bitstream.NewReader(src)
	if err != nil {
		return nil, err
	}
	return d.decode(r, d.logger)
}

// DecodeBytes decodes in-memory clip information.
func (d *Decoder) DecodeBytes(data []byte) (*ClipInfo, error) {
	return d.decode(bitstream.NewBytesReader(data), d.logger)
}

// DecodeFile decodes path with a default decoder.
func DecodeFile(path string) (*ClipInfo, error) {
	return NewDecoder().DecodeFile(path)
}

func (d *Decoder) decode(r *bitstream.Reader, logger *slog.Logger) (*ClipInfo, error) {
	p := &parser{r: r, log: logger, strict: d.strict}
	ci := &ClipInfo{}
	if err := p.clipInfo(ci); err != nil {
		ci.Release()
		return nil, err
	}
	if err := validate(ci, logger); err != nil {
		ci.Release()
		return nil, err
	}
	logger.Debug("clip info decoded",
		logging.Int("atc_sequences", len(ci.ATCSeqs)),
		logging.Int("programs", len(ci.Programs)),
		logging.Int("ep_maps", len(ci.CPI.EPMaps)),
	)
	return ci, nil
}
