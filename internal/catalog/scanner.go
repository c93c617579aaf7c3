package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"bdnav/internal/bdmv"
	"bdnav/internal/config"
	"bdnav/internal/fingerprint"
	"bdnav/internal/logging"
	"bdnav/internal/mpls"
)

// Scanner enumerates the titles of a disc tree.
type Scanner struct {
	decoder          *mpls.Decoder
	logger           *slog.Logger
	workers          int
	minDuration      time.Duration
	filterDuplicates bool
}

// NewScanner builds a scanner from the [decoder] and [catalog] sections of
// cfg. Decoder diagnostics honour logging.decoder_level.
func NewScanner(cfg *config.Config, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = logging.NewNop()
	}
	if cfg == nil {
		def := config.Default()
		cfg = &def
	}
	opts := append(mpls.OptionsFromConfig(cfg.Decoder), mpls.WithLogger(logging.ForDecoders(logger, cfg)))
	return &Scanner{
		decoder:          mpls.NewDecoder(opts...),
		logger:           logging.NewComponentLogger(logger, "catalog"),
		workers:          max(cfg.Catalog.Workers, 1),
		minDuration:      time.Duration(cfg.Catalog.MinTitleSeconds) * time.Second,
		filterDuplicates: cfg.Catalog.FilterDuplicates,
	}
}

type decoded struct {
	number   int
	playlist *mpls.Playlist
	err      error
}

// Scan decodes every playlist of the disc at root and returns its titles
// sorted by playlist number. Individual playlist failures are collected in
// Result.Failed; Scan itself fails only when the playlist directory cannot
// be listed or ctx is cancelled.
func (s *Scanner) Scan(ctx context.Context, root string) (*Result, error) {
	runID := uuid.NewString()
	ctx = logging.WithCorrelationID(ctx, runID)
	logger := logging.WithContext(ctx, s.logger)

	layout := bdmv.NewLayout(root)
	files, err := listPlaylists(layout)
	if err != nil {
		return nil, err
	}
	logger.Info("scanning disc",
		logging.String("disc_root", layout.Root),
		logging.Int("playlists", len(files)),
		logging.Int("workers", s.workers),
	)

	results := make([]decoded, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			pl, err := s.decoder.DecodeFile(f.path)
			results[i] = decoded{number: f.number, playlist: pl, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		releaseAll(results)
		return nil, err
	}

	discFP, err := fingerprint.Compute(ctx, layout.Root)
	if err != nil {
		logging.WarnWithContext(logger, "disc fingerprint unavailable", "disc_fingerprint_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "catalog runs for this disc cannot be grouped"),
		)
	}

	result := &Result{
		RunID:           runID,
		DiscRoot:        layout.Root,
		DiscFingerprint: discFP,
		ScannedAt:       time.Now().UTC(),
	}
	s.collect(logger, result, results)
	releaseAll(results)

	logger.Info("disc scanned",
		logging.Int("titles", len(result.Titles)),
		logging.Int("skipped", len(result.Skipped)),
		logging.Int("failed", len(result.Failed)),
	)
	return result, nil
}

func (s *Scanner) collect(logger *slog.Logger, result *Result, results []decoded) {
	seen := make(map[string]int)
	for _, d := range results {
		if d.err != nil {
			logging.WarnWithContext(logger, "playlist unreadable", "playlist_decode_failed",
				logging.Int("playlist", d.number),
				logging.Error(d.err),
				logging.String(logging.FieldImpact, "playlist omitted from titles"),
			)
			result.Failed = append(result.Failed, Failure{Playlist: d.number, Error: d.err.Error()})
			continue
		}
		title := newTitle(d.number, d.playlist)
		if title.Duration < s.minDuration {
			logger.Debug("playlist below minimum duration",
				logging.Int("playlist", d.number),
				logging.Duration("duration", title.Duration),
			)
			result.Skipped = append(result.Skipped, Skipped{Playlist: d.number, Reason: SkipTooShort})
			continue
		}
		if s.filterDuplicates {
			if first, ok := seen[title.Fingerprint]; ok {
				logger.Debug("duplicate playlist",
					logging.Int("playlist", d.number),
					logging.Int("duplicate_of", first),
				)
				result.Skipped = append(result.Skipped, Skipped{Playlist: d.number, Reason: SkipDuplicate, DuplicateOf: first})
				continue
			}
			seen[title.Fingerprint] = d.number
		}
		result.Titles = append(result.Titles, title)
	}
}

func newTitle(number int, pl *mpls.Playlist) Title {
	t := Title{
		Playlist:     number,
		Duration:     pl.Duration(),
		Clips:        pl.ClipIDs(),
		ChapterCount: len(pl.Chapters()),
		AngleCount:   pl.MaxAngles(),
		Fingerprint:  fingerprint.Title(pl),
	}
	if len(pl.PlayItems) > 0 {
		t.Streams = SummarizeStreams(pl.PlayItems[0].STN)
	}
	return t
}

// SummarizeStreams renders a one-line stream overview such as
// "1 video, 2 audio (eng, fra), 1 subtitle (eng)".
func SummarizeStreams(stn mpls.STN) string {
	var parts []string
	add := func(streams []mpls.Stream, singular, plural string, withLang bool) {
		if len(streams) == 0 {
			return
		}
		label := plural
		if len(streams) == 1 {
			label = singular
		}
		part := fmt.Sprintf("%d %s", len(streams), label)
		if withLang {
			if langs := distinctLangs(streams); len(langs) > 0 {
				part += " (" + strings.Join(langs, ", ") + ")"
			}
		}
		parts = append(parts, part)
	}
	add(stn.Video, "video", "video", false)
	add(stn.Audio, "audio", "audio", true)
	add(stn.PG, "subtitle", "subtitles", true)
	add(stn.IG, "menu", "menus", false)
	add(stn.SecondaryAudio, "secondary audio", "secondary audio", true)
	add(stn.SecondaryVideo, "secondary video", "secondary video", false)
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}

func distinctLangs(streams []mpls.Stream) []string {
	var langs []string
	seen := make(map[string]struct{})
	for _, s := range streams {
		lang := s.Lang()
		if lang == "" {
			continue
		}
		if _, ok := seen[lang]; ok {
			continue
		}
		seen[lang] = struct{}{}
		langs = append(langs, lang)
	}
	return langs
}

// playlistFile is a playlist found on disc under its real entry name, which
// may carry an upper-case extension.
type playlistFile struct {
	number int
	path   string
}

func listPlaylists(layout bdmv.Layout) ([]playlistFile, error) {
	dir := layout.PlaylistDir()
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list playlists: %w", err)
	}
	var files []playlistFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if n, ok := bdmv.PlaylistNumber(e.Name()); ok {
			files = append(files, playlistFile{number: n, path: filepath.Join(dir, e.Name())})
		}
	}
	sort.Slice(files, func(i, j int) bool {
		if files[i].number != files[j].number {
			return files[i].number < files[j].number
		}
		return files[i].path < files[j].path
	})
	return files, nil
}

func releaseAll(results []decoded) {
	for i := range results {
		results[i].playlist.Release()
		results[i].playlist = nil
	}
}
