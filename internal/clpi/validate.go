package clpi

import (
	"fmt"
	"log/slog"

	"bdnav/internal/logging"
)

// validate checks that every coarse table indexes its fine table, which the
// search code relies on, and warns about maps whose packet numbers run
// backwards.
func validate(ci *ClipInfo, logger *slog.Logger) error {
	for i := range ci.CPI.EPMaps {
		m := &ci.CPI.EPMaps[i]
		if err := m.check(); err != nil {
			return fmt.Errorf("ep map %d (pid 0x%04x): %w", i, m.PID, err)
		}
		if at := m.firstUnordered(); at > 0 {
			logging.WarnWithContext(logger, "entry points out of order", "clpi_ep_map_unordered",
				logging.Hex("pid", uint64(m.PID)),
				logging.Int("entry", at),
				logging.String(logging.FieldImpact, "seek results for this pid may be imprecise"),
			)
		}
	}
	return nil
}

func (m *EPMap) check() error {
	if len(m.Coarse) == 0 || len(m.Fine) == 0 {
		if len(m.Coarse) != len(m.Fine) {
			return fmt.Errorf("%w: %d coarse and %d fine entries", ErrEPMap, len(m.Coarse), len(m.Fine))
		}
		return nil
	}
	if m.Coarse[0].RefFine != 0 {
		return fmt.Errorf("%w: first coarse entry references fine entry %d", ErrEPMap, m.Coarse[0].RefFine)
	}
	for i := 1; i < len(m.Coarse); i++ {
		ref := m.Coarse[i].RefFine
		if ref <= m.Coarse[i-1].RefFine || ref >= len(m.Fine) {
			return fmt.Errorf("%w: coarse entry %d references fine entry %d of %d", ErrEPMap, i, ref, len(m.Fine))
		}
	}
	return nil
}

// firstUnordered returns the index of the first entry whose packet number is
// lower than its predecessor's, or 0 when the map is ordered.
func (m *EPMap) firstUnordered() int {
	var prev uint32
	for i := range m.Fine {
		spn := m.Point(i).SPN
		if i > 0 && spn < prev {
			return i
		}
		prev = spn
	}
	return 0
}
