package mpls

import "time"

// TicksPerSecond is the resolution of playlist in/out and mark times.
const TicksPerSecond = 45000

// TicksToDuration converts 45 kHz ticks to a time.Duration.
func TicksToDuration(ticks uint64) time.Duration {
	whole := time.Duration(ticks/TicksPerSecond) * time.Second
	return whole + time.Duration(ticks%TicksPerSecond)*time.Second/TicksPerSecond
}

// Duration returns the play time of the item.
func (pi PlayItem) Duration() time.Duration {
	if pi.OutTime <= pi.InTime {
		return 0
	}
	return TicksToDuration(uint64(pi.OutTime - pi.InTime))
}

// Duration returns the total play time of the main path.
func (p *Playlist) Duration() time.Duration {
	if p == nil {
		return 0
	}
	var ticks uint64
	for _, pi := range p.PlayItems {
		if pi.OutTime > pi.InTime {
			ticks += uint64(pi.OutTime - pi.InTime)
		}
	}
	return TicksToDuration(ticks)
}

// Chapter is an entry mark resolved to playlist time.
type Chapter struct {
	Index    int           `json:"index" yaml:"index"`
	PlayItem int           `json:"play_item" yaml:"play_item"`
	Start    time.Duration `json:"start" yaml:"start"`
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// Chapters resolves entry marks into chapters numbered from 1. Marks that
// reference a missing play item are skipped.
func (p *Playlist) Chapters() []Chapter {
	if p == nil || len(p.PlayItems) == 0 {
		return nil
	}
	offsets := make([]uint64, len(p.PlayItems))
	var total uint64
	for i, pi := range p.PlayItems {
		offsets[i] = total
		if pi.OutTime > pi.InTime {
			total += uint64(pi.OutTime - pi.InTime)
		}
	}

	var chapters []Chapter
	for _, m := range p.Marks {
		if m.Type != MarkEntry || int(m.PlayItemRef) >= len(p.PlayItems) {
			continue
		}
		pi := p.PlayItems[m.PlayItemRef]
		at := offsets[m.PlayItemRef]
		if m.Time > pi.InTime {
			at += uint64(m.Time - pi.InTime)
		}
		chapters = append(chapters, Chapter{
			Index:    len(chapters) + 1,
			PlayItem: int(m.PlayItemRef),
			Start:    TicksToDuration(at),
		})
	}
	end := TicksToDuration(total)
	for i := range chapters {
		next := end
		if i+1 < len(chapters) {
			next = chapters[i+1].Start
		}
		if next > chapters[i].Start {
			chapters[i].Duration = next - chapters[i].Start
		}
	}
	return chapters
}

// ClipIDs lists the primary clip of every play item in order.
func (p *Playlist) ClipIDs() []string {
	if p == nil {
		return nil
	}
	ids := make([]string, 0, len(p.PlayItems))
	for _, pi := range p.PlayItems {
		ids = append(ids, pi.Clip().ClipID)
	}
	return ids
}

// MaxAngles returns the largest angle count of any play item.
func (p *Playlist) MaxAngles() int {
	angles := 0
	if p == nil {
		return angles
	}
	for _, pi := range p.PlayItems {
		angles = max(angles, pi.AngleCount())
	}
	return angles
}
