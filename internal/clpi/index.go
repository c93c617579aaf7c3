package clpi

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	// ErrNoEntryPoints reports a query against an empty entry-point map.
	ErrNoEntryPoints = errors.New("no entry points")
	// ErrUnknownPID reports a query for a PID without an entry-point map.
	ErrUnknownPID = errors.New("no entry point map for pid")
)

// Direction selects the tie-break of a search.
type Direction int

const (
	// Before resolves to the last entry at or before the target.
	Before Direction = iota
	// After resolves to the first entry at or after the target.
	After
)

func (d Direction) String() string {
	if d == After {
		return "after"
	}
	return "before"
}

// Point is an entry point with its absolute packet number and PTS. PTS is
// in 45 kHz ticks with the low 8 bits cleared; the EP map does not store
// them.
type Point struct {
	Index             int    `json:"index" yaml:"index"`
	SPN               uint32 `json:"spn" yaml:"spn"`
	PTS               uint32 `json:"pts" yaml:"pts"`
	AngleChange       bool   `json:"angle_change" yaml:"angle_change"`
	EndPositionOffset uint8  `json:"end_position_offset" yaml:"end_position_offset"`
}

func ptsKey(p Point) uint32 { return p.PTS }
func spnKey(p Point) uint32 { return p.SPN }

// Len returns the number of entry points.
func (m *EPMap) Len() int {
	return len(m.Fine)
}

// Point reconstructs entry point i.
func (m *EPMap) Point(i int) Point {
	return m.point(m.coarseFor(i), i)
}

// Points reconstructs every entry point in order.
func (m *EPMap) Points() []Point {
	out := make([]Point, 0, len(m.Fine))
	for c := range m.Coarse {
		lo, hi := m.bucket(c)
		for i := lo; i < hi; i++ {
			out = append(out, m.point(c, i))
		}
	}
	return out
}

func (m *EPMap) point(c, i int) Point {
	coarse, fine := m.Coarse[c], m.Fine[i]
	return Point{
		Index:             i,
		SPN:               (coarse.SPN &^ 0x1FFFF) + fine.SPN,
		PTS:               ((coarse.PTS &^ 1) << 18) + (fine.PTS << 8),
		AngleChange:       fine.AngleChange,
		EndPositionOffset: fine.EndPositionOffset,
	}
}

// coarseFor returns the coarse entry owning fine entry i.
func (m *EPMap) coarseFor(i int) int {
	return sort.Search(len(m.Coarse), func(k int) bool { return m.Coarse[k].RefFine > i }) - 1
}

// bucket returns the fine range [lo, hi) owned by coarse entry c.
func (m *EPMap) bucket(c int) (int, int) {
	hi := len(m.Fine)
	if c+1 < len(m.Coarse) {
		hi = m.Coarse[c+1].RefFine
	}
	return m.Coarse[c].RefFine, hi
}

// search returns the first index in [lo, hi) whose key is >= target, or hi.
// It binary-searches the coarse buckets covering the range by the key of
// their first entry, then the fine entries of the chosen bucket.
func (m *EPMap) search(lo, hi int, key func(Point) uint32, target uint32) int {
	if lo >= hi {
		return hi
	}
	first, last := m.coarseFor(lo), m.coarseFor(hi-1)
	c := first + sort.Search(last-first+1, func(j int) bool {
		k := first + j
		return key(m.point(k, max(m.Coarse[k].RefFine, lo))) >= target
	}) - 1
	if c < first {
		return lo
	}
	bLo, bHi := m.bucket(c)
	bLo, bHi = max(bLo, lo), min(bHi, hi)
	return bLo + sort.Search(bHi-bLo, func(j int) bool { return key(m.point(c, bLo+j)) >= target })
}

// resolve picks the entry for target over [lo, hi): After takes the first
// entry with key >= target, Before the last entry with key <= target. Among
// entries sharing the target key, After lands on the first and Before on the
// last. Out-of-range targets clamp to the range ends.
func (m *EPMap) resolve(lo, hi int, key func(Point) uint32, target uint32, dir Direction) int {
	if dir == After {
		return min(m.search(lo, hi, key, target), hi-1)
	}
	upper := hi
	if target < math.MaxUint32 {
		upper = m.search(lo, hi, key, target+1)
	}
	return max(upper-1, lo)
}

// PointForTime returns the entry point nearest pts in direction dir.
func (m *EPMap) PointForTime(pts uint32, dir Direction) (Point, error) {
	if len(m.Fine) == 0 {
		return Point{}, ErrNoEntryPoints
	}
	return m.Point(m.resolve(0, len(m.Fine), ptsKey, pts, dir)), nil
}

// PacketForTime returns the packet number of the entry point nearest pts.
func (m *EPMap) PacketForTime(pts uint32, dir Direction) (uint32, error) {
	p, err := m.PointForTime(pts, dir)
	if err != nil {
		return 0, err
	}
	return p.SPN, nil
}

// AccessPoint returns the entry point nearest packet spn in direction dir.
// With angleChangeOnly set it moves on in the same direction to the nearest
// angle-change point, keeping the unfiltered result when there is none.
func (m *EPMap) AccessPoint(spn uint32, dir Direction, angleChangeOnly bool) (Point, error) {
	if len(m.Fine) == 0 {
		return Point{}, ErrNoEntryPoints
	}
	i := m.resolve(0, len(m.Fine), spnKey, spn, dir)
	if angleChangeOnly {
		i = m.angleChange(i, dir)
	}
	return m.Point(i), nil
}

func (m *EPMap) angleChange(i int, dir Direction) int {
	step := -1
	if dir == After {
		step = 1
	}
	for j := i; j >= 0 && j < len(m.Fine); j += step {
		if m.Fine[j].AngleChange {
			return j
		}
	}
	return i
}

// EPMap returns the entry-point map of pid.
func (ci *ClipInfo) EPMap(pid uint16) (*EPMap, error) {
	for i := range ci.CPI.EPMaps {
		if ci.CPI.EPMaps[i].PID == pid {
			return &ci.CPI.EPMaps[i], nil
		}
	}
	return nil, fmt.Errorf("%w 0x%04x", ErrUnknownPID, pid)
}

// FindPacketForTime returns the packet number of the entry point of pid
// nearest pts in direction dir.
func (ci *ClipInfo) FindPacketForTime(pid uint16, pts uint32, dir Direction) (uint32, error) {
	m, err := ci.EPMap(pid)
	if err != nil {
		return 0, err
	}
	return m.PacketForTime(pts, dir)
}

// FindAccessPoint returns the entry point of pid nearest packet spn in
// direction dir, optionally restricted to angle-change points.
func (ci *ClipInfo) FindAccessPoint(pid uint16, spn uint32, dir Direction, angleChangeOnly bool) (Point, error) {
	m, err := ci.EPMap(pid)
	if err != nil {
		return Point{}, err
	}
	return m.AccessPoint(spn, dir, angleChangeOnly)
}

// PrimaryEPMap returns the first video entry-point map, or the first map of
// any kind when the clip has no video map.
func (ci *ClipInfo) PrimaryEPMap() *EPMap {
	maps := ci.CPI.EPMaps
	for i := range maps {
		if maps[i].StreamType == EPStreamVideo {
			return &maps[i]
		}
	}
	if len(maps) > 0 {
		return &maps[0]
	}
	return nil
}

// LookupSPN maps pts to a packet number on the primary entry-point map,
// searching only the entries of STC sequence stcID of the first ATC
// sequence. Without entry points it returns 0 for Before and the clip's
// packet count for After; an STC sequence with no entry points also
// resolves to the packet count.
func (ci *ClipInfo) LookupSPN(pts uint32, dir Direction, stcID uint8) uint32 {
	m := ci.PrimaryEPMap()
	if m == nil || m.Len() == 0 {
		if dir == Before {
			return 0
		}
		return ci.Clip.NumSourcePackets
	}
	lo, hi := ci.stcRange(m, stcID)
	if lo >= hi {
		return ci.Clip.NumSourcePackets
	}
	return m.Point(m.resolve(lo, hi, ptsKey, pts, dir)).SPN
}

// stcRange returns the entry range of STC sequence stcID; the whole map
// when the sequence is unknown.
func (ci *ClipInfo) stcRange(m *EPMap, stcID uint8) (int, int) {
	n := m.Len()
	if len(ci.ATCSeqs) == 0 || int(stcID) >= len(ci.ATCSeqs[0].STC) {
		return 0, n
	}
	stc := ci.ATCSeqs[0].STC
	lo := m.search(0, n, spnKey, stc[stcID].SPNSTCStart)
	hi := n
	if int(stcID)+1 < len(stc) {
		hi = m.search(lo, n, spnKey, stc[stcID+1].SPNSTCStart)
	}
	return lo, hi
}
