package mpls

import (
	"encoding/binary"
	"math/bits"
	"strings"
)

// UOMask is the 64-bit user-operation mask. A set bit prohibits the
// operation. Bit 63 is the first bit on disc.
type UOMask uint64

const (
	UOMenuCall UOMask = 1 << (63 - iota)
	UOTitleSearch
	UOChapterSearch
	UOTimeSearch
	UOSkipToNextPoint
	UOSkipToPrevPoint
	UOPlayFirstPlay
	UOStop
	UOPauseOn
	UOPauseOff
	UOStillOff
	UOForward
	UOBackward
	UOResume
	UOMoveUp
	UOMoveDown
	UOMoveLeft
	UOMoveRight
	UOSelect
	UOActivate
	UOSelectAndActivate
	UOPrimaryAudioChange
	_
	UOAngleChange
	UOPopupOn
	UOPopupOff
	UOPGEnableDisable
	UOPGChange
	UOSecondaryVideoEnableDisable
	UOSecondaryVideoChange
	UOSecondaryAudioEnableDisable
	UOSecondaryAudioChange
	_
	UOPiPPGChange
)

var uoNames = []struct {
	flag UOMask
	name string
}{
	{UOMenuCall, "menu_call"},
	{UOTitleSearch, "title_search"},
	{UOChapterSearch, "chapter_search"},
	{UOTimeSearch, "time_search"},
	{UOSkipToNextPoint, "skip_to_next_point"},
	{UOSkipToPrevPoint, "skip_to_prev_point"},
	{UOPlayFirstPlay, "play_firstplay"},
	{UOStop, "stop"},
	{UOPauseOn, "pause_on"},
	{UOPauseOff, "pause_off"},
	{UOStillOff, "still_off"},
	{UOForward, "forward"},
	{UOBackward, "backward"},
	{UOResume, "resume"},
	{UOMoveUp, "move_up"},
	{UOMoveDown, "move_down"},
	{UOMoveLeft, "move_left"},
	{UOMoveRight, "move_right"},
	{UOSelect, "select"},
	{UOActivate, "activate"},
	{UOSelectAndActivate, "select_and_activate"},
	{UOPrimaryAudioChange, "primary_audio_change"},
	{UOAngleChange, "angle_change"},
	{UOPopupOn, "popup_on"},
	{UOPopupOff, "popup_off"},
	{UOPGEnableDisable, "pg_enable_disable"},
	{UOPGChange, "pg_change"},
	{UOSecondaryVideoEnableDisable, "secondary_video_enable_disable"},
	{UOSecondaryVideoChange, "secondary_video_change"},
	{UOSecondaryAudioEnableDisable, "secondary_audio_enable_disable"},
	{UOSecondaryAudioChange, "secondary_audio_change"},
	{UOPiPPGChange, "pip_pg_change"},
}

// ParseUOMask decodes the 8 on-disc bytes of a mask.
func ParseUOMask(b [8]byte) UOMask {
	return UOMask(binary.BigEndian.Uint64(b[:]))
}

// Has reports whether every bit of flag is set.
func (m UOMask) Has(flag UOMask) bool {
	return m&flag == flag
}

// Count returns the number of named operations that are prohibited.
func (m UOMask) Count() int {
	var known UOMask
	for _, n := range uoNames {
		known |= n.flag
	}
	return bits.OnesCount64(uint64(m & known))
}

// Names lists the prohibited operations in on-disc order.
func (m UOMask) Names() []string {
	var out []string
	for _, n := range uoNames {
		if m.Has(n.flag) {
			out = append(out, n.name)
		}
	}
	return out
}

func (m UOMask) String() string {
	names := m.Names()
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ",")
}
