package clpi

import "bdnav/internal/streamattr"

// ClipInfo is a decoded .clpi file.
type ClipInfo struct {
	TypeIndicator   string `json:"type_indicator" yaml:"type_indicator"`
	Version         string `json:"version" yaml:"version"`
	SequenceInfoPos uint32 `json:"sequence_info_pos" yaml:"sequence_info_pos"`
	ProgramInfoPos  uint32 `json:"program_info_pos" yaml:"program_info_pos"`
	CPIPos          uint32 `json:"cpi_pos" yaml:"cpi_pos"`
	ClipMarkPos     uint32 `json:"clip_mark_pos" yaml:"clip_mark_pos"`
	ExtPos          uint32 `json:"ext_pos" yaml:"ext_pos"`

	Clip     Attributes `json:"clip" yaml:"clip"`
	ATCSeqs  []ATCSeq   `json:"atc_sequences" yaml:"atc_sequences"`
	Programs []Program  `json:"programs" yaml:"programs"`
	CPI      CPI        `json:"cpi" yaml:"cpi"`
}

// ApplicationType values.
const (
	AppMainMovie              uint8 = 1
	AppMainTimedSlideshow     uint8 = 2
	AppMainBrowsableSlideshow uint8 = 3
	AppSubBrowsableSlideshow  uint8 = 4
	AppSubInteractiveGraphics uint8 = 5
	AppSubTextSubtitle        uint8 = 6
	AppSubElementary          uint8 = 7
)

// Attributes is the clip-info block.
type Attributes struct {
	StreamType       uint8      `json:"stream_type" yaml:"stream_type"`
	ApplicationType  uint8      `json:"application_type" yaml:"application_type"`
	RecordingRate    uint32     `json:"recording_rate" yaml:"recording_rate"`
	NumSourcePackets uint32     `json:"num_source_packets" yaml:"num_source_packets"`
	TSType           TSTypeInfo `json:"ts_type" yaml:"ts_type"`
	ATCDeltas        []ATCDelta `json:"atc_deltas,omitempty" yaml:"atc_deltas,omitempty"`
}

// TSTypeInfo identifies the transport stream format.
type TSTypeInfo struct {
	Validity uint8  `json:"validity" yaml:"validity"`
	FormatID string `json:"format_id" yaml:"format_id"`
}

// ATCDelta links the clip to a following file sharing its arrival clock.
type ATCDelta struct {
	Delta    uint32 `json:"delta" yaml:"delta"`
	FileID   string `json:"file_id" yaml:"file_id"`
	FileCode string `json:"file_code" yaml:"file_code"`
}

// ATCSeq is a run of packets with a continuous arrival time clock.
type ATCSeq struct {
	SPNATCStart uint32   `json:"spn_atc_start" yaml:"spn_atc_start"`
	OffsetSTCID uint8    `json:"offset_stc_id" yaml:"offset_stc_id"`
	STC         []STCSeq `json:"stc_sequences" yaml:"stc_sequences"`
}

// STCSeq is a run of packets with a continuous system time clock.
type STCSeq struct {
	PCRPID            uint16 `json:"pcr_pid" yaml:"pcr_pid"`
	SPNSTCStart       uint32 `json:"spn_stc_start" yaml:"spn_stc_start"`
	PresentationStart uint32 `json:"presentation_start" yaml:"presentation_start"`
	PresentationEnd   uint32 `json:"presentation_end" yaml:"presentation_end"`
}

// Program is one program of the program-info block.
type Program struct {
	SPNStart  uint32          `json:"spn_start" yaml:"spn_start"`
	PMTPID    uint16          `json:"pmt_pid" yaml:"pmt_pid"`
	NumGroups uint8           `json:"num_groups" yaml:"num_groups"`
	Streams   []ProgramStream `json:"streams" yaml:"streams"`
}

// ProgramStream is one elementary stream of a program.
type ProgramStream struct {
	PID  uint16          `json:"pid" yaml:"pid"`
	Attr streamattr.Attr `json:"attr" yaml:"attr"`
}

// Coding returns the stream coding type.
func (s ProgramStream) Coding() streamattr.CodingType {
	if s.Attr == nil {
		return 0
	}
	return s.Attr.Coding()
}

// Lang returns the ISO 639-2 language code, if the stream has one.
func (s ProgramStream) Lang() string {
	return streamattr.Lang(s.Attr)
}

// CPITypeEPMap is the only CPI type defined for BD-ROM.
const CPITypeEPMap uint8 = 1

// CPI is the characteristic point information block.
type CPI struct {
	Type   uint8   `json:"type" yaml:"type"`
	EPMaps []EPMap `json:"ep_maps,omitempty" yaml:"ep_maps,omitempty"`
}

// EPStreamVideo marks the entry-point map of a video PID.
const EPStreamVideo uint8 = 1

// EPMap holds the entry points of one PID in their on-disc split form.
type EPMap struct {
	PID        uint16   `json:"pid" yaml:"pid"`
	StreamType uint8    `json:"stream_type" yaml:"stream_type"`
	Coarse     []Coarse `json:"coarse" yaml:"coarse"`
	Fine       []Fine   `json:"fine" yaml:"fine"`
}

// Coarse is a coarse entry: the upper PTS and SPN bits shared by the fine
// entries from RefFine up to the next coarse entry.
type Coarse struct {
	RefFine int    `json:"ref_fine" yaml:"ref_fine"`
	PTS     uint32 `json:"pts" yaml:"pts"` // 14 bits
	SPN     uint32 `json:"spn" yaml:"spn"`
}

// Fine is a fine entry holding the lower PTS and SPN bits.
type Fine struct {
	AngleChange       bool   `json:"angle_change" yaml:"angle_change"`
	EndPositionOffset uint8  `json:"end_position_offset" yaml:"end_position_offset"`
	PTS               uint32 `json:"pts" yaml:"pts"` // 11 bits
	SPN               uint32 `json:"spn" yaml:"spn"` // 17 bits
}
