package mpls

import "bdnav/internal/streamattr"

// Playlist is a decoded .mpls file.
type Playlist struct {
	TypeIndicator string `json:"type_indicator" yaml:"type_indicator"`
	Version       string `json:"version" yaml:"version"`
	ListPos       uint32 `json:"list_pos" yaml:"list_pos"`
	MarkPos       uint32 `json:"mark_pos" yaml:"mark_pos"`
	ExtPos        uint32 `json:"ext_pos" yaml:"ext_pos"`

	AppInfo     AppInfo       `json:"app_info" yaml:"app_info"`
	PlayItems   []PlayItem    `json:"play_items" yaml:"play_items"`
	SubPaths    []SubPath     `json:"sub_paths,omitempty" yaml:"sub_paths,omitempty"`
	Marks       []Mark        `json:"marks,omitempty" yaml:"marks,omitempty"`
	PiP         []PiPMetadata `json:"pip,omitempty" yaml:"pip,omitempty"`
	ExtSubPaths []SubPath     `json:"ext_sub_paths,omitempty" yaml:"ext_sub_paths,omitempty"`
}

// PlaybackType values.
const (
	PlaybackSequential uint8 = 1
	PlaybackRandom     uint8 = 2
	PlaybackShuffle    uint8 = 3
)

// AppInfo is the playlist application-info block.
type AppInfo struct {
	PlaybackType uint8 `json:"playback_type" yaml:"playback_type"`
	// PlaybackCount is only present for random and shuffle playback.
	PlaybackCount  uint16 `json:"playback_count,omitempty" yaml:"playback_count,omitempty"`
	UOMask         UOMask `json:"uo_mask" yaml:"uo_mask"`
	RandomAccess   bool   `json:"random_access" yaml:"random_access"`
	AudioMix       bool   `json:"audio_mix" yaml:"audio_mix"`
	LosslessBypass bool   `json:"lossless_bypass" yaml:"lossless_bypass"`
}

// Clip references one clip-information file.
type Clip struct {
	ClipID  string `json:"clip_id" yaml:"clip_id"`
	CodecID string `json:"codec_id" yaml:"codec_id"`
	STCID   uint8  `json:"stc_id" yaml:"stc_id"`
}

// StillMode values.
const (
	StillNone     uint8 = 0
	StillTimed    uint8 = 1
	StillInfinite uint8 = 2
)

// PlayItem is one segment of the main path. Clips holds one entry per
// angle and is never empty for a decoded item.
type PlayItem struct {
	Clips               []Clip `json:"clips" yaml:"clips"`
	MultiAngle          bool   `json:"multi_angle" yaml:"multi_angle"`
	ConnectionCondition uint8  `json:"connection_condition" yaml:"connection_condition"`
	InTime              uint32 `json:"in_time" yaml:"in_time"`
	OutTime             uint32 `json:"out_time" yaml:"out_time"`
	UOMask              UOMask `json:"uo_mask" yaml:"uo_mask"`
	RandomAccess        bool   `json:"random_access" yaml:"random_access"`
	StillMode           uint8  `json:"still_mode" yaml:"still_mode"`
	StillTime           uint16 `json:"still_time,omitempty" yaml:"still_time,omitempty"`
	DifferentAudio      bool   `json:"different_audio,omitempty" yaml:"different_audio,omitempty"`
	SeamlessAngle       bool   `json:"seamless_angle,omitempty" yaml:"seamless_angle,omitempty"`
	STN                 STN    `json:"stn" yaml:"stn"`
}

// AngleCount returns the number of angles, which is at least 1 for a
// decoded item.
func (pi PlayItem) AngleCount() int {
	return len(pi.Clips)
}

// Clip returns the primary clip reference.
func (pi PlayItem) Clip() Clip {
	if len(pi.Clips) == 0 {
		return Clip{}
	}
	return pi.Clips[0]
}

// STN is the stream number table of a play item. Each slice holds exactly
// the declared number of entries.
type STN struct {
	Video          []Stream `json:"video,omitempty" yaml:"video,omitempty"`
	Audio          []Stream `json:"audio,omitempty" yaml:"audio,omitempty"`
	PG             []Stream `json:"pg,omitempty" yaml:"pg,omitempty"`
	PiPPG          []Stream `json:"pip_pg,omitempty" yaml:"pip_pg,omitempty"`
	IG             []Stream `json:"ig,omitempty" yaml:"ig,omitempty"`
	SecondaryAudio []Stream `json:"secondary_audio,omitempty" yaml:"secondary_audio,omitempty"`
	SecondaryVideo []Stream `json:"secondary_video,omitempty" yaml:"secondary_video,omitempty"`
}

// Stream entry types, selecting where the PID lives.
const (
	EntryPlayItem       uint8 = 1 // main clip
	EntrySubPath        uint8 = 2 // out-of-mux sub-path clip
	EntrySubPathInMux   uint8 = 3 // in-mux sub-path
	EntrySubPathSubClip uint8 = 4 // out-of-mux sub-path, additional clip
)

// Stream is one STN entry. Attr carries the coding-type specific fields.
type Stream struct {
	EntryType uint8           `json:"entry_type" yaml:"entry_type"`
	PID       uint16          `json:"pid" yaml:"pid"`
	SubPathID uint8           `json:"sub_path_id,omitempty" yaml:"sub_path_id,omitempty"`
	SubClipID uint8           `json:"sub_clip_id,omitempty" yaml:"sub_clip_id,omitempty"`
	Attr      streamattr.Attr `json:"attr" yaml:"attr"`
	// AudioRefs lists primary audio streams a secondary audio stream may mix
	// with, or the secondary audio streams usable with a secondary video.
	AudioRefs []uint8 `json:"audio_refs,omitempty" yaml:"audio_refs,omitempty"`
	// PiPPGRefs lists PiP graphics streams usable with a secondary video.
	PiPPGRefs []uint8 `json:"pip_pg_refs,omitempty" yaml:"pip_pg_refs,omitempty"`
}

// Coding returns the stream's coding type, or 0 when no attributes were
// decoded.
func (s Stream) Coding() streamattr.CodingType {
	if s.Attr == nil {
		return 0
	}
	return s.Attr.Coding()
}

// Lang returns the stream's ISO 639-2 code, if it has one.
func (s Stream) Lang() string {
	if s.Attr == nil {
		return ""
	}
	return streamattr.Lang(s.Attr)
}

// SubPath types that appear on retail discs.
const (
	SubPathPrimaryAudio      uint8 = 2
	SubPathInteractiveGfx    uint8 = 3
	SubPathTextSubtitle      uint8 = 4
	SubPathOutOfMuxSync      uint8 = 5
	SubPathOutOfMuxAsync     uint8 = 6
	SubPathInMuxSync         uint8 = 7
	SubPathStereoscopicVideo uint8 = 8
)

// SubPath is an auxiliary timeline synchronised to the main path.
type SubPath struct {
	Type   uint8         `json:"type" yaml:"type"`
	Repeat bool          `json:"repeat" yaml:"repeat"`
	Items  []SubPlayItem `json:"items" yaml:"items"`
}

// SubPlayItem is one segment of a sub-path. Clips is never empty for a
// decoded item; more than one entry means a multi-clip item.
type SubPlayItem struct {
	Clips               []Clip `json:"clips" yaml:"clips"`
	ConnectionCondition uint8  `json:"connection_condition" yaml:"connection_condition"`
	MultiClip           bool   `json:"multi_clip" yaml:"multi_clip"`
	InTime              uint32 `json:"in_time" yaml:"in_time"`
	OutTime             uint32 `json:"out_time" yaml:"out_time"`
	SyncPlayItemID      uint16 `json:"sync_play_item_id" yaml:"sync_play_item_id"`
	SyncPTS             uint32 `json:"sync_pts" yaml:"sync_pts"`
}

// Mark types.
const (
	MarkEntry uint8 = 1
	MarkLink  uint8 = 2
)

// Mark is a chapter (entry) or link point.
type Mark struct {
	ID          uint8  `json:"id" yaml:"id"`
	Type        uint8  `json:"type" yaml:"type"`
	PlayItemRef uint16 `json:"play_item_ref" yaml:"play_item_ref"`
	Time        uint32 `json:"time" yaml:"time"`
	EntryESPID  uint16 `json:"entry_es_pid" yaml:"entry_es_pid"`
	Duration    uint32 `json:"duration" yaml:"duration"`
}

// PiPMetadata is one picture-in-picture block from the (1,1) extension.
type PiPMetadata struct {
	ClipRef           uint16    `json:"clip_ref" yaml:"clip_ref"`
	SecondaryVideoRef uint8     `json:"secondary_video_ref" yaml:"secondary_video_ref"`
	TimelineType      uint8     `json:"timeline_type" yaml:"timeline_type"`
	LumaKey           bool      `json:"luma_key" yaml:"luma_key"`
	TrickPlay         bool      `json:"trick_play" yaml:"trick_play"`
	UpperLimitLumaKey uint8     `json:"upper_limit_luma_key,omitempty" yaml:"upper_limit_luma_key,omitempty"`
	Data              []PiPData `json:"data,omitempty" yaml:"data,omitempty"`
}

// PiPData positions and scales the secondary video from Time onwards.
type PiPData struct {
	Time  uint32 `json:"time" yaml:"time"`
	XPos  uint16 `json:"xpos" yaml:"xpos"`
	YPos  uint16 `json:"ypos" yaml:"ypos"`
	Scale uint8  `json:"scale" yaml:"scale"`
}
