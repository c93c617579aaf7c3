package streamattr

import "fmt"

// CodingType is the stream coding type tag.
type CodingType uint8

const (
	MPEG1Video CodingType = 0x01
	MPEG2Video CodingType = 0x02
	H264       CodingType = 0x1b
	MVC        CodingType = 0x20
	HEVC       CodingType = 0x24
	VC1        CodingType = 0xea

	MPEG1Audio       CodingType = 0x03
	MPEG2Audio       CodingType = 0x04
	LPCM             CodingType = 0x80
	AC3              CodingType = 0x81
	DTS              CodingType = 0x82
	TrueHD           CodingType = 0x83
	AC3Plus          CodingType = 0x84
	DTSHD            CodingType = 0x85
	DTSHDMaster      CodingType = 0x86
	AC3PlusSecondary CodingType = 0xa1
	DTSHDSecondary   CodingType = 0xa2

	PresentationGraphics CodingType = 0x90
	InteractiveGraphics  CodingType = 0x91
	TextSubtitle         CodingType = 0x92
)

// Kind groups coding types by attribute layout.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindVideo
	KindAudio
	KindGraphics
	KindText
)

var codingInfo = map[CodingType]struct {
	kind Kind
	name string
}{
	MPEG1Video:           {KindVideo, "MPEG-1 Video"},
	MPEG2Video:           {KindVideo, "MPEG-2 Video"},
	H264:                 {KindVideo, "H.264/AVC"},
	MVC:                  {KindVideo, "H.264/MVC"},
	HEVC:                 {KindVideo, "H.265/HEVC"},
	VC1:                  {KindVideo, "VC-1"},
	MPEG1Audio:           {KindAudio, "MPEG-1 Audio"},
	MPEG2Audio:           {KindAudio, "MPEG-2 Audio"},
	LPCM:                 {KindAudio, "LPCM"},
	AC3:                  {KindAudio, "AC-3"},
	DTS:                  {KindAudio, "DTS"},
	TrueHD:               {KindAudio, "TrueHD"},
	AC3Plus:              {KindAudio, "AC-3 Plus"},
	DTSHD:                {KindAudio, "DTS-HD"},
	DTSHDMaster:          {KindAudio, "DTS-HD Master"},
	AC3PlusSecondary:     {KindAudio, "AC-3 Plus (secondary)"},
	DTSHDSecondary:       {KindAudio, "DTS-HD (secondary)"},
	PresentationGraphics: {KindGraphics, "Presentation Graphics"},
	InteractiveGraphics:  {KindGraphics, "Interactive Graphics"},
	TextSubtitle:         {KindText, "Text Subtitle"},
}

// Kind reports the attribute layout for c.
func (c CodingType) Kind() Kind {
	return codingInfo[c].kind
}

func (c CodingType) String() string {
	if info, ok := codingInfo[c]; ok {
		return info.name
	}
	return fmt.Sprintf("unknown(0x%02x)", uint8(c))
}

func (k Kind) String() string {
	switch k {
	case KindVideo:
		return "video"
	case KindAudio:
		return "audio"
	case KindGraphics:
		return "graphics"
	case KindText:
		return "text"
	default:
		return "unknown"
	}
}

// VideoFormat is the 4-bit video format field.
type VideoFormat uint8

const (
	VF480I  VideoFormat = 1
	VF576I  VideoFormat = 2
	VF480P  VideoFormat = 3
	VF1080I VideoFormat = 4
	VF720P  VideoFormat = 5
	VF1080P VideoFormat = 6
	VF576P  VideoFormat = 7
	VF2160P VideoFormat = 8
)

func (f VideoFormat) String() string {
	return lookup(f, map[VideoFormat]string{
		VF480I: "480i", VF576I: "576i", VF480P: "480p", VF1080I: "1080i",
		VF720P: "720p", VF1080P: "1080p", VF576P: "576p", VF2160P: "2160p",
	})
}

// FrameRate is the 4-bit video frame rate field.
type FrameRate uint8

const (
	FR23976 FrameRate = 1
	FR24    FrameRate = 2
	FR25    FrameRate = 3
	FR2997  FrameRate = 4
	FR50    FrameRate = 6
	FR5994  FrameRate = 7
)

func (r FrameRate) String() string {
	return lookup(r, map[FrameRate]string{
		FR23976: "23.976", FR24: "24", FR25: "25", FR2997: "29.97", FR50: "50", FR5994: "59.94",
	})
}

// AspectRatio is the 4-bit aspect field carried by clip program streams.
type AspectRatio uint8

const (
	AR43  AspectRatio = 2
	AR169 AspectRatio = 3
)

func (a AspectRatio) String() string {
	return lookup(a, map[AspectRatio]string{AR43: "4:3", AR169: "16:9"})
}

// AudioFormat is the 4-bit audio presentation type.
type AudioFormat uint8

const (
	AFMono     AudioFormat = 1
	AFDualMono AudioFormat = 2
	AFStereo   AudioFormat = 3
	AFMulti    AudioFormat = 6
	AFCombo    AudioFormat = 12
)

func (f AudioFormat) String() string {
	return lookup(f, map[AudioFormat]string{
		AFMono: "mono", AFDualMono: "dual mono", AFStereo: "stereo", AFMulti: "multichannel", AFCombo: "stereo+multichannel",
	})
}

// SampleRate is the 4-bit audio sampling rate field.
type SampleRate uint8

const (
	SR48       SampleRate = 1
	SR96       SampleRate = 4
	SR192      SampleRate = 5
	SR48And192 SampleRate = 12
	SR48And96  SampleRate = 14
)

func (s SampleRate) String() string {
	return lookup(s, map[SampleRate]string{
		SR48: "48kHz", SR96: "96kHz", SR192: "192kHz", SR48And192: "48/192kHz", SR48And96: "48/96kHz",
	})
}

// CharCode is the text subtitle character encoding.
type CharCode uint8

const (
	UTF8     CharCode = 1
	UTF16BE  CharCode = 2
	ShiftJIS CharCode = 3
	EUCKR    CharCode = 4
	GB18030  CharCode = 5
	GB2312   CharCode = 6
	Big5     CharCode = 7
)

func (c CharCode) String() string {
	return lookup(c, map[CharCode]string{
		UTF8: "UTF-8", UTF16BE: "UTF-16BE", ShiftJIS: "Shift-JIS", EUCKR: "EUC-KR",
		GB18030: "GB18030", GB2312: "GB2312", Big5: "Big5",
	})
}

func lookup[T ~uint8](v T, names map[T]string) string {
	if name, ok := names[v]; ok {
		return name
	}
	return fmt.Sprintf("reserved(%d)", uint8(v))
}
