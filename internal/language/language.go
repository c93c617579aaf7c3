package language

import (
	"strings"

	xlanguage "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

type entry struct {
	code3   string // ISO 639-2/T
	alt3    string // ISO 639-2/B when it differs
	display string
}

// Languages that show up on retail discs. x/text knows them too, but its
// names for a few (e.g. "Norwegian Bokmål" for "nob") differ from what disc
// menus print.
var common = []entry{
	{"eng", "", "English"},
	{"spa", "", "Spanish"},
	{"fra", "fre", "French"},
	{"deu", "ger", "German"},
	{"ita", "", "Italian"},
	{"por", "", "Portuguese"},
	{"jpn", "", "Japanese"},
	{"kor", "", "Korean"},
	{"zho", "chi", "Chinese"},
	{"rus", "", "Russian"},
	{"ara", "", "Arabic"},
	{"hin", "", "Hindi"},
	{"nld", "dut", "Dutch"},
	{"pol", "", "Polish"},
	{"swe", "", "Swedish"},
	{"dan", "", "Danish"},
	{"nor", "", "Norwegian"},
	{"nob", "", "Norwegian"},
	{"fin", "", "Finnish"},
	{"ell", "gre", "Greek"},
	{"ces", "cze", "Czech"},
	{"hun", "", "Hungarian"},
	{"tha", "", "Thai"},
	{"tur", "", "Turkish"},
	{"heb", "", "Hebrew"},
}

var byCode = func() map[string]*entry {
	m := make(map[string]*entry, len(common)*2)
	for i := range common {
		e := &common[i]
		m[e.code3] = e
		if e.alt3 != "" {
			m[e.alt3] = e
		}
	}
	return m
}()

// Normalize lowercases code and strips the NUL or space padding stream
// entries use for missing languages.
func Normalize(code string) string {
	return strings.ToLower(strings.Trim(code, " \t\x00"))
}

// DisplayName returns a human-readable name for an ISO 639-2 code. Empty and
// "und" codes read "Unknown"; codes nobody knows are returned uppercased.
func DisplayName(code string) string {
	code = Normalize(code)
	if code == "" || code == "und" {
		return "Unknown"
	}
	if e, ok := byCode[code]; ok {
		return e.display
	}
	if base, err := xlanguage.ParseBase(code); err == nil {
		if name := display.English.Languages().Name(base); name != "" {
			return name
		}
	}
	return strings.ToUpper(code)
}

// Label renders a stream language as "French (fra)", keeping the code as
// written on disc. It returns "" when the entry carries no language.
func Label(code string) string {
	trimmed := strings.Trim(code, " \t\x00")
	if trimmed == "" {
		return ""
	}
	return DisplayName(trimmed) + " (" + trimmed + ")"
}
