package model

import "strings"

// TargetLanguage is the language the notice is explained in, as an
// ISO-639-1 code plus an English display name used in prompts.
type TargetLanguage struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Languages the service can explain notices in. Korea's multicultural
// family support centers publish materials in roughly this set.
var supportedLanguages = map[string]string{
	"en": "English",
	"zh": "Chinese",
	"vi": "Vietnamese",
	"ja": "Japanese",
	"th": "Thai",
	"tl": "Filipino",
	"km": "Khmer",
	"mn": "Mongolian",
	"ru": "Russian",
	"uz": "Uzbek",
	"ne": "Nepali",
	"id": "Indonesian",
	"ko": "Korean",
}

// ResolveLanguage maps an ISO-639-1 code to a TargetLanguage. Unknown or
// empty codes fall back to English.
func ResolveLanguage(code string) TargetLanguage {
	code = strings.ToLower(strings.TrimSpace(code))
	if name, ok := supportedLanguages[code]; ok {
		return TargetLanguage{Code: code, Name: name}
	}
	return TargetLanguage{Code: "en", Name: "English"}
}
