package dictionary

import "strings"

// languageNames maps language codes to the names used in the Kaikki URL
// layout.
var languageNames = map[string]string{
	"en": "English",
	"de": "German",
	"fr": "French",
	"es": "Spanish",
	"it": "Italian",
	"nl": "Dutch",
	"pt": "Portuguese",
	"ja": "Japanese",
}

// LanguageName returns the Kaikki name for a language code. Codes are
// matched case-insensitively; regional variants are not mapped here.
func LanguageName(code string) (string, bool) {
	name, ok := languageNames[strings.ToLower(code)]
	return name, ok
}

// Supported reports whether code can be looked up.
func Supported(code string) bool {
	_, ok := LanguageName(code)
	return ok
}
