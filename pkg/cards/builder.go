package cards

import (
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/awesmubarak/koboanki/pkg/dictionary"
)

// Fields maps note field names to rendered, HTML-escaped text.
type Fields map[string]string

// Content limits per level.
const (
	basicSenses = 3

	intermediateSenses       = 4
	intermediateGlosses      = 2
	intermediateTags         = 2
	intermediateExampleRunes = 120
	keySynonyms              = 3

	fullTags            = 3
	fullSenseCategories = 2
	examplesPerSense    = 2
	maxExamples         = 8
	exampleRunes        = 150
	referenceRunes      = 30
	etymologyRunes      = 200
	maxSynonyms         = 8
	synonymTags         = 2
	maxDerived          = 10
	maxCategories       = 5
)

// EmptyFields returns the fields for a word without a dictionary record:
// Word and Language set, everything else empty.
func EmptyFields(word, lang string, level Level) Fields {
	f := make(Fields, len(level.FieldNames()))
	for _, name := range level.FieldNames() {
		f[name] = ""
	}
	f["Word"] = escape(word)
	f["Language"] = escape(lang)
	return f
}

// Build renders rec at level. Every field of the level is present in the
// result. Build is deterministic and does not modify rec.
func Build(rec *dictionary.WordData, level Level) Fields {
	f := EmptyFields(rec.Word, rec.Language, level)

	switch level {
	case LevelBasic:
		f["DefinitionList"] = simpleDefinitions(rec)
	case LevelIntermediate:
		buildIntermediate(f, rec)
	case LevelFull:
		buildIntermediate(f, rec)
		f["DefinitionList"] = comprehensiveDefinitions(rec)
		f["Etymology"] = truncate(rec.EtymologyText, etymologyRunes)
		f["DerivedTerms"] = derivedTerms(rec)
		f["AllExamples"] = allExamples(rec)
		f["Examples"] = f["AllExamples"]
		f["AllSynonyms"] = allSynonyms(rec)
		f["Synonyms"] = f["AllSynonyms"]
		f["Categories"] = categories(rec)
	default:
		panic(fmt.Sprintf("cards: unknown level %d", int(level)))
	}

	setFlags(f)
	return f
}

func buildIntermediate(f Fields, rec *dictionary.WordData) {
	f["PartOfSpeech"] = escape(rec.PartOfSpeech)
	f["DefinitionList"] = detailedDefinitions(rec)
	f["Synonyms"] = keySynonymList(rec)
	f["Pronunciation"] = primaryPronunciation(rec)
}

// flagFor pairs each Has* flag with the field it describes.
var flagFor = map[string]string{
	"HasDefinitions":   "DefinitionList",
	"HasPartOfSpeech":  "PartOfSpeech",
	"HasSynonyms":      "Synonyms",
	"HasPronunciation": "Pronunciation",
	"HasExamples":      "Examples",
	"HasEtymology":     "Etymology",
	"HasDerivedTerms":  "DerivedTerms",
	"HasCategories":    "Categories",
}

// setFlags sets each flag present in f to "1" exactly when its content
// field is non-empty.
func setFlags(f Fields) {
	for flag, field := range flagFor {
		if _, ok := f[flag]; !ok {
			continue
		}
		if f[field] != "" {
			f[flag] = "1"
		} else {
			f[flag] = ""
		}
	}
}

func simpleDefinitions(rec *dictionary.WordData) string {
	var b strings.Builder
	for _, s := range head(rec.Senses, basicSenses) {
		if len(s.Glosses) == 0 {
			continue
		}
		b.WriteString("<li>" + escape(s.Glosses[0]) + "</li>")
	}
	return b.String()
}

func detailedDefinitions(rec *dictionary.WordData) string {
	var b strings.Builder
	for _, s := range head(rec.Senses, intermediateSenses) {
		if len(s.Glosses) == 0 {
			continue
		}
		b.WriteString("<li>")
		b.WriteString(escape(strings.Join(head(s.Glosses, intermediateGlosses), "; ")))
		writeContext(&b, head(s.Tags, intermediateTags))
		if len(s.Examples) > 0 {
			b.WriteString(`<div class="example-inline">&quot;` + truncate(s.Examples[0].Text, intermediateExampleRunes) + `&quot;</div>`)
		}
		b.WriteString("</li>")
	}
	return b.String()
}

func comprehensiveDefinitions(rec *dictionary.WordData) string {
	var b strings.Builder
	for _, s := range rec.Senses {
		if len(s.Glosses) == 0 {
			continue
		}
		b.WriteString("<li>")
		b.WriteString(escape(strings.Join(s.Glosses, "; ")))
		labels := append(append([]string{}, head(s.Tags, fullTags)...), head(s.Categories, fullSenseCategories)...)
		writeContext(&b, labels)
		b.WriteString("</li>")
	}
	return b.String()
}

func writeContext(b *strings.Builder, labels []string) {
	if len(labels) == 0 {
		return
	}
	b.WriteString(" <em>(" + escape(strings.Join(labels, ", ")) + ")</em>")
}

func allExamples(rec *dictionary.WordData) string {
	var out []string
	for _, s := range rec.Senses {
		for _, ex := range head(s.Examples, examplesPerSense) {
			if len(out) == maxExamples {
				return strings.Join(out, "<br><br>")
			}
			item := "&quot;" + truncate(ex.Text, exampleRunes) + "&quot;"
			if ex.Reference != "" {
				item += " <small>—" + truncate(ex.Reference, referenceRunes) + "</small>"
			}
			out = append(out, item)
		}
	}
	return strings.Join(out, "<br><br>")
}

func keySynonymList(rec *dictionary.WordData) string {
	var out []string
	for _, syn := range head(rec.Synonyms, keySynonyms) {
		if syn.Word == "" {
			continue
		}
		out = append(out, `<span class="synonym-item">`+escape(syn.Word)+`</span>`)
	}
	return strings.Join(out, " • ")
}

func allSynonyms(rec *dictionary.WordData) string {
	var b strings.Builder
	for _, syn := range head(rec.Synonyms, maxSynonyms) {
		if syn.Word == "" {
			continue
		}
		b.WriteString("<li>" + escape(syn.Word))
		if tags := head(syn.Tags, synonymTags); len(tags) > 0 {
			b.WriteString(` <span class="sense">(` + escape(strings.Join(tags, ", ")) + `)</span>`)
		}
		b.WriteString("</li>")
	}
	return b.String()
}

// primaryPronunciation renders the IPA of the first sound, wrapped in
// slashes unless it already carries delimiters. A first sound without IPA
// (audio only) yields no pronunciation.
func primaryPronunciation(rec *dictionary.WordData) string {
	if len(rec.Sounds) == 0 {
		return ""
	}
	ipa := strings.TrimSpace(rec.Sounds[0].IPA)
	if ipa == "" {
		return ""
	}
	if !strings.HasPrefix(ipa, "/") && !strings.HasPrefix(ipa, "[") {
		ipa = "/" + ipa + "/"
	}
	return escape(ipa)
}

func derivedTerms(rec *dictionary.WordData) string {
	var b strings.Builder
	for _, t := range head(rec.Derived, maxDerived) {
		if t.Word != "" {
			b.WriteString("<li>" + escape(t.Word) + "</li>")
		}
	}
	return b.String()
}

func categories(rec *dictionary.WordData) string {
	cats := head(rec.Categories, maxCategories)
	escaped := make([]string, len(cats))
	for i, c := range cats {
		escaped[i] = escape(c)
	}
	return strings.Join(escaped, ", ")
}

// truncate shortens s to n runes plus "..." and escapes the result.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) > n {
		s = string([]rune(s)[:n]) + "..."
	}
	return escape(s)
}

func escape(s string) string { return html.EscapeString(s) }

func head[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}
