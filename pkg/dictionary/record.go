package dictionary

import "strings"

// WordData is a parsed dictionary entry for one word in one language.
// Values are built once per lookup and shared read-only through the cache.
type WordData struct {
	Word          string
	Language      string
	PartOfSpeech  string
	EtymologyText string
	Senses        []Sense
	Synonyms      []Term
	Hyponyms      []Term
	Derived       []Term
	Forms         []Form
	Sounds        []Sound
	Translations  []Translation
	Categories    []string
}

// Sense is one meaning of a word. Only senses with at least one non-empty
// gloss are kept.
type Sense struct {
	Glosses    []string
	RawGlosses []string
	Examples   []Example
	Categories []string
	Tags       []string
	Links      [][]string
}

// Example is a usage example or quotation attached to a sense.
type Example struct {
	Text      string
	Reference string
	Type      string // "example" or "quote"
}

// Term is a related word such as a synonym or derived term.
type Term struct {
	Word  string
	Tags  []string
	Sense string
}

// Sound is a pronunciation entry.
type Sound struct {
	IPA   string
	EnPR  string
	Audio string
	Tags  []string
}

// Form is an inflected or alternative form.
type Form struct {
	Form string
	Tags []string
}

// Translation of the word into another language.
type Translation struct {
	Language string
	Code     string
	Word     string
	Sense    string
}

// PrimaryDefinition returns the first gloss of the first sense.
func (w *WordData) PrimaryDefinition() string {
	if len(w.Senses) == 0 || len(w.Senses[0].Glosses) == 0 {
		return ""
	}
	return w.Senses[0].Glosses[0]
}

// AllDefinitions returns every gloss across all senses in order.
func (w *WordData) AllDefinitions() []string {
	var out []string
	for _, s := range w.Senses {
		out = append(out, s.Glosses...)
	}
	return out
}

// SimpleDefinition joins the distinct glosses with "; ".
func (w *WordData) SimpleDefinition() string {
	seen := make(map[string]bool)
	var uniq []string
	for _, g := range w.AllDefinitions() {
		if seen[g] {
			continue
		}
		seen[g] = true
		uniq = append(uniq, g)
	}
	return strings.Join(uniq, "; ")
}

// HasExamples reports whether any sense carries an example.
func (w *WordData) HasExamples() bool {
	for _, s := range w.Senses {
		if len(s.Examples) > 0 {
			return true
		}
	}
	return false
}
