// Package lemma reduces inflected Japanese words to dictionary forms so a
// conjugated surface form saved on the device can still be looked up.
package lemma

import (
	"strings"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
)

// Token is one morpheme of an analyzed word.
type Token struct {
	Surface  string // as written, e.g. "食べ"
	BaseForm string // dictionary form, e.g. "食べる"
	Reading  string // katakana reading
	// PrimaryPOS is the first IPA part-of-speech label.
	PrimaryPOS string
}

// Analyzer wraps a kagome tokenizer loaded with the IPA dictionary.
// It is safe for concurrent use.
type Analyzer struct {
	t *tokenizer.Tokenizer
}

// NewAnalyzer loads the IPA dictionary and builds a tokenizer.
func NewAnalyzer() (*Analyzer, error) {
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, err
	}
	return &Analyzer{t: t}, nil
}

// Analyze splits word into morphemes.
func (a *Analyzer) Analyze(word string) []Token {
	var out []Token
	for _, tok := range a.t.Tokenize(word) {
		if tok.Class == tokenizer.DUMMY || strings.TrimSpace(tok.Surface) == "" {
			continue
		}
		// IPA features: POS, three sub-POS levels, conjugation type and
		// form, base form, reading, pronunciation.
		features := tok.Features()
		t := Token{Surface: tok.Surface, BaseForm: tok.Surface}
		if len(features) > 0 {
			t.PrimaryPOS = features[0]
		}
		if len(features) > 6 && features[6] != "*" {
			t.BaseForm = features[6]
		}
		if len(features) > 7 && features[7] != "*" {
			t.Reading = features[7]
		}
		out = append(out, t)
	}
	return out
}

// functionPOS lists part-of-speech labels that never carry the meaning of
// a saved word.
var functionPOS = map[string]bool{
	"助詞":   true, // particle
	"助動詞":  true, // auxiliary verb
	"記号":   true, // symbol
	"フィラー": true,
}

// BaseForms returns the distinct dictionary forms of the content morphemes
// of word, excluding word itself. When analysis yields a single content
// morpheme its base form is the best lookup candidate.
func (a *Analyzer) BaseForms(word string) []string {
	var out []string
	seen := map[string]bool{word: true}
	for _, t := range a.Analyze(word) {
		if functionPOS[t.PrimaryPOS] || seen[t.BaseForm] {
			continue
		}
		seen[t.BaseForm] = true
		out = append(out, t.BaseForm)
	}
	return out
}
