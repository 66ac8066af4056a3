package dictionary

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// maxLineSize bounds a single JSONL record. Common words carry large
// translation tables, so lines can run to several megabytes.
const maxLineSize = 16 << 20

// kaikkiEntry mirrors the subset of a Kaikki JSONL record this package uses.
type kaikkiEntry struct {
	Pos           string              `json:"pos"`
	EtymologyText string              `json:"etymology_text"`
	Senses        []kaikkiSense       `json:"senses"`
	Synonyms      []kaikkiTerm        `json:"synonyms"`
	Hyponyms      []kaikkiTerm        `json:"hyponyms"`
	Derived       []kaikkiTerm        `json:"derived"`
	Forms         []kaikkiForm        `json:"forms"`
	Sounds        []kaikkiSound       `json:"sounds"`
	Translations  []kaikkiTranslation `json:"translations"`
	Categories    nameList            `json:"categories"`
}

type kaikkiSense struct {
	Glosses    []string        `json:"glosses"`
	RawGlosses []string        `json:"raw_glosses"`
	Examples   []kaikkiExample `json:"examples"`
	Categories nameList        `json:"categories"`
	Tags       []string        `json:"tags"`
	Links      [][]string      `json:"links"`
}

type kaikkiExample struct {
	Text string `json:"text"`
	Ref  string `json:"ref"`
	Type string `json:"type"`
}

type kaikkiTerm struct {
	Word  string   `json:"word"`
	Tags  []string `json:"tags"`
	Sense string   `json:"sense"`
}

type kaikkiForm struct {
	Form string   `json:"form"`
	Tags []string `json:"tags"`
}

type kaikkiSound struct {
	IPA    string   `json:"ipa"`
	EnPR   string   `json:"enpr"`
	Audio  string   `json:"audio"`
	Mp3URL string   `json:"mp3_url"`
	OggURL string   `json:"ogg_url"`
	Tags   []string `json:"tags"`
}

type kaikkiTranslation struct {
	Lang  string `json:"lang"`
	Code  string `json:"code"`
	Word  string `json:"word"`
	Sense string `json:"sense"`
}

// nameList decodes category lists, which Kaikki emits either as plain
// strings or as objects with a "name" key. Items of any other shape are
// dropped.
type nameList []string

func (n *nameList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		*n = nil
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		var s string
		if err := json.Unmarshal(r, &s); err == nil {
			if s != "" {
				out = append(out, s)
			}
			continue
		}
		var obj struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(r, &obj); err != nil {
			continue
		}
		if obj.Name != "" {
			out = append(out, obj.Name)
		}
	}
	*n = out
	return nil
}

// parseJSONL scans a Kaikki response and converts the first record that
// has at least one usable sense. Malformed lines are skipped; a field of
// an unexpected type only loses that field. It returns nil when no line
// qualifies.
func parseJSONL(r io.Reader, word, lang string) (*WordData, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64<<10), maxLineSize)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		var entry kaikkiEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			// Unmarshal keeps filling the other fields after a type mismatch.
			var typeErr *json.UnmarshalTypeError
			if !errors.As(err, &typeErr) {
				continue
			}
		}
		if rec := toWordData(&entry, word, lang); rec != nil {
			return rec, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan jsonl: %w", err)
	}
	return nil, nil
}

// toWordData converts a raw entry. Senses without a non-empty gloss are
// dropped; an entry left with no senses yields nil.
func toWordData(e *kaikkiEntry, word, lang string) *WordData {
	senses := make([]Sense, 0, len(e.Senses))
	for _, s := range e.Senses {
		glosses := nonEmpty(s.Glosses)
		if len(glosses) == 0 {
			continue
		}
		sense := Sense{
			Glosses:    glosses,
			RawGlosses: nonEmpty(s.RawGlosses),
			Categories: []string(s.Categories),
			Tags:       s.Tags,
			Links:      s.Links,
		}
		for _, ex := range s.Examples {
			if strings.TrimSpace(ex.Text) == "" {
				continue
			}
			sense.Examples = append(sense.Examples, Example{Text: ex.Text, Reference: ex.Ref, Type: ex.Type})
		}
		senses = append(senses, sense)
	}
	if len(senses) == 0 {
		return nil
	}

	rec := &WordData{
		Word:          word,
		Language:      lang,
		PartOfSpeech:  e.Pos,
		EtymologyText: e.EtymologyText,
		Senses:        senses,
		Synonyms:      toTerms(e.Synonyms),
		Hyponyms:      toTerms(e.Hyponyms),
		Derived:       toTerms(e.Derived),
		Categories:    []string(e.Categories),
	}
	for _, f := range e.Forms {
		if f.Form != "" {
			rec.Forms = append(rec.Forms, Form{Form: f.Form, Tags: f.Tags})
		}
	}
	for _, s := range e.Sounds {
		audio := s.Mp3URL
		if audio == "" {
			audio = s.OggURL
		}
		if audio == "" {
			audio = s.Audio
		}
		if s.IPA == "" && s.EnPR == "" && audio == "" {
			continue
		}
		rec.Sounds = append(rec.Sounds, Sound{IPA: s.IPA, EnPR: s.EnPR, Audio: audio, Tags: s.Tags})
	}
	for _, t := range e.Translations {
		if t.Word != "" {
			rec.Translations = append(rec.Translations, Translation{Language: t.Lang, Code: t.Code, Word: t.Word, Sense: t.Sense})
		}
	}
	return rec
}

func toTerms(in []kaikkiTerm) []Term {
	var out []Term
	for _, t := range in {
		if t.Word == "" {
			continue
		}
		out = append(out, Term{Word: t.Word, Tags: t.Tags, Sense: t.Sense})
	}
	return out
}

func nonEmpty(in []string) []string {
	var out []string
	for _, s := range in {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}
