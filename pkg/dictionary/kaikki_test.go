package dictionary

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestParseJSONLFields(t *testing.T) {
	line := `{"word":"bank","pos":"noun","etymology_text":"From Old Italian banca.",` +
		`"categories":["English nouns",{"name":"Finance","kind":"topical"}],` +
		`"senses":[{"glosses":["an institution"],"raw_glosses":["(finance) an institution"],` +
		`"tags":["countable"],"categories":[{"name":"Banking"}],"links":[["institution","institution#English"]],` +
		`"examples":[{"text":"I went to the bank.","ref":"Anon","type":"example"},{"text":"  "}]}],` +
		`"synonyms":[{"word":"depository","tags":["formal"]},{"word":""}],` +
		`"derived":[{"word":"bankbook"}],"hyponyms":[{"word":"savings bank"}],` +
		`"forms":[{"form":"banks","tags":["plural"]}],` +
		`"sounds":[{"ipa":"/bæŋk/","tags":["UK"]},{"mp3_url":"https://x/bank.mp3"},{"rhymes":"-æŋk"}],` +
		`"translations":[{"lang":"German","code":"de","word":"Bank","sense":"institution"},{"lang":"French","code":"fr"}]}`

	rec, err := parseJSONL(strings.NewReader(line), "bank", "en")
	if err != nil {
		t.Fatal(err)
	}
	want := &WordData{
		Word:          "bank",
		Language:      "en",
		PartOfSpeech:  "noun",
		EtymologyText: "From Old Italian banca.",
		Categories:    []string{"English nouns", "Finance"},
		Senses: []Sense{{
			Glosses:    []string{"an institution"},
			RawGlosses: []string{"(finance) an institution"},
			Tags:       []string{"countable"},
			Categories: []string{"Banking"},
			Links:      [][]string{{"institution", "institution#English"}},
			Examples:   []Example{{Text: "I went to the bank.", Reference: "Anon", Type: "example"}},
		}},
		Synonyms:     []Term{{Word: "depository", Tags: []string{"formal"}}},
		Derived:      []Term{{Word: "bankbook"}},
		Hyponyms:     []Term{{Word: "savings bank"}},
		Forms:        []Form{{Form: "banks", Tags: []string{"plural"}}},
		Sounds:       []Sound{{IPA: "/bæŋk/", Tags: []string{"UK"}}, {Audio: "https://x/bank.mp3"}},
		Translations: []Translation{{Language: "German", Code: "de", Word: "Bank", Sense: "institution"}},
	}
	if diff := cmp.Diff(want, rec); diff != "" {
		t.Errorf("parse mismatch (-want +got):\n%s", diff)
	}
}

func TestParseJSONLEmpty(t *testing.T) {
	for _, body := range []string{"", "\n\n", "{broken\n", `{"word":"x"}`} {
		rec, err := parseJSONL(strings.NewReader(body), "x", "en")
		if err != nil {
			t.Fatalf("body %q: %v", body, err)
		}
		if rec != nil {
			t.Errorf("body %q: expected nil record, got %+v", body, rec)
		}
	}
}

func TestParseJSONLToleratesMistypedFields(t *testing.T) {
	tests := []struct {
		name string
		line string
		want *WordData
	}{
		{
			name: "string tags on synonym",
			line: `{"pos":"noun","senses":[{"glosses":["a round fruit"]}],"synonyms":[{"word":"pome","tags":"rare"}]}`,
			want: &WordData{
				Word:         "apple",
				Language:     "en",
				PartOfSpeech: "noun",
				Senses:       []Sense{{Glosses: []string{"a round fruit"}}},
				Synonyms:     []Term{{Word: "pome"}},
			},
		},
		{
			name: "categories object and numeric etymology",
			line: `{"etymology_text":42,"categories":{"name":"Fruits"},"senses":[{"glosses":["a round fruit"],"categories":[7,"Pomes"]}]}`,
			want: &WordData{
				Word:     "apple",
				Language: "en",
				Senses:   []Sense{{Glosses: []string{"a round fruit"}, Categories: []string{"Pomes"}}},
			},
		},
		{
			name: "senses of the wrong type",
			line: `{"pos":"noun","senses":{"glosses":["a round fruit"]}}`,
			want: nil,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec, err := parseJSONL(strings.NewReader(tc.line), "apple", "en")
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tc.want, rec, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("parse mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSimpleDefinitionDeduplicates(t *testing.T) {
	rec := &WordData{Senses: []Sense{
		{Glosses: []string{"a fruit", "a tree"}},
		{Glosses: []string{"a fruit"}},
	}}
	if got := rec.SimpleDefinition(); got != "a fruit; a tree" {
		t.Errorf("SimpleDefinition = %q", got)
	}
	if got := rec.AllDefinitions(); len(got) != 3 {
		t.Errorf("AllDefinitions = %v", got)
	}
	if rec.HasExamples() {
		t.Errorf("HasExamples should be false")
	}
	if got := (&WordData{}).PrimaryDefinition(); got != "" {
		t.Errorf("PrimaryDefinition on empty = %q", got)
	}
}

func TestLanguageName(t *testing.T) {
	if name, ok := LanguageName("DE"); !ok || name != "German" {
		t.Errorf("LanguageName(DE) = %q, %v", name, ok)
	}
	if _, ok := LanguageName("en-US"); ok {
		t.Errorf("regional variants are resolved by the caller")
	}
	if Supported("xx") {
		t.Errorf("xx should be unsupported")
	}
}
