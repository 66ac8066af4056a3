package cards

import (
	"errors"
	"regexp"
	"slices"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"basic", LevelBasic},
		{"Intermediate", LevelIntermediate},
		{" FULL ", LevelFull},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
		if got.String() != strings.ToLower(strings.TrimSpace(tt.in)) {
			t.Errorf("String() = %q", got.String())
		}
	}
	if _, err := ParseLevel("expert"); !errors.Is(err, ErrUnknownLevel) {
		t.Errorf("expected ErrUnknownLevel, got %v", err)
	}
}

func TestFieldNamesAreSupersets(t *testing.T) {
	prev := []string{}
	for _, l := range Levels {
		names := l.FieldNames()
		if names[0] != "Word" {
			t.Errorf("%s: Word must be the sort field, got %q", l, names[0])
		}
		for _, p := range prev {
			if !slices.Contains(names, p) {
				t.Errorf("%s lacks %s from the previous level", l, p)
			}
		}
		prev = names
	}
}

// mustacheTag matches {{Field}}, {{#Field}}, {{/Field}} and {{^Field}}.
var mustacheTag = regexp.MustCompile(`\{\{[#/^]?([A-Za-z]+)\}\}`)

func TestTemplatesReferenceKnownFields(t *testing.T) {
	for _, l := range Levels {
		tmpl, err := l.Template()
		if err != nil {
			t.Fatalf("%s: %v", l, err)
		}
		if tmpl.Front == "" || tmpl.Back == "" || tmpl.CSS == "" {
			t.Fatalf("%s: incomplete template %+v", l, tmpl)
		}
		if tmpl.Name != l.NoteTypeName() {
			t.Errorf("%s: template name %q", l, tmpl.Name)
		}
		names := l.FieldNames()
		for _, m := range mustacheTag.FindAllStringSubmatch(tmpl.Front+tmpl.Back, -1) {
			if m[1] == "FrontSide" {
				continue
			}
			if !slices.Contains(names, m[1]) {
				t.Errorf("%s template references unknown field %s", l, m[1])
			}
		}
	}
}

func TestNoteTypeName(t *testing.T) {
	if got := LevelIntermediate.NoteTypeName(); got != "KoboAnki Intermediate" {
		t.Errorf("NoteTypeName = %q", got)
	}
}
