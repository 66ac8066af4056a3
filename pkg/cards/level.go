// Package cards renders dictionary records into flashcard fields at a
// chosen level of detail.
package cards

import (
	"errors"
	"fmt"
	"strings"
)

// Level selects how much of a record ends up on a card.
type Level int

const (
	LevelBasic Level = iota
	LevelIntermediate
	LevelFull
)

// ErrUnknownLevel is returned by ParseLevel for unrecognized names.
var ErrUnknownLevel = errors.New("cards: unknown level")

// Levels lists every level from least to most detailed.
var Levels = []Level{LevelBasic, LevelIntermediate, LevelFull}

// ParseLevel accepts "basic", "intermediate" or "full", case-insensitively.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "basic":
		return LevelBasic, nil
	case "intermediate":
		return LevelIntermediate, nil
	case "full":
		return LevelFull, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownLevel, s)
}

func (l Level) String() string {
	switch l {
	case LevelBasic:
		return "basic"
	case LevelIntermediate:
		return "intermediate"
	case LevelFull:
		return "full"
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

var (
	basicFields = []string{
		"Word", "Language", "DefinitionList", "HasDefinitions",
	}
	intermediateFields = append(append([]string{}, basicFields...),
		"PartOfSpeech", "HasPartOfSpeech",
		"Synonyms", "HasSynonyms",
		"Pronunciation", "HasPronunciation",
		"Examples", "HasExamples",
	)
	fullFields = append(append([]string{}, intermediateFields...),
		"Etymology", "HasEtymology",
		"DerivedTerms", "HasDerivedTerms",
		"AllExamples", "AllSynonyms",
		"Categories", "HasCategories",
	)
)

// FieldNames returns the ordered note fields for a level. Word comes first
// so it serves as the note's sort field.
func (l Level) FieldNames() []string {
	switch l {
	case LevelBasic:
		return append([]string{}, basicFields...)
	case LevelIntermediate:
		return append([]string{}, intermediateFields...)
	case LevelFull:
		return append([]string{}, fullFields...)
	}
	panic(fmt.Sprintf("cards: unknown level %d", int(l)))
}

// NoteTypeName is the host note type used for cards of this level.
func (l Level) NoteTypeName() string {
	return "KoboAnki " + strings.ToUpper(l.String()[:1]) + l.String()[1:]
}
