package importer

import (
	"context"
	"errors"
)

// ErrDuplicate is returned by Host.AddNote when the collection already
// holds a note for the same key.
var ErrDuplicate = errors.New("importer: note already exists")

type (
	DeckID     int64
	NoteTypeID int64
	NoteID     int64
)

// NoteType describes a note type: its ordered fields and card markup.
type NoteType struct {
	Name   string
	Fields []string
	Front  string
	Back   string
	CSS    string
}

// Note is a note to be created. Key is the normalized word and is what
// duplicate detection matches on.
type Note struct {
	NoteType NoteTypeID
	Key      string
	Fields   map[string]string
	Tags     []string
}

// NoteQuery selects notes by exact key. Zero Deck or NoteType match any.
type NoteQuery struct {
	Deck     DeckID
	NoteType NoteTypeID
	Key      string
}

// Host is the flashcard collection the pipeline writes into.
type Host interface {
	// EnsureDeck returns the deck with the given name, creating it if needed.
	EnsureDeck(ctx context.Context, name string) (DeckID, error)
	// EnsureNoteType returns the note type with nt.Name, creating it if needed.
	EnsureNoteType(ctx context.Context, nt NoteType) (NoteTypeID, error)
	FindNotes(ctx context.Context, q NoteQuery) ([]NoteID, error)
	// AddNote queues a note; it returns ErrDuplicate for known keys.
	AddNote(ctx context.Context, n Note, deck DeckID) error
	// Save commits everything added since the last Save.
	Save(ctx context.Context) error
}
