package importer

import (
	"fmt"
	"strings"

	"github.com/awesmubarak/koboanki/pkg/resolve"
)

// Per-word failure reasons reported in a Summary.
const (
	ReasonHostWrite = "host_write"
	ReasonAborted   = string(resolve.ReasonAborted)
)

// FailedWord is a word that produced no card.
type FailedWord struct {
	Word     string
	Language string
	Reason   string
}

// Summary reports the outcome of one import run.
type Summary struct {
	Candidates int
	Added      []string
	// Skipped lists words already present in the collection.
	Skipped []string
	// Ignored lists blacklisted words.
	Ignored []string
	Failed  []FailedWord
	// Aborted is set when the run was cancelled before every word was tried.
	Aborted bool
}

// String renders the summary as the single message shown to the user.
func (s *Summary) String() string {
	var b strings.Builder
	if s.Aborted {
		b.WriteString("Import aborted; results are partial.\n")
	}
	fmt.Fprintf(&b, "Found %d words on the device.\n", s.Candidates)
	fmt.Fprintf(&b, "Added %d: %s\n", len(s.Added), list(s.Added))
	fmt.Fprintf(&b, "Skipped %d (already in collection): %s\n", len(s.Skipped), list(s.Skipped))
	if len(s.Ignored) > 0 {
		fmt.Fprintf(&b, "Ignored %d (blacklisted): %s\n", len(s.Ignored), list(s.Ignored))
	}

	failed := make([]string, len(s.Failed))
	for i, f := range s.Failed {
		failed[i] = fmt.Sprintf("%s [%s] (%s)", f.Word, f.Language, f.Reason)
	}
	fmt.Fprintf(&b, "Failed %d: %s", len(s.Failed), list(failed))
	return b.String()
}

func list(words []string) string {
	if len(words) == 0 {
		return "none"
	}
	return strings.Join(words, ", ")
}
