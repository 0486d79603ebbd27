package order

import (
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"orderflow/internal/pkg/errs"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/unicode/norm"
)

const (
	// MaxNoteLines and MaxNoteLineLength bound the operator note printed on shipping labels.
	MaxNoteLines      = 2
	MaxNoteLineLength = 20

	// MaxCancelNoteLength bounds the free-text reason stored with a cancellation.
	MaxCancelNoteLength = 500
)

var notePolicy = bluemonday.StrictPolicy()

// NewOrderNote normalizes an operator note to NFC and checks that it fits the label:
// at most MaxNoteLines lines of at most MaxNoteLineLength characters each.
// An empty or blank note yields "" with no error.
func NewOrderNote(raw string) (string, error) {
	note := strings.TrimSpace(norm.NFC.String(strings.ReplaceAll(raw, "\r\n", "\n")))
	if note == "" {
		return "", nil
	}

	lines := strings.Split(note, "\n")
	if len(lines) > MaxNoteLines {
		return "", errs.NewValueIsOutOfRangeError("orderNote lines", len(lines), 1, MaxNoteLines)
	}
	for i, line := range lines {
		line = strings.TrimRight(line, " \t")
		if n := utf8.RuneCountInString(line); n > MaxNoteLineLength {
			return "", errs.NewValueIsInvalidErrorWithCause("orderNote",
				fmt.Errorf("line %d has %d characters, max is %d", i+1, n, MaxNoteLineLength))
		}
		lines[i] = line
	}

	return strings.Join(lines, "\n"), nil
}

// NewCancelNote strips markup from a cancellation reason and bounds its length.
func NewCancelNote(raw string) (string, error) {
	note := strings.TrimSpace(norm.NFC.String(html.UnescapeString(notePolicy.Sanitize(raw))))
	if n := utf8.RuneCountInString(note); n > MaxCancelNoteLength {
		return "", errs.NewValueIsOutOfRangeError("cancelledNote length", n, 0, MaxCancelNoteLength)
	}
	return note, nil
}
