// Package mention implements the @mention comment authoring model: an
// in-progress token detector, directory filtering, a keyboard-driven
// suggestion cursor, and resolution/rendering of committed mentions.
package mention

import (
	"strings"
	"unicode"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// Key identifies the keystrokes the suggestion list reacts to.
type Key int

const (
	KeyDown Key = iota
	KeyUp
	KeyEnter
	KeyTab
	KeyEscape
)

// Editor models comment text with a caret and an optional active
// suggestion. All indices are rune offsets.
type Editor struct {
	directory []domain.User

	text  []rune
	caret int

	active     bool
	tokenStart int // offset of the triggering '@'
	query      string
	candidates []domain.User
	highlight  int
}

// NewEditor builds an editor over a mentionable-user directory.
func NewEditor(directory []domain.User) *Editor {
	return &Editor{directory: directory}
}

// SetText replaces the editor content and caret, re-running trigger
// detection and candidate filtering. Call it on every edit.
func (e *Editor) SetText(text string, caret int) {
	e.text = []rune(text)
	if caret < 0 {
		caret = 0
	}
	if caret > len(e.text) {
		caret = len(e.text)
	}
	e.caret = caret
	e.detect()
}

// Text returns the current content.
func (e *Editor) Text() string { return string(e.text) }

// Caret returns the current caret offset in runes.
func (e *Editor) Caret() int { return e.caret }

// Suggesting reports whether the editor is in suggestion mode.
func (e *Editor) Suggesting() bool { return e.active }

// Query returns the text between the triggering '@' and the caret.
func (e *Editor) Query() string { return e.query }

// Candidates returns the filtered directory entries for the query.
func (e *Editor) Candidates() []domain.User { return e.candidates }

// Highlight returns the index of the highlighted candidate.
func (e *Editor) Highlight() int { return e.highlight }

// HandleKey applies a keystroke to the suggestion list. It returns true
// when the key was consumed (the caller should not insert it as text).
func (e *Editor) HandleKey(key Key) bool {
	if !e.active {
		return false
	}
	switch key {
	case KeyDown:
		if e.highlight < len(e.candidates)-1 {
			e.highlight++
		}
		return true
	case KeyUp:
		if e.highlight > 0 {
			e.highlight--
		}
		return true
	case KeyEnter, KeyTab:
		if len(e.candidates) == 0 {
			return false
		}
		e.commit(e.candidates[e.highlight])
		return true
	case KeyEscape:
		e.reset()
		return true
	}
	return false
}

// commit replaces the @query span with the chosen user's full display
// name and places the caret directly after it.
func (e *Editor) commit(user domain.User) {
	name := []rune(user.Name)
	var next []rune
	next = append(next, e.text[:e.tokenStart]...)
	next = append(next, '@')
	next = append(next, name...)
	next = append(next, e.text[e.caret:]...)
	e.text = next
	e.caret = e.tokenStart + 1 + len(name)
	e.reset()
}

// detect scans left from the caret for the nearest '@'. Suggestion mode
// is on when one is found with no whitespace between it and the caret.
func (e *Editor) detect() {
	at := -1
	for i := e.caret - 1; i >= 0; i-- {
		if e.text[i] == '@' {
			at = i
			break
		}
		if unicode.IsSpace(e.text[i]) {
			break
		}
	}
	if at == -1 {
		e.reset()
		return
	}

	e.active = true
	e.tokenStart = at
	e.query = string(e.text[at+1 : e.caret])
	e.candidates = Filter(e.directory, e.query)
	e.highlight = 0
}

func (e *Editor) reset() {
	e.active = false
	e.tokenStart = -1
	e.query = ""
	e.candidates = nil
	e.highlight = 0
}

// Filter returns directory users whose display name or email contains the
// query, case-insensitively. An empty query matches everyone.
func Filter(directory []domain.User, query string) []domain.User {
	query = strings.ToLower(query)
	var matched []domain.User
	for _, user := range directory {
		if strings.Contains(strings.ToLower(user.Name), query) ||
			strings.Contains(strings.ToLower(user.Email), query) {
			matched = append(matched, user)
		}
	}
	return matched
}
