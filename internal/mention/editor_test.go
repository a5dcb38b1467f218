package mention

import (
	"testing"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

var directory = []domain.User{
	{ID: "u1", Name: "Jane Doe", Email: "jane@example.com"},
	{ID: "u2", Name: "Jan Lee", Email: "jan@example.com"},
	{ID: "u3", Name: "Bob Smith", Email: "bob@example.com"},
}

func TestSuggestionTrigger(t *testing.T) {
	editor := NewEditor(directory)

	editor.SetText("hello", 5)
	if editor.Suggesting() {
		t.Fatal("suggesting without '@'")
	}

	editor.SetText("hello @Ja", 9)
	if !editor.Suggesting() {
		t.Fatal("not suggesting after '@Ja'")
	}
	if editor.Query() != "Ja" {
		t.Errorf("query = %q", editor.Query())
	}
	names := candidateNames(editor)
	if len(names) != 2 || names[0] != "Jane Doe" || names[1] != "Jan Lee" {
		t.Errorf("candidates = %v", names)
	}
}

func TestTriggerBreaksOnWhitespace(t *testing.T) {
	editor := NewEditor(directory)
	// Whitespace between '@' and the caret ends the token.
	editor.SetText("email me @Jane thanks", 21)
	if editor.Suggesting() {
		t.Error("suggesting across whitespace")
	}
}

func TestFilterMatchesNameAndEmail(t *testing.T) {
	byName := Filter(directory, "bob")
	if len(byName) != 1 || byName[0].ID != "u3" {
		t.Errorf("Filter by name = %v", byName)
	}
	byEmail := Filter(directory, "jan@")
	if len(byEmail) != 1 || byEmail[0].ID != "u2" {
		t.Errorf("Filter by email = %v", byEmail)
	}
	// Substring, not prefix.
	bySubstring := Filter(directory, "smith")
	if len(bySubstring) != 1 || bySubstring[0].ID != "u3" {
		t.Errorf("Filter by substring = %v", bySubstring)
	}
	if got := Filter(directory, ""); len(got) != len(directory) {
		t.Errorf("empty query matched %d of %d", len(got), len(directory))
	}
	if got := Filter(directory, "zzz"); got != nil {
		t.Errorf("impossible query matched %v", got)
	}
}

func TestHighlightNavigationClamps(t *testing.T) {
	editor := NewEditor(directory)
	editor.SetText("@Ja", 3) // two candidates

	if editor.Highlight() != 0 {
		t.Fatalf("initial highlight = %d", editor.Highlight())
	}
	editor.HandleKey(KeyUp)
	if editor.Highlight() != 0 {
		t.Error("KeyUp moved above the first candidate")
	}
	editor.HandleKey(KeyDown)
	if editor.Highlight() != 1 {
		t.Errorf("highlight after down = %d", editor.Highlight())
	}
	editor.HandleKey(KeyDown)
	if editor.Highlight() != 1 {
		t.Error("KeyDown moved past the last candidate")
	}
}

func TestCommitReplacesTokenAndPlacesCaret(t *testing.T) {
	editor := NewEditor(directory)
	editor.SetText("ping @Ja now", 8) // caret right after "@Ja"

	editor.HandleKey(KeyDown) // highlight "Jan Lee"
	if !editor.HandleKey(KeyEnter) {
		t.Fatal("Enter not consumed")
	}
	if got := editor.Text(); got != "ping @Jan Lee now" {
		t.Errorf("text = %q", got)
	}
	// Caret sits directly after "Jan Lee".
	want := len([]rune("ping @Jan Lee"))
	if editor.Caret() != want {
		t.Errorf("caret = %d, want %d", editor.Caret(), want)
	}
	if editor.Suggesting() {
		t.Error("still suggesting after commit")
	}
}

func TestTabCommitsLikeEnter(t *testing.T) {
	editor := NewEditor(directory)
	editor.SetText("@Bob", 4)
	if !editor.HandleKey(KeyTab) {
		t.Fatal("Tab not consumed")
	}
	if got := editor.Text(); got != "@Bob Smith" {
		t.Errorf("text = %q", got)
	}
}

func TestEscapeDismissesWithoutEditing(t *testing.T) {
	editor := NewEditor(directory)
	editor.SetText("see @Ja", 7)
	if !editor.HandleKey(KeyEscape) {
		t.Fatal("Escape not consumed")
	}
	if editor.Suggesting() {
		t.Error("still suggesting after Escape")
	}
	if editor.Text() != "see @Ja" {
		t.Errorf("Escape changed text to %q", editor.Text())
	}
}

func TestCommitWithNoCandidatesIsNotConsumed(t *testing.T) {
	editor := NewEditor(directory)
	editor.SetText("@zzz", 4)
	if !editor.Suggesting() {
		t.Fatal("not suggesting")
	}
	if editor.HandleKey(KeyEnter) {
		t.Error("Enter consumed with empty candidate list")
	}
}

func TestKeysIgnoredOutsideSuggestionMode(t *testing.T) {
	editor := NewEditor(directory)
	editor.SetText("plain text", 10)
	for _, key := range []Key{KeyDown, KeyUp, KeyEnter, KeyTab, KeyEscape} {
		if editor.HandleKey(key) {
			t.Errorf("key %d consumed outside suggestion mode", key)
		}
	}
}

func candidateNames(editor *Editor) []string {
	var names []string
	for _, user := range editor.Candidates() {
		names = append(names, user.Name)
	}
	return names
}
