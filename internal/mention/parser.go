package mention

import (
	"sort"
	"strings"
	"unicode"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// Segment is a slice of rendered comment content. Mention is true for
// @Name tokens that resolved against the comment's stored mentions.
type Segment struct {
	Text    string
	Mention bool
}

// Extract resolves @Name tokens in content against the directory by
// exact, case-insensitive display-name match. Display names may contain
// spaces, so matching is directory-driven: at each '@' the longest
// matching name wins. Tokens with no directory match are left alone.
// Each user appears at most once in the result, in order of first match.
func Extract(content string, directory []domain.User) []domain.User {
	var resolved []domain.User
	seen := make(map[string]struct{})
	scan(content, directory, func(user domain.User) {
		if _, ok := seen[user.ID]; ok {
			return
		}
		seen[user.ID] = struct{}{}
		resolved = append(resolved, user)
	}, nil)
	return resolved
}

// Render splits stored content into segments, flagging only tokens whose
// captured name matches one of the comment's resolved mentions. All other
// text, including unmatched @word tokens, passes through verbatim.
func Render(content string, mentions []domain.User) []Segment {
	var segments []Segment
	last := 0
	runes := []rune(content)
	scan(content, mentions, nil, func(user domain.User, start, end int) {
		if start > last {
			segments = append(segments, Segment{Text: string(runes[last:start])})
		}
		segments = append(segments, Segment{Text: string(runes[start:end]), Mention: true})
		last = end
	})
	if last < len(runes) {
		segments = append(segments, Segment{Text: string(runes[last:])})
	}
	if segments == nil {
		segments = []Segment{{Text: content}}
	}
	return segments
}

// scan walks content looking for '@' followed by a directory name. Both
// callbacks are optional; onSpan receives rune offsets of the full token
// including the '@'.
func scan(content string, directory []domain.User, onUser func(domain.User), onSpan func(domain.User, int, int)) {
	// Longest name first so "Jane Doe" beats a directory entry "Jane".
	byLength := make([]domain.User, len(directory))
	copy(byLength, directory)
	sort.SliceStable(byLength, func(i, j int) bool {
		return len(byLength[i].Name) > len(byLength[j].Name)
	})

	runes := []rune(content)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '@' {
			continue
		}
		user, length, ok := matchAt(runes, i+1, byLength)
		if !ok {
			continue
		}
		if onUser != nil {
			onUser(user)
		}
		if onSpan != nil {
			onSpan(user, i, i+1+length)
		}
		i += length
	}
}

// matchAt tries each directory name at the given offset and returns the
// first (longest) exact, case-insensitive match ending on a word
// boundary, along with the matched length in runes.
func matchAt(runes []rune, at int, byLength []domain.User) (domain.User, int, bool) {
	for _, user := range byLength {
		name := []rune(user.Name)
		if len(name) == 0 || at+len(name) > len(runes) {
			continue
		}
		if !strings.EqualFold(string(runes[at:at+len(name)]), user.Name) {
			continue
		}
		// "@Jan" must not resolve a directory entry "Ja".
		if end := at + len(name); end < len(runes) {
			if unicode.IsLetter(runes[end]) || unicode.IsDigit(runes[end]) {
				continue
			}
		}
		return user, len(name), true
	}
	return domain.User{}, 0, false
}
