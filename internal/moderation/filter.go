// Package moderation decides whether chat text violates the content policy.
package moderation

import (
	"slices"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

// Filter flags text containing any listed word as a whole word. Matching
// ignores case and punctuation and undoes common leet-speak substitutions,
// so "Sh!t" and "d.a.m.n" are caught while "scrap" is not.
type Filter struct {
	matcher *goahocorasick.Machine
	size    int
}

// NewFilter builds the Aho-Corasick automaton over the normalized words.
// Words that normalize to nothing are skipped.
func NewFilter(words []string) (*Filter, error) {
	patterns := make([][]rune, 0, len(words))
	seen := make(map[string]struct{}, len(words))
	for _, word := range words {
		p := normalizeRunes([]rune(word), true)
		if len(p) == 0 {
			continue
		}
		if _, dup := seen[string(p)]; dup {
			continue
		}
		seen[string(p)] = struct{}{}
		patterns = append(patterns, p)
	}

	if len(patterns) == 0 {
		return &Filter{}, nil
	}

	// the double-array trie behind the machine expects sorted keys
	slices.SortFunc(patterns, slices.Compare[[]rune])

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	return &Filter{matcher: m, size: len(patterns)}, nil
}

// Size reports how many distinct words the filter matches.
func (f *Filter) Size() int {
	return f.size
}

// IsProfane reports whether text contains a listed word.
func (f *Filter) IsProfane(text string) bool {
	return len(f.Matches(text)) > 0
}

// Matches returns the distinct normalized listed words found in text. Each
// text is scanned twice, with and without leet-speak substitution, so a
// trailing "!" does not glue itself onto a word as an "i".
func (f *Filter) Matches(text string) []string {
	if f.matcher == nil || text == "" {
		return nil
	}

	var found []string
	seen := make(map[string]struct{})
	for _, leet := range []bool{true, false} {
		content := normalizeRunes([]rune(text), leet)
		if len(content) == 0 {
			continue
		}
		for _, term := range f.matcher.MultiPatternSearch(content, false) {
			end := term.Pos + len(term.Word)
			if !isBoundary(content, term.Pos-1) || !isBoundary(content, end) {
				continue
			}
			word := string(term.Word)
			if _, dup := seen[word]; dup {
				continue
			}
			seen[word] = struct{}{}
			found = append(found, word)
		}
	}
	return found
}

// normalizeRunes lowercases, drops punctuation and symbols, and collapses
// whitespace runs into a single space. With leet set, digits and symbols
// commonly used as letters are mapped back first.
func normalizeRunes(input []rune, leet bool) []rune {
	out := make([]rune, 0, len(input))
	for _, r := range input {
		if leet {
			r = simplifyRune(r)
		}
		if unicode.IsSpace(r) {
			if len(out) > 0 && out[len(out)-1] != ' ' {
				out = append(out, ' ')
			}
			continue
		}
		if isNoise(r) {
			continue
		}
		out = append(out, unicode.ToLower(r))
	}
	if n := len(out); n > 0 && out[n-1] == ' ' {
		out = out[:n-1]
	}
	return out
}

func isBoundary(content []rune, i int) bool {
	return i < 0 || i >= len(content) || content[i] == ' '
}

// simplifyRune maps leet-speak characters back to the letter they stand for.
func simplifyRune(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3', '€':
		return 'e'
	case '1', '!', '|':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	default:
		return r
	}
}

func isNoise(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}
