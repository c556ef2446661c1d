// Package textenc maps characters the search engine's tag and wildcard
// matching treats specially into a Private Use Area alphabet, so that
// free-text and wildcard queries behave uniformly regardless of input
// script. The mapping is bijective: every field encoded at projection
// time is decoded on the way back to the caller.
package textenc

import "strings"

// escapeRune prefixes a literal Private Use Area rune that would otherwise
// collide with the encoded alphabet.
const escapeRune = ''

// safeBase is the first codepoint of the encoded alphabet. Specials are
// mapped to safeBase+index, leaving escapeRune itself out of the range.
const safeBase = ''

// specials are the characters RediSearch query syntax assigns meaning to
// inside tag and wildcard values, plus the tag separator and the unit
// separator used by credit pair encoding. Order is load-bearing: the
// encoded codepoint is safeBase plus the rune's position here.
var specials = []rune{
	'\\', '\'', '"', '@', '{', '}', '(', ')', '|', '-', '~', '*',
	'[', ']', '!', '%', '^', '$', '<', '>', '=', ';', '+', ',',
	':', '&', '?', '/', '',
}

var (
	encode map[rune]rune
	decode map[rune]rune
)

func init() {
	encode = make(map[rune]rune, len(specials))
	decode = make(map[rune]rune, len(specials))
	for i, r := range specials {
		safe := safeBase + rune(i)
		encode[r] = safe
		decode[safe] = r
	}
}

// inAlphabet reports whether r belongs to the encoded output range,
// including the escape rune.
func inAlphabet(r rune) bool {
	return r >= escapeRune && r < safeBase+rune(len(specials))
}

// ToSafe rewrites s so that it contains no character the engine's tag or
// wildcard syntax interprets. Input runes that already fall inside the
// output alphabet are escaped so the mapping stays reversible.
func ToSafe(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case inAlphabet(r):
			b.WriteRune(escapeRune)
			b.WriteRune(r)
		default:
			if safe, ok := encode[r]; ok {
				b.WriteRune(safe)
			} else {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}

// FromSafe is the inverse of ToSafe: FromSafe(ToSafe(s)) == s for all s.
// Input that was not produced by ToSafe is returned best-effort (a
// trailing bare escape rune is dropped).
func FromSafe(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	escaped := false
	for _, r := range s {
		if escaped {
			b.WriteRune(r)
			escaped = false
			continue
		}
		if r == escapeRune {
			escaped = true
			continue
		}
		if orig, ok := decode[r]; ok {
			b.WriteRune(orig)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
