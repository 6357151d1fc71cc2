// Package tags builds the ordered token sequences that give every job a unique
// output name within its report directory.
package tags

import "strings"

// TagSet is an ordered sequence of tokens that disambiguates a job's output
// filename within its directory.
type TagSet []string

// Token is an optional tag. It contributes its value only when present.
type Token struct {
	value   string
	present bool
}

// Some returns a present token. An empty value is treated as absent.
func Some(value string) Token {
	return Token{value: value, present: value != ""}
}

// None returns an absent token.
func None() Token {
	return Token{}
}

// Value returns the token value and whether it is present.
func (t Token) Value() (string, bool) {
	return t.value, t.present
}

// Tokener is implemented by dimension values that may contribute a tag.
type Tokener interface {
	Token() Token
}

// Build concatenates base tokens followed by the present optional tokens, in
// caller order. Absent optional tokens are dropped. No deduplication is done.
func Build(base []string, optional ...Token) TagSet {
	out := make(TagSet, 0, len(base)+len(optional))
	out = append(out, base...)
	for _, tok := range optional {
		if v, ok := tok.Value(); ok {
			out = append(out, v)
		}
	}
	return out
}

// With returns a copy of t with the present tokens appended.
func (t TagSet) With(optional ...Token) TagSet {
	return Build(t, optional...)
}

// Key returns the canonical identity of the tag set, used for collision checks
// and as the filename suffix.
func (t TagSet) Key() string {
	parts := make([]string, len(t))
	for i, tok := range t {
		parts[i] = strings.ToUpper(strings.ReplaceAll(tok, "-", "_"))
	}
	return strings.Join(parts, "_")
}

// Equal reports whether both tag sets hold the same tokens in the same order.
func (t TagSet) Equal(other TagSet) bool {
	if len(t) != len(other) {
		return false
	}
	for i := range t {
		if t[i] != other[i] {
			return false
		}
	}
	return true
}

// Strings returns a copy of the tokens.
func (t TagSet) Strings() []string {
	out := make([]string, len(t))
	copy(out, t)
	return out
}
