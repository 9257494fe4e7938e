package game

import (
	"math/bits"
	"strings"
)

const alphabetSize = 26

// LetterSet is a set of lowercase latin letters packed into a bitmask.
type LetterSet uint32

const allLetters LetterSet = 1<<alphabetSize - 1

func letterIndex(r rune) (int, bool) {
	switch {
	case r >= 'a' && r <= 'z':
		return int(r - 'a'), true
	case r >= 'A' && r <= 'Z':
		return int(r - 'A'), true
	default:
		return 0, false
	}
}

// IsLetter reports whether r is a guessable letter.
func IsLetter(r rune) bool {
	_, ok := letterIndex(r)
	return ok
}

func lettersOf(word string) LetterSet {
	var s LetterSet
	for _, r := range word {
		s = s.With(r)
	}
	return s
}

func (s LetterSet) Has(r rune) bool {
	i, ok := letterIndex(r)
	return ok && s&(1<<i) != 0
}

// With returns a copy of s containing r. Non-letters are ignored.
func (s LetterSet) With(r rune) LetterSet {
	i, ok := letterIndex(r)
	if !ok {
		return s
	}
	return s | 1<<i
}

func (s LetterSet) Len() int {
	return bits.OnesCount32(uint32(s))
}

func (s LetterSet) Empty() bool {
	return s == 0
}

// Letters returns the members in alphabetical order.
func (s LetterSet) Letters() []rune {
	res := make([]rune, 0, s.Len())
	for i := range alphabetSize {
		if s&(1<<i) != 0 {
			res = append(res, rune('a'+i))
		}
	}
	return res
}

func (s LetterSet) String() string {
	var b strings.Builder
	for _, r := range s.Letters() {
		b.WriteRune(r)
	}
	return b.String()
}
