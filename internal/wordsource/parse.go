package wordsource

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/Roma7-7-7/readyword/internal/game"
)

var (
	fencePattern     = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*(.*?)\\s*```$")               //nolint:gochecknoglobals // compiled once
	wordJSONPattern  = regexp.MustCompile(`\{[^}]*"word"[^}]*\}`)                               //nolint:gochecknoglobals // compiled once
	hintJSONPattern  = regexp.MustCompile(`\{[^}]*"hint"[^}]*\}`)                               //nolint:gochecknoglobals // compiled once
	jsonFencePattern = regexp.MustCompile("(?s)```json.*?```")                                  //nolint:gochecknoglobals // compiled once
	echoPattern      = regexp.MustCompile(`(?i)question is:|question:|you asked:?`)             //nolint:gochecknoglobals // compiled once
	sentenceSplit    = regexp.MustCompile(`[.!?]`)                                              //nolint:gochecknoglobals // compiled once
	metaPhrases      = []string{"word is", "term is", "hint is", "clue is", `"word"`, `"hint"`} //nolint:gochecknoglobals // static list
)

const minTriviaSentence = 30

// stripFences removes a surrounding markdown code fence, if any.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if m := fencePattern.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return s
}

func parseWord(content string) (Word, error) {
	var w Word
	if err := json.Unmarshal([]byte(stripFences(content)), &w); err != nil {
		return Word{}, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}

	w.Word = strings.TrimSpace(w.Word)
	w.Hint = strings.TrimSpace(w.Hint)
	if w.Word == "" {
		return Word{}, fmt.Errorf("%w: empty word", ErrInvalidResponse)
	}
	if !strings.ContainsFunc(w.Word, game.IsLetter) {
		return Word{}, fmt.Errorf("%w: word %q has no letters", ErrInvalidResponse, w.Word)
	}
	return w, nil
}

// ContainsTrivia reports whether text holds at least one educational
// sentence, as opposed to only echoing a word/hint payload.
func ContainsTrivia(text string) bool {
	cleaned := wordJSONPattern.ReplaceAllString(text, "")
	cleaned = hintJSONPattern.ReplaceAllString(cleaned, "")
	cleaned = jsonFencePattern.ReplaceAllString(cleaned, "")
	cleaned = echoPattern.ReplaceAllString(cleaned, "")

	for _, sentence := range sentenceSplit.Split(cleaned, -1) {
		if len(sentence) <= minTriviaSentence {
			continue
		}
		lower := strings.ToLower(sentence)
		meta := false
		for _, p := range metaPhrases {
			if strings.Contains(lower, p) {
				meta = true
				break
			}
		}
		if !meta {
			return true
		}
	}
	return false
}
