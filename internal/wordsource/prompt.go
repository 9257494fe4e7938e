package wordsource

import (
	"fmt"
	"strings"
)

func wordPrompt(req Request) string {
	minLen, maxLen := req.Difficulty.WordLength()

	var b strings.Builder
	fmt.Fprintf(&b, "Generate a single disaster preparedness related term about %s for a word guessing game.\n", req.Topic)
	if len(req.Avoid) > 0 {
		fmt.Fprintf(&b, "Avoid these previously used words: %s. ", strings.Join(req.Avoid, ", "))
	}
	fmt.Fprintf(&b, "The word should be %s in complexity and %d-%d letters long.\n", req.Difficulty.Complexity(), minLen, maxLen)
	b.WriteString(`Format your response EXACTLY as follows with no additional text:
{
  "word": "a single word or short phrase related to disaster preparedness",
  "hint": "a brief hint about the word or phrase to help the player guess"
}`)
	return b.String()
}

// FactPrompt is the question sent when asking for an educational fact about word.
func FactPrompt(word string) string {
	return fmt.Sprintf(`Provide a brief educational paragraph (2-3 sentences) about %q in the context of disaster preparedness.
Make it informative and factual. Keep it concise and educational.`, word)
}

func retryPrompt(bad string) string {
	return fmt.Sprintf(`Your previous response was not valid JSON. Here is what you returned:
%s

Return ONLY the corrected JSON object (no markdown, no code fences):
{
  "word": "a single word or short phrase related to disaster preparedness",
  "hint": "a brief hint about the word or phrase to help the player guess"
}`, bad)
}
