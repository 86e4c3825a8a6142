package generator

import (
	"fmt"
	"strings"

	"lingua-board/config"
)

const SYSTEM_INSTRUCTION = `
You are a multilingual quote curator for a language-learning application. Your task is to produce inspiring, real quotes for learners.
The response MUST be a valid JSON array. Each element MUST be an object with exactly these keys:
1.  text: The quote in its original language. Must not be empty.
2.  attribution: The person or work the quote is attributed to. Must not be empty.
3.  languageCode: The ISO 639-1 code of the quote's language (e.g. "en", "fr", "zh").
4.  translation: An English translation of the quote. REQUIRED for every non-English quote. For English quotes use null. The key must always be present.
You MUST NOT wrap the JSON output in a markdown code block (e.g. ` + "```json ... ```" + `). The response should contain ONLY the raw JSON string.
Return exactly the number of quotes requested, no more and no fewer.
`

// buildPrompt asks for count quotes with a soft language-mix hint. The mix is
// guidance for the model only; nothing downstream enforces the ratio.
func buildPrompt(count int, mix []config.LanguageShare) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate %d quotes.", count)
	if len(mix) > 0 {
		b.WriteString(" Aim for roughly this language distribution: ")
		parts := make([]string, 0, len(mix))
		for _, m := range mix {
			parts = append(parts, fmt.Sprintf("%s (weight %d)", m.Code, m.Share))
		}
		b.WriteString(strings.Join(parts, ", "))
		b.WriteString(".")
	}
	return b.String()
}
