package generator

import (
	"encoding/json"
	"fmt"
	"strings"

	"lingua-board/models"
)

// candidate is one element of the generator's JSON array. The translation
// key must be present even when null, so presence is tracked explicitly.
type candidate struct {
	Text           string
	Attribution    string
	LanguageCode   string
	Translation    *string
	hasTranslation bool
}

func (c *candidate) UnmarshalJSON(b []byte) error {
	var aux struct {
		Text         string  `json:"text"`
		Attribution  string  `json:"attribution"`
		LanguageCode string  `json:"languageCode"`
		Translation  *string `json:"translation"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(b, &keys); err != nil {
		return err
	}
	_, c.hasTranslation = keys["translation"]
	c.Text = aux.Text
	c.Attribution = aux.Attribution
	c.LanguageCode = aux.LanguageCode
	c.Translation = aux.Translation
	return nil
}

// ParseBatch parses one raw generator response into validated quotes tagged
// with the given day bucket.
//
// Contract checks, in order: the payload must be a JSON array; each element
// must have non-empty text and attribution; languageCode falls back to the
// default when absent; the translation key must exist (a missing key is a
// contract violation even though null is fine); a language that requires a
// translation must carry a non-empty one. An English quote with a spurious
// translation is normalized to null rather than rejected.
//
// A response with fewer than requested items is a ValidationError — partial
// batches are never accepted. Over-long responses are returned as-is; the
// orchestrator truncates.
func ParseBatch(raw string, requested int, dayBucket string) ([]models.Quote, error) {
	cleaned := stripCodeFence(raw)

	var cands []candidate
	if err := json.Unmarshal([]byte(cleaned), &cands); err != nil {
		return nil, &GenerationError{Err: fmt.Errorf("response is not a JSON array: %w", err)}
	}

	if len(cands) < requested {
		return nil, &ValidationError{
			Reason: fmt.Sprintf("got %d items, requested %d", len(cands), requested),
		}
	}

	quotes := make([]models.Quote, 0, len(cands))
	for i, c := range cands {
		if strings.TrimSpace(c.Text) == "" {
			return nil, &ValidationError{Reason: fmt.Sprintf("item %d has empty text", i)}
		}
		if strings.TrimSpace(c.Attribution) == "" {
			return nil, &ValidationError{Reason: fmt.Sprintf("item %d has empty attribution", i)}
		}
		if !c.hasTranslation {
			return nil, &ValidationError{Reason: fmt.Sprintf("item %d is missing the translation key", i)}
		}

		code := strings.TrimSpace(c.LanguageCode)
		if code == "" {
			code = models.DefaultLanguageCode
		}

		translation := c.Translation
		if models.RequiresTranslation(code) {
			if translation == nil || strings.TrimSpace(*translation) == "" {
				return nil, &ValidationError{
					Reason: fmt.Sprintf("item %d (%s) requires a translation but has none", i, code),
				}
			}
		} else {
			translation = nil
		}

		quotes = append(quotes, models.Quote{
			Text:         strings.TrimSpace(c.Text),
			Attribution:  strings.TrimSpace(c.Attribution),
			LanguageCode: code,
			Translation:  translation,
			DayBucket:    dayBucket,
		})
	}
	return quotes, nil
}

// stripCodeFence removes a markdown code fence the model sometimes adds
// despite the system instruction.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}
