package config

// ValidationResult enumerates every required setting that is absent so the
// caller can fail fast with the full list instead of the first hit.
type ValidationResult struct {
	Valid   bool     `json:"valid"`
	Missing []string `json:"missing"`
}

// Validate checks that all required secrets and endpoints are present.
// A failed result is fatal and non-retryable; the pipeline must not start.
func (c AppConfig) Validate() ValidationResult {
	var missing []string
	if c.MongoURI == "" {
		missing = append(missing, EnvMongoURI)
	}
	if c.MongoDBName == "" {
		missing = append(missing, EnvMongoDBName)
	}
	if c.GeminiAPIKey == "" {
		missing = append(missing, EnvGeminiAPIKey)
	}
	if c.TriggerSecret == "" {
		missing = append(missing, EnvTriggerSecret)
	}
	return ValidationResult{Valid: len(missing) == 0, Missing: missing}
}
