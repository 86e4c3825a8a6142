package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultLanguageCode is applied when the generator omits language_code.
const DefaultLanguageCode = "en"

// Quote is one generated multilingual quote document.
// Collection: daily_quotes
//
// Quotes are written only by the refresh pipeline and are read-only to every
// other consumer. They live until the next successful run deletes their
// day bucket.
type Quote struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Text         string             `bson:"text" json:"text"`
	Attribution  string             `bson:"attribution" json:"attribution"`
	LanguageCode string             `bson:"language_code" json:"language_code"`

	// Translation is non-nil only for quotes whose language requires an
	// English translation (every code other than DefaultLanguageCode).
	Translation *string `bson:"translation" json:"translation"`

	DayBucket string    `bson:"day_bucket" json:"day_bucket"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// RequiresTranslation reports whether quotes in the given language must carry
// an English translation.
func RequiresTranslation(languageCode string) bool {
	return languageCode != DefaultLanguageCode
}

// DayBucketFor returns the refresh-cycle key for t in YYYY-MM-DD form (UTC).
func DayBucketFor(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
