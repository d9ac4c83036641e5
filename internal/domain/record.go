// Package domain defines the core data model shared by the trendwatch service.
package domain

import "time"

// Season buckets for the two-season marketing calendar.
const (
	SeasonSpringSummer = "SS26"
	SeasonFallWinter   = "FW26"
	SeasonEvergreen    = "Core/Evergreen"
)

// Category constants. Everything that survives classification is Clothing;
// unmatched text is tagged Uncategorized/General and dropped before serving.
const (
	CategoryClothing      = "Clothing"
	CategoryUncategorized = "Uncategorized"
	SubCategoryGeneral    = "General"
)

// AttributeUnknown is the sentinel for an attribute with no keyword hit.
const AttributeUnknown = "Unknown"

// RegionGlobal is the fallback region when no demographic data is present.
const RegionGlobal = "Global"

// MaxTextLength is the maximum stored length of a post's free text, in
// characters.
const MaxTextLength = 1000

// TruncateText caps text at MaxTextLength characters. The cut falls on a
// rune boundary, so multi-byte characters are kept whole or dropped, never
// split into invalid UTF-8.
func TruncateText(text string) string {
	if len(text) <= MaxTextLength {
		return text
	}
	count := 0
	for i := range text {
		if count == MaxTextLength {
			return text[:i]
		}
		count++
	}
	return text
}

// AttributeType identifies one of the extracted descriptive attributes.
type AttributeType string

// Attribute types extracted from post text.
const (
	AttributeColor  AttributeType = "Color"
	AttributeFabric AttributeType = "Fabric"
	AttributeStyle  AttributeType = "Style"
)

// RawPost is a minimally-processed social post as produced by ingestion.
// Timestamp stays a string here; parsing happens once during classification
// and unparseable values degrade to a nil time, never an error.
type RawPost struct {
	TextContent string `db:"text_content" json:"text_content"`
	Timestamp   string `db:"timestamp"    json:"timestamp"`
	Category    string `db:"category"     json:"category"`
	Age         int    `db:"age"          json:"age"`
	Gender      string `db:"gender"       json:"gender"`
	Region      string `db:"region"       json:"region"`
	Season      string `db:"season"       json:"season"`
	TopicName   string `db:"topic_name"   json:"topic_name"`
}

// Record is a fully classified and scored post. Immutable once produced;
// the store only ever holds records with Category == CategoryClothing.
type Record struct {
	Text          string     `db:"text_content"   json:"text_content"`
	Timestamp     *time.Time `db:"timestamp"      json:"timestamp,omitempty"`
	Category      string     `db:"category"       json:"category"`
	SubCategory   string     `db:"sub_category"   json:"sub_category"`
	Color         string     `db:"color"          json:"color"`
	Fabric        string     `db:"fabric"         json:"fabric"`
	Style         string     `db:"style"          json:"style"`
	Season        string     `db:"season"         json:"season"`
	VelocityScore float64    `db:"velocity_score" json:"velocity_score"`
	Region        string     `db:"region"         json:"region"`
	Gender        string     `db:"gender"         json:"gender"`
	Age           int        `db:"age"            json:"age"`
}

// Signature returns the trend identity string (color + style + sub-category).
// It is derived, never persisted.
func (r *Record) Signature() string {
	return r.Color + " " + r.Style + " " + r.SubCategory
}
