// Package classifier maps raw post text onto the product taxonomy and
// extracts descriptive attributes. Classification is deterministic keyword
// matching driven by the taxonomy registry; there is no trained inference.
package classifier

import (
	"github.com/jonesrussell/trendwatch/internal/domain"
	"github.com/jonesrussell/trendwatch/internal/taxonomy"
)

// Classifier classifies text against a fixed registry. Safe for concurrent
// use; the registry is never mutated after construction.
type Classifier struct {
	registry *taxonomy.Registry
	matcher  *keywordMatcher
}

// New builds a classifier from the registry. The registry must already be
// validated.
func New(registry *taxonomy.Registry) *Classifier {
	keywords := make([]string, 0, 64)
	for _, sc := range registry.SubCategories {
		keywords = append(keywords, sc.Keywords...)
	}
	for _, attr := range registry.Attributes {
		for _, v := range attr.Values {
			keywords = append(keywords, v.EffectiveKeywords()...)
		}
	}

	return &Classifier{
		registry: registry,
		matcher:  newKeywordMatcher(keywords),
	}
}

// Classify returns the (category, sub-category) for the text. Sub-categories
// are scanned in registry order and the first keyword hit wins; text with no
// hit, including empty text, falls through to Uncategorized/General.
func (c *Classifier) Classify(text string) (category, subCategory string) {
	hits := c.matcher.match(text)
	if len(hits) == 0 {
		return domain.CategoryUncategorized, domain.SubCategoryGeneral
	}

	for _, sc := range c.registry.SubCategories {
		for _, kw := range sc.Keywords {
			if hits[normalize(kw)] {
				return c.registry.Category, sc.Name
			}
		}
	}
	return domain.CategoryUncategorized, domain.SubCategoryGeneral
}

// ExtractAttributes resolves each attribute type to exactly one canonical
// value, or AttributeUnknown when nothing matches. All registered types are
// always present in the result.
func (c *Classifier) ExtractAttributes(text string) map[domain.AttributeType]string {
	hits := c.matcher.match(text)

	found := make(map[domain.AttributeType]string, len(c.registry.Attributes))
	for _, attr := range c.registry.Attributes {
		found[attr.Type] = domain.AttributeUnknown
		for _, v := range attr.Values {
			if matchesAny(hits, v.EffectiveKeywords()) {
				found[attr.Type] = v.Value
				break
			}
		}
	}
	return found
}

func matchesAny(hits map[string]bool, keywords []string) bool {
	for _, kw := range keywords {
		if hits[normalize(kw)] {
			return true
		}
	}
	return false
}
