// Package taxonomy holds the static product taxonomy and attribute
// registries that drive classification. Rule order matters: the classifier
// scans sub-categories and attribute values in declared order and the first
// keyword hit wins.
package taxonomy

import (
	"fmt"
	"os"
	"strings"

	"github.com/jonesrussell/trendwatch/internal/domain"
	"gopkg.in/yaml.v3"
)

// SubCategoryRule maps a sub-category to its trigger keywords.
type SubCategoryRule struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// AttributeValue maps a canonical attribute value to its trigger keywords.
// When Keywords is empty the lowercased value itself is the keyword.
type AttributeValue struct {
	Value    string   `yaml:"value"`
	Keywords []string `yaml:"keywords,omitempty"`
}

// AttributeRule holds the ordered value list for one attribute type.
type AttributeRule struct {
	Type   domain.AttributeType `yaml:"type"`
	Values []AttributeValue     `yaml:"values"`
}

// Registry is the full rule set: one top-level category with ordered
// sub-category rules, plus the attribute tables.
type Registry struct {
	Category      string            `yaml:"category"`
	SubCategories []SubCategoryRule `yaml:"sub_categories"`
	Attributes    []AttributeRule   `yaml:"attributes"`
}

// Default returns the built-in clothing registry.
func Default() *Registry {
	return &Registry{
		Category: domain.CategoryClothing,
		SubCategories: []SubCategoryRule{
			{Name: "T-shirt", Keywords: []string{"t-shirt", "tee", "polo", "tshirt"}},
			{Name: "Shirt", Keywords: []string{"shirt", "button-down", "flannel", "blouse", "collar"}},
			{Name: "Hoodie", Keywords: []string{"hoodie", "sweatshirt", "sweater", "pullover", "jumper"}},
			{Name: "Pants", Keywords: []string{"pant", "trouser", "chino", "cargo", "jogger", "slacks"}},
			{Name: "Jeans", Keywords: []string{"jean", "denim", "jeggings"}},
			{Name: "Dress", Keywords: []string{"dress", "gown", "frock", "skirt", "maxi", "midi", "mini"}},
			{Name: "Activewear", Keywords: []string{"activewear", "gym", "yoga", "fitness", "legging", "sport bra", "tracksuit"}},
			{Name: "Top", Keywords: []string{"top", "tank", "camisole", "crop", "bodysuit"}},
		},
		Attributes: []AttributeRule{
			{Type: domain.AttributeColor, Values: values(
				"Red", "Blue", "Green", "Yellow", "Black", "White", "Pink", "Purple",
				"Orange", "Grey", "Beige", "Brown", "Navy", "Teal", "Gold", "Silver",
				"Neon", "Cream", "Khaki", "Burgundy", "Charcoal",
			)},
			{Type: domain.AttributeFabric, Values: values(
				"Linen", "Denim", "Cotton", "Silk", "Wool", "Leather", "Mesh", "Velvet",
				"Polyester", "Satin", "Suede", "Chiffon", "Knitted", "Lace", "Cashmere", "Spandex",
			)},
			{Type: domain.AttributeStyle, Values: values(
				"Oversized", "Slim", "Combat", "Retro", "Layered", "Cropped", "Fitted",
				"Vintage", "Boho", "Minimalist", "Streetwear", "Casual", "Formal", "Baggy",
				"Chic", "Sporty", "Elegant", "Printed", "Striped",
			)},
		},
	}
}

// Load reads a registry from a YAML rules file. An empty path returns the
// built-in default registry.
func Load(path string) (*Registry, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file %s: %w", path, err)
	}

	var reg Registry
	if err := yaml.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse rules file %s: %w", path, err)
	}
	if reg.Category == "" {
		reg.Category = domain.CategoryClothing
	}
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	return &reg, nil
}

// Validate checks registry invariants: at least one sub-category, non-empty
// keyword lists, all three attribute types present.
func (r *Registry) Validate() error {
	if len(r.SubCategories) == 0 {
		return fmt.Errorf("registry has no sub-categories")
	}
	for _, sc := range r.SubCategories {
		if sc.Name == "" {
			return fmt.Errorf("sub-category with empty name")
		}
		if len(sc.Keywords) == 0 {
			return fmt.Errorf("sub-category %q has no keywords", sc.Name)
		}
	}

	seen := make(map[domain.AttributeType]bool, len(r.Attributes))
	for _, attr := range r.Attributes {
		if len(attr.Values) == 0 {
			return fmt.Errorf("attribute %q has no values", attr.Type)
		}
		seen[attr.Type] = true
	}
	for _, t := range []domain.AttributeType{domain.AttributeColor, domain.AttributeFabric, domain.AttributeStyle} {
		if !seen[t] {
			return fmt.Errorf("attribute %q missing from registry", t)
		}
	}
	return nil
}

// Hierarchy returns the category -> sub-category names mapping served by the
// taxonomy endpoint.
func (r *Registry) Hierarchy() map[string][]string {
	names := make([]string, 0, len(r.SubCategories))
	for _, sc := range r.SubCategories {
		names = append(names, sc.Name)
	}
	return map[string][]string{r.Category: names}
}

// EffectiveKeywords returns the keyword list for an attribute value,
// defaulting to the lowercased value itself.
func (v AttributeValue) EffectiveKeywords() []string {
	if len(v.Keywords) > 0 {
		return v.Keywords
	}
	return []string{strings.ToLower(v.Value)}
}

func values(names ...string) []AttributeValue {
	out := make([]AttributeValue, 0, len(names))
	for _, n := range names {
		out = append(out, AttributeValue{Value: n})
	}
	return out
}
