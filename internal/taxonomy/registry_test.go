package taxonomy_test

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/jonesrussell/trendwatch/internal/domain"
	"github.com/jonesrussell/trendwatch/internal/taxonomy"
)

func TestDefault_IsValid(t *testing.T) {
	if err := taxonomy.Default().Validate(); err != nil {
		t.Fatalf("default registry invalid: %v", err)
	}
}

func TestDefault_Hierarchy(t *testing.T) {
	h := taxonomy.Default().Hierarchy()

	names, ok := h[domain.CategoryClothing]
	if !ok {
		t.Fatalf("hierarchy missing %q key: %v", domain.CategoryClothing, h)
	}
	want := []string{"T-shirt", "Shirt", "Hoodie", "Pants", "Jeans", "Dress", "Activewear", "Top"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("sub-categories = %v, want %v", names, want)
	}
}

func TestLoad_EmptyPathUsesDefault(t *testing.T) {
	reg, err := taxonomy.Load("")
	if err != nil {
		t.Fatalf("Load(\"\") failed: %v", err)
	}
	if reg.Category != domain.CategoryClothing {
		t.Errorf("category = %q, want %q", reg.Category, domain.CategoryClothing)
	}
}

func TestLoad_FromYAML(t *testing.T) {
	rules := `
category: Clothing
sub_categories:
  - name: Hoodie
    keywords: [hoodie, sweatshirt]
  - name: Jeans
    keywords: [jean, denim]
attributes:
  - type: Color
    values:
      - value: Red
      - value: Crimson
        keywords: [crimson, blood-red]
  - type: Fabric
    values:
      - value: Denim
  - type: Style
    values:
      - value: Baggy
`
	path := filepath.Join(t.TempDir(), "rules.yml")
	if err := os.WriteFile(path, []byte(rules), 0o644); err != nil {
		t.Fatalf("write rules: %v", err)
	}

	reg, err := taxonomy.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(reg.SubCategories) != 2 || reg.SubCategories[0].Name != "Hoodie" {
		t.Errorf("unexpected sub-categories: %+v", reg.SubCategories)
	}

	colors := reg.Attributes[0]
	if colors.Type != domain.AttributeColor {
		t.Fatalf("first attribute type = %q, want color", colors.Type)
	}
	if got := colors.Values[0].EffectiveKeywords(); !reflect.DeepEqual(got, []string{"red"}) {
		t.Errorf("implicit keywords = %v, want [red]", got)
	}
	if got := colors.Values[1].EffectiveKeywords(); !reflect.DeepEqual(got, []string{"crimson", "blood-red"}) {
		t.Errorf("explicit keywords = %v, want [crimson blood-red]", got)
	}
}

func TestLoad_RejectsInvalidRules(t *testing.T) {
	testCases := []struct {
		name  string
		rules string
	}{
		{
			name:  "no sub-categories",
			rules: "category: Clothing\nsub_categories: []\n",
		},
		{
			name: "sub-category without keywords",
			rules: `
sub_categories:
  - name: Hoodie
    keywords: []
`,
		},
		{
			name: "missing attribute type",
			rules: `
sub_categories:
  - name: Hoodie
    keywords: [hoodie]
attributes:
  - type: Color
    values:
      - value: Red
`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "rules.yml")
			if err := os.WriteFile(path, []byte(tc.rules), 0o644); err != nil {
				t.Fatalf("write rules: %v", err)
			}
			if _, err := taxonomy.Load(path); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := taxonomy.Load(filepath.Join(t.TempDir(), "nope.yml")); err == nil {
		t.Error("expected error for missing file, got nil")
	}
}
