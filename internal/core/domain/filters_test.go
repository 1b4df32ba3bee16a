package domain_test

import (
	"reflect"
	"testing"

	"github.com/lootaura/lootaura/internal/core/domain"
)

func TestNormalizeCategories(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"nil input", nil, nil},
		{"drops empties and whitespace", []string{"", "  ", "tools"}, []string{"tools"}},
		{"trims entries", []string{"  tools  ", "toys "}, []string{"tools", "toys"}},
		{"case-insensitive dedup keeps first casing", []string{"Tools", "tools", "TOOLS", "toys"}, []string{"Tools", "toys"}},
		{"preserves first-seen order", []string{"zebra", "apple", "Zebra"}, []string{"zebra", "apple"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.NormalizeCategories(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NormalizeCategories(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseCategories(t *testing.T) {
	got := domain.ParseCategories("Tools, toys,,tools ,  ")
	want := []string{"Tools", "toys"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseCategories = %v, want %v", got, want)
	}
	if domain.ParseCategories("") != nil {
		t.Error("empty param should parse to nil")
	}
}

func TestCategoriesEqual(t *testing.T) {
	if !domain.CategoriesEqual([]string{"Tools", "toys"}, []string{"TOYS", "tools"}) {
		t.Error("set equality must ignore order and case")
	}
	if domain.CategoriesEqual([]string{"tools"}, []string{"tools", "toys"}) {
		t.Error("different cardinality must not be equal")
	}
	if !domain.CategoriesEqual(nil, []string{"", "  "}) {
		t.Error("nil and all-blank lists are both empty sets")
	}
}

func TestCategoryParamIsStable(t *testing.T) {
	a := domain.CategoryParam([]string{"toys", "Antiques", "tools"})
	if a != "Antiques,tools,toys" {
		t.Errorf("unexpected param: %q", a)
	}
	// Input order never changes the serialized key.
	b := domain.CategoryParam([]string{"tools", "Antiques", "toys", "Antiques"})
	if a != b {
		t.Errorf("param depends on input order: %q vs %q", a, b)
	}
	if domain.CategoryParam(domain.ParseCategories(a)) != a {
		t.Error("serializing a parsed param must be a fixed point")
	}
}

func TestSaleFiltersEqual(t *testing.T) {
	a := domain.SaleFilters{Categories: []string{"Tools", "toys"}, DatePreset: " Weekend ", Zip: "43210 "}
	b := domain.SaleFilters{Categories: []string{"toys", "TOOLS"}, DatePreset: "weekend", Zip: "43210"}
	if !a.Equal(b) {
		t.Error("filters differing only in order, case, and padding must be equal")
	}

	c := b
	c.Zip = "43211"
	if a.Equal(c) {
		t.Error("different zips must not be equal")
	}
}

func TestSaleFiltersNormalize(t *testing.T) {
	f := domain.SaleFilters{
		Categories: []string{" Tools", "tools"},
		DatePreset: " SATURDAY ",
		Zip:        " 43210 ",
	}.Normalize()

	if !reflect.DeepEqual(f.Categories, []string{"Tools"}) {
		t.Errorf("categories = %v", f.Categories)
	}
	if f.DatePreset != "saturday" {
		t.Errorf("date preset = %q", f.DatePreset)
	}
	if f.Zip != "43210" {
		t.Errorf("zip = %q", f.Zip)
	}
}
