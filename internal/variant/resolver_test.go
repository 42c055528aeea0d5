package variant

import (
	"net/url"
	"testing"
)

func testProduct() *Product {
	return &Product{
		ID:    100,
		Title: "Wine Glass",
		Slug:  "wine-glass",
		Options: []ProductOption{
			{Name: "Size", Position: 1, Values: []string{"Standard", "Large"}},
		},
		Variants: []Variant{
			{ID: 11, Title: "Large", Options: []Option{{Name: "Size", Position: 1, Value: "Large"}}},
			{ID: 10, Title: "Standard", Options: []Option{{Name: "Size", Position: 1, Value: "Standard"}}},
		},
	}
}

func TestDefaultVariant(t *testing.T) {
	p := testProduct()

	// The default follows the first option's first value, not variant order.
	got := DefaultVariant(p)
	if got == nil || got.ID != 10 {
		t.Fatalf("DefaultVariant() = %v, want variant 10", got)
	}
}

func TestDefaultVariantFallsBackToFirst(t *testing.T) {
	p := testProduct()
	p.Options[0].Values[0] = "Nonexistent"

	got := DefaultVariant(p)
	if got == nil || got.ID != 11 {
		t.Fatalf("DefaultVariant() = %v, want first variant 11", got)
	}
}

func TestDefaultVariantNoVariants(t *testing.T) {
	if got := DefaultVariant(&Product{}); got != nil {
		t.Fatalf("DefaultVariant() = %v, want nil", got)
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  int64
	}{
		{"no param resolves default", "", 10},
		{"explicit member", "variant=11", 11},
		{"unknown id falls back", "variant=999", 10},
		{"non-numeric falls back", "variant=abc", 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatal(err)
			}
			if got := Resolve(query, testProduct()); got != tt.want {
				t.Errorf("Resolve(%q) = %d, want %d", tt.query, got, tt.want)
			}
		})
	}
}

func TestResolveNoVariants(t *testing.T) {
	if got := Resolve(url.Values{}, &Product{}); got != 0 {
		t.Errorf("Resolve() = %d, want 0", got)
	}
}

type fakeNav struct {
	query url.Values
}

func (n *fakeNav) Query() url.Values         { return n.query }
func (n *fakeNav) ReplaceQuery(q url.Values) { n.query = q }

func TestSetActive(t *testing.T) {
	nav := &fakeNav{query: url.Values{"ref": []string{"email"}}}
	SetActive(nav, 11)

	if got := nav.query.Get("variant"); got != "11" {
		t.Errorf("variant param = %q, want 11", got)
	}
	if got := nav.query.Get("ref"); got != "email" {
		t.Errorf("existing param lost, ref = %q", got)
	}
}

func TestHasVariantSelector(t *testing.T) {
	p := testProduct()
	if !p.HasVariantSelector() {
		t.Error("expected selector for multi-value option")
	}

	single := &Product{Options: []ProductOption{{Name: "Size", Values: []string{"Standard"}}}}
	if single.HasVariantSelector() {
		t.Error("single-value option must not render a selector")
	}
}
