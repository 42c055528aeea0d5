package variant

import (
	"net/url"
	"strconv"
)

// queryParam is the navigation key carrying the selected variant.
const queryParam = "variant"

// Navigation abstracts the browser location so resolution can run
// headless. ReplaceQuery is a shallow rewrite: same path, new query, no
// history-stack growth.
type Navigation interface {
	Query() url.Values
	ReplaceQuery(url.Values)
}

// DefaultVariant picks the variant matching the product's first declared
// option's first value. Falls back to the first variant, nil when the
// product has none.
func DefaultVariant(p *Product) *Variant {
	if len(p.Variants) == 0 {
		return nil
	}

	if len(p.Options) > 0 && len(p.Options[0].Values) > 0 {
		want := Option{
			Name:     p.Options[0].Name,
			Position: p.Options[0].Position,
			Value:    p.Options[0].Values[0],
		}
		for i := range p.Variants {
			if hasOption(p.Variants[i].Options, want) {
				return &p.Variants[i]
			}
		}
	}

	return &p.Variants[0]
}

// Resolve derives the active variant id: the navigation param when it
// names a member of the product's variant set, otherwise the default.
// Returns 0 for a product with no variants.
func Resolve(query url.Values, p *Product) int64 {
	fallback := DefaultVariant(p)
	if fallback == nil {
		return 0
	}

	raw := query.Get(queryParam)
	if raw == "" {
		return fallback.ID
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || p.FindVariant(id) == nil {
		return fallback.ID
	}
	return id
}

// SetActive rewrites the navigation state to select a variant.
func SetActive(nav Navigation, id int64) {
	q := nav.Query()
	q.Set(queryParam, strconv.FormatInt(id, 10))
	nav.ReplaceQuery(q)
}

func hasOption(options []Option, want Option) bool {
	for _, opt := range options {
		if opt == want {
			return true
		}
	}
	return false
}
