package shopify

import (
	"context"
	"net/url"
)

// UTMParams are the attribution params forwarded to cartCreate so the
// checkout keeps the campaign that brought the shopper in.
var UTMParams = []string{
	"utm_source",
	"utm_medium",
	"utm_campaign",
	"utm_term",
	"utm_content",
}

type utmContextKey struct{}

// WithUTM attaches attribution params to the context. The client appends
// them to the cartCreate endpoint only; every other operation ignores them.
func WithUTM(ctx context.Context, params url.Values) context.Context {
	if len(params) == 0 {
		return ctx
	}
	return context.WithValue(ctx, utmContextKey{}, params)
}

func utmFromContext(ctx context.Context) url.Values {
	params, _ := ctx.Value(utmContextKey{}).(url.Values)
	return params
}
