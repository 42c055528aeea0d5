package shopify

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

// Global IDs travel base64-encoded on the 2021-10 wire, e.g.
// base64("gid://shopify/ProductVariant/123"). Newer API versions send the
// raw gid, so decoding accepts both forms.

const (
	variantGIDPrefix     = "gid://shopify/ProductVariant/"
	sellingPlanGIDPrefix = "gid://shopify/SellingPlan/"
	productGIDPrefix     = "gid://shopify/Product/"
)

// EncodeVariantGID builds the encoded merchandise id for a numeric variant id.
func EncodeVariantGID(id int64) string {
	return encodeGID(variantGIDPrefix, id)
}

// EncodeSellingPlanGID builds the encoded selling plan id.
func EncodeSellingPlanGID(id int64) string {
	return encodeGID(sellingPlanGIDPrefix, id)
}

// DecodeVariantGID extracts the numeric variant id from an encoded or raw gid.
func DecodeVariantGID(s string) (int64, error) {
	return decodeGID(variantGIDPrefix, s)
}

// DecodeSellingPlanGID extracts the numeric selling plan id.
func DecodeSellingPlanGID(s string) (int64, error) {
	return decodeGID(sellingPlanGIDPrefix, s)
}

// DecodeProductGID extracts the numeric product id.
func DecodeProductGID(s string) (int64, error) {
	return decodeGID(productGIDPrefix, s)
}

func encodeGID(prefix string, id int64) string {
	return base64.StdEncoding.EncodeToString([]byte(prefix + strconv.FormatInt(id, 10)))
}

func decodeGID(prefix, s string) (int64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty gid")
	}

	raw := s
	if !strings.HasPrefix(raw, "gid://") {
		decoded, err := base64Decode(s)
		if err != nil {
			return 0, fmt.Errorf("decode gid %q: %w", s, err)
		}
		raw = decoded
	}

	rest, ok := strings.CutPrefix(raw, prefix)
	if !ok {
		return 0, fmt.Errorf("gid %q does not have prefix %q", raw, prefix)
	}

	// Query-style suffixes may follow the numeric id.
	if i := strings.IndexByte(rest, '?'); i >= 0 {
		rest = rest[:i]
	}

	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse gid id %q: %w", rest, err)
	}
	return id, nil
}

func base64Decode(s string) (string, error) {
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding,
		base64.URLEncoding,
		base64.RawStdEncoding,
		base64.RawURLEncoding,
	} {
		if b, err := enc.DecodeString(s); err == nil {
			return string(b), nil
		}
	}
	return "", fmt.Errorf("not valid base64")
}
