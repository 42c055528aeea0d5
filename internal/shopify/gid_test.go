package shopify

import (
	"encoding/base64"
	"testing"
)

func TestVariantGIDRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		id   int64
	}{
		{"small id", 42},
		{"large id", 39531635867813},
		{"single digit", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded := EncodeVariantGID(tt.id)
			decoded, err := DecodeVariantGID(encoded)
			if err != nil {
				t.Fatalf("DecodeVariantGID() error = %v", err)
			}
			if decoded != tt.id {
				t.Errorf("DecodeVariantGID() = %d, want %d", decoded, tt.id)
			}
		})
	}
}

func TestDecodeVariantGID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{
			name:  "raw gid",
			input: "gid://shopify/ProductVariant/12345",
			want:  12345,
		},
		{
			name:  "base64 std encoding",
			input: base64.StdEncoding.EncodeToString([]byte("gid://shopify/ProductVariant/12345")),
			want:  12345,
		},
		{
			name:  "base64 without padding",
			input: base64.RawStdEncoding.EncodeToString([]byte("gid://shopify/ProductVariant/777")),
			want:  777,
		},
		{
			name:  "query suffix after id",
			input: "gid://shopify/ProductVariant/12345?checkout=abc",
			want:  12345,
		},
		{
			name:    "empty",
			input:   "",
			wantErr: true,
		},
		{
			name:    "wrong resource type",
			input:   "gid://shopify/Product/12345",
			wantErr: true,
		},
		{
			name:    "not base64 and not a gid",
			input:   "!!!not-valid!!!",
			wantErr: true,
		},
		{
			name:    "non-numeric id",
			input:   "gid://shopify/ProductVariant/abc",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeVariantGID(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("DecodeVariantGID(%q) expected error, got %d", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeVariantGID(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("DecodeVariantGID(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestDecodeSellingPlanGID(t *testing.T) {
	encoded := EncodeSellingPlanGID(998877)
	got, err := DecodeSellingPlanGID(encoded)
	if err != nil {
		t.Fatalf("DecodeSellingPlanGID() error = %v", err)
	}
	if got != 998877 {
		t.Errorf("DecodeSellingPlanGID() = %d, want 998877", got)
	}

	// A variant gid must not decode as a selling plan.
	if _, err := DecodeSellingPlanGID(EncodeVariantGID(998877)); err == nil {
		t.Error("expected error decoding variant gid as selling plan")
	}
}

func TestDecodeProductGID(t *testing.T) {
	got, err := DecodeProductGID("gid://shopify/Product/654321")
	if err != nil {
		t.Fatalf("DecodeProductGID() error = %v", err)
	}
	if got != 654321 {
		t.Errorf("DecodeProductGID() = %d, want 654321", got)
	}
}
