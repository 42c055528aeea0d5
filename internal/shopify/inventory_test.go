package shopify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildInventorySnapshot(t *testing.T) {
	tests := []struct {
		name         string
		variants     []AdminVariant
		wantInStock  bool
		wantLowStock bool
	}{
		{
			name: "plenty of stock",
			variants: []AdminVariant{
				{ID: 1, InventoryQuantity: 20},
				{ID: 2, InventoryQuantity: 15},
			},
			wantInStock:  true,
			wantLowStock: false,
		},
		{
			name: "low stock at exactly ten total",
			variants: []AdminVariant{
				{ID: 1, InventoryQuantity: 6},
				{ID: 2, InventoryQuantity: 4},
			},
			wantInStock:  true,
			wantLowStock: true,
		},
		{
			name: "eleven total is not low",
			variants: []AdminVariant{
				{ID: 1, InventoryQuantity: 11},
			},
			wantInStock:  true,
			wantLowStock: false,
		},
		{
			name: "sold out",
			variants: []AdminVariant{
				{ID: 1, InventoryQuantity: 0},
			},
			wantInStock:  false,
			wantLowStock: true,
		},
		{
			name: "zero stock but oversell policy",
			variants: []AdminVariant{
				{ID: 1, InventoryQuantity: 0, InventoryPolicy: "continue"},
			},
			wantInStock:  true,
			wantLowStock: true,
		},
		{
			name:         "no variants",
			variants:     nil,
			wantInStock:  false,
			wantLowStock: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snapshot := BuildInventorySnapshot(tt.variants, 0, 0)
			assert.Equal(t, tt.wantInStock, snapshot.InStock)
			assert.Equal(t, tt.wantLowStock, snapshot.LowStock)
			assert.Len(t, snapshot.Variants, len(tt.variants))
		})
	}
}

func TestBuildInventorySnapshotVariantFlags(t *testing.T) {
	snapshot := BuildInventorySnapshot([]AdminVariant{
		{ID: 1, InventoryQuantity: 5},
		{ID: 2, InventoryQuantity: 6},
		{ID: 3, InventoryQuantity: 0},
	}, 0, 0)

	assert.True(t, snapshot.Variants[0].InStock)
	assert.True(t, snapshot.Variants[0].LowStock, "five units is low for a variant")
	assert.False(t, snapshot.Variants[1].LowStock, "six units is not low")
	assert.False(t, snapshot.Variants[2].InStock)
}

func TestBuildInventorySnapshotCarriesPlan(t *testing.T) {
	snapshot := BuildInventorySnapshot([]AdminVariant{{ID: 1, InventoryQuantity: 50}}, 4242, 15)
	assert.Equal(t, int64(4242), snapshot.SellingPlanID)
	assert.Equal(t, float64(15), snapshot.DiscountAmount)
}
