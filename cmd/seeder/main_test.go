package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDemoCatalog(t *testing.T) {
	codes := make(map[string]bool, len(sampleCategories))
	for _, c := range sampleCategories {
		require.NoError(t, c.Validate(), c.Code)
		codes[c.Code] = true
	}

	skus := make(map[string]bool, len(demoCatalog))
	for _, d := range demoCatalog {
		p, err := d.product()
		require.NoError(t, err, d.SKU)
		require.NoError(t, p.Validate(), d.SKU)

		assert.True(t, codes[d.Category], "%s uses unknown category %s", d.SKU, d.Category)
		assert.False(t, skus[d.SKU], "duplicate sku %s", d.SKU)
		assert.True(t, p.SalePrice.GreaterThan(p.BuyPrice), "%s sells below cost", d.SKU)
		assert.Positive(t, d.Stock)
		skus[d.SKU] = true
	}
}
