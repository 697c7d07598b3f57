package services

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athebyme/shopify-product-service/internal/domain/models"
)

func variant(sku string, qty int, opts models.OptionAssignments) models.VariantSpec {
	return models.VariantSpec{
		Options:           opts,
		Price:             decimal.RequireFromString("19.99"),
		SKU:               sku,
		InventoryQuantity: qty,
	}
}

func TestSplitVariantsMatchesDefault(t *testing.T) {
	red := variant("TSHIRT-S-RED", 100, models.OptionAssignments{"Size": "S", "Color": "Red"})
	blue := variant("TSHIRT-S-BLUE", 50, models.OptionAssignments{"Size": "S", "Color": "Blue"})

	res, err := SplitVariants([]models.VariantSpec{red, blue}, models.OptionAssignments{"Color": "Red", "Size": "S"})
	require.NoError(t, err)

	assert.Equal(t, "TSHIRT-S-RED", res.Matched.SKU)
	require.Len(t, res.Remainder, 1)
	assert.Equal(t, "TSHIRT-S-BLUE", res.Remainder[0].SKU)
}

func TestSplitVariantsPreservesOrderAndSize(t *testing.T) {
	requested := []models.VariantSpec{
		variant("A", 1, models.OptionAssignments{"Size": "M"}),
		variant("B", 2, models.OptionAssignments{"Size": "S"}),
		variant("C", 3, models.OptionAssignments{"Size": "L"}),
		variant("D", 4, models.OptionAssignments{"Size": "XL"}),
	}

	res, err := SplitVariants(requested, models.OptionAssignments{"Size": "S"})
	require.NoError(t, err)

	assert.Equal(t, "B", res.Matched.SKU)
	assert.Len(t, res.Remainder, len(requested)-1)
	skus := make([]string, 0, len(res.Remainder))
	for _, v := range res.Remainder {
		skus = append(skus, v.SKU)
	}
	assert.Equal(t, []string{"A", "C", "D"}, skus)
}

func TestSplitVariantsSingleVariantLeavesEmptyRemainder(t *testing.T) {
	only := variant("ONLY", 7, models.OptionAssignments{"Title": "Default Title"})

	res, err := SplitVariants([]models.VariantSpec{only}, models.OptionAssignments{"Title": "Default Title"})
	require.NoError(t, err)

	assert.Equal(t, "ONLY", res.Matched.SKU)
	assert.NotNil(t, res.Remainder)
	assert.Empty(t, res.Remainder)
}

func TestSplitVariantsDuplicateMatchGoesToRemainder(t *testing.T) {
	first := variant("FIRST", 1, models.OptionAssignments{"Size": "S"})
	second := variant("SECOND", 2, models.OptionAssignments{"Size": "S"})

	res, err := SplitVariants([]models.VariantSpec{first, second}, models.OptionAssignments{"Size": "S"})
	require.NoError(t, err)

	assert.Equal(t, "FIRST", res.Matched.SKU)
	require.Len(t, res.Remainder, 1)
	assert.Equal(t, "SECOND", res.Remainder[0].SKU)
}

func TestSplitVariantsNoMatch(t *testing.T) {
	requested := []models.VariantSpec{
		variant("A", 1, models.OptionAssignments{"Size": "M", "Color": "Red"}),
		variant("B", 1, models.OptionAssignments{"Size": "S"}),
	}

	_, err := SplitVariants(requested, models.OptionAssignments{"Size": "S", "Color": "Red"})

	var rerr *ReconciliationError
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, "S", rerr.DefaultOptions["Size"])
	assert.Contains(t, err.Error(), "Color=Red, Size=S")
}

func TestSplitVariantsIsDeterministic(t *testing.T) {
	requested := []models.VariantSpec{
		variant("A", 1, models.OptionAssignments{"Size": "M", "Color": "Blue"}),
		variant("B", 2, models.OptionAssignments{"Color": "Red", "Size": "S"}),
	}
	defaults := models.OptionAssignments{"Size": "S", "Color": "Red"}

	first, err := SplitVariants(requested, defaults)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := SplitVariants(requested, defaults)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestDefaultOptionsOf(t *testing.T) {
	opts, err := DefaultOptionsOf(models.RemoteVariant{
		ID: "gid://shopify/ProductVariant/1",
		SelectedOptions: []models.SelectedOption{
			{Name: "Color", Value: "Red"},
			{Name: "Size", Value: "S"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, models.OptionAssignments{"Color": "Red", "Size": "S"}, opts)
}

func TestDefaultOptionsOfKeepsNamesVerbatim(t *testing.T) {
	opts, err := DefaultOptionsOf(models.RemoteVariant{
		SelectedOptions: []models.SelectedOption{{Name: "Color ", Value: "Red"}},
	})
	require.NoError(t, err)

	res, err := SplitVariants([]models.VariantSpec{
		variant("RED", 1, models.OptionAssignments{"Color ": "Red"}),
	}, opts)
	require.NoError(t, err)
	assert.Equal(t, "RED", res.Matched.SKU)
	assert.Empty(t, res.Remainder)
}

func TestDefaultOptionsOfRejectsMalformedVariant(t *testing.T) {
	tests := []struct {
		name    string
		options []models.SelectedOption
	}{
		{"no options", nil},
		{"unnamed option", []models.SelectedOption{{Name: " ", Value: "Red"}}},
		{"duplicate option", []models.SelectedOption{{Name: "Size", Value: "S"}, {Name: "Size", Value: "M"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DefaultOptionsOf(models.RemoteVariant{SelectedOptions: tt.options})

			var rerr *RemoteResponseError
			require.True(t, errors.As(err, &rerr))
			assert.Equal(t, StageReconciled, rerr.Stage)
		})
	}
}
