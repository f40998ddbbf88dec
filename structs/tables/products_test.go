package tables

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFinalPriceNoDiscount(t *testing.T) {
	p := &Product{BasePrice: 20000, DiscountType: DiscountNone, DiscountValue: 25}
	assert.Equal(t, uint64(20000), p.FinalPrice())
}

func TestFinalPricePercentage(t *testing.T) {
	p := &Product{BasePrice: 20000, DiscountType: DiscountPercentage, DiscountValue: 25}
	assert.Equal(t, uint64(15000), p.FinalPrice())
}

func TestFinalPricePercentageFullOff(t *testing.T) {
	p := &Product{BasePrice: 20000, DiscountType: DiscountPercentage, DiscountValue: 100}
	assert.Equal(t, uint64(0), p.FinalPrice())
}

func TestFinalPriceFixed(t *testing.T) {
	p := &Product{BasePrice: 20000, DiscountType: DiscountFixed, DiscountValue: 500}
	assert.Equal(t, uint64(19500), p.FinalPrice())
}

func TestFinalPriceFixedClampsAtZero(t *testing.T) {
	// A fixed discount larger than the base price must not wrap around.
	p := &Product{BasePrice: 20000, DiscountType: DiscountFixed, DiscountValue: 25000}
	assert.Equal(t, uint64(0), p.FinalPrice())
}

func TestFinalPriceUnknownTypeFallsBack(t *testing.T) {
	p := &Product{BasePrice: 20000, DiscountType: DiscountType("mystery"), DiscountValue: 50}
	assert.Equal(t, uint64(20000), p.FinalPrice())
}

func TestVariantMatchesTrimsLabels(t *testing.T) {
	v := &ProductVariant{Color: " Navy ", Size: "M "}
	assert.True(t, v.Matches("Navy", "M"))
	assert.False(t, v.Matches("navy", "M"))
	assert.False(t, v.Matches("Navy", "L"))
}

func TestVariantPurchasable(t *testing.T) {
	v := &ProductVariant{Stock: 5, IsAvailable: true}
	assert.True(t, v.Purchasable(5))
	assert.False(t, v.Purchasable(6))

	// A variant flagged unavailable cannot be purchased even with stock left.
	flagged := &ProductVariant{Stock: 5, IsAvailable: false}
	assert.False(t, flagged.Purchasable(1))

	// And a positive flag with no stock behind it does not sell either.
	empty := &ProductVariant{Stock: 0, IsAvailable: true}
	assert.False(t, empty.Purchasable(1))
}
