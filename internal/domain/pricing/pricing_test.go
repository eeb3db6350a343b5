package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEffectiveUnitPrice(t *testing.T) {
	tests := []struct {
		name     string
		price    int64
		discount Discount
		want     int64
	}{
		{"no discount for customers", 10000, Discount{}, 10000},
		{"no discount for zero rate partners", 10000, Discount{Partner: true, Rate: 0}, 10000},
		{"partner rate applied", 10000, Discount{Partner: true, Rate: 10}, 9000},
		{"partner rate 25", 10000, Discount{Partner: true, Rate: 25}, 7500},
		{"full discount", 10000, Discount{Partner: true, Rate: 100}, 0},
		{"rate above 100 clamps to zero price", 10000, Discount{Partner: true, Rate: 150}, 0},
		{"negative rate ignored", 10000, Discount{Partner: true, Rate: -5}, 10000},
		{"negative price clamped", -500, Discount{}, 0},
		{"zero price stays zero", 0, Discount{Partner: true, Rate: 50}, 0},
		{"odd amount rounds down", 999, Discount{Partner: true, Rate: 10}, 899},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EffectiveUnitPrice(tt.price, tt.discount))
		})
	}
}

func TestEffectiveUnitPriceNeverExceedsListPrice(t *testing.T) {
	prices := []int64{0, 1, 99, 100, 12345, 1000000}

	for _, price := range prices {
		for rate := 0; rate <= 100; rate += 5 {
			effective := EffectiveUnitPrice(price, Discount{Partner: true, Rate: rate})
			assert.LessOrEqual(t, effective, price, "price %d rate %d", price, rate)
			assert.GreaterOrEqual(t, effective, int64(0), "price %d rate %d", price, rate)
		}
	}
}

func TestQuoteEmptyCart(t *testing.T) {
	totals := Quote(nil, Discount{Partner: true, Rate: 20})

	assert.Equal(t, 0, totals.ItemCount)
	assert.Equal(t, 0, totals.TotalQuantity)
	assert.Equal(t, int64(0), totals.Subtotal)
	assert.Equal(t, int64(0), totals.DiscountAmount)
	assert.Equal(t, int64(0), totals.Total)
}

func TestQuotePartnerDiscount(t *testing.T) {
	// Two lines: 100 x2 and 50 x1 at a 10% partner rate.
	lines := []Line{
		{UnitPrice: 100, Quantity: 2},
		{UnitPrice: 50, Quantity: 1},
	}

	totals := Quote(lines, Discount{Partner: true, Rate: 10})

	assert.Equal(t, 2, totals.ItemCount)
	assert.Equal(t, 3, totals.TotalQuantity)
	assert.Equal(t, int64(250), totals.Subtotal)
	assert.Equal(t, int64(25), totals.DiscountAmount)
	assert.Equal(t, int64(225), totals.Total)
}

func TestQuoteWithoutDiscountTotalEqualsSubtotal(t *testing.T) {
	lines := []Line{
		{UnitPrice: 1999, Quantity: 3},
		{UnitPrice: 4500, Quantity: 1},
	}

	totals := Quote(lines, None())

	assert.Equal(t, totals.Subtotal, totals.Total)
	assert.Equal(t, int64(0), totals.DiscountAmount)
	assert.Equal(t, int64(1999*3+4500), totals.Total)
}

func TestQuoteTotalsAreConsistent(t *testing.T) {
	lines := []Line{
		{UnitPrice: 333, Quantity: 7},
		{UnitPrice: 101, Quantity: 2},
		{UnitPrice: 89999, Quantity: 1},
	}

	for rate := 0; rate <= 100; rate++ {
		totals := Quote(lines, Discount{Partner: true, Rate: rate})
		assert.Equal(t, totals.Subtotal-totals.DiscountAmount, totals.Total, "rate %d", rate)
		assert.LessOrEqual(t, totals.Total, totals.Subtotal, "rate %d", rate)
	}
}
