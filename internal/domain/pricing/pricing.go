// internal/domain/pricing/pricing.go
package pricing

// Discount describes the role-based discount applied to catalog prices.
// Only partner accounts carry a discount; Rate is a percentage in [0,100].
type Discount struct {
	Partner bool `json:"partner"`
	Rate    int  `json:"rate"`
}

// None returns a zero discount, used for customer and admin carts.
func None() Discount {
	return Discount{}
}

// Line is a single priced cart line: a unit price and a quantity.
type Line struct {
	UnitPrice int64
	Quantity  int
}

// Totals represents calculated cart totals. All amounts are in minor
// currency units. Total excludes shipping, which is settled at fulfilment.
type Totals struct {
	ItemCount      int   `json:"item_count"`      // Number of unique lines
	TotalQuantity  int   `json:"total_quantity"`  // Sum of all quantities
	Subtotal       int64 `json:"subtotal"`        // Total at list price
	DiscountAmount int64 `json:"discount_amount"` // Subtotal minus discounted total
	Total          int64 `json:"total"`           // Final total at effective prices
}

// EffectiveUnitPrice returns the unit price after the role-based discount.
// Non-partner discounts and rates outside (0,100] leave the price unchanged;
// a rate above 100 is clamped so the result is never negative.
func EffectiveUnitPrice(price int64, d Discount) int64 {
	if price < 0 {
		return 0
	}
	if !d.Partner || d.Rate <= 0 {
		return price
	}

	rate := d.Rate
	if rate > 100 {
		rate = 100
	}

	return price * int64(100-rate) / 100
}

// Quote computes cart totals over the given lines. Totals are derived on
// every call and never cached, so they cannot drift from the line items.
func Quote(lines []Line, d Discount) Totals {
	var totals Totals

	totals.ItemCount = len(lines)

	for _, line := range lines {
		totals.TotalQuantity += line.Quantity
		totals.Subtotal += line.UnitPrice * int64(line.Quantity)
		totals.Total += EffectiveUnitPrice(line.UnitPrice, d) * int64(line.Quantity)
	}

	totals.DiscountAmount = totals.Subtotal - totals.Total

	return totals
}
