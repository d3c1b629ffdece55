package orders

import "github.com/shopspring/decimal"

// Pricing computes delivery fee and totals.
type Pricing struct {
	// FreeDeliveryThreshold is the subtotal from which delivery is free.
	FreeDeliveryThreshold decimal.Decimal
	DeliveryFee           decimal.Decimal
}

// DefaultPricing waives the 5.00 fee from a 50.00 subtotal.
func DefaultPricing() Pricing {
	return Pricing{
		FreeDeliveryThreshold: decimal.NewFromInt(50),
		DeliveryFee:           decimal.NewFromInt(5),
	}
}

// Quote returns subtotal, delivery fee and total rounded to cents.
func (p Pricing) Quote(items []Item) (subtotal, fee, total decimal.Decimal) {
	subtotal = decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.Total())
	}
	subtotal = subtotal.Round(2)
	fee = p.FeeFor(subtotal)
	return subtotal, fee, subtotal.Add(fee)
}

// FeeFor returns the delivery fee owed for a subtotal.
func (p Pricing) FeeFor(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(p.FreeDeliveryThreshold) {
		return decimal.Zero
	}
	return p.DeliveryFee.Round(2)
}
