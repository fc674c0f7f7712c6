package order

import "github.com/shopspring/decimal"

// Summary is the displayed order breakdown. Every field is derived from the
// order snapshot alone, so the same order always produces the same summary.
type Summary struct {
	Subtotal              decimal.Decimal
	Discount              decimal.Decimal
	SubtotalAfterDiscount decimal.Decimal
	Tax                   decimal.Decimal
	DeliveryCharge        decimal.Decimal
	ExtraDeliveryCharge   decimal.Decimal
	OtherCharges          decimal.Decimal
	Total                 decimal.Decimal
}

// Summarize computes the order summary in a fixed sequence:
//
//  1. subtotal = sum(quantity * price) over the items
//  2. subtotalAfterDiscount = subtotal - discount
//  3. tax is taken as an absolute amount
//  4. total = subtotalAfterDiscount + tax + delivery + extra delivery + other
//
// The discount step is deliberately not clamped at zero: a discount larger
// than the subtotal yields a negative intermediate value and a negative
// total, matching the behavior the admin screens have always shown. It is a
// total function; absent charges are zero-valued and never fail.
func Summarize(items []Item, ch Charges) Summary {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}

	afterDiscount := subtotal.Sub(ch.Discount)

	total := afterDiscount.
		Add(ch.Tax).
		Add(ch.DeliveryCharge).
		Add(ch.ExtraDeliveryCharge).
		Add(ch.OtherCharges)

	return Summary{
		Subtotal:              subtotal,
		Discount:              ch.Discount,
		SubtotalAfterDiscount: afterDiscount,
		Tax:                   ch.Tax,
		DeliveryCharge:        ch.DeliveryCharge,
		ExtraDeliveryCharge:   ch.ExtraDeliveryCharge,
		OtherCharges:          ch.OtherCharges,
		Total:                 total,
	}
}

// Summary returns the computed breakdown for this order.
func (o *Order) Summary() Summary {
	return Summarize(o.Items, o.Charges)
}
