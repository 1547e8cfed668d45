package services

import "math"

// PriceLine is one cart line as seen by the pricing calculator. UnitPrice is
// the effective (promo-adjusted) sale price captured for the sale.
type PriceLine struct {
	UnitPrice float64
	UnitCost  float64
	Quantity  int
}

type Totals struct {
	Subtotal   float64
	TaxAmount  float64
	ServiceFee float64
	Total      float64
	Profit     float64
}

// ComputeTotals derives all monetary figures of a sale from its lines and
// the settings snapshot. Pure function: same inputs, same outputs.
//
//	subtotal = sum(unitPrice * qty)
//	tax      = round(subtotal * taxPercent / 100)
//	fee      = serviceFee if applyServiceFee else 0
//	total    = subtotal + tax + fee
//	profit   = sum((unitPrice - unitCost) * qty)
func ComputeTotals(lines []PriceLine, taxPercent, serviceFee float64, applyServiceFee bool) Totals {
	var totals Totals

	for _, line := range lines {
		qty := float64(line.Quantity)
		totals.Subtotal += line.UnitPrice * qty
		totals.Profit += (line.UnitPrice - line.UnitCost) * qty
	}

	totals.TaxAmount = math.Round(totals.Subtotal * taxPercent / 100)
	if applyServiceFee {
		totals.ServiceFee = serviceFee
	}
	totals.Total = totals.Subtotal + totals.TaxAmount + totals.ServiceFee

	return totals
}
