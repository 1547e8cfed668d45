package services_test

import (
	"testing"

	"kasir_pos/internal/services"

	"github.com/stretchr/testify/assert"
)

func TestComputeTotals_DineIn(t *testing.T) {
	lines := []services.PriceLine{
		{UnitPrice: 10000, UnitCost: 6000, Quantity: 2},
	}

	totals := services.ComputeTotals(lines, 10, 2000, true)

	assert.Equal(t, 20000.0, totals.Subtotal)
	assert.Equal(t, 2000.0, totals.TaxAmount)
	assert.Equal(t, 2000.0, totals.ServiceFee)
	assert.Equal(t, 24000.0, totals.Total)
	assert.Equal(t, 8000.0, totals.Profit)
}

func TestComputeTotals_NoServiceFee(t *testing.T) {
	lines := []services.PriceLine{
		{UnitPrice: 10000, UnitCost: 6000, Quantity: 2},
	}

	totals := services.ComputeTotals(lines, 10, 2000, false)

	assert.Equal(t, 0.0, totals.ServiceFee)
	assert.Equal(t, 22000.0, totals.Total)
}

func TestComputeTotals_TaxRounding(t *testing.T) {
	// 11% of 1500 = 165; 11% of 1450 = 159.5, rounds to 160.
	totals := services.ComputeTotals(
		[]services.PriceLine{{UnitPrice: 1450, UnitCost: 1000, Quantity: 1}}, 11, 0, false)

	assert.Equal(t, 160.0, totals.TaxAmount)
	assert.Equal(t, 1610.0, totals.Total)
}

func TestComputeTotals_TotalIdentity(t *testing.T) {
	cases := []struct {
		lines      []services.PriceLine
		taxPercent float64
		serviceFee float64
		applyFee   bool
	}{
		{[]services.PriceLine{{UnitPrice: 10000, UnitCost: 6000, Quantity: 2}}, 10, 2000, true},
		{[]services.PriceLine{{UnitPrice: 3333, UnitCost: 1111, Quantity: 3}, {UnitPrice: 7500, UnitCost: 5000, Quantity: 1}}, 11, 1500, true},
		{[]services.PriceLine{{UnitPrice: 999, UnitCost: 500, Quantity: 7}}, 0, 0, false},
		{nil, 10, 2000, true},
	}

	for _, tc := range cases {
		totals := services.ComputeTotals(tc.lines, tc.taxPercent, tc.serviceFee, tc.applyFee)
		assert.Equal(t, totals.Subtotal+totals.TaxAmount+totals.ServiceFee, totals.Total)
	}
}

func TestComputeTotals_EmptyLines(t *testing.T) {
	totals := services.ComputeTotals(nil, 10, 2000, true)

	assert.Equal(t, 0.0, totals.Subtotal)
	assert.Equal(t, 0.0, totals.TaxAmount)
	assert.Equal(t, 0.0, totals.Profit)
	// The flat fee still applies; an empty cart is rejected upstream
	// before pricing ever runs.
	assert.Equal(t, 2000.0, totals.ServiceFee)
}
