package utils

import (
	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// CalculateDiscountAmount computes a discount over subTotal.
// discountType "P" treats discount as a percentage, "A" as an absolute amount.
func CalculateDiscountAmount(subTotal decimal.Decimal, discount decimal.Decimal, discountType string) decimal.Decimal {
	if discount.IsZero() {
		return decimal.Zero
	}
	if discountType == "P" {
		return subTotal.Mul(discount).Div(oneHundred)
	}
	return discount
}

// CalculateTaxAmount computes tax at taxRate (percent) over the
// discount-adjusted amount.
func CalculateTaxAmount(amount decimal.Decimal, taxRate decimal.Decimal) decimal.Decimal {
	if taxRate.IsZero() {
		return decimal.Zero
	}
	return amount.Mul(taxRate).Div(oneHundred)
}
