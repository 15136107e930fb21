package models

import (
	"github.com/bizsuite/erp_backend/utils"
	"github.com/shopspring/decimal"
)

// lineAmounts carries the derived money columns of one document line.
type lineAmounts struct {
	DiscountAmount decimal.Decimal
	TaxAmount      decimal.Decimal
	TotalAmount    decimal.Decimal
}

// computeLineAmounts derives a line's discount, tax and total from its raw
// inputs. Discount applies to qty*rate, tax applies to the discounted amount.
func computeLineAmounts(qty decimal.Decimal, unitRate decimal.Decimal, discount decimal.Decimal, discountType *DiscountType, taxRate decimal.Decimal) lineAmounts {
	subTotal := qty.Mul(unitRate)

	dt := ""
	if discountType != nil {
		dt = string(*discountType)
	}
	discountAmount := utils.CalculateDiscountAmount(subTotal, discount, dt)

	taxable := subTotal.Sub(discountAmount)
	taxAmount := utils.CalculateTaxAmount(taxable, taxRate)

	return lineAmounts{
		DiscountAmount: discountAmount,
		TaxAmount:      taxAmount,
		TotalAmount:    taxable.Add(taxAmount),
	}
}
