package models

import (
	"context"

	"gorm.io/gorm"
)

// ApplyInvoiceStockForCreation posts one stock movement per product line of a
// freshly created invoice: sale movements (stock out) for sales invoices,
// purchase movements (stock in) for purchase invoices. Free-text lines carry
// no stock. Invoices created by offer conversion never pass through here.
func ApplyInvoiceStockForCreation(tx *gorm.DB, ctx context.Context, invoice *Invoice) error {
	kind := StockMovementKindSale
	description := "sales invoice posted"
	if invoice.InvoiceType == InvoiceTypePurchase {
		kind = StockMovementKindPurchase
		description = "purchase invoice posted"
	}

	for _, detail := range invoice.Details {
		if detail.ProductId == 0 {
			continue
		}
		err := postStockMovement(tx, ctx, invoice.BusinessId, detail.ProductId,
			kind, detail.DetailQty, invoice.InvoiceNumber, description)
		if err != nil {
			return err
		}
	}
	return nil
}
