package models

import (
	"context"

	"gorm.io/gorm"
)

// ApplyPurchaseOrderStockForStatusTransition posts the stock side effects of
// a purchase order status change. Only the pending-to-received edge posts;
// every other transition, including re-entering received, posts nothing.
// Lines without a product (free-text lines) carry no stock.
func ApplyPurchaseOrderStockForStatusTransition(tx *gorm.DB, ctx context.Context, order *PurchaseOrder, oldStatus PurchaseOrderStatus) error {
	newStatus := order.CurrentStatus
	if oldStatus == newStatus {
		return nil
	}
	if !(oldStatus == PurchaseOrderStatusPending && newStatus == PurchaseOrderStatusReceived) {
		return nil
	}

	details := order.Details
	if len(details) == 0 {
		if err := tx.WithContext(ctx).
			Where("purchase_order_id = ?", order.ID).
			Find(&details).Error; err != nil {
			return err
		}
	}

	for _, detail := range details {
		if detail.ProductId == 0 {
			continue
		}
		err := postStockMovement(tx, ctx, order.BusinessId, detail.ProductId,
			StockMovementKindPurchase, detail.DetailQty, order.OrderNumber, "purchase order received")
		if err != nil {
			return err
		}
	}
	return nil
}
