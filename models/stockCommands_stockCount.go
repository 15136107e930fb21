package models

import (
	"context"

	"gorm.io/gorm"
)

// ApplyStockCountStockForStatusTransition posts the stock side effects of a
// stock count status change. It diffs the old and new status so re-entering
// the same status is a no-op, which keeps retried transactions from posting
// twice.
func ApplyStockCountStockForStatusTransition(tx *gorm.DB, ctx context.Context, stockCount *StockCount, oldStatus StockCountStatus) error {
	newStatus := stockCount.CurrentStatus
	if oldStatus == newStatus {
		return nil
	}
	if !(oldStatus == StockCountStatusOpen && newStatus == StockCountStatusCompleted) {
		return nil
	}

	details := stockCount.Details
	if len(details) == 0 {
		if err := tx.WithContext(ctx).
			Where("stock_count_id = ?", stockCount.ID).
			Find(&details).Error; err != nil {
			return err
		}
	}

	for _, detail := range details {
		delta := detail.CountedQty.Sub(detail.RecordedQty)
		if delta.IsZero() {
			continue
		}
		kind := StockMovementKindAdjustmentInc
		if delta.IsNegative() {
			kind = StockMovementKindAdjustmentDec
		}
		err := postStockMovement(tx, ctx, stockCount.BusinessId, detail.ProductId,
			kind, delta.Abs(), stockCount.CountNumber, "stock count adjustment")
		if err != nil {
			return err
		}
	}
	return nil
}
