package models

import (
	"context"
	"fmt"
	"time"

	"github.com/bizsuite/erp_backend/config"
	"github.com/bizsuite/erp_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StockCount is a physical inventory count. Each line snapshots the recorded
// stock at creation time; completing the count posts the difference between
// counted and recorded quantities as stock adjustments.
type StockCount struct {
	ID            int                `gorm:"primary_key" json:"id"`
	BusinessId    string             `gorm:"index;size:64;not null" json:"businessId"`
	SequenceNo    int64              `gorm:"not null;default:0" json:"sequenceNo"`
	CountNumber   string             `gorm:"size:255;not null" json:"countNumber"`
	CountDate     time.Time          `gorm:"not null" json:"countDate"`
	Notes         string             `gorm:"size:255" json:"notes"`
	CurrentStatus StockCountStatus   `gorm:"size:20;not null" json:"currentStatus"`
	Details       []StockCountDetail `gorm:"foreignKey:StockCountId" json:"details"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

type StockCountDetail struct {
	ID           int             `gorm:"primary_key" json:"id"`
	StockCountId int             `gorm:"index;not null" json:"stockCountId"`
	ProductId    int             `gorm:"index;not null" json:"productId"`
	RecordedQty  decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"recordedQty"`
	CountedQty   decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"countedQty"`
}

type NewStockCount struct {
	CountDate time.Time            `json:"countDate" binding:"required"`
	Notes     string               `json:"notes"`
	Details   []NewStockCountDetail `json:"details" binding:"required,min=1,dive"`
}

type NewStockCountDetail struct {
	ProductId  int             `json:"productId" binding:"required"`
	CountedQty decimal.Decimal `json:"countedQty"`
}

func CreateStockCount(ctx context.Context, input *NewStockCount) (*StockCount, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok {
		return nil, utils.NewValidationError("missing business id")
	}
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}

	stockCount := StockCount{
		BusinessId:    businessId,
		CountDate:     input.CountDate,
		Notes:         input.Notes,
		CurrentStatus: StockCountStatusOpen,
	}
	for _, detail := range input.Details {
		if detail.CountedQty.IsNegative() {
			return nil, utils.NewValidationError("counted qty cannot be negative")
		}
		product, err := utils.FetchModel[Product](ctx, businessId, detail.ProductId)
		if err != nil {
			return nil, err
		}
		stockCount.Details = append(stockCount.Details, StockCountDetail{
			ProductId:   detail.ProductId,
			RecordedQty: product.Stock,
			CountedQty:  detail.CountedQty,
		})
	}

	seqNo, err := utils.GetSequence[StockCount](ctx, businessId)
	if err != nil {
		return nil, err
	}
	prefix, err := getTransactionPrefix(ctx, businessId, ModuleNameStockCount)
	if err != nil {
		return nil, err
	}
	stockCount.SequenceNo = seqNo
	stockCount.CountNumber = fmt.Sprintf("%s%d", prefix, seqNo)

	err = runInTransaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&stockCount).Error; err != nil {
			config.LogError(config.GetLogger(), "stockCount", "CreateStockCount", "create", input, err)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return utils.FetchModel[StockCount](ctx, businessId, stockCount.ID, "Details")
}

func GetStockCount(ctx context.Context, id int) (*StockCount, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok {
		return nil, utils.NewValidationError("missing business id")
	}
	return utils.FetchModel[StockCount](ctx, businessId, id, "Details")
}

type UpdateStockCountInput struct {
	CountDate *time.Time `json:"countDate"`
	Notes     *string    `json:"notes"`
}

// UpdateStockCount edits the header fields of an open count. A completed
// count is frozen.
func UpdateStockCount(ctx context.Context, id int, input *UpdateStockCountInput) (*StockCount, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok {
		return nil, utils.NewValidationError("missing business id")
	}

	err := runInTransaction(ctx, func(tx *gorm.DB) error {
		stockCount, err := utils.FetchModelForUpdate[StockCount](tx, ctx, businessId, id)
		if err != nil {
			return err
		}
		if stockCount.CurrentStatus == StockCountStatusCompleted {
			return utils.NewDocumentLocked("completed stock count cannot be modified")
		}
		updates := map[string]interface{}{}
		if input.CountDate != nil {
			updates["count_date"] = *input.CountDate
		}
		if input.Notes != nil {
			updates["notes"] = *input.Notes
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.WithContext(ctx).Model(&StockCount{}).
			Where("business_id = ? AND id = ?", businessId, id).
			Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return utils.FetchModel[StockCount](ctx, businessId, id, "Details")
}

// CompleteStockCount moves an open count to completed and posts one stock
// adjustment per line whose counted quantity differs from the recorded
// snapshot. The document, its adjustments and the stock re-projection commit
// or roll back as one unit. Completing an already completed count fails with
// a document-locked error and posts nothing.
func CompleteStockCount(ctx context.Context, id int) (*StockCount, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok {
		return nil, utils.NewValidationError("missing business id")
	}

	release, err := utils.BusinessLock(ctx, businessId, "stock", "stockCount", "CompleteStockCount")
	if err != nil {
		return nil, err
	}
	defer release()

	err = runInTransaction(ctx, func(tx *gorm.DB) error {
		stockCount, err := utils.FetchModelForUpdate[StockCount](tx, ctx, businessId, id)
		if err != nil {
			return err
		}
		oldStatus := stockCount.CurrentStatus
		if oldStatus == StockCountStatusCompleted {
			return utils.NewDocumentLocked("stock count " + stockCount.CountNumber + " is already completed")
		}
		if oldStatus != StockCountStatusOpen {
			return utils.NewInvalidStateTransition("stock count cannot be completed from status " + string(oldStatus))
		}

		if err := tx.WithContext(ctx).Model(&StockCount{}).
			Where("business_id = ? AND id = ?", businessId, id).
			Update("current_status", StockCountStatusCompleted).Error; err != nil {
			config.LogError(config.GetLogger(), "stockCount", "CompleteStockCount", "update status", id, err)
			return err
		}
		stockCount.CurrentStatus = StockCountStatusCompleted
		return ApplyStockCountStockForStatusTransition(tx, ctx, stockCount, oldStatus)
	})
	if err != nil {
		return nil, err
	}
	return utils.FetchModel[StockCount](ctx, businessId, id, "Details")
}
