package models

import (
	"context"
	"time"

	"github.com/bizsuite/erp_backend/config"
	"github.com/bizsuite/erp_backend/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StockMovement is one row of the append-only stock ledger. Qty is always a
// positive magnitude; the kind decides the direction. Rows are never updated
// or deleted, corrections are posted as compensating movements.
type StockMovement struct {
	ID            int               `gorm:"primary_key" json:"id"`
	BusinessId    string            `gorm:"index;size:64;not null" json:"businessId"`
	ProductId     int               `gorm:"index;not null" json:"productId"`
	Kind          StockMovementKind `gorm:"size:20;not null" json:"kind"`
	Qty           decimal.Decimal   `gorm:"type:decimal(20,4);not null" json:"qty"`
	DocumentNo    string            `gorm:"index;size:255" json:"documentNo"`
	Description   string            `gorm:"size:255" json:"description"`
	Actor         string            `gorm:"size:100" json:"actor"`
	CorrelationId string            `gorm:"index;size:64" json:"correlationId"`
	CreatedAt     time.Time         `json:"createdAt"`
}

func (m *StockMovement) BeforeUpdate(tx *gorm.DB) error {
	return utils.NewValidationError("stock movements are append-only")
}

func (m *StockMovement) BeforeDelete(tx *gorm.DB) error {
	return utils.NewValidationError("stock movements are append-only")
}

// SignedQty is the delta this movement contributes to the product's stock.
func (m *StockMovement) SignedQty() decimal.Decimal {
	if m.Kind.IsIncrease() {
		return m.Qty
	}
	return m.Qty.Neg()
}

// postStockMovement appends a ledger row and re-projects the product's stock
// in the same transaction. This is the only write path for both the ledger
// and the stock column, so the two can never drift apart.
func postStockMovement(tx *gorm.DB, ctx context.Context, businessId string, productId int, kind StockMovementKind, qty decimal.Decimal, documentNo string, description string) error {
	if !kind.Valid() {
		return utils.NewValidationError("unknown stock movement kind " + string(kind))
	}
	if !qty.IsPositive() {
		return utils.NewValidationError("stock movement qty must be positive")
	}

	actor, _ := utils.GetUserNameFromContext(ctx)
	movement := StockMovement{
		BusinessId:    businessId,
		ProductId:     productId,
		Kind:          kind,
		Qty:           qty,
		DocumentNo:    documentNo,
		Description:   description,
		Actor:         actor,
		CorrelationId: correlationIdFromContextOrNew(ctx),
	}
	if err := tx.WithContext(ctx).Create(&movement).Error; err != nil {
		config.LogError(config.GetLogger(), "stockMovement", "postStockMovement", "create", movement, err)
		return err
	}

	delta := qty
	if !kind.IsIncrease() {
		delta = qty.Neg()
	}
	return applyProductStockDelta(tx, ctx, businessId, productId, delta)
}

// GetStockMovements lists a tenant's ledger, newest first. A non-nil productId
// narrows it to one product's history.
func GetStockMovements(ctx context.Context, productId *int) ([]*StockMovement, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok {
		return nil, utils.NewValidationError("missing business id")
	}

	var movements []*StockMovement
	dbCtx := config.GetDB().WithContext(ctx).Where("business_id = ?", businessId)
	if productId != nil {
		dbCtx = dbCtx.Where("product_id = ?", *productId)
	}
	result := dbCtx.Order("created_at DESC, id DESC").Find(&movements)
	if result.Error != nil {
		config.LogError(config.GetLogger(), "stockMovement", "GetStockMovements", "find", productId, result.Error)
		return nil, result.Error
	}
	return movements, nil
}

func correlationIdFromContextOrNew(ctx context.Context) string {
	if correlationId, ok := utils.GetCorrelationIdFromContext(ctx); ok && correlationId != "" {
		return correlationId
	}
	return uuid.NewString()
}
