package models

import (
	"context"
	"time"

	"github.com/bizsuite/erp_backend/config"
	"github.com/bizsuite/erp_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID            int             `gorm:"primary_key" json:"id"`
	BusinessId    string          `gorm:"index;size:64;not null" json:"businessId"`
	Name          string          `gorm:"size:100;not null" json:"name"`
	Sku           string          `gorm:"size:100" json:"sku"`
	Description   string          `gorm:"size:255" json:"description"`
	SalesPrice    decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"salesPrice"`
	PurchasePrice decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"purchasePrice"`
	// Stock is a projection of the stock movement ledger. It is mutated only
	// through applyProductStockDelta, inside the same transaction that writes
	// the ledger row.
	Stock     decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"stock"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

type NewProduct struct {
	Name          string          `json:"name" binding:"required"`
	Sku           string          `json:"sku"`
	Description   string          `json:"description"`
	SalesPrice    decimal.Decimal `json:"salesPrice"`
	PurchasePrice decimal.Decimal `json:"purchasePrice"`
	OpeningStock  decimal.Decimal `json:"openingStock"`
}

func CreateProduct(ctx context.Context, input *NewProduct) (*Product, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok {
		return nil, utils.NewValidationError("missing business id")
	}
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	if input.Sku != "" {
		if err := utils.ValidateUnique[Product](ctx, businessId, "sku", input.Sku, 0); err != nil {
			return nil, err
		}
	}
	if input.OpeningStock.IsNegative() {
		return nil, utils.NewValidationError("opening stock cannot be negative")
	}

	product := Product{
		BusinessId:    businessId,
		Name:          input.Name,
		Sku:           input.Sku,
		Description:   input.Description,
		SalesPrice:    input.SalesPrice,
		PurchasePrice: input.PurchasePrice,
	}

	err := runInTransaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&product).Error; err != nil {
			config.LogError(config.GetLogger(), "product", "CreateProduct", "create", input, err)
			return err
		}
		// Opening stock goes through the ledger so that the projection stays
		// the sum of its movements from day one.
		if input.OpeningStock.IsPositive() {
			return postStockMovement(tx, ctx, businessId, product.ID,
				StockMovementKindAdjustmentInc, input.OpeningStock,
				"", "opening stock")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return utils.FetchModel[Product](ctx, businessId, product.ID)
}

func GetProduct(ctx context.Context, id int) (*Product, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok {
		return nil, utils.NewValidationError("missing business id")
	}
	return utils.FetchModel[Product](ctx, businessId, id)
}

func GetProducts(ctx context.Context) ([]*Product, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok {
		return nil, utils.NewValidationError("missing business id")
	}
	return utils.FetchAllModels[Product](ctx, businessId)
}

// applyProductStockDelta re-projects a ledger delta onto the product's stock
// column. The row is locked first so concurrent postings serialize, then the
// increment happens in SQL to avoid read-modify-write races. Negative stock is
// allowed unless strict validation is switched on.
func applyProductStockDelta(tx *gorm.DB, ctx context.Context, businessId string, productId int, delta decimal.Decimal) error {
	product, err := utils.FetchModelForUpdate[Product](tx, ctx, businessId, productId)
	if err != nil {
		return err
	}
	if config.StrictStockValidation() && product.Stock.Add(delta).IsNegative() {
		return utils.NewValidationError("insufficient stock for product " + product.Name)
	}
	result := tx.WithContext(ctx).Model(&Product{}).
		Where("business_id = ? AND id = ?", businessId, productId).
		Update("stock", gorm.Expr("stock + ?", delta))
	if result.Error != nil {
		config.LogError(config.GetLogger(), "product", "applyProductStockDelta", "update", productId, result.Error)
		return result.Error
	}
	return nil
}
