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

type PurchaseOrder struct {
	ID                       int                   `gorm:"primary_key" json:"id"`
	BusinessId               string                `gorm:"index;size:64;not null" json:"businessId"`
	SupplierId               int                   `gorm:"index" json:"supplierId"`
	SequenceNo               int64                 `gorm:"not null;default:0" json:"sequenceNo"`
	OrderNumber              string                `gorm:"size:255;not null" json:"orderNumber"`
	OrderDate                time.Time             `gorm:"not null" json:"orderDate"`
	ExpectedDeliveryDate     *time.Time            `json:"expectedDeliveryDate"`
	Notes                    string                `gorm:"size:255" json:"notes"`
	CurrentStatus            PurchaseOrderStatus   `gorm:"size:20;not null" json:"currentStatus"`
	Details                  []PurchaseOrderDetail `gorm:"foreignKey:PurchaseOrderId" json:"details"`
	OrderSubtotal            decimal.Decimal       `gorm:"type:decimal(20,4);not null;default:0" json:"orderSubtotal"`
	OrderTotalDiscountAmount decimal.Decimal       `gorm:"type:decimal(20,4);not null;default:0" json:"orderTotalDiscountAmount"`
	OrderTotalTaxAmount      decimal.Decimal       `gorm:"type:decimal(20,4);not null;default:0" json:"orderTotalTaxAmount"`
	OrderTotalAmount         decimal.Decimal       `gorm:"type:decimal(20,4);not null;default:0" json:"orderTotalAmount"`
	CreatedAt                time.Time             `json:"createdAt"`
	UpdatedAt                time.Time             `json:"updatedAt"`
}

type PurchaseOrderDetail struct {
	ID                   int             `gorm:"primary_key" json:"id"`
	PurchaseOrderId      int             `gorm:"index;not null" json:"purchaseOrderId"`
	ProductId            int             `gorm:"index" json:"productId"`
	Name                 string          `gorm:"size:255;not null" json:"name"`
	DetailQty            decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"detailQty"`
	DetailUnitRate       decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"detailUnitRate"`
	DetailDiscount       decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"detailDiscount"`
	DetailDiscountType   *DiscountType   `gorm:"size:1" json:"detailDiscountType"`
	DetailDiscountAmount decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"detailDiscountAmount"`
	DetailTaxRate        decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"detailTaxRate"`
	DetailTaxAmount      decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"detailTaxAmount"`
	DetailTotalAmount    decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"detailTotalAmount"`
}

type NewPurchaseOrder struct {
	SupplierId           int                      `json:"supplierId"`
	OrderDate            time.Time                `json:"orderDate" binding:"required"`
	ExpectedDeliveryDate *time.Time               `json:"expectedDeliveryDate"`
	Notes                string                   `json:"notes"`
	Details              []NewPurchaseOrderDetail `json:"details" binding:"required,min=1,dive"`
}

type NewPurchaseOrderDetail struct {
	ProductId          int             `json:"productId"`
	Name               string          `json:"name"`
	DetailQty          decimal.Decimal `json:"detailQty" binding:"required"`
	DetailUnitRate     decimal.Decimal `json:"detailUnitRate"`
	DetailDiscount     decimal.Decimal `json:"detailDiscount"`
	DetailDiscountType *DiscountType   `json:"detailDiscountType"`
	DetailTaxRate      decimal.Decimal `json:"detailTaxRate"`
}

func CreatePurchaseOrder(ctx context.Context, input *NewPurchaseOrder) (*PurchaseOrder, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok {
		return nil, utils.NewValidationError("missing business id")
	}
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	if input.SupplierId != 0 {
		supplier, err := utils.FetchModel[Account](ctx, businessId, input.SupplierId)
		if err != nil {
			return nil, err
		}
		if supplier.Type != AccountTypeSupplier {
			return nil, utils.NewValidationError("account " + supplier.Name + " is not a supplier")
		}
	}

	order := PurchaseOrder{
		BusinessId:           businessId,
		SupplierId:           input.SupplierId,
		OrderDate:            input.OrderDate,
		ExpectedDeliveryDate: input.ExpectedDeliveryDate,
		Notes:                input.Notes,
		CurrentStatus:        PurchaseOrderStatusPending,
	}
	for _, line := range input.Details {
		if !line.DetailQty.IsPositive() {
			return nil, utils.NewValidationError("order line qty must be positive")
		}
		name := line.Name
		if line.ProductId != 0 {
			if name == "" {
				product, err := utils.FetchModel[Product](ctx, businessId, line.ProductId)
				if err != nil {
					return nil, err
				}
				name = product.Name
			} else if err := utils.ValidateResourceId[Product](ctx, businessId, line.ProductId); err != nil {
				return nil, err
			}
		}
		if name == "" {
			return nil, utils.NewValidationError("order line needs a product or a name")
		}

		amounts := computeLineAmounts(line.DetailQty, line.DetailUnitRate,
			line.DetailDiscount, line.DetailDiscountType, line.DetailTaxRate)
		order.Details = append(order.Details, PurchaseOrderDetail{
			ProductId:            line.ProductId,
			Name:                 name,
			DetailQty:            line.DetailQty,
			DetailUnitRate:       line.DetailUnitRate,
			DetailDiscount:       line.DetailDiscount,
			DetailDiscountType:   line.DetailDiscountType,
			DetailDiscountAmount: amounts.DiscountAmount,
			DetailTaxRate:        line.DetailTaxRate,
			DetailTaxAmount:      amounts.TaxAmount,
			DetailTotalAmount:    amounts.TotalAmount,
		})
		order.OrderSubtotal = order.OrderSubtotal.Add(line.DetailQty.Mul(line.DetailUnitRate))
		order.OrderTotalDiscountAmount = order.OrderTotalDiscountAmount.Add(amounts.DiscountAmount)
		order.OrderTotalTaxAmount = order.OrderTotalTaxAmount.Add(amounts.TaxAmount)
		order.OrderTotalAmount = order.OrderTotalAmount.Add(amounts.TotalAmount)
	}

	seqNo, err := utils.GetSequence[PurchaseOrder](ctx, businessId)
	if err != nil {
		return nil, err
	}
	prefix, err := getTransactionPrefix(ctx, businessId, ModuleNamePurchaseOrder)
	if err != nil {
		return nil, err
	}
	order.SequenceNo = seqNo
	order.OrderNumber = fmt.Sprintf("%s%d", prefix, seqNo)

	err = runInTransaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			config.LogError(config.GetLogger(), "purchaseOrder", "CreatePurchaseOrder", "create", input, err)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return utils.FetchModel[PurchaseOrder](ctx, businessId, order.ID, "Details")
}

func GetPurchaseOrder(ctx context.Context, id int) (*PurchaseOrder, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok {
		return nil, utils.NewValidationError("missing business id")
	}
	return utils.FetchModel[PurchaseOrder](ctx, businessId, id, "Details")
}

// ReceivePurchaseOrder marks a pending order as received and posts its side
// effects in one transaction: a purchase movement per product line, and a
// balance decrement on the supplier when the order carries a positive total.
// Receiving an already received order is a no-op; a cancelled order cannot be
// received; a received order rejects every other transition.
func ReceivePurchaseOrder(ctx context.Context, id int) (*PurchaseOrder, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok {
		return nil, utils.NewValidationError("missing business id")
	}

	release, err := utils.BusinessLock(ctx, businessId, "stock", "purchaseOrder", "ReceivePurchaseOrder")
	if err != nil {
		return nil, err
	}
	defer release()

	err = runInTransaction(ctx, func(tx *gorm.DB) error {
		order, err := utils.FetchModelForUpdate[PurchaseOrder](tx, ctx, businessId, id)
		if err != nil {
			return err
		}
		oldStatus := order.CurrentStatus
		if oldStatus == PurchaseOrderStatusReceived {
			// Idempotent re-receive.
			return nil
		}
		if oldStatus == PurchaseOrderStatusCancelled {
			return utils.NewInvalidStateTransition("cancelled purchase order cannot be received")
		}

		if order.OrderTotalAmount.IsPositive() && order.SupplierId == 0 {
			return utils.NewValidationError("purchase order " + order.OrderNumber + " has no supplier to post the balance to")
		}

		if err := tx.WithContext(ctx).Model(&PurchaseOrder{}).
			Where("business_id = ? AND id = ?", businessId, id).
			Update("current_status", PurchaseOrderStatusReceived).Error; err != nil {
			config.LogError(config.GetLogger(), "purchaseOrder", "ReceivePurchaseOrder", "update status", id, err)
			return err
		}
		order.CurrentStatus = PurchaseOrderStatusReceived
		if err := ApplyPurchaseOrderStockForStatusTransition(tx, ctx, order, oldStatus); err != nil {
			return err
		}

		if order.OrderTotalAmount.IsPositive() {
			return applyAccountBalanceDelta(tx, ctx, businessId, order.SupplierId, order.OrderTotalAmount.Neg())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return utils.FetchModel[PurchaseOrder](ctx, businessId, id, "Details")
}

// CancelPurchaseOrder voids a pending order. No stock or balance side effects.
func CancelPurchaseOrder(ctx context.Context, id int) (*PurchaseOrder, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok {
		return nil, utils.NewValidationError("missing business id")
	}

	err := runInTransaction(ctx, func(tx *gorm.DB) error {
		order, err := utils.FetchModelForUpdate[PurchaseOrder](tx, ctx, businessId, id)
		if err != nil {
			return err
		}
		switch order.CurrentStatus {
		case PurchaseOrderStatusCancelled:
			return nil
		case PurchaseOrderStatusReceived:
			return utils.NewDocumentLocked("received purchase order " + order.OrderNumber + " cannot be cancelled")
		}
		return tx.WithContext(ctx).Model(&PurchaseOrder{}).
			Where("business_id = ? AND id = ?", businessId, id).
			Update("current_status", PurchaseOrderStatusCancelled).Error
	})
	if err != nil {
		return nil, err
	}
	return utils.FetchModel[PurchaseOrder](ctx, businessId, id, "Details")
}
