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

// InvoiceReturn records goods coming back against a posted invoice. Approval
// reverses the invoice's balance posting proportionally to the returned
// amount; stock is handled separately by whoever restocks the goods.
type InvoiceReturn struct {
	ID                int                 `gorm:"primary_key" json:"id"`
	BusinessId        string              `gorm:"index;size:64;not null" json:"businessId"`
	InvoiceId         int                 `gorm:"index;not null" json:"invoiceId"`
	AccountId         int                 `gorm:"index;not null" json:"accountId"`
	ReturnType        InvoiceType         `gorm:"size:20;not null" json:"returnType"`
	SequenceNo        int64               `gorm:"not null;default:0" json:"sequenceNo"`
	ReturnNumber      string              `gorm:"size:255;not null" json:"returnNumber"`
	ReturnDate        time.Time           `gorm:"not null" json:"returnDate"`
	Reason            string              `gorm:"size:255" json:"reason"`
	CurrentStatus     InvoiceReturnStatus `gorm:"size:20;not null" json:"currentStatus"`
	Details           []InvoiceReturnDetail `gorm:"foreignKey:InvoiceReturnId" json:"details"`
	ReturnTotalAmount decimal.Decimal     `gorm:"type:decimal(20,4);not null;default:0" json:"returnTotalAmount"`
	CreatedAt         time.Time           `json:"createdAt"`
	UpdatedAt         time.Time           `json:"updatedAt"`
}

type InvoiceReturnDetail struct {
	ID                int             `gorm:"primary_key" json:"id"`
	InvoiceReturnId   int             `gorm:"index;not null" json:"invoiceReturnId"`
	ProductId         int             `gorm:"index" json:"productId"`
	Name              string          `gorm:"size:255;not null" json:"name"`
	DetailQty         decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"detailQty"`
	DetailUnitRate    decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"detailUnitRate"`
	DetailTotalAmount decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"detailTotalAmount"`
}

type NewInvoiceReturn struct {
	InvoiceId  int                      `json:"invoiceId" binding:"required"`
	ReturnDate time.Time                `json:"returnDate" binding:"required"`
	Reason     string                   `json:"reason"`
	Details    []NewInvoiceReturnDetail `json:"details" binding:"required,min=1,dive"`
}

type NewInvoiceReturnDetail struct {
	ProductId      int             `json:"productId"`
	Name           string          `json:"name"`
	DetailQty      decimal.Decimal `json:"detailQty" binding:"required"`
	DetailUnitRate decimal.Decimal `json:"detailUnitRate"`
}

func CreateInvoiceReturn(ctx context.Context, input *NewInvoiceReturn) (*InvoiceReturn, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok {
		return nil, utils.NewValidationError("missing business id")
	}
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	invoice, err := utils.FetchModel[Invoice](ctx, businessId, input.InvoiceId)
	if err != nil {
		return nil, err
	}

	ret := InvoiceReturn{
		BusinessId:    businessId,
		InvoiceId:     invoice.ID,
		AccountId:     invoice.AccountId,
		ReturnType:    invoice.InvoiceType,
		ReturnDate:    input.ReturnDate,
		Reason:        input.Reason,
		CurrentStatus: InvoiceReturnStatusPending,
	}
	for _, line := range input.Details {
		if !line.DetailQty.IsPositive() {
			return nil, utils.NewValidationError("return line qty must be positive")
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
			return nil, utils.NewValidationError("return line needs a product or a name")
		}
		lineTotal := line.DetailQty.Mul(line.DetailUnitRate)
		ret.Details = append(ret.Details, InvoiceReturnDetail{
			ProductId:         line.ProductId,
			Name:              name,
			DetailQty:         line.DetailQty,
			DetailUnitRate:    line.DetailUnitRate,
			DetailTotalAmount: lineTotal,
		})
		ret.ReturnTotalAmount = ret.ReturnTotalAmount.Add(lineTotal)
	}

	seqNo, err := utils.GetSequence[InvoiceReturn](ctx, businessId)
	if err != nil {
		return nil, err
	}
	prefix, err := getTransactionPrefix(ctx, businessId, ModuleNameInvoiceReturn)
	if err != nil {
		return nil, err
	}
	ret.SequenceNo = seqNo
	ret.ReturnNumber = fmt.Sprintf("%s%d", prefix, seqNo)

	err = runInTransaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&ret).Error; err != nil {
			config.LogError(config.GetLogger(), "invoiceReturn", "CreateInvoiceReturn", "create", input, err)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return utils.FetchModel[InvoiceReturn](ctx, businessId, ret.ID, "Details")
}

func GetInvoiceReturn(ctx context.Context, id int) (*InvoiceReturn, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok {
		return nil, utils.NewValidationError("missing business id")
	}
	return utils.FetchModel[InvoiceReturn](ctx, businessId, id, "Details")
}

type UpdateInvoiceReturnInput struct {
	ReturnDate *time.Time `json:"returnDate"`
	Reason     *string    `json:"reason"`
}

// UpdateInvoiceReturn edits the header fields of a return. Returns stay
// editable in every status; only the approve/reject decision is guarded.
func UpdateInvoiceReturn(ctx context.Context, id int, input *UpdateInvoiceReturnInput) (*InvoiceReturn, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok {
		return nil, utils.NewValidationError("missing business id")
	}
	if _, err := utils.FetchModel[InvoiceReturn](ctx, businessId, id); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if input.ReturnDate != nil {
		updates["return_date"] = *input.ReturnDate
	}
	if input.Reason != nil {
		updates["reason"] = *input.Reason
	}
	if len(updates) > 0 {
		result := config.GetDB().WithContext(ctx).Model(&InvoiceReturn{}).
			Where("business_id = ? AND id = ?", businessId, id).
			Updates(updates)
		if result.Error != nil {
			config.LogError(config.GetLogger(), "invoiceReturn", "UpdateInvoiceReturn", "update", id, result.Error)
			return nil, result.Error
		}
	}
	return utils.FetchModel[InvoiceReturn](ctx, businessId, id, "Details")
}

// UpdateStatusInvoiceReturn decides a pending return. Approval reverses the
// original invoice's balance posting for the returned amount in the same
// transaction; rejection only records the decision. A return that has already
// been decided rejects any further transition.
func UpdateStatusInvoiceReturn(ctx context.Context, id int, newStatus InvoiceReturnStatus) (*InvoiceReturn, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok {
		return nil, utils.NewValidationError("missing business id")
	}
	if newStatus != InvoiceReturnStatusApproved && newStatus != InvoiceReturnStatusRejected {
		return nil, utils.NewInvalidStateTransition("invoice return cannot move to status " + string(newStatus))
	}

	err := runInTransaction(ctx, func(tx *gorm.DB) error {
		ret, err := utils.FetchModelForUpdate[InvoiceReturn](tx, ctx, businessId, id)
		if err != nil {
			return err
		}
		if ret.CurrentStatus != InvoiceReturnStatusPending {
			return utils.NewInvalidStateTransition("invoice return " + ret.ReturnNumber + " is already " + string(ret.CurrentStatus))
		}

		if err := tx.WithContext(ctx).Model(&InvoiceReturn{}).
			Where("business_id = ? AND id = ?", businessId, id).
			Update("current_status", newStatus).Error; err != nil {
			config.LogError(config.GetLogger(), "invoiceReturn", "UpdateStatusInvoiceReturn", "update status", id, err)
			return err
		}

		if newStatus == InvoiceReturnStatusApproved && ret.ReturnTotalAmount.IsPositive() {
			// Mirror image of the invoice's posting.
			delta := ret.ReturnTotalAmount.Neg()
			if ret.ReturnType == InvoiceTypePurchase {
				delta = ret.ReturnTotalAmount
			}
			return applyAccountBalanceDelta(tx, ctx, businessId, ret.AccountId, delta)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return utils.FetchModel[InvoiceReturn](ctx, businessId, id, "Details")
}
