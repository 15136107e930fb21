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

// Invoice is born posted; its stock and balance side effects are applied in
// the same transaction that creates it.
type Invoice struct {
	ID                         int             `gorm:"primary_key" json:"id"`
	BusinessId                 string          `gorm:"index;size:64;not null" json:"businessId"`
	AccountId                  int             `gorm:"index;not null" json:"accountId"`
	InvoiceType                InvoiceType     `gorm:"size:20;not null" json:"invoiceType"`
	SequenceNo                 int64           `gorm:"not null;default:0" json:"sequenceNo"`
	InvoiceNumber              string          `gorm:"size:255;not null" json:"invoiceNumber"`
	InvoiceDate                time.Time       `gorm:"not null" json:"invoiceDate"`
	Notes                      string          `gorm:"size:255" json:"notes"`
	CurrentStatus              InvoiceStatus   `gorm:"size:20;not null" json:"currentStatus"`
	OfferId                    int             `gorm:"index;default:null" json:"offerId"`
	Details                    []InvoiceDetail `gorm:"foreignKey:InvoiceId" json:"details"`
	InvoiceSubtotal            decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"invoiceSubtotal"`
	InvoiceTotalDiscountAmount decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"invoiceTotalDiscountAmount"`
	InvoiceTotalTaxAmount      decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"invoiceTotalTaxAmount"`
	InvoiceTotalAmount         decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"invoiceTotalAmount"`
	CreatedAt                  time.Time       `json:"createdAt"`
	UpdatedAt                  time.Time       `json:"updatedAt"`
}

type InvoiceDetail struct {
	ID                   int             `gorm:"primary_key" json:"id"`
	InvoiceId            int             `gorm:"index;not null" json:"invoiceId"`
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

type NewInvoice struct {
	AccountId   int                `json:"accountId" binding:"required"`
	InvoiceType InvoiceType        `json:"invoiceType" binding:"required,oneof=Sales Purchase"`
	InvoiceDate time.Time          `json:"invoiceDate" binding:"required"`
	Notes       string             `json:"notes"`
	Details     []NewInvoiceDetail `json:"details" binding:"required,min=1,dive"`
}

type NewInvoiceDetail struct {
	ProductId          int             `json:"productId"`
	Name               string          `json:"name"`
	DetailQty          decimal.Decimal `json:"detailQty" binding:"required"`
	DetailUnitRate     decimal.Decimal `json:"detailUnitRate"`
	DetailDiscount     decimal.Decimal `json:"detailDiscount"`
	DetailDiscountType *DiscountType   `json:"detailDiscountType"`
	DetailTaxRate      decimal.Decimal `json:"detailTaxRate"`
}

// CreateInvoice creates a posted invoice and applies its side effects
// atomically: one stock movement per product line (sale for sales invoices,
// purchase for purchase invoices) and a signed balance posting on the
// invoice's account. The account is resolved inside the transaction, so a
// missing account rolls back the invoice and every ledger row with it.
func CreateInvoice(ctx context.Context, input *NewInvoice) (*Invoice, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok {
		return nil, utils.NewValidationError("missing business id")
	}
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}

	invoice := Invoice{
		BusinessId:    businessId,
		AccountId:     input.AccountId,
		InvoiceType:   input.InvoiceType,
		InvoiceDate:   input.InvoiceDate,
		Notes:         input.Notes,
		CurrentStatus: InvoiceStatusPosted,
	}
	for _, line := range input.Details {
		if !line.DetailQty.IsPositive() {
			return nil, utils.NewValidationError("invoice line qty must be positive")
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
			return nil, utils.NewValidationError("invoice line needs a product or a name")
		}

		amounts := computeLineAmounts(line.DetailQty, line.DetailUnitRate,
			line.DetailDiscount, line.DetailDiscountType, line.DetailTaxRate)
		invoice.Details = append(invoice.Details, InvoiceDetail{
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
		invoice.InvoiceSubtotal = invoice.InvoiceSubtotal.Add(line.DetailQty.Mul(line.DetailUnitRate))
		invoice.InvoiceTotalDiscountAmount = invoice.InvoiceTotalDiscountAmount.Add(amounts.DiscountAmount)
		invoice.InvoiceTotalTaxAmount = invoice.InvoiceTotalTaxAmount.Add(amounts.TaxAmount)
		invoice.InvoiceTotalAmount = invoice.InvoiceTotalAmount.Add(amounts.TotalAmount)
	}

	seqNo, err := utils.GetSequence[Invoice](ctx, businessId)
	if err != nil {
		return nil, err
	}
	prefix, err := getTransactionPrefix(ctx, businessId, ModuleNameInvoice)
	if err != nil {
		return nil, err
	}
	invoice.SequenceNo = seqNo
	invoice.InvoiceNumber = fmt.Sprintf("%s%d", prefix, seqNo)

	release, err := utils.BusinessLock(ctx, businessId, "stock", "invoice", "CreateInvoice")
	if err != nil {
		return nil, err
	}
	defer release()

	err = runInTransaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&invoice).Error; err != nil {
			config.LogError(config.GetLogger(), "invoice", "CreateInvoice", "create", input, err)
			return err
		}
		if err := ApplyInvoiceStockForCreation(tx, ctx, &invoice); err != nil {
			return err
		}
		return applyInvoiceBalancePosting(tx, ctx, &invoice)
	})
	if err != nil {
		return nil, err
	}
	return utils.FetchModel[Invoice](ctx, businessId, invoice.ID, "Details")
}

// applyInvoiceBalancePosting posts the invoice total onto its account:
// a sales invoice raises the customer's receivable, a purchase invoice lowers
// the tenant's position against the supplier.
func applyInvoiceBalancePosting(tx *gorm.DB, ctx context.Context, invoice *Invoice) error {
	delta := invoice.InvoiceTotalAmount
	if invoice.InvoiceType == InvoiceTypePurchase {
		delta = delta.Neg()
	}
	return applyAccountBalanceDelta(tx, ctx, invoice.BusinessId, invoice.AccountId, delta)
}

func GetInvoice(ctx context.Context, id int) (*Invoice, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok {
		return nil, utils.NewValidationError("missing business id")
	}
	return utils.FetchModel[Invoice](ctx, businessId, id, "Details")
}

func GetInvoices(ctx context.Context) ([]*Invoice, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok {
		return nil, utils.NewValidationError("missing business id")
	}
	return utils.FetchAllModels[Invoice](ctx, businessId, "Details")
}
