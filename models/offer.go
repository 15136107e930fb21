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

// Offer is a sales quotation. Converting it produces an invoice that carries
// the offer's lines and totals verbatim; the conversion itself posts neither
// stock nor balances.
type Offer struct {
	ID                       int             `gorm:"primary_key" json:"id"`
	BusinessId               string          `gorm:"index;size:64;not null" json:"businessId"`
	AccountId                int             `gorm:"index;not null" json:"accountId"`
	SequenceNo               int64           `gorm:"not null;default:0" json:"sequenceNo"`
	OfferNumber              string          `gorm:"size:255;not null" json:"offerNumber"`
	OfferDate                time.Time       `gorm:"not null" json:"offerDate"`
	ExpiryDate               *time.Time      `json:"expiryDate"`
	Notes                    string          `gorm:"size:255" json:"notes"`
	CurrentStatus            OfferStatus     `gorm:"size:20;not null" json:"currentStatus"`
	InvoiceId                int             `gorm:"index;default:null" json:"invoiceId"`
	Details                  []OfferDetail   `gorm:"foreignKey:OfferId" json:"details"`
	OfferSubtotal            decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"offerSubtotal"`
	OfferTotalDiscountAmount decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"offerTotalDiscountAmount"`
	OfferTotalTaxAmount      decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"offerTotalTaxAmount"`
	OfferTotalAmount         decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"offerTotalAmount"`
	CreatedAt                time.Time       `json:"createdAt"`
	UpdatedAt                time.Time       `json:"updatedAt"`
}

type OfferDetail struct {
	ID                   int             `gorm:"primary_key" json:"id"`
	OfferId              int             `gorm:"index;not null" json:"offerId"`
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

type NewOffer struct {
	AccountId  int              `json:"accountId" binding:"required"`
	OfferDate  time.Time        `json:"offerDate" binding:"required"`
	ExpiryDate *time.Time       `json:"expiryDate"`
	Notes      string           `json:"notes"`
	Details    []NewOfferDetail `json:"details" binding:"required,min=1,dive"`
}

type NewOfferDetail struct {
	ProductId          int             `json:"productId"`
	Name               string          `json:"name"`
	DetailQty          decimal.Decimal `json:"detailQty" binding:"required"`
	DetailUnitRate     decimal.Decimal `json:"detailUnitRate"`
	DetailDiscount     decimal.Decimal `json:"detailDiscount"`
	DetailDiscountType *DiscountType   `json:"detailDiscountType"`
	DetailTaxRate      decimal.Decimal `json:"detailTaxRate"`
}

func CreateOffer(ctx context.Context, input *NewOffer) (*Offer, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok {
		return nil, utils.NewValidationError("missing business id")
	}
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	customer, err := utils.FetchModel[Account](ctx, businessId, input.AccountId)
	if err != nil {
		return nil, err
	}
	if customer.Type != AccountTypeCustomer {
		return nil, utils.NewValidationError("account " + customer.Name + " is not a customer")
	}

	offer := Offer{
		BusinessId:    businessId,
		AccountId:     input.AccountId,
		OfferDate:     input.OfferDate,
		ExpiryDate:    input.ExpiryDate,
		Notes:         input.Notes,
		CurrentStatus: OfferStatusDraft,
	}
	for _, line := range input.Details {
		if !line.DetailQty.IsPositive() {
			return nil, utils.NewValidationError("offer line qty must be positive")
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
			return nil, utils.NewValidationError("offer line needs a product or a name")
		}

		amounts := computeLineAmounts(line.DetailQty, line.DetailUnitRate,
			line.DetailDiscount, line.DetailDiscountType, line.DetailTaxRate)
		offer.Details = append(offer.Details, OfferDetail{
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
		offer.OfferSubtotal = offer.OfferSubtotal.Add(line.DetailQty.Mul(line.DetailUnitRate))
		offer.OfferTotalDiscountAmount = offer.OfferTotalDiscountAmount.Add(amounts.DiscountAmount)
		offer.OfferTotalTaxAmount = offer.OfferTotalTaxAmount.Add(amounts.TaxAmount)
		offer.OfferTotalAmount = offer.OfferTotalAmount.Add(amounts.TotalAmount)
	}

	seqNo, err := utils.GetSequence[Offer](ctx, businessId)
	if err != nil {
		return nil, err
	}
	prefix, err := getTransactionPrefix(ctx, businessId, ModuleNameOffer)
	if err != nil {
		return nil, err
	}
	offer.SequenceNo = seqNo
	offer.OfferNumber = fmt.Sprintf("%s%d", prefix, seqNo)

	err = runInTransaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&offer).Error; err != nil {
			config.LogError(config.GetLogger(), "offer", "CreateOffer", "create", input, err)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return utils.FetchModel[Offer](ctx, businessId, offer.ID, "Details")
}

func GetOffer(ctx context.Context, id int) (*Offer, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok {
		return nil, utils.NewValidationError("missing business id")
	}
	return utils.FetchModel[Offer](ctx, businessId, id, "Details")
}

// ConvertOfferToInvoice turns a draft offer into an invoice. The new invoice
// carries the offer's lines and totals verbatim and records which offer it
// came from; no stock movements and no balance postings happen here. The
// offer moves to invoiced, and a second conversion attempt fails with a
// document-locked error without creating anything.
func ConvertOfferToInvoice(ctx context.Context, offerId int) (*Invoice, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok {
		return nil, utils.NewValidationError("missing business id")
	}

	seqNo, err := utils.GetSequence[Invoice](ctx, businessId)
	if err != nil {
		return nil, err
	}
	prefix, err := getTransactionPrefix(ctx, businessId, ModuleNameInvoice)
	if err != nil {
		return nil, err
	}

	var invoice Invoice
	err = runInTransaction(ctx, func(tx *gorm.DB) error {
		offer, err := utils.FetchModelForUpdate[Offer](tx, ctx, businessId, offerId)
		if err != nil {
			return err
		}
		if offer.CurrentStatus == OfferStatusInvoiced {
			return utils.NewDocumentLocked("offer " + offer.OfferNumber + " is already invoiced")
		}
		if offer.CurrentStatus != OfferStatusDraft {
			return utils.NewInvalidStateTransition("offer cannot be invoiced from status " + string(offer.CurrentStatus))
		}

		var details []OfferDetail
		if err := tx.WithContext(ctx).
			Where("offer_id = ?", offer.ID).
			Find(&details).Error; err != nil {
			return err
		}

		invoice = Invoice{
			BusinessId:                 businessId,
			AccountId:                  offer.AccountId,
			InvoiceType:                InvoiceTypeSales,
			SequenceNo:                 seqNo,
			InvoiceNumber:              fmt.Sprintf("%s%d", prefix, seqNo),
			InvoiceDate:                time.Now(),
			Notes:                      offer.Notes,
			CurrentStatus:              InvoiceStatusPosted,
			OfferId:                    offer.ID,
			InvoiceSubtotal:            offer.OfferSubtotal,
			InvoiceTotalDiscountAmount: offer.OfferTotalDiscountAmount,
			InvoiceTotalTaxAmount:      offer.OfferTotalTaxAmount,
			InvoiceTotalAmount:         offer.OfferTotalAmount,
		}
		for _, line := range details {
			invoice.Details = append(invoice.Details, InvoiceDetail{
				ProductId:            line.ProductId,
				Name:                 line.Name,
				DetailQty:            line.DetailQty,
				DetailUnitRate:       line.DetailUnitRate,
				DetailDiscount:       line.DetailDiscount,
				DetailDiscountType:   line.DetailDiscountType,
				DetailDiscountAmount: line.DetailDiscountAmount,
				DetailTaxRate:        line.DetailTaxRate,
				DetailTaxAmount:      line.DetailTaxAmount,
				DetailTotalAmount:    line.DetailTotalAmount,
			})
		}
		if err := tx.Create(&invoice).Error; err != nil {
			config.LogError(config.GetLogger(), "offer", "ConvertOfferToInvoice", "create invoice", offerId, err)
			return err
		}

		return tx.WithContext(ctx).Model(&Offer{}).
			Where("business_id = ? AND id = ?", businessId, offer.ID).
			Updates(map[string]interface{}{
				"current_status": OfferStatusInvoiced,
				"invoice_id":     invoice.ID,
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return utils.FetchModel[Invoice](ctx, businessId, invoice.ID, "Details")
}
