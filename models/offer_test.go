package models

import (
	"errors"
	"testing"

	"github.com/bizsuite/erp_backend/config"
	"github.com/bizsuite/erp_backend/utils"
	"github.com/shopspring/decimal"
)

func TestConvertOfferToInvoice(t *testing.T) {
	ctx := newTestContext(t, "offer_convert")

	customer, err := CreateAccount(ctx, &NewAccount{Name: "Jane Retail", Type: AccountTypeCustomer})
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}
	product, err := CreateProduct(ctx, &NewProduct{
		Name:         "Widget",
		OpeningStock: decimal.NewFromInt(10),
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	offer, err := CreateOffer(ctx, &NewOffer{
		AccountId: customer.ID,
		OfferDate: testDate(),
		Details: []NewOfferDetail{
			{ProductId: product.ID, DetailQty: decimal.NewFromInt(3), DetailUnitRate: decimal.NewFromInt(50)},
			{Name: "Installation", DetailQty: decimal.NewFromInt(1), DetailUnitRate: decimal.NewFromInt(75)},
		},
	})
	if err != nil {
		t.Fatalf("create offer: %v", err)
	}
	if offer.CurrentStatus != OfferStatusDraft {
		t.Fatalf("status = %s, want Draft", offer.CurrentStatus)
	}

	invoice, err := ConvertOfferToInvoice(ctx, offer.ID)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if invoice.OfferId != offer.ID {
		t.Fatalf("invoice offer id = %d, want %d", invoice.OfferId, offer.ID)
	}
	if !invoice.InvoiceTotalAmount.Equal(offer.OfferTotalAmount) {
		t.Fatalf("invoice total = %s, want %s", invoice.InvoiceTotalAmount, offer.OfferTotalAmount)
	}
	if len(invoice.Details) != 2 {
		t.Fatalf("invoice details = %d, want 2", len(invoice.Details))
	}
	for i, line := range invoice.Details {
		if !line.DetailQty.Equal(offer.Details[i].DetailQty) ||
			!line.DetailUnitRate.Equal(offer.Details[i].DetailUnitRate) ||
			!line.DetailTotalAmount.Equal(offer.Details[i].DetailTotalAmount) {
			t.Fatalf("invoice line %d does not match offer line", i)
		}
	}

	offer, _ = GetOffer(ctx, offer.ID)
	if offer.CurrentStatus != OfferStatusInvoiced {
		t.Fatalf("offer status = %s, want Invoiced", offer.CurrentStatus)
	}
	if offer.InvoiceId != invoice.ID {
		t.Fatalf("offer invoice id = %d, want %d", offer.InvoiceId, invoice.ID)
	}

	// Conversion must not post anything.
	product, _ = GetProduct(ctx, product.ID)
	if !product.Stock.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("stock = %s, want 10 (conversion posts no stock)", product.Stock)
	}
	customer, _ = GetAccount(ctx, customer.ID)
	if !customer.Balance.IsZero() {
		t.Fatalf("balance = %s, want 0 (conversion posts no balance)", customer.Balance)
	}
	movements, _ := GetStockMovements(ctx, &product.ID)
	if len(movements) != 1 {
		t.Fatalf("movements = %d, want 1 (opening only)", len(movements))
	}
}

func TestConvertOfferTwiceIsLocked(t *testing.T) {
	ctx := newTestContext(t, "offer_convert_twice")

	customer, err := CreateAccount(ctx, &NewAccount{Name: "Jane Retail", Type: AccountTypeCustomer})
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}
	offer, err := CreateOffer(ctx, &NewOffer{
		AccountId: customer.ID,
		OfferDate: testDate(),
		Details: []NewOfferDetail{
			{Name: "Service", DetailQty: decimal.NewFromInt(1), DetailUnitRate: decimal.NewFromInt(200)},
		},
	})
	if err != nil {
		t.Fatalf("create offer: %v", err)
	}
	if _, err := ConvertOfferToInvoice(ctx, offer.ID); err != nil {
		t.Fatalf("first convert: %v", err)
	}

	_, err = ConvertOfferToInvoice(ctx, offer.ID)
	if !errors.Is(err, utils.ErrorDocumentLocked) {
		t.Fatalf("second convert err = %v, want document locked", err)
	}

	var invoiceCount int64
	if err := config.GetDB().WithContext(ctx).Model(&Invoice{}).Count(&invoiceCount).Error; err != nil {
		t.Fatalf("count invoices: %v", err)
	}
	if invoiceCount != 1 {
		t.Fatalf("invoices = %d, want 1", invoiceCount)
	}
}
