package models

import (
	"errors"
	"strings"
	"testing"

	"github.com/bizsuite/erp_backend/utils"
	"github.com/shopspring/decimal"
)

func TestUpdateNumberSeriesPrefixChangesDocumentNumbers(t *testing.T) {
	ctx := newTestContext(t, "number_series_prefix")

	module, err := UpdateTransactionNumberSeriesModule(ctx, ModuleNameInvoice, "SI-")
	if err != nil {
		t.Fatalf("update prefix: %v", err)
	}
	if module.Prefix != "SI-" {
		t.Fatalf("prefix = %q, want SI-", module.Prefix)
	}

	customer, err := CreateAccount(ctx, &NewAccount{Name: "Jane Retail", Type: AccountTypeCustomer})
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}
	invoice, err := CreateInvoice(ctx, &NewInvoice{
		AccountId:   customer.ID,
		InvoiceType: InvoiceTypeSales,
		InvoiceDate: testDate(),
		Details: []NewInvoiceDetail{
			{Name: "Consulting", DetailQty: decimal.NewFromInt(1), DetailUnitRate: decimal.NewFromInt(50)},
		},
	})
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}
	if !strings.HasPrefix(invoice.InvoiceNumber, "SI-") {
		t.Fatalf("invoice number = %q, want SI- prefix", invoice.InvoiceNumber)
	}
}

func TestUpdateNumberSeriesPrefixValidation(t *testing.T) {
	ctx := newTestContext(t, "number_series_validation")

	if _, err := UpdateTransactionNumberSeriesModule(ctx, "Voucher", "V-"); !errors.Is(err, utils.ErrorValidation) {
		t.Fatalf("err = %v, want validation error for unknown module", err)
	}
	if _, err := UpdateTransactionNumberSeriesModule(ctx, ModuleNameInvoice, ""); !errors.Is(err, utils.ErrorValidation) {
		t.Fatalf("err = %v, want validation error for empty prefix", err)
	}
}

// Each tenant edits its own series only.
func TestUpdateNumberSeriesPrefixIsTenantScoped(t *testing.T) {
	ctx := newTestContext(t, "number_series_tenant")
	otherCtx := newTenantContext(t, "Other Business")

	if _, err := UpdateTransactionNumberSeriesModule(ctx, ModuleNameInvoice, "SI-"); err != nil {
		t.Fatalf("update prefix: %v", err)
	}

	otherBusinessId, ok := utils.GetBusinessIdFromContext(otherCtx)
	if !ok {
		t.Fatal("missing business id in context")
	}
	prefix, err := getTransactionPrefix(otherCtx, otherBusinessId, ModuleNameInvoice)
	if err != nil {
		t.Fatalf("get prefix: %v", err)
	}
	if prefix != "INV-" {
		t.Fatalf("prefix = %q, want INV- (other tenant untouched)", prefix)
	}
}
