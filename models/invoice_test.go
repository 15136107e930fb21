package models

import (
	"errors"
	"testing"

	"github.com/bizsuite/erp_backend/config"
	"github.com/bizsuite/erp_backend/utils"
	"github.com/shopspring/decimal"
)

func TestCreateSalesInvoicePostsStockAndBalance(t *testing.T) {
	ctx := newTestContext(t, "invoice_sales")

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

	invoice, err := CreateInvoice(ctx, &NewInvoice{
		AccountId:   customer.ID,
		InvoiceType: InvoiceTypeSales,
		InvoiceDate: testDate(),
		Details: []NewInvoiceDetail{
			{ProductId: product.ID, DetailQty: decimal.NewFromInt(4), DetailUnitRate: decimal.NewFromInt(25)},
		},
	})
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}
	if invoice.CurrentStatus != InvoiceStatusPosted {
		t.Fatalf("status = %s, want Posted", invoice.CurrentStatus)
	}
	if !invoice.InvoiceTotalAmount.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("total = %s, want 100", invoice.InvoiceTotalAmount)
	}

	product, _ = GetProduct(ctx, product.ID)
	if !product.Stock.Equal(decimal.NewFromInt(6)) {
		t.Fatalf("stock = %s, want 6", product.Stock)
	}
	customer, _ = GetAccount(ctx, customer.ID)
	if !customer.Balance.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("customer balance = %s, want 100", customer.Balance)
	}

	movements, _ := GetStockMovements(ctx, &product.ID)
	if len(movements) != 2 {
		t.Fatalf("movements = %d, want 2", len(movements))
	}
	if movements[0].Kind != StockMovementKindSale {
		t.Fatalf("kind = %s, want sale", movements[0].Kind)
	}
	if movements[0].DocumentNo != invoice.InvoiceNumber {
		t.Fatalf("document no = %q, want %q", movements[0].DocumentNo, invoice.InvoiceNumber)
	}
}

func TestCreatePurchaseInvoicePostsStockAndBalance(t *testing.T) {
	ctx := newTestContext(t, "invoice_purchase")

	supplier, err := CreateAccount(ctx, &NewAccount{Name: "Acme Supplies", Type: AccountTypeSupplier})
	if err != nil {
		t.Fatalf("create supplier: %v", err)
	}
	product, err := CreateProduct(ctx, &NewProduct{Name: "Widget"})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	_, err = CreateInvoice(ctx, &NewInvoice{
		AccountId:   supplier.ID,
		InvoiceType: InvoiceTypePurchase,
		InvoiceDate: testDate(),
		Details: []NewInvoiceDetail{
			{ProductId: product.ID, DetailQty: decimal.NewFromInt(8), DetailUnitRate: decimal.NewFromInt(5)},
		},
	})
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}

	product, _ = GetProduct(ctx, product.ID)
	if !product.Stock.Equal(decimal.NewFromInt(8)) {
		t.Fatalf("stock = %s, want 8", product.Stock)
	}
	supplier, _ = GetAccount(ctx, supplier.ID)
	if !supplier.Balance.Equal(decimal.NewFromInt(-40)) {
		t.Fatalf("supplier balance = %s, want -40", supplier.Balance)
	}
	movements, _ := GetStockMovements(ctx, &product.ID)
	if len(movements) != 1 || movements[0].Kind != StockMovementKindPurchase {
		t.Fatalf("want one purchase movement, got %v", movements)
	}
}

// A missing account must roll back the whole unit: no invoice row, no ledger
// rows, no stock change.
func TestCreateInvoiceMissingAccountRollsBack(t *testing.T) {
	ctx := newTestContext(t, "invoice_rollback")

	product, err := CreateProduct(ctx, &NewProduct{
		Name:         "Widget",
		OpeningStock: decimal.NewFromInt(10),
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	_, err = CreateInvoice(ctx, &NewInvoice{
		AccountId:   9999,
		InvoiceType: InvoiceTypeSales,
		InvoiceDate: testDate(),
		Details: []NewInvoiceDetail{
			{ProductId: product.ID, DetailQty: decimal.NewFromInt(4), DetailUnitRate: decimal.NewFromInt(25)},
		},
	})
	if !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("err = %v, want record not found", err)
	}

	product, _ = GetProduct(ctx, product.ID)
	if !product.Stock.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("stock = %s, want 10 (unchanged)", product.Stock)
	}
	movements, _ := GetStockMovements(ctx, &product.ID)
	if len(movements) != 1 {
		t.Fatalf("movements = %d, want 1 (opening only)", len(movements))
	}

	var invoiceCount int64
	if err := config.GetDB().WithContext(ctx).Model(&Invoice{}).Count(&invoiceCount).Error; err != nil {
		t.Fatalf("count invoices: %v", err)
	}
	if invoiceCount != 0 {
		t.Fatalf("invoices = %d, want 0", invoiceCount)
	}
}

// By default overselling is allowed and drives the projection negative; the
// ledger still reconciles.
func TestSalesInvoiceAllowsNegativeStock(t *testing.T) {
	ctx := newTestContext(t, "invoice_negative")

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

	_, err = CreateInvoice(ctx, &NewInvoice{
		AccountId:   customer.ID,
		InvoiceType: InvoiceTypeSales,
		InvoiceDate: testDate(),
		Details: []NewInvoiceDetail{
			{ProductId: product.ID, DetailQty: decimal.NewFromInt(15), DetailUnitRate: decimal.NewFromInt(2)},
		},
	})
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}

	product, _ = GetProduct(ctx, product.ID)
	if !product.Stock.Equal(decimal.NewFromInt(-5)) {
		t.Fatalf("stock = %s, want -5", product.Stock)
	}
}

// A line that carries its own name still has to point at a real product when
// it references one.
func TestCreateInvoiceUnknownLineProductRejected(t *testing.T) {
	ctx := newTestContext(t, "invoice_bad_line_product")

	customer, err := CreateAccount(ctx, &NewAccount{Name: "Jane Retail", Type: AccountTypeCustomer})
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}

	_, err = CreateInvoice(ctx, &NewInvoice{
		AccountId:   customer.ID,
		InvoiceType: InvoiceTypeSales,
		InvoiceDate: testDate(),
		Details: []NewInvoiceDetail{
			{Name: "Ghost", ProductId: 9999, DetailQty: decimal.NewFromInt(1), DetailUnitRate: decimal.NewFromInt(10)},
		},
	})
	if !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("err = %v, want record not found", err)
	}

	var invoiceCount int64
	if err := config.GetDB().WithContext(ctx).Model(&Invoice{}).Count(&invoiceCount).Error; err != nil {
		t.Fatalf("count invoices: %v", err)
	}
	if invoiceCount != 0 {
		t.Fatalf("invoices = %d, want 0", invoiceCount)
	}
}

func TestInvoiceLineDiscountAndTax(t *testing.T) {
	ctx := newTestContext(t, "invoice_amounts")

	customer, err := CreateAccount(ctx, &NewAccount{Name: "Jane Retail", Type: AccountTypeCustomer})
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}

	discountType := DiscountTypePercent
	invoice, err := CreateInvoice(ctx, &NewInvoice{
		AccountId:   customer.ID,
		InvoiceType: InvoiceTypeSales,
		InvoiceDate: testDate(),
		Details: []NewInvoiceDetail{
			{
				Name:               "Consulting",
				DetailQty:          decimal.NewFromInt(2),
				DetailUnitRate:     decimal.NewFromInt(100),
				DetailDiscount:     decimal.NewFromInt(10),
				DetailDiscountType: &discountType,
				DetailTaxRate:      decimal.NewFromInt(5),
			},
		},
	})
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}

	// 200 - 10% = 180, + 5% tax = 189
	if !invoice.InvoiceTotalDiscountAmount.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("discount = %s, want 20", invoice.InvoiceTotalDiscountAmount)
	}
	if !invoice.InvoiceTotalTaxAmount.Equal(decimal.NewFromInt(9)) {
		t.Fatalf("tax = %s, want 9", invoice.InvoiceTotalTaxAmount)
	}
	if !invoice.InvoiceTotalAmount.Equal(decimal.NewFromInt(189)) {
		t.Fatalf("total = %s, want 189", invoice.InvoiceTotalAmount)
	}

	customer, _ = GetAccount(ctx, customer.ID)
	if !customer.Balance.Equal(decimal.NewFromInt(189)) {
		t.Fatalf("balance = %s, want 189", customer.Balance)
	}
}
