package models

import (
	"errors"
	"testing"

	"github.com/bizsuite/erp_backend/config"
	"github.com/bizsuite/erp_backend/utils"
	"github.com/shopspring/decimal"
)

// A row owned by another tenant must be indistinguishable from a row that
// does not exist.
func TestTenantIsolation(t *testing.T) {
	ctxA := newTestContext(t, "tenant_isolation")
	ctxB := newTenantContext(t, "Other Business")

	product, err := CreateProduct(ctxA, &NewProduct{
		Name:         "Widget",
		OpeningStock: decimal.NewFromInt(10),
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	_, err = GetProduct(ctxB, product.ID)
	if !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("cross-tenant get err = %v, want record not found", err)
	}

	products, err := GetProducts(ctxB)
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	if len(products) != 0 {
		t.Fatalf("tenant B sees %d products, want 0", len(products))
	}

	movements, err := GetStockMovements(ctxB, &product.ID)
	if err != nil {
		t.Fatalf("list movements: %v", err)
	}
	if len(movements) != 0 {
		t.Fatalf("tenant B sees %d movements, want 0", len(movements))
	}
}

func TestCrossTenantStatusTransitionIsNotFound(t *testing.T) {
	ctxA := newTestContext(t, "tenant_transition")
	ctxB := newTenantContext(t, "Other Business")

	product, err := CreateProduct(ctxA, &NewProduct{
		Name:         "Widget",
		OpeningStock: decimal.NewFromInt(10),
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	stockCount, err := CreateStockCount(ctxA, &NewStockCount{
		CountDate: testDate(),
		Details: []NewStockCountDetail{
			{ProductId: product.ID, CountedQty: decimal.NewFromInt(7)},
		},
	})
	if err != nil {
		t.Fatalf("create stock count: %v", err)
	}

	_, err = CompleteStockCount(ctxB, stockCount.ID)
	if !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("cross-tenant complete err = %v, want record not found", err)
	}

	// The document must be untouched.
	stockCount, err = GetStockCount(ctxA, stockCount.ID)
	if err != nil {
		t.Fatalf("get stock count: %v", err)
	}
	if stockCount.CurrentStatus != StockCountStatusOpen {
		t.Fatalf("status = %s, want Open", stockCount.CurrentStatus)
	}
}

// Rows inserted without an explicit business id are stamped with the
// context's tenant by the guard plugin.
func TestCreateStampsBusinessId(t *testing.T) {
	ctx := newTestContext(t, "tenant_stamp")

	account := Account{Name: "Jane Retail", Type: AccountTypeCustomer}
	if err := config.GetDB().WithContext(ctx).Create(&account).Error; err != nil {
		t.Fatalf("create account: %v", err)
	}
	businessId, _ := utils.GetBusinessIdFromContext(ctx)
	if account.BusinessId != businessId {
		t.Fatalf("business id = %q, want %q", account.BusinessId, businessId)
	}
}
