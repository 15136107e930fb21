package models

import (
	"errors"
	"testing"

	"github.com/bizsuite/erp_backend/utils"
	"github.com/shopspring/decimal"
)

func TestReceivePurchaseOrderPostsStockAndBalance(t *testing.T) {
	ctx := newTestContext(t, "po_receive")

	supplier, err := CreateAccount(ctx, &NewAccount{Name: "Acme Supplies", Type: AccountTypeSupplier})
	if err != nil {
		t.Fatalf("create supplier: %v", err)
	}
	product, err := CreateProduct(ctx, &NewProduct{Name: "Widget"})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	order, err := CreatePurchaseOrder(ctx, &NewPurchaseOrder{
		SupplierId: supplier.ID,
		OrderDate:  testDate(),
		Details: []NewPurchaseOrderDetail{
			{ProductId: product.ID, DetailQty: decimal.NewFromInt(5), DetailUnitRate: decimal.NewFromInt(4)},
		},
	})
	if err != nil {
		t.Fatalf("create purchase order: %v", err)
	}
	if order.CurrentStatus != PurchaseOrderStatusPending {
		t.Fatalf("status = %s, want Pending", order.CurrentStatus)
	}
	if !order.OrderTotalAmount.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("total = %s, want 20", order.OrderTotalAmount)
	}

	received, err := ReceivePurchaseOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if received.CurrentStatus != PurchaseOrderStatusReceived {
		t.Fatalf("status = %s, want Received", received.CurrentStatus)
	}

	product, _ = GetProduct(ctx, product.ID)
	if !product.Stock.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("stock = %s, want 5", product.Stock)
	}
	supplier, _ = GetAccount(ctx, supplier.ID)
	if !supplier.Balance.Equal(decimal.NewFromInt(-20)) {
		t.Fatalf("supplier balance = %s, want -20", supplier.Balance)
	}

	movements, _ := GetStockMovements(ctx, &product.ID)
	if len(movements) != 1 {
		t.Fatalf("movements = %d, want 1", len(movements))
	}
	if movements[0].Kind != StockMovementKindPurchase {
		t.Fatalf("kind = %s, want purchase", movements[0].Kind)
	}
	if movements[0].DocumentNo != order.OrderNumber {
		t.Fatalf("document no = %q, want %q", movements[0].DocumentNo, order.OrderNumber)
	}
}

func TestReceivePurchaseOrderTwiceIsNoOp(t *testing.T) {
	ctx := newTestContext(t, "po_rereceive")

	supplier, err := CreateAccount(ctx, &NewAccount{Name: "Acme Supplies", Type: AccountTypeSupplier})
	if err != nil {
		t.Fatalf("create supplier: %v", err)
	}
	product, err := CreateProduct(ctx, &NewProduct{Name: "Widget"})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	order, err := CreatePurchaseOrder(ctx, &NewPurchaseOrder{
		SupplierId: supplier.ID,
		OrderDate:  testDate(),
		Details: []NewPurchaseOrderDetail{
			{ProductId: product.ID, DetailQty: decimal.NewFromInt(5), DetailUnitRate: decimal.NewFromInt(4)},
		},
	})
	if err != nil {
		t.Fatalf("create purchase order: %v", err)
	}
	if _, err := ReceivePurchaseOrder(ctx, order.ID); err != nil {
		t.Fatalf("first receive: %v", err)
	}

	again, err := ReceivePurchaseOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("second receive: %v", err)
	}
	if again.CurrentStatus != PurchaseOrderStatusReceived {
		t.Fatalf("status = %s, want Received", again.CurrentStatus)
	}

	product, _ = GetProduct(ctx, product.ID)
	if !product.Stock.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("stock = %s, want 5 (no double posting)", product.Stock)
	}
	supplier, _ = GetAccount(ctx, supplier.ID)
	if !supplier.Balance.Equal(decimal.NewFromInt(-20)) {
		t.Fatalf("supplier balance = %s, want -20 (no double posting)", supplier.Balance)
	}
	movements, _ := GetStockMovements(ctx, &product.ID)
	if len(movements) != 1 {
		t.Fatalf("movements = %d, want 1", len(movements))
	}
}

func TestCancelPurchaseOrder(t *testing.T) {
	ctx := newTestContext(t, "po_cancel")

	product, err := CreateProduct(ctx, &NewProduct{Name: "Widget"})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	order, err := CreatePurchaseOrder(ctx, &NewPurchaseOrder{
		OrderDate: testDate(),
		Details: []NewPurchaseOrderDetail{
			{ProductId: product.ID, DetailQty: decimal.NewFromInt(2)},
		},
	})
	if err != nil {
		t.Fatalf("create purchase order: %v", err)
	}

	cancelled, err := CancelPurchaseOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.CurrentStatus != PurchaseOrderStatusCancelled {
		t.Fatalf("status = %s, want Cancelled", cancelled.CurrentStatus)
	}
	movements, _ := GetStockMovements(ctx, &product.ID)
	if len(movements) != 0 {
		t.Fatalf("movements = %d, want 0", len(movements))
	}

	_, err = ReceivePurchaseOrder(ctx, order.ID)
	if !errors.Is(err, utils.ErrorInvalidStateTransition) {
		t.Fatalf("receive cancelled err = %v, want invalid state transition", err)
	}
}

func TestCancelReceivedPurchaseOrderIsLocked(t *testing.T) {
	ctx := newTestContext(t, "po_cancel_received")

	supplier, err := CreateAccount(ctx, &NewAccount{Name: "Acme Supplies", Type: AccountTypeSupplier})
	if err != nil {
		t.Fatalf("create supplier: %v", err)
	}
	product, err := CreateProduct(ctx, &NewProduct{Name: "Widget"})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	order, err := CreatePurchaseOrder(ctx, &NewPurchaseOrder{
		SupplierId: supplier.ID,
		OrderDate:  testDate(),
		Details: []NewPurchaseOrderDetail{
			{ProductId: product.ID, DetailQty: decimal.NewFromInt(1), DetailUnitRate: decimal.NewFromInt(3)},
		},
	})
	if err != nil {
		t.Fatalf("create purchase order: %v", err)
	}
	if _, err := ReceivePurchaseOrder(ctx, order.ID); err != nil {
		t.Fatalf("receive: %v", err)
	}

	_, err = CancelPurchaseOrder(ctx, order.ID)
	if !errors.Is(err, utils.ErrorDocumentLocked) {
		t.Fatalf("cancel received err = %v, want document locked", err)
	}
}

func TestReceivePurchaseOrderWithoutSupplier(t *testing.T) {
	ctx := newTestContext(t, "po_no_supplier")

	product, err := CreateProduct(ctx, &NewProduct{Name: "Widget"})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	order, err := CreatePurchaseOrder(ctx, &NewPurchaseOrder{
		OrderDate: testDate(),
		Details: []NewPurchaseOrderDetail{
			{ProductId: product.ID, DetailQty: decimal.NewFromInt(2), DetailUnitRate: decimal.NewFromInt(10)},
		},
	})
	if err != nil {
		t.Fatalf("create purchase order: %v", err)
	}

	_, err = ReceivePurchaseOrder(ctx, order.ID)
	if !errors.Is(err, utils.ErrorValidation) {
		t.Fatalf("receive err = %v, want validation error", err)
	}

	// Nothing may have been posted by the failed receive.
	order, _ = GetPurchaseOrder(ctx, order.ID)
	if order.CurrentStatus != PurchaseOrderStatusPending {
		t.Fatalf("status = %s, want Pending", order.CurrentStatus)
	}
	movements, _ := GetStockMovements(ctx, &product.ID)
	if len(movements) != 0 {
		t.Fatalf("movements = %d, want 0", len(movements))
	}
}
