package models

type AccountType string

const (
	AccountTypeCustomer AccountType = "Customer"
	AccountTypeSupplier AccountType = "Supplier"
)

func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeCustomer, AccountTypeSupplier:
		return true
	}
	return false
}

type DiscountType string

const (
	DiscountTypePercent DiscountType = "P"
	DiscountTypeAmount  DiscountType = "A"
)

// StockMovementKind names the reason a ledger row was written. Purchase and
// adjustment_inc add to stock, sale and adjustment_dec subtract.
type StockMovementKind string

const (
	StockMovementKindSale          StockMovementKind = "sale"
	StockMovementKindPurchase      StockMovementKind = "purchase"
	StockMovementKindAdjustmentInc StockMovementKind = "adjustment_inc"
	StockMovementKindAdjustmentDec StockMovementKind = "adjustment_dec"
)

func (k StockMovementKind) Valid() bool {
	switch k {
	case StockMovementKindSale, StockMovementKindPurchase,
		StockMovementKindAdjustmentInc, StockMovementKindAdjustmentDec:
		return true
	}
	return false
}

func (k StockMovementKind) IsIncrease() bool {
	return k == StockMovementKindPurchase || k == StockMovementKindAdjustmentInc
}

type StockCountStatus string

const (
	StockCountStatusOpen      StockCountStatus = "Open"
	StockCountStatusCompleted StockCountStatus = "Completed"
)

type PurchaseOrderStatus string

const (
	PurchaseOrderStatusPending   PurchaseOrderStatus = "Pending"
	PurchaseOrderStatusReceived  PurchaseOrderStatus = "Received"
	PurchaseOrderStatusCancelled PurchaseOrderStatus = "Cancelled"
)

// Invoices are born posted; there is no draft stage.
type InvoiceStatus string

const (
	InvoiceStatusPosted InvoiceStatus = "Posted"
)

type InvoiceType string

const (
	InvoiceTypeSales    InvoiceType = "Sales"
	InvoiceTypePurchase InvoiceType = "Purchase"
)

func (t InvoiceType) Valid() bool {
	return t == InvoiceTypeSales || t == InvoiceTypePurchase
}

type OfferStatus string

const (
	OfferStatusDraft    OfferStatus = "Draft"
	OfferStatusInvoiced OfferStatus = "Invoiced"
)

type InvoiceReturnStatus string

const (
	InvoiceReturnStatusPending  InvoiceReturnStatus = "Pending"
	InvoiceReturnStatusApproved InvoiceReturnStatus = "Approved"
	InvoiceReturnStatusRejected InvoiceReturnStatus = "Rejected"
)
