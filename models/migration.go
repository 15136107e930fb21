package models

import (
	"github.com/bizsuite/erp_backend/config"
)

func MigrateTable() error {
	return config.GetDB().AutoMigrate(
		&Business{},
		&TransactionNumberSeries{},
		&TransactionNumberSeriesModule{},
		&Product{},
		&Account{},
		&StockMovement{},
		&StockCount{},
		&StockCountDetail{},
		&PurchaseOrder{},
		&PurchaseOrderDetail{},
		&Invoice{},
		&InvoiceDetail{},
		&Offer{},
		&OfferDetail{},
		&InvoiceReturn{},
		&InvoiceReturnDetail{},
	)
}
