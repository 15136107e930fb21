package models

import (
	"context"
	"time"

	"github.com/bizsuite/erp_backend/config"
	"github.com/bizsuite/erp_backend/utils"
	"gorm.io/gorm"
)

const (
	ModuleNameInvoice       = "Invoice"
	ModuleNamePurchaseOrder = "PurchaseOrder"
	ModuleNameStockCount    = "StockCount"
	ModuleNameOffer         = "Offer"
	ModuleNameInvoiceReturn = "InvoiceReturn"
)

var defaultModulePrefixes = map[string]string{
	ModuleNameInvoice:       "INV-",
	ModuleNamePurchaseOrder: "PO-",
	ModuleNameStockCount:    "SC-",
	ModuleNameOffer:         "OF-",
	ModuleNameInvoiceReturn: "RT-",
}

// TransactionNumberSeries holds a tenant's document number prefixes, one row
// per document module.
type TransactionNumberSeries struct {
	ID         int                             `gorm:"primary_key" json:"id"`
	BusinessId string                          `gorm:"index;size:64;not null" json:"businessId"`
	Name       string                          `gorm:"size:100;not null" json:"name"`
	Modules    []TransactionNumberSeriesModule `gorm:"foreignKey:SeriesId" json:"modules"`
	CreatedAt  time.Time                       `json:"createdAt"`
	UpdatedAt  time.Time                       `json:"updatedAt"`
}

type TransactionNumberSeriesModule struct {
	SeriesId   int    `gorm:"primary_key;autoIncrement:false" json:"seriesId"`
	ModuleName string `gorm:"primary_key;size:50" json:"moduleName"`
	Prefix     string `gorm:"size:20;not null" json:"prefix"`
}

func seedDefaultNumberSeries(tx *gorm.DB, businessId string) error {
	series := TransactionNumberSeries{
		BusinessId: businessId,
		Name:       "Default",
	}
	for moduleName, prefix := range defaultModulePrefixes {
		series.Modules = append(series.Modules, TransactionNumberSeriesModule{
			ModuleName: moduleName,
			Prefix:     prefix,
		})
	}
	return tx.Create(&series).Error
}

// UpdateTransactionNumberSeriesModule changes the document number prefix a
// tenant uses for one module and busts the cached prefix map so the next
// numbered document picks it up.
func UpdateTransactionNumberSeriesModule(ctx context.Context, moduleName string, prefix string) (*TransactionNumberSeriesModule, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok {
		return nil, utils.NewValidationError("missing business id")
	}
	if _, known := defaultModulePrefixes[moduleName]; !known {
		return nil, utils.NewValidationError("unknown document module " + moduleName)
	}
	if prefix == "" {
		return nil, utils.NewValidationError("prefix must not be empty")
	}

	var series TransactionNumberSeries
	result := config.GetDB().WithContext(ctx).
		Where("business_id = ?", businessId).
		Order("id ASC").
		First(&series)
	if result.Error != nil {
		return nil, utils.ErrorRecordNotFound
	}

	module := TransactionNumberSeriesModule{
		SeriesId:   series.ID,
		ModuleName: moduleName,
		Prefix:     prefix,
	}
	update := config.GetDB().WithContext(ctx).
		Model(&TransactionNumberSeriesModule{}).
		Where("series_id = ? AND module_name = ?", series.ID, moduleName).
		Update("prefix", prefix)
	if update.Error != nil {
		return nil, update.Error
	}
	if update.RowsAffected == 0 {
		if err := config.GetDB().WithContext(ctx).Create(&module).Error; err != nil {
			return nil, err
		}
	}

	if err := config.RemoveRedisKey("tnsPrefixMap:" + businessId); err != nil {
		config.LogError(config.GetLogger(), "transactionNumberSeries", "UpdateTransactionNumberSeriesModule", "cache", businessId, err)
	}
	return &module, nil
}

// getTransactionPrefix resolves the document number prefix for a module,
// preferring the redis-cached prefix map and falling back to the database.
// A tenant without a configured series gets the built-in defaults.
func getTransactionPrefix(ctx context.Context, businessId string, moduleName string) (string, error) {
	cacheKey := "tnsPrefixMap:" + businessId

	prefixMap := map[string]string{}
	if found, err := config.GetRedisObject(cacheKey, &prefixMap); err == nil && found {
		if prefix, ok := prefixMap[moduleName]; ok {
			return prefix, nil
		}
	}

	var series TransactionNumberSeries
	result := config.GetDB().WithContext(ctx).
		Preload("Modules").
		Where("business_id = ?", businessId).
		Order("id ASC").
		First(&series)
	if result.Error != nil {
		if prefix, ok := defaultModulePrefixes[moduleName]; ok {
			return prefix, nil
		}
		return "", utils.NewValidationError("unknown document module " + moduleName)
	}

	prefixMap = map[string]string{}
	for _, module := range series.Modules {
		prefixMap[module.ModuleName] = module.Prefix
	}
	if err := config.SetRedisObject(cacheKey, prefixMap, 24*time.Hour); err != nil {
		config.LogError(config.GetLogger(), "transactionNumberSeries", "getTransactionPrefix", "cache", cacheKey, err)
	}

	if prefix, ok := prefixMap[moduleName]; ok {
		return prefix, nil
	}
	if prefix, ok := defaultModulePrefixes[moduleName]; ok {
		return prefix, nil
	}
	return "", utils.NewValidationError("unknown document module " + moduleName)
}
