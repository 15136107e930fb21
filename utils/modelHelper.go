package utils

import (
	"context"
	"errors"

	"github.com/bizsuite/erp_backend/config"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

/* DB fetching */

// fetch model from db
// (ctx's business_id is used in query's WHERE, may return RecordNotFound)
func FetchModel[T any](ctx context.Context, businessId string, id int, associations ...string) (*T, error) {

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("business_id = ?", businessId)
	// preloading
	for _, field := range associations {
		dbCtx = dbCtx.Preload(field)
	}
	var result T
	err := dbCtx.First(&result, id).Error
	if err != nil {
		// Only a genuine miss becomes NotFound. Infrastructure errors
		// (lock timeouts, dropped connections) must keep their identity so
		// the transaction runner can classify them.
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrorRecordNotFound
		}
		return nil, err
	}
	return &result, nil
}

// fetch all models from db
// (ctx's business_id is used in query's WHERE)
func FetchAllModels[T any](ctx context.Context, businessId string, associations ...string) ([]*T, error) {

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("business_id = ?", businessId)
	// preloading
	for _, field := range associations {
		dbCtx = dbCtx.Preload(field)
	}
	var results []*T
	err := dbCtx.Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// LockForUpdate adds SELECT ... FOR UPDATE on dialects that support it.
// SQLite (tests) rejects the clause and serializes writers on its own.
func LockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// FetchModelForUpdate reloads a model inside tx holding a row lock for the
// rest of the transaction. Every status read-check-write sequence must go
// through this so concurrent transitions on the same document serialize.
func FetchModelForUpdate[T any](tx *gorm.DB, ctx context.Context, businessId string, id int) (*T, error) {
	var result T
	err := LockForUpdate(tx.WithContext(ctx)).Where("business_id = ?", businessId).First(&result, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrorRecordNotFound
		}
		return nil, err
	}
	return &result, nil
}
