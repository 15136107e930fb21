package models

import (
	"context"
	"strings"

	"github.com/bizsuite/erp_backend/config"
	"gorm.io/gorm"
)

// runInTransaction executes fn inside a single database transaction. When the
// unit fails with a transient infrastructure error (deadlock, lock wait
// timeout, dropped connection) the whole unit is re-run once from scratch on
// a fresh transaction. Business-rule errors are never retried.
func runInTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		err := runTransactionOnce(ctx, fn)
		if err == nil {
			return nil
		}
		lastErr = err
		if !isTransientDbError(err) {
			return err
		}
		config.LogError(config.GetLogger(), "models", "runInTransaction",
			"retrying after transient database error", attempt, err)
	}
	return lastErr
}

func runTransactionOnce(ctx context.Context, fn func(tx *gorm.DB) error) error {
	db := config.GetDB().WithContext(ctx)
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

func isTransientDbError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, marker := range []string{
		"Error 1205", // lock wait timeout exceeded
		"Error 1213", // deadlock found when trying to get lock
		"database is locked",
		"database table is locked",
		"invalid connection",
		"bad connection",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
