package models

import (
	"context"
	"time"

	"github.com/bizsuite/erp_backend/config"
	"github.com/bizsuite/erp_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Account is a business counterparty, customer or supplier. Balance is signed
// from the tenant's point of view: positive means the counterparty owes the
// tenant money.
type Account struct {
	ID         int             `gorm:"primary_key" json:"id"`
	BusinessId string          `gorm:"index;size:64;not null" json:"businessId"`
	Name       string          `gorm:"size:100;not null" json:"name"`
	Type       AccountType     `gorm:"size:20;not null" json:"type"`
	Email      string          `gorm:"size:255" json:"email"`
	Phone      string          `gorm:"size:20" json:"phone"`
	Balance    decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"balance"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

type NewAccount struct {
	Name        string      `json:"name" binding:"required"`
	Type        AccountType `json:"type" binding:"required,oneof=Customer Supplier"`
	Email       string      `json:"email" binding:"omitempty,email"`
	Phone       string      `json:"phone"`
	CountryCode string      `json:"countryCode"`
}

func CreateAccount(ctx context.Context, input *NewAccount) (*Account, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok {
		return nil, utils.NewValidationError("missing business id")
	}
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	if err := utils.ValidatePhoneNumber(input.Phone, input.CountryCode); err != nil {
		return nil, err
	}
	if err := utils.ValidateUnique[Account](ctx, businessId, "name", input.Name, 0); err != nil {
		return nil, err
	}

	account := Account{
		BusinessId: businessId,
		Name:       input.Name,
		Type:       input.Type,
		Email:      input.Email,
		Phone:      input.Phone,
	}
	if err := config.GetDB().WithContext(ctx).Create(&account).Error; err != nil {
		config.LogError(config.GetLogger(), "account", "CreateAccount", "create", input, err)
		return nil, err
	}
	return &account, nil
}

func GetAccount(ctx context.Context, id int) (*Account, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok {
		return nil, utils.NewValidationError("missing business id")
	}
	return utils.FetchModel[Account](ctx, businessId, id)
}

func GetAccounts(ctx context.Context) ([]*Account, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok {
		return nil, utils.NewValidationError("missing business id")
	}
	return utils.FetchAllModels[Account](ctx, businessId)
}

// applyAccountBalanceDelta adjusts an account balance inside the caller's
// transaction. The row is locked before the SQL-side increment; an account
// that does not exist for this tenant aborts the whole unit.
func applyAccountBalanceDelta(tx *gorm.DB, ctx context.Context, businessId string, accountId int, delta decimal.Decimal) error {
	if _, err := utils.FetchModelForUpdate[Account](tx, ctx, businessId, accountId); err != nil {
		return err
	}
	result := tx.WithContext(ctx).Model(&Account{}).
		Where("business_id = ? AND id = ?", businessId, accountId).
		Update("balance", gorm.Expr("balance + ?", delta))
	if result.Error != nil {
		config.LogError(config.GetLogger(), "account", "applyAccountBalanceDelta", "update", accountId, result.Error)
		return result.Error
	}
	return nil
}
