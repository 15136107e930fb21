package models

import (
	"context"
	"time"

	"github.com/bizsuite/erp_backend/config"
	"github.com/bizsuite/erp_backend/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Business struct {
	ID        uuid.UUID `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Email     string    `gorm:"size:255" json:"email"`
	Phone     string    `gorm:"size:20" json:"phone"`
	Country   string    `gorm:"size:100" json:"country"`
	Timezone  string    `gorm:"size:50" json:"timezone"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type NewBusiness struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"omitempty,email"`
	Phone    string `json:"phone"`
	Country  string `json:"country"`
	Timezone string `json:"timezone"`
}

// CreateBusiness registers a tenant and seeds its default document number
// series. The business table itself is not tenant scoped.
func CreateBusiness(ctx context.Context, input *NewBusiness) (*Business, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	if err := utils.ValidatePhoneNumber(input.Phone, input.Country); err != nil {
		return nil, err
	}

	business := Business{
		ID:       uuid.New(),
		Name:     input.Name,
		Email:    input.Email,
		Phone:    input.Phone,
		Country:  input.Country,
		Timezone: input.Timezone,
	}

	scopeCtx := utils.SetSkipTenantScopeInContext(ctx, true)
	err := runInTransaction(scopeCtx, func(tx *gorm.DB) error {
		if err := tx.Create(&business).Error; err != nil {
			config.LogError(config.GetLogger(), "business", "CreateBusiness", "create", input, err)
			return err
		}
		return seedDefaultNumberSeries(tx, business.ID.String())
	})
	if err != nil {
		return nil, err
	}
	return &business, nil
}

func GetBusinessById(ctx context.Context, id string) (*Business, error) {
	businessId, err := uuid.Parse(id)
	if err != nil {
		return nil, utils.NewNotFound("business not found")
	}
	scopeCtx := utils.SetSkipTenantScopeInContext(ctx, true)
	var business Business
	result := config.GetDB().WithContext(scopeCtx).First(&business, "id = ?", businessId)
	if result.Error != nil {
		return nil, utils.NewNotFound("business not found")
	}
	return &business, nil
}
