package repository

import (
	"context"
	"errors"

	"timsbridge/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DeviceSetupRepository interface {
	// Get returns the single setup row, creating it from defaults when the
	// table is empty.
	Get(ctx context.Context, defaults model.DeviceSetup) (*model.DeviceSetup, error)
	Save(ctx context.Context, setup *model.DeviceSetup) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

type deviceSetupRepository struct {
	db *gorm.DB
}

func NewDeviceSetupRepository(db *gorm.DB) DeviceSetupRepository {
	return &deviceSetupRepository{db: db}
}

func (r *deviceSetupRepository) Get(ctx context.Context, defaults model.DeviceSetup) (*model.DeviceSetup, error) {
	db := GetDB(ctx, r.db)

	var setup model.DeviceSetup
	err := db.Order("created_at asc").First(&setup).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		setup = defaults
		err = db.Create(&setup).Error
	}
	if err != nil {
		return nil, err
	}
	return &setup, nil
}

func (r *deviceSetupRepository) Save(ctx context.Context, setup *model.DeviceSetup) error {
	return GetDB(ctx, r.db).Save(setup).Error
}

func (r *deviceSetupRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	res := GetDB(ctx, r.db).Model(&model.DeviceSetup{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
