package inventory

import (
	"context"

	"github.com/angelmondragon/stockroom/internal/repo"
	"github.com/angelmondragon/stockroom/pkg/db/models"
	"gorm.io/gorm"
)

// Repository exposes inventory persistence operations.
type Repository struct {
	repo.Base
}

// NewRepository constructs an inventory repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx returns a repository bound to tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: r.Base.WithTx(tx)}
}

// Create inserts one unit named name.
func (r *Repository) Create(ctx context.Context, name string) (*models.InventoryItem, error) {
	item := &models.InventoryItem{Name: name}
	if err := r.DB(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// Latest returns the most recently added unit. Absence is reported as
// gorm.ErrRecordNotFound.
func (r *Repository) Latest(ctx context.Context) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := r.DB(ctx).Order("id DESC").First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// Delete removes the unit with id and reports whether a row was removed.
func (r *Repository) Delete(ctx context.Context, id uint64) (bool, error) {
	res := r.DB(ctx).Where("id = ?", id).Delete(&models.InventoryItem{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
