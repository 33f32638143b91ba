package inventory

import (
	"time"

	"github.com/angelmondragon/stockroom/pkg/db/models"
)

// AddProductRequest is the body accepted by the add-product endpoint.
type AddProductRequest struct {
	Name string `json:"name" validate:"required"`
}

// ItemDTO is the transport shape of an inventory unit.
type ItemDTO struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// AddResponse acknowledges a new unit.
type AddResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// RemoveResponse acknowledges a sale and echoes the removed unit.
type RemoveResponse struct {
	Status  int      `json:"status"`
	Message string   `json:"message"`
	Product *ItemDTO `json:"product,omitempty"`
}

func FromModel(item *models.InventoryItem) *ItemDTO {
	if item == nil {
		return nil
	}
	return &ItemDTO{ID: item.ID, Name: item.Name, CreatedAt: item.CreatedAt}
}
