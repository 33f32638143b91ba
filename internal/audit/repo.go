package audit

import (
	"context"
	"time"

	"github.com/angelmondragon/stockroom/internal/repo"
	"github.com/angelmondragon/stockroom/pkg/db/models"
	"gorm.io/gorm"
)

// Repository appends audit events. Events are never updated or deleted.
type Repository struct {
	repo.Base
}

// NewRepository constructs an audit repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx returns a repository bound to tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: r.Base.WithTx(tx)}
}

// Append inserts a single event.
func (r *Repository) Append(ctx context.Context, message string, at time.Time) (*models.AuditEvent, error) {
	event := &models.AuditEvent{Event: message, Timestamp: at.UTC()}
	if err := r.DB(ctx).Create(event).Error; err != nil {
		return nil, err
	}
	return event, nil
}
