package inventory

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/angelmondragon/stockroom/internal/audit"
	"github.com/angelmondragon/stockroom/pkg/db"
	"github.com/angelmondragon/stockroom/pkg/db/models"
	"github.com/angelmondragon/stockroom/pkg/enums"
	pkgerrors "github.com/angelmondragon/stockroom/pkg/errors"
	"github.com/angelmondragon/stockroom/pkg/logger"
	"gorm.io/gorm"
)

const (
	maxNameLength = 255

	// removeAttempts bounds how often a vanished row is re-selected before the
	// storage is reported empty.
	removeAttempts = 3

	soldMessage     = "The item has been sold"
	notFoundMessage = "Products not found"
)

var errEmpty = errors.New("inventory empty")

// Service defines the inventory operations exposed to controllers.
type Service interface {
	Add(ctx context.Context, actor *models.User, name string) (*AddResponse, error)
	RemoveMostRecent(ctx context.Context, actor *models.User) (*RemoveResponse, error)
}

type itemRepository interface {
	Create(ctx context.Context, name string) (*models.InventoryItem, error)
	Latest(ctx context.Context) (*models.InventoryItem, error)
	Delete(ctx context.Context, id uint64) (bool, error)
}

// ServiceParams bundles the dependencies of the inventory service.
type ServiceParams struct {
	RepoFactory func(tx *gorm.DB) itemRepository
	Audit       audit.Auditor
	Logger      *logger.Logger
	Now         func() time.Time
}

type service struct {
	repoFor func(tx *gorm.DB) itemRepository
	audit   audit.Auditor
	logg    *logger.Logger
	now     func() time.Time
}

// NewService constructs the inventory service.
func NewService(params ServiceParams) (Service, error) {
	if params.Audit == nil {
		return nil, fmt.Errorf("audit logger is required")
	}
	repoFor := params.RepoFactory
	if repoFor == nil {
		repoFor = func(tx *gorm.DB) itemRepository { return NewRepository(tx) }
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{repoFor: repoFor, audit: params.Audit, logg: logg, now: now}, nil
}

func (s *service) Add(ctx context.Context, actor *models.User, name string) (*AddResponse, error) {
	if err := requireRole(actor, enums.RoleTrader); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("name must be at most %d characters", maxNameLength))
	}

	var created *models.InventoryItem
	err := s.audit.Within(ctx, audit.MsgProductAdded(actor.Login), s.now().UTC(), func(tx *gorm.DB) error {
		item, err := s.repoFor(tx).Create(ctx, name)
		if err != nil {
			return err
		}
		created = item
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "add product")
	}

	s.logg.Info(s.logg.WithField(ctx, "product_id", created.ID), "inventory.added")
	return &AddResponse{
		Status:  http.StatusOK,
		Message: fmt.Sprintf("Product `%s` has been added", name),
	}, nil
}

func (s *service) RemoveMostRecent(ctx context.Context, actor *models.User) (*RemoveResponse, error) {
	if err := requireRole(actor, enums.RoleBuyer); err != nil {
		return nil, err
	}

	var removed *models.InventoryItem
	err := s.audit.Within(ctx, audit.MsgProductBought(actor.Login), s.now().UTC(), func(tx *gorm.DB) error {
		item, err := s.takeLatest(ctx, s.repoFor(tx))
		if err != nil {
			return err
		}
		removed = item
		return nil
	})
	switch {
	case err == nil:
	case errors.Is(err, errEmpty):
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, notFoundMessage)
	default:
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "remove product")
	}

	s.logg.Info(s.logg.WithField(ctx, "product_id", removed.ID), "inventory.sold")
	return &RemoveResponse{
		Status:  http.StatusOK,
		Message: soldMessage,
		Product: FromModel(removed),
	}, nil
}

// takeLatest deletes the newest unit. A concurrent buyer may delete the
// selected row first; the selection is then retried.
func (s *service) takeLatest(ctx context.Context, repo itemRepository) (*models.InventoryItem, error) {
	for attempt := 0; attempt < removeAttempts; attempt++ {
		item, err := repo.Latest(ctx)
		if err != nil {
			if db.IsNotFound(err) {
				return nil, errEmpty
			}
			return nil, err
		}
		deleted, err := repo.Delete(ctx, item.ID)
		if err != nil {
			return nil, err
		}
		if deleted {
			return item, nil
		}
	}
	return nil, errEmpty
}

func requireRole(actor *models.User, role enums.Role) error {
	if actor == nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "no authenticated user")
	}
	if actor.Position != role {
		return pkgerrors.New(pkgerrors.CodeForbidden, "Forbidden")
	}
	return nil
}
