package users

import (
	"context"
	"errors"

	"github.com/angelmondragon/stockroom/internal/repo"
	"github.com/angelmondragon/stockroom/pkg/db"
	"github.com/angelmondragon/stockroom/pkg/db/models"
	"gorm.io/gorm"
)

const loginIndex = "idx_users_login"

// ErrDuplicateLogin is returned when the login is already registered.
var ErrDuplicateLogin = errors.New("login already registered")

// Repository exposes user-related persistence operations.
type Repository struct {
	repo.Base
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx returns a repository bound to tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: r.Base.WithTx(tx)}
}

// Create inserts a new user. The unique login index is the only duplicate
// check; a violation is reported as ErrDuplicateLogin.
func (r *Repository) Create(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	if err := r.DB(ctx).Create(user).Error; err != nil {
		if isDuplicateLogin(err) {
			return nil, ErrDuplicateLogin
		}
		return nil, err
	}
	return user, nil
}

// FindByLogin retrieves the user matching login. Absence is reported as
// gorm.ErrRecordNotFound.
func (r *Repository) FindByLogin(ctx context.Context, login string) (*models.User, error) {
	var user models.User
	if err := r.DB(ctx).Where("login = ?", login).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Translated gorm errors drop the constraint name; users carries no other
// unique index, so any duplicate-key error is a login clash.
func isDuplicateLogin(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return db.IsUniqueViolation(err, loginIndex) || db.IsUniqueViolation(err, "users.login")
}
