package users

import (
	"strings"

	"github.com/angelmondragon/stockroom/pkg/db/models"
	"github.com/angelmondragon/stockroom/pkg/enums"
)

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Login        string
	PasswordHash string
	Position     enums.Role
}

func (c CreateUserDTO) ToModel() *models.User {
	return &models.User{
		Login:        strings.TrimSpace(c.Login),
		PasswordHash: c.PasswordHash,
		Position:     c.Position,
	}
}
