package models

import (
	"time"

	"github.com/angelmondragon/stockroom/pkg/enums"
)

// User is a registered account. Login uniqueness is enforced by the storage
// layer through idx_users_login.
type User struct {
	ID           uint64     `gorm:"primaryKey;autoIncrement"`
	Login        string     `gorm:"type:text;not null;uniqueIndex:idx_users_login"`
	PasswordHash string     `gorm:"column:password_hash;type:text;not null"`
	Position     enums.Role `gorm:"column:position;type:text;not null"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (User) TableName() string {
	return "users"
}
