package user

import (
	"time"

	"gorm.io/gorm"

	"user-account-api/internal/domain"
)

type UserModel struct {
	ID      string `gorm:"primaryKey;type:varchar(32)"`
	Email   string `gorm:"uniqueIndex;size:255;not null"`
	Name    string `gorm:"size:128;not null"`
	Phone   string `gorm:"size:32"`
	Address string `gorm:"size:255"`
	Role    string `gorm:"size:16;not null;default:user"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (UserModel) TableName() string { return "users" }

// BeforeSave re-runs entity validation on every insert and update.
func (m *UserModel) BeforeSave(tx *gorm.DB) error {
	return m.ToDomain().Validate()
}

func (m *UserModel) ToDomain() *domain.User {
	return &domain.User{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Phone:     m.Phone,
		Address:   m.Address,
		Role:      m.Role,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func FromDomain(u *domain.User) *UserModel {
	return &UserModel{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Phone:     u.Phone,
		Address:   u.Address,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
