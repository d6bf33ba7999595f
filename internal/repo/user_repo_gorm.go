package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"user-account-api/internal/domain"
	"user-account-api/internal/feature/user"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) Migrate() error { return r.db.AutoMigrate(&user.UserModel{}) }

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	m := user.FromDomain(u)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return wrapWriteErr(err)
	}
	*u = *m.ToDomain()
	return nil
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.first(r.db.WithContext(ctx), "id = ?", id)
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.first(r.db.WithContext(ctx), "email = ?", email)
}

// UpdateByID applies patch to the row with id and returns the stored result.
// A nil user with a nil error means no row matched.
func (r *UserRepo) UpdateByID(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	var out *domain.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m user.UserModel
		if err := tx.First(&m, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if !patch.Empty() {
			u := m.ToDomain()
			patch.ApplyTo(u)
			m = *user.FromDomain(u)
			if err := tx.Save(&m).Error; err != nil {
				return wrapWriteErr(err)
			}
		}
		out = m.ToDomain()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *UserRepo) List(ctx context.Context, f domain.ListFilter) ([]domain.User, int64, error) {
	f = f.Normalize()
	q := r.db.WithContext(ctx).Model(&user.UserModel{})
	if f.Query != "" {
		like := "%" + f.Query + "%"
		q = q.Where("email LIKE ? OR name LIKE ?", like, like)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var ms []user.UserModel
	if err := q.Order("created_at DESC").Limit(f.Limit).Offset(f.Offset).Find(&ms).Error; err != nil {
		return nil, 0, err
	}
	out := make([]domain.User, 0, len(ms))
	for i := range ms {
		out = append(out, *ms[i].ToDomain())
	}
	return out, total, nil
}

func (r *UserRepo) first(q *gorm.DB, cond string, arg any) (*domain.User, error) {
	var m user.UserModel
	err := q.First(&m, cond, arg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m.ToDomain(), nil
}

func wrapWriteErr(err error) error {
	if isDupKey(err) {
		return fmt.Errorf("%w: %v", domain.ErrEmailTaken, err)
	}
	return err
}

func isDupKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation")
}
