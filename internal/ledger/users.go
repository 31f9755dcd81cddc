package ledger

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Siellph/DimaTech-Ltd-test/models"
)

// NewUser carries the fields required to register a user. The password must
// already be hashed.
type NewUser struct {
	Username       string
	Email          string
	FullName       string
	HashedPassword string
	Role           string
}

// UserUpdate holds optional profile changes; nil fields are left untouched.
type UserUpdate struct {
	Username *string
	Email    *string
	FullName *string
}

func (s *Store) CreateUser(ctx context.Context, in NewUser) (*models.User, error) {
	role := in.Role
	if role == "" {
		role = models.RoleUser
	}
	user := &models.User{
		Username:       in.Username,
		Email:          in.Email,
		FullName:       in.FullName,
		HashedPassword: in.HashedPassword,
		Role:           role,
	}
	if err := s.DB(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *Store) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	var user models.User
	if err := s.DB(ctx).Take(&user, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user %d: %w", userID, err)
	}
	return &user, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.DB(ctx).Take(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &user, nil
}

func (s *Store) ListUsers(ctx context.Context, scopes ...Scope) ([]models.User, int64, error) {
	var total int64
	if err := s.DB(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	var users []models.User
	if err := s.DB(ctx).Order("user_id").Scopes(scopes...).Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}

func (s *Store) UpdateUser(ctx context.Context, userID int64, in UserUpdate) (*models.User, error) {
	updates := map[string]any{}
	if in.Username != nil {
		updates["username"] = *in.Username
	}
	if in.Email != nil {
		updates["email"] = *in.Email
	}
	if in.FullName != nil {
		updates["full_name"] = *in.FullName
	}

	var user models.User
	err := s.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Take(&user, "user_id = ?", userID).Error; err != nil {
			return err
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&user).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Take(&user, "user_id = ?", userID).Error
	})
	switch {
	case err == nil:
		return &user, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return nil, ErrUserExists
	default:
		return nil, fmt.Errorf("update user %d: %w", userID, err)
	}
}

// DeleteUser removes the user. Accounts and transactions go with it through
// ON DELETE CASCADE.
func (s *Store) DeleteUser(ctx context.Context, userID int64) error {
	res := s.DB(ctx).Where("user_id = ?", userID).Delete(&models.User{})
	if res.Error != nil {
		return fmt.Errorf("delete user %d: %w", userID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
