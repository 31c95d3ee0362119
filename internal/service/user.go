package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Skotchmaster/webshop/internal/auth"
	"github.com/Skotchmaster/webshop/internal/hash"
	"github.com/Skotchmaster/webshop/internal/models"
	"github.com/Skotchmaster/webshop/internal/repo"
	"github.com/Skotchmaster/webshop/internal/transport"
)

type UserService struct {
	Repo repo.Store
}

func (s *UserService) Profile(ctx context.Context, id *auth.Identity) (*transport.UserView, error) {
	if id == nil {
		return nil, auth.ErrUnauthorized
	}
	u, err := s.Repo.FindUserByID(ctx, id.UserID)
	if err != nil {
		return nil, notFound(err, "user")
	}
	v := transport.NewUserView(*u)
	return &v, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, id *auth.Identity, req transport.UpdateProfileRequest) (*transport.UserView, error) {
	if id == nil {
		return nil, auth.ErrUnauthorized
	}
	u, err := s.Repo.FindUserByID(ctx, id.UserID)
	if err != nil {
		return nil, notFound(err, "user")
	}
	applyProfile(u, req.Email, req.FullName)
	if err := s.Repo.SaveUser(ctx, u); err != nil {
		return nil, err
	}
	v := transport.NewUserView(*u)
	return &v, nil
}

func applyProfile(u *models.User, email, fullName *string) {
	if email != nil {
		u.Email = strings.TrimSpace(*email)
	}
	if fullName != nil {
		u.FullName = strings.TrimSpace(*fullName)
	}
}

// ChangePassword lets a user change their own password after proving the old one.
// Administrators may reset anyone's password without it.
func (s *UserService) ChangePassword(ctx context.Context, id *auth.Identity, targetID uint, req transport.ChangePasswordRequest) error {
	if err := auth.CheckOwner(id, targetID); err != nil {
		return err
	}
	if req.NewPassword == "" {
		return fmt.Errorf("%w: new password is required", ErrValidation)
	}

	u, err := s.Repo.FindUserByID(ctx, targetID)
	if err != nil {
		return notFound(err, "user")
	}
	if !id.IsAdmin() && !hash.CheckPassword(u.PasswordHash, req.OldPassword) {
		return fmt.Errorf("%w: old password is incorrect", ErrValidation)
	}

	pwHash, err := hash.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	u.PasswordHash = pwHash
	return s.Repo.SaveUser(ctx, u)
}

func (s *UserService) List(ctx context.Context, id *auth.Identity) ([]transport.UserView, error) {
	if err := requireAdmin(id); err != nil {
		return nil, err
	}
	users, err := s.Repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]transport.UserView, 0, len(users))
	for _, u := range users {
		out = append(out, transport.NewUserView(u))
	}
	return out, nil
}

func (s *UserService) AdminUpdate(ctx context.Context, id *auth.Identity, targetID uint, req transport.AdminUpdateUserRequest) (*transport.UserView, error) {
	if err := requireAdmin(id); err != nil {
		return nil, err
	}
	if req.Role != nil && !models.ValidRole(*req.Role) {
		return nil, fmt.Errorf("%w: role must be %s or %s", ErrValidation, models.RoleUser, models.RoleAdmin)
	}

	u, err := s.Repo.FindUserByID(ctx, targetID)
	if err != nil {
		return nil, notFound(err, "user")
	}
	applyProfile(u, req.Email, req.FullName)
	if req.Role != nil {
		u.Role = *req.Role
	}
	if err := s.Repo.SaveUser(ctx, u); err != nil {
		return nil, err
	}
	v := transport.NewUserView(*u)
	return &v, nil
}

// Delete removes the account and its cart. Orders stay for bookkeeping.
func (s *UserService) Delete(ctx context.Context, id *auth.Identity, targetID uint) error {
	if err := requireAdmin(id); err != nil {
		return err
	}
	return s.Repo.Transaction(ctx, func(tx repo.Store) error {
		if _, err := tx.FindUserByID(ctx, targetID); err != nil {
			return notFound(err, "user")
		}
		if err := tx.ClearCart(ctx, targetID); err != nil {
			return err
		}
		return tx.DeleteUser(ctx, targetID)
	})
}
