package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/webshop/internal/auth"
	"github.com/Skotchmaster/webshop/internal/events"
	"github.com/Skotchmaster/webshop/internal/hash"
	"github.com/Skotchmaster/webshop/internal/models"
	"github.com/Skotchmaster/webshop/internal/repo"
	"github.com/Skotchmaster/webshop/internal/tokens"
	"github.com/Skotchmaster/webshop/internal/transport"
)

const maxUsernameLen = 64

type AuthService struct {
	Repo   repo.Store
	Tokens *tokens.Service
	Events events.Publisher
}

// Register creates an account. The first account ever created is an administrator.
func (s *AuthService) Register(ctx context.Context, req transport.RegisterRequest) (*transport.AuthResponse, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrValidation)
	}
	if len(username) > maxUsernameLen {
		return nil, fmt.Errorf("%w: username is longer than %d characters", ErrValidation, maxUsernameLen)
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	user := models.User{
		Username:     username,
		PasswordHash: pwHash,
		Email:        strings.TrimSpace(req.Email),
		FullName:     strings.TrimSpace(req.FullName),
		Role:         models.RoleUser,
	}

	err = s.Repo.Transaction(ctx, func(tx repo.Store) error {
		if err := tx.LockRegistrations(ctx); err != nil {
			return err
		}
		taken, err := tx.UsernameTaken(ctx, username)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("%w: username %q is already taken", ErrConflict, username)
		}
		n, err := tx.CountUsers(ctx)
		if err != nil {
			return err
		}
		if n == 0 {
			user.Role = models.RoleAdmin
		}
		if err := tx.CreateUser(ctx, &user); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: username %q is already taken", ErrConflict, username)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.Events, events.TopicUserEvents, user.Username, events.UserRegistered{
		Type:     "user_registered",
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		At:       time.Now().UTC(),
	})
	return resp, nil
}

func (s *AuthService) Login(ctx context.Context, req transport.LoginRequest) (*transport.AuthResponse, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrValidation)
	}

	user, err := s.Repo.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: invalid credentials", auth.ErrUnauthorized)
		}
		return nil, err
	}
	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		return nil, fmt.Errorf("%w: invalid credentials", auth.ErrUnauthorized)
	}

	return s.issue(*user)
}

func (s *AuthService) issue(u models.User) (*transport.AuthResponse, error) {
	tok, exp, err := s.Tokens.Issue(u.Username, u.Role, u.ID)
	if err != nil {
		return nil, err
	}
	return &transport.AuthResponse{
		Token:     tok,
		Role:      u.Role,
		Username:  u.Username,
		ExpiresAt: exp,
	}, nil
}
