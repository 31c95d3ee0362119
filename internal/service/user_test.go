package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/webshop/internal/auth"
	"github.com/Skotchmaster/webshop/internal/models"
	"github.com/Skotchmaster/webshop/internal/transport"
)

func strPtr(s string) *string { return &s }

func TestUserService_Profile(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")

	v, err := env.Users.UpdateProfile(ctx, alice, transport.UpdateProfileRequest{
		Email:    strPtr(" alice@example.com "),
		FullName: strPtr("Alice Liddell"),
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", v.Email)

	got, err := env.Users.Profile(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, "Alice Liddell", got.FullName)
	assert.Equal(t, "alice", got.Username)

	_, err = env.Users.Profile(ctx, nil)
	assert.ErrorIs(t, err, auth.ErrUnauthorized)
}

func TestUserService_ChangePassword(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.register(t, "root")
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	err := env.Users.ChangePassword(ctx, alice, alice.UserID, transport.ChangePasswordRequest{OldPassword: "wrong", NewPassword: "n1"})
	assert.ErrorIs(t, err, ErrValidation)

	err = env.Users.ChangePassword(ctx, bob, alice.UserID, transport.ChangePasswordRequest{OldPassword: "pw-alice", NewPassword: "n1"})
	assert.ErrorIs(t, err, auth.ErrForbidden)

	require.NoError(t, env.Users.ChangePassword(ctx, alice, alice.UserID,
		transport.ChangePasswordRequest{OldPassword: "pw-alice", NewPassword: "n1"}))
	_, err = env.Auth.Login(ctx, transport.LoginRequest{Username: "alice", Password: "n1"})
	require.NoError(t, err)

	// administrators reset without the old password
	require.NoError(t, env.Users.ChangePassword(ctx, admin, alice.UserID, transport.ChangePasswordRequest{NewPassword: "n2"}))
	_, err = env.Auth.Login(ctx, transport.LoginRequest{Username: "alice", Password: "n2"})
	require.NoError(t, err)

	err = env.Users.ChangePassword(ctx, admin, 4242, transport.ChangePasswordRequest{NewPassword: "x"})
	assert.ErrorIs(t, err, ErrNotFound)

	err = env.Users.ChangePassword(ctx, alice, alice.UserID, transport.ChangePasswordRequest{OldPassword: "n2"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUserService_AdminOperations(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.register(t, "root")
	alice := env.register(t, "alice")
	p := env.product(t, "A", "1.00")
	env.addToCart(t, alice, p.ID, 2)

	_, err := env.Users.List(ctx, alice)
	assert.ErrorIs(t, err, auth.ErrForbidden)

	users, err := env.Users.List(ctx, admin)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, models.RoleAdmin, users[0].Role)

	_, err = env.Users.AdminUpdate(ctx, admin, alice.UserID, transport.AdminUpdateUserRequest{Role: strPtr("SUPERUSER")})
	assert.ErrorIs(t, err, ErrValidation)

	v, err := env.Users.AdminUpdate(ctx, admin, alice.UserID, transport.AdminUpdateUserRequest{Role: strPtr(models.RoleAdmin)})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, v.Role)

	require.NoError(t, env.Users.Delete(ctx, admin, alice.UserID))
	_, err = env.Repo.FindUserByID(ctx, alice.UserID)
	require.Error(t, err)
	cart, err := env.Repo.CartItems(ctx, alice.UserID)
	require.NoError(t, err)
	assert.Empty(t, cart)

	assert.ErrorIs(t, env.Users.Delete(ctx, admin, alice.UserID), ErrNotFound)
	assert.ErrorIs(t, env.Users.Delete(ctx, nil, 1), auth.ErrUnauthorized)
}
