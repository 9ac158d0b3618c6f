package usecase

import (
	"context"
	"testing"

	"tour-booking/internal/data/entity"
	"tour-booking/internal/dto/request"
	"tour-booking/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newAuthEnv(t *testing.T) (AuthService, *fakeStore, *fakeMailer) {
	t.Helper()

	store := newFakeStore()
	config := &utils.Config{}
	config.Session.ExpiryHours = 24
	config.OTP.ExpiryMinutes = 10
	config.OTP.Length = 6

	m := &fakeMailer{}
	auth := NewAuthService(store.repo(), config, m, zap.NewNop())
	return auth, store, m
}

func registerRequest() *request.RegisterRequest {
	return &request.RegisterRequest{
		Username: "linhtran",
		Email:    "linh@example.com",
		Password: "hunter22",
	}
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("creates account and logs in", func(t *testing.T) {
		auth, store, _ := newAuthEnv(t)

		resp, err := auth.Register(ctx, registerRequest())
		require.NoError(t, err)
		assert.Equal(t, "linhtran", resp.Username)
		assert.Equal(t, entity.RoleCustomer, resp.Role)
		assert.NotEmpty(t, resp.Token)

		// Password is stored hashed
		store.mu.Lock()
		for _, u := range store.users {
			assert.NotEqual(t, "hunter22", u.PasswordHash)
			assert.True(t, u.IsActive)
		}
		store.mu.Unlock()
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		auth, _, _ := newAuthEnv(t)

		_, err := auth.Register(ctx, registerRequest())
		require.NoError(t, err)

		dup := registerRequest()
		dup.Username = "someone-else"
		_, err = auth.Register(ctx, dup)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already registered")
	})

	t.Run("duplicate username rejected", func(t *testing.T) {
		auth, _, _ := newAuthEnv(t)

		_, err := auth.Register(ctx, registerRequest())
		require.NoError(t, err)

		dup := registerRequest()
		dup.Email = "other@example.com"
		_, err = auth.Register(ctx, dup)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already taken")
	})

	t.Run("short password fails validation", func(t *testing.T) {
		auth, _, _ := newAuthEnv(t)

		req := registerRequest()
		req.Password = "abc"
		_, err := auth.Register(ctx, req)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "validation failed")
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("valid credentials", func(t *testing.T) {
		auth, _, _ := newAuthEnv(t)
		_, err := auth.Register(ctx, registerRequest())
		require.NoError(t, err)

		resp, err := auth.Login(ctx, &request.LoginRequest{
			Email:    "linh@example.com",
			Password: "hunter22",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Token)
	})

	t.Run("wrong password and unknown email give the same error", func(t *testing.T) {
		auth, _, _ := newAuthEnv(t)
		_, err := auth.Register(ctx, registerRequest())
		require.NoError(t, err)

		_, errWrong := auth.Login(ctx, &request.LoginRequest{
			Email:    "linh@example.com",
			Password: "wrong-password",
		})
		_, errUnknown := auth.Login(ctx, &request.LoginRequest{
			Email:    "nobody@example.com",
			Password: "hunter22",
		})
		require.Error(t, errWrong)
		require.Error(t, errUnknown)
		assert.Equal(t, errWrong.Error(), errUnknown.Error())
	})

	t.Run("deactivated account cannot log in", func(t *testing.T) {
		auth, store, _ := newAuthEnv(t)
		_, err := auth.Register(ctx, registerRequest())
		require.NoError(t, err)

		store.mu.Lock()
		for _, u := range store.users {
			u.IsActive = false
		}
		store.mu.Unlock()

		_, err = auth.Login(ctx, &request.LoginRequest{
			Email:    "linh@example.com",
			Password: "hunter22",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "deactivated")
	})
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	auth, store, _ := newAuthEnv(t)

	resp, err := auth.Register(ctx, registerRequest())
	require.NoError(t, err)

	require.NoError(t, auth.Logout(ctx, resp.Token))

	sess, err := store.repo().Session.FindValidSession(ctx, resp.Token)
	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestPasswordReset(t *testing.T) {
	ctx := context.Background()

	t.Run("full forgot and reset flow", func(t *testing.T) {
		auth, store, _ := newAuthEnv(t)
		resp, err := auth.Register(ctx, registerRequest())
		require.NoError(t, err)

		require.NoError(t, auth.ForgotPassword(ctx, &request.ForgotPasswordRequest{
			Email: "linh@example.com",
		}))

		// The OTP is persisted before the email goes out
		var otpCode string
		store.mu.Lock()
		for _, otp := range store.otps {
			otpCode = otp.OTPCode
		}
		store.mu.Unlock()
		require.NotEmpty(t, otpCode)

		require.NoError(t, auth.ResetPassword(ctx, &request.ResetPasswordRequest{
			Email:       "linh@example.com",
			OTP:         otpCode,
			NewPassword: "new-password",
		}))

		// Old sessions are revoked
		sess, err := store.repo().Session.FindValidSession(ctx, resp.Token)
		require.NoError(t, err)
		assert.Nil(t, sess)

		// OTP is single use
		err = auth.ResetPassword(ctx, &request.ResetPasswordRequest{
			Email:       "linh@example.com",
			OTP:         otpCode,
			NewPassword: "another-password",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid or expired")

		_, err = auth.Login(ctx, &request.LoginRequest{
			Email:    "linh@example.com",
			Password: "new-password",
		})
		require.NoError(t, err)
	})

	t.Run("unknown email is not revealed", func(t *testing.T) {
		auth, store, _ := newAuthEnv(t)

		require.NoError(t, auth.ForgotPassword(ctx, &request.ForgotPasswordRequest{
			Email: "nobody@example.com",
		}))

		store.mu.Lock()
		assert.Empty(t, store.otps)
		store.mu.Unlock()
	})

	t.Run("wrong code is rejected", func(t *testing.T) {
		auth, store, _ := newAuthEnv(t)
		_, err := auth.Register(ctx, registerRequest())
		require.NoError(t, err)

		require.NoError(t, auth.ForgotPassword(ctx, &request.ForgotPasswordRequest{
			Email: "linh@example.com",
		}))

		store.mu.Lock()
		for _, otp := range store.otps {
			otp.OTPCode = "123456"
		}
		store.mu.Unlock()

		err = auth.ResetPassword(ctx, &request.ResetPasswordRequest{
			Email:       "linh@example.com",
			OTP:         "654321",
			NewPassword: "new-password",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid or expired")
	})
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	auth, store, _ := newAuthEnv(t)

	_, err := auth.Register(ctx, registerRequest())
	require.NoError(t, err)

	user, err := store.repo().User.FindByEmail(ctx, "linh@example.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	uid := user.ID

	err = auth.ChangePassword(ctx, uid, &request.ChangePasswordRequest{
		OldPassword: "wrong",
		NewPassword: "brand-new-pass",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid current password")

	require.NoError(t, auth.ChangePassword(ctx, uid, &request.ChangePasswordRequest{
		OldPassword: "hunter22",
		NewPassword: "brand-new-pass",
	}))

	_, err = auth.Login(ctx, &request.LoginRequest{
		Email:    "linh@example.com",
		Password: "brand-new-pass",
	})
	require.NoError(t, err)
}
