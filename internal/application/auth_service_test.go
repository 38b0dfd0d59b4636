package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/booking-admin/internal/gateway"
	"github.com/example/booking-admin/internal/session"
)

type stubAuthAPI struct {
	token       string
	loginErr    error
	registerErr error
	logins      []string
	registered  []gateway.RegisterParams
}

func (s *stubAuthAPI) Login(_ context.Context, email, _ string) (gateway.LoginResult, error) {
	s.logins = append(s.logins, email)
	if s.loginErr != nil {
		return gateway.LoginResult{}, s.loginErr
	}
	return gateway.LoginResult{AccessToken: s.token}, nil
}

func (s *stubAuthAPI) Register(_ context.Context, params gateway.RegisterParams) error {
	s.registered = append(s.registered, params)
	return s.registerErr
}

func newAuthService(api AuthAPI) (*AuthService, *session.Holder) {
	holder := session.NewHolder(session.NewMemoryStore(), quietLogger())
	return NewAuthService(api, holder, quietLogger()), holder
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("stores the remote token", func(t *testing.T) {
		api := &stubAuthAPI{token: "tok-1"}
		svc, holder := newAuthService(api)

		state, err := svc.Login(ctx, LoginInput{Email: " admin@example.com ", Password: "secret"})
		require.NoError(t, err)
		assert.True(t, state.Authenticated)
		assert.True(t, holder.IsAuthenticated())
		assert.Equal(t, []string{"admin@example.com"}, api.logins)
		assert.True(t, svc.Session().Authenticated)
	})

	t.Run("missing credentials never reach the remote API", func(t *testing.T) {
		api := &stubAuthAPI{token: "tok-1"}
		svc, _ := newAuthService(api)

		_, err := svc.Login(ctx, LoginInput{})
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Len(t, vErr.FieldErrors, 2)
		assert.Empty(t, api.logins)
	})

	t.Run("remote rejection leaves the session unauthenticated", func(t *testing.T) {
		rejected := &gateway.Error{Kind: gateway.KindServerRejected, Status: 401, Message: gateway.DefaultLoginFailure}
		svc, holder := newAuthService(&stubAuthAPI{loginErr: rejected})

		_, err := svc.Login(ctx, LoginInput{Email: "a@example.com", Password: "wrong"})
		assert.True(t, errors.Is(err, rejected))
		assert.False(t, holder.IsAuthenticated())
	})

	t.Run("logout clears the session", func(t *testing.T) {
		svc, holder := newAuthService(&stubAuthAPI{token: "tok-1"})
		_, err := svc.Login(ctx, LoginInput{Email: "a@example.com", Password: "pw"})
		require.NoError(t, err)

		require.NoError(t, svc.Logout(ctx))
		assert.False(t, holder.IsAuthenticated())
		require.NoError(t, svc.Logout(ctx))
	})
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("registers then signs in", func(t *testing.T) {
		api := &stubAuthAPI{token: "tok-new"}
		svc, holder := newAuthService(api)

		state, err := svc.Register(ctx, RegisterInput{Name: "Sari", Email: "sari@example.com", Password: "pw", PasswordConfirmation: "pw"})
		require.NoError(t, err)
		assert.True(t, state.Authenticated)
		assert.True(t, holder.IsAuthenticated())
		require.Len(t, api.registered, 1)
		assert.Equal(t, "Sari", api.registered[0].Name)
		assert.Equal(t, []string{"sari@example.com"}, api.logins)
	})

	t.Run("mismatched confirmation is rejected locally", func(t *testing.T) {
		api := &stubAuthAPI{token: "tok-new"}
		svc, _ := newAuthService(api)

		_, err := svc.Register(ctx, RegisterInput{Name: "Sari", Email: "sari@example.com", Password: "pw", PasswordConfirmation: "other"})
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Contains(t, vErr.FieldErrors, "password_confirmation")
		assert.Empty(t, api.registered)
	})

	t.Run("every missing field is reported at once", func(t *testing.T) {
		api := &stubAuthAPI{token: "tok-new"}
		svc, _ := newAuthService(api)

		_, err := svc.Register(ctx, RegisterInput{})
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, map[string]string{
			"name":     "name is required",
			"email":    "email is required",
			"password": "password is required",
		}, vErr.FieldErrors)
		assert.Empty(t, api.registered)
	})

	t.Run("malformed email is rejected locally", func(t *testing.T) {
		api := &stubAuthAPI{token: "tok-new"}
		svc, _ := newAuthService(api)

		_, err := svc.Register(ctx, RegisterInput{Name: "Sari", Email: "sari at example", Password: "pw", PasswordConfirmation: "pw"})
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "email is not a valid address", vErr.FieldErrors["email"])
		assert.Empty(t, api.registered)
	})

	t.Run("remote failure is returned", func(t *testing.T) {
		boom := &gateway.Error{Kind: gateway.KindNetworkUnreachable}
		svc, holder := newAuthService(&stubAuthAPI{registerErr: boom})

		_, err := svc.Register(ctx, RegisterInput{Name: "Sari", Email: "sari@example.com", Password: "pw", PasswordConfirmation: "pw"})
		assert.True(t, gateway.IsKind(err, gateway.KindNetworkUnreachable))
		assert.False(t, holder.IsAuthenticated())
	})
}

func TestNavigation(t *testing.T) {
	t.Parallel()

	labels := func(links []Link) []string {
		out := make([]string, len(links))
		for i, l := range links {
			out[i] = l.Label
		}
		return out
	}

	assert.Equal(t, []string{"Home", "Login", "Register"}, labels(Navigation(false)))
	assert.Equal(t, []string{"Home", "Users", "Room Management", "Bookings", "Logout"}, labels(Navigation(true)))
}
