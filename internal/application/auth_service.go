package application

import (
	"context"
	"log/slog"
	"strings"

	"github.com/example/booking-admin/internal/gateway"
	"github.com/example/booking-admin/internal/session"
)

// AuthAPI is the remote authentication surface.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (gateway.LoginResult, error)
	Register(ctx context.Context, params gateway.RegisterParams) error
}

// SessionHolder is the session state the auth service drives.
type SessionHolder interface {
	Login(ctx context.Context, token string) error
	Logout(ctx context.Context) error
	State() session.State
}

// LoginInput carries the credentials submitted on the login form.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterInput carries the registration form.
type RegisterInput struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// AuthService exchanges credentials with the remote API and keeps the
// session holder in step.
type AuthService struct {
	api     AuthAPI
	session SessionHolder
	logger  *slog.Logger
}

// NewAuthService constructs an AuthService.
func NewAuthService(api AuthAPI, holder SessionHolder, logger *slog.Logger) *AuthService {
	return &AuthService{api: api, session: holder, logger: defaultLogger(logger)}
}

// Login authenticates against the remote API and stores the returned token.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (session.State, error) {
	email := strings.TrimSpace(input.Email)
	logger := serviceLogger(ctx, s.logger, "AuthService", "Login", "email", email)

	if err := credentialErrors(email, input.Password).errOrNil(); err != nil {
		logger.Info("login rejected", "error_kind", ErrorKind(err))
		return session.State{}, err
	}

	result, err := s.api.Login(ctx, email, input.Password)
	if err != nil {
		logger.Warn("remote login failed", "error", err, "error_kind", ErrorKind(err))
		return session.State{}, err
	}

	if err := s.session.Login(ctx, result.AccessToken); err != nil {
		logger.Error("failed to store session", "error", err)
		return session.State{}, err
	}

	logger.Info("login succeeded")
	return s.session.State(), nil
}

// Logout clears the session. It succeeds when no session is held.
func (s *AuthService) Logout(ctx context.Context) error {
	logger := serviceLogger(ctx, s.logger, "AuthService", "Logout")
	if err := s.session.Logout(ctx); err != nil {
		logger.Error("failed to clear stored session", "error", err)
		return err
	}
	logger.Info("logout succeeded")
	return nil
}

// Register creates a remote account and then signs in with it.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (session.State, error) {
	email := strings.TrimSpace(input.Email)
	logger := serviceLogger(ctx, s.logger, "AuthService", "Register", "email", email)

	params := gateway.RegisterParams{
		Name:                 strings.TrimSpace(input.Name),
		Email:                email,
		Password:             input.Password,
		PasswordConfirmation: input.PasswordConfirmation,
	}
	if err := validateRegistration(params); err != nil {
		logger.Info("registration rejected", "error_kind", ErrorKind(err))
		return session.State{}, err
	}

	if err := s.api.Register(ctx, params); err != nil {
		logger.Warn("remote registration failed", "error", err, "error_kind", ErrorKind(err))
		return session.State{}, err
	}
	logger.Info("registration succeeded")

	return s.Login(ctx, LoginInput{Email: email, Password: input.Password})
}

// Session returns the current session state.
func (s *AuthService) Session() session.State {
	return s.session.State()
}

// credentialErrors checks the fields login and registration share.
func credentialErrors(email, password string) *ValidationError {
	vErr := &ValidationError{}
	if email == "" {
		vErr.add("email", "email is required")
	}
	if password == "" {
		vErr.add("password", "password is required")
	}
	return vErr
}

func validateRegistration(params gateway.RegisterParams) error {
	vErr := &ValidationError{}
	if params.Name == "" {
		vErr.add("name", "name is required")
	}
	vErr.merge(credentialErrors(params.Email, params.Password))
	if params.Email != "" && !validEmail(params.Email) {
		vErr.add("email", "email is not a valid address")
	}
	if params.PasswordConfirmation != params.Password {
		vErr.add("password_confirmation", "password confirmation does not match")
	}
	return vErr.errOrNil()
}
