package gateway

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

const (
	loginPath    = "/auth/login"
	registerPath = "/auth/register"
)

// DefaultLoginFailure is shown when a rejected login carries no message.
const DefaultLoginFailure = "Login gagal"

// LoginResult is the successful response of POST /auth/login.
type LoginResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
	ExpiresIn   int    `json:"expires_in,omitempty"`
	Message     string `json:"message,omitempty"`
}

// RegisterParams is the body of POST /auth/register.
type RegisterParams struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// Login exchanges credentials for an access token. It needs no session.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	req := call{
		op:     "login",
		method: http.MethodPost,
		path:   loginPath,
		body:   map[string]string{"email": email, "password": password},
	}

	body, err := c.do(ctx, req)
	if err != nil {
		var gwErr *Error
		if errors.As(err, &gwErr) && gwErr.Kind == KindServerRejected && gwErr.Message == "" {
			gwErr.Message = DefaultLoginFailure
		}
		return LoginResult{}, err
	}

	var result LoginResult
	if err := decodeJSON(body, &result); err != nil {
		return LoginResult{}, c.malformed(req, err)
	}
	if strings.TrimSpace(result.AccessToken) == "" {
		message := result.Message
		if message == "" {
			message = DefaultLoginFailure
		}
		return LoginResult{}, &Error{Kind: KindServerRejected, Op: req.op, Endpoint: req.path, Status: http.StatusOK, Message: message}
	}
	return result, nil
}

// Register creates an operator account on the remote API.
func (c *Client) Register(ctx context.Context, params RegisterParams) error {
	_, err := c.do(ctx, call{op: "register", method: http.MethodPost, path: registerPath, body: params})
	return err
}
