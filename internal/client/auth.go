package client

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/GriffinCanCode/FileFlex/client/internal/shared/types"
)

const endpointLogin = "login"

type loginResponse struct {
	Token string `json:"token"`
}

// Login exchanges credentials for a token and installs it on the client.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	body := map[string]string{"username": username, "password": password}
	resp, err := call[loginResponse](ctx, c, endpointLogin, http.MethodPost, "/api/auth/login",
		func(r *resty.Request) { r.SetBody(body) })
	if err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", &types.TransportError{Op: endpointLogin, Message: msgBadReply}
	}
	c.SetToken(resp.Token)
	return resp.Token, nil
}

// TokenExpiry reads the exp claim of a JWT without verifying its
// signature. ok is false for tokens that are not JWTs or carry no expiry.
func TokenExpiry(token string) (exp time.Time, ok bool) {
	if token == "" {
		return time.Time{}, false
	}
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
