package server

import (
	"context"
	"encoding/base64"
	"net/http"

	"github.com/christophhagen/RendezvousClient/internal/wire"
	"github.com/christophhagen/RendezvousClient/pkg/rverr"
)

// Admin performs token-bearing control operations. A development server
// starts with the all-zero token.
type Admin struct {
	client *Client
	token  []byte
}

// NewAdmin wraps a client with an admin token. A nil token means the
// initial all-zero token.
func NewAdmin(client *Client, token []byte) *Admin {
	if token == nil {
		token = make([]byte, wire.AuthTokenLength)
	}
	return &Admin{client: client, token: token}
}

// Token returns the current admin token.
func (a *Admin) Token() []byte { return a.token }

func (a *Admin) headers() map[string]string {
	return map[string]string{
		"auth": base64.StdEncoding.EncodeToString(a.token),
	}
}

// UpdateAdminToken rotates the admin token and retains the replacement.
func (a *Admin) UpdateAdminToken(ctx context.Context) error {
	token, err := a.client.do(ctx, http.MethodGet, "admin/renew", a.headers(), nil)
	if err != nil {
		return err
	}
	if len(token) != wire.AuthTokenLength {
		return rverr.Newf(rverr.InvalidServerData, "admin token has length %d", len(token))
	}
	a.token = token
	return nil
}

// ResetDevelopmentServer wipes the server and resets the local token to
// the initial all-zero value.
func (a *Admin) ResetDevelopmentServer(ctx context.Context) error {
	if _, err := a.client.do(ctx, http.MethodGet, "admin/reset", a.headers(), nil); err != nil {
		return err
	}
	a.token = make([]byte, wire.AuthTokenLength)
	return nil
}

// Allow registers a user name with the server and returns the pin and its
// absolute expiry. The expiry convention (at least six days out) is not
// enforced client-side.
func (a *Admin) Allow(ctx context.Context, user string) (pin uint32, expiry int64, err error) {
	h := a.headers()
	h["username"] = user
	data, err := a.client.do(ctx, http.MethodPost, "user/allow", h, nil)
	if err != nil {
		return 0, 0, err
	}
	var allowed wire.AllowedUser
	if err := decode(data, &allowed); err != nil {
		return 0, 0, err
	}
	if allowed.Pin >= wire.PinMax {
		return 0, 0, rverr.Newf(rverr.InvalidServerData, "pin %d out of range", allowed.Pin)
	}
	return allowed.Pin, allowed.Expiry, nil
}
