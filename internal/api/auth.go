package api

import (
	"context"
	"net/http"

	"github.com/tgienger/tkrm/internal/models"
)

// Login exchanges an identity credential for a session. It is the only
// call made without a bearer token.
func (c *Client) Login(ctx context.Context, credential string) (models.Session, error) {
	var sess models.Session
	in := map[string]string{"token": credential}
	if err := c.do(ctx, "login", http.MethodPost, "/auth/login", in, &sess, false); err != nil {
		return models.Session{}, err
	}
	if !sess.Valid() {
		return models.Session{}, &ServerError{Op: "login", Status: http.StatusOK, Message: "No user data returned"}
	}
	return sess, nil
}

// Logout tells the backend to end the session. The caller clears local
// state only when this succeeds.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, "logout", http.MethodPost, "/auth/logout", nil, nil, true)
}
