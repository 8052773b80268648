package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/tgienger/tkrm/internal/models"
)

func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := c.do(ctx, "list users", http.MethodGet, "/users", nil, &users, true); err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

// DeleteUser removes a user. Tasks assigned to them are left untouched.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, "delete user", http.MethodDelete, "/users/"+url.PathEscape(id), nil, nil, true)
}
