package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/Makepad-fr/menuadmin/internal/model"
)

// Credentials are posted to the login endpoint.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is what the login endpoint returns. Some deployments wrap
// it in "data".
type LoginResponse struct {
	Token string `json:"token"`
	User  struct {
		ID    model.ID `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"user"`
}

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, path string, cred Credentials) (*LoginResponse, error) {
	data, err := c.Do(ctx, http.MethodPost, path, cred)
	if err != nil {
		return nil, err
	}
	var out LoginResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("login: json unmarshal: %w", err)
	}
	if out.Token == "" {
		var wrapped struct {
			Data LoginResponse `json:"data"`
		}
		if err := json.Unmarshal(data, &wrapped); err == nil {
			out = wrapped.Data
		}
	}
	if out.Token == "" {
		return nil, errors.New("login: response has no token")
	}
	return &out, nil
}
