package gateway

import (
	"context"
	"net/http"

	"github.com/nfrund/voyage/internal/domain"
)

// authResponse is the success payload of both login and register.
type authResponse struct {
	Token    string `json:"token"`
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (r authResponse) profile() domain.UserProfile {
	return domain.UserProfile{ID: r.ID, Username: r.Username, Email: r.Email}
}

// Login exchanges credentials for a bearer token and the user's profile.
func (c *Client) Login(ctx context.Context, in domain.LoginInput) (string, domain.UserProfile, error) {
	var resp authResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", in, &resp); err != nil {
		return "", domain.UserProfile{}, err
	}
	return resp.Token, resp.profile(), nil
}

// Register creates an account and signs it in, returning the bearer token
// and the new profile.
func (c *Client) Register(ctx context.Context, in domain.RegisterInput) (string, domain.UserProfile, error) {
	var resp authResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", in, &resp); err != nil {
		return "", domain.UserProfile{}, err
	}
	return resp.Token, resp.profile(), nil
}

// CurrentUser resolves the profile behind the stored credential. An
// authorization fault here means the credential is stale or forged.
func (c *Client) CurrentUser(ctx context.Context) (domain.UserProfile, error) {
	var profile domain.UserProfile
	if err := c.do(ctx, http.MethodGet, "/auth/user", nil, &profile); err != nil {
		return domain.UserProfile{}, err
	}
	return profile, nil
}
