package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/careplanhq/portal-client/profile"
	"github.com/pkg/errors"
)

// Credentials is the body of POST /auth/login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// LoginWithCredentials exchanges email and password for a session token. The
// token itself is opaque; handing it to the session store is the caller's job.
func (c *Client) LoginWithCredentials(ctx context.Context, email, password string) (string, error) {
	var out loginResponse
	err := c.DoJSON(ctx, http.MethodPost, loginEndpoint, Credentials{Email: email, Password: password}, &out)
	if err != nil {
		return "", errors.Wrap(err, "[Client.LoginWithCredentials]")
	}
	if out.Token == "" {
		return "", errors.New("[Client.LoginWithCredentials] login response carried no token")
	}
	return out.Token, nil
}

// FetchProfile retrieves the authenticated user's profile from GET /auth/me.
// A 200 with an empty or identity-less body returns (nil, nil): the session
// store treats that as an authentication failure, not this package.
func (c *Client) FetchProfile(ctx context.Context) (*profile.Profile, error) {
	resp, err := c.Do(ctx, http.MethodGet, selfEndpoint, nil, nil)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.FetchProfile]")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.FetchProfile] reading response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Wrap(&StatusError{StatusCode: resp.StatusCode, Body: raw}, "[Client.FetchProfile]")
	}

	var p profile.Profile
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, errors.Wrap(err, "[Client.FetchProfile] decoding profile")
		}
	}
	if p.UserID == 0 {
		return nil, nil
	}
	return &p, nil
}

// UpdateProfile sends the self-update request to PUT /auth/me and returns the
// updated profile. When the request carries a password change, a 401 means
// the current password was wrong - it surfaces here as an error the caller
// handles, and the session stays intact (the carve-out in Classify).
func (c *Client) UpdateProfile(ctx context.Context, req profile.UpdateRequest) (*profile.Profile, error) {
	if err := req.Validate(); err != nil {
		return nil, errors.Wrap(err, "[Client.UpdateProfile]")
	}

	var p profile.Profile
	if err := c.DoJSON(ctx, http.MethodPut, selfEndpoint, req, &p); err != nil {
		return nil, errors.Wrap(err, "[Client.UpdateProfile]")
	}
	return &p, nil
}
