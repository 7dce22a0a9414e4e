package hiring

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// User identifies the authenticated staff member.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"accessToken"`
	User        User   `json:"user"`
}

// Login authenticates against the API and stores the returned bearer
// token in the transport session for all subsequent requests.
func (s *Service) Login(ctx context.Context, email, password string) (*User, error) {
	raw, err := s.api.Send(ctx, http.MethodPost, "/auth/login", nil, loginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	var resp loginResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("hiring: decode login response: %w", err)
	}
	s.api.Session().SetToken(resp.AccessToken)
	return &resp.User, nil
}

// Logout tells the server and clears the session token. The token is
// cleared even when the server call fails; a dropped credential is
// always safe.
func (s *Service) Logout(ctx context.Context) error {
	_, err := s.api.Send(ctx, http.MethodPost, "/auth/logout", nil, nil)
	s.api.Session().Clear()
	return err
}
