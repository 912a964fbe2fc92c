// Package authclient performs login and profile lookups against the backend.
package authclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"catalogadmin/catalog-panel/internal/model"
)

var ErrMissingToken = errors.New("login reply carried no access token")

// AuthError wraps every failure of this package. Transport errors and
// rejected credentials are not told apart.
type AuthError struct {
	Op  string
	Err error
}

func (e *AuthError) Error() string { return fmt.Sprintf("auth %s: %v", e.Op, e.Err) }

func (e *AuthError) Unwrap() error { return e.Err }

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResult struct {
	Token   string
	Profile model.Profile
}

// Doer is the transport this service needs.
type Doer interface {
	Do(ctx context.Context, method, path, token string, in, out any) error
}

type Service struct {
	api Doer
}

func New(api Doer) *Service {
	return &Service{api: api}
}

type loginReply struct {
	model.Profile
	AccessToken string `json:"accessToken"`
	// Older backends misspell the field.
	LegacyAccessToken string `json:"acessToken"`
}

func (s *Service) Login(ctx context.Context, creds Credentials) (LoginResult, error) {
	var reply loginReply
	if err := s.api.Do(ctx, http.MethodPost, "/login", "", creds, &reply); err != nil {
		return LoginResult{}, &AuthError{Op: "login", Err: err}
	}
	token := reply.AccessToken
	if token == "" {
		token = reply.LegacyAccessToken
	}
	if token == "" {
		return LoginResult{}, &AuthError{Op: "login", Err: ErrMissingToken}
	}
	return LoginResult{Token: token, Profile: reply.Profile}, nil
}

func (s *Service) FetchProfile(ctx context.Context, token string) (model.Profile, error) {
	var p model.Profile
	if err := s.api.Do(ctx, http.MethodGet, "/profile", token, nil, &p); err != nil {
		return model.Profile{}, &AuthError{Op: "profile", Err: err}
	}
	return p, nil
}
