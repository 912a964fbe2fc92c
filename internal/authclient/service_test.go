package authclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalogadmin/catalog-panel/internal/apiclient"
)

func newService(t *testing.T, h http.HandlerFunc) *Service {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	api, err := apiclient.New(apiclient.Config{BaseURL: srv.URL})
	require.NoError(t, err)
	return New(api)
}

func TestLoginSuccess(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/login", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"id":1,"name":"A","email":"a@b.com","phone":"1","document":"d","accessToken":"tok"}`))
	})

	res, err := svc.Login(context.Background(), Credentials{Email: "a@b.com", Password: "x"})
	require.NoError(t, err)
	assert.Equal(t, "tok", res.Token)
	assert.Equal(t, int64(1), res.Profile.ID)
	assert.Equal(t, "a@b.com", res.Profile.Email)
}

func TestLoginAcceptsLegacyTokenField(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":2,"name":"B","acessToken":"legacy"}`))
	})

	res, err := svc.Login(context.Background(), Credentials{Email: "b@b.com", Password: "x"})
	require.NoError(t, err)
	assert.Equal(t, "legacy", res.Token)
}

func TestLoginWithoutTokenIsAuthError(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":2,"name":"B"}`))
	})

	_, err := svc.Login(context.Background(), Credentials{})
	var ae *AuthError
	require.True(t, errors.As(err, &ae))
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestLoginRejectedIsAuthError(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid credentials"}`))
	})

	_, err := svc.Login(context.Background(), Credentials{Email: "a@b.com", Password: "bad"})
	var ae *AuthError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, "login", ae.Op)
	var se *apiclient.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusUnauthorized, se.StatusCode)
}

func TestFetchProfileSendsBearer(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/profile", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"id":1,"name":"A","email":"a@b.com"}`))
	})

	p, err := svc.FetchProfile(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "A", p.Name)
}

func TestFetchProfileFailure(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := svc.FetchProfile(context.Background(), "expired")
	var ae *AuthError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, "profile", ae.Op)
}
