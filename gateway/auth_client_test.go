package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginNotifiesSubscribers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/token", r.URL.Path)
		assert.Equal(t, "password", r.URL.Query().Get("grant_type"))

		var creds map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "admin@example.test", creds["email"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"access_token": "token-123",
			"token_type": "bearer",
			"expires_in": 3600,
			"user": {"id": "user-1", "email": "admin@example.test"}
		}`))
	}))
	defer server.Close()

	client := NewAuthClient(NewSupabaseClient(server.URL, testAnonKey, testServiceKey))
	states := client.AuthStates()

	session, err := client.Login(context.Background(), "admin@example.test", "secret")
	require.NoError(t, err)
	assert.Equal(t, "token-123", session.AccessToken)

	select {
	case state := <-states:
		assert.True(t, state.Authenticated)
		assert.Equal(t, "user-1", state.UserID)
	default:
		t.Fatal("expected an auth state notification")
	}
}

func TestLoginRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer server.Close()

	client := NewAuthClient(NewSupabaseClient(server.URL, testAnonKey, testServiceKey))
	states := client.AuthStates()

	_, err := client.Login(context.Background(), "admin@example.test", "wrong")
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, http.StatusBadRequest, authErr.StatusCode)

	select {
	case <-states:
		t.Fatal("failed login must not notify subscribers")
	default:
	}
}

func TestRegisterCreatesAccount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/signup", r.URL.Path)

		var creds map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "operator@example.test", creds["email"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"user": {"id": "user-2", "email": "operator@example.test"}
		}`))
	}))
	defer server.Close()

	client := NewAuthClient(NewSupabaseClient(server.URL, testAnonKey, testServiceKey))
	states := client.AuthStates()

	session, err := client.Register(context.Background(), "operator@example.test", "secret")
	require.NoError(t, err)
	assert.Equal(t, "operator@example.test", session.User.Email)

	// signup without a session means confirmation is still pending
	select {
	case <-states:
		t.Fatal("signup without a session must not notify subscribers")
	default:
	}
}

func TestRegisterExistingAccount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"msg":"User already registered"}`))
	}))
	defer server.Close()

	client := NewAuthClient(NewSupabaseClient(server.URL, testAnonKey, testServiceKey))

	_, err := client.Register(context.Background(), "operator@example.test", "secret")
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, http.StatusUnprocessableEntity, authErr.StatusCode)
}

func TestLogoutClearsState(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/logout", r.URL.Path)
		assert.Equal(t, "Bearer access-token", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewAuthClient(NewSupabaseClient(server.URL, testAnonKey, testServiceKey))
	states := client.AuthStates()

	require.NoError(t, client.Logout(context.Background(), "access-token"))

	select {
	case state := <-states:
		assert.False(t, state.Authenticated)
	default:
		t.Fatal("expected an auth state notification")
	}
}
