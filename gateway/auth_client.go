package gateway

import (
	"context"
	"fmt"
	"net/http"
	"sync"
)

// AuthState is delivered to subscribers whenever the operator session changes.
type AuthState struct {
	Authenticated bool
	UserID        string
	Email         string
}

type Session struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	User        struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

// AuthClient wraps the auth endpoints of the external service and broadcasts
// auth-state changes to subscribers.
type AuthClient struct {
	supabase *SupabaseClient

	mu   sync.Mutex
	subs []chan AuthState
}

func NewAuthClient(supabase *SupabaseClient) *AuthClient {
	if supabase == nil {
		panic("missing supabase client")
	}
	return &AuthClient{supabase: supabase}
}

func (c *AuthClient) Login(ctx context.Context, email, password string) (Session, error) {
	var session Session
	resp, err := c.supabase.anonRequest().
		SetContext(ctx).
		SetQueryParam("grant_type", "password").
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(&session).
		Post("/auth/v1/token")
	if err != nil {
		return Session{}, fmt.Errorf("logging in: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return Session{}, &AuthError{Op: "login", StatusCode: resp.StatusCode(), Body: string(resp.Body())}
	}

	c.notify(AuthState{Authenticated: true, UserID: session.User.ID, Email: session.User.Email})
	return session, nil
}

// Register creates an operator account. The signup response only carries a
// session when the project skips email confirmation, so the auth state is
// broadcast only when a token came back.
func (c *AuthClient) Register(ctx context.Context, email, password string) (Session, error) {
	var session Session
	resp, err := c.supabase.anonRequest().
		SetContext(ctx).
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(&session).
		Post("/auth/v1/signup")
	if err != nil {
		return Session{}, fmt.Errorf("registering: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return Session{}, &AuthError{Op: "register", StatusCode: resp.StatusCode(), Body: string(resp.Body())}
	}

	if session.AccessToken != "" {
		c.notify(AuthState{Authenticated: true, UserID: session.User.ID, Email: session.User.Email})
	}
	return session, nil
}

func (c *AuthClient) Logout(ctx context.Context, accessToken string) error {
	resp, err := c.supabase.anonRequest().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+accessToken).
		Post("/auth/v1/logout")
	if err != nil {
		return fmt.Errorf("logging out: %w", err)
	}
	if resp.StatusCode() != http.StatusNoContent && resp.StatusCode() != http.StatusOK {
		return &AuthError{Op: "logout", StatusCode: resp.StatusCode(), Body: string(resp.Body())}
	}

	c.notify(AuthState{})
	return nil
}

// AuthStates returns a stream of auth-state changes. The channel is buffered;
// a slow subscriber drops updates rather than blocking a login.
func (c *AuthClient) AuthStates() <-chan AuthState {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan AuthState, 8)
	c.subs = append(c.subs, ch)
	return ch
}

func (c *AuthClient) notify(state AuthState) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, ch := range c.subs {
		select {
		case ch <- state:
		default:
		}
	}
}
