package gateway

import (
	"context"
	"sync"
)

type AuthMock struct {
	lock sync.Mutex

	// Accounts maps email to password.
	Accounts map[string]string

	Sessions []string
	states   []chan AuthState
}

func (m *AuthMock) Login(ctx context.Context, email, password string) (Session, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	if stored, ok := m.Accounts[email]; !ok || stored != password {
		return Session{}, &AuthError{Op: "login", StatusCode: 400}
	}

	session := Session{AccessToken: "mock-token-" + email, TokenType: "bearer", ExpiresIn: 3600}
	session.User.ID = "mock-user"
	session.User.Email = email
	m.Sessions = append(m.Sessions, session.AccessToken)

	for _, ch := range m.states {
		select {
		case ch <- AuthState{Authenticated: true, UserID: session.User.ID, Email: email}:
		default:
		}
	}
	return session, nil
}

func (m *AuthMock) Register(ctx context.Context, email, password string) (Session, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	if _, exists := m.Accounts[email]; exists {
		return Session{}, &AuthError{Op: "register", StatusCode: 422}
	}
	if m.Accounts == nil {
		m.Accounts = map[string]string{}
	}
	m.Accounts[email] = password

	session := Session{TokenType: "bearer"}
	session.User.ID = "mock-user"
	session.User.Email = email
	return session, nil
}

func (m *AuthMock) Logout(ctx context.Context, accessToken string) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	for _, ch := range m.states {
		select {
		case ch <- AuthState{}:
		default:
		}
	}
	return nil
}

func (m *AuthMock) AuthStates() <-chan AuthState {
	m.lock.Lock()
	defer m.lock.Unlock()

	ch := make(chan AuthState, 8)
	m.states = append(m.states, ch)
	return ch
}
