// Package gateway holds the typed clients for the external
// persistence/auth/storage service. Everything durable lives on the other side
// of these clients; the rest of the application keeps only revocable caches.
package gateway

import (
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
)

const restPrefix = "/rest/v1"

// SupabaseClient carries the shared REST configuration of the project:
// base URL, the public (anon) key and the service-role key.
type SupabaseClient struct {
	http       *resty.Client
	baseURL    string
	anonKey    string
	serviceKey string
}

func NewSupabaseClient(baseURL, anonKey, serviceKey string) *SupabaseClient {
	trimmed := strings.TrimRight(baseURL, "/")

	httpClient := resty.New().
		SetBaseURL(trimmed).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json")

	return &SupabaseClient{
		http:       httpClient,
		baseURL:    trimmed,
		anonKey:    anonKey,
		serviceKey: serviceKey,
	}
}

// anonRequest authenticates with the public key: the caller gets only what
// row-level security grants to anonymous visitors.
func (c *SupabaseClient) anonRequest() *resty.Request {
	return c.http.R().
		SetHeader("apikey", c.anonKey).
		SetHeader("Authorization", "Bearer "+c.anonKey)
}

// serviceRequest authenticates with the service-role key and bypasses
// row-level security. Operator-only paths.
func (c *SupabaseClient) serviceRequest() *resty.Request {
	return c.http.R().
		SetHeader("apikey", c.serviceKey).
		SetHeader("Authorization", "Bearer "+c.serviceKey)
}

// PersistenceError reports a failed table operation.
type PersistenceError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s failed with status %d: %s", e.Op, e.StatusCode, e.Body)
}

// StorageError reports a failed object-storage operation.
type StorageError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s failed with status %d: %s", e.Op, e.StatusCode, e.Body)
}

// AuthError reports a failed login/logout.
type AuthError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth: %s failed with status %d", e.Op, e.StatusCode)
}

func persistenceErr(op string, resp *resty.Response) error {
	return &PersistenceError{Op: op, StatusCode: resp.StatusCode(), Body: string(resp.Body())}
}
