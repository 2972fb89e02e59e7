package gateway

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadOverwritesAndReturnsPublicURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/storage/v1/object/assets/logos/logo.png", r.URL.Path)
		assert.Equal(t, "true", r.Header.Get("x-upsert"))
		assert.Equal(t, "image/png", r.Header.Get("Content-Type"))
		assert.Equal(t, testServiceKey, r.Header.Get("apikey"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Equal(t, []byte("png-bytes"), body)

		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewStorageClient(NewSupabaseClient(server.URL, testAnonKey, testServiceKey))

	url, err := client.Upload(context.Background(), []byte("png-bytes"), "image/png", "assets", "logos/logo.png")
	require.NoError(t, err)
	assert.Equal(t, server.URL+"/storage/v1/object/public/assets/logos/logo.png", url)
}

func TestUploadFailureReturnsStorageError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := NewStorageClient(NewSupabaseClient(server.URL, testAnonKey, testServiceKey))

	_, err := client.Upload(context.Background(), []byte("x"), "text/plain", "assets", "a.txt")
	var storageErr *StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, http.StatusForbidden, storageErr.StatusCode)
}
