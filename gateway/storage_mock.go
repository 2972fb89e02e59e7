package gateway

import (
	"context"
	"sync"
)

type StorageMock struct {
	lock sync.Mutex

	Uploaded map[string][]byte

	UploadErr error
}

func (m *StorageMock) Upload(ctx context.Context, data []byte, contentType, bucket, path string) (string, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.UploadErr != nil {
		return "", m.UploadErr
	}

	if m.Uploaded == nil {
		m.Uploaded = make(map[string][]byte)
	}
	m.Uploaded[bucket+"/"+path] = data

	return "https://storage.example.test/" + bucket + "/" + path, nil
}

func (m *StorageMock) Object(key string) ([]byte, bool) {
	m.lock.Lock()
	defer m.lock.Unlock()

	data, ok := m.Uploaded[key]
	return data, ok
}
