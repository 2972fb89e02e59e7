package event

import (
	"context"
)

type Occupancy interface {
	Release(ctx context.Context, numbers []int) error
}

type Storage interface {
	Upload(ctx context.Context, data []byte, contentType, bucket, path string) (string, error)
}

type Handler struct {
	occupancy      Occupancy
	storage        Storage
	artifactBucket string
}

func NewHandler(occupancy Occupancy, storage Storage, artifactBucket string) Handler {
	if occupancy == nil {
		panic("missing occupancy")
	}
	if storage == nil {
		panic("missing storage")
	}
	if artifactBucket == "" {
		panic("missing artifactBucket")
	}

	return Handler{
		occupancy:      occupancy,
		storage:        storage,
		artifactBucket: artifactBucket,
	}
}
