package memory

import (
	"context"
	"sync"

	"github.com/dom/atelier-korea/internal/repository"
)

type blobRepository struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewBlobRepository() *blobRepository {
	return &blobRepository{blobs: make(map[string][]byte)}
}

func (r *blobRepository) Load(ctx context.Context, key string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	data, ok := r.blobs[key]
	if !ok {
		return nil, repository.ErrBlobNotFound
	}
	return append([]byte(nil), data...), nil
}

func (r *blobRepository) Save(ctx context.Context, key string, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.blobs[key] = append([]byte(nil), data...)
	return nil
}

func NewRepositories() *repository.Repositories {
	return &repository.Repositories{
		Blob:  NewBlobRepository(),
		Close: func() error { return nil },
	}
}
