package catalog

import (
	"context"
	"fmt"

	"assessment-backend/internal/shared/storage/object"
)

// StoreSource reads the catalog document from an object store.
type StoreSource struct {
	Store object.ObjectStore
	Key   string
}

// NewStoreSource returns a Source backed by store at key.
func NewStoreSource(store object.ObjectStore, key string) *StoreSource {
	return &StoreSource{Store: store, Key: key}
}

func (s *StoreSource) Load(ctx context.Context) (Catalog, error) {
	if s == nil || s.Store == nil {
		return nil, fmt.Errorf("%w: no store configured", ErrUnavailable)
	}
	rc, err := s.Store.Open(ctx, s.Key)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrUnavailable, s.Key, err)
	}
	defer rc.Close()
	return Decode(rc)
}
