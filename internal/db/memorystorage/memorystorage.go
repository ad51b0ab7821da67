// Package memorystorage implements the storage interface purely in memory.
// It reuses the jsondb cache and locking and drops the file persistence.
package memorystorage

import (
	"context"

	"github.com/okorolenko/tinylink/internal/db/jsondb"
	"github.com/okorolenko/tinylink/internal/models"
	"github.com/okorolenko/tinylink/internal/user"
)

// MemoryStorage is the default, non-persistent backend.
type MemoryStorage struct {
	*jsondb.JSONDB
}

// New returns an empty in-memory store.
func New() (*MemoryStorage, error) {
	return &MemoryStorage{
		JSONDB: &jsondb.JSONDB{
			Cache: jsondb.CacheStruct{
				Users:        map[string]*user.User{},
				UsersByEmail: map[string]string{},
				Urls:         map[string]models.URLRecord{},
			},
		},
	}, nil
}

func (theStorage *MemoryStorage) Close() error {
	return nil
}

func (theStorage *MemoryStorage) Ping(ctx context.Context) error {
	return nil
}
