// Package mockstorage provides a testify-based mock implementation of the
// storage interface. It is used to simulate storage behavior, including
// failures, in handler and service tests.
package mockstorage

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/okorolenko/tinylink/internal/models"
	"github.com/okorolenko/tinylink/internal/user"
)

// StorageMock is a testify mock implementing the full storage interface.
type StorageMock struct {
	mock.Mock
}

// CreateUser mocks storing a new user.
func (m *StorageMock) CreateUser(ctx context.Context, usr *user.User) error {
	args := m.Called(ctx, usr)
	return args.Error(0)
}

// GetUserByID mocks the user lookup by ID.
func (m *StorageMock) GetUserByID(ctx context.Context, userID string) (*user.User, bool, error) {
	args := m.Called(ctx, userID)
	usr, _ := args.Get(0).(*user.User)
	return usr, args.Bool(1), args.Error(2)
}

// GetUserByEmail mocks the user lookup by normalized email.
func (m *StorageMock) GetUserByEmail(ctx context.Context, email string) (*user.User, bool, error) {
	args := m.Called(ctx, email)
	usr, _ := args.Get(0).(*user.User)
	return usr, args.Bool(1), args.Error(2)
}

// InsertURL mocks the compare-and-insert of a URL record.
func (m *StorageMock) InsertURL(ctx context.Context, record *models.URLRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

// FindURLByCode mocks the record lookup by short code.
func (m *StorageMock) FindURLByCode(ctx context.Context, code string) (models.URLRecord, bool, error) {
	args := m.Called(ctx, code)
	record, _ := args.Get(0).(models.URLRecord)
	return record, args.Bool(1), args.Error(2)
}

// UpdateURL mocks replacing a record's target.
func (m *StorageMock) UpdateURL(ctx context.Context, code, longURL string, createdAt time.Time) (models.URLRecord, error) {
	args := m.Called(ctx, code, longURL, createdAt)
	record, _ := args.Get(0).(models.URLRecord)
	return record, args.Error(1)
}

// DeleteURL mocks removing a record.
func (m *StorageMock) DeleteURL(ctx context.Context, code string) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

// FindURLsByOwner mocks the per-owner listing.
func (m *StorageMock) FindURLsByOwner(ctx context.Context, ownerID string) ([]models.URLRecord, error) {
	args := m.Called(ctx, ownerID)
	records, _ := args.Get(0).([]models.URLRecord)
	return records, args.Error(1)
}

// IncrementVisits mocks the atomic visit increment.
func (m *StorageMock) IncrementVisits(ctx context.Context, code string) (models.URLRecord, error) {
	args := m.Called(ctx, code)
	record, _ := args.Get(0).(models.URLRecord)
	return record, args.Error(1)
}

// Ping mocks the health check.
func (m *StorageMock) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Close mocks releasing the storage resources.
func (m *StorageMock) Close() error {
	args := m.Called()
	return args.Error(0)
}
