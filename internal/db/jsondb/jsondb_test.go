package jsondb

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okorolenko/tinylink/internal/models"
	"github.com/okorolenko/tinylink/internal/user"
)

const testDBFileName = "db_test.json"

func day(value string) time.Time {
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return parsed
}

func Test(t *testing.T) {
	t.Run("The base jsondb package test", func(t *testing.T) {
		theStorage, err := New(testDBFileName)
		require.NoError(t, err)
		require.NotNil(t, theStorage)
		defer func() {
			err := theStorage.Close()
			require.NoError(t, err)
			err = os.Remove(testDBFileName)
			require.NoError(t, err)
		}()

		err = theStorage.CreateUser(context.Background(), &user.User{
			ID:           "user-1",
			Email:        "A@x.com",
			PasswordHash: "some hash",
		})
		assert.NoError(t, err, "The `theStorage.CreateUser()` should not return error")

		err = theStorage.CreateUser(context.Background(), &user.User{
			ID:           "user-2",
			Email:        "a@x.com",
			PasswordHash: "another hash",
		})
		assert.True(
			t,
			errors.Is(err, models.ErrConflict),
			"A second registration with the same normalized email should conflict",
		)

		usr, found, err := theStorage.GetUserByEmail(context.Background(), "a@X.com")
		assert.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "user-1", usr.ID)
		assert.Equal(t, "some hash", usr.PasswordHash, "The stored hash should survive a duplicate registration attempt")

		usr, found, err = theStorage.GetUserByID(context.Background(), "user-1")
		assert.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "a@x.com", usr.Email, "The stored email should be normalized")

		_, found, err = theStorage.GetUserByID(context.Background(), "no-such-user")
		assert.NoError(t, err)
		assert.False(t, found)

		err = theStorage.InsertURL(context.Background(), &models.URLRecord{
			Code:      "abc123",
			LongURL:   "http://example.com",
			OwnerID:   "user-1",
			CreatedAt: day("2026-08-30"),
		})
		assert.NoError(t, err, "The `theStorage.InsertURL()` should not return error")

		err = theStorage.InsertURL(context.Background(), &models.URLRecord{
			Code:    "abc123",
			LongURL: "http://other.example.com",
			OwnerID: "user-2",
		})
		assert.True(
			t,
			errors.Is(err, models.ErrCodeExists),
			"Inserting a taken code should fail with models.ErrCodeExists",
		)

		record, found, err := theStorage.FindURLByCode(context.Background(), "abc123")
		assert.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "http://example.com", record.LongURL)
		assert.Equal(t, int64(0), record.VisitCount)
	})
}

func TestVisitAccounting(t *testing.T) {
	theStorage := newTestStorage(t)

	record, err := theStorage.IncrementVisits(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, int64(1), record.VisitCount)

	_, err = theStorage.IncrementVisits(context.Background(), "missing")
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestUpdateResetsVisits(t *testing.T) {
	theStorage := newTestStorage(t)

	_, err := theStorage.IncrementVisits(context.Background(), "abc123")
	require.NoError(t, err)

	updated, err := theStorage.UpdateURL(context.Background(), "abc123", "http://changed.example.com", day("2026-08-31"))
	require.NoError(t, err)
	assert.Equal(t, "http://changed.example.com", updated.LongURL)
	assert.Equal(t, day("2026-08-31"), updated.CreatedAt)
	assert.Equal(t, int64(0), updated.VisitCount, "An update should reset the visit counter")
	assert.Equal(t, "user-1", updated.OwnerID, "An update should never change the owner")

	_, err = theStorage.UpdateURL(context.Background(), "missing", "http://changed.example.com", day("2026-08-31"))
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestDeleteIsIdempotent(t *testing.T) {
	theStorage := newTestStorage(t)

	err := theStorage.DeleteURL(context.Background(), "abc123")
	require.NoError(t, err)

	err = theStorage.DeleteURL(context.Background(), "abc123")
	assert.NoError(t, err, "Deleting an absent code should be a no-op")

	_, found, err := theStorage.FindURLByCode(context.Background(), "abc123")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestFindURLsByOwner(t *testing.T) {
	theStorage := newTestStorage(t)

	err := theStorage.InsertURL(context.Background(), &models.URLRecord{
		Code:    "def456",
		LongURL: "http://second.example.com",
		OwnerID: "user-1",
	})
	require.NoError(t, err)

	err = theStorage.InsertURL(context.Background(), &models.URLRecord{
		Code:    "ghi789",
		LongURL: "http://foreign.example.com",
		OwnerID: "user-2",
	})
	require.NoError(t, err)

	records, err := theStorage.FindURLsByOwner(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, record := range records {
		assert.Equal(t, "user-1", record.OwnerID)
	}

	records, err = theStorage.FindURLsByOwner(context.Background(), "no-such-user")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestPersistence(t *testing.T) {
	fileName := "db_persistence_test.json"
	defer func() {
		err := os.Remove(fileName)
		require.NoError(t, err)
	}()

	theStorage, err := New(fileName)
	require.NoError(t, err)

	err = theStorage.InsertURL(context.Background(), &models.URLRecord{
		Code:      "abc123",
		LongURL:   "http://example.com",
		OwnerID:   "user-1",
		CreatedAt: day("2026-08-30"),
	})
	require.NoError(t, err)
	require.NoError(t, theStorage.Close())

	reopened, err := New(fileName)
	require.NoError(t, err)

	record, found, err := reopened.FindURLByCode(context.Background(), "abc123")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "http://example.com", record.LongURL)
	require.NoError(t, reopened.Close())
}

func newTestStorage(t *testing.T) *JSONDB {
	t.Helper()

	theStorage, err := New(testDBFileName)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, theStorage.Close())
		require.NoError(t, os.Remove(testDBFileName))
	})

	err = theStorage.CreateUser(context.Background(), &user.User{
		ID:           "user-1",
		Email:        "a@x.com",
		PasswordHash: "some hash",
	})
	require.NoError(t, err)

	err = theStorage.InsertURL(context.Background(), &models.URLRecord{
		Code:      "abc123",
		LongURL:   "http://example.com",
		OwnerID:   "user-1",
		CreatedAt: day("2026-08-30"),
	})
	require.NoError(t, err)

	return theStorage
}
