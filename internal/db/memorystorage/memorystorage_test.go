package memorystorage

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okorolenko/tinylink/internal/models"
)

func Test(t *testing.T) {
	t.Run("The base memorystorage package test", func(t *testing.T) {
		theStorage, err := New()
		assert.NoError(t, err, "The memorystorage.New() should not return error")

		err = theStorage.InsertURL(context.Background(), &models.URLRecord{
			Code:    "abc123",
			LongURL: "http://example.com",
			OwnerID: "user-1",
		})
		assert.NoError(t, err, "The `theStorage.InsertURL()` should not return error")

		record, found, err := theStorage.FindURLByCode(context.Background(), "abc123")
		assert.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "http://example.com", record.LongURL)

		err = theStorage.Ping(context.Background())
		assert.NoError(t, err, "The memorystorage.Ping() should not return error")

		err = theStorage.Close()
		assert.NoError(t, err, "The memorystorage.Close() should not return error")
	})
}

func TestConcurrentVisitIncrements(t *testing.T) {
	theStorage, err := New()
	require.NoError(t, err)

	err = theStorage.InsertURL(context.Background(), &models.URLRecord{
		Code:    "abc123",
		LongURL: "http://example.com",
		OwnerID: "user-1",
	})
	require.NoError(t, err)

	const resolvers = 100

	var wg sync.WaitGroup
	wg.Add(resolvers)
	for i := 0; i < resolvers; i++ {
		go func() {
			defer wg.Done()
			record, err := theStorage.IncrementVisits(context.Background(), "abc123")
			assert.NoError(t, err)
			assert.Equal(t, "http://example.com", record.LongURL)
		}()
	}
	wg.Wait()

	record, found, err := theStorage.FindURLByCode(context.Background(), "abc123")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, int64(resolvers), record.VisitCount, "No increment should be lost under concurrent resolves")
}

func TestConcurrentInsertsOfSameCode(t *testing.T) {
	theStorage, err := New()
	require.NoError(t, err)

	const inserters = 50

	var wg sync.WaitGroup
	results := make(chan error, inserters)
	wg.Add(inserters)
	for i := 0; i < inserters; i++ {
		go func() {
			defer wg.Done()
			results <- theStorage.InsertURL(context.Background(), &models.URLRecord{
				Code:    "abc123",
				LongURL: "http://example.com",
				OwnerID: "user-1",
			})
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, models.ErrCodeExists)
		}
	}
	assert.Equal(t, 1, succeeded, "Exactly one concurrent creator should claim a code")
}
