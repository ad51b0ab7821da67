// Package jsondb implements the storage interface over an in-memory cache
// persisted to a JSON file on Close. All operations run under a single
// store-wide lock, which makes the check-and-insert and counting paths
// atomic.
package jsondb

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/okorolenko/tinylink/internal/models"
	"github.com/okorolenko/tinylink/internal/user"
)

// JSONDB is the file-backed keyed store.
type JSONDB struct {
	fileName string
	mutex    sync.RWMutex
	Cache    CacheStruct
}

// CacheStruct holds the in-memory state: users by ID, the email
// uniqueness index, and URL records by short code.
type CacheStruct struct {
	Users        map[string]*user.User
	UsersByEmail map[string]string
	Urls         map[string]models.URLRecord
}

func initDBFile(fileName string) error {
	dbFile, err := os.OpenFile(fileName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(dbFile, `{
	"Users": {},
	"UsersByEmail": {},
	"Urls": {}
}`)
	if err != nil {
		return err
	}
	return dbFile.Close()
}

func writeToJSONFile(fileName string, cache interface{}) error {
	jsonData, err := json.MarshalIndent(cache, "", "\t")
	if err != nil {
		return fmt.Errorf("error marshaling JSON: %s", err)
	}

	file, err2 := os.OpenFile(fileName, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0644)
	if err2 != nil {
		return fmt.Errorf("error opening file: %s", err2)
	}
	defer file.Close()

	_, err = file.Write(jsonData)
	if err != nil {
		return fmt.Errorf("error writing to file: %s", err)
	}

	return nil
}

func parseJSONFile(fileName string, cacheMap *CacheStruct) error {
	file, err := os.Open(fileName)
	if err != nil {
		return err
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	err = decoder.Decode(cacheMap)
	if err != nil {
		return err
	}

	return nil
}

// New loads the store from fileName, creating an empty database file when
// none exists yet.
func New(fileName string) (*JSONDB, error) {
	db := JSONDB{
		fileName: fileName,
		Cache:    CacheStruct{},
	}

	err := parseJSONFile(db.fileName, &db.Cache)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		err := initDBFile(fileName)
		if err != nil {
			return nil, err
		}
		err = parseJSONFile(db.fileName, &db.Cache)
		if err != nil {
			return nil, err
		}
	}

	if db.Cache.Users == nil {
		db.Cache.Users = map[string]*user.User{}
	}
	if db.Cache.UsersByEmail == nil {
		db.Cache.UsersByEmail = map[string]string{}
	}
	if db.Cache.Urls == nil {
		db.Cache.Urls = map[string]models.URLRecord{}
	}

	return &db, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(email)
}

// CreateUser stores a new user, enforcing email uniqueness.
func (db *JSONDB) CreateUser(ctx context.Context, usr *user.User) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	email := normalizeEmail(usr.Email)
	if _, exists := db.Cache.UsersByEmail[email]; exists {
		return models.ErrConflict
	}

	stored := *usr
	stored.Email = email
	db.Cache.Users[stored.ID] = &stored
	db.Cache.UsersByEmail[email] = stored.ID

	return nil
}

// GetUserByID returns the user with the given ID, if any.
func (db *JSONDB) GetUserByID(ctx context.Context, userID string) (*user.User, bool, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	usr, found := db.Cache.Users[userID]
	if !found {
		return nil, false, nil
	}

	result := *usr

	return &result, true, nil
}

// GetUserByEmail returns the user registered under the normalized email.
func (db *JSONDB) GetUserByEmail(ctx context.Context, email string) (*user.User, bool, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	userID, found := db.Cache.UsersByEmail[normalizeEmail(email)]
	if !found {
		return nil, false, nil
	}

	usr, found := db.Cache.Users[userID]
	if !found {
		return nil, false, nil
	}

	result := *usr

	return &result, true, nil
}

// InsertURL stores a new record unless its code is already taken.
// The existence check and the insert share the store lock.
func (db *JSONDB) InsertURL(ctx context.Context, record *models.URLRecord) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	if _, exists := db.Cache.Urls[record.Code]; exists {
		return models.ErrCodeExists
	}

	db.Cache.Urls[record.Code] = *record

	return nil
}

// FindURLByCode returns the record stored under the given code, if any.
func (db *JSONDB) FindURLByCode(ctx context.Context, code string) (models.URLRecord, bool, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	record, found := db.Cache.Urls[code]

	return record, found, nil
}

// UpdateURL replaces the record's target and creation date and resets its
// visit count. The owner is kept as is.
func (db *JSONDB) UpdateURL(ctx context.Context, code, longURL string, createdAt time.Time) (models.URLRecord, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	record, found := db.Cache.Urls[code]
	if !found {
		return models.URLRecord{}, models.ErrNotFound
	}

	record.LongURL = longURL
	record.CreatedAt = createdAt
	record.VisitCount = 0
	db.Cache.Urls[code] = record

	return record, nil
}

// DeleteURL removes the record. Removing an absent code is a no-op.
func (db *JSONDB) DeleteURL(ctx context.Context, code string) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	delete(db.Cache.Urls, code)

	return nil
}

// FindURLsByOwner returns the records owned by the given user.
func (db *JSONDB) FindURLsByOwner(ctx context.Context, ownerID string) ([]models.URLRecord, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	result := []models.URLRecord{}
	for _, record := range db.Cache.Urls {
		if record.OwnerID == ownerID {
			result = append(result, record)
		}
	}

	return result, nil
}

// IncrementVisits advances the record's visit counter under the store lock
// and returns the updated record.
func (db *JSONDB) IncrementVisits(ctx context.Context, code string) (models.URLRecord, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	record, found := db.Cache.Urls[code]
	if !found {
		return models.URLRecord{}, models.ErrNotFound
	}

	record.VisitCount++
	db.Cache.Urls[code] = record

	return record, nil
}

// Ping reports the store as healthy.
func (db *JSONDB) Ping(ctx context.Context) error {
	return nil
}

// Close persists the cache to the backing file.
func (db *JSONDB) Close() error {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	return writeToJSONFile(db.fileName, db.Cache)
}
