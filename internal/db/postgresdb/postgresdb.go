// Package postgresdb provides the PostgreSQL-backed implementation of the
// storage interface. Uniqueness checks ride on the table constraints and
// visit accounting is a single UPDATE, so the atomicity requirements hold
// without explicit locking.
package postgresdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pressly/goose/v3"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/okorolenko/tinylink/internal/models"
	"github.com/okorolenko/tinylink/internal/user"
)

// PostgresDB is the PostgreSQL-backed keyed store.
type PostgresDB struct {
	database          *sql.DB
	connectionTimeout time.Duration
}

type initOptions struct {
	DBPreReset bool
}

// InitOption defines a functional option for configuring database initialization.
type InitOption func(*initOptions)

// WithDBPreReset drops the public schema tables before running migrations.
// It is meant for test setups.
func WithDBPreReset(value bool) InitOption {
	return func(options *initOptions) {
		options.DBPreReset = value
	}
}

// New establishes a connection to the PostgreSQL database,
// runs schema migrations, and returns a configured PostgresDB instance.
func New(
	ctx context.Context,
	databaseDSN string,
	connectionTimeout time.Duration,
	migrationsDir string,
	optionsProto ...InitOption,
) (*PostgresDB, error) {
	options := &initOptions{
		DBPreReset: false,
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	database, err := sql.Open("pgx", databaseDSN)
	if err != nil {
		return nil, err
	}

	result := &PostgresDB{
		database:          database,
		connectionTimeout: connectionTimeout,
	}

	if options.DBPreReset {
		if err := result.resetDB(ctx); err != nil {
			return nil, fmt.Errorf("error while `result.resetDB()` calling: %w", err)
		}
	}

	if err := goose.SetDialect("postgres"); err != nil {
		return nil, fmt.Errorf("error while `goose.SetDialect()` calling: %w", err)
	}

	if err := goose.Up(result.database, migrationsDir); err != nil {
		return nil, fmt.Errorf("error while `goose.Up()` calling: %w", err)
	}

	return result, nil
}

// CreateUser inserts a new user record. The email uniqueness constraint
// makes the insert the conflict check.
func (db *PostgresDB) CreateUser(ctx context.Context, usr *user.User) error {
	result, err := db.database.ExecContext(
		ctx,
		`INSERT INTO users (id, email, password_hash)
			VALUES ($1, $2, $3)
			ON CONFLICT (email) DO NOTHING`,
		usr.ID,
		strings.ToLower(usr.Email),
		usr.PasswordHash,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrConflict
	}

	return nil
}

// GetUserByID fetches a user by their UUID.
func (db *PostgresDB) GetUserByID(ctx context.Context, userID string) (*user.User, bool, error) {
	row := db.database.QueryRowContext(
		ctx,
		`SELECT id, email, password_hash FROM users WHERE id = $1`,
		userID,
	)

	usr := &user.User{}
	err := row.Scan(&usr.ID, &usr.Email, &usr.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return usr, true, nil
}

// GetUserByEmail fetches a user by normalized email.
func (db *PostgresDB) GetUserByEmail(ctx context.Context, email string) (*user.User, bool, error) {
	row := db.database.QueryRowContext(
		ctx,
		`SELECT id, email, password_hash FROM users WHERE email = $1`,
		strings.ToLower(email),
	)

	usr := &user.User{}
	err := row.Scan(&usr.ID, &usr.Email, &usr.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return usr, true, nil
}

// InsertURL inserts a record keyed by its short code. The primary key
// conflict stands in for the compare-and-insert critical section.
func (db *PostgresDB) InsertURL(ctx context.Context, record *models.URLRecord) error {
	result, err := db.database.ExecContext(
		ctx,
		`INSERT INTO urls (code, long_url, owner_id, created_at, visit_count)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (code) DO NOTHING`,
		record.Code,
		record.LongURL,
		record.OwnerID,
		record.CreatedAt,
		record.VisitCount,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrCodeExists
	}

	return nil
}

// FindURLByCode retrieves the record stored under the given short code.
func (db *PostgresDB) FindURLByCode(ctx context.Context, code string) (models.URLRecord, bool, error) {
	row := db.database.QueryRowContext(
		ctx,
		`SELECT code, long_url, owner_id, created_at, visit_count FROM urls WHERE code = $1`,
		code,
	)

	record := models.URLRecord{}
	err := row.Scan(&record.Code, &record.LongURL, &record.OwnerID, &record.CreatedAt, &record.VisitCount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.URLRecord{}, false, nil
		}
		return models.URLRecord{}, false, err
	}

	return record, true, nil
}

// UpdateURL replaces the record's target and creation date and resets its
// visit count. The owner column is not touched.
func (db *PostgresDB) UpdateURL(ctx context.Context, code, longURL string, createdAt time.Time) (models.URLRecord, error) {
	row := db.database.QueryRowContext(
		ctx,
		`UPDATE urls
			SET long_url = $2, created_at = $3, visit_count = 0
			WHERE code = $1
			RETURNING code, long_url, owner_id, created_at, visit_count`,
		code,
		longURL,
		createdAt,
	)

	record := models.URLRecord{}
	err := row.Scan(&record.Code, &record.LongURL, &record.OwnerID, &record.CreatedAt, &record.VisitCount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.URLRecord{}, models.ErrNotFound
		}
		return models.URLRecord{}, err
	}

	return record, nil
}

// DeleteURL removes the record. Removing an absent code is a no-op.
func (db *PostgresDB) DeleteURL(ctx context.Context, code string) error {
	_, err := db.database.ExecContext(
		ctx,
		`DELETE FROM urls WHERE code = $1`,
		code,
	)

	return err
}

// FindURLsByOwner retrieves every record owned by the given user.
func (db *PostgresDB) FindURLsByOwner(ctx context.Context, ownerID string) ([]models.URLRecord, error) {
	rows, err := db.database.QueryContext(
		ctx,
		`SELECT code, long_url, owner_id, created_at, visit_count FROM urls WHERE owner_id = $1`,
		ownerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []models.URLRecord{}
	for rows.Next() {
		record := models.URLRecord{}
		err = rows.Scan(&record.Code, &record.LongURL, &record.OwnerID, &record.CreatedAt, &record.VisitCount)
		if err != nil {
			return nil, err
		}

		result = append(result, record)
	}

	err = rows.Err()
	if err != nil {
		return nil, err
	}

	return result, nil
}

// IncrementVisits advances the record's visit counter in a single UPDATE
// and returns the updated record.
func (db *PostgresDB) IncrementVisits(ctx context.Context, code string) (models.URLRecord, error) {
	row := db.database.QueryRowContext(
		ctx,
		`UPDATE urls
			SET visit_count = visit_count + 1
			WHERE code = $1
			RETURNING code, long_url, owner_id, created_at, visit_count`,
		code,
	)

	record := models.URLRecord{}
	err := row.Scan(&record.Code, &record.LongURL, &record.OwnerID, &record.CreatedAt, &record.VisitCount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.URLRecord{}, models.ErrNotFound
		}
		return models.URLRecord{}, err
	}

	return record, nil
}

// Ping verifies connectivity with the PostgreSQL database within the configured timeout.
func (db *PostgresDB) Ping(ctx context.Context) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, db.connectionTimeout)
	defer cancel()

	return db.database.PingContext(ctxWithTimeout)
}

// Close closes the database connection and releases any associated resources.
func (db *PostgresDB) Close() error {
	return db.database.Close()
}

func (db *PostgresDB) resetDB(ctx context.Context) error {
	_, err := db.database.ExecContext(
		ctx,
		`
			DO $$
			DECLARE
				r RECORD;
			BEGIN
				FOR r IN (SELECT tablename FROM pg_tables WHERE schemaname = 'public') LOOP
					EXECUTE 'DROP TABLE IF EXISTS ' || quote_ident(r.tablename) || ' CASCADE';
				END LOOP;
			END $$;
		`,
	)
	if err != nil {
		return fmt.Errorf("error while `db.database.ExecContext()` calling: %w", err)
	}
	return nil
}
