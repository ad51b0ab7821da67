// Package service implements the application core: ownership-scoped CRUD
// over shortened URLs, session gating and public redirect resolution.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/thoas/go-funk"

	"github.com/okorolenko/tinylink/internal/models"
)

// TriesToGenerateUniqueKey bounds how many times a colliding short code is
// regenerated before giving up.
const TriesToGenerateUniqueKey = 10

type urlKeeper interface {
	InsertURL(ctx context.Context, record *models.URLRecord) error
	FindURLByCode(ctx context.Context, code string) (models.URLRecord, bool, error)
	UpdateURL(ctx context.Context, code, longURL string, createdAt time.Time) (models.URLRecord, error)
	DeleteURL(ctx context.Context, code string) error
	FindURLsByOwner(ctx context.Context, ownerID string) ([]models.URLRecord, error)
	IncrementVisits(ctx context.Context, code string) (models.URLRecord, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

type storage interface {
	urlKeeper
	pinger
}

type codeGenerator interface {
	Generate() string
}

// Service exposes the URL operations gated by session identity.
type Service struct {
	db           storage
	generator    codeGenerator
	shortURLBase string
}

// New creates a Service over the given storage and short code generator.
func New(db storage, generator codeGenerator, shortURLBase string) *Service {
	return &Service{
		db:           db,
		generator:    generator,
		shortURLBase: shortURLBase,
	}
}

// today returns the current date with date-only granularity.
func today() time.Time {
	now := time.Now().UTC()

	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func requireSession(sess models.Session) (string, error) {
	if sess.UserID == "" {
		return "", fmt.Errorf("%w: must be authenticated", models.ErrAuth)
	}

	return sess.UserID, nil
}

// requireOwnership fetches the record and checks it belongs to userID.
// An absent record is treated as not-owned.
func (s *Service) requireOwnership(ctx context.Context, code, userID string) (models.URLRecord, error) {
	record, found, err := s.db.FindURLByCode(ctx, code)
	if err != nil {
		return models.URLRecord{}, err
	}
	if !found || record.OwnerID != userID {
		return models.URLRecord{}, models.ErrForbidden
	}

	return record, nil
}

// CreateURL stores a new record for the session's user under a freshly
// generated unique short code.
func (s *Service) CreateURL(ctx context.Context, sess models.Session, longURL string) (models.URLRecord, error) {
	userID, err := requireSession(sess)
	if err != nil {
		return models.URLRecord{}, err
	}

	if strings.TrimSpace(longURL) == "" {
		return models.URLRecord{}, fmt.Errorf("%w: URL cannot be empty", models.ErrValidation)
	}

	record := models.URLRecord{
		LongURL:    longURL,
		OwnerID:    userID,
		CreatedAt:  today(),
		VisitCount: 0,
	}

	for i := 0; i < TriesToGenerateUniqueKey; i++ {
		record.Code = s.generator.Generate()
		err = s.db.InsertURL(ctx, &record)
		if err == nil {
			return record, nil
		}
		if !errors.Is(err, models.ErrCodeExists) {
			return models.URLRecord{}, err
		}
	}

	return models.URLRecord{}, models.ErrCodeSpaceExhausted
}

// GetURL returns the record identified by code if the session's user owns it.
func (s *Service) GetURL(ctx context.Context, sess models.Session, code string) (models.URLRecord, error) {
	userID, err := requireSession(sess)
	if err != nil {
		return models.URLRecord{}, err
	}

	return s.requireOwnership(ctx, code, userID)
}

// UpdateURL replaces the record's target. The creation date is re-stamped
// and the visit counter resets; ownership never changes.
func (s *Service) UpdateURL(ctx context.Context, sess models.Session, code, longURL string) (models.URLRecord, error) {
	userID, err := requireSession(sess)
	if err != nil {
		return models.URLRecord{}, err
	}

	if _, err := s.requireOwnership(ctx, code, userID); err != nil {
		return models.URLRecord{}, err
	}

	if strings.TrimSpace(longURL) == "" {
		return models.URLRecord{}, fmt.Errorf("%w: URL cannot be empty", models.ErrValidation)
	}

	return s.db.UpdateURL(ctx, code, longURL, today())
}

// DeleteURL removes the record if the session's user owns it.
func (s *Service) DeleteURL(ctx context.Context, sess models.Session, code string) error {
	userID, err := requireSession(sess)
	if err != nil {
		return err
	}

	if _, err := s.requireOwnership(ctx, code, userID); err != nil {
		return err
	}

	return s.db.DeleteURL(ctx, code)
}

// ListMine returns the session user's records as owner-facing DTOs.
// The order of the snapshot is unspecified.
func (s *Service) ListMine(ctx context.Context, sess models.Session) (models.UserUrls, error) {
	userID, err := requireSession(sess)
	if err != nil {
		return nil, err
	}

	records, err := s.db.FindURLsByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := funk.Map(records, func(record models.URLRecord) models.UserURL {
		return models.UserURL{
			ShortURL:    s.ShortURL(record.Code),
			OriginalURL: record.LongURL,
			Visits:      record.VisitCount,
			CreatedAt:   record.CreatedAt.Format("2006/01/02"),
		}
	}).([]models.UserURL)

	return result, nil
}

// Resolve maps a short code to its target URL and records the visit.
// No authentication is required - this is the public short-link path.
func (s *Service) Resolve(ctx context.Context, code string) (string, error) {
	record, err := s.db.IncrementVisits(ctx, code)
	if err != nil {
		return "", err
	}

	return record.LongURL, nil
}

// Ping checks the health of the storage layer.
func (s *Service) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// ShortURL formats the public short URL for a code.
func (s *Service) ShortURL(code string) string {
	return s.shortURLBase + "/" + code
}
