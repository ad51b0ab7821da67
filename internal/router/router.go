// Package router wires the HTTP surface: credential endpoints, the
// ownership-scoped URL API and the public redirect. Handlers translate the
// core error taxonomy into HTTP statuses; all business rules live below.
package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/okorolenko/tinylink/internal/auth"
	"github.com/okorolenko/tinylink/internal/gzippedhttp"
	"github.com/okorolenko/tinylink/internal/logger"
	"github.com/okorolenko/tinylink/internal/models"
	"github.com/okorolenko/tinylink/internal/session"
	"github.com/okorolenko/tinylink/internal/user"
)

type urlService interface {
	CreateURL(ctx context.Context, sess models.Session, longURL string) (models.URLRecord, error)
	GetURL(ctx context.Context, sess models.Session, code string) (models.URLRecord, error)
	UpdateURL(ctx context.Context, sess models.Session, code, longURL string) (models.URLRecord, error)
	DeleteURL(ctx context.Context, sess models.Session, code string) error
	ListMine(ctx context.Context, sess models.Session) (models.UserUrls, error)
	Resolve(ctx context.Context, code string) (string, error)
	Ping(ctx context.Context) error
	ShortURL(code string) string
}

type authService interface {
	Register(ctx context.Context, email, password string) (*user.User, error)
	Login(ctx context.Context, email, password string) (*user.User, error)
	StartSession(userID string) (string, error)
	WithIdentity(h http.Handler) http.Handler
}

// Router holds the handler dependencies.
type Router struct {
	svc      urlService
	auth     authService
	codec    *session.Codec
	validate *validator.Validate
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// New builds the chi mux with logging, gzip and identity middleware.
func New(svc urlService, authSvc authService, codec *session.Codec) http.Handler {
	r := &Router{
		svc:      svc,
		auth:     authSvc,
		codec:    codec,
		validate: validator.New(),
	}

	mux := chi.NewRouter()
	mux.Use(logger.WithLoggingHTTPMiddleware)
	mux.Use(gzippedhttp.UngzipRequest)
	mux.Use(gzippedhttp.GzipResponse)
	mux.Use(authSvc.WithIdentity)

	mux.Post(`/api/user/register`, r.PostRegister)
	mux.Post(`/api/user/login`, r.PostLogin)
	mux.Post(`/api/user/logout`, r.PostLogout)
	mux.Get(`/api/user/urls`, r.GetUserUrls)
	mux.Post(`/api/shorten`, r.PostShorten)
	mux.Get(`/api/urls/{code}`, r.GetURL)
	mux.Put(`/api/urls/{code}`, r.PutURL)
	mux.Delete(`/api/urls/{code}`, r.DeleteURL)
	mux.Get(`/ping`, r.GetPing)
	mux.Get(`/{code}`, r.GetRedirectToLongURL)

	return mux
}

func statusFromError(err error) int {
	switch {
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrConflict):
		return http.StatusConflict
	}

	return http.StatusInternalServerError
}

func writeError(response http.ResponseWriter, err error) {
	http.Error(response, err.Error(), statusFromError(err))
}

func writeJSON(response http.ResponseWriter, statusCode int, payload interface{}) {
	response.Header().Set("Content-Type", "application/json")
	response.WriteHeader(statusCode)
	if err := json.NewEncoder(response).Encode(payload); err != nil {
		logger.Log.Debugln("Error encoding the response payload: ", zap.Error(err))
	}
}

func (r *Router) decodeAndValidate(request *http.Request, target interface{}) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return models.ErrValidation
	}
	if err := r.validate.Struct(target); err != nil {
		return models.ErrValidation
	}

	return nil
}

// PostRegister creates an account and starts a session for it.
func (r *Router) PostRegister(response http.ResponseWriter, request *http.Request) {
	requestDTO := models.RegisterRequest{}
	if err := r.decodeAndValidate(request, &requestDTO); err != nil {
		writeError(response, err)
		return
	}

	usr, err := r.auth.Register(request.Context(), requestDTO.Email, requestDTO.Password)
	if err != nil {
		writeError(response, err)
		return
	}

	r.startSession(response, usr.ID, func() {
		writeJSON(response, http.StatusCreated, userResponse{ID: usr.ID, Email: usr.Email})
	})
}

// PostLogin verifies credentials and starts a session.
func (r *Router) PostLogin(response http.ResponseWriter, request *http.Request) {
	requestDTO := models.LoginRequest{}
	if err := r.decodeAndValidate(request, &requestDTO); err != nil {
		writeError(response, err)
		return
	}

	usr, err := r.auth.Login(request.Context(), requestDTO.Email, requestDTO.Password)
	if err != nil {
		writeError(response, err)
		return
	}

	r.startSession(response, usr.ID, func() {
		writeJSON(response, http.StatusOK, userResponse{ID: usr.ID, Email: usr.Email})
	})
}

func (r *Router) startSession(response http.ResponseWriter, userID string, onSuccess func()) {
	token, err := r.auth.StartSession(userID)
	if err != nil {
		logger.Log.Debugln("Error calling the `r.auth.StartSession()`: ", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	r.codec.SetCookie(response, token)
	onSuccess()
}

// PostLogout instructs the client to discard the session cookie.
// There is no server-side session state to clear.
func (r *Router) PostLogout(response http.ResponseWriter, request *http.Request) {
	r.codec.ClearCookie(response)
	response.WriteHeader(http.StatusNoContent)
}

// GetUserUrls lists the records owned by the session's user.
func (r *Router) GetUserUrls(response http.ResponseWriter, request *http.Request) {
	urls, err := r.svc.ListMine(request.Context(), auth.SessionFromContext(request.Context()))
	if err != nil {
		writeError(response, err)
		return
	}

	writeJSON(response, http.StatusOK, urls)
}

// PostShorten creates a shortened URL owned by the session's user.
func (r *Router) PostShorten(response http.ResponseWriter, request *http.Request) {
	requestDTO := models.ShortenRequest{}
	if err := r.decodeAndValidate(request, &requestDTO); err != nil {
		writeError(response, err)
		return
	}

	record, err := r.svc.CreateURL(request.Context(), auth.SessionFromContext(request.Context()), requestDTO.URL)
	if err != nil {
		writeError(response, err)
		return
	}

	writeJSON(response, http.StatusCreated, models.ShortenResponse{Result: r.svc.ShortURL(record.Code)})
}

// GetURL returns a single record to its owner.
func (r *Router) GetURL(response http.ResponseWriter, request *http.Request) {
	code := chi.URLParam(request, "code")

	record, err := r.svc.GetURL(request.Context(), auth.SessionFromContext(request.Context()), code)
	if err != nil {
		writeError(response, err)
		return
	}

	writeJSON(response, http.StatusOK, record)
}

// PutURL replaces a record's target for its owner.
func (r *Router) PutURL(response http.ResponseWriter, request *http.Request) {
	code := chi.URLParam(request, "code")

	requestDTO := models.UpdateURLRequest{}
	if err := r.decodeAndValidate(request, &requestDTO); err != nil {
		writeError(response, err)
		return
	}

	record, err := r.svc.UpdateURL(request.Context(), auth.SessionFromContext(request.Context()), code, requestDTO.URL)
	if err != nil {
		writeError(response, err)
		return
	}

	writeJSON(response, http.StatusOK, record)
}

// DeleteURL removes a record for its owner.
func (r *Router) DeleteURL(response http.ResponseWriter, request *http.Request) {
	code := chi.URLParam(request, "code")

	err := r.svc.DeleteURL(request.Context(), auth.SessionFromContext(request.Context()), code)
	if err != nil {
		writeError(response, err)
		return
	}

	response.WriteHeader(http.StatusNoContent)
}

// GetRedirectToLongURL resolves a short code and redirects to its target.
// This is the public path, no authentication involved.
func (r *Router) GetRedirectToLongURL(response http.ResponseWriter, request *http.Request) {
	code := chi.URLParam(request, "code")

	longURL, err := r.svc.Resolve(request.Context(), code)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			http.Error(response, "URL does not exist", http.StatusNotFound)
			return
		}
		writeError(response, err)
		return
	}

	http.Redirect(response, request, longURL, http.StatusFound)
}

// GetPing reports storage health.
func (r *Router) GetPing(response http.ResponseWriter, request *http.Request) {
	if err := r.svc.Ping(request.Context()); err != nil {
		logger.Log.Debugln("Error calling the `r.svc.Ping()`: ", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	response.WriteHeader(http.StatusOK)
}
