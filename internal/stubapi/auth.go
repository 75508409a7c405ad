// Copyright (c) 2026 Asharvi. All rights reserved.
// Author: admin-platform@asharvi.dev

package stubapi

import (
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/asharvi/admin-core/internal/platform/apperr"
	"github.com/asharvi/admin-core/internal/platform/constants"
	requestutil "github.com/asharvi/admin-core/internal/platform/request"
	"github.com/asharvi/admin-core/internal/platform/respond"
	"github.com/asharvi/admin-core/internal/platform/sec"
	"github.com/asharvi/admin-core/pkg/uuidv7"
)

// User is a stub backend account.
type User struct {
	ID           string   `json:"id"`
	Email        string   `json:"email"`
	PasswordHash string   `json:"-"`
	Roles        []string `json:"roles"`
}

// AuthService owns stub credentials and token issuance.
//
// Access tokens are real HS256 JWTs so the client's unverified claim
// decoding sees the same shapes production emits. Refresh tokens are opaque
// and rotate on every exchange.
type AuthService struct {
	secret []byte

	mu       sync.Mutex
	users    map[string]User   // email → account
	sessions map[string]string // refresh token → user id
}

// NewAuthService builds an auth service around the signing secret.
func NewAuthService(secret []byte) *AuthService {
	return &AuthService{
		secret:   secret,
		users:    map[string]User{},
		sessions: map[string]string{},
	}
}

// AddUser registers an account. The password is stored as a bcrypt hash.
func (service *AuthService) AddUser(email, password string, roles ...string) error {
	hash, err := sec.HashPassword(password)
	if err != nil {
		return err
	}
	service.mu.Lock()
	defer service.mu.Unlock()
	service.users[strings.ToLower(email)] = User{
		ID:           uuidv7.New(),
		Email:        strings.ToLower(email),
		PasswordHash: hash,
		Roles:        roles,
	}
	return nil
}

func (service *AuthService) findByEmail(email string) (User, bool) {
	service.mu.Lock()
	defer service.mu.Unlock()
	account, found := service.users[strings.ToLower(email)]
	return account, found
}

// VerifyToken implements [middleware.TokenVerifier].
func (service *AuthService) VerifyToken(tokenStr string) (*sec.AccessClaims, error) {
	return sec.VerifyToken(service.secret, tokenStr)
}

func (service *AuthService) issueAccessToken(user User) (string, error) {
	claims := &sec.AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:  constants.AuthIssuer,
			Subject: user.ID,
		},
		UserID: user.ID,
		Roles:  user.Roles,
	}
	return sec.IssueToken(service.secret, claims, constants.AccessTokenTTL)
}

func (service *AuthService) openSession(userID string) string {
	token := uuidv7.New()
	service.mu.Lock()
	defer service.mu.Unlock()
	service.sessions[token] = userID
	return token
}

// rotateSession exchanges a refresh token for a new one, invalidating the old.
func (service *AuthService) rotateSession(refreshToken string) (User, string, bool) {
	service.mu.Lock()
	defer service.mu.Unlock()

	userID, ok := service.sessions[refreshToken]
	if !ok {
		return User{}, "", false
	}
	delete(service.sessions, refreshToken)

	var account User
	found := false
	for _, user := range service.users {
		if user.ID == userID {
			account, found = user, true
			break
		}
	}
	if !found {
		return User{}, "", false
	}

	next := uuidv7.New()
	service.sessions[next] = userID
	return account, next, true
}

func (service *AuthService) closeSession(refreshToken string) {
	service.mu.Lock()
	defer service.mu.Unlock()
	delete(service.sessions, refreshToken)
}

// # HTTP surface

// AuthHandler exposes the stub auth routes.
type AuthHandler struct {
	service *AuthService
}

// NewAuthHandler wraps the service.
func NewAuthHandler(service *AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// RegisterRoutes mounts the auth routes on the router. The identity route
// is the only one behind token verification; login, refresh and logout must
// work with an absent or expired access token.
func (handler *AuthHandler) RegisterRoutes(router chi.Router, authenticate func(http.Handler) http.Handler) {
	router.Post("/login", handler.login)
	router.Post("/refresh", handler.refresh)
	router.Post("/logout", handler.logout)
	router.With(authenticate).Get("/me", handler.me)
}

// sessionResponse is the flat login/refresh payload. Auth routes predate
// the data envelope and keep the original shape.
type sessionResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	User         User   `json:"user"`
}

func (handler *AuthHandler) login(writer http.ResponseWriter, request *http.Request) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, found := handler.service.findByEmail(input.Email)
	if !found || !sec.CheckPasswordHash(input.Password, account.PasswordHash) {
		respond.Error(writer, request, apperr.Unauthorized("Invalid email or password"))
		return
	}

	accessToken, err := handler.service.issueAccessToken(account)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	refreshToken := handler.service.openSession(account.ID)
	setRefreshCookie(writer, refreshToken)

	respond.JSON(writer, http.StatusOK, sessionResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         account,
	})
}

func (handler *AuthHandler) refresh(writer http.ResponseWriter, request *http.Request) {
	refreshToken := refreshTokenFrom(request)
	if refreshToken == "" {
		respond.Error(writer, request, apperr.Unauthorized("Missing refresh token"))
		return
	}

	account, rotated, ok := handler.service.rotateSession(refreshToken)
	if !ok {
		respond.Error(writer, request, apperr.Unauthorized("Session expired"))
		return
	}

	accessToken, err := handler.service.issueAccessToken(account)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	setRefreshCookie(writer, rotated)

	respond.JSON(writer, http.StatusOK, sessionResponse{
		AccessToken:  accessToken,
		RefreshToken: rotated,
		User:         account,
	})
}

func (handler *AuthHandler) logout(writer http.ResponseWriter, request *http.Request) {
	if refreshToken := refreshTokenFrom(request); refreshToken != "" {
		handler.service.closeSession(refreshToken)
	}
	clearRefreshCookie(writer)
	respond.NoContent(writer)
}

func (handler *AuthHandler) me(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	// Flat payload: the client decodes identity without an envelope.
	respond.JSON(writer, http.StatusOK, map[string]any{
		"userId": claims.Identity(),
		"roles":  claims.RoleList(),
	})
}

// refreshTokenFrom reads the refresh token from the session cookie first,
// then falls back to a JSON body for cookieless clients.
func refreshTokenFrom(request *http.Request) string {
	if cookie, err := request.Cookie(constants.RefreshTokenCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	var input struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := requestutil.DecodeJSON(request, &input); err == nil {
		return input.RefreshToken
	}
	return ""
}

func setRefreshCookie(writer http.ResponseWriter, token string) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    token,
		Path:     constants.RefreshTokenCookiePath,
		MaxAge:   int(constants.RefreshTokenTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearRefreshCookie(writer http.ResponseWriter) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    "",
		Path:     constants.RefreshTokenCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
