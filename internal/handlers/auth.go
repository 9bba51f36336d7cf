package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	applog "github.com/SlavaKlkv/foodgram/internal/log"
	"github.com/SlavaKlkv/foodgram/models"
)

const detailInvalidCredentials = "Невозможно войти с предоставленными учетными данными."

// Authenticate resolves the Authorization header into a RequestContext.
// Requests without a usable token proceed as anonymous; per-route
// RequireAuthentication decides whether that is acceptable.
func Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" || database == nil {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := parseAuthToken(raw)
		if err != nil {
			applog.Debug(r.Context(), "rejecting invalid bearer token", "error", err)
			next.ServeHTTP(w, r)
			return
		}

		var stored models.AuthToken
		err = database.WithContext(r.Context()).
			Where("id = ? AND user_id = ?", claims.ID, claims.UserID).
			First(&stored).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				applog.Error(r.Context(), "failed to look up auth token", "error", err)
			}
			next.ServeHTTP(w, r)
			return
		}

		var user models.User
		if err := database.WithContext(r.Context()).First(&user, claims.UserID).Error; err != nil {
			next.ServeHTTP(w, r)
			return
		}

		rc := RequestContext{Actor: &user, TokenID: claims.ID}
		next.ServeHTTP(w, r.WithContext(withRequestContext(r.Context(), rc)))
	})
}

// RequireAuthentication rejects anonymous requests with 401 before the
// wrapped handler runs.
func RequireAuthentication(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := currentUser(r); !ok {
			writeDetail(w, http.StatusUnauthorized, detailNotAuthenticated)
			return
		}
		next(w, r)
	}
}

// bearerToken extracts the credential from "Token <x>" or "Bearer <x>".
func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	for _, scheme := range []string{"Token ", "Bearer "} {
		if len(header) > len(scheme) && strings.EqualFold(header[:len(scheme)], scheme) {
			return strings.TrimSpace(header[len(scheme):])
		}
	}
	return ""
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login verifies credentials and issues a revocable bearer token.
func Login(w http.ResponseWriter, r *http.Request) {
	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeDetail(w, http.StatusBadRequest, detailInvalidCredentials)
		return
	}

	email := strings.ToLower(strings.TrimSpace(payload.Email))
	if email == "" || payload.Password == "" {
		writeDetail(w, http.StatusBadRequest, detailInvalidCredentials)
		return
	}

	var user models.User
	err := database.WithContext(r.Context()).Where("lower(email) = ?", email).First(&user).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			writeServerError(w, r, "failed to load user during login", err)
			return
		}
		writeDetail(w, http.StatusBadRequest, detailInvalidCredentials)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(payload.Password)); err != nil {
		applog.Debug(r.Context(), "password mismatch during login", "email", email)
		writeDetail(w, http.StatusBadRequest, detailInvalidCredentials)
		return
	}

	tokenID := uuid.NewString()
	if err := database.WithContext(r.Context()).Create(&models.AuthToken{ID: tokenID, UserID: user.ID}).Error; err != nil {
		writeServerError(w, r, "failed to store auth token", err)
		return
	}

	signed, err := signAuthToken(user.ID, tokenID)
	if err != nil {
		writeServerError(w, r, "failed to sign auth token", err)
		return
	}

	applog.Info(r.Context(), "issued auth token", "user", user.ID)
	writeJSON(w, http.StatusOK, map[string]string{"auth_token": signed})
}

// Logout revokes the presented token.
func Logout(w http.ResponseWriter, r *http.Request) {
	rc := requestContext(r)
	if rc.Actor == nil {
		writeDetail(w, http.StatusUnauthorized, detailNotAuthenticated)
		return
	}

	if err := database.WithContext(r.Context()).
		Delete(&models.AuthToken{}, "id = ?", rc.TokenID).Error; err != nil {
		writeServerError(w, r, "failed to revoke auth token", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
