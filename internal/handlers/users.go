package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	applog "github.com/SlavaKlkv/foodgram/internal/log"
	"github.com/SlavaKlkv/foodgram/models"
)

type userProfile struct {
	Email        string  `json:"email"`
	ID           uint    `json:"id"`
	Username     string  `json:"username"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	IsSubscribed bool    `json:"is_subscribed"`
	Avatar       *string `json:"avatar"`
}

// projectUserProfile builds the profile representation, including whether
// the requesting actor follows this user. Anonymous requesters always get
// is_subscribed=false.
func projectUserProfile(r *http.Request, user models.User) (userProfile, error) {
	profile := userProfile{
		Email:     user.Email,
		ID:        user.ID,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Avatar:    imageURL(user.Avatar),
	}

	actor, ok := currentUser(r)
	if !ok || actor.ID == user.ID {
		return profile, nil
	}

	var count int64
	err := database.WithContext(r.Context()).Model(&models.Subscription{}).
		Where("user_id = ? AND author_id = ?", actor.ID, user.ID).
		Count(&count).Error
	if err != nil {
		return profile, err
	}
	profile.IsSubscribed = count > 0
	return profile, nil
}

type registerRequest struct {
	Email     *string `json:"email"`
	Username  *string `json:"username"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Password  *string `json:"password"`
}

type registerResponse struct {
	Email     string `json:"email"`
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// RegisterUser creates an account from a registration payload. Every
// problem is reported at once as a field-keyed error map.
func RegisterUser(w http.ResponseWriter, r *http.Request) {
	var payload registerRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeDetail(w, http.StatusBadRequest, "Некорректный запрос.")
		return
	}

	fieldErrors := map[string]any{}
	required := map[string]*string{
		"email":      payload.Email,
		"username":   payload.Username,
		"first_name": payload.FirstName,
		"last_name":  payload.LastName,
		"password":   payload.Password,
	}
	for field, value := range required {
		if value == nil || strings.TrimSpace(*value) == "" {
			fieldErrors[field] = []string{messageRequired}
		}
	}
	if _, ok := fieldErrors["email"]; !ok && !emailPattern.MatchString(strings.TrimSpace(*payload.Email)) {
		fieldErrors["email"] = []string{"Введите правильный адрес электронной почты."}
	}
	if _, ok := fieldErrors["username"]; !ok && !models.ValidUsername(strings.TrimSpace(*payload.Username)) {
		fieldErrors["username"] = []string{"Введите корректное имя пользователя."}
	}
	if len(fieldErrors) > 0 {
		writeFieldErrors(w, fieldErrors)
		return
	}

	email := strings.ToLower(strings.TrimSpace(*payload.Email))
	username := strings.TrimSpace(*payload.Username)

	var count int64
	if err := database.WithContext(r.Context()).Model(&models.User{}).
		Where("lower(email) = ?", email).Count(&count).Error; err != nil {
		writeServerError(w, r, "failed to check email uniqueness", err)
		return
	}
	if count > 0 {
		fieldErrors["email"] = []string{"Пользователь с таким email уже существует."}
	}
	count = 0
	if err := database.WithContext(r.Context()).Model(&models.User{}).
		Where("username = ?", username).Count(&count).Error; err != nil {
		writeServerError(w, r, "failed to check username uniqueness", err)
		return
	}
	if count > 0 {
		fieldErrors["username"] = []string{"Пользователь с таким именем уже существует."}
	}
	if len(fieldErrors) > 0 {
		writeFieldErrors(w, fieldErrors)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(*payload.Password), bcrypt.DefaultCost)
	if err != nil {
		writeServerError(w, r, "failed to hash password", err)
		return
	}

	user := models.User{
		Email:        email,
		Username:     username,
		FirstName:    strings.TrimSpace(*payload.FirstName),
		LastName:     strings.TrimSpace(*payload.LastName),
		PasswordHash: string(hashed),
	}
	if err := database.WithContext(r.Context()).Create(&user).Error; err != nil {
		// Lost a uniqueness race to a concurrent registration.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			writeFieldErrors(w, map[string]any{
				"email": []string{"Пользователь с таким email уже существует."},
			})
			return
		}
		writeServerError(w, r, "failed to create user", err)
		return
	}

	applog.Info(r.Context(), "registered user", "user", user.ID)
	writeJSON(w, http.StatusCreated, registerResponse{
		Email:     user.Email,
		ID:        user.ID,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	})
}

// ListUsers returns a paginated list of profiles. Open to anonymous
// requesters.
func ListUsers(w http.ResponseWriter, r *http.Request) {
	params := parsePageParams(r)

	var count int64
	if err := database.WithContext(r.Context()).Model(&models.User{}).Count(&count).Error; err != nil {
		writeServerError(w, r, "failed to count users", err)
		return
	}

	var users []models.User
	err := database.WithContext(r.Context()).
		Order("id asc").
		Offset(params.offset()).
		Limit(params.limit).
		Find(&users).Error
	if err != nil {
		writeServerError(w, r, "failed to list users", err)
		return
	}

	profiles := make([]userProfile, 0, len(users))
	for _, user := range users {
		profile, err := projectUserProfile(r, user)
		if err != nil {
			writeServerError(w, r, "failed to project user profile", err)
			return
		}
		profiles = append(profiles, profile)
	}

	writeJSON(w, http.StatusOK, paginate(r, params, count, profiles))
}

// RetrieveUser returns one profile by id.
func RetrieveUser(w http.ResponseWriter, r *http.Request) {
	user, ok := findUserByParam(w, r)
	if !ok {
		return
	}

	profile, err := projectUserProfile(r, *user)
	if err != nil {
		writeServerError(w, r, "failed to project user profile", err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// CurrentUserProfile returns the authenticated actor's own profile.
func CurrentUserProfile(w http.ResponseWriter, r *http.Request) {
	actor, _ := currentUser(r)

	profile, err := projectUserProfile(r, *actor)
	if err != nil {
		writeServerError(w, r, "failed to project user profile", err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

type avatarRequest struct {
	Avatar *string `json:"avatar"`
}

// SetAvatar replaces the actor's avatar from a base64 data URI.
func SetAvatar(w http.ResponseWriter, r *http.Request) {
	actor, _ := currentUser(r)

	var payload avatarRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Avatar == nil {
		writeFieldErrors(w, map[string]any{"avatar": []string{messageRequired}})
		return
	}

	ext, data, err := decodeImageDataURI(*payload.Avatar)
	if err != nil {
		message := messageImageInvalid
		if errors.Is(err, errImageBlank) {
			message = messageImageBlank
		}
		writeFieldErrors(w, map[string]any{"avatar": []string{message}})
		return
	}

	relPath, err := saveImage("users", data, ext)
	if err != nil {
		writeServerError(w, r, "failed to store avatar", err)
		return
	}

	previous := actor.Avatar
	if err := database.WithContext(r.Context()).Model(actor).
		Update("avatar", relPath).Error; err != nil {
		removeImage(relPath)
		writeServerError(w, r, "failed to update avatar", err)
		return
	}
	removeImage(previous)

	writeJSON(w, http.StatusOK, map[string]*string{"avatar": imageURL(relPath)})
}

// DeleteAvatar removes the actor's avatar and its stored file.
func DeleteAvatar(w http.ResponseWriter, r *http.Request) {
	actor, _ := currentUser(r)

	if actor.Avatar != "" {
		previous := actor.Avatar
		if err := database.WithContext(r.Context()).Model(actor).
			Update("avatar", "").Error; err != nil {
			writeServerError(w, r, "failed to clear avatar", err)
			return
		}
		removeImage(previous)
	}

	w.WriteHeader(http.StatusNoContent)
}

type passwordRequest struct {
	NewPassword     *string `json:"new_password"`
	CurrentPassword *string `json:"current_password"`
}

// SetPassword changes the actor's password after verifying the current one.
func SetPassword(w http.ResponseWriter, r *http.Request) {
	actor, _ := currentUser(r)

	var payload passwordRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeDetail(w, http.StatusBadRequest, "Некорректный запрос.")
		return
	}

	fieldErrors := map[string]any{}
	if payload.NewPassword == nil || *payload.NewPassword == "" {
		fieldErrors["new_password"] = []string{messageRequired}
	}
	if payload.CurrentPassword == nil || *payload.CurrentPassword == "" {
		fieldErrors["current_password"] = []string{messageRequired}
	}
	if len(fieldErrors) > 0 {
		writeFieldErrors(w, fieldErrors)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(actor.PasswordHash), []byte(*payload.CurrentPassword)); err != nil {
		writeFieldErrors(w, map[string]any{"current_password": []string{"Неверный текущий пароль."}})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(*payload.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		writeServerError(w, r, "failed to hash password", err)
		return
	}

	if err := database.WithContext(r.Context()).Model(actor).
		Update("password_hash", string(hashed)).Error; err != nil {
		writeServerError(w, r, "failed to update password", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// findUserByParam loads the user addressed by the {id} path parameter,
// writing the 404 response itself when the user does not exist.
func findUserByParam(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	idValue, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeDetail(w, http.StatusNotFound, detailUserNotFound)
		return nil, false
	}

	var user models.User
	if err := database.WithContext(r.Context()).First(&user, uint(idValue)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeDetail(w, http.StatusNotFound, detailUserNotFound)
			return nil, false
		}
		writeServerError(w, r, "failed to load user", err)
		return nil, false
	}
	return &user, true
}
