package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	applog "github.com/SlavaKlkv/foodgram/internal/log"
)

// Localized boundary messages. Validation errors are field-keyed maps,
// everything else is a {"detail": ...} body.
const (
	detailNotAuthenticated = "Учетные данные не были предоставлены."
	detailPermissionDenied = "У вас недостаточно прав для выполнения данного действия."
	detailServerError      = "Произошла неизвестная ошибка."

	detailRecipeNotFound     = "Рецепт не найден."
	detailUserNotFound       = "Пользователь не найден."
	detailTagNotFound        = "Тег не найден."
	detailIngredientNotFound = "Ингредиент не найден."

	messageRequired = "Обязательное поле."
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		applog.Error(context.Background(), "failed to encode json response", "error", err)
	}
}

// writeDetail reports a terminal per-request outcome as {"detail": message}.
func writeDetail(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"detail": message})
}

// writeFieldErrors reports a validation failure keyed by field name.
func writeFieldErrors(w http.ResponseWriter, fields map[string]any) {
	writeJSON(w, http.StatusBadRequest, fields)
}

func writeServerError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	applog.Error(r.Context(), msg, "error", err)
	writeDetail(w, http.StatusInternalServerError, detailServerError)
}
