package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"gorm.io/gorm"

	applog "github.com/SlavaKlkv/foodgram/internal/log"
	"github.com/SlavaKlkv/foodgram/models"
)

const (
	detailSelfSubscription     = "Нельзя подписаться на самого себя."
	detailAlreadySubscribed    = "Вы уже подписаны на этого пользователя."
	detailSubscriptionNotFound = "Подписка не найдена."
)

type subscriptionModel struct {
	userProfile
	Recipes      []recipeShort `json:"recipes"`
	RecipesCount int64         `json:"recipes_count"`
}

// projectSubscription renders an author's profile together with their
// recipes. recipes_limit caps the embedded recipes, but only when the
// query value is a non-negative integer string.
func projectSubscription(r *http.Request, author models.User) (subscriptionModel, error) {
	profile, err := projectUserProfile(r, author)
	if err != nil {
		return subscriptionModel{}, err
	}

	query := database.WithContext(r.Context()).
		Where("author_id = ?", author.ID).
		Order("id desc")
	if raw := r.URL.Query().Get("recipes_limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit >= 0 {
			query = query.Limit(limit)
		}
	}

	var recipes []models.Recipe
	if err := query.Find(&recipes).Error; err != nil {
		return subscriptionModel{}, err
	}

	var count int64
	err = database.WithContext(r.Context()).Model(&models.Recipe{}).
		Where("author_id = ?", author.ID).Count(&count).Error
	if err != nil {
		return subscriptionModel{}, err
	}

	shorts := make([]recipeShort, 0, len(recipes))
	for _, recipe := range recipes {
		shorts = append(shorts, projectRecipeShort(recipe))
	}

	return subscriptionModel{
		userProfile:  profile,
		Recipes:      shorts,
		RecipesCount: count,
	}, nil
}

// Subscribe creates a subscription to the addressed author.
// Self-subscription is rejected before any membership-state check.
func Subscribe(w http.ResponseWriter, r *http.Request) {
	actor, _ := currentUser(r)

	author, ok := findUserByParam(w, r)
	if !ok {
		return
	}

	if author.ID == actor.ID {
		writeDetail(w, http.StatusBadRequest, detailSelfSubscription)
		return
	}

	subscription := models.Subscription{UserID: actor.ID, AuthorID: author.ID}
	if err := database.WithContext(r.Context()).Create(&subscription).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			writeDetail(w, http.StatusBadRequest, detailAlreadySubscribed)
			return
		}
		writeServerError(w, r, "failed to create subscription", err)
		return
	}

	applog.Info(r.Context(), "created subscription", "user", actor.ID, "author", author.ID)

	response, err := projectSubscription(r, *author)
	if err != nil {
		writeServerError(w, r, "failed to project subscription", err)
		return
	}
	writeJSON(w, http.StatusCreated, response)
}

// Unsubscribe removes an existing subscription.
func Unsubscribe(w http.ResponseWriter, r *http.Request) {
	actor, _ := currentUser(r)

	author, ok := findUserByParam(w, r)
	if !ok {
		return
	}

	result := database.WithContext(r.Context()).
		Where("user_id = ? AND author_id = ?", actor.ID, author.ID).
		Delete(&models.Subscription{})
	if result.Error != nil {
		writeServerError(w, r, "failed to delete subscription", result.Error)
		return
	}
	if result.RowsAffected == 0 {
		writeDetail(w, http.StatusBadRequest, detailSubscriptionNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListSubscriptions returns the actor's followed authors, each with
// their recipes, paginated.
func ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	actor, _ := currentUser(r)
	params := parsePageParams(r)

	var count int64
	err := database.WithContext(r.Context()).Model(&models.Subscription{}).
		Where("user_id = ?", actor.ID).Count(&count).Error
	if err != nil {
		writeServerError(w, r, "failed to count subscriptions", err)
		return
	}

	var subscriptions []models.Subscription
	err = database.WithContext(r.Context()).
		Where("user_id = ?", actor.ID).
		Order("id asc").
		Offset(params.offset()).
		Limit(params.limit).
		Find(&subscriptions).Error
	if err != nil {
		writeServerError(w, r, "failed to list subscriptions", err)
		return
	}

	results := make([]subscriptionModel, 0, len(subscriptions))
	for _, subscription := range subscriptions {
		var author models.User
		if err := database.WithContext(r.Context()).First(&author, subscription.AuthorID).Error; err != nil {
			writeServerError(w, r, "failed to load subscribed author", err)
			return
		}
		model, err := projectSubscription(r, author)
		if err != nil {
			writeServerError(w, r, "failed to project subscription", err)
			return
		}
		results = append(results, model)
	}

	writeJSON(w, http.StatusOK, paginate(r, params, count, results))
}
