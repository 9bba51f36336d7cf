package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/SlavaKlkv/foodgram/models"
)

func TestSubscribe(t *testing.T) {
	db, cleanup := withTestDatabase(t)
	t.Cleanup(cleanup)

	author := createTestUser(t, db, "author@example.com", "author")
	follower := createTestUser(t, db, "follower@example.com", "follower")
	for i := 1; i <= 3; i++ {
		createTestRecipe(t, db, author, fmt.Sprintf("Рецепт %d", i))
	}

	authorParam := strconv.Itoa(int(author.ID))
	req := withURLParam(asUser(httptest.NewRequest(http.MethodPost,
		"/api/users/"+authorParam+"/subscribe/?recipes_limit=2", nil), &follower), "id", authorParam)
	w := httptest.NewRecorder()
	Subscribe(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	var response subscriptionModel
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.ID != author.ID || !response.IsSubscribed {
		t.Fatalf("expected the author's profile with is_subscribed=true, got %+v", response)
	}
	if response.RecipesCount != 3 {
		t.Fatalf("expected recipes_count=3, got %d", response.RecipesCount)
	}
	if len(response.Recipes) != 2 {
		t.Fatalf("expected recipes_limit to cap embedded recipes at 2, got %d", len(response.Recipes))
	}
	if response.Recipes[0].Name != "Рецепт 3" {
		t.Fatalf("expected newest recipe first, got %q", response.Recipes[0].Name)
	}

	// Subscribing twice is the domain 400.
	req = withURLParam(asUser(httptest.NewRequest(http.MethodPost,
		"/api/users/"+authorParam+"/subscribe/", nil), &follower), "id", authorParam)
	w = httptest.NewRecorder()
	Subscribe(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 on duplicate, got %d", w.Code)
	}
	var detail map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &detail); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if detail["detail"] != detailAlreadySubscribed {
		t.Fatalf("unexpected detail: %q", detail["detail"])
	}
}

func TestSubscribeRejectsSelfAndMissingAuthor(t *testing.T) {
	db, cleanup := withTestDatabase(t)
	t.Cleanup(cleanup)

	user := createTestUser(t, db, "user@example.com", "user")

	// Self-subscription: 400 with the dedicated message.
	idParam := strconv.Itoa(int(user.ID))
	req := withURLParam(asUser(httptest.NewRequest(http.MethodPost,
		"/api/users/"+idParam+"/subscribe/", nil), &user), "id", idParam)
	w := httptest.NewRecorder()
	Subscribe(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", w.Code, w.Body.String())
	}
	var detail map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &detail); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if detail["detail"] != detailSelfSubscription {
		t.Fatalf("unexpected detail: %q", detail["detail"])
	}

	// Missing author: the 404 wins over any state check.
	req = withURLParam(asUser(httptest.NewRequest(http.MethodPost,
		"/api/users/999/subscribe/", nil), &user), "id", "999")
	w = httptest.NewRecorder()
	Subscribe(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 for missing author, got %d", w.Code)
	}
}

func TestUnsubscribe(t *testing.T) {
	db, cleanup := withTestDatabase(t)
	t.Cleanup(cleanup)

	author := createTestUser(t, db, "author@example.com", "author")
	follower := createTestUser(t, db, "follower@example.com", "follower")

	authorParam := strconv.Itoa(int(author.ID))

	// Not subscribed yet: the domain 400.
	req := withURLParam(asUser(httptest.NewRequest(http.MethodDelete,
		"/api/users/"+authorParam+"/subscribe/", nil), &follower), "id", authorParam)
	w := httptest.NewRecorder()
	Unsubscribe(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", w.Code, w.Body.String())
	}
	var detail map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &detail); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if detail["detail"] != detailSubscriptionNotFound {
		t.Fatalf("unexpected detail: %q", detail["detail"])
	}

	if err := db.Create(&models.Subscription{UserID: follower.ID, AuthorID: author.ID}).Error; err != nil {
		t.Fatalf("failed to create subscription: %v", err)
	}

	req = withURLParam(asUser(httptest.NewRequest(http.MethodDelete,
		"/api/users/"+authorParam+"/subscribe/", nil), &follower), "id", authorParam)
	w = httptest.NewRecorder()
	Unsubscribe(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d: %s", w.Code, w.Body.String())
	}

	var count int64
	if err := db.Model(&models.Subscription{}).Count(&count).Error; err != nil {
		t.Fatalf("failed to count subscriptions: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected the subscription row deleted, got %d", count)
	}
}

func TestListSubscriptions(t *testing.T) {
	db, cleanup := withTestDatabase(t)
	t.Cleanup(cleanup)

	follower := createTestUser(t, db, "follower@example.com", "follower")
	first := createTestUser(t, db, "first@example.com", "first")
	second := createTestUser(t, db, "second@example.com", "second")
	createTestRecipe(t, db, first, "Блины")

	for _, author := range []models.User{first, second} {
		if err := db.Create(&models.Subscription{UserID: follower.ID, AuthorID: author.ID}).Error; err != nil {
			t.Fatalf("failed to create subscription: %v", err)
		}
	}

	req := asUser(httptest.NewRequest(http.MethodGet, "/api/users/subscriptions/", nil), &follower)
	w := httptest.NewRecorder()
	ListSubscriptions(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var page struct {
		Count   int64               `json:"count"`
		Results []subscriptionModel `json:"results"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil {
		t.Fatalf("failed to decode page: %v", err)
	}
	if page.Count != 2 || len(page.Results) != 2 {
		t.Fatalf("expected both subscriptions, got count=%d len=%d", page.Count, len(page.Results))
	}
	if page.Results[0].Username != "first" || page.Results[1].Username != "second" {
		t.Fatalf("expected subscription order, got %+v", page.Results)
	}
	if !page.Results[0].IsSubscribed || !page.Results[1].IsSubscribed {
		t.Fatalf("every listed author must have is_subscribed=true")
	}
	if page.Results[0].RecipesCount != 1 || len(page.Results[0].Recipes) != 1 {
		t.Fatalf("expected first author's recipe embedded, got %+v", page.Results[0])
	}
	if page.Results[1].RecipesCount != 0 || len(page.Results[1].Recipes) != 0 {
		t.Fatalf("expected no recipes for second author, got %+v", page.Results[1])
	}
}
