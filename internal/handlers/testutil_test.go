package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/SlavaKlkv/foodgram/models"
)

const testPassword = "correct-horse-battery"

// A valid 1x1 PNG, used wherever a test needs an image that actually
// decodes.
const testPNGBase64 = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mP8z8BQDwAEhQGAhKmMIQAAAABJRU5ErkJggg=="

func testImageDataURI() string {
	return "data:image/png;base64," + testPNGBase64
}

// withTestDatabase swaps the package database for an in-memory sqlite
// instance with the full schema, and the package options for a
// test-local media root. The DSN carries the test name so parallel
// packages never share an in-memory database.
func withTestDatabase(t *testing.T) (*gorm.DB, func()) {
	t.Helper()
	originalDB := database
	originalOptions := options

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.NewReplacer("/", "_", " ", "_").Replace(t.Name()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open sqlite database: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.Subscription{},
		&models.Tag{},
		&models.Ingredient{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.Favorite{},
		&models.ShoppingCartItem{},
		&models.AuthToken{},
	)
	if err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}

	database = db
	options = Options{
		SiteURL:       "http://testserver",
		MediaRoot:     t.TempDir(),
		TokenSecret:   []byte("test-secret"),
		TokenLifetime: time.Hour,
	}
	return db, func() {
		database = originalDB
		options = originalOptions
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}
}

func createTestUser(t *testing.T, db *gorm.DB, email, username string) models.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := models.User{
		Email:        email,
		Username:     username,
		FirstName:    "Иван",
		LastName:     "Иванов",
		PasswordHash: string(hashed),
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return user
}

func createTestTag(t *testing.T, db *gorm.DB, name, slug string) models.Tag {
	t.Helper()
	tag := models.Tag{Name: name, Slug: slug}
	if err := db.Create(&tag).Error; err != nil {
		t.Fatalf("failed to create tag %s: %v", slug, err)
	}
	return tag
}

func createTestIngredient(t *testing.T, db *gorm.DB, name, unit string) models.Ingredient {
	t.Helper()
	ingredient := models.Ingredient{Name: name, MeasurementUnit: unit}
	if err := db.Create(&ingredient).Error; err != nil {
		t.Fatalf("failed to create ingredient %s: %v", name, err)
	}
	return ingredient
}

// createTestRecipe seeds a recipe with join rows directly, bypassing the
// write handlers, so read-side tests do not depend on them.
func createTestRecipe(t *testing.T, db *gorm.DB, author models.User, name string, rows ...models.RecipeIngredient) models.Recipe {
	t.Helper()
	recipe := models.Recipe{
		Name:        name,
		Text:        "Описание рецепта " + name,
		CookingTime: 15,
		AuthorID:    author.ID,
	}
	if err := db.Create(&recipe).Error; err != nil {
		t.Fatalf("failed to create recipe %s: %v", name, err)
	}
	for _, row := range rows {
		row.RecipeID = recipe.ID
		if err := db.Create(&row).Error; err != nil {
			t.Fatalf("failed to create recipe ingredient row: %v", err)
		}
	}
	return recipe
}

// asUser marks the request as made by the given user, the way the
// Authenticate middleware would after resolving a live token.
func asUser(req *http.Request, user *models.User) *http.Request {
	return req.WithContext(withRequestContext(req.Context(), RequestContext{Actor: user}))
}

// withURLParam attaches a chi route parameter so handlers that read
// chi.URLParam work outside a router.
func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func jsonBody(t *testing.T, payload any) *bytes.Reader {
	t.Helper()
	encoded, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal request payload: %v", err)
	}
	return bytes.NewReader(encoded)
}
