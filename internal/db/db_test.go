package db

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/SlavaKlkv/foodgram/internal/config"
	"github.com/SlavaKlkv/foodgram/models"
)

func TestInitializeRejectsEmptyURL(t *testing.T) {
	if _, err := Initialize(config.DatabaseConfig{URL: "   "}); err == nil {
		t.Fatalf("expected an error for an empty database URL")
	}
}

func TestAutoMigrateRejectsNilHandle(t *testing.T) {
	if err := AutoMigrate(nil); err == nil {
		t.Fatalf("expected an error for a nil database handle")
	}
}

func TestAutoMigrateCreatesSchema(t *testing.T) {
	database, err := gorm.Open(sqlite.Open("file:db-test?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := database.DB(); err == nil {
			sqlDB.Close()
		}
	})

	if err := AutoMigrate(database); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}

	tables := []any{
		&models.User{},
		&models.Subscription{},
		&models.Tag{},
		&models.Ingredient{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.Favorite{},
		&models.ShoppingCartItem{},
		&models.AuthToken{},
	}
	for _, table := range tables {
		if !database.Migrator().HasTable(table) {
			t.Fatalf("expected table for %T to exist", table)
		}
	}
}
