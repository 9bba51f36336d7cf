package mock

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	applog "github.com/SlavaKlkv/foodgram/internal/log"
	"github.com/SlavaKlkv/foodgram/models"
)

// New returns an in-memory sqlite database seeded with representative
// reference data and a pair of demo accounts, for local development
// without postgres.
func New(ctx context.Context) (*gorm.DB, error) {
	applog.Debug(ctx, "initialising mock database")

	database, err := gorm.Open(sqlite.Open("file:foodgram-mock?mode=memory&cache=shared"), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		PrepareStmt:                              true,
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, err
	}

	if err := database.AutoMigrate(
		&models.User{},
		&models.Subscription{},
		&models.Tag{},
		&models.Ingredient{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.Favorite{},
		&models.ShoppingCartItem{},
		&models.AuthToken{},
	); err != nil {
		return nil, err
	}

	if err := seed(ctx, database); err != nil {
		return nil, err
	}

	applog.Debug(ctx, "mock database ready")
	return database, nil
}

func seed(ctx context.Context, database *gorm.DB) error {
	applog.Debug(ctx, "seeding mock database")

	password, err := bcrypt.GenerateFromPassword([]byte("foodgram"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	chef := &models.User{
		Email:        "chef@foodgram.local",
		Username:     "chef",
		FirstName:    "Вера",
		LastName:     "Иванова",
		PasswordHash: string(password),
	}
	guest := &models.User{
		Email:        "guest@foodgram.local",
		Username:     "guest",
		FirstName:    "Пётр",
		LastName:     "Смирнов",
		PasswordHash: string(password),
	}
	for _, user := range []*models.User{chef, guest} {
		if err := database.WithContext(ctx).Create(user).Error; err != nil {
			return err
		}
	}

	breakfast := models.Tag{Name: "Завтрак", Slug: "breakfast"}
	dinner := models.Tag{Name: "Ужин", Slug: "dinner"}
	for _, tag := range []*models.Tag{&breakfast, &dinner} {
		if err := database.WithContext(ctx).Create(tag).Error; err != nil {
			return err
		}
	}

	milk := models.Ingredient{Name: "Молоко", MeasurementUnit: "мл"}
	flour := models.Ingredient{Name: "Мука", MeasurementUnit: "г"}
	salt := models.Ingredient{Name: "Соль", MeasurementUnit: "г"}
	for _, ingredient := range []*models.Ingredient{&milk, &flour, &salt} {
		if err := database.WithContext(ctx).Create(ingredient).Error; err != nil {
			return err
		}
	}

	pancakes := models.Recipe{
		Name:        "Блины",
		Image:       "recipes/images/mock-pancakes.png",
		Text:        "Смешать, жарить на раскалённой сковороде.",
		CookingTime: 20,
		AuthorID:    chef.ID,
		Tags:        []models.Tag{breakfast},
	}
	if err := database.WithContext(ctx).Create(&pancakes).Error; err != nil {
		return err
	}

	rows := []models.RecipeIngredient{
		{RecipeID: pancakes.ID, IngredientID: milk.ID, Amount: 500},
		{RecipeID: pancakes.ID, IngredientID: flour.ID, Amount: 300},
		{RecipeID: pancakes.ID, IngredientID: salt.ID, Amount: 5},
	}
	for _, row := range rows {
		rowCopy := row
		if err := database.WithContext(ctx).Create(&rowCopy).Error; err != nil {
			return err
		}
	}

	applog.Debug(ctx, "mock database seeded")
	return nil
}
