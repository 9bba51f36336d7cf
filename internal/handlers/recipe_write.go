package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/SlavaKlkv/foodgram/models"
)

const (
	messageBlank          = "Это поле не может быть пустым."
	messageNotInteger     = "Требуется целочисленное значение."
	messageMinOne         = "Убедитесь, что это значение больше либо равно 1."
	messageNeedIngredient = "Должен быть хотя бы один ингредиент."
	messageNeedTag        = "Должен быть хотя бы один тег."
	messageUniqueIngreds  = "Ингредиенты должны быть уникальны."
	messageUniqueTags     = "Теги должны быть уникальны."
)

func messageBadPrimaryKey(id uint) string {
	return fmt.Sprintf("Недопустимый первичный ключ \"%d\" - объект не существует.", id)
}

// flexInt records whether a JSON value was present and whether it parsed
// as an integer, without failing the surrounding decode. Numeric strings
// are accepted the way DRF's IntegerField accepts them.
type flexInt struct {
	value   int
	invalid bool
}

func (f *flexInt) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	raw = strings.Trim(raw, `"`)
	value, err := strconv.Atoi(raw)
	if err != nil {
		f.invalid = true
		return nil
	}
	f.value = value
	return nil
}

type recipeIngredientPayload struct {
	ID     *uint    `json:"id"`
	Amount *flexInt `json:"amount"`
}

// recipeWritePayload uses pointer fields so absent and present-but-empty
// can be told apart. PATCH still requires everything except image.
type recipeWritePayload struct {
	Ingredients *[]recipeIngredientPayload `json:"ingredients"`
	Tags        *[]uint                    `json:"tags"`
	Image       *string                    `json:"image"`
	Name        *string                    `json:"name"`
	Text        *string                    `json:"text"`
	CookingTime *flexInt                   `json:"cooking_time"`
}

// recipeWriteData is a fully validated write, ready to persist.
type recipeWriteData struct {
	Name        string
	Text        string
	CookingTime int
	TagIDs      []uint
	Ingredients []models.RecipeIngredient
	HasImage    bool
	ImageExt    string
	ImageData   []byte
}

// validateRecipeWrite checks the payload and returns either the
// normalized write or a field-keyed error map listing every problem, not
// just the first one found. No persistence happens here.
func validateRecipeWrite(r *http.Request, payload recipeWritePayload, updating bool) (recipeWriteData, map[string]any) {
	data := recipeWriteData{}
	fieldErrors := map[string]any{}

	if payload.Ingredients == nil {
		fieldErrors["ingredients"] = []string{messageRequired}
	}
	if payload.Tags == nil {
		fieldErrors["tags"] = []string{messageRequired}
	}
	if payload.Name == nil {
		fieldErrors["name"] = []string{messageRequired}
	}
	if payload.Text == nil {
		fieldErrors["text"] = []string{messageRequired}
	}
	if payload.CookingTime == nil {
		fieldErrors["cooking_time"] = []string{messageRequired}
	}
	// Image is the only field PATCH may omit; the stored image is kept.
	if payload.Image == nil && !updating {
		fieldErrors["image"] = []string{messageRequired}
	}
	if len(fieldErrors) > 0 {
		return data, fieldErrors
	}

	if message, ok := validateIngredients(r, *payload.Ingredients, &data); !ok {
		fieldErrors["ingredients"] = message
	}
	if message, ok := validateTags(r, *payload.Tags, &data); !ok {
		fieldErrors["tags"] = message
	}

	if name := strings.TrimSpace(*payload.Name); name == "" {
		fieldErrors["name"] = []string{messageBlank}
	} else {
		data.Name = name
	}
	if text := strings.TrimSpace(*payload.Text); text == "" {
		fieldErrors["text"] = []string{messageBlank}
	} else {
		data.Text = *payload.Text
	}

	switch {
	case payload.CookingTime.invalid:
		fieldErrors["cooking_time"] = []string{messageNotInteger}
	case payload.CookingTime.value < 1:
		fieldErrors["cooking_time"] = []string{messageMinOne}
	default:
		data.CookingTime = payload.CookingTime.value
	}

	if payload.Image != nil {
		ext, decoded, err := decodeImageDataURI(*payload.Image)
		switch {
		case errors.Is(err, errImageBlank):
			fieldErrors["image"] = []string{messageImageBlank}
		case err != nil:
			fieldErrors["image"] = []string{messageImageInvalid}
		default:
			data.HasImage = true
			data.ImageExt = ext
			data.ImageData = decoded
		}
	}

	if len(fieldErrors) > 0 {
		return data, fieldErrors
	}
	return data, nil
}

func validateIngredients(r *http.Request, entries []recipeIngredientPayload, data *recipeWriteData) (any, bool) {
	if len(entries) == 0 {
		return []string{messageNeedIngredient}, false
	}

	entryErrors := make([]map[string][]string, 0)
	for _, entry := range entries {
		entryError := map[string][]string{}
		if entry.ID == nil {
			entryError["id"] = []string{messageRequired}
		}
		switch {
		case entry.Amount == nil:
			entryError["amount"] = []string{messageRequired}
		case entry.Amount.invalid:
			entryError["amount"] = []string{messageNotInteger}
		case entry.Amount.value < 1:
			entryError["amount"] = []string{messageMinOne}
		}
		if len(entryError) > 0 {
			entryErrors = append(entryErrors, entryError)
		}
	}
	if len(entryErrors) > 0 {
		return entryErrors, false
	}

	seen := make(map[uint]bool, len(entries))
	for _, entry := range entries {
		if seen[*entry.ID] {
			return []string{messageUniqueIngreds}, false
		}
		seen[*entry.ID] = true
	}

	rows := make([]models.RecipeIngredient, 0, len(entries))
	for _, entry := range entries {
		var ingredient models.Ingredient
		if err := database.WithContext(r.Context()).First(&ingredient, *entry.ID).Error; err != nil {
			return []string{messageBadPrimaryKey(*entry.ID)}, false
		}
		rows = append(rows, models.RecipeIngredient{
			IngredientID: ingredient.ID,
			Amount:       entry.Amount.value,
		})
	}

	data.Ingredients = rows
	return nil, true
}

func validateTags(r *http.Request, tagIDs []uint, data *recipeWriteData) (any, bool) {
	if len(tagIDs) == 0 {
		return []string{messageNeedTag}, false
	}

	seen := make(map[uint]bool, len(tagIDs))
	for _, id := range tagIDs {
		if seen[id] {
			return []string{messageUniqueTags}, false
		}
		seen[id] = true
	}

	for _, id := range tagIDs {
		var count int64
		if err := database.WithContext(r.Context()).Model(&models.Tag{}).
			Where("id = ?", id).Count(&count).Error; err != nil || count == 0 {
			return []string{messageBadPrimaryKey(id)}, false
		}
	}

	data.TagIDs = tagIDs
	return nil, true
}

// applyRecipeWrite persists a validated write. Scalars, the tag set and
// the ingredient rows change together inside one transaction, so a
// partially applied recipe is never observable. When an image was
// supplied, its file is written before the transaction and rolled back
// (removed) if the transaction fails.
func applyRecipeWrite(r *http.Request, data recipeWriteData, existing *models.Recipe, authorID uint) (*models.Recipe, error) {
	var imagePath string
	if data.HasImage {
		saved, err := saveImage("recipes/images", data.ImageData, data.ImageExt)
		if err != nil {
			return nil, fmt.Errorf("store recipe image: %w", err)
		}
		imagePath = saved
	}

	var (
		recipe        models.Recipe
		replacedImage string
	)

	err := database.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		if existing == nil {
			recipe = models.Recipe{
				Name:        data.Name,
				Image:       imagePath,
				Text:        data.Text,
				CookingTime: data.CookingTime,
				AuthorID:    authorID,
			}
			if err := tx.Create(&recipe).Error; err != nil {
				return err
			}
		} else {
			recipe = *existing
			recipe.Name = data.Name
			recipe.Text = data.Text
			recipe.CookingTime = data.CookingTime
			if data.HasImage {
				replacedImage = recipe.Image
				recipe.Image = imagePath
			}
			if err := tx.Model(&models.Recipe{}).Where("id = ?", recipe.ID).
				Updates(map[string]any{
					"name":         recipe.Name,
					"text":         recipe.Text,
					"cooking_time": recipe.CookingTime,
					"image":        recipe.Image,
				}).Error; err != nil {
				return err
			}
			// Full replacement: the association sets are cleared and
			// recreated, which re-triggers the unique-per-recipe index.
			if err := tx.Where("recipe_id = ?", recipe.ID).
				Delete(&models.RecipeIngredient{}).Error; err != nil {
				return err
			}
		}

		var tags []models.Tag
		if err := tx.Find(&tags, data.TagIDs).Error; err != nil {
			return err
		}
		if err := tx.Model(&recipe).Association("Tags").Replace(&tags); err != nil {
			return err
		}

		for _, row := range data.Ingredients {
			rowCopy := row
			rowCopy.RecipeID = recipe.ID
			if err := tx.Create(&rowCopy).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		removeImage(imagePath)
		return nil, err
	}

	removeImage(replacedImage)
	return &recipe, nil
}
