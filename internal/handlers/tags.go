package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/SlavaKlkv/foodgram/models"
)

// ListTags returns every tag as an unpaginated array.
func ListTags(w http.ResponseWriter, r *http.Request) {
	var tags []models.Tag
	if err := database.WithContext(r.Context()).Order("id asc").Find(&tags).Error; err != nil {
		writeServerError(w, r, "failed to list tags", err)
		return
	}

	results := make([]tagModel, 0, len(tags))
	for _, tag := range tags {
		results = append(results, tagModel{ID: tag.ID, Name: tag.Name, Slug: tag.Slug})
	}
	writeJSON(w, http.StatusOK, results)
}

// RetrieveTag returns one tag by id.
func RetrieveTag(w http.ResponseWriter, r *http.Request) {
	idValue, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeDetail(w, http.StatusNotFound, detailTagNotFound)
		return
	}

	var tag models.Tag
	if err := database.WithContext(r.Context()).First(&tag, uint(idValue)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeDetail(w, http.StatusNotFound, detailTagNotFound)
			return
		}
		writeServerError(w, r, "failed to load tag", err)
		return
	}

	writeJSON(w, http.StatusOK, tagModel{ID: tag.ID, Name: tag.Name, Slug: tag.Slug})
}
