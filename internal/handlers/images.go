package handlers

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

const (
	messageImageBlank   = "Поле для картинки не может быть пустым."
	messageImageInvalid = "Неверный формат изображения."
)

var (
	errImageBlank   = errors.New("image is blank")
	errImageInvalid = errors.New("image is not a valid base64 data URI")

	dataURIPattern = regexp.MustCompile(`^data:image/([A-Za-z0-9]+);base64,([A-Za-z0-9+/]+={0,2})$`)
)

// decodeImageDataURI validates and decodes a data:image/<type>;base64
// value. The payload must both match the data-URI grammar and decode as
// an actual image.
func decodeImageDataURI(value string) (ext string, data []byte, err error) {
	if value == "" {
		return "", nil, errImageBlank
	}

	match := dataURIPattern.FindStringSubmatch(value)
	if match == nil {
		return "", nil, errImageInvalid
	}

	data, err = base64.StdEncoding.DecodeString(match[2])
	if err != nil {
		return "", nil, errImageInvalid
	}

	if _, _, err := image.Decode(bytes.NewReader(data)); err != nil {
		return "", nil, errImageInvalid
	}

	ext = strings.ToLower(match[1])
	if ext == "jpeg" {
		ext = "jpg"
	}
	return ext, data, nil
}

// saveImage writes decoded image bytes under MediaRoot/<subdir>/ with a
// generated name and returns the media-relative path.
func saveImage(subdir string, data []byte, ext string) (string, error) {
	dir := filepath.Join(options.MediaRoot, filepath.FromSlash(subdir))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	name := uuid.NewString() + "." + ext
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", err
	}

	return path.Join(subdir, name), nil
}

// removeImage deletes a stored image file. A missing file is not an
// error: the row is already gone or was never written.
func removeImage(relPath string) {
	if relPath == "" {
		return
	}
	_ = os.Remove(filepath.Join(options.MediaRoot, filepath.FromSlash(relPath)))
}

// imageURL renders a media-relative path as an absolute URL, or nil when
// no image is stored.
func imageURL(relPath string) *string {
	if relPath == "" {
		return nil
	}
	url := options.SiteURL + "/media/" + relPath
	return &url
}
