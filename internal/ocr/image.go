package ocr

import (
	"errors"
	"fmt"
	"net/http"
)

// MaxImageBytes is the largest image accepted for text detection.
const MaxImageBytes = 5 * 1024 * 1024

var (
	ErrImageTooLarge    = errors.New("image too large (max 5MB)")
	ErrUnsupportedImage = errors.New("unsupported image format")
	ErrEmptyImage       = errors.New("empty image")
)

var supportedTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/webp": true,
}

// ValidateImage checks the size limit and returns the sniffed MIME type.
func ValidateImage(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyImage
	}
	if len(data) > MaxImageBytes {
		return "", ErrImageTooLarge
	}
	mediaType := http.DetectContentType(data)
	if !supportedTypes[mediaType] {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedImage, mediaType)
	}
	return mediaType, nil
}
