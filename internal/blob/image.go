package blob

import (
	"bytes"
	"image"
	"net/http"

	// Register decoders for upload validation.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"linkup/internal/models"
)

var allowedImageMIMEs = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// SniffImage validates that content is a decodable image of an allowed type
// and returns the detected content type and pixel dimensions. The bytes are
// never re-encoded; what is stored is what gets served back.
func SniffImage(content []byte) (contentType string, width, height int, err error) {
	if len(content) == 0 {
		return "", 0, 0, models.NewInvalidArgumentError("Empty file upload")
	}

	contentType = http.DetectContentType(content)
	if !allowedImageMIMEs[contentType] {
		return "", 0, 0, models.NewInvalidArgumentError("Unsupported image type")
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(content))
	if err != nil {
		return "", 0, 0, models.NewInvalidArgumentError("Invalid image file")
	}

	return contentType, cfg.Width, cfg.Height, nil
}
