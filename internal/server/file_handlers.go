// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"strconv"

	"linkup/internal/middleware"
	"linkup/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ServeFile handles GET /api/files/:id, streaming stored blob bytes with
// the content type recorded at upload time. Blob ids are immutable, so the
// response is cacheable forever.
func (s *Server) ServeFile(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewInvalidArgumentError("Invalid file ID"))
	}

	rc, info, err := s.blobStore.Open(c.UserContext(), id)
	if err != nil {
		return respondServiceError(c, err)
	}

	c.Set(fiber.HeaderContentType, info.ContentType)
	c.Set(fiber.HeaderContentLength, strconv.FormatInt(info.Size, 10))
	c.Set(fiber.HeaderCacheControl, "public, max-age=31536000, immutable")

	middleware.BlobBytesServed.Add(float64(info.Size))

	// Fiber closes the stream after the response is written.
	return c.SendStream(rc, int(info.Size))
}
