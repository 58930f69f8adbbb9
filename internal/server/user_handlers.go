// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"linkup/internal/models"
	"linkup/internal/service"
	"linkup/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// GetProfile handles GET /api/users/:id, returning the user and their posts.
func (s *Server) GetProfile(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, posts, err := s.userService.GetProfile(c.UserContext(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"user":  user,
		"posts": posts,
	})
}

// GetUserPosts handles GET /api/users/:id/posts
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	_, posts, err := s.userService.GetProfile(c.UserContext(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(posts)
}

// GetSuggestions handles GET /api/users, returning everyone the caller is
// not yet connected with, ranked by mutual connections.
func (s *Server) GetSuggestions(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	suggestions, err := s.connService.Suggestions(c.UserContext(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(suggestions)
}

// Connect handles POST /api/users/:id/connect
func (s *Server) Connect(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	target, err := s.connService.Connect(c.UserContext(), userID, targetID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"message":   "Connected successfully",
		"connected": true,
		"target": fiber.Map{
			"id":          target.ID,
			"name":        target.Name,
			"connections": len(target.ConnectionIDs),
		},
	})
}

// Disconnect handles DELETE /api/users/:id/connect
func (s *Server) Disconnect(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	target, err := s.connService.Disconnect(c.UserContext(), userID, targetID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"message":   "Disconnected successfully",
		"connected": false,
		"target": fiber.Map{
			"id":          target.ID,
			"name":        target.Name,
			"connections": len(target.ConnectionIDs),
		},
	})
}

// UpdateProfile handles PUT /api/users/:id (multipart: name, bio, avatar)
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	// Empty name means unchanged, so only a supplied value is validated.
	if name := c.FormValue("name"); name != "" {
		if vErr := validation.ValidateDisplayName(name); vErr != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewInvalidArgumentError(vErr.Error()))
		}
	}

	avatar, err := s.readFormFile(c, "avatar")
	if err != nil {
		return respondServiceError(c, err)
	}

	user, err := s.userService.UpdateProfile(c.UserContext(), service.UpdateProfileInput{
		UserID:   userID,
		TargetID: targetID,
		Name:     c.FormValue("name"),
		Bio:      c.FormValue("bio"),
		Avatar:   avatar,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}

// DeleteAccount handles DELETE /api/users/:id
func (s *Server) DeleteAccount(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.userService.DeleteAccount(c.UserContext(), userID, targetID); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Account deleted successfully",
	})
}
