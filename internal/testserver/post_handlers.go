package testserver

import (
	"errors"
	"time"

	"parley/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func (s *Server) listPosts(c *fiber.Ctx) error {
	posts := []models.Post{}
	if err := s.db.Order("created_at desc, id desc").Find(&posts).Error; err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	return c.JSON(posts)
}

func (s *Server) getPost(c *fiber.Ctx) error {
	id, err := c.ParamsInt("postId")
	if err != nil || id <= 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid post ID"))
	}

	var post models.Post
	if dbErr := s.db.First(&post, id).Error; dbErr != nil {
		if errors.Is(dbErr, gorm.ErrRecordNotFound) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("Post not found"))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(dbErr))
	}
	return c.JSON(post)
}

func (s *Server) createPost(c *fiber.Ctx) error {
	var post models.Post
	if err := c.BodyParser(&post); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if post.Title == "" || post.Content == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Post title and content are required"))
	}

	user := currentUser(c)
	post.ID = 0
	post.Author = user.ID
	post.Username = user.Username
	// The client pre-stamps created_at; it is accepted as-is.
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}

	if err := s.db.Create(&post).Error; err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

func (s *Server) updatePost(c *fiber.Ctx) error {
	id, err := c.ParamsInt("postId")
	if err != nil || id <= 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid post ID"))
	}

	var body models.Post
	if err := c.BodyParser(&body); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if body.Title == "" || body.Content == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Post title, topic and content are required"))
	}

	var post models.Post
	if dbErr := s.db.First(&post, id).Error; dbErr != nil {
		if errors.Is(dbErr, gorm.ErrRecordNotFound) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("Post not found"))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(dbErr))
	}
	if !canModify(currentUser(c), post.Author) {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("You can only modify your own content"))
	}

	updates := map[string]any{
		"title":   body.Title,
		"topic":   body.Topic,
		"content": body.Content,
	}
	if err := s.db.Model(&post).Updates(updates).Error; err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	return c.JSON(fiber.Map{"success": true})
}

func (s *Server) deletePost(c *fiber.Ctx) error {
	id, err := c.ParamsInt("postId")
	if err != nil || id <= 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid post ID"))
	}

	var post models.Post
	if dbErr := s.db.First(&post, id).Error; dbErr != nil {
		if errors.Is(dbErr, gorm.ErrRecordNotFound) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("Post not found"))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(dbErr))
	}
	if !canModify(currentUser(c), post.Author) {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("You can only modify your own content"))
	}

	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&post).Error
	})
	if txErr != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(txErr))
	}
	return c.JSON(fiber.Map{"success": true})
}
