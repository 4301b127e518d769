package testserver

import (
	"errors"

	"parley/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func (s *Server) listTopics(c *fiber.Ctx) error {
	topics := []models.Topic{}
	if err := s.db.Order("topic_name asc").Find(&topics).Error; err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	return c.JSON(topics)
}

func (s *Server) createTopic(c *fiber.Ctx) error {
	if currentUser(c).IsAdmin != 1 {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("Only admins can manage topics"))
	}

	var topic models.Topic
	if err := c.BodyParser(&topic); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if topic.TopicName == "" || topic.TopicName == models.ReservedTopic {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid topic"))
	}

	var count int64
	s.db.Model(&models.Topic{}).Where("topic_name = ?", topic.TopicName).Count(&count)
	if count > 0 {
		return models.RespondWithError(c, fiber.StatusConflict,
			models.NewConflictError("Topic already exists"))
	}

	if err := s.db.Create(&topic).Error; err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	return c.Status(fiber.StatusCreated).JSON(topic)
}

func (s *Server) deleteTopic(c *fiber.Ctx) error {
	if currentUser(c).IsAdmin != 1 {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("Only admins can manage topics"))
	}

	name := c.Params("topicName")
	var topic models.Topic
	if dbErr := s.db.Where("topic_name = ?", name).First(&topic).Error; dbErr != nil {
		if errors.Is(dbErr, gorm.ErrRecordNotFound) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("Topic not found"))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(dbErr))
	}

	// Deleting a topic takes its posts and their comments with it.
	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		var postIDs []uint
		if err := tx.Model(&models.Post{}).Where("topic = ?", name).Pluck("id", &postIDs).Error; err != nil {
			return err
		}
		if len(postIDs) > 0 {
			if err := tx.Where("post_id IN ?", postIDs).Delete(&models.Comment{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", postIDs).Delete(&models.Post{}).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&topic).Error
	})
	if txErr != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(txErr))
	}
	return c.JSON(fiber.Map{"success": true})
}
