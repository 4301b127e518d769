package testserver

import (
	"errors"
	"time"

	"parley/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func (s *Server) commentIDs(c *fiber.Ctx) (postID, commentID uint, err error) {
	pid, perr := c.ParamsInt("postId")
	cid, cerr := c.ParamsInt("commentId")
	if perr != nil || pid <= 0 {
		return 0, 0, models.NewValidationError("Invalid post ID")
	}
	if cerr != nil || cid <= 0 {
		return 0, 0, models.NewValidationError("Invalid comment ID")
	}
	return uint(pid), uint(cid), nil
}

func (s *Server) listComments(c *fiber.Ctx) error {
	postID, err := c.ParamsInt("postId")
	if err != nil || postID <= 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid post ID"))
	}

	comments := []models.Comment{}
	dbErr := s.db.
		Where("post_id = ? AND parent_id IS NULL", postID).
		Order("created_at desc, id desc").
		Find(&comments).Error
	if dbErr != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(dbErr))
	}
	return c.JSON(comments)
}

func (s *Server) getComment(c *fiber.Ctx) error {
	_, commentID, err := s.commentIDs(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	var comment models.Comment
	if dbErr := s.db.First(&comment, commentID).Error; dbErr != nil {
		if errors.Is(dbErr, gorm.ErrRecordNotFound) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("Comment not found"))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(dbErr))
	}
	return c.JSON(comment)
}

func (s *Server) listReplies(c *fiber.Ctx) error {
	_, commentID, err := s.commentIDs(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	replies := []models.Comment{}
	dbErr := s.db.
		Where("parent_id = ?", commentID).
		Order("created_at desc, id desc").
		Find(&replies).Error
	if dbErr != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(dbErr))
	}
	return c.JSON(replies)
}

func (s *Server) createComment(c *fiber.Ctx) error {
	postID, err := c.ParamsInt("postId")
	if err != nil || postID <= 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid post ID"))
	}

	var comment models.Comment
	if err := c.BodyParser(&comment); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if comment.Content == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Comment content is required"))
	}

	user := currentUser(c)
	comment.ID = 0
	comment.PostID = uint(postID)
	comment.ParentID = nil
	comment.Author = user.ID
	comment.Username = user.Username
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now().UTC()
	}

	if err := s.db.Create(&comment).Error; err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

func (s *Server) createReply(c *fiber.Ctx) error {
	postID, parentID, err := s.commentIDs(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	var parent models.Comment
	if dbErr := s.db.First(&parent, parentID).Error; dbErr != nil {
		if errors.Is(dbErr, gorm.ErrRecordNotFound) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("Parent comment not found"))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(dbErr))
	}
	// A reply's parent must live on the same post; cross-post parenting is
	// invalid.
	if parent.PostID != postID {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Parent comment belongs to a different post"))
	}

	var reply models.Comment
	if err := c.BodyParser(&reply); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if reply.Content == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Subcomment content is required"))
	}

	user := currentUser(c)
	reply.ID = 0
	reply.PostID = postID
	reply.ParentID = &parentID
	reply.Author = user.ID
	reply.Username = user.Username
	if reply.CreatedAt.IsZero() {
		reply.CreatedAt = time.Now().UTC()
	}

	if err := s.db.Create(&reply).Error; err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	return c.Status(fiber.StatusCreated).JSON(reply)
}

func (s *Server) updateComment(c *fiber.Ctx) error {
	_, commentID, err := s.commentIDs(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	var body models.Comment
	if err := c.BodyParser(&body); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if body.Content == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Comment content is required"))
	}

	var comment models.Comment
	if dbErr := s.db.First(&comment, commentID).Error; dbErr != nil {
		if errors.Is(dbErr, gorm.ErrRecordNotFound) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("Comment not found"))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(dbErr))
	}
	if !canModify(currentUser(c), comment.Author) {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("You can only modify your own content"))
	}

	// Edits replace content only; identity fields and created_at stay put.
	if err := s.db.Model(&comment).Update("content", body.Content).Error; err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	return c.JSON(fiber.Map{"success": true})
}

func (s *Server) deleteComment(c *fiber.Ctx) error {
	_, commentID, err := s.commentIDs(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	var comment models.Comment
	if dbErr := s.db.First(&comment, commentID).Error; dbErr != nil {
		if errors.Is(dbErr, gorm.ErrRecordNotFound) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("Comment not found"))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(dbErr))
	}
	if !canModify(currentUser(c), comment.Author) {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("You can only modify your own content"))
	}

	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		if err := deleteSubtree(tx, comment.ID); err != nil {
			return err
		}
		return tx.Delete(&comment).Error
	})
	if txErr != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(txErr))
	}
	return c.JSON(fiber.Map{"success": true})
}

// deleteSubtree removes a comment's replies recursively; deleting a comment
// cascades to its whole reply subtree.
func deleteSubtree(tx *gorm.DB, parentID uint) error {
	var children []models.Comment
	if err := tx.Where("parent_id = ?", parentID).Find(&children).Error; err != nil {
		return err
	}
	for _, child := range children {
		if err := deleteSubtree(tx, child.ID); err != nil {
			return err
		}
		if err := tx.Delete(&models.Comment{}, child.ID).Error; err != nil {
			return err
		}
	}
	return nil
}
