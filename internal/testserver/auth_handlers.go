package testserver

import (
	"errors"

	"parley/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func (s *Server) createAccount(c *fiber.Ctx) error {
	var creds models.Credentials
	if err := c.BodyParser(&creds); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if creds.Username == "" || creds.Password == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Username and password are required"))
	}

	var count int64
	s.db.Model(&models.User{}).Where("username = ?", creds.Username).Count(&count)
	if count > 0 {
		return models.RespondWithError(c, fiber.StatusConflict,
			models.NewConflictError("This username is already taken. Please choose another one"))
	}

	// MinCost keeps account-heavy test runs fast; this server never holds
	// real credentials.
	hashed, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.MinCost)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	user := models.User{Username: creds.Username, Password: string(hashed)}
	if err := s.db.Create(&user).Error; err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Account created successfully",
	})
}

func (s *Server) login(c *fiber.Ctx) error {
	var creds models.Credentials
	if err := c.BodyParser(&creds); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	var user models.User
	if err := s.db.Where("username = ?", creds.Username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("User not found"))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(creds.Password)); err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewAuthRequiredError("Incorrect username / password"))
	}

	token, err := s.generateToken(user)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	setSessionCookie(c, token)

	return c.JSON(fiber.Map{"message": "Login successful"})
}

func (s *Server) logout(c *fiber.Ctx) error {
	clearSessionCookie(c)
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

func (s *Server) protected(c *fiber.Ctx) error {
	user := currentUser(c)
	user.Password = ""
	return c.JSON(user)
}

func (s *Server) getUsername(c *fiber.Ctx) error {
	id, err := c.ParamsInt("userId")
	if err != nil || id <= 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid user ID"))
	}

	var user models.User
	if dbErr := s.db.First(&user, id).Error; dbErr != nil {
		if errors.Is(dbErr, gorm.ErrRecordNotFound) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("User not found"))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(dbErr))
	}

	return c.JSON(fiber.Map{"username": user.Username})
}
