// Package testserver is an in-process reference implementation of the forum
// API contract the client is written against. Integration tests run the real
// client against it over a loopback listener; it is test support, not a
// production backend.
package testserver

import (
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"parley/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// sessionCookie must match the cookie name the client expects.
const sessionCookie = "jwt"

// idempotencyHeader matches the client's duplicate-submission key header.
const idempotencyHeader = "X-Idempotency-Key"

var dbSequence atomic.Int64

// Server wires a fiber app to an isolated in-memory database.
type Server struct {
	db     *gorm.DB
	app    *fiber.App
	secret []byte

	mu     sync.Mutex
	replay map[string]storedResponse
}

type storedResponse struct {
	status      int
	body        []byte
	contentType string
	cookies     []string
}

// New creates a server with a fresh database and all routes registered.
func New() (*Server, error) {
	// Each instance gets its own named in-memory database; plain :memory:
	// would give every pooled connection a separate empty database.
	dsn := fmt.Sprintf("file:testserver%d?mode=memory&cache=shared", dbSequence.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Topic{}, &models.Post{}, &models.Comment{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	s := &Server{
		db:     db,
		app:    fiber.New(fiber.Config{DisableStartupMessage: true}),
		secret: []byte("testserver-secret"),
		replay: make(map[string]storedResponse),
	}
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	api := s.app.Group("/api", s.replayIdempotent)

	api.Post("/create_account", s.createAccount)
	api.Post("/login", s.login)
	api.Get("/logout", s.logout)
	api.Get("/protected", s.requireAuth, s.protected)
	api.Get("/users/:userId", s.getUsername)

	api.Get("/posts", s.listPosts)
	api.Post("/posts", s.requireAuth, s.createPost)
	api.Get("/posts/:postId", s.getPost)
	api.Patch("/posts/:postId", s.requireAuth, s.updatePost)
	api.Delete("/posts/:postId", s.requireAuth, s.deletePost)

	api.Get("/topics", s.listTopics)
	api.Post("/topics", s.requireAuth, s.createTopic)
	api.Delete("/topics/:topicName", s.requireAuth, s.deleteTopic)

	api.Get("/posts/:postId/comments", s.listComments)
	api.Post("/posts/:postId/comments", s.requireAuth, s.createComment)
	api.Get("/posts/:postId/comments/:commentId", s.getComment)
	api.Post("/posts/:postId/comments/:commentId", s.requireAuth, s.createReply)
	api.Get("/posts/:postId/comments/:commentId/subcomments", s.listReplies)
	api.Patch("/posts/:postId/comments/:commentId", s.requireAuth, s.updateComment)
	api.Delete("/posts/:postId/comments/:commentId", s.requireAuth, s.deleteComment)
}

// Start serves on a random loopback port and returns the base URL plus a
// shutdown function.
func (s *Server) Start() (string, func(), error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, err
	}
	go func() {
		_ = s.app.Listener(ln)
	}()
	shutdown := func() { _ = s.app.Shutdown() }
	return "http://" + ln.Addr().String(), shutdown, nil
}

// DB exposes the underlying database for test seeding.
func (s *Server) DB() *gorm.DB { return s.db }

// SeedUser provisions an account directly, bypassing the HTTP surface.
func (s *Server) SeedUser(username, password string, admin bool) (*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}
	isAdmin := 0
	if admin {
		isAdmin = 1
	}
	user := &models.User{Username: username, Password: string(hashed), IsAdmin: isAdmin}
	if err := s.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// replayIdempotent replays the stored response for a mutation whose
// idempotency key was already seen, so a duplicated submission is applied
// once.
func (s *Server) replayIdempotent(c *fiber.Ctx) error {
	if c.Method() == fiber.MethodGet {
		return c.Next()
	}
	key := c.Get(idempotencyHeader)
	if key == "" {
		return c.Next()
	}

	s.mu.Lock()
	stored, seen := s.replay[key]
	s.mu.Unlock()
	if seen {
		for _, cookie := range stored.cookies {
			c.Response().Header.Add(fiber.HeaderSetCookie, cookie)
		}
		c.Set(fiber.HeaderContentType, stored.contentType)
		return c.Status(stored.status).Send(stored.body)
	}

	if err := c.Next(); err != nil {
		return err
	}

	resp := c.Response()
	stored = storedResponse{
		status:      resp.StatusCode(),
		body:        append([]byte(nil), resp.Body()...),
		contentType: string(resp.Header.ContentType()),
	}
	resp.Header.VisitAll(func(k, v []byte) {
		if string(k) == fiber.HeaderSetCookie {
			stored.cookies = append(stored.cookies, string(v))
		}
	})
	s.mu.Lock()
	s.replay[key] = stored
	s.mu.Unlock()
	return nil
}

// requireAuth validates the session cookie and stores the identity in locals.
func (s *Server) requireAuth(c *fiber.Ctx) error {
	tokenString := c.Cookies(sessionCookie)
	if tokenString == "" {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewAuthRequiredError(""))
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewAuthRequiredError("Invalid or expired session"))
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewAuthRequiredError("Invalid session claims"))
	}

	id, _ := claims["sub"].(float64)
	username, _ := claims["username"].(string)
	isAdmin, _ := claims["isAdmin"].(float64)
	c.Locals("user", models.User{
		ID:       uint(id),
		Username: username,
		IsAdmin:  int(isAdmin),
	})
	return c.Next()
}

func currentUser(c *fiber.Ctx) models.User {
	user, _ := c.Locals("user").(models.User)
	return user
}

// canModify mirrors the authorization policy server-side: owner or admin.
func canModify(user models.User, ownerID uint) bool {
	return user.IsAdmin == 1 || user.ID == ownerID
}

func (s *Server) generateToken(user models.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":      float64(user.ID),
		"username": user.Username,
		"isAdmin":  float64(user.IsAdmin),
		"exp":      time.Now().Add(72 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func setSessionCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
		Expires:  time.Now().Add(72 * time.Hour),
	})
}

func clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		Expires:  time.Unix(0, 0),
	})
}
