package api

import (
	"context"
	"fmt"
	"net/http"

	"parley/internal/models"
)

// ListPosts fetches every post, newest first.
func (c *Client) ListPosts(ctx context.Context) ([]models.Post, error) {
	var posts []models.Post
	if err := c.do(ctx, http.MethodGet, "/api/posts", nil, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// GetPost fetches one post with its full content.
func (c *Client) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/posts/%d", id), nil, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// CreatePost submits a new post and returns it with the server-assigned id.
func (c *Client) CreatePost(ctx context.Context, post models.Post) (*models.Post, error) {
	var created models.Post
	if err := c.do(ctx, http.MethodPost, "/api/posts", post, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdatePost replaces the title, topic, and content of an existing post.
func (c *Client) UpdatePost(ctx context.Context, post models.Post) error {
	return c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/posts/%d", post.ID), post, nil)
}

// DeletePost removes a post and everything under it.
func (c *Client) DeletePost(ctx context.Context, id uint) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/posts/%d", id), nil, nil)
}

// Username resolves a user id to its display name.
func (c *Client) Username(ctx context.Context, userID uint) (string, error) {
	var out struct {
		Username string `json:"username"`
	}
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/users/%d", userID), nil, &out); err != nil {
		return "", err
	}
	return out.Username, nil
}
