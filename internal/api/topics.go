package api

import (
	"context"
	"net/http"
	"net/url"

	"parley/internal/models"
)

// ListTopics fetches all topic names.
func (c *Client) ListTopics(ctx context.Context) ([]models.Topic, error) {
	var topics []models.Topic
	if err := c.do(ctx, http.MethodGet, "/api/topics", nil, &topics); err != nil {
		return nil, err
	}
	return topics, nil
}

// CreateTopic registers a new topic name. Admin only.
func (c *Client) CreateTopic(ctx context.Context, name string) (*models.Topic, error) {
	var created models.Topic
	topic := models.Topic{TopicName: name}
	if err := c.do(ctx, http.MethodPost, "/api/topics", topic, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// DeleteTopic removes a topic and every post filed under it. Admin only.
func (c *Client) DeleteTopic(ctx context.Context, name string) error {
	// The name is a single path segment; escaping keeps a "/" in it from
	// splitting the route.
	return c.do(ctx, http.MethodDelete, "/api/topics/"+url.PathEscape(name), nil, nil)
}
