package api

import (
	"context"
	"fmt"
	"net/http"

	"parley/internal/models"
)

// ListComments fetches the top-level comments of a post. Replies are not
// included; they are fetched per parent with ListReplies.
func (c *Client) ListComments(ctx context.Context, postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	path := fmt.Sprintf("/api/posts/%d/comments", postID)
	if err := c.do(ctx, http.MethodGet, path, nil, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// GetComment fetches a single comment.
func (c *Client) GetComment(ctx context.Context, postID, commentID uint) (*models.Comment, error) {
	var comment models.Comment
	path := fmt.Sprintf("/api/posts/%d/comments/%d", postID, commentID)
	if err := c.do(ctx, http.MethodGet, path, nil, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListReplies fetches the direct children of a comment, one generation deep.
// A comment with no replies yields an empty slice, not an error.
func (c *Client) ListReplies(ctx context.Context, postID, commentID uint) ([]models.Comment, error) {
	var replies []models.Comment
	path := fmt.Sprintf("/api/posts/%d/comments/%d/subcomments", postID, commentID)
	if err := c.do(ctx, http.MethodGet, path, nil, &replies); err != nil {
		return nil, err
	}
	return replies, nil
}

// CreateComment submits a top-level comment on a post.
func (c *Client) CreateComment(ctx context.Context, comment models.Comment) (*models.Comment, error) {
	var created models.Comment
	path := fmt.Sprintf("/api/posts/%d/comments", comment.PostID)
	if err := c.do(ctx, http.MethodPost, path, comment, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// CreateReply submits a reply under the given parent comment.
func (c *Client) CreateReply(ctx context.Context, parentID uint, comment models.Comment) (*models.Comment, error) {
	var created models.Comment
	path := fmt.Sprintf("/api/posts/%d/comments/%d", comment.PostID, parentID)
	if err := c.do(ctx, http.MethodPost, path, comment, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateComment replaces a comment's content. Identity fields and the
// creation timestamp never change across edits.
func (c *Client) UpdateComment(ctx context.Context, comment models.Comment) error {
	path := fmt.Sprintf("/api/posts/%d/comments/%d", comment.PostID, comment.ID)
	return c.do(ctx, http.MethodPatch, path, comment, nil)
}

// DeleteComment removes a comment; the server cascades to its reply subtree.
func (c *Client) DeleteComment(ctx context.Context, postID, commentID uint) error {
	path := fmt.Sprintf("/api/posts/%d/comments/%d", postID, commentID)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}
