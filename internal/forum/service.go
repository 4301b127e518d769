package forum

import (
	"context"
	"sync"
	"time"

	"parley/internal/authz"
	"parley/internal/models"
	"parley/internal/observability"
)

// API is the slice of the synchronization client the service depends on.
type API interface {
	ListPosts(ctx context.Context) ([]models.Post, error)
	GetPost(ctx context.Context, id uint) (*models.Post, error)
	CreatePost(ctx context.Context, post models.Post) (*models.Post, error)
	UpdatePost(ctx context.Context, post models.Post) error
	DeletePost(ctx context.Context, id uint) error

	ListTopics(ctx context.Context) ([]models.Topic, error)
	CreateTopic(ctx context.Context, name string) (*models.Topic, error)
	DeleteTopic(ctx context.Context, name string) error

	ListComments(ctx context.Context, postID uint) ([]models.Comment, error)
	GetComment(ctx context.Context, postID, commentID uint) (*models.Comment, error)
	ListReplies(ctx context.Context, postID, commentID uint) ([]models.Comment, error)
	CreateComment(ctx context.Context, comment models.Comment) (*models.Comment, error)
	CreateReply(ctx context.Context, parentID uint, comment models.Comment) (*models.Comment, error)
	UpdateComment(ctx context.Context, comment models.Comment) error
	DeleteComment(ctx context.Context, postID, commentID uint) error
}

// SessionSource provides read-only access to the current session.
type SessionSource interface {
	Current() models.Session
}

// Service drives every forum mutation: it gates intents through the
// authorization policy, executes them through the API, and patches the local
// collections only after a confirmed success. Denied intents never reach the
// wire.
type Service struct {
	api      API
	sessions SessionSource
	threads  *Threads
	modes    *Modes
	log      *observability.Logger

	mu     sync.RWMutex
	posts  []models.Post
	topics []models.Topic
}

// NewService creates a forum service with empty local collections.
func NewService(api API, sessions SessionSource) *Service {
	return &Service{
		api:      api,
		sessions: sessions,
		threads:  NewThreads(),
		modes:    NewModes(),
		log:      observability.GlobalLogger,
	}
}

// Threads exposes the cached comment forest.
func (s *Service) Threads() *Threads { return s.threads }

// Modes exposes the per-comment interaction state.
func (s *Service) Modes() *Modes { return s.modes }

// requireUser returns the authenticated user or the error that sends the
// caller to the login flow. The request is never issued when this fails.
func (s *Service) requireUser() (*models.User, error) {
	sess := s.sessions.Current()
	if !sess.IsAuthenticated || sess.User == nil {
		return nil, models.NewAuthRequiredError("")
	}
	return sess.User, nil
}

// requireOwnership applies the modify policy for a resource owner. A denial
// is local; nothing is sent.
func (s *Service) requireOwnership(ownerID uint) error {
	if !authz.CanModify(s.sessions.Current(), ownerID) {
		return models.NewForbiddenError("You can only modify your own content")
	}
	return nil
}

// ---- posts ----

// RefreshPosts fetches the post list and replaces the local collection.
func (s *Service) RefreshPosts(ctx context.Context) ([]models.Post, error) {
	posts, err := s.api.ListPosts(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.posts = posts
	s.mu.Unlock()
	return posts, nil
}

// Posts returns the local post collection, optionally filtered by topic.
func (s *Service) Posts(topic string) []models.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if topic == "" || topic == models.ReservedTopic {
		return append([]models.Post(nil), s.posts...)
	}
	var filtered []models.Post
	for _, p := range s.posts {
		if p.Topic == topic {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// GetPost fetches one post with its content.
func (s *Service) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	return s.api.GetPost(ctx, id)
}

// CreatePost submits a new post for the authenticated user and prepends the
// confirmed result to the local collection.
func (s *Service) CreatePost(ctx context.Context, title, topic, content string) (*models.Post, error) {
	user, err := s.requireUser()
	if err != nil {
		return nil, err
	}
	created, err := s.api.CreatePost(ctx, models.Post{
		Title:     title,
		Topic:     topic,
		Content:   content,
		Author:    user.ID,
		Username:  user.Username,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.posts = append([]models.Post{*created}, s.posts...)
	s.mu.Unlock()
	return created, nil
}

// UpdatePost replaces a post's title, topic, and content, gated on ownership.
func (s *Service) UpdatePost(ctx context.Context, post models.Post, title, topic, content string) error {
	if err := s.requireOwnership(post.Author); err != nil {
		return err
	}
	updated := post
	updated.Title = title
	updated.Topic = topic
	updated.Content = content
	if err := s.api.UpdatePost(ctx, updated); err != nil {
		return err
	}
	s.mu.Lock()
	for i := range s.posts {
		if s.posts[i].ID == post.ID {
			s.posts[i].Title = title
			s.posts[i].Topic = topic
			s.posts[i].Content = content
			break
		}
	}
	s.mu.Unlock()
	return nil
}

// DeletePost removes a post and forgets its cached comment forest.
func (s *Service) DeletePost(ctx context.Context, post models.Post) error {
	if err := s.requireOwnership(post.Author); err != nil {
		return err
	}
	if err := s.api.DeletePost(ctx, post.ID); err != nil {
		return err
	}
	s.mu.Lock()
	for i := range s.posts {
		if s.posts[i].ID == post.ID {
			s.posts = append(s.posts[:i:i], s.posts[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	s.threads.evictPost(post.ID)
	return nil
}

// ---- topics ----

// RefreshTopics fetches the topic list and replaces the local collection.
func (s *Service) RefreshTopics(ctx context.Context) ([]models.Topic, error) {
	topics, err := s.api.ListTopics(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.topics = topics
	s.mu.Unlock()
	return topics, nil
}

// Topics returns the local topic collection.
func (s *Service) Topics() []models.Topic {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Topic(nil), s.topics...)
}

// AddTopic creates a topic (admin only) and appends it locally.
func (s *Service) AddTopic(ctx context.Context, name string) (*models.Topic, error) {
	if !authz.CanManageTopics(s.sessions.Current()) {
		return nil, models.NewForbiddenError("Only admins can manage topics")
	}
	created, err := s.api.CreateTopic(ctx, name)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.topics = append(s.topics, *created)
	s.mu.Unlock()
	return created, nil
}

// RemoveTopic deletes a topic (admin only). On success the topic and its
// posts are dropped from the local collections directly; no reload.
func (s *Service) RemoveTopic(ctx context.Context, name string) error {
	if !authz.CanManageTopics(s.sessions.Current()) {
		return models.NewForbiddenError("Only admins can manage topics")
	}
	if err := s.api.DeleteTopic(ctx, name); err != nil {
		return err
	}
	s.mu.Lock()
	for i := range s.topics {
		if s.topics[i].TopicName == name {
			s.topics = append(s.topics[:i:i], s.topics[i+1:]...)
			break
		}
	}
	var kept []models.Post
	var dropped []uint
	for _, p := range s.posts {
		if p.Topic == name {
			dropped = append(dropped, p.ID)
			continue
		}
		kept = append(kept, p)
	}
	s.posts = kept
	s.mu.Unlock()
	for _, id := range dropped {
		s.threads.evictPost(id)
	}
	return nil
}

// ---- comments ----

// TopLevelComments fetches the first generation of a post's forest and
// caches it.
func (s *Service) TopLevelComments(ctx context.Context, postID uint) ([]models.Comment, error) {
	comments, err := s.api.ListComments(ctx, postID)
	if err != nil {
		return nil, err
	}
	s.threads.setTopLevel(postID, comments)
	return comments, nil
}

// ChildrenOf fetches the direct replies of one comment, one generation deep,
// and caches them. Viewing a grandchild's replies requires a fresh call for
// that child.
func (s *Service) ChildrenOf(ctx context.Context, postID, commentID uint) ([]models.Comment, error) {
	replies, err := s.api.ListReplies(ctx, postID, commentID)
	if err != nil {
		return nil, err
	}
	s.threads.setChildren(postID, commentID, replies)
	return replies, nil
}

// GetComment fetches a single comment, the "parent" of a detail view.
func (s *Service) GetComment(ctx context.Context, postID, commentID uint) (*models.Comment, error) {
	comment, err := s.api.GetComment(ctx, postID, commentID)
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// AddComment creates a top-level comment on a post. An unauthenticated
// caller is stopped locally and directed to the login flow.
func (s *Service) AddComment(ctx context.Context, postID uint, content string) (*models.Comment, error) {
	user, err := s.requireUser()
	if err != nil {
		return nil, err
	}
	created, err := s.api.CreateComment(ctx, models.Comment{
		PostID:    postID,
		Author:    user.ID,
		Username:  user.Username,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	s.threads.prepend(*created)
	return created, nil
}

// Reply creates a reply under parentID. The parent must belong to the same
// post; a reply that would cross posts is rejected before anything is sent.
func (s *Service) Reply(ctx context.Context, postID, parentID uint, content string) (*models.Comment, error) {
	user, err := s.requireUser()
	if err != nil {
		return nil, err
	}
	parent, ok := s.threads.Lookup(postID, parentID)
	if !ok {
		fetched, err := s.api.GetComment(ctx, postID, parentID)
		if err != nil {
			return nil, err
		}
		parent = *fetched
	}
	if parent.PostID != postID {
		return nil, models.NewValidationError("Parent comment belongs to a different post")
	}
	// One reply submission per parent at a time; a double-send is refused
	// before it reaches the wire.
	if err := s.modes.BeginSubmit(parentID); err != nil {
		return nil, err
	}
	created, err := s.api.CreateReply(ctx, parentID, models.Comment{
		PostID:    postID,
		ParentID:  &parentID,
		Author:    user.ID,
		Username:  user.Username,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	})
	s.modes.EndSubmit(parentID, err == nil)
	if err != nil {
		return nil, err
	}
	s.threads.prepend(*created)
	return created, nil
}

// EditComment replaces a comment's content, gated on ownership. Identity
// fields and created_at are immutable across edits.
func (s *Service) EditComment(ctx context.Context, comment models.Comment, content string) error {
	if err := s.requireOwnership(comment.Author); err != nil {
		return err
	}
	if err := s.modes.BeginSubmit(comment.ID); err != nil {
		return err
	}
	updated := comment
	updated.Content = content
	err := s.api.UpdateComment(ctx, updated)
	s.modes.EndSubmit(comment.ID, err == nil)
	if err != nil {
		return err
	}
	s.threads.updateContent(comment.PostID, comment.ID, content)
	return nil
}

// DeleteComment removes a comment, gated on ownership. The server cascades
// to the reply subtree, so the cached subtree is evicted with it.
func (s *Service) DeleteComment(ctx context.Context, comment models.Comment) error {
	if err := s.requireOwnership(comment.Author); err != nil {
		return err
	}
	if err := s.api.DeleteComment(ctx, comment.PostID, comment.ID); err != nil {
		return err
	}
	s.threads.remove(comment.PostID, comment.ID)
	return nil
}
