// Package forum implements the threaded-comment model and the client-side
// mutation protocols for posts, topics, and comments.
package forum

import (
	"sync"

	"parley/internal/models"
)

type threadKey struct {
	post   uint
	parent uint
}

// Threads caches the comment forest one generation at a time: the top-level
// comments of each post, and the direct children of each comment that has
// been expanded. It never materializes a full tree; grandchildren only enter
// the cache when their own parent is expanded.
type Threads struct {
	mu       sync.RWMutex
	topLevel map[uint][]models.Comment
	children map[threadKey][]models.Comment
}

// NewThreads returns an empty forest cache.
func NewThreads() *Threads {
	return &Threads{
		topLevel: make(map[uint][]models.Comment),
		children: make(map[threadKey][]models.Comment),
	}
}

func (t *Threads) setTopLevel(postID uint, comments []models.Comment) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.topLevel[postID] = comments
}

func (t *Threads) setChildren(postID, parentID uint, comments []models.Comment) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.children[threadKey{postID, parentID}] = comments
}

// TopLevel returns the cached top-level generation for a post.
func (t *Threads) TopLevel(postID uint) ([]models.Comment, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	comments, ok := t.topLevel[postID]
	return comments, ok
}

// Children returns the cached direct replies of a comment.
func (t *Threads) Children(postID, parentID uint) ([]models.Comment, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	comments, ok := t.children[threadKey{postID, parentID}]
	return comments, ok
}

// Lookup finds a comment by id anywhere in the cached generations of a post.
func (t *Threads) Lookup(postID, commentID uint) (models.Comment, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, c := range t.topLevel[postID] {
		if c.ID == commentID {
			return c, true
		}
	}
	for key, list := range t.children {
		if key.post != postID {
			continue
		}
		for _, c := range list {
			if c.ID == commentID {
				return c, true
			}
		}
	}
	return models.Comment{}, false
}

// prepend inserts a confirmed creation at the head of its generation, which
// matches the server's newest-first ordering.
func (t *Threads) prepend(comment models.Comment) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if comment.TopLevel() {
		if list, ok := t.topLevel[comment.PostID]; ok {
			t.topLevel[comment.PostID] = append([]models.Comment{comment}, list...)
		}
		return
	}
	key := threadKey{comment.PostID, *comment.ParentID}
	if list, ok := t.children[key]; ok {
		t.children[key] = append([]models.Comment{comment}, list...)
	}
}

// updateContent patches the cached copy of an edited comment. Only the
// content changes; identity fields and created_at are immutable.
func (t *Threads) updateContent(postID, commentID uint, content string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, c := range t.topLevel[postID] {
		if c.ID == commentID {
			t.topLevel[postID][i].Content = content
			return
		}
	}
	for key, list := range t.children {
		if key.post != postID {
			continue
		}
		for i, c := range list {
			if c.ID == commentID {
				list[i].Content = content
				return
			}
		}
	}
}

// remove drops a deleted comment from its generation and evicts its cached
// subtree; the server cascades the delete, so the cached replies are gone
// server-side as well.
func (t *Threads) remove(postID, commentID uint) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.topLevel[postID] = deleteByID(t.topLevel[postID], commentID)
	for key, list := range t.children {
		if key.post == postID {
			t.children[key] = deleteByID(list, commentID)
		}
	}
	t.evictSubtreeLocked(postID, commentID)
}

// evictSubtreeLocked removes the cached generations under a comment,
// following only edges the cache knows about.
func (t *Threads) evictSubtreeLocked(postID, commentID uint) {
	key := threadKey{postID, commentID}
	subtree, ok := t.children[key]
	if !ok {
		return
	}
	delete(t.children, key)
	for _, child := range subtree {
		t.evictSubtreeLocked(postID, child.ID)
	}
}

// evictPost forgets everything cached for a post.
func (t *Threads) evictPost(postID uint) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.topLevel, postID)
	for key := range t.children {
		if key.post == postID {
			delete(t.children, key)
		}
	}
}

func deleteByID(list []models.Comment, id uint) []models.Comment {
	for i, c := range list {
		if c.ID == id {
			return append(list[:i:i], list[i+1:]...)
		}
	}
	return list
}
