package models

import "time"

// Comment represents both top-level comments and replies.
//
// ParentID nil means the comment attaches directly to its post; otherwise it
// references another comment with the same PostID. Replies form a forest
// rooted at each post, and each generation is fetched on demand rather than
// as a whole tree.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	ParentID  *uint     `gorm:"index" json:"parent_id,omitempty"`
	Author    uint      `gorm:"column:user_id;not null" json:"author"`
	Username  string    `json:"username"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// TopLevel reports whether the comment attaches directly to its post.
func (c Comment) TopLevel() bool {
	return c.ParentID == nil || *c.ParentID == 0
}
