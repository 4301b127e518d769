package models

import "time"

// Post represents a forum post.
//
// Author is the owning user's id; Username is denormalized so lists render
// without a join on the client side. Topic references a Topic by name (the
// API does not enforce the reference on writes).
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"not null" json:"title"`
	Topic     string    `gorm:"index" json:"topic"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Author    uint      `gorm:"column:user_id;not null;index" json:"author"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}
