package models

// Topic is a named post category. The name itself is the unique key; only
// admins may create or delete topics.
type Topic struct {
	TopicName string `gorm:"primaryKey" json:"topic_name"`
}

// ReservedTopic is the pseudo-topic the UI uses for the unfiltered post list;
// it can never be created or deleted.
const ReservedTopic = "All Posts"
