package notification

import "time"

// Notification is one line of a teacher's in-app feed.
type Notification struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	Type      string    `json:"type" bson:"type"` // student | notice | payment | schedule
	Title     string    `json:"title" bson:"title"`
	Message   string    `json:"message" bson:"message"`
	TargetID  string    `json:"targetId" bson:"targetId"` // owning teacher
	IsRead    bool      `json:"isRead" bson:"isRead"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}
