package activity

import "time"

// Entry is an append-only log line: write-once, read-many. Entries are never
// updated or deleted.
type Entry struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	TeacherID   string    `json:"teacherId" bson:"teacherId"`
	Type        string    `json:"type" bson:"type"`     // student | attendance | payment | lessonNote | notice | schedule | expense
	Action      string    `json:"action" bson:"action"` // create | update | delete | approve | reject
	Title       string    `json:"title" bson:"title"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	StudentID   string    `json:"studentId,omitempty" bson:"studentId,omitempty"`
	RelatedID   string    `json:"relatedId,omitempty" bson:"relatedId,omitempty"`
	Timestamp   time.Time `json:"timestamp" bson:"timestamp"`
}
