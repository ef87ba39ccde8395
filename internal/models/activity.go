package models

import (
	"time"

	"github.com/google/uuid"
)

// Activity kinds eligible for moderation
const (
	KindNewPost       = "new-post"
	KindPostEdit      = "post-edit"
	KindMarkOffensive = "mark-offensive"
)

// Content kinds an activity may reference
const (
	ContentPost     = "post"
	ContentRevision = "revision"
)

// EditActivityKinds are the kinds produced by authoring or editing a post.
func EditActivityKinds() []string {
	return []string{KindNewPost, KindPostEdit}
}

// ModerationActivityKinds are all kinds the moderation queue may carry.
// Activities of any other kind must never be purged by the queue engine.
func ModerationActivityKinds() []string {
	return []string{KindNewPost, KindPostEdit, KindMarkOffensive}
}

// Activity is a logged user action eligible for moderation. The content
// reference is an explicit tagged pair (content_kind, content_id) rather
// than a polymorphic pointer.
type Activity struct {
	ID          int64     `json:"id" db:"id"`
	Kind        string    `json:"kind" db:"kind"`
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	ContentKind string    `json:"content_kind" db:"content_kind"`
	ContentID   int64     `json:"content_id" db:"content_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// QueueMemo links a pending activity to the moderator whose queue it sits in.
// Memos are consumed (deleted) once a moderation action resolves them.
type QueueMemo struct {
	ID         int64     `json:"id" db:"id"`
	UserID     uuid.UUID `json:"user_id" db:"user_id"`
	ActivityID int64     `json:"activity_id" db:"activity_id"`
	Activity   Activity  `json:"activity" db:"-"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
