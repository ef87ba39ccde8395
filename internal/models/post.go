package models

import (
	"time"

	"github.com/google/uuid"
)

// Post is a piece of reviewable content. The author is the author of the
// current revision; it is kept denormalized on the post row.
type Post struct {
	ID        int64     `json:"id" db:"id"`
	AuthorID  uuid.UUID `json:"author_id" db:"author_id"`
	HTML      string    `json:"html" db:"html"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// PostRevision is one edit of a post. Revisions are never deleted on their
// own; they are approved, or removed together with their post.
type PostRevision struct {
	ID        int64     `json:"id" db:"id"`
	PostID    int64     `json:"post_id" db:"post_id"`
	AuthorID  uuid.UUID `json:"author_id" db:"author_id"`
	IPAddr    string    `json:"ip_addr" db:"ip_addr"`
	Content   string    `json:"content" db:"content"`
	Approved  bool      `json:"approved" db:"approved"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// PostFlag marks a post as offensive, pending moderator review.
type PostFlag struct {
	ID        int64     `json:"id" db:"id"`
	PostID    int64     `json:"post_id" db:"post_id"`
	FlaggedBy uuid.UUID `json:"flagged_by" db:"flagged_by"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// FlagReason is reference data used to compose rejection notices.
type FlagReason struct {
	ID        int64     `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Details   string    `json:"details" db:"details"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
