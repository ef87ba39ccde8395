package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/qboard/backend/internal/database"
	"github.com/qboard/backend/internal/models"
	"github.com/qboard/backend/internal/moderation"
)

// ContentRepository stores posts, revisions, flags, flag reasons and the
// user status fields the moderation engine mutates.
type ContentRepository struct {
	q database.Queryer
}

func NewContentRepository(q database.Queryer) *ContentRepository {
	return &ContentRepository{q: q}
}

// GetPost retrieves a post by ID
func (r *ContentRepository) GetPost(id int64) (*models.Post, error) {
	post := &models.Post{}
	err := r.q.QueryRow(`
		SELECT id, author_id, html, created_at, updated_at
		FROM posts
		WHERE id = $1
	`, id).Scan(&post.ID, &post.AuthorID, &post.HTML, &post.CreatedAt, &post.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("post %d: %w", id, moderation.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return post, nil
}

// GetRevision retrieves a post revision by ID
func (r *ContentRepository) GetRevision(id int64) (*models.PostRevision, error) {
	rev := &models.PostRevision{}
	err := r.q.QueryRow(`
		SELECT id, post_id, author_id, ip_addr, content, approved, created_at
		FROM post_revisions
		WHERE id = $1
	`, id).Scan(&rev.ID, &rev.PostID, &rev.AuthorID, &rev.IPAddr, &rev.Content, &rev.Approved, &rev.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("revision %d: %w", id, moderation.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get revision: %w", err)
	}
	return rev, nil
}

// RevisionAuthors returns the authors of every revision of a post.
func (r *ContentRepository) RevisionAuthors(postID int64) ([]uuid.UUID, error) {
	rows, err := r.q.Query(`
		SELECT author_id FROM post_revisions WHERE post_id = $1 ORDER BY id
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to query revision authors: %w", err)
	}
	defer rows.Close()

	authors := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan revision author: %w", err)
		}
		authors = append(authors, id)
	}
	return authors, nil
}

// GetUsers retrieves multiple users by their IDs
func (r *ContentRepository) GetUsers(ids []uuid.UUID) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}

	idStrings := make([]string, len(ids))
	for i, id := range ids {
		idStrings[i] = id.String()
	}

	rows, err := r.q.Query(`
		SELECT id, email, display_name, password_hash, role, status, created_at, updated_at
		FROM users
		WHERE id = ANY($1)
	`, pq.Array(idStrings))
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var user models.User
		if err := rows.Scan(
			&user.ID,
			&user.Email,
			&user.DisplayName,
			&user.PasswordHash,
			&user.Role,
			&user.Status,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	return users, nil
}

// GetFlagReason retrieves a flag reason by ID
func (r *ContentRepository) GetFlagReason(id int64) (*models.FlagReason, error) {
	reason := &models.FlagReason{}
	err := r.q.QueryRow(`
		SELECT id, title, details, created_at
		FROM flag_reasons
		WHERE id = $1
	`, id).Scan(&reason.ID, &reason.Title, &reason.Details, &reason.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("flag reason %d: %w", id, moderation.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get flag reason: %w", err)
	}
	return reason, nil
}

// DeletePost deletes a post. Revisions and flags cascade with it.
func (r *ContentRepository) DeletePost(id int64) error {
	if _, err := r.q.Exec(`DELETE FROM posts WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	return nil
}

// DeleteContentByAuthor deletes every post authored by the given user and
// returns the number of posts removed.
func (r *ContentRepository) DeleteContentByAuthor(authorID uuid.UUID) (int, error) {
	res, err := r.q.Exec(`DELETE FROM posts WHERE author_id = $1`, authorID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete content by author: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted posts: %w", err)
	}
	return int(n), nil
}

// ApproveRevision marks a revision approved and promotes it to the post's
// visible state.
func (r *ContentRepository) ApproveRevision(id int64) error {
	if _, err := r.q.Exec(`
		UPDATE post_revisions SET approved = true WHERE id = $1
	`, id); err != nil {
		return fmt.Errorf("failed to approve revision: %w", err)
	}

	if _, err := r.q.Exec(`
		UPDATE posts
		SET html = r.content, author_id = r.author_id, updated_at = NOW()
		FROM post_revisions r
		WHERE r.id = $1 AND posts.id = r.post_id
	`, id); err != nil {
		return fmt.Errorf("failed to promote revision: %w", err)
	}
	return nil
}

// ClearPostFlags removes every outstanding flag on a post.
func (r *ContentRepository) ClearPostFlags(postID int64) error {
	if _, err := r.q.Exec(`DELETE FROM post_flags WHERE post_id = $1`, postID); err != nil {
		return fmt.Errorf("failed to clear post flags: %w", err)
	}
	return nil
}

// SetUserStatus updates a user's status field
func (r *ContentRepository) SetUserStatus(id uuid.UUID, status string) error {
	if _, err := r.q.Exec(`
		UPDATE users SET status = $2, updated_at = NOW() WHERE id = $1
	`, id, status); err != nil {
		return fmt.Errorf("failed to set user status: %w", err)
	}
	return nil
}
