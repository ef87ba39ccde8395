package repository

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/qboard/backend/internal/database"
	"github.com/qboard/backend/internal/models"
)

// QueueRepository stores the pending-review queue memos. It runs against
// whatever Queryer it is given, so callers can bind it to a transaction.
type QueueRepository struct {
	q database.Queryer
}

func NewQueueRepository(q database.Queryer) *QueueRepository {
	return &QueueRepository{q: q}
}

const memoColumns = `
	m.id, m.user_id, m.activity_id, m.created_at,
	a.id, a.kind, a.user_id, a.content_kind, a.content_id, a.created_at
`

func scanMemos(rows *sql.Rows) ([]models.QueueMemo, error) {
	memos := []models.QueueMemo{}
	for rows.Next() {
		var m models.QueueMemo
		if err := rows.Scan(
			&m.ID,
			&m.UserID,
			&m.ActivityID,
			&m.CreatedAt,
			&m.Activity.ID,
			&m.Activity.Kind,
			&m.Activity.UserID,
			&m.Activity.ContentKind,
			&m.Activity.ContentID,
			&m.Activity.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan queue memo: %w", err)
		}
		memos = append(memos, m)
	}
	return memos, nil
}

// Find returns the memos matching the given ids with their activities
// joined in. Ids without a matching memo are silently omitted.
func (r *QueueRepository) Find(ids []int64) ([]models.QueueMemo, error) {
	query := `
		SELECT ` + memoColumns + `
		FROM queue_memos m
		JOIN activities a ON a.id = m.activity_id
		WHERE m.id = ANY($1)
		ORDER BY m.id
	`

	rows, err := r.q.Query(query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to query queue memos: %w", err)
	}
	defer rows.Close()

	return scanMemos(rows)
}

// Expand returns the union of memos matching baseIDs and memos in the
// moderator's own queue whose activity is an edit-kind activity by one of
// the given editors. The union is computed up front, before any mutation.
func (r *QueueRepository) Expand(baseIDs []int64, moderatorID uuid.UUID, editorIDs []uuid.UUID) ([]models.QueueMemo, error) {
	editors := make([]string, len(editorIDs))
	for i, id := range editorIDs {
		editors[i] = id.String()
	}

	query := `
		SELECT ` + memoColumns + `
		FROM queue_memos m
		JOIN activities a ON a.id = m.activity_id
		WHERE m.id = ANY($1)
		   OR (m.user_id = $2 AND a.kind = ANY($3) AND a.user_id = ANY($4))
		ORDER BY m.id
	`

	rows, err := r.q.Query(
		query,
		pq.Array(baseIDs),
		moderatorID,
		pq.Array(models.EditActivityKinds()),
		pq.Array(editors),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to expand queue memos: %w", err)
	}
	defer rows.Close()

	return scanMemos(rows)
}

// PurgeByActivity deletes the memos and activities for the given activity
// ids. Both deletes are restricted to moderation activity kinds; memos or
// activities of any other kind are left untouched.
func (r *QueueRepository) PurgeByActivity(activityIDs []int64) (int, error) {
	if len(activityIDs) == 0 {
		return 0, nil
	}

	kinds := pq.Array(models.ModerationActivityKinds())

	res, err := r.q.Exec(`
		DELETE FROM queue_memos
		WHERE activity_id IN (
			SELECT id FROM activities WHERE id = ANY($1) AND kind = ANY($2)
		)
	`, pq.Array(activityIDs), kinds)
	if err != nil {
		return 0, fmt.Errorf("failed to purge queue memos: %w", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count purged memos: %w", err)
	}

	if _, err := r.q.Exec(`
		DELETE FROM activities WHERE id = ANY($1) AND kind = ANY($2)
	`, pq.Array(activityIDs), kinds); err != nil {
		return 0, fmt.Errorf("failed to purge activities: %w", err)
	}

	return int(deleted), nil
}

// PendingCount counts the moderation memos remaining in a moderator's queue.
func (r *QueueRepository) PendingCount(moderatorID uuid.UUID) (int, error) {
	var count int
	err := r.q.QueryRow(`
		SELECT COUNT(*)
		FROM queue_memos m
		JOIN activities a ON a.id = m.activity_id
		WHERE m.user_id = $1 AND a.kind = ANY($2)
	`, moderatorID, pq.Array(models.ModerationActivityKinds())).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count queue memos: %w", err)
	}
	return count, nil
}
