package moderation

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/qboard/backend/internal/models"
)

// resolveEditors maps a set of queue memos to the users who should be
// treated as "the editor" for user-level actions.
//
// A revision has exactly one author, so it contributes that author
// directly. A post contributes its single distinct revision author, or
// nothing at all when its revisions have more than one author: with a
// conflicting edit history there is no way to tell which user to blame,
// so the post is skipped rather than guessed at.
//
// Editors holding a moderator or administrator role are removed from the
// result; automated tooling never alters the status of privileged accounts.
func resolveEditors(content ContentStore, memos []models.QueueMemo) ([]models.User, error) {
	candidates := make(map[uuid.UUID]struct{})

	for _, memo := range memos {
		switch memo.Activity.ContentKind {
		case models.ContentRevision:
			rev, err := content.GetRevision(memo.Activity.ContentID)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve revision %d: %w", memo.Activity.ContentID, err)
			}
			candidates[rev.AuthorID] = struct{}{}

		case models.ContentPost:
			authors, err := content.RevisionAuthors(memo.Activity.ContentID)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve authors of post %d: %w", memo.Activity.ContentID, err)
			}
			distinct := make(map[uuid.UUID]struct{})
			for _, a := range authors {
				distinct[a] = struct{}{}
			}
			if len(distinct) == 1 {
				candidates[authors[0]] = struct{}{}
			}
		}
	}

	if len(candidates) == 0 {
		return []models.User{}, nil
	}

	ids := make([]uuid.UUID, 0, len(candidates))
	for id := range candidates {
		ids = append(ids, id)
	}

	users, err := content.GetUsers(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load editors: %w", err)
	}

	editors := make([]models.User, 0, len(users))
	for _, u := range users {
		if u.IsAdministratorOrModerator() {
			continue
		}
		editors = append(editors, u)
	}
	return editors, nil
}
