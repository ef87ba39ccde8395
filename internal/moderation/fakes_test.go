package moderation

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/qboard/backend/internal/models"
)

// fakeContent is an in-memory ContentStore
type fakeContent struct {
	posts     map[int64]*models.Post
	revisions map[int64]*models.PostRevision
	users     map[uuid.UUID]models.User
	reasons   map[int64]*models.FlagReason
	flags     map[int64]int // postID -> outstanding flags

	deletedPosts []int64
	approvedRevs []int64
	clearedFlags []int64
	statusLog    map[uuid.UUID]string
}

func newFakeContent() *fakeContent {
	return &fakeContent{
		posts:     make(map[int64]*models.Post),
		revisions: make(map[int64]*models.PostRevision),
		users:     make(map[uuid.UUID]models.User),
		reasons:   make(map[int64]*models.FlagReason),
		flags:     make(map[int64]int),
		statusLog: make(map[uuid.UUID]string),
	}
}

func (f *fakeContent) GetPost(id int64) (*models.Post, error) {
	post, ok := f.posts[id]
	if !ok {
		return nil, fmt.Errorf("post %d: %w", id, ErrNotFound)
	}
	copied := *post
	return &copied, nil
}

func (f *fakeContent) GetRevision(id int64) (*models.PostRevision, error) {
	rev, ok := f.revisions[id]
	if !ok {
		return nil, fmt.Errorf("revision %d: %w", id, ErrNotFound)
	}
	copied := *rev
	return &copied, nil
}

func (f *fakeContent) RevisionAuthors(postID int64) ([]uuid.UUID, error) {
	ids := make([]int64, 0)
	for id, rev := range f.revisions {
		if rev.PostID == postID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	authors := []uuid.UUID{}
	for _, id := range ids {
		authors = append(authors, f.revisions[id].AuthorID)
	}
	return authors, nil
}

func (f *fakeContent) GetUsers(ids []uuid.UUID) ([]models.User, error) {
	users := []models.User{}
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			users = append(users, u)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID.String() < users[j].ID.String() })
	return users, nil
}

func (f *fakeContent) GetFlagReason(id int64) (*models.FlagReason, error) {
	reason, ok := f.reasons[id]
	if !ok {
		return nil, fmt.Errorf("flag reason %d: %w", id, ErrNotFound)
	}
	return reason, nil
}

func (f *fakeContent) DeletePost(id int64) error {
	delete(f.posts, id)
	for revID, rev := range f.revisions {
		if rev.PostID == id {
			delete(f.revisions, revID)
		}
	}
	delete(f.flags, id)
	f.deletedPosts = append(f.deletedPosts, id)
	return nil
}

func (f *fakeContent) DeleteContentByAuthor(authorID uuid.UUID) (int, error) {
	deleted := 0
	for id, post := range f.posts {
		if post.AuthorID == authorID {
			if err := f.DeletePost(id); err != nil {
				return deleted, err
			}
			deleted++
		}
	}
	return deleted, nil
}

func (f *fakeContent) ApproveRevision(id int64) error {
	rev, ok := f.revisions[id]
	if !ok {
		return fmt.Errorf("revision %d: %w", id, ErrNotFound)
	}
	rev.Approved = true
	if post, ok := f.posts[rev.PostID]; ok {
		post.HTML = rev.Content
		post.AuthorID = rev.AuthorID
	}
	f.approvedRevs = append(f.approvedRevs, id)
	return nil
}

func (f *fakeContent) ClearPostFlags(postID int64) error {
	f.flags[postID] = 0
	f.clearedFlags = append(f.clearedFlags, postID)
	return nil
}

func (f *fakeContent) SetUserStatus(id uuid.UUID, status string) error {
	u, ok := f.users[id]
	if !ok {
		return fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	u.Status = status
	f.users[id] = u
	f.statusLog[id] = status
	return nil
}

// fakeQueue is an in-memory QueueStore
type fakeQueue struct {
	memos map[int64]models.QueueMemo
}

func newFakeQueue() *fakeQueue {
	return &fakeQueue{memos: make(map[int64]models.QueueMemo)}
}

func (f *fakeQueue) add(memo models.QueueMemo) {
	f.memos[memo.ID] = memo
}

func (f *fakeQueue) sorted(keep func(models.QueueMemo) bool) []models.QueueMemo {
	memos := []models.QueueMemo{}
	for _, m := range f.memos {
		if keep(m) {
			memos = append(memos, m)
		}
	}
	sort.Slice(memos, func(i, j int) bool { return memos[i].ID < memos[j].ID })
	return memos
}

func (f *fakeQueue) Find(ids []int64) ([]models.QueueMemo, error) {
	wanted := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	return f.sorted(func(m models.QueueMemo) bool {
		_, ok := wanted[m.ID]
		return ok
	}), nil
}

func (f *fakeQueue) Expand(baseIDs []int64, moderatorID uuid.UUID, editorIDs []uuid.UUID) ([]models.QueueMemo, error) {
	base := make(map[int64]struct{}, len(baseIDs))
	for _, id := range baseIDs {
		base[id] = struct{}{}
	}
	editors := make(map[uuid.UUID]struct{}, len(editorIDs))
	for _, id := range editorIDs {
		editors[id] = struct{}{}
	}
	editKinds := map[string]struct{}{}
	for _, k := range models.EditActivityKinds() {
		editKinds[k] = struct{}{}
	}

	return f.sorted(func(m models.QueueMemo) bool {
		if _, ok := base[m.ID]; ok {
			return true
		}
		if m.UserID != moderatorID {
			return false
		}
		if _, ok := editKinds[m.Activity.Kind]; !ok {
			return false
		}
		_, ok := editors[m.Activity.UserID]
		return ok
	}), nil
}

func (f *fakeQueue) PurgeByActivity(activityIDs []int64) (int, error) {
	wanted := make(map[int64]struct{}, len(activityIDs))
	for _, id := range activityIDs {
		wanted[id] = struct{}{}
	}
	modKinds := map[string]struct{}{}
	for _, k := range models.ModerationActivityKinds() {
		modKinds[k] = struct{}{}
	}

	deleted := 0
	for id, m := range f.memos {
		if _, ok := wanted[m.ActivityID]; !ok {
			continue
		}
		if _, ok := modKinds[m.Activity.Kind]; !ok {
			continue
		}
		delete(f.memos, id)
		deleted++
	}
	return deleted, nil
}

func (f *fakeQueue) PendingCount(moderatorID uuid.UUID) (int, error) {
	modKinds := map[string]struct{}{}
	for _, k := range models.ModerationActivityKinds() {
		modKinds[k] = struct{}{}
	}
	count := 0
	for _, m := range f.memos {
		if m.UserID != moderatorID {
			continue
		}
		if _, ok := modKinds[m.Activity.Kind]; ok {
			count++
		}
	}
	return count, nil
}

// fakeSpamCache is an in-memory SpamIPCache
type fakeSpamCache struct {
	permanent map[string]bool
	inserted  []string
}

func newFakeSpamCache() *fakeSpamCache {
	return &fakeSpamCache{permanent: make(map[string]bool)}
}

func (f *fakeSpamCache) MarkPermanent(ips []string) ([]string, error) {
	existing := []string{}
	for _, ip := range ips {
		if _, ok := f.permanent[ip]; ok {
			f.permanent[ip] = true
			existing = append(existing, ip)
		}
	}
	return existing, nil
}

func (f *fakeSpamCache) InsertPermanent(ip string) error {
	if _, ok := f.permanent[ip]; !ok {
		f.inserted = append(f.inserted, ip)
	}
	f.permanent[ip] = true
	return nil
}

// fakeNotifier records sent notices
type fakeNotifier struct {
	sent []sentNotice
	err  error
}

type sentNotice struct {
	subject   string
	body      string
	recipient string
}

func (f *fakeNotifier) Send(subject, body, recipient string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentNotice{subject: subject, body: body, recipient: recipient})
	return nil
}

// fakeRenderer renders a predictable body
type fakeRenderer struct{}

func (fakeRenderer) Render(name string, data map[string]any) (string, error) {
	return fmt.Sprintf("%s: %v / %v", name, data["post"], data["reject_reason"]), nil
}
