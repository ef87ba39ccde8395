package moderation

import (
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/qboard/backend/internal/models"
)

// QueueStore is the durable collection of pending-review memos.
type QueueStore interface {
	// Find returns memos matching the given ids; missing ids are silently omitted.
	Find(ids []int64) ([]models.QueueMemo, error)
	// Expand returns the union of memos matching baseIDs and memos in the
	// moderator's queue whose activity is an edit by one of the editors.
	Expand(baseIDs []int64, moderatorID uuid.UUID, editorIDs []uuid.UUID) ([]models.QueueMemo, error)
	// PurgeByActivity deletes memos and activities for the given activity
	// ids, restricted to moderation activity kinds. Returns memos deleted.
	PurgeByActivity(activityIDs []int64) (int, error)
	// PendingCount counts moderation memos remaining in a moderator's queue.
	PendingCount(moderatorID uuid.UUID) (int, error)
}

// ContentStore is the durable collection of posts, revisions, flags and users.
type ContentStore interface {
	GetPost(id int64) (*models.Post, error)
	GetRevision(id int64) (*models.PostRevision, error)
	RevisionAuthors(postID int64) ([]uuid.UUID, error)
	GetUsers(ids []uuid.UUID) ([]models.User, error)
	GetFlagReason(id int64) (*models.FlagReason, error)
	DeletePost(id int64) error
	DeleteContentByAuthor(authorID uuid.UUID) (int, error)
	ApproveRevision(id int64) error
	ClearPostFlags(postID int64) error
	SetUserStatus(id uuid.UUID, status string) error
}

// SpamIPCache is the shared store of blocked IP addresses.
type SpamIPCache interface {
	// MarkPermanent marks the given addresses permanent where they already
	// exist and returns the addresses that were already known.
	MarkPermanent(ips []string) ([]string, error)
	// InsertPermanent records a new address as permanently blocked.
	// Inserting an address that already exists is a no-op.
	InsertPermanent(ip string) error
}

// Notifier delivers rejection notices. Best-effort; failures are logged,
// never propagated.
type Notifier interface {
	Send(subject, body, recipient string) error
}

// Renderer renders a named template with the given data.
type Renderer interface {
	Render(name string, data map[string]any) (string, error)
}

// Config carries the processor feature switches.
type Config struct {
	IPModerationEnabled bool
}

// Processor applies a single moderator action against a batch of queue
// memos: it resolves the affected users and content, applies the action's
// side effects, aggregates a summary message, and purges the processed
// memos from the queue.
type Processor struct {
	queue    QueueStore
	content  ContentStore
	spamIPs  SpamIPCache
	notifier Notifier
	renderer Renderer
	cfg      Config
}

// NewProcessor creates a processor. spamIPs may be nil when IP moderation
// is disabled.
func NewProcessor(queue QueueStore, content ContentStore, spamIPs SpamIPCache, notifier Notifier, renderer Renderer, cfg Config) *Processor {
	return &Processor{
		queue:    queue,
		content:  content,
		spamIPs:  spamIPs,
		notifier: notifier,
		renderer: renderer,
		cfg:      cfg,
	}
}

// Process runs one moderation batch to completion. moderatorIP is the
// request address of the acting moderator, used only to keep the
// moderator's own address out of the IP block set.
//
// The caller is expected to run Process inside a single transaction so
// that concurrent batches over overlapping memo sets serialize.
func (p *Processor) Process(moderator *models.User, moderatorIP string, req *models.ModerateRequest) (*models.Outcome, error) {
	if moderator == nil || !moderator.IsAdministratorOrModerator() {
		return nil, &AuthorizationError{Reason: "moderator or administrator role required"}
	}

	var reason *models.FlagReason
	switch req.Action {
	case models.ActionReject:
		if req.Reason == nil {
			return nil, &ValidationError{Reason: "reject-with-reason requires a reason id"}
		}
		r, err := p.content.GetFlagReason(*req.Reason)
		if errors.Is(err, ErrNotFound) {
			return nil, &ValidationError{Reason: fmt.Sprintf("unknown flag reason %d", *req.Reason)}
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load flag reason: %w", err)
		}
		reason = r
	case models.ActionApprove, models.ActionBlock:
	default:
		return nil, &ValidationError{Reason: "unknown action: " + req.Action}
	}

	if len(req.EditIDs) == 0 {
		return nil, &ValidationError{Reason: "empty entry set"}
	}
	if len(req.Items) == 0 {
		return nil, &ValidationError{Reason: "no item categories"}
	}
	for _, item := range req.Items {
		switch item {
		case models.ItemPosts, models.ItemUsers, models.ItemIPs:
		default:
			return nil, &ValidationError{Reason: "unknown item category: " + item}
		}
	}

	memos, err := p.queue.Find(req.EditIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load queue memos: %w", err)
	}

	// Approving or blocking users resolves every other pending edit by the
	// same editors, not just the flagged items, so the working set widens
	// to the union before any effect is applied.
	if (req.Action == models.ActionApprove || req.Action == models.ActionBlock) && req.HasItem(models.ItemUsers) {
		editors, err := resolveEditors(p.content, memos)
		if err != nil {
			return nil, err
		}
		editorIDs := make([]uuid.UUID, 0, len(editors))
		for _, e := range editors {
			editorIDs = append(editorIDs, e.ID)
		}
		memos, err = p.queue.Expand(req.EditIDs, moderator.ID, editorIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to expand queue memos: %w", err)
		}
	}

	message := ""
	switch req.Action {
	case models.ActionReject:
		fragment, err := p.rejectPosts(memos, reason)
		if err != nil {
			return nil, err
		}
		message = concatMessages(message, fragment)

	case models.ActionApprove:
		if req.HasItem(models.ItemPosts) {
			fragment, err := p.approvePosts(memos)
			if err != nil {
				return nil, err
			}
			message = concatMessages(message, fragment)
		}
		if req.HasItem(models.ItemUsers) {
			fragment, err := p.approveUsers(moderator, memos)
			if err != nil {
				return nil, err
			}
			message = concatMessages(message, fragment)
		}

	case models.ActionBlock:
		if req.HasItem(models.ItemUsers) {
			fragment, err := p.blockUsers(moderator, memos)
			if err != nil {
				return nil, err
			}
			message = concatMessages(message, fragment)
		}
		if req.HasItem(models.ItemIPs) && p.cfg.IPModerationEnabled && p.spamIPs != nil {
			fragment, err := p.blockIPs(moderatorIP, memos)
			if err != nil {
				return nil, err
			}
			message = concatMessages(message, fragment)
		}
	}

	memoIDs := make([]int64, 0, len(memos))
	activitySet := make(map[int64]struct{})
	activityIDs := make([]int64, 0, len(memos))
	for _, memo := range memos {
		memoIDs = append(memoIDs, memo.ID)
		if _, seen := activitySet[memo.ActivityID]; !seen {
			activitySet[memo.ActivityID] = struct{}{}
			activityIDs = append(activityIDs, memo.ActivityID)
		}
	}

	if _, err := p.queue.PurgeByActivity(activityIDs); err != nil {
		return nil, fmt.Errorf("failed to purge queue memos: %w", err)
	}

	remaining, err := p.queue.PendingCount(moderator.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count remaining memos: %w", err)
	}

	return &models.Outcome{
		Message:   message,
		MemoIDs:   memoIDs,
		MemoCount: remaining,
	}, nil
}

// postFor resolves the post behind a memo: a revision memo yields its
// parent post, a post memo yields the post itself.
func (p *Processor) postFor(memo models.QueueMemo) (*models.Post, error) {
	switch memo.Activity.ContentKind {
	case models.ContentRevision:
		rev, err := p.content.GetRevision(memo.Activity.ContentID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve revision %d: %w", memo.Activity.ContentID, err)
		}
		return p.content.GetPost(rev.PostID)
	case models.ContentPost:
		return p.content.GetPost(memo.Activity.ContentID)
	default:
		return nil, fmt.Errorf("unknown content kind %q", memo.Activity.ContentKind)
	}
}

func (p *Processor) rejectPosts(memos []models.QueueMemo, reason *models.FlagReason) (string, error) {
	numPosts := 0
	for _, memo := range memos {
		post, err := p.postFor(memo)
		if errors.Is(err, ErrNotFound) {
			// Several memos may point at the same post, e.g. two offensive
			// flags on one piece of content. An earlier iteration already
			// deleted it; there is nothing left to do for this memo.
			continue
		}
		if err != nil {
			return "", err
		}
		if err := p.content.DeletePost(post.ID); err != nil {
			return "", fmt.Errorf("failed to delete post %d: %w", post.ID, err)
		}
		p.notifyRejection(post, reason)
		numPosts++
	}

	if numPosts == 0 {
		return "", nil
	}
	return countMessage(numPosts, "post", "deleted"), nil
}

// notifyRejection sends the rejection notice to the post author.
// Best-effort: the post is already deleted and stays deleted whether or
// not the notice goes out.
func (p *Processor) notifyRejection(post *models.Post, reason *models.FlagReason) {
	users, err := p.content.GetUsers([]uuid.UUID{post.AuthorID})
	if err != nil || len(users) == 0 {
		log.Printf("Warning: failed to load author of post %d for rejection notice: %v", post.ID, err)
		return
	}

	body, err := p.renderer.Render("rejected_post.html", map[string]any{
		"post":          post.HTML,
		"reject_reason": reason.Details,
	})
	if err != nil {
		log.Printf("Warning: failed to render rejection notice for post %d: %v", post.ID, err)
		return
	}

	if err := p.notifier.Send("your post was not accepted", body, users[0].Email); err != nil {
		log.Printf("Warning: failed to send rejection notice to %s: %v", users[0].Email, err)
	}
}

func (p *Processor) approvePosts(memos []models.QueueMemo) (string, error) {
	numPosts := 0
	for _, memo := range memos {
		if memo.Activity.Kind == models.KindMarkOffensive {
			// Force-clear every outstanding flag, regardless of who set it.
			post, err := p.postFor(memo)
			if err != nil {
				return "", err
			}
			if err := p.content.ClearPostFlags(post.ID); err != nil {
				return "", fmt.Errorf("failed to clear flags on post %d: %w", post.ID, err)
			}
			numPosts++
		} else if memo.Activity.ContentKind == models.ContentRevision {
			if err := p.content.ApproveRevision(memo.Activity.ContentID); err != nil {
				return "", fmt.Errorf("failed to approve revision %d: %w", memo.Activity.ContentID, err)
			}
			numPosts++
		}
	}

	if numPosts == 0 {
		return "", nil
	}
	return countMessage(numPosts, "post", "approved"), nil
}

func (p *Processor) approveUsers(moderator *models.User, memos []models.QueueMemo) (string, error) {
	editors, err := resolveEditors(p.content, memos)
	if err != nil {
		return "", err
	}
	if err := assertNotSelf(moderator, editors); err != nil {
		return "", err
	}

	for _, editor := range editors {
		if err := p.content.SetUserStatus(editor.ID, models.StatusActive); err != nil {
			return "", fmt.Errorf("failed to approve user %s: %w", editor.ID, err)
		}
	}

	if len(editors) == 0 {
		return "", nil
	}
	return countMessage(len(editors), "user", "approved"), nil
}

func (p *Processor) blockUsers(moderator *models.User, memos []models.QueueMemo) (string, error) {
	editors, err := resolveEditors(p.content, memos)
	if err != nil {
		return "", err
	}
	if err := assertNotSelf(moderator, editors); err != nil {
		return "", err
	}

	numPosts := 0
	for _, editor := range editors {
		if err := p.content.SetUserStatus(editor.ID, models.StatusBlocked); err != nil {
			return "", fmt.Errorf("failed to block user %s: %w", editor.ID, err)
		}
		n, err := p.content.DeleteContentByAuthor(editor.ID)
		if err != nil {
			return "", fmt.Errorf("failed to delete content by user %s: %w", editor.ID, err)
		}
		numPosts += n
	}

	message := ""
	if numPosts > 0 {
		message = concatMessages(message, countMessage(numPosts, "post", "deleted"))
	}
	if len(editors) > 0 {
		message = concatMessages(message, countMessage(len(editors), "user", "blocked"))
	}
	return message, nil
}

func (p *Processor) blockIPs(moderatorIP string, memos []models.QueueMemo) (string, error) {
	ipSet := make(map[string]struct{})
	for _, memo := range memos {
		if memo.Activity.ContentKind != models.ContentRevision {
			continue
		}
		rev, err := p.content.GetRevision(memo.Activity.ContentID)
		if err != nil {
			return "", fmt.Errorf("failed to resolve revision %d: %w", memo.Activity.ContentID, err)
		}
		if rev.IPAddr != "" {
			ipSet[rev.IPAddr] = struct{}{}
		}
	}

	// Never block the moderator's own address. It may also be a shared
	// proxy the whole site sits behind.
	delete(ipSet, moderatorIP)

	ips := make([]string, 0, len(ipSet))
	for ip := range ipSet {
		ips = append(ips, ip)
	}
	if len(ips) == 0 {
		return "", nil
	}

	// The cache is shared and best-effort: failures are logged and the
	// rest of the batch stands.
	existing, err := p.spamIPs.MarkPermanent(ips)
	if err != nil {
		log.Printf("Warning: failed to update spam IP cache: %v", err)
		return "", nil
	}
	for _, ip := range existing {
		delete(ipSet, ip)
	}

	numIPs := 0
	for ip := range ipSet {
		if err := p.spamIPs.InsertPermanent(ip); err != nil {
			log.Printf("Warning: failed to insert spam IP %s: %v", ip, err)
			continue
		}
		numIPs++
	}

	if numIPs == 0 {
		return "", nil
	}
	return countMessage(numIPs, "ip", "blocked"), nil
}

// assertNotSelf guards the construction invariant that the acting
// moderator never appears in a computed editor set. The eligibility filter
// should make this impossible; if it fires anyway the batch must abort
// rather than mutate the moderator's own account.
func assertNotSelf(moderator *models.User, editors []models.User) error {
	for _, editor := range editors {
		if editor.ID == moderator.ID {
			return &InvariantViolation{
				Reason: fmt.Sprintf("acting moderator %s resolved as an editor", moderator.ID),
			}
		}
	}
	return nil
}
