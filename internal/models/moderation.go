package models

// Moderation actions
const (
	ActionReject  = "reject-with-reason"
	ActionApprove = "approve"
	ActionBlock   = "block"
)

// Moderation item categories
const (
	ItemPosts = "posts"
	ItemUsers = "users"
	ItemIPs   = "ips"
)

// ModerateRequest is the single entry point payload of the decision engine.
type ModerateRequest struct {
	Action  string   `json:"action" binding:"required"`
	Items   []string `json:"items" binding:"required"`
	EditIDs []int64  `json:"edit_ids" binding:"required"`
	Reason  *int64   `json:"reason,omitempty"`
}

// HasItem reports whether the request targets the given item category.
func (r *ModerateRequest) HasItem(item string) bool {
	for _, it := range r.Items {
		if it == item {
			return true
		}
	}
	return false
}

// Outcome summarizes a processed moderation batch.
type Outcome struct {
	Message   string  `json:"message"`
	MemoIDs   []int64 `json:"memo_ids"`
	MemoCount int     `json:"memo_count"`
}
