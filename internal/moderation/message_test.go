package moderation

import "testing"

func TestCountMessage(t *testing.T) {
	tests := []struct {
		n    int
		noun string
		verb string
		want string
	}{
		{1, "post", "deleted", "1 post deleted"},
		{3, "post", "deleted", "3 posts deleted"},
		{1, "user", "blocked", "1 user blocked"},
		{2, "ip", "blocked", "2 ips blocked"},
		{0, "post", "approved", "0 posts approved"},
	}

	for _, tt := range tests {
		if got := countMessage(tt.n, tt.noun, tt.verb); got != tt.want {
			t.Errorf("countMessage(%d, %q, %q) = %q, want %q", tt.n, tt.noun, tt.verb, got, tt.want)
		}
	}
}

func TestConcatMessages(t *testing.T) {
	tests := []struct {
		a, b string
		want string
	}{
		{"", "", ""},
		{"3 posts deleted", "", "3 posts deleted"},
		{"", "1 user blocked", "1 user blocked"},
		{"3 posts deleted", "1 user blocked", "3 posts deleted, 1 user blocked"},
	}

	for _, tt := range tests {
		if got := concatMessages(tt.a, tt.b); got != tt.want {
			t.Errorf("concatMessages(%q, %q) = %q, want %q", tt.a, tt.b, got, tt.want)
		}
	}
}
