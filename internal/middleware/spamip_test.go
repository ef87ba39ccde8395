package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

type fakeBlocklist struct {
	blocked map[string]bool
	err     error
}

func (f *fakeBlocklist) IsBlocked(ip string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.blocked[ip], nil
}

func spamIPRouter(bl IPBlocklist) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/register", BlockSpamIPs(bl), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return r
}

func registerFrom(r *gin.Engine, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/register", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestBlockSpamIPs_Blocked(t *testing.T) {
	bl := &fakeBlocklist{blocked: map[string]bool{"203.0.113.9": true}}
	r := spamIPRouter(bl)

	w := registerFrom(r, "203.0.113.9:44123")
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for blocked address, got %d", w.Code)
	}
}

func TestBlockSpamIPs_Allowed(t *testing.T) {
	bl := &fakeBlocklist{blocked: map[string]bool{"203.0.113.9": true}}
	r := spamIPRouter(bl)

	w := registerFrom(r, "198.51.100.2:44123")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for clean address, got %d", w.Code)
	}
}

func TestBlockSpamIPs_FailsOpenOnLookupError(t *testing.T) {
	bl := &fakeBlocklist{err: errors.New("redis down")}
	r := spamIPRouter(bl)

	w := registerFrom(r, "203.0.113.9:44123")
	if w.Code != http.StatusOK {
		t.Fatalf("a cache failure must not reject requests, got %d", w.Code)
	}
}
