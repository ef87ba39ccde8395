package ws

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/qboard/backend/internal/auth"
	"github.com/qboard/backend/internal/repository"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// In production, validate origin properly
		return true
	},
}

// Handler upgrades moderator connections to the queue-event stream.
type Handler struct {
	hub        *Hub
	jwtService *auth.JWTService
	userRepo   *repository.UserRepository
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, jwtService *auth.JWTService, userRepo *repository.UserRepository) *Handler {
	return &Handler{
		hub:        hub,
		jwtService: jwtService,
		userRepo:   userRepo,
	}
}

// HandleWebSocket handles WebSocket upgrade requests. Only moderators and
// administrators get a connection; the stream carries their queue counts.
func (h *Handler) HandleWebSocket(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token required"})
		return
	}

	claims, err := h.jwtService.ValidateToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	user, err := h.userRepo.GetByID(claims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unknown user"})
		return
	}
	if !user.IsAdministratorOrModerator() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Moderator role required"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection: %v", err)
		return
	}

	client := NewClient(h.hub, conn, user.ID)
	h.hub.register <- client

	go client.WritePump()
	go client.ReadPump()
}
