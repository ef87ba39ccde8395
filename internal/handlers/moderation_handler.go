package handlers

import (
	"database/sql"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/qboard/backend/config"
	"github.com/qboard/backend/internal/cache"
	"github.com/qboard/backend/internal/database"
	"github.com/qboard/backend/internal/models"
	"github.com/qboard/backend/internal/moderation"
	"github.com/qboard/backend/internal/repository"
)

// ModerationHandler exposes the moderation-queue decision engine over HTTP.
// Each request runs as one database transaction so concurrent batches over
// the same memos serialize.
type ModerationHandler struct {
	db       *database.DB
	userRepo *repository.UserRepository
	spamIPs  *cache.SpamIPCache
	notifier moderation.Notifier
	renderer moderation.Renderer
	redis    *cache.RedisClient
	cfg      config.ModerationConfig
}

func NewModerationHandler(
	db *database.DB,
	userRepo *repository.UserRepository,
	spamIPs *cache.SpamIPCache,
	notifier moderation.Notifier,
	renderer moderation.Renderer,
	redis *cache.RedisClient,
	cfg config.ModerationConfig,
) *ModerationHandler {
	return &ModerationHandler{
		db:       db,
		userRepo: userRepo,
		spamIPs:  spamIPs,
		notifier: notifier,
		renderer: renderer,
		redis:    redis,
		cfg:      cfg,
	}
}

// Moderate applies one moderator action to a batch of queue entries
func (h *ModerationHandler) Moderate(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		ErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	uid, ok := userID.(uuid.UUID)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	moderator, err := h.userRepo.GetByID(uid)
	if err != nil {
		ErrorResponse(c, http.StatusUnauthorized, "Unknown user")
		return
	}

	var req models.ModerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	var outcome *models.Outcome
	err = h.db.Transact(func(tx *sql.Tx) error {
		var spam moderation.SpamIPCache
		if h.spamIPs != nil {
			spam = h.spamIPs
		}

		processor := moderation.NewProcessor(
			repository.NewQueueRepository(tx),
			repository.NewContentRepository(tx),
			spam,
			h.notifier,
			h.renderer,
			moderation.Config{IPModerationEnabled: h.cfg.IPModerationEnabled},
		)

		out, err := processor.Process(moderator, c.ClientIP(), &req)
		if err != nil {
			return err
		}
		outcome = out
		return nil
	})

	if err != nil {
		var authErr *moderation.AuthorizationError
		var valErr *moderation.ValidationError
		var invErr *moderation.InvariantViolation
		switch {
		case errors.As(err, &authErr):
			ErrorResponse(c, http.StatusForbidden, authErr.Error())
		case errors.As(err, &valErr):
			ErrorResponse(c, http.StatusBadRequest, valErr.Error())
		case errors.As(err, &invErr):
			log.Printf("Moderation invariant violation: %v", invErr)
			ErrorResponse(c, http.StatusInternalServerError, "Internal moderation error")
		default:
			log.Printf("Failed to process moderation action: %v", err)
			ErrorResponse(c, http.StatusInternalServerError, "Failed to process moderation action")
		}
		return
	}

	// Push the refreshed queue count to the moderator's open connections.
	if h.redis != nil {
		event := cache.QueueEvent{UserID: moderator.ID, MemoCount: outcome.MemoCount}
		if err := h.redis.PublishQueueEvent(event); err != nil {
			log.Printf("Warning: failed to publish queue event: %v", err)
		}
	}

	c.JSON(http.StatusOK, outcome)
}
