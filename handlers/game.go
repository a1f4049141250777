package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"propfest-backend/metrics"
	"propfest-backend/models"
	"propfest-backend/storage"
	"propfest-backend/voucher"
)

type GameHandler struct {
	sessions *storage.SessionStore
	events   *storage.EventStore
	issuer   *voucher.Issuer
}

func NewGameHandler(sessions *storage.SessionStore, events *storage.EventStore, issuer *voucher.Issuer) *GameHandler {
	return &GameHandler{sessions: sessions, events: events, issuer: issuer}
}

// SubmitSession records a finished play, evaluates the reward tier and,
// for qualifying scores, mints a signed voucher in the same response.
func (h *GameHandler) SubmitSession(c *gin.Context) {
	var req models.CreateGameSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if *req.Score < 0 || *req.TargetsHit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Score and targets_hit must be non-negative"})
		return
	}

	event, err := h.events.GetEvent(c, req.EventID)
	if err != nil {
		if errors.Is(err, storage.ErrEventNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
			return
		}
		log.Printf("Error loading event %s: %v", req.EventID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	tier := voucher.EvaluateTier(*req.Score, event.Rewards)

	session := &models.GameSession{
		EventID:    req.EventID,
		Zone:       req.Zone,
		Score:      *req.Score,
		TargetsHit: *req.TargetsHit,
	}
	if req.PlayerWallet != "" {
		session.PlayerWallet = &req.PlayerWallet
	}
	if req.PlayerEmail != "" {
		session.PlayerEmail = &req.PlayerEmail
	}
	if name := tier.Name(); name != "" {
		session.RewardTier = &name
	}

	if err := h.sessions.CreateSession(c, session); err != nil {
		log.Printf("Error creating game session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create game session"})
		return
	}

	if err := h.events.RecordPlay(c, event.ID, session.Score); err != nil {
		// Stats drift is tolerable; the session and voucher still stand.
		log.Printf("Warning: failed to update stats for event %s: %v", event.ID, err)
	}

	var signed *models.SignedVoucher
	if tier != voucher.TierNone {
		signed, err = h.issuer.Issue(session, event)
		if err != nil {
			log.Printf("Error issuing voucher for session %s: %v", session.ID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue voucher"})
			return
		}
		metrics.VouchersIssued.WithLabelValues(tier.Name()).Inc()
		log.Printf("Issued %s voucher: session=%s event=%s points=%d", tier.Name(), session.ID, event.ID, session.Score)
	}

	resp := gin.H{
		"session": session,
		"points":  session.Score,
		"tier":    nil,
		"voucher": signed,
	}
	if name := tier.Name(); name != "" {
		resp["tier"] = name
	}
	c.JSON(http.StatusCreated, resp)
}

// GetSession returns a single game session.
func (h *GameHandler) GetSession(c *gin.Context) {
	session, err := h.sessions.GetSession(c, c.Param("id"))
	if err != nil {
		if errors.Is(err, voucher.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Game session not found"})
			return
		}
		log.Printf("Error fetching game session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	c.JSON(http.StatusOK, session)
}

// GetEventSessions lists all sessions for an event, newest first.
func (h *GameHandler) GetEventSessions(c *gin.Context) {
	sessions, err := h.sessions.GetEventSessions(c, c.Param("id"))
	if err != nil {
		log.Printf("Error fetching sessions for event %s: %v", c.Param("id"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	c.JSON(http.StatusOK, sessions)
}
