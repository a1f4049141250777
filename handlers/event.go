package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"

	"propfest-backend/models"
	"propfest-backend/storage"
)

type EventHandler struct {
	events *storage.EventStore
}

func NewEventHandler(events *storage.EventStore) *EventHandler {
	return &EventHandler{events: events}
}

// CreateEvent registers an AR experience with its reward thresholds and
// per-tier medal asset ids.
func (h *EventHandler) CreateEvent(c *gin.Context) {
	var req models.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !common.IsHexAddress(req.OrganizerWallet) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid organizer wallet address"})
		return
	}

	r := req.Rewards
	if r.BronzeThreshold > r.SilverThreshold || r.SilverThreshold > r.GoldThreshold {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Reward thresholds must be non-decreasing (bronze <= silver <= gold)"})
		return
	}

	event := &models.Event{
		Name:            req.Name,
		Description:     req.Description,
		OrganizerWallet: req.OrganizerWallet,
		OrganizerName:   req.OrganizerName,
		Date:            req.Date,
		Location:        req.Location,
		GameType:        req.GameType,
		GameDuration:    req.GameDuration,
		Rewards:         req.Rewards,
		Zones:           req.Zones,
	}

	if err := h.events.CreateEvent(c, event); err != nil {
		log.Printf("Error creating event: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create event"})
		return
	}

	log.Printf("Created event %s (%s)", event.ID, event.Name)
	c.JSON(http.StatusCreated, event)
}

func (h *EventHandler) GetEvent(c *gin.Context) {
	event, err := h.events.GetEvent(c, c.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrEventNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
			return
		}
		log.Printf("Error fetching event: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	c.JSON(http.StatusOK, event)
}

func (h *EventHandler) GetEvents(c *gin.Context) {
	events, err := h.events.GetEvents(c)
	if err != nil {
		log.Printf("Error fetching events: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	c.JSON(http.StatusOK, events)
}
