package handlers

import (
	"encoding/base64"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"

	"propfest-backend/claim"
	"propfest-backend/metrics"
	"propfest-backend/models"
	"propfest-backend/storage"
	"propfest-backend/voucher"
)

type ClaimHandler struct {
	orchestrator *claim.Orchestrator
}

func NewClaimHandler(orchestrator *claim.Orchestrator) *ClaimHandler {
	return &ClaimHandler{orchestrator: orchestrator}
}

// PrepareClaim is claim phase 1. It either finishes the medal transfer
// in one call (wallet already opted in) or returns the unsigned opt-in
// transaction the player has to sign first.
func (h *ClaimHandler) PrepareClaim(c *gin.Context) {
	start := time.Now()
	status := "failed"
	defer func() {
		metrics.RecordClaimDuration("prepare", status, time.Since(start).Seconds())
	}()

	var sv models.SignedVoucher
	if err := c.ShouldBindJSON(&sv); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	outcome, err := h.orchestrator.PrepareClaim(c, &sv)
	if err != nil {
		writeClaimError(c, sv.VoucherData.SessionID, err)
		return
	}
	status = "success"

	switch out := outcome.(type) {
	case claim.OptInRequired:
		c.JSON(http.StatusOK, gin.H{
			"success":     true,
			"needsOptin":  true,
			"unsignedTxn": base64.StdEncoding.EncodeToString(out.UnsignedTxn),
			"assetId":     out.AssetID,
			"tierName":    out.Tier,
			"sessionId":   out.SessionID,
		})
	case claim.Completed:
		c.JSON(http.StatusOK, gin.H{
			"success":    true,
			"needsOptin": false,
			"txId":       out.TxID,
			"assetId":    out.AssetID,
			"tierName":   out.Tier,
			"amount":     1,
			"message":    out.Tier + " medal claimed successfully!",
		})
	default:
		log.Printf("Unexpected claim outcome %T for session %s", outcome, sv.VoucherData.SessionID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to prepare reward claim"})
	}
}

// CompleteClaim is claim phase 2, called once the player has signed and
// submitted the opt-in transaction.
func (h *ClaimHandler) CompleteClaim(c *gin.Context) {
	start := time.Now()
	status := "failed"
	defer func() {
		metrics.RecordClaimDuration("complete", status, time.Since(start).Seconds())
	}()

	var req struct {
		SessionID string `json:"sessionId" binding:"required"`
		OptInTxID string `json:"optInTxId"`
		Wallet    string `json:"playerWallet" binding:"required"`
		AssetID   string `json:"asaId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !common.IsHexAddress(req.Wallet) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid wallet address"})
		return
	}

	out, err := h.orchestrator.CompleteClaim(c, claim.CompleteClaimRequest{
		SessionID: req.SessionID,
		OptInTxID: req.OptInTxID,
		Wallet:    req.Wallet,
		AssetID:   req.AssetID,
	})
	if err != nil {
		writeClaimError(c, req.SessionID, err)
		return
	}
	status = "success"

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Reward claimed successfully!",
		"txId":      out.TxID,
		"optInTxId": req.OptInTxID,
	})
}

// writeClaimError maps the claim/verifier taxonomy onto HTTP responses.
// Retryable conditions are flagged so clients know a backoff-and-retry
// is meaningful; voucher-validity failures are terminal.
func writeClaimError(c *gin.Context, sessionID string, err error) {
	switch {
	case errors.Is(err, claim.ErrWalletRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please connect your wallet before claiming rewards", "needsWallet": true})
	case errors.Is(err, voucher.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, storage.ErrEventNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, claim.ErrAssetNotConfigured):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, claim.ErrOptInNotConfirmed):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Asset opt-in not confirmed yet. Please wait a few more seconds and try again.", "needsRetry": true})
	case errors.Is(err, claim.ErrBlockchainUnavailable):
		log.Printf("Blockchain error for session %s: %v", sessionID, err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Blockchain service unavailable, please retry", "needsRetry": true})
	case isVerifyFailure(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("Error processing claim for session %s: %v", sessionID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process reward claim"})
	}
}
