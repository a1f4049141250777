package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"propfest-backend/models"
	"propfest-backend/voucher"
)

type VoucherHandler struct {
	verifier *voucher.Verifier
}

func NewVoucherHandler(verifier *voucher.Verifier) *VoucherHandler {
	return &VoucherHandler{verifier: verifier}
}

// Verify is the standalone, side-effect-free voucher check. Any holder
// of a voucher can confirm validity before attempting a claim; nothing
// is written.
func (h *VoucherHandler) Verify(c *gin.Context) {
	var sv models.SignedVoucher
	if err := c.ShouldBindJSON(&sv); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"valid": false, "error": err.Error()})
		return
	}

	session, err := h.verifier.Verify(c, &sv)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, voucher.ErrSessionNotFound) {
			status = http.StatusNotFound
		} else if !isVerifyFailure(err) {
			log.Printf("Error verifying voucher for session %s: %v", sv.VoucherData.SessionID, err)
			status = http.StatusInternalServerError
		}
		c.JSON(status, gin.H{"valid": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":       true,
		"voucherData": sv.VoucherData,
		"session":     session,
	})
}

// isVerifyFailure reports whether err is one of the verifier's terminal
// per-voucher reasons, as opposed to an infrastructure error.
func isVerifyFailure(err error) bool {
	return errors.Is(err, voucher.ErrTamperedPayload) ||
		errors.Is(err, voucher.ErrInvalidSignature) ||
		errors.Is(err, voucher.ErrExpired) ||
		errors.Is(err, voucher.ErrSessionNotFound) ||
		errors.Is(err, voucher.ErrAlreadyClaimed)
}
