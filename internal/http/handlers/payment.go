package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type DepositRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

type WithdrawRequest struct {
	Amount            decimal.Decimal `json:"amount" binding:"required"`
	PixKey            string          `json:"pix_key" binding:"required"`
	PixKeyType        string          `json:"pix_key_type" binding:"required,oneof=cpf cnpj email phone random"`
	RecipientName     string          `json:"recipient_name" binding:"required"`
	RecipientDocument string          `json:"recipient_document" binding:"required"`
}

// CreateDeposit creates a PIX charge and returns its QR code. The wallet
// is credited only when the provider confirms payment.
func (h *Handler) CreateDeposit(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	charge, err := h.PaymentService.CreateDeposit(c.Request.Context(), userID, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"charge": charge})
}

// ListDeposits returns the user's deposit charges, newest first.
func (h *Handler) ListDeposits(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	charges, err := h.PaymentService.ListDeposits(c.Request.Context(), userID, parseLimit(c.Query("limit"), 50))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deposits": charges})
}

// RequestWithdrawal debits the wallet and submits a PIX payout.
func (h *Handler) RequestWithdrawal(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	w, err := h.PaymentService.RequestWithdrawal(c.Request.Context(), userID,
		req.Amount, req.PixKey, req.PixKeyType, req.RecipientName, req.RecipientDocument)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"withdrawal": w})
}

// ListWithdrawals returns the user's withdrawals, newest first.
func (h *Handler) ListWithdrawals(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	withdrawals, err := h.PaymentService.ListWithdrawals(c.Request.Context(), userID, parseLimit(c.Query("limit"), 50))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"withdrawals": withdrawals})
}

// PixWebhook receives settlement events from the payment provider. The
// body is read raw because the HMAC signature covers the exact bytes.
func (h *Handler) PixWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	signature := c.GetHeader("X-Signature")
	if signature == "" {
		signature = c.GetHeader("X-Webhook-Signature")
	}

	if err := h.PaymentService.HandleWebhook(c.Request.Context(), payload, signature); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
