package handlers

import (
	"net/http"
	"strconv"
	"time"

	"raspadinha_backend/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// purchaseView is what the API exposes for a purchase. The drawn prize is
// stripped until the card has been revealed.
type purchaseView struct {
	ID           string           `json:"id"`
	RaspadinhaID string           `json:"raspadinha_id"`
	IsRevealed   bool             `json:"is_revealed"`
	PrizeWon     *decimal.Decimal `json:"prize_won,omitempty"`
	PrizeLabel   string           `json:"prize_label,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	RevealedAt   *time.Time       `json:"revealed_at,omitempty"`
}

func toPurchaseView(p *domain.Purchase) purchaseView {
	v := purchaseView{
		ID:           p.ID,
		RaspadinhaID: p.RaspadinhaID,
		IsRevealed:   p.IsRevealed,
		CreatedAt:    p.CreatedAt,
		RevealedAt:   p.RevealedAt,
	}
	if p.IsRevealed {
		won := p.PrizeWon
		v.PrizeWon = &won
		v.PrizeLabel = p.PrizeLabel
	}
	return v
}

// Purchase buys one card of the given product. The response confirms the
// purchase and the new balance but does not disclose the drawn prize.
func (h *Handler) Purchase(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	p, wallet, err := h.PurchaseService.Purchase(c.Request.Context(), userID, c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"purchase": toPurchaseView(p),
		"wallet":   wallet,
	})
}

// Reveal scratches a purchased card, disclosing and paying its prize.
func (h *Handler) Reveal(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	p, wallet, err := h.PurchaseService.Reveal(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"purchase": toPurchaseView(p),
		"wallet":   wallet,
	})
}

// GetPurchase returns one of the user's purchases.
func (h *Handler) GetPurchase(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	p, err := h.PurchaseService.GetPurchase(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"purchase": toPurchaseView(p)})
}

// ListPurchases returns the user's purchase history, newest first.
func (h *Handler) ListPurchases(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit := parseLimit(c.Query("limit"), 50)
	purchases, err := h.PurchaseService.ListPurchases(c.Request.Context(), userID, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	views := make([]purchaseView, 0, len(purchases))
	for i := range purchases {
		views = append(views, toPurchaseView(&purchases[i]))
	}
	c.JSON(http.StatusOK, gin.H{"purchases": views})
}

func parseLimit(raw string, def int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 || n > 200 {
		return def
	}
	return n
}
