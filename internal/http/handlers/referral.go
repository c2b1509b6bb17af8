package handlers

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

// GetReferralCode returns the user's referral code, creating the affiliate
// record on first request.
func (h *Handler) GetReferralCode(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	affiliate, err := h.AffiliateService.GetOrCreate(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": affiliate.ReferralCode})
}

// GetReferralLink returns a shareable signup link carrying the code.
func (h *Handler) GetReferralLink(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	affiliate, err := h.AffiliateService.GetOrCreate(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	base := os.Getenv("FRONTEND_URL")
	if base == "" {
		base = "https://raspadinha.example.com"
	}

	c.JSON(http.StatusOK, gin.H{
		"code": affiliate.ReferralCode,
		"link": base + "/registro?ref=" + affiliate.ReferralCode,
	})
}

// GetReferralStats returns the affiliate dashboard: referral counters,
// accumulated commission balance and recent commissions.
func (h *Handler) GetReferralStats(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	affiliate, commissions, err := h.AffiliateService.GetStats(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if affiliate == nil {
		c.JSON(http.StatusOK, gin.H{
			"total_referrals":    0,
			"active_referrals":   0,
			"commission_balance": "0",
			"commissions":        []any{},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total_referrals":    affiliate.TotalReferrals,
		"active_referrals":   affiliate.ActiveReferrals,
		"commission_balance": affiliate.CommissionBalance,
		"commissions":        commissions,
	})
}
