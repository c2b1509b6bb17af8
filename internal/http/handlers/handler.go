package handlers

import (
	"raspadinha_backend/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Handler struct {
	DB               *pgxpool.Pool
	AuthService      *service.AuthService
	WalletService    *service.WalletService
	PurchaseService  *service.PurchaseService
	AffiliateService *service.AffiliateService
	PaymentService   *service.PaymentService
	AuditService     *service.AuditService
}

func NewHandler(db *pgxpool.Pool, auth *service.AuthService, wallet *service.WalletService, purchase *service.PurchaseService, affiliate *service.AffiliateService, payment *service.PaymentService, audit *service.AuditService) *Handler {
	return &Handler{
		DB:               db,
		AuthService:      auth,
		WalletService:    wallet,
		PurchaseService:  purchase,
		AffiliateService: affiliate,
		PaymentService:   payment,
		AuditService:     audit,
	}
}

// getUserID extracts the authenticated user id set by the JWT middleware.
func getUserID(c interface{ Get(string) (any, bool) }) (string, bool) {
	uidVal, ok := c.Get("user_id")
	if !ok {
		return "", false
	}
	uid, ok := uidVal.(string)
	if !ok || uid == "" {
		return "", false
	}
	return uid, true
}
