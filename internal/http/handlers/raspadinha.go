package handlers

import (
	"net/http"

	"raspadinha_backend/internal/domain"
	"raspadinha_backend/internal/prize"
	"raspadinha_backend/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CatalogHandler serves the public scratch card catalog.
type CatalogHandler struct {
	repo *repository.RaspadinhaRepository
}

func NewCatalogHandler(db *pgxpool.Pool) *CatalogHandler {
	return &CatalogHandler{repo: repository.NewRaspadinhaRepository(db)}
}

// List returns all active scratch cards.
func (h *CatalogHandler) List(c *gin.Context) {
	items, err := h.repo.ListActive(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"raspadinhas": items})
}

// Get returns one scratch card with its full prize table, RTP and odds
// summary. The table is public so players can verify the advertised odds.
func (h *CatalogHandler) Get(c *gin.Context) {
	r, err := h.repo.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	if r == nil {
		respondError(c, domain.ErrRaspadinhaNotFound)
		return
	}

	prizes, err := h.repo.GetPrizes(c.Request.Context(), r.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"raspadinha": r,
		"prizes":     prizes,
		"rtp":        prize.CalculateRTP(prizes, r.Price),
		"stats":      prize.GetStats(prizes),
	})
}
