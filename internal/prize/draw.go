// Package prize implements the weighted prize draw for raspadinhas and the
// reporting functions operators use to audit prize tables (RTP, win
// probability). The package is pure: it never touches the database.
package prize

import (
	"crypto/rand"
	"math"
	"math/big"

	"raspadinha_backend/internal/domain"
	"raspadinha_backend/internal/logger"

	"github.com/shopspring/decimal"
)

// drawPrecision gives the uniform draw 1e-6 resolution, enough for the
// smallest configured tier probabilities.
const drawPrecision = 1000000

// probabilityTolerance is how far a prize table's probability sum may drift
// from 1.0 before we warn. Draws are never rejected for it.
const probabilityTolerance = 0.01

// Draw selects one tier from the table by weighted random choice. Tiers are
// walked in their stored order against a cumulative probability; if rounding
// drift leaves the cumulative short of 1.0, the last tier wins. That bias is
// part of the tuned behavior and must stay.
func Draw(prizes []domain.Prize) *domain.Prize {
	if len(prizes) == 0 {
		return nil
	}

	if sum := probabilitySum(prizes); math.Abs(sum-1.0) > probabilityTolerance {
		logger.Warn("prize table probabilities do not sum to 1.0",
			"raspadinha_id", prizes[0].RaspadinhaID, "sum", sum)
	}

	r := uniform()

	cumulative := 0.0
	for i := range prizes {
		cumulative += prizes[i].Probability
		if r <= cumulative {
			return &prizes[i]
		}
	}

	return &prizes[len(prizes)-1]
}

// Validate confirms the drawn tier exists in the product's current table.
// A miss means the tier was stored or passed inconsistently between draw and
// persistence; callers must abort the purchase transaction.
func Validate(won *domain.Prize, available []domain.Prize) error {
	if won == nil {
		return domain.ErrInvalidPrize
	}
	for i := range available {
		if available[i].ID == won.ID {
			return nil
		}
	}
	return domain.ErrInvalidPrize
}

// CalculateRTP returns the expected payout per ticket as a percentage of the
// ticket price. Reporting only.
func CalculateRTP(prizes []domain.Prize, price decimal.Decimal) float64 {
	if price.LessThanOrEqual(decimal.Zero) {
		return 0
	}

	expected := 0.0
	for i := range prizes {
		amount, _ := prizes[i].Amount.Float64()
		expected += amount * prizes[i].Probability
	}

	p, _ := price.Float64()
	return expected / p * 100
}

// Stats aggregates a prize table for display and auditing.
type Stats struct {
	WinProbability  float64         `json:"win_probability"`
	LossProbability float64         `json:"loss_probability"`
	MaxPrize        decimal.Decimal `json:"max_prize"`
	ExpectedPrize   float64         `json:"expected_prize"`
}

// GetStats computes aggregate win probability, its complement, the maximum
// payout and the probability-weighted average prize.
func GetStats(prizes []domain.Prize) Stats {
	s := Stats{MaxPrize: decimal.Zero}
	for i := range prizes {
		p := &prizes[i]
		amount, _ := p.Amount.Float64()
		s.ExpectedPrize += amount * p.Probability
		if p.IsWin() {
			s.WinProbability += p.Probability
		}
		if p.Amount.GreaterThan(s.MaxPrize) {
			s.MaxPrize = p.Amount
		}
	}
	s.LossProbability = 1.0 - s.WinProbability
	return s
}

func probabilitySum(prizes []domain.Prize) float64 {
	sum := 0.0
	for i := range prizes {
		sum += prizes[i].Probability
	}
	return sum
}

// uniform returns a uniform value in [0,1). crypto/rand keeps the draw
// unpredictable to clients; statistical uniformity is what the payout math
// relies on.
func uniform() float64 {
	n, err := rand.Int(rand.Reader, big.NewInt(drawPrecision))
	if err != nil {
		n = big.NewInt(drawPrecision / 2)
	}
	return float64(n.Int64()) / float64(drawPrecision)
}
