// Package metrics holds the business counters exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	Purchases = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "raspadinha_purchases_total",
			Help: "Total scratch card purchases",
		},
		[]string{"slug"},
	)
	Reveals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "raspadinha_reveals_total",
			Help: "Total scratch card reveals",
		},
		[]string{"slug", "outcome"},
	)
	PrizesPaid = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "raspadinha_prizes_paid_brl_total",
			Help: "Total prize money credited, in BRL",
		},
	)
	DepositsSettled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pix_deposits_settled_total",
			Help: "PIX deposit charges settled, by final status",
		},
		[]string{"status"},
	)
	WithdrawalsSettled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pix_withdrawals_settled_total",
			Help: "PIX withdrawals settled, by final status",
		},
		[]string{"status"},
	)
	CommissionsPaid = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "affiliate_commissions_paid_total",
			Help: "Total affiliate commissions credited",
		},
	)
	RLRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limiter_requests_total",
			Help: "Total requests seen by the rate limiter",
		},
		[]string{"endpoint"},
	)
	RLBlocked = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limiter_blocked_total",
			Help: "Total requests blocked by the rate limiter",
		},
		[]string{"endpoint"},
	)
)

func init() {
	prometheus.MustRegister(Purchases)
	prometheus.MustRegister(Reveals)
	prometheus.MustRegister(PrizesPaid)
	prometheus.MustRegister(DepositsSettled)
	prometheus.MustRegister(WithdrawalsSettled)
	prometheus.MustRegister(CommissionsPaid)
	prometheus.MustRegister(RLRequests)
	prometheus.MustRegister(RLBlocked)
}
