package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// APIRequestsTotal tracks outbound API calls by venue, method, and status.
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "questrade_api_requests_total",
			Help: "Total number of outbound API requests (by venue, method, and status).",
		},
		[]string{"venue", "method", "status"},
	)

	// APIRequestDuration measures the duration of outbound API calls.
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "questrade_api_request_duration_seconds",
			Help:    "Duration of outbound API requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms → ~16s
		},
		[]string{"venue", "method"},
	)

	// TokenExchangesTotal tracks refresh-token exchanges by result.
	TokenExchangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "questrade_token_exchanges_total",
			Help: "Total number of refresh-token exchanges at the login endpoint (by result).",
		},
		[]string{"result"},
	)

	// AccountCash reports the cash balance per account and currency.
	AccountCash = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "questrade_account_cash",
			Help: "Cash balance per account and currency (combined set).",
		},
		[]string{"account", "currency"},
	)

	// AccountMarketValue reports the market value of securities per account and currency.
	AccountMarketValue = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "questrade_account_market_value",
			Help: "Market value of all securities per account and currency (combined set).",
		},
		[]string{"account", "currency"},
	)

	// AccountTotalEquity reports total equity per account and currency.
	AccountTotalEquity = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "questrade_account_total_equity",
			Help: "Total equity per account and currency (combined set).",
		},
		[]string{"account", "currency"},
	)

	// AccountBuyingPower reports buying power per account and currency.
	AccountBuyingPower = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "questrade_account_buying_power",
			Help: "Buying power per account and currency (combined set).",
		},
		[]string{"account", "currency"},
	)

	// PollErrorsTotal tracks balance poll failures by stage.
	PollErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "questrade_poll_errors_total",
			Help: "Number of balance poll failures (by stage).",
		},
		[]string{"stage"},
	)

	// LastPollTimestamp reports the Unix time of the last successful balance poll.
	LastPollTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "questrade_last_poll_timestamp_seconds",
			Help: "Unix timestamp of the last successful balance poll.",
		},
	)
)

// IncAPIRequest increments the outbound API request counter.
func IncAPIRequest(venue, method, status string) {
	APIRequestsTotal.WithLabelValues(venue, method, status).Inc()
}

// ObserveAPIRequestDuration records the elapsed time of an outbound API request.
func ObserveAPIRequestDuration(venue, method string, elapsed time.Duration) {
	APIRequestDuration.WithLabelValues(venue, method).Observe(elapsed.Seconds())
}

// IncTokenExchange increments the token exchange counter for the given result.
func IncTokenExchange(result string) {
	TokenExchangesTotal.WithLabelValues(result).Inc()
}

// IncPollError increments the poll error counter for the given stage.
func IncPollError(stage string) {
	PollErrorsTotal.WithLabelValues(stage).Inc()
}
