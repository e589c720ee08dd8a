package exporter

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/maplelane/questrade-go/internal/metrics"
	"github.com/maplelane/questrade-go/pkg/secrets"
	"github.com/maplelane/questrade-go/questrade"
)

// accountCacheKey is the single key under which the account list is cached.
// Account sets change rarely (new account openings), so the list is reused
// across polls until the TTL lapses.
const accountCacheKey = "accounts"

// AccountSource is the slice of the questrade client the poller needs.
type AccountSource interface {
	Accounts(ctx context.Context) ([]questrade.Account, error)
	AccountBalances(ctx context.Context, number string) (*questrade.AccountBalances, error)
}

// Poller periodically collects combined account balances and publishes them
// as Prometheus gauges.
type Poller struct {
	logger   *zap.Logger
	source   AccountSource
	interval time.Duration
	accounts *secrets.Cache[[]questrade.Account]
	stopCh   chan struct{}
}

// NewPoller constructs a balance poller. accountTTL bounds how long the
// cached account list is reused before re-listing.
func NewPoller(logger *zap.Logger, source AccountSource, interval, accountTTL time.Duration) *Poller {
	return &Poller{
		logger:   logger,
		source:   source,
		interval: interval,
		accounts: secrets.NewCache[[]questrade.Account](accountTTL),
		stopCh:   make(chan struct{}),
	}
}

// Start begins periodic polling. It blocks until ctx is cancelled or Stop is
// called, and runs one immediate poll at startup.
func (p *Poller) Start(ctx context.Context) {
	p.logger.Info("questrade.poller_started",
		zap.Duration("interval", p.interval))

	p.PollOnce(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.PollOnce(ctx)
		case <-ctx.Done():
			p.logger.Info("questrade.poller_stopped (context cancelled)")
			return
		case <-p.stopCh:
			p.logger.Info("questrade.poller_stopped (manual stop)")
			return
		}
	}
}

// Stop signals the poller to stop gracefully.
func (p *Poller) Stop() {
	close(p.stopCh)
}

// PollOnce executes one balance collection pass over all known accounts.
func (p *Poller) PollOnce(ctx context.Context) {
	accounts, err := p.listAccounts(ctx)
	if err != nil {
		metrics.IncPollError("accounts")
		p.logger.Warn("questrade.poll_accounts_failed", zap.Error(err))
		return
	}

	healthy := true
	for _, acct := range accounts {
		balances, err := p.source.AccountBalances(ctx, acct.Number)
		if err != nil {
			healthy = false
			metrics.IncPollError("balances")
			p.logger.Warn("questrade.poll_balances_failed",
				zap.String("account", acct.Number),
				zap.Error(err))
			continue
		}

		for _, b := range balances.CombinedBalances {
			cur := string(b.Currency)
			metrics.AccountCash.WithLabelValues(acct.Number, cur).Set(b.Cash.InexactFloat64())
			metrics.AccountMarketValue.WithLabelValues(acct.Number, cur).Set(b.MarketValue.InexactFloat64())
			metrics.AccountTotalEquity.WithLabelValues(acct.Number, cur).Set(b.TotalEquity.InexactFloat64())
			metrics.AccountBuyingPower.WithLabelValues(acct.Number, cur).Set(b.BuyingPower.InexactFloat64())
		}

		p.logger.Debug("questrade.poll_balances_ok",
			zap.String("account", acct.Number),
			zap.Int("currencies", len(balances.CombinedBalances)))
	}

	if healthy {
		metrics.LastPollTimestamp.SetToCurrentTime()
	}
}

func (p *Poller) listAccounts(ctx context.Context) ([]questrade.Account, error) {
	if cached, ok := p.accounts.Get(accountCacheKey); ok {
		return cached, nil
	}
	accounts, err := p.source.Accounts(ctx)
	if err != nil {
		return nil, err
	}
	p.accounts.Put(accountCacheKey, accounts)
	return accounts, nil
}
