package exporter

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/maplelane/questrade-go/internal/metrics"
	"github.com/maplelane/questrade-go/questrade"
)

type fakeSource struct {
	mu           sync.Mutex
	accountCalls int
	balanceCalls int

	accounts    []questrade.Account
	accountsErr error
	balances    map[string]*questrade.AccountBalances
}

func (f *fakeSource) Accounts(ctx context.Context) ([]questrade.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accountCalls++
	return f.accounts, f.accountsErr
}

func (f *fakeSource) AccountBalances(ctx context.Context, number string) (*questrade.AccountBalances, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balanceCalls++
	b, ok := f.balances[number]
	if !ok {
		return nil, fmt.Errorf("no balances for %s", number)
	}
	return b, nil
}

func combined(currency questrade.Currency, cash, equity string) *questrade.AccountBalances {
	return &questrade.AccountBalances{
		CombinedBalances: []questrade.Balance{{
			Currency:    currency,
			Cash:        decimal.RequireFromString(cash),
			TotalEquity: decimal.RequireFromString(equity),
		}},
	}
}

func newTestPoller(src AccountSource) *Poller {
	return NewPoller(zap.NewNop(), src, time.Minute, time.Hour)
}

func TestPollOnce_SetsBalanceGauges(t *testing.T) {
	src := &fakeSource{
		accounts: []questrade.Account{{Number: "26598145", Type: questrade.AccountTypeMargin}},
		balances: map[string]*questrade.AccountBalances{
			"26598145": combined(questrade.CurrencyCAD, "100.5", "200.25"),
		},
	}

	newTestPoller(src).PollOnce(context.Background())

	assert.InDelta(t, 100.5,
		testutil.ToFloat64(metrics.AccountCash.WithLabelValues("26598145", "CAD")), 1e-9)
	assert.InDelta(t, 200.25,
		testutil.ToFloat64(metrics.AccountTotalEquity.WithLabelValues("26598145", "CAD")), 1e-9)
}

func TestPollOnce_ReusesCachedAccountList(t *testing.T) {
	src := &fakeSource{
		accounts: []questrade.Account{{Number: "51000001"}},
		balances: map[string]*questrade.AccountBalances{
			"51000001": combined(questrade.CurrencyUSD, "1", "1"),
		},
	}

	p := newTestPoller(src)
	p.PollOnce(context.Background())
	p.PollOnce(context.Background())

	require.Equal(t, 1, src.accountCalls, "account list must come from the cache on the second poll")
	assert.Equal(t, 2, src.balanceCalls)
}

func TestPollOnce_AccountsFailureStopsPass(t *testing.T) {
	before := testutil.ToFloat64(metrics.PollErrorsTotal.WithLabelValues("accounts"))

	src := &fakeSource{accountsErr: fmt.Errorf("boom")}
	newTestPoller(src).PollOnce(context.Background())

	assert.Equal(t, 0, src.balanceCalls, "no balances fetched when the listing fails")
	assert.InDelta(t, before+1,
		testutil.ToFloat64(metrics.PollErrorsTotal.WithLabelValues("accounts")), 1e-9)
}

func TestPollOnce_BalanceFailureCountedPerAccount(t *testing.T) {
	before := testutil.ToFloat64(metrics.PollErrorsTotal.WithLabelValues("balances"))

	src := &fakeSource{
		accounts: []questrade.Account{{Number: "26598145"}, {Number: "51000001"}},
		balances: map[string]*questrade.AccountBalances{
			// 51000001 missing: its fetch fails, the other still succeeds
			"26598145": combined(questrade.CurrencyCAD, "5", "5"),
		},
	}

	newTestPoller(src).PollOnce(context.Background())

	assert.Equal(t, 2, src.balanceCalls)
	assert.InDelta(t, before+1,
		testutil.ToFloat64(metrics.PollErrorsTotal.WithLabelValues("balances")), 1e-9)
	assert.InDelta(t, 5,
		testutil.ToFloat64(metrics.AccountCash.WithLabelValues("26598145", "CAD")), 1e-9)
}

func TestStartStop(t *testing.T) {
	src := &fakeSource{}
	p := newTestPoller(src)

	done := make(chan struct{})
	go func() {
		p.Start(context.Background())
		close(done)
	}()

	p.Stop()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not stop")
	}
}
