package exporter

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/maplelane/questrade-go/questrade"
)

type fakeProvider struct {
	mu     sync.Mutex
	stored []string
	delays []time.Duration
	err    error
}

func (f *fakeProvider) GetSecret(ctx context.Context, key string) (map[string]string, error) {
	return nil, fmt.Errorf("not implemented")
}

func (f *fakeProvider) PutSecret(ctx context.Context, key string, values map[string]string) error {
	f.mu.Lock()
	var delay time.Duration
	if n := len(f.stored); n < len(f.delays) {
		delay = f.delays[n]
	}
	f.mu.Unlock()

	// Simulate store latency outside the lock.
	time.Sleep(delay)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.stored = append(f.stored, values["refresh_token"])
	return nil
}

func (f *fakeProvider) tokens() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.stored...)
}

func sessionWithToken(token string) questrade.Session {
	return questrade.Session{
		AccessToken:  "at",
		RefreshToken: token,
		APIServer:    "https://api01.iq.questrade.com",
		ExpiresAt:    time.Now().Add(time.Hour),
	}
}

func TestTokenPersister_WriteCompletesBeforeReturn(t *testing.T) {
	provider := &fakeProvider{}
	persist := NewTokenPersister(zap.NewNop(), provider, "questrade/token")

	persist(sessionWithToken("rt-1"))

	require.Equal(t, []string{"rt-1"}, provider.tokens(),
		"the write must have landed by the time the hook returns")
}

func TestTokenPersister_SlowWriteKeepsRotationOrder(t *testing.T) {
	// First write is slow, second is fast. Refresh hooks are serialized, so
	// the persister must still store the tokens in rotation order and leave
	// the newest one as the final value.
	provider := &fakeProvider{delays: []time.Duration{50 * time.Millisecond, 0}}
	persist := NewTokenPersister(zap.NewNop(), provider, "questrade/token")

	persist(sessionWithToken("rt-1"))
	persist(sessionWithToken("rt-2"))

	tokens := provider.tokens()
	require.Equal(t, []string{"rt-1", "rt-2"}, tokens)
	assert.Equal(t, "rt-2", tokens[len(tokens)-1],
		"a restart must re-authenticate with the newest token")
}

func TestTokenPersister_NilProviderLogsOnly(t *testing.T) {
	persist := NewTokenPersister(zap.NewNop(), nil, "")

	assert.NotPanics(t, func() { persist(sessionWithToken("rt-1")) })
}

func TestTokenPersister_StoreErrorDoesNotPanic(t *testing.T) {
	provider := &fakeProvider{err: fmt.Errorf("throttled")}
	persist := NewTokenPersister(zap.NewNop(), provider, "questrade/token")

	assert.NotPanics(t, func() { persist(sessionWithToken("rt-1")) })
	assert.Empty(t, provider.tokens())
}
