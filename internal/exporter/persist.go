package exporter

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/maplelane/questrade-go/pkg/secrets"
	"github.com/maplelane/questrade-go/pkg/utils"
	"github.com/maplelane/questrade-go/questrade"
)

// putSecretTimeout bounds each token write-back to the secrets store.
const putSecretTimeout = 10 * time.Second

// NewTokenPersister returns a session hook that writes each rotated refresh
// token to the secrets store so a restart can re-authenticate. The write runs
// synchronously on the hook's goroutine: refresh exchanges are serialized, so
// staying on that path guarantees writes land in rotation order and the store
// always ends up holding the newest token. A nil provider degrades to logging
// only.
func NewTokenPersister(logger *zap.Logger, provider secrets.Provider, secretID string) func(questrade.Session) {
	return func(sess questrade.Session) {
		logger.Info("questrade.session_refreshed",
			zap.String("refresh_token", utils.MaskToken(sess.RefreshToken)),
			zap.Time("expires_at", sess.ExpiresAt))

		if provider == nil {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), putSecretTimeout)
		defer cancel()

		err := provider.PutSecret(ctx, secretID, map[string]string{
			"refresh_token": sess.RefreshToken,
		})
		if err != nil {
			logger.Error("questrade.persist_token_failed",
				zap.String("secret_id", secretID),
				zap.Error(err))
		}
	}
}
