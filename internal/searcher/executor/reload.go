package executor

import (
	"context"
	"fmt"
	"slices"

	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/pkg/kafka"
)

// ReloadHandler consumes index.built events and reloads variants from disk
// when the announced variant is one this service serves. onReload runs
// after every successful reload and may be nil.
func ReloadHandler(r *Registry, variants []index.Variant, onReload func(ctx context.Context)) kafka.MessageHandler {
	return func(ctx context.Context, _, value []byte) error {
		ev, err := kafka.DecodeJSON[analytics.IndexBuiltEvent](value)
		if err != nil {
			// malformed events are skipped rather than retried forever
			r.logger.Warn("ignoring undecodable index event", "error", err)
			return nil
		}
		v, err := index.ParseVariant(ev.Variant)
		if err != nil || !slices.Contains(variants, v) {
			r.logger.Debug("ignoring index event", "variant", ev.Variant)
			return nil
		}
		if err := r.Load(variants); err != nil {
			return fmt.Errorf("reloading after %s build: %w", v, err)
		}
		r.logger.Info("indexes reloaded", "trigger", v.String(), "terms", ev.Terms, "documents", ev.Documents)
		if onReload != nil {
			onReload(ctx)
		}
		return nil
	}
}
