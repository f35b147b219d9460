package fallback

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/inmueble/internal/llm"
	"github.com/ppiankov/inmueble/internal/model"
	"github.com/ppiankov/inmueble/internal/worker"
)

// Tiers builds the provider tiers of cfg and registers each tier's request
// rate on limiter. Tiers without a provider are skipped.
func Tiers(cfg model.FallbackConfig, limiter *worker.Limiter) ([]Tier, error) {
	var tiers []Tier
	for i, tc := range cfg.Tiers {
		provider, err := llm.NewProvider(llm.ConfigFromTier(tc))
		if err != nil {
			return nil, fmt.Errorf("fallback tier %d: %w", i+1, err)
		}
		if provider == nil {
			continue
		}

		tier := Tier{
			Provider:  provider,
			Model:     tc.Model,
			MaxTokens: tc.MaxTokens,
			Timeout:   time.Duration(tc.Timeout) * time.Second,
		}
		if limiter != nil {
			limiter.SetRate(tier.name(), tc.RequestsPerSecond, tc.Burst)
		}
		tiers = append(tiers, tier)
	}
	return tiers, nil
}

// Available drops the tiers whose provider does not answer its
// availability check. Order is preserved.
func Available(ctx context.Context, tiers []Tier) []Tier {
	var up []Tier
	for _, t := range tiers {
		if !t.Provider.IsAvailable(ctx) {
			zap.L().Warn("fallback tier unavailable, skipping",
				zap.String("provider", t.Provider.Name()),
				zap.String("model", t.name()))
			continue
		}
		up = append(up, t)
	}
	return up
}
