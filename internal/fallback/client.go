// Package fallback resolves fields the extractors left null by asking
// external inference tiers, cheapest first.
package fallback

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/inmueble/internal/cache"
	"github.com/ppiankov/inmueble/internal/extract"
	"github.com/ppiankov/inmueble/internal/llm"
	"github.com/ppiankov/inmueble/internal/metrics"
	"github.com/ppiankov/inmueble/internal/model"
	"github.com/ppiankov/inmueble/internal/worker"
)

// errNotSent marks calls that never reached the provider
var errNotSent = errors.New("request not sent")

// Tier is one escalation step
type Tier struct {
	Provider  llm.Provider
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// name is the model identifier used in cache keys and limiter buckets
func (t Tier) name() string {
	if t.Model != "" {
		return t.Model
	}
	return t.Provider.Name()
}

// Client is the inference fallback client
type Client struct {
	tiers    []Tier
	cache    cache.Cache
	recorder metrics.Recorder
	limiter  *worker.Limiter
	fields   []string
	runID    string
	now      func() time.Time
}

// Option configures a Client
type Option func(*Client)

// WithCache sets the answer cache (default: in-memory)
func WithCache(c cache.Cache) Option {
	return func(cl *Client) { cl.cache = c }
}

// WithRecorder sets the metrics sink (default: discard)
func WithRecorder(r metrics.Recorder) Option {
	return func(cl *Client) { cl.recorder = r }
}

// WithLimiter rate-limits external calls per model
func WithLimiter(l *worker.Limiter) Option {
	return func(cl *Client) { cl.limiter = l }
}

// WithFields restricts the fields inference may fill
func WithFields(fields []string) Option {
	return func(cl *Client) { cl.fields = eligible(fields) }
}

// WithRunID stamps metrics with the batch run identifier
func WithRunID(id string) Option {
	return func(cl *Client) { cl.runID = id }
}

// New creates a client over the given tiers
func New(tiers []Tier, opts ...Option) *Client {
	c := &Client{
		tiers:    tiers,
		cache:    cache.NewMemoryCache(),
		recorder: metrics.Nop{},
		fields:   eligible(model.DefaultFallbackFields),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fields returns the eligible fields, sorted
func (c *Client) Fields() []string {
	return append([]string(nil), c.fields...)
}

// Enabled reports whether any tier is configured
func (c *Client) Enabled() bool {
	return len(c.tiers) > 0
}

// Resolve asks the tiers for the eligible subset of missing. A later tier
// is only asked for what the earlier ones left unresolved. Failures are
// recorded and yield no values; they are never returned.
func (c *Client) Resolve(ctx context.Context, missing []string, text, recordID string) map[string]any {
	resolved := make(map[string]any)

	want := c.filter(missing)
	for i, tier := range c.tiers {
		if len(want) == 0 {
			break
		}

		for field, v := range c.ask(ctx, i+1, tier, text, want, recordID) {
			resolved[field] = v
		}

		want = remaining(want, resolved)
	}

	return resolved
}

// ask returns the coerced answer of one tier for fields, from the cache
// when possible.
func (c *Client) ask(ctx context.Context, tierNum int, tier Tier, text string, fields []string, recordID string) map[string]any {
	log := zap.L().With(
		zap.String("record_id", recordID),
		zap.Int("tier", tierNum),
		zap.String("model", tier.name()),
	)

	key := cache.FallbackKey(tier.name(), text, fields)
	if data, ok := c.cache.Get(key); ok {
		var raw map[string]any
		if err := json.Unmarshal(data, &raw); err == nil {
			log.Debug("fallback cache hit", zap.Strings("fields", fields))
			return coerce(raw, fields)
		}
		log.Warn("discarding unreadable cache entry", zap.String("key", key))
	}

	start := c.now()
	raw, tokens, err := c.call(ctx, tier, text, fields)
	duration := c.now().Sub(start)

	values := coerce(raw, fields)

	metric := model.Metric{
		RunID:     c.runID,
		RecordID:  recordID,
		Provider:  tier.Provider.Name(),
		Model:     tier.name(),
		Tier:      tierNum,
		Duration:  duration,
		Tokens:    tokens,
		Resolved:  len(values),
		Success:   err == nil,
		Timestamp: start,
	}
	if err != nil {
		metric.Error = err.Error()
		log.Warn("fallback call failed", zap.Duration("duration", duration), zap.Error(err))
	} else {
		log.Debug("fallback call succeeded",
			zap.Duration("duration", duration), zap.Int("tokens", tokens), zap.Int("resolved", len(values)))
	}
	if rerr := c.recorder.Record(metric); rerr != nil {
		log.Warn("recording fallback metric", zap.Error(rerr))
	}

	// A cancelled batch or an unsent request is not an answer about the text
	if ctx.Err() != nil || errors.Is(err, errNotSent) {
		return values
	}

	if raw == nil {
		raw = map[string]any{}
	}
	data, merr := json.Marshal(raw)
	if merr == nil {
		merr = c.cache.Set(key, data)
	}
	if merr != nil {
		log.Warn("storing fallback answer", zap.Error(merr))
	}

	return values
}

// call performs the rate-limited, time-bounded external request
func (c *Client) call(ctx context.Context, tier Tier, text string, fields []string) (map[string]any, int, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, tier.name()); err != nil {
			return nil, 0, fmt.Errorf("%w: %v", errNotSent, err)
		}
	}

	callCtx := ctx
	if tier.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, tier.Timeout)
		defer cancel()
	}

	resp, err := tier.Provider.Extract(callCtx, llm.ExtractRequest{
		Text:      text,
		Fields:    fields,
		Model:     tier.Model,
		MaxTokens: tier.MaxTokens,
	})
	if err != nil {
		return nil, 0, err
	}
	if resp == nil {
		return nil, 0, errors.New("empty provider response")
	}
	return resp.Values, resp.TokensUsed, nil
}

func (c *Client) filter(missing []string) []string {
	allowed := make(map[string]bool, len(c.fields))
	for _, f := range c.fields {
		allowed[f] = true
	}

	var out []string
	seen := make(map[string]bool)
	for _, f := range missing {
		if allowed[f] && !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	sort.Strings(out)
	return out
}

// eligible drops unknown and boolean fields; amenities are closed-world
func eligible(fields []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, f := range fields {
		spec, ok := model.LookupField(f)
		if !ok || spec.Kind == model.KindBool || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

func coerce(raw map[string]any, fields []string) map[string]any {
	values := make(map[string]any)
	for _, f := range fields {
		v, ok := raw[f]
		if !ok {
			continue
		}
		if cv, ok := extract.Coerce(f, v); ok {
			values[f] = cv
		}
	}
	return values
}

func remaining(fields []string, resolved map[string]any) []string {
	var out []string
	for _, f := range fields {
		if _, ok := resolved[f]; !ok {
			out = append(out, f)
		}
	}
	return out
}
