// Package pipeline runs raw listings through extraction, inference
// fallback, scoring and classification.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ppiankov/inmueble/internal/classify"
	"github.com/ppiankov/inmueble/internal/extract"
	"github.com/ppiankov/inmueble/internal/model"
	"github.com/ppiankov/inmueble/internal/score"
	"github.com/ppiankov/inmueble/internal/worker"
)

// ErrMalformedInput marks records that lack an identifier or any text
var ErrMalformedInput = errors.New(model.ReasonMalformedInput)

// Resolver fills fields the extractors left null
type Resolver interface {
	// Fields returns the fields the resolver may fill
	Fields() []string

	// Resolve returns values for some of missing; it never fails
	Resolve(ctx context.Context, missing []string, text, recordID string) map[string]any
}

// Pipeline orchestrates the processing of one record
type Pipeline struct {
	config     *model.Config
	engine     *extract.Engine
	resolver   Resolver // nil when inference is disabled
	scorer     *score.Scorer
	classifier *classify.Classifier
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithResolver enables the inference fallback
func WithResolver(r Resolver) Option {
	return func(p *Pipeline) { p.resolver = r }
}

// WithRules adds suspicion rules after the default ones
func WithRules(rules ...score.Rule) Option {
	return func(p *Pipeline) {
		p.scorer = score.NewScorer(p.config.Scoring, rules...)
	}
}

// New creates a pipeline with the given configuration
func New(cfg *model.Config, opts ...Option) *Pipeline {
	if cfg == nil {
		cfg = model.DefaultConfig()
	}

	p := &Pipeline{
		config:     cfg,
		engine:     extract.NewEngine(cfg.Extraction),
		scorer:     score.NewScorer(cfg.Scoring),
		classifier: classify.New(cfg.Scoring.SuspicionThreshold),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CheckRecord reports whether raw has the minimum shape for extraction
func CheckRecord(raw model.RawRecord) error {
	if strings.TrimSpace(raw.ID) == "" {
		return fmt.Errorf("%w: %s", ErrMalformedInput, model.ReasonMissingID)
	}
	if !raw.HasText() {
		return fmt.Errorf("%w: no title or description", ErrMalformedInput)
	}
	return nil
}

// Process turns one raw record into a classified result. Malformed
// records are excluded without extraction.
func (p *Pipeline) Process(ctx context.Context, raw model.RawRecord) (*model.Result, error) {
	if err := CheckRecord(raw); err != nil {
		zap.L().Debug("excluding malformed record", zap.String("record_id", raw.ID), zap.Error(err))
		return classify.Malformed(raw), nil
	}

	doc := extract.NewDocument(raw)
	prop := model.NewProperty(raw)
	p.engine.Apply(doc, prop)

	if p.resolver != nil {
		p.fill(ctx, doc, prop)
	}

	quality := p.scorer.Score(prop)
	return &model.Result{
		Property:       prop,
		Quality:        quality,
		Classification: p.classifier.Classify(prop, quality),
	}, nil
}

// fill asks the resolver for eligible fields that are still null. Values
// never replace pattern results.
func (p *Pipeline) fill(ctx context.Context, doc extract.Document, prop *model.Property) {
	missing := prop.Missing(p.resolver.Fields())
	if len(missing) == 0 {
		return
	}

	values := p.resolver.Resolve(ctx, missing, doc.Text(), prop.ID)
	filled := 0
	for field, v := range values {
		if prop.Set(field, v, model.SourceFallback) {
			filled++
		}
	}
	if filled > 0 {
		extract.Derive(prop)
	}

	zap.L().Debug("fallback applied",
		zap.String("record_id", prop.ID),
		zap.Strings("missing", missing),
		zap.Int("filled", filled))
}

// Run processes records on the worker pool and partitions the results
func (p *Pipeline) Run(ctx context.Context, runID string, records []model.RawRecord) *model.Batch {
	processor := worker.NewBatchProcessor(p, p.config.Concurrency.Workers)

	recordResults := processor.ProcessRecords(ctx, records)
	results := make([]*model.Result, len(recordResults))
	for i, rr := range recordResults {
		results[i] = rr.Result
	}

	return Partition(runID, results)
}
