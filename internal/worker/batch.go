package worker

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ppiankov/inmueble/internal/classify"
	"github.com/ppiankov/inmueble/internal/model"
)

// Processor turns one raw record into a classified result
type Processor interface {
	Process(ctx context.Context, raw model.RawRecord) (*model.Result, error)
}

// ProcessorFunc adapts a function to Processor
type ProcessorFunc func(ctx context.Context, raw model.RawRecord) (*model.Result, error)

// Process calls f(ctx, raw)
func (f ProcessorFunc) Process(ctx context.Context, raw model.RawRecord) (*model.Result, error) {
	return f(ctx, raw)
}

// RecordJob processes one record. Errors and panics never escape: they
// become an excluded result so the batch continues.
type RecordJob struct {
	Index     int
	Record    model.RawRecord
	Processor Processor
}

// Execute executes the record job
func (j *RecordJob) Execute(ctx context.Context) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("record processing panicked",
				zap.String("record_id", j.Record.ID), zap.Any("panic", r))
			res = &RecordResult{
				Index:  j.Index,
				Record: j.Record,
				Result: classify.InternalError(j.Record, fmt.Sprint(r)),
				Error:  fmt.Errorf("panic: %v", r),
			}
		}
	}()

	result, err := j.Processor.Process(ctx, j.Record)
	if err == nil && result == nil {
		err = fmt.Errorf("no result")
	}
	if err != nil {
		zap.L().Warn("record processing failed",
			zap.String("record_id", j.Record.ID), zap.Error(err))
		return &RecordResult{
			Index:  j.Index,
			Record: j.Record,
			Result: classify.InternalError(j.Record, err.Error()),
			Error:  err,
		}
	}

	return &RecordResult{Index: j.Index, Record: j.Record, Result: result}
}

// RecordResult represents the result of a record job. Result is always set.
type RecordResult struct {
	Index  int // Position of the record in the submitted slice
	Record model.RawRecord
	Result *model.Result
	Error  error
}

// GetError returns the processing error, if any
func (r *RecordResult) GetError() error {
	return r.Error
}

// BatchProcessor processes many records concurrently
type BatchProcessor struct {
	processor   Processor
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(processor Processor, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		processor:   processor,
		concurrency: concurrency,
	}
}

// ProcessRecords runs every record through the processor and returns one
// result per record, in completion order. Records dropped by a cancelled
// context are reported as internal errors.
func (b *BatchProcessor) ProcessRecords(ctx context.Context, records []model.RawRecord) []*RecordResult {
	if len(records) == 0 {
		return []*RecordResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for i, rec := range records {
		pool.Submit(&RecordJob{
			Index:     i,
			Record:    rec,
			Processor: b.processor,
		})
	}

	results := pool.Wait()

	done := make([]bool, len(records))
	recordResults := make([]*RecordResult, 0, len(records))
	for _, result := range results {
		rr := result.(*RecordResult)
		done[rr.Index] = true
		recordResults = append(recordResults, rr)
	}

	for i, rec := range records {
		if done[i] {
			continue
		}
		err := ctx.Err()
		if err == nil {
			err = fmt.Errorf("record not processed")
		}
		recordResults = append(recordResults, &RecordResult{
			Index:  i,
			Record: rec,
			Result: classify.InternalError(rec, err.Error()),
			Error:  err,
		})
	}

	return recordResults
}
