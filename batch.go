package follicle

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// BatchItem is one upload in a batch run.
type BatchItem struct {
	// Data is the raw file content.
	Data []byte
	// MediaType is the declared MIME type. Empty means sniff from content.
	MediaType string
	// Filename is the original file name.
	Filename string
}

// BatchResult holds the result for a single batch item.
type BatchResult struct {
	// Item is the original input.
	Item BatchItem
	// Outcome is the pipeline outcome (nil when Err is non-nil).
	Outcome *Outcome
	// Err is any per-item failure. One bad image never aborts the batch.
	Err error
	// Index is the position in the input slice.
	Index int
}

// BatchOptions configures a batch run.
type BatchOptions struct {
	// Workers bounds concurrent pipeline runs. 0 means runtime.NumCPU().
	Workers int
	// Consent applies to every item; a batch without consent fails whole.
	Consent bool
	// OnItem, if set, is called after each item completes with the number
	// done and the total.
	OnItem func(completed, total int)
}

// RunBatch takes many uploads through the pipeline concurrently with a
// bounded worker pool. Results keep input order. Requests are fully
// independent: cancellation of the context stops unstarted items but lets
// in-flight ones finish with the context error they observe.
func (p *Pipeline) RunBatch(ctx context.Context, items []BatchItem, opts BatchOptions) []BatchResult {
	if len(items) == 0 {
		return nil
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]BatchResult, len(items))
	var completed int
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(workers)

	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			mediaType := item.MediaType
			if mediaType == "" {
				mediaType = DetectMediaType(item.Filename, item.Data)
			}

			outcome, err := p.Run(ctx, item.Data, mediaType, item.Filename, opts.Consent)
			results[i] = BatchResult{Item: item, Outcome: outcome, Err: err, Index: i}

			if opts.OnItem != nil {
				mu.Lock()
				completed++
				done := completed
				mu.Unlock()
				opts.OnItem(done, len(items))
			}
			return nil
		})
	}

	_ = g.Wait()
	return results
}
