package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ppiankov/civictriage/internal/model"
)

// Submitter triages and stores one complaint
type Submitter interface {
	Submit(ctx context.Context, description, locationHint string) (*model.Complaint, error)
}

// BatchItem is one complaint read from a batch file
type BatchItem struct {
	Line         int // 1-based line number in the source file
	Description  string
	LocationHint string
}

// SubmitJob submits one batch item
type SubmitJob struct {
	Index     int
	Item      BatchItem
	Submitter Submitter
	Limiter   *Limiter // Optional; gates submissions under the "submit" key
}

// Execute executes the submit job
func (j *SubmitJob) Execute(ctx context.Context) Result {
	if j.Limiter != nil {
		if err := j.Limiter.Wait(ctx, "submit"); err != nil {
			return &SubmitResult{Index: j.Index, Item: j.Item, Error: err}
		}
	}

	c, err := j.Submitter.Submit(ctx, j.Item.Description, j.Item.LocationHint)
	return &SubmitResult{
		Index:     j.Index,
		Item:      j.Item,
		Complaint: c,
		Error:     err,
	}
}

// SubmitResult represents the result of a submit job
type SubmitResult struct {
	Index     int
	Item      BatchItem
	Complaint *model.Complaint
	Error     error
}

// GetError returns the error from the submit result
func (r *SubmitResult) GetError() error {
	return r.Error
}

// BatchProcessor submits many complaints concurrently
type BatchProcessor struct {
	submitter   Submitter
	concurrency int
	limiter     *Limiter
	onResult    func(*SubmitResult)
}

// NewBatchProcessor creates a new batch processor.
// requestsPerSecond <= 0 disables submission rate limiting.
func NewBatchProcessor(submitter Submitter, concurrency int, requestsPerSecond float64, burst int) *BatchProcessor {
	var limiter *Limiter
	if requestsPerSecond > 0 {
		limiter = NewLimiter(requestsPerSecond, burst)
	}
	return &BatchProcessor{
		submitter:   submitter,
		concurrency: concurrency,
		limiter:     limiter,
	}
}

// OnResult registers a callback invoked as each result arrives (from one goroutine)
func (b *BatchProcessor) OnResult(fn func(*SubmitResult)) {
	b.onResult = fn
}

// ProcessItems submits items concurrently and returns results in input order
func (b *BatchProcessor) ProcessItems(ctx context.Context, items []BatchItem) []*SubmitResult {
	if len(items) == 0 {
		return []*SubmitResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	go func() {
		for i, item := range items {
			job := &SubmitJob{
				Index:     i,
				Item:      item,
				Submitter: b.submitter,
				Limiter:   b.limiter,
			}
			if !pool.Submit(job) {
				break
			}
		}
		pool.Close()
	}()

	results := make([]*SubmitResult, 0, len(items))
	for r := range pool.Results() {
		res := r.(*SubmitResult)
		if b.onResult != nil {
			b.onResult(res)
		}
		results = append(results, res)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Index < results[j].Index
	})

	return results
}

// ProcessFile reads complaints from a file and submits them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*SubmitResult, error) {
	items, err := ReadItemsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read complaints: %w", err)
	}

	return b.ProcessItems(ctx, items), nil
}

// ReadItemsFromFile reads complaints from a file, one per line.
// A tab separates an optional location hint from the description.
// Blank lines and lines starting with # are skipped; repeated lines are dropped.
func ReadItemsFromFile(filePath string) ([]BatchItem, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var items []BatchItem
	seen := make(map[BatchItem]bool)

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := scanner.Text()
		line := strings.TrimSpace(raw)

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		description, hint, _ := strings.Cut(raw, "\t")
		key := BatchItem{
			Description:  strings.TrimSpace(description),
			LocationHint: strings.TrimSpace(hint),
		}
		if key.Description == "" {
			continue
		}

		if !seen[key] {
			seen[key] = true
			item := key
			item.Line = lineNo
			items = append(items, item)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return items, nil
}
