package service

import (
	"sync"

	"github.com/google/uuid"
)

// ItemResult is the outcome of one batch item. Stage names the step that
// failed (encode, upload, update, lookup) and is empty on success.
type ItemResult struct {
	ID        uuid.UUID `json:"id"`
	Label     string    `json:"label,omitempty"`
	Succeeded bool      `json:"succeeded"`
	URL       string    `json:"url,omitempty"`
	Stage     string    `json:"stage,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// BatchReport aggregates a batch run. NothingToDo is set only for an empty
// worklist and is not an error.
type BatchReport struct {
	Processed   int          `json:"processed"`
	Succeeded   int          `json:"succeeded"`
	Failed      int          `json:"failed"`
	NothingToDo bool         `json:"nothingToDo"`
	Results     []ItemResult `json:"results"`
}

// BatchCollector accumulates per-item results from concurrent goroutines.
// Results are slotted by input index so the report keeps input order.
type BatchCollector struct {
	mu      sync.Mutex
	results []ItemResult
	filled  []bool
}

func NewBatchCollector(n int) *BatchCollector {
	return &BatchCollector{
		results: make([]ItemResult, n),
		filled:  make([]bool, n),
	}
}

func (c *BatchCollector) Succeed(i int, id uuid.UUID, label, url string) {
	c.record(i, ItemResult{ID: id, Label: label, Succeeded: true, URL: url})
}

func (c *BatchCollector) Fail(i int, id uuid.UUID, label, stage string, err error) {
	r := ItemResult{ID: id, Label: label, Stage: stage}
	if err != nil {
		r.Error = err.Error()
	}
	c.record(i, r)
}

func (c *BatchCollector) record(i int, r ItemResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i < 0 || i >= len(c.results) {
		return
	}
	c.results[i] = r
	c.filled[i] = true
}

// Report counts only recorded slots; an item that never reported is dropped.
func (c *BatchCollector) Report() BatchReport {
	c.mu.Lock()
	defer c.mu.Unlock()

	rep := BatchReport{Results: make([]ItemResult, 0, len(c.results))}
	for i, r := range c.results {
		if !c.filled[i] {
			continue
		}
		rep.Processed++
		if r.Succeeded {
			rep.Succeeded++
		} else {
			rep.Failed++
		}
		rep.Results = append(rep.Results, r)
	}
	rep.NothingToDo = len(c.results) == 0
	return rep
}
