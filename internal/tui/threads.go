package tui

import (
	"context"
	"sync"

	"github.com/Phantom-VK/icrs/internal/api"
	"github.com/Phantom-VK/icrs/internal/model"
)

// threadState is one grievance's comment thread as the UI sees it. Loading,
// error, and data are independent per grievance, so one failed fetch never
// bleeds into another row.
type threadState struct {
	Loading  bool
	Loaded   bool
	Err      string
	Comments []model.Comment
}

// threadCache loads comment threads lazily, at most one fetch per grievance
// id per run unless invalidated. A failed fetch records the error and leaves
// the thread unloaded, so the next expansion retries.
type threadCache struct {
	mu      sync.Mutex
	fetch   func(ctx context.Context, id int64) ([]model.Comment, error)
	threads map[int64]*threadState
}

func newThreadCache(fetch func(ctx context.Context, id int64) ([]model.Comment, error)) *threadCache {
	return &threadCache{fetch: fetch, threads: make(map[int64]*threadState)}
}

// Load fetches the thread for id unless it is already loaded or in flight.
func (c *threadCache) Load(ctx context.Context, id int64) {
	c.mu.Lock()
	state, ok := c.threads[id]
	if !ok {
		state = &threadState{}
		c.threads[id] = state
	}
	if state.Loaded || state.Loading {
		c.mu.Unlock()
		return
	}
	state.Loading = true
	state.Err = ""
	c.mu.Unlock()

	comments, err := c.fetch(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	state.Loading = false
	if err != nil {
		state.Err = api.ErrorMessage(err, "Failed to load comments")
		return
	}
	state.Loaded = true
	state.Comments = comments
}

// State returns a snapshot for id. A missing key means "not yet loaded".
func (c *threadCache) State(id int64) threadState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if state, ok := c.threads[id]; ok {
		snapshot := *state
		snapshot.Comments = append([]model.Comment(nil), state.Comments...)
		return snapshot
	}
	return threadState{}
}

// Append folds a newly created comment into the cached thread without
// re-fetching. The thread counts as loaded afterwards.
func (c *threadCache) Append(id int64, comment model.Comment) {
	c.mu.Lock()
	defer c.mu.Unlock()
	state, ok := c.threads[id]
	if !ok {
		state = &threadState{}
		c.threads[id] = state
	}
	state.Comments = append(state.Comments, comment)
	state.Loaded = true
	state.Err = ""
}

// Invalidate drops the cached thread so the next Load fetches again.
func (c *threadCache) Invalidate(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.threads, id)
}
