package status

import "sync"

// Snapshot is a point-in-time view of the initialization pipeline,
// shaped for the /status endpoint.
type Snapshot struct {
	Initialized   bool   `json:"initialized"`
	Initializing  bool   `json:"initializing"`
	CurrentAction string `json:"current_action"`
	Progress      int    `json:"progress"`
	NewsCount     int    `json:"news_count"`
	NewsAnalyzed  int    `json:"news_analyzed"`
}

// Tracker is the shared progress board for the collect/enrich/index pipeline.
// It replaces ad hoc global state with typed accessors; safe for concurrent use.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates an empty tracker
func NewTracker() *Tracker {
	return &Tracker{snap: Snapshot{CurrentAction: "Iniciando..."}}
}

// SetAction updates the current pipeline action and overall progress (0-100)
func (t *Tracker) SetAction(action string, progress int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	t.snap.CurrentAction = action
	t.snap.Progress = progress
}

// SetNewsCount updates the number of collected articles
func (t *Tracker) SetNewsCount(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snap.NewsCount = n
}

// SetAnalyzed updates the number of sentiment-enriched articles
func (t *Tracker) SetAnalyzed(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snap.NewsAnalyzed = n
}

// SetInitializing flags an initialization run in flight
func (t *Tracker) SetInitializing(v bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snap.Initializing = v
}

// SetInitialized flags the pipeline as having completed at least once
func (t *Tracker) SetInitialized(v bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snap.Initialized = v
}

// Snapshot returns a copy of the current state
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snap
}
