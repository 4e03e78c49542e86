package state

import (
	"sync"

	"github.com/apimock-project/apimock-go/pkg/logger"
)

// Tracker records which resource ids have been deleted within one mock
// server's lifetime. Flags are only ever set; Reset is the sole way to clear
// them and must not run concurrently with in-flight requests.
type Tracker struct {
	apiName string

	mu      sync.Mutex
	deleted map[string]bool
}

// NewTracker creates a tracker scoped to the given API name.
func NewTracker(apiName string) *Tracker {
	return &Tracker{
		apiName: apiName,
		deleted: make(map[string]bool),
	}
}

// MarkDeleted records a resource id as deleted. Idempotent.
func (t *Tracker) MarkDeleted(resourceID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.deleted[t.key(resourceID)] = true
	logger.Debugf("marked resource deleted - api:%s, id:%s", t.apiName, resourceID)
}

// IsDeleted reports whether a resource id was previously deleted.
func (t *Tracker) IsDeleted(resourceID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.deleted[t.key(resourceID)]
}

// Reset clears all recorded deletions.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.deleted = make(map[string]bool)
	logger.Debugf("reset lifecycle state - api:%s", t.apiName)
}

func (t *Tracker) key(resourceID string) string {
	return t.apiName + ":" + resourceID
}
