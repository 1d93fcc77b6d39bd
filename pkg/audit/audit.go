// Package audit records who changed which tenant's knowledge. Entries are
// best-effort; a failing audit sink never blocks the write it describes.
package audit

import (
	"context"
	"time"

	"github.com/atento/knowledge/pkg/logger"
)

// Entry is one recorded action against a tenant's knowledge base.
type Entry struct {
	TenantID string
	Actor    string
	Action   string
	Target   string
	Detail   map[string]any
	At       time.Time
}

// Recorder accepts audit entries. Implementations must not block the
// caller on sink latency.
type Recorder interface {
	Record(ctx context.Context, entry Entry)
}

// LogRecorder writes audit entries to the application log.
type LogRecorder struct{}

func NewLogRecorder() *LogRecorder {
	return &LogRecorder{}
}

func (r *LogRecorder) Record(_ context.Context, entry Entry) {
	if entry.At.IsZero() {
		entry.At = time.Now()
	}
	logger.Info("[Audit] "+entry.Action,
		"tenant", entry.TenantID,
		"actor", entry.Actor,
		"target", entry.Target,
		"detail", entry.Detail,
	)
}

// Nop discards entries, for tests and tools that do not audit.
type Nop struct{}

func (Nop) Record(context.Context, Entry) {}
