package backoffice

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ActionLog is the default ActionHandler. It accepts every validated action,
// records it as an Intervention and serves the log as a record source.
type ActionLog struct {
	mu      sync.RWMutex
	entries []Intervention
	now     func() time.Time
	newID   func() string
}

var (
	_ ActionHandler        = (*ActionLog)(nil)
	_ Source[Intervention] = (*ActionLog)(nil)
)

// NewActionLog builds an empty log.
func NewActionLog() *ActionLog {
	return &ActionLog{
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

// HandleAction records the intervention and reports it as accepted.
func (l *ActionLog) HandleAction(ctx context.Context, inv ActionInvocation) (ActionResult, error) {
	if err := ctx.Err(); err != nil {
		return ActionResult{}, err
	}
	entry := Intervention{
		ID:        l.newID(),
		Table:     inv.Table.Code,
		RecordID:  inv.RecordID,
		Action:    inv.Action.Name,
		ActorID:   inv.Viewer.UserID,
		ActorName: inv.Viewer.Name,
		Params:    maps.Clone(inv.Params),
		Status:    InterventionAccepted,
		Message:   fmt.Sprintf("%s recorded for %s", inv.Action.Label, inv.RecordID),
		CreatedAt: l.now(),
	}
	l.mu.Lock()
	l.entries = append(l.entries, entry)
	l.mu.Unlock()
	return ActionResult{
		ID:          entry.ID,
		Table:       entry.Table,
		RecordID:    entry.RecordID,
		Action:      entry.Action,
		Status:      entry.Status,
		Message:     entry.Message,
		PerformedAt: entry.CreatedAt,
	}, nil
}

// Fetch returns a copy of every recorded intervention.
func (l *ActionLog) Fetch(ctx context.Context, _ map[string]string) ([]Intervention, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return l.Entries(), nil
}

// Entries returns a copy of the log in insertion order.
func (l *ActionLog) Entries() []Intervention {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := slices.Clone(l.entries)
	for i := range out {
		out[i].Params = maps.Clone(out[i].Params)
	}
	return out
}

// Len returns the number of recorded interventions.
func (l *ActionLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
