// Package usersink forwards backoffice activity into a go-users activity sink.
package usersink

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"

	"github.com/recliq/go-backoffice/pkg/activity"
)

// Sink is the subset of the go-users activity sink used by Hook.
type Sink interface {
	Log(ctx context.Context, record types.ActivityRecord) error
}

// Hook maps activity events to go-users activity records.
type Hook struct {
	Sink Sink
}

var _ activity.Hook = Hook{}

// Notify converts evt and logs it. Events without a verb are dropped.
func (h Hook) Notify(ctx context.Context, evt activity.Event) error {
	if h.Sink == nil {
		return nil
	}
	evt = activity.NormalizeEvent(evt)
	if evt.Verb == "" {
		return nil
	}
	record := types.ActivityRecord{
		ActorID:    parseUUID(evt.ActorID),
		UserID:     parseUUID(evt.UserID),
		TenantID:   parseUUID(evt.TenantID),
		Verb:       evt.Verb,
		ObjectType: evt.ObjectType,
		ObjectID:   evt.ObjectID,
		Channel:    evt.Channel,
		Data:       recordData(evt),
		OccurredAt: evt.OccurredAt,
	}
	if err := h.Sink.Log(ctx, record); err != nil {
		return fmt.Errorf("usersink: log %s: %w", evt.Verb, err)
	}
	return nil
}

func recordData(evt activity.Event) map[string]any {
	data := map[string]any{}
	if evt.Metadata != nil {
		data = maps.Clone(evt.Metadata)
	}
	if evt.DefinitionCode != "" {
		data["definition_code"] = evt.DefinitionCode
	}
	if len(evt.Recipients) > 0 {
		data["recipients"] = slices.Clone(evt.Recipients)
	}
	return data
}

// parseUUID returns uuid.Nil for operator identifiers that are not UUIDs.
func parseUUID(value string) uuid.UUID {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil
	}
	return id
}
