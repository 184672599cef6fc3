// Package activity describes operator activity events and fans them out to hooks.
package activity

import (
	"maps"
	"slices"
	"strings"
	"time"
)

// DefaultChannel is applied to events emitted without an explicit channel.
const DefaultChannel = "backoffice"

// Event is a single operator activity entry, such as an intervention on a record.
type Event struct {
	Verb           string
	ActorID        string
	UserID         string
	TenantID       string
	ObjectType     string
	ObjectID       string
	Channel        string
	DefinitionCode string
	Recipients     []string
	Metadata       map[string]any
	OccurredAt     time.Time
}

// NormalizeEvent trims identifiers and clones mutable fields so hooks cannot
// mutate the caller's event. OccurredAt defaults to the current time.
func NormalizeEvent(evt Event) Event {
	evt.Verb = strings.TrimSpace(evt.Verb)
	evt.ActorID = strings.TrimSpace(evt.ActorID)
	evt.UserID = strings.TrimSpace(evt.UserID)
	evt.TenantID = strings.TrimSpace(evt.TenantID)
	evt.ObjectType = strings.TrimSpace(evt.ObjectType)
	evt.ObjectID = strings.TrimSpace(evt.ObjectID)
	evt.Channel = strings.TrimSpace(evt.Channel)
	evt.DefinitionCode = strings.TrimSpace(evt.DefinitionCode)
	if evt.Metadata != nil {
		evt.Metadata = maps.Clone(evt.Metadata)
	}
	if evt.Recipients != nil {
		evt.Recipients = slices.Clone(evt.Recipients)
	}
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}
	return evt
}

// Valid reports whether the event names a verb and the object it acted on.
func (e Event) Valid() bool {
	return e.Verb != "" && e.ObjectType != "" && e.ObjectID != ""
}
