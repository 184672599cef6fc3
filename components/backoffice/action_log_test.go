package backoffice

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionLogRecordsInterventions(t *testing.T) {
	log := NewActionLog()
	log.now = func() time.Time { return FixtureEpoch }
	log.newID = func() string { return "int-1" }

	params := map[string]any{"reason": "chargeback"}
	result, err := log.HandleAction(context.Background(), ActionInvocation{
		Viewer:   ViewerContext{UserID: "op-1", Name: "Ada Ops"},
		Table:    TableDescriptor{Code: TablePayments},
		RecordID: "PAY-1001",
		Action:   ActionDescriptor{Name: "refund_payment", Label: "Refund Payment"},
		Params:   params,
	})
	require.NoError(t, err)
	assert.Equal(t, "int-1", result.ID)
	assert.Equal(t, InterventionAccepted, result.Status)
	assert.Equal(t, "Refund Payment recorded for PAY-1001", result.Message)

	params["reason"] = "mutated"
	entries := log.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "chargeback", entries[0].Params["reason"])
	assert.Equal(t, "Ada Ops", entries[0].ActorName)

	fetched, err := log.Fetch(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, fetched, 1)
}

func TestActionLogHonoursCancelledContext(t *testing.T) {
	log := NewActionLog()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := log.HandleAction(ctx, ActionInvocation{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, log.Len())
}
