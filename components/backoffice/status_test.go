package backoffice

import (
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectTones[S interface {
	~string
	Tone() Tone
}](statuses []S) map[string]Tone {
	out := make(map[string]Tone, len(statuses))
	for _, s := range statuses {
		out[string(s)] = s.Tone()
	}
	return out
}

func TestEveryStatusHasKnownTone(t *testing.T) {
	groups := map[string]map[string]Tone{
		"payment":      collectTones(PaymentStatuses()),
		"commission":   collectTones(CommissionStatuses()),
		"balance":      collectTones(BalanceStatuses()),
		"fraud":        collectTones(FraudStatuses()),
		"severity":     collectTones(Severities()),
		"referral":     collectTones(ReferralStatuses()),
		"agent":        collectTones(AgentStatuses()),
		"user":         collectTones(UserStatuses()),
		"intervention": collectTones(InterventionStatuses()),
	}
	for group, tones := range groups {
		require.NotEmpty(t, tones, group)
		for status, tone := range tones {
			assert.True(t, slices.Contains(Tones(), tone), "%s %s has tone %q", group, status, tone)
		}
	}
}

func TestPaymentStatusTones(t *testing.T) {
	assert.Equal(t, ToneSuccess, PaymentSuccessful.Tone())
	assert.Equal(t, ToneWarning, PaymentPending.Tone())
	assert.Equal(t, ToneDanger, PaymentFailed.Tone())
	assert.Equal(t, ToneInfo, PaymentRefunded.Tone())
}

func TestToneCSSClass(t *testing.T) {
	seen := map[string]bool{}
	for _, tone := range Tones() {
		class := tone.CSSClass()
		assert.False(t, seen[class], "duplicate class %s", class)
		seen[class] = true
	}
	assert.Equal(t, "badge-danger", ToneDanger.CSSClass())
}

func TestParseStatus(t *testing.T) {
	status, err := ParsePaymentStatus(" Failed ")
	require.NoError(t, err)
	assert.Equal(t, PaymentFailed, status)

	_, err = ParseFraudStatus("closed")
	assert.ErrorIs(t, err, ErrUnknownStatus)

	severity, err := ParseSeverity("CRITICAL")
	require.NoError(t, err)
	assert.Greater(t, severity.Rank(), SeverityHigh.Rank())
}

func TestKoboString(t *testing.T) {
	assert.Equal(t, "NGN 12,500.00", Kobo(1250000).String())
	assert.Equal(t, "NGN 0.05", Kobo(5).String())
	assert.Equal(t, "-NGN 1,250.50", Kobo(-125050).String())
	assert.Equal(t, "-NGN 92,233,720,368,547,758.08", Kobo(math.MinInt64).String())
	assert.Equal(t, "NGN 92,233,720,368,547,758.07", Kobo(math.MaxInt64).String())
	assert.InDelta(t, 12500.0, Kobo(1250000).Naira(), 0.001)
}

func TestBalanceDifference(t *testing.T) {
	b := Balance{Expected: 500000, Actual: 375000}
	assert.Equal(t, Kobo(-125000), b.Difference())
}
