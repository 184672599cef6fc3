package backoffice

import (
	"fmt"
	"strings"
)

// PaymentStatus is the settlement state of a customer payment.
type PaymentStatus string

const (
	PaymentSuccessful PaymentStatus = "successful"
	PaymentPending    PaymentStatus = "pending"
	PaymentFailed     PaymentStatus = "failed"
	PaymentRefunded   PaymentStatus = "refunded"
)

// PaymentStatuses lists every payment status.
func PaymentStatuses() []PaymentStatus {
	return []PaymentStatus{PaymentSuccessful, PaymentPending, PaymentFailed, PaymentRefunded}
}

// Tone maps the status to its display tone.
func (s PaymentStatus) Tone() Tone {
	switch s {
	case PaymentSuccessful:
		return ToneSuccess
	case PaymentPending:
		return ToneWarning
	case PaymentFailed:
		return ToneDanger
	case PaymentRefunded:
		return ToneInfo
	}
	return ToneNeutral
}

// ParsePaymentStatus rejects values outside PaymentStatuses.
func ParsePaymentStatus(value string) (PaymentStatus, error) {
	return parseStatus(value, PaymentStatuses())
}

// PaymentMethod is the channel a payment was collected through.
type PaymentMethod string

const (
	MethodCard         PaymentMethod = "card"
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodWallet       PaymentMethod = "wallet"
	MethodUSSD         PaymentMethod = "ussd"
)

// PaymentMethods lists every payment method.
func PaymentMethods() []PaymentMethod {
	return []PaymentMethod{MethodCard, MethodBankTransfer, MethodWallet, MethodUSSD}
}

// CommissionStatus tracks agent commission payouts.
type CommissionStatus string

const (
	CommissionPaid    CommissionStatus = "paid"
	CommissionPending CommissionStatus = "pending"
	CommissionOnHold  CommissionStatus = "on_hold"
)

// CommissionStatuses lists every commission status.
func CommissionStatuses() []CommissionStatus {
	return []CommissionStatus{CommissionPaid, CommissionPending, CommissionOnHold}
}

// Tone maps the status to its display tone.
func (s CommissionStatus) Tone() Tone {
	switch s {
	case CommissionPaid:
		return ToneSuccess
	case CommissionPending:
		return ToneWarning
	case CommissionOnHold:
		return ToneDanger
	}
	return ToneNeutral
}

// ParseCommissionStatus rejects values outside CommissionStatuses.
func ParseCommissionStatus(value string) (CommissionStatus, error) {
	return parseStatus(value, CommissionStatuses())
}

// BalanceStatus is the reconciliation state of a ledger balance.
type BalanceStatus string

const (
	BalanceReconciled  BalanceStatus = "reconciled"
	BalanceDiscrepancy BalanceStatus = "discrepancy"
	BalanceUnderReview BalanceStatus = "under_review"
)

// BalanceStatuses lists every balance status.
func BalanceStatuses() []BalanceStatus {
	return []BalanceStatus{BalanceReconciled, BalanceDiscrepancy, BalanceUnderReview}
}

// Tone maps the status to its display tone.
func (s BalanceStatus) Tone() Tone {
	switch s {
	case BalanceReconciled:
		return ToneSuccess
	case BalanceDiscrepancy:
		return ToneDanger
	case BalanceUnderReview:
		return ToneWarning
	}
	return ToneNeutral
}

// ParseBalanceStatus rejects values outside BalanceStatuses.
func ParseBalanceStatus(value string) (BalanceStatus, error) {
	return parseStatus(value, BalanceStatuses())
}

// FraudStatus is the investigation state of a fraud flag.
type FraudStatus string

const (
	FraudOpen          FraudStatus = "open"
	FraudInvestigating FraudStatus = "investigating"
	FraudResolved      FraudStatus = "resolved"
	FraudDismissed     FraudStatus = "dismissed"
)

// FraudStatuses lists every fraud flag status.
func FraudStatuses() []FraudStatus {
	return []FraudStatus{FraudOpen, FraudInvestigating, FraudResolved, FraudDismissed}
}

// Tone maps the status to its display tone.
func (s FraudStatus) Tone() Tone {
	switch s {
	case FraudOpen:
		return ToneDanger
	case FraudInvestigating:
		return ToneWarning
	case FraudResolved:
		return ToneSuccess
	case FraudDismissed:
		return ToneNeutral
	}
	return ToneNeutral
}

// ParseFraudStatus rejects values outside FraudStatuses.
func ParseFraudStatus(value string) (FraudStatus, error) {
	return parseStatus(value, FraudStatuses())
}

// Severity ranks fraud flags. Higher values are more severe.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Severities lists every severity from least to most severe.
func Severities() []Severity {
	return []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}
}

// Rank orders severities for sorting.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	}
	return 0
}

// Tone maps the severity to its display tone.
func (s Severity) Tone() Tone {
	switch s {
	case SeverityLow:
		return ToneInfo
	case SeverityMedium:
		return ToneWarning
	case SeverityHigh, SeverityCritical:
		return ToneDanger
	}
	return ToneNeutral
}

// ParseSeverity rejects values outside Severities.
func ParseSeverity(value string) (Severity, error) {
	return parseStatus(value, Severities())
}

// ReferralStatus tracks a referral through qualification and reward.
type ReferralStatus string

const (
	ReferralPending   ReferralStatus = "pending"
	ReferralQualified ReferralStatus = "qualified"
	ReferralRewarded  ReferralStatus = "rewarded"
	ReferralRejected  ReferralStatus = "rejected"
)

// ReferralStatuses lists every referral status.
func ReferralStatuses() []ReferralStatus {
	return []ReferralStatus{ReferralPending, ReferralQualified, ReferralRewarded, ReferralRejected}
}

// Tone maps the status to its display tone.
func (s ReferralStatus) Tone() Tone {
	switch s {
	case ReferralPending:
		return ToneWarning
	case ReferralQualified:
		return ToneInfo
	case ReferralRewarded:
		return ToneSuccess
	case ReferralRejected:
		return ToneDanger
	}
	return ToneNeutral
}

// ParseReferralStatus rejects values outside ReferralStatuses.
func ParseReferralStatus(value string) (ReferralStatus, error) {
	return parseStatus(value, ReferralStatuses())
}

// AgentStatus is the operational state of a collection agent.
type AgentStatus string

const (
	AgentActive    AgentStatus = "active"
	AgentInactive  AgentStatus = "inactive"
	AgentSuspended AgentStatus = "suspended"
)

// AgentStatuses lists every agent status.
func AgentStatuses() []AgentStatus {
	return []AgentStatus{AgentActive, AgentInactive, AgentSuspended}
}

// Tone maps the status to its display tone.
func (s AgentStatus) Tone() Tone {
	switch s {
	case AgentActive:
		return ToneSuccess
	case AgentInactive:
		return ToneNeutral
	case AgentSuspended:
		return ToneDanger
	}
	return ToneNeutral
}

// ParseAgentStatus rejects values outside AgentStatuses.
func ParseAgentStatus(value string) (AgentStatus, error) {
	return parseStatus(value, AgentStatuses())
}

// UserStatus is the account state of a platform user.
type UserStatus string

const (
	UserActive     UserStatus = "active"
	UserIdle       UserStatus = "idle"
	UserRestricted UserStatus = "restricted"
)

// UserStatuses lists every user status.
func UserStatuses() []UserStatus {
	return []UserStatus{UserActive, UserIdle, UserRestricted}
}

// Tone maps the status to its display tone.
func (s UserStatus) Tone() Tone {
	switch s {
	case UserActive:
		return ToneSuccess
	case UserIdle:
		return ToneNeutral
	case UserRestricted:
		return ToneDanger
	}
	return ToneNeutral
}

// ParseUserStatus rejects values outside UserStatuses.
func ParseUserStatus(value string) (UserStatus, error) {
	return parseStatus(value, UserStatuses())
}

// InterventionStatus is the outcome an action handler reported.
type InterventionStatus string

const (
	InterventionAccepted InterventionStatus = "accepted"
	InterventionRejected InterventionStatus = "rejected"
)

// InterventionStatuses lists every intervention status.
func InterventionStatuses() []InterventionStatus {
	return []InterventionStatus{InterventionAccepted, InterventionRejected}
}

// Tone maps the status to its display tone.
func (s InterventionStatus) Tone() Tone {
	switch s {
	case InterventionAccepted:
		return ToneSuccess
	case InterventionRejected:
		return ToneDanger
	}
	return ToneNeutral
}

// ParseInterventionStatus rejects values outside InterventionStatuses.
func ParseInterventionStatus(value string) (InterventionStatus, error) {
	return parseStatus(value, InterventionStatuses())
}

func parseStatus[S ~string](value string, allowed []S) (S, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, status := range allowed {
		if string(status) == normalized {
			return status, nil
		}
	}
	var zero S
	return zero, fmt.Errorf("%w: %q", ErrUnknownStatus, value)
}

func stringValues[S ~string](values []S) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
