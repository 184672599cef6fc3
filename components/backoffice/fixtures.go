package backoffice

import (
	"fmt"
	"strings"
	"time"
)

// FixtureEpoch anchors every generated timestamp so fixtures are reproducible.
var FixtureEpoch = time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)

var (
	fixtureNames = []string{
		"Adaeze Okafor", "Babajide Adeyemi", "Chiamaka Nwosu", "Damilola Bello",
		"Emeka Eze", "Funmilayo Ajayi", "Garba Musa", "Halima Yusuf",
		"Ifeanyi Obi", "Jumoke Balogun", "Kelechi Umeh", "Lami Abubakar",
		"Musa Danjuma", "Ngozi Chukwu", "Oluwaseun Afolabi", "Patience Etim",
	}
	fixtureRegions = []string{"Lagos", "Abuja", "Port Harcourt", "Ibadan", "Kano", "Enugu"}
	fraudReasons   = []string{
		"Duplicate pickup claims",
		"Weight readings above scale limit",
		"Multiple accounts on one device",
		"Referral loop detected",
		"Payout to flagged bank account",
		"GPS location mismatch",
	}
)

// SamplePayments returns 26 payments spread across every status and method.
func SamplePayments() []Payment {
	statuses := []PaymentStatus{PaymentSuccessful, PaymentSuccessful, PaymentPending, PaymentFailed, PaymentSuccessful, PaymentRefunded}
	methods := PaymentMethods()
	out := make([]Payment, 26)
	for i := range out {
		name := fixtureNames[i%len(fixtureNames)]
		out[i] = Payment{
			ID:        fmt.Sprintf("PAY-%04d", 1001+i),
			Customer:  name,
			Email:     fixtureEmail(name),
			Amount:    Kobo(150000 + ((i*7919)%9000)*100),
			Method:    methods[i%len(methods)],
			Status:    statuses[i%len(statuses)],
			Reference: fmt.Sprintf("RCQ-%08d", 48213177+i*37),
			CreatedAt: FixtureEpoch.Add(-time.Duration(i) * 197 * time.Minute),
		}
	}
	return out
}

// SampleCommissions returns 18 agent commissions.
func SampleCommissions() []Commission {
	statuses := []CommissionStatus{CommissionPaid, CommissionPending, CommissionPaid, CommissionOnHold, CommissionPending}
	out := make([]Commission, 18)
	for i := range out {
		agent := i % 12
		pickups := 12 + (i*13)%40
		out[i] = Commission{
			ID:        fmt.Sprintf("COM-%04d", 2001+i),
			AgentID:   agentID(agent),
			AgentName: fixtureNames[(agent+3)%len(fixtureNames)],
			Period:    FixtureEpoch.AddDate(0, -(i % 3), 0).Format("2006-01"),
			Pickups:   pickups,
			Amount:    Kobo(pickups * 35000),
			Status:    statuses[i%len(statuses)],
			CreatedAt: FixtureEpoch.Add(-time.Duration(i) * 26 * time.Hour),
		}
	}
	return out
}

// SampleBalances returns 14 account balances. Discrepancies differ from the expected amount.
func SampleBalances() []Balance {
	statuses := []BalanceStatus{BalanceReconciled, BalanceReconciled, BalanceDiscrepancy, BalanceUnderReview}
	types := []string{"agent", "user", "partner"}
	out := make([]Balance, 14)
	for i := range out {
		expected := Kobo(500000 + ((i*4111)%20000)*100)
		status := statuses[i%len(statuses)]
		actual := expected
		if status != BalanceReconciled {
			actual = expected - Kobo(((i%5)+1)*125000)
		}
		out[i] = Balance{
			ID:          fmt.Sprintf("BAL-%04d", 3001+i),
			Account:     fixtureNames[(i+5)%len(fixtureNames)],
			AccountType: types[i%len(types)],
			Expected:    expected,
			Actual:      actual,
			Status:      status,
			UpdatedAt:   FixtureEpoch.Add(-time.Duration(i) * 9 * time.Hour),
		}
	}
	return out
}

// SampleFraudFlags returns 12 fraud flags across all severities.
func SampleFraudFlags() []FraudFlag {
	statuses := []FraudStatus{FraudOpen, FraudInvestigating, FraudOpen, FraudResolved, FraudDismissed, FraudInvestigating}
	severities := Severities()
	subjects := []string{"user", "agent"}
	out := make([]FraudFlag, 12)
	for i := range out {
		out[i] = FraudFlag{
			ID:          fmt.Sprintf("FRD-%04d", 4001+i),
			Subject:     fixtureNames[(i*3)%len(fixtureNames)],
			SubjectType: subjects[i%len(subjects)],
			Reason:      fraudReasons[i%len(fraudReasons)],
			Severity:    severities[(i*3)%len(severities)],
			Status:      statuses[i%len(statuses)],
			RaisedAt:    FixtureEpoch.Add(-time.Duration(i) * 7 * time.Hour),
		}
	}
	return out
}

// SampleReferrals returns 16 referrals.
func SampleReferrals() []Referral {
	statuses := []ReferralStatus{ReferralPending, ReferralQualified, ReferralRewarded, ReferralRewarded, ReferralRejected, ReferralQualified}
	out := make([]Referral, 16)
	for i := range out {
		out[i] = Referral{
			ID:        fmt.Sprintf("REF-%04d", 5001+i),
			Referrer:  fixtureNames[i%len(fixtureNames)],
			Referee:   fixtureNames[(i+7)%len(fixtureNames)],
			Reward:    Kobo(100000 + (i%3)*50000),
			Status:    statuses[i%len(statuses)],
			CreatedAt: FixtureEpoch.Add(-time.Duration(i) * 31 * time.Hour),
		}
	}
	return out
}

// SampleAgents returns 12 collection agents.
func SampleAgents() []AgentPerformance {
	statuses := []AgentStatus{AgentActive, AgentActive, AgentInactive, AgentActive, AgentSuspended}
	out := make([]AgentPerformance, 12)
	for i := range out {
		pickups := 40 + (i*29)%160
		out[i] = AgentPerformance{
			ID:         agentID(i),
			Name:       fixtureNames[(i+3)%len(fixtureNames)],
			Region:     fixtureRegions[i%len(fixtureRegions)],
			Pickups:    pickups,
			WeightKg:   float64(pickups) * 12.5,
			Rating:     3.5 + float64((i*7)%15)/10,
			Status:     statuses[i%len(statuses)],
			LastActive: FixtureEpoch.Add(-time.Duration(i) * 5 * time.Hour),
		}
	}
	return out
}

// SampleUsers returns 24 active users.
func SampleUsers() []ActiveUser {
	statuses := []UserStatus{UserActive, UserActive, UserIdle, UserActive, UserRestricted, UserIdle}
	out := make([]ActiveUser, 24)
	for i := range out {
		name := fixtureNames[(i+1)%len(fixtureNames)]
		out[i] = ActiveUser{
			ID:         fmt.Sprintf("USR-%04d", 7001+i),
			Name:       name,
			Email:      fixtureEmail(name),
			Region:     fixtureRegions[(i*5)%len(fixtureRegions)],
			RecycledKg: float64(20+(i*17)%180) + 0.5,
			Status:     statuses[i%len(statuses)],
			LastSeen:   FixtureEpoch.Add(-time.Duration(i) * 83 * time.Minute),
		}
	}
	return out
}

func agentID(i int) string {
	return fmt.Sprintf("AGT-%04d", 6001+i)
}

func fixtureEmail(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@mail.recliq.ng"
}
