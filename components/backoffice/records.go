package backoffice

import "time"

// DateLayout is how record timestamps are displayed, searched and exported.
const DateLayout = "2006-01-02 15:04"

// Payment is a customer payment for a pickup or subscription.
type Payment struct {
	ID        string        `json:"id" gorm:"primaryKey"`
	Customer  string        `json:"customer"`
	Email     string        `json:"email"`
	Amount    Kobo          `json:"amount"`
	Method    PaymentMethod `json:"method"`
	Status    PaymentStatus `json:"status"`
	Reference string        `json:"reference"`
	CreatedAt time.Time     `json:"created_at"`
}

// Commission is an agent payout for a settlement period.
type Commission struct {
	ID        string           `json:"id" gorm:"primaryKey"`
	AgentID   string           `json:"agent_id"`
	AgentName string           `json:"agent_name"`
	Period    string           `json:"period"`
	Pickups   int              `json:"pickups"`
	Amount    Kobo             `json:"amount"`
	Status    CommissionStatus `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
}

// Balance compares the expected and ledger balance of an account.
type Balance struct {
	ID          string        `json:"id" gorm:"primaryKey"`
	Account     string        `json:"account"`
	AccountType string        `json:"account_type"`
	Expected    Kobo          `json:"expected"`
	Actual      Kobo          `json:"actual"`
	Status      BalanceStatus `json:"status"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// Difference is Actual minus Expected.
func (b Balance) Difference() Kobo {
	return b.Actual - b.Expected
}

// FraudFlag is a suspicious-activity signal raised against a user or agent.
type FraudFlag struct {
	ID          string      `json:"id" gorm:"primaryKey"`
	Subject     string      `json:"subject"`
	SubjectType string      `json:"subject_type"`
	Reason      string      `json:"reason"`
	Severity    Severity    `json:"severity"`
	Status      FraudStatus `json:"status"`
	RaisedAt    time.Time   `json:"raised_at"`
}

// Referral records a user inviting another user.
type Referral struct {
	ID        string         `json:"id" gorm:"primaryKey"`
	Referrer  string         `json:"referrer"`
	Referee   string         `json:"referee"`
	Reward    Kobo           `json:"reward"`
	Status    ReferralStatus `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
}

// AgentPerformance summarises a collection agent's activity.
type AgentPerformance struct {
	ID         string      `json:"id" gorm:"primaryKey"`
	Name       string      `json:"name"`
	Region     string      `json:"region"`
	Pickups    int         `json:"pickups"`
	WeightKg   float64     `json:"weight_kg"`
	Rating     float64     `json:"rating"`
	Status     AgentStatus `json:"status"`
	LastActive time.Time   `json:"last_active"`
}

// ActiveUser is a platform user with recent recycling activity.
type ActiveUser struct {
	ID         string     `json:"id" gorm:"primaryKey"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Region     string     `json:"region"`
	RecycledKg float64    `json:"recycled_kg"`
	Status     UserStatus `json:"status"`
	LastSeen   time.Time  `json:"last_seen"`
}

// Intervention is an operator action recorded against a record.
type Intervention struct {
	ID        string             `json:"id" gorm:"primaryKey"`
	Table     string             `json:"table"`
	RecordID  string             `json:"record_id"`
	Action    string             `json:"action"`
	ActorID   string             `json:"actor_id"`
	ActorName string             `json:"actor_name"`
	Params    map[string]any     `json:"params,omitempty" gorm:"-"`
	Status    InterventionStatus `json:"status"`
	Message   string             `json:"message"`
	CreatedAt time.Time          `json:"created_at"`
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(DateLayout)
}
