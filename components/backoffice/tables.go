package backoffice

import (
	"cmp"
	"fmt"
	"strings"
)

// Table codes for the built-in tables.
const (
	TablePayments      = "payments"
	TableCommissions   = "commissions"
	TableBalances      = "balances"
	TableFraudFlags    = "fraud_flags"
	TableReferrals     = "referrals"
	TableAgents        = "agents"
	TableUsers         = "users"
	TableInterventions = "interventions"
)

// Sources binds each built-in table to its record source.
type Sources struct {
	Payments      Source[Payment]
	Commissions   Source[Commission]
	Balances      Source[Balance]
	FraudFlags    Source[FraudFlag]
	Referrals     Source[Referral]
	Agents        Source[AgentPerformance]
	Users         Source[ActiveUser]
	Interventions Source[Intervention]
}

// StaticSources serves the sample fixtures. Interventions come from log when set.
func StaticSources(log *ActionLog) Sources {
	src := Sources{
		Payments:    NewStaticSource(SamplePayments()),
		Commissions: NewStaticSource(SampleCommissions()),
		Balances:    NewStaticSource(SampleBalances()),
		FraudFlags:  NewStaticSource(SampleFraudFlags()),
		Referrals:   NewStaticSource(SampleReferrals()),
		Agents:      NewStaticSource(SampleAgents()),
		Users:       NewStaticSource(SampleUsers()),
	}
	if log != nil {
		src.Interventions = log
	}
	return src.withDefaults()
}

func (s Sources) withDefaults() Sources {
	if s.Payments == nil {
		s.Payments = NewStaticSource(SamplePayments())
	}
	if s.Commissions == nil {
		s.Commissions = NewStaticSource(SampleCommissions())
	}
	if s.Balances == nil {
		s.Balances = NewStaticSource(SampleBalances())
	}
	if s.FraudFlags == nil {
		s.FraudFlags = NewStaticSource(SampleFraudFlags())
	}
	if s.Referrals == nil {
		s.Referrals = NewStaticSource(SampleReferrals())
	}
	if s.Agents == nil {
		s.Agents = NewStaticSource(SampleAgents())
	}
	if s.Users == nil {
		s.Users = NewStaticSource(SampleUsers())
	}
	if s.Interventions == nil {
		s.Interventions = NewStaticSource([]Intervention{})
	}
	return s
}

// DefaultTables builds the built-in tables. Nil sources fall back to fixtures.
func DefaultTables(src Sources) ([]Table, error) {
	src = src.withDefaults()
	builders := []func() (Table, error){
		func() (Table, error) { return NewTable(PaymentsTable(), src.Payments) },
		func() (Table, error) { return NewTable(CommissionsTable(), src.Commissions) },
		func() (Table, error) { return NewTable(BalancesTable(), src.Balances) },
		func() (Table, error) { return NewTable(FraudFlagsTable(), src.FraudFlags) },
		func() (Table, error) { return NewTable(ReferralsTable(), src.Referrals) },
		func() (Table, error) { return NewTable(AgentsTable(), src.Agents) },
		func() (Table, error) { return NewTable(UsersTable(), src.Users) },
		func() (Table, error) { return NewTable(InterventionsTable(), src.Interventions) },
	}
	tables := make([]Table, 0, len(builders))
	for _, build := range builders {
		table, err := build()
		if err != nil {
			return nil, err
		}
		tables = append(tables, table)
	}
	return tables, nil
}

// PaymentsTable declares the customer payments table.
func PaymentsTable() TableDefinition[Payment] {
	return TableDefinition[Payment]{
		Code:        TablePayments,
		Name:        "Payments",
		Description: "Customer payments for pickups and subscriptions.",
		Category:    "finance",
		ID:          func(p Payment) string { return p.ID },
		Columns: []Column[Payment]{
			{Key: "id", Label: "Payment ID", Value: func(p Payment) string { return p.ID }, Searchable: true},
			{Key: "customer", Label: "Customer", Value: func(p Payment) string { return p.Customer }, Searchable: true},
			{Key: "email", Label: "Email", Value: func(p Payment) string { return p.Email }, Searchable: true},
			{Key: "amount", Label: "Amount", Value: func(p Payment) string { return p.Amount.String() }},
			{Key: "method", Label: "Method", Value: func(p Payment) string { return string(p.Method) }, Filterable: true, Options: stringValues(PaymentMethods())},
			{
				Key: "status", Label: "Status",
				Value:      func(p Payment) string { return string(p.Status) },
				Tone:       func(p Payment) Tone { return p.Status.Tone() },
				Filterable: true, Options: stringValues(PaymentStatuses()),
			},
			{Key: "reference", Label: "Reference", Value: func(p Payment) string { return p.Reference }, Searchable: true},
			{Key: "created_at", Label: "Date", Value: func(p Payment) string { return formatDate(p.CreatedAt) }},
		},
		Sorts: []SortOption[Payment]{
			{Key: "date_desc", Label: "Newest first", Compare: func(a, b Payment) int { return b.CreatedAt.Compare(a.CreatedAt) }},
			{Key: "date_asc", Label: "Oldest first", Compare: func(a, b Payment) int { return a.CreatedAt.Compare(b.CreatedAt) }},
			{Key: "amount_desc", Label: "Highest amount", Compare: func(a, b Payment) int { return cmp.Compare(b.Amount, a.Amount) }},
			{Key: "amount_asc", Label: "Lowest amount", Compare: func(a, b Payment) int { return cmp.Compare(a.Amount, b.Amount) }},
			{Key: "customer_asc", Label: "Customer A-Z", Compare: func(a, b Payment) int { return strings.Compare(a.Customer, b.Customer) }},
		},
		DefaultSort: "date_desc",
		PageSize:    10,
		Actions: []Action[Payment]{
			{
				Name: "retry_payment", Label: "Retry Payment",
				Description: "Re-submit a failed charge to the payment provider.",
				Applies:     func(p Payment) bool { return p.Status == PaymentFailed },
			},
			{
				Name: "refund_payment", Label: "Refund Payment",
				Description: "Return a settled payment to the customer.",
				Schema:      reasonSchema("reason"),
				Applies:     func(p Payment) bool { return p.Status == PaymentSuccessful },
			},
		},
		Chart: &ChartSpec[Payment]{
			Type:       ChartBar,
			Title:      "Payment volume by method",
			GroupBy:    "method",
			ValueLabel: Currency,
			Value:      func(p Payment) float64 { return p.Amount.Naira() },
		},
	}
}

// CommissionsTable declares the agent commissions table.
func CommissionsTable() TableDefinition[Commission] {
	return TableDefinition[Commission]{
		Code:        TableCommissions,
		Name:        "Commissions",
		Description: "Agent commission payouts per settlement period.",
		Category:    "finance",
		ID:          func(c Commission) string { return c.ID },
		Columns: []Column[Commission]{
			{Key: "id", Label: "Commission ID", Value: func(c Commission) string { return c.ID }, Searchable: true},
			{Key: "agent_name", Label: "Agent", Value: func(c Commission) string { return c.AgentName }, Searchable: true},
			{Key: "agent_id", Label: "Agent ID", Value: func(c Commission) string { return c.AgentID }, Searchable: true},
			{Key: "period", Label: "Period", Value: func(c Commission) string { return c.Period }, Filterable: true},
			{Key: "pickups", Label: "Pickups", Value: func(c Commission) string { return fmt.Sprint(c.Pickups) }},
			{Key: "amount", Label: "Amount", Value: func(c Commission) string { return c.Amount.String() }},
			{
				Key: "status", Label: "Status",
				Value:      func(c Commission) string { return string(c.Status) },
				Tone:       func(c Commission) Tone { return c.Status.Tone() },
				Filterable: true, Options: stringValues(CommissionStatuses()),
			},
			{Key: "created_at", Label: "Date", Value: func(c Commission) string { return formatDate(c.CreatedAt) }},
		},
		Sorts: []SortOption[Commission]{
			{Key: "date_desc", Label: "Newest first", Compare: func(a, b Commission) int { return b.CreatedAt.Compare(a.CreatedAt) }},
			{Key: "amount_desc", Label: "Highest amount", Compare: func(a, b Commission) int { return cmp.Compare(b.Amount, a.Amount) }},
			{Key: "pickups_desc", Label: "Most pickups", Compare: func(a, b Commission) int { return cmp.Compare(b.Pickups, a.Pickups) }},
			{Key: "agent_asc", Label: "Agent A-Z", Compare: func(a, b Commission) int { return strings.Compare(a.AgentName, b.AgentName) }},
		},
		DefaultSort: "date_desc",
		PageSize:    10,
		Actions: []Action[Commission]{
			{
				Name: "approve_commission", Label: "Approve Payout",
				Applies: func(c Commission) bool { return c.Status == CommissionPending || c.Status == CommissionOnHold },
			},
			{
				Name: "hold_commission", Label: "Hold Payout",
				Schema:  reasonSchema("reason"),
				Applies: func(c Commission) bool { return c.Status == CommissionPending },
			},
		},
		Chart: &ChartSpec[Commission]{
			Type:       ChartPie,
			Title:      "Commission amount by status",
			GroupBy:    "status",
			ValueLabel: Currency,
			Value:      func(c Commission) float64 { return c.Amount.Naira() },
		},
	}
}

// BalancesTable declares the balance reconciliation table.
func BalancesTable() TableDefinition[Balance] {
	return TableDefinition[Balance]{
		Code:        TableBalances,
		Name:        "Balances",
		Description: "Expected versus ledger balances per account.",
		Category:    "finance",
		ID:          func(b Balance) string { return b.ID },
		Columns: []Column[Balance]{
			{Key: "id", Label: "Balance ID", Value: func(b Balance) string { return b.ID }, Searchable: true},
			{Key: "account", Label: "Account", Value: func(b Balance) string { return b.Account }, Searchable: true},
			{Key: "account_type", Label: "Type", Value: func(b Balance) string { return b.AccountType }, Filterable: true, Options: []string{"agent", "user", "partner"}},
			{Key: "expected", Label: "Expected", Value: func(b Balance) string { return b.Expected.String() }},
			{Key: "actual", Label: "Actual", Value: func(b Balance) string { return b.Actual.String() }},
			{
				Key: "difference", Label: "Difference",
				Value: func(b Balance) string { return b.Difference().String() },
				Tone: func(b Balance) Tone {
					if b.Difference() == 0 {
						return ToneNeutral
					}
					return ToneDanger
				},
			},
			{
				Key: "status", Label: "Status",
				Value:      func(b Balance) string { return string(b.Status) },
				Tone:       func(b Balance) Tone { return b.Status.Tone() },
				Filterable: true, Options: stringValues(BalanceStatuses()),
			},
			{Key: "updated_at", Label: "Updated", Value: func(b Balance) string { return formatDate(b.UpdatedAt) }},
		},
		Sorts: []SortOption[Balance]{
			{Key: "updated_desc", Label: "Recently updated", Compare: func(a, b Balance) int { return b.UpdatedAt.Compare(a.UpdatedAt) }},
			{Key: "difference_asc", Label: "Largest shortfall", Compare: func(a, b Balance) int { return cmp.Compare(a.Difference(), b.Difference()) }},
			{Key: "account_asc", Label: "Account A-Z", Compare: func(a, b Balance) int { return strings.Compare(a.Account, b.Account) }},
		},
		DefaultSort: "updated_desc",
		PageSize:    10,
		Actions: []Action[Balance]{
			{
				Name: "flag_discrepancy", Label: "Flag Discrepancy",
				Schema: reasonSchema("note"),
				Applies: func(b Balance) bool {
					return b.Status == BalanceReconciled || b.Status == BalanceUnderReview
				},
			},
			{
				Name: "mark_reconciled", Label: "Mark Reconciled",
				Applies: func(b Balance) bool {
					return b.Status == BalanceDiscrepancy || b.Status == BalanceUnderReview
				},
			},
		},
		Chart: &ChartSpec[Balance]{
			Type:    ChartPie,
			Title:   "Balances by status",
			GroupBy: "status",
		},
	}
}

// FraudFlagsTable declares the fraud monitoring table.
func FraudFlagsTable() TableDefinition[FraudFlag] {
	return TableDefinition[FraudFlag]{
		Code:        TableFraudFlags,
		Name:        "Fraud Flags",
		Description: "Suspicious activity raised against users and agents.",
		Category:    "risk",
		ID:          func(f FraudFlag) string { return f.ID },
		Columns: []Column[FraudFlag]{
			{Key: "id", Label: "Flag ID", Value: func(f FraudFlag) string { return f.ID }, Searchable: true},
			{Key: "subject", Label: "Subject", Value: func(f FraudFlag) string { return f.Subject }, Searchable: true},
			{Key: "subject_type", Label: "Subject Type", Value: func(f FraudFlag) string { return f.SubjectType }, Filterable: true, Options: []string{"user", "agent"}},
			{Key: "reason", Label: "Reason", Value: func(f FraudFlag) string { return f.Reason }, Searchable: true},
			{
				Key: "severity", Label: "Severity",
				Value:      func(f FraudFlag) string { return string(f.Severity) },
				Tone:       func(f FraudFlag) Tone { return f.Severity.Tone() },
				Filterable: true, Options: stringValues(Severities()),
			},
			{
				Key: "status", Label: "Status",
				Value:      func(f FraudFlag) string { return string(f.Status) },
				Tone:       func(f FraudFlag) Tone { return f.Status.Tone() },
				Filterable: true, Options: stringValues(FraudStatuses()),
			},
			{Key: "raised_at", Label: "Raised", Value: func(f FraudFlag) string { return formatDate(f.RaisedAt) }},
		},
		Sorts: []SortOption[FraudFlag]{
			{Key: "raised_desc", Label: "Newest first", Compare: func(a, b FraudFlag) int { return b.RaisedAt.Compare(a.RaisedAt) }},
			{Key: "severity_desc", Label: "Most severe", Compare: func(a, b FraudFlag) int { return cmp.Compare(b.Severity.Rank(), a.Severity.Rank()) }},
		},
		DefaultSort: "raised_desc",
		PageSize:    10,
		Actions: []Action[FraudFlag]{
			{
				Name: "restrict_account", Label: "Restrict Account",
				Applies: func(f FraudFlag) bool { return f.Status == FraudOpen || f.Status == FraudInvestigating },
			},
			{
				Name: "dismiss_flag", Label: "Dismiss Flag",
				Schema:  reasonSchema("reason"),
				Applies: func(f FraudFlag) bool { return f.Status == FraudOpen || f.Status == FraudInvestigating },
			},
		},
		Chart: &ChartSpec[FraudFlag]{
			Type:    ChartBar,
			Title:   "Flags by severity",
			GroupBy: "severity",
		},
	}
}

// ReferralsTable declares the referral programme table.
func ReferralsTable() TableDefinition[Referral] {
	return TableDefinition[Referral]{
		Code:        TableReferrals,
		Name:        "Referrals",
		Description: "User referrals and their reward state.",
		Category:    "growth",
		ID:          func(r Referral) string { return r.ID },
		Columns: []Column[Referral]{
			{Key: "id", Label: "Referral ID", Value: func(r Referral) string { return r.ID }, Searchable: true},
			{Key: "referrer", Label: "Referrer", Value: func(r Referral) string { return r.Referrer }, Searchable: true},
			{Key: "referee", Label: "Referee", Value: func(r Referral) string { return r.Referee }, Searchable: true},
			{Key: "reward", Label: "Reward", Value: func(r Referral) string { return r.Reward.String() }},
			{
				Key: "status", Label: "Status",
				Value:      func(r Referral) string { return string(r.Status) },
				Tone:       func(r Referral) Tone { return r.Status.Tone() },
				Filterable: true, Options: stringValues(ReferralStatuses()),
			},
			{Key: "created_at", Label: "Date", Value: func(r Referral) string { return formatDate(r.CreatedAt) }},
		},
		Sorts: []SortOption[Referral]{
			{Key: "date_desc", Label: "Newest first", Compare: func(a, b Referral) int { return b.CreatedAt.Compare(a.CreatedAt) }},
			{Key: "reward_desc", Label: "Highest reward", Compare: func(a, b Referral) int { return cmp.Compare(b.Reward, a.Reward) }},
		},
		DefaultSort: "date_desc",
		PageSize:    10,
		Actions: []Action[Referral]{
			{
				Name: "approve_reward", Label: "Approve Reward",
				Applies: func(r Referral) bool { return r.Status == ReferralQualified },
			},
			{
				Name: "reject_referral", Label: "Reject Referral",
				Schema:  reasonSchema("reason"),
				Applies: func(r Referral) bool { return r.Status == ReferralPending || r.Status == ReferralQualified },
			},
		},
		Chart: &ChartSpec[Referral]{
			Type:    ChartPie,
			Title:   "Referrals by status",
			GroupBy: "status",
		},
	}
}

// AgentsTable declares the agent performance table.
func AgentsTable() TableDefinition[AgentPerformance] {
	return TableDefinition[AgentPerformance]{
		Code:        TableAgents,
		Name:        "Agent Performance",
		Description: "Pickups, weight collected and ratings per collection agent.",
		Category:    "operations",
		ID:          func(a AgentPerformance) string { return a.ID },
		Columns: []Column[AgentPerformance]{
			{Key: "id", Label: "Agent ID", Value: func(a AgentPerformance) string { return a.ID }, Searchable: true},
			{Key: "name", Label: "Name", Value: func(a AgentPerformance) string { return a.Name }, Searchable: true},
			{Key: "region", Label: "Region", Value: func(a AgentPerformance) string { return a.Region }, Filterable: true, Options: append([]string(nil), fixtureRegions...)},
			{Key: "pickups", Label: "Pickups", Value: func(a AgentPerformance) string { return fmt.Sprint(a.Pickups) }},
			{Key: "weight_kg", Label: "Weight (kg)", Value: func(a AgentPerformance) string { return fmt.Sprintf("%.1f", a.WeightKg) }},
			{Key: "rating", Label: "Rating", Value: func(a AgentPerformance) string { return fmt.Sprintf("%.1f", a.Rating) }},
			{
				Key: "status", Label: "Status",
				Value:      func(a AgentPerformance) string { return string(a.Status) },
				Tone:       func(a AgentPerformance) Tone { return a.Status.Tone() },
				Filterable: true, Options: stringValues(AgentStatuses()),
			},
			{Key: "last_active", Label: "Last Active", Value: func(a AgentPerformance) string { return formatDate(a.LastActive) }},
		},
		Sorts: []SortOption[AgentPerformance]{
			{Key: "pickups_desc", Label: "Most pickups", Compare: func(a, b AgentPerformance) int { return cmp.Compare(b.Pickups, a.Pickups) }},
			{Key: "rating_desc", Label: "Best rated", Compare: func(a, b AgentPerformance) int { return cmp.Compare(b.Rating, a.Rating) }},
			{Key: "weight_desc", Label: "Most weight", Compare: func(a, b AgentPerformance) int { return cmp.Compare(b.WeightKg, a.WeightKg) }},
			{Key: "name_asc", Label: "Name A-Z", Compare: func(a, b AgentPerformance) int { return strings.Compare(a.Name, b.Name) }},
		},
		DefaultSort: "pickups_desc",
		PageSize:    10,
		Actions: []Action[AgentPerformance]{
			{
				Name: "suspend_agent", Label: "Suspend Agent",
				Applies: func(a AgentPerformance) bool { return a.Status == AgentActive },
			},
			{
				Name: "reinstate_agent", Label: "Reinstate Agent",
				Applies: func(a AgentPerformance) bool { return a.Status == AgentSuspended },
			},
		},
		Chart: &ChartSpec[AgentPerformance]{
			Type:       ChartBar,
			Title:      "Weight collected by region",
			GroupBy:    "region",
			ValueLabel: "kg",
			Value:      func(a AgentPerformance) float64 { return a.WeightKg },
		},
	}
}

// UsersTable declares the active users table.
func UsersTable() TableDefinition[ActiveUser] {
	return TableDefinition[ActiveUser]{
		Code:        TableUsers,
		Name:        "Active Users",
		Description: "Users with recent recycling activity.",
		Category:    "operations",
		ID:          func(u ActiveUser) string { return u.ID },
		Columns: []Column[ActiveUser]{
			{Key: "id", Label: "User ID", Value: func(u ActiveUser) string { return u.ID }, Searchable: true},
			{Key: "name", Label: "Name", Value: func(u ActiveUser) string { return u.Name }, Searchable: true},
			{Key: "email", Label: "Email", Value: func(u ActiveUser) string { return u.Email }, Searchable: true},
			{Key: "region", Label: "Region", Value: func(u ActiveUser) string { return u.Region }, Filterable: true, Options: append([]string(nil), fixtureRegions...)},
			{Key: "recycled_kg", Label: "Recycled (kg)", Value: func(u ActiveUser) string { return fmt.Sprintf("%.1f", u.RecycledKg) }},
			{
				Key: "status", Label: "Status",
				Value:      func(u ActiveUser) string { return string(u.Status) },
				Tone:       func(u ActiveUser) Tone { return u.Status.Tone() },
				Filterable: true, Options: stringValues(UserStatuses()),
			},
			{Key: "last_seen", Label: "Last Seen", Value: func(u ActiveUser) string { return formatDate(u.LastSeen) }},
		},
		Sorts: []SortOption[ActiveUser]{
			{Key: "last_seen_desc", Label: "Recently seen", Compare: func(a, b ActiveUser) int { return b.LastSeen.Compare(a.LastSeen) }},
			{Key: "recycled_desc", Label: "Most recycled", Compare: func(a, b ActiveUser) int { return cmp.Compare(b.RecycledKg, a.RecycledKg) }},
			{Key: "name_asc", Label: "Name A-Z", Compare: func(a, b ActiveUser) int { return strings.Compare(a.Name, b.Name) }},
		},
		DefaultSort: "last_seen_desc",
		PageSize:    10,
		Actions: []Action[ActiveUser]{
			{
				Name: "restrict_account", Label: "Restrict Account",
				Applies: func(u ActiveUser) bool { return u.Status == UserActive || u.Status == UserIdle },
			},
			{
				Name: "restore_account", Label: "Restore Account",
				Applies: func(u ActiveUser) bool { return u.Status == UserRestricted },
			},
		},
		Chart: &ChartSpec[ActiveUser]{
			Type:    ChartPie,
			Title:   "Users by status",
			GroupBy: "status",
		},
	}
}

// InterventionsTable declares the audit table backed by the action log.
func InterventionsTable() TableDefinition[Intervention] {
	return TableDefinition[Intervention]{
		Code:        TableInterventions,
		Name:        "Interventions",
		Description: "Operator actions taken from the backoffice.",
		Category:    "audit",
		ID:          func(i Intervention) string { return i.ID },
		Columns: []Column[Intervention]{
			{Key: "id", Label: "Intervention ID", Value: func(i Intervention) string { return i.ID }, Searchable: true},
			{Key: "table", Label: "Table", Value: func(i Intervention) string { return i.Table }, Filterable: true},
			{Key: "record_id", Label: "Record", Value: func(i Intervention) string { return i.RecordID }, Searchable: true},
			{Key: "action", Label: "Action", Value: func(i Intervention) string { return i.Action }, Filterable: true, Searchable: true},
			{Key: "actor", Label: "Operator", Value: interventionActor, Searchable: true},
			{
				Key: "status", Label: "Status",
				Value:      func(i Intervention) string { return string(i.Status) },
				Tone:       func(i Intervention) Tone { return i.Status.Tone() },
				Filterable: true, Options: stringValues(InterventionStatuses()),
			},
			{Key: "message", Label: "Message", Value: func(i Intervention) string { return i.Message }},
			{Key: "created_at", Label: "Date", Value: func(i Intervention) string { return formatDate(i.CreatedAt) }},
		},
		Sorts: []SortOption[Intervention]{
			{Key: "date_desc", Label: "Newest first", Compare: func(a, b Intervention) int { return b.CreatedAt.Compare(a.CreatedAt) }},
			{Key: "date_asc", Label: "Oldest first", Compare: func(a, b Intervention) int { return a.CreatedAt.Compare(b.CreatedAt) }},
		},
		DefaultSort: "date_desc",
		PageSize:    20,
	}
}

func reasonSchema(field string) map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			field: map[string]any{"type": "string", "minLength": 3},
		},
		"required": []any{field},
	}
}

func interventionActor(i Intervention) string {
	if i.ActorName != "" {
		return i.ActorName
	}
	return i.ActorID
}
