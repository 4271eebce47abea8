package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Family identifies one of the four export families the engine ingests.
type Family string

const (
	FamilyMessages     Family = "messages"
	FamilyBreakdown    Family = "breakdown"
	FamilySales        Family = "sales"
	FamilyCreatorStats Family = "creator_stats"
)

// Transaction status markers as they appear in the sales export.
const (
	StatusReverse = "Reverse"
)

// Transaction type prefixes used when splitting revenue by category.
const (
	TxTypeMessages     = "Messages"
	TxTypeSubscription = "Subscription"
	TxTypeTipsPrefix   = "Tips"
)

// MessageEvent is one outbound chat message from the message dashboard
// export. Immutable once loaded.
type MessageEvent struct {
	Sender       string
	Creator      string
	SentDate     string // calendar date, YYYY-MM-DD
	SentTime     string // wall-clock time, HH:MM[:SS]
	Hour         *int   // nil when the sent time carries no parseable hour
	Price        decimal.Decimal
	Purchased    bool
	ReplySeconds *float64 // nil when no reply latency was recorded
	Channel      string
}

// IsPPV reports whether the message carried a price.
func (e MessageEvent) IsPPV() bool {
	return e.Price.IsPositive()
}

// DedupKey is the identity used to drop rows duplicated across
// overlapping export windows.
func (e MessageEvent) DedupKey() string {
	return fmt.Sprintf("%s|%s|%s|%s|%s|%s", e.Sender, e.Creator, e.SentTime, e.SentDate, e.Price.String(), e.Channel)
}

// BreakdownRow is one (operator, creator, period) activity summary from
// the detailed breakdown export. Rows for the same pair across different
// periods are distinct observations and are combined additively, never
// deduplicated.
type BreakdownRow struct {
	Period   string // reporting period date, YYYY-MM-DD
	Operator string
	Group    string
	Creator  string

	MessagesSent int
	PPVSent      int
	PPVUnlocked  int
	FansChatted  int
	FansSpent    int
	CharCount    int

	ClockedMinutes int
	RespSeconds    *float64

	Sales             decimal.Decimal
	SalesPerHour      decimal.Decimal
	MsgsPerHour       float64
	AvgEarnPerSpender decimal.Decimal

	// Rate fields as reported by the source. Aggregates always re-derive
	// their own ratios; these survive only on per-row sublists.
	GoldenRatioPct float64
	UnlockRatePct  float64
	FanCVRPct      float64
}

// DedupKey identifies a row loaded twice from overlapping files.
func (r BreakdownRow) DedupKey() string {
	return fmt.Sprintf("%s|%s|%s", r.Period, r.Operator, r.Creator)
}

// SalesTransaction is one monetary event from the sales record export.
type SalesTransaction struct {
	Timestamp time.Time
	Operator  string // empty for unattributed transaction types
	Creator   string
	Fan       string
	Type      string
	Gross     decimal.Decimal
	Net       decimal.Decimal
	Status    string
}

// Reversed reports whether the transaction is a chargeback/refund. Such
// rows stay in the raw table but contribute nothing to revenue sums.
func (t SalesTransaction) Reversed() bool {
	return t.Status == StatusReverse
}

// Hour is the transaction's hour of day.
func (t SalesTransaction) Hour() int {
	return t.Timestamp.Hour()
}

// Date is the transaction's calendar date in YYYY-MM-DD form.
func (t SalesTransaction) Date() string {
	return t.Timestamp.Format("2006-01-02")
}

// DedupKey identifies a transaction duplicated across overlapping export
// windows. Applied only after every sales file is concatenated.
func (t SalesTransaction) DedupKey() string {
	return fmt.Sprintf("%d|%s|%s|%s|%s|%s", t.Timestamp.Unix(), t.Operator, t.Creator, t.Fan, t.Net.String(), t.Type)
}

// CreatorStatSnapshot is one creator's row from a single creator
// statistics export. Flow fields cover the file's period and sum across
// files; state fields are as-of-export-time and only the most recently
// loaded present value survives. Pointer fields are nil when the file
// left the column blank.
type CreatorStatSnapshot struct {
	Creator string

	// Flow fields (additive across files).
	SubscriptionNet   decimal.Decimal
	NewSubsNet        decimal.Decimal
	RecurringSubsNet  decimal.Decimal
	TipsNet           decimal.Decimal
	MessageNet        decimal.Decimal
	TotalEarningsNet  decimal.Decimal
	NewFans           int
	ExpiredFansChange int

	// State fields (latest present value wins).
	ActiveFans         *int
	Following          *int
	FansRenewOn        *int
	RenewOnPct         *float64
	ContributionPct    *float64
	OFRanking          *float64
	AvgSpendPerSpender *decimal.Decimal
	AvgSpendPerTx      *decimal.Decimal
	AvgEarningsPerFan  *decimal.Decimal
	AvgSubLength       *string
	Group              *string
}
