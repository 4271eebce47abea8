// Package domain defines the dashboard aggregate: the single output
// record the reporting front-end renders.
package domain

import (
	"time"

	"github.com/carlosribasgomez/chatters-dashboard/internal/kpi"
)

// Report is the full multi-dimensional aggregate for one report period.
type Report struct {
	PeriodLabel string    `json:"report_period"`
	GeneratedAt time.Time `json:"generated_at"`

	General         GeneralKPIs `json:"general"`
	PeakTrafficHour PeakTraffic `json:"peak_traffic_hour"`
	PeakSalesHour   PeakSales   `json:"peak_sales_hour"`

	Hourly    []HourlyBucket   `json:"hourly"` // always 24 entries
	Daily     []DailyBucket    `json:"daily"`
	Shifts    []ShiftSummary   `json:"shifts"`
	Creators  []CreatorReport  `json:"creators"`
	Operators []OperatorReport `json:"operators"`
}

// GeneralKPIs is the global summary across every reconciled row.
type GeneralKPIs struct {
	TotalMessages   int `json:"total_messages"`
	RawTransactions int `json:"raw_transactions"` // includes reversed rows
	Transactions    int `json:"transactions"`

	TotalNetRevenue      float64 `json:"total_net_revenue"`
	MsgRevenue           float64 `json:"msg_revenue"`
	SubRevenue           float64 `json:"sub_revenue"`
	TipsRevenue          float64 `json:"tips_revenue"`
	NewSubsRevenue       float64 `json:"new_subs_revenue"`
	RecurringSubsRevenue float64 `json:"recurring_subs_revenue"`
	ChatterSales         float64 `json:"chatter_attributed_sales"`

	TotalPPVSent     int `json:"total_ppv_sent"`
	TotalPPVUnlocked int `json:"total_ppv_unlocked"`
	TotalFansChatted int `json:"total_fans_chatted"`
	TotalNewFans     int `json:"total_new_fans"`
	TotalActiveFans  int `json:"total_active_fans"`

	GoldenRatio float64 `json:"golden_ratio"`
	UnlockRatio float64 `json:"unlock_ratio"`

	Latency kpi.LatencyStats `json:"latency"`

	TotalOperators int `json:"total_chatters"`
	TotalCreators  int `json:"total_models"`
}

// PeakTraffic marks the busiest hour by message volume.
type PeakTraffic struct {
	HourLabel string `json:"hour_label"`
	Messages  int    `json:"messages"`
}

// PeakSales marks the strongest hour by net revenue.
type PeakSales struct {
	HourLabel string  `json:"hour_label"`
	Revenue   float64 `json:"revenue"`
}

// HourlyBucket is one hour-of-day slice of the dataset.
type HourlyBucket struct {
	Hour      int    `json:"hour"`
	HourLabel string `json:"hour_label"`
	Shift     string `json:"shift"`

	Messages int `json:"messages"`
	PPVSent  int `json:"ppv_sent"`

	SalesNet    float64 `json:"sales_net"`
	MsgSalesNet float64 `json:"msg_sales_net"`
	SubSalesNet float64 `json:"sub_sales_net"`
	TipsNet     float64 `json:"tips_net"`

	Transactions int `json:"transactions"`
}

// DailyBucket is one calendar-day slice of the dataset.
type DailyBucket struct {
	Date string `json:"date"` // YYYY-MM-DD

	Messages int `json:"messages"`
	PPVSent  int `json:"ppv_sent"`

	SalesNet    float64 `json:"sales_net"`
	MsgSalesNet float64 `json:"msg_sales_net"`
	SubSalesNet float64 `json:"sub_sales_net"`
	TipsNet     float64 `json:"tips_net"`

	Transactions int `json:"transactions"`
}

// RevenueEntry is one row of a shift's top-10 list.
type RevenueEntry struct {
	Name    string  `json:"name"`
	Revenue float64 `json:"revenue"`
}

// ShiftSummary is one of the three fixed 8-hour staffing windows.
type ShiftSummary struct {
	Key   string `json:"key"`
	Label string `json:"label"`

	Messages     int     `json:"messages"`
	PPVSent      int     `json:"ppv_sent"`
	SalesNet     float64 `json:"sales_net"`
	MsgSales     float64 `json:"msg_sales"`
	SubSales     float64 `json:"sub_sales"`
	TipsSales    float64 `json:"tips_sales"`
	Transactions int     `json:"transactions"`

	Latency kpi.LatencyStats `json:"latency"`

	Hourly       []HourlyBucket `json:"hourly"`
	TopCreators  []RevenueEntry `json:"top_models"`
	TopOperators []RevenueEntry `json:"top_chatters"`
}

// SparseHourPoint is one active hour in a per-entity hourly series; hours
// with no activity are omitted.
type SparseHourPoint struct {
	Hour      int     `json:"hour"`
	HourLabel string  `json:"hour_label"`
	Messages  int     `json:"messages"`
	SalesNet  float64 `json:"sales_net"`
}

// PairSummary is one (operator, creator) cross-table row: the operator
// sublist on a creator, or the creator sublist on an operator. Counts
// sum across the pair's rows; rate fields average over days worked.
type PairSummary struct {
	Name  string `json:"name"`
	Group string `json:"group,omitempty"`

	Sales        float64 `json:"sales"`
	MessagesSent int     `json:"messages_sent"`
	PPVSent      int     `json:"ppv_sent"`
	PPVUnlocked  int     `json:"ppv_unlocked"`
	GoldenRatio  float64 `json:"golden_ratio"`
	UnlockRatio  float64 `json:"unlock_ratio"`
	FansChatted  int     `json:"fans_chatted"`
	FansSpent    int     `json:"fans_spent"`
	FanCVR       float64 `json:"fan_cvr"`

	ResponseSeconds float64 `json:"response_seconds"`
	ResponseTime    string  `json:"response_time"`
	ClockedMinutes  int     `json:"clocked_minutes"`
	SalesPerHour    float64 `json:"sales_per_hour"`
	MsgsPerHour     float64 `json:"msgs_per_hour"`
	CharCount       int     `json:"char_count"`

	DaysWorked int `json:"days_worked"`
}

// CreatorReport is one creator's reconciled view across every source.
type CreatorReport struct {
	Name               string `json:"name"`
	Group              string `json:"group"`
	AccountType        string `json:"account_type"`
	ClassificationTier string `json:"classification_tier"`

	LTV float64 `json:"ltv"`

	TotalEarnings        float64 `json:"total_earnings"`
	MessageRevenue       float64 `json:"message_revenue"`
	SubscriptionRevenue  float64 `json:"subscription_revenue"`
	NewSubsRevenue       float64 `json:"new_subs_revenue"`
	RecurringSubsRevenue float64 `json:"recurring_subs_revenue"`
	TipsRevenue          float64 `json:"tips_revenue"`
	ChatterSales         float64 `json:"chatter_sales"`

	MessagesSent int     `json:"messages_sent"`
	PPVSent      int     `json:"ppv_sent"`
	PPVUnlocked  int     `json:"ppv_unlocked"`
	GoldenRatio  float64 `json:"golden_ratio"`
	UnlockRatio  float64 `json:"unlock_ratio"`
	FansChatted  int     `json:"fans_chatted"`
	FansSpent    int     `json:"fans_spent"`
	FanCVR       float64 `json:"fan_cvr"`

	NewFans           int     `json:"new_fans"`
	ActiveFans        int     `json:"active_fans"`
	Following         int     `json:"following"`
	FansRenewOn       int     `json:"fans_renew_on"`
	RenewOnPct        float64 `json:"renew_on_pct"`
	ExpiredFansChange int     `json:"expired_fans_change"`
	AvgSubLength      string  `json:"avg_sub_length"`
	AvgSubDays        int     `json:"avg_sub_days"`
	ContributionPct   float64 `json:"contribution_pct"`
	OFRanking         float64 `json:"of_ranking"`

	AvgSpendPerSpender float64 `json:"avg_spend_per_spender"`
	AvgSpendPerTx      float64 `json:"avg_spend_per_tx"`
	AvgEarningsPerFan  float64 `json:"avg_earnings_per_fan"`

	Latency kpi.LatencyStats `json:"latency"`

	PeakTrafficHour string `json:"peak_traffic_hour"`
	PeakSalesHour   string `json:"peak_sales_hour"`

	Hourly    []SparseHourPoint `json:"hourly"`
	Operators []PairSummary     `json:"chatters"`
}

// OperatorReport is one operator's reconciled view across every source.
type OperatorReport struct {
	Name  string `json:"name"`
	Group string `json:"group"`

	TotalSales    float64 `json:"total_sales"`
	TotalMessages int     `json:"total_messages"`
	PPVSent       int     `json:"ppv_sent"`
	PPVUnlocked   int     `json:"ppv_unlocked"`
	GoldenRatio   float64 `json:"golden_ratio"`
	UnlockRatio   float64 `json:"unlock_ratio"`
	FansChatted   int     `json:"fans_chatted"`
	FansSpent     int     `json:"fans_spent"`
	FanCVR        float64 `json:"fan_cvr"`

	CreatorsCount    int     `json:"models_count"`
	ClockedMinutes   int     `json:"clocked_minutes"`
	ClockedFormatted string  `json:"clocked_hours_formatted"`
	SalesPerHour     float64 `json:"sales_per_hour"`
	CharCount        int     `json:"char_count"`

	// From the external time-tracking feed; zero when the operator is
	// absent from it.
	TrackedMinutes float64 `json:"tracked_minutes"`
	TrackedHours   float64 `json:"tracked_hours"`

	Latency         kpi.LatencyStats   `json:"latency"`
	ResponseBuckets kpi.LatencyBuckets `json:"response_buckets"`

	Creators []PairSummary     `json:"models"`
	Hourly   []SparseHourPoint `json:"hourly"`
}
