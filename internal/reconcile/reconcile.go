// Package reconcile merges per-file creator snapshots into one row per
// creator under the schema-declared field policies.
package reconcile

import (
	"github.com/carlosribasgomez/chatters-dashboard/internal/identity"
	"github.com/carlosribasgomez/chatters-dashboard/internal/source/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Policy declares how a snapshot field combines across files.
type Policy string

const (
	// PolicyAdditive fields are period deltas; summing across files
	// reconstructs the full date range.
	PolicyAdditive Policy = "additive"
	// PolicyLatestWins fields are as-of-export-time state; only the most
	// recently loaded present value survives.
	PolicyLatestWins Policy = "latest_wins"
)

// FieldPolicies tags every CreatorStatSnapshot column at the schema
// level. Merging consults this table, never runtime inference; mixing
// the two policies is the central correctness risk of the engine.
var FieldPolicies = map[string]Policy{
	"subscription_net":       PolicyAdditive,
	"new_subs_net":           PolicyAdditive,
	"recurring_subs_net":     PolicyAdditive,
	"tips_net":               PolicyAdditive,
	"message_net":            PolicyAdditive,
	"total_earnings_net":     PolicyAdditive,
	"new_fans":               PolicyAdditive,
	"expired_fans_change":    PolicyAdditive,
	"active_fans":            PolicyLatestWins,
	"following":              PolicyLatestWins,
	"fans_renew_on":          PolicyLatestWins,
	"renew_on_pct":           PolicyLatestWins,
	"contribution_pct":       PolicyLatestWins,
	"of_ranking":             PolicyLatestWins,
	"avg_spend_per_spender":  PolicyLatestWins,
	"avg_spend_per_tx":       PolicyLatestWins,
	"avg_earnings_per_fan":   PolicyLatestWins,
	"avg_subscription_length": PolicyLatestWins,
	"creator_group":          PolicyLatestWins,
}

// MergedCreatorStats is the one-row-per-creator output of snapshot
// reconciliation.
type MergedCreatorStats struct {
	Creator string

	SubscriptionNet   decimal.Decimal
	NewSubsNet        decimal.Decimal
	RecurringSubsNet  decimal.Decimal
	TipsNet           decimal.Decimal
	MessageNet        decimal.Decimal
	TotalEarningsNet  decimal.Decimal
	NewFans           int
	ExpiredFansChange int

	ActiveFans         int
	Following          int
	FansRenewOn        int
	RenewOnPct         float64
	ContributionPct    float64
	OFRanking          float64
	AvgSpendPerSpender decimal.Decimal
	AvgSpendPerTx      decimal.Decimal
	AvgEarningsPerFan  decimal.Decimal
	AvgSubLength       string
	Group              string
}

func newMerged(creator string) *MergedCreatorStats {
	return &MergedCreatorStats{
		Creator:            creator,
		SubscriptionNet:    decimal.Zero,
		NewSubsNet:         decimal.Zero,
		RecurringSubsNet:   decimal.Zero,
		TipsNet:            decimal.Zero,
		MessageNet:         decimal.Zero,
		TotalEarningsNet:   decimal.Zero,
		AvgSpendPerSpender: decimal.Zero,
		AvgSpendPerTx:      decimal.Zero,
		AvgEarningsPerFan:  decimal.Zero,
		AvgSubLength:       "N/A",
	}
}

// Params are the reconciler dependencies.
type Params struct {
	fx.In

	Log *zap.Logger
}

// Reconciler folds per-file snapshot tables into per-creator rows.
type Reconciler struct {
	log *zap.Logger
}

// NewReconciler builds a Reconciler.
func NewReconciler(p Params) *Reconciler {
	return &Reconciler{log: p.Log.Named("reconcile")}
}

// MergeSnapshots merges the ordered per-file snapshot tables, keyed by
// canonical creator name. Additive fields accumulate in load order from
// a declared zero; latest-wins fields are overwritten on every present
// occurrence, so a later blank never erases an earlier value.
func (r *Reconciler) MergeSnapshots(files [][]domain.CreatorStatSnapshot) map[string]*MergedCreatorStats {
	merged := make(map[string]*MergedCreatorStats)

	for _, snaps := range files {
		for _, snap := range snaps {
			key := identity.CanonicalKey(snap.Creator)
			row, ok := merged[key]
			if !ok {
				row = newMerged(snap.Creator)
				merged[key] = row
			}
			applyAdditive(row, snap)
			applyLatestWins(row, snap)
		}
	}

	r.log.Debug("snapshots reconciled", zap.Int("creators", len(merged)), zap.Int("files", len(files)))
	return merged
}

func applyAdditive(row *MergedCreatorStats, snap domain.CreatorStatSnapshot) {
	row.SubscriptionNet = row.SubscriptionNet.Add(snap.SubscriptionNet)
	row.NewSubsNet = row.NewSubsNet.Add(snap.NewSubsNet)
	row.RecurringSubsNet = row.RecurringSubsNet.Add(snap.RecurringSubsNet)
	row.TipsNet = row.TipsNet.Add(snap.TipsNet)
	row.MessageNet = row.MessageNet.Add(snap.MessageNet)
	row.TotalEarningsNet = row.TotalEarningsNet.Add(snap.TotalEarningsNet)
	row.NewFans += snap.NewFans
	row.ExpiredFansChange += snap.ExpiredFansChange
}

func applyLatestWins(row *MergedCreatorStats, snap domain.CreatorStatSnapshot) {
	if snap.ActiveFans != nil {
		row.ActiveFans = *snap.ActiveFans
	}
	if snap.Following != nil {
		row.Following = *snap.Following
	}
	if snap.FansRenewOn != nil {
		row.FansRenewOn = *snap.FansRenewOn
	}
	if snap.RenewOnPct != nil {
		row.RenewOnPct = *snap.RenewOnPct
	}
	if snap.ContributionPct != nil {
		row.ContributionPct = *snap.ContributionPct
	}
	if snap.OFRanking != nil {
		row.OFRanking = *snap.OFRanking
	}
	if snap.AvgSpendPerSpender != nil {
		row.AvgSpendPerSpender = *snap.AvgSpendPerSpender
	}
	if snap.AvgSpendPerTx != nil {
		row.AvgSpendPerTx = *snap.AvgSpendPerTx
	}
	if snap.AvgEarningsPerFan != nil {
		row.AvgEarningsPerFan = *snap.AvgEarningsPerFan
	}
	if snap.AvgSubLength != nil {
		row.AvgSubLength = *snap.AvgSubLength
	}
	if snap.Group != nil {
		row.Group = *snap.Group
	}
}

// Module wires the reconciler.
var Module = fx.Module("reconcile",
	fx.Provide(NewReconciler),
)
