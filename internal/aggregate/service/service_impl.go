// Package service implements the dimensional aggregator: a pure fold
// over the immutable reconciled tables producing the dashboard report.
// Each view filters the rows to its own partition key and re-derives its
// metrics independently; ratios are not additive across partitions and
// are never borrowed from another view.
package service

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	aggdomain "github.com/carlosribasgomez/chatters-dashboard/internal/aggregate/domain"
	"github.com/carlosribasgomez/chatters-dashboard/internal/clock"
	"github.com/carlosribasgomez/chatters-dashboard/internal/identity"
	"github.com/carlosribasgomez/chatters-dashboard/internal/ingest"
	"github.com/carlosribasgomez/chatters-dashboard/internal/kpi"
	"github.com/carlosribasgomez/chatters-dashboard/internal/obs"
	"github.com/carlosribasgomez/chatters-dashboard/internal/reconcile"
	"github.com/carlosribasgomez/chatters-dashboard/internal/source/domain"
	"github.com/carlosribasgomez/chatters-dashboard/pkg/parse"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var reFirstInt = regexp.MustCompile(`(\d+)`)

// Params are the aggregator dependencies.
type Params struct {
	fx.In

	Log     *zap.Logger
	Clock   clock.Clock
	Metrics *obs.Metrics `optional:"true"`
}

// Service builds dashboard reports.
type Service struct {
	log     *zap.Logger
	clock   clock.Clock
	metrics *obs.Metrics
}

// NewService builds the aggregator.
func NewService(p Params) *Service {
	return &Service{
		log:     p.Log.Named("aggregate.service"),
		clock:   p.Clock,
		metrics: p.Metrics,
	}
}

// BuildInput is one report's worth of reconciled inputs.
type BuildInput struct {
	Tables      *ingest.Tables
	Stats       map[string]*reconcile.MergedCreatorStats
	Resolver    *identity.Resolver
	PeriodLabel string
}

// Build folds the reconciled tables into the dashboard aggregate.
func (s *Service) Build(in BuildInput) *aggdomain.Report {
	validSales := make([]domain.SalesTransaction, 0, len(in.Tables.Sales))
	for _, tx := range in.Tables.Sales {
		if !tx.Reversed() {
			validSales = append(validSales, tx)
		}
	}

	report := &aggdomain.Report{
		PeriodLabel: in.PeriodLabel,
		GeneratedAt: s.clock.Now(),
	}

	report.Hourly = s.buildHourly(in.Tables.Messages, validSales)
	report.Daily = s.buildDaily(in.Tables.Messages, validSales)
	report.Shifts = s.buildShifts(in.Tables.Messages, validSales, report.Hourly)
	report.General = s.buildGeneral(in, validSales)
	report.PeakTrafficHour, report.PeakSalesHour = peaks(report.Hourly)

	pairs := accumulatePairs(in.Tables.Breakdown)
	report.Creators = s.buildCreators(in, validSales, pairs)
	report.Operators = s.buildOperators(in, validSales, pairs)

	s.log.Info("report built",
		zap.String("period", in.PeriodLabel),
		zap.Int("creators", len(report.Creators)),
		zap.Int("operators", len(report.Operators)),
	)
	return report
}

// salesAcc accumulates one partition's transaction slice.
type salesAcc struct {
	tx       int
	sales    decimal.Decimal
	msgSales decimal.Decimal
	subSales decimal.Decimal
	tips     decimal.Decimal
}

func (a *salesAcc) add(t domain.SalesTransaction) {
	a.tx++
	a.sales = a.sales.Add(t.Net)
	switch {
	case t.Type == domain.TxTypeMessages:
		a.msgSales = a.msgSales.Add(t.Net)
	case t.Type == domain.TxTypeSubscription:
		a.subSales = a.subSales.Add(t.Net)
	case strings.HasPrefix(t.Type, domain.TxTypeTipsPrefix):
		a.tips = a.tips.Add(t.Net)
	}
}

func (s *Service) buildHourly(messages []domain.MessageEvent, validSales []domain.SalesTransaction) []aggdomain.HourlyBucket {
	var msgCount, ppvCount [24]int
	for _, e := range messages {
		if e.Hour == nil {
			continue
		}
		msgCount[*e.Hour]++
		if e.IsPPV() {
			ppvCount[*e.Hour]++
		}
	}

	var sales [24]salesAcc
	for _, t := range validSales {
		sales[t.Hour()].add(t)
	}

	buckets := make([]aggdomain.HourlyBucket, 24)
	for h := 0; h < 24; h++ {
		buckets[h] = aggdomain.HourlyBucket{
			Hour:         h,
			HourLabel:    hourLabel(h),
			Shift:        aggdomain.ShiftKeyFor(h),
			Messages:     msgCount[h],
			PPVSent:      ppvCount[h],
			SalesNet:     kpi.Money(sales[h].sales),
			MsgSalesNet:  kpi.Money(sales[h].msgSales),
			SubSalesNet:  kpi.Money(sales[h].subSales),
			TipsNet:      kpi.Money(sales[h].tips),
			Transactions: sales[h].tx,
		}
	}
	return buckets
}

func (s *Service) buildDaily(messages []domain.MessageEvent, validSales []domain.SalesTransaction) []aggdomain.DailyBucket {
	type dayAcc struct {
		messages int
		ppvSent  int
		sales    salesAcc
	}
	days := make(map[string]*dayAcc)
	day := func(date string) *dayAcc {
		acc, ok := days[date]
		if !ok {
			acc = &dayAcc{}
			days[date] = acc
		}
		return acc
	}

	for _, e := range messages {
		if e.SentDate == "" {
			continue
		}
		acc := day(e.SentDate)
		acc.messages++
		if e.IsPPV() {
			acc.ppvSent++
		}
	}
	for _, t := range validSales {
		day(t.Date()).sales.add(t)
	}

	dates := make([]string, 0, len(days))
	for date := range days {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	buckets := make([]aggdomain.DailyBucket, 0, len(dates))
	for _, date := range dates {
		acc := days[date]
		buckets = append(buckets, aggdomain.DailyBucket{
			Date:         date,
			Messages:     acc.messages,
			PPVSent:      acc.ppvSent,
			SalesNet:     kpi.Money(acc.sales.sales),
			MsgSalesNet:  kpi.Money(acc.sales.msgSales),
			SubSalesNet:  kpi.Money(acc.sales.subSales),
			TipsNet:      kpi.Money(acc.sales.tips),
			Transactions: acc.sales.tx,
		})
	}
	return buckets
}

func (s *Service) buildShifts(messages []domain.MessageEvent, validSales []domain.SalesTransaction, hourly []aggdomain.HourlyBucket) []aggdomain.ShiftSummary {
	shifts := make([]aggdomain.ShiftSummary, 0, len(aggdomain.Shifts))

	for _, def := range aggdomain.Shifts {
		var summary aggdomain.ShiftSummary
		summary.Key = def.Key
		summary.Label = def.Label

		var latencies []float64
		for _, e := range messages {
			if e.Hour == nil || aggdomain.ShiftKeyFor(*e.Hour) != def.Key {
				continue
			}
			summary.Messages++
			if e.IsPPV() {
				summary.PPVSent++
			}
			if e.ReplySeconds != nil {
				latencies = append(latencies, *e.ReplySeconds)
			}
		}
		summary.Latency = kpi.Latency(latencies)

		var acc salesAcc
		creatorRevenue := make(map[string]decimal.Decimal)
		operatorRevenue := make(map[string]decimal.Decimal)
		for _, t := range validSales {
			if aggdomain.ShiftKeyFor(t.Hour()) != def.Key {
				continue
			}
			acc.add(t)
			if t.Creator != "" {
				creatorRevenue[t.Creator] = creatorRevenue[t.Creator].Add(t.Net)
			}
			if strings.TrimSpace(t.Operator) != "" {
				operatorRevenue[t.Operator] = operatorRevenue[t.Operator].Add(t.Net)
			}
		}
		summary.SalesNet = kpi.Money(acc.sales)
		summary.MsgSales = kpi.Money(acc.msgSales)
		summary.SubSales = kpi.Money(acc.subSales)
		summary.TipsSales = kpi.Money(acc.tips)
		summary.Transactions = acc.tx
		summary.TopCreators = topRevenue(creatorRevenue, 10)
		summary.TopOperators = topRevenue(operatorRevenue, 10)

		for _, bucket := range hourly {
			if bucket.Shift == def.Key {
				summary.Hourly = append(summary.Hourly, bucket)
			}
		}

		shifts = append(shifts, summary)
	}
	return shifts
}

func (s *Service) buildGeneral(in BuildInput, validSales []domain.SalesTransaction) aggdomain.GeneralKPIs {
	var g aggdomain.GeneralKPIs
	g.TotalMessages = len(in.Tables.Messages)
	g.RawTransactions = len(in.Tables.Sales)
	g.Transactions = len(validSales)

	var acc salesAcc
	for _, t := range validSales {
		acc.add(t)
	}
	g.TotalNetRevenue = kpi.Money(acc.sales)
	g.MsgRevenue = kpi.Money(acc.msgSales)
	g.SubRevenue = kpi.Money(acc.subSales)
	g.TipsRevenue = kpi.Money(acc.tips)

	chatterSales := decimal.Zero
	operators := make(map[string]struct{})
	creators := make(map[string]struct{})
	var latencies []float64
	for _, r := range in.Tables.Breakdown {
		chatterSales = chatterSales.Add(r.Sales)
		g.TotalPPVSent += r.PPVSent
		g.TotalPPVUnlocked += r.PPVUnlocked
		g.TotalFansChatted += r.FansChatted
		if strings.TrimSpace(r.Operator) != "" {
			operators[identity.CanonicalKey(r.Operator)] = struct{}{}
		}
		creators[identity.CanonicalKey(r.Creator)] = struct{}{}
	}
	g.ChatterSales = kpi.Money(chatterSales)
	g.TotalOperators = len(operators)
	g.TotalCreators = len(creators)

	newSubs, recSubs := decimal.Zero, decimal.Zero
	for _, stats := range in.Stats {
		newSubs = newSubs.Add(stats.NewSubsNet)
		recSubs = recSubs.Add(stats.RecurringSubsNet)
		if stats.NewFans > 0 {
			g.TotalNewFans += stats.NewFans
		}
		g.TotalActiveFans += stats.ActiveFans
	}
	g.NewSubsRevenue = kpi.Money(newSubs)
	g.RecurringSubsRevenue = kpi.Money(recSubs)

	// The breakdown's PPV counts include unlocks of offers sent before
	// the report window, so they are the accurate numerators; message
	// volume comes from the message dashboard.
	g.GoldenRatio = kpi.GoldenRatio(g.TotalPPVSent, g.TotalMessages)
	g.UnlockRatio = kpi.UnlockRatio(g.TotalPPVUnlocked, g.TotalPPVSent)

	for _, e := range in.Tables.Messages {
		if e.ReplySeconds != nil {
			latencies = append(latencies, *e.ReplySeconds)
		}
	}
	g.Latency = kpi.Latency(latencies)
	return g
}

// pairAcc accumulates the (operator, creator) cross table. Counts sum
// across rows; rate fields average over days worked.
type pairAcc struct {
	operator string
	creator  string
	group    string

	messagesSent int
	ppvSent      int
	ppvUnlocked  int
	fansChatted  int
	fansSpent    int
	charCount    int
	clockedMin   int

	sales           decimal.Decimal
	salesPerHourSum decimal.Decimal
	msgsPerHourSum  float64

	respObs []float64
	days    map[string]struct{}
}

func accumulatePairs(rows []domain.BreakdownRow) map[string]*pairAcc {
	pairs := make(map[string]*pairAcc)
	for _, r := range rows {
		if strings.TrimSpace(r.Operator) == "" {
			continue
		}
		key := identity.CanonicalKey(r.Operator) + "|" + identity.CanonicalKey(r.Creator)
		acc, ok := pairs[key]
		if !ok {
			acc = &pairAcc{
				operator: r.Operator,
				creator:  r.Creator,
				days:     make(map[string]struct{}),
			}
			pairs[key] = acc
		}
		if acc.group == "" {
			acc.group = r.Group
		}
		acc.messagesSent += r.MessagesSent
		acc.ppvSent += r.PPVSent
		acc.ppvUnlocked += r.PPVUnlocked
		acc.fansChatted += r.FansChatted
		acc.fansSpent += r.FansSpent
		acc.charCount += r.CharCount
		acc.clockedMin += r.ClockedMinutes
		acc.sales = acc.sales.Add(r.Sales)
		acc.salesPerHourSum = acc.salesPerHourSum.Add(r.SalesPerHour)
		acc.msgsPerHourSum += r.MsgsPerHour
		if r.RespSeconds != nil {
			acc.respObs = append(acc.respObs, *r.RespSeconds)
		}
		if r.Period != "" {
			acc.days[r.Period] = struct{}{}
		}
	}
	return pairs
}

func (p *pairAcc) summary(name string) aggdomain.PairSummary {
	days := len(p.days)
	out := aggdomain.PairSummary{
		Name:           name,
		Group:          p.group,
		Sales:          kpi.Money(p.sales),
		MessagesSent:   p.messagesSent,
		PPVSent:        p.ppvSent,
		PPVUnlocked:    p.ppvUnlocked,
		GoldenRatio:    kpi.GoldenRatio(p.ppvSent, p.messagesSent),
		UnlockRatio:    kpi.UnlockRatio(p.ppvUnlocked, p.ppvSent),
		FansChatted:    p.fansChatted,
		FansSpent:      p.fansSpent,
		FanCVR:         kpi.FanConversion(p.fansSpent, p.fansChatted),
		ClockedMinutes: p.clockedMin,
		CharCount:      p.charCount,
		DaysWorked:     days,
	}

	resp := kpi.Latency(p.respObs)
	if resp.AvgSeconds != nil {
		out.ResponseSeconds = *resp.AvgSeconds
	}
	out.ResponseTime = resp.AvgFormatted

	if days > 0 {
		out.SalesPerHour = kpi.Money(p.salesPerHourSum.Div(decimal.NewFromInt(int64(days))))
		out.MsgsPerHour = math.Round(p.msgsPerHourSum/float64(days)*100) / 100
	}
	return out
}

// hourSeries accumulates a per-entity sparse hourly series.
type hourSeries struct {
	messages [24]int
	sales    [24]decimal.Decimal
}

func (h *hourSeries) sparse() []aggdomain.SparseHourPoint {
	var points []aggdomain.SparseHourPoint
	for hour := 0; hour < 24; hour++ {
		if h.messages[hour] == 0 && h.sales[hour].IsZero() {
			continue
		}
		points = append(points, aggdomain.SparseHourPoint{
			Hour:      hour,
			HourLabel: hourLabel(hour),
			Messages:  h.messages[hour],
			SalesNet:  kpi.Money(h.sales[hour]),
		})
	}
	return points
}

func (h *hourSeries) peaks(hasEarnings bool) (traffic, sales string) {
	traffic, sales = "N/A", "N/A"
	points := h.sparse()
	if len(points) == 0 {
		return
	}
	best := points[0]
	bestSales := points[0]
	for _, p := range points[1:] {
		if p.Messages > best.Messages {
			best = p
		}
		if p.SalesNet > bestSales.SalesNet {
			bestSales = p
		}
	}
	traffic = best.HourLabel
	if hasEarnings {
		sales = bestSales.HourLabel
	}
	return
}

func (s *Service) buildCreators(in BuildInput, validSales []domain.SalesTransaction, pairs map[string]*pairAcc) []aggdomain.CreatorReport {
	type creatorAcc struct {
		name         string
		chatterSales decimal.Decimal
		messagesSent int
		ppvSent      int
		ppvUnlocked  int
		fansChatted  int
		fansSpent    int
		latencies    []float64
		hours        hourSeries
		operators    []aggdomain.PairSummary
	}

	accs := make(map[string]*creatorAcc)
	get := func(name string) *creatorAcc {
		key := identity.CanonicalKey(name)
		acc, ok := accs[key]
		if !ok {
			acc = &creatorAcc{name: name}
			accs[key] = acc
		}
		return acc
	}

	for _, r := range in.Tables.Breakdown {
		acc := get(r.Creator)
		acc.chatterSales = acc.chatterSales.Add(r.Sales)
		acc.messagesSent += r.MessagesSent
		acc.ppvSent += r.PPVSent
		acc.ppvUnlocked += r.PPVUnlocked
		acc.fansChatted += r.FansChatted
		acc.fansSpent += r.FansSpent
	}
	for key, stats := range in.Stats {
		if _, ok := accs[key]; !ok {
			accs[key] = &creatorAcc{name: stats.Creator}
		}
	}
	for _, e := range in.Tables.Messages {
		if e.Creator == "" {
			continue
		}
		acc := get(e.Creator)
		if e.ReplySeconds != nil {
			acc.latencies = append(acc.latencies, *e.ReplySeconds)
		}
		if e.Hour != nil {
			acc.hours.messages[*e.Hour]++
		}
	}
	for _, t := range validSales {
		if t.Creator == "" {
			continue
		}
		acc := get(t.Creator)
		acc.hours.sales[t.Hour()] = acc.hours.sales[t.Hour()].Add(t.Net)
	}
	for _, p := range pairs {
		get(p.creator).operators = append(get(p.creator).operators, p.summary(p.operator))
	}

	reports := make([]aggdomain.CreatorReport, 0, len(accs))
	for key, acc := range accs {
		var report aggdomain.CreatorReport
		report.Name = acc.name

		resolution := in.Resolver.Resolve(acc.name)
		report.AccountType = resolution.Label
		report.ClassificationTier = resolution.Tier.String()
		if resolution.Tier == identity.TierNone && s.metrics != nil {
			s.metrics.UnknownClassifications.Inc()
		}

		report.ChatterSales = kpi.Money(acc.chatterSales)
		report.MessagesSent = acc.messagesSent
		report.PPVSent = acc.ppvSent
		report.PPVUnlocked = acc.ppvUnlocked
		report.GoldenRatio = kpi.GoldenRatio(acc.ppvSent, acc.messagesSent)
		report.UnlockRatio = kpi.UnlockRatio(acc.ppvUnlocked, acc.ppvSent)
		report.FansChatted = acc.fansChatted
		report.FansSpent = acc.fansSpent
		report.FanCVR = kpi.FanConversion(acc.fansSpent, acc.fansChatted)

		totalEarnings := acc.chatterSales
		if stats, ok := in.Stats[key]; ok {
			totalEarnings = stats.TotalEarningsNet
			report.Group = stats.Group
			report.MessageRevenue = kpi.Money(stats.MessageNet)
			report.SubscriptionRevenue = kpi.Money(stats.SubscriptionNet)
			report.NewSubsRevenue = kpi.Money(stats.NewSubsNet)
			report.RecurringSubsRevenue = kpi.Money(stats.RecurringSubsNet)
			report.TipsRevenue = kpi.Money(stats.TipsNet)
			report.NewFans = stats.NewFans
			report.ActiveFans = stats.ActiveFans
			report.Following = stats.Following
			report.FansRenewOn = stats.FansRenewOn
			report.RenewOnPct = stats.RenewOnPct
			report.ExpiredFansChange = stats.ExpiredFansChange
			report.AvgSubLength = stats.AvgSubLength
			report.ContributionPct = stats.ContributionPct
			report.OFRanking = stats.OFRanking
			report.AvgSpendPerSpender = kpi.Money(stats.AvgSpendPerSpender)
			report.AvgSpendPerTx = kpi.Money(stats.AvgSpendPerTx)
			report.AvgEarningsPerFan = kpi.Money(stats.AvgEarningsPerFan)
			report.LTV = kpi.LifetimeValue(stats.TotalEarningsNet, stats.ActiveFans)
		} else {
			// No snapshot for this creator: chatter-attributed sales are
			// the only earnings signal available.
			report.MessageRevenue = report.ChatterSales
			report.AvgSubLength = "N/A"
		}
		report.TotalEarnings = kpi.Money(totalEarnings)

		if m := reFirstInt.FindStringSubmatch(report.AvgSubLength); m != nil {
			report.AvgSubDays, _ = strconv.Atoi(m[1])
		}

		report.Latency = kpi.Latency(acc.latencies)
		report.Hourly = acc.hours.sparse()
		report.PeakTrafficHour, report.PeakSalesHour = acc.hours.peaks(report.TotalEarnings > 0)

		sort.Slice(acc.operators, func(i, j int) bool {
			if acc.operators[i].Sales != acc.operators[j].Sales {
				return acc.operators[i].Sales > acc.operators[j].Sales
			}
			return acc.operators[i].Name < acc.operators[j].Name
		})
		report.Operators = acc.operators

		reports = append(reports, report)
	}

	sort.Slice(reports, func(i, j int) bool {
		if reports[i].TotalEarnings != reports[j].TotalEarnings {
			return reports[i].TotalEarnings > reports[j].TotalEarnings
		}
		return reports[i].Name < reports[j].Name
	})
	return reports
}

func (s *Service) buildOperators(in BuildInput, validSales []domain.SalesTransaction, pairs map[string]*pairAcc) []aggdomain.OperatorReport {
	type operatorAcc struct {
		name        string
		group       string
		sales       decimal.Decimal
		messages    int
		ppvSent     int
		ppvUnlocked int
		fansChatted int
		fansSpent   int
		charCount   int
		clockedMin  int
		latencies   []float64
		hours       hourSeries
		creators    []aggdomain.PairSummary
	}

	accs := make(map[string]*operatorAcc)
	get := func(name string) *operatorAcc {
		key := identity.CanonicalKey(name)
		acc, ok := accs[key]
		if !ok {
			acc = &operatorAcc{name: name}
			accs[key] = acc
		}
		return acc
	}

	for _, r := range in.Tables.Breakdown {
		if strings.TrimSpace(r.Operator) == "" {
			continue
		}
		acc := get(r.Operator)
		if acc.group == "" {
			acc.group = r.Group
		}
		acc.sales = acc.sales.Add(r.Sales)
		acc.messages += r.MessagesSent
		acc.ppvSent += r.PPVSent
		acc.ppvUnlocked += r.PPVUnlocked
		acc.fansChatted += r.FansChatted
		acc.fansSpent += r.FansSpent
		acc.charCount += r.CharCount
		acc.clockedMin += r.ClockedMinutes
	}
	for _, e := range in.Tables.Messages {
		if strings.TrimSpace(e.Sender) == "" {
			continue
		}
		key := identity.CanonicalKey(e.Sender)
		acc, ok := accs[key]
		if !ok {
			continue // senders absent from the breakdown are not operators
		}
		if e.ReplySeconds != nil {
			acc.latencies = append(acc.latencies, *e.ReplySeconds)
		}
		if e.Hour != nil {
			acc.hours.messages[*e.Hour]++
		}
	}
	for _, t := range validSales {
		if strings.TrimSpace(t.Operator) == "" {
			continue
		}
		if acc, ok := accs[identity.CanonicalKey(t.Operator)]; ok {
			acc.hours.sales[t.Hour()] = acc.hours.sales[t.Hour()].Add(t.Net)
		}
	}
	for _, p := range pairs {
		if acc, ok := accs[identity.CanonicalKey(p.operator)]; ok {
			acc.creators = append(acc.creators, p.summary(p.creator))
		}
	}

	reports := make([]aggdomain.OperatorReport, 0, len(accs))
	for _, acc := range accs {
		var report aggdomain.OperatorReport
		report.Name = acc.name
		report.Group = acc.group
		report.TotalSales = kpi.Money(acc.sales)
		report.TotalMessages = acc.messages
		report.PPVSent = acc.ppvSent
		report.PPVUnlocked = acc.ppvUnlocked
		report.GoldenRatio = kpi.GoldenRatio(acc.ppvSent, acc.messages)
		report.UnlockRatio = kpi.UnlockRatio(acc.ppvUnlocked, acc.ppvSent)
		report.FansChatted = acc.fansChatted
		report.FansSpent = acc.fansSpent
		report.FanCVR = kpi.FanConversion(acc.fansSpent, acc.fansChatted)
		report.CreatorsCount = len(acc.creators)
		report.ClockedMinutes = acc.clockedMin
		report.ClockedFormatted = parse.FormatClockedMinutes(acc.clockedMin)
		report.SalesPerHour = kpi.SalesPerHour(acc.sales, acc.clockedMin)
		report.CharCount = acc.charCount
		report.Latency = kpi.Latency(acc.latencies)
		report.ResponseBuckets = kpi.BucketLatencies(acc.latencies)
		report.Hourly = acc.hours.sparse()

		sort.Slice(acc.creators, func(i, j int) bool {
			if acc.creators[i].Sales != acc.creators[j].Sales {
				return acc.creators[i].Sales > acc.creators[j].Sales
			}
			return acc.creators[i].Name < acc.creators[j].Name
		})
		report.Creators = acc.creators

		reports = append(reports, report)
	}

	sort.Slice(reports, func(i, j int) bool {
		if reports[i].TotalSales != reports[j].TotalSales {
			return reports[i].TotalSales > reports[j].TotalSales
		}
		return reports[i].Name < reports[j].Name
	})
	return reports
}

func topRevenue(revenue map[string]decimal.Decimal, limit int) []aggdomain.RevenueEntry {
	entries := make([]aggdomain.RevenueEntry, 0, len(revenue))
	for name, total := range revenue {
		entries = append(entries, aggdomain.RevenueEntry{Name: name, Revenue: kpi.Money(total)})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Revenue != entries[j].Revenue {
			return entries[i].Revenue > entries[j].Revenue
		}
		return entries[i].Name < entries[j].Name
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

func peaks(hourly []aggdomain.HourlyBucket) (aggdomain.PeakTraffic, aggdomain.PeakSales) {
	traffic := aggdomain.PeakTraffic{HourLabel: hourly[0].HourLabel, Messages: hourly[0].Messages}
	sales := aggdomain.PeakSales{HourLabel: hourly[0].HourLabel, Revenue: hourly[0].SalesNet}
	for _, b := range hourly[1:] {
		if b.Messages > traffic.Messages {
			traffic = aggdomain.PeakTraffic{HourLabel: b.HourLabel, Messages: b.Messages}
		}
		if b.SalesNet > sales.Revenue {
			sales = aggdomain.PeakSales{HourLabel: b.HourLabel, Revenue: b.SalesNet}
		}
	}
	return traffic, sales
}

func hourLabel(hour int) string {
	return fmt.Sprintf("%02d:00", hour)
}

// Module wires the aggregator.
var Module = fx.Module("aggregate.service",
	fx.Provide(NewService),
)
