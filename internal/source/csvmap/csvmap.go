// Package csvmap is the validated column-mapping layer between the raw
// CSV exports and the typed rows the engine consumes. A source schema
// change should only ever touch this package.
package csvmap

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/carlosribasgomez/chatters-dashboard/internal/source/domain"
	"github.com/carlosribasgomez/chatters-dashboard/pkg/parse"
)

// Required columns per family. A file missing one of these is unusable
// and fails the whole load; every other column degrades to a zero/blank
// default for that column only.
var (
	messagesRequired     = []string{"Sender", "Creator", "Sent date", "Sent time"}
	breakdownRequired    = []string{"Date", "Employees", "Creators"}
	salesRequired        = []string{"Creator", "Type", "Status"}
	creatorStatsRequired = []string{"Creator"}
)

var salesTimestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"Jan 2, 2006 3:04 pm",
}

type fileTable struct {
	path string
	idx  map[string]int
	rows [][]string
}

func readFile(path string, required []string) (*fileTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("missing_source_file %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("unreadable_source_file %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty_source_file %s", path)
	}

	idx := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		idx[strings.TrimSpace(name)] = i
	}
	for _, col := range required {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("missing_required_column %q in %s", col, path)
		}
	}

	return &fileTable{path: path, idx: idx, rows: records[1:]}, nil
}

func (t *fileTable) cell(row []string, col string) string {
	i, ok := t.idx[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// columnByPrefix resolves a header by prefix. The sales export suffixes
// its timestamp column with the workspace timezone ("Date & time
// Africa/Monrovia"), which varies per workspace.
func (t *fileTable) columnByPrefix(prefix string) (string, bool) {
	for name := range t.idx {
		if strings.HasPrefix(name, prefix) {
			return name, true
		}
	}
	return "", false
}

// ReadMessages maps one message dashboard export into typed events.
func ReadMessages(path string) ([]domain.MessageEvent, error) {
	t, err := readFile(path, messagesRequired)
	if err != nil {
		return nil, err
	}

	events := make([]domain.MessageEvent, 0, len(t.rows))
	for _, row := range t.rows {
		sentTime := t.cell(row, "Sent time")
		events = append(events, domain.MessageEvent{
			Sender:       t.cell(row, "Sender"),
			Creator:      t.cell(row, "Creator"),
			SentDate:     t.cell(row, "Sent date"),
			SentTime:     sentTime,
			Hour:         parse.Hour(sentTime),
			Price:        parse.Dollar(t.cell(row, "Price")),
			Purchased:    parse.YesNo(t.cell(row, "Purchased")),
			ReplySeconds: parse.ReplySeconds(t.cell(row, "Replay time")),
			Channel:      t.cell(row, "Channel"),
		})
	}
	return events, nil
}

// ReadBreakdown maps one detailed breakdown export into typed rows.
func ReadBreakdown(path string) ([]domain.BreakdownRow, error) {
	t, err := readFile(path, breakdownRequired)
	if err != nil {
		return nil, err
	}

	rows := make([]domain.BreakdownRow, 0, len(t.rows))
	for _, row := range t.rows {
		rows = append(rows, domain.BreakdownRow{
			Period:   t.cell(row, "Date"),
			Operator: t.cell(row, "Employees"),
			Group:    t.cell(row, "Group"),
			Creator:  t.cell(row, "Creators"),

			MessagesSent: parse.Int(t.cell(row, "Direct messages sent")),
			PPVSent:      parse.Int(t.cell(row, "Direct PPVs sent")),
			PPVUnlocked:  parse.Int(t.cell(row, "PPVs unlocked")),
			FansChatted:  parse.Int(t.cell(row, "Fans chatted")),
			FansSpent:    parse.Int(t.cell(row, "Fans who spent money")),
			CharCount:    parse.Int(t.cell(row, "Character count")),

			ClockedMinutes: parse.ClockedMinutes(t.cell(row, "Clocked hours")),
			RespSeconds:    parse.ReplySeconds(t.cell(row, "Response time (based on clocked hours)")),

			Sales:             parse.Dollar(t.cell(row, "Sales")),
			SalesPerHour:      parse.Dollar(t.cell(row, "Sales per hour")),
			MsgsPerHour:       parse.Float(t.cell(row, "Messages sent per hour")),
			AvgEarnPerSpender: parse.Dollar(t.cell(row, "Avg earnings per fan who spent money")),

			GoldenRatioPct: parse.Percent(t.cell(row, "Golden ratio")),
			UnlockRatePct:  parse.Percent(t.cell(row, "Unlock rate")),
			FanCVRPct:      parse.Percent(t.cell(row, "Fan CVR")),
		})
	}
	return rows, nil
}

// SalesResult carries the typed transactions plus the count of rows
// dropped for an unparseable timestamp.
type SalesResult struct {
	Transactions []domain.SalesTransaction
	DroppedRows  int
}

// ReadSales maps one sales record export into typed transactions. Rows
// whose timestamp cannot be parsed are dropped (their contribution
// degrades to nothing) rather than failing the load.
func ReadSales(path string) (SalesResult, error) {
	t, err := readFile(path, salesRequired)
	if err != nil {
		return SalesResult{}, err
	}

	tsCol, ok := t.columnByPrefix("Date & time")
	if !ok {
		return SalesResult{}, fmt.Errorf("missing_required_column %q in %s", "Date & time", path)
	}

	out := SalesResult{Transactions: make([]domain.SalesTransaction, 0, len(t.rows))}
	for _, row := range t.rows {
		ts, ok := parseTimestamp(t.cell(row, tsCol))
		if !ok {
			out.DroppedRows++
			continue
		}
		out.Transactions = append(out.Transactions, domain.SalesTransaction{
			Timestamp: ts,
			Operator:  t.cell(row, "Employee"),
			Creator:   t.cell(row, "Creator"),
			Fan:       t.cell(row, "Fan"),
			Type:      t.cell(row, "Type"),
			Gross:     parse.Dollar(t.cell(row, "Gross revenue")),
			Net:       parse.Dollar(t.cell(row, "Net revenue")),
			Status:    t.cell(row, "Status"),
		})
	}
	return out, nil
}

func parseTimestamp(v string) (time.Time, bool) {
	if v == "" {
		return time.Time{}, false
	}
	for _, layout := range salesTimestampLayouts {
		if ts, err := time.Parse(layout, v); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// ReadCreatorStats maps one creator statistics export into per-creator
// snapshots. State columns left blank stay nil so a later file cannot
// erase an earlier file's value during reconciliation.
func ReadCreatorStats(path string) ([]domain.CreatorStatSnapshot, error) {
	t, err := readFile(path, creatorStatsRequired)
	if err != nil {
		return nil, err
	}

	snaps := make([]domain.CreatorStatSnapshot, 0, len(t.rows))
	for _, row := range t.rows {
		snap := domain.CreatorStatSnapshot{
			Creator: t.cell(row, "Creator"),

			SubscriptionNet:   parse.Dollar(t.cell(row, "Subscription Net")),
			NewSubsNet:        parse.Dollar(t.cell(row, "New subscriptions Net")),
			RecurringSubsNet:  parse.Dollar(t.cell(row, "Recurring subscriptions Net")),
			TipsNet:           parse.Dollar(t.cell(row, "Tips Net")),
			MessageNet:        parse.Dollar(t.cell(row, "Message Net")),
			TotalEarningsNet:  parse.Dollar(t.cell(row, "Total earnings Net")),
			NewFans:           parse.Int(t.cell(row, "New fans")),
			ExpiredFansChange: parse.Int(t.cell(row, "Change in expired fan count")),
		}

		if v := t.cell(row, "Active fans"); v != "" && v != "-" {
			n := parse.Int(v)
			snap.ActiveFans = &n
		}
		if v := t.cell(row, "Following"); v != "" && v != "-" {
			n := parse.Int(v)
			snap.Following = &n
		}
		if v := t.cell(row, "Fans with renew on"); v != "" && v != "-" {
			n := parse.Int(v)
			snap.FansRenewOn = &n
		}
		if v := t.cell(row, "Renew on %"); v != "" && v != "-" {
			f := parse.Percent(v)
			snap.RenewOnPct = &f
		}
		if v := t.cell(row, "Contribution %"); v != "" && v != "-" {
			f := parse.Percent(v)
			snap.ContributionPct = &f
		}
		if v := t.cell(row, "OF ranking"); v != "" && v != "-" {
			f := parse.Percent(v)
			snap.OFRanking = &f
		}
		if v := t.cell(row, "Avg spend per spender Net"); v != "" && v != "-" {
			d := parse.Dollar(v)
			snap.AvgSpendPerSpender = &d
		}
		if v := t.cell(row, "Avg spend per transaction Net"); v != "" && v != "-" {
			d := parse.Dollar(v)
			snap.AvgSpendPerTx = &d
		}
		if v := t.cell(row, "Avg earnings per fan Net"); v != "" && v != "-" {
			d := parse.Dollar(v)
			snap.AvgEarningsPerFan = &d
		}
		if v := t.cell(row, "Avg subscription length"); v != "" && v != "-" {
			s := v
			snap.AvgSubLength = &s
		}
		if v := t.cell(row, "Creator group"); v != "" && v != "-" {
			s := v
			snap.Group = &s
		}

		snaps = append(snaps, snap)
	}
	return snaps, nil
}
