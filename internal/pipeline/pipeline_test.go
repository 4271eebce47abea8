package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	aggdomain "github.com/carlosribasgomez/chatters-dashboard/internal/aggregate/domain"
	aggservice "github.com/carlosribasgomez/chatters-dashboard/internal/aggregate/service"
	"github.com/carlosribasgomez/chatters-dashboard/internal/archive"
	"github.com/carlosribasgomez/chatters-dashboard/internal/clock"
	"github.com/carlosribasgomez/chatters-dashboard/internal/config"
	"github.com/carlosribasgomez/chatters-dashboard/internal/ingest"
	"github.com/carlosribasgomez/chatters-dashboard/internal/reconcile"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestPipeline(t *testing.T, cfg config.SourcesConfig) *Pipeline {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&archive.ReportRecord{}))
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	log := zap.NewNop()
	fake := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	return New(Params{
		Log:        log,
		Clock:      fake,
		Loader:     ingest.NewLoader(ingest.Params{Log: log}),
		Reconciler: reconcile.NewReconciler(reconcile.Params{Log: log}),
		Aggregator: aggservice.NewService(aggservice.Params{Log: log, Clock: fake}),
		Sources:    config.NewStaticSourcesHolder(cfg),
		Store:      archive.NewStore(archive.Params{DB: db, Node: node, Log: log}),
	})
}

func fixtureSources(t *testing.T) config.SourcesConfig {
	t.Helper()
	dir := t.TempDir()

	messages := writeFile(t, dir, "messages.csv",
		"Sender,Creator,Sent date,Sent time,Price,Purchased,Replay time,Channel\n"+
			"Alice,Mia,2026-02-10,01:15,$10.00,yes,1m 30s,Chat\n"+
			"Alice,Mia,2026-02-10,09:30,$0.00,no,2m 0s,Chat\n"+
			"Bob,Zoe,2026-02-10,17:45,$5.00,no,,Chat\n")

	breakdown := writeFile(t, dir, "breakdown.csv",
		"Date,Employees,Group,Creators,Direct messages sent,Direct PPVs sent,PPVs unlocked,Fans chatted,Fans who spent money,Clocked hours,Sales,Sales per hour,Messages sent per hour\n"+
			"2026-02-10,Alice,Day,Mia,100,10,4,20,5,8h 0min,$200.00,$25.00,12.5\n"+
			"2026-02-10,Bob,Night,Zoe,50,5,2,10,2,4h 0min,$80.00,$20.00,12.5\n")

	sales := writeFile(t, dir, "sales.csv",
		"Date & time America/New_York,Employee,Creator,Fan,Type,Gross revenue,Net revenue,Status\n"+
			"2026-02-10 01:20:00,Alice,Mia,fan1,Messages,$12.50,$10.00,\n"+
			"2026-02-10 09:35:00,Alice,Mia,fan2,Subscription,$25.00,$20.00,\n"+
			"2026-02-10 17:50:00,Bob,Zoe,fan3,Messages,$50.00,$40.00,Reverse\n")

	stats := writeFile(t, dir, "creators.csv",
		"Creator,Total earnings Net,Active fans,New fans\n"+
			"Mia,$500.00,100,12\n")

	classRaw, err := json.Marshal(map[string]string{"Mia": "paid"})
	require.NoError(t, err)
	classification := writeFile(t, dir, "classification.json", string(classRaw))

	hoursPath := writeFile(t, dir, "hours.json",
		`{"chatters":{"Alice":{"total_minutes":480,"total_hours":8,"daily_minutes":{"2026-02-10":480}}}}`)

	return config.SourcesConfig{
		PeriodLabel:        "Feb 2026",
		Messages:           []string{messages},
		Breakdown:          []string{breakdown},
		Sales:              []string{sales},
		CreatorStats:       []string{stats},
		ClassificationPath: classification,
		TrackedHoursPath:   hoursPath,
	}
}

func TestRunEndToEnd(t *testing.T) {
	p := newTestPipeline(t, fixtureSources(t))

	record, err := p.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "Feb 2026", record.PeriodLabel)

	var report aggdomain.Report
	require.NoError(t, json.Unmarshal(record.Payload, &report))

	assert.Equal(t, 3, report.General.TotalMessages)
	assert.Equal(t, 3, report.General.RawTransactions)
	assert.Equal(t, 2, report.General.Transactions)
	assert.InDelta(t, 30.0, report.General.TotalNetRevenue, 0.001)
	// 15 breakdown PPVs over 3 dashboard messages.
	assert.InDelta(t, 500.0, report.General.GoldenRatio, 0.001)
	assert.Equal(t, 2, report.General.TotalOperators)
	assert.Equal(t, 2, report.General.TotalCreators)

	require.NotEmpty(t, report.Creators)
	assert.Equal(t, "Mia", report.Creators[0].Name)
	assert.Equal(t, "paid", report.Creators[0].AccountType)
	assert.InDelta(t, 500.0, report.Creators[0].TotalEarnings, 0.001)

	var alice *aggdomain.OperatorReport
	for i := range report.Operators {
		if report.Operators[i].Name == "Alice" {
			alice = &report.Operators[i]
		}
	}
	require.NotNil(t, alice)
	assert.InDelta(t, 480.0, alice.TrackedMinutes, 0.001)
	assert.InDelta(t, 8.0, alice.TrackedHours, 0.001)
}

func TestRunFailsOnMissingSourceFile(t *testing.T) {
	cfg := fixtureSources(t)
	cfg.Sales = []string{filepath.Join(t.TempDir(), "absent.csv")}
	p := newTestPipeline(t, cfg)

	_, err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing_source_file")
}

func TestRunTwiceArchivesTwoRecords(t *testing.T) {
	cfg := fixtureSources(t)
	p := newTestPipeline(t, cfg)
	ctx := context.Background()

	first, err := p.Run(ctx)
	require.NoError(t, err)
	second, err := p.Run(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}
