package csvmap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadMessages(t *testing.T) {
	path := writeCSV(t, "messages.csv",
		"Sender,Creator,Sent date,Sent time,Price,Purchased,Replay time,Channel\n"+
			"Alice,Mia,2026-02-12,14:03,$10.00,Yes,2m 5s,Direct\n"+
			"Bob,Mia,2026-02-12,09:15,,No,,Direct\n")

	events, err := ReadMessages(path)
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.True(t, events[0].IsPPV())
	assert.True(t, events[0].Purchased)
	require.NotNil(t, events[0].Hour)
	assert.Equal(t, 14, *events[0].Hour)
	require.NotNil(t, events[0].ReplySeconds)
	assert.Equal(t, 125.0, *events[0].ReplySeconds)

	assert.False(t, events[1].IsPPV())
	assert.Nil(t, events[1].ReplySeconds)
}

func TestReadMessagesMissingRequiredColumn(t *testing.T) {
	path := writeCSV(t, "messages.csv", "Sender,Creator,Sent date\nAlice,Mia,2026-02-12\n")

	_, err := ReadMessages(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing_required_column")
}

func TestReadMessagesMissingFile(t *testing.T) {
	_, err := ReadMessages(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing_source_file")
}

func TestReadBreakdownMissingOptionalColumnDefaults(t *testing.T) {
	// No "Clocked hours" column: rows load with zero clocked minutes.
	path := writeCSV(t, "breakdown.csv",
		"Date,Employees,Creators,Sales,Direct messages sent,Direct PPVs sent\n"+
			"2026-02-12,Alice,Mia,\"$1,250.50\",100,10\n")

	rows, err := ReadBreakdown(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 0, rows[0].ClockedMinutes)
	assert.Equal(t, 100, rows[0].MessagesSent)
	assert.Equal(t, "1250.5", rows[0].Sales.String())
}

func TestReadSales(t *testing.T) {
	path := writeCSV(t, "sales.csv",
		"Date & time Africa/Monrovia,Employee,Creator,Fan,Gross revenue,Net revenue,Type,Status\n"+
			"2026-02-12 14:30:00,Alice,Mia,fan1,$12.50,$10.00,Messages,Normal\n"+
			"2026-02-12 15:00:00,,Mia,fan2,$6.25,$5.00,Subscription,Reverse\n"+
			"not-a-time,Alice,Mia,fan3,$1.00,$0.80,Messages,Normal\n")

	res, err := ReadSales(path)
	require.NoError(t, err)
	require.Len(t, res.Transactions, 2)
	assert.Equal(t, 1, res.DroppedRows)

	assert.Equal(t, 14, res.Transactions[0].Hour())
	assert.Equal(t, "2026-02-12", res.Transactions[0].Date())
	assert.False(t, res.Transactions[0].Reversed())
	assert.True(t, res.Transactions[1].Reversed())
	assert.Empty(t, res.Transactions[1].Operator)
}

func TestReadCreatorStatsBlankStateFieldsStayNil(t *testing.T) {
	path := writeCSV(t, "stats.csv",
		"Creator,Total earnings Net,New fans,Active fans,Following\n"+
			"Mia,$500.00,5,120,\n")

	snaps, err := ReadCreatorStats(path)
	require.NoError(t, err)
	require.Len(t, snaps, 1)

	assert.Equal(t, 5, snaps[0].NewFans)
	require.NotNil(t, snaps[0].ActiveFans)
	assert.Equal(t, 120, *snaps[0].ActiveFans)
	assert.Nil(t, snaps[0].Following)
	assert.Nil(t, snaps[0].Group)
}
